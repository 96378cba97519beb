// Package export writes admin API listings as CSV to a local file or to S3.
package export

import (
	"bytes"
	"context"
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"path"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/sirupsen/logrus"

	"marketplace-admin/internal/apiclient"
	"marketplace-admin/internal/domain"
	"marketplace-admin/internal/storage"
)

type Resource string

const (
	Users        Resource = "users"
	Jobs         Resource = "jobs"
	Categories   Resource = "categories"
	Locations    Resource = "locations"
	Transactions Resource = "transactions"
)

// Resources lists everything that can be exported.
var Resources = []Resource{Users, Jobs, Categories, Locations, Transactions}

func ParseResource(s string) (Resource, error) {
	r := Resource(strings.ToLower(strings.TrimSpace(s)))
	for _, known := range Resources {
		if r == known {
			return r, nil
		}
	}
	return "", fmt.Errorf("unknown resource %q", s)
}

// Result describes a finished export.
type Result struct {
	Resource Resource
	Rows     int
	// Location is a file path or an s3:// URI.
	Location string
	// URL is a presigned download link for S3 exports.
	URL string
}

type Options struct {
	Bucket    string
	KeyPrefix string
	PageSize  int
	// LinkTTL is how long presigned links stay valid.
	LinkTTL time.Duration
	Logger  *logrus.Logger
	Now     func() time.Time
}

type Exporter struct {
	client *apiclient.Client
	store  storage.Service
	opts   Options
}

// New builds an Exporter. store may be nil when only local files are written.
func New(client *apiclient.Client, store storage.Service, opts Options) *Exporter {
	if opts.PageSize <= 0 {
		opts.PageSize = 100
	}
	if opts.LinkTTL <= 0 {
		opts.LinkTTL = 24 * time.Hour
	}
	if opts.Logger == nil {
		opts.Logger = logrus.StandardLogger()
	}
	if opts.Now == nil {
		opts.Now = time.Now
	}
	opts.KeyPrefix = strings.Trim(opts.KeyPrefix, "/")
	return &Exporter{client: client, store: store, opts: opts}
}

// WriteCSV walks every page of res and writes it to w, returning the number
// of data rows.
func (e *Exporter) WriteCSV(ctx context.Context, res Resource, w io.Writer) (int, error) {
	cw := csv.NewWriter(w)
	var (
		rows int
		err  error
	)
	switch res {
	case Users:
		rows, err = writeAll(ctx, cw, userHeader, func(ctx context.Context, page int) (*apiclient.List[domain.User], error) {
			return e.client.Users.List(ctx, apiclient.UserListParams{ListParams: e.page(page)})
		}, userRow)
	case Jobs:
		rows, err = writeAll(ctx, cw, jobHeader, func(ctx context.Context, page int) (*apiclient.List[domain.Job], error) {
			return e.client.Jobs.List(ctx, apiclient.JobListParams{ListParams: e.page(page)})
		}, jobRow)
	case Categories:
		rows, err = writeAll(ctx, cw, categoryHeader, func(ctx context.Context, page int) (*apiclient.List[domain.Category], error) {
			return e.client.Categories.List(ctx, apiclient.CategoryListParams{ListParams: e.page(page)})
		}, categoryRow)
	case Locations:
		rows, err = writeAll(ctx, cw, locationHeader, func(ctx context.Context, page int) (*apiclient.List[domain.Location], error) {
			return e.client.Locations.List(ctx, apiclient.LocationListParams{ListParams: e.page(page)})
		}, locationRow)
	case Transactions:
		rows, err = writeAll(ctx, cw, transactionHeader, func(ctx context.Context, page int) (*apiclient.List[domain.Transaction], error) {
			return e.client.Transactions.List(ctx, apiclient.TransactionListParams{ListParams: e.page(page)})
		}, transactionRow)
	default:
		return 0, fmt.Errorf("unknown resource %q", res)
	}
	if err != nil {
		return rows, fmt.Errorf("export %s: %w", res, err)
	}
	cw.Flush()
	if err := cw.Error(); err != nil {
		return rows, fmt.Errorf("write csv: %w", err)
	}
	return rows, nil
}

// ToFile exports res into the file at dst. When dst is a directory a
// timestamped name is chosen inside it.
func (e *Exporter) ToFile(ctx context.Context, res Resource, dst string) (*Result, error) {
	if fi, err := os.Stat(dst); err == nil && fi.IsDir() {
		dst = filepath.Join(dst, e.fileName(res))
	}
	if err := os.MkdirAll(filepath.Dir(dst), 0o755); err != nil {
		return nil, fmt.Errorf("create export directory: %w", err)
	}

	// write beside the target and rename so a failed export leaves no partial file
	tmp, err := os.CreateTemp(filepath.Dir(dst), ".export-*.csv")
	if err != nil {
		return nil, fmt.Errorf("create temp file: %w", err)
	}
	defer os.Remove(tmp.Name())

	rows, err := e.WriteCSV(ctx, res, tmp)
	if closeErr := tmp.Close(); err == nil && closeErr != nil {
		err = fmt.Errorf("close temp file: %w", closeErr)
	}
	if err != nil {
		return nil, err
	}
	if err := os.Rename(tmp.Name(), dst); err != nil {
		return nil, fmt.Errorf("move export into place: %w", err)
	}

	e.opts.Logger.WithFields(logrus.Fields{"resource": res, "rows": rows, "path": dst}).Info("export written")
	return &Result{Resource: res, Rows: rows, Location: dst}, nil
}

// ToS3 exports res to the configured bucket and returns a presigned link.
func (e *Exporter) ToS3(ctx context.Context, res Resource, progress func(done, total int64)) (*Result, error) {
	if err := e.requireStore(); err != nil {
		return nil, err
	}

	var buf bytes.Buffer
	rows, err := e.WriteCSV(ctx, res, &buf)
	if err != nil {
		return nil, err
	}

	key := path.Join(e.opts.KeyPrefix, e.fileName(res))
	location, err := e.store.Put(ctx, bytes.NewReader(buf.Bytes()), storage.PutOptions{
		Bucket:           e.opts.Bucket,
		Key:              key,
		ContentType:      "text/csv",
		Size:             int64(buf.Len()),
		ProgressCallback: progress,
	})
	if err != nil {
		return nil, err
	}
	link, err := e.store.GetObjectURL(ctx, e.opts.Bucket, key, e.opts.LinkTTL)
	if err != nil {
		return nil, err
	}

	e.opts.Logger.WithFields(logrus.Fields{"resource": res, "rows": rows, "location": location}).Info("export uploaded")
	return &Result{Resource: res, Rows: rows, Location: location, URL: link}, nil
}

// List returns earlier exports stored under the key prefix.
func (e *Exporter) List(ctx context.Context) ([]storage.ObjectInfo, error) {
	if err := e.requireStore(); err != nil {
		return nil, err
	}
	return e.store.ListObjects(ctx, e.opts.Bucket, e.prefix())
}

// Link presigns a download URL for an existing export key.
func (e *Exporter) Link(ctx context.Context, key string) (string, error) {
	if err := e.requireStore(); err != nil {
		return "", err
	}
	return e.store.GetObjectURL(ctx, e.opts.Bucket, key, e.opts.LinkTTL)
}

// Prune deletes every stored export, or only those of res when set.
func (e *Exporter) Prune(ctx context.Context, res Resource) error {
	if err := e.requireStore(); err != nil {
		return err
	}
	prefix := e.prefix()
	if res != "" {
		prefix += string(res) + "-"
	}
	if prefix == "" {
		return fmt.Errorf("refusing to prune the whole bucket without a key prefix")
	}
	return e.store.DeletePrefix(ctx, e.opts.Bucket, prefix)
}

func (e *Exporter) requireStore() error {
	if e.store == nil || e.opts.Bucket == "" {
		return fmt.Errorf("export bucket is not configured")
	}
	return nil
}

func (e *Exporter) prefix() string {
	if e.opts.KeyPrefix == "" {
		return ""
	}
	return e.opts.KeyPrefix + "/"
}

func (e *Exporter) page(n int) apiclient.ListParams {
	return apiclient.ListParams{Page: n, Limit: e.opts.PageSize}
}

func (e *Exporter) fileName(res Resource) string {
	return fmt.Sprintf("%s-%s.csv", res, e.opts.Now().UTC().Format("20060102-150405"))
}

func writeAll[T any](ctx context.Context, cw *csv.Writer, header []string, fetch func(context.Context, int) (*apiclient.List[T], error), row func(T) []string) (int, error) {
	if err := cw.Write(header); err != nil {
		return 0, err
	}
	rows := 0
	err := apiclient.Collect(ctx, fetch, func(item T) error {
		rows++
		return cw.Write(row(item))
	})
	return rows, err
}

var (
	userHeader        = []string{"id", "role", "full_name", "email", "phone", "location", "is_verified", "hourly_charge", "created_at"}
	jobHeader         = []string{"id", "title", "status", "budget", "location", "address", "date", "customer_id", "contractor_id", "created_at"}
	categoryHeader    = []string{"id", "name", "description", "icon", "created_at"}
	locationHeader    = []string{"id", "name", "state", "lat", "lng"}
	transactionHeader = []string{"id", "type", "status", "amount", "from", "to", "job", "offer", "description", "completed_at", "created_at"}
)

func userRow(u domain.User) []string {
	return []string{
		u.ID, string(u.Role), u.FullName, u.Email, u.Phone, u.Location,
		strconv.FormatBool(u.IsVerified), formatFloat(u.HourlyCharge), formatTimePtr(u.CreatedAt),
	}
}

func jobRow(j domain.Job) []string {
	return []string{
		j.ID, j.Title, string(j.Status), formatFloat(j.Budget), j.Location, j.Address,
		formatTime(j.Date), j.CustomerID, j.ContractorID, formatTime(j.CreatedAt),
	}
}

func categoryRow(c domain.Category) []string {
	return []string{c.ID, c.Name, c.Description, c.Icon, formatTime(c.CreatedAt)}
}

func locationRow(l domain.Location) []string {
	return []string{l.ID, l.Name, l.State, formatFloat(l.Coordinates.Lat), formatFloat(l.Coordinates.Lng)}
}

func transactionRow(t domain.Transaction) []string {
	return []string{
		t.ID, string(t.Type), string(t.Status), t.Amount.StringFixed(2), t.From.Email, t.To.Email,
		t.Job, t.Offer, t.Description, formatTimePtr(t.CompletedAt), formatTime(t.CreatedAt),
	}
}

func formatFloat(f float64) string {
	return strconv.FormatFloat(f, 'f', -1, 64)
}

func formatTime(t time.Time) string {
	if t.IsZero() {
		return ""
	}
	return t.UTC().Format(time.RFC3339)
}

func formatTimePtr(t *time.Time) string {
	if t == nil {
		return ""
	}
	return formatTime(*t)
}
