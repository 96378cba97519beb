package export

import (
	"context"
	"encoding/csv"
	"io"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"marketplace-admin/internal/apiclient"
	"marketplace-admin/internal/domain"
	"marketplace-admin/internal/logging"
	"marketplace-admin/internal/repository/memory"
	"marketplace-admin/internal/storage"
)

type mockStore struct {
	mock.Mock
}

func (m *mockStore) Put(ctx context.Context, body io.Reader, opts storage.PutOptions) (string, error) {
	b, _ := io.ReadAll(body)
	args := m.Called(string(b), opts)
	return args.String(0), args.Error(1)
}

func (m *mockStore) ListObjects(ctx context.Context, bucket, prefix string) ([]storage.ObjectInfo, error) {
	args := m.Called(bucket, prefix)
	objects, _ := args.Get(0).([]storage.ObjectInfo)
	return objects, args.Error(1)
}

func (m *mockStore) DeletePrefix(ctx context.Context, bucket, prefix string) error {
	return m.Called(bucket, prefix).Error(0)
}

func (m *mockStore) GetObjectURL(ctx context.Context, bucket, key string, expires time.Duration) (string, error) {
	args := m.Called(bucket, key, expires)
	return args.String(0), args.Error(1)
}

var fixed = time.Date(2026, 10, 17, 8, 30, 0, 0, time.UTC)

// categoryServer serves three categories, one per page.
func categoryServer(t *testing.T) *apiclient.Client {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/category", r.URL.Path)
		page, _ := strconv.Atoi(r.URL.Query().Get("page"))
		name := []string{"", "Plumbing", "Electrical, Wiring", "Cleaning"}[page]
		w.Header().Set("Content-Type", "application/json")
		_, _ = io.WriteString(w, `{"status":200,"success":true,"data":{"categories":[{"_id":"c`+strconv.Itoa(page)+`","name":"`+name+`","createdAt":"2026-01-02T03:04:05Z"}],"total":3,"page":`+strconv.Itoa(page)+`,"limit":1,"totalPages":3}}`)
	}))
	t.Cleanup(srv.Close)

	sessions := memory.NewSessionRepository()
	require.NoError(t, sessions.SetTokens(context.Background(), "a", "r"))
	client, err := apiclient.New(apiclient.Options{BaseURL: srv.URL, Sessions: sessions, Logger: logging.Discard()})
	require.NoError(t, err)
	return client
}

func TestParseResource(t *testing.T) {
	r, err := ParseResource(" Users ")
	require.NoError(t, err)
	assert.Equal(t, Users, r)

	_, err = ParseResource("offers")
	assert.Error(t, err)
}

func TestWriteCSVWalksPages(t *testing.T) {
	e := New(categoryServer(t), nil, Options{PageSize: 1, Logger: logging.Discard()})

	var out strings.Builder
	rows, err := e.WriteCSV(context.Background(), Categories, &out)
	require.NoError(t, err)
	assert.Equal(t, 3, rows)

	records, err := csv.NewReader(strings.NewReader(out.String())).ReadAll()
	require.NoError(t, err)
	require.Len(t, records, 4)
	assert.Equal(t, categoryHeader, records[0])
	assert.Equal(t, []string{"c2", "Electrical, Wiring", "", "", "2026-01-02T03:04:05Z"}, records[2])
}

func TestToFileWritesIntoDirectory(t *testing.T) {
	dir := t.TempDir()
	e := New(categoryServer(t), nil, Options{PageSize: 1, Logger: logging.Discard(), Now: func() time.Time { return fixed }})

	res, err := e.ToFile(context.Background(), Categories, dir)
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(dir, "categories-20261017-083000.csv"), res.Location)
	assert.Equal(t, 3, res.Rows)

	b, err := os.ReadFile(res.Location)
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(string(b), "id,name,description,icon,created_at\n"))

	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	assert.Len(t, entries, 1)
}

func TestToS3UploadsAndPresigns(t *testing.T) {
	store := &mockStore{}
	key := "admin-exports/categories-20261017-083000.csv"
	store.On("Put", mock.MatchedBy(func(body string) bool { return strings.Contains(body, "c3,Cleaning") }),
		mock.MatchedBy(func(o storage.PutOptions) bool {
			return o.Bucket == "reports" && o.Key == key && o.ContentType == "text/csv" && o.Size > 0
		})).Return("s3://reports/"+key, nil)
	store.On("GetObjectURL", "reports", key, time.Hour).Return("https://signed.example/x", nil)

	e := New(categoryServer(t), store, Options{
		Bucket:    "reports",
		KeyPrefix: "/admin-exports/",
		PageSize:  1,
		LinkTTL:   time.Hour,
		Logger:    logging.Discard(),
		Now:       func() time.Time { return fixed },
	})
	res, err := e.ToS3(context.Background(), Categories, nil)
	require.NoError(t, err)
	assert.Equal(t, "s3://reports/"+key, res.Location)
	assert.Equal(t, "https://signed.example/x", res.URL)
	store.AssertExpectations(t)
}

func TestStoreOperationsNeedBucket(t *testing.T) {
	e := New(nil, nil, Options{})
	_, err := e.List(context.Background())
	assert.Error(t, err)
	_, err = e.ToS3(context.Background(), Users, nil)
	assert.Error(t, err)
}

func TestListAndPrune(t *testing.T) {
	store := &mockStore{}
	store.On("ListObjects", "reports", "admin-exports/").Return([]storage.ObjectInfo{{Key: "admin-exports/users-1.csv"}}, nil)
	store.On("DeletePrefix", "reports", "admin-exports/users-").Return(nil)
	store.On("DeletePrefix", "reports", "admin-exports/").Return(nil)

	e := New(nil, store, Options{Bucket: "reports", KeyPrefix: "admin-exports"})
	objects, err := e.List(context.Background())
	require.NoError(t, err)
	assert.Len(t, objects, 1)

	require.NoError(t, e.Prune(context.Background(), Users))
	require.NoError(t, e.Prune(context.Background(), ""))
	store.AssertExpectations(t)

	bare := New(nil, store, Options{Bucket: "reports"})
	assert.Error(t, bare.Prune(context.Background(), ""))
}

func TestTransactionRowFormatsAmount(t *testing.T) {
	row := transactionRow(domain.Transaction{ID: "t1", Type: domain.TransactionTypeRefund, Status: domain.TransactionStatusCompleted})
	assert.Equal(t, "0.00", row[3])
	assert.Equal(t, "", row[9])
}
