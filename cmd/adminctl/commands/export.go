package commands

import (
	"fmt"
	"strconv"
	"time"

	"github.com/spf13/cobra"

	"marketplace-admin/internal/export"
	"marketplace-admin/internal/storage"
)

// exporter builds an Exporter; the S3 client is only set up when withStore is true.
func (a *app) exporter(cmd *cobra.Command, withStore bool) (*export.Exporter, error) {
	var store storage.Service
	if withStore {
		if a.cfg.Export.Bucket == "" {
			return nil, fmt.Errorf("export.bucket is not configured")
		}
		svc, err := storage.New(cmd.Context(), storage.Options{
			Region:   a.cfg.Export.Region,
			Endpoint: a.cfg.Export.Endpoint,
			Profile:  a.cfg.AWS.Profile,
		})
		if err != nil {
			return nil, err
		}
		store = svc
	}
	return export.New(a.client, store, export.Options{
		Bucket:    a.cfg.Export.Bucket,
		KeyPrefix: a.cfg.Export.KeyPrefix,
		Logger:    a.logger,
	}), nil
}

func exportCmd(a *app) *cobra.Command {
	var (
		out   string
		toS3  bool
		quiet bool
	)
	cmd := &cobra.Command{
		Use:   "export <users|jobs|categories|locations|transactions>",
		Short: "Export a full listing as CSV to a file or to S3",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			res, err := export.ParseResource(args[0])
			if err != nil {
				return err
			}
			exp, err := a.exporter(cmd, toS3)
			if err != nil {
				return err
			}

			var result *export.Result
			if toS3 {
				var progress func(done, total int64)
				if !quiet {
					progress = func(done, total int64) {
						if total > 0 {
							fmt.Fprintf(a.errOut, "\ruploading %d%%", done*100/total)
						}
					}
				}
				result, err = exp.ToS3(cmd.Context(), res, progress)
				if !quiet {
					fmt.Fprintln(a.errOut)
				}
			} else {
				result, err = exp.ToFile(cmd.Context(), res, out)
			}
			if err != nil {
				return err
			}

			fields := [][2]string{
				{"Resource", string(result.Resource)},
				{"Rows", strconv.Itoa(result.Rows)},
				{"Location", result.Location},
			}
			if result.URL != "" {
				fields = append(fields, [2]string{"Download", result.URL})
			}
			return a.renderFields(result, fields)
		},
	}
	cmd.Flags().StringVarP(&out, "out", "o", ".", "file or directory to write to")
	cmd.Flags().BoolVar(&toS3, "s3", false, "upload to the configured export bucket instead")
	cmd.Flags().BoolVarP(&quiet, "quiet", "q", false, "hide upload progress")
	cmd.AddCommand(exportListCmd(a), exportLinkCmd(a), exportPruneCmd(a))
	return cmd
}

func exportListCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List exports stored in the bucket",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			exp, err := a.exporter(cmd, true)
			if err != nil {
				return err
			}
			objects, err := exp.List(cmd.Context())
			if err != nil {
				return err
			}
			rows := make([][]string, 0, len(objects))
			for _, o := range objects {
				modified := "-"
				if o.LastModified != nil {
					modified = o.LastModified.Local().Format(time.DateTime)
				}
				rows = append(rows, []string{o.Key, strconv.FormatInt(o.Size, 10), modified})
			}
			return a.render(objects, []string{"KEY", "BYTES", "MODIFIED"}, rows)
		},
	}
}

func exportLinkCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "link <key>",
		Short: "Print a download link for a stored export",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			exp, err := a.exporter(cmd, true)
			if err != nil {
				return err
			}
			link, err := exp.Link(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			fmt.Fprintln(a.out, link)
			return nil
		},
	}
}

func exportPruneCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "prune [resource]",
		Short: "Delete stored exports, all or those of one resource",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			var res export.Resource
			if len(args) == 1 {
				parsed, err := export.ParseResource(args[0])
				if err != nil {
					return err
				}
				res = parsed
			}
			exp, err := a.exporter(cmd, true)
			if err != nil {
				return err
			}
			if err := exp.Prune(cmd.Context(), res); err != nil {
				return err
			}
			fmt.Fprintln(a.out, "Pruned exports")
			return nil
		},
	}
}
