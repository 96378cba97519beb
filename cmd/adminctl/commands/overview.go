package commands

import (
	"fmt"
	"strconv"

	"github.com/spf13/cobra"

	"marketplace-admin/internal/overview"
)

func overviewCmd(a *app) *cobra.Command {
	var months int
	cmd := &cobra.Command{
		Use:   "overview",
		Short: "Show marketplace totals, user growth and the last week of revenue",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			summary, err := overview.FromClient(a.client, overview.WithMonths(months)).Build(cmd.Context())
			if err != nil {
				return err
			}
			if a.asJSON {
				return a.printJSON(summary)
			}

			totals := [][2]string{
				{"Users", strconv.Itoa(summary.TotalUsers)},
				{"Contractors", strconv.Itoa(summary.Contractors)},
				{"Customers", strconv.Itoa(summary.Customers)},
				{"Active jobs", strconv.Itoa(summary.ActiveJobs)},
				{"Pending jobs", strconv.Itoa(summary.PendingJobs)},
				{"Completed jobs", strconv.Itoa(summary.CompletedJobs)},
				{"Revenue", summary.Revenue.StringFixed(2)},
				{"Commission", summary.Commission.StringFixed(2)},
			}
			if top, ok := summary.TopMonth(); ok && top.Count > 0 {
				totals = append(totals, [2]string{"Best month", fmt.Sprintf("%s (%d sign-ups)", top.Month.Format("Jan 2006"), top.Count)})
			}
			if err := a.renderFields(nil, totals); err != nil {
				return err
			}

			growth := make([][]string, 0, len(summary.UserGrowth))
			for _, m := range summary.UserGrowth {
				growth = append(growth, []string{m.Month.Format("Jan 2006"), strconv.Itoa(m.Count)})
			}
			if err := a.render(nil, []string{"MONTH", "NEW USERS"}, growth); err != nil {
				return err
			}

			weekly := make([][]string, 0, len(summary.Weekly))
			for _, d := range summary.Weekly {
				weekly = append(weekly, []string{d.Day.Format("Mon 02 Jan"), d.Revenue.StringFixed(2), d.Commission.StringFixed(2)})
			}
			if err := a.render(nil, []string{"DAY", "REVENUE", "COMMISSION"}, weekly); err != nil {
				return err
			}

			posted := make([][]string, 0, len(summary.JobsByWeekday))
			for _, d := range summary.JobsByWeekday {
				posted = append(posted, []string{d.Day.String(), strconv.Itoa(d.Count)})
			}
			return a.render(nil, []string{"WEEKDAY", "RECENT JOBS"}, posted)
		},
	}
	cmd.Flags().IntVar(&months, "months", 6, "months of user growth to show")
	return cmd
}
