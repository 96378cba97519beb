package commands

import (
	"fmt"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"marketplace-admin/internal/apiclient"
	"marketplace-admin/internal/domain"
	"marketplace-admin/internal/forms"
)

var jobHeaders = []string{"ID", "TITLE", "STATUS", "LOCATION", "BUDGET", "DATE", "POSTED"}

func jobRow(j domain.Job) []string {
	return []string{j.ID, j.Title, string(j.Status), j.Location, formatMoney(j.Budget), formatDate(j.Date), formatDate(j.CreatedAt)}
}

func jobFields(j *domain.Job) [][2]string {
	return [][2]string{
		{"ID", j.ID},
		{"Title", j.Title},
		{"Status", string(j.Status)},
		{"Categories", orDash(strings.Join(j.Category, ", "))},
		{"Location", j.Location},
		{"Address", orDash(j.Address)},
		{"Budget", formatMoney(j.Budget)},
		{"Date", formatDate(j.Date)},
		{"Customer", orDash(j.CustomerID)},
		{"Contractor", orDash(j.ContractorID)},
		{"Description", orDash(j.Description)},
		{"Posted", formatDate(j.CreatedAt)},
	}
}

func jobsCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:     "jobs",
		Aliases: []string{"job"},
		Short:   "Browse and post jobs",
	}
	cmd.AddCommand(jobsListCmd(a), jobsGetCmd(a), jobsCreateCmd(a))
	return cmd
}

func jobsListCmd(a *app) *cobra.Command {
	var (
		params apiclient.JobListParams
		status string
	)
	cmd := &cobra.Command{
		Use:   "list",
		Short: "List jobs",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if status != "" {
				params.Status = domain.JobStatus(strings.ToLower(status))
				if !params.Status.Valid() {
					return fmt.Errorf("unknown job status %q", status)
				}
			}
			list, err := a.client.Jobs.List(cmd.Context(), params)
			if err != nil {
				return err
			}
			return renderList(a, list, jobHeaders, jobRow)
		},
	}
	addListFlags(cmd, &params.ListParams)
	cmd.Flags().StringVar(&status, "status", "", "open, in-progress, completed or cancelled")
	cmd.Flags().StringVar(&params.Location, "location", "", "location filter")
	cmd.Flags().StringVar(&params.Category, "category", "", "category filter")
	cmd.Flags().StringVar(&params.CustomerID, "customer", "", "customer id")
	cmd.Flags().StringVar(&params.ContractorID, "contractor", "", "contractor id")
	return cmd
}

func jobsGetCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "get <id>",
		Short: "Show one job",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			job, err := a.client.Jobs.Get(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			return a.renderFields(job, jobFields(job))
		},
	}
}

func jobsCreateCmd(a *app) *cobra.Command {
	var (
		input apiclient.JobInput
		date  string
	)
	cmd := &cobra.Command{
		Use:   "create",
		Short: "Post a job",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if date != "" {
				parsed, err := time.ParseInLocation("2006-01-02", date, time.Local)
				if err != nil {
					return fmt.Errorf("date must look like 2006-01-02")
				}
				input.Date = parsed
			}
			if err := forms.Validate(forms.Job{
				Title:       input.Title,
				Category:    input.Category,
				Description: input.Description,
				Location:    input.Location,
				Address:     input.Address,
				Budget:      input.Budget,
				Date:        input.Date,
			}); err != nil {
				return err
			}
			job, err := a.client.Jobs.Create(cmd.Context(), input)
			if err != nil {
				return err
			}
			return a.renderFields(job, jobFields(job))
		},
	}
	cmd.Flags().StringVar(&input.Title, "title", "", "job title")
	cmd.Flags().StringSliceVar(&input.Category, "category", nil, "category names (repeat or comma separate)")
	cmd.Flags().StringVar(&input.Description, "description", "", "what needs doing")
	cmd.Flags().StringVar(&input.Location, "location", "", "location name")
	cmd.Flags().StringVar(&input.Address, "address", "", "street address")
	cmd.Flags().Float64Var(&input.Budget, "budget", 0, "budget")
	cmd.Flags().StringVar(&date, "date", "", "date the work is due (YYYY-MM-DD)")
	cmd.Flags().StringVar(&input.CoverImg, "cover-img", "", "cover image URL")
	return cmd
}
