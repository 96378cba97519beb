package commands

import (
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"
	"github.com/spf13/cobra"

	"marketplace-admin/internal/apiclient"
	"marketplace-admin/internal/domain"
)

var (
	headerStyle = lipgloss.NewStyle().Bold(true).Padding(0, 1)
	cellStyle   = lipgloss.NewStyle().Padding(0, 1)
	borderStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("240"))
	mutedStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("244"))
)

func newTable(headers []string, rows [][]string) *table.Table {
	return table.New().
		Border(lipgloss.NormalBorder()).
		BorderStyle(borderStyle).
		Headers(headers...).
		Rows(rows...).
		StyleFunc(func(row, col int) lipgloss.Style {
			if row == table.HeaderRow {
				return headerStyle
			}
			return cellStyle
		})
}

// render prints v as JSON under --json, otherwise as a table.
func (a *app) render(v any, headers []string, rows [][]string) error {
	if a.asJSON {
		return a.printJSON(v)
	}
	if len(rows) == 0 {
		fmt.Fprintln(a.out, mutedStyle.Render("no results"))
		return nil
	}
	fmt.Fprintln(a.out, newTable(headers, rows).Render())
	return nil
}

// renderList is render plus a paging footer.
func renderList[T any](a *app, list *apiclient.List[T], headers []string, row func(T) []string) error {
	if a.asJSON {
		return a.printJSON(list)
	}
	rows := make([][]string, 0, len(list.Items))
	for _, item := range list.Items {
		rows = append(rows, row(item))
	}
	if err := a.render(nil, headers, rows); err != nil {
		return err
	}
	p := list.Page
	if p.TotalPages > 0 {
		fmt.Fprintln(a.out, mutedStyle.Render(fmt.Sprintf("page %d/%d, %d total", p.Page, p.TotalPages, p.Total)))
	}
	return nil
}

// renderFields prints one record as a two column table.
func (a *app) renderFields(v any, fields [][2]string) error {
	if a.asJSON {
		return a.printJSON(v)
	}
	rows := make([][]string, 0, len(fields))
	for _, f := range fields {
		rows = append(rows, []string{f[0], f[1]})
	}
	fmt.Fprintln(a.out, newTable([]string{"FIELD", "VALUE"}, rows).Render())
	return nil
}

func (a *app) printJSON(v any) error {
	enc := json.NewEncoder(a.out)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

// addListFlags binds the paging, search and sort flags shared by every list command.
func addListFlags(cmd *cobra.Command, p *apiclient.ListParams) {
	cmd.Flags().StringVar(&p.Search, "search", "", "free text search")
	cmd.Flags().IntVar(&p.Page, "page", 1, "page number")
	cmd.Flags().IntVar(&p.Limit, "limit", 10, "page size")
	cmd.Flags().StringVar(&p.SortBy, "sort-by", "", "field to sort by (server default createdAt)")
	cmd.Flags().Var((*sortOrderValue)(&p.SortOrder), "sort-order", "asc or desc")
}

type sortOrderValue domain.SortOrder

func (v *sortOrderValue) String() string { return string(*v) }
func (v *sortOrderValue) Type() string   { return "order" }

func (v *sortOrderValue) Set(s string) error {
	switch o := domain.SortOrder(strings.ToLower(s)); o {
	case domain.SortAsc, domain.SortDesc:
		*v = sortOrderValue(o)
		return nil
	}
	return fmt.Errorf("sort order must be asc or desc")
}

func formatDate(t time.Time) string {
	if t.IsZero() {
		return "-"
	}
	return t.Local().Format("2006-01-02")
}

func formatDatePtr(t *time.Time) string {
	if t == nil {
		return "-"
	}
	return formatDate(*t)
}

func formatMoney(f float64) string {
	return strconv.FormatFloat(f, 'f', 2, 64)
}

func orDash(s string) string {
	if strings.TrimSpace(s) == "" {
		return "-"
	}
	return s
}

func yesNo(b bool) string {
	if b {
		return "yes"
	}
	return "no"
}
