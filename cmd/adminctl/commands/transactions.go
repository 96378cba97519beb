package commands

import (
	"github.com/spf13/cobra"

	"marketplace-admin/internal/apiclient"
	"marketplace-admin/internal/domain"
)

var transactionHeaders = []string{"ID", "TYPE", "AMOUNT", "STATUS", "FROM", "TO", "DATE"}

func transactionRow(t domain.Transaction) []string {
	return []string{
		t.ID,
		string(t.Type),
		t.Amount.StringFixed(2),
		string(t.Status),
		orDash(t.From.FullName),
		orDash(t.To.FullName),
		formatDate(t.CreatedAt),
	}
}

func transactionsCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:     "transactions",
		Aliases: []string{"payments"},
		Short:   "Browse wallet transactions",
	}
	cmd.AddCommand(transactionsListCmd(a))
	return cmd
}

func transactionsListCmd(a *app) *cobra.Command {
	var (
		params      apiclient.TransactionListParams
		txType, sts string
	)
	cmd := &cobra.Command{
		Use:   "list",
		Short: "List transactions",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			params.Type = domain.TransactionType(txType)
			params.Status = domain.TransactionStatus(sts)
			list, err := a.client.Transactions.List(cmd.Context(), params)
			if err != nil {
				return err
			}
			return renderList(a, list, transactionHeaders, transactionRow)
		},
	}
	addListFlags(cmd, &params.ListParams)
	cmd.Flags().StringVar(&txType, "type", "", "transaction type, e.g. platform_fee")
	cmd.Flags().StringVar(&sts, "status", "", "pending, completed, failed or cancelled")
	cmd.Flags().StringVar(&params.UserID, "user", "", "user id on either side")
	cmd.Flags().StringVar(&params.JobID, "job", "", "job id")
	cmd.Flags().StringVar(&params.OfferID, "offer", "", "offer id")
	return cmd
}
