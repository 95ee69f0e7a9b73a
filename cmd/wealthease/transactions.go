package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/Veraticus/wealthease/internal/analysis"
	"github.com/Veraticus/wealthease/internal/metrics"
)

func transactionsCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:     "transactions",
		Aliases: []string{"tx"},
		Short:   "Inspect stored transactions",
	}

	list := &cobra.Command{
		Use:   "list",
		Short: "List stored transactions",
		RunE:  runTransactionsList,
	}
	list.Flags().String("category", "", "only show this category")
	addUserFlag(list)

	cmd.AddCommand(list)
	return cmd
}

func runTransactionsList(cmd *cobra.Command, _ []string) error {
	ctx := cmd.Context()

	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	store, err := initStorage(ctx, cfg)
	if err != nil {
		return err
	}
	defer func() { _ = store.Close() }()

	user, err := resolveUser(ctx, cmd, store)
	if err != nil {
		return err
	}

	txns, err := store.ListTransactions(ctx, user.ID)
	if err != nil {
		return err
	}

	if category, _ := cmd.Flags().GetString("category"); category != "" {
		filtered := txns[:0]
		for _, t := range txns {
			if t.Category == category {
				filtered = append(filtered, t)
			}
		}
		txns = filtered
	}

	totals := metrics.MonthlyAnalytics(txns, 0)
	out := cmd.OutOrStdout()
	if _, err := fmt.Fprintln(out, analysis.NewCLIFormatter().FormatTransactions(txns)); err != nil {
		return err
	}
	_, err = fmt.Fprintf(out, "\n%d transactions · income $%.2f · expenses $%.2f · balance $%.2f\n",
		totals.TotalTransactions, totals.Income, totals.Expense, totals.Balance)
	return err
}
