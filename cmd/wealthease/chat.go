package main

import (
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/Veraticus/wealthease/internal/analysis"
	"github.com/Veraticus/wealthease/internal/common"
	"github.com/Veraticus/wealthease/internal/llm"
)

func chatCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "chat <message>",
		Short: "Record a transaction described in plain language",
		Long: `Send a message such as "Bought coffee $5 today" to the chatbot, which extracts
the transaction type, description, amount, date and payment method.

Use --save to store the extracted transaction for --user.`,
		Args: cobra.MinimumNArgs(1),
		RunE: runChat,
	}

	cmd.Flags().Bool("save", false, "store the extracted transaction")
	addUserFlag(cmd)

	return cmd
}

func runChat(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()
	out := cmd.OutOrStdout()
	formatter := analysis.NewCLIFormatter()

	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	svc, err := newAnalysisService(cfg, time.Now)
	if err != nil {
		return err
	}

	res, err := svc.Extract(ctx, strings.Join(args, " "))
	switch {
	case errors.Is(err, analysis.ErrNoExtraction):
		_, err = fmt.Fprintln(out, formatter.FormatChat(nil))
		return err
	case errors.Is(err, llm.ErrNotConfigured):
		return common.NewUserError("No LLM API key configured. Set OPENAI_API_KEY to use the chatbot.", err)
	case err != nil:
		return err
	}

	if _, err := fmt.Fprintln(out, formatter.FormatChat(res)); err != nil {
		return err
	}

	if save, _ := cmd.Flags().GetBool("save"); !save {
		return nil
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

	txn := res.Transaction
	if err := store.SaveTransaction(ctx, user.ID, &txn); err != nil {
		return fmt.Errorf("failed to save transaction: %w", err)
	}

	slog.Info("Saved chatbot transaction", "id", txn.ID, "user", user.Email)
	return nil
}
