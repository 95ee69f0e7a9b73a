package main

import (
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/Veraticus/wealthease/internal/analysis"
	"github.com/Veraticus/wealthease/internal/common"
	"github.com/Veraticus/wealthease/internal/model"
)

func analyzeCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "analyze",
		Short: "Analyze transactions with AI or the local engine",
		Long: `Produce a financial analysis: profile, scores, predictions and recommendations.

Transactions come from --file (a JSON array, or an object with a "transactions" field)
or, without --file, from the database for --user.

Examples:
  wealthease analyze --file march.json
  wealthease analyze --local
  wealthease analyze --file march.json --output json`,
		RunE: runAnalyze,
	}

	cmd.Flags().StringP("file", "f", "", "JSON file with transactions (default: stored transactions)")
	cmd.Flags().Bool("local", false, "skip the model and use the local engine")
	cmd.Flags().String("name", "", "name shown in the analysis (default: the user's name)")
	cmd.Flags().StringP("output", "o", "text", "output format (text, json)")
	addUserFlag(cmd)

	return cmd
}

func runAnalyze(cmd *cobra.Command, _ []string) error {
	ctx := cmd.Context()

	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	file, _ := cmd.Flags().GetString("file")
	local, _ := cmd.Flags().GetBool("local")
	name, _ := cmd.Flags().GetString("name")
	output, _ := cmd.Flags().GetString("output")

	if output != "text" && output != "json" {
		return common.NewUserError(fmt.Sprintf("unknown output format %q", output), common.ErrInvalidInput)
	}

	var txns []model.Transaction
	if file != "" {
		f, err := os.Open(file)
		if err != nil {
			return fmt.Errorf("failed to open %s: %w", file, err)
		}
		txns, err = readTransactions(f)
		_ = f.Close()
		if err != nil {
			return fmt.Errorf("failed to read %s: %w", file, err)
		}
	} else {
		store, err := initStorage(ctx, cfg)
		if err != nil {
			return err
		}
		defer func() { _ = store.Close() }()

		user, err := resolveUser(ctx, cmd, store)
		if err != nil {
			return err
		}
		if name == "" {
			name = user.Name
		}
		if txns, err = store.ListTransactions(ctx, user.ID); err != nil {
			return err
		}
	}

	if len(txns) == 0 {
		return common.NewUserError("No transactions to analyze", common.ErrNoTransactions)
	}

	svc, err := newAnalysisService(cfg, time.Now)
	if err != nil {
		return err
	}

	var report *analysis.Report
	if local || !svc.AIConfigured() {
		report = svc.AnalyzeLocal(name, txns)
	} else {
		slog.Info("Requesting AI analysis", "transactions", len(txns), "model", cfg.Analysis.Model)
		if report, err = svc.AnalyzeWithFallback(ctx, "cli", name, txns); err != nil {
			return err
		}
	}

	return writeReport(cmd.OutOrStdout(), report, output)
}

// readTransactions accepts a bare JSON array or an object with a transactions field.
func readTransactions(r io.Reader) ([]model.Transaction, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, err
	}

	trimmed := strings.TrimSpace(string(data))
	if strings.HasPrefix(trimmed, "{") {
		var wrapper struct {
			Transactions []model.Transaction `json:"transactions"`
		}
		if err := json.Unmarshal(data, &wrapper); err != nil {
			return nil, fmt.Errorf("%w: %v", common.ErrInvalidInput, err)
		}
		return wrapper.Transactions, nil
	}

	var txns []model.Transaction
	if err := json.Unmarshal(data, &txns); err != nil {
		return nil, fmt.Errorf("%w: %v", common.ErrInvalidInput, err)
	}
	return txns, nil
}

func writeReport(w io.Writer, report *analysis.Report, output string) error {
	if output == "json" {
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(report)
	}
	_, err := fmt.Fprintln(w, analysis.NewCLIFormatter().FormatReport(report))
	return err
}
