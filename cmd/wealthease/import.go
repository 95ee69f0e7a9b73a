package main

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/schollz/progressbar/v3"
	"github.com/spf13/cobra"

	"github.com/Veraticus/wealthease/internal/analysis"
	"github.com/Veraticus/wealthease/internal/model"
	"github.com/Veraticus/wealthease/internal/ofx"
)

func importCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "import [files...]",
		Short: "Import transactions from OFX/QFX files",
		Long: `Import transactions from OFX or QFX files exported from your bank.

Debits become expenses and credits become incomes. Re-importing a file is safe:
transactions already stored are skipped.

Examples:
  wealthease import ~/Downloads/checking_march.qfx
  wealthease import ~/Downloads/*.qfx --dry-run`,
		Args: cobra.MinimumNArgs(1),
		RunE: runImport,
	}

	cmd.Flags().BoolP("dry-run", "d", false, "parse and summarize without saving")
	addUserFlag(cmd)

	return cmd
}

// importResult summarizes one import run.
type importResult struct {
	Files    int
	Parsed   int
	Imported int
	Skipped  int
}

func runImport(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()
	dryRun, _ := cmd.Flags().GetBool("dry-run")

	files, err := expandFiles(args)
	if err != nil {
		return err
	}

	slog.Info("Importing OFX files", "file_count", len(files), "dry_run", dryRun)

	txns, err := parseFiles(ctx, files, cmd.ErrOrStderr())
	if err != nil {
		return err
	}

	res := importResult{Files: len(files), Parsed: len(txns)}
	if !dryRun && len(txns) > 0 {
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

		if res.Imported, err = store.ImportTransactions(ctx, user.ID, txns); err != nil {
			return fmt.Errorf("failed to save transactions: %w", err)
		}
		res.Skipped = res.Parsed - res.Imported
	}

	_, err = fmt.Fprintf(cmd.OutOrStdout(), "📁 %d files, %d transactions parsed, %d imported, %d already present\n",
		res.Files, res.Parsed, res.Imported, res.Skipped)
	return err
}

// expandFiles resolves glob patterns, keeping literal paths that exist.
func expandFiles(patterns []string) ([]string, error) {
	var files []string
	for _, pattern := range patterns {
		matches, err := filepath.Glob(pattern)
		if err != nil {
			return nil, fmt.Errorf("invalid pattern %s: %w", pattern, err)
		}
		if len(matches) > 0 {
			files = append(files, matches...)
			continue
		}
		if _, err := os.Stat(pattern); err == nil {
			files = append(files, pattern)
		} else {
			slog.Warn("No files found matching pattern", "pattern", pattern)
		}
	}

	if len(files) == 0 {
		return nil, fmt.Errorf("no files found to import")
	}
	return files, nil
}

// parseFiles parses every file, logging and skipping the ones that fail.
func parseFiles(ctx context.Context, files []string, progress io.Writer) ([]model.Transaction, error) {
	parser := ofx.NewParser().WithCategorizer(analysis.CategoryFromDescription)

	bar := progressbar.NewOptions(len(files),
		progressbar.OptionSetWriter(progress),
		progressbar.OptionShowCount(),
		progressbar.OptionSetWidth(40),
		progressbar.OptionSetDescription("Parsing statements..."),
		progressbar.OptionOnCompletion(func() {
			_, _ = fmt.Fprintln(progress)
		}),
	)

	var all []model.Transaction
	for _, path := range files {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		txns, err := parseFile(ctx, parser, path)
		if err != nil {
			slog.Error("Failed to parse OFX file", "file", path, "error", err)
		} else {
			all = append(all, txns...)
		}

		if err := bar.Add(1); err != nil {
			slog.Warn("Failed to update progress bar", "error", err)
		}
	}
	return all, nil
}

func parseFile(ctx context.Context, parser *ofx.Parser, path string) ([]model.Transaction, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer func() { _ = f.Close() }()

	return parser.ParseFile(ctx, f)
}
