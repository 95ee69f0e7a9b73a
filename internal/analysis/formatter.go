package analysis

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/Veraticus/wealthease/internal/model"
)

// CLIFormatter renders reports for terminal display.
type CLIFormatter struct {
	styles *Styles
}

// NewCLIFormatter creates a new CLI formatter with default styles.
func NewCLIFormatter() *CLIFormatter {
	return &CLIFormatter{
		styles: NewStyles(),
	}
}

// FormatReport renders the whole analysis report.
func (f *CLIFormatter) FormatReport(report *Report) string {
	if report == nil {
		return f.styles.Error.Render("No report available")
	}

	sections := []string{
		f.formatHeader(report),
		f.formatProfile(report.Profile),
		f.formatScores(report.Result.Score),
		f.formatPredictions(report.Result.Predictions),
	}

	for _, insight := range report.Insights {
		if insight.Type == InsightScore || insight.Type == InsightPredictions {
			continue
		}
		sections = append(sections, f.formatInsight(insight))
	}

	return strings.Join(sections, "\n\n")
}

// FormatChat renders a chatbot extraction result.
func (f *CLIFormatter) FormatChat(res *ChatResult) string {
	if res == nil {
		return f.styles.Error.Render(ExtractionFailureMessage)
	}
	return f.styles.Success.Render(res.Reply)
}

// FormatTransactions renders a simple transaction table.
func (f *CLIFormatter) FormatTransactions(txns []model.Transaction) string {
	if len(txns) == 0 {
		return f.styles.Subtle.Render("No transactions")
	}

	header := f.styles.Subtle.Bold(true).Render(fmt.Sprintf("%-10s  %-8s  %12s  %-16s  %-6s  %s",
		"Date", "Type", "Amount", "Category", "Method", "Description"))

	lines := []string{header}
	for _, t := range txns {
		amount := fmt.Sprintf("%12s", FormatUSD(t.Amount.Magnitude()))
		style := f.styles.Expense
		if t.Type == model.TypeIncome {
			style = f.styles.Income
		}
		if !t.Amount.Valid {
			amount = fmt.Sprintf("%12s", "invalid")
			style = f.styles.Subtle
		}
		lines = append(lines, fmt.Sprintf("%-10s  %-8s  %s  %-16s  %-6s  %s",
			formatDate(t.Date), t.Type, style.Render(amount),
			truncate(t.Category, 16), t.PaymentMethod, t.Description))
	}

	return strings.Join(lines, "\n")
}

func (f *CLIFormatter) formatHeader(report *Report) string {
	title := f.styles.Title.Render("💰 WealthEase Financial Analysis")

	source := "AI analysis"
	if report.Source == SourceLocal {
		source = "Local analysis"
	}
	if !report.Parsed {
		source += " (fallback)"
	}

	meta := f.styles.Subtle.Render(fmt.Sprintf("%s · %s", source, report.Timestamp.Format("Jan 2, 2006 15:04 MST")))
	return title + "\n" + meta
}

func (f *CLIFormatter) formatProfile(p model.UserProfile) string {
	rows := []string{
		f.styles.Subtitle.Render(p.Name),
		fmt.Sprintf("Balance:          %s", FormatUSD(p.TotalBalance)),
		fmt.Sprintf("Monthly income:   %s", f.styles.Income.Render(FormatUSD(p.MonthlyIncome))),
		fmt.Sprintf("Monthly expenses: %s", f.styles.Expense.Render(FormatUSD(p.MonthlyExpenses))),
		fmt.Sprintf("Savings rate:     %.1f%%", p.SavingsRate),
	}
	return f.styles.Box.Render(strings.Join(rows, "\n"))
}

func (f *CLIFormatter) formatScores(s model.Score) string {
	status, _ := HealthStatus(s.FinancialHealth)
	title := f.styles.Subtitle.Render("Scores:")

	return strings.Join([]string{
		title,
		f.scoreLine("Financial health", s.FinancialHealth) + " " + f.styles.Subtle.Render(status),
		f.scoreLine("Discipline", s.SpendingDiscipline),
		fmt.Sprintf("%-18s %.1f%%", "Volatility", s.Volatility),
		fmt.Sprintf("%-18s %.0f%%", "Confidence", s.Confidence),
	}, "\n")
}

func (f *CLIFormatter) scoreLine(label string, score float64) string {
	var style lipgloss.Style
	switch {
	case score >= 80:
		style = f.styles.Success
	case score >= 40:
		style = f.styles.Warning
	default:
		style = f.styles.Error
	}

	barWidth := 20
	filled := int(float64(barWidth) * clampUnit(score/100))
	bar := strings.Repeat("█", filled) + strings.Repeat("░", barWidth-filled)

	return fmt.Sprintf("%-18s %s %s", label, style.Render(bar), f.styles.Score.Render(fmt.Sprintf("%3.0f", score)))
}

func (f *CLIFormatter) formatPredictions(p model.Predictions) string {
	rows := []string{
		f.styles.Subtitle.Render(fmt.Sprintf("Outlook: %s", p.Trend)),
		fmt.Sprintf("Next week:  %s", FormatUSD(p.NextWeekBalance)),
		fmt.Sprintf("Next month: %s", FormatUSD(p.NextMonthBalance)),
	}
	if p.Summary != "" {
		rows = append(rows, f.styles.Info.Render(p.Summary))
	}
	return strings.Join(rows, "\n")
}

func (f *CLIFormatter) formatInsight(in Insight) string {
	style := f.styles.Normal
	if in.Type == InsightWarnings {
		style = f.styles.Warning
	}
	title := f.styles.Subtitle.Render(in.Title)
	conf := f.styles.Subtle.Render(fmt.Sprintf("Confidence: %.0f%%", in.Confidence))
	return fmt.Sprintf("%s\n%s\n%s", title, style.Render(in.Content), conf)
}

func clampUnit(v float64) float64 {
	switch {
	case v < 0:
		return 0
	case v > 1:
		return 1
	default:
		return v
	}
}

// truncate shortens s to n runes, marking the cut with an ellipsis.
func truncate(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	if n <= 1 {
		return string(r[:n])
	}
	return string(r[:n-1]) + "…"
}
