package analysis

import (
	"bytes"
	"embed"
	"fmt"
	"strings"
	"text/template"
	"time"

	"github.com/Veraticus/wealthease/internal/metrics"
	"github.com/Veraticus/wealthease/internal/model"
)

//go:embed templates/*.tmpl
var templateFS embed.FS

// AnalysisSystemPrompt frames the model as a financial advisor.
const AnalysisSystemPrompt = "You are a professional financial advisor AI. Analyze transaction data and provide detailed, actionable insights. Always respond with valid JSON format as requested."

// RecentLimit is how many trailing transactions are listed in the analysis prompt.
const RecentLimit = 30

// PromptBuilder renders the embedded prompt templates.
type PromptBuilder struct {
	templates map[string]*template.Template
}

// NewPromptBuilder creates a PromptBuilder with all templates loaded.
func NewPromptBuilder() (*PromptBuilder, error) {
	pb := &PromptBuilder{
		templates: make(map[string]*template.Template),
	}

	funcMap := template.FuncMap{
		"formatAmount":  formatAmount,
		"formatPercent": formatPercent,
		"formatDate":    formatDate,
		"describe":      describe,
		"upper":         upper,
	}

	for _, name := range []string{"analysis_prompt", "extraction_prompt"} {
		filename := fmt.Sprintf("templates/%s.tmpl", name)
		tmpl, err := template.New(name + ".tmpl").Funcs(funcMap).ParseFS(templateFS, filename)
		if err != nil {
			return nil, fmt.Errorf("failed to parse template %s: %w", name, err)
		}
		pb.templates[name] = tmpl
	}

	return pb, nil
}

// PromptData is everything the analysis prompt embeds.
type PromptData struct {
	Summary    metrics.Summary
	Profile    model.UserProfile
	Recent     []model.Transaction
	Categories []metrics.CategoryTotal
}

// NewPromptData aggregates txns relative to now.
func NewPromptData(name string, txns []model.Transaction, now time.Time) PromptData {
	summary := metrics.Compute(txns, now)
	return PromptData{
		Summary:    summary,
		Profile:    summary.Profile(name),
		Recent:     recent(txns, RecentLimit),
		Categories: metrics.SortedCategories(summary.CategoryBreakdown),
	}
}

// BuildAnalysisPrompt renders the analysis request.
func (pb *PromptBuilder) BuildAnalysisPrompt(data PromptData) (string, error) {
	var buf bytes.Buffer
	if err := pb.templates["analysis_prompt"].ExecuteTemplate(&buf, "analysis_prompt.tmpl", data); err != nil {
		return "", fmt.Errorf("failed to execute analysis_prompt template: %w", err)
	}
	return buf.String(), nil
}

// BuildExtractionPrompt renders the chatbot system prompt for the given day.
func (pb *PromptBuilder) BuildExtractionPrompt(today time.Time) (string, error) {
	data := struct{ Today string }{Today: today.UTC().Format(model.DateLayout)}

	var buf bytes.Buffer
	if err := pb.templates["extraction_prompt"].ExecuteTemplate(&buf, "extraction_prompt.tmpl", data); err != nil {
		return "", fmt.Errorf("failed to execute extraction_prompt template: %w", err)
	}
	return buf.String(), nil
}

// recent returns the last n countable transactions in input order.
func recent(txns []model.Transaction, n int) []model.Transaction {
	out := make([]model.Transaction, 0, n)
	for i := len(txns) - 1; i >= 0 && len(out) < n; i-- {
		if txns[i].Countable() {
			out = append(out, txns[i])
		}
	}
	for i, j := 0, len(out)-1; i < j; i, j = i+1, j-1 {
		out[i], out[j] = out[j], out[i]
	}
	return out
}

func formatAmount(v float64) string {
	return fmt.Sprintf("%.2f", v)
}

func formatPercent(v float64) string {
	return fmt.Sprintf("%.1f", v)
}

func formatDate(t time.Time) string {
	if t.IsZero() {
		return "undated"
	}
	return t.Format(model.DateLayout)
}

func describe(s string) string {
	if strings.TrimSpace(s) == "" {
		return "No description"
	}
	return s
}

func upper(v any) string {
	return strings.ToUpper(fmt.Sprint(v))
}
