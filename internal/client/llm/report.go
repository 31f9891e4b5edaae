package llm

import (
	"encoding/json"
	"fmt"
	"sort"
	"strconv"
	"strings"

	"github.com/icancodefyi/sarthi-ai/internal/model"
)

const defaultConfidenceScore = 75

type rawReport struct {
	ExecutiveSummary       *string  `json:"executiveSummary"`
	InsightHighlights      []string `json:"insightHighlights"`
	AnomalyExplanations    []string `json:"anomalyExplanations"`
	RiskReasoning          *string  `json:"riskReasoning"`
	ForecastNarrative      *string  `json:"forecastNarrative"`
	ContextualNews         []string `json:"contextualNews"`
	CertificationReasoning *string  `json:"certificationReasoning"`
	ConfidenceScore        any      `json:"confidenceScore"`
}

// ParseReport decodes the model's JSON answer. Missing fields get defaults;
// a confidence score that is not a number becomes 75.
func ParseReport(content string) (*model.AIReport, error) {
	content = strings.TrimSpace(content)
	if content == "" {
		content = "{}"
	}

	var raw rawReport
	if err := json.Unmarshal([]byte(content), &raw); err != nil {
		return nil, fmt.Errorf("model returned invalid JSON: %w", err)
	}

	report := &model.AIReport{
		ExecutiveSummary:       orDefault(raw.ExecutiveSummary, "No summary available."),
		InsightHighlights:      orEmpty(raw.InsightHighlights),
		AnomalyExplanations:    orEmpty(raw.AnomalyExplanations),
		RiskReasoning:          orDefault(raw.RiskReasoning, "No risk reasoning available."),
		ForecastNarrative:      orDefault(raw.ForecastNarrative, "No forecast narrative available."),
		ContextualNews:         orEmpty(raw.ContextualNews),
		CertificationReasoning: orDefault(raw.CertificationReasoning, "No certification reasoning available."),
		ConfidenceScore:        defaultConfidenceScore,
	}
	if score, ok := raw.ConfidenceScore.(float64); ok {
		report.ConfidenceScore = score
	}

	return report, nil
}

func orDefault(s *string, def string) string {
	if s == nil {
		return def
	}
	return *s
}

func orEmpty(s []string) []string {
	if s == nil {
		return []string{}
	}
	return s
}

// BuildPrompt summarizes the analytics for the model and pins the JSON shape
// of the answer
func BuildPrompt(datasetName string, a *model.Analytics) string {
	var b strings.Builder

	b.WriteString("You are an expert data analyst. Analyze the following dataset statistics and return a JSON object with EXACTLY these keys:\n\n")
	fmt.Fprintf(&b, "Dataset: %q\n", datasetName)
	fmt.Fprintf(&b, "Total Records: %d\n", a.TotalRecords)
	if a.DateRange != nil {
		fmt.Fprintf(&b, "Date Range: %s to %s\n", a.DateRange.Min, a.DateRange.Max)
	} else {
		b.WriteString("Date Range: Not detected\n")
	}
	if a.GrowthPercent != nil {
		fmt.Fprintf(&b, "Growth %%: %s\n", formatFloat(*a.GrowthPercent))
	} else {
		b.WriteString("Growth %: N/A\n")
	}
	fmt.Fprintf(&b, "Risk Score: %s/100\n", formatFloat(a.RiskScore))
	fmt.Fprintf(&b, "Anomaly Count: %d\n", len(a.Anomalies))

	b.WriteString("\nNumeric Summary:\n")
	cols := make([]string, 0, len(a.NumericSummary))
	for col := range a.NumericSummary {
		cols = append(cols, col)
	}
	sort.Strings(cols)
	if len(cols) > 4 {
		cols = cols[:4]
	}
	for _, col := range cols {
		s := a.NumericSummary[col]
		fmt.Fprintf(&b, "%s: mean=%s, stdDev=%s, min=%s, max=%s\n",
			col, formatFloat(s.Mean), formatFloat(s.StdDev), formatFloat(s.Min), formatFloat(s.Max))
	}

	b.WriteString("\nTop Anomalies:\n")
	if len(a.Anomalies) == 0 {
		b.WriteString("None detected\n")
	}
	for i, an := range a.Anomalies {
		if i == 5 {
			break
		}
		fmt.Fprintf(&b, "Row %d: %s = %s (Z-score: %s)\n", an.RowIndex, an.Column, formatFloat(an.Value), formatFloat(an.ZScore))
	}

	values := make([]string, len(a.Forecast))
	for i, f := range a.Forecast {
		values[i] = formatFloat(f.Value)
	}
	fmt.Fprintf(&b, "\nForecast (next %d periods): %s\n", len(a.Forecast), strings.Join(values, ", "))

	b.WriteString(`
Return ONLY valid JSON with this exact structure:
{
  "executiveSummary": "2-3 sentence executive summary of the dataset and key findings",
  "insightHighlights": ["insight 1", "insight 2", "insight 3", "insight 4"],
  "anomalyExplanations": ["explanation for each anomaly group in plain language"],
  "riskReasoning": "1-2 sentences explaining the risk score in context",
  "forecastNarrative": "1-2 sentences interpreting the forecast trend",
  "contextualNews": ["possible real-world factor 1", "possible real-world factor 2"],
  "certificationReasoning": "1 sentence on data quality and certification eligibility",
  "confidenceScore": 85
}`)

	return b.String()
}

func formatFloat(f float64) string {
	return strconv.FormatFloat(f, 'f', -1, 64)
}
