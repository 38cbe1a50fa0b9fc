package reports

import (
	"bytes"
	"encoding/json"
	"fmt"
	"html/template"
	"time"

	"github.com/cpsc/analytics/application/queries"
	"github.com/cpsc/analytics/pkg/calc"
)

// reportTitles maps report types to their page titles
var reportTitles = map[string]string{
	"cash_flow":     "Cash Flow Report",
	"category":      "Spending Categories Report",
	"goal":          "Goal Progress Report",
	"network":       "Financial Network Report",
	"health_score":  "Financial Health Report",
	"comprehensive": "Comprehensive Financial Report",
}

// sectionHeadings maps comprehensive report sections to display names
var sectionHeadings = map[string]string{
	"cash_flow":    "Cash Flow",
	"category":     "Spending Categories",
	"goal":         "Goals",
	"health_score": "Financial Health",
}

// Renderer renders analytics results into self-contained HTML reports
type Renderer struct {
	template *template.Template
	now      func() time.Time
}

// NewRenderer creates a new HTML report renderer
func NewRenderer() (*Renderer, error) {
	tmpl, err := template.New("report").Parse(reportTemplate)
	if err != nil {
		return nil, fmt.Errorf("failed to parse report template: %w", err)
	}
	return &Renderer{
		template: tmpl,
		now:      time.Now,
	}, nil
}

// metricCard is one headline number on the report
type metricCard struct {
	Label string
	Value string
}

// reportSection is one block of the report body
type reportSection struct {
	Heading string
	Cards   []metricCard
	Detail  string
}

// reportPage is the data fed to the page template
type reportPage struct {
	Title       string
	UserName    string
	GeneratedAt string
	Sections    []reportSection
}

// Render produces the HTML report for one analytics payload. A
// comprehensive payload is a map of section name to section data.
func (r *Renderer) Render(reportType, userName string, data interface{}) ([]byte, error) {
	title, ok := reportTitles[reportType]
	if !ok {
		return nil, fmt.Errorf("unknown report type: %s", reportType)
	}

	page := reportPage{
		Title:       title,
		UserName:    userName,
		GeneratedAt: r.now().UTC().Format("January 2, 2006 15:04 MST"),
	}

	if sections, isComprehensive := data.(map[string]interface{}); isComprehensive {
		// Fixed order keeps comprehensive reports stable across runs
		for _, name := range []string{"cash_flow", "category", "goal", "health_score"} {
			sectionData, present := sections[name]
			if !present {
				continue
			}
			section, err := buildSection(sectionHeadings[name], sectionData)
			if err != nil {
				return nil, err
			}
			page.Sections = append(page.Sections, section)
		}
	} else {
		section, err := buildSection("", data)
		if err != nil {
			return nil, err
		}
		page.Sections = []reportSection{section}
	}

	var buf bytes.Buffer
	if err := r.template.Execute(&buf, page); err != nil {
		return nil, fmt.Errorf("failed to render report: %w", err)
	}
	return buf.Bytes(), nil
}

// buildSection extracts headline cards for known result types and keeps
// the full payload as formatted detail
func buildSection(heading string, data interface{}) (reportSection, error) {
	detail, err := json.MarshalIndent(data, "", "  ")
	if err != nil {
		return reportSection{}, fmt.Errorf("failed to encode report data: %w", err)
	}

	return reportSection{
		Heading: heading,
		Cards:   headlineCards(data),
		Detail:  string(detail),
	}, nil
}

func headlineCards(data interface{}) []metricCard {
	switch result := data.(type) {
	case *queries.CashFlowResult:
		cards := []metricCard{
			{Label: "Total Deposits", Value: money(result.Summary.TotalDeposits)},
			{Label: "Total Withdrawals", Value: money(result.Summary.TotalWithdrawals)},
			{Label: "Net Cash Flow", Value: money(result.Summary.NetCashFlow)},
		}
		if result.Metrics != nil {
			cards = append(cards, metricCard{
				Label: "Savings Rate",
				Value: percent(result.Metrics.SavingsRate),
			})
		}
		return cards
	case *queries.CategoriesResult:
		cards := []metricCard{
			{Label: "Total Spending", Value: money(result.Summary.TotalAmount)},
			{Label: "Transactions", Value: fmt.Sprintf("%d", result.Summary.TransactionCount)},
			{Label: "Categories", Value: fmt.Sprintf("%d", result.Summary.UniqueCategories)},
		}
		if len(result.TopCategories) > 0 {
			cards = append(cards, metricCard{
				Label: "Top Category",
				Value: result.TopCategories[0].Name,
			})
		}
		return cards
	case *queries.GoalsResult:
		return []metricCard{
			{Label: "Total Goals", Value: fmt.Sprintf("%d", result.Summary.TotalGoals)},
			{Label: "Active", Value: fmt.Sprintf("%d", result.Summary.ActiveGoals)},
			{Label: "Completed", Value: fmt.Sprintf("%d", result.Summary.CompletedGoals)},
			{Label: "Overall Progress", Value: percent(result.Summary.OverallProgress)},
		}
	case *queries.NetworkResult:
		return []metricCard{
			{Label: "Graph", Value: result.GraphType},
			{Label: "Nodes", Value: fmt.Sprintf("%d", result.GraphStats.Nodes)},
			{Label: "Edges", Value: fmt.Sprintf("%d", result.GraphStats.Edges)},
			{Label: "Communities", Value: fmt.Sprintf("%d", result.Communities.NumCommunities)},
		}
	case *queries.HealthResult:
		return []metricCard{
			{Label: "Overall Score", Value: fmt.Sprintf("%.1f", result.OverallScore)},
			{Label: "Rating", Value: result.Rating},
			{Label: "Savings Rate Score", Value: fmt.Sprintf("%.1f", result.Components.SavingsRate.Score)},
			{Label: "Goal Progress Score", Value: fmt.Sprintf("%.1f", result.Components.GoalProgress.Score)},
		}
	}
	return nil
}

func money(amount float64) string {
	return fmt.Sprintf("$%.2f", calc.Round2(amount))
}

func percent(value float64) string {
	return fmt.Sprintf("%.1f%%", value)
}

const reportTemplate = `<!DOCTYPE html>
<html lang="en">
<head>
<meta charset="UTF-8">
<meta name="viewport" content="width=device-width, initial-scale=1.0">
<title>{{.Title}}</title>
<style>
* { margin: 0; padding: 0; box-sizing: border-box; }
body {
  font-family: -apple-system, BlinkMacSystemFont, 'Segoe UI', Roboto, sans-serif;
  background: #f5f7fa;
  color: #333;
  line-height: 1.6;
}
.container { max-width: 1400px; margin: 0 auto; padding: 20px; }
.header {
  background: linear-gradient(135deg, #667eea 0%, #764ba2 100%);
  color: white;
  padding: 40px 20px;
  border-radius: 12px;
  margin-bottom: 30px;
}
.header h1 { font-size: 2.5em; margin-bottom: 10px; }
.header .meta { opacity: 0.9; font-size: 0.95em; }
.report-section { margin-bottom: 30px; }
.report-section h2 { margin-bottom: 15px; }
.metrics-grid {
  display: grid;
  grid-template-columns: repeat(auto-fit, minmax(250px, 1fr));
  gap: 20px;
  margin-bottom: 20px;
}
.metric-card {
  background: white;
  padding: 25px;
  border-radius: 12px;
  box-shadow: 0 2px 4px rgba(0,0,0,0.1);
}
.metric-card .label {
  color: #666;
  font-size: 0.9em;
  text-transform: uppercase;
  letter-spacing: 0.05em;
}
.metric-card .value { font-size: 1.8em; font-weight: 600; }
.detail {
  background: white;
  padding: 20px;
  border-radius: 12px;
  box-shadow: 0 2px 4px rgba(0,0,0,0.1);
  overflow-x: auto;
  font-size: 0.85em;
}
</style>
</head>
<body>
<div class="container">
  <div class="header">
    <h1>{{.Title}}</h1>
    <div class="meta">{{if .UserName}}Prepared for {{.UserName}} &middot; {{end}}Generated {{.GeneratedAt}}</div>
  </div>
  {{range .Sections}}
  <div class="report-section">
    {{if .Heading}}<h2>{{.Heading}}</h2>{{end}}
    {{if .Cards}}
    <div class="metrics-grid">
      {{range .Cards}}
      <div class="metric-card">
        <div class="label">{{.Label}}</div>
        <div class="value">{{.Value}}</div>
      </div>
      {{end}}
    </div>
    {{end}}
    <pre class="detail">{{.Detail}}</pre>
  </div>
  {{end}}
</div>
</body>
</html>
`
