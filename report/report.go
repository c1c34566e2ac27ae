package report

import (
	"bytes"
	"fmt"
	"html/template"
	"os"
	"path/filepath"
	"time"

	"golang.org/x/text/language"
	"golang.org/x/text/message"

	"restaurant-insights/charts"
	"restaurant-insights/models"
	"restaurant-insights/services"
	"restaurant-insights/utils"
)

// reportCharts is the subset of charts placed in the document, in order.
var reportCharts = []struct {
	Op      string
	Caption string
}{
	{services.OpTopCategories, "Top categories by total reviews"},
	{services.OpAvgByOnlineOrder, "Average reviews with and without online ordering"},
	{services.OpReviewDistribution, "Distribution of review counts"},
	{services.OpCategoryShare, "Share of all reviews held by the leading categories"},
}

const summaryText = `This report summarises the restaurant listings after cleaning. Review
counts were parsed tolerantly: unreadable or missing counts were recorded as zero
instead of dropping the restaurant. Online ordering is true only where the listing
said "yes". The figures below rank categories by the reviews they attract, compare
restaurants with and without online ordering, and show how review counts are spread.`

const conclusionsText = `Review volume concentrates in a small number of categories,
so the leading categories dominate the share of all reviews. Comparing the online
ordering groups indicates whether offering online orders goes together with more
customer engagement. The distribution is typically skewed: most restaurants collect
few reviews while a handful collect very many, which is why the median is reported
alongside the extremes.`

// Document is everything the report needs from one run.
type Document struct {
	Title       string
	RunID       string
	Input       string
	GeneratedAt time.Time
	Rows        int
	Stats       models.CleaningStats
	Outcomes    []services.Outcome
	Charts      []charts.Artifact
}

type figure struct {
	Caption string
	Src     string
}

type view struct {
	Title       string
	RunID       string
	Input       string
	GeneratedAt string
	Rows        string
	Repaired    string
	Summary     string
	Conclusions string
	Figures     []figure
	TopReviewed string
	Failed      []string
}

// Assembler turns run outcomes and chart artifacts into an HTML report that
// can be printed to PDF.
type Assembler struct {
	outDir    string
	chromeBin string
	logger    *utils.Logger
	retry     utils.RetryConfig
}

// NewAssembler returns an Assembler writing under outDir. chromeBin is the
// browser used for PDF output; empty means search the usual places.
func NewAssembler(outDir, chromeBin string, logger *utils.Logger) *Assembler {
	return &Assembler{
		outDir:    outDir,
		chromeBin: chromeBin,
		logger:    logger,
		retry:     utils.RetryConfig{MaxAttempts: 2, BaseDelay: time.Second, MaxDelay: 5 * time.Second, Logger: logger},
	}
}

// Build renders the HTML document. Chart sources are relative to the
// output directory.
func (a *Assembler) Build(doc Document) ([]byte, error) {
	p := message.NewPrinter(language.English)
	v := view{
		Title:       doc.Title,
		RunID:       doc.RunID,
		Input:       doc.Input,
		GeneratedAt: doc.GeneratedAt.UTC().Format("2006-01-02 15:04 MST"),
		Rows:        p.Sprintf("%d", doc.Rows),
		Repaired:    p.Sprintf("%d", doc.Stats.RepairedReviews),
		Summary:     summaryText,
		Conclusions: conclusionsText,
	}
	if v.Title == "" {
		v.Title = "Restaurant Review Insights"
	}

	paths := make(map[string]string, len(doc.Charts))
	for _, c := range doc.Charts {
		paths[c.Operation] = c.Path
	}
	for _, rc := range reportCharts {
		path, ok := paths[rc.Op]
		if !ok {
			a.logger.Debug("[report] no chart for %s, leaving it out", rc.Op)
			continue
		}
		src, err := filepath.Rel(a.outDir, path)
		if err != nil {
			src = path
		}
		v.Figures = append(v.Figures, figure{Caption: rc.Caption, Src: filepath.ToSlash(src)})
	}

	for _, o := range doc.Outcomes {
		if !o.OK() {
			v.Failed = append(v.Failed, fmt.Sprintf("%s: %v", o.Name, o.Err))
			continue
		}
		if r, ok := o.Value.(models.Restaurant); ok {
			v.TopReviewed = p.Sprintf("%s (%s) with %d reviews", r.Title, r.Category, r.ReviewCount)
		}
	}

	var buf bytes.Buffer
	if err := reportTemplate.Execute(&buf, v); err != nil {
		return nil, fmt.Errorf("report: render html: %w", err)
	}
	return buf.Bytes(), nil
}

// Write builds the document and stores it as report.html in the output
// directory, returning the file path.
func (a *Assembler) Write(doc Document) (string, error) {
	b, err := a.Build(doc)
	if err != nil {
		return "", err
	}
	if err := os.MkdirAll(a.outDir, 0755); err != nil {
		return "", fmt.Errorf("report: create output dir: %w", err)
	}
	path := filepath.Join(a.outDir, "report.html")
	if err := os.WriteFile(path, b, 0644); err != nil {
		return "", fmt.Errorf("report: write %q: %w", path, err)
	}
	a.logger.Info("[report] HTML report written to %s", path)
	return path, nil
}

var reportTemplate = template.Must(template.New("report").Parse(`<!DOCTYPE html>
<html lang="en">
<head>
<meta charset="utf-8">
<title>{{.Title}}</title>
<style>
body { font-family: sans-serif; margin: 2em; color: #222; }
h1 { border-bottom: 2px solid #4e79a7; }
figure { margin: 1.5em 0; page-break-inside: avoid; }
figcaption { color: #555; font-size: 0.9em; }
.meta { color: #666; font-size: 0.85em; }
</style>
</head>
<body>
<h1>{{.Title}}</h1>
<p class="meta">Run {{.RunID}} &middot; {{.Input}} &middot; {{.GeneratedAt}}</p>

<h2>Summary</h2>
<p>{{.Summary}}</p>
<p>{{.Rows}} restaurants analysed, {{.Repaired}} review counts repaired to zero.</p>
{{range .Figures}}
<figure>
<img src="{{.Src}}" alt="{{.Caption}}">
<figcaption>{{.Caption}}</figcaption>
</figure>
{{- end}}
{{if .TopReviewed}}
<h2>Top reviewed restaurant</h2>
<p>{{.TopReviewed}}</p>
{{end}}
{{- if .Failed}}
<h2>Analyses not available</h2>
<ul>
{{- range .Failed}}
<li>{{.}}</li>
{{- end}}
</ul>
{{end}}
<h2>Conclusions</h2>
<p>{{.Conclusions}}</p>
</body>
</html>
`))
