package charts

import (
	"bytes"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/wcharczuk/go-chart/v2"
	"golang.org/x/sync/errgroup"

	"restaurant-insights/models"
	"restaurant-insights/services"
	"restaurant-insights/utils"
)

const (
	chartHeight  = 480
	minWidth     = 640
	barWidth     = 48
	barSpacing   = 16
	labelRunes   = 18
	defaultLimit = 4
)

// Artifact is one rendered chart file.
type Artifact struct {
	Operation string
	Path      string
}

// series is the bar form of one outcome.
type series struct {
	Title string
	Bars  []chart.Value
}

// Renderer writes one SVG chart per successful analysis into <dir>/charts.
type Renderer struct {
	dir    string
	logger *utils.Logger
	limit  int
}

// NewRenderer returns a Renderer writing under outDir. limit bounds the number
// of charts rendered at once; values below 1 fall back to a small default.
func NewRenderer(outDir string, limit int, logger *utils.Logger) *Renderer {
	if limit < 1 {
		limit = defaultLimit
	}
	return &Renderer{dir: filepath.Join(outDir, "charts"), logger: logger, limit: limit}
}

// Dir is the directory charts are written to.
func (r *Renderer) Dir() string { return r.dir }

// Render writes a chart for every successful outcome that has a chart form.
// A chart that fails does not stop the others: every chart written comes
// back in outcome order, together with the joined errors of those that
// failed.
func (r *Renderer) Render(outcomes []services.Outcome) ([]Artifact, error) {
	if err := os.MkdirAll(r.dir, 0755); err != nil {
		return nil, fmt.Errorf("charts: create dir: %w", err)
	}

	names := utils.NewStringSet()
	slots := make([]*Artifact, len(outcomes))
	errs := make([]error, len(outcomes))

	var g errgroup.Group
	g.SetLimit(r.limit)

	for i, o := range outcomes {
		if !o.OK() {
			continue
		}
		s, ok := chartFor(o)
		if !ok {
			r.logger.Debug("[charts] %s has no chart form, skipping", o.Name)
			continue
		}
		if len(s.Bars) == 0 {
			r.logger.Debug("[charts] %s has nothing to plot, skipping", o.Name)
			continue
		}
		if !names.Add(o.Name) {
			errs[i] = fmt.Errorf("charts: duplicate artifact name %q", o.Name)
			continue
		}

		name := o.Name
		path := filepath.Join(r.dir, name+".svg")
		g.Go(func() error {
			if err := writeSVG(path, s); err != nil {
				errs[i] = fmt.Errorf("charts: %s: %w", name, err)
				return nil
			}
			slots[i] = &Artifact{Operation: name, Path: path}
			return nil
		})
	}
	_ = g.Wait()

	var out []Artifact
	for _, a := range slots {
		if a != nil {
			out = append(out, *a)
		}
	}
	err := errors.Join(errs...)
	if err != nil {
		r.logger.Warn("[charts] %d charts written to %s, some failed", len(out), r.dir)
		return out, err
	}
	r.logger.Info("[charts] %d charts written to %s", len(out), r.dir)
	return out, nil
}

// chartFor maps an outcome value to its bar series. The top reviewed
// restaurant is a single row and has no chart.
func chartFor(o services.Outcome) (series, bool) {
	switch v := o.Value.(type) {
	case []models.CategoryTotal:
		s := series{Title: "Top categories by total reviews"}
		for _, t := range v {
			s.add(t.Category, float64(t.Reviews))
		}
		return s, true
	case [2]models.OnlineOrderAverage:
		s := series{Title: "Average reviews by online ordering"}
		for _, b := range v {
			label := "No online order"
			if b.OnlineOrder {
				label = "Online order"
			}
			s.add(label, b.Mean)
		}
		return s, true
	case []models.CategoryDish:
		s := series{Title: "Most popular dish per category"}
		for _, d := range v {
			s.add(d.Category+": "+d.Dish, float64(d.Count))
		}
		return s, true
	case models.Distribution:
		s := series{Title: "Review count distribution"}
		for _, b := range v.Buckets {
			s.add(fmt.Sprintf("%.0f-%.0f", b.Lower, b.Upper), float64(b.Count))
		}
		return s, true
	case []models.CategoryShare:
		s := series{Title: "Share of total reviews by category (%)"}
		for _, c := range v {
			s.add(c.Category, c.Percent)
		}
		return s, true
	case []models.CategoryTop:
		s := series{Title: "Reviews of the top restaurants per category"}
		for _, g := range v {
			sum := 0
			for _, r := range g.Rows {
				sum += r.ReviewCount
			}
			s.add(g.Category, float64(sum))
		}
		return s, true
	}
	return series{}, false
}

func (s *series) add(label string, value float64) {
	s.Bars = append(s.Bars, chart.Value{Label: utils.Truncate(label, labelRunes), Value: value})
}

// barChart lays the series out as a vertical bar chart. The y range is pinned
// to [0, peak] so a single bar or an all-zero series still has a valid range.
func barChart(s series) chart.BarChart {
	peak := 0.0
	for _, b := range s.Bars {
		peak = max(peak, b.Value)
	}
	if peak <= 0 {
		peak = 1
	}
	return chart.BarChart{
		Title: s.Title,
		Background: chart.Style{
			Padding: chart.Box{Top: 40},
		},
		Width:      max(minWidth, 120+len(s.Bars)*(barWidth+barSpacing)),
		Height:     chartHeight,
		BarWidth:   barWidth,
		BarSpacing: barSpacing,
		YAxis: chart.YAxis{
			Range: &chart.ContinuousRange{Min: 0, Max: peak},
		},
		Bars: s.Bars,
	}
}

// renderSVG draws s as SVG. Output is a pure function of s.
func renderSVG(s series) ([]byte, error) {
	var buf bytes.Buffer
	if err := barChart(s).Render(chart.SVG, &buf); err != nil {
		return nil, fmt.Errorf("render svg: %w", err)
	}
	return buf.Bytes(), nil
}

func writeSVG(path string, s series) error {
	b, err := renderSVG(s)
	if err != nil {
		return err
	}
	return os.WriteFile(path, b, 0644)
}
