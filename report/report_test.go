package report

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"restaurant-insights/charts"
	"restaurant-insights/models"
	"restaurant-insights/services"
	"restaurant-insights/utils"
)

func sampleDocument(outDir string) Document {
	chart := func(op string) charts.Artifact {
		return charts.Artifact{Operation: op, Path: filepath.Join(outDir, "charts", op+".svg")}
	}
	return Document{
		RunID:       "run-42",
		Input:       "data/restaurants.csv",
		GeneratedAt: time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC),
		Rows:        12345,
		Stats:       models.CleaningStats{RepairedReviews: 3},
		Outcomes: []services.Outcome{
			{Name: services.OpTopCategories, Value: []models.CategoryTotal{{Category: "Italian", Reviews: 10}}},
			{Name: services.OpPopularDish, Err: &models.AggregationError{Op: services.OpPopularDish, Cause: models.ErrUnavailable}},
			{Name: services.OpTopReviewed, Value: models.Restaurant{Title: "Fish & Co", Category: "Seafood", ReviewCount: 2500}},
		},
		Charts: []charts.Artifact{
			chart(services.OpCategoryShare),
			chart(services.OpTopCategories),
			chart(services.OpTopNPerCategory),
			chart(services.OpReviewDistribution),
		},
	}
}

func TestBuildIncludesFixedSectionsAndChartSubset(t *testing.T) {
	dir := t.TempDir()
	a := NewAssembler(dir, "", utils.Discard())

	b, err := a.Build(sampleDocument(dir))
	require.NoError(t, err)
	html := string(b)

	assert.Contains(t, html, "<title>Restaurant Review Insights</title>")
	assert.Contains(t, html, "<h2>Summary</h2>")
	assert.Contains(t, html, "<h2>Conclusions</h2>")
	assert.Contains(t, html, "12,345 restaurants analysed, 3 review counts repaired")
	assert.Contains(t, html, "Run run-42")

	// report order, not artifact order; top_n_per_category is not in the report
	top := strings.Index(html, `src="charts/top_categories_by_reviews.svg"`)
	dist := strings.Index(html, `src="charts/review_count_distribution.svg"`)
	share := strings.Index(html, `src="charts/category_review_share.svg"`)
	require.True(t, top > 0 && dist > 0 && share > 0, html)
	assert.True(t, top < dist && dist < share)
	assert.NotContains(t, html, "top_n_per_category.svg")
	assert.NotContains(t, html, "avg_reviews_by_online_order.svg")

	assert.Contains(t, html, "Fish &amp; Co (Seafood) with 2,500 reviews")
	assert.Contains(t, html, "popular_dish_by_category: ")
}

func TestBuildWithoutTopReviewed(t *testing.T) {
	a := NewAssembler(t.TempDir(), "", utils.Discard())
	b, err := a.Build(Document{Title: "Custom <Title>"})
	require.NoError(t, err)
	html := string(b)
	assert.Contains(t, html, "Custom &lt;Title&gt;")
	assert.NotContains(t, html, "Top reviewed restaurant")
	assert.NotContains(t, html, "<img")
}

func TestWriteStoresReportHTML(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "out")
	a := NewAssembler(dir, "", utils.Discard())
	path, err := a.Write(sampleDocument(dir))
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(dir, "report.html"), path)

	b, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(string(b), "<!DOCTYPE html>"))
}

func TestWritePDF(t *testing.T) {
	if findChromeBinary("") == "" {
		t.Skip("no Chrome binary available")
	}
	dir := t.TempDir()
	a := NewAssembler(dir, "", utils.Discard())
	htmlPath, err := a.Write(sampleDocument(dir))
	require.NoError(t, err)

	pdfPath := filepath.Join(dir, "report.pdf")
	err = a.WritePDF(context.Background(), htmlPath, pdfPath)
	if errors.Is(err, ErrChromeNotFound) {
		t.Skip(err)
	}
	require.NoError(t, err)

	b, err := os.ReadFile(pdfPath)
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(string(b), "%PDF"))
}

func TestFindChromeBinaryPrefersConfigured(t *testing.T) {
	t.Setenv("CHROME_BIN", "/from/env")
	assert.Equal(t, "/custom/chrome", findChromeBinary("/custom/chrome"))
	assert.NotEqual(t, "/from/env", findChromeBinary(""), "environment is read through config only")
}
