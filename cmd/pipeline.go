package cmd

import (
	"context"
	"errors"
	"fmt"
	"io"
	"path/filepath"
	"time"

	"github.com/google/uuid"

	"restaurant-insights/charts"
	"restaurant-insights/config"
	"restaurant-insights/models"
	"restaurant-insights/report"
	"restaurant-insights/services"
	"restaurant-insights/storage"
	"restaurant-insights/utils"
)

const previewRows = 100

// pipeline sequences one run: load, check, clean, analyse, write artifacts.
type pipeline struct {
	cfg    *config.Config
	logger *utils.Logger
	stdout io.Writer
}

// prepare loads the input and returns the validated canonical table. Every
// error it returns is fatal.
func (p *pipeline) prepare() (*models.RestaurantTable, models.CleaningStats, error) {
	raw, err := storage.LoadCSV(p.cfg.InputPath)
	if err != nil {
		return nil, models.CleaningStats{}, err
	}
	p.logger.Info("[pipeline] Loaded %d rows, %d columns from %s", len(raw.Rows), len(raw.Columns), p.cfg.InputPath)

	aliased := services.ApplyAliases(raw)
	if err := services.EnsureRequiredColumns(aliased, services.RequiredColumns...); err != nil {
		return nil, models.CleaningStats{}, err
	}

	cleaner := services.NewCleaner(p.logger)
	table, err := cleaner.CleanAliased(aliased)
	if err != nil {
		return nil, models.CleaningStats{}, err
	}
	table = services.ValidateTypes(table)

	if err := services.EnsureRequiredColumns(table, models.ColCategory, models.ColReviewCount, models.ColOnlineOrder); err != nil {
		return nil, models.CleaningStats{}, err
	}
	return table, cleaner.Stats(), nil
}

// run executes the whole pipeline and returns the manifest it wrote.
func (p *pipeline) run(ctx context.Context) (*storage.Manifest, error) {
	started := time.Now().UTC()
	m := &storage.Manifest{
		RunID:     uuid.NewString(),
		StartedAt: started,
		Input:     p.cfg.InputPath,
	}
	p.logger.Info("=== Restaurant insights run %s starting ===", m.RunID)
	p.logger.Info("Config: top_n %d | bins %d | parallel %v | store %s | report %v",
		p.cfg.TopN, p.cfg.Bins, p.cfg.Parallel, p.cfg.Store, p.cfg.GenerateReport)

	table, stats, err := p.prepare()
	if err != nil {
		return nil, err
	}
	m.Fingerprint = models.Fingerprint(table)
	m.Rows = table.Len()
	m.Missing = stats.MissingByColumn
	m.Repaired = stats.RepairedReviews

	out := p.cfg.OutputDir
	if err := p.writeTables(table, m); err != nil {
		return nil, err
	}

	analysed := p.roundTripStore(table, m.Fingerprint)

	insights := services.NewInsightService(p.logger)
	params := services.Params{TopN: p.cfg.TopN, Bins: p.cfg.Bins}
	var outcomes []services.Outcome
	if p.cfg.Parallel {
		outcomes = insights.RunAllParallel(analysed, params, p.cfg.Workers)
	} else {
		outcomes = insights.RunAll(analysed, params)
	}
	insights.Print(p.stdout, outcomes)

	chartPaths := make(map[string]string)
	renderer := charts.NewRenderer(out, p.cfg.Workers, p.logger)
	artifacts, err := renderer.Render(outcomes)
	if err != nil {
		p.logger.Error("Some charts failed, %d written: %v", len(artifacts), err)
	}
	for _, a := range artifacts {
		chartPaths[a.Operation] = p.addArtifact(m, a.Path)
	}

	for _, o := range outcomes {
		status := storage.OperationStatus{Name: o.Name, OK: o.OK(), Artifact: chartPaths[o.Name]}
		if !o.OK() {
			status.Error = o.Err.Error()
		}
		if o.Name == services.OpTopNPerCategory && o.OK() {
			path := filepath.Join(out, "top_n_per_category.csv")
			if err := writeTopN(path, o.Value.([]models.CategoryTop)); err != nil {
				p.logger.Error("Top-n table write failed: %v", err)
			} else {
				status.Artifact = p.addArtifact(m, path)
			}
		}
		m.Operations = append(m.Operations, status)
	}

	if p.cfg.GenerateReport {
		p.writeReport(ctx, m, stats, outcomes, artifacts)
	}

	manifestPath := filepath.Join(out, "manifest.yaml")
	if err := storage.WriteManifest(manifestPath, m); err != nil {
		return nil, err
	}
	p.logger.Info("=== Done in %s. Artifacts under %s, manifest %s ===",
		time.Since(started).Round(time.Millisecond), out, manifestPath)
	return m, nil
}

// writeTables writes the preview, the full cleaned CSV and its Parquet copy.
func (p *pipeline) writeTables(table *models.RestaurantTable, m *storage.Manifest) error {
	out := p.cfg.OutputDir
	for _, w := range []struct {
		name  string
		table *models.RestaurantTable
	}{
		{"preview_data.csv", table.Head(previewRows)},
		{"cleaned_data.csv", table},
	} {
		csvWriter, err := storage.NewCSVWriter(filepath.Join(out, w.name))
		if err != nil {
			return err
		}
		err = csvWriter.WriteTable(w.table, 0)
		if cerr := csvWriter.Close(); err == nil {
			err = cerr
		}
		if err != nil {
			return fmt.Errorf("write %s: %w", w.name, err)
		}
		p.addArtifact(m, csvWriter.Path())
	}

	path := filepath.Join(out, "cleaned_data.parquet")
	if err := storage.WriteParquet(path, table); err != nil {
		return err
	}
	p.addArtifact(m, path)
	p.logger.Info("Cleaned dataset (%d rows) written to %s", table.Len(), out)
	return nil
}

// roundTripStore persists the table and returns what the store gives back.
// Store failures are logged and the in-memory table is used instead.
func (p *pipeline) roundTripStore(table *models.RestaurantTable, dataset string) *models.RestaurantTable {
	if p.cfg.Store == config.StoreNone {
		return table
	}

	store, err := p.openStore()
	if err != nil {
		p.logger.Error("Failed to open %s store: %v", p.cfg.Store, err)
		return table
	}
	defer store.Close()

	if err := store.Write(dataset, table); err != nil {
		p.logger.Error("%s write failed: %v", p.cfg.Store, err)
		return table
	}
	p.logger.Info("Cleaned table stored in %s (dataset %s)", p.cfg.Store, dataset)

	stored, err := store.FetchAll(dataset)
	if err != nil {
		p.logger.Error("Failed to fetch restaurants from %s for insights: %v", p.cfg.Store, err)
		return table
	}
	return services.ValidateTypes(stored)
}

func (p *pipeline) openStore() (storage.RestaurantStore, error) {
	switch p.cfg.Store {
	case config.StorePostgres:
		store, err := storage.NewPostgresStore(p.cfg.DSN(), &utils.RetryConfig{
			MaxAttempts: 5,
			BaseDelay:   time.Second,
			MaxDelay:    8 * time.Second,
			Logger:      p.logger,
		})
		if err != nil {
			return nil, err
		}
		return store, nil
	case config.StoreSQLite:
		store, err := storage.NewSQLiteStore(p.cfg.SQLitePath)
		if err != nil {
			return nil, err
		}
		return store, nil
	}
	return nil, fmt.Errorf("unknown store %q", p.cfg.Store)
}

func (p *pipeline) writeReport(ctx context.Context, m *storage.Manifest, stats models.CleaningStats,
	outcomes []services.Outcome, artifacts []charts.Artifact) {
	assembler := report.NewAssembler(p.cfg.OutputDir, p.cfg.ChromeBin, p.logger)
	htmlPath, err := assembler.Write(report.Document{
		RunID:       m.RunID,
		Input:       m.Input,
		GeneratedAt: m.StartedAt,
		Rows:        m.Rows,
		Stats:       stats,
		Outcomes:    outcomes,
		Charts:      artifacts,
	})
	if err != nil {
		p.logger.Error("Report assembly failed: %v", err)
		return
	}
	p.addArtifact(m, htmlPath)

	pdfPath := filepath.Join(p.cfg.OutputDir, "report.pdf")
	if err := assembler.WritePDF(ctx, htmlPath, pdfPath); err != nil {
		if errors.Is(err, report.ErrChromeNotFound) {
			p.logger.Warn("PDF skipped: %v (HTML report kept at %s)", err, htmlPath)
			return
		}
		p.logger.Error("PDF generation failed: %v", err)
		return
	}
	p.addArtifact(m, pdfPath)
}

// addArtifact records path relative to the output directory.
func (p *pipeline) addArtifact(m *storage.Manifest, path string) string {
	rel, err := filepath.Rel(p.cfg.OutputDir, path)
	if err != nil {
		rel = path
	}
	rel = filepath.ToSlash(rel)
	m.Artifacts = append(m.Artifacts, rel)
	return rel
}

func writeTopN(path string, groups []models.CategoryTop) error {
	w, err := storage.NewCSVWriter(path)
	if err != nil {
		return err
	}
	if err := w.WriteTopN(groups); err != nil {
		w.Close()
		return err
	}
	return w.Close()
}
