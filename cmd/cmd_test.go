package cmd

import (
	"bytes"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"restaurant-insights/config"
	"restaurant-insights/models"
	"restaurant-insights/services"
	"restaurant-insights/storage"
)

const sampleCSV = `Title,Catagory,Number of review,Online Order,Popular food
Luigi's, Italian ,"1,200",Yes,Lasagna
Sakura,Japanese,300,no,Ramen
Roma,Italian,bad,,Pizza
Nobu,Japanese,"2,500",YES,Ramen
Taco Loco,Mexican,75,No,
`

// runCmd executes the command tree in a scratch working directory.
func runCmd(t *testing.T, args ...string) (string, error) {
	t.Helper()
	t.Chdir(t.TempDir())
	var out bytes.Buffer
	root := NewRootCmd()
	root.SetOut(&out)
	root.SetErr(&out)
	root.SetArgs(args)
	err := root.Execute()
	return out.String(), err
}

func writeInput(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))
	return path
}

func TestRunWritesArtifactsAndManifest(t *testing.T) {
	input := writeInput(t, "restaurants.csv", sampleCSV)
	outDir := filepath.Join(t.TempDir(), "out")

	stdout, err := runCmd(t, "run", input, "--out", outDir, "--top-n", "1", "--bins", "5")
	require.NoError(t, err)
	assert.Contains(t, stdout, "RESTAURANT REVIEW INSIGHTS")
	assert.Contains(t, stdout, "2,500")

	for _, name := range []string{
		"preview_data.csv",
		"cleaned_data.csv",
		"cleaned_data.parquet",
		"top_n_per_category.csv",
		"manifest.yaml",
		"charts/top_categories_by_reviews.svg",
		"charts/review_count_distribution.svg",
	} {
		assert.FileExists(t, filepath.Join(outDir, name))
	}
	assert.NoFileExists(t, filepath.Join(outDir, "report.html"))

	m, err := storage.ReadManifest(filepath.Join(outDir, "manifest.yaml"))
	require.NoError(t, err)
	assert.Equal(t, input, m.Input)
	assert.Equal(t, 5, m.Rows)
	assert.Equal(t, 1, m.Repaired)
	assert.NotEmpty(t, m.RunID)
	assert.Len(t, m.Fingerprint, 16)

	require.Len(t, m.Operations, 7)
	for _, op := range m.Operations {
		assert.True(t, op.OK, "%s: %s", op.Name, op.Error)
	}
	assert.Equal(t, services.OpTopNPerCategory, m.Operations[6].Name)
	assert.Equal(t, "top_n_per_category.csv", m.Operations[6].Artifact)
	assert.Equal(t, "charts/top_categories_by_reviews.svg", m.Operations[0].Artifact)
	assert.Empty(t, m.Operations[3].Artifact, "top reviewed restaurant has no chart")
	assert.Contains(t, m.Artifacts, "cleaned_data.parquet")
}

func TestRunToleratesFailedAnalysis(t *testing.T) {
	input := writeInput(t, "restaurants.csv", "Title,Category,Number of reviews\nA,Thai,10\nB,Thai,20\n")
	outDir := t.TempDir()

	_, err := runCmd(t, "run", input, "--out", outDir, "--parallel", "--workers", "3")
	require.NoError(t, err)

	m, err := storage.ReadManifest(filepath.Join(outDir, "manifest.yaml"))
	require.NoError(t, err)
	failed := 0
	for _, op := range m.Operations {
		if !op.OK {
			failed++
			assert.Equal(t, services.OpPopularDish, op.Name)
			assert.NotEmpty(t, op.Error)
		}
	}
	assert.Equal(t, 1, failed)
	_, tracked := m.Missing[models.ColOnlineOrder]
	assert.False(t, tracked, "online_order is not an input column")
}

func TestRunRecordsChartsThatSucceeded(t *testing.T) {
	input := writeInput(t, "restaurants.csv", sampleCSV)
	outDir := t.TempDir()
	blocked := filepath.Join(outDir, "charts", services.OpTopCategories+".svg")
	require.NoError(t, os.MkdirAll(blocked, 0755))

	_, err := runCmd(t, "run", input, "--out", outDir, "--top-n", "1")
	require.NoError(t, err)

	m, err := storage.ReadManifest(filepath.Join(outDir, "manifest.yaml"))
	require.NoError(t, err)
	require.Len(t, m.Operations, 7)
	assert.Empty(t, m.Operations[0].Artifact)
	assert.True(t, m.Operations[0].OK, "the analysis itself succeeded")
	assert.Equal(t, "charts/review_count_distribution.svg", m.Operations[4].Artifact)
	assert.Contains(t, m.Artifacts, "charts/category_review_share.svg")
}

func TestRunWithSQLiteStore(t *testing.T) {
	input := writeInput(t, "restaurants.tsv", "Name\tCategory\tNumber of review\tOnline Order\nA\tThai\t10\tYes\n")
	dir := t.TempDir()
	dbPath := filepath.Join(dir, "db", "restaurants.db")

	_, err := runCmd(t, "run", input, "--out", dir, "--store", "sqlite", "--sqlite-path", dbPath)
	require.NoError(t, err)
	assert.FileExists(t, dbPath)

	store, err := storage.NewSQLiteStore(dbPath)
	require.NoError(t, err)
	defer store.Close()
	m, err := storage.ReadManifest(filepath.Join(dir, "manifest.yaml"))
	require.NoError(t, err)
	table, err := store.FetchAll(m.Fingerprint)
	require.NoError(t, err)
	require.Equal(t, 1, table.Len())
	assert.True(t, table.Row(0).OnlineOrder)
}

func TestRunFatalErrors(t *testing.T) {
	t.Run("missing input", func(t *testing.T) {
		_, err := runCmd(t, "run", filepath.Join(t.TempDir(), "nope.csv"), "--out", t.TempDir())
		var nf *models.NotFoundError
		assert.True(t, errors.As(err, &nf), "got %v", err)
	})

	t.Run("unsupported format", func(t *testing.T) {
		input := writeInput(t, "restaurants.xlsx", "x")
		_, err := runCmd(t, "run", input, "--out", t.TempDir())
		var fe *models.FormatError
		assert.True(t, errors.As(err, &fe), "got %v", err)
	})

	t.Run("missing category", func(t *testing.T) {
		input := writeInput(t, "restaurants.csv", "Title,Number of review\nA,10\n")
		outDir := t.TempDir()
		_, err := runCmd(t, "run", input, "--out", outDir)
		var se *models.SchemaError
		require.True(t, errors.As(err, &se), "got %v", err)
		assert.Equal(t, []string{models.ColCategory}, se.Missing)
		assert.NoFileExists(t, filepath.Join(outDir, "cleaned_data.csv"))
	})

	t.Run("top-n below one", func(t *testing.T) {
		input := writeInput(t, "restaurants.csv", sampleCSV)
		_, err := runCmd(t, "run", input, "--top-n", "0", "--out", t.TempDir())
		assert.True(t, errors.Is(err, config.ErrInvalid), "got %v", err)
	})

	t.Run("no input", func(t *testing.T) {
		_, err := runCmd(t, "run")
		assert.True(t, errors.Is(err, config.ErrInvalid), "got %v", err)
	})
}

func TestValidateCommand(t *testing.T) {
	input := writeInput(t, "restaurants.csv", sampleCSV)
	stdout, err := runCmd(t, "validate", input)
	require.NoError(t, err)
	assert.Contains(t, stdout, "5 rows in, 5 rows out")
	assert.Contains(t, stdout, "repaired counts   : 1")
	assert.Contains(t, stdout, "title, category, review_count, online_order, popular_food")
}
