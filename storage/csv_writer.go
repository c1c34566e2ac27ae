package storage

import (
	"encoding/csv"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"sync"

	"restaurant-insights/models"
)

// CSVWriter writes canonical rows to a CSV file.
// It is safe for concurrent use.
type CSVWriter struct {
	mu     sync.Mutex
	path   string
	file   *os.File
	writer *csv.Writer
}

// NewCSVWriter creates (or truncates) the CSV file at the given path.
// Intermediate directories are created automatically.
func NewCSVWriter(path string) (*CSVWriter, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return nil, fmt.Errorf("csv: create output dir: %w", err)
	}

	f, err := os.Create(path)
	if err != nil {
		return nil, fmt.Errorf("csv: create file %q: %w", path, err)
	}

	return &CSVWriter{path: path, file: f, writer: csv.NewWriter(f)}, nil
}

// Path returns the file being written.
func (c *CSVWriter) Path() string { return c.path }

// WriteTable writes the header and at most limit rows of t. A limit of 0 or
// less writes every row.
func (c *CSVWriter) WriteTable(t *models.RestaurantTable, limit int) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	cols := t.ColumnNames()
	if err := c.writer.Write(cols); err != nil {
		return fmt.Errorf("csv: write header: %w", err)
	}

	n := t.Len()
	if limit > 0 && limit < n {
		n = limit
	}
	for i := 0; i < n; i++ {
		if err := c.writer.Write(restaurantRecord(t.Row(i), cols)); err != nil {
			return fmt.Errorf("csv: write row %d: %w", i, err)
		}
	}

	c.writer.Flush()
	return c.writer.Error()
}

// WriteTopN writes the top_n_per_category result with a leading rank column.
func (c *CSVWriter) WriteTopN(groups []models.CategoryTop) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	cols := []string{models.ColCategory, "rank", models.ColTitle, models.ColReviewCount, models.ColOnlineOrder}
	if err := c.writer.Write(cols); err != nil {
		return fmt.Errorf("csv: write header: %w", err)
	}
	for _, g := range groups {
		for i, r := range g.Rows {
			row := []string{
				g.Category,
				strconv.Itoa(i + 1),
				r.Title,
				strconv.Itoa(r.ReviewCount),
				strconv.FormatBool(r.OnlineOrder),
			}
			if err := c.writer.Write(row); err != nil {
				return fmt.Errorf("csv: write row: %w", err)
			}
		}
	}

	c.writer.Flush()
	return c.writer.Error()
}

// Close flushes and closes the underlying file.
func (c *CSVWriter) Close() error {
	c.writer.Flush()
	return c.file.Close()
}

func restaurantRecord(r models.Restaurant, cols []string) []string {
	out := make([]string, len(cols))
	for i, col := range cols {
		switch col {
		case models.ColTitle:
			out[i] = r.Title
		case models.ColCategory:
			out[i] = r.Category
		case models.ColReviewCount:
			out[i] = strconv.Itoa(r.ReviewCount)
		case models.ColOnlineOrder:
			out[i] = strconv.FormatBool(r.OnlineOrder)
		case models.ColPopularFood:
			out[i] = r.PopularFood
		case models.ColReviewComment:
			out[i] = r.ReviewComment
		}
	}
	return out
}
