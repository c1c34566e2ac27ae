package storage

import (
	"encoding/csv"
	"errors"
	"io"
	"os"
	"path/filepath"
	"strings"

	"restaurant-insights/models"
)

// LoadCSV reads a comma or tab separated file into a RawTable. The first
// record is the header. A missing path yields *models.NotFoundError; an
// unsupported extension, an empty file or a malformed record yields
// *models.FormatError.
func LoadCSV(path string) (*models.RawTable, error) {
	info, err := os.Stat(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, &models.NotFoundError{Path: path}
		}
		return nil, &models.FormatError{Path: path, Reason: "cannot stat", Cause: err}
	}
	if info.IsDir() {
		return nil, &models.NotFoundError{Path: path}
	}

	var delim rune
	switch strings.ToLower(filepath.Ext(path)) {
	case ".csv":
		delim = ','
	case ".tsv":
		delim = '\t'
	default:
		return nil, &models.FormatError{Path: path, Reason: "unsupported file type, expected .csv or .tsv"}
	}

	f, err := os.Open(path)
	if err != nil {
		return nil, &models.FormatError{Path: path, Reason: "cannot open", Cause: err}
	}
	defer f.Close()

	return readTable(f, path, delim)
}

func readTable(r io.Reader, path string, delim rune) (*models.RawTable, error) {
	cr := csv.NewReader(r)
	cr.Comma = delim

	header, err := cr.Read()
	if err != nil {
		if errors.Is(err, io.EOF) {
			return nil, &models.FormatError{Path: path, Reason: "file is empty"}
		}
		return nil, &models.FormatError{Path: path, Reason: "malformed header", Cause: err}
	}
	if len(header) > 0 {
		header[0] = strings.TrimPrefix(header[0], "\ufeff")
	}
	cols := make([]string, len(header))
	copy(cols, header)

	table := &models.RawTable{Columns: cols}
	for {
		rec, err := cr.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, &models.FormatError{Path: path, Reason: "malformed row", Cause: err}
		}
		row := make(models.RawRecord, len(cols))
		for i, c := range cols {
			row[c] = rec[i]
		}
		table.Rows = append(table.Rows, row)
	}

	return table, nil
}
