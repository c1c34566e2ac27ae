package storage

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/apache/arrow-go/v18/arrow"
	"github.com/apache/arrow-go/v18/arrow/array"
	"github.com/apache/arrow-go/v18/arrow/memory"
	"github.com/apache/arrow-go/v18/parquet"
	"github.com/apache/arrow-go/v18/parquet/compress"
	"github.com/apache/arrow-go/v18/parquet/pqarrow"

	"restaurant-insights/models"
)

// WriteParquet writes the canonical table as a snappy-compressed Parquet file.
func WriteParquet(path string, t *models.RestaurantTable) error {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return fmt.Errorf("parquet: create output dir: %w", err)
	}

	table := restaurantArrowTable(t, memory.NewGoAllocator())
	defer table.Release()

	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("parquet: create file %q: %w", path, err)
	}
	defer f.Close()

	props := parquet.NewWriterProperties(parquet.WithCompression(compress.Codecs.Snappy))
	arrowProps := pqarrow.NewArrowWriterProperties(pqarrow.WithAllocator(memory.NewGoAllocator()))

	w, err := pqarrow.NewFileWriter(table.Schema(), f, props, arrowProps)
	if err != nil {
		return fmt.Errorf("parquet: create writer: %w", err)
	}
	if err := w.WriteTable(table, int64(max(t.Len(), 1))); err != nil {
		_ = w.Close()
		return fmt.Errorf("parquet: write table: %w", err)
	}
	if err := w.Close(); err != nil {
		return fmt.Errorf("parquet: close writer: %w", err)
	}
	return nil
}

func restaurantArrowTable(t *models.RestaurantTable, mem memory.Allocator) arrow.Table {
	cols := t.ColumnNames()
	fields := make([]arrow.Field, 0, len(cols))
	columns := make([]arrow.Column, 0, len(cols))

	for _, col := range cols {
		arr := restaurantArrowArray(t, col, mem)
		field := arrow.Field{Name: col, Type: arr.DataType()}
		chunked := arrow.NewChunked(arr.DataType(), []arrow.Array{arr})
		arr.Release()
		column := arrow.NewColumn(field, chunked)
		chunked.Release()
		fields = append(fields, field)
		columns = append(columns, *column)
	}

	schema := arrow.NewSchema(fields, nil)
	return array.NewTable(schema, columns, int64(t.Len()))
}

func restaurantArrowArray(t *models.RestaurantTable, col string, mem memory.Allocator) arrow.Array {
	switch col {
	case models.ColReviewCount:
		b := array.NewInt64Builder(mem)
		defer b.Release()
		for i := 0; i < t.Len(); i++ {
			b.Append(int64(t.Row(i).ReviewCount))
		}
		return b.NewArray()
	case models.ColOnlineOrder:
		b := array.NewBooleanBuilder(mem)
		defer b.Release()
		for i := 0; i < t.Len(); i++ {
			b.Append(t.Row(i).OnlineOrder)
		}
		return b.NewArray()
	}

	b := array.NewStringBuilder(mem)
	defer b.Release()
	for i := 0; i < t.Len(); i++ {
		b.Append(restaurantRecord(t.Row(i), []string{col})[0])
	}
	return b.NewArray()
}
