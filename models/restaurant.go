package models

import (
	"strings"
)

// Canonical column names.
const (
	ColTitle         = "title"
	ColCategory      = "category"
	ColReviewCount   = "review_count"
	ColOnlineOrder   = "online_order"
	ColPopularFood   = "popular_food"
	ColReviewComment = "review_comment"
)

// RawRecord is one unprocessed row keyed by column header.
type RawRecord map[string]string

// RawTable holds the data exactly as read from the input file.
// Headers may still carry the misspellings of the source dataset.
type RawTable struct {
	Columns []string
	Rows    []RawRecord
}

// HasColumn reports whether the table has a column with the given header.
func (t *RawTable) HasColumn(name string) bool {
	for _, c := range t.Columns {
		if c == name {
			return true
		}
	}
	return false
}

// ColumnNames returns the table headers.
func (t *RawTable) ColumnNames() []string {
	return append([]string(nil), t.Columns...)
}

// Get returns the value of col in row i. The boolean is false when the
// value is missing: the key is absent or the cell is blank.
func (t *RawTable) Get(i int, col string) (string, bool) {
	v, ok := t.Rows[i][col]
	if !ok || strings.TrimSpace(v) == "" {
		return "", false
	}
	return v, true
}

// Restaurant is one cleaned row of the canonical table.
type Restaurant struct {
	Title         string
	Category      string
	ReviewCount   int
	OnlineOrder   bool
	PopularFood   string
	ReviewComment string
}

// OptionalColumns records which optional columns the canonical table carries.
// Presence is per column, never per row.
type OptionalColumns struct {
	PopularFood   bool
	ReviewComment bool
}

// RestaurantTable is the canonical table. It is never mutated after
// construction; every accessor hands out copies.
type RestaurantTable struct {
	rows     []Restaurant
	optional OptionalColumns
}

// NewRestaurantTable builds a canonical table from rows. The rows slice is
// copied. Values of optional columns flagged absent are cleared.
func NewRestaurantTable(rows []Restaurant, optional OptionalColumns) *RestaurantTable {
	cp := make([]Restaurant, len(rows))
	copy(cp, rows)
	for i := range cp {
		if !optional.PopularFood {
			cp[i].PopularFood = ""
		}
		if !optional.ReviewComment {
			cp[i].ReviewComment = ""
		}
	}
	return &RestaurantTable{rows: cp, optional: optional}
}

// Len returns the number of rows.
func (t *RestaurantTable) Len() int { return len(t.rows) }

// Row returns a copy of row i.
func (t *RestaurantTable) Row(i int) Restaurant { return t.rows[i] }

// Rows returns a copy of all rows in table order.
func (t *RestaurantTable) Rows() []Restaurant {
	cp := make([]Restaurant, len(t.rows))
	copy(cp, t.rows)
	return cp
}

// Optional returns the optional column flags.
func (t *RestaurantTable) Optional() OptionalColumns { return t.optional }

// HasPopularFood reports whether the popular_food column is present.
func (t *RestaurantTable) HasPopularFood() bool { return t.optional.PopularFood }

// HasColumn reports whether the canonical table exposes the named column.
func (t *RestaurantTable) HasColumn(name string) bool {
	switch name {
	case ColTitle, ColCategory, ColReviewCount, ColOnlineOrder:
		return true
	case ColPopularFood:
		return t.optional.PopularFood
	case ColReviewComment:
		return t.optional.ReviewComment
	}
	return false
}

// ColumnNames returns the canonical column names in output order.
func (t *RestaurantTable) ColumnNames() []string {
	cols := []string{ColTitle, ColCategory, ColReviewCount, ColOnlineOrder}
	if t.optional.PopularFood {
		cols = append(cols, ColPopularFood)
	}
	if t.optional.ReviewComment {
		cols = append(cols, ColReviewComment)
	}
	return cols
}

// Head returns a new table holding at most the first n rows.
func (t *RestaurantTable) Head(n int) *RestaurantTable {
	if n > len(t.rows) {
		n = len(t.rows)
	}
	if n < 0 {
		n = 0
	}
	return NewRestaurantTable(t.rows[:n], t.optional)
}
