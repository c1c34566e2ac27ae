package services

import (
	"strings"

	"golang.org/x/text/cases"

	"restaurant-insights/models"
	"restaurant-insights/utils"
)

// columnAliases maps case-folded source headers to canonical column names.
// The TripAdvisor export misspells several of its headers.
var columnAliases = map[string]string{
	"title":             models.ColTitle,
	"name":              models.ColTitle,
	"catagory":          models.ColCategory,
	"category":          models.ColCategory,
	"number of review":  models.ColReviewCount,
	"number of reviews": models.ColReviewCount,
	"review_count":      models.ColReviewCount,
	"online order":      models.ColOnlineOrder,
	"online_order":      models.ColOnlineOrder,
	"popular food":      models.ColPopularFood,
	"popular_food":      models.ColPopularFood,
	"reveiw comment":    models.ColReviewComment,
	"review comment":    models.ColReviewComment,
	"review_comment":    models.ColReviewComment,
}

// CanonicalColumn returns the canonical name for a raw header and whether the
// header is a known alias.
func CanonicalColumn(header string) (string, bool) {
	key := cases.Fold().String(strings.Join(strings.Fields(header), " "))
	name, ok := columnAliases[key]
	return name, ok
}

// ApplyAliases returns a copy of raw with known headers renamed to their
// canonical names. Unknown headers are kept as they are. When two headers
// map to the same canonical name the first one wins.
func ApplyAliases(raw *models.RawTable) *models.RawTable {
	rename := make(map[string]string, len(raw.Columns))
	taken := make(map[string]bool, len(raw.Columns))
	cols := make([]string, 0, len(raw.Columns))

	for _, h := range raw.Columns {
		name := h
		if canon, ok := CanonicalColumn(h); ok && !taken[canon] {
			name = canon
		}
		if taken[name] {
			continue
		}
		taken[name] = true
		rename[h] = name
		cols = append(cols, name)
	}

	rows := make([]models.RawRecord, len(raw.Rows))
	for i, r := range raw.Rows {
		rec := make(models.RawRecord, len(r))
		for k, v := range r {
			if name, ok := rename[k]; ok {
				rec[name] = v
			}
		}
		rows[i] = rec
	}
	return &models.RawTable{Columns: cols, Rows: rows}
}

// Cleaner transforms a raw table into the canonical restaurant table.
type Cleaner struct {
	logger *utils.Logger
	stats  models.CleaningStats
}

// NewCleaner creates a Cleaner with the given logger.
func NewCleaner(logger *utils.Logger) *Cleaner {
	return &Cleaner{logger: logger}
}

// Stats returns what the last Clean call repaired.
func (c *Cleaner) Stats() models.CleaningStats {
	return c.stats
}

// Clean renames aliased headers, then coerces every row. It fails only when
// category or review_count is absent; rows are never dropped.
func (c *Cleaner) Clean(raw *models.RawTable) (*models.RestaurantTable, error) {
	return c.CleanAliased(ApplyAliases(raw))
}

// CleanAliased is Clean for a table whose headers already went through
// ApplyAliases. Headers are used as they are.
func (c *Cleaner) CleanAliased(t *models.RawTable) (*models.RestaurantTable, error) {
	for _, col := range []string{models.ColCategory, models.ColReviewCount} {
		if !t.HasColumn(col) {
			return nil, &models.CleaningError{Column: col, Reason: "column absent and no safe default exists"}
		}
	}

	hasTitle := t.HasColumn(models.ColTitle)
	hasOnline := t.HasColumn(models.ColOnlineOrder)
	optional := models.OptionalColumns{
		PopularFood:   t.HasColumn(models.ColPopularFood),
		ReviewComment: t.HasColumn(models.ColReviewComment),
	}
	if !hasTitle {
		c.logger.Warn("[cleaner] No title column, titles left empty")
	}
	if !hasOnline {
		c.logger.Warn("[cleaner] No online_order column, defaulting every row to false")
	}

	stats := models.CleaningStats{
		RowsIn:            len(t.Rows),
		MissingByColumn:   make(map[string]int),
		OnlineOrderFilled: !hasOnline,
	}
	for _, col := range t.Columns {
		stats.MissingByColumn[col] = 0
	}

	rows := make([]models.Restaurant, 0, len(t.Rows))
	for i := range t.Rows {
		for _, col := range t.Columns {
			if _, ok := t.Get(i, col); !ok {
				stats.MissingByColumn[col]++
			}
		}

		rawCount, countOK := t.Get(i, models.ColReviewCount)
		count := ParseReviewCount(rawCount, countOK)
		if count == 0 && countOK && !isZero(rawCount) {
			stats.RepairedReviews++
			c.logger.Debug("[cleaner] Row %d: review count %q repaired to 0", i, rawCount)
		}

		onlineRaw, onlineOK := t.Get(i, models.ColOnlineOrder)
		category, _ := t.Get(i, models.ColCategory)

		r := models.Restaurant{
			Category:    NormalizeCategory(category),
			ReviewCount: count,
			OnlineOrder: ParseOnlineOrder(onlineRaw, onlineOK),
		}
		if hasTitle {
			r.Title = t.Rows[i][models.ColTitle]
		}
		if optional.PopularFood {
			r.PopularFood, _ = t.Get(i, models.ColPopularFood)
		}
		if optional.ReviewComment {
			r.ReviewComment, _ = t.Get(i, models.ColReviewComment)
		}
		rows = append(rows, r)
	}

	stats.RowsOut = len(rows)
	c.stats = stats

	c.logger.Info("[cleaner] Cleaned %d rows (%d review counts repaired to 0)",
		stats.RowsOut, stats.RepairedReviews)
	for _, col := range t.Columns {
		if n := stats.MissingByColumn[col]; n > 0 {
			c.logger.Info("[cleaner] Missing values in %s: %d", col, n)
		}
	}

	return models.NewRestaurantTable(rows, optional), nil
}

func isZero(s string) bool {
	s = thousandsReplacer.Replace(strings.TrimSpace(s))
	return strings.Trim(s, "0.") == "" && s != ""
}
