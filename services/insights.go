package services

import (
	"errors"
	"fmt"
	"math"
	"sort"

	"restaurant-insights/models"
	"restaurant-insights/utils"
)

// Operation names, in catalog order.
const (
	OpTopCategories      = "top_categories_by_reviews"
	OpAvgByOnlineOrder   = "avg_reviews_by_online_order"
	OpPopularDish        = "popular_dish_by_category"
	OpTopReviewed        = "top_reviewed_restaurant"
	OpReviewDistribution = "review_count_distribution"
	OpCategoryShare      = "category_review_share"
	OpTopNPerCategory    = "top_n_per_category"
)

const (
	topCategoriesLimit   = 10
	defaultHistogramBins = 20
	defaultTopN          = 10
)

// Params carries the tunable inputs of the catalog.
type Params struct {
	TopN int
	Bins int
}

// DefaultParams returns the catalog defaults.
func DefaultParams() Params {
	return Params{TopN: defaultTopN, Bins: defaultHistogramBins}
}

// Outcome is the result of one catalog operation: either Value or Err is set.
type Outcome struct {
	Name  string
	Value any
	Err   error
}

// OK reports whether the operation succeeded.
func (o Outcome) OK() bool { return o.Err == nil }

// InsightService computes the analysis catalog over a canonical table.
// It only reads the table.
type InsightService struct {
	logger *utils.Logger
}

func NewInsightService(logger *utils.Logger) *InsightService {
	return &InsightService{logger: logger}
}

type operation struct {
	name string
	run  func(t *models.RestaurantTable, p Params) (any, error)
}

func (s *InsightService) catalog() []operation {
	return []operation{
		{OpTopCategories, func(t *models.RestaurantTable, _ Params) (any, error) { return s.TopCategoriesByReviews(t) }},
		{OpAvgByOnlineOrder, func(t *models.RestaurantTable, _ Params) (any, error) { return s.AvgReviewsByOnlineOrder(t) }},
		{OpPopularDish, func(t *models.RestaurantTable, _ Params) (any, error) { return s.PopularDishByCategory(t) }},
		{OpTopReviewed, func(t *models.RestaurantTable, _ Params) (any, error) { return s.TopReviewedRestaurant(t) }},
		{OpReviewDistribution, func(t *models.RestaurantTable, p Params) (any, error) {
			return s.ReviewCountDistribution(t, p.Bins)
		}},
		{OpCategoryShare, func(t *models.RestaurantTable, _ Params) (any, error) { return s.CategoryReviewShare(t) }},
		{OpTopNPerCategory, func(t *models.RestaurantTable, p Params) (any, error) {
			return s.TopNPerCategory(t, p.TopN)
		}},
	}
}

// OperationNames lists the catalog in execution order.
func (s *InsightService) OperationNames() []string {
	ops := s.catalog()
	names := make([]string, len(ops))
	for i, op := range ops {
		names[i] = op.name
	}
	return names
}

// RunAll runs every operation once, in catalog order. A failing or panicking
// operation is recorded in its Outcome and the rest still run.
func (s *InsightService) RunAll(t *models.RestaurantTable, p Params) []Outcome {
	ops := s.catalog()
	out := make([]Outcome, 0, len(ops))
	for _, op := range ops {
		out = append(out, s.runIsolated(op, t, p))
	}
	s.logSummary(out)
	return out
}

// RunAllParallel is RunAll with operations spread over a worker pool.
// Outcomes are still returned in catalog order.
func (s *InsightService) RunAllParallel(t *models.RestaurantTable, p Params, workers int) []Outcome {
	ops := s.catalog()
	out := make([]Outcome, len(ops))
	pool := utils.NewWorkerPool(workers)
	for i, op := range ops {
		pool.Submit(func() {
			out[i] = s.runIsolated(op, t, p)
		})
	}
	pool.Wait()
	s.logSummary(out)
	return out
}

func (s *InsightService) runIsolated(op operation, t *models.RestaurantTable, p Params) (o Outcome) {
	o.Name = op.name
	defer func() {
		if r := recover(); r != nil {
			o.Value = nil
			o.Err = &models.AggregationError{Op: op.name, Cause: fmt.Errorf("panic: %v", r)}
		}
		if o.Err != nil {
			s.logger.Warn("[insights] %v", o.Err)
		}
	}()

	v, err := op.run(t, p)
	if err != nil {
		var aggErr *models.AggregationError
		if !errors.As(err, &aggErr) {
			err = &models.AggregationError{Op: op.name, Cause: err}
		}
		return Outcome{Name: op.name, Err: err}
	}
	s.logger.Debug("[insights] %s done", op.name)
	return Outcome{Name: op.name, Value: v}
}

func (s *InsightService) logSummary(out []Outcome) {
	failed := 0
	for _, o := range out {
		if !o.OK() {
			failed++
		}
	}
	s.logger.Info("[insights] %d analyses finished, %d succeeded, %d failed",
		len(out), len(out)-failed, failed)
}

// categoryGroups returns the non-empty categories in order of first
// appearance with the row indexes belonging to each.
func categoryGroups(t *models.RestaurantTable) ([]string, map[string][]int) {
	var order []string
	idx := make(map[string][]int)
	for i := 0; i < t.Len(); i++ {
		c := t.Row(i).Category
		if c == "" {
			continue
		}
		if _, seen := idx[c]; !seen {
			order = append(order, c)
		}
		idx[c] = append(idx[c], i)
	}
	return order, idx
}

func categoryTotals(t *models.RestaurantTable) []models.CategoryTotal {
	order, idx := categoryGroups(t)
	totals := make([]models.CategoryTotal, len(order))
	for i, c := range order {
		sum := 0
		for _, r := range idx[c] {
			sum += t.Row(r).ReviewCount
		}
		totals[i] = models.CategoryTotal{Category: c, Reviews: sum}
	}
	sort.SliceStable(totals, func(i, j int) bool {
		return totals[i].Reviews > totals[j].Reviews
	})
	return totals
}

// TopCategoriesByReviews sums review counts per category and returns the ten
// largest, descending. Equal sums keep first-appearance order.
func (s *InsightService) TopCategoriesByReviews(t *models.RestaurantTable) ([]models.CategoryTotal, error) {
	totals := categoryTotals(t)
	if len(totals) > topCategoriesLimit {
		totals = totals[:topCategoriesLimit]
	}
	return totals, nil
}

// AvgReviewsByOnlineOrder returns the mean review count for restaurants
// without (index 0) and with (index 1) online ordering. Both buckets are
// always present; an empty one has mean 0 and Empty set.
func (s *InsightService) AvgReviewsByOnlineOrder(t *models.RestaurantTable) ([2]models.OnlineOrderAverage, error) {
	var sums [2]int
	var out [2]models.OnlineOrderAverage
	out[0].OnlineOrder = false
	out[1].OnlineOrder = true

	for i := 0; i < t.Len(); i++ {
		r := t.Row(i)
		b := 0
		if r.OnlineOrder {
			b = 1
		}
		out[b].Count++
		sums[b] += r.ReviewCount
	}
	for b := range out {
		if out[b].Count == 0 {
			out[b].Empty = true
			continue
		}
		out[b].Mean = float64(sums[b]) / float64(out[b].Count)
	}
	return out, nil
}

// PopularDishByCategory returns the most frequent popular dish of each
// category. Ties go to the dish seen first in table order. Blank dishes are
// ignored and categories without any dish are left out.
func (s *InsightService) PopularDishByCategory(t *models.RestaurantTable) ([]models.CategoryDish, error) {
	if !t.HasPopularFood() {
		return nil, &models.AggregationError{
			Op:    OpPopularDish,
			Cause: fmt.Errorf("%w: column %s absent", models.ErrUnavailable, models.ColPopularFood),
		}
	}

	order, idx := categoryGroups(t)
	out := make([]models.CategoryDish, 0, len(order))
	for _, c := range order {
		counts := make(map[string]int)
		var dishes []string
		for _, r := range idx[c] {
			d := t.Row(r).PopularFood
			if d == "" {
				continue
			}
			if counts[d] == 0 {
				dishes = append(dishes, d)
			}
			counts[d]++
		}
		if len(dishes) == 0 {
			continue
		}
		best := dishes[0]
		for _, d := range dishes[1:] {
			if counts[d] > counts[best] {
				best = d
			}
		}
		out = append(out, models.CategoryDish{Category: c, Dish: best, Count: counts[best]})
	}
	return out, nil
}

// TopReviewedRestaurant returns the first row holding the maximum review count.
func (s *InsightService) TopReviewedRestaurant(t *models.RestaurantTable) (models.Restaurant, error) {
	if t.Len() == 0 {
		return models.Restaurant{}, &models.AggregationError{Op: OpTopReviewed, Cause: models.ErrEmptyTable}
	}
	best := 0
	for i := 1; i < t.Len(); i++ {
		if t.Row(i).ReviewCount > t.Row(best).ReviewCount {
			best = i
		}
	}
	return t.Row(best), nil
}

// ReviewCountDistribution buckets review counts into bins equal-width bins
// over [min, max] and reports the median. When every count is equal the
// range is widened by 0.5 on each side.
func (s *InsightService) ReviewCountDistribution(t *models.RestaurantTable, bins int) (models.Distribution, error) {
	if bins < 1 {
		return models.Distribution{}, &models.AggregationError{
			Op:    OpReviewDistribution,
			Cause: fmt.Errorf("bucket count must be at least 1, got %d", bins),
		}
	}
	if t.Len() == 0 {
		return models.Distribution{}, &models.AggregationError{Op: OpReviewDistribution, Cause: models.ErrEmptyTable}
	}

	values := make([]int, t.Len())
	for i := range values {
		values[i] = t.Row(i).ReviewCount
	}
	sort.Ints(values)

	d := models.Distribution{Min: values[0], Max: values[len(values)-1]}
	d.Median = median(values)

	lo, hi := float64(d.Min), float64(d.Max)
	if lo == hi {
		lo -= 0.5
		hi += 0.5
	}
	width := (hi - lo) / float64(bins)
	d.Buckets = make([]models.Bucket, bins)
	for b := range d.Buckets {
		d.Buckets[b].Lower = lo + float64(b)*width
		d.Buckets[b].Upper = lo + float64(b+1)*width
	}
	d.Buckets[bins-1].Upper = hi

	for _, v := range values {
		b := int(math.Floor((float64(v) - lo) / width))
		if b >= bins {
			b = bins - 1
		}
		if b < 0 {
			b = 0
		}
		d.Buckets[b].Count++
	}
	return d, nil
}

func median(sorted []int) float64 {
	n := len(sorted)
	if n%2 == 1 {
		return float64(sorted[n/2])
	}
	return float64(sorted[n/2-1]+sorted[n/2]) / 2
}

// CategoryReviewShare returns the ten categories with most reviews and their
// percentage of the review total across all categories.
func (s *InsightService) CategoryReviewShare(t *models.RestaurantTable) ([]models.CategoryShare, error) {
	totals := categoryTotals(t)
	grand := 0
	for _, c := range totals {
		grand += c.Reviews
	}

	n := len(totals)
	if n > topCategoriesLimit {
		n = topCategoriesLimit
	}
	out := make([]models.CategoryShare, n)
	for i := 0; i < n; i++ {
		out[i] = models.CategoryShare{Category: totals[i].Category, Reviews: totals[i].Reviews}
		if grand > 0 {
			out[i].Percent = float64(totals[i].Reviews) / float64(grand) * 100
		}
	}
	return out, nil
}

// TopNPerCategory returns, for every category, its n rows with the most
// reviews. Ties keep table order; short categories return every row.
func (s *InsightService) TopNPerCategory(t *models.RestaurantTable, n int) ([]models.CategoryTop, error) {
	if n < 1 {
		return nil, &models.AggregationError{
			Op:    OpTopNPerCategory,
			Cause: fmt.Errorf("n must be at least 1, got %d", n),
		}
	}

	order, idx := categoryGroups(t)
	out := make([]models.CategoryTop, len(order))
	for i, c := range order {
		rows := make([]models.Restaurant, len(idx[c]))
		for j, r := range idx[c] {
			rows[j] = t.Row(r)
		}
		sort.SliceStable(rows, func(a, b int) bool {
			return rows[a].ReviewCount > rows[b].ReviewCount
		})
		if len(rows) > n {
			rows = rows[:n]
		}
		out[i] = models.CategoryTop{Category: c, Rows: rows}
	}
	return out, nil
}
