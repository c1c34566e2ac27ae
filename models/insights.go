package models

// CategoryTotal is a category and its summed review count.
type CategoryTotal struct {
	Category string
	Reviews  int
}

// OnlineOrderAverage is the mean review count of one online-order bucket.
// Empty buckets report Count 0, Mean 0 and Empty true.
type OnlineOrderAverage struct {
	OnlineOrder bool
	Count       int
	Mean        float64
	Empty       bool
}

// CategoryDish is the most frequent popular dish of a category.
type CategoryDish struct {
	Category string
	Dish     string
	Count    int
}

// Bucket is one histogram bin over review counts. Lower is inclusive; Upper
// is exclusive except for the last bucket.
type Bucket struct {
	Lower float64
	Upper float64
	Count int
}

// Distribution is a histogram of review counts plus summary points.
type Distribution struct {
	Buckets []Bucket
	Min     int
	Max     int
	Median  float64
}

// CategoryShare is a category's summed reviews and its percentage of the
// grand total over every category.
type CategoryShare struct {
	Category string
	Reviews  int
	Percent  float64
}

// CategoryTop holds the highest reviewed rows of one category.
type CategoryTop struct {
	Category string
	Rows     []Restaurant
}

// CleaningStats summarises what the cleaner repaired.
type CleaningStats struct {
	RowsIn            int
	RowsOut           int
	MissingByColumn   map[string]int
	RepairedReviews   int
	OnlineOrderFilled bool
}
