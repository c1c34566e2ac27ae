package services

import (
	"math"
	"strconv"
	"strings"
)

// defaultOnlineOrder is the text assumed when online_order is missing.
const defaultOnlineOrder = "No"

// maxReviewCount is the largest count kept, the limit of the INTEGER store
// columns.
const maxReviewCount = math.MaxInt32

var thousandsReplacer = strings.NewReplacer(",", "", "_", "", " ", "", "\u00a0", "")

// ParseReviewCount turns a raw review count into a non-negative integer.
// Thousands separators are stripped; anything unparsable, missing, negative
// or above maxReviewCount becomes 0. The row is always kept.
func ParseReviewCount(raw string, present bool) int {
	if !present {
		return 0
	}
	s := thousandsReplacer.Replace(strings.TrimSpace(raw))
	if s == "" {
		return 0
	}
	if n, err := strconv.Atoi(s); err == nil {
		if n < 0 || n > maxReviewCount {
			return 0
		}
		return n
	}
	// "1200.0" shows up when a spreadsheet exported the column as float
	f, err := strconv.ParseFloat(s, 64)
	if err != nil || math.IsNaN(f) || math.IsInf(f, 0) || f < 0 || f > maxReviewCount {
		return 0
	}
	return int(f)
}

// ParseOnlineOrder is true only when the raw value is "yes", ignoring case
// and surrounding whitespace. Missing values read as "No".
func ParseOnlineOrder(raw string, present bool) bool {
	if !present {
		raw = defaultOnlineOrder
	}
	return strings.EqualFold(strings.TrimSpace(raw), "yes")
}

// NormalizeCategory strips surrounding whitespace and keeps everything else.
func NormalizeCategory(raw string) string {
	return strings.TrimSpace(raw)
}
