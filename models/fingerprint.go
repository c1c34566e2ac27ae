package models

import (
	"fmt"
	"strconv"

	xxhash "github.com/cespare/xxhash/v2"
)

// Fingerprint returns a stable hex digest of the canonical table contents.
// Two tables with the same rows in the same order share a fingerprint.
func Fingerprint(t *RestaurantTable) string {
	d := xxhash.New()
	write := func(s string) {
		_, _ = d.WriteString(s)
		_, _ = d.Write([]byte{0})
	}
	for _, c := range t.ColumnNames() {
		write(c)
	}
	for _, r := range t.rows {
		write(r.Title)
		write(r.Category)
		write(strconv.Itoa(r.ReviewCount))
		write(strconv.FormatBool(r.OnlineOrder))
		write(r.PopularFood)
		write(r.ReviewComment)
	}
	return fmt.Sprintf("%016x", d.Sum64())
}
