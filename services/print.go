package services

import (
	"fmt"
	"io"
	"strings"

	"golang.org/x/text/language"
	"golang.org/x/text/message"

	"restaurant-insights/models"
	"restaurant-insights/utils"
)

// Print writes a console summary of the batch outcomes to w.
func (s *InsightService) Print(w io.Writer, outcomes []Outcome) {
	p := message.NewPrinter(language.English)
	sep := strings.Repeat("═", 58)
	thin := strings.Repeat("─", 58)

	fmt.Fprintf(w, "\n\033[1;35m%s\033[0m\n", sep)
	fmt.Fprintf(w, "\033[1;35m  RESTAURANT REVIEW INSIGHTS\033[0m\n")
	fmt.Fprintf(w, "\033[1;35m%s\033[0m\n\n", sep)

	for _, o := range outcomes {
		fmt.Fprintf(w, "\033[1;33m  %s\033[0m\n", o.Name)
		fmt.Fprintf(w, "  %s\n", thin)
		if !o.OK() {
			fmt.Fprintf(w, "  \033[31mfailed:\033[0m %v\n\n", o.Err)
			continue
		}

		switch v := o.Value.(type) {
		case []models.CategoryTotal:
			for i, c := range v {
				p.Fprintf(w, "  %2d. %-36s %12d\n", i+1, utils.Truncate(c.Category, 34), c.Reviews)
			}
		case [2]models.OnlineOrderAverage:
			for _, b := range v {
				label := "no online order"
				if b.OnlineOrder {
					label = "online order"
				}
				if b.Empty {
					fmt.Fprintf(w, "  %-20s no restaurants\n", label)
					continue
				}
				p.Fprintf(w, "  %-20s %10.2f reviews avg (%d restaurants)\n", label, b.Mean, b.Count)
			}
		case []models.CategoryDish:
			for _, d := range v {
				fmt.Fprintf(w, "  %-30s %s (%d)\n", utils.Truncate(d.Category, 28), utils.Truncate(d.Dish, 30), d.Count)
			}
		case models.Restaurant:
			fmt.Fprintf(w, "  %s\n", utils.Truncate(v.Title, 54))
			p.Fprintf(w, "  Category : %s\n  Reviews  : \033[1;32m%d\033[0m\n", v.Category, v.ReviewCount)
		case models.Distribution:
			p.Fprintf(w, "  min %d | median %.1f | max %d\n", v.Min, v.Median, v.Max)
			peak := 0
			for _, b := range v.Buckets {
				if b.Count > peak {
					peak = b.Count
				}
			}
			for _, b := range v.Buckets {
				bar := 0
				if peak > 0 {
					bar = b.Count * 30 / peak
				}
				p.Fprintf(w, "  %10.0f - %-10.0f %s (%d)\n", b.Lower, b.Upper, strings.Repeat("█", bar), b.Count)
			}
		case []models.CategoryShare:
			for _, c := range v {
				p.Fprintf(w, "  %-36s %12d %6.2f%%\n", utils.Truncate(c.Category, 34), c.Reviews, c.Percent)
			}
		case []models.CategoryTop:
			for _, c := range v {
				fmt.Fprintf(w, "  %s (%d)\n", c.Category, len(c.Rows))
			}
		}
		fmt.Fprintln(w)
	}

	fmt.Fprintf(w, "\033[1;35m%s\033[0m\n\n", sep)
}
