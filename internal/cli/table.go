package cli

import (
	"fmt"
	"strconv"
	"strings"
	"text/tabwriter"

	"github.com/tally-money/tally/internal/model"
)

// FormatAmount renders a signed amount with two decimals, colored by sign.
func FormatAmount(amount float64) string {
	text := strconv.FormatFloat(amount, 'f', 2, 64)
	if amount > 0 {
		return IncomeStyle.Render("+" + text)
	}
	return ExpenseStyle.Render(text)
}

// RenderTransactions renders a transaction table, newest row first as
// given.
func RenderTransactions(transactions []model.Transaction) string {
	if len(transactions) == 0 {
		return SubtleStyle.Render("No transactions.") + "\n"
	}

	var sb strings.Builder
	w := tabwriter.NewWriter(&sb, 0, 0, 2, ' ', 0)

	fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%s\n",
		HeaderStyle.Render("ID"),
		HeaderStyle.Render("Date"),
		HeaderStyle.Render("Description"),
		HeaderStyle.Render("Category"),
		HeaderStyle.Render("Amount"))

	for _, t := range transactions {
		category := t.Category
		if category == "" {
			category = SubtleStyle.Render("(none)")
		}
		fmt.Fprintf(w, "%d\t%s\t%s\t%s\t%s\n",
			t.ID, t.DateString(), t.Description, category, FormatAmount(t.Amount))
	}

	_ = w.Flush()
	return sb.String()
}

// RenderCategories renders the category table.
func RenderCategories(categories []model.Category) string {
	if len(categories) == 0 {
		return SubtleStyle.Render("No categories.") + "\n"
	}

	var sb strings.Builder
	w := tabwriter.NewWriter(&sb, 0, 0, 2, ' ', 0)

	fmt.Fprintf(w, "%s\t%s\n", HeaderStyle.Render("ID"), HeaderStyle.Render("Name"))
	for _, c := range categories {
		fmt.Fprintf(w, "%d\t%s\n", c.ID, c.Name)
	}

	_ = w.Flush()
	return sb.String()
}

const reportBarWidth = 30

// RenderReport renders per-category totals with bars scaled to the
// largest absolute total.
func RenderReport(totals []model.CategoryTotal) string {
	if len(totals) == 0 {
		return SubtleStyle.Render("Nothing to report.") + "\n"
	}

	var maxAbs float64
	for _, ct := range totals {
		if abs := absFloat(ct.Total); abs > maxAbs {
			maxAbs = abs
		}
	}

	var sb strings.Builder
	w := tabwriter.NewWriter(&sb, 0, 0, 2, ' ', 0)

	fmt.Fprintf(w, "%s\t%s\t%s\t%s\n",
		HeaderStyle.Render("Category"),
		HeaderStyle.Render("Total"),
		HeaderStyle.Render("Count"),
		HeaderStyle.Render(""))

	for _, ct := range totals {
		category := ct.Category
		if category == "" {
			category = SubtleStyle.Render("(none)")
		}
		fmt.Fprintf(w, "%s\t%s\t%d\t%s\n",
			category, FormatAmount(ct.Total), ct.Count, BarStyle.Render(bar(ct.Total, maxAbs)))
	}

	_ = w.Flush()
	return sb.String()
}

func bar(total, maxAbs float64) string {
	if maxAbs == 0 {
		return ""
	}
	width := int(absFloat(total) / maxAbs * reportBarWidth)
	if width == 0 && total != 0 {
		width = 1
	}
	return strings.Repeat("█", width)
}

func absFloat(f float64) float64 {
	if f < 0 {
		return -f
	}
	return f
}
