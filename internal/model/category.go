package model

// Category is a named grouping for transactions. Names are unique; the
// storage layer interns them on first use.
type Category struct {
	Name string
	ID   int64
}

// CategoryTotal is the summed amount of all transactions in one category,
// as produced by spending reports.
type CategoryTotal struct {
	Category string
	Total    float64
	Count    int64
}
