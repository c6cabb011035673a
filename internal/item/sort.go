package item

import "strings"

type SortField string

const (
	SortByID        SortField = "id"
	SortByTitle     SortField = "title"
	SortByStatus    SortField = "status"
	SortByTimestamp SortField = "timestamp"
)

// Sort is always a valid column and direction; build it with ParseSort
type Sort struct {
	Field SortField
	Desc  bool
}

var sortColumns = map[SortField]string{
	SortByID:        "id",
	SortByTitle:     "title",
	SortByStatus:    "status",
	SortByTimestamp: "timestamp",
}

// ParseSort never fails. An empty field sorts by id in the requested order;
// an unknown field falls back to id ascending whatever the order says. The
// order is case-insensitive and anything but "desc" means ascending.
func ParseSort(sortBy, sortOrder string) Sort {
	field := SortField(sortBy)
	if field == "" {
		field = SortByID
	}
	if _, ok := sortColumns[field]; !ok {
		return Sort{Field: SortByID}
	}
	return Sort{Field: field, Desc: strings.EqualFold(strings.TrimSpace(sortOrder), "desc")}
}

func (s Sort) column() string {
	if col, ok := sortColumns[s.Field]; ok {
		return col
	}
	return sortColumns[SortByID]
}
