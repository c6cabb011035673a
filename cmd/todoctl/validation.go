package main

import (
	"fmt"
	"slices"
	"strings"

	"github.com/redmonkez12/todo-api/internal/item"
)

var sortFields = []string{
	string(item.SortByID),
	string(item.SortByTitle),
	string(item.SortByStatus),
	string(item.SortByTimestamp),
}

// validateListFlags is stricter than the API, which falls back to id order
// on an unknown sort field
func validateListFlags(status, sortBy, sortOrder string) error {
	if status != "" && !item.Status(status).Valid() {
		return fmt.Errorf("invalid --status %q, expected one of %s", status, joinStatuses())
	}

	if sortBy != "" && !slices.Contains(sortFields, sortBy) {
		return fmt.Errorf("invalid --sort-by %q, expected one of %s", sortBy, strings.Join(sortFields, ", "))
	}

	switch strings.ToLower(sortOrder) {
	case "", "asc", "desc":
	default:
		return fmt.Errorf("invalid --sort-order %q, expected asc or desc", sortOrder)
	}

	return nil
}

func joinStatuses() string {
	statuses := item.Statuses()
	names := make([]string, 0, len(statuses))
	for _, s := range statuses {
		names = append(names, string(s))
	}
	return strings.Join(names, ", ")
}
