package item

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestParseSort(t *testing.T) {
	cases := []struct {
		name      string
		sortBy    string
		sortOrder string
		want      Sort
	}{
		{"defaults", "", "", Sort{Field: SortByID}},
		{"empty_field_keeps_order", "", "desc", Sort{Field: SortByID, Desc: true}},
		{"title_desc_mixed_case", "title", "DeSc", Sort{Field: SortByTitle, Desc: true}},
		{"timestamp_asc", "timestamp", "asc", Sort{Field: SortByTimestamp}},
		{"unknown_order_is_asc", "status", "sideways", Sort{Field: SortByStatus}},
		{"unknown_field_is_id_asc", "bogus", "desc", Sort{Field: SortByID}},
		{"field_is_case_sensitive", "Title", "desc", Sort{Field: SortByID}},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.want, ParseSort(tc.sortBy, tc.sortOrder))
		})
	}
}

func TestStatusValid(t *testing.T) {
	for _, s := range Statuses() {
		assert.True(t, s.Valid(), s)
	}
	assert.False(t, Status("Cancelled").Valid())
	assert.False(t, Status("todo").Valid())
	assert.False(t, Status("").Valid())
}
