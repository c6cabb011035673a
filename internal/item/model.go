package item

type Item struct {
	ID          string `json:"id"`
	Title       string `json:"title"`
	Description string `json:"description"`
	Status      Status `json:"status"`
	Timestamp   string `json:"timestamp"`
	UserID      string `json:"user_id"`
}

// Changes lists the fields of a partial update. Nil means unchanged.
type Changes struct {
	Title       *string
	Description *string
	Status      *Status
}

func (c Changes) IsEmpty() bool {
	return c.Title == nil && c.Description == nil && c.Status == nil
}

// Filter narrows a listing. Empty fields do not filter.
type Filter struct {
	OwnerID string
	Status  Status
	Sort    Sort
}
