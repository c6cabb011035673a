package item

type Status string

const (
	StatusToDo       Status = "ToDo"
	StatusInProgress Status = "InProgress"
	StatusDone       Status = "Done"
)

func (s Status) Valid() bool {
	return s == StatusToDo || s == StatusInProgress || s == StatusDone
}

// Statuses returns the accepted values in workflow order
func Statuses() []Status {
	return []Status{StatusToDo, StatusInProgress, StatusDone}
}
