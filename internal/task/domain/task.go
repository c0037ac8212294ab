package domain

type ID string

// Task is a single to-do item. Completed is the only field that changes
// after creation. DueDate is nil when the caller did not provide one.
type Task struct {
	ID        ID
	Title     string
	Completed bool
	UserID    string
	Priority  string
	DueDate   *string
}
