package types

import "time"

// Todo represents a single task owned by a user.
type Todo struct {
	// ID is the unique identifier of the todo.
	ID int `json:"id" db:"id"`

	// Title is the short summary of the task.
	Title string `json:"title" db:"title"`

	// Description holds optional free-form detail.
	Description string `json:"description" db:"description"`

	// Completed marks whether the task is done.
	Completed bool `json:"completed" db:"completed"`

	// UserID is the owning user. Todos are only ever visible to
	// their owner; deleting the owner deletes the todos.
	UserID int `json:"user_id" db:"user_id"`

	// CreatedAt is the timestamp when the todo was created.
	CreatedAt time.Time `json:"created_at" db:"created_at"`

	// UpdatedAt is the timestamp of the most recent update.
	UpdatedAt time.Time `json:"updated_at" db:"updated_at"`
}
