package services

import (
	"context"

	"github.com/donelist/apiserver/types"
)

// TodoRepository defines persistence operations for todos.
type TodoRepository interface {
	GetByID(ctx context.Context, id, userID int) (types.Todo, error)
	ListByOwner(ctx context.Context, userID, offset, limit int) ([]types.Todo, error)
	Create(ctx context.Context, todo types.Todo) (types.Todo, error)
	Update(ctx context.Context, todo types.Todo) (types.Todo, error)
	Delete(ctx context.Context, id, userID int) error
}

// TodoUpdate carries the optional fields of a todo update. Nil fields are
// left untouched.
type TodoUpdate struct {
	Title       *string
	Description *string
	Completed   *bool
}

// TodoService encapsulates todo use-cases. Every operation is scoped to
// the owning user; a todo belonging to someone else behaves as absent.
type TodoService struct {
	repo TodoRepository
}

func NewTodoService(repo TodoRepository) *TodoService {
	return &TodoService{repo: repo}
}

func (s *TodoService) Get(ctx context.Context, id, userID int) (types.Todo, error) {
	return s.repo.GetByID(ctx, id, userID)
}

func (s *TodoService) List(ctx context.Context, userID, offset, limit int) ([]types.Todo, error) {
	return s.repo.ListByOwner(ctx, userID, offset, limit)
}

func (s *TodoService) Create(ctx context.Context, userID int, title, description string) (types.Todo, error) {
	return s.repo.Create(ctx, types.Todo{
		Title:       title,
		Description: description,
		UserID:      userID,
	})
}

func (s *TodoService) Update(ctx context.Context, id, userID int, upd TodoUpdate) (types.Todo, error) {
	todo, err := s.repo.GetByID(ctx, id, userID)
	if err != nil {
		return types.Todo{}, err
	}

	if upd.Title != nil {
		todo.Title = *upd.Title
	}
	if upd.Description != nil {
		todo.Description = *upd.Description
	}
	if upd.Completed != nil {
		todo.Completed = *upd.Completed
	}

	return s.repo.Update(ctx, todo)
}

func (s *TodoService) Delete(ctx context.Context, id, userID int) error {
	return s.repo.Delete(ctx, id, userID)
}
