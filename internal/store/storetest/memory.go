// Package storetest provides in-memory repository implementations for
// tests. They honor the same contract as the SQL repositories: unique
// emails, ErrNotFound semantics, and cascade deletion of a user's todos.
package storetest

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/donelist/apiserver/internal/store"
	"github.com/donelist/apiserver/types"
)

// Store holds users and todos behind a single lock so the user
// repository can cascade into todos the way the database does.
type Store struct {
	mu         sync.Mutex
	users      map[int]types.User
	todos      map[int]types.Todo
	nextUserID int
	nextTodoID int
}

func New() *Store {
	return &Store{
		users:      map[int]types.User{},
		todos:      map[int]types.Todo{},
		nextUserID: 1,
		nextTodoID: 1,
	}
}

// Users returns the user repository view of the store.
func (s *Store) Users() *UserRepo {
	return &UserRepo{store: s}
}

// Todos returns the todo repository view of the store.
func (s *Store) Todos() *TodoRepo {
	return &TodoRepo{store: s}
}

// UserRepo implements the user repository contract in memory.
type UserRepo struct {
	store *Store
}

func (r *UserRepo) GetByID(_ context.Context, id int) (types.User, error) {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()

	user, ok := r.store.users[id]
	if !ok {
		return types.User{}, store.ErrNotFound
	}
	return user, nil
}

func (r *UserRepo) GetByEmail(_ context.Context, email string) (types.User, error) {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()

	for _, user := range r.store.users {
		if user.Email == email {
			return user, nil
		}
	}
	return types.User{}, store.ErrNotFound
}

func (r *UserRepo) List(_ context.Context, offset, limit int) ([]types.User, error) {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()

	users := make([]types.User, 0, len(r.store.users))
	for _, user := range r.store.users {
		users = append(users, user)
	}
	sort.Slice(users, func(i, j int) bool { return users[i].ID < users[j].ID })

	if offset >= len(users) {
		return []types.User{}, nil
	}
	users = users[offset:]
	if limit < len(users) {
		users = users[:limit]
	}
	return users, nil
}

func (r *UserRepo) Create(_ context.Context, user types.User) (types.User, error) {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()

	for _, existing := range r.store.users {
		if existing.Email == user.Email {
			return types.User{}, store.ErrDuplicate
		}
	}

	now := time.Now()
	user.ID = r.store.nextUserID
	user.CreatedAt = now
	user.UpdatedAt = now
	r.store.nextUserID++
	r.store.users[user.ID] = user
	return user, nil
}

func (r *UserRepo) Update(_ context.Context, user types.User) (types.User, error) {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()

	if _, ok := r.store.users[user.ID]; !ok {
		return types.User{}, store.ErrNotFound
	}
	for _, existing := range r.store.users {
		if existing.ID != user.ID && existing.Email == user.Email {
			return types.User{}, store.ErrDuplicate
		}
	}

	user.UpdatedAt = time.Now()
	r.store.users[user.ID] = user
	return user, nil
}

func (r *UserRepo) Delete(_ context.Context, id int) error {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()

	if _, ok := r.store.users[id]; !ok {
		return store.ErrNotFound
	}
	delete(r.store.users, id)

	// cascade, as the FK constraint does
	for todoID, todo := range r.store.todos {
		if todo.UserID == id {
			delete(r.store.todos, todoID)
		}
	}
	return nil
}

// TodoRepo implements the todo repository contract in memory.
type TodoRepo struct {
	store *Store
}

func (r *TodoRepo) GetByID(_ context.Context, id, userID int) (types.Todo, error) {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()

	todo, ok := r.store.todos[id]
	if !ok || todo.UserID != userID {
		return types.Todo{}, store.ErrNotFound
	}
	return todo, nil
}

func (r *TodoRepo) ListByOwner(_ context.Context, userID, offset, limit int) ([]types.Todo, error) {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()

	todos := []types.Todo{}
	for _, todo := range r.store.todos {
		if todo.UserID == userID {
			todos = append(todos, todo)
		}
	}
	sort.Slice(todos, func(i, j int) bool { return todos[i].ID < todos[j].ID })

	if offset >= len(todos) {
		return []types.Todo{}, nil
	}
	todos = todos[offset:]
	if limit < len(todos) {
		todos = todos[:limit]
	}
	return todos, nil
}

func (r *TodoRepo) Create(_ context.Context, todo types.Todo) (types.Todo, error) {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()

	now := time.Now()
	todo.ID = r.store.nextTodoID
	todo.CreatedAt = now
	todo.UpdatedAt = now
	r.store.nextTodoID++
	r.store.todos[todo.ID] = todo
	return todo, nil
}

func (r *TodoRepo) Update(_ context.Context, todo types.Todo) (types.Todo, error) {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()

	existing, ok := r.store.todos[todo.ID]
	if !ok || existing.UserID != todo.UserID {
		return types.Todo{}, store.ErrNotFound
	}

	todo.UpdatedAt = time.Now()
	r.store.todos[todo.ID] = todo
	return todo, nil
}

func (r *TodoRepo) Delete(_ context.Context, id, userID int) error {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()

	todo, ok := r.store.todos[id]
	if !ok || todo.UserID != userID {
		return store.ErrNotFound
	}
	delete(r.store.todos, id)
	return nil
}
