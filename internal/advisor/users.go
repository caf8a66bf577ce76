package advisor

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/malu-oliver/agent-financeiro/internal/store"
)

const maxPageSize = 100

// CreateUser registers a user without classifying it.
func (s *Service) CreateUser(ctx context.Context, req UserRequest) (*store.User, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}
	hash := UserHash(req.Email, req.Name, s.now())
	if _, err := s.Users.FindByHash(ctx, hash); err == nil {
		return nil, invalid("email", "user already registered")
	} else if !errors.Is(err, store.ErrNotFound) {
		return nil, fmt.Errorf("find user: %w", err)
	}
	u := &store.User{
		Hash:   hash,
		Name:   strings.TrimSpace(req.Name),
		Email:  strings.TrimSpace(req.Email),
		Age:    req.Age,
		Income: req.Income,
		Goal:   req.Goal,
	}
	if err := s.Users.Create(ctx, u); err != nil {
		return nil, fmt.Errorf("create user: %w", err)
	}
	return u, nil
}

// GetUser returns the user with id.
func (s *Service) GetUser(ctx context.Context, id int) (*store.User, error) {
	return s.user(ctx, id)
}

// ListUsers pages through users. A limit outside 1..100 is clamped.
func (s *Service) ListUsers(ctx context.Context, limit, offset int) ([]store.User, error) {
	if limit <= 0 || limit > maxPageSize {
		limit = maxPageSize
	}
	users, err := s.Users.List(ctx, limit, max(offset, 0))
	if err != nil {
		return nil, fmt.Errorf("list users: %w", err)
	}
	return users, nil
}

// UpdateUser overwrites the attributes of the user with id. The hash is
// kept so the history stays reachable.
func (s *Service) UpdateUser(ctx context.Context, id int, req UserRequest) (*store.User, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}
	u, err := s.user(ctx, id)
	if err != nil {
		return nil, err
	}
	u.Name = strings.TrimSpace(req.Name)
	u.Email = strings.TrimSpace(req.Email)
	u.Age = req.Age
	u.Income = req.Income
	u.Goal = req.Goal
	if err := s.Users.Update(ctx, u); err != nil {
		return nil, fmt.Errorf("update user: %w", err)
	}
	return u, nil
}

// DeleteUser removes the user, its events and everything learned about it.
func (s *Service) DeleteUser(ctx context.Context, id int) error {
	err := s.Users.Delete(ctx, id)
	if errors.Is(err, store.ErrNotFound) {
		return fmt.Errorf("user %d: %w", id, ErrNotFound)
	}
	if err != nil {
		return fmt.Errorf("delete user: %w", err)
	}
	s.Engine.ForgetUser(engineID(id))
	s.Generator.Forget(engineID(id))
	s.refreshGauges()
	s.Logger.Info("user deleted", "user_id", id)
	return nil
}
