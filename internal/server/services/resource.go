// Package services holds the server-side rules applied between the HTTP
// handlers and the repositories: payload validation for every resource,
// and password hashing and authentication for accounts.
package services

import (
	"context"
	"errors"
	"fmt"

	"github.com/dmitrijs2005/schooladmin/internal/logging"
	"github.com/dmitrijs2005/schooladmin/internal/models"
	"github.com/dmitrijs2005/schooladmin/internal/server/repositories"
)

// ErrValidation wraps every rejected payload.
var ErrValidation = errors.New("validation failed")

func validate(v any) error {
	if err := models.Validate(v); err != nil {
		return fmt.Errorf("%w: %w", ErrValidation, err)
	}
	return nil
}

// ResourceService validates payloads before they reach the repository.
type ResourceService[T models.Entity] struct {
	repo repositories.Repository[T]
	log  logging.Logger
}

func NewResourceService[T models.Entity](repo repositories.Repository[T], log logging.Logger) *ResourceService[T] {
	return &ResourceService[T]{repo: repo, log: log}
}

func (s *ResourceService[T]) List(ctx context.Context) ([]T, error) {
	return s.repo.List(ctx)
}

func (s *ResourceService[T]) Get(ctx context.Context, id int64) (T, error) {
	return s.repo.Get(ctx, id)
}

func (s *ResourceService[T]) Create(ctx context.Context, v T) (T, error) {
	if err := validate(v); err != nil {
		var zero T
		return zero, err
	}
	created, err := s.repo.Create(ctx, v)
	if err != nil {
		var zero T
		return zero, err
	}
	s.log.Info(ctx, "record created", "id", created.EntityID())
	return created, nil
}

func (s *ResourceService[T]) Update(ctx context.Context, v T) (T, error) {
	if err := validate(v); err != nil {
		var zero T
		return zero, err
	}
	return s.repo.Update(ctx, v)
}

func (s *ResourceService[T]) Delete(ctx context.Context, id int64) error {
	if err := s.repo.Delete(ctx, id); err != nil {
		return err
	}
	s.log.Info(ctx, "record deleted", "id", id)
	return nil
}
