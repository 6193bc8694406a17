// Package repositories stores the school records of the development server.
//
// Every resource has the same five operations. Two backends implement them:
// PostgreSQL through the pgx stdlib driver, and an in-memory go-memdb
// database for running without external services. Missing rows are reported
// as common.ErrorNotFound and unique violations as common.ErrorAlreadyExists.
package repositories

import (
	"context"

	"github.com/dmitrijs2005/schooladmin/internal/models"
)

type Repository[T models.Entity] interface {
	List(ctx context.Context) ([]T, error)
	Get(ctx context.Context, id int64) (T, error)
	// Create stores v and returns it with its new id.
	Create(ctx context.Context, v T) (T, error)
	Update(ctx context.Context, v T) (T, error)
	Delete(ctx context.Context, id int64) error
}

// UserRepository also finds accounts by login name. Senha holds the
// password hash at this level.
type UserRepository interface {
	Repository[models.Usuario]
	GetByUsername(ctx context.Context, username string) (models.Usuario, error)
}

// Store groups the repositories of one backend.
type Store interface {
	Alunos() Repository[models.Aluno]
	Professores() Repository[models.Professor]
	Materias() Repository[models.Materia]
	Usuarios() UserRepository
	Close() error
}
