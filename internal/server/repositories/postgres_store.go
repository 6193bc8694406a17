package repositories

import (
	"context"
	"database/sql"
	"fmt"

	_ "github.com/jackc/pgx/v5/stdlib"
	"github.com/pressly/goose/v3"

	"github.com/dmitrijs2005/schooladmin/internal/models"
	"github.com/dmitrijs2005/schooladmin/internal/server/migrations"
)

// PostgresStore owns the connection pool shared by the PostgreSQL
// repositories.
type PostgresStore struct {
	db          *sql.DB
	alunos      *PostgresRepository[models.Aluno]
	professores *PostgresRepository[models.Professor]
	materias    *PostgresRepository[models.Materia]
	usuarios    *PostgresUserRepository
}

// gooseUpContext is a seam for testing goose.UpContext.
var gooseUpContext = func(ctx context.Context, db *sql.DB, dir string, opts ...goose.OptionsFunc) error {
	return goose.UpContext(ctx, db, dir, opts...)
}

// RunMigrations applies the embedded schema.
func RunMigrations(ctx context.Context, db *sql.DB) error {
	goose.SetBaseFS(migrations.Migrations)
	if err := goose.SetDialect("postgres"); err != nil {
		return fmt.Errorf("goose dialect: %w", err)
	}
	if err := gooseUpContext(ctx, db, "."); err != nil {
		return fmt.Errorf("migrate: %w", err)
	}
	return nil
}

// OpenPostgres connects with the pgx driver and migrates the schema.
func OpenPostgres(ctx context.Context, dsn string) (*PostgresStore, error) {
	db, err := sql.Open("pgx", dsn)
	if err != nil {
		return nil, fmt.Errorf("db open error: %w", err)
	}
	if err := db.PingContext(ctx); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("db ping error: %w", err)
	}
	if err := RunMigrations(ctx, db); err != nil {
		_ = db.Close()
		return nil, err
	}
	return NewPostgresStore(db), nil
}

// NewPostgresStore wraps an already migrated database.
func NewPostgresStore(db *sql.DB) *PostgresStore {
	return &PostgresStore{
		db:          db,
		alunos:      NewAlunosPostgres(db),
		professores: NewProfessoresPostgres(db),
		materias:    NewMateriasPostgres(db),
		usuarios:    NewUsuariosPostgres(db),
	}
}

func (s *PostgresStore) Alunos() Repository[models.Aluno]         { return s.alunos }
func (s *PostgresStore) Professores() Repository[models.Professor] { return s.professores }
func (s *PostgresStore) Materias() Repository[models.Materia]      { return s.materias }
func (s *PostgresStore) Usuarios() UserRepository                  { return s.usuarios }
func (s *PostgresStore) Close() error                              { return s.db.Close() }
