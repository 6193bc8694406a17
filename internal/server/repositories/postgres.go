package repositories

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"github.com/jackc/pgx/v5/pgconn"

	"github.com/dmitrijs2005/schooladmin/internal/common"
	"github.com/dmitrijs2005/schooladmin/internal/dbx"
	"github.com/dmitrijs2005/schooladmin/internal/models"
)

const pgUniqueViolation = "23505"

// PostgresRepository implements Repository over one table.
type PostgresRepository[T models.Entity] struct {
	db dbx.DBTX
	t  table[T]
}

func newPostgresRepository[T models.Entity](db dbx.DBTX, t table[T]) *PostgresRepository[T] {
	return &PostgresRepository[T]{db: db, t: t}
}

func (r *PostgresRepository[T]) selectList() string {
	return "SELECT id, " + strings.Join(r.t.columns, ", ") + " FROM " + r.t.name
}

func (r *PostgresRepository[T]) List(ctx context.Context) ([]T, error) {
	rows, err := r.db.QueryContext(ctx, r.selectList()+" ORDER BY id")
	if err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}
	defer rows.Close()

	out := make([]T, 0)
	for rows.Next() {
		v, err := r.t.scan(rows)
		if err != nil {
			return nil, fmt.Errorf("db error: %w", err)
		}
		out = append(out, v)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}
	return out, nil
}

func (r *PostgresRepository[T]) Get(ctx context.Context, id int64) (T, error) {
	return r.getBy(ctx, "id", id)
}

func (r *PostgresRepository[T]) getBy(ctx context.Context, column string, value any) (T, error) {
	query := r.selectList() + " WHERE " + column + " = $1"
	v, err := r.t.scan(r.db.QueryRowContext(ctx, query, value))
	if err != nil {
		var zero T
		if errors.Is(err, sql.ErrNoRows) {
			return zero, common.ErrorNotFound
		}
		return zero, fmt.Errorf("db error: %w", err)
	}
	return v, nil
}

func (r *PostgresRepository[T]) Create(ctx context.Context, v T) (T, error) {
	placeholders := make([]string, len(r.t.columns))
	for i := range placeholders {
		placeholders[i] = fmt.Sprintf("$%d", i+1)
	}
	query := fmt.Sprintf("INSERT INTO %s (%s) VALUES (%s) RETURNING id",
		r.t.name, strings.Join(r.t.columns, ", "), strings.Join(placeholders, ", "))

	var id int64
	if err := r.db.QueryRowContext(ctx, query, r.t.values(v)...).Scan(&id); err != nil {
		var zero T
		return zero, wrapWriteError(err)
	}
	return r.t.withID(v, id), nil
}

func (r *PostgresRepository[T]) Update(ctx context.Context, v T) (T, error) {
	sets := make([]string, len(r.t.columns))
	for i, c := range r.t.columns {
		sets[i] = fmt.Sprintf("%s = $%d", c, i+1)
	}
	query := fmt.Sprintf("UPDATE %s SET %s WHERE id = $%d",
		r.t.name, strings.Join(sets, ", "), len(r.t.columns)+1)

	args := append(r.t.values(v), v.EntityID())
	res, err := r.db.ExecContext(ctx, query, args...)
	if err != nil {
		var zero T
		return zero, wrapWriteError(err)
	}
	if err := expectOneRow(res); err != nil {
		var zero T
		return zero, err
	}
	return v, nil
}

func (r *PostgresRepository[T]) Delete(ctx context.Context, id int64) error {
	res, err := r.db.ExecContext(ctx, "DELETE FROM "+r.t.name+" WHERE id = $1", id)
	if err != nil {
		return fmt.Errorf("db error: %w", err)
	}
	return expectOneRow(res)
}

func expectOneRow(res sql.Result) error {
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("db error: %w", err)
	}
	if n == 0 {
		return common.ErrorNotFound
	}
	return nil
}

func wrapWriteError(err error) error {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) && pgErr.Code == pgUniqueViolation {
		return fmt.Errorf("%w: %s", common.ErrorAlreadyExists, pgErr.ConstraintName)
	}
	return fmt.Errorf("db error: %w", err)
}

// PostgresUserRepository adds the login lookup to the usuarios table.
type PostgresUserRepository struct {
	*PostgresRepository[models.Usuario]
}

func (r *PostgresUserRepository) GetByUsername(ctx context.Context, username string) (models.Usuario, error) {
	return r.getBy(ctx, "usuario", username)
}

func NewAlunosPostgres(db dbx.DBTX) *PostgresRepository[models.Aluno] {
	return newPostgresRepository(db, alunosTable)
}

func NewProfessoresPostgres(db dbx.DBTX) *PostgresRepository[models.Professor] {
	return newPostgresRepository(db, professoresTable)
}

func NewMateriasPostgres(db dbx.DBTX) *PostgresRepository[models.Materia] {
	return newPostgresRepository(db, materiasTable)
}

func NewUsuariosPostgres(db dbx.DBTX) *PostgresUserRepository {
	return &PostgresUserRepository{newPostgresRepository(db, usuariosTable)}
}
