package repositories

import (
	"context"
	"database/sql"
	"errors"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/pressly/goose/v3"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dmitrijs2005/schooladmin/internal/common"
	"github.com/dmitrijs2005/schooladmin/internal/models"
)

func newMock(t *testing.T) (*sql.DB, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New(sqlmock.QueryMatcherOption(sqlmock.QueryMatcherRegexp))
	require.NoError(t, err)
	t.Cleanup(func() {
		assert.NoError(t, mock.ExpectationsWereMet())
		db.Close()
	})
	return db, mock
}

func TestPostgres_List(t *testing.T) {
	db, mock := newMock(t)
	repo := NewAlunosPostgres(db)

	mock.ExpectQuery(`^SELECT id, nome, idade, cpf FROM alunos ORDER BY id$`).
		WillReturnRows(sqlmock.NewRows([]string{"id", "nome", "idade", "cpf"}).
			AddRow(int64(1), "Ana", 20, "111").
			AddRow(int64(2), "Beto", 22, "222"))

	got, err := repo.List(context.Background())
	require.NoError(t, err)
	assert.Equal(t, []models.Aluno{
		{ID: 1, Nome: "Ana", Idade: 20, CPF: "111"},
		{ID: 2, Nome: "Beto", Idade: 22, CPF: "222"},
	}, got)
}

func TestPostgres_ListEmpty(t *testing.T) {
	db, mock := newMock(t)
	repo := NewMateriasPostgres(db)

	mock.ExpectQuery(`FROM materias ORDER BY id`).
		WillReturnRows(sqlmock.NewRows([]string{"id", "nome", "sigla_curricular", "descricao"}))

	got, err := repo.List(context.Background())
	require.NoError(t, err)
	assert.NotNil(t, got)
	assert.Empty(t, got)
}

func TestPostgres_Get(t *testing.T) {
	db, mock := newMock(t)
	repo := NewProfessoresPostgres(db)

	mock.ExpectQuery(`^SELECT id, nome, idade, formacao FROM professores WHERE id = \$1$`).
		WithArgs(int64(3)).
		WillReturnRows(sqlmock.NewRows([]string{"id", "nome", "idade", "formacao"}).
			AddRow(int64(3), "Carla", 40, "Física"))
	mock.ExpectQuery(`FROM professores WHERE id = \$1`).
		WithArgs(int64(4)).
		WillReturnError(sql.ErrNoRows)
	mock.ExpectQuery(`FROM professores WHERE id = \$1`).
		WithArgs(int64(5)).
		WillReturnError(errors.New("db down"))

	got, err := repo.Get(context.Background(), 3)
	require.NoError(t, err)
	assert.Equal(t, models.Professor{ID: 3, Nome: "Carla", Idade: 40, Formacao: "Física"}, got)

	_, err = repo.Get(context.Background(), 4)
	assert.ErrorIs(t, err, common.ErrorNotFound)

	_, err = repo.Get(context.Background(), 5)
	assert.ErrorContains(t, err, "db error: db down")
}

func TestPostgres_Create(t *testing.T) {
	db, mock := newMock(t)
	repo := NewMateriasPostgres(db)

	mock.ExpectQuery(`^INSERT INTO materias \(nome, sigla_curricular, descricao\) VALUES \(\$1, \$2, \$3\) RETURNING id$`).
		WithArgs("Álgebra", "MAT1", "").
		WillReturnRows(sqlmock.NewRows([]string{"id"}).AddRow(int64(9)))

	got, err := repo.Create(context.Background(), models.Materia{Nome: "Álgebra", SiglaCurricular: "MAT1"})
	require.NoError(t, err)
	assert.Equal(t, int64(9), got.ID)
	assert.Equal(t, "MAT1", got.SiglaCurricular)
}

func TestPostgres_CreateUniqueViolation(t *testing.T) {
	db, mock := newMock(t)
	repo := NewUsuariosPostgres(db)

	mock.ExpectQuery(`INSERT INTO usuarios`).
		WithArgs("admin", "hash", 1).
		WillReturnError(&pgconn.PgError{Code: "23505", ConstraintName: "usuarios_usuario_key"})

	_, err := repo.Create(context.Background(), models.Usuario{Usuario: "admin", Senha: "hash", Ativo: 1})
	assert.ErrorIs(t, err, common.ErrorAlreadyExists)
}

func TestPostgres_Update(t *testing.T) {
	db, mock := newMock(t)
	repo := NewAlunosPostgres(db)

	q := `^UPDATE alunos SET nome = \$1, idade = \$2, cpf = \$3 WHERE id = \$4$`
	mock.ExpectExec(q).WithArgs("Ana", 21, "111", int64(1)).WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec(q).WithArgs("X", 0, "", int64(7)).WillReturnResult(sqlmock.NewResult(0, 0))

	got, err := repo.Update(context.Background(), models.Aluno{ID: 1, Nome: "Ana", Idade: 21, CPF: "111"})
	require.NoError(t, err)
	assert.Equal(t, 21, got.Idade)

	_, err = repo.Update(context.Background(), models.Aluno{ID: 7, Nome: "X"})
	assert.ErrorIs(t, err, common.ErrorNotFound)
}

func TestPostgres_Delete(t *testing.T) {
	db, mock := newMock(t)
	repo := NewAlunosPostgres(db)

	mock.ExpectExec(`^DELETE FROM alunos WHERE id = \$1$`).WithArgs(int64(1)).WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec(`^DELETE FROM alunos WHERE id = \$1$`).WithArgs(int64(2)).WillReturnResult(sqlmock.NewResult(0, 0))

	require.NoError(t, repo.Delete(context.Background(), 1))
	assert.ErrorIs(t, repo.Delete(context.Background(), 2), common.ErrorNotFound)
}

func TestPostgres_GetByUsername(t *testing.T) {
	db, mock := newMock(t)
	repo := NewUsuariosPostgres(db)

	mock.ExpectQuery(`^SELECT id, usuario, senha, ativo FROM usuarios WHERE usuario = \$1$`).
		WithArgs("admin").
		WillReturnRows(sqlmock.NewRows([]string{"id", "usuario", "senha", "ativo"}).
			AddRow(int64(1), "admin", "$2a$hash", 1))

	got, err := repo.GetByUsername(context.Background(), "admin")
	require.NoError(t, err)
	assert.Equal(t, models.Usuario{ID: 1, Usuario: "admin", Senha: "$2a$hash", Ativo: 1}, got)
}

func TestRunMigrations_UsesEmbeddedDir(t *testing.T) {
	db, _ := newMock(t)

	orig := gooseUpContext
	t.Cleanup(func() { gooseUpContext = orig })

	var gotDir string
	gooseUpContext = func(_ context.Context, _ *sql.DB, dir string, _ ...goose.OptionsFunc) error {
		gotDir = dir
		return nil
	}
	require.NoError(t, RunMigrations(context.Background(), db))
	assert.Equal(t, ".", gotDir)

	gooseUpContext = func(context.Context, *sql.DB, string, ...goose.OptionsFunc) error {
		return errors.New("boom")
	}
	assert.ErrorContains(t, RunMigrations(context.Background(), db), "migrate: boom")
}

func TestPostgresStore_Wiring(t *testing.T) {
	db, mock := newMock(t)
	mock.ExpectClose()

	s := NewPostgresStore(db)
	var _ Store = s
	assert.NotNil(t, s.Alunos())
	assert.NotNil(t, s.Usuarios())
	require.NoError(t, s.Close())
}
