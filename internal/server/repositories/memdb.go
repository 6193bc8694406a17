package repositories

import (
	"context"
	"fmt"
	"slices"
	"strings"
	"sync"

	"github.com/hashicorp/go-memdb"

	"github.com/dmitrijs2005/schooladmin/internal/common"
	"github.com/dmitrijs2005/schooladmin/internal/models"
)

const (
	indexID       = "id"
	indexUsername = "usuario"
)

func memSchema() *memdb.DBSchema {
	idIndex := &memdb.IndexSchema{
		Name:    indexID,
		Unique:  true,
		Indexer: &memdb.IntFieldIndex{Field: "ID"},
	}
	tables := map[string]*memdb.TableSchema{}
	for _, name := range []string{alunosTable.name, professoresTable.name, materiasTable.name} {
		tables[name] = &memdb.TableSchema{
			Name:    name,
			Indexes: map[string]*memdb.IndexSchema{indexID: idIndex},
		}
	}
	tables[usuariosTable.name] = &memdb.TableSchema{
		Name: usuariosTable.name,
		Indexes: map[string]*memdb.IndexSchema{
			indexID: idIndex,
			indexUsername: {
				Name:    indexUsername,
				Unique:  true,
				Indexer: &memdb.StringFieldIndex{Field: "Usuario", Lowercase: true},
			},
		},
	}
	return &memdb.DBSchema{Tables: tables}
}

// MemRepository implements Repository over one go-memdb table. Ids are
// assigned from a per-table counter and never reused.
type MemRepository[T models.Entity] struct {
	db *memdb.MemDB
	t  table[T]

	// mu serialises writers so uniqueness checks and id assignment are atomic
	mu     sync.Mutex
	nextID int64
	unique func(txn *memdb.Txn, v T) error
}

func newMemRepository[T models.Entity](db *memdb.MemDB, t table[T]) *MemRepository[T] {
	return &MemRepository[T]{db: db, t: t, nextID: 1}
}

func (r *MemRepository[T]) List(_ context.Context) ([]T, error) {
	txn := r.db.Txn(false)
	defer txn.Abort()

	it, err := txn.Get(r.t.name, indexID)
	if err != nil {
		return nil, fmt.Errorf("memdb error: %w", err)
	}
	out := make([]T, 0)
	for obj := it.Next(); obj != nil; obj = it.Next() {
		out = append(out, obj.(T))
	}
	// int indexes are not ordered numerically
	slices.SortFunc(out, func(a, b T) int {
		switch {
		case a.EntityID() < b.EntityID():
			return -1
		case a.EntityID() > b.EntityID():
			return 1
		}
		return 0
	})
	return out, nil
}

func (r *MemRepository[T]) Get(_ context.Context, id int64) (T, error) {
	txn := r.db.Txn(false)
	defer txn.Abort()
	return r.first(txn, indexID, id)
}

func (r *MemRepository[T]) first(txn *memdb.Txn, index string, arg any) (T, error) {
	var zero T
	obj, err := txn.First(r.t.name, index, arg)
	if err != nil {
		return zero, fmt.Errorf("memdb error: %w", err)
	}
	if obj == nil {
		return zero, common.ErrorNotFound
	}
	return obj.(T), nil
}

func (r *MemRepository[T]) Create(_ context.Context, v T) (T, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	txn := r.db.Txn(true)
	defer txn.Abort()

	v = r.t.withID(v, r.nextID)
	if err := r.checkUnique(txn, v); err != nil {
		var zero T
		return zero, err
	}
	if err := txn.Insert(r.t.name, v); err != nil {
		var zero T
		return zero, fmt.Errorf("memdb error: %w", err)
	}
	txn.Commit()
	r.nextID++
	return v, nil
}

func (r *MemRepository[T]) Update(_ context.Context, v T) (T, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	txn := r.db.Txn(true)
	defer txn.Abort()

	var zero T
	if _, err := r.first(txn, indexID, v.EntityID()); err != nil {
		return zero, err
	}
	if err := r.checkUnique(txn, v); err != nil {
		return zero, err
	}
	if err := txn.Insert(r.t.name, v); err != nil {
		return zero, fmt.Errorf("memdb error: %w", err)
	}
	txn.Commit()
	return v, nil
}

func (r *MemRepository[T]) Delete(_ context.Context, id int64) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	txn := r.db.Txn(true)
	defer txn.Abort()

	n, err := txn.DeleteAll(r.t.name, indexID, id)
	if err != nil {
		return fmt.Errorf("memdb error: %w", err)
	}
	if n == 0 {
		return common.ErrorNotFound
	}
	txn.Commit()
	return nil
}

func (r *MemRepository[T]) checkUnique(txn *memdb.Txn, v T) error {
	if r.unique == nil {
		return nil
	}
	return r.unique(txn, v)
}

// MemUserRepository keeps login names unique, ignoring case.
type MemUserRepository struct {
	*MemRepository[models.Usuario]
}

func (r *MemUserRepository) GetByUsername(_ context.Context, username string) (models.Usuario, error) {
	txn := r.db.Txn(false)
	defer txn.Abort()
	return r.first(txn, indexUsername, strings.ToLower(username))
}

// MemStore is the in-memory backend. Its data is lost on exit.
type MemStore struct {
	alunos      *MemRepository[models.Aluno]
	professores *MemRepository[models.Professor]
	materias    *MemRepository[models.Materia]
	usuarios    *MemUserRepository
}

func NewMemStore() (*MemStore, error) {
	db, err := memdb.NewMemDB(memSchema())
	if err != nil {
		return nil, fmt.Errorf("memdb init: %w", err)
	}

	users := &MemUserRepository{newMemRepository(db, usuariosTable)}
	users.unique = func(txn *memdb.Txn, u models.Usuario) error {
		obj, err := txn.First(usuariosTable.name, indexUsername, strings.ToLower(u.Usuario))
		if err != nil {
			return fmt.Errorf("memdb error: %w", err)
		}
		if obj != nil && obj.(models.Usuario).ID != u.ID {
			return fmt.Errorf("%w: usuario %q", common.ErrorAlreadyExists, u.Usuario)
		}
		return nil
	}

	return &MemStore{
		alunos:      newMemRepository(db, alunosTable),
		professores: newMemRepository(db, professoresTable),
		materias:    newMemRepository(db, materiasTable),
		usuarios:    users,
	}, nil
}

func (s *MemStore) Alunos() Repository[models.Aluno]         { return s.alunos }
func (s *MemStore) Professores() Repository[models.Professor] { return s.professores }
func (s *MemStore) Materias() Repository[models.Materia]      { return s.materias }
func (s *MemStore) Usuarios() UserRepository                  { return s.usuarios }
func (s *MemStore) Close() error                              { return nil }
