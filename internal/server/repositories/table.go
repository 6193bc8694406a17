package repositories

import (
	"github.com/dmitrijs2005/schooladmin/internal/models"
)

// scanner is satisfied by *sql.Row and *sql.Rows.
type scanner interface {
	Scan(dest ...any) error
}

// table maps an entity onto a table: the non-id columns in order, how to
// produce their values and how to read a row back.
type table[T models.Entity] struct {
	name    string
	columns []string
	values  func(T) []any
	scan    func(scanner) (T, error)
	withID  func(T, int64) T
}

var alunosTable = table[models.Aluno]{
	name:    "alunos",
	columns: []string{"nome", "idade", "cpf"},
	values:  func(a models.Aluno) []any { return []any{a.Nome, a.Idade, a.CPF} },
	scan: func(s scanner) (models.Aluno, error) {
		var a models.Aluno
		err := s.Scan(&a.ID, &a.Nome, &a.Idade, &a.CPF)
		return a, err
	},
	withID: func(a models.Aluno, id int64) models.Aluno { a.ID = id; return a },
}

var professoresTable = table[models.Professor]{
	name:    "professores",
	columns: []string{"nome", "idade", "formacao"},
	values:  func(p models.Professor) []any { return []any{p.Nome, p.Idade, p.Formacao} },
	scan: func(s scanner) (models.Professor, error) {
		var p models.Professor
		err := s.Scan(&p.ID, &p.Nome, &p.Idade, &p.Formacao)
		return p, err
	},
	withID: func(p models.Professor, id int64) models.Professor { p.ID = id; return p },
}

var materiasTable = table[models.Materia]{
	name:    "materias",
	columns: []string{"nome", "sigla_curricular", "descricao"},
	values:  func(m models.Materia) []any { return []any{m.Nome, m.SiglaCurricular, m.Descricao} },
	scan: func(s scanner) (models.Materia, error) {
		var m models.Materia
		err := s.Scan(&m.ID, &m.Nome, &m.SiglaCurricular, &m.Descricao)
		return m, err
	},
	withID: func(m models.Materia, id int64) models.Materia { m.ID = id; return m },
}

var usuariosTable = table[models.Usuario]{
	name:    "usuarios",
	columns: []string{"usuario", "senha", "ativo"},
	values:  func(u models.Usuario) []any { return []any{u.Usuario, u.Senha, u.Ativo} },
	scan: func(s scanner) (models.Usuario, error) {
		var u models.Usuario
		err := s.Scan(&u.ID, &u.Usuario, &u.Senha, &u.Ativo)
		return u, err
	},
	withID: func(u models.Usuario, id int64) models.Usuario { u.ID = id; return u },
}
