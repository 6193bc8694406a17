// Package models defines the school records exchanged with the API and the
// resource descriptors used to render and route them.
package models

// Records carry two rule sets: `validate` is what the server accepts, `draft`
// is the smaller set the client enforces before a save.

// Entity is a record with a server-assigned identifier.
// A zero ID marks an unsaved draft; it is omitted from JSON payloads.
type Entity interface {
	EntityID() int64
}

// Aluno is a student.
type Aluno struct {
	ID    int64  `json:"id,omitempty"`
	Nome  string `json:"nome" validate:"required"`
	Idade int    `json:"idade" validate:"gte=0,lte=150"`
	CPF   string `json:"cpf"`
}

func (a Aluno) EntityID() int64 { return a.ID }

// Professor is a teacher. Every field is mandatory, and the client checks
// that before sending a draft.
type Professor struct {
	ID       int64  `json:"id,omitempty"`
	Nome     string `json:"nome" validate:"required" draft:"required"`
	Idade    int    `json:"idade" validate:"required,gt=0,lte=150" draft:"required"`
	Formacao string `json:"formacao" validate:"required" draft:"required"`
}

func (p Professor) EntityID() int64 { return p.ID }

// Materia is a subject of the curriculum.
type Materia struct {
	ID              int64  `json:"id,omitempty"`
	Nome            string `json:"nome" validate:"required"`
	SiglaCurricular string `json:"sigla_curricular"`
	Descricao       string `json:"descricao"`
}

func (m Materia) EntityID() int64 { return m.ID }

// Usuario is an account allowed to call the API.
//
// Senha is write-only: the server stores a hash and never returns it, so an
// update with an empty Senha keeps the current password.
type Usuario struct {
	ID      int64  `json:"id,omitempty"`
	Usuario string `json:"usuario" validate:"required"`
	Senha   string `json:"senha,omitempty"`
	Ativo   int    `json:"ativo" validate:"oneof=0 1"`
}

func (u Usuario) EntityID() int64 { return u.ID }
