package models

// FieldKind tells the view how to prompt for and display a field.
type FieldKind int

const (
	KindText FieldKind = iota
	KindNumber
	KindSecret
)

// Field describes one editable attribute of a record. Name is the JSON key.
type Field struct {
	Name  string
	Label string
	Kind  FieldKind
}

// Resource describes an entity type exposed by the API.
type Resource struct {
	Name   string
	Path   string
	Title  string
	Noun   string // singular used in messages
	Fields []Field
}

var (
	Alunos = Resource{
		Name:  "alunos",
		Path:  "/alunos",
		Title: "Alunos",
		Noun:  "aluno",
		Fields: []Field{
			{Name: "nome", Label: "Nome", Kind: KindText},
			{Name: "idade", Label: "Idade", Kind: KindNumber},
			{Name: "cpf", Label: "CPF", Kind: KindText},
		},
	}

	Professores = Resource{
		Name:  "professores",
		Path:  "/professores",
		Title: "Professores",
		Noun:  "professor",
		Fields: []Field{
			{Name: "nome", Label: "Nome", Kind: KindText},
			{Name: "idade", Label: "Idade", Kind: KindNumber},
			{Name: "formacao", Label: "Formação", Kind: KindText},
		},
	}

	Materias = Resource{
		Name:  "materias",
		Path:  "/materias",
		Title: "Matérias",
		Noun:  "matéria",
		Fields: []Field{
			{Name: "nome", Label: "Nome", Kind: KindText},
			{Name: "sigla_curricular", Label: "Sigla curricular", Kind: KindText},
			{Name: "descricao", Label: "Descrição", Kind: KindText},
		},
	}

	Usuarios = Resource{
		Name:  "usuarios",
		Path:  "/usuarios",
		Title: "Usuários",
		Noun:  "usuário",
		Fields: []Field{
			{Name: "usuario", Label: "Usuário", Kind: KindText},
			{Name: "senha", Label: "Senha", Kind: KindSecret},
			{Name: "ativo", Label: "Ativo", Kind: KindNumber},
		},
	}
)

// All lists the resources in navigation order.
func All() []Resource {
	return []Resource{Alunos, Professores, Materias, Usuarios}
}

// Field returns the field named name, if the resource has one.
func (r Resource) Field(name string) (Field, bool) {
	for _, f := range r.Fields {
		if f.Name == name {
			return f, true
		}
	}
	return Field{}, false
}
