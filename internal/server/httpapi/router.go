// Package httpapi exposes the school resources over HTTP/JSON.
//
// Every resource path answers
//
//	GET    /<resource>         200 list
//	POST   /<resource>         201 created record
//	PUT    /<resource>         200 updated record, id taken from the body | 404
//	GET    /<resource>/{id}    200 record | 404
//	PUT    /<resource>/{id}    200 updated record | 404
//	DELETE /<resource>/{id}    204 | 404
//
// Failures carry {"error": "..."}: 400 for malformed or invalid payloads,
// 401 for missing or rejected Basic credentials, 409 for duplicates.
package httpapi

import (
	"context"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/dmitrijs2005/schooladmin/internal/logging"
	"github.com/dmitrijs2005/schooladmin/internal/models"
)

// Service is the per-resource business layer.
type Service[T models.Entity] interface {
	List(ctx context.Context) ([]T, error)
	Get(ctx context.Context, id int64) (T, error)
	Create(ctx context.Context, v T) (T, error)
	Update(ctx context.Context, v T) (T, error)
	Delete(ctx context.Context, id int64) error
}

// Authenticator checks Basic credentials.
type Authenticator interface {
	Authenticate(ctx context.Context, username, secret string) (models.Usuario, error)
}

// Services bundles what the router serves.
type Services struct {
	Alunos      Service[models.Aluno]
	Professores Service[models.Professor]
	Materias    Service[models.Materia]
	Usuarios    Service[models.Usuario]
	Auth        Authenticator
}

func NewRouter(s Services, log logging.Logger) http.Handler {
	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(requestLogger(log))
	r.Use(middleware.Recoverer)

	r.NotFound(func(w http.ResponseWriter, _ *http.Request) {
		writeError(w, http.StatusNotFound, "not found")
	})
	r.MethodNotAllowed(func(w http.ResponseWriter, _ *http.Request) {
		writeError(w, http.StatusMethodNotAllowed, "method not allowed")
	})

	r.Get("/health", func(w http.ResponseWriter, _ *http.Request) {
		writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	})

	r.Group(func(r chi.Router) {
		r.Use(basicAuth(s.Auth, log))
		mount(r, models.Alunos.Path, s.Alunos, log)
		mount(r, models.Professores.Path, s.Professores, log)
		mount(r, models.Materias.Path, s.Materias, log)
		mount(r, models.Usuarios.Path, s.Usuarios, log)
	})

	return r
}

func mount[T models.Entity](r chi.Router, path string, svc Service[T], log logging.Logger) {
	h := &resourceHandler[T]{svc: svc, log: log.With("resource", path)}
	r.Route(path, func(r chi.Router) {
		r.Get("/", h.list)
		r.Post("/", h.create)
		r.Put("/", h.replace)
		r.Get("/{id}", h.get)
		r.Put("/{id}", h.update)
		r.Delete("/{id}", h.delete)
	})
}
