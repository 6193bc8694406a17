package cli

import (
	"bufio"
	"context"
	"database/sql"
	"fmt"
	"io"
	"os"

	"github.com/dmitrijs2005/schooladmin/internal/client/api"
	"github.com/dmitrijs2005/schooladmin/internal/client/config"
	"github.com/dmitrijs2005/schooladmin/internal/client/controller"
	"github.com/dmitrijs2005/schooladmin/internal/client/repositories/metadata"
	"github.com/dmitrijs2005/schooladmin/internal/client/router"
	"github.com/dmitrijs2005/schooladmin/internal/client/session"
	"github.com/dmitrijs2005/schooladmin/internal/client/storage"
	"github.com/dmitrijs2005/schooladmin/internal/client/theme"
	"github.com/dmitrijs2005/schooladmin/internal/logging"
	"github.com/dmitrijs2005/schooladmin/internal/models"
)

// pageFactory builds a fresh, unloaded page. A new one is made on every
// navigation so a failed load can be retried by navigating again.
type pageFactory func() page

type App struct {
	db     *sql.DB
	store  *session.Store
	theme  *theme.Preference
	router *router.Router
	pages  map[string]pageFactory
	log    logging.Logger

	route   string
	current page
	// pending is the route the session store asked for during the last command.
	pending string

	reader *bufio.Reader
	out    io.Writer
}

// NewApp opens the local state database and wires the session, theme and
// one API client per resource.
func NewApp(ctx context.Context, c *config.Config, log logging.Logger) (*App, error) {
	db, err := storage.Open(ctx, c.StateDB)
	if err != nil {
		log.Error(ctx, "error initializing state database", "path", c.StateDB, "error", err)
		return nil, err
	}

	repo := metadata.NewSQLiteRepository(db)
	store := session.NewStore(repo, log)

	opts := api.Options{Credentials: store, Logger: log, Timeout: c.Timeout}
	pages := map[string]pageFactory{
		models.Alunos.Name:      resourceFactory[models.Aluno](c.APIURL, models.Alunos, opts, log),
		models.Professores.Name: resourceFactory[models.Professor](c.APIURL, models.Professores, opts, log),
		models.Materias.Name:    resourceFactory[models.Materia](c.APIURL, models.Materias, opts, log),
		models.Usuarios.Name:    resourceFactory[models.Usuario](c.APIURL, models.Usuarios, opts, log),
	}

	a := newApp(store, theme.NewPreference(repo), pages, bufio.NewReader(os.Stdin), os.Stdout, log)
	a.db = db
	return a, nil
}

func newApp(store *session.Store, pref *theme.Preference, pages map[string]pageFactory,
	reader *bufio.Reader, out io.Writer, log logging.Logger) *App {
	a := &App{
		store:  store,
		theme:  pref,
		router: router.New(models.All()...),
		pages:  pages,
		log:    log,
		reader: reader,
		out:    out,
	}
	store.OnNavigate(func(route string) { a.pending = route })
	return a
}

func resourceFactory[T models.Entity](baseURL string, res models.Resource, opts api.Options, log logging.Logger) pageFactory {
	client := api.NewResource[T](baseURL, res.Path, opts)
	return func() page {
		ctl := controller.New[T](client,
			controller.WithNoun(res.Noun),
			controller.WithLogger(log.With("resource", res.Name)))
		return newResourcePage(res, ctl)
	}
}

// Run restores the previous session and theme, shows the home screen and
// blocks in the REPL until the user exits or input ends.
func (a *App) Run(ctx context.Context) error {
	defer a.Close()

	if err := a.store.Restore(ctx); err != nil {
		return err
	}
	if err := a.theme.Load(ctx); err != nil {
		a.log.Warn(ctx, "theme preference not loaded", "error", err)
	}

	a.theme.Palette().Title.Fprintln(a.out, "School admin (type 'help' for commands)")
	if err := a.Go(ctx, session.RouteHome); err != nil {
		return err
	}
	runREPL(ctx, a, a.reader)
	return nil
}

func (a *App) Close() {
	if a.db != nil {
		_ = a.db.Close()
		a.db = nil
	}
}

func (a *App) isLoggedIn() bool {
	return a.store.Authenticated()
}

// status is shown in the prompt: the current route and identity.
func (a *App) status() string {
	s := a.route
	if cur, ok := a.store.Current(); ok {
		s = fmt.Sprintf("%s (%s)", s, cur.Identity)
	}
	return s
}

func (a *App) palette() theme.Palette {
	return a.theme.Palette()
}
