package cli

import (
	"context"
	"errors"
	"fmt"

	"github.com/dmitrijs2005/schooladmin/internal/client/router"
	"github.com/dmitrijs2005/schooladmin/internal/models"
)

var errNoPage = errors.New("not on a resource page; use 'go <page>' first")

// Go navigates to path, applying the login guard. Entering a resource page
// loads it.
func (a *App) Go(ctx context.Context, path string) error {
	out := a.router.Resolve(path, a.isLoggedIn())
	pal := a.palette()

	if out.Redirect != "" {
		pal.Warning.Fprintf(a.out, "%s requires login\n", out.Requested)
	}

	a.route = out.Route.Path
	a.current = nil

	switch out.Route.Screen {
	case router.ScreenHome:
		a.renderHome()
	case router.ScreenLogin:
		pal.Text.Fprintln(a.out, "Type 'login' to sign in.")
	case router.ScreenNotFound:
		pal.Error.Fprintf(a.out, "Page not found: %s\n", out.Requested)
	case router.ScreenResource:
		factory, ok := a.pages[out.Route.Resource.Name]
		if !ok {
			return fmt.Errorf("no page for %s", out.Route.Resource.Name)
		}
		a.current = factory()
		// the failure is reported by the page itself
		_ = a.current.Load(ctx)
		a.render()
	}
	return nil
}

// followPending performs the navigation requested by the session store.
func (a *App) followPending(ctx context.Context) error {
	if a.pending == "" {
		return nil
	}
	route := a.pending
	a.pending = ""
	return a.Go(ctx, route)
}

func (a *App) renderHome() {
	pal := a.palette()
	pal.Title.Fprintln(a.out, "Home")
	if cur, ok := a.store.Current(); ok {
		pal.Text.Fprintf(a.out, "Signed in as %s.\n", cur.Identity)
	} else {
		pal.Text.Fprintln(a.out, "Not signed in. Type 'login' to sign in.")
	}
	for _, res := range models.All() {
		pal.Text.Fprintf(a.out, "  %-14s %s\n", res.Name, res.Title)
	}
}

// render draws the current page and flushes its notices.
func (a *App) render() {
	if a.current == nil {
		return
	}
	pal := a.palette()
	renderNotices(a.out, pal, a.current.Notices())
	renderPage(a.out, pal, a.current.Resource(), a.current.View())
}

func (a *App) flushNotices() {
	if a.current != nil {
		renderNotices(a.out, a.palette(), a.current.Notices())
	}
}
