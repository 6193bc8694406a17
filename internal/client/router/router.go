// Package router maps paths to screens and keeps anonymous users out of the
// protected ones.
package router

import (
	"strings"

	"github.com/dmitrijs2005/schooladmin/internal/client/session"
	"github.com/dmitrijs2005/schooladmin/internal/models"
)

// Screen identifies what the client should show for a path.
type Screen string

const (
	ScreenHome     Screen = "home"
	ScreenLogin    Screen = "login"
	ScreenResource Screen = "resource"
	ScreenNotFound Screen = "not-found"
)

// Route is one entry of the table.
type Route struct {
	Path      string
	Screen    Screen
	Protected bool
	// Resource is set for ScreenResource routes.
	Resource *models.Resource
}

// Outcome is the result of resolving a path.
type Outcome struct {
	Route Route
	// Redirect is non-empty when the guard sent the user elsewhere; Route
	// then describes the redirect target.
	Redirect string
	// Requested is the path as asked for, normalised.
	Requested string
}

// Router is immutable after New.
type Router struct {
	routes map[string]Route
	order  []string
}

// New builds the table: home and login are public, every resource is
// protected.
func New(resources ...models.Resource) *Router {
	r := &Router{routes: make(map[string]Route)}
	r.add(Route{Path: session.RouteHome, Screen: ScreenHome})
	r.add(Route{Path: session.RouteLogin, Screen: ScreenLogin})
	for i := range resources {
		res := resources[i]
		r.add(Route{Path: res.Path, Screen: ScreenResource, Protected: true, Resource: &res})
	}
	return r
}

func (r *Router) add(rt Route) {
	r.routes[rt.Path] = rt
	r.order = append(r.order, rt.Path)
}

// Routes lists the table in registration order.
func (r *Router) Routes() []Route {
	out := make([]Route, 0, len(r.order))
	for _, p := range r.order {
		out = append(out, r.routes[p])
	}
	return out
}

// Resolve finds the screen for path. A protected path requested without an
// identity resolves to the login screen; an unknown path resolves to
// not-found regardless of identity.
func (r *Router) Resolve(path string, authenticated bool) Outcome {
	p := Normalize(path)
	rt, ok := r.routes[p]
	if !ok {
		return Outcome{Route: Route{Path: p, Screen: ScreenNotFound}, Requested: p}
	}
	if rt.Protected && !authenticated {
		return Outcome{Route: r.routes[session.RouteLogin], Redirect: session.RouteLogin, Requested: p}
	}
	return Outcome{Route: rt, Requested: p}
}

// Normalize turns user input such as "alunos/" or "ALUNOS" into "/alunos".
func Normalize(path string) string {
	p := strings.ToLower(strings.TrimSpace(path))
	p = "/" + strings.Trim(p, "/")
	return p
}
