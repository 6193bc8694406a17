// Package cli is the interactive terminal front-end of the school admin
// client.
//
// App wires the local state database, the session store, the theme
// preference and one API client per resource, then hands control to a
// read-eval-print loop. Navigation goes through the router so protected
// pages redirect to the login screen; entering a resource page builds a
// fresh controller and loads it.
//
// The REPL is started with App.Run, which blocks until the user exits.
package cli
