package cli

import (
	"context"
	"errors"
)

// getSimpleText, getPassword and confirm are indirections swapped in tests.
var (
	getSimpleText = GetSimpleText
	getPassword   = GetPassword
	confirm       = Confirm
)

var errEmptyUsername = errors.New("username must not be empty")

// Login asks for a username and password and stores them as the session.
// The credential is not verified here; the server rejects it on the first
// call if it is wrong.
func (a *App) Login(ctx context.Context) error {
	userName, err := getSimpleText(a.reader, "Usuário", a.out)
	if err != nil {
		return err
	}
	if userName == "" {
		return errEmptyUsername
	}

	password, err := getPassword("Senha", a.out)
	if err != nil {
		return err
	}
	defer wipe(password)

	if err := a.store.Login(ctx, userName, string(password)); err != nil {
		return err
	}
	a.palette().Success.Fprintf(a.out, "Signed in as %s\n", userName)
	return a.followPending(ctx)
}

// Logout forgets the stored session and returns to the login screen.
func (a *App) Logout(ctx context.Context) error {
	if err := a.store.Logout(ctx); err != nil {
		return err
	}
	a.palette().Success.Fprintln(a.out, "Signed out")
	return a.followPending(ctx)
}

// Theme flips between the dark and light palettes and remembers the choice.
func (a *App) Theme(ctx context.Context) error {
	if _, err := a.theme.Toggle(ctx); err != nil {
		return err
	}
	a.palette().Success.Fprintf(a.out, "Theme: %s\n", a.theme.Name())
	return nil
}
