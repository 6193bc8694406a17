package cli

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/dmitrijs2005/schooladmin/internal/client/api"
	"github.com/dmitrijs2005/schooladmin/internal/client/controller"
	"github.com/dmitrijs2005/schooladmin/internal/models"
)

// Page commands. Each one reports its outcome through the page's notices
// and redraws the page when the collection or the dialog changed.

func (a *App) List(ctx context.Context) error {
	if a.current == nil {
		return errNoPage
	}
	a.render()
	return nil
}

func (a *App) Search(ctx context.Context, query string) error {
	if a.current == nil {
		return errNoPage
	}
	err := a.current.Search(ctx, query)
	a.render()
	return a.reported(err)
}

func (a *App) Clear(ctx context.Context) error {
	if a.current == nil {
		return errNoPage
	}
	a.current.Clear()
	a.render()
	return nil
}

// New opens an empty form and prompts for every field.
func (a *App) New(ctx context.Context) error {
	if a.current == nil {
		return errNoPage
	}
	if err := a.current.New(); err != nil {
		return err
	}
	if err := a.fillForm(); err != nil {
		return err
	}
	a.render()
	return nil
}

// Edit opens the form on a listed record and prompts for every field,
// keeping the current value on an empty answer.
func (a *App) Edit(ctx context.Context, arg string) error {
	if a.current == nil {
		return errNoPage
	}
	id, err := parseID(arg)
	if err != nil {
		return err
	}
	if err := a.current.Edit(id); err != nil {
		return err
	}
	if err := a.fillForm(); err != nil {
		return err
	}
	a.render()
	return nil
}

func (a *App) Set(ctx context.Context, field, value string) error {
	if a.current == nil {
		return errNoPage
	}
	if err := a.current.Set(field, value); err != nil {
		return err
	}
	a.render()
	return nil
}

func (a *App) Save(ctx context.Context) error {
	if a.current == nil {
		return errNoPage
	}
	err := a.current.Save(ctx)
	a.render()
	return a.reported(err)
}

func (a *App) Cancel(ctx context.Context) error {
	if a.current == nil {
		return errNoPage
	}
	a.current.Cancel()
	a.render()
	return nil
}

// Delete asks for confirmation before removing a record.
func (a *App) Delete(ctx context.Context, arg string) error {
	if a.current == nil {
		return errNoPage
	}
	id, err := parseID(arg)
	if err != nil {
		return err
	}
	res := a.current.Resource()
	if !confirm(a.reader, fmt.Sprintf("Delete %s %d?", res.Noun, id), a.out) {
		a.palette().Text.Fprintln(a.out, "Cancelled")
		return nil
	}
	err = a.current.Delete(ctx, id)
	a.render()
	return a.reported(err)
}

// fillForm walks the fields of the open draft. Answers that fail to apply
// are reported and the field is asked again.
func (a *App) fillForm() error {
	res := a.current.Resource()
	for _, f := range res.Fields {
		for {
			value, skip, err := a.askField(f)
			if err != nil {
				return err
			}
			if skip {
				break
			}
			if err := a.current.Set(f.Name, value); err != nil {
				a.palette().Error.Fprintln(a.out, err)
				continue
			}
			break
		}
	}
	return nil
}

// askField prompts for one field. skip is true for an empty answer, which
// keeps the draft's value.
func (a *App) askField(f models.Field) (value string, skip bool, err error) {
	if f.Kind == models.KindSecret {
		pw, err := getPassword(f.Label+" (empty keeps current)", a.out)
		if err != nil {
			return "", false, err
		}
		defer wipe(pw)
		value = string(pw)
	} else {
		current := a.current.View().Draft[f.Name]
		value, err = getSimpleText(a.reader, fmt.Sprintf("%s [%s]", f.Label, current), a.out)
		if err != nil {
			return "", false, err
		}
	}
	return value, value == "", nil
}

// reported filters out errors the page already turned into notices, adding
// advice when the server refused the credentials.
func (a *App) reported(err error) error {
	switch {
	case err == nil:
		return nil
	case errors.Is(err, controller.ErrBusy), errors.Is(err, controller.ErrNotReady),
		errors.Is(err, controller.ErrDialogClosed):
		return err
	case api.IsUnauthorized(err):
		a.palette().Warning.Fprintln(a.out, "The server rejected the stored credentials. Type 'login' to sign in again.")
	}
	return nil
}

func parseID(arg string) (int64, error) {
	id, err := strconv.ParseInt(strings.TrimSpace(arg), 10, 64)
	if err != nil || id <= 0 {
		return 0, fmt.Errorf("invalid id %q", arg)
	}
	return id, nil
}
