package cli

import (
	"context"
	"fmt"

	"github.com/mitchellh/mapstructure"

	"github.com/dmitrijs2005/schooladmin/internal/client/controller"
	"github.com/dmitrijs2005/schooladmin/internal/models"
)

// page is a resource screen as the REPL sees it: a controller with its
// entity type erased.
type page interface {
	Resource() models.Resource
	Load(ctx context.Context) error
	Search(ctx context.Context, query string) error
	Clear()
	New() error
	Edit(id int64) error
	Set(field, value string) error
	Save(ctx context.Context) error
	Cancel()
	Delete(ctx context.Context, id int64) error
	View() pageView
	Notices() []controller.Notice
}

// pageView is what the renderer draws.
type pageView struct {
	Phase    controller.Phase
	Err      error
	Rows     []map[string]string
	Total    int
	Filtered bool
	Query    string
	Mode     controller.Mode
	Draft    map[string]string
}

type resourcePage[T models.Entity] struct {
	res models.Resource
	ctl *controller.Controller[T]
}

func newResourcePage[T models.Entity](res models.Resource, ctl *controller.Controller[T]) *resourcePage[T] {
	return &resourcePage[T]{res: res, ctl: ctl}
}

func (p *resourcePage[T]) Resource() models.Resource { return p.res }

func (p *resourcePage[T]) Load(ctx context.Context) error { return p.ctl.Initialize(ctx) }

func (p *resourcePage[T]) Search(ctx context.Context, query string) error {
	return p.ctl.Search(ctx, query)
}

func (p *resourcePage[T]) Clear() { p.ctl.ClearFilter() }

func (p *resourcePage[T]) New() error { return p.ctl.OpenCreate() }

func (p *resourcePage[T]) Edit(id int64) error { return p.ctl.OpenEditByID(id) }

func (p *resourcePage[T]) Set(field, value string) error {
	return p.ctl.UpdateDraftField(field, value)
}

func (p *resourcePage[T]) Save(ctx context.Context) error {
	_, err := p.ctl.Save(ctx)
	return err
}

func (p *resourcePage[T]) Cancel() { p.ctl.CloseDialog() }

func (p *resourcePage[T]) Delete(ctx context.Context, id int64) error {
	return p.ctl.Delete(ctx, id)
}

func (p *resourcePage[T]) Notices() []controller.Notice { return p.ctl.Notices() }

func (p *resourcePage[T]) View() pageView {
	st := p.ctl.Snapshot()
	v := pageView{
		Phase:    st.Phase,
		Err:      st.Err,
		Rows:     make([]map[string]string, 0, len(st.Visible)),
		Total:    len(st.All),
		Filtered: st.Filtered,
		Query:    st.Query,
		Mode:     st.Mode,
	}
	for _, e := range st.Visible {
		v.Rows = append(v.Rows, toRow(e))
	}
	if st.Mode != controller.ModeClosed {
		v.Draft = toRow(st.Draft)
	}
	return v
}

// toRow flattens an entity into its JSON field names and printable values.
// Zero ids and blank secrets are left out.
func toRow(entity any) map[string]string {
	raw := map[string]any{}
	dec, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		TagName: "json",
		Result:  &raw,
	})
	if err == nil {
		err = dec.Decode(entity)
	}
	row := make(map[string]string, len(raw))
	if err != nil {
		return row
	}
	for k, v := range raw {
		row[k] = fmt.Sprint(v)
	}
	return row
}
