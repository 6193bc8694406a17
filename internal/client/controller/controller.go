// Package controller implements the list/search/edit/save/delete state
// machine shared by every resource screen.
//
// A Controller owns the full collection as last reported by the server, a
// visible projection of it (everything, or the result of an id search), and
// at most one draft being created or edited. Operations that call the API
// release the lock while waiting, and refuse to start while an operation of
// the same kind is in flight.
package controller

import (
	"context"
	"errors"
	"fmt"
	"slices"
	"sort"
	"strconv"
	"strings"
	"sync"

	"github.com/mitchellh/copystructure"
	"github.com/mitchellh/mapstructure"

	"github.com/dmitrijs2005/schooladmin/internal/client/api"
	"github.com/dmitrijs2005/schooladmin/internal/logging"
	"github.com/dmitrijs2005/schooladmin/internal/models"
)

// Client is the API surface a controller needs. *api.Resource satisfies it.
type Client[T models.Entity] interface {
	List(ctx context.Context) ([]T, error)
	Get(ctx context.Context, id int64) (T, error)
	Create(ctx context.Context, draft T) (T, error)
	Update(ctx context.Context, entity T) (T, error)
	Remove(ctx context.Context, id int64) error
}

type opKind string

const (
	opLoad   opKind = "load"
	opSearch opKind = "search"
	opSave   opKind = "save"
	opDelete opKind = "delete"
)

type Option func(*options)

type options struct {
	noun string
	log  logging.Logger
}

// WithNoun sets the word used in notices, e.g. "aluno".
func WithNoun(noun string) Option {
	return func(o *options) { o.noun = noun }
}

func WithLogger(l logging.Logger) Option {
	return func(o *options) { o.log = l }
}

type Controller[T models.Entity] struct {
	client Client[T]
	noun   string
	log    logging.Logger

	mu       sync.Mutex
	phase    Phase
	loadErr  error
	all      []T
	visible  []T
	filtered bool
	query    string
	mode     Mode
	draft    T
	// dialogSeq changes whenever the dialog opens or closes, so a save
	// that completes later can tell whether its dialog is still the one shown.
	dialogSeq uint64
	busy      map[opKind]bool
	notices   []Notice
}

func New[T models.Entity](client Client[T], opts ...Option) *Controller[T] {
	o := options{noun: "record", log: logging.Discard()}
	for _, opt := range opts {
		opt(&o)
	}
	return &Controller[T]{
		client: client,
		noun:   o.noun,
		log:    o.log,
		phase:  PhaseLoading,
		busy:   make(map[opKind]bool),
	}
}

// Initialize loads the full collection. It may only run once; after a
// failure the controller stays in PhaseFailed.
func (c *Controller[T]) Initialize(ctx context.Context) error {
	c.mu.Lock()
	if c.phase != PhaseLoading {
		c.mu.Unlock()
		return ErrNotReady
	}
	if !c.begin(opLoad) {
		c.mu.Unlock()
		return ErrBusy
	}
	c.mu.Unlock()

	items, err := c.client.List(ctx)

	c.mu.Lock()
	defer c.mu.Unlock()
	c.end(opLoad)
	if err != nil {
		c.phase = PhaseFailed
		c.loadErr = err
		c.notify(LevelError, "failed to load %s list: %v", c.noun, err)
		c.log.Error(ctx, "load failed", "error", err)
		return err
	}
	c.all = slices.Clone(items)
	c.visible = slices.Clone(items)
	c.filtered = false
	c.phase = PhaseReady
	c.log.Debug(ctx, "loaded", "count", len(items))
	return nil
}

// Search shows the single entity with the given id. A blank query shows the
// full collection without calling the API.
func (c *Controller[T]) Search(ctx context.Context, query string) error {
	query = strings.TrimSpace(query)

	c.mu.Lock()
	if c.phase != PhaseReady {
		c.mu.Unlock()
		return ErrNotReady
	}
	if query == "" {
		c.resetFilter()
		c.mu.Unlock()
		return nil
	}
	id, err := parseID(query)
	if err != nil {
		c.notify(LevelWarning, "%q is not a valid id", query)
		c.mu.Unlock()
		return err
	}
	if !c.begin(opSearch) {
		c.mu.Unlock()
		return ErrBusy
	}
	c.query = query
	c.mu.Unlock()

	found, err := c.client.Get(ctx, id)

	c.mu.Lock()
	defer c.mu.Unlock()
	c.end(opSearch)
	c.filtered = true
	if err != nil {
		c.visible = []T{}
		if errors.Is(err, api.ErrNotFound) {
			c.notify(LevelWarning, "%s %d not found", c.noun, id)
		} else {
			c.notify(LevelError, "search failed: %v", err)
		}
		return err
	}
	c.visible = []T{found}
	return nil
}

// ClearFilter shows the full collection again and forgets the search input.
func (c *Controller[T]) ClearFilter() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.resetFilter()
}

// OpenCreate opens the dialog on an empty draft.
func (c *Controller[T]) OpenCreate() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.phase != PhaseReady {
		return ErrNotReady
	}
	var zero T
	c.openDialog(ModeCreate, zero)
	return nil
}

// OpenEdit opens the dialog on an independent copy of entity, so edits do
// not reach the collection before a successful save.
func (c *Controller[T]) OpenEdit(entity T) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.phase != PhaseReady {
		return ErrNotReady
	}
	if entity.EntityID() <= 0 {
		c.notify(LevelWarning, "cannot edit a %s without an id", c.noun)
		return ErrInvalidID
	}
	draft, err := deepCopy(entity)
	if err != nil {
		return err
	}
	c.openDialog(ModeEdit, draft)
	return nil
}

// OpenEditByID opens the dialog on the displayed entity with the given id,
// falling back to the full collection.
func (c *Controller[T]) OpenEditByID(id int64) error {
	c.mu.Lock()
	entity, ok := c.lookup(id)
	c.mu.Unlock()
	if !ok {
		return fmt.Errorf("%w: %d", ErrNotListed, id)
	}
	return c.OpenEdit(entity)
}

// CloseDialog discards the draft.
func (c *Controller[T]) CloseDialog() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.closeDialog()
}

// UpdateDraftField sets one field of the draft from text input, coercing it
// to the field's type. The id cannot be changed.
func (c *Controller[T]) UpdateDraftField(field, value string) error {
	if strings.EqualFold(field, "id") {
		return ErrReadOnlyField
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	if c.mode == ModeClosed {
		return ErrDialogClosed
	}

	next, err := deepCopy(c.draft)
	if err != nil {
		return err
	}
	var md mapstructure.Metadata
	dec, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		TagName:          "json",
		WeaklyTypedInput: true,
		Metadata:         &md,
		Result:           &next,
	})
	if err != nil {
		return err
	}
	if err := dec.Decode(map[string]any{field: strings.TrimSpace(value)}); err != nil {
		return fmt.Errorf("%w for %s: %q", ErrInvalidValue, field, value)
	}
	if len(md.Unused) > 0 {
		return fmt.Errorf("%w: %s", ErrUnknownField, field)
	}
	c.draft = next
	return nil
}

// Save creates or updates the draft depending on the dialog mode and
// reconciles the collection with the entity the server returns. On failure
// the dialog stays open with the draft untouched. A response that arrives
// after the dialog was closed or reopened still updates the collections,
// but leaves the dialog and draft alone.
func (c *Controller[T]) Save(ctx context.Context) (T, error) {
	var zero T

	c.mu.Lock()
	if c.phase != PhaseReady {
		c.mu.Unlock()
		return zero, ErrNotReady
	}
	if c.mode == ModeClosed {
		c.mu.Unlock()
		return zero, ErrDialogClosed
	}
	if err := models.ValidateDraft(c.draft); err != nil {
		c.notify(LevelError, "cannot save %s: %v", c.noun, err)
		c.mu.Unlock()
		return zero, fmt.Errorf("%w: %w", api.ErrValidation, err)
	}
	if !c.begin(opSave) {
		c.mu.Unlock()
		return zero, ErrBusy
	}
	mode, seq := c.mode, c.dialogSeq
	draft, err := deepCopy(c.draft)
	if err != nil {
		c.end(opSave)
		c.mu.Unlock()
		return zero, err
	}
	c.mu.Unlock()

	var saved T
	if mode == ModeCreate {
		saved, err = c.client.Create(ctx, draft)
	} else {
		saved, err = c.client.Update(ctx, draft)
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	c.end(opSave)
	if err != nil {
		c.notify(LevelError, "failed to save %s: %v", c.noun, err)
		c.log.Warn(ctx, "save failed", "mode", mode.String(), "error", err)
		return zero, err
	}

	if mode == ModeCreate {
		c.all = append(c.all, saved)
		if !c.filtered {
			c.visible = append(c.visible, saved)
		}
		c.notify(LevelSuccess, "%s %d created", c.noun, saved.EntityID())
	} else {
		c.replace(saved)
		c.notify(LevelSuccess, "%s %d updated", c.noun, saved.EntityID())
	}

	// the user may have closed or reopened the dialog meanwhile
	if seq == c.dialogSeq {
		c.closeDialog()
	}
	return saved, nil
}

// Delete removes an entity. The caller is responsible for asking the user
// to confirm first.
func (c *Controller[T]) Delete(ctx context.Context, id int64) error {
	c.mu.Lock()
	if c.phase != PhaseReady {
		c.mu.Unlock()
		return ErrNotReady
	}
	if id <= 0 {
		c.notify(LevelWarning, "%d is not a valid id", id)
		c.mu.Unlock()
		return ErrInvalidID
	}
	if !c.begin(opDelete) {
		c.mu.Unlock()
		return ErrBusy
	}
	c.mu.Unlock()

	err := c.client.Remove(ctx, id)

	c.mu.Lock()
	defer c.mu.Unlock()
	c.end(opDelete)
	if err != nil {
		c.notify(LevelError, "failed to delete %s %d: %v", c.noun, id, err)
		return err
	}
	c.all = slices.DeleteFunc(c.all, func(e T) bool { return e.EntityID() == id })
	c.visible = slices.DeleteFunc(c.visible, func(e T) bool { return e.EntityID() == id })
	c.notify(LevelSuccess, "%s %d deleted", c.noun, id)
	return nil
}

// Snapshot returns a copy of the current state.
func (c *Controller[T]) Snapshot() State[T] {
	c.mu.Lock()
	defer c.mu.Unlock()

	busy := make([]string, 0, len(c.busy))
	for k := range c.busy {
		busy = append(busy, string(k))
	}
	sort.Strings(busy)

	return State[T]{
		Phase:    c.phase,
		Err:      c.loadErr,
		All:      slices.Clone(c.all),
		Visible:  slices.Clone(c.visible),
		Filtered: c.filtered,
		Query:    c.query,
		Mode:     c.mode,
		Draft:    c.draft,
		Busy:     busy,
	}
}

// Notices returns and forgets the notices produced so far.
func (c *Controller[T]) Notices() []Notice {
	c.mu.Lock()
	defer c.mu.Unlock()
	out := c.notices
	c.notices = nil
	return out
}

// --- helpers; callers hold c.mu ---

func (c *Controller[T]) begin(op opKind) bool {
	if c.busy[op] {
		return false
	}
	c.busy[op] = true
	return true
}

func (c *Controller[T]) end(op opKind) {
	delete(c.busy, op)
}

func (c *Controller[T]) notify(level Level, format string, args ...any) {
	c.notices = append(c.notices, Notice{Level: level, Text: fmt.Sprintf(format, args...)})
}

func (c *Controller[T]) resetFilter() {
	c.visible = slices.Clone(c.all)
	c.filtered = false
	c.query = ""
}

func (c *Controller[T]) openDialog(mode Mode, draft T) {
	c.mode = mode
	c.draft = draft
	c.dialogSeq++
}

func (c *Controller[T]) closeDialog() {
	var zero T
	c.mode = ModeClosed
	c.draft = zero
	c.dialogSeq++
}

func (c *Controller[T]) lookup(id int64) (T, bool) {
	for _, e := range c.visible {
		if e.EntityID() == id {
			return e, true
		}
	}
	for _, e := range c.all {
		if e.EntityID() == id {
			return e, true
		}
	}
	var zero T
	return zero, false
}

// replace swaps in the saved entity. The full collection decides whether the
// entity exists: one missing from it is appended.
func (c *Controller[T]) replace(saved T) {
	id := saved.EntityID()
	if i := slices.IndexFunc(c.all, func(e T) bool { return e.EntityID() == id }); i >= 0 {
		c.all[i] = saved
	} else {
		c.all = append(c.all, saved)
	}
	if i := slices.IndexFunc(c.visible, func(e T) bool { return e.EntityID() == id }); i >= 0 {
		c.visible[i] = saved
	}
}

func parseID(s string) (int64, error) {
	id, err := strconv.ParseInt(s, 10, 64)
	if err != nil || id <= 0 {
		return 0, fmt.Errorf("%w: %q", ErrInvalidID, s)
	}
	return id, nil
}

func deepCopy[T any](v T) (T, error) {
	cp, err := copystructure.Copy(v)
	if err != nil {
		var zero T
		return zero, fmt.Errorf("copy draft: %w", err)
	}
	return cp.(T), nil
}
