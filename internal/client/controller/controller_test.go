package controller

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dmitrijs2005/schooladmin/internal/client/api"
	"github.com/dmitrijs2005/schooladmin/internal/models"
)

// fakeClient is an in-memory API. When gate is set, calls block until a
// value is received from it.
type fakeClient struct {
	mu     sync.Mutex
	items  []models.Aluno
	nextID int64

	listErr   error
	getErr    error
	createErr error
	updateErr error
	removeErr error

	gate    chan struct{}
	entered chan string

	calls []string
}

func newFake(items ...models.Aluno) *fakeClient {
	f := &fakeClient{items: items, nextID: 1}
	for _, it := range items {
		if it.ID >= f.nextID {
			f.nextID = it.ID + 1
		}
	}
	return f
}

func (f *fakeClient) wait(name string) {
	f.mu.Lock()
	f.calls = append(f.calls, name)
	gate, entered := f.gate, f.entered
	f.mu.Unlock()
	if entered != nil {
		entered <- name
	}
	if gate != nil {
		<-gate
	}
}

func (f *fakeClient) List(context.Context) ([]models.Aluno, error) {
	f.wait("list")
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.listErr != nil {
		return nil, f.listErr
	}
	return append([]models.Aluno(nil), f.items...), nil
}

func (f *fakeClient) Get(_ context.Context, id int64) (models.Aluno, error) {
	f.wait("get")
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.getErr != nil {
		return models.Aluno{}, f.getErr
	}
	for _, it := range f.items {
		if it.ID == id {
			return it, nil
		}
	}
	return models.Aluno{}, &api.Error{Kind: api.ErrNotFound, StatusCode: 404}
}

func (f *fakeClient) Create(_ context.Context, a models.Aluno) (models.Aluno, error) {
	f.wait("create")
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.createErr != nil {
		return models.Aluno{}, f.createErr
	}
	a.ID = f.nextID
	f.nextID++
	f.items = append(f.items, a)
	return a, nil
}

func (f *fakeClient) Update(_ context.Context, a models.Aluno) (models.Aluno, error) {
	f.wait("update")
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.updateErr != nil {
		return models.Aluno{}, f.updateErr
	}
	for i := range f.items {
		if f.items[i].ID == a.ID {
			f.items[i] = a
		}
	}
	return a, nil
}

func (f *fakeClient) Remove(_ context.Context, id int64) error {
	f.wait("remove")
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.removeErr != nil {
		return f.removeErr
	}
	for i := range f.items {
		if f.items[i].ID == id {
			f.items = append(f.items[:i], f.items[i+1:]...)
			break
		}
	}
	return nil
}

func (f *fakeClient) callNames() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]string(nil), f.calls...)
}

var (
	ana  = models.Aluno{ID: 1, Nome: "Ana", Idade: 20, CPF: "111"}
	beto = models.Aluno{ID: 2, Nome: "Beto", Idade: 22, CPF: "222"}
)

func ready(t *testing.T, f *fakeClient) *Controller[models.Aluno] {
	t.Helper()
	c := New[models.Aluno](f, WithNoun("aluno"))
	require.NoError(t, c.Initialize(context.Background()))
	return c
}

func TestInitialize(t *testing.T) {
	c := New[models.Aluno](newFake(ana, beto))
	assert.Equal(t, PhaseLoading, c.Snapshot().Phase)

	require.NoError(t, c.Initialize(context.Background()))
	st := c.Snapshot()
	assert.Equal(t, PhaseReady, st.Phase)
	assert.Equal(t, []models.Aluno{ana, beto}, st.All)
	assert.Equal(t, st.All, st.Visible)
	assert.False(t, st.Filtered)

	// only once
	assert.ErrorIs(t, c.Initialize(context.Background()), ErrNotReady)
}

func TestInitialize_Failure(t *testing.T) {
	f := newFake()
	f.listErr = &api.Error{Kind: api.ErrTransport, Err: errors.New("connection refused")}
	c := New[models.Aluno](f, WithNoun("aluno"))

	err := c.Initialize(context.Background())
	require.ErrorIs(t, err, api.ErrTransport)

	st := c.Snapshot()
	assert.Equal(t, PhaseFailed, st.Phase)
	assert.ErrorIs(t, st.Err, api.ErrTransport)
	assert.Empty(t, st.All)

	notices := c.Notices()
	require.Len(t, notices, 1)
	assert.Equal(t, LevelError, notices[0].Level)
	assert.Contains(t, notices[0].Text, "aluno")

	assert.ErrorIs(t, c.OpenCreate(), ErrNotReady)
	assert.ErrorIs(t, c.Search(context.Background(), "1"), ErrNotReady)
	assert.ErrorIs(t, c.Initialize(context.Background()), ErrNotReady)
}

func TestInitialize_EmptyCollection(t *testing.T) {
	c := ready(t, newFake())
	st := c.Snapshot()
	assert.Equal(t, PhaseReady, st.Phase)
	assert.Empty(t, st.All)
	assert.Empty(t, st.Visible)
}

func TestCreateThenSearch(t *testing.T) {
	f := newFake()
	c := ready(t, f)
	ctx := context.Background()

	for _, name := range []string{"Ana", "Beto"} {
		require.NoError(t, c.OpenCreate())
		require.NoError(t, c.UpdateDraftField("nome", name))
		require.NoError(t, c.UpdateDraftField("idade", "20"))
		_, err := c.Save(ctx)
		require.NoError(t, err)
	}

	st := c.Snapshot()
	assert.Equal(t, ModeClosed, st.Mode)
	require.Len(t, st.All, 2)
	assert.Equal(t, int64(1), st.All[0].ID)
	assert.Equal(t, int64(2), st.All[1].ID)
	assert.Equal(t, st.All, st.Visible)

	require.NoError(t, c.Search(ctx, "2"))
	st = c.Snapshot()
	assert.True(t, st.Filtered)
	assert.Equal(t, "2", st.Query)
	require.Len(t, st.Visible, 1)
	assert.Equal(t, "Beto", st.Visible[0].Nome)
	assert.Len(t, st.All, 2)
}

func TestSearch_NotFound(t *testing.T) {
	f := newFake(ana)
	c := ready(t, f)

	err := c.Search(context.Background(), "2")
	require.ErrorIs(t, err, api.ErrNotFound)

	st := c.Snapshot()
	assert.True(t, st.Filtered)
	assert.Empty(t, st.Visible)
	assert.NotNil(t, st.Visible)
	assert.Equal(t, []models.Aluno{ana}, st.All)

	notices := c.Notices()
	require.Len(t, notices, 1)
	assert.Equal(t, LevelWarning, notices[0].Level)
	assert.Equal(t, "aluno 2 not found", notices[0].Text)
}

func TestSearch_TransportError(t *testing.T) {
	f := newFake(ana)
	c := ready(t, f)
	f.getErr = &api.Error{Kind: api.ErrTransport, StatusCode: 500}

	err := c.Search(context.Background(), "1")
	require.ErrorIs(t, err, api.ErrTransport)
	assert.Empty(t, c.Snapshot().Visible)
	assert.Equal(t, LevelError, c.Notices()[0].Level)
}

func TestSearch_InvalidID(t *testing.T) {
	f := newFake(ana)
	c := ready(t, f)
	before := c.Snapshot()

	for _, q := range []string{"abc", "-1", "0", "1.5"} {
		err := c.Search(context.Background(), q)
		assert.ErrorIs(t, err, ErrInvalidID, q)
	}
	after := c.Snapshot()
	assert.Equal(t, before.Visible, after.Visible)
	assert.False(t, after.Filtered)
	assert.Equal(t, []string{"list"}, f.callNames())
}

func TestSearch_BlankClearsFilter(t *testing.T) {
	f := newFake(ana, beto)
	c := ready(t, f)
	ctx := context.Background()

	require.NoError(t, c.Search(ctx, "1"))
	require.NoError(t, c.Search(ctx, "   "))

	st := c.Snapshot()
	assert.False(t, st.Filtered)
	assert.Empty(t, st.Query)
	assert.Equal(t, st.All, st.Visible)
	assert.Equal(t, []string{"list", "get"}, f.callNames())
}

func TestClearFilter_Idempotent(t *testing.T) {
	c := ready(t, newFake(ana, beto))
	require.NoError(t, c.Search(context.Background(), "2"))

	c.ClearFilter()
	first := c.Snapshot()
	c.ClearFilter()
	second := c.Snapshot()

	if diff := cmp.Diff(first, second); diff != "" {
		t.Errorf("second ClearFilter changed state (-first +second):\n%s", diff)
	}
	assert.Equal(t, []models.Aluno{ana, beto}, second.Visible)
}

func TestCreate_WhileFiltered(t *testing.T) {
	c := ready(t, newFake(ana, beto))
	ctx := context.Background()
	require.NoError(t, c.Search(ctx, "1"))

	require.NoError(t, c.OpenCreate())
	require.NoError(t, c.UpdateDraftField("nome", "Caio"))
	saved, err := c.Save(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(3), saved.ID)

	st := c.Snapshot()
	assert.Len(t, st.All, 3)
	assert.Equal(t, []models.Aluno{ana}, st.Visible)
}

func TestEdit_CopyIsolation(t *testing.T) {
	c := ready(t, newFake(ana, beto))

	require.NoError(t, c.OpenEdit(ana))
	require.NoError(t, c.UpdateDraftField("nome", "Ana Maria"))

	st := c.Snapshot()
	assert.Equal(t, ModeEdit, st.Mode)
	assert.Equal(t, "Ana Maria", st.Draft.Nome)
	assert.Equal(t, "Ana", st.All[0].Nome)
	assert.Equal(t, "Ana", st.Visible[0].Nome)

	c.CloseDialog()
	st = c.Snapshot()
	assert.Equal(t, ModeClosed, st.Mode)
	assert.Equal(t, models.Aluno{}, st.Draft)
	assert.Equal(t, "Ana", st.All[0].Nome)
}

func TestEdit_Save(t *testing.T) {
	f := newFake(ana, beto)
	c := ready(t, f)
	ctx := context.Background()
	require.NoError(t, c.Search(ctx, "2"))

	require.NoError(t, c.OpenEditByID(2))
	require.NoError(t, c.UpdateDraftField("idade", "23"))
	saved, err := c.Save(ctx)
	require.NoError(t, err)
	assert.Equal(t, 23, saved.Idade)

	st := c.Snapshot()
	assert.Equal(t, ModeClosed, st.Mode)
	assert.Equal(t, 23, st.All[1].Idade)
	assert.Equal(t, []models.Aluno{saved}, st.Visible)
	assert.Contains(t, f.callNames(), "update")
}

func TestEdit_SaveNotInCollection(t *testing.T) {
	f := newFake(ana)
	c := ready(t, f)
	ctx := context.Background()

	// created elsewhere after the list was loaded
	f.items = append(f.items, beto)
	require.NoError(t, c.Search(ctx, "2"))
	require.NoError(t, c.OpenEditByID(2))
	_, err := c.Save(ctx)
	require.NoError(t, err)

	assert.Equal(t, []models.Aluno{ana, beto}, c.Snapshot().All)
}

func TestOpenEdit_Rejects(t *testing.T) {
	c := ready(t, newFake(ana))
	assert.ErrorIs(t, c.OpenEdit(models.Aluno{Nome: "x"}), ErrInvalidID)
	assert.ErrorIs(t, c.OpenEditByID(9), ErrNotListed)
	assert.Equal(t, ModeClosed, c.Snapshot().Mode)
	assert.Equal(t, []Notice{{Level: LevelWarning, Text: "cannot edit a aluno without an id"}}, c.Notices())
}

func TestUpdateDraftField(t *testing.T) {
	c := ready(t, newFake(ana))

	assert.ErrorIs(t, c.UpdateDraftField("nome", "x"), ErrDialogClosed)

	require.NoError(t, c.OpenEdit(ana))
	assert.ErrorIs(t, c.UpdateDraftField("id", "5"), ErrReadOnlyField)
	assert.ErrorIs(t, c.UpdateDraftField("ID", "5"), ErrReadOnlyField)
	assert.ErrorIs(t, c.UpdateDraftField("idade", "vinte"), ErrInvalidValue)
	assert.ErrorIs(t, c.UpdateDraftField("email", "a@b"), ErrUnknownField)

	require.NoError(t, c.UpdateDraftField("cpf", " 999 "))
	require.NoError(t, c.UpdateDraftField("idade", "30"))
	assert.Equal(t, models.Aluno{ID: 1, Nome: "Ana", Idade: 30, CPF: "999"}, c.Snapshot().Draft)
}

func TestUpdateDraftField_TagWithUnderscore(t *testing.T) {
	m := models.Materia{ID: 4, Nome: "Matemática", SiglaCurricular: "MAT"}
	c := New[models.Materia](&materiaClient{items: []models.Materia{m}})
	require.NoError(t, c.Initialize(context.Background()))

	require.NoError(t, c.OpenEdit(m))
	require.NoError(t, c.UpdateDraftField("sigla_curricular", "MAT1"))
	assert.Equal(t, "MAT1", c.Snapshot().Draft.SiglaCurricular)
}

func TestSave_ProfessorCheckedLocally(t *testing.T) {
	p := &professorClient{}
	c := New[models.Professor](p, WithNoun("professor"))
	require.NoError(t, c.Initialize(context.Background()))

	require.NoError(t, c.OpenCreate())
	require.NoError(t, c.UpdateDraftField("nome", "Carla"))
	_, err := c.Save(context.Background())
	require.ErrorIs(t, err, api.ErrValidation)
	require.ErrorIs(t, err, models.ErrInvalid)

	assert.Equal(t, ModeCreate, c.Snapshot().Mode)
	assert.Zero(t, p.creates)
	notices := c.Notices()
	require.NotEmpty(t, notices)
	assert.Equal(t, LevelError, notices[len(notices)-1].Level)
}

func TestSave_AlunoDraftGoesToServer(t *testing.T) {
	f := newFake(ana)
	c := ready(t, f)
	f.createErr = &api.Error{Kind: api.ErrValidation, StatusCode: 400, Message: "nome required"}

	require.NoError(t, c.OpenCreate())
	require.NoError(t, c.UpdateDraftField("idade", "200"))
	require.NoError(t, c.UpdateDraftField("cpf", "222"))
	_, err := c.Save(context.Background())
	require.ErrorIs(t, err, api.ErrValidation)
	assert.NotErrorIs(t, err, models.ErrInvalid)

	assert.Equal(t, []string{"list", "create"}, f.callNames())
	st := c.Snapshot()
	assert.Equal(t, ModeCreate, st.Mode)
	assert.Equal(t, models.Aluno{Idade: 200, CPF: "222"}, st.Draft)
	assert.Equal(t, []models.Aluno{ana}, st.All)
}

func TestSave_ServerValidationError(t *testing.T) {
	f := newFake(ana)
	c := ready(t, f)
	f.updateErr = &api.Error{Kind: api.ErrValidation, StatusCode: 400, Message: "cpf already used"}

	require.NoError(t, c.OpenEdit(ana))
	require.NoError(t, c.UpdateDraftField("cpf", "222"))
	_, err := c.Save(context.Background())
	require.ErrorIs(t, err, api.ErrValidation)

	st := c.Snapshot()
	assert.Equal(t, ModeEdit, st.Mode)
	assert.Equal(t, "222", st.Draft.CPF)
	assert.Equal(t, []models.Aluno{ana}, st.All)

	notices := c.Notices()
	require.NotEmpty(t, notices)
	assert.Equal(t, LevelError, notices[len(notices)-1].Level)
}

func TestSave_Closed(t *testing.T) {
	c := ready(t, newFake())
	_, err := c.Save(context.Background())
	assert.ErrorIs(t, err, ErrDialogClosed)
}

func TestDelete(t *testing.T) {
	f := newFake(ana, beto)
	c := ready(t, f)
	ctx := context.Background()
	require.NoError(t, c.Search(ctx, "1"))

	require.NoError(t, c.Delete(ctx, 1))
	st := c.Snapshot()
	assert.Equal(t, []models.Aluno{beto}, st.All)
	assert.Empty(t, st.Visible)

	notices := c.Notices()
	assert.Equal(t, Notice{Level: LevelSuccess, Text: "aluno 1 deleted"}, notices[len(notices)-1])
}

func TestDelete_KeepsOpenDialog(t *testing.T) {
	c := ready(t, newFake(ana, beto))
	require.NoError(t, c.OpenEdit(beto))
	require.NoError(t, c.Delete(context.Background(), 1))
	assert.Equal(t, ModeEdit, c.Snapshot().Mode)
}

func TestDelete_Failure(t *testing.T) {
	f := newFake(ana)
	c := ready(t, f)
	f.removeErr = &api.Error{Kind: api.ErrTransport, StatusCode: 500}

	err := c.Delete(context.Background(), 1)
	require.ErrorIs(t, err, api.ErrTransport)
	assert.Equal(t, []models.Aluno{ana}, c.Snapshot().All)

	_ = c.Notices()
	assert.ErrorIs(t, c.Delete(context.Background(), 0), ErrInvalidID)
	assert.Equal(t, []Notice{{Level: LevelWarning, Text: "0 is not a valid id"}}, c.Notices())
	assert.Equal(t, []string{"list", "remove"}, f.callNames())
}

func TestBusy_RejectsSameKind(t *testing.T) {
	f := newFake(ana)
	c := ready(t, f)
	ctx := context.Background()

	f.mu.Lock()
	f.gate = make(chan struct{})
	f.entered = make(chan string, 1)
	f.mu.Unlock()

	done := make(chan error, 1)
	go func() { done <- c.Delete(ctx, 1) }()
	require.Equal(t, "remove", <-f.entered)

	assert.Equal(t, []string{"delete"}, c.Snapshot().Busy)
	assert.ErrorIs(t, c.Delete(ctx, 1), ErrBusy)

	close(f.gate)
	require.NoError(t, <-done)
	assert.Empty(t, c.Snapshot().Busy)
}

func TestSave_LateResponseAfterClose(t *testing.T) {
	f := newFake(ana)
	c := ready(t, f)
	ctx := context.Background()

	require.NoError(t, c.OpenCreate())
	require.NoError(t, c.UpdateDraftField("nome", "Beto"))

	f.mu.Lock()
	f.gate = make(chan struct{})
	f.entered = make(chan string, 1)
	f.mu.Unlock()

	type result struct {
		saved models.Aluno
		err   error
	}
	done := make(chan result, 1)
	go func() {
		s, err := c.Save(ctx)
		done <- result{s, err}
	}()
	require.Equal(t, "create", <-f.entered)

	// user gives up and starts editing something else
	c.CloseDialog()
	require.NoError(t, c.OpenEdit(ana))
	require.NoError(t, c.UpdateDraftField("cpf", "000"))

	close(f.gate)
	res := <-done
	require.NoError(t, res.err)

	st := c.Snapshot()
	assert.Len(t, st.All, 2)
	assert.Equal(t, ModeEdit, st.Mode)
	assert.Equal(t, "000", st.Draft.CPF)
}

func TestNotices_Drain(t *testing.T) {
	c := ready(t, newFake(ana))
	require.NoError(t, c.Delete(context.Background(), 1))
	assert.Len(t, c.Notices(), 1)
	assert.Empty(t, c.Notices())
}

type materiaClient struct {
	items []models.Materia
}

func (m *materiaClient) List(context.Context) ([]models.Materia, error) { return m.items, nil }
func (m *materiaClient) Get(context.Context, int64) (models.Materia, error) {
	return models.Materia{}, nil
}
func (m *materiaClient) Create(_ context.Context, v models.Materia) (models.Materia, error) {
	return v, nil
}
func (m *materiaClient) Update(_ context.Context, v models.Materia) (models.Materia, error) {
	return v, nil
}
func (m *materiaClient) Remove(context.Context, int64) error { return nil }

type professorClient struct {
	creates int
}

func (p *professorClient) List(context.Context) ([]models.Professor, error) { return nil, nil }
func (p *professorClient) Get(context.Context, int64) (models.Professor, error) {
	return models.Professor{}, nil
}
func (p *professorClient) Create(_ context.Context, v models.Professor) (models.Professor, error) {
	p.creates++
	v.ID = int64(p.creates)
	return v, nil
}
func (p *professorClient) Update(_ context.Context, v models.Professor) (models.Professor, error) {
	return v, nil
}
func (p *professorClient) Remove(context.Context, int64) error { return nil }
