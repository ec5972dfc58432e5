package store

import (
	"context"
	"encoding/json"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mmeshcher/parcel-portal/internal/model"
)

type memPersister struct {
	data map[string]map[string][]byte
	err  error
}

func (p *memPersister) LoadSlices(ctx context.Context, sessionID string) (map[string][]byte, error) {
	if p.err != nil {
		return nil, p.err
	}
	return p.data[sessionID], nil
}

func (p *memPersister) SaveSlices(ctx context.Context, sessionID string, data map[string][]byte) error {
	if p.err != nil {
		return p.err
	}
	if p.data == nil {
		p.data = map[string]map[string][]byte{}
	}
	p.data[sessionID] = data
	return nil
}

func action(t *testing.T, typ string, payload any) Action {
	t.Helper()
	if payload == nil {
		return Action{Type: typ}
	}
	raw, err := json.Marshal(payload)
	require.NoError(t, err)
	return Action{Type: typ, Payload: raw}
}

func TestDispatch(t *testing.T) {
	s := New()

	require.NoError(t, s.Dispatch(action(t, ActionModalOpen, map[string]any{"name": "reject", "payload": map[string]int{"id": 4}})))
	assert.True(t, s.Modal().Open)
	assert.Equal(t, "reject", s.Modal().Name)

	require.NoError(t, s.Dispatch(action(t, ActionModalClose, nil)))
	assert.False(t, s.Modal().Open)

	require.NoError(t, s.Dispatch(action(t, ActionCountriesSet, []model.Country{{Code: "KZ", Name: model.Localized{RU: "Казахстан"}}})))
	assert.Equal(t, "KZ", s.Countries()[0].Code)

	require.NoError(t, s.Dispatch(action(t, ActionPreferencesSet, map[string]any{"pageSize": 25})))
	assert.Equal(t, 25, s.Preferences().PageSize)
	assert.Equal(t, "light", s.Preferences().Theme, "unset fields keep their value")

	require.NoError(t, s.Dispatch(action(t, ActionPreferencesReset, nil)))
	assert.Equal(t, DefaultPreferences(), s.Preferences())
}

func TestDispatch_Errors(t *testing.T) {
	s := New()
	before := s.State()

	err := s.Dispatch(Action{Type: "orders/delete"})
	assert.ErrorIs(t, err, ErrUnknownAction)

	err = s.Dispatch(action(t, ActionPreferencesSet, map[string]any{"pageSize": 1000}))
	assert.ErrorIs(t, err, ErrBadPayload)

	err = s.Dispatch(action(t, ActionModalOpen, map[string]any{}))
	assert.ErrorIs(t, err, ErrBadPayload)

	err = s.Dispatch(Action{Type: ActionCountriesSet, Payload: json.RawMessage(`"KZ"`)})
	assert.ErrorIs(t, err, ErrBadPayload)

	assert.Equal(t, before, s.State())
}

func TestSelectorsReturnCopies(t *testing.T) {
	s := New()
	require.NoError(t, s.Dispatch(action(t, ActionCurrenciesSet, []model.Currency{{Code: "KZT", Symbol: "₸"}})))

	cs := s.Currencies()
	cs[0].Code = "XXX"

	assert.Equal(t, "KZT", s.Currencies()[0].Code)
}

func TestSnapshotPersistsAllowListOnly(t *testing.T) {
	s := New()
	require.NoError(t, s.Dispatch(action(t, ActionModalOpen, map[string]any{"name": "payment"})))
	require.NoError(t, s.Dispatch(action(t, ActionPreferencesSet, map[string]any{"theme": "dark"})))

	snap, err := s.Snapshot()
	require.NoError(t, err)

	assert.ElementsMatch(t, Persisted, keys(snap))
	assert.NotContains(t, snap, SliceModal)
}

func TestLoadSaveRoundTrip(t *testing.T) {
	ctx := context.Background()
	p := &memPersister{}

	s := New()
	require.NoError(t, s.Dispatch(action(t, ActionPreferencesSet, map[string]any{"theme": "dark", "pageSize": 50})))
	require.NoError(t, s.Dispatch(action(t, ActionModalOpen, map[string]any{"name": "payment"})))
	require.NoError(t, Save(ctx, p, "sid-1", s))

	restored, err := Load(ctx, p, "sid-1")
	require.NoError(t, err)

	assert.Equal(t, "dark", restored.Preferences().Theme)
	assert.Equal(t, 50, restored.Preferences().PageSize)
	assert.False(t, restored.Modal().Open, "modal is not persisted")

	fresh, err := Load(ctx, p, "sid-2")
	require.NoError(t, err)
	assert.Equal(t, DefaultPreferences(), fresh.Preferences())
}

func TestRestoreIgnoresUnknownSlices(t *testing.T) {
	s := New()
	err := s.Restore(map[string][]byte{
		SliceModal:     []byte(`{"open":true,"name":"x"}`),
		"secrets":      []byte(`{}`),
		SliceCountries: []byte(`[{"code":"CN","name":{"ru":"Китай"}}]`),
	})
	require.NoError(t, err)

	assert.False(t, s.Modal().Open)
	assert.Equal(t, "CN", s.Countries()[0].Code)
}

func TestRestore_FailureLeavesStateUntouched(t *testing.T) {
	s := New()
	require.NoError(t, s.Dispatch(action(t, ActionCountriesSet, []model.Country{
		{Code: "KZ", Name: model.Localized{RU: "Казахстан"}},
		{Code: "CN", Name: model.Localized{RU: "Китай"}},
	})))
	require.NoError(t, s.Dispatch(action(t, ActionPreferencesSet, map[string]any{"theme": "dark"})))
	before := s.State()

	for i := 0; i < 20; i++ {
		err := s.Restore(map[string][]byte{
			SliceCountries:   []byte(`[{"code":"US","name":{"ru":"США"}}]`),
			SlicePreferences: []byte(`{"theme":"light"}`),
			SliceCurrencies:  []byte(`{"code":`),
		})
		require.Error(t, err)
		require.Equal(t, before, s.State())
	}
}

func TestLoad_PersisterError(t *testing.T) {
	_, err := Load(context.Background(), &memPersister{err: errors.New("db down")}, "sid")
	assert.Error(t, err)
}

func keys(m map[string][]byte) []string {
	out := make([]string, 0, len(m))
	for k := range m {
		out = append(out, k)
	}
	return out
}
