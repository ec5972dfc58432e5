// Package store хранит UI-состояние сессии: именованные срезы, которые
// меняются только через Dispatch и читаются селекторами.
package store

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"slices"
	"sync"

	"github.com/mmeshcher/parcel-portal/internal/grid"
	"github.com/mmeshcher/parcel-portal/internal/model"
)

const (
	SliceModal       = "modal"
	SliceCountries   = "countries"
	SliceCurrencies  = "currencies"
	SlicePreferences = "preferences"
)

// Persisted перечисляет срезы, которые сохраняются между запросами. Остальные живут
// только в рамках одного запроса.
var Persisted = []string{SlicePreferences, SliceCountries, SliceCurrencies}

func IsPersisted(slice string) bool {
	return slices.Contains(Persisted, slice)
}

const (
	ActionModalOpen        = "modal/open"
	ActionModalClose       = "modal/close"
	ActionCountriesSet     = "countries/set"
	ActionCurrenciesSet    = "currencies/set"
	ActionPreferencesSet   = "preferences/set"
	ActionPreferencesReset = "preferences/reset"
)

var (
	ErrUnknownAction = errors.New("unknown action")
	ErrBadPayload    = errors.New("bad action payload")
)

// Action описывает изменение состояния. Payload разбирается редьюсером среза.
type Action struct {
	Type    string          `json:"type"`
	Payload json.RawMessage `json:"payload,omitempty"`
}

type Modal struct {
	Open    bool            `json:"open"`
	Name    string          `json:"name,omitempty"`
	Payload json.RawMessage `json:"payload,omitempty"`
}

type Preferences struct {
	Theme            string `json:"theme"`
	PageSize         int    `json:"pageSize"`
	SidebarCollapsed bool   `json:"sidebarCollapsed"`
}

func DefaultPreferences() Preferences {
	return Preferences{Theme: "light", PageSize: grid.DefaultPageSize}
}

// State содержит снимок всех срезов.
type State struct {
	Modal       Modal            `json:"modal"`
	Countries   []model.Country  `json:"countries"`
	Currencies  []model.Currency `json:"currencies"`
	Preferences Preferences      `json:"preferences"`
}

type Store struct {
	mu    sync.RWMutex
	state State
}

func New() *Store {
	return &Store{state: State{
		Countries:   []model.Country{},
		Currencies:  []model.Currency{},
		Preferences: DefaultPreferences(),
	}}
}

// Dispatch применяет действие. При ошибке состояние не меняется.
func (s *Store) Dispatch(a Action) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	next, err := reduce(s.state, a)
	if err != nil {
		return err
	}
	s.state = next
	return nil
}

func reduce(st State, a Action) (State, error) {
	switch a.Type {
	case ActionModalOpen:
		var m struct {
			Name    string          `json:"name"`
			Payload json.RawMessage `json:"payload"`
		}
		if err := decode(a.Payload, &m); err != nil || m.Name == "" {
			return st, fmt.Errorf("%w: %s", ErrBadPayload, a.Type)
		}
		st.Modal = Modal{Open: true, Name: m.Name, Payload: m.Payload}

	case ActionModalClose:
		st.Modal = Modal{}

	case ActionCountriesSet:
		var cs []model.Country
		if err := decode(a.Payload, &cs); err != nil {
			return st, fmt.Errorf("%w: %s", ErrBadPayload, a.Type)
		}
		st.Countries = cs

	case ActionCurrenciesSet:
		var cs []model.Currency
		if err := decode(a.Payload, &cs); err != nil {
			return st, fmt.Errorf("%w: %s", ErrBadPayload, a.Type)
		}
		st.Currencies = cs

	case ActionPreferencesSet:
		p := st.Preferences
		if err := decode(a.Payload, &p); err != nil {
			return st, fmt.Errorf("%w: %s", ErrBadPayload, a.Type)
		}
		if p.PageSize < 1 || p.PageSize > grid.MaxPageSize {
			return st, fmt.Errorf("%w: pageSize", ErrBadPayload)
		}
		st.Preferences = p

	case ActionPreferencesReset:
		st.Preferences = DefaultPreferences()

	default:
		return st, fmt.Errorf("%w: %q", ErrUnknownAction, a.Type)
	}
	return st, nil
}

func decode(raw json.RawMessage, v any) error {
	if len(raw) == 0 {
		return errors.New("empty payload")
	}
	return json.Unmarshal(raw, v)
}

// State возвращает копию состояния.
func (s *Store) State() State {
	s.mu.RLock()
	defer s.mu.RUnlock()

	st := s.state
	st.Countries = slices.Clone(st.Countries)
	st.Currencies = slices.Clone(st.Currencies)
	return st
}

func (s *Store) Modal() Modal {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.state.Modal
}

func (s *Store) Countries() []model.Country {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return slices.Clone(s.state.Countries)
}

func (s *Store) Currencies() []model.Currency {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return slices.Clone(s.state.Currencies)
}

func (s *Store) Preferences() Preferences {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.state.Preferences
}

// Snapshot сериализует только срезы из Persisted.
func (s *Store) Snapshot() (map[string][]byte, error) {
	st := s.State()
	values := map[string]any{
		SlicePreferences: st.Preferences,
		SliceCountries:   st.Countries,
		SliceCurrencies:  st.Currencies,
	}

	out := make(map[string][]byte, len(Persisted))
	for _, name := range Persisted {
		data, err := json.Marshal(values[name])
		if err != nil {
			return nil, fmt.Errorf("marshal slice %s: %w", name, err)
		}
		out[name] = data
	}
	return out, nil
}

// Restore загружает сохранённые срезы. Срезы вне Persisted пропускаются.
// При ошибке состояние не меняется.
func (s *Store) Restore(saved map[string][]byte) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	st := s.state
	for name, data := range saved {
		if !IsPersisted(name) {
			continue
		}
		var err error
		switch name {
		case SlicePreferences:
			p := st.Preferences
			if err = json.Unmarshal(data, &p); err == nil {
				st.Preferences = p
			}
		case SliceCountries:
			var cs []model.Country
			if err = json.Unmarshal(data, &cs); err == nil {
				st.Countries = cs
			}
		case SliceCurrencies:
			var cs []model.Currency
			if err = json.Unmarshal(data, &cs); err == nil {
				st.Currencies = cs
			}
		}
		if err != nil {
			return fmt.Errorf("restore slice %s: %w", name, err)
		}
	}
	s.state = st
	return nil
}

// Persister хранит срезы по идентификатору сессии.
type Persister interface {
	LoadSlices(ctx context.Context, sessionID string) (map[string][]byte, error)
	SaveSlices(ctx context.Context, sessionID string, data map[string][]byte) error
}

// Load восстанавливает стор сессии.
func Load(ctx context.Context, p Persister, sessionID string) (*Store, error) {
	s := New()

	saved, err := p.LoadSlices(ctx, sessionID)
	if err != nil {
		return nil, fmt.Errorf("load slices: %w", err)
	}
	if err := s.Restore(saved); err != nil {
		return nil, err
	}
	return s, nil
}

// Save сохраняет срезы из Persisted.
func Save(ctx context.Context, p Persister, sessionID string, s *Store) error {
	snap, err := s.Snapshot()
	if err != nil {
		return err
	}
	if err := p.SaveSlices(ctx, sessionID, snap); err != nil {
		return fmt.Errorf("save slices: %w", err)
	}
	return nil
}
