package grid

import (
	"slices"
	"sync"
	"time"
)

// Selection хранит выбранные строки. Если задан OnChange, он вызывается
// с новым набором после каждого изменения.
type Selection struct {
	mu       sync.Mutex
	selected map[string]struct{}

	OnChange func(ids []string)
}

func NewSelection(ids ...string) *Selection {
	s := &Selection{selected: make(map[string]struct{}, len(ids))}
	for _, id := range ids {
		s.selected[id] = struct{}{}
	}
	return s
}

// Toggle выбирает строку или снимает выбор.
func (s *Selection) Toggle(id string) {
	s.mu.Lock()
	if _, ok := s.selected[id]; ok {
		delete(s.selected, id)
	} else {
		s.selected[id] = struct{}{}
	}
	ids := s.snapshot()
	s.mu.Unlock()

	s.changed(ids)
}

// ToggleAll выбирает все видимые строки; если они уже все выбраны, снимает выбор.
func (s *Selection) ToggleAll(visible []string) {
	s.mu.Lock()
	all := len(visible) > 0
	for _, id := range visible {
		if _, ok := s.selected[id]; !ok {
			all = false
			break
		}
	}
	for _, id := range visible {
		if all {
			delete(s.selected, id)
		} else {
			s.selected[id] = struct{}{}
		}
	}
	ids := s.snapshot()
	s.mu.Unlock()

	s.changed(ids)
}

// Set заменяет выбор целиком.
func (s *Selection) Set(ids []string) {
	s.mu.Lock()
	s.selected = make(map[string]struct{}, len(ids))
	for _, id := range ids {
		s.selected[id] = struct{}{}
	}
	snap := s.snapshot()
	s.mu.Unlock()

	s.changed(snap)
}

func (s *Selection) IsSelected(id string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	_, ok := s.selected[id]
	return ok
}

// IDs возвращает выбранные идентификаторы по возрастанию.
func (s *Selection) IDs() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.snapshot()
}

func (s *Selection) snapshot() []string {
	ids := make([]string, 0, len(s.selected))
	for id := range s.selected {
		ids = append(ids, id)
	}
	slices.Sort(ids)
	return ids
}

func (s *Selection) changed(ids []string) {
	if s.OnChange != nil {
		s.OnChange(ids)
	}
}

// DefaultDebounce задаёт паузу ввода, после которой фильтр применяется.
const DefaultDebounce = 500 * time.Millisecond

// DebouncedFilter откладывает применение фильтра до паузы во вводе:
// commit вызывается один раз с последним значением.
type DebouncedFilter struct {
	mu      sync.Mutex
	wait    time.Duration
	timer   *time.Timer
	gen     uint64
	pending string
	commit  func(value string)
}

func NewDebouncedFilter(wait time.Duration, commit func(value string)) *DebouncedFilter {
	if wait <= 0 {
		wait = DefaultDebounce
	}
	return &DebouncedFilter{wait: wait, commit: commit}
}

// Input запоминает значение и перезапускает окно ожидания.
func (d *DebouncedFilter) Input(value string) {
	d.mu.Lock()
	defer d.mu.Unlock()

	d.pending = value
	d.gen++
	if d.timer != nil {
		d.timer.Stop()
	}
	gen := d.gen
	d.timer = time.AfterFunc(d.wait, func() { d.fire(gen) })
}

// Flush немедленно применяет отложенное значение, если оно есть.
func (d *DebouncedFilter) Flush() {
	d.mu.Lock()
	if d.timer == nil {
		d.mu.Unlock()
		return
	}
	d.timer.Stop()
	d.timer = nil
	d.gen++
	value := d.pending
	d.mu.Unlock()

	d.commit(value)
}

// Stop отменяет отложенное применение.
func (d *DebouncedFilter) Stop() {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.gen++
	if d.timer != nil {
		d.timer.Stop()
		d.timer = nil
	}
}

// fire срабатывает по таймеру; устаревшие поколения игнорируются.
func (d *DebouncedFilter) fire(gen uint64) {
	d.mu.Lock()
	if gen != d.gen {
		d.mu.Unlock()
		return
	}
	d.gen++
	d.timer = nil
	value := d.pending
	d.mu.Unlock()

	d.commit(value)
}
