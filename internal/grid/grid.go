// Package grid реализует табличное представление списков: фильтрацию,
// сортировку, постраничный вывод и выбор строк.
package grid

import (
	"cmp"
	"fmt"
	"net/url"
	"slices"
	"strconv"
	"strings"

	"github.com/shopspring/decimal"

	"github.com/mmeshcher/parcel-portal/internal/validation"
)

const (
	DefaultPageSize = 10
	MaxPageSize     = 100
	WindowSize      = 5
)

// Kind определяет способ фильтрации и сравнения значений колонки.
type Kind string

const (
	KindText   Kind = "text"
	KindNumber Kind = "number"
)

// Column описывает колонку таблицы. Accessor возвращает значение ячейки:
// строку для текстовых колонок, число (int*, float64, decimal.Decimal)
// для числовых.
type Column[T any] struct {
	ID       string
	Header   string
	Kind     Kind
	Accessor func(T) any
}

// SortKey задаёт сортировку по колонке.
type SortKey struct {
	Column string `json:"column"`
	Desc   bool   `json:"desc"`
}

// Filter задаёт условие по колонке: подстрока для текста, диапазон для чисел.
type Filter struct {
	Text string           `json:"text,omitempty"`
	Min  *decimal.Decimal `json:"min,omitempty"`
	Max  *decimal.Decimal `json:"max,omitempty"`
}

// Query хранит состояние таблицы, пришедшее из URL.
type Query struct {
	Sort     []SortKey         `json:"sort,omitempty"`
	Filters  map[string]Filter `json:"filters,omitempty"`
	Page     int               `json:"page"`
	PageSize int               `json:"pageSize"`
}

// ParseQuery разбирает параметры вида
// sort=status:desc&sort=id, filter.name=abc, min.price=1&max.price=9, page=2, size=20.
func ParseQuery(v url.Values) (Query, validation.Errors) {
	q := Query{Filters: map[string]Filter{}, Page: 1, PageSize: DefaultPageSize}
	errs := validation.Errors{}

	for _, raw := range v["sort"] {
		for _, part := range strings.Split(raw, ",") {
			col, dir, _ := strings.Cut(strings.TrimSpace(part), ":")
			if col == "" {
				continue
			}
			switch strings.ToLower(dir) {
			case "", "asc":
				q.Sort = append(q.Sort, SortKey{Column: col})
			case "desc":
				q.Sort = append(q.Sort, SortKey{Column: col, Desc: true})
			default:
				errs.Add("sort", "validation.oneof")
			}
		}
	}

	for key, values := range v {
		prefix, col, ok := strings.Cut(key, ".")
		if !ok || col == "" || len(values) == 0 {
			continue
		}
		value := strings.TrimSpace(values[0])
		if value == "" {
			continue
		}

		f := q.Filters[col]
		switch prefix {
		case "filter":
			f.Text = value
		case "min", "max":
			d, err := decimal.NewFromString(value)
			if err != nil {
				errs.Add(key, "validation.numeric")
				continue
			}
			if prefix == "min" {
				f.Min = &d
			} else {
				f.Max = &d
			}
		default:
			continue
		}
		q.Filters[col] = f
	}

	if raw := v.Get("page"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n < 1 {
			errs.Add("page", "validation.gt")
		} else {
			q.Page = n
		}
	}
	if raw := v.Get("size"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n < 1 || n > MaxPageSize {
			errs.Add("size", "validation.max")
		} else {
			q.PageSize = n
		}
	}

	return q, errs
}

// Row содержит строку результата со ссылкой на детальную страницу.
type Row[T any] struct {
	Href string `json:"href,omitempty"`
	Data T      `json:"data"`
}

// Page содержит одну страницу отфильтрованных и отсортированных строк.
type Page[T any] struct {
	Rows      []Row[T] `json:"rows"`
	Total     int      `json:"total"`
	Page      int      `json:"page"`
	PageSize  int      `json:"pageSize"`
	PageCount int      `json:"pageCount"`
	Window    []int    `json:"window"`
}

// Grid связывает колонки таблицы и построитель ссылок на строки.
type Grid[T any] struct {
	Columns []Column[T]
	Href    func(T) string
}

// Apply работает как Grid, но без ссылок на строки.
func Apply[T any](rows []T, cols []Column[T], q Query) Page[T] {
	return Grid[T]{Columns: cols}.Apply(rows, q)
}

// Apply фильтрует, сортирует и режет строки на страницы. Фильтры и ключи
// сортировки по неизвестным колонкам игнорируются. Сортировка стабильна.
func (g Grid[T]) Apply(rows []T, q Query) Page[T] {
	cols := make(map[string]Column[T], len(g.Columns))
	for _, c := range g.Columns {
		cols[c.ID] = c
	}

	filtered := make([]T, 0, len(rows))
	for _, r := range rows {
		if g.match(r, cols, q.Filters) {
			filtered = append(filtered, r)
		}
	}

	keys := make([]SortKey, 0, len(q.Sort))
	for _, k := range q.Sort {
		if _, ok := cols[k.Column]; ok {
			keys = append(keys, k)
		}
	}
	if len(keys) > 0 {
		slices.SortStableFunc(filtered, func(a, b T) int {
			for _, k := range keys {
				c := compare(cols[k.Column], a, b)
				if k.Desc {
					c = -c
				}
				if c != 0 {
					return c
				}
			}
			return 0
		})
	}

	size := q.PageSize
	if size < 1 {
		size = DefaultPageSize
	}
	total := len(filtered)
	pageCount := (total + size - 1) / size
	page := min(max(q.Page, 1), max(pageCount, 1))

	start := min((page-1)*size, total)
	end := min(start+size, total)

	out := make([]Row[T], 0, end-start)
	for _, r := range filtered[start:end] {
		row := Row[T]{Data: r}
		if g.Href != nil {
			row.Href = g.Href(r)
		}
		out = append(out, row)
	}

	return Page[T]{
		Rows:      out,
		Total:     total,
		Page:      page,
		PageSize:  size,
		PageCount: pageCount,
		Window:    PageWindow(page, pageCount),
	}
}

func (g Grid[T]) match(r T, cols map[string]Column[T], filters map[string]Filter) bool {
	for id, f := range filters {
		c, ok := cols[id]
		if !ok {
			continue
		}
		v := c.Accessor(r)

		if f.Text != "" {
			if !strings.Contains(strings.ToLower(text(v)), strings.ToLower(f.Text)) {
				return false
			}
		}
		if f.Min != nil || f.Max != nil {
			n, ok := number(v)
			if !ok {
				return false
			}
			if f.Min != nil && n.LessThan(*f.Min) {
				return false
			}
			if f.Max != nil && n.GreaterThan(*f.Max) {
				return false
			}
		}
	}
	return true
}

func compare[T any](c Column[T], a, b T) int {
	va, vb := c.Accessor(a), c.Accessor(b)
	if c.Kind == KindNumber {
		na, _ := number(va)
		nb, _ := number(vb)
		return na.Cmp(nb)
	}
	return cmp.Compare(strings.ToLower(text(va)), strings.ToLower(text(vb)))
}

func text(v any) string {
	switch t := v.(type) {
	case nil:
		return ""
	case string:
		return t
	case fmt.Stringer:
		return t.String()
	default:
		return fmt.Sprint(t)
	}
}

func number(v any) (decimal.Decimal, bool) {
	switch t := v.(type) {
	case decimal.Decimal:
		return t, true
	case int:
		return decimal.NewFromInt(int64(t)), true
	case int64:
		return decimal.NewFromInt(t), true
	case float64:
		return decimal.NewFromFloat(t), true
	case string:
		d, err := decimal.NewFromString(t)
		return d, err == nil
	default:
		return decimal.Zero, false
	}
}

// PageWindow возвращает не больше WindowSize номеров страниц вокруг current,
// не выходя за [1, total]. При total < 1 окно пустое.
func PageWindow(current, total int) []int {
	if total < 1 {
		return []int{}
	}
	current = min(max(current, 1), total)

	start := current - WindowSize/2
	end := start + WindowSize - 1
	if start < 1 {
		start = 1
		end = min(WindowSize, total)
	}
	if end > total {
		end = total
		start = max(1, end-WindowSize+1)
	}

	window := make([]int, 0, end-start+1)
	for p := start; p <= end; p++ {
		window = append(window, p)
	}
	return window
}
