package handler

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"github.com/mmeshcher/parcel-portal/internal/backend"
	"github.com/mmeshcher/parcel-portal/internal/form"
	"github.com/mmeshcher/parcel-portal/internal/middleware"
	"github.com/mmeshcher/parcel-portal/internal/store"
	"github.com/mmeshcher/parcel-portal/internal/validation"
)

type formResponse struct {
	Name   string            `json:"name"`
	Fields []form.Descriptor `json:"fields"`
}

// Form возвращает описание полей формы на языке запроса. Варианты
// выпадающих списков берутся из справочников; список получателей
// заполняется только для вошедшего пользователя.
func (h *Handler) Form(w http.ResponseWriter, r *http.Request) {
	name := chi.URLParam(r, "name")
	if !form.IsKnown(name) {
		http.Error(w, http.StatusText(http.StatusNotFound), http.StatusNotFound)
		return
	}

	fields, _ := form.Definition(name, h.catalog(r))
	writeJSON(w, http.StatusOK, formResponse{
		Name:   name,
		Fields: form.Render(h.bundle, lang(r), fields, nil),
	})
}

type optionsResponse struct {
	Field   string        `json:"field"`
	Options []form.Option `json:"options"`
}

// FormOptions ищет варианты выпадающего списка формы по подстроке q.
func (h *Handler) FormOptions(w http.ResponseWriter, r *http.Request) {
	fields, ok := form.Definition(chi.URLParam(r, "name"), h.catalog(r))
	if !ok {
		http.Error(w, http.StatusText(http.StatusNotFound), http.StatusNotFound)
		return
	}

	f, _ := form.Find(fields, chi.URLParam(r, "field"))
	dropdown, ok := f.(form.Dropdown)
	if !ok {
		http.Error(w, http.StatusText(http.StatusNotFound), http.StatusNotFound)
		return
	}

	writeJSON(w, http.StatusOK, optionsResponse{
		Field:   dropdown.ID,
		Options: nonNil(dropdown.Search(r.URL.Query().Get("q"))),
	})
}

type formErrorResponse struct {
	Errors validation.Errors `json:"errors"`
	Fields []form.Descriptor `json:"fields"`
}

// invalidForm отвечает 422 с ошибками и дескрипторами полей формы name.
// Варианты списков не заполняются: клиент получил их вместе с формой.
func (h *Handler) invalidForm(w http.ResponseWriter, r *http.Request, name string, errs validation.Errors) {
	l := lang(r)
	fields, _ := form.Definition(name, form.Catalog{})
	writeJSON(w, http.StatusUnprocessableEntity, formErrorResponse{
		Errors: h.bundle.Errors(l, errs),
		Fields: form.Render(h.bundle, l, fields, errs),
	})
}

// respondForm работает как respond, но ошибки полей отдаёт вместе с формой.
func (h *Handler) respondForm(w http.ResponseWriter, r *http.Request, name string, status int, v any, res backend.Result) {
	if !res.OK() && !res.Error.Has(validation.ServerErrorKey) {
		h.invalidForm(w, r, name, res.Error)
		return
	}
	h.respond(w, r, status, v, res)
}

func (h *Handler) catalog(r *http.Request) form.Catalog {
	ctx := r.Context()
	l := lang(r)
	var c form.Catalog

	if countries, res := h.service.Countries(ctx); res.OK() {
		for _, cn := range countries {
			c.Countries = append(c.Countries, form.Option{Value: cn.Code, Label: cn.Name.Get(l)})
		}
	} else {
		h.logCatalogFailure("countries", res)
	}

	if currencies, res := h.service.Currencies(ctx); res.OK() {
		for _, cur := range currencies {
			c.Currencies = append(c.Currencies, form.Option{Value: cur.Code, Label: cur.Code + " " + cur.Symbol})
		}
	} else {
		h.logCatalogFailure("currencies", res)
	}

	if _, ok := middleware.GetSessionIDFromContext(ctx); ok {
		if recipients, res := h.service.ListRecipients(ctx); res.OK() {
			for _, rc := range recipients {
				c.Recipients = append(c.Recipients, form.Option{
					Value: strconv.FormatInt(rc.ID, 10),
					Label: rc.LastName + " " + rc.FirstName,
				})
			}
		} else {
			h.logCatalogFailure("recipients", res)
		}
	}

	return c
}

func (h *Handler) logCatalogFailure(what string, res backend.Result) {
	h.logger.Warn("load form options", zap.String("catalog", what), zap.String("error", res.Error.Error()))
}

// State возвращает состояние UI-стора текущей сессии.
func (h *Handler) State(w http.ResponseWriter, r *http.Request) {
	s, ok := h.loadStore(w, r)
	if !ok {
		return
	}
	writeJSON(w, http.StatusOK, s.State())
}

// Dispatch применяет действие к стору сессии и сохраняет разрешённые срезы.
func (h *Handler) Dispatch(w http.ResponseWriter, r *http.Request) {
	var a store.Action
	if !h.decodeJSON(w, r, &a) {
		return
	}

	s, ok := h.loadStore(w, r)
	if !ok {
		return
	}

	if err := s.Dispatch(a); err != nil {
		errs := validation.Errors{}
		switch {
		case errors.Is(err, store.ErrUnknownAction):
			errs.Add("type", "validation.oneof")
		case errors.Is(err, store.ErrBadPayload):
			errs.Add("payload", "validation.json")
		default:
			h.logger.Error("dispatch action", zap.Error(err), zap.String("type", a.Type))
			http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
			return
		}
		h.invalid(w, r, errs)
		return
	}

	id, _ := middleware.GetSessionIDFromContext(r.Context())
	if err := store.Save(r.Context(), h.sessions, id.String(), s); err != nil {
		h.logger.Error("save store", zap.Error(err))
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return
	}

	writeJSON(w, http.StatusOK, s.State())
}

func (h *Handler) loadStore(w http.ResponseWriter, r *http.Request) (*store.Store, bool) {
	id, ok := middleware.GetSessionIDFromContext(r.Context())
	if !ok {
		http.Error(w, http.StatusText(http.StatusUnauthorized), http.StatusUnauthorized)
		return nil, false
	}

	s, err := store.Load(r.Context(), h.sessions, id.String())
	if err != nil {
		h.logger.Error("load store", zap.Error(err))
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return nil, false
	}
	return s, true
}
