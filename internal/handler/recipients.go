package handler

import (
	"net/http"

	"github.com/mmeshcher/parcel-portal/internal/form"
	"github.com/mmeshcher/parcel-portal/internal/model"
)

// ListRecipients возвращает таблицу получателей.
func (h *Handler) ListRecipients(w http.ResponseWriter, r *http.Request) {
	rs, res := h.service.ListRecipients(r.Context())
	if !res.OK() {
		h.writeFailure(w, r, res)
		return
	}
	l := lang(r)
	writePage(h, w, r, h.recipientViews(l, rs), recipientGrid(l))
}

func (h *Handler) GetRecipient(w http.ResponseWriter, r *http.Request) {
	id, ok := h.pathID(w, r)
	if !ok {
		return
	}
	rc, res := h.service.GetRecipient(r.Context(), id)
	h.respond(w, r, http.StatusOK, recipientView{Recipient: rc, StatusLabel: h.bundle.Label(lang(r), rc.Status)}, res)
}

// CreateRecipient принимает поле recipient (JSON) и сканы документа
// documentFront и documentBack.
func (h *Handler) CreateRecipient(w http.ResponseWriter, r *http.Request) {
	var rc model.Recipient
	if !h.decodeBody(w, r, "recipient", &rc) {
		return
	}

	fields, _ := form.Definition(form.Recipient, form.Catalog{})
	if errs := form.Conform(fields, map[string]*string{
		"iin":      &rc.IIN,
		"phone":    &rc.Phone,
		"postcode": &rc.Postcode,
	}); !errs.Empty() {
		h.invalidForm(w, r, form.Recipient, errs)
		return
	}

	created, res := h.service.CreateRecipient(r.Context(), rc,
		firstFilePart(r, "documentFront"),
		firstFilePart(r, "documentBack"),
	)
	h.respondForm(w, r, form.Recipient, http.StatusCreated, created, res)
}

func (h *Handler) ApproveRecipient(w http.ResponseWriter, r *http.Request) {
	id, ok := h.pathID(w, r)
	if !ok {
		return
	}
	h.respond(w, r, 0, nil, h.service.ApproveRecipient(r.Context(), id))
}

type rejectRequest struct {
	Comment string `json:"comment"`
}

// RejectRecipient отклоняет получателя с обязательным комментарием.
func (h *Handler) RejectRecipient(w http.ResponseWriter, r *http.Request) {
	id, ok := h.pathID(w, r)
	if !ok {
		return
	}
	var req rejectRequest
	if !h.decodeJSON(w, r, &req) {
		return
	}
	h.respond(w, r, 0, nil, h.service.RejectRecipient(r.Context(), id, req.Comment))
}

// ListMarketplaces возвращает каталог магазинов с описаниями на языке запроса.
func (h *Handler) ListMarketplaces(w http.ResponseWriter, r *http.Request) {
	ms, res := h.service.ListMarketplaces(r.Context())
	if !res.OK() {
		h.writeFailure(w, r, res)
		return
	}
	l := lang(r)
	writePage(h, w, r, marketplaceViews(l, ms), marketplaceGrid(l))
}

// CreateMarketplace принимает поле marketplace (JSON) и необязательный файл photo.
func (h *Handler) CreateMarketplace(w http.ResponseWriter, r *http.Request) {
	var m model.Marketplace
	if !h.decodeBody(w, r, "marketplace", &m) {
		return
	}
	created, res := h.service.CreateMarketplace(r.Context(), m, firstFilePart(r, "photo"))
	h.respondForm(w, r, form.Marketplace, http.StatusCreated, created, res)
}

func (h *Handler) UpdateMarketplace(w http.ResponseWriter, r *http.Request) {
	id, ok := h.pathID(w, r)
	if !ok {
		return
	}
	var m model.Marketplace
	if !h.decodeJSON(w, r, &m) {
		return
	}
	updated, res := h.service.UpdateMarketplace(r.Context(), id, m)
	h.respondForm(w, r, form.Marketplace, http.StatusOK, updated, res)
}

func (h *Handler) DeleteMarketplace(w http.ResponseWriter, r *http.Request) {
	id, ok := h.pathID(w, r)
	if !ok {
		return
	}
	h.respond(w, r, 0, nil, h.service.DeleteMarketplace(r.Context(), id))
}

func (h *Handler) ListAddresses(w http.ResponseWriter, r *http.Request) {
	as, res := h.service.ListAddresses(r.Context())
	h.respond(w, r, http.StatusOK, nonNil(as), res)
}

func (h *Handler) CreateAddress(w http.ResponseWriter, r *http.Request) {
	var a model.Address
	if !h.decodeJSON(w, r, &a) {
		return
	}
	created, res := h.service.CreateAddress(r.Context(), a)
	h.respond(w, r, http.StatusCreated, created, res)
}

func (h *Handler) ListContacts(w http.ResponseWriter, r *http.Request) {
	cs, res := h.service.ListContacts(r.Context())
	h.respond(w, r, http.StatusOK, nonNil(cs), res)
}

func (h *Handler) CreateContact(w http.ResponseWriter, r *http.Request) {
	var c model.Contact
	if !h.decodeJSON(w, r, &c) {
		return
	}
	created, res := h.service.CreateContact(r.Context(), c)
	h.respond(w, r, http.StatusCreated, created, res)
}

// Countries возвращает справочник стран.
func (h *Handler) Countries(w http.ResponseWriter, r *http.Request) {
	cs, res := h.service.Countries(r.Context())
	h.respond(w, r, http.StatusOK, nonNil(cs), res)
}

// Currencies возвращает справочник валют.
func (h *Handler) Currencies(w http.ResponseWriter, r *http.Request) {
	cs, res := h.service.Currencies(r.Context())
	h.respond(w, r, http.StatusOK, nonNil(cs), res)
}

func nonNil[T any](s []T) []T {
	if s == nil {
		return []T{}
	}
	return s
}
