package handler

import (
	"context"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/mmeshcher/parcel-portal/internal/model"
	"github.com/mmeshcher/parcel-portal/internal/service"
	"github.com/mmeshcher/parcel-portal/internal/tracking"
)

type paymentView struct {
	model.Payment
	StatusLabel string `json:"statusLabel"`
}

func (h *Handler) paymentView(l string, p model.Payment) paymentView {
	return paymentView{Payment: p, StatusLabel: h.bundle.Label(l, p.Status)}
}

// CreatePayment создаёт платёж и возвращает ссылку на оплату.
func (h *Handler) CreatePayment(w http.ResponseWriter, r *http.Request) {
	var req service.PaymentRequest
	if !h.decodeJSON(w, r, &req) {
		return
	}
	p, res := h.service.CreatePayment(r.Context(), req)
	h.respond(w, r, http.StatusCreated, h.paymentView(lang(r), p), res)
}

func (h *Handler) PaymentStatus(w http.ResponseWriter, r *http.Request) {
	id, ok := h.pathID(w, r)
	if !ok {
		return
	}
	p, res := h.service.PaymentStatus(r.Context(), id)
	h.respond(w, r, http.StatusOK, h.paymentView(lang(r), p), res)
}

// WaitPayment держит запрос, пока платёж не завершится или не истечёт
// paymentWait. По таймауту возвращается последнее известное состояние.
func (h *Handler) WaitPayment(w http.ResponseWriter, r *http.Request) {
	id, ok := h.pathID(w, r)
	if !ok {
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), h.paymentWait)
	defer cancel()

	p, res := h.service.WaitPaid(ctx, id)
	h.respond(w, r, http.StatusOK, h.paymentView(lang(r), p), res)
}

type trackingEntryView struct {
	tracking.Entry
	Label string `json:"label"`
}

// Tracking возвращает историю отслеживания, подписанную на языке запроса.
// Подпись берётся по первому известному коду события, иначе остаётся
// названием от перевозчика.
func (h *Handler) Tracking(w http.ResponseWriter, r *http.Request) {
	entries, res := h.service.Timeline(r.Context(), chi.URLParam(r, "number"))
	if !res.OK() {
		h.writeFailure(w, r, res)
		return
	}

	l := lang(r)
	out := make([]trackingEntryView, 0, len(entries))
	for _, e := range entries {
		out = append(out, trackingEntryView{Entry: e, Label: h.trackingLabel(l, e)})
	}
	writeJSON(w, http.StatusOK, out)
}

func (h *Handler) trackingLabel(l string, e tracking.Entry) string {
	for _, code := range e.Status {
		if tracking.IsSuppressed(code) {
			continue
		}
		if msg, ok := h.bundle.Lookup(l, "tracking."+code); ok {
			return msg
		}
	}
	return e.Name
}

// UploadFile загружает одиночный файл из поля file.
func (h *Handler) UploadFile(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseMultipartForm(maxUploadMemory); err != nil {
		h.badRequest(w, r, "file", "validation.files")
		return
	}
	part := firstFilePart(r, "file")
	if part == nil {
		h.badRequest(w, r, "file", "validation.files")
		return
	}
	f, res := h.service.UploadFile(r.Context(), *part)
	h.respond(w, r, http.StatusCreated, f, res)
}

// DownloadFile проксирует содержимое файла из бэкенда.
func (h *Handler) DownloadFile(w http.ResponseWriter, r *http.Request) {
	id, ok := h.pathID(w, r)
	if !ok {
		return
	}
	res := h.service.DownloadFile(r.Context(), id)
	if !res.OK() {
		h.writeFailure(w, r, res)
		return
	}

	ct := res.ContentType
	if ct == "" {
		ct = "application/octet-stream"
	}
	w.Header().Set("Content-Type", ct)
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(res.Data)
}
