// Package handler содержит HTTP-обработчики портала.
package handler

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"mime/multipart"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"go.uber.org/zap"
	"golang.org/x/oauth2"

	"github.com/mmeshcher/parcel-portal/internal/auth"
	"github.com/mmeshcher/parcel-portal/internal/backend"
	"github.com/mmeshcher/parcel-portal/internal/i18n"
	"github.com/mmeshcher/parcel-portal/internal/middleware"
	"github.com/mmeshcher/parcel-portal/internal/repository"
	"github.com/mmeshcher/parcel-portal/internal/service"
	"github.com/mmeshcher/parcel-portal/internal/store"
	"github.com/mmeshcher/parcel-portal/internal/validation"
)

// SessionRepository хранит сессии и сохранённые срезы UI-стора.
type SessionRepository interface {
	CreateSession(ctx context.Context, s repository.Session) error
	GetSession(ctx context.Context, id uuid.UUID) (*repository.Session, error)
	DeleteSession(ctx context.Context, id uuid.UUID) error
	store.Persister
}

// LoginProvider ведёт вход через провайдера.
type LoginProvider interface {
	StartLogin(locale string) (auth.Login, error)
	Exchange(ctx context.Context, code, verifier string) (*oauth2.Token, error)
	LogoutURL(idToken, redirect string) string
}

// Pinger проверяет доступность зависимости для /healthz.
type Pinger interface {
	Ping(ctx context.Context) error
}

// Deps собирает зависимости обработчиков.
type Deps struct {
	Service  *service.Service
	Bundle   *i18n.Bundle
	Auth     *middleware.AuthMiddleware
	Signer   *auth.Signer
	Provider LoginProvider
	Claims   middleware.ClaimsParser
	Sessions SessionRepository
	Health   []Pinger
	Logger   *zap.Logger
	// PaymentWait ограничивает ожидание оплаты; по умолчанию DefaultPaymentWait.
	PaymentWait time.Duration
}

// Handler реализует HTTP-обработчики портала.
type Handler struct {
	service  *service.Service
	bundle   *i18n.Bundle
	auth     *middleware.AuthMiddleware
	signer   *auth.Signer
	provider LoginProvider
	claims   middleware.ClaimsParser
	sessions SessionRepository
	health   []Pinger
	logger   *zap.Logger

	paymentWait time.Duration
}

// NewHandler создаёт новый экземпляр обработчика HTTP-запросов.
func NewHandler(d Deps) *Handler {
	logger := d.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	wait := d.PaymentWait
	if wait <= 0 {
		wait = DefaultPaymentWait
	}
	return &Handler{
		service:  d.Service,
		bundle:   d.Bundle,
		auth:     d.Auth,
		signer:   d.Signer,
		provider: d.Provider,
		claims:   d.Claims,
		sessions: d.Sessions,
		health:   d.Health,
		logger:   logger,

		paymentWait: wait,
	}
}

const (
	maxUploadMemory = 32 << 20

	DefaultPaymentWait = 2 * time.Minute
)

func lang(r *http.Request) string {
	return middleware.LocaleFromContext(r.Context())
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

type errorResponse struct {
	Errors validation.Errors `json:"errors"`
}

// writeFailure переводит неуспешный результат в HTTP-ответ: ошибки полей
// дают 422, отсутствие сессии у бэкенда даёт 401, прочие ошибки бэкенда 502.
func (h *Handler) writeFailure(w http.ResponseWriter, r *http.Request, res backend.Result) {
	errs := h.bundle.Errors(lang(r), res.Error)

	switch {
	case !res.Error.Has(validation.ServerErrorKey):
		writeJSON(w, http.StatusUnprocessableEntity, errorResponse{Errors: errs})
	case res.Code == http.StatusUnauthorized:
		writeJSON(w, http.StatusUnauthorized, errorResponse{Errors: errs})
	case res.Code == http.StatusForbidden || res.Code == http.StatusNotFound:
		writeJSON(w, res.Code, errorResponse{Errors: errs})
	default:
		h.logger.Warn("backend request failed",
			zap.String("path", r.URL.Path),
			zap.Int("code", res.Code),
			zap.String("error", res.Error.Error()),
		)
		writeJSON(w, http.StatusBadGateway, errorResponse{Errors: errs})
	}
}

// respond пишет v при успехе или ошибку результата.
func (h *Handler) respond(w http.ResponseWriter, r *http.Request, status int, v any, res backend.Result) {
	if !res.OK() {
		h.writeFailure(w, r, res)
		return
	}
	if v == nil {
		w.WriteHeader(http.StatusNoContent)
		return
	}
	writeJSON(w, status, v)
}

func (h *Handler) badRequest(w http.ResponseWriter, r *http.Request, field, key string) {
	errs := validation.Errors{}
	errs.Add(field, key)
	writeJSON(w, http.StatusBadRequest, errorResponse{Errors: h.bundle.Errors(lang(r), errs)})
}

func (h *Handler) invalid(w http.ResponseWriter, r *http.Request, errs validation.Errors) {
	writeJSON(w, http.StatusUnprocessableEntity, errorResponse{Errors: h.bundle.Errors(lang(r), errs)})
}

// pathID разбирает параметр маршрута {id}.
func (h *Handler) pathID(w http.ResponseWriter, r *http.Request) (int64, bool) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil || id <= 0 {
		h.badRequest(w, r, "id", "validation.gt")
		return 0, false
	}
	return id, true
}

func (h *Handler) decodeJSON(w http.ResponseWriter, r *http.Request, v any) bool {
	defer r.Body.Close()
	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		h.badRequest(w, r, "body", "validation.json")
		return false
	}
	return true
}

// decodeMultipart разбирает multipart-форму: JSON-поле field и файлы.
func (h *Handler) decodeMultipart(w http.ResponseWriter, r *http.Request, field string, v any) bool {
	if err := r.ParseMultipartForm(maxUploadMemory); err != nil {
		h.badRequest(w, r, "body", "validation.json")
		return false
	}
	if err := json.Unmarshal([]byte(r.FormValue(field)), v); err != nil {
		h.badRequest(w, r, field, "validation.json")
		return false
	}
	return true
}

// decodeBody принимает и multipart-форму, и обычный JSON.
func (h *Handler) decodeBody(w http.ResponseWriter, r *http.Request, field string, v any) bool {
	if strings.HasPrefix(r.Header.Get("Content-Type"), "multipart/form-data") {
		return h.decodeMultipart(w, r, field, v)
	}
	return h.decodeJSON(w, r, v)
}

func fileParts(r *http.Request, field string) []backend.FilePart {
	if r.MultipartForm == nil {
		return nil
	}
	headers := r.MultipartForm.File[field]
	parts := make([]backend.FilePart, 0, len(headers))
	for _, fh := range headers {
		parts = append(parts, filePart(fh))
	}
	return parts
}

func firstFilePart(r *http.Request, field string) *backend.FilePart {
	parts := fileParts(r, field)
	if len(parts) == 0 {
		return nil
	}
	return &parts[0]
}

func filePart(fh *multipart.FileHeader) backend.FilePart {
	return backend.FilePart{
		Name:        fh.Filename,
		ContentType: fh.Header.Get("Content-Type"),
		Content:     &lazyFile{fh: fh},
	}
}

// lazyFile открывает загруженный файл при первом чтении и закрывает после EOF.
type lazyFile struct {
	fh *multipart.FileHeader
	f  multipart.File
}

func (l *lazyFile) Read(p []byte) (int, error) {
	if l.f == nil {
		f, err := l.fh.Open()
		if err != nil {
			return 0, err
		}
		l.f = f
	}
	n, err := l.f.Read(p)
	if errors.Is(err, io.EOF) {
		_ = l.f.Close()
	}
	return n, err
}

// Health отвечает 200, если все зависимости доступны.
func (h *Handler) Health(w http.ResponseWriter, r *http.Request) {
	for _, p := range h.health {
		if err := p.Ping(r.Context()); err != nil {
			h.logger.Error("health check failed", zap.Error(err))
			http.Error(w, http.StatusText(http.StatusServiceUnavailable), http.StatusServiceUnavailable)
			return
		}
	}
	w.WriteHeader(http.StatusOK)
}
