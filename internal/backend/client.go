// Package backend предоставляет единую обёртку запросов к удалённому REST API.
package backend

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"net/textproto"
	"net/url"
	"strconv"
	"strings"
	"time"

	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"
	"go.uber.org/zap"

	"github.com/mmeshcher/parcel-portal/internal/metrics"
	"github.com/mmeshcher/parcel-portal/internal/validation"
)

// Status различает успех и ошибку запроса.
type Status string

const (
	StatusSuccess Status = "success"
	StatusError   Status = "error"
)

// Result хранит размеченный результат: данные при успехе, карта ошибок по полям при неудаче.
type Result struct {
	Status      Status            `json:"status"`
	Data        json.RawMessage   `json:"data,omitempty"`
	Error       validation.Errors `json:"error,omitempty"`
	ContentType string            `json:"-"`
	Code        int               `json:"-"`
}

// OK сообщает об успешном результате.
func (r Result) OK() bool { return r.Status == StatusSuccess }

// Success строит успешный результат.
func Success(data json.RawMessage) Result {
	return Result{Status: StatusSuccess, Data: data}
}

// Failure строит результат с ошибками.
func Failure(errs validation.Errors) Result {
	return Result{Status: StatusError, Error: errs}
}

// Decode разбирает данные успешного результата в T.
func Decode[T any](r Result) (T, error) {
	var v T
	if !r.OK() {
		return v, r.Error
	}
	if len(r.Data) == 0 {
		return v, nil
	}
	if err := json.Unmarshal(r.Data, &v); err != nil {
		return v, fmt.Errorf("decode response: %w", err)
	}
	return v, nil
}

// FilePart описывает файл для отправки в multipart-запросе.
type FilePart struct {
	Field       string
	Name        string
	ContentType string
	Content     io.Reader
}

// Request описывает одно обращение к бэкенду.
type Request struct {
	Method string
	Path   string
	Query  url.Values
	// Body кодируется в JSON, если не заданы Files.
	Body any
	// Files переводит запрос в multipart/form-data; Fields добавляются как обычные поля формы.
	Files  []FilePart
	Fields map[string]string
	// Auth требует bearer-токен текущей сессии.
	Auth bool
	// Validate и Check выполняются до запроса; при ошибках сеть не используется.
	Validate validation.Rules
	Check    any
	// OnSuccess вызывается после ответа 2xx, обычно для сброса тегов кэша.
	OnSuccess func(ctx context.Context)
}

// Client выполняет запросы к удалённому REST API.
type Client struct {
	baseURL    string
	httpClient *http.Client
	logger     *zap.Logger
}

// NewClient создаёт клиент бэкенда. Запрос выполняется один раз, без повторов;
// по времени запрос ограничен только таймаутом HTTP-клиента.
func NewClient(baseURL string, timeout time.Duration, logger *zap.Logger) *Client {
	base := strings.TrimRight(baseURL, "/")
	if base != "" && !strings.HasPrefix(base, "http://") && !strings.HasPrefix(base, "https://") {
		base = "http://" + base
	}

	if logger == nil {
		logger = zap.NewNop()
	}

	return &Client{
		baseURL: base,
		httpClient: &http.Client{
			Timeout:   timeout,
			Transport: otelhttp.NewTransport(http.DefaultTransport),
		},
		logger: logger,
	}
}

// Do проверяет запрос, выполняет его и приводит ответ к Result.
func (c *Client) Do(ctx context.Context, req Request) Result {
	start := time.Now()
	res := c.do(ctx, req)

	outcome := string(res.Status)
	if !res.OK() && !res.Error.Has(validation.ServerErrorKey) {
		outcome = "validation"
	}
	metrics.BackendRequestDuration.WithLabelValues(req.Method, outcome).Observe(time.Since(start).Seconds())

	return res
}

func (c *Client) do(ctx context.Context, req Request) Result {
	errs := validation.Errors{}
	if req.Validate != nil {
		errs.Merge(req.Validate.Run())
	}
	if req.Check != nil {
		errs.Merge(validation.Struct(req.Check))
	}
	if !errs.Empty() {
		return Failure(errs)
	}

	if c == nil || c.baseURL == "" {
		return Failure(validation.ServerError("backend not configured"))
	}

	httpReq, err := c.newRequest(ctx, req)
	if err != nil {
		c.logger.Error("build backend request", zap.Error(err), zap.String("path", req.Path))
		return Failure(validation.ServerError(err.Error()))
	}

	if req.Auth {
		token, ok := TokenFrom(ctx)
		if !ok {
			res := Failure(validation.ServerError(strconv.Itoa(http.StatusUnauthorized)))
			res.Code = http.StatusUnauthorized
			return res
		}
		httpReq.Header.Set("Authorization", "Bearer "+token)
	}

	resp, err := c.httpClient.Do(httpReq)
	if err != nil {
		c.logger.Warn("backend request failed", zap.Error(err), zap.String("path", req.Path))
		return Failure(validation.ServerError(err.Error()))
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		c.logger.Debug("backend responded with error",
			zap.String("method", req.Method),
			zap.String("path", req.Path),
			zap.Int("status", resp.StatusCode),
		)
		res := Failure(validation.ServerError(strconv.Itoa(resp.StatusCode)))
		res.Code = resp.StatusCode
		return res
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return Failure(validation.ServerError(fmt.Sprintf("read response: %v", err)))
	}

	res := Success(body)
	res.Code = resp.StatusCode
	res.ContentType = resp.Header.Get("Content-Type")

	if req.OnSuccess != nil {
		req.OnSuccess(ctx)
	}

	return res
}

func (c *Client) newRequest(ctx context.Context, req Request) (*http.Request, error) {
	u := c.baseURL + "/" + strings.TrimLeft(req.Path, "/")
	if len(req.Query) > 0 {
		u += "?" + req.Query.Encode()
	}

	method := req.Method
	if method == "" {
		method = http.MethodGet
	}

	var (
		body        io.Reader
		contentType string
	)

	switch {
	case len(req.Files) > 0:
		buf := &bytes.Buffer{}
		mw := multipart.NewWriter(buf)
		for k, v := range req.Fields {
			if err := mw.WriteField(k, v); err != nil {
				return nil, fmt.Errorf("write field %s: %w", k, err)
			}
		}
		for _, f := range req.Files {
			part, err := mw.CreatePart(filePartHeader(f))
			if err != nil {
				return nil, fmt.Errorf("create form file: %w", err)
			}
			if _, err := io.Copy(part, f.Content); err != nil {
				return nil, fmt.Errorf("copy file %s: %w", f.Name, err)
			}
		}
		if err := mw.Close(); err != nil {
			return nil, fmt.Errorf("close multipart: %w", err)
		}
		body = buf
		contentType = mw.FormDataContentType()
	case req.Body != nil:
		data, err := json.Marshal(req.Body)
		if err != nil {
			return nil, fmt.Errorf("encode body: %w", err)
		}
		body = bytes.NewReader(data)
		contentType = "application/json"
	}

	httpReq, err := http.NewRequestWithContext(ctx, method, u, body)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	if contentType != "" {
		httpReq.Header.Set("Content-Type", contentType)
	}
	httpReq.Header.Set("Accept", "application/json")

	return httpReq, nil
}

var quoteEscaper = strings.NewReplacer("\\", "\\\\", `"`, "\\\"")

// filePartHeader повторяет multipart.CreateFormFile, но сохраняет тип содержимого файла.
func filePartHeader(f FilePart) textproto.MIMEHeader {
	ct := f.ContentType
	if ct == "" {
		ct = "application/octet-stream"
	}
	h := make(textproto.MIMEHeader)
	h.Set("Content-Disposition", fmt.Sprintf(`form-data; name="%s"; filename="%s"`,
		quoteEscaper.Replace(f.Field), quoteEscaper.Replace(f.Name)))
	h.Set("Content-Type", ct)
	return h
}
