// Package service реализует доменные сервисы портала поверх клиента бэкенда.
package service

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"strconv"
	"time"

	"go.uber.org/zap"

	"github.com/mmeshcher/parcel-portal/internal/backend"
	"github.com/mmeshcher/parcel-portal/internal/cache"
	"github.com/mmeshcher/parcel-portal/internal/events"
	"github.com/mmeshcher/parcel-portal/internal/validation"
)

// Backend описывает контракт обёртки запросов, используемый сервисом.
type Backend interface {
	Do(ctx context.Context, req backend.Request) backend.Result
}

// Service содержит доменные операции портала.
type Service struct {
	backend   Backend
	cache     cache.Cache
	publisher events.Publisher
	logger    *zap.Logger

	pollInterval   time.Duration
	uploadParallel int
}

// NewService создаёт сервис. cache и publisher могут быть nil.
func NewService(b Backend, c cache.Cache, p events.Publisher, logger *zap.Logger) *Service {
	if c == nil {
		c = cache.Nop{}
	}
	if p == nil {
		p = events.Nop{}
	}
	if logger == nil {
		logger = zap.NewNop()
	}

	return &Service{
		backend:        b,
		cache:          c,
		publisher:      p,
		logger:         logger,
		pollInterval:   time.Second,
		uploadParallel: 4,
	}
}

func decode[T any](res backend.Result) (T, backend.Result) {
	v, err := backend.Decode[T](res)
	if err != nil && res.OK() {
		return v, backend.Failure(validation.ServerError(err.Error()))
	}
	return v, res
}

// cachedGet отдаёт ответ из кэша тега или запрашивает его у бэкенда.
// Ключ включает хэш токена, поэтому пользователи не видят чужие данные.
func (s *Service) cachedGet(ctx context.Context, tag string, req backend.Request) backend.Result {
	key := cacheKey(ctx, req)

	if data, ok := s.cache.Get(ctx, tag, key); ok {
		return backend.Success(data)
	}

	res := s.backend.Do(ctx, req)
	if res.OK() {
		s.cache.Set(ctx, tag, key, res.Data)
	}
	return res
}

func cacheKey(ctx context.Context, req backend.Request) string {
	h := sha256.New()
	if token, ok := backend.TokenFrom(ctx); ok && req.Auth {
		h.Write([]byte(token))
	}
	h.Write([]byte{0})
	h.Write([]byte(req.Path))
	h.Write([]byte{'?'})
	h.Write([]byte(req.Query.Encode()))
	return hex.EncodeToString(h.Sum(nil))[:32]
}

// mutation описывает изменяющий запрос, его теги кэша и событие аудита.
type mutation struct {
	req        backend.Request
	tags       []string
	resource   string
	resourceID string
	action     string
}

// mutate выполняет изменение, сбрасывает теги кэша и публикует событие аудита.
func (s *Service) mutate(ctx context.Context, m mutation) backend.Result {
	req := m.req
	req.Auth = true
	req.OnSuccess = func(ctx context.Context) {
		for _, tag := range m.tags {
			if err := s.cache.InvalidateTag(ctx, tag); err != nil {
				s.logger.Warn("invalidate cache tag", zap.Error(err), zap.String("tag", tag))
			}
		}
	}

	res := s.backend.Do(ctx, req)
	if !res.OK() {
		return res
	}

	resourceID := m.resourceID
	if resourceID == "" {
		resourceID = createdID(res.Data)
	}

	e := events.NewEvent(m.resource, resourceID, m.action)
	e.Subject = backend.SubjectFrom(ctx)
	if err := s.publisher.Publish(ctx, e); err != nil {
		s.logger.Warn("publish audit event",
			zap.Error(err),
			zap.String("resource", m.resource),
			zap.String("action", m.action),
		)
	}

	return res
}

// createdID достаёт идентификатор созданной сущности из ответа бэкенда.
func createdID(data []byte) string {
	var created struct {
		ID int64 `json:"id"`
	}
	if len(data) == 0 || json.Unmarshal(data, &created) != nil || created.ID == 0 {
		return ""
	}
	return id(created.ID)
}

func id(v int64) string {
	return strconv.FormatInt(v, 10)
}

// statusBody используется как тело запросов смены статуса.
type statusBody struct {
	Status string `json:"status"`
}
