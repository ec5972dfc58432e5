package service

import (
	"context"
	"net/http"

	"golang.org/x/sync/errgroup"

	"github.com/mmeshcher/parcel-portal/internal/backend"
	"github.com/mmeshcher/parcel-portal/internal/cache"
	"github.com/mmeshcher/parcel-portal/internal/model"
	"github.com/mmeshcher/parcel-portal/internal/validation"
)

func (s *Service) ListGoods(ctx context.Context) ([]model.Good, backend.Result) {
	res := s.cachedGet(ctx, cache.TagGoods, backend.Request{
		Method: http.MethodGet,
		Path:   "v1/goods",
		Auth:   true,
	})
	return decode[[]model.Good](res)
}

// UpdateGood изменяет декларацию товара.
func (s *Service) UpdateGood(ctx context.Context, goodID int64, g model.Good) (model.Good, backend.Result) {
	res := s.mutate(ctx, mutation{
		req: backend.Request{
			Method: http.MethodPut,
			Path:   "v1/goods/" + id(goodID),
			Body:   g,
			Check:  g,
			Validate: validation.Rules{
				"id":    {validation.Positive(goodID, "validation.gt")},
				"price": {validation.Check(g.Price.IsPositive(), "validation.gt")},
			},
		},
		tags:       []string{cache.TagGoods, cache.TagOrders, cache.TagDeliveries},
		resource:   "good",
		resourceID: id(goodID),
		action:     "update",
	})
	return decode[model.Good](res)
}

func (s *Service) UpdateGoodStatus(ctx context.Context, goodID int64, status model.GoodStatus) backend.Result {
	return s.mutate(ctx, mutation{
		req: backend.Request{
			Method: http.MethodPatch,
			Path:   "v1/goods/" + id(goodID) + "/status",
			Body:   statusBody{Status: string(status)},
			Validate: validation.Rules{
				"id":     {validation.Positive(goodID, "validation.gt")},
				"status": {validation.Check(status.Valid(), "validation.oneof")},
			},
		},
		tags:       []string{cache.TagGoods, cache.TagOrders, cache.TagDeliveries},
		resource:   "good",
		resourceID: id(goodID),
		action:     "status:" + string(status),
	})
}

// BulkResult содержит итог группового изменения: успешные идентификаторы
// и ошибки по остальным.
type BulkResult struct {
	Updated []int64                      `json:"updated"`
	Failed  map[string]validation.Errors `json:"failed,omitempty"`
}

// UpdateGoodsStatus меняет статус нескольких товаров, не больше uploadParallel
// запросов одновременно. Ошибка по одному товару не прерывает остальные.
func (s *Service) UpdateGoodsStatus(ctx context.Context, goodIDs []int64, status model.GoodStatus) (BulkResult, backend.Result) {
	errs := validation.Errors{}
	if len(goodIDs) == 0 {
		errs.Add("ids", "validation.required")
	}
	if !status.Valid() {
		errs.Add("status", "validation.oneof")
	}
	if !errs.Empty() {
		return BulkResult{}, backend.Failure(errs)
	}

	results := make([]backend.Result, len(goodIDs))

	var g errgroup.Group
	g.SetLimit(s.uploadParallel)
	for i, goodID := range goodIDs {
		i, goodID := i, goodID
		g.Go(func() error {
			results[i] = s.UpdateGoodStatus(ctx, goodID, status)
			return nil
		})
	}
	_ = g.Wait()

	out := BulkResult{Updated: make([]int64, 0, len(goodIDs))}
	for i, res := range results {
		if res.OK() {
			out.Updated = append(out.Updated, goodIDs[i])
			continue
		}
		if out.Failed == nil {
			out.Failed = make(map[string]validation.Errors)
		}
		out.Failed[id(goodIDs[i])] = res.Error
	}
	return out, backend.Success(nil)
}
