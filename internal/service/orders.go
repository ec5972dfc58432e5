package service

import (
	"context"
	"fmt"
	"net/http"

	"github.com/mmeshcher/parcel-portal/internal/backend"
	"github.com/mmeshcher/parcel-portal/internal/cache"
	"github.com/mmeshcher/parcel-portal/internal/model"
	"github.com/mmeshcher/parcel-portal/internal/validation"
)

// ListOrders возвращает заказы текущего пользователя (администратору все заказы).
func (s *Service) ListOrders(ctx context.Context) ([]model.Order, backend.Result) {
	res := s.cachedGet(ctx, cache.TagOrders, backend.Request{
		Method: http.MethodGet,
		Path:   "v1/orders",
		Auth:   true,
	})
	return decode[[]model.Order](res)
}

// GetOrder возвращает заказ по идентификатору.
func (s *Service) GetOrder(ctx context.Context, orderID int64) (model.Order, backend.Result) {
	res := s.backend.Do(ctx, backend.Request{
		Method: http.MethodGet,
		Path:   "v1/orders/" + id(orderID),
		Auth:   true,
		Validate: validation.Rules{
			"id": {validation.Positive(orderID, "validation.gt")},
		},
	})
	return decode[model.Order](res)
}

func goodsRules(goods []model.Good) validation.Rules {
	rules := validation.Rules{}
	for i, g := range goods {
		field := fmt.Sprintf("goods[%d].price", i)
		rules[field] = append(rules[field], validation.Check(g.Price.IsPositive(), "validation.gt"))
	}
	return rules
}

// CreateOrder загружает инвойсы и создаёт заказ. Заказ отправляется,
// только если все файлы загружены успешно.
func (s *Service) CreateOrder(ctx context.Context, order model.Order, invoices []backend.FilePart) (model.Order, backend.Result) {
	errs := validation.Struct(order)
	errs.Merge(goodsRules(order.Goods).Run())
	if !errs.Empty() {
		return model.Order{}, backend.Failure(errs)
	}

	ids, res := s.UploadFiles(ctx, invoices)
	if !res.OK() {
		return model.Order{}, res
	}
	order.InvoiceIDs = append(order.InvoiceIDs, ids...)

	res = s.mutate(ctx, mutation{
		req: backend.Request{
			Method: http.MethodPost,
			Path:   "v1/orders",
			Body:   order,
		},
		tags:     []string{cache.TagOrders, cache.TagGoods},
		resource: "order",
		action:   "create",
	})
	return decode[model.Order](res)
}

// UpdateOrderStatus меняет статус заказа (администратор).
func (s *Service) UpdateOrderStatus(ctx context.Context, orderID int64, status model.OrderStatus) backend.Result {
	return s.mutate(ctx, mutation{
		req: backend.Request{
			Method: http.MethodPatch,
			Path:   "v1/orders/" + id(orderID) + "/status",
			Body:   statusBody{Status: string(status)},
			Validate: validation.Rules{
				"id":     {validation.Positive(orderID, "validation.gt")},
				"status": {validation.Check(status.Valid(), "validation.oneof")},
			},
		},
		tags:       []string{cache.TagOrders},
		resource:   "order",
		resourceID: id(orderID),
		action:     "status:" + string(status),
	})
}

// DeleteOrder помечает заказ удалённым; физически заказы не удаляются.
func (s *Service) DeleteOrder(ctx context.Context, orderID int64) backend.Result {
	return s.UpdateOrderStatus(ctx, orderID, model.OrderStatusDeleted)
}
