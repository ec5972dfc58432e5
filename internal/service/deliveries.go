package service

import (
	"context"
	"net/http"

	"github.com/mmeshcher/parcel-portal/internal/backend"
	"github.com/mmeshcher/parcel-portal/internal/cache"
	"github.com/mmeshcher/parcel-portal/internal/model"
	"github.com/mmeshcher/parcel-portal/internal/validation"
)

// ListDeliveries возвращает все посылки (администратор).
func (s *Service) ListDeliveries(ctx context.Context) ([]model.Delivery, backend.Result) {
	res := s.cachedGet(ctx, cache.TagDeliveries, backend.Request{
		Method: http.MethodGet,
		Path:   "v1/deliveries",
		Auth:   true,
	})
	return decode[[]model.Delivery](res)
}

// ListMyDeliveries возвращает посылки текущего пользователя.
func (s *Service) ListMyDeliveries(ctx context.Context) ([]model.Delivery, backend.Result) {
	res := s.cachedGet(ctx, cache.TagDeliveries, backend.Request{
		Method: http.MethodGet,
		Path:   "v1/my/deliveries",
		Auth:   true,
	})
	return decode[[]model.Delivery](res)
}

// GetMyDelivery возвращает посылку текущего пользователя.
func (s *Service) GetMyDelivery(ctx context.Context, deliveryID int64) (model.Delivery, backend.Result) {
	res := s.backend.Do(ctx, backend.Request{
		Method: http.MethodGet,
		Path:   "v1/my/deliveries/" + id(deliveryID),
		Auth:   true,
		Validate: validation.Rules{
			"id": {validation.Positive(deliveryID, "validation.gt")},
		},
	})
	return decode[model.Delivery](res)
}

// CreateDelivery объединяет товары одного получателя в посылку и загружает инвойс.
func (s *Service) CreateDelivery(ctx context.Context, d model.Delivery, invoice *backend.FilePart) (model.Delivery, backend.Result) {
	errs := validation.Struct(d)
	errs.Merge(validation.Rules{
		"weight": {validation.Check(d.Weight.IsPositive(), "validation.gt")},
		"price":  {validation.Check(!d.Price.IsNegative(), "validation.gt")},
	}.Run())
	if d.KazPostTrackingNumber != "" && !validation.IsValidTrackingNumber(d.KazPostTrackingNumber) {
		errs.Add("kazPostTrackingNumber", "validation.s10")
	}
	if !errs.Empty() {
		return model.Delivery{}, backend.Failure(errs)
	}

	if invoice != nil {
		file, res := s.UploadFile(ctx, *invoice)
		if !res.OK() {
			return model.Delivery{}, res
		}
		d.InvoiceFileID = &file.ID
	}

	res := s.mutate(ctx, mutation{
		req: backend.Request{
			Method: http.MethodPost,
			Path:   "v1/deliveries",
			Body:   d,
		},
		tags:     []string{cache.TagDeliveries, cache.TagGoods},
		resource: "delivery",
		action:   "create",
	})
	return decode[model.Delivery](res)
}

// UpdateDeliveryStatus меняет статус посылки (администратор).
func (s *Service) UpdateDeliveryStatus(ctx context.Context, deliveryID int64, status model.DeliveryStatus) backend.Result {
	return s.mutate(ctx, mutation{
		req: backend.Request{
			Method: http.MethodPatch,
			Path:   "v1/deliveries/" + id(deliveryID) + "/status",
			Body:   statusBody{Status: string(status)},
			Validate: validation.Rules{
				"id":     {validation.Positive(deliveryID, "validation.gt")},
				"status": {validation.Check(status.Valid(), "validation.oneof")},
			},
		},
		tags:       []string{cache.TagDeliveries},
		resource:   "delivery",
		resourceID: id(deliveryID),
		action:     "status:" + string(status),
	})
}
