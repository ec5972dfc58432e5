package service

import (
	"context"
	"net/http"

	"github.com/mmeshcher/parcel-portal/internal/backend"
	"github.com/mmeshcher/parcel-portal/internal/cache"
	"github.com/mmeshcher/parcel-portal/internal/model"
	"github.com/mmeshcher/parcel-portal/internal/validation"
)

func (s *Service) ListShipments(ctx context.Context) ([]model.Shipment, backend.Result) {
	res := s.cachedGet(ctx, cache.TagShipments, backend.Request{
		Method: http.MethodGet,
		Path:   "v1/shipments",
		Auth:   true,
	})
	return decode[[]model.Shipment](res)
}

func (s *Service) GetShipment(ctx context.Context, shipmentID int64) (model.Shipment, backend.Result) {
	res := s.backend.Do(ctx, backend.Request{
		Method: http.MethodGet,
		Path:   "v1/shipments/" + id(shipmentID),
		Auth:   true,
		Validate: validation.Rules{
			"id": {validation.Positive(shipmentID, "validation.gt")},
		},
	})
	return decode[model.Shipment](res)
}

func (s *Service) CreateShipment(ctx context.Context, sh model.Shipment) (model.Shipment, backend.Result) {
	res := s.mutate(ctx, mutation{
		req: backend.Request{
			Method: http.MethodPost,
			Path:   "v1/shipments",
			Body:   sh,
			Check:  sh,
		},
		tags:     []string{cache.TagShipments},
		resource: "shipment",
		action:   "create",
	})
	return decode[model.Shipment](res)
}

// UpdateShipmentStatus меняет статус отправления.
func (s *Service) UpdateShipmentStatus(ctx context.Context, shipmentID int64, status model.ShipmentStatus) backend.Result {
	return s.mutate(ctx, mutation{
		req: backend.Request{
			Method: http.MethodPatch,
			Path:   "v1/shipments/" + id(shipmentID) + "/status",
			Body:   statusBody{Status: string(status)},
			Validate: validation.Rules{
				"id":     {validation.Positive(shipmentID, "validation.gt")},
				"status": {validation.Check(status.Valid(), "validation.oneof")},
			},
		},
		tags:       []string{cache.TagShipments},
		resource:   "shipment",
		resourceID: id(shipmentID),
		action:     "status:" + string(status),
	})
}
