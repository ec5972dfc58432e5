package service

import (
	"context"
	"net/http"

	"github.com/mmeshcher/parcel-portal/internal/backend"
	"github.com/mmeshcher/parcel-portal/internal/cache"
	"github.com/mmeshcher/parcel-portal/internal/model"
	"github.com/mmeshcher/parcel-portal/internal/validation"
)

// ListMarketplaces возвращает каталог магазинов; каталог публичный.
func (s *Service) ListMarketplaces(ctx context.Context) ([]model.Marketplace, backend.Result) {
	res := s.cachedGet(ctx, cache.TagMarketplaces, backend.Request{
		Method: http.MethodGet,
		Path:   "v1/marketplaces",
	})
	return decode[[]model.Marketplace](res)
}

func marketplaceRules(m model.Marketplace) validation.Rules {
	return validation.Rules{
		"description.ru": {validation.Required(m.Description.RU, "validation.required")},
		"country.ru":     {validation.Required(m.Country.RU, "validation.required")},
	}
}

// CreateMarketplace добавляет магазин, при необходимости загружая фото.
func (s *Service) CreateMarketplace(ctx context.Context, m model.Marketplace, photo *backend.FilePart) (model.Marketplace, backend.Result) {
	errs := validation.Struct(m)
	errs.Merge(marketplaceRules(m).Run())
	if !errs.Empty() {
		return model.Marketplace{}, backend.Failure(errs)
	}

	if photo != nil {
		file, res := s.UploadFile(ctx, *photo)
		if !res.OK() {
			return model.Marketplace{}, res
		}
		m.PhotoID = &file.ID
	}

	res := s.mutate(ctx, mutation{
		req: backend.Request{
			Method: http.MethodPost,
			Path:   "v1/marketplaces",
			Body:   m,
		},
		tags:     []string{cache.TagMarketplaces},
		resource: "marketplace",
		action:   "create",
	})
	return decode[model.Marketplace](res)
}

func (s *Service) UpdateMarketplace(ctx context.Context, marketplaceID int64, m model.Marketplace) (model.Marketplace, backend.Result) {
	rules := marketplaceRules(m)
	rules["id"] = []validation.Rule{validation.Positive(marketplaceID, "validation.gt")}

	res := s.mutate(ctx, mutation{
		req: backend.Request{
			Method:   http.MethodPut,
			Path:     "v1/marketplaces/" + id(marketplaceID),
			Body:     m,
			Check:    m,
			Validate: rules,
		},
		tags:       []string{cache.TagMarketplaces},
		resource:   "marketplace",
		resourceID: id(marketplaceID),
		action:     "update",
	})
	return decode[model.Marketplace](res)
}

func (s *Service) DeleteMarketplace(ctx context.Context, marketplaceID int64) backend.Result {
	return s.mutate(ctx, mutation{
		req: backend.Request{
			Method: http.MethodDelete,
			Path:   "v1/marketplaces/" + id(marketplaceID),
			Validate: validation.Rules{
				"id": {validation.Positive(marketplaceID, "validation.gt")},
			},
		},
		tags:       []string{cache.TagMarketplaces},
		resource:   "marketplace",
		resourceID: id(marketplaceID),
		action:     "delete",
	})
}
