package service

import (
	"context"
	"net/http"

	"github.com/mmeshcher/parcel-portal/internal/backend"
	"github.com/mmeshcher/parcel-portal/internal/cache"
	"github.com/mmeshcher/parcel-portal/internal/model"
)

func (s *Service) ListAddresses(ctx context.Context) ([]model.Address, backend.Result) {
	res := s.cachedGet(ctx, cache.TagAddresses, backend.Request{
		Method: http.MethodGet,
		Path:   "v1/addresses",
		Auth:   true,
	})
	return decode[[]model.Address](res)
}

func (s *Service) CreateAddress(ctx context.Context, a model.Address) (model.Address, backend.Result) {
	res := s.mutate(ctx, mutation{
		req: backend.Request{
			Method: http.MethodPost,
			Path:   "v1/addresses",
			Body:   a,
			Check:  a,
		},
		tags:     []string{cache.TagAddresses},
		resource: "address",
		action:   "create",
	})
	return decode[model.Address](res)
}

func (s *Service) ListContacts(ctx context.Context) ([]model.Contact, backend.Result) {
	res := s.cachedGet(ctx, cache.TagContacts, backend.Request{
		Method: http.MethodGet,
		Path:   "v1/contacts",
		Auth:   true,
	})
	return decode[[]model.Contact](res)
}

func (s *Service) CreateContact(ctx context.Context, c model.Contact) (model.Contact, backend.Result) {
	res := s.mutate(ctx, mutation{
		req: backend.Request{
			Method: http.MethodPost,
			Path:   "v1/contacts",
			Body:   c,
			Check:  c,
		},
		tags:     []string{cache.TagContacts},
		resource: "contact",
		action:   "create",
	})
	return decode[model.Contact](res)
}

// Countries и Currencies читают справочники, общие для всех пользователей.
func (s *Service) Countries(ctx context.Context) ([]model.Country, backend.Result) {
	res := s.cachedGet(ctx, cache.TagCountries, backend.Request{
		Method: http.MethodGet,
		Path:   "v1/countries",
	})
	return decode[[]model.Country](res)
}

func (s *Service) Currencies(ctx context.Context) ([]model.Currency, backend.Result) {
	res := s.cachedGet(ctx, cache.TagCurrencies, backend.Request{
		Method: http.MethodGet,
		Path:   "v1/currencies",
	})
	return decode[[]model.Currency](res)
}
