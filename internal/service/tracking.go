package service

import (
	"context"
	"net/http"
	"net/url"
	"strings"

	"github.com/mmeshcher/parcel-portal/internal/backend"
	"github.com/mmeshcher/parcel-portal/internal/model"
	"github.com/mmeshcher/parcel-portal/internal/tracking"
	"github.com/mmeshcher/parcel-portal/internal/validation"
)

// Timeline запрашивает историю отслеживания у провайдера и оставляет
// только события, значимые для покупателя.
func (s *Service) Timeline(ctx context.Context, number string) ([]tracking.Entry, backend.Result) {
	number = strings.TrimSpace(number)

	res := s.backend.Do(ctx, backend.Request{
		Method: http.MethodGet,
		Path:   "v1/spedx-service/tracking/" + url.PathEscape(number),
		Auth:   true,
		Validate: validation.Rules{
			"trackingNumber": {
				validation.Required(number, "validation.required"),
				validation.MaxLen(number, 64, "validation.max"),
			},
		},
	})

	ev, res := decode[model.TrackingEvent](res)
	if !res.OK() {
		return nil, res
	}
	return tracking.Timeline(ev.Activities), res
}
