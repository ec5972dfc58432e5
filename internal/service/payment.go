package service

import (
	"context"
	"net/http"
	"time"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"github.com/mmeshcher/parcel-portal/internal/backend"
	"github.com/mmeshcher/parcel-portal/internal/cache"
	"github.com/mmeshcher/parcel-portal/internal/metrics"
	"github.com/mmeshcher/parcel-portal/internal/model"
	"github.com/mmeshcher/parcel-portal/internal/validation"
)

// PaymentRequest описывает запрос на оплату заказа или посылки.
type PaymentRequest struct {
	OrderID    *int64          `json:"orderId,omitempty"`
	DeliveryID *int64          `json:"deliveryId,omitempty"`
	Amount     decimal.Decimal `json:"amount"`
	Currency   string          `json:"currency" validate:"required,iso4217"`
}

// CreatePayment создаёт платёж и возвращает ссылку на оплату.
func (s *Service) CreatePayment(ctx context.Context, p PaymentRequest) (model.Payment, backend.Result) {
	res := s.mutate(ctx, mutation{
		req: backend.Request{
			Method: http.MethodPost,
			Path:   "v1/payments",
			Body:   p,
			Check:  p,
			Validate: validation.Rules{
				"amount": {validation.Check(p.Amount.IsPositive(), "validation.gt")},
				"target": {validation.Check((p.OrderID == nil) != (p.DeliveryID == nil), "validation.required")},
			},
		},
		tags:     []string{cache.TagOrders, cache.TagDeliveries},
		resource: "payment",
		action:   "create",
	})
	return decode[model.Payment](res)
}

// PaymentStatus запрашивает текущее состояние платежа.
func (s *Service) PaymentStatus(ctx context.Context, paymentID int64) (model.Payment, backend.Result) {
	metrics.PaymentPolls.Inc()

	res := s.backend.Do(ctx, backend.Request{
		Method: http.MethodGet,
		Path:   "v1/payments/" + id(paymentID),
		Auth:   true,
		Validate: validation.Rules{
			"id": {validation.Positive(paymentID, "validation.gt")},
		},
	})
	return decode[model.Payment](res)
}

// WaitPaid опрашивает статус платежа раз в pollInterval, пока он не станет
// терминальным (PAID или FAILED) или пока не отменён контекст. При отмене
// возвращается последнее известное состояние. Ошибка опроса до отмены
// завершает ожидание с этой ошибкой.
func (s *Service) WaitPaid(ctx context.Context, paymentID int64) (model.Payment, backend.Result) {
	p, res := s.PaymentStatus(ctx, paymentID)
	if !res.OK() || p.Status.Terminal() {
		return p, res
	}

	ticker := time.NewTicker(s.pollInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			s.logger.Debug("payment wait cancelled", zap.Int64("paymentID", paymentID))
			return p, backend.Success(nil)
		case <-ticker.C:
			next, pollRes := s.PaymentStatus(ctx, paymentID)
			if !pollRes.OK() {
				if ctx.Err() != nil {
					s.logger.Debug("payment wait cancelled during poll", zap.Int64("paymentID", paymentID))
					return p, backend.Success(nil)
				}
				return next, pollRes
			}
			p = next
			if p.Status.Terminal() {
				return p, pollRes
			}
		}
	}
}
