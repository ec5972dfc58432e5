package i18n

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mmeshcher/parcel-portal/internal/model"
	"github.com/mmeshcher/parcel-portal/internal/validation"
)

func loadBundle(t *testing.T) *Bundle {
	t.Helper()
	b, err := Load()
	require.NoError(t, err)
	return b
}

func TestLabel_KnownStatuses(t *testing.T) {
	b := loadBundle(t)

	assert.Equal(t, "In the way", b.Label("en", model.OrderStatusInTheWay))
	assert.Equal(t, "В почтовом отделении", b.Label("ru", model.DeliveryStatusInMailOffice))
	assert.Equal(t, "Waiting for payment", b.Label("en", model.GoodStatusWaitingForPayment))
	assert.Equal(t, "In transit", b.Label("en", model.ShipmentStatusInTransit))
	assert.Equal(t, "审核中", b.Label("zh", model.RecipientStatusPending))
}

func TestLabel_UnknownStatusFallsBack(t *testing.T) {
	b := loadBundle(t)

	assert.NotPanics(t, func() {
		assert.Equal(t, "Unknown", b.Label("en", model.DeliveryStatus("LOST_AT_SEA")))
		assert.Equal(t, "Неизвестно", b.Label("ru", model.OrderStatus("")))
	})
}

func TestLabel_EveryStatusTranslated(t *testing.T) {
	b := loadBundle(t)

	statuses := []model.Labeled{
		model.OrderStatusCreated, model.OrderStatusInTheWay, model.OrderStatusInYourCountry,
		model.OrderStatusInMailOffice, model.OrderStatusDelivered, model.OrderStatusDeleted,
		model.DeliveryStatusCreated, model.DeliveryStatusInTheWay, model.DeliveryStatusInYourCountry,
		model.DeliveryStatusInMailOffice, model.DeliveryStatusDelivered, model.DeliveryStatusDeleted,
		model.GoodStatusCreated, model.GoodStatusWaitingForDelivery, model.GoodStatusWaitingForPayment,
		model.GoodStatusPayed, model.GoodStatusDelivered, model.GoodStatusCanceled,
		model.GoodStatusReturned, model.GoodStatusDeleted,
		model.ShipmentStatusCreated, model.ShipmentStatusInTransit,
		model.ShipmentStatusDelivered, model.ShipmentStatusCancelled,
		model.RecipientStatusPending, model.RecipientStatusActive, model.RecipientStatusInactive,
		model.PaymentStatusPending, model.PaymentStatusPaid, model.PaymentStatusFailed,
	}

	for _, lang := range Supported {
		for _, s := range statuses {
			_, ok := b.Lookup(lang, s.LabelKey())
			assert.True(t, ok, "missing %s in %s", s.LabelKey(), lang)
		}
	}
}

func TestErrors_TranslatesKeysOnly(t *testing.T) {
	b := loadBundle(t)

	out := b.Errors("en", validation.Errors{
		"name":                    {"validation.required"},
		validation.ServerErrorKey: {"500"},
	})

	assert.Equal(t, []string{"This field is required"}, out["name"])
	assert.Equal(t, []string{"500"}, out[validation.ServerErrorKey])
}

func TestResolve(t *testing.T) {
	tests := []struct {
		name   string
		path   string
		cookie string
		accept string
		want   string
	}{
		{name: "path segment wins", path: "/en/api/orders", cookie: "zh", accept: "ru", want: "en"},
		{name: "cookie", path: "/auth/login", cookie: "zh", want: "zh"},
		{name: "unsupported cookie ignored", path: "/healthz", cookie: "de", accept: "en-US,en;q=0.9", want: "en"},
		{name: "accept language chinese", path: "/", accept: "zh-CN", want: "zh"},
		{name: "default", path: "/", accept: "de-DE", want: "ru"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := httptest.NewRequest(http.MethodGet, tt.path, nil)
			if tt.cookie != "" {
				r.AddCookie(&http.Cookie{Name: CookieName, Value: tt.cookie})
			}
			if tt.accept != "" {
				r.Header.Set("Accept-Language", tt.accept)
			}
			assert.Equal(t, tt.want, Resolve(r))
		})
	}
}
