package handler

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"

	"github.com/mmeshcher/parcel-portal/internal/i18n"
	custommiddleware "github.com/mmeshcher/parcel-portal/internal/middleware"
)

// SetupRouter настраивает HTTP-маршруты и middleware портала.
func (h *Handler) SetupRouter() http.Handler {
	r := chi.NewRouter()

	r.Use(chimiddleware.RequestID)
	r.Use(chimiddleware.RealIP)
	r.Use(custommiddleware.Logger(h.logger))
	r.Use(chimiddleware.Recoverer)
	r.Use(custommiddleware.Metrics)
	r.Use(custommiddleware.GzipMiddleware)
	r.Use(custommiddleware.Locale)

	r.Get("/healthz", h.Health)
	r.Handle("/metrics", promhttp.Handler())

	r.Route("/auth", func(r chi.Router) {
		r.Get("/login", h.Login)
		r.Get("/callback", h.Callback)
		r.Post("/logout", h.Logout)
		r.With(h.auth.Middleware).Get("/me", h.Me)
	})

	r.Route("/{lang}", func(r chi.Router) {
		r.Use(supportedLang)

		r.Route("/api", func(r chi.Router) {
			r.Group(func(r chi.Router) {
				r.Use(h.auth.Optional)

				r.Get("/marketplaces", h.ListMarketplaces)
				r.Get("/countries", h.Countries)
				r.Get("/currencies", h.Currencies)
				r.Get("/forms/{name}", h.Form)
				r.Get("/forms/{name}/options/{field}", h.FormOptions)
			})

			r.Group(func(r chi.Router) {
				r.Use(h.auth.Middleware)

				r.Get("/store", h.State)
				r.Post("/store/actions", h.Dispatch)

				r.Get("/tracking/{number}", h.Tracking)

				r.Get("/orders", h.ListOrders)
				r.Post("/orders", h.CreateOrder)
				r.Get("/orders/{id}", h.GetOrder)

				r.Get("/my/deliveries", h.ListMyDeliveries)
				r.Get("/my/deliveries/{id}", h.GetMyDelivery)

				r.Get("/recipients", h.ListRecipients)
				r.Post("/recipients", h.CreateRecipient)
				r.Get("/recipients/{id}", h.GetRecipient)

				r.Get("/addresses", h.ListAddresses)
				r.Post("/addresses", h.CreateAddress)
				r.Get("/contacts", h.ListContacts)
				r.Post("/contacts", h.CreateContact)

				r.Post("/payments", h.CreatePayment)
				r.Get("/payments/{id}", h.PaymentStatus)
				r.Get("/payments/{id}/wait", h.WaitPayment)

				r.Post("/files", h.UploadFile)
				r.Get("/files/{id}", h.DownloadFile)
			})

			r.Route("/admin", func(r chi.Router) {
				r.Use(h.auth.Middleware)
				r.Use(custommiddleware.RequireAdmin)

				r.Patch("/orders/{id}/status", h.UpdateOrderStatus)
				r.Delete("/orders/{id}", h.DeleteOrder)

				r.Get("/deliveries", h.ListDeliveries)
				r.Post("/deliveries", h.CreateDelivery)
				r.Patch("/deliveries/{id}/status", h.UpdateDeliveryStatus)

				r.Get("/shipments", h.ListShipments)
				r.Post("/shipments", h.CreateShipment)
				r.Get("/shipments/{id}", h.GetShipment)
				r.Patch("/shipments/{id}/status", h.UpdateShipmentStatus)

				r.Get("/goods", h.ListGoods)
				r.Patch("/goods/status", h.UpdateGoodsStatus)
				r.Put("/goods/{id}", h.UpdateGood)
				r.Patch("/goods/{id}/status", h.UpdateGoodStatus)

				r.Post("/recipients/{id}/approve", h.ApproveRecipient)
				r.Post("/recipients/{id}/reject", h.RejectRecipient)

				r.Post("/marketplaces", h.CreateMarketplace)
				r.Put("/marketplaces/{id}", h.UpdateMarketplace)
				r.Delete("/marketplaces/{id}", h.DeleteMarketplace)
			})
		})
	})

	r.NotFound(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, http.StatusText(http.StatusNotFound), http.StatusNotFound)
	})

	r.MethodNotAllowed(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, http.StatusText(http.StatusMethodNotAllowed), http.StatusMethodNotAllowed)
	})

	return otelhttp.NewHandler(r, "portal")
}

// supportedLang отвечает 404 для неизвестного языкового префикса.
func supportedLang(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if !i18n.IsSupported(chi.URLParam(r, "lang")) {
			http.Error(w, http.StatusText(http.StatusNotFound), http.StatusNotFound)
			return
		}
		next.ServeHTTP(w, r)
	})
}
