package mockapi

import (
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"strings"
	"sync"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"github.com/mmeshcher/parcel-portal/internal/middleware"
	"github.com/mmeshcher/parcel-portal/internal/model"
)

// paidAfterPolls задаёт число запросов статуса, после которых платёж оплачен.
const paidAfterPolls = 2

// collection хранит потокобезопасную таблицу сущностей с автоинкрементом.
type collection[T any] struct {
	mu    sync.Mutex
	items []T
	next  int64
	id    func(T) int64
	setID func(*T, int64)
}

func newCollection[T any](id func(T) int64, setID func(*T, int64)) *collection[T] {
	return &collection[T]{id: id, setID: setID, next: 1}
}

func (c *collection[T]) list() []T {
	c.mu.Lock()
	defer c.mu.Unlock()
	out := make([]T, len(c.items))
	copy(out, c.items)
	return out
}

func (c *collection[T]) get(id int64) (T, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	for _, v := range c.items {
		if c.id(v) == id {
			return v, true
		}
	}
	var zero T
	return zero, false
}

func (c *collection[T]) add(v T) T {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.setID(&v, c.next)
	c.next++
	c.items = append(c.items, v)
	return v
}

func (c *collection[T]) update(id int64, fn func(*T)) (T, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	for i := range c.items {
		if c.id(c.items[i]) == id {
			fn(&c.items[i])
			return c.items[i], true
		}
	}
	var zero T
	return zero, false
}

func (c *collection[T]) remove(id int64) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	for i, v := range c.items {
		if c.id(v) == id {
			c.items = append(c.items[:i], c.items[i+1:]...)
			return true
		}
	}
	return false
}

type storedFile struct {
	meta model.File
	data []byte
}

// Server хранит данные заглушки в памяти.
type Server struct {
	genMu sync.Mutex
	gen   *Generator

	orders       *collection[model.Order]
	goods        *collection[model.Good]
	deliveries   *collection[model.Delivery]
	shipments    *collection[model.Shipment]
	recipients   *collection[model.Recipient]
	marketplaces *collection[model.Marketplace]
	addresses    *collection[model.Address]
	contacts     *collection[model.Contact]
	payments     *collection[model.Payment]

	mu     sync.Mutex
	files  map[int64]storedFile
	nextID int64
	polls  map[int64]int

	logger *zap.Logger
}

// NewServer создаёт заглушку, заполненную данными из генератора с seed.
func NewServer(seed int64, logger *zap.Logger) *Server {
	if logger == nil {
		logger = zap.NewNop()
	}

	s := &Server{
		gen: NewGenerator(seed),
		orders: newCollection(func(v model.Order) int64 { return v.ID },
			func(v *model.Order, id int64) { v.ID = id }),
		goods: newCollection(func(v model.Good) int64 { return v.ID },
			func(v *model.Good, id int64) { v.ID = id }),
		deliveries: newCollection(func(v model.Delivery) int64 { return v.ID },
			func(v *model.Delivery, id int64) { v.ID = id }),
		shipments: newCollection(func(v model.Shipment) int64 { return v.ID },
			func(v *model.Shipment, id int64) { v.ID = id }),
		recipients: newCollection(func(v model.Recipient) int64 { return v.ID },
			func(v *model.Recipient, id int64) { v.ID = id }),
		marketplaces: newCollection(func(v model.Marketplace) int64 { return v.ID },
			func(v *model.Marketplace, id int64) { v.ID = id }),
		addresses: newCollection(func(v model.Address) int64 { return v.ID },
			func(v *model.Address, id int64) { v.ID = id }),
		contacts: newCollection(func(v model.Contact) int64 { return v.ID },
			func(v *model.Contact, id int64) { v.ID = id }),
		payments: newCollection(func(v model.Payment) int64 { return v.ID },
			func(v *model.Payment, id int64) { v.ID = id }),
		files:  make(map[int64]storedFile),
		nextID: 1,
		polls:  make(map[int64]int),
		logger: logger,
	}
	s.seed()
	return s
}

func (s *Server) seed() {
	s.genMu.Lock()
	defer s.genMu.Unlock()

	for i := int64(1); i <= 3; i++ {
		s.recipients.add(s.gen.Recipient(i))
	}
	for i := int64(1); i <= 5; i++ {
		g1 := s.goods.add(s.gen.Good(0))
		g2 := s.goods.add(s.gen.Good(0))
		s.orders.add(s.gen.Order(0, (i-1)%3+1, []model.Good{g1, g2}))
	}
	for i := int64(1); i <= 2; i++ {
		g, _ := s.goods.get(i)
		s.deliveries.add(s.gen.Delivery(0, 1, []model.Good{g}))
	}
	for i := int64(1); i <= 3; i++ {
		s.shipments.add(s.gen.Shipment(0))
	}
	for i := int64(1); i <= 4; i++ {
		s.marketplaces.add(s.gen.Marketplace(0))
	}
}

// Router возвращает обработчик с маршрутами /v1/*.
func (s *Server) Router() http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.Logger(s.logger))

	r.Route("/v1", func(r chi.Router) {
		r.Get("/countries", s.countries)
		r.Get("/currencies", s.currencies)
		r.Get("/marketplaces", list(s.marketplaces))

		r.Group(func(r chi.Router) {
			r.Use(requireBearer)

			r.Get("/orders", list(s.orders))
			r.Post("/orders", create(s.orders, func(o *model.Order) { o.Status = model.OrderStatusCreated }))
			r.Get("/orders/{id}", get(s.orders))
			r.Patch("/orders/{id}/status", setStatus(s.orders, func(o *model.Order, st string) { o.Status = model.OrderStatus(st) }))

			r.Get("/goods", list(s.goods))
			r.Put("/goods/{id}", replace(s.goods))
			r.Patch("/goods/{id}/status", setStatus(s.goods, func(g *model.Good, st string) { g.Status = model.GoodStatus(st) }))

			r.Get("/deliveries", list(s.deliveries))
			r.Post("/deliveries", create(s.deliveries, func(d *model.Delivery) { d.Status = model.DeliveryStatusCreated }))
			r.Patch("/deliveries/{id}/status", setStatus(s.deliveries, func(d *model.Delivery, st string) { d.Status = model.DeliveryStatus(st) }))
			r.Get("/my/deliveries", list(s.deliveries))
			r.Get("/my/deliveries/{id}", get(s.deliveries))

			r.Get("/shipments", list(s.shipments))
			r.Post("/shipments", create(s.shipments, func(sh *model.Shipment) { sh.Status = model.ShipmentStatusCreated }))
			r.Get("/shipments/{id}", get(s.shipments))
			r.Patch("/shipments/{id}/status", setStatus(s.shipments, func(sh *model.Shipment, st string) { sh.Status = model.ShipmentStatus(st) }))

			r.Get("/recipients", list(s.recipients))
			r.Post("/recipients", create(s.recipients, func(rc *model.Recipient) { rc.Status = model.RecipientStatusPending }))
			r.Get("/recipients/{id}", get(s.recipients))
			r.Post("/recipients/{id}/approve", s.approveRecipient)
			r.Post("/recipients/{id}/reject", s.rejectRecipient)

			r.Post("/marketplaces", create(s.marketplaces, func(*model.Marketplace) {}))
			r.Put("/marketplaces/{id}", replace(s.marketplaces))
			r.Delete("/marketplaces/{id}", remove(s.marketplaces))

			r.Get("/addresses", list(s.addresses))
			r.Post("/addresses", create(s.addresses, func(*model.Address) {}))
			r.Get("/contacts", list(s.contacts))
			r.Post("/contacts", create(s.contacts, func(*model.Contact) {}))

			r.Post("/payments", create(s.payments, func(p *model.Payment) {
				p.Status = model.PaymentStatusPending
			}))
			r.Get("/payments/{id}", s.paymentStatus)

			r.Post("/files", s.uploadFile)
			r.Get("/files/{id}/download", s.downloadFile)

			r.Get("/spedx-service/tracking/{number}", s.tracking)
		})
	})

	return r
}

func requireBearer(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if !strings.HasPrefix(r.Header.Get("Authorization"), "Bearer ") {
			http.Error(w, http.StatusText(http.StatusUnauthorized), http.StatusUnauthorized)
			return
		}
		next.ServeHTTP(w, r)
	})
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func pathID(r *http.Request) (int64, bool) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	return id, err == nil && id > 0
}

func list[T any](c *collection[T]) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, c.list())
	}
}

func get[T any](c *collection[T]) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, ok := pathID(r)
		if !ok {
			http.Error(w, http.StatusText(http.StatusBadRequest), http.StatusBadRequest)
			return
		}
		v, ok := c.get(id)
		if !ok {
			http.Error(w, http.StatusText(http.StatusNotFound), http.StatusNotFound)
			return
		}
		writeJSON(w, http.StatusOK, v)
	}
}

func create[T any](c *collection[T], init func(*T)) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var v T
		if err := json.NewDecoder(r.Body).Decode(&v); err != nil {
			http.Error(w, http.StatusText(http.StatusBadRequest), http.StatusBadRequest)
			return
		}
		init(&v)
		writeJSON(w, http.StatusCreated, c.add(v))
	}
}

func replace[T any](c *collection[T]) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, ok := pathID(r)
		if !ok {
			http.Error(w, http.StatusText(http.StatusBadRequest), http.StatusBadRequest)
			return
		}
		var v T
		if err := json.NewDecoder(r.Body).Decode(&v); err != nil {
			http.Error(w, http.StatusText(http.StatusBadRequest), http.StatusBadRequest)
			return
		}
		updated, ok := c.update(id, func(cur *T) {
			c.setID(&v, id)
			*cur = v
		})
		if !ok {
			http.Error(w, http.StatusText(http.StatusNotFound), http.StatusNotFound)
			return
		}
		writeJSON(w, http.StatusOK, updated)
	}
}

func remove[T any](c *collection[T]) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, ok := pathID(r)
		if !ok || !c.remove(id) {
			http.Error(w, http.StatusText(http.StatusNotFound), http.StatusNotFound)
			return
		}
		w.WriteHeader(http.StatusNoContent)
	}
}

func setStatus[T any](c *collection[T], set func(*T, string)) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, ok := pathID(r)
		if !ok {
			http.Error(w, http.StatusText(http.StatusBadRequest), http.StatusBadRequest)
			return
		}
		var body struct {
			Status string `json:"status"`
		}
		if err := json.NewDecoder(r.Body).Decode(&body); err != nil || body.Status == "" {
			http.Error(w, http.StatusText(http.StatusBadRequest), http.StatusBadRequest)
			return
		}
		if _, ok := c.update(id, func(v *T) { set(v, body.Status) }); !ok {
			http.Error(w, http.StatusText(http.StatusNotFound), http.StatusNotFound)
			return
		}
		w.WriteHeader(http.StatusNoContent)
	}
}

func (s *Server) countries(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, []model.Country{
		{Code: "KZ", Name: model.Localized{RU: "Казахстан", EN: "Kazakhstan", ZH: "哈萨克斯坦"}},
		{Code: "CN", Name: model.Localized{RU: "Китай", EN: "China", ZH: "中国"}},
		{Code: "US", Name: model.Localized{RU: "США", EN: "United States", ZH: "美国"}},
		{Code: "TR", Name: model.Localized{RU: "Турция", EN: "Turkey", ZH: "土耳其"}},
		{Code: "KR", Name: model.Localized{RU: "Корея", EN: "Korea", ZH: "韩国"}},
	})
}

func (s *Server) currencies(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, []model.Currency{
		{Code: "KZT", Symbol: "₸"},
		{Code: "CNY", Symbol: "¥"},
		{Code: "USD", Symbol: "$"},
		{Code: "TRY", Symbol: "₺"},
		{Code: "KRW", Symbol: "₩"},
	})
}

func (s *Server) approveRecipient(w http.ResponseWriter, r *http.Request) {
	id, _ := pathID(r)
	if _, ok := s.recipients.update(id, func(rc *model.Recipient) {
		rc.Status = model.RecipientStatusActive
		rc.Comment = ""
	}); !ok {
		http.Error(w, http.StatusText(http.StatusNotFound), http.StatusNotFound)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) rejectRecipient(w http.ResponseWriter, r *http.Request) {
	id, _ := pathID(r)
	var body struct {
		Comment string `json:"comment"`
	}
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		http.Error(w, http.StatusText(http.StatusBadRequest), http.StatusBadRequest)
		return
	}
	if _, ok := s.recipients.update(id, func(rc *model.Recipient) {
		rc.Status = model.RecipientStatusInactive
		rc.Comment = body.Comment
	}); !ok {
		http.Error(w, http.StatusText(http.StatusNotFound), http.StatusNotFound)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// paymentStatus переводит платёж в PAID после paidAfterPolls запросов.
func (s *Server) paymentStatus(w http.ResponseWriter, r *http.Request) {
	id, _ := pathID(r)

	s.mu.Lock()
	s.polls[id]++
	polls := s.polls[id]
	s.mu.Unlock()

	p, ok := s.payments.update(id, func(p *model.Payment) {
		if p.Status == model.PaymentStatusPending && polls >= paidAfterPolls {
			p.Status = model.PaymentStatusPaid
		}
	})
	if !ok {
		http.Error(w, http.StatusText(http.StatusNotFound), http.StatusNotFound)
		return
	}
	writeJSON(w, http.StatusOK, p)
}

func (s *Server) uploadFile(w http.ResponseWriter, r *http.Request) {
	f, fh, err := r.FormFile("file")
	if err != nil {
		http.Error(w, http.StatusText(http.StatusBadRequest), http.StatusBadRequest)
		return
	}
	defer f.Close()

	data, err := io.ReadAll(f)
	if err != nil {
		http.Error(w, http.StatusText(http.StatusBadRequest), http.StatusBadRequest)
		return
	}

	s.mu.Lock()
	meta := model.File{
		ID:          s.nextID,
		Name:        fh.Filename,
		ContentType: fh.Header.Get("Content-Type"),
		Size:        int64(len(data)),
	}
	s.files[meta.ID] = storedFile{meta: meta, data: data}
	s.nextID++
	s.mu.Unlock()

	writeJSON(w, http.StatusCreated, meta)
}

func (s *Server) downloadFile(w http.ResponseWriter, r *http.Request) {
	id, _ := pathID(r)

	s.mu.Lock()
	f, ok := s.files[id]
	s.mu.Unlock()
	if !ok {
		http.Error(w, http.StatusText(http.StatusNotFound), http.StatusNotFound)
		return
	}

	ct := f.meta.ContentType
	if ct == "" {
		ct = "application/octet-stream"
	}
	w.Header().Set("Content-Type", ct)
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", f.meta.Name))
	_, _ = w.Write(f.data)
}

func (s *Server) tracking(w http.ResponseWriter, r *http.Request) {
	s.genMu.Lock()
	ev := s.gen.Tracking(chi.URLParam(r, "number"))
	s.genMu.Unlock()
	writeJSON(w, http.StatusOK, ev)
}
