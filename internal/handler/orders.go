package handler

import (
	"encoding/json"
	"fmt"
	"net/http"
	"strconv"

	"github.com/mmeshcher/parcel-portal/internal/form"
	"github.com/mmeshcher/parcel-portal/internal/grid"
	"github.com/mmeshcher/parcel-portal/internal/model"
	"github.com/mmeshcher/parcel-portal/internal/validation"
)

type statusRequest struct {
	Status string `json:"status"`
}

var priceInput = form.Money{Scale: 2}

// goodInput принимает цену числом или строкой с запятой: "1 249,90".
type goodInput struct {
	model.Good
	Price json.RawMessage `json:"price"`
}

func (in goodInput) good(field string, errs validation.Errors) model.Good {
	g := in.Good
	price, err := priceInput.ParseJSON(in.Price)
	if err != nil {
		errs.Add(field, "validation.money")
	}
	g.Price = price
	return g
}

type orderInput struct {
	model.Order
	Goods []goodInput `json:"goods"`
}

func (in orderInput) order(errs validation.Errors) model.Order {
	o := in.Order
	o.Goods = make([]model.Good, 0, len(in.Goods))
	for i, g := range in.Goods {
		o.Goods = append(o.Goods, g.good(fmt.Sprintf("goods[%d].price", i), errs))
	}
	return o
}

// ListOrders возвращает таблицу заказов текущего пользователя.
func (h *Handler) ListOrders(w http.ResponseWriter, r *http.Request) {
	orders, res := h.service.ListOrders(r.Context())
	if !res.OK() {
		h.writeFailure(w, r, res)
		return
	}
	l := lang(r)
	writePage(h, w, r, h.orderViews(l, orders), orderGrid(l))
}

// GetOrder возвращает заказ по идентификатору.
func (h *Handler) GetOrder(w http.ResponseWriter, r *http.Request) {
	id, ok := h.pathID(w, r)
	if !ok {
		return
	}
	o, res := h.service.GetOrder(r.Context(), id)
	h.respond(w, r, http.StatusOK, orderView{Order: o, StatusLabel: h.bundle.Label(lang(r), o.Status)}, res)
}

// CreateOrder принимает поле order (JSON) и файлы invoices.
func (h *Handler) CreateOrder(w http.ResponseWriter, r *http.Request) {
	var in orderInput
	if !h.decodeBody(w, r, "order", &in) {
		return
	}

	errs := validation.Errors{}
	o := in.order(errs)
	if !errs.Empty() {
		h.invalidForm(w, r, form.Order, errs)
		return
	}

	created, res := h.service.CreateOrder(r.Context(), o, fileParts(r, "invoices"))
	h.respondForm(w, r, form.Order, http.StatusCreated, created, res)
}

// UpdateOrderStatus меняет статус заказа.
func (h *Handler) UpdateOrderStatus(w http.ResponseWriter, r *http.Request) {
	id, ok := h.pathID(w, r)
	if !ok {
		return
	}
	var req statusRequest
	if !h.decodeJSON(w, r, &req) {
		return
	}
	h.respond(w, r, 0, nil, h.service.UpdateOrderStatus(r.Context(), id, model.OrderStatus(req.Status)))
}

func (h *Handler) DeleteOrder(w http.ResponseWriter, r *http.Request) {
	id, ok := h.pathID(w, r)
	if !ok {
		return
	}
	h.respond(w, r, 0, nil, h.service.DeleteOrder(r.Context(), id))
}

// ListDeliveries возвращает все посылки (для администратора).
func (h *Handler) ListDeliveries(w http.ResponseWriter, r *http.Request) {
	ds, res := h.service.ListDeliveries(r.Context())
	if !res.OK() {
		h.writeFailure(w, r, res)
		return
	}
	l := lang(r)
	writePage(h, w, r, h.deliveryViews(l, ds), deliveryGrid(l, "admin/deliveries"))
}

// ListMyDeliveries возвращает посылки текущего пользователя.
func (h *Handler) ListMyDeliveries(w http.ResponseWriter, r *http.Request) {
	ds, res := h.service.ListMyDeliveries(r.Context())
	if !res.OK() {
		h.writeFailure(w, r, res)
		return
	}
	l := lang(r)
	writePage(h, w, r, h.deliveryViews(l, ds), deliveryGrid(l, "my/deliveries"))
}

func (h *Handler) GetMyDelivery(w http.ResponseWriter, r *http.Request) {
	id, ok := h.pathID(w, r)
	if !ok {
		return
	}
	d, res := h.service.GetMyDelivery(r.Context(), id)
	h.respond(w, r, http.StatusOK, deliveryView{Delivery: d, StatusLabel: h.bundle.Label(lang(r), d.Status)}, res)
}

// CreateDelivery принимает поле delivery (JSON) и необязательный файл invoice.
func (h *Handler) CreateDelivery(w http.ResponseWriter, r *http.Request) {
	var d model.Delivery
	if !h.decodeBody(w, r, "delivery", &d) {
		return
	}
	created, res := h.service.CreateDelivery(r.Context(), d, firstFilePart(r, "invoice"))
	h.respond(w, r, http.StatusCreated, created, res)
}

func (h *Handler) UpdateDeliveryStatus(w http.ResponseWriter, r *http.Request) {
	id, ok := h.pathID(w, r)
	if !ok {
		return
	}
	var req statusRequest
	if !h.decodeJSON(w, r, &req) {
		return
	}
	h.respond(w, r, 0, nil, h.service.UpdateDeliveryStatus(r.Context(), id, model.DeliveryStatus(req.Status)))
}

// ListGoods возвращает таблицу товаров.
func (h *Handler) ListGoods(w http.ResponseWriter, r *http.Request) {
	gs, res := h.service.ListGoods(r.Context())
	if !res.OK() {
		h.writeFailure(w, r, res)
		return
	}
	l := lang(r)
	writePage(h, w, r, h.goodViews(l, gs), goodGrid(l))
}

func (h *Handler) UpdateGood(w http.ResponseWriter, r *http.Request) {
	id, ok := h.pathID(w, r)
	if !ok {
		return
	}
	var in goodInput
	if !h.decodeJSON(w, r, &in) {
		return
	}

	errs := validation.Errors{}
	g := in.good("price", errs)
	if !errs.Empty() {
		h.invalid(w, r, errs)
		return
	}

	updated, res := h.service.UpdateGood(r.Context(), id, g)
	h.respond(w, r, http.StatusOK, updated, res)
}

func (h *Handler) UpdateGoodStatus(w http.ResponseWriter, r *http.Request) {
	id, ok := h.pathID(w, r)
	if !ok {
		return
	}
	var req statusRequest
	if !h.decodeJSON(w, r, &req) {
		return
	}
	h.respond(w, r, 0, nil, h.service.UpdateGoodStatus(r.Context(), id, model.GoodStatus(req.Status)))
}

type bulkStatusRequest struct {
	IDs       []string `json:"ids"`
	ToggleAll bool     `json:"toggleAll"`
	Status    string   `json:"status"`
}

// UpdateGoodsStatus меняет статус товаров, выбранных в таблице. toggleAll
// работает как флажок в заголовке таблицы: выбирает все строки текущей
// страницы (параметры страницы берутся из URL) или снимает с них выбор,
// если они уже выбраны.
func (h *Handler) UpdateGoodsStatus(w http.ResponseWriter, r *http.Request) {
	var req bulkStatusRequest
	if !h.decodeJSON(w, r, &req) {
		return
	}

	sel := grid.NewSelection(req.IDs...)
	if req.ToggleAll {
		q, errs := grid.ParseQuery(r.URL.Query())
		if !errs.Empty() {
			h.invalid(w, r, errs)
			return
		}
		gs, res := h.service.ListGoods(r.Context())
		if !res.OK() {
			h.writeFailure(w, r, res)
			return
		}
		l := lang(r)
		page := goodGrid(l).Apply(h.goodViews(l, gs), q)
		visible := make([]string, 0, len(page.Rows))
		for _, row := range page.Rows {
			visible = append(visible, strconv.FormatInt(row.Data.ID, 10))
		}
		sel.ToggleAll(visible)
	}

	ids := make([]int64, 0, len(req.IDs))
	for _, s := range sel.IDs() {
		v, err := strconv.ParseInt(s, 10, 64)
		if err != nil || v <= 0 {
			h.badRequest(w, r, "ids", "validation.gt")
			return
		}
		ids = append(ids, v)
	}

	out, res := h.service.UpdateGoodsStatus(r.Context(), ids, model.GoodStatus(req.Status))
	h.respond(w, r, http.StatusOK, out, res)
}

// ListShipments возвращает таблицу отправлений перевозчика.
func (h *Handler) ListShipments(w http.ResponseWriter, r *http.Request) {
	ss, res := h.service.ListShipments(r.Context())
	if !res.OK() {
		h.writeFailure(w, r, res)
		return
	}
	l := lang(r)
	writePage(h, w, r, h.shipmentViews(l, ss), shipmentGrid(l))
}

func (h *Handler) GetShipment(w http.ResponseWriter, r *http.Request) {
	id, ok := h.pathID(w, r)
	if !ok {
		return
	}
	s, res := h.service.GetShipment(r.Context(), id)
	h.respond(w, r, http.StatusOK, shipmentView{Shipment: s, StatusLabel: h.bundle.Label(lang(r), s.Status)}, res)
}

func (h *Handler) CreateShipment(w http.ResponseWriter, r *http.Request) {
	var s model.Shipment
	if !h.decodeJSON(w, r, &s) {
		return
	}

	fields, _ := form.Definition(form.Shipment, form.Catalog{})
	if errs := form.Conform(fields, map[string]*string{"receiverPhone": &s.ReceiverPhone}); !errs.Empty() {
		h.invalidForm(w, r, form.Shipment, errs)
		return
	}

	created, res := h.service.CreateShipment(r.Context(), s)
	h.respondForm(w, r, form.Shipment, http.StatusCreated, created, res)
}

func (h *Handler) UpdateShipmentStatus(w http.ResponseWriter, r *http.Request) {
	id, ok := h.pathID(w, r)
	if !ok {
		return
	}
	var req statusRequest
	if !h.decodeJSON(w, r, &req) {
		return
	}
	h.respond(w, r, 0, nil, h.service.UpdateShipmentStatus(r.Context(), id, model.ShipmentStatus(req.Status)))
}
