package handler

import (
	"fmt"
	"net/http"
	"time"

	"github.com/mmeshcher/parcel-portal/internal/grid"
	"github.com/mmeshcher/parcel-portal/internal/model"
)

// Представления сущностей для клиента: к записи добавляется подпись статуса
// на языке запроса.

type orderView struct {
	model.Order
	StatusLabel string `json:"statusLabel"`
}

type deliveryView struct {
	model.Delivery
	StatusLabel string `json:"statusLabel"`
}

type goodView struct {
	model.Good
	StatusLabel string `json:"statusLabel"`
}

type shipmentView struct {
	model.Shipment
	StatusLabel string `json:"statusLabel"`
}

type recipientView struct {
	model.Recipient
	StatusLabel string `json:"statusLabel"`
}

type marketplaceView struct {
	model.Marketplace
	DescriptionText string `json:"descriptionText"`
	CountryText     string `json:"countryText"`
}

func (h *Handler) orderViews(l string, orders []model.Order) []orderView {
	out := make([]orderView, 0, len(orders))
	for _, o := range orders {
		out = append(out, orderView{Order: o, StatusLabel: h.bundle.Label(l, o.Status)})
	}
	return out
}

func (h *Handler) deliveryViews(l string, ds []model.Delivery) []deliveryView {
	out := make([]deliveryView, 0, len(ds))
	for _, d := range ds {
		out = append(out, deliveryView{Delivery: d, StatusLabel: h.bundle.Label(l, d.Status)})
	}
	return out
}

func (h *Handler) goodViews(l string, gs []model.Good) []goodView {
	out := make([]goodView, 0, len(gs))
	for _, g := range gs {
		out = append(out, goodView{Good: g, StatusLabel: h.bundle.Label(l, g.Status)})
	}
	return out
}

func (h *Handler) shipmentViews(l string, ss []model.Shipment) []shipmentView {
	out := make([]shipmentView, 0, len(ss))
	for _, s := range ss {
		out = append(out, shipmentView{Shipment: s, StatusLabel: h.bundle.Label(l, s.Status)})
	}
	return out
}

func (h *Handler) recipientViews(l string, rs []model.Recipient) []recipientView {
	out := make([]recipientView, 0, len(rs))
	for _, r := range rs {
		out = append(out, recipientView{Recipient: r, StatusLabel: h.bundle.Label(l, r.Status)})
	}
	return out
}

func marketplaceViews(l string, ms []model.Marketplace) []marketplaceView {
	out := make([]marketplaceView, 0, len(ms))
	for _, m := range ms {
		out = append(out, marketplaceView{
			Marketplace:     m,
			DescriptionText: m.Description.Get(l),
			CountryText:     m.Country.Get(l),
		})
	}
	return out
}

func href(l, section string, id int64) string {
	return fmt.Sprintf("/%s/%s/%d", l, section, id)
}

func formatTime(t time.Time) string {
	if t.IsZero() {
		return ""
	}
	return t.Format(time.RFC3339)
}

func orderGrid(l string) grid.Grid[orderView] {
	return grid.Grid[orderView]{
		Columns: []grid.Column[orderView]{
			{ID: "id", Header: "ID", Kind: grid.KindNumber, Accessor: func(o orderView) any { return o.ID }},
			{ID: "orderNumber", Header: "forms.orderNumber", Kind: grid.KindText, Accessor: func(o orderView) any { return o.OrderNumber }},
			{ID: "status", Header: "forms.status", Kind: grid.KindText, Accessor: func(o orderView) any { return o.StatusLabel }},
			{ID: "goods", Header: "forms.goods", Kind: grid.KindNumber, Accessor: func(o orderView) any { return len(o.Goods) }},
			{ID: "createdAt", Header: "forms.createdAt", Kind: grid.KindText, Accessor: func(o orderView) any { return formatTime(o.CreatedAt) }},
		},
		Href: func(o orderView) string { return href(l, "orders", o.ID) },
	}
}

func deliveryGrid(l, section string) grid.Grid[deliveryView] {
	return grid.Grid[deliveryView]{
		Columns: []grid.Column[deliveryView]{
			{ID: "id", Header: "ID", Kind: grid.KindNumber, Accessor: func(d deliveryView) any { return d.ID }},
			{ID: "deliveryNumber", Header: "forms.deliveryNumber", Kind: grid.KindText, Accessor: func(d deliveryView) any { return d.DeliveryNumber }},
			{ID: "status", Header: "forms.status", Kind: grid.KindText, Accessor: func(d deliveryView) any { return d.StatusLabel }},
			{ID: "weight", Header: "forms.weight", Kind: grid.KindNumber, Accessor: func(d deliveryView) any { return d.Weight }},
			{ID: "price", Header: "forms.price", Kind: grid.KindNumber, Accessor: func(d deliveryView) any { return d.Price }},
			{ID: "trackingNumber", Header: "forms.trackingNumber", Kind: grid.KindText, Accessor: func(d deliveryView) any { return d.KazPostTrackingNumber }},
			{ID: "createdAt", Header: "forms.createdAt", Kind: grid.KindText, Accessor: func(d deliveryView) any { return formatTime(d.CreatedAt) }},
		},
		Href: func(d deliveryView) string { return href(l, section, d.ID) },
	}
}

func goodGrid(l string) grid.Grid[goodView] {
	return grid.Grid[goodView]{
		Columns: []grid.Column[goodView]{
			{ID: "id", Header: "ID", Kind: grid.KindNumber, Accessor: func(g goodView) any { return g.ID }},
			{ID: "name", Header: "forms.name", Kind: grid.KindText, Accessor: func(g goodView) any { return g.Name }},
			{ID: "status", Header: "forms.status", Kind: grid.KindText, Accessor: func(g goodView) any { return g.StatusLabel }},
			{ID: "price", Header: "forms.price", Kind: grid.KindNumber, Accessor: func(g goodView) any { return g.Price }},
			{ID: "country", Header: "forms.country", Kind: grid.KindText, Accessor: func(g goodView) any { return g.Country }},
			{ID: "trackingNumber", Header: "forms.trackingNumber", Kind: grid.KindText, Accessor: func(g goodView) any { return g.TrackingNumber }},
		},
		Href: func(g goodView) string { return href(l, "admin/goods", g.ID) },
	}
}

func shipmentGrid(l string) grid.Grid[shipmentView] {
	return grid.Grid[shipmentView]{
		Columns: []grid.Column[shipmentView]{
			{ID: "id", Header: "ID", Kind: grid.KindNumber, Accessor: func(s shipmentView) any { return s.ID }},
			{ID: "trackingNumber", Header: "forms.trackingNumber", Kind: grid.KindText, Accessor: func(s shipmentView) any { return s.TrackingNumber }},
			{ID: "status", Header: "forms.status", Kind: grid.KindText, Accessor: func(s shipmentView) any { return s.StatusLabel }},
			{ID: "receiverName", Header: "forms.receiverName", Kind: grid.KindText, Accessor: func(s shipmentView) any { return s.ReceiverName }},
			{ID: "weight", Header: "forms.weight", Kind: grid.KindNumber, Accessor: func(s shipmentView) any { return s.Weight }},
		},
		Href: func(s shipmentView) string { return href(l, "admin/shipments", s.ID) },
	}
}

func recipientGrid(l string) grid.Grid[recipientView] {
	return grid.Grid[recipientView]{
		Columns: []grid.Column[recipientView]{
			{ID: "id", Header: "ID", Kind: grid.KindNumber, Accessor: func(r recipientView) any { return r.ID }},
			{ID: "lastName", Header: "forms.lastName", Kind: grid.KindText, Accessor: func(r recipientView) any { return r.LastName }},
			{ID: "firstName", Header: "forms.firstName", Kind: grid.KindText, Accessor: func(r recipientView) any { return r.FirstName }},
			{ID: "iin", Header: "forms.iin", Kind: grid.KindText, Accessor: func(r recipientView) any { return r.IIN }},
			{ID: "status", Header: "forms.status", Kind: grid.KindText, Accessor: func(r recipientView) any { return r.StatusLabel }},
			{ID: "city", Header: "forms.city", Kind: grid.KindText, Accessor: func(r recipientView) any { return r.City }},
		},
		Href: func(r recipientView) string { return href(l, "recipients", r.ID) },
	}
}

func marketplaceGrid(l string) grid.Grid[marketplaceView] {
	return grid.Grid[marketplaceView]{
		Columns: []grid.Column[marketplaceView]{
			{ID: "brand", Header: "forms.brand", Kind: grid.KindText, Accessor: func(m marketplaceView) any { return m.Brand }},
			{ID: "category", Header: "forms.category", Kind: grid.KindText, Accessor: func(m marketplaceView) any { return m.Category }},
			{ID: "country", Header: "forms.country", Kind: grid.KindText, Accessor: func(m marketplaceView) any { return m.CountryText }},
		},
		Href: func(m marketplaceView) string { return href(l, "marketplaces", m.ID) },
	}
}

type columnView struct {
	ID     string    `json:"id"`
	Header string    `json:"header"`
	Kind   grid.Kind `json:"kind"`
}

type pageResponse[T any] struct {
	grid.Page[T]
	Columns []columnView `json:"columns"`
	Query   grid.Query   `json:"query"`
}

// writePage применяет к строкам параметры таблицы из запроса.
func writePage[T any](h *Handler, w http.ResponseWriter, r *http.Request, rows []T, g grid.Grid[T]) {
	q, errs := grid.ParseQuery(r.URL.Query())
	if !errs.Empty() {
		h.invalid(w, r, errs)
		return
	}

	cols := make([]columnView, 0, len(g.Columns))
	for _, c := range g.Columns {
		cols = append(cols, columnView{ID: c.ID, Header: h.bundle.T(lang(r), c.Header), Kind: c.Kind})
	}

	writeJSON(w, http.StatusOK, pageResponse[T]{Page: g.Apply(rows, q), Columns: cols, Query: q})
}
