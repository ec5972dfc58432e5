// Package model содержит доменные сущности портала доставки.
package model

import (
	"time"

	"github.com/shopspring/decimal"
)

// Good описывает товар, задекларированный покупателем в заказе.
type Good struct {
	ID             int64           `json:"id"`
	Name           string          `json:"name" validate:"required,max=255"`
	Description    string          `json:"description,omitempty" validate:"max=2000"`
	Link           string          `json:"link" validate:"required,url"`
	TrackingNumber string          `json:"trackingNumber,omitempty"`
	Country        string          `json:"country" validate:"required,iso3166_1_alpha2"`
	Currency       string          `json:"currency" validate:"required,iso4217"`
	Price          decimal.Decimal `json:"price"`
	Status         GoodStatus      `json:"status,omitempty"`
	DeliveryID     *int64          `json:"deliveryId,omitempty"`
}

// Order описывает заказ покупателя.
type Order struct {
	ID          int64       `json:"id"`
	RecipientID int64       `json:"recipientId" validate:"required,gt=0"`
	Goods       []Good      `json:"goods" validate:"required,min=1,dive"`
	OrderNumber string      `json:"orderNumber,omitempty"`
	Status      OrderStatus `json:"status,omitempty"`
	InvoiceIDs  []int64     `json:"invoiceIds,omitempty"`
	CreatedAt   time.Time   `json:"createdAt,omitempty"`
}

// Delivery описывает посылку, объединяющую товары одного получателя.
type Delivery struct {
	ID                    int64           `json:"id"`
	DeliveryNumber        string          `json:"deliveryNumber,omitempty"`
	RecipientID           int64           `json:"recipientId" validate:"required,gt=0"`
	Goods                 []Good          `json:"goods,omitempty"`
	GoodIDs               []int64         `json:"goodIds,omitempty" validate:"required,min=1"`
	Weight                decimal.Decimal `json:"weight"`
	Price                 decimal.Decimal `json:"price"`
	Currency              string          `json:"currency" validate:"required,iso4217"`
	KazPostTrackingNumber string          `json:"kazPostTrackingNumber,omitempty"`
	InvoiceFileID         *int64          `json:"invoiceFileId,omitempty"`
	Status                DeliveryStatus  `json:"status,omitempty"`
	CreatedAt             time.Time       `json:"createdAt,omitempty"`
}

// Shipment описывает запись перевозчика.
type Shipment struct {
	ID             int64           `json:"id"`
	TrackingNumber string          `json:"trackingNumber,omitempty"`
	SenderName     string          `json:"senderName" validate:"required"`
	SenderPhone    string          `json:"senderPhone" validate:"required,e164"`
	SenderAddress  string          `json:"senderAddress" validate:"required"`
	ReceiverName   string          `json:"receiverName" validate:"required"`
	ReceiverPhone  string          `json:"receiverPhone" validate:"required,e164"`
	ReceiverAddr   string          `json:"receiverAddress" validate:"required"`
	Weight         decimal.Decimal `json:"weight"`
	Status         ShipmentStatus  `json:"status,omitempty"`
	Service        string          `json:"service,omitempty"`
	LabelNumber    string          `json:"labelNumber,omitempty"`
	PickupDate     *time.Time      `json:"pickupDate,omitempty"`
}

// Recipient описывает получателя, прошедшего (или проходящего) проверку документов.
type Recipient struct {
	ID              int64           `json:"id"`
	FirstName       string          `json:"firstName" validate:"required"`
	LastName        string          `json:"lastName" validate:"required"`
	IIN             string          `json:"iin" validate:"required,len=12,numeric"`
	Phone           string          `json:"phone" validate:"required,e164"`
	DocumentFrontID int64           `json:"documentFrontId" validate:"required,gt=0"`
	DocumentBackID  int64           `json:"documentBackId" validate:"required,gt=0"`
	Country         string          `json:"country" validate:"required"`
	City            string          `json:"city" validate:"required"`
	Street          string          `json:"street" validate:"required"`
	Postcode        string          `json:"postcode" validate:"required"`
	Status          RecipientStatus `json:"status,omitempty"`
	Comment         string          `json:"comment,omitempty"`
}

// Localized хранит строку на каждом поддерживаемом языке.
type Localized struct {
	RU string `json:"ru"`
	EN string `json:"en"`
	ZH string `json:"zh"`
}

// Get возвращает строку для языка, с откатом на русский.
func (l Localized) Get(lang string) string {
	switch lang {
	case "en":
		if l.EN != "" {
			return l.EN
		}
	case "zh":
		if l.ZH != "" {
			return l.ZH
		}
	}
	return l.RU
}

// Marketplace описывает запись каталога магазинов.
type Marketplace struct {
	ID          int64     `json:"id"`
	Brand       string    `json:"brand" validate:"required"`
	Category    string    `json:"category" validate:"required"`
	Description Localized `json:"description"`
	Country     Localized `json:"country"`
	Link        string    `json:"link" validate:"required,url"`
	PhotoID     *int64    `json:"photoId,omitempty"`
}

// Address описывает адрес из адресной книги пользователя.
type Address struct {
	ID       int64  `json:"id"`
	Country  string `json:"country" validate:"required"`
	City     string `json:"city" validate:"required"`
	Street   string `json:"street" validate:"required"`
	Postcode string `json:"postcode" validate:"required"`
}

// Contact описывает контакт пользователя.
type Contact struct {
	ID    int64  `json:"id"`
	Name  string `json:"name" validate:"required"`
	Phone string `json:"phone" validate:"required,e164"`
	Email string `json:"email,omitempty" validate:"omitempty,email"`
}

type File struct {
	ID          int64  `json:"id"`
	Name        string `json:"name"`
	ContentType string `json:"contentType,omitempty"`
	Size        int64  `json:"size,omitempty"`
}

// Payment описывает платёж по заказу или посылке.
type Payment struct {
	ID         int64           `json:"id"`
	OrderID    *int64          `json:"orderId,omitempty"`
	DeliveryID *int64          `json:"deliveryId,omitempty"`
	Amount     decimal.Decimal `json:"amount"`
	Currency   string          `json:"currency"`
	Status     PaymentStatus   `json:"status"`
	PaymentURL string          `json:"paymentUrl,omitempty"`
}

// Country и Currency составляют справочные данные.
type Country struct {
	Code string    `json:"code"`
	Name Localized `json:"name"`
}

type Currency struct {
	Code   string `json:"code"`
	Symbol string `json:"symbol"`
}

// TrackingActivity описывает одно датированное событие перевозчика.
type TrackingActivity struct {
	Date   time.Time `json:"date"`
	City   string    `json:"city"`
	Name   string    `json:"name"`
	Status []string  `json:"status"`
}

// TrackingEvent содержит историю отслеживания по трек-номеру.
type TrackingEvent struct {
	TrackingNumber string             `json:"trackingNumber,omitempty"`
	Activities     []TrackingActivity `json:"activities"`
}
