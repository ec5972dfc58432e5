package model

// StatusUnknownKey используется для кодов, отсутствующих в перечислениях.
const StatusUnknownKey = "status.unknown"

// OrderStatus описывает статус заказа.
type OrderStatus string

const (
	OrderStatusCreated       OrderStatus = "CREATED"
	OrderStatusInTheWay      OrderStatus = "IN_THE_WAY"
	OrderStatusInYourCountry OrderStatus = "IN_YOUR_COUNTRY"
	OrderStatusInMailOffice  OrderStatus = "IN_MAIL_OFFICE"
	OrderStatusDelivered     OrderStatus = "DELIVERED"
	OrderStatusDeleted       OrderStatus = "DELETED"
)

// LabelKey возвращает ключ перевода для статуса заказа.
func (s OrderStatus) LabelKey() string {
	switch s {
	case OrderStatusCreated:
		return "status.order.created"
	case OrderStatusInTheWay:
		return "status.order.in_the_way"
	case OrderStatusInYourCountry:
		return "status.order.in_your_country"
	case OrderStatusInMailOffice:
		return "status.order.in_mail_office"
	case OrderStatusDelivered:
		return "status.order.delivered"
	case OrderStatusDeleted:
		return "status.order.deleted"
	}
	return StatusUnknownKey
}

// Valid сообщает, входит ли статус в известный набор.
func (s OrderStatus) Valid() bool { return s.LabelKey() != StatusUnknownKey }

// DeliveryStatus описывает статус посылки. Набор совпадает со статусами заказа.
type DeliveryStatus string

const (
	DeliveryStatusCreated       DeliveryStatus = "CREATED"
	DeliveryStatusInTheWay      DeliveryStatus = "IN_THE_WAY"
	DeliveryStatusInYourCountry DeliveryStatus = "IN_YOUR_COUNTRY"
	DeliveryStatusInMailOffice  DeliveryStatus = "IN_MAIL_OFFICE"
	DeliveryStatusDelivered     DeliveryStatus = "DELIVERED"
	DeliveryStatusDeleted       DeliveryStatus = "DELETED"
)

func (s DeliveryStatus) LabelKey() string {
	switch s {
	case DeliveryStatusCreated:
		return "status.delivery.created"
	case DeliveryStatusInTheWay:
		return "status.delivery.in_the_way"
	case DeliveryStatusInYourCountry:
		return "status.delivery.in_your_country"
	case DeliveryStatusInMailOffice:
		return "status.delivery.in_mail_office"
	case DeliveryStatusDelivered:
		return "status.delivery.delivered"
	case DeliveryStatusDeleted:
		return "status.delivery.deleted"
	}
	return StatusUnknownKey
}

func (s DeliveryStatus) Valid() bool { return s.LabelKey() != StatusUnknownKey }

// GoodStatus описывает статус товара.
type GoodStatus string

const (
	GoodStatusCreated            GoodStatus = "CREATED"
	GoodStatusWaitingForDelivery GoodStatus = "WAITING_FOR_DELIVERY"
	GoodStatusWaitingForPayment  GoodStatus = "WAITING_FOR_PAYMENT"
	GoodStatusPayed              GoodStatus = "PAYED"
	GoodStatusDelivered          GoodStatus = "DELIVERED"
	GoodStatusCanceled           GoodStatus = "CANCELED"
	GoodStatusReturned           GoodStatus = "RETURNED"
	GoodStatusDeleted            GoodStatus = "DELETED"
)

func (s GoodStatus) LabelKey() string {
	switch s {
	case GoodStatusCreated:
		return "status.good.created"
	case GoodStatusWaitingForDelivery:
		return "status.good.waiting_for_delivery"
	case GoodStatusWaitingForPayment:
		return "status.good.waiting_for_payment"
	case GoodStatusPayed:
		return "status.good.payed"
	case GoodStatusDelivered:
		return "status.good.delivered"
	case GoodStatusCanceled:
		return "status.good.canceled"
	case GoodStatusReturned:
		return "status.good.returned"
	case GoodStatusDeleted:
		return "status.good.deleted"
	}
	return StatusUnknownKey
}

func (s GoodStatus) Valid() bool { return s.LabelKey() != StatusUnknownKey }

// ShipmentStatus описывает статус отправления у перевозчика.
type ShipmentStatus string

const (
	ShipmentStatusCreated   ShipmentStatus = "CREATED"
	ShipmentStatusInTransit ShipmentStatus = "IN_TRANSIT"
	ShipmentStatusDelivered ShipmentStatus = "DELIVERED"
	ShipmentStatusCancelled ShipmentStatus = "CANCELLED"
)

func (s ShipmentStatus) LabelKey() string {
	switch s {
	case ShipmentStatusCreated:
		return "status.shipment.created"
	case ShipmentStatusInTransit:
		return "status.shipment.in_transit"
	case ShipmentStatusDelivered:
		return "status.shipment.delivered"
	case ShipmentStatusCancelled:
		return "status.shipment.cancelled"
	}
	return StatusUnknownKey
}

func (s ShipmentStatus) Valid() bool { return s.LabelKey() != StatusUnknownKey }

// RecipientStatus описывает состояние проверки получателя.
type RecipientStatus string

const (
	RecipientStatusPending  RecipientStatus = "PENDING"
	RecipientStatusActive   RecipientStatus = "ACTIVE"
	RecipientStatusInactive RecipientStatus = "INACTIVE"
)

func (s RecipientStatus) LabelKey() string {
	switch s {
	case RecipientStatusPending:
		return "status.recipient.pending"
	case RecipientStatusActive:
		return "status.recipient.active"
	case RecipientStatusInactive:
		return "status.recipient.inactive"
	}
	return StatusUnknownKey
}

func (s RecipientStatus) Valid() bool { return s.LabelKey() != StatusUnknownKey }

// PaymentStatus описывает статус платежа. PAID и FAILED терминальные.
type PaymentStatus string

const (
	PaymentStatusPending PaymentStatus = "PENDING"
	PaymentStatusPaid    PaymentStatus = "PAID"
	PaymentStatusFailed  PaymentStatus = "FAILED"
)

func (s PaymentStatus) LabelKey() string {
	switch s {
	case PaymentStatusPending:
		return "status.payment.pending"
	case PaymentStatusPaid:
		return "status.payment.paid"
	case PaymentStatusFailed:
		return "status.payment.failed"
	}
	return StatusUnknownKey
}

func (s PaymentStatus) Valid() bool { return s.LabelKey() != StatusUnknownKey }

// Terminal сообщает, что дальнейший опрос статуса не нужен.
func (s PaymentStatus) Terminal() bool {
	return s == PaymentStatusPaid || s == PaymentStatusFailed
}

// Labeled реализуется всеми статусами и используется при локализации.
type Labeled interface {
	LabelKey() string
}
