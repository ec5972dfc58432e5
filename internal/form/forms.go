package form

import (
	"slices"

	"github.com/shopspring/decimal"
)

const (
	Recipient   = "recipient"
	Order       = "order"
	Shipment    = "shipment"
	Marketplace = "marketplace"
)

const (
	phoneMask   = "+7 (999) 999-99-99"
	phonePrefix = "+7"
	iinMask     = "999999999999"

	maxUpload = 10 << 20
)

var documentTypes = []string{"image/jpeg", "image/png", "application/pdf"}

// Catalog содержит варианты выпадающих списков, уже подписанные на нужном языке.
type Catalog struct {
	Countries  []Option
	Currencies []Option
	Recipients []Option
	Services   []Option
}

var defaultServices = []Option{
	{Value: "spedx", Label: "SpedX"},
	{Value: "kazpost", Label: "Kazpost"},
}

// Names перечисляет формы, которые умеет строить Definition.
func Names() []string {
	return []string{Marketplace, Order, Recipient, Shipment}
}

// Definition возвращает поля формы name. ok == false для неизвестной формы.
func Definition(name string, c Catalog) (fields []Field, ok bool) {
	switch name {
	case Recipient:
		return recipientForm(c), true
	case Order:
		return orderForm(c), true
	case Shipment:
		return shipmentForm(c), true
	case Marketplace:
		return marketplaceForm(c), true
	}
	return nil, false
}

// IsKnown сообщает, существует ли форма.
func IsKnown(name string) bool {
	return slices.Contains(Names(), name)
}

func recipientForm(c Catalog) []Field {
	return []Field{
		Text{Base: Base{ID: "firstName", Required: true}, MaxLength: 100},
		Text{Base: Base{ID: "lastName", Required: true}, MaxLength: 100},
		Masked{Base: Base{ID: "iin", Required: true}, Mask: iinMask},
		Masked{Base: Base{ID: "phone", Required: true}, Mask: phoneMask, Prefix: phonePrefix},
		File{Base: Base{ID: "documentFrontId", Label: "forms.documentFront", Required: true}, Accept: documentTypes, MaxSize: maxUpload},
		File{Base: Base{ID: "documentBackId", Label: "forms.documentBack", Required: true}, Accept: documentTypes, MaxSize: maxUpload},
		Dropdown{Base: Base{ID: "country", Required: true}, Options: c.Countries, Searchable: true},
		Text{Base: Base{ID: "city", Required: true}, MaxLength: 100},
		Text{Base: Base{ID: "street", Required: true}, MaxLength: 255},
		Masked{Base: Base{ID: "postcode", Required: true}, Mask: "999999"},
	}
}

func orderForm(c Catalog) []Field {
	return []Field{
		Dropdown{Base: Base{ID: "recipientId", Required: true}, Options: c.Recipients, Searchable: true},
		Text{Base: Base{ID: "goods[0].name", Label: "forms.name", Required: true}, MaxLength: 255},
		Text{Base: Base{ID: "goods[0].link", Label: "forms.link", Required: true}},
		Dropdown{Base: Base{ID: "goods[0].country", Label: "forms.country", Required: true}, Options: c.Countries, Searchable: true},
		Dropdown{Base: Base{ID: "goods[0].currency", Label: "forms.currency", Required: true}, Options: c.Currencies},
		Money{Base: Base{ID: "goods[0].price", Label: "forms.price", Required: true}, Scale: 2},
		File{Base: Base{ID: "invoices"}, Accept: documentTypes, Multiple: true, MaxSize: maxUpload},
		Checkbox{Base: Base{ID: "agree", Required: true}},
	}
}

func shipmentForm(c Catalog) []Field {
	services := c.Services
	if len(services) == 0 {
		services = defaultServices
	}
	return []Field{
		Text{Base: Base{ID: "senderName", Required: true}, MaxLength: 255},
		Text{Base: Base{ID: "senderPhone", Required: true}, MaxLength: 16},
		Text{Base: Base{ID: "senderAddress", Required: true}, Multiline: true},
		Text{Base: Base{ID: "receiverName", Required: true}, MaxLength: 255},
		Masked{Base: Base{ID: "receiverPhone", Required: true}, Mask: phoneMask, Prefix: phonePrefix},
		Text{Base: Base{ID: "receiverAddress", Required: true}, Multiline: true},
		Dropdown{Base: Base{ID: "service"}, Options: services, Nullable: true},
		Numeric{Base: Base{ID: "weight", Label: "forms.weight"}, Min: ptr(decimal.RequireFromString("0.01")), Step: decimal.RequireFromString("0.01")},
	}
}

func marketplaceForm(c Catalog) []Field {
	return []Field{
		Text{Base: Base{ID: "brand", Required: true}, MaxLength: 100},
		Text{Base: Base{ID: "category", Required: true}, MaxLength: 100},
		Text{Base: Base{ID: "link", Required: true}},
		Text{Base: Base{ID: "description.ru", Label: "forms.description", Required: true}, Multiline: true},
		Dropdown{Base: Base{ID: "country.ru", Label: "forms.country", Required: true}, Options: c.Countries, Searchable: true},
		File{Base: Base{ID: "photo"}, Accept: []string{"image/jpeg", "image/png"}, MaxSize: maxUpload},
	}
}

func ptr[T any](v T) *T { return &v }
