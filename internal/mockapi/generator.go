// Package mockapi реализует локальную заглушку REST API бэкенда
// со случайно сгенерированными данными.
package mockapi

import (
	"fmt"
	"time"

	"github.com/brianvoe/gofakeit/v6"
	"github.com/shopspring/decimal"

	"github.com/mmeshcher/parcel-portal/internal/model"
)

var (
	countryCodes  = []string{"CN", "KZ", "US", "TR", "KR"}
	currencyCodes = []string{"CNY", "KZT", "USD", "TRY", "KRW"}
)

// Generator строит правдоподобные сущности. При одинаковом seed
// последовательность данных повторяется.
type Generator struct {
	faker *gofakeit.Faker
}

func NewGenerator(seed int64) *Generator {
	return &Generator{faker: gofakeit.New(seed)}
}

func (g *Generator) price(min, max float64) decimal.Decimal {
	return decimal.NewFromFloat(g.faker.Price(min, max)).Round(2)
}

func (g *Generator) Good(id int64) model.Good {
	return model.Good{
		ID:             id,
		Name:           g.faker.ProductName(),
		Description:    g.faker.ProductDescription(),
		Link:           g.faker.URL(),
		TrackingNumber: fmt.Sprintf("YT%010d", g.faker.Number(0, 999999999)),
		Country:        g.faker.RandomString(countryCodes),
		Currency:       g.faker.RandomString(currencyCodes),
		Price:          g.price(5, 500),
		Status:         model.GoodStatusCreated,
	}
}

func (g *Generator) Order(id, recipientID int64, goods []model.Good) model.Order {
	return model.Order{
		ID:          id,
		RecipientID: recipientID,
		Goods:       goods,
		OrderNumber: fmt.Sprintf("ORD-%06d", id),
		Status: model.OrderStatus(g.faker.RandomString([]string{
			string(model.OrderStatusCreated),
			string(model.OrderStatusInTheWay),
			string(model.OrderStatusDelivered),
		})),
		CreatedAt: g.faker.DateRange(time.Now().AddDate(0, -3, 0), time.Now()).UTC().Truncate(time.Second),
	}
}

func (g *Generator) Recipient(id int64) model.Recipient {
	addr := g.faker.Address()
	return model.Recipient{
		ID:              id,
		FirstName:       g.faker.FirstName(),
		LastName:        g.faker.LastName(),
		IIN:             g.faker.Numerify("############"),
		Phone:           "+7" + g.faker.Numerify("##########"),
		DocumentFrontID: id*10 + 1,
		DocumentBackID:  id*10 + 2,
		Country:         "KZ",
		City:            addr.City,
		Street:          addr.Street,
		Postcode:        g.faker.Numerify("######"),
		Status:          model.RecipientStatusActive,
	}
}

func (g *Generator) Delivery(id, recipientID int64, goods []model.Good) model.Delivery {
	ids := make([]int64, 0, len(goods))
	for _, gd := range goods {
		ids = append(ids, gd.ID)
	}
	return model.Delivery{
		ID:                    id,
		DeliveryNumber:        fmt.Sprintf("DLV-%06d", id),
		RecipientID:           recipientID,
		Goods:                 goods,
		GoodIDs:               ids,
		Weight:                decimal.NewFromFloat(g.faker.Float64Range(0.1, 20)).Round(2),
		Price:                 g.price(1000, 30000),
		Currency:              "KZT",
		KazPostTrackingNumber: g.S10(),
		Status:                model.DeliveryStatusInTheWay,
		CreatedAt:             g.faker.DateRange(time.Now().AddDate(0, -1, 0), time.Now()).UTC().Truncate(time.Second),
	}
}

func (g *Generator) Shipment(id int64) model.Shipment {
	return model.Shipment{
		ID:             id,
		TrackingNumber: g.S10(),
		SenderName:     g.faker.Company(),
		SenderPhone:    "+86" + g.faker.Numerify("###########"),
		SenderAddress:  g.faker.Address().Address,
		ReceiverName:   g.faker.Name(),
		ReceiverPhone:  "+7" + g.faker.Numerify("##########"),
		ReceiverAddr:   g.faker.Address().Address,
		Weight:         decimal.NewFromFloat(g.faker.Float64Range(0.1, 20)).Round(2),
		Status:         model.ShipmentStatusInTransit,
		Service:        g.faker.RandomString([]string{"spedx", "kazpost"}),
	}
}

func (g *Generator) Marketplace(id int64) model.Marketplace {
	desc := g.faker.Sentence(8)
	return model.Marketplace{
		ID:          id,
		Brand:       g.faker.Company(),
		Category:    g.faker.RandomString([]string{"clothes", "electronics", "home", "beauty"}),
		Description: model.Localized{RU: desc, EN: desc, ZH: desc},
		Country:     model.Localized{RU: "Китай", EN: "China", ZH: "中国"},
		Link:        g.faker.URL(),
	}
}

// S10 возвращает трек-номер формата UPU S10 с корректной контрольной цифрой.
func (g *Generator) S10() string {
	serial := g.faker.Numerify("########")
	weights := []int{8, 6, 4, 2, 3, 5, 9, 7}
	sum := 0
	for i, r := range serial {
		sum += int(r-'0') * weights[i]
	}
	check := 11 - sum%11
	switch check {
	case 10:
		check = 0
	case 11:
		check = 5
	}
	return fmt.Sprintf("R%s%s%dKZ", g.faker.RandomString([]string{"A", "B", "R"}), serial, check)
}

// Tracking строит историю отслеживания: служебные сканирования вперемешку
// с событиями для покупателя.
func (g *Generator) Tracking(number string) model.TrackingEvent {
	start := time.Now().AddDate(0, 0, -10).UTC().Truncate(time.Hour)
	steps := []struct {
		name  string
		codes []string
	}{
		{"Accepted", []string{"ACCEPTED"}},
		{"Sorting", []string{"SRT_IN", "SRT_OUT"}},
		{"Departed", []string{"TRN_DEP"}},
		{"Arrived", []string{"ARRIVED"}},
		{"Courier", []string{"DLV_HANDED"}},
		{"Delivered", []string{"ISSPAY"}},
	}

	ev := model.TrackingEvent{TrackingNumber: number}
	for i, s := range steps {
		ev.Activities = append(ev.Activities, model.TrackingActivity{
			Date:   start.Add(time.Duration(i*36) * time.Hour),
			City:   g.faker.City(),
			Name:   s.name,
			Status: s.codes,
		})
	}
	return ev
}
