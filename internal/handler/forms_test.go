package handler

import (
	"bytes"
	"encoding/json"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"

	"github.com/klauspost/compress/gzip"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mmeshcher/parcel-portal/internal/auth"
	"github.com/mmeshcher/parcel-portal/internal/form"
	"github.com/mmeshcher/parcel-portal/internal/model"
)

type formErrorsBody struct {
	Errors map[string][]string `json:"errors"`
	Fields []form.Descriptor   `json:"fields"`
}

func fieldByID(t *testing.T, fields []form.Descriptor, id string) form.Descriptor {
	t.Helper()
	for _, d := range fields {
		if d.ID == id {
			return d
		}
	}
	t.Fatalf("field %s not found", id)
	return form.Descriptor{}
}

func referenceBackend(t *testing.T) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/v1/countries":
			writeBackendJSON(t, w, []model.Country{
				{Code: "KZ", Name: model.Localized{RU: "Казахстан", EN: "Kazakhstan", ZH: "哈萨克斯坦"}},
				{Code: "KG", Name: model.Localized{RU: "Киргизия", EN: "Kyrgyzstan", ZH: "吉尔吉斯斯坦"}},
				{Code: "CN", Name: model.Localized{RU: "Китай", EN: "China", ZH: "中国"}},
			})
		case "/v1/currencies":
			writeBackendJSON(t, w, []model.Currency{{Code: "KZT", Symbol: "₸"}, {Code: "CNY", Symbol: "¥"}})
		default:
			t.Errorf("unexpected path %s", r.URL.Path)
		}
	}
}

func TestFormOptions(t *testing.T) {
	f := newFixture(t, referenceBackend(t))

	w := f.do(t, http.MethodGet, "/en/api/forms/recipient/options/country?q=STAN", nil)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	var resp optionsResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, "country", resp.Field)
	assert.Equal(t, []form.Option{{Value: "KZ", Label: "Kazakhstan"}, {Value: "KG", Label: "Kyrgyzstan"}}, resp.Options)

	w = f.do(t, http.MethodGet, "/ru/api/forms/order/options/goods[0].currency?q=cny", nil)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, []form.Option{{Value: "CNY", Label: "CNY ¥"}}, resp.Options)

	w = f.do(t, http.MethodGet, "/en/api/forms/recipient/options/country?q=brazil", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"field":"country","options":[]}`, w.Body.String())

	for _, target := range []string{
		"/en/api/forms/recipient/options/city",
		"/en/api/forms/recipient/options/nope",
		"/en/api/forms/payment/options/country",
	} {
		w = f.do(t, http.MethodGet, target, nil)
		assert.Equal(t, http.StatusNotFound, w.Code, target)
	}
}

func recipientMultipart(t *testing.T, recipient string) (*bytes.Buffer, string) {
	t.Helper()
	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	require.NoError(t, mw.WriteField("recipient", recipient))
	for _, name := range []string{"documentFront", "documentBack"} {
		part, err := mw.CreateFormFile(name, name+".jpg")
		require.NoError(t, err)
		_, err = part.Write([]byte("jpeg"))
		require.NoError(t, err)
	}
	require.NoError(t, mw.Close())
	return &buf, mw.FormDataContentType()
}

func TestCreateRecipient_NormalizesMaskedFields(t *testing.T) {
	var (
		mu       sync.Mutex
		received model.Recipient
		nextFile int64
	)
	f := newFixture(t, func(w http.ResponseWriter, r *http.Request) {
		mu.Lock()
		defer mu.Unlock()
		switch r.URL.Path {
		case "/v1/files":
			nextFile++
			writeBackendJSON(t, w, model.File{ID: 50 + nextFile})
		case "/v1/recipients":
			assert.NoError(t, json.NewDecoder(r.Body).Decode(&received))
			received.ID = 12
			writeBackendJSON(t, w, received)
		default:
			t.Errorf("unexpected path %s", r.URL.Path)
		}
	})
	cookie := f.login(t)

	body, contentType := recipientMultipart(t, `{"firstName":"Aigerim","lastName":"Sadykova","iin":"900101300123",
		"phone":"+7 (701) 123-45-67","country":"KZ","city":"Almaty","street":"Abaya 1","postcode":"050000"}`)
	req := httptest.NewRequest(http.MethodPost, "/ru/api/recipients", body)
	req.Header.Set("Content-Type", contentType)
	req.AddCookie(cookie)
	w := httptest.NewRecorder()
	f.router.ServeHTTP(w, req)

	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	mu.Lock()
	defer mu.Unlock()
	assert.Equal(t, "+77011234567", received.Phone)
	assert.Equal(t, model.RecipientStatusPending, received.Status)
	assert.ElementsMatch(t, []int64{51, 52}, []int64{received.DocumentFrontID, received.DocumentBackID})
}

func TestCreateRecipient_InvalidFieldsComeWithForm(t *testing.T) {
	f := newFixture(t, func(w http.ResponseWriter, r *http.Request) {
		t.Errorf("backend must not be called, got %s %s", r.Method, r.URL.Path)
	})
	cookie := f.login(t)

	w := f.do(t, http.MethodPost, "/en/api/recipients", strings.NewReader(
		`{"firstName":"Aigerim","lastName":"Sadykova","iin":"9001013","phone":"+77011234567",
		"country":"KZ","city":"Almaty","street":"Abaya 1","postcode":"050000"}`), cookie)
	require.Equal(t, http.StatusUnprocessableEntity, w.Code, w.Body.String())

	resp := decodeBody[formErrorsBody](t, w)
	assert.Equal(t, []string{f.bundle.T("en", "validation.mask")}, resp.Errors["iin"])

	iin := fieldByID(t, resp.Fields, "iin")
	assert.True(t, iin.Invalid)
	assert.Equal(t, f.bundle.T("en", "validation.mask"), iin.Error)
	assert.Equal(t, form.TypeMasked, iin.Type)
	assert.False(t, fieldByID(t, resp.Fields, "phone").Invalid)

	w = f.do(t, http.MethodPost, "/en/api/recipients", strings.NewReader(
		`{"firstName":"Aigerim","lastName":"Sadykova","iin":"900101300123","phone":"+77011234567",
		"country":"KZ","city":"Almaty","street":"Abaya 1","postcode":"050000"}`), cookie)
	require.Equal(t, http.StatusUnprocessableEntity, w.Code, w.Body.String())

	resp = decodeBody[formErrorsBody](t, w)
	front := fieldByID(t, resp.Fields, "documentFrontId")
	assert.True(t, front.Invalid)
	assert.Equal(t, f.bundle.T("en", "validation.required"), front.Error)
}

func TestCreateOrder_LocalizedPrice(t *testing.T) {
	var received model.Order
	f := newFixture(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/v1/orders", r.URL.Path)
		assert.NoError(t, json.NewDecoder(r.Body).Decode(&received))
		received.ID = 8
		writeBackendJSON(t, w, received)
	})
	cookie := f.login(t)

	w := f.do(t, http.MethodPost, "/ru/api/orders", strings.NewReader(
		`{"recipientId":5,"goods":[{"name":"Boots","link":"https://shop.example.com/boots","country":"CN","currency":"CNY","price":"1 249,90"}]}`), cookie)
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	require.Len(t, received.Goods, 1)
	assert.True(t, received.Goods[0].Price.Equal(decimal.RequireFromString("1249.90")), received.Goods[0].Price.String())

	w = f.do(t, http.MethodPost, "/ru/api/orders", strings.NewReader(
		`{"recipientId":5,"goods":[{"name":"Boots","link":"https://shop.example.com/boots","country":"CN","currency":"CNY","price":"12,345"}]}`), cookie)
	require.Equal(t, http.StatusUnprocessableEntity, w.Code, w.Body.String())

	resp := decodeBody[formErrorsBody](t, w)
	assert.Equal(t, []string{f.bundle.T("ru", "validation.money")}, resp.Errors["goods[0].price"])
	assert.True(t, fieldByID(t, resp.Fields, "goods[0].price").Invalid)
}

func TestUpdateGoodsStatus_Selection(t *testing.T) {
	tests := []struct {
		name        string
		body        string
		target      string
		wantCode    int
		wantPatched []string
	}{
		{
			name:        "explicit ids deduplicated",
			body:        `{"ids":["3","1","3"],"status":"PAYED"}`,
			target:      "/en/api/admin/goods/status",
			wantCode:    http.StatusOK,
			wantPatched: []string{"/v1/goods/1/status", "/v1/goods/3/status"},
		},
		{
			name:        "toggle all selects the visible page",
			body:        `{"ids":["2"],"toggleAll":true,"status":"DELIVERED"}`,
			target:      "/en/api/admin/goods/status?sort=id:asc&size=2",
			wantCode:    http.StatusOK,
			wantPatched: []string{"/v1/goods/1/status", "/v1/goods/2/status"},
		},
		{
			name:     "toggle all clears a fully selected page",
			body:     `{"ids":["1","2"],"toggleAll":true,"status":"DELIVERED"}`,
			target:   "/en/api/admin/goods/status?sort=id:asc&size=2",
			wantCode: http.StatusUnprocessableEntity,
		},
		{
			name:     "bad id",
			body:     `{"ids":["x"],"status":"PAYED"}`,
			target:   "/en/api/admin/goods/status",
			wantCode: http.StatusBadRequest,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var (
				mu      sync.Mutex
				patched []string
			)
			f := newFixture(t, func(w http.ResponseWriter, r *http.Request) {
				switch r.Method {
				case http.MethodGet:
					writeBackendJSON(t, w, []model.Good{{ID: 3}, {ID: 1}, {ID: 2}})
				case http.MethodPatch:
					mu.Lock()
					patched = append(patched, r.URL.Path)
					mu.Unlock()
					w.WriteHeader(http.StatusNoContent)
				}
			})
			cookie := f.login(t, auth.RoleAdmin)

			w := f.do(t, http.MethodPatch, tt.target, strings.NewReader(tt.body), cookie)
			require.Equal(t, tt.wantCode, w.Code, w.Body.String())

			mu.Lock()
			defer mu.Unlock()
			assert.ElementsMatch(t, tt.wantPatched, patched)
		})
	}
}

func TestRouter_CompressesJSON(t *testing.T) {
	f := newFixture(t, referenceBackend(t))

	req := httptest.NewRequest(http.MethodGet, "/en/api/countries", nil)
	req.Header.Set("Accept-Encoding", "gzip")
	w := httptest.NewRecorder()
	f.router.ServeHTTP(w, req)

	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "gzip", w.Header().Get("Content-Encoding"))
	assert.Equal(t, "Accept-Encoding", w.Header().Get("Vary"))
	assert.Equal(t, "application/json", w.Header().Get("Content-Type"))

	zr, err := gzip.NewReader(w.Body)
	require.NoError(t, err)
	defer zr.Close()

	var countries []model.Country
	require.NoError(t, json.NewDecoder(zr).Decode(&countries))
	require.Len(t, countries, 3)
	assert.Equal(t, "KZ", countries[0].Code)
}

func TestCreateShipment_ReceiverPhone(t *testing.T) {
	var received model.Shipment
	f := newFixture(t, func(w http.ResponseWriter, r *http.Request) {
		assert.NoError(t, json.NewDecoder(r.Body).Decode(&received))
		received.ID = 4
		writeBackendJSON(t, w, received)
	})
	cookie := f.login(t, auth.RoleAdmin)

	shipment := func(receiverPhone string) *strings.Reader {
		return strings.NewReader(`{"senderName":"Yiwu Trading","senderPhone":"+8613800138000","senderAddress":"Yiwu",
			"receiverName":"Aigerim Sadykova","receiverPhone":"` + receiverPhone + `","receiverAddress":"Almaty","weight":"1.5"}`)
	}

	w := f.do(t, http.MethodPost, "/en/api/admin/shipments", shipment("+7 (701) 123-45-67"), cookie)
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	assert.Equal(t, "+77011234567", received.ReceiverPhone)
	assert.Equal(t, "+8613800138000", received.SenderPhone)

	w = f.do(t, http.MethodPost, "/en/api/admin/shipments", shipment("8 701 123"), cookie)
	require.Equal(t, http.StatusUnprocessableEntity, w.Code, w.Body.String())
	resp := decodeBody[formErrorsBody](t, w)
	assert.True(t, fieldByID(t, resp.Fields, "receiverPhone").Invalid)
}
