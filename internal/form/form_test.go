package form

import (
	"encoding/json"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mmeshcher/parcel-portal/internal/validation"
)

type dictionary map[string]string

func (d dictionary) T(lang, key string) string {
	if v, ok := d[lang+":"+key]; ok {
		return v
	}
	return key
}

func TestRender(t *testing.T) {
	tr := dictionary{
		"en:forms.firstName":     "First name",
		"en:forms.documentFront": "ID card, front side",
		"en:validation.required": "Required field",
		"en:validation.len":      "Wrong length",
		"ru:forms.firstName":     "Имя",
		"ru:validation.required": "Обязательное поле",
	}
	fields := []Field{
		Text{Base: Base{ID: "firstName", Required: true}, MaxLength: 100},
		File{Base: Base{ID: "documentFrontId", Label: "forms.documentFront", Required: true}},
		Masked{Base: Base{ID: "iin"}, Mask: iinMask},
	}
	errs := validation.Errors{
		"firstName": {"validation.required", "validation.max"},
		"iin":       {"validation.len"},
	}

	got := Render(tr, "en", fields, errs)
	require.Len(t, got, 3)

	assert.Equal(t, TypeText, got[0].Type)
	assert.Equal(t, "First name", got[0].Label)
	assert.True(t, got[0].Invalid)
	assert.Equal(t, "Required field", got[0].Error)

	assert.Equal(t, TypeFile, got[1].Type)
	assert.Equal(t, "ID card, front side", got[1].Label)
	assert.False(t, got[1].Invalid)
	assert.Empty(t, got[1].Error)

	assert.Equal(t, TypeMasked, got[2].Type)
	assert.Equal(t, "Wrong length", got[2].Error)

	ru := Render(tr, "ru", fields[:1], errs)
	assert.Equal(t, "Имя", ru[0].Label)
	assert.Equal(t, "Обязательное поле", ru[0].Error)
}

func TestRender_JSONShape(t *testing.T) {
	fields := []Field{
		Dropdown{
			Base:     Base{ID: "service"},
			Options:  []Option{{Value: "spedx", Label: "SpedX"}},
			Nullable: true,
		},
	}

	data, err := json.Marshal(Render(dictionary{}, "en", fields, nil))
	require.NoError(t, err)

	assert.JSONEq(t, `[{
		"type": "dropdown",
		"id": "service",
		"label": "forms.service",
		"required": false,
		"invalid": false,
		"config": {"options": [{"value": "spedx", "label": "SpedX"}], "nullable": true, "searchable": false}
	}]`, string(data))
}

func TestDropdownSearch(t *testing.T) {
	d := Dropdown{Options: []Option{
		{Value: "KZ", Label: "Kazakhstan"},
		{Value: "CN", Label: "China"},
		{Value: "KG", Label: "Kyrgyzstan"},
	}, Searchable: true}

	assert.Equal(t, []Option{{Value: "KZ", Label: "Kazakhstan"}, {Value: "KG", Label: "Kyrgyzstan"}}, d.Search("STAN"))
	assert.Len(t, d.Search("  "), 3)
	assert.Empty(t, d.Search("brazil"))
}

func TestMasked(t *testing.T) {
	m := Masked{Mask: phoneMask}

	assert.True(t, m.Matches("+7 (701) 123-45-67"))
	assert.False(t, m.Matches("+7 (70a) 123-45-67"))
	assert.False(t, m.Matches("+7 701 123 45 67"))
	assert.Equal(t, "7011234567", m.Unmask("+7 (701) 123-45-67"))
}

func TestMoneyParse(t *testing.T) {
	m := Money{Currency: "USD", Scale: 2}

	d, err := m.Parse(" 1 249,90 ")
	require.NoError(t, err)
	assert.True(t, d.Equal(decimal.RequireFromString("1249.90")))

	_, err = m.Parse("1.999")
	assert.ErrorIs(t, err, ErrTooPrecise)

	_, err = m.Parse("abc")
	assert.Error(t, err)
}

func TestDefinition(t *testing.T) {
	cat := Catalog{Countries: []Option{{Value: "KZ", Label: "Казахстан"}}}

	for _, name := range Names() {
		fields, ok := Definition(name, cat)
		require.True(t, ok, name)
		assert.NotEmpty(t, fields, name)

		seen := map[string]bool{}
		for _, f := range fields {
			id := f.base().ID
			assert.False(t, seen[id], "%s: duplicate field %s", name, id)
			seen[id] = true
		}
	}

	_, ok := Definition("payment", cat)
	assert.False(t, ok)
	assert.False(t, IsKnown("payment"))

	fields, _ := Definition(Shipment, cat)
	var service Dropdown
	for _, f := range fields {
		if d, ok := f.(Dropdown); ok && d.ID == "service" {
			service = d
		}
	}
	assert.Equal(t, defaultServices, service.Options)
}

func TestMaskedNormalize(t *testing.T) {
	phone := Masked{Mask: phoneMask, Prefix: phonePrefix}

	tests := []struct {
		name  string
		value string
		want  string
		ok    bool
	}{
		{name: "formatted", value: "+7 (701) 123-45-67", want: "+77011234567", ok: true},
		{name: "already normalized", value: " +77011234567 ", want: "+77011234567", ok: true},
		{name: "foreign prefix", value: "+8613800138000", ok: false},
		{name: "too short", value: "+7701123", ok: false},
		{name: "letters", value: "+7 (70a) 123-45-67", ok: false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := phone.Normalize(tt.value)
			assert.Equal(t, tt.ok, ok)
			if tt.ok {
				assert.Equal(t, tt.want, got)
			}
		})
	}

	iin := Masked{Mask: iinMask}
	got, ok := iin.Normalize("900101300123")
	assert.True(t, ok)
	assert.Equal(t, "900101300123", got)
}

func TestConform(t *testing.T) {
	fields, _ := Definition(Recipient, Catalog{})

	phone, iin, postcode, city := "+7 (701) 123-45-67", "90010130012", "", "Almaty"
	errs := Conform(fields, map[string]*string{
		"phone":    &phone,
		"iin":      &iin,
		"postcode": &postcode,
		"city":     &city,
		"unknown":  &city,
	})

	assert.Equal(t, "+77011234567", phone)
	assert.Equal(t, []string{"validation.mask"}, errs["iin"])
	assert.False(t, errs.Has("postcode"), "empty values are left to entity validation")
	assert.False(t, errs.Has("city"))
	assert.Len(t, errs, 1)
}

func TestMoneyParseJSON(t *testing.T) {
	m := Money{Scale: 2}

	tests := []struct {
		raw     string
		want    string
		wantErr bool
	}{
		{raw: `120.5`, want: "120.5"},
		{raw: `"1 249,90"`, want: "1249.9"},
		{raw: `null`, want: "0"},
		{raw: ``, want: "0"},
		{raw: `"12.345"`, wantErr: true},
		{raw: `"twelve"`, wantErr: true},
	}
	for _, tt := range tests {
		t.Run(tt.raw, func(t *testing.T) {
			d, err := m.ParseJSON(json.RawMessage(tt.raw))
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.True(t, d.Equal(decimal.RequireFromString(tt.want)), d.String())
		})
	}
}

func TestFind(t *testing.T) {
	fields, _ := Definition(Order, Catalog{Currencies: []Option{{Value: "CNY", Label: "CNY ¥"}}})

	f, ok := Find(fields, "goods[0].currency")
	require.True(t, ok)
	d, ok := f.(Dropdown)
	require.True(t, ok)
	assert.Equal(t, []Option{{Value: "CNY", Label: "CNY ¥"}}, d.Search("cny"))

	_, ok = Find(fields, "weight")
	assert.False(t, ok)
}
