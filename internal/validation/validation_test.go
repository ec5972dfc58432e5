package validation

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestIsValidTrackingNumber(t *testing.T) {
	tests := []struct {
		name   string
		number string
		valid  bool
	}{
		{name: "valid kazpost", number: "RR123456785KZ", valid: true},
		{name: "valid check digit 11 becomes 5", number: "EE000000005KZ", valid: true},
		{name: "valid check digit 10 becomes 0", number: "AA000000080US", valid: true},
		{name: "valid other", number: "CP473124829KZ", valid: true},
		{name: "invalid checksum", number: "RR123456784KZ", valid: false},
		{name: "lowercase prefix", number: "rr123456785KZ", valid: false},
		{name: "letters in serial", number: "RR12345A785KZ", valid: false},
		{name: "too short", number: "RR12345678KZ", valid: false},
		{name: "empty string", number: "", valid: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := IsValidTrackingNumber(tt.number)
			if got != tt.valid {
				t.Fatalf("IsValidTrackingNumber(%q) = %v, want %v", tt.number, got, tt.valid)
			}
		})
	}
}

func TestRulesRun_AggregatesAllFailures(t *testing.T) {
	rules := Rules{
		"name": {
			Required("", "validation.required"),
			MaxLen("", 10, "validation.max"),
		},
		"price": {
			Check(false, "validation.gt"),
			Check(false, "validation.numeric"),
		},
		"link": {
			Required("https://example.com", "validation.required"),
		},
	}

	errs := rules.Run()

	assert.Equal(t, []string{"validation.required"}, errs["name"])
	assert.Equal(t, []string{"validation.gt", "validation.numeric"}, errs["price"])
	assert.False(t, errs.Has("link"))
	assert.Equal(t, "validation.gt", errs.First("price"))
}

func TestRulesRun_Empty(t *testing.T) {
	errs := Rules{"id": {Positive(3, "validation.gt")}}.Run()
	assert.True(t, errs.Empty())
}

type testItem struct {
	Name string `json:"name" validate:"required"`
}

type testPayload struct {
	RecipientID int64      `json:"recipientId" validate:"required,gt=0"`
	Track       string     `json:"track" validate:"omitempty,s10"`
	Items       []testItem `json:"items" validate:"required,min=1,dive"`
}

func TestStruct_UsesJSONFieldPaths(t *testing.T) {
	errs := Struct(testPayload{
		Track: "RR123456784KZ",
		Items: []testItem{{Name: "ok"}, {}},
	})

	require.False(t, errs.Empty())
	assert.Equal(t, []string{"validation.required"}, errs["recipientId"])
	assert.Equal(t, []string{"validation.s10"}, errs["track"])
	assert.Equal(t, []string{"validation.required"}, errs["items[1].name"])
}

func TestStruct_Valid(t *testing.T) {
	errs := Struct(testPayload{
		RecipientID: 1,
		Track:       "RR123456785KZ",
		Items:       []testItem{{Name: "ok"}},
	})
	assert.True(t, errs.Empty())
}

func TestErrors_ErrorIsSorted(t *testing.T) {
	errs := Errors{"b": {"two"}, "a": {"one", "uno"}}
	assert.Equal(t, "a: one; uno, b: two", errs.Error())
	assert.Equal(t, Errors{ServerErrorKey: {"502"}}, ServerError("502"))
}
