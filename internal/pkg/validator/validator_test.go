package validator

import "testing"

func TestCustomTags(t *testing.T) {
	cases := []struct {
		tag   string
		value string
		valid bool
	}{
		{"source_balance", "wallet", true},
		{"source_balance", "reward", true},
		{"source_balance", "bank", false},
		{"nuban", "0123456789", true},
		{"nuban", "012345678", false},
		{"nuban", "01234567890", false},
		{"nuban", "012345678x", false},
		{"purchase_kind", "airtime", true},
		{"purchase_kind", "data", true},
		{"purchase_kind", "electricity", false},
	}

	for _, c := range cases {
		err := ValidateVar(c.value, c.tag)
		if c.valid && err != nil {
			t.Errorf("%s=%q: expected valid, got %v", c.tag, c.value, err)
		}
		if !c.valid && err == nil {
			t.Errorf("%s=%q: expected invalid", c.tag, c.value)
		}
	}
}

func TestStructValidationUsesJSONNames(t *testing.T) {
	type form struct {
		AccountNumber string `json:"account_number" validate:"required,nuban"`
	}

	errs := Validate(&form{AccountNumber: "abc"})
	if errs == nil {
		t.Fatal("expected validation errors")
	}
	if _, ok := errs["account_number"]; !ok {
		t.Fatalf("expected error keyed by json name, got %v", errs)
	}
}
