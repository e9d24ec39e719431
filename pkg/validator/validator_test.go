package validator

import (
	"testing"

	"github.com/google/uuid"
)

type paymentReq struct {
	Method string `validate:"required,payment_method"`
}

func TestPaymentMethodRule(t *testing.T) {
	cases := []struct {
		method string
		wantOK bool
	}{
		{"CASH", true},
		{"CARD", true},
		{"cash", false},
		{"TRANSFER", false},
	}
	for _, c := range cases {
		errs := ValidateStruct(&paymentReq{Method: c.method})
		if ok := len(errs) == 0; ok != c.wantOK {
			t.Errorf("payment_method(%q) valid = %v, want %v", c.method, ok, c.wantOK)
		}
	}
}

type idReq struct {
	ID uuid.UUID `validate:"uuid_required"`
}

func TestUUIDRequiredRule(t *testing.T) {
	if errs := ValidateStruct(&idReq{ID: uuid.New()}); len(errs) != 0 {
		t.Errorf("fresh uuid rejected: %+v", errs[0])
	}
	if errs := ValidateStruct(&idReq{}); len(errs) == 0 {
		t.Error("nil uuid accepted")
	}
}
