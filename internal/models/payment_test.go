package models

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
)

func TestParsePaymentType(t *testing.T) {
	cases := map[string]PaymentType{
		"full":                PaymentTypeFull,
		" Deposit ":           PaymentTypeDeposit,
		"scholarship":         PaymentTypeScholarship,
		"gps":                 PaymentTypeScholarship,
		"scholarship-covered": PaymentTypeScholarship,
	}
	for raw, want := range cases {
		got, ok := ParsePaymentType(raw)
		assert.True(t, ok, raw)
		assert.Equal(t, want, got, raw)
	}

	_, ok := ParsePaymentType("installments")
	assert.False(t, ok)
}

func TestCentsConversion(t *testing.T) {
	assert.Equal(t, int64(3800), ToCents(decimal.NewFromInt(38)))
	assert.Equal(t, int64(50), ToCents(decimal.RequireFromString("0.5")))
	assert.True(t, FromCents(3750).Equal(decimal.RequireFromString("37.5")))
}
