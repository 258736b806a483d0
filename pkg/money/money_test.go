package money

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
)

func TestFormatBRL(t *testing.T) {
	tests := []struct {
		in   float64
		want string
	}{
		{150, "R$\u00a0150,00"},
		{42.25, "R$\u00a042,25"},
		{2500, "R$\u00a02.500,00"},
		{1234567.891, "R$\u00a01.234.567,89"},
		{-25, "-R$\u00a025,00"},
		{0, "R$\u00a00,00"},
	}
	for _, tt := range tests {
		t.Run(tt.want, func(t *testing.T) {
			assert.Equal(t, tt.want, FormatBRL(tt.in))
		})
	}
}

func TestSum(t *testing.T) {
	assert.True(t, decimal.RequireFromString("0.3").Equal(Sum(0.1, 0.2)))
	assert.True(t, Sum().IsZero())
}

func TestPercent(t *testing.T) {
	got := Percent(decimal.NewFromInt(25), decimal.NewFromInt(200), 2)
	assert.Equal(t, "12.5", got.String())
	assert.True(t, Percent(decimal.NewFromInt(5), decimal.Zero, 2).IsZero())
}
