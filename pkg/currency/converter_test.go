package currency

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestConvert(t *testing.T) {
	tests := []struct {
		name   string
		amount string
		rate   decimal.Decimal
		want   string
	}{
		{name: "zero", amount: "0", rate: DefaultRate, want: "0.00"},
		{name: "grand total at default rate", amount: "100.00", rate: DefaultRate, want: "9000.00"},
		{name: "rounds half up", amount: "0.005", rate: decimal.NewFromInt(1), want: "0.01"},
		{name: "rounds down below half", amount: "0.004", rate: decimal.NewFromInt(1), want: "0.00"},
		{name: "fractional rate", amount: "123.45", rate: decimal.RequireFromString("0.011"), want: "1.36"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := Convert(decimal.RequireFromString(tt.amount), tt.rate)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got.StringFixed(2))
		})
	}
}

func TestConvert_NegativeAmount(t *testing.T) {
	_, err := Convert(decimal.NewFromInt(-1), DefaultRate)
	assert.ErrorIs(t, err, ErrInvalidAmount)
}

func TestConvert_InvalidRate(t *testing.T) {
	_, err := Convert(decimal.NewFromInt(10), decimal.Zero)
	assert.ErrorIs(t, err, ErrInvalidRate)
}

func TestConvert_Monotonic(t *testing.T) {
	amounts := []string{"0", "0.01", "1", "1.5", "99.99", "100", "2500.10"}

	prev := decimal.NewFromInt(-1)
	for _, a := range amounts {
		got, err := Convert(decimal.RequireFromString(a), DefaultRate)
		require.NoError(t, err)
		assert.True(t, got.GreaterThan(prev), "convert(%s)=%s not greater than %s", a, got, prev)
		prev = got
	}
}

func TestParseAmount(t *testing.T) {
	got, err := ParseAmount(" 100.00 ")
	require.NoError(t, err)
	assert.True(t, got.Equal(decimal.NewFromInt(100)))

	for _, bad := range []string{"", "abc", "-5.00", "NaN", "Inf", "12,50"} {
		_, err := ParseAmount(bad)
		assert.ErrorIs(t, err, ErrInvalidAmount, "input %q", bad)
	}
}

func TestStaticRate(t *testing.T) {
	r := DefaultStaticRate()

	rate, err := r.Rate("eur")
	require.NoError(t, err)
	assert.True(t, rate.Equal(DefaultRate))
	assert.Equal(t, "INR", r.Display())

	_, err = r.Rate("USD")
	assert.ErrorIs(t, err, ErrUnsupportedCurrency)

	any := NewStaticRate("", "inr", decimal.NewFromInt(2))
	rate, err = any.Rate("USD")
	require.NoError(t, err)
	assert.True(t, rate.Equal(decimal.NewFromInt(2)))
}
