package currency

import (
	"errors"
	"strings"

	"github.com/shopspring/decimal"
)

// DefaultRate is the fixed EUR to INR rate used in place of a live FX feed.
var DefaultRate = decimal.NewFromInt(90)

const (
	DefaultSource  = "EUR"
	DefaultDisplay = "INR"
)

var (
	ErrInvalidAmount       = errors.New("invalid amount")
	ErrInvalidRate         = errors.New("invalid rate")
	ErrUnsupportedCurrency = errors.New("unsupported source currency")
)

// Convert returns amount * rate rounded half-up to 2 decimal places.
func Convert(amount, rate decimal.Decimal) (decimal.Decimal, error) {
	if amount.IsNegative() {
		return decimal.Zero, ErrInvalidAmount
	}
	if !rate.IsPositive() {
		return decimal.Zero, ErrInvalidRate
	}
	return amount.Mul(rate).Round(2), nil
}

// ParseAmount parses a provider price string. Empty, non-numeric and negative
// values fail with ErrInvalidAmount.
func ParseAmount(s string) (decimal.Decimal, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return decimal.Zero, ErrInvalidAmount
	}
	d, err := decimal.NewFromString(s)
	if err != nil {
		return decimal.Zero, ErrInvalidAmount
	}
	if d.IsNegative() {
		return decimal.Zero, ErrInvalidAmount
	}
	return d, nil
}

// RateSource yields the multiplier from a source currency into the display
// currency. A live FX provider can replace StaticRate behind this interface.
type RateSource interface {
	Rate(source string) (decimal.Decimal, error)
	Display() string
}

type StaticRate struct {
	Source string
	Target string
	Value  decimal.Decimal
}

func NewStaticRate(source, target string, value decimal.Decimal) StaticRate {
	return StaticRate{
		Source: strings.ToUpper(source),
		Target: strings.ToUpper(target),
		Value:  value,
	}
}

// DefaultStaticRate converts EUR into INR at DefaultRate.
func DefaultStaticRate() StaticRate {
	return NewStaticRate(DefaultSource, DefaultDisplay, DefaultRate)
}

func (r StaticRate) Rate(source string) (decimal.Decimal, error) {
	if r.Source != "" && !strings.EqualFold(source, r.Source) {
		return decimal.Zero, ErrUnsupportedCurrency
	}
	return r.Value, nil
}

func (r StaticRate) Display() string {
	return r.Target
}
