package currency

import (
	"errors"
	"fmt"
	"strings"
)

// Code is an ISO 4217 code from the closed set of supported currencies.
type Code string

const (
	EUR Code = "EUR"
	GBP Code = "GBP"
	AUD Code = "AUD"
	JPY Code = "JPY"
	HKD Code = "HKD"
	MYR Code = "MYR"
	SGD Code = "SGD"
)

// Base is the currency every transaction amount is stored in.
const Base = MYR

// ErrUnknownCurrency is returned by Parse for codes outside the supported set.
var ErrUnknownCurrency = errors.New("unknown currency")

// Currency is the display metadata for a Code.
type Currency struct {
	Code          Code
	Label         string
	Symbol        string
	DecimalPlaces int32
	// SymbolNeedsSeparator puts one space between the symbol and the number ("RM 10.00").
	SymbolNeedsSeparator bool
}

// supported is ordered as the currency picker lists it.
var supported = []Currency{
	{Code: EUR, Label: "Euro", Symbol: "€", DecimalPlaces: 2},
	{Code: GBP, Label: "British Pound", Symbol: "£", DecimalPlaces: 2},
	{Code: AUD, Label: "Australian Dollar", Symbol: "A$", DecimalPlaces: 2},
	{Code: JPY, Label: "Japanese Yen", Symbol: "¥", DecimalPlaces: 0},
	{Code: HKD, Label: "Hong Kong Dollar", Symbol: "HK$", DecimalPlaces: 2},
	{Code: MYR, Label: "Malaysian Ringgit", Symbol: "RM", DecimalPlaces: 2, SymbolNeedsSeparator: true},
	{Code: SGD, Label: "Singapore Dollar", Symbol: "S$", DecimalPlaces: 2},
}

var byCode = func() map[Code]Currency {
	m := make(map[Code]Currency, len(supported))
	for _, c := range supported {
		m[c.Code] = c
	}
	return m
}()

// Supported returns all supported currencies in picker order.
func Supported() []Currency {
	out := make([]Currency, len(supported))
	copy(out, supported)
	return out
}

// Lookup returns the metadata for code.
func Lookup(code Code) (Currency, bool) {
	c, ok := byCode[code]
	return c, ok
}

// MustLookup returns the metadata for code and panics if code is not supported.
func MustLookup(code Code) Currency {
	c, ok := byCode[code]
	if !ok {
		panic("unsupported currency: " + string(code))
	}
	return c
}

// Parse converts user input like "eur" or " EUR " into a Code.
func Parse(s string) (Code, error) {
	code := Code(strings.ToUpper(strings.TrimSpace(s)))
	if _, ok := byCode[code]; !ok {
		return "", fmt.Errorf("%w: %q", ErrUnknownCurrency, s)
	}
	return code, nil
}

// IsBase reports whether c is the base currency.
func (c Code) IsBase() bool { return c == Base }

// Key returns the lowercase form used by rate tables and rate endpoints.
func (c Code) Key() string { return strings.ToLower(string(c)) }

// DecimalPlaces returns the display precision for c.
func (c Code) DecimalPlaces() int32 { return MustLookup(c).DecimalPlaces }

func (c Code) String() string { return string(c) }
