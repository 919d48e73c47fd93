package money

import (
	"strings"
	"time"

	"github.com/shopspring/decimal"
	"golang.org/x/text/language"
	"golang.org/x/text/message"
	"golang.org/x/text/number"

	"github.com/reactbank/reactbank/internal/currency"
)

// DefaultLocale groups thousands with "," and uses "." for decimals.
var DefaultLocale = language.MustParse("en-MY")

// DateLayout renders dates like "15 Oct 2024, 12:34 PM".
const DateLayout = "2 Jan 2006, 03:04 PM"

// Display is a signed, symbol-prefixed amount ready to show.
type Display struct {
	Value      string `json:"display"`
	IsNegative bool   `json:"is_negative"`
}

func (d Display) String() string { return d.Value }

type formatOptions struct {
	showSign bool
}

// FormatOption adjusts FormatCurrency.
type FormatOption func(*formatOptions)

// HideSign drops the leading "+" or "-".
func HideSign() FormatOption {
	return func(o *formatOptions) { o.showSign = false }
}

// Formatter renders amounts for one locale.
type Formatter struct {
	Locale language.Tag
}

// NewFormatter returns a Formatter for the given BCP 47 tag, or for
// DefaultLocale when tag is empty.
func NewFormatter(tag string) (Formatter, error) {
	if tag == "" {
		return Formatter{Locale: DefaultLocale}, nil
	}
	t, err := language.Parse(tag)
	if err != nil {
		return Formatter{}, err
	}
	return Formatter{Locale: t}, nil
}

// FormatCurrency formats amount in code with DefaultLocale.
func FormatCurrency(amount decimal.Decimal, code currency.Code, opts ...FormatOption) Display {
	return Formatter{Locale: DefaultLocale}.Currency(amount, code, opts...)
}

// Currency renders {sign}{symbol}{space?}{|amount|} with exactly the
// currency's decimal places.
func (f Formatter) Currency(amount decimal.Decimal, code currency.Code, opts ...FormatOption) Display {
	o := formatOptions{showSign: true}
	for _, opt := range opts {
		opt(&o)
	}

	meta := currency.MustLookup(code)
	negative := amount.IsNegative()

	var b strings.Builder
	if o.showSign {
		if negative {
			b.WriteByte('-')
		} else {
			b.WriteByte('+')
		}
	}
	b.WriteString(meta.Symbol)
	if meta.SymbolNeedsSeparator {
		b.WriteByte(' ')
	}
	b.WriteString(f.Number(amount.Abs(), meta.DecimalPlaces))

	return Display{Value: b.String(), IsNegative: negative}
}

// Number groups the integer digits of amount and prints exactly places
// fractional digits. The digits come from the decimal itself; the locale
// only supplies the separators.
func (f Formatter) Number(amount decimal.Decimal, places int32) string {
	digits := amount.Round(places).StringFixed(places)
	sign := ""
	if strings.HasPrefix(digits, "-") {
		sign, digits = "-", digits[1:]
	}
	whole, frac, _ := strings.Cut(digits, ".")
	group, point := f.separators()

	var b strings.Builder
	b.WriteString(sign)
	for i, r := range whole {
		if i > 0 && (len(whole)-i)%3 == 0 {
			b.WriteString(group)
		}
		b.WriteRune(r)
	}
	if frac != "" {
		b.WriteString(point)
		b.WriteString(frac)
	}
	return b.String()
}

// separators asks x/text how the locale writes 1234567.5 and reads the
// grouping and decimal marks back out of it.
func (f Formatter) separators() (group, point string) {
	s := message.NewPrinter(f.locale()).Sprint(number.Decimal(1234567.5, number.Scale(1)))
	i := strings.Index(s, "234")
	j := strings.Index(s, "567")
	if !strings.HasPrefix(s, "1") || i < 1 || j < i+3 || !strings.HasSuffix(s, "5") {
		return ",", "."
	}
	return s[1:i], s[j+3 : len(s)-1]
}

func (f Formatter) locale() language.Tag {
	if f.Locale.IsRoot() {
		return DefaultLocale
	}
	return f.Locale
}

// FormatDate renders t in its own location using DateLayout.
func FormatDate(t time.Time) string {
	return t.Format(DateLayout)
}
