package money

import (
	"log/slog"

	"github.com/shopspring/decimal"

	"github.com/reactbank/reactbank/internal/currency"
	"github.com/reactbank/reactbank/internal/metrics"
	"github.com/reactbank/reactbank/internal/rates"
)

// Convert multiplies amount by rate and rounds half away from zero to places
// fractional digits.
func Convert(amount, rate decimal.Decimal, places int32) decimal.Decimal {
	return amount.Mul(rate).Round(places)
}

// Converter turns base-currency amounts into a target currency. The zero value
// logs to slog.Default and records no metrics.
type Converter struct {
	Logger  *slog.Logger
	Metrics *metrics.Metrics
}

// ConvertedAmount converts with the zero Converter.
func ConvertedAmount(amount decimal.Decimal, table rates.Table, target currency.Code) decimal.Decimal {
	return Converter{}.Amount(amount, table, target)
}

// Amount returns amount unchanged when there is no table, when target is the
// base currency, or when the table has no rate for target. Otherwise it
// converts at the target's display precision.
func (c Converter) Amount(amount decimal.Decimal, table rates.Table, target currency.Code) decimal.Decimal {
	if table == nil || target.IsBase() {
		return amount
	}

	rate, ok := table.Rate(target)
	if !ok {
		c.logger().Warn("Exchange rate not found, showing base amount",
			slog.String("currency", target.String()),
			slog.String("base", currency.Base.String()))
		c.Metrics.MissingRate(target.String())
		return amount
	}

	return Convert(amount, rate, target.DecimalPlaces())
}

func (c Converter) logger() *slog.Logger {
	if c.Logger != nil {
		return c.Logger
	}
	return slog.Default()
}
