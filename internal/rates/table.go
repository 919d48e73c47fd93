package rates

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/shopspring/decimal"

	"github.com/reactbank/reactbank/internal/currency"
)

// Table maps a lowercase currency code to the amount of that currency worth
// one unit of the base currency. A Table is never modified after Fetch returns it.
type Table map[string]decimal.Decimal

// Rate returns the rate for code.
func (t Table) Rate(code currency.Code) (decimal.Decimal, bool) {
	r, ok := t[code.Key()]
	return r, ok
}

// Clone returns an independent copy of t.
func (t Table) Clone() Table {
	if t == nil {
		return nil
	}
	out := make(Table, len(t))
	for k, v := range t {
		out[k] = v
	}
	return out
}

// parseTable extracts the rate object stored under baseKey. Entries that are
// not positive numbers are dropped.
func parseTable(body []byte, baseKey string) (Table, error) {
	var doc map[string]json.RawMessage
	if err := json.Unmarshal(body, &doc); err != nil {
		return nil, fmt.Errorf("decoding rate document: %w", err)
	}

	raw, ok := doc[baseKey]
	if !ok {
		return nil, fmt.Errorf("rate document has no %q field", baseKey)
	}

	var entries map[string]json.RawMessage
	if err := json.Unmarshal(raw, &entries); err != nil || entries == nil {
		return nil, fmt.Errorf("rate document field %q is not an object", baseKey)
	}

	table := make(Table, len(entries))
	for code, v := range entries {
		var rate decimal.Decimal
		if err := rate.UnmarshalJSON(v); err != nil {
			continue
		}
		if !rate.IsPositive() {
			continue
		}
		table[strings.ToLower(code)] = rate
	}
	return table, nil
}
