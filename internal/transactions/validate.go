package transactions

import (
	"fmt"
	"strings"

	"github.com/shopspring/decimal"

	"github.com/reactbank/reactbank/internal/model"
)

// ValidationError describes one problem with a transaction row.
type ValidationError struct {
	RefID       string
	Field       string
	Description string
}

func (e ValidationError) Error() string {
	return fmt.Sprintf("transaction [%s] %s: %s", e.RefID, e.Field, e.Description)
}

// Validate checks that every transaction has a unique, non-empty reference,
// both names, a transfer date and an amount with at most 2 decimal places.
func Validate(txs []model.Transaction) []ValidationError {
	var errs []ValidationError
	seen := make(map[string]bool, len(txs))
	hundred := decimal.NewFromInt(100)

	for i, tx := range txs {
		ref := tx.RefID
		if strings.TrimSpace(ref) == "" {
			errs = append(errs, ValidationError{
				RefID:       fmt.Sprintf("#%d", i+1),
				Field:       "ref_id",
				Description: "must not be empty",
			})
		} else if seen[ref] {
			errs = append(errs, ValidationError{
				RefID:       ref,
				Field:       "ref_id",
				Description: "duplicate reference",
			})
		}
		seen[ref] = true

		if strings.TrimSpace(tx.RecipientName) == "" {
			errs = append(errs, ValidationError{RefID: ref, Field: "recipient_name", Description: "must not be empty"})
		}
		if strings.TrimSpace(tx.TransferName) == "" {
			errs = append(errs, ValidationError{RefID: ref, Field: "transfer_name", Description: "must not be empty"})
		}
		if tx.TransferDate.IsZero() {
			errs = append(errs, ValidationError{RefID: ref, Field: "transfer_date", Description: "must be set"})
		}

		scaled := tx.Amount.Mul(hundred)
		if !scaled.Equal(scaled.Truncate(0)) {
			errs = append(errs, ValidationError{
				RefID:       ref,
				Field:       "amount",
				Description: fmt.Sprintf("%s has more than 2 decimal places", tx.Amount),
			})
		}
	}
	return errs
}
