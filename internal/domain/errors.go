package domain

import "errors"

// Sentinel errors for conditions the caller is expected to branch on.
var (
	// ErrUnsupportedCurrency indicates a monetary record in a currency other
	// than USD. The sync is USD-only; any other code is a data-integrity
	// failure, not a row to skip.
	ErrUnsupportedCurrency = errors.New("unsupported currency")

	// ErrUnmappedDirection indicates a credit/debit (or deposit/withdraw)
	// key that matched neither side of the sign mapping. Silently defaulting
	// a sign would corrupt the ledger, so this aborts the record.
	ErrUnmappedDirection = errors.New("unmapped transfer direction")

	// ErrAccountNotFound indicates a named ledger account that does not
	// exist in the budget.
	ErrAccountNotFound = errors.New("ledger account not found")
)

// IsIntegrityError reports whether err represents internally inconsistent
// upstream data (wrong currency, unmappable direction key). These abort the
// run immediately rather than being collected alongside ordinary fetch
// failures.
func IsIntegrityError(err error) bool {
	return errors.Is(err, ErrUnsupportedCurrency) || errors.Is(err, ErrUnmappedDirection)
}
