package enums

import "fmt"

// LedgerOperation names a wallet settlement operation tied to an order
// lifecycle transition.
type LedgerOperation string

const (
	LedgerOperationReserve LedgerOperation = "reserve"
	LedgerOperationSettle  LedgerOperation = "settle"
	LedgerOperationCancel  LedgerOperation = "cancel"
)

var validLedgerOperations = []LedgerOperation{
	LedgerOperationReserve,
	LedgerOperationSettle,
	LedgerOperationCancel,
}

// IsValid reports whether the value is a known LedgerOperation.
func (o LedgerOperation) IsValid() bool {
	for _, candidate := range validLedgerOperations {
		if candidate == o {
			return true
		}
	}
	return false
}

// ParseLedgerOperation converts raw input into a LedgerOperation.
func ParseLedgerOperation(value string) (LedgerOperation, error) {
	for _, candidate := range validLedgerOperations {
		if string(candidate) == value {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid ledger operation %q", value)
}
