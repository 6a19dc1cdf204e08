package types

import "errors"

// Entity lookup errors.
var (
	ErrNotFound  = errors.New("entity not found")
	ErrInvalidID = errors.New("invalid entity ID")
)

// Entity validation and mutation errors.
var (
	ErrInvalidName     = errors.New("invalid name")
	ErrInvalidKind     = errors.New("invalid holding kind")
	ErrInvalidQuantity = errors.New("invalid quantity")
	ErrInvalidCurrency = errors.New("invalid currency code")
	ErrInvalidTarget   = errors.New("target percentage must be between 0 and 100")
	ErrNothingSelected = errors.New("no asset is selected")
)
