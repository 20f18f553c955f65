package shared

import "errors"

// Error kinds returned by the engine. Wrapped errors keep the kind, so callers
// match with errors.Is.
var (
	ErrOverflow              = errors.New("math operation overflow")
	ErrDivisionByZero        = errors.New("division by zero")
	ErrAmountIsZero          = errors.New("amount is zero")
	ErrPriceOutOfBounds      = errors.New("trade is over price range")
	ErrInsufficientLiquidity = errors.New("insufficient liquidity")
	ErrNegativeDiscriminant  = errors.New("negative discriminant")
	ErrInvalidInput          = errors.New("invalid input")

	ErrInvalidFee      = errors.New("invalid fee setup")
	ErrSwapDisabled    = errors.New("swap is disabled")
	ErrUnsupportedMode = errors.New("unsupported mode")
)
