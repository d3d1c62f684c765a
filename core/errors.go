package core

import "strconv"

// ErrorCode int
type ErrorCode int

const (
	// ErrUnknown unknown
	ErrUnknown ErrorCode = 100000
	// ErrOperationForbidden caller is not authorized; always a fatal abort
	ErrOperationForbidden ErrorCode = 100001
	// ErrInvalidArgument malformed address or quantity
	ErrInvalidArgument ErrorCode = 100002

	// ErrCollateralNotSupported asset is not in the registry
	ErrCollateralNotSupported ErrorCode = 100100
	// ErrInsufficientCollateral collateral below requested quantity
	ErrInsufficientCollateral ErrorCode = 100101
	// ErrInsufficientSupply underlying pool supply too low
	ErrInsufficientSupply ErrorCode = 100102
	// ErrLoanNotAllowed loan value exceeds collateral capacity
	ErrLoanNotAllowed ErrorCode = 100103
	// ErrTransferFailed a sub-transfer returned false
	ErrTransferFailed ErrorCode = 100104
	// ErrBadAction unrecognized action tag or mismatched sending token
	ErrBadAction ErrorCode = 100105
	// ErrBadOracleResponse oracle response could not be decoded
	ErrBadOracleResponse ErrorCode = 100106
)

func (e ErrorCode) String() string {
	return strconv.Itoa(int(e))
}

func (e ErrorCode) Error() string {
	return e.String()
}
