package errors

// ErrorCode represents a unique error code for identifying different error types.
type ErrorCode int

const (
	// General errors (1-99)
	ErrCodeUnknown ErrorCode = 1

	// Validation errors (100-199)
	ErrCodeInvalidParameter     ErrorCode = 100
	ErrCodeInvalidConfiguration ErrorCode = 101
	ErrCodeInvalidType          ErrorCode = 102
	ErrCodeInvalidPeriod        ErrorCode = 103
	ErrCodeInvalidVersion       ErrorCode = 105
	ErrCodeInvalidMultiplier    ErrorCode = 106

	// Data/Resource errors (200-299)
	ErrCodeParseFailed       ErrorCode = 200
	ErrCodeEmptySource       ErrorCode = 201
	ErrCodeNoSources         ErrorCode = 202
	ErrCodeColumnNotFound    ErrorCode = 203
	ErrCodeDuplicateColumn   ErrorCode = 204
	ErrCodeEmptyIntersection ErrorCode = 205
	ErrCodeLengthMismatch    ErrorCode = 206
	ErrCodeQueryFailed       ErrorCode = 207
	ErrCodeSourceUnavailable ErrorCode = 208
	ErrCodeUnsupportedFormat ErrorCode = 209

	// Indicator errors (300-399)
	ErrCodeIndicatorNotFound          ErrorCode = 300
	ErrCodeIndicatorAlreadyExists     ErrorCode = 301
	ErrCodeIndicatorCalculation       ErrorCode = 302
	ErrCodeIndicatorDependencyMissing ErrorCode = 303

	// Split errors (400-499)
	ErrCodeInvalidSplitConfiguration ErrorCode = 400
	ErrCodeUnsortedIndex             ErrorCode = 401

	// Output errors (500-599)
	ErrCodeWriteFailed ErrorCode = 500
)
