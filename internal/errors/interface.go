package errors

// ErrorCode uniquely identifies an error condition across the daemon. Codes
// are stable strings so log consumers can match on them.
type ErrorCode string

// Error is a coded error carrying optional wrapped cause and context data.
type Error interface {
	error
	Code() ErrorCode
	WithMessage(msg string) Error
	WithData(data any) Error
	GetData() any
	Unwrap() error
}

// Factory constructs coded errors. Obtain one with New().
type Factory interface {
	New(code ErrorCode) Error
	Wrap(code ErrorCode, err error) Error
	WithMessage(code ErrorCode, msg string) Error
	WithData(code ErrorCode, data any) Error
}
