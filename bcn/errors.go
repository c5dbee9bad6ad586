package bcn

import "errors"

// ErrorCode identifies an API failure class.
type ErrorCode uint32

const (
	// Success reports no error.
	Success ErrorCode = 0

	// ErrOutOfMem reports that a requested size overflows the host int.
	ErrOutOfMem ErrorCode = 1

	// ErrBadParam reports an invalid argument: nil image, bad algorithm,
	// bad weights, or an out-of-range worker count.
	ErrBadParam ErrorCode = 2

	// ErrBadFormat reports an unknown or unsupported block format.
	ErrBadFormat ErrorCode = 3

	// ErrBadDimensions reports non-positive image dimensions, or a pixel
	// buffer that does not match the stated dimensions.
	ErrBadDimensions ErrorCode = 4

	// ErrTruncatedInput reports compressed data shorter than the block
	// grid requires.
	ErrTruncatedInput ErrorCode = 5
)

// ErrorString returns the stable identifier for a code, usable in logs
// and tool output.
//
// For unknown codes, it returns "".
func ErrorString(code ErrorCode) string {
	switch code {
	case Success:
		return "BCN_SUCCESS"
	case ErrOutOfMem:
		return "BCN_ERR_OUT_OF_MEM"
	case ErrBadParam:
		return "BCN_ERR_BAD_PARAM"
	case ErrBadFormat:
		return "BCN_ERR_BAD_FORMAT"
	case ErrBadDimensions:
		return "BCN_ERR_BAD_DIMENSIONS"
	case ErrTruncatedInput:
		return "BCN_ERR_TRUNCATED_INPUT"
	default:
		return ""
	}
}

// Error is a typed error that carries an ErrorCode.
type Error struct {
	Code ErrorCode
	Msg  string
}

func (e *Error) Error() string {
	if e == nil {
		return ""
	}
	if e.Msg != "" {
		return e.Msg
	}
	if s := ErrorString(e.Code); s != "" {
		return "bcn: " + s
	}
	return "bcn: error"
}

// ErrorCodeOf returns the error code for err, or Success for nil.
//
// For non-*Error errors it returns ErrBadParam as a conservative fallback.
func ErrorCodeOf(err error) ErrorCode {
	if err == nil {
		return Success
	}
	var e *Error
	if errors.As(err, &e) {
		return e.Code
	}
	return ErrBadParam
}

func newError(code ErrorCode, msg string) error {
	return &Error{Code: code, Msg: msg}
}
