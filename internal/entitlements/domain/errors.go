package domain

import (
	"context"
	"errors"
	"fmt"
)

// ErrorKind classifies purchase failures. The set is closed.
type ErrorKind string

const (
	KindPlatformUnsupported ErrorKind = "platform_unsupported"
	KindNetwork             ErrorKind = "network"
	KindNotAllowed          ErrorKind = "not_allowed"
	KindInvalid             ErrorKind = "invalid"
	KindUnavailable         ErrorKind = "unavailable"
	KindUserCancelled       ErrorKind = "user_cancelled"
	KindUnknown             ErrorKind = "unknown"
)

// Kinds lists every ErrorKind.
func Kinds() []ErrorKind {
	return []ErrorKind{
		KindPlatformUnsupported,
		KindNetwork,
		KindNotAllowed,
		KindInvalid,
		KindUnavailable,
		KindUserCancelled,
		KindUnknown,
	}
}

// UserMessage is the single message shown for a failure of this kind.
// User-cancelled purchases are silent and return "".
func (k ErrorKind) UserMessage() string {
	switch k {
	case KindPlatformUnsupported:
		return "Purchases are not supported on web. Please use the mobile app to subscribe."
	case KindNetwork:
		return "Network error. Please check your connection and try again."
	case KindNotAllowed:
		return "Purchases are not allowed on this device."
	case KindInvalid:
		return "The purchase was invalid. Please try again."
	case KindUnavailable:
		return "This product is not available for purchase."
	case KindUserCancelled:
		return ""
	default:
		return "An unexpected error occurred. Please try again."
	}
}

// Silent reports whether failures of this kind are hidden from the user.
func (k ErrorKind) Silent() bool {
	return k == KindUserCancelled
}

// PurchaseError is the tagged error every purchase path returns.
type PurchaseError struct {
	Kind ErrorKind
	Err  error
}

// NewPurchaseError wraps err with a kind.
func NewPurchaseError(kind ErrorKind, err error) *PurchaseError {
	return &PurchaseError{Kind: kind, Err: err}
}

// Purchasef builds a PurchaseError with a formatted cause.
func Purchasef(kind ErrorKind, format string, args ...any) *PurchaseError {
	return &PurchaseError{Kind: kind, Err: fmt.Errorf(format, args...)}
}

func (e *PurchaseError) Error() string {
	if e.Err == nil {
		return "purchase failed: " + string(e.Kind)
	}
	return "purchase failed: " + string(e.Kind) + ": " + e.Err.Error()
}

func (e *PurchaseError) Unwrap() error {
	return e.Err
}

// Is matches any PurchaseError sentinel of the same kind.
func (e *PurchaseError) Is(target error) bool {
	t, ok := target.(*PurchaseError)
	if !ok {
		return false
	}
	return t.Err == nil && t.Kind == e.Kind
}

// Sentinels for errors.Is checks, one per kind.
var (
	ErrPlatformUnsupported = &PurchaseError{Kind: KindPlatformUnsupported}
	ErrNetwork             = &PurchaseError{Kind: KindNetwork}
	ErrPurchaseNotAllowed  = &PurchaseError{Kind: KindNotAllowed}
	ErrPurchaseInvalid     = &PurchaseError{Kind: KindInvalid}
	ErrProductUnavailable  = &PurchaseError{Kind: KindUnavailable}
	ErrUserCancelled       = &PurchaseError{Kind: KindUserCancelled}
	ErrUnknown             = &PurchaseError{Kind: KindUnknown}
)

var (
	// ErrOperationInProgress is returned while another purchase, restore or
	// logout is running.
	ErrOperationInProgress = errors.New("another entitlement operation is in progress")

	// ErrNotReady is returned by operations called before Initialize finished.
	ErrNotReady = errors.New("entitlement store is not initialized")
)

// KindOf classifies any error. Errors that are not PurchaseErrors are
// unknown, except context deadline failures which count as network errors.
func KindOf(err error) ErrorKind {
	if err == nil {
		return ""
	}
	var pe *PurchaseError
	if errors.As(err, &pe) {
		return pe.Kind
	}
	if errors.Is(err, context.DeadlineExceeded) {
		return KindNetwork
	}
	return KindUnknown
}
