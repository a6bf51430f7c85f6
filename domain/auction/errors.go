package auction

import (
	"errors"
	"fmt"

	"github.com/shopspring/decimal"

	"github.com/x-xyz/goauction/domain"
)

// Kind classifies a failure for the caller
type Kind string

const (
	KindValidation        Kind = "ValidationError"
	KindStateConflict     Kind = "StateConflict"
	KindNotFound          Kind = "NotFound"
	KindSystemUnavailable Kind = "SystemUnavailable"
	KindStorageFailure    Kind = "StorageFailure"
)

// kind sentinels, matched with errors.Is
var (
	ErrValidation        = domain.ErrBadParamInput
	ErrStateConflict     = domain.ErrConflict
	ErrNotFound          = domain.ErrNotFound
	ErrSystemUnavailable = domain.ErrUnavailable
	ErrStorageFailure    = domain.ErrInternalServerError
)

// reason sentinels
var (
	ErrAuctionNotOpen    = errors.New("auction not open")
	ErrSelfBidForbidden  = errors.New("self bid forbidden")
	ErrBidTooLow         = errors.New("bid too low")
	ErrVersionConflict   = errors.New("version conflict")
	ErrInvalidAmount     = errors.New("invalid amount")
	ErrInvalidSchedule   = errors.New("invalid schedule")
	ErrInvalidTransition = errors.New("invalid transition")
	ErrMaintenance       = errors.New("maintenance")
	ErrNotEnded          = errors.New("auction not ended")
)

var kindSentinels = map[Kind]error{
	KindValidation:        ErrValidation,
	KindStateConflict:     ErrStateConflict,
	KindNotFound:          ErrNotFound,
	KindSystemUnavailable: ErrSystemUnavailable,
	KindStorageFailure:    ErrStorageFailure,
}

// Error is the typed rejection returned by the engine
type Error struct {
	Kind       Kind
	Reason     error
	Message    string
	MinimumBid *decimal.Decimal
	Err        error
}

func (e *Error) Error() string {
	return e.Message
}

func (e *Error) Unwrap() error {
	return e.Err
}

func (e *Error) Is(target error) bool {
	if target == nil {
		return false
	}
	if s, ok := kindSentinels[e.Kind]; ok && s == target {
		return true
	}
	return e.Reason != nil && e.Reason == target
}

// Payload is the structured body rendered to API callers
func (e *Error) Payload() interface{} {
	res := map[string]interface{}{
		"kind":    e.Kind,
		"message": e.Message,
	}
	if e.Reason != nil {
		res["reason"] = e.Reason.Error()
	}
	if e.MinimumBid != nil {
		res["minimumBid"] = e.MinimumBid.StringFixed(2)
	}
	return res
}

// KindOf classifies any error. Unclassified errors count as storage failures.
func KindOf(err error) Kind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	for k, s := range kindSentinels {
		if errors.Is(err, s) {
			return k
		}
	}
	return KindStorageFailure
}

// ReasonOf returns a short tag for metrics
func ReasonOf(err error) string {
	var e *Error
	if errors.As(err, &e) && e.Reason != nil {
		return e.Reason.Error()
	}
	return string(KindOf(err))
}

func NewValidationError(reason error, format string, args ...interface{}) *Error {
	return &Error{Kind: KindValidation, Reason: reason, Message: fmt.Sprintf(format, args...)}
}

func NewNotFound(id string) *Error {
	return &Error{Kind: KindNotFound, Message: fmt.Sprintf("auction %s not found", id)}
}

func NewSystemUnavailable() *Error {
	return &Error{
		Kind:    KindSystemUnavailable,
		Reason:  ErrMaintenance,
		Message: "system is under maintenance, try again later",
	}
}

func NewAuctionNotOpen(id string, status Status) *Error {
	return &Error{
		Kind:    KindStateConflict,
		Reason:  ErrAuctionNotOpen,
		Message: fmt.Sprintf("auction %s is not open for bidding (status %s)", id, status),
	}
}

func NewSelfBidForbidden() *Error {
	return &Error{
		Kind:    KindStateConflict,
		Reason:  ErrSelfBidForbidden,
		Message: "sellers cannot bid on their own auction",
	}
}

func NewBidTooLow(minimum decimal.Decimal) *Error {
	return &Error{
		Kind:       KindStateConflict,
		Reason:     ErrBidTooLow,
		Message:    fmt.Sprintf("Bid amount must be at least %s", minimum.StringFixed(2)),
		MinimumBid: &minimum,
	}
}

func NewVersionConflict(id string, expected int64) *Error {
	return &Error{
		Kind:    KindStateConflict,
		Reason:  ErrVersionConflict,
		Message: fmt.Sprintf("auction %s changed since version %d", id, expected),
	}
}

func NewInvalidTransition(id string, from, to Status) *Error {
	return &Error{
		Kind:    KindStateConflict,
		Reason:  ErrInvalidTransition,
		Message: fmt.Sprintf("auction %s cannot move from %s to %s", id, from, to),
	}
}

func NewNotEnded(id string, status Status) *Error {
	return &Error{
		Kind:    KindStateConflict,
		Reason:  ErrNotEnded,
		Message: fmt.Sprintf("auction %s has not ended (status %s)", id, status),
	}
}

// NewStorageFailure wraps a collaborator error. Errors that are already
// classified pass through unchanged.
func NewStorageFailure(op string, err error) error {
	var e *Error
	if errors.As(err, &e) {
		return err
	}
	return &Error{
		Kind:    KindStorageFailure,
		Message: fmt.Sprintf("storage failure during %s", op),
		Err:     err,
	}
}
