package engine

import (
	"errors"
	"fmt"
	"strings"
)

// Kind classifies a command rejection for the wire protocol.
type Kind string

const (
	KindValidation   Kind = "validation"
	KindInvalidState Kind = "invalid_state"
	KindNotFound     Kind = "not_found"
	KindUnauthorized Kind = "unauthorized"
)

// Reject is a structured command rejection. Rejections are all-or-nothing:
// a command that returns a Reject has not touched room state.
type Reject struct {
	Kind       Kind
	Detail     string
	Violations []string
}

func (r *Reject) Error() string {
	if len(r.Violations) == 0 {
		return fmt.Sprintf("%s: %s", r.Kind, r.Detail)
	}
	return fmt.Sprintf("%s: %s (%s)", r.Kind, r.Detail, strings.Join(r.Violations, "; "))
}

func rejectf(kind Kind, format string, args ...any) error {
	return &Reject{Kind: kind, Detail: fmt.Sprintf(format, args...)}
}

func validationErr(detail string, violations ...string) error {
	return &Reject{Kind: KindValidation, Detail: detail, Violations: violations}
}

// KindOf extracts the rejection kind, defaulting to invalid_state for
// unclassified errors.
func KindOf(err error) Kind {
	var r *Reject
	if errors.As(err, &r) {
		return r.Kind
	}
	return KindInvalidState
}

// IsKind reports whether err is a rejection of the given kind.
func IsKind(err error, kind Kind) bool {
	var r *Reject
	return errors.As(err, &r) && r.Kind == kind
}

// ViolationsOf returns the violation list of a validation rejection, if any.
func ViolationsOf(err error) []string {
	var r *Reject
	if errors.As(err, &r) {
		return r.Violations
	}
	return nil
}
