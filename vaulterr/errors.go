// Package vaulterr defines the closed set of error kinds reported by the
// vault core. Callers branch with errors.Is against the exported sentinels
// or with KindOf.
package vaulterr

import (
	"errors"
	"fmt"
)

// Kind identifies a class of failure.
type Kind uint8

const (
	Unknown Kind = iota
	InvalidSalt
	DerivationFailed
	InvalidEnvelope
	AuthenticationFailed
	DecodedTextInvalid
	NotLoggedIn
	NotInitialized
	PathWriteFailed
	PathReadFailed
)

var kindText = map[Kind]string{
	Unknown:              "unknown error",
	InvalidSalt:          "invalid salt",
	DerivationFailed:     "key derivation failed",
	InvalidEnvelope:      "invalid envelope",
	AuthenticationFailed: "incorrect passphrase or corrupted file",
	DecodedTextInvalid:   "decrypted data is not valid text",
	NotLoggedIn:          "not logged in",
	NotInitialized:       "not initialized",
	PathWriteFailed:      "cannot write vault file",
	PathReadFailed:       "cannot read vault file",
}

func (k Kind) String() string {
	if s, ok := kindText[k]; ok {
		return s
	}
	return kindText[Unknown]
}

// Error is the error type returned by every core operation.
type Error struct {
	Kind Kind
	// Op names the operation that failed, e.g. "vault.Open".
	Op string
	// Err is the underlying cause, if any. It never carries key material.
	Err error
}

func (e *Error) Error() string {
	msg := e.Kind.String()
	if e.Op != "" {
		msg = e.Op + ": " + msg
	}
	if e.Err != nil {
		msg += ": " + e.Err.Error()
	}
	return msg
}

func (e *Error) Unwrap() error {
	return e.Err
}

// Is reports whether target is an *Error of the same kind.
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	return ok && t.Kind == e.Kind
}

// E builds an *Error. AuthenticationFailed drops the cause so that a wrong
// passphrase and a tampered file are reported identically.
func E(kind Kind, op string, err error) error {
	if kind == AuthenticationFailed {
		err = nil
	}
	return &Error{Kind: kind, Op: op, Err: err}
}

// WithOp re-labels err with op, keeping its kind and cause. Errors without
// a kind are wrapped as-is.
func WithOp(op string, err error) error {
	if err == nil {
		return nil
	}
	if e, ok := errors.AsType[*Error](err); ok {
		return &Error{Kind: e.Kind, Op: op, Err: e.Err}
	}
	return fmt.Errorf("%s: %w", op, err)
}

// KindOf returns the kind of the first *Error in err's chain, or Unknown.
func KindOf(err error) Kind {
	if e, ok := errors.AsType[*Error](err); ok {
		return e.Kind
	}
	return Unknown
}

var (
	ErrInvalidSalt          = &Error{Kind: InvalidSalt}
	ErrDerivationFailed     = &Error{Kind: DerivationFailed}
	ErrInvalidEnvelope      = &Error{Kind: InvalidEnvelope}
	ErrAuthenticationFailed = &Error{Kind: AuthenticationFailed}
	ErrDecodedTextInvalid   = &Error{Kind: DecodedTextInvalid}
	ErrNotLoggedIn          = &Error{Kind: NotLoggedIn}
	ErrNotInitialized       = &Error{Kind: NotInitialized}
	ErrPathWriteFailed      = &Error{Kind: PathWriteFailed}
	ErrPathReadFailed       = &Error{Kind: PathReadFailed}
)
