// Copyright 2025 Blink Labs Software
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package governance

import (
	"context"
	"errors"
	"fmt"

	"github.com/blinklabs-io/agora/database/models"
	"github.com/ethereum/go-ethereum/common"
)

var (
	// ErrUnauthorized is returned when the caller is not allowed to perform
	// an operation: not an admin, not the deployer, or not the wired component
	ErrUnauthorized = errors.New("unauthorized")
	// ErrAlreadyInitialised is returned by one-time wiring operations on repeat
	ErrAlreadyInitialised = errors.New("already initialised")
	// ErrNotInitialised is returned when an operation requires wiring that
	// has not happened yet
	ErrNotInitialised = errors.New("not initialised")
	// ErrNotFound is returned for unknown components, ballots, proposals and actions
	ErrNotFound = errors.New("not found")
	// ErrInvalidState is returned for lifecycle transitions that the current
	// ballot state forbids
	ErrInvalidState = errors.New("invalid state")
	// ErrArityMismatch is returned when proposal names and document
	// references differ in length
	ErrArityMismatch = errors.New("arity mismatch")
	// ErrLastAdminProtected is returned when a resignation would empty the admin set
	ErrLastAdminProtected = errors.New("last admin cannot resign")
	// ErrAlreadyVoted is returned for a second vote by the same voter on a ballot
	ErrAlreadyVoted = errors.New("already voted")
)

// Error kinds reported by KindOf
const (
	KindOK                 = "ok"
	KindUnauthorized       = "unauthorized"
	KindAlreadyInitialised = "already_initialised"
	KindNotInitialised     = "not_initialised"
	KindNotFound           = "not_found"
	KindInvalidState       = "invalid_state"
	KindArityMismatch      = "arity_mismatch"
	KindLastAdminProtected = "last_admin_protected"
	KindAlreadyVoted       = "already_voted"
	KindCanceled           = "canceled"
	KindInternal           = "internal"
)

var errorKinds = []struct {
	err  error
	kind string
}{
	{ErrUnauthorized, KindUnauthorized},
	{ErrAlreadyInitialised, KindAlreadyInitialised},
	{ErrNotInitialised, KindNotInitialised},
	{ErrNotFound, KindNotFound},
	{ErrInvalidState, KindInvalidState},
	{ErrArityMismatch, KindArityMismatch},
	{ErrLastAdminProtected, KindLastAdminProtected},
	{ErrAlreadyVoted, KindAlreadyVoted},
	{context.Canceled, KindCanceled},
	{context.DeadlineExceeded, KindCanceled},
}

// OpError describes a failed governance operation
type OpError struct {
	Err    error
	Op     string
	Caller common.Address
}

func (e *OpError) Error() string {
	if e.Caller == (common.Address{}) {
		return fmt.Sprintf("%s: %v", e.Op, e.Err)
	}
	return fmt.Sprintf("%s (caller %s): %v", e.Op, e.Caller.Hex(), e.Err)
}

func (e *OpError) Unwrap() error {
	return e.Err
}

// KindOf returns a stable name for the kind of err. Errors that do not wrap
// one of the governance sentinels are reported as internal.
func KindOf(err error) string {
	if err == nil {
		return KindOK
	}
	for _, ek := range errorKinds {
		if errors.Is(err, ek.err) {
			return ek.kind
		}
	}
	return KindInternal
}

func newOpError(op string, caller common.Address, err error) error {
	if err == nil {
		return nil
	}
	var opErr *OpError
	if errors.As(err, &opErr) {
		return err
	}
	return &OpError{Op: op, Caller: caller, Err: err}
}

// errorsIsNotFound reports whether err is a missing-entity error from the database layer
func errorsIsNotFound(err error) bool {
	return errors.Is(err, models.ErrBallotNotFound) ||
		errors.Is(err, models.ErrComponentNotFound) ||
		errors.Is(err, models.ErrSafeActionNotFound)
}
