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

package ledger

import (
	"errors"
	"fmt"
)

// Code identifies the kind of a ledger failure. Callers can match on the
// code without parsing messages.
type Code uint16

const (
	CodeNotAuthorized Code = iota + 1
	CodeCommunityNotFound
	CodeResourceNotFound
	CodeMemberNotFound
	CodeAlreadyExists
	CodeInsufficientContribution
	CodeAllocationNotFound
	CodeDisputeNotFound
	CodeProposalNotFound
	CodeCooldownActive
	CodeResourceExhausted
	CodeAllocationLimitExceeded
	CodeInvalidState
	CodeAlreadyVoted
	CodeVotingNotOpen
	CodeVotingWindowNotElapsed
	CodeInvalidArgument
	CodeInvalidHeight
	CodeRequestNotFound
)

var codeNames = map[Code]string{
	CodeNotAuthorized:            "NotAuthorized",
	CodeCommunityNotFound:        "CommunityNotFound",
	CodeResourceNotFound:         "ResourceNotFound",
	CodeMemberNotFound:           "MemberNotFound",
	CodeAlreadyExists:            "AlreadyExists",
	CodeInsufficientContribution: "InsufficientContribution",
	CodeAllocationNotFound:       "AllocationNotFound",
	CodeDisputeNotFound:          "DisputeNotFound",
	CodeProposalNotFound:         "ProposalNotFound",
	CodeCooldownActive:           "CooldownActive",
	CodeResourceExhausted:        "ResourceExhausted",
	CodeAllocationLimitExceeded:  "AllocationLimitExceeded",
	CodeInvalidState:             "InvalidState",
	CodeAlreadyVoted:             "AlreadyVoted",
	CodeVotingNotOpen:            "VotingNotOpen",
	CodeVotingWindowNotElapsed:   "VotingWindowNotElapsed",
	CodeInvalidArgument:          "InvalidArgument",
	CodeInvalidHeight:            "InvalidHeight",
	CodeRequestNotFound:          "RequestNotFound",
}

func (c Code) String() string {
	if name, ok := codeNames[c]; ok {
		return name
	}
	return fmt.Sprintf("Code(%d)", uint16(c))
}

// Error is a typed ledger failure
type Error struct {
	Code    Code
	Message string
}

func (e *Error) Error() string {
	if e.Message == "" {
		return e.Code.String()
	}
	return e.Code.String() + ": " + e.Message
}

// Is matches any *Error with the same code, so errors.Is(err, ErrX) works
// regardless of the message
func (e *Error) Is(target error) bool {
	var t *Error
	if !errors.As(target, &t) {
		return false
	}
	return t.Code == e.Code
}

func newError(code Code, format string, args ...any) *Error {
	return &Error{
		Code:    code,
		Message: fmt.Sprintf(format, args...),
	}
}

var (
	ErrNotAuthorized            = &Error{Code: CodeNotAuthorized}
	ErrCommunityNotFound        = &Error{Code: CodeCommunityNotFound}
	ErrResourceNotFound         = &Error{Code: CodeResourceNotFound}
	ErrMemberNotFound           = &Error{Code: CodeMemberNotFound}
	ErrAlreadyExists            = &Error{Code: CodeAlreadyExists}
	ErrInsufficientContribution = &Error{Code: CodeInsufficientContribution}
	ErrAllocationNotFound       = &Error{Code: CodeAllocationNotFound}
	ErrDisputeNotFound          = &Error{Code: CodeDisputeNotFound}
	ErrProposalNotFound         = &Error{Code: CodeProposalNotFound}
	ErrCooldownActive           = &Error{Code: CodeCooldownActive}
	ErrResourceExhausted        = &Error{Code: CodeResourceExhausted}
	ErrAllocationLimitExceeded  = &Error{Code: CodeAllocationLimitExceeded}
	ErrInvalidState             = &Error{Code: CodeInvalidState}
	ErrAlreadyVoted             = &Error{Code: CodeAlreadyVoted}
	ErrVotingNotOpen            = &Error{Code: CodeVotingNotOpen}
	ErrVotingWindowNotElapsed   = &Error{Code: CodeVotingWindowNotElapsed}
	ErrInvalidArgument          = &Error{Code: CodeInvalidArgument}
	ErrInvalidHeight            = &Error{Code: CodeInvalidHeight}
	ErrRequestNotFound          = &Error{Code: CodeRequestNotFound}
)

// CodeOf returns the code carried by err, or 0 for errors that did not
// come from the ledger
func CodeOf(err error) Code {
	var lerr *Error
	if errors.As(err, &lerr) {
		return lerr.Code
	}
	return 0
}
