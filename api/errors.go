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

package api

import (
	"errors"
	"net/http"

	"github.com/blinklabs-io/ayllu/ledger"
	"github.com/gin-gonic/gin"
)

// ErrorResponse is the body of every failed call. Code is the ledger
// failure code, or 0 for transport and internal errors.
type ErrorResponse struct {
	Code  uint16 `json:"code,omitempty"`
	Error string `json:"error"`
}

var errBadParams = errors.New("invalid parameters")

func statusForCode(code ledger.Code) int {
	switch code {
	case ledger.CodeNotAuthorized:
		return http.StatusForbidden
	case ledger.CodeCommunityNotFound,
		ledger.CodeResourceNotFound,
		ledger.CodeMemberNotFound,
		ledger.CodeAllocationNotFound,
		ledger.CodeDisputeNotFound,
		ledger.CodeProposalNotFound,
		ledger.CodeRequestNotFound:
		return http.StatusNotFound
	case ledger.CodeAlreadyExists,
		ledger.CodeAlreadyVoted,
		ledger.CodeInvalidState,
		ledger.CodeVotingNotOpen,
		ledger.CodeVotingWindowNotElapsed,
		ledger.CodeInvalidHeight:
		return http.StatusConflict
	case ledger.CodeInsufficientContribution,
		ledger.CodeCooldownActive,
		ledger.CodeResourceExhausted,
		ledger.CodeAllocationLimitExceeded:
		return http.StatusUnprocessableEntity
	case ledger.CodeInvalidArgument:
		return http.StatusBadRequest
	default:
		return http.StatusInternalServerError
	}
}

// writeError maps err onto an HTTP status. Errors that did not come from
// the ledger are logged and hidden from the caller.
func (a *Api) writeError(c *gin.Context, err error) {
	if errors.Is(err, errBadParams) {
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: err.Error()})
		return
	}
	code := ledger.CodeOf(err)
	if code == 0 {
		a.logger.Error(
			"ledger call failed",
			"error", err,
			"path", c.Request.URL.Path,
			"request_id", c.GetString(contextRequestIdKey),
		)
		c.JSON(
			http.StatusInternalServerError,
			ErrorResponse{Error: "internal error"},
		)
		return
	}
	c.JSON(
		statusForCode(code),
		ErrorResponse{Code: uint16(code), Error: err.Error()},
	)
}
