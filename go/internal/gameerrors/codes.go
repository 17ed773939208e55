// Package gameerrors classifies failed game requests and maps them to the
// recovery the client applies.
package gameerrors

import "net/http"

// Code is a machine-readable error code.
type Code string

const (
	// CodeUnknown represents an unclassified failure.
	CodeUnknown Code = "UNKNOWN"

	// Server responses
	CodeInvalidSelection Code = "INVALID_SELECTION"
	CodeNotYourTurn      Code = "NOT_YOUR_TURN"
	CodeGameNotFound     Code = "GAME_NOT_FOUND"
	CodeRuleConflict     Code = "RULE_CONFLICT"
	CodeTransport        Code = "TRANSPORT"

	// Local rejections, never sent to the server
	CodeEmptySelection Code = "EMPTY_SELECTION"
	CodeFlowBusy       Code = "FLOW_BUSY"
	CodeSuppressed     Code = "SUPPRESSED"
	CodeConnectionLost Code = "CONNECTION_LOST"
	CodeGameEnded      Code = "GAME_ENDED"
	CodeNoInteraction  Code = "NO_INTERACTION"
	CodeNotYourStep    Code = "NOT_YOUR_STEP"

	// Session
	CodeSessionMismatch Code = "SESSION_MISMATCH"

	// Warnings
	CodeSocialDisgrace Code = "SOCIAL_DISGRACE"
)

// Recovery is what the client does after a failure with a given code.
type Recovery string

const (
	// RecoveryNone leaves state as is.
	RecoveryNone Recovery = "none"
	// RecoveryKeepSelection keeps the flow open with its selections.
	RecoveryKeepSelection Recovery = "keep_selection"
	// RecoveryRevert reverts optimistic flow state back to selecting.
	RecoveryRevert Recovery = "revert"
	// RecoveryReturnToLobby drops the session.
	RecoveryReturnToLobby Recovery = "return_to_lobby"
	// RecoveryResync refetches the authoritative snapshot.
	RecoveryResync Recovery = "resync"
	// RecoveryRetry leaves a retry affordance.
	RecoveryRetry Recovery = "retry"
)

// Recovery returns the recovery for the code.
func (c Code) Recovery() Recovery {
	switch c {
	case CodeInvalidSelection:
		return RecoveryKeepSelection
	case CodeNotYourTurn:
		return RecoveryRevert
	case CodeGameNotFound, CodeSessionMismatch:
		return RecoveryReturnToLobby
	case CodeRuleConflict:
		return RecoveryResync
	case CodeTransport, CodeUnknown:
		return RecoveryRetry
	default:
		return RecoveryNone
	}
}

// IsLocal reports whether the code is produced without contacting the server.
func (c Code) IsLocal() bool {
	switch c {
	case CodeEmptySelection, CodeFlowBusy, CodeSuppressed, CodeConnectionLost,
		CodeGameEnded, CodeNoInteraction, CodeNotYourStep:
		return true
	}
	return false
}

// CodeForStatus maps an HTTP status to a code.
func CodeForStatus(status int) Code {
	switch status {
	case http.StatusBadRequest, http.StatusUnprocessableEntity:
		return CodeInvalidSelection
	case http.StatusForbidden:
		return CodeNotYourTurn
	case http.StatusNotFound:
		return CodeGameNotFound
	case http.StatusConflict:
		return CodeRuleConflict
	default:
		return CodeUnknown
	}
}
