package service

import "errors"

var (
	// ErrPermissionDenied indicates the caller lacks the required workspace role.
	ErrPermissionDenied = errors.New("permission denied")
	// ErrNotFound indicates a referenced entity does not exist or is not visible.
	ErrNotFound = errors.New("not found")
	// ErrComplianceViolation indicates a card move is blocked by an incomplete
	// required checklist and the caller lacks override rights.
	ErrComplianceViolation = errors.New("checklist incomplete - complete all mandatory tasks before moving")
	// ErrVersionNotDraft indicates a structural edit was attempted on a
	// published or archived template version.
	ErrVersionNotDraft = errors.New("template version is not a draft")
	// ErrBoardLocked indicates a structural change was attempted on a board
	// instantiated from a process template.
	ErrBoardLocked = errors.New("board structure is locked")
	// ErrInvalidInput indicates missing or malformed input.
	ErrInvalidInput = errors.New("invalid input")
	// ErrInviteExpired indicates the invite token is past its expiry.
	ErrInviteExpired = errors.New("invite expired")
)
