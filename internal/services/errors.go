package services

import (
	"errors"
	"fmt"
)

// Error categories. Every service error wraps exactly one of these so the
// routing layer can map it to a status code with errors.Is.
var (
	ErrUnauthenticated  = errors.New("authentication failed")
	ErrPermissionDenied = errors.New("permission denied")
	ErrNotFound         = errors.New("not found")
	ErrConflict         = errors.New("conflict")
	ErrInvalidInput     = errors.New("invalid input")
)

var (
	ErrInvalidCredentials = fmt.Errorf("incorrect credentials: %w", ErrUnauthenticated)
	ErrInvalidToken       = fmt.Errorf("could not validate credentials: %w", ErrUnauthenticated)

	ErrInactiveUser    = fmt.Errorf("inactive user: %w", ErrInvalidInput)
	ErrWrongPassword   = fmt.Errorf("current password is incorrect: %w", ErrInvalidInput)
	ErrInvalidLayout   = fmt.Errorf("layout must be a JSON object: %w", ErrInvalidInput)
	ErrNewsletterAdmin = fmt.Errorf("admin of this newsletter required: %w", ErrPermissionDenied)
	ErrGroupAdmin      = fmt.Errorf("admin of this group required: %w", ErrPermissionDenied)
	ErrAdminRequired   = fmt.Errorf("admin access required: %w", ErrPermissionDenied)
	ErrSuperAdmin      = fmt.Errorf("super admin access required: %w", ErrPermissionDenied)
	ErrNotOwner        = fmt.Errorf("forbidden: %w", ErrPermissionDenied)

	ErrUserNotFound         = fmt.Errorf("user %w", ErrNotFound)
	ErrGroupNotFound        = fmt.Errorf("group %w", ErrNotFound)
	ErrNewsletterNotFound   = fmt.Errorf("newsletter %w", ErrNotFound)
	ErrContributionNotFound = fmt.Errorf("contribution %w", ErrNotFound)
	ErrTemplateNotFound     = fmt.Errorf("template %w", ErrNotFound)
	ErrMemberNotFound       = fmt.Errorf("membership %w", ErrNotFound)
	ErrGrantNotFound        = fmt.Errorf("newsletter admin grant %w", ErrNotFound)

	ErrEmailTaken          = fmt.Errorf("email already registered: %w", ErrConflict)
	ErrTrigramTaken        = fmt.Errorf("trigram already registered: %w", ErrConflict)
	ErrGroupExists         = fmt.Errorf("group already exists: %w", ErrConflict)
	ErrGroupHasNewsletters = fmt.Errorf("group still owns newsletters: %w", ErrConflict)
	ErrAlreadyMember       = fmt.Errorf("user already in group: %w", ErrConflict)
	ErrSuperAdminExists    = fmt.Errorf("admin already exists: %w", ErrConflict)
	ErrTemplateExists      = fmt.Errorf("template already exists: %w", ErrConflict)
	ErrGrantExists         = fmt.Errorf("user is already a newsletter admin: %w", ErrConflict)
	ErrDuplicateContrib    = fmt.Errorf("a contribution of this type already exists: %w", ErrConflict)
)
