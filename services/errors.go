package services

import "errors"

// Shared errors used across services and HTTP mapping.
var (
	ErrNotFound = errors.New("requested resource not found")

	// Validation and business rules
	ErrValidationFailed         = errors.New("validation failed")
	ErrTournamentNameRequired   = errors.New("tournament name is required")
	ErrTournamentDateRequired   = errors.New("tournament start date is required")
	ErrTournamentInvalidFee     = errors.New("tournament entry fee must not be negative")
	ErrTournamentInvalidStatus  = errors.New("invalid tournament status provided")
	ErrVenueNameRequired        = errors.New("venue name is required")
	ErrAlertZipRequired         = errors.New("alert radius requires a zip code")
	ErrSupportSubjectRequired   = errors.New("support subject is required")
	ErrSupportMessageRequired   = errors.New("support message is required")
	ErrRecurringCreationFailed  = errors.New("no tournament of the recurring series could be created")
	ErrOriginUnresolvable       = errors.New("no search origin could be resolved")

	// Conflicts
	ErrTournamentNumberConflict = errors.New("tournament display number already exists")

	// Authentication and authorization
	ErrAuthInvalidCredentials = errors.New("invalid email or password")
	ErrAuthEmailTaken         = errors.New("email is already taken")
	ErrPasswordTooShort       = errors.New("password is too short")
	ErrForbiddenOperation     = errors.New("operation not allowed for the current user")

	// Entity-specific not-found (more context than ErrNotFound)
	ErrUserNotFound           = errors.New("user not found")
	ErrTournamentNotFound     = errors.New("tournament not found")
	ErrVenueNotFound          = errors.New("venue not found")
	ErrAlertNotFound          = errors.New("alert not found")
	ErrSupportMessageNotFound = errors.New("support message not found")
)
