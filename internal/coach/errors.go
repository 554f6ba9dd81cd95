package coach

import "errors"

// Sentinel errors for request validation. Validation failures happen before
// any store or model call.
var (
	// ErrEmptyMessage indicates the request carried no message text.
	ErrEmptyMessage = errors.New("message is required")

	// ErrEmptyUserID indicates a missing caller identity.
	ErrEmptyUserID = errors.New("user id is required")

	// ErrEmptyLessonID indicates a summary request without a lesson id.
	ErrEmptyLessonID = errors.New("lesson id is required")
)

// Constructor errors.
var (
	ErrNilGenkit  = errors.New("genkit instance is required")
	ErrNilCatalog = errors.New("catalog is required")
	ErrNilHistory = errors.New("history store is required")
)
