package constants

// Session and context keys
const (
	SessionCookieName = "taskr_session"
	ContextKeyUserID  = "user_id"
	ContextKeyUser    = "user"
	ContextKeyTask    = "task"
	ContextRequestID  = "request_id"
	HeaderRequestID   = "X-Request-ID"
)

// Pagination
const (
	MinPageSize     = 1
	DefaultPageSize = 20
	MaxPageSize     = 100
)

// Field limits
const (
	MaxTaskNameLength            = 300
	MaxTaskDescriptionLength     = 2000
	MaxCategoryNameLength        = 100
	MaxCategoryDescriptionLength = 300
	MaxEventDescriptionLength    = 2000
	MinPasswordLength            = 8
	MaxAIGeneratedTasks          = 20
)

// DefaultCategoryName is seeded on migration so a fresh install can accept tasks.
const DefaultCategoryName = "General"

// TokenAuthScheme is the Authorization header scheme for API tokens.
const TokenAuthScheme = "Token"
