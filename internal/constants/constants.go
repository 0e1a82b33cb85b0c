package constants

import "time"

// Context and session keys
const (
	ContextKeyPrincipal = "principal"
	SessionCookieName   = "field_session"
	SessionKeyToken     = "session_token"
)

// Credential rules
const (
	MinPasswordLength = 6
	MaxUsernameLength = 50
	MaxTeamLength     = 50
)

// Pagination
const (
	MinPageSize     = 1
	DefaultPageSize = 20
	MaxPageSize     = 100
)

// Notifications
const (
	NotificationListLimit = 50
)

// Photos
const (
	SignedURLTTL       = time.Hour
	PhotoKeyRandomSize = 12
)
