package common

// Header and scheme names used by the HTTP layer.
const (
	AuthorizationHeaderName = "Authorization"
	BearerScheme            = "Bearer"
	BasicScheme             = "Basic"
	RequestIDHeaderName     = "X-Request-ID"
)

// ScopeClaim is the JWT claim carrying space-separated authorities.
const ScopeClaim = "scope"
