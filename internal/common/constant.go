package common

// AuthorizationHeaderName carries the bearer token on inbound requests to
// protected routers.
const AuthorizationHeaderName = "Authorization"

// BearerScheme is the only accepted authorization scheme.
const BearerScheme = "Bearer"

// RequestIDHeaderName echoes the per-request correlation id.
const RequestIDHeaderName = "X-Request-Id"
