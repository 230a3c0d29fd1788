package middleware

import "expvar"

const (
	reasonMissingToken = "missing_token"
	reasonInvalidToken = "invalid_token"
	reasonTokenExpired = "token_expired"
	reasonUserNotFound = "user_not_found"
	reasonForbidden    = "forbidden"
)

// FailureReasons lists every key of the auth_failures map.
var FailureReasons = []string{
	reasonMissingToken,
	reasonInvalidToken,
	reasonTokenExpired,
	reasonUserNotFound,
	reasonForbidden,
}

// authFailures counts rejected requests by reason.
var authFailures = expvar.NewMap("auth_failures")

// AuthFailures returns the current count for reason.
func AuthFailures(reason string) int64 {
	if v, ok := authFailures.Get(reason).(*expvar.Int); ok {
		return v.Value()
	}
	return 0
}
