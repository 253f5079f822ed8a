package provider

import "errors"

// Sentinel errors for provider operations.
var (
	// ErrRateLimit indicates the service returned a rate limit response.
	ErrRateLimit = errors.New("provider rate limited")

	// ErrProviderDown indicates the service is unreachable or failing.
	ErrProviderDown = errors.New("provider unavailable")

	// ErrAuthentication indicates the API credential was rejected.
	ErrAuthentication = errors.New("provider authentication failed")
)

// IsTransport reports whether the error is a transport-level failure
// (network, auth, rate limit, malformed response) rather than a caller
// mistake. The completion adapter converts all of these into a
// non-throwing result.
func IsTransport(err error) bool {
	return errors.Is(err, ErrRateLimit) ||
		errors.Is(err, ErrProviderDown) ||
		errors.Is(err, ErrAuthentication)
}
