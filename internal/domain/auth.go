package domain

// TokenVerifier verifies a bearer token and returns the authenticated user
// ID. Used to satisfy an event's login requirement; issuing tokens is the
// identity provider's job, not this service's.
type TokenVerifier interface {
	Verify(token string) (userID string, err error)
}

// TokenHasher hashes registration access tokens before storage and compares
// presented tokens against a stored hash.
type TokenHasher interface {
	Hash(token string) (string, error)
	Compare(hash, token string) error
}
