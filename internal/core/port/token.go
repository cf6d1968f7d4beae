package port

import "time"

// TokenIssuer mints a bearer token for the given subject with the supplied
// time to live.
type TokenIssuer interface {
	Issue(subject string, ttl time.Duration) (string, error)
}

// TokenParser validates a bearer token and returns its subject.
type TokenParser interface {
	Parse(token string) (string, error)
}
