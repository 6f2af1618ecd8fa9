package domain

// Caller is the identity a request acts under. The transport layer builds it
// from the session token; the core only ever looks at this struct, never at
// headers or cookies.
type Caller struct {
	Username      string
	SessionID     string
	Authenticated bool
}

// Anonymous is the caller identity for requests without valid credentials.
var Anonymous = Caller{}

// CanWrite reports whether the caller may create, update or delete resources.
// There is a single authenticated principal; any authenticated caller has
// full write access.
func (c Caller) CanWrite() bool {
	return c.Authenticated
}

// Session is a persisted login session. Tokens are only honored while their
// session row exists, so logout revokes immediately and sessions survive
// process restarts.
type Session struct {
	ID        string
	Username  string
	CreatedAt int64
	ExpiresAt int64
}
