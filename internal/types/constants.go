package types

const (
	ContextUserKey    = "user"
	SessionCookieName = "token"
)
