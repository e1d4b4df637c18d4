package middleware

import (
	"github.com/gin-gonic/gin"

	"github.com/bookworm-ai/bookworm/internal/service"
)

// Cookie names for caller identity material.
const (
	IdentityCookie     = "bw_identity"
	SessionTokenCookie = "bw_session_token"
)

const callerKey = "caller"

// Identity extracts the caller's claimed handle and anonymous session token
// from cookies into the request context.
func Identity() gin.HandlerFunc {
	return func(c *gin.Context) {
		caller := service.Caller{}
		if identifier, err := c.Cookie(IdentityCookie); err == nil {
			caller.Identifier = identifier
		}
		if token, err := c.Cookie(SessionTokenCookie); err == nil {
			caller.AnonymousToken = token
		}
		c.Set(callerKey, caller)
		c.Next()
	}
}

// CallerFrom returns the caller attached to the request.
func CallerFrom(c *gin.Context) service.Caller {
	if v, ok := c.Get(callerKey); ok {
		if caller, ok := v.(service.Caller); ok {
			return caller
		}
	}
	return service.Caller{}
}
