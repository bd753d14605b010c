// Package middleware holds the gin middleware chain: authentication, CORS,
// request logging, rate limiting, and metrics.
package middleware

import (
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/buildmind/sitetrack/internal/infrastructure/auth"
	"github.com/buildmind/sitetrack/pkg/errors"
	"github.com/buildmind/sitetrack/pkg/types/common"
)

const principalKey = "sitetrack.principal"

// Auth verifies the bearer token and stores the principal on the gin
// context. Requests without a valid token are rejected with 401.
func Auth(tokens *auth.TokenManager) gin.HandlerFunc {
	return func(c *gin.Context) {
		header := c.GetHeader("Authorization")
		if header == "" {
			abortWithError(c, errors.Unauthorized("missing authorization header"))
			return
		}
		raw, ok := strings.CutPrefix(header, "Bearer ")
		if !ok {
			abortWithError(c, errors.Unauthorized("authorization header is not a bearer token"))
			return
		}

		principal, err := tokens.Verify(raw)
		if err != nil {
			abortWithError(c, err)
			return
		}

		c.Set(principalKey, principal)
		c.Next()
	}
}

// Principal returns the authenticated principal stored by Auth. It panics if
// called on a route outside the authenticated group.
func Principal(c *gin.Context) *auth.Principal {
	return c.MustGet(principalKey).(*auth.Principal)
}

func abortWithError(c *gin.Context, err error) {
	c.AbortWithStatusJSON(errors.HTTPStatus(err), common.APIResponse[any]{
		Success: false,
		Error: &common.ErrorDetail{
			Code:    string(errors.GetCode(err)),
			Message: errors.GetMessage(err),
		},
	})
}
