// Package middleware provides gin middleware for authentication and logging.
package middleware

import (
	"errors"
	"fmt"
	"net/http"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/require"

	"github.com/fintru/wallet-ledger/pkg/jsonresponse"
	"github.com/fintru/wallet-ledger/pkg/tokenpkg"
)

// Authorization header constants.
const (
	AuthHeaderKey  = "authorization"
	AuthTypeBearer = "bearer"
	AuthPayloadKey = "authorization_payload"
)

// AddAuthorization sets the request's authorization header to a freshly
// issued token. Test helper shared by the delivery packages.
func AddAuthorization(
	t *testing.T,
	request *http.Request,
	tokenMaker tokenpkg.Maker,
	authType string,
	username string,
	duration time.Duration,
) {
	accessToken, _, err := tokenMaker.CreateToken(username, duration)
	require.NoError(t, err)

	request.Header.Set(AuthHeaderKey, fmt.Sprintf("%s %s", authType, accessToken))
}

// Auth returns a gin middleware that verifies the bearer token and stores the
// authenticated payload in the request context. The ledger core trusts the
// resulting username unconditionally; issuing tokens is the identity
// provider's concern.
func Auth(tokenMaker tokenpkg.Maker) gin.HandlerFunc {
	return func(gctx *gin.Context) {
		authHeader := gctx.GetHeader(AuthHeaderKey)
		if len(authHeader) == 0 {
			err := errors.New("authorization header is not provided")
			gctx.AbortWithStatusJSON(http.StatusUnauthorized, jsonresponse.Error(err))

			return
		}

		fields := strings.Fields(authHeader)
		if len(fields) < 2 {
			err := errors.New("invalid authorization header format")
			gctx.AbortWithStatusJSON(http.StatusUnauthorized, jsonresponse.Error(err))

			return
		}

		authType := strings.ToLower(fields[0])
		if authType != AuthTypeBearer {
			err := fmt.Errorf("unsupported authorization type %s", authType)
			gctx.AbortWithStatusJSON(http.StatusUnauthorized, jsonresponse.Error(err))

			return
		}

		accessToken := fields[1]

		payload, err := tokenMaker.VerifyToken(accessToken)
		if err != nil {
			gctx.AbortWithStatusJSON(http.StatusUnauthorized, jsonresponse.Error(err))
			return
		}

		gctx.Set(AuthPayloadKey, payload)
		gctx.Next()
	}
}
