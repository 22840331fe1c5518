package middleware

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/yungbote/storygrid-backend/internal/auth"
	"github.com/yungbote/storygrid-backend/internal/platform/ctxutil"
	"github.com/yungbote/storygrid-backend/internal/platform/logger"
)

// DevUserID is the caller used when authentication is disabled and no
// X-User-Id header is sent.
var DevUserID = uuid.MustParse("00000000-0000-4000-8000-000000000001")

type AuthMiddleware struct {
	log      *logger.Logger
	verifier *auth.Verifier
	disabled bool
}

func NewAuthMiddleware(log *logger.Logger, verifier *auth.Verifier, disabled bool) *AuthMiddleware {
	return &AuthMiddleware{
		log:      log.With("middleware", "AuthMiddleware"),
		verifier: verifier,
		disabled: disabled,
	}
}

func (am *AuthMiddleware) RequireAuth() gin.HandlerFunc {
	return func(c *gin.Context) {
		if am.disabled || am.verifier == nil {
			am.attach(c, devIdentity(c))
			c.Next()
			return
		}
		tokenString := extractTokenFromAll(c)
		if tokenString == "" {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{
				"error": gin.H{"message": "missing or invalid token", "code": "unauthorized"},
			})
			return
		}
		id, err := am.verifier.Verify(tokenString)
		if err != nil {
			am.log.Debug("token rejected", "error", err)
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{
				"error": gin.H{"message": err.Error(), "code": "unauthorized"},
			})
			return
		}
		am.attach(c, id)
		c.Next()
	}
}

func (am *AuthMiddleware) attach(c *gin.Context, id *auth.Identity) {
	ctx := ctxutil.WithRequestData(c.Request.Context(), &ctxutil.RequestData{
		UserID:    id.UserID,
		SessionID: id.SessionID,
	})
	c.Request = c.Request.WithContext(ctx)
}

func devIdentity(c *gin.Context) *auth.Identity {
	id := &auth.Identity{UserID: DevUserID}
	if raw := strings.TrimSpace(c.GetHeader("X-User-Id")); raw != "" {
		if parsed, err := uuid.Parse(raw); err == nil && parsed != uuid.Nil {
			id.UserID = parsed
		}
	}
	return id
}

// extractTokenFromAll also accepts ?token= because EventSource cannot set headers.
func extractTokenFromAll(c *gin.Context) string {
	if qToken := c.Query("token"); qToken != "" {
		return qToken
	}
	authHeader := c.GetHeader("Authorization")
	if len(authHeader) > 7 && strings.EqualFold(authHeader[:7], "Bearer ") {
		return strings.TrimSpace(authHeader[7:])
	}
	return ""
}
