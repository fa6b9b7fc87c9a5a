package middleware

import (
	"net/http"
	"strings"

	"github.com/casdoor/casdoor-go-sdk/casdoorsdk"
	"github.com/frosttechequities/migratio-assessment-service/internal/config"
	"github.com/frosttechequities/migratio-assessment-service/internal/utils"
	"github.com/gin-gonic/gin"
)

// Auth verifies Casdoor-issued bearer tokens. Quiz endpoints run with
// optional auth so anonymous users can take the quiz; profile and admin
// endpoints require a verified user.
type Auth struct {
	logger  utils.Logger
	enabled bool
}

func NewAuth(cfg *config.Config, logger utils.Logger) *Auth {
	enabled := cfg.CasdoorEndpoint != ""
	if enabled {
		casdoorsdk.InitConfig(
			cfg.CasdoorEndpoint,
			cfg.CasdoorClientID,
			cfg.CasdoorClientSecret,
			cfg.CasdoorCertificate,
			cfg.CasdoorOrganization,
			cfg.CasdoorApplication,
		)
	} else {
		logger.Warn("Casdoor not configured, authentication disabled")
	}
	return &Auth{
		logger:  logger,
		enabled: enabled,
	}
}

// Optional resolves the caller's identity when a valid token is present but
// lets unauthenticated requests through.
func (a *Auth) Optional() gin.HandlerFunc {
	return func(c *gin.Context) {
		if userID := a.resolveUser(c); userID != "" {
			c.Set("user_id", userID)
		}
		c.Next()
	}
}

// Required rejects requests without a verified identity.
func (a *Auth) Required() gin.HandlerFunc {
	return func(c *gin.Context) {
		userID := a.resolveUser(c)
		if userID == "" {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{
				"message": "authentication required",
			})
			return
		}
		c.Set("user_id", userID)
		c.Next()
	}
}

func (a *Auth) resolveUser(c *gin.Context) string {
	if !a.enabled {
		// Development fallback: trust the header so local runs work without
		// a Casdoor deployment.
		return c.GetHeader("X-User-ID")
	}

	header := c.GetHeader("Authorization")
	if header == "" {
		return ""
	}
	token := strings.TrimPrefix(header, "Bearer ")
	if token == header || token == "" {
		return ""
	}

	claims, err := casdoorsdk.ParseJwtToken(token)
	if err != nil {
		a.logger.Warn("Token verification failed", "error", err)
		return ""
	}
	return claims.User.Id
}
