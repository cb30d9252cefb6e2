package auth

import (
	"context"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"admissions/internal/account"
)

// SummarySource resolves the current identity summary for an account.
// Backed by the session cache with an identity-store fallback, so guard
// checks always see the post-review status.
type SummarySource interface {
	Summary(ctx context.Context, accountID string) (*account.IdentitySummary, error)
}

// Guard enforces bearer JWT tokens plus role/approval requirements on
// protected routes. This is the authoritative server-side check; any
// client-side gate is only a UX shortcut over it.
type Guard struct {
	SigningKey string
	Issuer     string
	Summaries  SummarySource
	OnDeny     func(reason Reason)
}

// Require returns gin middleware enforcing the requirement. On success the
// verified claims and identity summary are stored on the request context.
func (g *Guard) Require(req Requirement) gin.HandlerFunc {
	return func(c *gin.Context) {
		authz := c.GetHeader("Authorization")
		if authz == "" || !strings.HasPrefix(strings.ToLower(authz), "bearer ") {
			g.abort(c, deny(ReasonUnauthenticated, "missing bearer token"))
			return
		}
		tokenStr := strings.TrimSpace(authz[len("bearer "):])
		claims, err := Parse(tokenStr, g.SigningKey, g.Issuer)
		if err != nil {
			g.abort(c, deny(ReasonUnauthenticated, "invalid token"))
			return
		}

		summary, err := g.Summaries.Summary(c.Request.Context(), claims.Subject)
		if err != nil {
			c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{"success": false, "message": "identity lookup failed"})
			return
		}

		decision := Authorize(&claims, summary, req)
		if !decision.Allowed {
			g.abort(c, decision)
			return
		}

		c.Set("claims", claims)
		c.Set("identity", summary)
		c.Next()
	}
}

// Identity returns the summary stored by Require.
func Identity(c *gin.Context) *account.IdentitySummary {
	v, ok := c.Get("identity")
	if !ok {
		return nil
	}
	summary, _ := v.(*account.IdentitySummary)
	return summary
}

func (g *Guard) abort(c *gin.Context, decision Decision) {
	if g.OnDeny != nil {
		g.OnDeny(decision.Reason)
	}
	status := http.StatusForbidden
	if decision.Reason == ReasonUnauthenticated {
		status = http.StatusUnauthorized
	}
	body := gin.H{"success": false, "error": string(decision.Reason)}
	if decision.Detail != "" {
		body["detail"] = decision.Detail
	}
	c.AbortWithStatusJSON(status, body)
}
