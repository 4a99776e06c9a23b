package middleware

import (
	"encoding/json"
	"net/http"

	"airport-vms/internal/core/domain"
	"airport-vms/internal/core/ports"
	"airport-vms/pkg/response"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

// AuditLog records successful state-changing requests once the handler has
// run. Routes are matched by their registered pattern.
func AuditLog(auditSvc ports.AuditService) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Next()

		if c.Writer.Status() < 200 || c.Writer.Status() >= 300 {
			return
		}
		switch c.Request.Method {
		case http.MethodGet, http.MethodHead, http.MethodOptions:
			return
		}

		action, resourceType, resourceParam := mapRouteToAction(c.FullPath(), c.Request.Method)
		if action == "" {
			return
		}

		var actorID *uuid.UUID
		if v, exists := c.Get(CtxActorID); exists {
			if id, ok := v.(uuid.UUID); ok {
				actorID = &id
			}
		}

		details, _ := json.Marshal(map[string]interface{}{
			"method":     c.Request.Method,
			"path":       c.Request.URL.Path,
			"status":     c.Writer.Status(),
			"request_id": c.GetString(response.RequestIDKey),
		})

		entry := &domain.AuditLog{
			ActorID:      actorID,
			Action:       action,
			ResourceType: resourceType,
			IPAddress:    c.ClientIP(),
			Details:      string(details),
		}
		if id := c.GetString(CtxResourceID); id != "" {
			entry.ResourceID = id
		} else if resourceParam != "" {
			entry.ResourceID = c.Param(resourceParam)
		}
		auditSvc.Log(c.Request.Context(), entry)
	}
}

func mapRouteToAction(route, method string) (action domain.AuditAction, resourceType, resourceParam string) {
	switch {
	case route == "/api/v1/vendor-applications/submit" && method == http.MethodPost:
		return domain.AuditActionApplicationSubmit, "vendor_application", ""
	case route == "/api/v1/vendor-applications/:id/status" && method == http.MethodPatch:
		return domain.AuditActionApplicationReview, "vendor_application", "id"
	case route == "/api/v1/auth/login" && method == http.MethodPost:
		return domain.AuditActionLogin, "session", ""
	}
	return "", "", ""
}
