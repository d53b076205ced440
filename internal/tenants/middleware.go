package tenants

import (
	"net/http"

	"github.com/luizpibo/WorkHub-AI/internal/tenants/domain"
	"github.com/luizpibo/WorkHub-AI/internal/tenants/service"
	"github.com/luizpibo/WorkHub-AI/platform/config"
	"github.com/luizpibo/WorkHub-AI/platform/httpkit"

	"github.com/gin-gonic/gin"
)

const (
	// SlugHeader and SecretHeader carry the tenant credential pair on
	// chat-facing requests in multi-tenant mode.
	SlugHeader   = "X-Tenant-Slug"
	SecretHeader = "X-Tenant-Secret"

	// contextTenantKey is the gin context key holding the resolved tenant.
	contextTenantKey = "tenant"
)

// RequireTenant returns middleware that resolves the request to a tenant and
// aborts otherwise. In multi-tenant mode the credential headers are required;
// in single-tenant mode every request resolves to the configured default
// tenant and no headers are read. Handlers behind it can rely on FromContext
// always returning a tenant.
func RequireTenant(svc *service.Service, cfg config.TenantModeConfig) gin.HandlerFunc {
	return func(c *gin.Context) {
		var (
			tenant domain.Tenant
			err    error
		)
		if cfg.GetMultiTenantEnabled() {
			tenant, err = svc.Authenticate(c.Request.Context(), c.GetHeader(SlugHeader), c.GetHeader(SecretHeader))
		} else {
			tenant, err = svc.ResolveDefault(c.Request.Context(), cfg.GetDefaultTenantSlug())
		}
		if err != nil {
			httpkit.HandleError(c, err)
			c.Abort()
			return
		}

		c.Set(contextTenantKey, tenant)
		c.Next()
	}
}

// FromContext returns the tenant resolved by RequireTenant.
func FromContext(c *gin.Context) (domain.Tenant, bool) {
	value, ok := c.Get(contextTenantKey)
	if !ok {
		return domain.Tenant{}, false
	}
	tenant, ok := value.(domain.Tenant)
	return tenant, ok
}

// MustFromContext returns the resolved tenant or aborts with 401. A missing
// tenant here means a route was mounted without RequireTenant.
func MustFromContext(c *gin.Context) (domain.Tenant, bool) {
	tenant, ok := FromContext(c)
	if !ok {
		c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
		return domain.Tenant{}, false
	}
	return tenant, true
}
