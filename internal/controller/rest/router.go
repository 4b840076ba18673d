package rest

import (
	"net/http"

	"ticketrelay/internal/controller/apperror"
	"ticketrelay/internal/controller/rest/handlers"
	"ticketrelay/pkg/health"
	"ticketrelay/pkg/metrics"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const indexPage = `<!DOCTYPE html>
<html>
<head><title>Ticket Relay</title></head>
<body>
<h1>Ticket Relay</h1>
<p>Relay for signed ticket-attach webhooks. See <code>POST {mount}/attach-ticket</code>.</p>
</body>
</html>`

type Router struct {
	mount          string
	adminUser      string
	adminPass      string
	ticket         *handlers.TicketHandler
	admin          *handlers.AdminHandler
	healthRegistry *health.Registry
}

func NewRouter(mount, adminUser, adminPass string, ticket *handlers.TicketHandler, admin *handlers.AdminHandler, healthRegistry *health.Registry) *Router {
	return &Router{
		mount:          mount,
		adminUser:      adminUser,
		adminPass:      adminPass,
		ticket:         ticket,
		admin:          admin,
		healthRegistry: healthRegistry,
	}
}

func (r *Router) SetUp(engine *gin.Engine) {
	engine.GET("/healthz", func(c *gin.Context) {
		c.String(http.StatusOK, "ok")
	})
	engine.GET("/", func(c *gin.Context) {
		c.Data(http.StatusOK, "text/html; charset=utf-8", []byte(indexPage))
	})

	// Health checks (Kubernetes-style)
	engine.GET("/health/live", health.LivenessHandler())
	engine.GET("/health/ready", health.ReadinessHandler(r.healthRegistry, health.DefaultTimeout))

	engine.GET("/metrics", gin.WrapH(promhttp.HandlerFor(metrics.Registry, promhttp.HandlerOpts{})))

	// The relay mount. The attach route is POST-only; every other verb
	// gets the structured 405 via NoMethod below.
	mounted := engine.Group(r.mount)
	mounted.POST("/attach-ticket", r.ticket.Attach)

	admin := engine.Group("/admin", gin.BasicAuth(gin.Accounts{r.adminUser: r.adminPass}))
	admin.GET("/ui/tickets", r.admin.Tickets)

	engine.HandleMethodNotAllowed = true
	engine.NoMethod(r.ticket.MethodNotAllowed)
	engine.NoRoute(func(c *gin.Context) {
		c.JSON(http.StatusNotFound, gin.H{
			"ok":    false,
			"error": apperror.CodeNotFound,
			"path":  c.Request.URL.Path,
		})
	})
}
