// Package httptransport exposes the audit, compliance and DSR services on the
// admin HTTP surface. Every JSON response uses the httputil envelope.
package httptransport

import (
	"log/slog"
	"net/http"
	"net/netip"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"custodian/internal/platform/health"
	"custodian/pkg/platform/middleware/admin"
	"custodian/pkg/platform/middleware/metadata"
	request "custodian/pkg/platform/middleware/request"
	"custodian/pkg/platform/validation"
)

const requestTimeout = 30 * time.Second

// RouterConfig selects what the router mounts. Nil handlers are skipped.
type RouterConfig struct {
	Health     *health.Handler
	Audit      *AuditHandler
	Compliance *ComplianceHandler
	DSR        *DSRHandler
	AdminToken string
	// TrustedProxies may report the client address in X-Forwarded-For.
	TrustedProxies []netip.Prefix
}

// NewRouter wires the probe endpoints and the admin API with middleware.
// Probes and /metrics stay outside the admin token guard.
func NewRouter(cfg RouterConfig, logger *slog.Logger) http.Handler {
	r := chi.NewRouter()

	r.Use(request.Recovery(logger))
	r.Use(request.RequestID)
	r.Use(request.Logger(logger))
	r.Use(metadata.NewMiddleware(&metadata.Config{TrustedProxies: cfg.TrustedProxies}).Handler)

	if cfg.Health != nil {
		cfg.Health.Register(r)
	}
	r.Handle("/metrics", promhttp.Handler())

	r.Group(func(r chi.Router) {
		r.Use(request.Timeout(requestTimeout))
		r.Use(request.BodyLimit(validation.MaxBodySize))
		r.Use(request.ContentTypeJSON)
		r.Use(admin.RequireAdminToken(cfg.AdminToken, logger))

		if cfg.Audit != nil {
			cfg.Audit.Register(r)
		}
		if cfg.Compliance != nil {
			cfg.Compliance.Register(r)
		}
		if cfg.DSR != nil {
			cfg.DSR.Register(r)
		}
	})
	return r
}
