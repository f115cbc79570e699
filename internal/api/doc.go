// Package api hosts the HTTP server, middleware, and REST handlers for the
// site service. Notable routes:
//   - GET /healthz / readyz for Kubernetes probes.
//   - GET /metrics for Prometheus scraping.
//   - GET /blog/{slug} crawler-aware preview or redirect.
//   - GET /api/social-card/{slug} link-preview card document.
//   - POST /api/newsletter and /api/contact form intake.
//   - POST /api/webhooks/... publish and generation triggers.
package api
