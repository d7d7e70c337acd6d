// Package middleware provides net/http middleware for the demo server.
//
// # OpenTelemetry
//
// OpenTelemetry wraps every request in a server span named after its chi
// route pattern:
//
//	r := chi.NewRouter()
//	r.Use(middleware.OpenTelemetry(middleware.WithTracerName("plop")))
//
// Filter requests that should not be traced:
//
//	middleware.OpenTelemetry(
//	    middleware.WithRequestFilter(func(r *http.Request) bool {
//	        return r.URL.Path != "/healthz"
//	    }),
//	)
//
// # Prometheus
//
// Prometheus counts and times requests by route:
//
//   - plop_http_requests_total
//   - plop_http_request_duration_seconds
//   - plop_http_request_errors_total
//   - plop_http_requests_in_flight
//
//	reg := prometheus.NewRegistry()
//	r.Use(middleware.Prometheus(middleware.WithRegistry(reg)))
//	r.Handle("/metrics", promhttp.HandlerFor(reg, promhttp.HandlerOpts{}))
//
// Both middlewares must be installed on a chi router to see route patterns.
// Outside one, requests are labelled "unmatched".
package middleware
