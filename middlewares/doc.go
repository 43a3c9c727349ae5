// Package middlewares provides pipeline and HTTP middlewares for Pionia applications.
//
// Pipeline middlewares implement pionia.Middleware: OnRequest runs before
// authentication, OnResponse runs after the action produced its envelope.
// Returning an error aborts the request with an error envelope.
//
// # Request ID
//
// RequestID reuses an upstream X-Request-ID (or X-Correlation-ID) or generates a UUID,
// stores it in the request context and echoes it in the response header.
// Use RequestIDExtractor with WithLogger to add request_id to every log entry:
//
//	app := pionia.New(
//	    pionia.WithLogger("api", middlewares.RequestIDExtractor(), pionia.TargetExtractor()),
//	    pionia.WithMiddleware(middlewares.RequestID()),
//	)
//
// # Timeout
//
// Timeout attaches a deadline to the request context. Actions and storage see it
// through r.Context(); a request finishing past the deadline gets a server-error
// envelope whose cause is a TimeoutError.
//
//	pionia.WithMiddleware(middlewares.Timeout(5*time.Second))
//
// # Rate limit
//
// RateLimit keeps a token bucket per caller (client IP or a configured key source).
// Rejected requests get code 429 and a Retry-After header.
//
//	pionia.WithMiddleware(middlewares.RateLimit(10, middlewares.WithRateLimitBurst(20)))
//
// # Sanitize
//
// Sanitize strips HTML from string payload values with bluemonday.
// WithSafeHTML keeps basic formatting tags.
//
//	pionia.WithMiddleware(middlewares.Sanitize(middlewares.WithSanitizeFields("title", "body")))
//
// # Metrics and access log
//
// NewMetrics records Prometheus counters and histograms per service, action and code;
// its Handler is mounted next to the API. AccessLog writes one entry per request.
//
//	m := middlewares.NewMetrics()
//	app := pionia.New(
//	    pionia.WithMiddleware(m, middlewares.AccessLog()),
//	    pionia.WithHandler("/metrics", m.Handler()),
//	)
//
// # HTTP middlewares
//
// CORS and Recover wrap the router itself, so they also cover health and metrics
// endpoints. CORS answers preflight requests with 204; Recover turns panics in mounted
// handlers into a server-error envelope.
//
//	pionia.WithHTTPMiddleware(
//	    middlewares.CORS(middlewares.WithAllowOrigins("https://app.example.com")),
//	    middlewares.Recover(middlewares.WithRecoverLogger(log)),
//	)
//
// # Recommended order
//
//	pionia.WithMiddleware(
//	    middlewares.RequestID(), // first: every later log entry carries the ID
//	    m, // from NewMetrics
//	    middlewares.AccessLog(),
//	    middlewares.RateLimit(10),
//	    middlewares.Timeout(5*time.Second),
//	    middlewares.Sanitize(),
//	)
package middlewares
