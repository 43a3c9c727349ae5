// Package pionia is a request-processing framework for moonlight-style APIs:
// a single endpoint per API version receives a payload naming a service and
// an action, and every answer is an HTTP 200 envelope.
//
// # Quick Start
//
// Register services on a switch, mount the switch on an App and run it:
//
//	articles := generics.New(generics.Config{Table: "article", Limit: 10},
//	    porm.Single(porm.New(db.OpenDB(pool))),
//	)
//
//	v1 := pionia.NewSwitch("v1").
//	    Register("articles", articles.Service(generics.All...))
//
//	app := pionia.New(
//	    pionia.WithSwitch(v1),
//	    pionia.WithMiddleware(middlewares.RequestID()),
//	    pionia.WithAuthBackend(backends.NewJWT(secret)),
//	)
//
//	if err := app.Run(":8080"); err != nil {
//	    log.Fatal(err)
//	}
//
// A client then posts to /api/v1/:
//
//	{"service": "articles", "action": "list", "pagination": {"limit": 10, "offset": 0}}
//
// # Envelope
//
// Every dispatched request answers HTTP 200 with:
//
//	{"code": 0, "message": null, "data": ..., "extra": ...}
//
// A non-zero code signals a failure. Codes come from [ErrorCodes] and can be
// changed with [WithErrorCodes].
//
// # Pipeline
//
// Each request runs the same stages:
//
//  1. Request phase of every [Middleware], in registration order.
//  2. The [AuthChain]: backends are tried in order until one attaches an identity.
//  3. The [Dispatcher]: service lookup, access guards, then the action.
//  4. Response phase of every middleware, in registration order.
//
// Middlewares and backends can be limited to some services by implementing
// [ServiceLimiter]. Transport concerns such as CORS and panic recovery are
// plain net/http middlewares added with [WithHTTPMiddleware].
//
// # Services
//
// A [Service] maps action names to [ActionFunc]s and carries access rules:
//
//	svc := pionia.NewService(
//	    pionia.WithAction("me", func(r *pionia.Request) (*pionia.Response, error) {
//	        return pionia.Success(r.Auth().User), nil
//	    }),
//	    pionia.RequireAuth(),
//	)
//
// Actions return [Error]s built with [ErrClient], [ErrNotFound],
// [ErrUnauthenticated], [ErrUnauthorized] or [ErrServer]; the dispatcher turns
// them into failure envelopes.
//
// # Health Checks
//
// [WithHealthChecks] mounts /health/live and /health/ready. Unlike the API,
// health endpoints answer with real HTTP statuses.
package pionia
