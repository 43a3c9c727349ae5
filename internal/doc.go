// Package internal implements the request pipeline behind the pionia package.
//
// This package is internal and should not be used directly. Import
// "github.com/dmitrymomot/pionia" instead, which re-exports the public API.
//
// # Pipeline
//
// Every POST to /api/<version>/ goes through the same stages:
//
//	Request  parse the payload once (JSON, multipart, form or query)
//	MiddlewareChain.Handle(req, nil)   request phase
//	AuthChain.Handle(req)              first backend with a user wins
//	Dispatcher.Process(req)            guards, then the action
//	MiddlewareChain.Handle(req, resp)  response phase
//	Response.Write                     always HTTP 200
//
// Errors at any stage become an envelope {code, message, data, extra}. Pipeline
// errors (*Error) carry a Kind that ErrorCodes maps to the envelope code; any
// other error is reported with the server code.
//
// # Services
//
// A Switch maps service names to a *Service, and a Service maps action names to
// ActionFunc. Actions are registered explicitly; "list" and "listAction" name the
// same action.
//
//	sw := internal.NewSwitch("v1").Register("articles", internal.NewService(
//	    internal.WithAction("publish", publish),
//	    internal.ActionPermissions("publish", "articles.publish"),
//	))
//
// # Runtime
//
// App.Run starts the HTTP server with graceful shutdown on SIGINT/SIGTERM, running
// startup hooks before listening and shutdown hooks after the server drains.
package internal
