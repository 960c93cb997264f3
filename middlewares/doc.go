// Package middlewares provides net/http middleware shared by the service routes.
//
// RequestID assigns a unique ID to each request for tracing. It reuses an
// upstream X-Request-ID or X-Correlation-ID header, stores the ID where chi's
// middleware.GetReqID finds it and echoes it in the response.
//
// Recover turns a panic into a logged error and a 500 response.
//
// Order matters: RequestID first so the panic log carries the request_id.
//
//	r := chi.NewRouter()
//	r.Use(
//	    middlewares.RequestID(),
//	    middlewares.Recover(middlewares.WithRecoverLogger(log)),
//	)
package middlewares
