// Package http serves a load-deflection series as a read-only JSON API.
//
// Handlers are thin: they parse the request, call the series and render the
// result with go-chi/render. Every failure goes through the shared
// errors.ErrorHandler and reaches the client as RFC 7807 problem details:
//
//	{
//	    "type": "/errors/interpolation/domain",
//	    "title": "Bad Request",
//	    "status": 400,
//	    "detail": "time-at-force: 12 outside interpolation range [0, 10]",
//	    "instance": "/api/series/interpolate/time-at-force",
//	    "details": {"x": 12, "lo": 0, "hi": 10}
//	}
//
// Routes mounted under /api/series:
//
//	GET /summary                 scalar results
//	GET /canonical               canonical series and its segment lengths
//	GET /resampled               fixed-size resampled series
//	GET /grid                    interpolators evaluated on uniform grids
//	GET /interpolate/{name}?x=   one named interpolator at one or more x
package http
