// Vibecatalog - Media Catalog Consolidation and Vibe Search
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/vibecatalog

/*
Package api provides the HTTP surface of Vibecatalog.

Routes (all JSON):

	GET  /api/v1/search?q=&type=all|movie|music&page=1&pageSize=12
	GET  /api/v1/trending?type=all&limit=15
	GET  /api/v1/autocomplete?q=
	GET  /api/v1/preview?title=&artist=
	POST /api/v1/admin/reload
	GET  /api/v1/health/live
	GET  /api/v1/health/ready
	GET  /metrics

Successful responses carry the payload directly. Errors use one envelope:

	{"success": false, "error": {"code": "VALIDATION_ERROR", "message": "...", "request_id": "..."}}

Middleware runs in this order: request ID with logging context, real IP,
panic recovery, CORS, then per-IP rate limiting and request metrics on the
/api/v1 routes. The admin route additionally requires a bearer token when
one is configured.
*/
package api
