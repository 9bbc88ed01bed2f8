// Package http implements the HTTP handlers of the dashboard: the
// server-rendered page, the JSON API, SVG charts, exports and health checks.
//
// Handlers stay thin. They parse and validate the request, call a service
// interface and format the response. Failures go through the centralized
// errors.ErrorHandler and are rendered as RFC 7807 problem details:
//
//	{
//	    "type": "/errors/data/unavailable",
//	    "title": "Service Unavailable",
//	    "status": 503,
//	    "detail": "'경제활동_통합.csv' 파일을 찾을 수 없습니다. 파일 경로를 확인해주세요.",
//	    "instance": "/api/dashboard"
//	}
//
// Chart and data responses carry the table fingerprint as ETag and answer
// If-None-Match with 304.
package http
