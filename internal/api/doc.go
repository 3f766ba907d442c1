// Package api handles incoming HTTP requests, request validation, and
// response formatting. It acts as an adapter between external clients and
// the internal application services, translating HTTP concerns to stage
// runs and run lookups and mapping internal errors to sanitized responses.
package api
