// Package http contains the HTTP transport layer: request decoding and
// validation, handlers, and response rendering. Errors surface as RFC
// 7807 problem details through the shared error handler; business rules
// stay in the services layer.
package http
