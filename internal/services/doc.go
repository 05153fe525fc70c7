// Package services contains the business logic layer between the HTTP
// handlers and the domain packages. Each service takes its collaborators
// as interfaces so handlers can be tested against stubs.
package services
