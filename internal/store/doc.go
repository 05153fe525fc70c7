// Package store persists user license state, payment transactions and
// pending orders in a key-value document store. The production backend is
// Cloud Firestore; an in-memory implementation serves tests and
// development runs without a configured project.
package store
