// Package models defines the data shared between storage, the page model
// and the RPC layer.
//
// A FormLayout describes which inputs a "new transaction" form has. It is
// the only thing persisted: field values live in the page model for the
// lifetime of a click and are never stored.
package models
