// Package library persists books, users and loans in SQLite and owns the loan
// lifecycle rules that keep book stock consistent.
//
// The Store opens the database, bootstraps the schema, and exposes record
// accessors for each entity. Loan issuance inserts the loan and decrements the
// book's stock inside one IMMEDIATE transaction guarded by a conditional
// update, so concurrent issuers can never drive stock below zero. Returning a
// loan restores the copy it holds exactly once; a loan that is marked
// unreturned again does not take a new copy.
//
// Inputs use Optional fields so callers can tell an absent field from one that
// was sent as zero or empty. All validation failures surface as *Error values
// classified by kind (not_found, invalid_input, invalid_state); anything else
// returned by the Store is a storage fault.
//
// Schema changes bump schemaVersion in schema.go; existing databases with a
// different version are rejected rather than migrated.
package library
