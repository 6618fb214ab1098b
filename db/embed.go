// Package db embeds the database schema applied at startup.
package db

import _ "embed"

// Schema holds the DDL for the orders collection. Statements are idempotent
// so applying the schema on every start is safe.
//
//go:embed migrations/001_schema.sql
var Schema string
