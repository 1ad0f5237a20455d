// Package migrations holds the database schema applied by cmd/migrate.
package migrations

import _ "embed"

//go:embed migrations.sql
var SQL string
