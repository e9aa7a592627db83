// Package db ships the SQL migrations of the postgres archive backend.
package db

import "embed"

// Migrations holds the goose files under migrations/.
//
//go:embed migrations/*.sql
var Migrations embed.FS

// MigrationsDir is the directory inside Migrations that goose reads.
const MigrationsDir = "migrations"
