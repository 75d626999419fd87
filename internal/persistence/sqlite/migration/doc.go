// Package migration applies ordered, embedded SQL migrations to a SQLite
// database.
//
// Migrations are declared in code as version-ordered statement lists. The
// Manager records applied versions in a schema_migrations table and applies
// only pending migrations, each inside its own transaction, so a failed
// statement leaves the schema at the previous version.
package migration
