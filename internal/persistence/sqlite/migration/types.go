package migration

// Migration is one schema version: an ordered list of SQL statements applied
// atomically.
type Migration struct {
	Version    int
	Name       string
	Statements []string
}
