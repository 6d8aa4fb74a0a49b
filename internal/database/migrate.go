package database

import (
	"context"
	"database/sql"
	_ "embed"
	"fmt"
	"strings"
)

//go:embed schema.sql
var mysqlSchema string

// Migrate creates any missing table of the MySQL schema.  Every statement is
// idempotent so it is safe to run on each start.
func Migrate(ctx context.Context, db *sql.DB) error {
	return ApplySchema(ctx, db, mysqlSchema)
}

// ApplySchema executes a ';' separated DDL script one statement at a time,
// so the driver does not need multiStatements enabled.
func ApplySchema(ctx context.Context, db *sql.DB, ddl string) error {
	for i, stmt := range SplitStatements(ddl) {
		if _, err := db.ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("schema statement %d: %w", i+1, err)
		}
	}
	return nil
}

// SplitStatements breaks a DDL script on semicolons and drops blank
// statements and "--" comment lines.
func SplitStatements(ddl string) []string {
	var b strings.Builder
	for _, line := range strings.Split(ddl, "\n") {
		if strings.HasPrefix(strings.TrimSpace(line), "--") {
			continue
		}
		b.WriteString(line)
		b.WriteByte('\n')
	}
	var out []string
	for _, part := range strings.Split(b.String(), ";") {
		if s := strings.TrimSpace(part); s != "" {
			out = append(out, s)
		}
	}
	return out
}
