package chatmood

import (
	"context"
	"database/sql"
	"fmt"
	"regexp"
	"strings"

	// Registers the pure-Go "sqlite" driver.
	_ "modernc.org/sqlite"
)

// SQLiteDriver is the database/sql driver name registered by modernc.org/sqlite.
const SQLiteDriver = "sqlite"

var identRE = regexp.MustCompile(`^[A-Za-z_][A-Za-z0-9_]*$`)

// OpenSQLite opens (creating if needed) a SQLite database file.
func OpenSQLite(path string) (*sql.DB, error) {
	db, err := sql.Open(SQLiteDriver, path)
	if err != nil {
		return nil, fmt.Errorf("open sqlite %s: %w", path, err)
	}
	return db, nil
}

// WriteSQLite stores scored records in table, creating it when missing.
//
// Passthrough columns are stored as TEXT next to the run ID and the
// prediction columns. A table left by an earlier run gains the passthrough
// columns it lacks, so runs over differently shaped inputs can share it.
// SQLite folds identifier case, so names that differ only in case are
// stored once under the first spelling. Column names that are not plain
// identifiers are skipped. All work of one call happens in a single
// transaction.
func WriteSQLite(ctx context.Context, db *sql.DB, table, runID string, ds *Dataset) error {
	if !identRE.MatchString(table) {
		return fmt.Errorf("invalid table name %q", table)
	}
	passthrough := sqlitePassthrough(ds.Columns)

	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	defs := []string{"run_id TEXT NOT NULL"}
	for _, c := range passthrough {
		defs = append(defs, quoteIdent(c)+" TEXT")
	}
	defs = append(defs,
		ColumnPrediction+" TEXT",
		ColumnClassNegative+" REAL",
		ColumnClassNeutral+" REAL",
		ColumnClassPositive+" REAL",
		ColumnInferred+" INTEGER NOT NULL",
	)
	create := fmt.Sprintf("CREATE TABLE IF NOT EXISTS %s (%s)", quoteIdent(table), strings.Join(defs, ", "))
	if _, err := tx.ExecContext(ctx, create); err != nil {
		return fmt.Errorf("create table %s: %w", table, err)
	}
	if err := addMissingColumns(ctx, tx, table, passthrough); err != nil {
		return err
	}

	cols := []string{"run_id"}
	for _, c := range passthrough {
		cols = append(cols, quoteIdent(c))
	}
	cols = append(cols, ColumnPrediction, ColumnClassNegative, ColumnClassNeutral, ColumnClassPositive, ColumnInferred)
	placeholders := strings.TrimSuffix(strings.Repeat("?, ", len(cols)), ", ")
	insert := fmt.Sprintf("INSERT INTO %s (%s) VALUES (%s)", quoteIdent(table), strings.Join(cols, ", "), placeholders)

	stmt, err := tx.PrepareContext(ctx, insert)
	if err != nil {
		return fmt.Errorf("prepare insert: %w", err)
	}
	defer stmt.Close()

	args := make([]any, 0, len(cols))
	for _, rec := range ds.Records {
		args = args[:0]
		args = append(args, runID)
		for _, c := range passthrough {
			args = append(args, rec.Fields[c])
		}
		var label any
		if rec.Label.IsScored() {
			label = string(rec.Label)
		}
		inferred := 0
		if rec.Inferred {
			inferred = 1
		}
		args = append(args, label, rec.Scores.Negative, rec.Scores.Neutral, rec.Scores.Positive, inferred)
		if _, err := stmt.ExecContext(ctx, args...); err != nil {
			return fmt.Errorf("insert record: %w", err)
		}
	}

	return tx.Commit()
}

// sqlitePassthrough picks the dataset columns stored as TEXT, keeping the
// first spelling of names that only differ in case.
func sqlitePassthrough(columns []string) []string {
	seen := map[string]bool{"run_id": true}
	for c := range outputColumns {
		seen[c] = true
	}

	var passthrough []string
	for _, c := range columns {
		key := strings.ToLower(c)
		if seen[key] || !identRE.MatchString(c) {
			continue
		}
		seen[key] = true
		passthrough = append(passthrough, c)
	}
	return passthrough
}

func addMissingColumns(ctx context.Context, tx *sql.Tx, table string, columns []string) error {
	rows, err := tx.QueryContext(ctx, "SELECT name FROM pragma_table_info(?)", table)
	if err != nil {
		return fmt.Errorf("read schema of %s: %w", table, err)
	}
	existing := make(map[string]bool)
	for rows.Next() {
		var name string
		if err := rows.Scan(&name); err != nil {
			rows.Close()
			return fmt.Errorf("read schema of %s: %w", table, err)
		}
		existing[strings.ToLower(name)] = true
	}
	if err := rows.Close(); err != nil {
		return err
	}
	if err := rows.Err(); err != nil {
		return fmt.Errorf("read schema of %s: %w", table, err)
	}

	for _, c := range columns {
		if existing[strings.ToLower(c)] {
			continue
		}
		alter := fmt.Sprintf("ALTER TABLE %s ADD COLUMN %s TEXT", quoteIdent(table), quoteIdent(c))
		if _, err := tx.ExecContext(ctx, alter); err != nil {
			return fmt.Errorf("add column %s to %s: %w", c, table, err)
		}
	}
	return nil
}

func quoteIdent(s string) string {
	return `"` + s + `"`
}
