package store

import (
	"context"
	"database/sql"
	"fmt"
	"strconv"
	"strings"

	_ "github.com/lib/pq"
	logger "github.com/multiversx/mx-chain-logger-go"
	_ "modernc.org/sqlite"
)

var log = logger.GetOrCreate("store")

// Dialect identifies the SQL flavour behind a DB
type Dialect string

// Supported dialects
const (
	Postgres Dialect = "postgres"
	SQLite   Dialect = "sqlite"
)

// DB wraps the connection pool together with its dialect
type DB struct {
	*sql.DB
	dialect Dialect
}

// NewDB opens the database named by dsn and checks the connection.
// postgres:// and postgresql:// URLs use lib/pq; sqlite://path, file: URIs
// and bare paths ending in .db use the embedded SQLite driver.
func NewDB(dsn string) (*DB, error) {
	dialect, source, err := parseDSN(dsn)
	if err != nil {
		return nil, err
	}

	driver := "postgres"
	if dialect == SQLite {
		driver = "sqlite"
	}

	db, err := sql.Open(driver, source)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	if dialect == SQLite {
		// one connection serialises writers and keeps :memory: databases shared
		db.SetMaxOpenConns(1)
		if _, err := db.Exec("PRAGMA foreign_keys = ON"); err != nil {
			db.Close()
			return nil, fmt.Errorf("failed to enable foreign keys: %w", err)
		}
	}

	if err := db.PingContext(context.Background()); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	return &DB{DB: db, dialect: dialect}, nil
}

// Dialect returns the SQL flavour of the connection
func (db *DB) Dialect() Dialect {
	return db.dialect
}

func parseDSN(dsn string) (Dialect, string, error) {
	switch {
	case strings.HasPrefix(dsn, "postgres://"), strings.HasPrefix(dsn, "postgresql://"):
		return Postgres, dsn, nil
	case strings.HasPrefix(dsn, "sqlite://"):
		path := strings.TrimPrefix(dsn, "sqlite://")
		if path == "" {
			return "", "", fmt.Errorf("sqlite dsn %q has no path", dsn)
		}
		return SQLite, withSQLitePragmas(path), nil
	case strings.HasPrefix(dsn, "file:"), strings.HasSuffix(dsn, ".db"), dsn == ":memory:":
		return SQLite, withSQLitePragmas(dsn), nil
	default:
		return "", "", fmt.Errorf("unsupported database url %q", dsn)
	}
}

func withSQLitePragmas(source string) string {
	if source == ":memory:" || strings.Contains(source, "_pragma=") {
		return source
	}
	sep := "?"
	if strings.Contains(source, "?") {
		sep = "&"
	}
	return source + sep + "_pragma=journal_mode(WAL)&_pragma=busy_timeout(5000)"
}

// rebind rewrites ? placeholders to $n for Postgres
func (db *DB) rebind(query string) string {
	if db.dialect != Postgres {
		return query
	}
	var b strings.Builder
	b.Grow(len(query) + 8)
	n := 0
	for _, r := range query {
		if r == '?' {
			n++
			b.WriteByte('$')
			b.WriteString(strconv.Itoa(n))
			continue
		}
		b.WriteRune(r)
	}
	return b.String()
}
