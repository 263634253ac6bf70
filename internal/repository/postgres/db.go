// Package postgres is the durable store behind the game server:
// player accounts, the lobby's game and seat records, per-seat engine
// secrets, and serialized game snapshots.
package postgres

import (
	"database/sql"
	"fmt"

	_ "github.com/lib/pq"
)

// The pool stays small; every game mutation funnels through the
// single-writer play loop, so concurrency here is reads plus the
// occasional snapshot write.
const (
	maxOpenConns = 25
	maxIdleConns = 5
)

// Connect opens the connection pool and verifies the database is
// reachable before the server starts taking requests.
func Connect(databaseURL string) (*sql.DB, error) {
	db, err := sql.Open("postgres", databaseURL)
	if err != nil {
		return nil, fmt.Errorf("postgres open: %w", err)
	}
	db.SetMaxOpenConns(maxOpenConns)
	db.SetMaxIdleConns(maxIdleConns)
	if err := db.Ping(); err != nil {
		return nil, fmt.Errorf("postgres ping: %w", err)
	}
	return db, nil
}
