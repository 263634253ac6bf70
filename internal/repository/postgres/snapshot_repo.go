package postgres

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
)

// SnapshotRepo stores engine state blobs. The current row is
// overwritten on every save; archived rows keep one snapshot per
// completed turn for replay.
type SnapshotRepo struct {
	db *sql.DB
}

// NewSnapshotRepo creates a SnapshotRepo.
func NewSnapshotRepo(db *sql.DB) *SnapshotRepo {
	return &SnapshotRepo{db: db}
}

// SaveCurrent upserts the live state blob for a game.
func (r *SnapshotRepo) SaveCurrent(ctx context.Context, gameID string, turn uint32, state json.RawMessage) error {
	_, err := r.db.ExecContext(ctx,
		`INSERT INTO game_snapshots (game_id, turn, is_current, state)
		 VALUES ($1, $2, true, $3)
		 ON CONFLICT (game_id) WHERE is_current
		 DO UPDATE SET turn = EXCLUDED.turn, state = EXCLUDED.state, saved_at = now()`,
		gameID, turn, state,
	)
	if err != nil {
		return fmt.Errorf("save current snapshot: %w", err)
	}
	return nil
}

// LoadCurrent returns the live state blob for a game, or nil when absent.
func (r *SnapshotRepo) LoadCurrent(ctx context.Context, gameID string) (json.RawMessage, error) {
	var state json.RawMessage
	err := r.db.QueryRowContext(ctx,
		`SELECT state FROM game_snapshots WHERE game_id = $1 AND is_current`, gameID,
	).Scan(&state)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("load current snapshot: %w", err)
	}
	return state, nil
}

// ArchiveTurn stores an immutable snapshot of a completed turn.
func (r *SnapshotRepo) ArchiveTurn(ctx context.Context, gameID string, turn uint32, state json.RawMessage) error {
	_, err := r.db.ExecContext(ctx,
		`INSERT INTO game_snapshots (game_id, turn, is_current, state)
		 VALUES ($1, $2, false, $3)
		 ON CONFLICT (game_id, turn) WHERE NOT is_current DO NOTHING`,
		gameID, turn, state,
	)
	if err != nil {
		return fmt.Errorf("archive turn snapshot: %w", err)
	}
	return nil
}

// ListTurns returns the archived turn numbers for a game in order.
func (r *SnapshotRepo) ListTurns(ctx context.Context, gameID string) ([]uint32, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT turn FROM game_snapshots WHERE game_id = $1 AND NOT is_current ORDER BY turn`, gameID,
	)
	if err != nil {
		return nil, fmt.Errorf("list snapshot turns: %w", err)
	}
	defer rows.Close()

	var turns []uint32
	for rows.Next() {
		var turn uint32
		if err := rows.Scan(&turn); err != nil {
			return nil, fmt.Errorf("scan snapshot turn: %w", err)
		}
		turns = append(turns, turn)
	}
	return turns, rows.Err()
}

// LoadTurn returns the archived blob for one completed turn, or nil
// when absent.
func (r *SnapshotRepo) LoadTurn(ctx context.Context, gameID string, turn uint32) (json.RawMessage, error) {
	var state json.RawMessage
	err := r.db.QueryRowContext(ctx,
		`SELECT state FROM game_snapshots WHERE game_id = $1 AND turn = $2 AND NOT is_current`,
		gameID, turn,
	).Scan(&state)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("load turn snapshot: %w", err)
	}
	return state, nil
}
