package postgres

import (
	"context"
	"database/sql"
	"fmt"
)

// SecretRepo stores each seat's engine secret. A secret is the only
// credential the engine accepts for that seat's actions, so rows are
// write-once and read only by the service layer.
type SecretRepo struct {
	db *sql.DB
}

// NewSecretRepo creates a SecretRepo.
func NewSecretRepo(db *sql.DB) *SecretRepo {
	return &SecretRepo{db: db}
}

// SaveSecret stores one seat's secret.
func (r *SecretRepo) SaveSecret(ctx context.Context, gameID string, playerNum int, secret string) error {
	_, err := r.db.ExecContext(ctx,
		`INSERT INTO game_secrets (game_id, player_num, secret) VALUES ($1, $2, $3)
		 ON CONFLICT (game_id, player_num) DO NOTHING`,
		gameID, playerNum, secret,
	)
	if err != nil {
		return fmt.Errorf("save secret: %w", err)
	}
	return nil
}

// LoadSecrets returns all seat secrets for a game keyed by player number.
func (r *SecretRepo) LoadSecrets(ctx context.Context, gameID string) (map[int]string, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT player_num, secret FROM game_secrets WHERE game_id = $1`, gameID,
	)
	if err != nil {
		return nil, fmt.Errorf("load secrets: %w", err)
	}
	defer rows.Close()

	secrets := make(map[int]string)
	for rows.Next() {
		var num int
		var secret string
		if err := rows.Scan(&num, &secret); err != nil {
			return nil, fmt.Errorf("scan secret: %w", err)
		}
		secrets[num] = secret
	}
	return secrets, rows.Err()
}
