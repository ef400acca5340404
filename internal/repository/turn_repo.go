package repository

import (
	"context"
	"errors"
	"time"

	"github.com/Insightsparklabs/english-coach-app/internal/models"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
)

type DBTX interface {
	Exec(ctx context.Context, sql string, arguments ...any) (pgconn.CommandTag, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
}

// ErrUnconfigured marks a store that was never given credentials, as opposed
// to a configured store that is currently unreachable.
var ErrUnconfigured = errors.New("datastore is not configured")

type ChatTurnRepository struct {
	db DBTX
}

func NewChatTurnRepository(db DBTX) *ChatTurnRepository {
	return &ChatTurnRepository{db: db}
}

func (r *ChatTurnRepository) Create(
	ctx context.Context,
	userID string,
	userMessage string,
	aiResponse string,
) (*models.ChatTurn, error) {
	query := `
		INSERT INTO chat_turns (user_id, user_message, ai_response)
		VALUES ($1, $2, $3)
		RETURNING id, user_id, user_message, ai_response, created_at
	`

	var turn models.ChatTurn
	err := r.db.QueryRow(ctx, query, userID, userMessage, aiResponse).Scan(
		&turn.ID,
		&turn.UserID,
		&turn.UserMessage,
		&turn.AIResponse,
		&turn.CreatedAt,
	)
	if err != nil {
		return nil, err
	}

	return &turn, nil
}

func (r *ChatTurnRepository) CountSince(
	ctx context.Context,
	userID string,
	since time.Time,
) (int, error) {
	query := `
		SELECT COUNT(*)
		FROM chat_turns
		WHERE user_id = $1
		  AND created_at >= $2
	`

	var count int
	if err := r.db.QueryRow(ctx, query, userID, since).Scan(&count); err != nil {
		return 0, err
	}

	return count, nil
}

// ListRecent returns the newest `limit` turns for a user, oldest first.
// The inner query must select the tail of the log (DESC LIMIT) before the
// outer re-sort; `ORDER BY created_at ASC LIMIT n` would return the user's
// very first turns instead once the table grows past the window.
func (r *ChatTurnRepository) ListRecent(
	ctx context.Context,
	userID string,
	limit int,
) ([]models.ChatTurn, error) {
	query := `
		SELECT id, user_id, user_message, ai_response, created_at
		FROM (
			SELECT id, user_id, user_message, ai_response, created_at
			FROM chat_turns
			WHERE user_id = $1
			ORDER BY created_at DESC, id DESC
			LIMIT $2
		) recent
		ORDER BY created_at ASC, id ASC
	`

	rows, err := r.db.Query(ctx, query, userID, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	return scanTurns(rows)
}

func (r *ChatTurnRepository) ListByUser(
	ctx context.Context,
	userID string,
) ([]models.ChatTurn, error) {
	query := `
		SELECT id, user_id, user_message, ai_response, created_at
		FROM chat_turns
		WHERE user_id = $1
		ORDER BY created_at ASC, id ASC
	`

	rows, err := r.db.Query(ctx, query, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	return scanTurns(rows)
}

func scanTurns(rows pgx.Rows) ([]models.ChatTurn, error) {
	turns := make([]models.ChatTurn, 0)
	for rows.Next() {
		var turn models.ChatTurn
		if err := rows.Scan(
			&turn.ID,
			&turn.UserID,
			&turn.UserMessage,
			&turn.AIResponse,
			&turn.CreatedAt,
		); err != nil {
			return nil, err
		}

		turns = append(turns, turn)
	}

	if err := rows.Err(); err != nil {
		return nil, err
	}

	return turns, nil
}

// UnconfiguredTurnStore stands in for the repository when no DB_URL is set.
// Every operation reports ErrUnconfigured so callers decide per contract
// whether that degrades to empty results or to a visible error.
type UnconfiguredTurnStore struct{}

func (UnconfiguredTurnStore) Create(context.Context, string, string, string) (*models.ChatTurn, error) {
	return nil, ErrUnconfigured
}

func (UnconfiguredTurnStore) CountSince(context.Context, string, time.Time) (int, error) {
	return 0, ErrUnconfigured
}

func (UnconfiguredTurnStore) ListRecent(context.Context, string, int) ([]models.ChatTurn, error) {
	return nil, ErrUnconfigured
}

func (UnconfiguredTurnStore) ListByUser(context.Context, string) ([]models.ChatTurn, error) {
	return nil, ErrUnconfigured
}
