package repositories

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/vidtube/backend/internal/db"
	"github.com/vidtube/backend/internal/models"
)

// likeTargetTables maps a target kind to the table its id must exist in.
var likeTargetTables = map[models.LikeTargetKind]string{
	models.LikeTargetVideo:   "videos",
	models.LikeTargetComment: "comments",
	models.LikeTargetTweet:   "tweets",
}

// PostgresLikeRepository provides PostgreSQL-backed persistence for likes.
type PostgresLikeRepository struct {
	pool db.Pool
}

// NewPostgresLikeRepository constructs a like repository backed by PostgreSQL.
func NewPostgresLikeRepository(pool db.Pool) *PostgresLikeRepository {
	return &PostgresLikeRepository{pool: pool}
}

// Toggle creates the like when absent and removes it when present. The unique
// constraint over (target_kind, target_id, liked_by) makes the insert atomic;
// there is no read-then-write window. Returns the like and true when the
// target is now liked, false when the like was removed.
func (r *PostgresLikeRepository) Toggle(ctx context.Context, target models.LikeTarget, userID string) (models.Like, bool, error) {
	table, ok := likeTargetTables[target.Kind]
	if !ok {
		return models.Like{}, false, fmt.Errorf("unknown like target kind %q", target.Kind)
	}

	conn, err := r.pool.Acquire(ctx)
	if err != nil {
		return models.Like{}, false, fmt.Errorf("acquire connection: %w", err)
	}
	defer conn.Release()

	var exists bool
	if err := conn.QueryRow(ctx,
		fmt.Sprintf(`SELECT EXISTS (SELECT 1 FROM %s WHERE id = $1)`, table), target.ID,
	).Scan(&exists); err != nil {
		return models.Like{}, false, fmt.Errorf("check like target: %w", err)
	}
	if !exists {
		return models.Like{}, false, ErrNotFound
	}

	row := conn.QueryRow(ctx, `
        INSERT INTO likes (id, target_kind, target_id, liked_by, created_at)
        VALUES ($1, $2, $3, $4, NOW())
        ON CONFLICT (target_kind, target_id, liked_by) DO NOTHING
        RETURNING id, target_kind, target_id, liked_by, created_at
    `, uuid.NewString(), target.Kind, target.ID, userID)

	var inserted models.Like
	err = row.Scan(&inserted.ID, &inserted.Target.Kind, &inserted.Target.ID, &inserted.LikedBy, &inserted.CreatedAt)
	if err == nil {
		inserted.CreatedAt = inserted.CreatedAt.UTC()
		return inserted, true, nil
	}
	if !errors.Is(err, pgx.ErrNoRows) {
		return models.Like{}, false, fmt.Errorf("insert like: %w", err)
	}

	// Conflict: the pair already existed, so this toggle removes it.
	tag, err := conn.Exec(ctx, `
        DELETE FROM likes
        WHERE target_kind = $1 AND target_id = $2 AND liked_by = $3
    `, target.Kind, target.ID, userID)
	if err != nil {
		return models.Like{}, false, fmt.Errorf("delete like: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return models.Like{}, false, ErrNotFound
	}

	return models.Like{Target: target, LikedBy: userID}, false, nil
}

// ListLikedVideos returns the videos the user has liked, with each owner's
// public profile embedded.
func (r *PostgresLikeRepository) ListLikedVideos(ctx context.Context, userID string, page models.Page) ([]models.VideoWithOwner, error) {
	conn, err := r.pool.Acquire(ctx)
	if err != nil {
		return nil, fmt.Errorf("acquire connection: %w", err)
	}
	defer conn.Release()

	direction := "ASC"
	if page.SortDesc {
		direction = "DESC"
	}

	rows, err := conn.Query(ctx, fmt.Sprintf(`
        SELECT `+videoJoinColumns+`
        FROM likes l
        JOIN videos v ON v.id = l.target_id
        JOIN users u ON u.id = v.owner_id
        WHERE l.liked_by = $1 AND l.target_kind = 'video'
        ORDER BY l.created_at %s, l.id
        LIMIT $2 OFFSET $3
    `, direction), userID, page.Limit, page.Offset())
	if err != nil {
		return nil, fmt.Errorf("query liked videos: %w", err)
	}
	defer rows.Close()

	return collectVideosWithOwner(rows)
}

// CountForOwner counts likes received across videos owned by the user.
func (r *PostgresLikeRepository) CountForOwner(ctx context.Context, ownerID string) (int64, error) {
	conn, err := r.pool.Acquire(ctx)
	if err != nil {
		return 0, fmt.Errorf("acquire connection: %w", err)
	}
	defer conn.Release()

	var n int64
	err = conn.QueryRow(ctx, `
        SELECT COUNT(*)
        FROM likes l
        JOIN videos v ON v.id = l.target_id
        WHERE l.target_kind = 'video' AND v.owner_id = $1
    `, ownerID).Scan(&n)
	if err != nil {
		return 0, fmt.Errorf("count likes: %w", err)
	}

	return n, nil
}

var _ LikeRepository = (*PostgresLikeRepository)(nil)
