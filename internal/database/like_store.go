package database

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/01moynul/storefront-golang/internal/models"
	"github.com/google/uuid"
)

// ToggleItemLike flips the like of userID on a catalog item.
// It is check-then-act without a lock: a racing insert that hits the unique
// key is reported as liked.
func (s *Store) ToggleItemLike(ctx context.Context, productID, userID string) (models.LikeState, error) {
	var likeID string
	err := s.DB.QueryRowContext(ctx,
		"SELECT id FROM product_likes WHERE product_id = ? AND user_id = ?", productID, userID,
	).Scan(&likeID)

	switch {
	case err == nil:
		if _, err := s.DB.ExecContext(ctx, "DELETE FROM product_likes WHERE id = ?", likeID); err != nil {
			return models.LikeState{}, fmt.Errorf("unlike item: %w", err)
		}
	case errors.Is(err, sql.ErrNoRows):
		_, err := s.DB.ExecContext(ctx,
			"INSERT INTO product_likes (id, product_id, user_id, created_at) VALUES (?, ?, ?, ?)",
			uuid.NewString(), productID, userID, s.now(),
		)
		if err != nil && !isDuplicateKey(err) {
			return models.LikeState{}, fmt.Errorf("like item: %w", err)
		}
	default:
		return models.LikeState{}, fmt.Errorf("check item like: %w", err)
	}

	return s.ItemLikeState(ctx, productID, userID)
}

// ItemLikeState reads the like count of an item and whether userID likes it.
func (s *Store) ItemLikeState(ctx context.Context, productID, userID string) (models.LikeState, error) {
	var state models.LikeState
	var mine int
	err := s.DB.QueryRowContext(ctx, `
		SELECT COUNT(*), COALESCE(SUM(user_id = ?), 0)
		FROM product_likes WHERE product_id = ?`, userID, productID,
	).Scan(&state.LikeCount, &mine)
	if err != nil {
		return models.LikeState{}, fmt.Errorf("count item likes: %w", err)
	}
	state.Liked = mine > 0
	return state, nil
}

// ToggleCommentLike flips the like of userID on a comment or a reply.
func (s *Store) ToggleCommentLike(ctx context.Context, target models.CommentLikeTarget, targetID, userID string) (models.LikeState, error) {
	col := target.Column()

	var likeID string
	err := s.DB.QueryRowContext(ctx,
		"SELECT id FROM comment_likes WHERE "+col+" = ? AND user_id = ?", targetID, userID,
	).Scan(&likeID)

	switch {
	case err == nil:
		if _, err := s.DB.ExecContext(ctx, "DELETE FROM comment_likes WHERE id = ?", likeID); err != nil {
			return models.LikeState{}, fmt.Errorf("unlike %s: %w", target, err)
		}
	case errors.Is(err, sql.ErrNoRows):
		_, err := s.DB.ExecContext(ctx,
			"INSERT INTO comment_likes (id, "+col+", user_id, created_at) VALUES (?, ?, ?, ?)",
			uuid.NewString(), targetID, userID, s.now(),
		)
		if err != nil && !isDuplicateKey(err) {
			return models.LikeState{}, fmt.Errorf("like %s: %w", target, err)
		}
	default:
		return models.LikeState{}, fmt.Errorf("check %s like: %w", target, err)
	}

	var state models.LikeState
	var mine int
	err = s.DB.QueryRowContext(ctx,
		"SELECT COUNT(*), COALESCE(SUM(user_id = ?), 0) FROM comment_likes WHERE "+col+" = ?", userID, targetID,
	).Scan(&state.LikeCount, &mine)
	if err != nil {
		return models.LikeState{}, fmt.Errorf("count %s likes: %w", target, err)
	}
	state.Liked = mine > 0
	return state, nil
}
