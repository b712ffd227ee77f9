package database

import (
	"context"
	"fmt"

	"github.com/01moynul/storefront-golang/internal/models"
)

// CreateComment inserts a comment. Comments are never edited afterwards.
func (s *Store) CreateComment(ctx context.Context, c *models.Comment) error {
	now := s.now()
	c.CreatedAt, c.UpdatedAt = now, now

	query := `
		INSERT INTO product_comments (id, product_id, user_id, text, rating, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?)`
	if _, err := s.DB.ExecContext(ctx, query, c.ID, c.ProductID, c.UserID, c.Text, c.Rating, c.CreatedAt, c.UpdatedAt); err != nil {
		return fmt.Errorf("insert comment: %w", err)
	}
	return nil
}

// ListComments returns every comment on a catalog item, newest first, each
// annotated with its like and reply counts. viewerID may be empty.
func (s *Store) ListComments(ctx context.Context, productID, viewerID string) ([]models.Comment, error) {
	query := `
		SELECT
			c.id, c.product_id, c.user_id, c.text, c.rating, c.created_at, c.updated_at,
			COALESCE(u.full_name, ''),
			(SELECT COUNT(*) FROM comment_likes cl WHERE cl.comment_id = c.id),
			(SELECT COUNT(*) FROM comment_likes cl WHERE cl.comment_id = c.id AND cl.user_id = ?),
			(SELECT COUNT(*) FROM comment_replies r WHERE r.comment_id = c.id)
		FROM product_comments c
		LEFT JOIN users u ON u.id = c.user_id
		WHERE c.product_id = ?
		ORDER BY c.created_at DESC`

	rows, err := s.DB.QueryContext(ctx, query, viewerID, productID)
	if err != nil {
		return nil, fmt.Errorf("list comments: %w", err)
	}
	defer rows.Close()

	comments := []models.Comment{}
	for rows.Next() {
		var c models.Comment
		var authorName string
		var mine int
		if err := rows.Scan(
			&c.ID, &c.ProductID, &c.UserID, &c.Text, &c.Rating, &c.CreatedAt, &c.UpdatedAt,
			&authorName, &c.LikeCount, &mine, &c.ReplyCount,
		); err != nil {
			return nil, fmt.Errorf("scan comment: %w", err)
		}
		c.User = &models.Author{ID: c.UserID, FullName: authorName}
		c.IsLiked = mine > 0
		comments = append(comments, c)
	}
	return comments, rows.Err()
}

// CommentExists reports whether a comment id is known.
func (s *Store) CommentExists(ctx context.Context, id string) (bool, error) {
	return s.exists(ctx, "SELECT EXISTS (SELECT 1 FROM product_comments WHERE id = ?)", id)
}

// ReplyExists reports whether a reply id is known.
func (s *Store) ReplyExists(ctx context.Context, id string) (bool, error) {
	return s.exists(ctx, "SELECT EXISTS (SELECT 1 FROM comment_replies WHERE id = ?)", id)
}

func (s *Store) exists(ctx context.Context, query string, args ...interface{}) (bool, error) {
	var ok bool
	if err := s.DB.QueryRowContext(ctx, query, args...).Scan(&ok); err != nil {
		return false, err
	}
	return ok, nil
}

// CreateReply inserts a reply to a comment.
func (s *Store) CreateReply(ctx context.Context, r *models.Reply) error {
	now := s.now()
	r.CreatedAt, r.UpdatedAt = now, now

	query := `
		INSERT INTO comment_replies (id, comment_id, user_id, text, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?)`
	if _, err := s.DB.ExecContext(ctx, query, r.ID, r.CommentID, r.UserID, r.Text, r.CreatedAt, r.UpdatedAt); err != nil {
		return fmt.Errorf("insert reply: %w", err)
	}
	return nil
}

// ListReplies returns the replies of a comment, oldest first.
func (s *Store) ListReplies(ctx context.Context, commentID, viewerID string) ([]models.Reply, error) {
	query := `
		SELECT
			r.id, r.comment_id, r.user_id, r.text, r.created_at, r.updated_at,
			COALESCE(u.full_name, ''),
			(SELECT COUNT(*) FROM comment_likes cl WHERE cl.reply_id = r.id),
			(SELECT COUNT(*) FROM comment_likes cl WHERE cl.reply_id = r.id AND cl.user_id = ?)
		FROM comment_replies r
		LEFT JOIN users u ON u.id = r.user_id
		WHERE r.comment_id = ?
		ORDER BY r.created_at ASC`

	rows, err := s.DB.QueryContext(ctx, query, viewerID, commentID)
	if err != nil {
		return nil, fmt.Errorf("list replies: %w", err)
	}
	defer rows.Close()

	replies := []models.Reply{}
	for rows.Next() {
		var r models.Reply
		var authorName string
		var mine int
		if err := rows.Scan(
			&r.ID, &r.CommentID, &r.UserID, &r.Text, &r.CreatedAt, &r.UpdatedAt,
			&authorName, &r.LikeCount, &mine,
		); err != nil {
			return nil, fmt.Errorf("scan reply: %w", err)
		}
		r.User = &models.Author{ID: r.UserID, FullName: authorName}
		r.IsLiked = mine > 0
		replies = append(replies, r)
	}
	return replies, rows.Err()
}
