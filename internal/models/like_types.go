package models

// LikeState is what every like endpoint answers with.
type LikeState struct {
	Liked     bool `json:"liked"`
	LikeCount int  `json:"likeCount"`
}

// CommentLikeTarget selects the comment_likes column a like belongs to.
// Exactly one of the two kinds is used per row.
type CommentLikeTarget string

const (
	TargetComment CommentLikeTarget = "comment"
	TargetReply   CommentLikeTarget = "reply"
)

// Column returns the comment_likes column for the target.
func (t CommentLikeTarget) Column() string {
	if t == TargetReply {
		return "reply_id"
	}
	return "comment_id"
}
