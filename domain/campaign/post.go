package campaign

import (
	"time"

	"postlift/domain/core"
)

// ProductMention is the tri-state classification of whether a post mentions
// a campaign product. Unclassified is an intentional state: a post nobody
// (human or heuristic) has judged yet must not be treated as a silent "no".
type ProductMention string

const (
	MentionUnclassified ProductMention = "unclassified"
	MentionYes          ProductMention = "yes"
	MentionNo           ProductMention = "no"
)

// IsCandidate reports whether the post may participate in attribution.
// Only confirmed mentions qualify; unclassified posts are excluded until judged.
func (m ProductMention) IsCandidate() bool {
	return m == MentionYes
}

// Post is an immutable social-media post scraped from the platform
type Post struct {
	ID             core.PostID    `json:"id"`
	Timestamp      time.Time      `json:"timestamp"`
	Caption        string         `json:"caption"`
	LikesCount     int            `json:"likes_count"`
	CommentsCount  int            `json:"comments_count"`
	ProductMention ProductMention `json:"product_mention"`
}

// Engagement returns the weighted engagement of the post.
// Comments count double: leaving one costs the viewer more than a like.
func (p Post) Engagement() float64 {
	return float64(p.LikesCount) + 2*float64(p.CommentsCount)
}
