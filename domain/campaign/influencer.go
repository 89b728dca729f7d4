package campaign

import (
	"postlift/domain/core"
)

// Influencer groups the scraped posts of one campaign participant
type Influencer struct {
	Username       core.Username `json:"username"`
	FollowersCount int           `json:"followers_count"`
	Budget         float64       `json:"budget"`
	Posts          []Post        `json:"posts"`
}

// CandidatePosts returns the posts eligible for attribution
// (confirmed product mentions only)
func (i Influencer) CandidatePosts() []Post {
	var out []Post
	for _, p := range i.Posts {
		if p.ProductMention.IsCandidate() {
			out = append(out, p)
		}
	}
	return out
}

// Engagement returns the summed engagement of the influencer's candidate posts
func (i Influencer) Engagement() float64 {
	var total float64
	for _, p := range i.CandidatePosts() {
		total += p.Engagement()
	}
	return total
}
