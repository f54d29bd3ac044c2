package entity

import (
	"strings"
	"time"
)

// SocialPost is an entry in the community voice feed.
type SocialPost struct {
	ID            string    `json:"id" firestore:"id"`
	Content       string    `json:"content" firestore:"content"`
	Municipality  string    `json:"municipality" firestore:"municipality"`
	Category      string    `json:"category" firestore:"category"`
	Address       string    `json:"-" firestore:"address,omitempty"`
	PublicAddress string    `json:"public_address,omitempty" firestore:"publicAddress,omitempty"`
	Pincode       string    `json:"pincode,omitempty" firestore:"pincode,omitempty"`
	Cause         string    `json:"cause,omitempty" firestore:"cause,omitempty"`
	ReportCount   int       `json:"report_count" firestore:"reportCount"`
	AIGenerated   bool      `json:"ai_generated" firestore:"aiGenerated"`
	CreatedAt     time.Time `json:"created_at" firestore:"createdAt"`
	LastUpdated   time.Time `json:"last_updated,omitempty" firestore:"lastUpdated,omitempty"`
}

// SocialPostLocation identifies the submission-time post for a place.
type SocialPostLocation struct {
	Category      string
	PublicAddress string
	Pincode       string
}

// Mentions reports whether the post text refers to the grievance by title
// or by the first 20 characters of its description.
func (p *SocialPost) Mentions(g *Grievance) bool {
	if g.Title != "" && strings.Contains(p.Content, g.Title) {
		return true
	}
	prefix := g.Description
	if len([]rune(prefix)) > 20 {
		prefix = string([]rune(prefix)[:20])
	}
	return prefix != "" && strings.Contains(p.Content, prefix)
}
