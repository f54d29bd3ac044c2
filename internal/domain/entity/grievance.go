package entity

import (
	"regexp"
	"strings"
	"time"
)

type GrievanceStatus string

const (
	StatusPending  GrievanceStatus = "Pending"
	StatusResolved GrievanceStatus = "Resolved"
)

const (
	PriorityHigh   = "High"
	PriorityMedium = "Medium"
	PriorityLow    = "Low"

	// Placeholder written at submission until background analysis finishes.
	AnalysisPending = "Analyzing..."
)

// Grievance is a citizen-submitted complaint.
type Grievance struct {
	ID            string          `json:"id" firestore:"id"`
	UserID        string          `json:"user_id" firestore:"userId"`
	UserEmail     string          `json:"user_email" firestore:"userEmail"`
	FullName      string          `json:"full_name" firestore:"fullName"`
	Address       string          `json:"address" firestore:"address"`
	PublicAddress string          `json:"public_address" firestore:"publicAddress"`
	DoorNo        string          `json:"door_no" firestore:"doorNo"`
	Area          string          `json:"area" firestore:"area"`
	City          string          `json:"city" firestore:"city"`
	State         string          `json:"state" firestore:"state"`
	Pincode       string          `json:"pincode" firestore:"pincode"`
	Municipality  string          `json:"municipality" firestore:"municipality"`
	Category      string          `json:"category" firestore:"category"`
	Title         string          `json:"title" firestore:"title"`
	Description   string          `json:"description" firestore:"description"`
	Photo         string          `json:"photo,omitempty" firestore:"photo,omitempty"` // data URL when no bucket is configured
	PhotoURL      string          `json:"photo_url,omitempty" firestore:"photoUrl,omitempty"`
	Status        GrievanceStatus `json:"status" firestore:"status"`
	Verified      bool            `json:"verified" firestore:"verified"`
	Reopened      bool            `json:"reopened" firestore:"reopened"`

	AIPriority string   `json:"ai_priority" firestore:"aiPriority"`
	AISummary  string   `json:"ai_summary" firestore:"aiSummary"`
	AITags     []string `json:"ai_tags" firestore:"aiTags"`
	AICause    string   `json:"ai_cause,omitempty" firestore:"aiCause,omitempty"`

	PostedToSocial bool `json:"posted_to_social" firestore:"postedToSocial"`

	CreatedAt  time.Time  `json:"created_at" firestore:"createdAt"`
	UpdatedAt  time.Time  `json:"updated_at" firestore:"updatedAt"`
	ResolvedAt *time.Time `json:"resolved_at,omitempty" firestore:"resolvedAt,omitempty"`
}

// GrievanceAnalysis is the structured output of the grievance prompt.
type GrievanceAnalysis struct {
	Priority string   `json:"priority"`
	Summary  string   `json:"summary"`
	Tags     []string `json:"tags"`
	Cause    string   `json:"cause"`
}

// GrievanceFilter narrows repository listings. Zero values mean "any".
type GrievanceFilter struct {
	UserID        string
	Municipality  string
	Status        GrievanceStatus
	Priority      string
	NotPosted     bool
	ExcludeClosed bool // hide Resolved + verified
}

func (g *Grievance) IsClosed() bool {
	return g.Status == StatusResolved && g.Verified
}

// ComposeAddress renders the address in the stored form
// "door, area, city, state - pincode".
func ComposeAddress(doorNo, area, city, state, pincode string) string {
	return doorNo + ", " + area + ", " + city + ", " + state + " - " + pincode
}

// PublicAddress drops the first comma-delimited segment (the door number)
// so exact residences are never published.
func PublicAddress(address string) string {
	idx := strings.Index(address, ",")
	if idx < 0 {
		return strings.TrimSpace(address)
	}
	return strings.TrimSpace(address[idx+1:])
}

var pincodeSuffix = regexp.MustCompile(`-\s*(\d{6})$`)

// ExtractPincode reads the trailing six-digit pincode from a composed
// address, or returns "".
func ExtractPincode(address string) string {
	m := pincodeSuffix.FindStringSubmatch(strings.TrimSpace(address))
	if m == nil {
		return ""
	}
	return m[1]
}

// GroupKey buckets grievances for trending detection.
func GroupKey(category, publicAddress string) string {
	return category + "|" + publicAddress
}

func (g *Grievance) GroupKey() string {
	public := g.PublicAddress
	if public == "" {
		public = PublicAddress(g.Address)
	}
	return GroupKey(g.Category, public)
}

// NormalizePriority maps model output onto High/Medium/Low.
func NormalizePriority(p string) string {
	switch strings.ToLower(strings.TrimSpace(p)) {
	case "high":
		return PriorityHigh
	case "low":
		return PriorityLow
	default:
		return PriorityMedium
	}
}
