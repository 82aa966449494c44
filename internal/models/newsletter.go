package models

import (
	"encoding/json"
	"time"

	"gorm.io/datatypes"
)

type NewsletterStatus string

const (
	NewsletterDraft      NewsletterStatus = "DRAFT"
	NewsletterCollecting NewsletterStatus = "COLLECTING"
	NewsletterReview     NewsletterStatus = "REVIEW"
	NewsletterApproved   NewsletterStatus = "APPROVED"
	NewsletterPublished  NewsletterStatus = "PUBLISHED"
)

func (s NewsletterStatus) Valid() bool {
	switch s {
	case NewsletterDraft, NewsletterCollecting, NewsletterReview, NewsletterApproved, NewsletterPublished:
		return true
	}
	return false
}

// Newsletter does not cascade from its Group: a group that still owns
// newsletters cannot be deleted.
type Newsletter struct {
	ID           uint             `gorm:"primaryKey" json:"id"`
	Title        string           `gorm:"size:255;not null" json:"title"`
	GroupID      uint             `gorm:"not null;index" json:"group_id"`
	Period       *string          `gorm:"size:100;index" json:"period"`
	Status       NewsletterStatus `gorm:"size:20;not null;default:'DRAFT';index" json:"status"`
	CreatedBy    *uint            `json:"created_by"`
	CreatedAt    time.Time        `gorm:"index" json:"created_at"`
	UpdatedAt    time.Time        `json:"updated_at"`
	LayoutConfig datatypes.JSON   `json:"layout_config"`
	RenderedHTML *string          `gorm:"type:text" json:"rendered_html"`
	Group        *Group           `gorm:"constraint:OnDelete:RESTRICT" json:"-"`
}

// HasLayout reports whether a non-empty layout configuration has been
// stored. null and {} both count as no layout.
func (n *Newsletter) HasLayout() bool {
	if len(n.LayoutConfig) == 0 {
		return false
	}
	var fields map[string]json.RawMessage
	if err := json.Unmarshal(n.LayoutConfig, &fields); err != nil {
		return true
	}
	return len(fields) > 0
}

// NewsletterAdmin is an explicit per-newsletter admin grant, independent of
// group membership.
type NewsletterAdmin struct {
	ID           uint        `gorm:"primaryKey" json:"id"`
	NewsletterID uint        `gorm:"not null;uniqueIndex:idx_newsletter_admins_pair,priority:1" json:"newsletter_id"`
	UserID       uint        `gorm:"not null;uniqueIndex:idx_newsletter_admins_pair,priority:2;index" json:"user_id"`
	CreatedAt    time.Time   `json:"created_at"`
	Newsletter   *Newsletter `gorm:"constraint:OnDelete:CASCADE" json:"-"`
	User         *User       `gorm:"constraint:OnDelete:CASCADE" json:"user,omitempty"`
}
