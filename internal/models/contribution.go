package models

import "time"

type ContributionType string

const (
	ContributionSuccess ContributionType = "SUCCESS"
	ContributionFail    ContributionType = "FAIL"
	ContributionInfo    ContributionType = "INFO"
	ContributionOther   ContributionType = "OTHER"
)

func (t ContributionType) Valid() bool {
	switch t {
	case ContributionSuccess, ContributionFail, ContributionInfo, ContributionOther:
		return true
	}
	return false
}

type ContributionStatus string

const (
	ContributionDraft     ContributionStatus = "DRAFT"
	ContributionSubmitted ContributionStatus = "SUBMITTED"
	ContributionApproved  ContributionStatus = "APPROVED"
	ContributionRejected  ContributionStatus = "REJECTED"
)

func (s ContributionStatus) Valid() bool {
	switch s {
	case ContributionDraft, ContributionSubmitted, ContributionApproved, ContributionRejected:
		return true
	}
	return false
}

// Contribution is unique per (newsletter, user, type).
type Contribution struct {
	ID           uint               `gorm:"primaryKey" json:"id"`
	NewsletterID uint               `gorm:"not null;uniqueIndex:idx_contributions_triple,priority:1" json:"newsletter_id"`
	UserID       uint               `gorm:"not null;uniqueIndex:idx_contributions_triple,priority:2;index" json:"user_id"`
	Type         ContributionType   `gorm:"size:20;not null;default:'INFO';uniqueIndex:idx_contributions_triple,priority:3" json:"type"`
	Title        string             `gorm:"size:255;not null" json:"title"`
	Content      string             `gorm:"type:text;not null" json:"content"`
	Status       ContributionStatus `gorm:"size:20;not null;default:'SUBMITTED';index" json:"status"`
	CreatedAt    time.Time          `json:"created_at"`
	UpdatedAt    time.Time          `json:"updated_at"`
	Newsletter   *Newsletter        `gorm:"constraint:OnDelete:CASCADE" json:"-"`
	User         *User              `gorm:"constraint:OnDelete:CASCADE" json:"-"`
}
