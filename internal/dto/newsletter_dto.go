package dto

import (
	"encoding/json"

	"github.com/newsroom-tools/newsletter-backend/internal/models"
)

type GroupCreateRequest struct {
	Name        string  `json:"name" validate:"required,max=255"`
	Description *string `json:"description" validate:"omitempty,max=1000"`
}

type GroupUpdateRequest struct {
	Name        *string `json:"name" validate:"omitempty,min=1,max=255"`
	Description *string `json:"description" validate:"omitempty,max=1000"`
}

type GroupMemberAddRequest struct {
	UserID      uint   `json:"user_id" validate:"required"`
	RoleInGroup string `json:"role_in_group" validate:"omitempty,max=50"`
}

type NewsletterCreateRequest struct {
	Title   string                  `json:"title" validate:"required,max=255"`
	GroupID uint                    `json:"group_id" validate:"required"`
	Period  *string                 `json:"period" validate:"omitempty,max=100"`
	Status  models.NewsletterStatus `json:"status" validate:"omitempty,oneof=DRAFT COLLECTING REVIEW APPROVED PUBLISHED"`
}

// NewsletterUpdateRequest carries a partial update; nil fields are left
// untouched, as is a null layout_config.
type NewsletterUpdateRequest struct {
	Title        *string                  `json:"title" validate:"omitempty,min=1,max=255"`
	Period       *string                  `json:"period" validate:"omitempty,max=100"`
	Status       *models.NewsletterStatus `json:"status" validate:"omitempty,oneof=DRAFT COLLECTING REVIEW APPROVED PUBLISHED"`
	LayoutConfig json.RawMessage          `json:"layout_config"`
	RenderedHTML *string                  `json:"rendered_html"`
}

// NewsletterFilter holds the optional AND predicates of the newsletter list.
type NewsletterFilter struct {
	GroupID *uint
	Status  *models.NewsletterStatus
	Period  *string
	UserID  *uint
}

type NewsletterAdminGrantRequest struct {
	UserID uint `json:"user_id" validate:"required"`
}

type ContributionCreateRequest struct {
	Type    models.ContributionType   `json:"type" validate:"required,oneof=SUCCESS FAIL INFO OTHER"`
	Title   string                    `json:"title" validate:"required,max=255"`
	Content string                    `json:"content"`
	Status  models.ContributionStatus `json:"status" validate:"omitempty,oneof=DRAFT SUBMITTED APPROVED REJECTED"`
}

type ContributionUpdateRequest struct {
	Type    *models.ContributionType   `json:"type" validate:"omitempty,oneof=SUCCESS FAIL INFO OTHER"`
	Title   *string                    `json:"title" validate:"omitempty,min=1,max=255"`
	Content *string                    `json:"content"`
	Status  *models.ContributionStatus `json:"status" validate:"omitempty,oneof=DRAFT SUBMITTED APPROVED REJECTED"`
}

type ContributionStatusRequest struct {
	Status models.ContributionStatus `json:"status" validate:"required,oneof=DRAFT SUBMITTED APPROVED REJECTED"`
}

type TemplateCreateRequest struct {
	Name         string          `json:"name" validate:"required,max=255"`
	LayoutConfig json.RawMessage `json:"layout_config"`
	Description  *string         `json:"description" validate:"omitempty,max=1000"`
}

type TemplateUpdateRequest struct {
	Name         *string         `json:"name" validate:"omitempty,min=1,max=255"`
	LayoutConfig json.RawMessage `json:"layout_config"`
	Description  *string         `json:"description" validate:"omitempty,max=1000"`
}
