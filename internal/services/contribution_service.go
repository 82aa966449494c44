package services

import (
	"errors"
	"fmt"

	"github.com/newsroom-tools/newsletter-backend/internal/dto"
	"github.com/newsroom-tools/newsletter-backend/internal/models"
	"gorm.io/gorm"
)

type ContributionService struct {
	db    *gorm.DB
	perms *Permissions
}

func NewContributionService(db *gorm.DB, perms *Permissions) *ContributionService {
	return &ContributionService{db: db, perms: perms}
}

// Upsert creates the actor's contribution of the given type or overwrites
// the existing one. Any active actor may contribute to an existing
// newsletter.
func (s *ContributionService) Upsert(newsletterID uint, actor *models.User, req *dto.ContributionCreateRequest) (*models.Contribution, error) {
	if _, err := findNewsletter(s.db, newsletterID); err != nil {
		return nil, err
	}

	status := req.Status
	if status == "" {
		status = models.ContributionSubmitted
	}
	contribution := models.Contribution{
		NewsletterID: newsletterID,
		UserID:       actor.ID,
		Type:         req.Type,
		Title:        req.Title,
		Content:      req.Content,
		Status:       status,
	}

	err := s.upsert(&contribution)
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		// A concurrent request created the row between lookup and insert.
		err = s.upsert(&contribution)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to save contribution: %w", err)
	}
	return &contribution, nil
}

func (s *ContributionService) upsert(c *models.Contribution) error {
	return s.db.Transaction(func(tx *gorm.DB) error {
		var existing models.Contribution
		err := tx.Where("newsletter_id = ? AND user_id = ? AND type = ?", c.NewsletterID, c.UserID, c.Type).
			First(&existing).Error
		if errors.Is(err, gorm.ErrRecordNotFound) {
			c.ID = 0
			return tx.Create(c).Error
		}
		if err != nil {
			return err
		}

		if err := tx.Model(&existing).Updates(map[string]interface{}{
			"title":   c.Title,
			"content": c.Content,
			"status":  c.Status,
		}).Error; err != nil {
			return err
		}
		*c = models.Contribution{}
		return tx.First(c, existing.ID).Error
	})
}

// Update applies a partial update. Only the owner or a global ADMIN may
// edit; newsletter and group admin grants are not consulted here.
func (s *ContributionService) Update(id uint, actor *models.User, req *dto.ContributionUpdateRequest) (*models.Contribution, error) {
	contribution, err := s.find(id)
	if err != nil {
		return nil, err
	}
	if contribution.UserID != actor.ID && actor.GlobalRole != models.RoleAdmin {
		return nil, ErrNotOwner
	}

	updates := map[string]interface{}{}
	if req.Type != nil {
		updates["type"] = *req.Type
	}
	if req.Title != nil {
		updates["title"] = *req.Title
	}
	if req.Content != nil {
		updates["content"] = *req.Content
	}
	if req.Status != nil {
		updates["status"] = *req.Status
	}
	if len(updates) == 0 {
		return contribution, nil
	}

	if err := s.db.Model(contribution).Updates(updates).Error; err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return nil, ErrDuplicateContrib
		}
		return nil, fmt.Errorf("failed to update contribution: %w", err)
	}
	return s.find(id)
}

func (s *ContributionService) SetStatus(id uint, actor *models.User, status models.ContributionStatus) (*models.Contribution, error) {
	contribution, err := s.find(id)
	if err != nil {
		return nil, err
	}
	newsletter, err := findNewsletter(s.db, contribution.NewsletterID)
	if err != nil {
		return nil, err
	}
	if err := s.perms.EnsureNewsletterAdmin(actor, newsletter); err != nil {
		return nil, err
	}

	if err := s.db.Model(contribution).Update("status", status).Error; err != nil {
		return nil, fmt.Errorf("failed to update contribution status: %w", err)
	}
	return s.find(id)
}

// List returns every contribution of the newsletter to its admins.
func (s *ContributionService) List(newsletterID uint, actor *models.User) ([]models.Contribution, error) {
	newsletter, err := findNewsletter(s.db, newsletterID)
	if err != nil {
		return nil, err
	}
	if err := s.perms.EnsureNewsletterAdmin(actor, newsletter); err != nil {
		return nil, err
	}
	return s.list(s.db.Where("newsletter_id = ?", newsletterID))
}

// ListMine returns the actor's own contributions to the newsletter.
func (s *ContributionService) ListMine(newsletterID uint, actor *models.User) ([]models.Contribution, error) {
	if _, err := findNewsletter(s.db, newsletterID); err != nil {
		return nil, err
	}
	return s.list(s.db.Where("newsletter_id = ? AND user_id = ?", newsletterID, actor.ID))
}

func (s *ContributionService) list(query *gorm.DB) ([]models.Contribution, error) {
	contributions := make([]models.Contribution, 0)
	if err := query.Order("id ASC").Find(&contributions).Error; err != nil {
		return nil, fmt.Errorf("failed to fetch contributions: %w", err)
	}
	return contributions, nil
}

func (s *ContributionService) find(id uint) (*models.Contribution, error) {
	var contribution models.Contribution
	if err := s.db.First(&contribution, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrContributionNotFound
		}
		return nil, fmt.Errorf("failed to fetch contribution: %w", err)
	}
	return &contribution, nil
}
