package services

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"

	"github.com/newsroom-tools/newsletter-backend/internal/dto"
	"github.com/newsroom-tools/newsletter-backend/internal/metrics"
	"github.com/newsroom-tools/newsletter-backend/internal/models"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

type NewsletterService struct {
	db       *gorm.DB
	perms    *Permissions
	renderer *Renderer
	drafts   *DraftGenerator
}

func NewNewsletterService(db *gorm.DB, perms *Permissions, renderer *Renderer, drafts *DraftGenerator) *NewsletterService {
	return &NewsletterService{db: db, perms: perms, renderer: renderer, drafts: drafts}
}

// List applies every provided filter as an AND predicate, most recent first.
func (s *NewsletterService) List(filter dto.NewsletterFilter) ([]models.Newsletter, error) {
	query := s.db.Model(&models.Newsletter{})
	if filter.GroupID != nil {
		query = query.Where("group_id = ?", *filter.GroupID)
	}
	if filter.Status != nil {
		query = query.Where("status = ?", *filter.Status)
	}
	if filter.Period != nil {
		query = query.Where("period = ?", *filter.Period)
	}
	if filter.UserID != nil {
		contributed := s.db.Model(&models.Contribution{}).Select("newsletter_id").Where("user_id = ?", *filter.UserID)
		query = query.Where("id IN (?)", contributed)
	}

	newsletters := make([]models.Newsletter, 0)
	if err := query.Order("created_at DESC").Order("id DESC").Find(&newsletters).Error; err != nil {
		return nil, fmt.Errorf("failed to fetch newsletters: %w", err)
	}
	return newsletters, nil
}

func (s *NewsletterService) Get(id uint) (*models.Newsletter, error) {
	return findNewsletter(s.db, id)
}

func (s *NewsletterService) Create(actor *models.User, req *dto.NewsletterCreateRequest) (*models.Newsletter, error) {
	if err := s.db.First(&models.Group{}, req.GroupID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrGroupNotFound
		}
		return nil, fmt.Errorf("failed to fetch group: %w", err)
	}

	if !s.perms.IsSuperAdmin(actor) {
		ok, err := s.perms.IsGroupAdmin(actor, req.GroupID)
		if err != nil {
			return nil, err
		}
		if !ok {
			return nil, ErrGroupAdmin
		}
	}

	status := req.Status
	if status == "" {
		status = models.NewsletterDraft
	}
	creator := actor.ID
	newsletter := models.Newsletter{
		Title:     req.Title,
		GroupID:   req.GroupID,
		Period:    req.Period,
		Status:    status,
		CreatedBy: &creator,
	}
	if err := s.db.Create(&newsletter).Error; err != nil {
		return nil, fmt.Errorf("failed to create newsletter: %w", err)
	}

	slog.Info("newsletter created", "newsletter_id", newsletter.ID, "user_id", actor.ID, "group_id", req.GroupID)
	return &newsletter, nil
}

func (s *NewsletterService) Update(id uint, actor *models.User, req *dto.NewsletterUpdateRequest) (*models.Newsletter, error) {
	newsletter, err := s.authorized(id, actor)
	if err != nil {
		return nil, err
	}

	updates := map[string]interface{}{}
	if req.Title != nil {
		updates["title"] = *req.Title
	}
	if req.Period != nil {
		updates["period"] = *req.Period
	}
	if req.Status != nil {
		updates["status"] = *req.Status
	}
	if layout := bytes.TrimSpace(req.LayoutConfig); len(layout) > 0 && !bytes.Equal(layout, []byte("null")) {
		if !isJSONObject(layout) {
			return nil, ErrInvalidLayout
		}
		updates["layout_config"] = datatypes.JSON(layout)
	}
	if req.RenderedHTML != nil {
		updates["rendered_html"] = s.renderer.SanitizeHTML(*req.RenderedHTML)
	}

	return s.save(newsletter, updates)
}

// Publish sets the status to PUBLISHED whatever the current status is.
func (s *NewsletterService) Publish(id uint, actor *models.User) (*models.Newsletter, error) {
	newsletter, err := s.authorized(id, actor)
	if err != nil {
		return nil, err
	}
	slog.Info("newsletter published", "newsletter_id", id, "user_id", actor.ID, "previous_status", string(newsletter.Status))
	return s.save(newsletter, map[string]interface{}{"status": models.NewsletterPublished})
}

func (s *NewsletterService) SetLayout(id uint, actor *models.User, layout []byte) (*models.Newsletter, error) {
	layout = bytes.TrimSpace(layout)
	if !isJSONObject(layout) {
		return nil, ErrInvalidLayout
	}

	newsletter, err := s.authorized(id, actor)
	if err != nil {
		return nil, err
	}
	return s.save(newsletter, map[string]interface{}{"layout_config": datatypes.JSON(layout)})
}

// Render writes the HTML document built from approved contributions. The
// layout is only initialized when none has been stored yet.
func (s *NewsletterService) Render(id uint, actor *models.User) (*models.Newsletter, error) {
	newsletter, err := s.authorized(id, actor)
	if err != nil {
		return nil, err
	}

	approved, err := s.approvedContributions(id)
	if err != nil {
		return nil, err
	}

	html, layout, err := s.renderer.Render(newsletter, approved)
	if err != nil {
		return nil, err
	}
	updates := map[string]interface{}{"rendered_html": html}
	if !newsletter.HasLayout() {
		raw, err := json.Marshal(layout)
		if err != nil {
			return nil, fmt.Errorf("failed to encode layout: %w", err)
		}
		updates["layout_config"] = datatypes.JSON(raw)
	}

	metrics.Renders.Inc()
	return s.save(newsletter, updates)
}

// GenerateDraft overwrites the layout with an AI-assisted draft. Failures of
// the external call never surface here.
func (s *NewsletterService) GenerateDraft(ctx context.Context, id uint, actor *models.User) (*models.Newsletter, error) {
	newsletter, err := s.authorized(id, actor)
	if err != nil {
		return nil, err
	}

	approved, err := s.approvedContributions(id)
	if err != nil {
		return nil, err
	}

	draft := s.drafts.Generate(ctx, newsletter, approved)
	raw, err := json.Marshal(draft)
	if err != nil {
		return nil, fmt.Errorf("failed to encode draft: %w", err)
	}
	return s.save(newsletter, map[string]interface{}{"layout_config": datatypes.JSON(raw)})
}

// Delete removes the newsletter with its contributions and admin grants.
func (s *NewsletterService) Delete(id uint, actor *models.User) error {
	if _, err := s.authorized(id, actor); err != nil {
		return err
	}

	return s.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("newsletter_id = ?", id).Delete(&models.Contribution{}).Error; err != nil {
			return fmt.Errorf("failed to delete contributions: %w", err)
		}
		if err := tx.Where("newsletter_id = ?", id).Delete(&models.NewsletterAdmin{}).Error; err != nil {
			return fmt.Errorf("failed to delete newsletter admin grants: %w", err)
		}
		return tx.Delete(&models.Newsletter{}, id).Error
	})
}

func (s *NewsletterService) ListAdmins(id uint, actor *models.User) ([]models.NewsletterAdmin, error) {
	if _, err := s.authorized(id, actor); err != nil {
		return nil, err
	}

	grants := make([]models.NewsletterAdmin, 0)
	if err := s.db.Preload("User").Where("newsletter_id = ?", id).Order("id ASC").Find(&grants).Error; err != nil {
		return nil, fmt.Errorf("failed to fetch newsletter admins: %w", err)
	}
	return grants, nil
}

func (s *NewsletterService) GrantAdmin(id uint, actor *models.User, userID uint) (*models.NewsletterAdmin, error) {
	if _, err := s.authorized(id, actor); err != nil {
		return nil, err
	}

	grant := models.NewsletterAdmin{NewsletterID: id, UserID: userID}
	err := s.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.First(&models.User{}, userID).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrUserNotFound
			}
			return fmt.Errorf("failed to fetch user: %w", err)
		}

		var count int64
		if err := tx.Model(&models.NewsletterAdmin{}).
			Where("newsletter_id = ? AND user_id = ?", id, userID).
			Count(&count).Error; err != nil {
			return fmt.Errorf("failed to check grant: %w", err)
		}
		if count > 0 {
			return ErrGrantExists
		}

		if err := tx.Create(&grant).Error; err != nil {
			if errors.Is(err, gorm.ErrDuplicatedKey) {
				return ErrGrantExists
			}
			return fmt.Errorf("failed to create grant: %w", err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	slog.Info("newsletter admin granted", "newsletter_id", id, "user_id", userID, "granted_by", actor.ID)
	return &grant, nil
}

func (s *NewsletterService) RevokeAdmin(id uint, actor *models.User, userID uint) error {
	if _, err := s.authorized(id, actor); err != nil {
		return err
	}

	result := s.db.Where("newsletter_id = ? AND user_id = ?", id, userID).Delete(&models.NewsletterAdmin{})
	if result.Error != nil {
		return fmt.Errorf("failed to revoke grant: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		return ErrGrantNotFound
	}
	return nil
}

// authorized loads the newsletter and gates it with EnsureNewsletterAdmin.
func (s *NewsletterService) authorized(id uint, actor *models.User) (*models.Newsletter, error) {
	newsletter, err := findNewsletter(s.db, id)
	if err != nil {
		return nil, err
	}
	if err := s.perms.EnsureNewsletterAdmin(actor, newsletter); err != nil {
		return nil, err
	}
	return newsletter, nil
}

func (s *NewsletterService) approvedContributions(newsletterID uint) ([]models.Contribution, error) {
	var contributions []models.Contribution
	if err := s.db.
		Where("newsletter_id = ? AND status = ?", newsletterID, models.ContributionApproved).
		Order("id ASC").
		Find(&contributions).Error; err != nil {
		return nil, fmt.Errorf("failed to fetch approved contributions: %w", err)
	}
	return contributions, nil
}

func (s *NewsletterService) save(newsletter *models.Newsletter, updates map[string]interface{}) (*models.Newsletter, error) {
	if len(updates) > 0 {
		if err := s.db.Model(newsletter).Updates(updates).Error; err != nil {
			return nil, fmt.Errorf("failed to update newsletter: %w", err)
		}
	}
	return findNewsletter(s.db, newsletter.ID)
}

func findNewsletter(db *gorm.DB, id uint) (*models.Newsletter, error) {
	var newsletter models.Newsletter
	if err := db.First(&newsletter, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNewsletterNotFound
		}
		return nil, fmt.Errorf("failed to fetch newsletter: %w", err)
	}
	return &newsletter, nil
}

func isJSONObject(raw []byte) bool {
	var obj map[string]json.RawMessage
	return len(raw) > 0 && raw[0] == '{' && json.Unmarshal(raw, &obj) == nil
}
