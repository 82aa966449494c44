package services

import (
	"bytes"
	"errors"
	"fmt"

	"github.com/newsroom-tools/newsletter-backend/internal/dto"
	"github.com/newsroom-tools/newsletter-backend/internal/models"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

// TemplateService manages the catalog of reusable layouts. Reading is open to
// any active actor; writing requires a global admin.
type TemplateService struct {
	db    *gorm.DB
	perms *Permissions
}

func NewTemplateService(db *gorm.DB, perms *Permissions) *TemplateService {
	return &TemplateService{db: db, perms: perms}
}

func (s *TemplateService) List() ([]models.Template, error) {
	templates := make([]models.Template, 0)
	if err := s.db.Order("name ASC").Find(&templates).Error; err != nil {
		return nil, fmt.Errorf("failed to fetch templates: %w", err)
	}
	return templates, nil
}

func (s *TemplateService) Get(id uint) (*models.Template, error) {
	var template models.Template
	if err := s.db.First(&template, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrTemplateNotFound
		}
		return nil, fmt.Errorf("failed to fetch template: %w", err)
	}
	return &template, nil
}

func (s *TemplateService) Create(actor *models.User, req *dto.TemplateCreateRequest) (*models.Template, error) {
	if err := s.perms.RequireAdmin(actor); err != nil {
		return nil, err
	}
	layout, err := optionalLayout(req.LayoutConfig)
	if err != nil {
		return nil, err
	}
	if err := s.ensureNameFree(req.Name, 0); err != nil {
		return nil, err
	}

	template := models.Template{Name: req.Name, LayoutConfig: layout, Description: req.Description}
	if err := s.db.Create(&template).Error; err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return nil, ErrTemplateExists
		}
		return nil, fmt.Errorf("failed to create template: %w", err)
	}
	return &template, nil
}

func (s *TemplateService) Update(id uint, actor *models.User, req *dto.TemplateUpdateRequest) (*models.Template, error) {
	if err := s.perms.RequireAdmin(actor); err != nil {
		return nil, err
	}
	template, err := s.Get(id)
	if err != nil {
		return nil, err
	}

	updates := map[string]interface{}{}
	if req.Name != nil && *req.Name != template.Name {
		if err := s.ensureNameFree(*req.Name, id); err != nil {
			return nil, err
		}
		updates["name"] = *req.Name
	}
	layout, err := optionalLayout(req.LayoutConfig)
	if err != nil {
		return nil, err
	}
	if layout != nil {
		updates["layout_config"] = layout
	}
	if req.Description != nil {
		updates["description"] = *req.Description
	}
	if len(updates) == 0 {
		return template, nil
	}

	if err := s.db.Model(template).Updates(updates).Error; err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return nil, ErrTemplateExists
		}
		return nil, fmt.Errorf("failed to update template: %w", err)
	}
	return s.Get(id)
}

func (s *TemplateService) Delete(id uint, actor *models.User) error {
	if err := s.perms.RequireAdmin(actor); err != nil {
		return err
	}
	result := s.db.Delete(&models.Template{}, id)
	if result.Error != nil {
		return fmt.Errorf("failed to delete template: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		return ErrTemplateNotFound
	}
	return nil
}

func (s *TemplateService) ensureNameFree(name string, exceptID uint) error {
	var count int64
	if err := s.db.Model(&models.Template{}).Where("name = ? AND id <> ?", name, exceptID).Count(&count).Error; err != nil {
		return fmt.Errorf("failed to check template name: %w", err)
	}
	if count > 0 {
		return ErrTemplateExists
	}
	return nil
}

// optionalLayout treats an absent or null layout as "not provided".
func optionalLayout(raw []byte) (datatypes.JSON, error) {
	raw = bytes.TrimSpace(raw)
	if len(raw) == 0 || bytes.Equal(raw, []byte("null")) {
		return nil, nil
	}
	if !isJSONObject(raw) {
		return nil, ErrInvalidLayout
	}
	return datatypes.JSON(raw), nil
}
