package services

import (
	"errors"
	"fmt"

	"github.com/newsroom-tools/newsletter-backend/internal/dto"
	"github.com/newsroom-tools/newsletter-backend/internal/models"
	"gorm.io/gorm"
)

type GroupService struct {
	db *gorm.DB
}

func NewGroupService(db *gorm.DB) *GroupService {
	return &GroupService{db: db}
}

func (s *GroupService) List() ([]models.Group, error) {
	groups := make([]models.Group, 0)
	if err := s.db.Order("name ASC").Find(&groups).Error; err != nil {
		return nil, fmt.Errorf("failed to fetch groups: %w", err)
	}
	return groups, nil
}

// Get returns the group with its memberships and their users.
func (s *GroupService) Get(id uint) (*models.Group, error) {
	var group models.Group
	if err := s.db.Preload("Memberships.User").First(&group, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrGroupNotFound
		}
		return nil, fmt.Errorf("failed to fetch group: %w", err)
	}
	return &group, nil
}

func (s *GroupService) Create(req *dto.GroupCreateRequest) (*models.Group, error) {
	if err := s.ensureNameFree(req.Name, 0); err != nil {
		return nil, err
	}

	group := models.Group{Name: req.Name, Description: req.Description}
	if err := s.db.Create(&group).Error; err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return nil, ErrGroupExists
		}
		return nil, fmt.Errorf("failed to create group: %w", err)
	}
	return &group, nil
}

func (s *GroupService) Update(id uint, req *dto.GroupUpdateRequest) (*models.Group, error) {
	var group models.Group
	if err := s.db.First(&group, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrGroupNotFound
		}
		return nil, fmt.Errorf("failed to fetch group: %w", err)
	}

	updates := map[string]interface{}{}
	if req.Name != nil && *req.Name != group.Name {
		if err := s.ensureNameFree(*req.Name, id); err != nil {
			return nil, err
		}
		updates["name"] = *req.Name
	}
	if req.Description != nil {
		updates["description"] = *req.Description
	}

	if len(updates) > 0 {
		if err := s.db.Model(&group).Updates(updates).Error; err != nil {
			if errors.Is(err, gorm.ErrDuplicatedKey) {
				return nil, ErrGroupExists
			}
			return nil, fmt.Errorf("failed to update group: %w", err)
		}
		if err := s.db.First(&group, id).Error; err != nil {
			return nil, fmt.Errorf("failed to reload group: %w", err)
		}
	}
	return &group, nil
}

// Delete removes a group and its memberships. Newsletters are not cascaded:
// a group that still owns newsletters is a conflict.
func (s *GroupService) Delete(id uint) error {
	return s.db.Transaction(func(tx *gorm.DB) error {
		var group models.Group
		if err := tx.First(&group, id).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrGroupNotFound
			}
			return fmt.Errorf("failed to fetch group: %w", err)
		}

		var newsletters int64
		if err := tx.Model(&models.Newsletter{}).Where("group_id = ?", id).Count(&newsletters).Error; err != nil {
			return fmt.Errorf("failed to count newsletters: %w", err)
		}
		if newsletters > 0 {
			return ErrGroupHasNewsletters
		}

		if err := tx.Where("group_id = ?", id).Delete(&models.GroupMembership{}).Error; err != nil {
			return fmt.Errorf("failed to delete memberships: %w", err)
		}
		return tx.Delete(&group).Error
	})
}

func (s *GroupService) AddMember(groupID uint, req *dto.GroupMemberAddRequest) (*models.Group, error) {
	role := req.RoleInGroup
	if role == "" {
		role = models.DefaultRoleInGroup
	}

	err := s.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.First(&models.Group{}, groupID).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrGroupNotFound
			}
			return fmt.Errorf("failed to fetch group: %w", err)
		}
		if err := tx.First(&models.User{}, req.UserID).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrUserNotFound
			}
			return fmt.Errorf("failed to fetch user: %w", err)
		}

		var count int64
		if err := tx.Model(&models.GroupMembership{}).
			Where("group_id = ? AND user_id = ?", groupID, req.UserID).
			Count(&count).Error; err != nil {
			return fmt.Errorf("failed to check membership: %w", err)
		}
		if count > 0 {
			return ErrAlreadyMember
		}

		membership := models.GroupMembership{GroupID: groupID, UserID: req.UserID, RoleInGroup: role}
		if err := tx.Create(&membership).Error; err != nil {
			if errors.Is(err, gorm.ErrDuplicatedKey) {
				return ErrAlreadyMember
			}
			return fmt.Errorf("failed to create membership: %w", err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return s.Get(groupID)
}

func (s *GroupService) RemoveMember(groupID, userID uint) error {
	result := s.db.Where("group_id = ? AND user_id = ?", groupID, userID).Delete(&models.GroupMembership{})
	if result.Error != nil {
		return fmt.Errorf("failed to delete membership: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		return ErrMemberNotFound
	}
	return nil
}

func (s *GroupService) ensureNameFree(name string, exceptID uint) error {
	var count int64
	if err := s.db.Model(&models.Group{}).Where("name = ? AND id <> ?", name, exceptID).Count(&count).Error; err != nil {
		return fmt.Errorf("failed to check group name: %w", err)
	}
	if count > 0 {
		return ErrGroupExists
	}
	return nil
}
