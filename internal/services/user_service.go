package services

import (
	"errors"
	"fmt"

	"github.com/newsroom-tools/newsletter-backend/internal/dto"
	"github.com/newsroom-tools/newsletter-backend/internal/models"
	"gorm.io/gorm"
)

type UserService struct {
	db *gorm.DB
}

func NewUserService(db *gorm.DB) *UserService {
	return &UserService{db: db}
}

func (s *UserService) List() ([]models.User, error) {
	users := make([]models.User, 0)
	if err := s.db.Order("id ASC").Find(&users).Error; err != nil {
		return nil, fmt.Errorf("failed to fetch users: %w", err)
	}
	return users, nil
}

func (s *UserService) Get(id uint) (*models.User, error) {
	var user models.User
	if err := s.db.First(&user, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, fmt.Errorf("failed to fetch user: %w", err)
	}
	return &user, nil
}

func (s *UserService) Create(req *dto.UserCreateRequest) (*models.User, error) {
	hash, err := hashPassword(req.Password)
	if err != nil {
		return nil, err
	}

	role := req.GlobalRole
	if role == "" {
		role = models.RoleUser
	}

	user := models.User{
		Email:              req.Email,
		Trigram:            req.Trigram,
		Name:               req.Name,
		PasswordHash:       hash,
		GlobalRole:         role,
		IsActive:           true,
		MustChangePassword: true,
	}
	if err := s.db.Transaction(func(tx *gorm.DB) error {
		return createUser(tx, &user)
	}); err != nil {
		return nil, err
	}
	return &user, nil
}

func (s *UserService) Update(id uint, req *dto.UserUpdateRequest) (*models.User, error) {
	user, err := s.Get(id)
	if err != nil {
		return nil, err
	}

	updates := map[string]interface{}{}
	if req.Name != nil {
		updates["name"] = *req.Name
	}
	if req.GlobalRole != nil {
		updates["global_role"] = *req.GlobalRole
	}
	if req.IsActive != nil {
		updates["is_active"] = *req.IsActive
	}
	if len(updates) == 0 {
		return user, nil
	}

	if err := s.db.Model(user).Updates(updates).Error; err != nil {
		return nil, fmt.Errorf("failed to update user: %w", err)
	}
	return s.Get(id)
}

// Delete removes a user with its memberships, contributions and newsletter
// admin grants. Newsletters it created are kept with no creator.
func (s *UserService) Delete(id uint) error {
	if _, err := s.Get(id); err != nil {
		return err
	}

	return s.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("user_id = ?", id).Delete(&models.GroupMembership{}).Error; err != nil {
			return fmt.Errorf("failed to delete memberships: %w", err)
		}
		if err := tx.Where("user_id = ?", id).Delete(&models.Contribution{}).Error; err != nil {
			return fmt.Errorf("failed to delete contributions: %w", err)
		}
		if err := tx.Where("user_id = ?", id).Delete(&models.NewsletterAdmin{}).Error; err != nil {
			return fmt.Errorf("failed to delete newsletter admin grants: %w", err)
		}
		if err := tx.Model(&models.Newsletter{}).Where("created_by = ?", id).Update("created_by", nil).Error; err != nil {
			return fmt.Errorf("failed to detach newsletters: %w", err)
		}
		return tx.Delete(&models.User{}, id).Error
	})
}
