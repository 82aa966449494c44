package services

import (
	"errors"
	"fmt"
	"log/slog"
	"strconv"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/newsroom-tools/newsletter-backend/internal/config"
	"github.com/newsroom-tools/newsletter-backend/internal/dto"
	"github.com/newsroom-tools/newsletter-backend/internal/metrics"
	"github.com/newsroom-tools/newsletter-backend/internal/models"
	"gorm.io/gorm"
)

type AuthService struct {
	db    *gorm.DB
	cfg   *config.Config
	perms *Permissions
}

func NewAuthService(db *gorm.DB, cfg *config.Config, perms *Permissions) *AuthService {
	return &AuthService{db: db, cfg: cfg, perms: perms}
}

func (s *AuthService) Login(req *dto.LoginRequest) (*dto.TokenResponse, error) {
	var user models.User
	if err := s.db.Where("email = ?", req.Username).First(&user).Error; err != nil {
		metrics.Logins.WithLabelValues("rejected").Inc()
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrInvalidCredentials
		}
		return nil, fmt.Errorf("failed to fetch user: %w", err)
	}

	if !checkPassword(user.PasswordHash, req.Password) {
		metrics.Logins.WithLabelValues("rejected").Inc()
		return nil, ErrInvalidCredentials
	}

	if err := s.perms.ReconcileRole(&user); err != nil {
		return nil, err
	}

	token, err := s.IssueToken(&user)
	if err != nil {
		return nil, err
	}

	metrics.Logins.WithLabelValues("accepted").Inc()
	return &dto.TokenResponse{
		AccessToken:        token,
		TokenType:          "bearer",
		MustChangePassword: user.MustChangePassword,
	}, nil
}

// ResolveActor loads the user a verified token was issued for. It is the
// second session boundary at which the allow-list promotion applies.
func (s *AuthService) ResolveActor(userID uint) (*models.User, error) {
	var user models.User
	if err := s.db.First(&user, userID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrInvalidToken
		}
		return nil, fmt.Errorf("failed to fetch user: %w", err)
	}

	if err := s.perms.ReconcileRole(&user); err != nil {
		return nil, err
	}
	if !user.IsActive {
		return nil, ErrInactiveUser
	}
	return &user, nil
}

// Me returns the actor with its group memberships.
func (s *AuthService) Me(actor *models.User) (*models.User, error) {
	var user models.User
	if err := s.db.Preload("Memberships.Group").First(&user, actor.ID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, fmt.Errorf("failed to fetch user: %w", err)
	}
	// Reflect a promotion applied during this request.
	user.GlobalRole = actor.GlobalRole
	return &user, nil
}

// BootstrapAdmin creates the first SUPER_ADMIN of a fresh store.
func (s *AuthService) BootstrapAdmin(req *dto.UserCreateRequest) (*models.User, error) {
	hash, err := hashPassword(req.Password)
	if err != nil {
		return nil, err
	}

	user := models.User{
		Email:              req.Email,
		Trigram:            req.Trigram,
		Name:               req.Name,
		PasswordHash:       hash,
		GlobalRole:         models.RoleSuperAdmin,
		IsActive:           true,
		MustChangePassword: true,
	}

	err = s.db.Transaction(func(tx *gorm.DB) error {
		var count int64
		if err := tx.Model(&models.User{}).Where("global_role = ?", models.RoleSuperAdmin).Count(&count).Error; err != nil {
			return fmt.Errorf("failed to count super admins: %w", err)
		}
		if count > 0 {
			return ErrSuperAdminExists
		}
		return createUser(tx, &user)
	})
	if err != nil {
		return nil, err
	}

	slog.Info("super admin bootstrapped", "user_id", user.ID)
	return &user, nil
}

func (s *AuthService) ChangePassword(actor *models.User, req *dto.PasswordChangeRequest) (*models.User, error) {
	if !checkPassword(actor.PasswordHash, req.CurrentPassword) {
		return nil, ErrWrongPassword
	}

	hash, err := hashPassword(req.NewPassword)
	if err != nil {
		return nil, err
	}

	if err := s.db.Model(actor).Updates(map[string]interface{}{
		"password_hash":        hash,
		"must_change_password": false,
	}).Error; err != nil {
		return nil, fmt.Errorf("failed to update password: %w", err)
	}
	actor.PasswordHash = hash
	actor.MustChangePassword = false
	return actor, nil
}

// ResetPassword sets a new password for another user and forces a change on
// their next login.
func (s *AuthService) ResetPassword(userID uint, req *dto.PasswordResetRequest) (*models.User, error) {
	var target models.User
	if err := s.db.First(&target, userID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, fmt.Errorf("failed to fetch user: %w", err)
	}

	hash, err := hashPassword(req.NewPassword)
	if err != nil {
		return nil, err
	}

	if err := s.db.Model(&target).Updates(map[string]interface{}{
		"password_hash":        hash,
		"must_change_password": true,
	}).Error; err != nil {
		return nil, fmt.Errorf("failed to reset password: %w", err)
	}
	target.PasswordHash = hash
	target.MustChangePassword = true
	return &target, nil
}

func (s *AuthService) IssueToken(user *models.User) (string, error) {
	now := time.Now()
	claims := jwt.MapClaims{
		"sub": strconv.FormatUint(uint64(user.ID), 10),
		"jti": uuid.NewString(),
		"iat": now.Unix(),
		"exp": now.Add(s.cfg.AccessTokenTTL()).Unix(),
	}

	token := jwt.NewWithClaims(jwt.GetSigningMethod(s.cfg.Algorithm), claims)
	signed, err := token.SignedString([]byte(s.cfg.SecretKey))
	if err != nil {
		return "", fmt.Errorf("failed to sign token: %w", err)
	}
	return signed, nil
}

// createUser inserts a user, translating unique-key collisions on email or
// trigram into conflicts.
func createUser(tx *gorm.DB, user *models.User) error {
	var count int64
	if err := tx.Model(&models.User{}).Where("email = ?", user.Email).Count(&count).Error; err != nil {
		return fmt.Errorf("failed to check email: %w", err)
	}
	if count > 0 {
		return ErrEmailTaken
	}
	if err := tx.Model(&models.User{}).Where("trigram = ?", user.Trigram).Count(&count).Error; err != nil {
		return fmt.Errorf("failed to check trigram: %w", err)
	}
	if count > 0 {
		return ErrTrigramTaken
	}

	if err := tx.Create(user).Error; err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return ErrEmailTaken
		}
		return fmt.Errorf("failed to create user: %w", err)
	}
	return nil
}
