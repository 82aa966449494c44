package services

import (
	"errors"
	"fmt"
	"log/slog"

	"github.com/newsroom-tools/newsletter-backend/internal/metrics"
	"github.com/newsroom-tools/newsletter-backend/internal/models"
	"gorm.io/gorm"
)

// Permissions resolves what an actor may do. Authorization has three tiers:
// the global role, the role held inside a group, and explicit per-newsletter
// grants. A super-admin passes every check.
type Permissions struct {
	db               *gorm.DB
	superAdminEmails map[string]struct{}
}

func NewPermissions(db *gorm.DB, superAdminEmails []string) *Permissions {
	set := make(map[string]struct{}, len(superAdminEmails))
	for _, e := range superAdminEmails {
		set[e] = struct{}{}
	}
	return &Permissions{db: db, superAdminEmails: set}
}

func (p *Permissions) isAllowListed(email string) bool {
	_, ok := p.superAdminEmails[email]
	return ok
}

func (p *Permissions) IsSuperAdmin(actor *models.User) bool {
	return actor.GlobalRole == models.RoleSuperAdmin || p.isAllowListed(actor.Email)
}

func (p *Permissions) IsGroupAdmin(actor *models.User, groupID uint) (bool, error) {
	var membership models.GroupMembership
	err := p.db.Where("group_id = ? AND user_id = ?", groupID, actor.ID).First(&membership).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("failed to fetch membership: %w", err)
	}
	return membership.IsAdmin(), nil
}

func (p *Permissions) IsNewsletterAdmin(actor *models.User, newsletterID uint) (bool, error) {
	var count int64
	err := p.db.Model(&models.NewsletterAdmin{}).
		Where("newsletter_id = ? AND user_id = ?", newsletterID, actor.ID).
		Count(&count).Error
	if err != nil {
		return false, fmt.Errorf("failed to fetch newsletter admin grant: %w", err)
	}
	return count > 0, nil
}

// EnsureNewsletterAdmin is the gate for every newsletter mutation and every
// contribution status change.
func (p *Permissions) EnsureNewsletterAdmin(actor *models.User, newsletter *models.Newsletter) error {
	if p.IsSuperAdmin(actor) {
		return nil
	}

	ok, err := p.IsNewsletterAdmin(actor, newsletter.ID)
	if err != nil {
		return err
	}
	if ok {
		return nil
	}

	if actor.GlobalRole == models.RoleAdmin {
		ok, err := p.IsGroupAdmin(actor, newsletter.GroupID)
		if err != nil {
			return err
		}
		if ok {
			return nil
		}
	}

	return ErrNewsletterAdmin
}

func (p *Permissions) RequireAdmin(actor *models.User) error {
	if actor.GlobalRole == models.RoleAdmin || p.IsSuperAdmin(actor) {
		return nil
	}
	return ErrAdminRequired
}

func (p *Permissions) RequireSuperAdmin(actor *models.User) error {
	if p.IsSuperAdmin(actor) {
		return nil
	}
	return ErrSuperAdmin
}

// ReconcileRole upgrades and persists the stored role of an allow-listed
// actor to SUPER_ADMIN. It writes on what is otherwise a read path, so it is
// only called at session boundaries: login and current-actor resolution.
func (p *Permissions) ReconcileRole(actor *models.User) error {
	if !p.isAllowListed(actor.Email) || actor.GlobalRole == models.RoleSuperAdmin {
		return nil
	}

	previous := actor.GlobalRole
	if err := p.db.Model(actor).Update("global_role", models.RoleSuperAdmin).Error; err != nil {
		return fmt.Errorf("failed to promote user: %w", err)
	}
	actor.GlobalRole = models.RoleSuperAdmin

	metrics.RolePromotions.Inc()
	slog.Info("user promoted to super admin from allow-list",
		"user_id", actor.ID, "previous_role", string(previous))
	return nil
}
