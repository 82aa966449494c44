package models

import "time"

type GlobalRole string

const (
	RoleUser       GlobalRole = "USER"
	RoleAdmin      GlobalRole = "ADMIN"
	RoleSuperAdmin GlobalRole = "SUPER_ADMIN"
)

func (r GlobalRole) Valid() bool {
	switch r {
	case RoleUser, RoleAdmin, RoleSuperAdmin:
		return true
	}
	return false
}

type User struct {
	ID                 uint              `gorm:"primaryKey" json:"id"`
	Email              string            `gorm:"size:255;not null;uniqueIndex:idx_users_email" json:"email"`
	Trigram            string            `gorm:"size:16;not null;uniqueIndex:idx_users_trigram" json:"trigram"`
	PasswordHash       string            `gorm:"not null" json:"-"`
	Name               string            `gorm:"size:255;not null" json:"name"`
	GlobalRole         GlobalRole        `gorm:"size:20;not null;default:'USER'" json:"global_role"`
	IsActive           bool              `gorm:"not null;default:true" json:"is_active"`
	MustChangePassword bool              `gorm:"not null;default:true" json:"must_change_password"`
	CreatedAt          time.Time         `json:"created_at"`
	UpdatedAt          time.Time         `json:"updated_at"`
	Memberships        []GroupMembership `gorm:"constraint:OnDelete:CASCADE" json:"memberships,omitempty"`
}
