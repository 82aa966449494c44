package models

import (
	"strings"
	"time"
)

// GroupAdminRole is the role-in-group granting group-admin rights. It is
// compared case-insensitively.
const GroupAdminRole = "admin"

const DefaultRoleInGroup = "contributor"

type Group struct {
	ID          uint              `gorm:"primaryKey" json:"id"`
	Name        string            `gorm:"size:255;not null;uniqueIndex:idx_groups_name" json:"name"`
	Description *string           `gorm:"size:1000" json:"description"`
	CreatedAt   time.Time         `json:"created_at"`
	UpdatedAt   time.Time         `json:"updated_at"`
	Memberships []GroupMembership `gorm:"constraint:OnDelete:CASCADE" json:"members,omitempty"`
}

type GroupMembership struct {
	ID          uint      `gorm:"primaryKey" json:"id"`
	UserID      uint      `gorm:"not null;uniqueIndex:idx_group_memberships_pair,priority:1" json:"user_id"`
	GroupID     uint      `gorm:"not null;uniqueIndex:idx_group_memberships_pair,priority:2;index" json:"group_id"`
	RoleInGroup string    `gorm:"size:50;not null;default:'contributor'" json:"role_in_group"`
	CreatedAt   time.Time `json:"created_at"`
	User        *User     `gorm:"constraint:OnDelete:CASCADE" json:"user,omitempty"`
	Group       *Group    `gorm:"constraint:OnDelete:CASCADE" json:"group,omitempty"`
}

func (m *GroupMembership) IsAdmin() bool {
	return strings.ToLower(m.RoleInGroup) == GroupAdminRole
}
