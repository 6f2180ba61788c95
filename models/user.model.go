package models

import (
	"time"

	"gorm.io/gorm"
)

// Role values recognised by the platform.
const (
	RoleUser        = "user"
	RoleModerator   = "moderator"
	RoleAdminLevel1 = "admin_level_1"
	RoleAdminLevel2 = "admin_level_2"
	RoleAdminLevel3 = "admin_level_3"
	RoleSuperAdmin  = "super_admin"
)

type User struct {
	gorm.Model
	ProfileImage string     `gorm:"default:''"`
	Name         string     `gorm:"default:''"`
	Email        string     `gorm:"unique;not null"`
	Role         string     `gorm:"default:'user'"` // user, moderator, admin_level_1..3, super_admin
	Password     string     `gorm:"not null" json:"-"`
	IsStaff      bool       `gorm:"default:false"`
	Karma        int        `gorm:"default:0"`
	LastLogin    *time.Time `json:"last_login"`
	IsDeleted    bool       `gorm:"default:false"`
}

// IsAdministrator reports whether the user may bypass payment and moderation
// restrictions: any admin_* level, super admin, or the platform staff flag.
func (u User) IsAdministrator() bool {
	switch u.Role {
	case RoleAdminLevel1, RoleAdminLevel2, RoleAdminLevel3, RoleSuperAdmin:
		return true
	}
	return u.IsStaff
}

// IsModerator reports whether the user may decide course moderation.
func (u User) IsModerator() bool {
	return u.Role == RoleModerator || u.IsAdministrator()
}
