package model

// Role names seeded at startup. Any other role id behaves like a plain user
// with no elevated capability.
const (
	RoleSuperuser = "SUPERUSER"
	RoleAuditor   = "AUDITOR"
	RoleUser      = "USER"
)

// Seeded role ids, matching the original reference data.
const (
	RoleIDSuperuser uint = 1
	RoleIDAuditor   uint = 2
	RoleIDUser      uint = 3
)

// Role is static reference data: (id, name).
type Role struct {
	ID   uint   `gorm:"primaryKey"`
	Name string `gorm:"type:varchar(30);uniqueIndex;not null"`
}

func (Role) TableName() string { return "roles" }
