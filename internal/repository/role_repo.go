package repository

import (
	"context"

	"github.com/farahelhasan/Invoice-Tracking-System-Backend/internal/model"

	"gorm.io/gorm"
)

type RoleRepository interface {
	FindByID(ctx context.Context, tx *gorm.DB, id uint) (*model.Role, error)
	List(ctx context.Context) ([]model.Role, error)
}

type roleRepo struct{ db *gorm.DB }

func NewRoleRepository(db *gorm.DB) RoleRepository { return &roleRepo{db: db} }

func (r *roleRepo) FindByID(ctx context.Context, tx *gorm.DB, id uint) (*model.Role, error) {
	var role model.Role
	if err := conn(ctx, r.db, tx).First(&role, id).Error; err != nil {
		return nil, translate(err, "role")
	}
	return &role, nil
}

func (r *roleRepo) List(ctx context.Context) ([]model.Role, error) {
	var roles []model.Role
	err := r.db.WithContext(ctx).Order("id ASC").Find(&roles).Error
	return roles, translate(err, "role")
}
