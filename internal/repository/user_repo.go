package repository

import (
	"context"
	"strings"

	"github.com/farahelhasan/Invoice-Tracking-System-Backend/internal/model"

	"gorm.io/gorm"
)

type UserRepository interface {
	Create(ctx context.Context, tx *gorm.DB, u *model.User) error
	FindByEmail(ctx context.Context, tx *gorm.DB, email string) (*model.User, error)
	FindByID(ctx context.Context, tx *gorm.DB, id uint) (*model.User, error)
	UpdateRole(ctx context.Context, tx *gorm.DB, id, roleID uint) error
	DB() *gorm.DB
}

type userRepo struct{ db *gorm.DB }

func NewUserRepository(db *gorm.DB) UserRepository { return &userRepo{db: db} }

func (r *userRepo) DB() *gorm.DB { return r.db }

func (r *userRepo) Create(ctx context.Context, tx *gorm.DB, u *model.User) error {
	u.Email = normalizeEmail(u.Email)
	return translate(conn(ctx, r.db, tx).Create(u).Error, "user")
}

// FindByEmail matches case-insensitively; the role is preloaded.
func (r *userRepo) FindByEmail(ctx context.Context, tx *gorm.DB, email string) (*model.User, error) {
	var u model.User
	err := conn(ctx, r.db, tx).
		Preload("Role").
		Where("email = ?", normalizeEmail(email)).
		First(&u).Error
	if err != nil {
		return nil, translate(err, "user")
	}
	return &u, nil
}

func (r *userRepo) FindByID(ctx context.Context, tx *gorm.DB, id uint) (*model.User, error) {
	var u model.User
	if err := conn(ctx, r.db, tx).Preload("Role").First(&u, id).Error; err != nil {
		return nil, translate(err, "user")
	}
	return &u, nil
}

func (r *userRepo) UpdateRole(ctx context.Context, tx *gorm.DB, id, roleID uint) error {
	res := conn(ctx, r.db, tx).Model(&model.User{}).Where("id = ?", id).Update("role_id", roleID)
	if res.Error != nil {
		return translate(res.Error, "user")
	}
	if res.RowsAffected == 0 {
		return translate(gorm.ErrRecordNotFound, "user")
	}
	return nil
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}
