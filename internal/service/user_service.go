package service

import (
	"context"

	"github.com/farahelhasan/Invoice-Tracking-System-Backend/internal/apierror"
	"github.com/farahelhasan/Invoice-Tracking-System-Backend/internal/dto"
	"github.com/farahelhasan/Invoice-Tracking-System-Backend/internal/policy"
	"github.com/farahelhasan/Invoice-Tracking-System-Backend/internal/repository"

	"github.com/rs/zerolog/log"
	"gorm.io/gorm"
)

type UserService interface {
	ChangeRole(ctx context.Context, id policy.Identity, req dto.ChangeRoleRequest) (*dto.UserResponse, error)
	ListRoles(ctx context.Context, id policy.Identity) ([]dto.RoleResponse, error)
}

type userService struct {
	users repository.UserRepository
	roles repository.RoleRepository
}

func NewUserService(users repository.UserRepository, roles repository.RoleRepository) UserService {
	return &userService{users: users, roles: roles}
}

// ChangeRole assigns a new role to the user identified by email. The change
// applies from the target's next request.
func (s *userService) ChangeRole(ctx context.Context, id policy.Identity, req dto.ChangeRoleRequest) (*dto.UserResponse, error) {
	var resp *dto.UserResponse
	err := runTx(ctx, s.users.DB(), func(tx *gorm.DB) error {
		p, err := resolve(ctx, s.users, tx, id)
		if err != nil {
			return err
		}
		if !policy.CanAdminister(p) {
			return apierror.AccessDenied()
		}
		if _, err := s.roles.FindByID(ctx, tx, req.RoleID); err != nil {
			return err
		}
		target, err := s.users.FindByEmail(ctx, tx, req.Email)
		if err != nil {
			return err
		}
		if err := s.users.UpdateRole(ctx, tx, target.ID, req.RoleID); err != nil {
			return err
		}
		updated, err := s.users.FindByID(ctx, tx, target.ID)
		if err != nil {
			return err
		}
		r := toUserResponse(updated)
		resp = &r
		return nil
	})
	if err != nil {
		return nil, err
	}

	log.Info().Str("email", resp.Email).Str("role", resp.Role).Str("by", id.Email).Msg("user role changed")
	return resp, nil
}

func (s *userService) ListRoles(ctx context.Context, id policy.Identity) ([]dto.RoleResponse, error) {
	p, err := resolve(ctx, s.users, nil, id)
	if err != nil {
		return nil, err
	}
	if !policy.CanAdminister(p) {
		return nil, apierror.AccessDenied()
	}
	roles, err := s.roles.List(ctx)
	if err != nil {
		return nil, err
	}
	resp := make([]dto.RoleResponse, len(roles))
	for i, r := range roles {
		resp[i] = dto.RoleResponse{ID: r.ID, Name: r.Name}
	}
	return resp, nil
}
