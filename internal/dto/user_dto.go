package dto

type ChangeRoleRequest struct {
	Email  string `json:"email"   validate:"required,email"`
	RoleID uint   `json:"role_id" validate:"required,min=1"`
}

type UserResponse struct {
	ID       uint   `json:"id"`
	FullName string `json:"full_name"`
	Email    string `json:"email"`
	Role     string `json:"role"`
}

type RoleResponse struct {
	ID   uint   `json:"id"`
	Name string `json:"name"`
}
