package dto

import "github.com/duvallb/records-request-api/internal/models"

// CreateUserRequest is the admin payload for provisioning staff or admin
// accounts. Citizens self-register through the auth endpoints instead.
type CreateUserRequest struct {
	Email    string          `json:"email" validate:"required,email"`
	Password string          `json:"password" validate:"required,min=8"`
	FullName string          `json:"full_name" validate:"required,min=2,max=120"`
	Role     models.UserRole `json:"role" validate:"required,oneof=citizen staff admin"`
}

// UpdateRoleRequest changes a user's role.
type UpdateRoleRequest struct {
	Role models.UserRole `json:"role" validate:"required,oneof=citizen staff admin"`
}

// UpdateEmailRequest changes a user's login email.
type UpdateEmailRequest struct {
	Email string `json:"email" validate:"required,email"`
}

// UserQuery mirrors supported user listing filters.
type UserQuery struct {
	Role     string `form:"role"`
	Search   string `form:"search"`
	Page     int    `form:"page"`
	PageSize int    `form:"page_size"`
}

// StaffMember is a staff row annotated with current workload, used by the
// assignment picker.
type StaffMember struct {
	ID            string `json:"id"`
	FullName      string `json:"full_name"`
	Email         string `json:"email"`
	AssignedCount int    `json:"assigned_count"`
}
