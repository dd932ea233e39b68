package dto

// AdminCreateUserRequest payload for admin-side account creation.
type AdminCreateUserRequest struct {
	Username    string `json:"username" validate:"required,min=3,max=50"`
	Email       string `json:"email" validate:"required,email"`
	Password    string `json:"password" validate:"required"`
	DisplayName string `json:"displayName" validate:"omitempty,max=100"`
	Role        string `json:"role" validate:"required,oneof=admin support it_staff user"`
}

// AdminUpdateUserRequest payload. Empty fields stay untouched.
type AdminUpdateUserRequest struct {
	Username    string `json:"username" validate:"omitempty,min=3,max=50"`
	Email       string `json:"email" validate:"omitempty,email"`
	Password    string `json:"password"`
	DisplayName string `json:"displayName" validate:"omitempty,max=100"`
	Role        string `json:"role" validate:"omitempty,oneof=admin support it_staff user"`
	Active      *bool  `json:"active"`
}

// ChangeRoleRequest payload.
type ChangeRoleRequest struct {
	Role string `json:"role" validate:"required,oneof=admin support it_staff user"`
}

// UserListResponse pairs accounts with pagination facts.
type UserListResponse struct {
	Users      []UserResponse `json:"users"`
	Pagination PageMeta       `json:"pagination"`
}
