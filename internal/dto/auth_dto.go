package dto

type LoginRequest struct {
	Email    string `json:"email"    validate:"required,email"`
	Password string `json:"password" validate:"required,min=6"`
}

type LoginResponse struct {
	Token     string  `json:"token"`
	ExpiresAt string  `json:"expires_at"`
	UserID    string  `json:"user_id"`
	Name      string  `json:"name"`
	Role      string  `json:"role"`
	BranchID  *string `json:"branch_id"`
}
