package dto

type AuthRequest struct {
	Secret   string `json:"secret" validate:"required"`
	Username string `json:"username" validate:"required"`
}

type AuthResponse struct {
	Authenticated bool   `json:"authenticated"`
	Username      string `json:"username"`
}
