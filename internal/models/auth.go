package models

// LoginRequest holds credentials submitted from the sign-in form.
type LoginRequest struct {
	Username  string `json:"username" validate:"required"`
	Password  string `json:"password" validate:"required"`
	IP        string `json:"-"`
	UserAgent string `json:"-"`
}

// UpstreamLoginResult mirrors the platform /auth/login response payload.
type UpstreamLoginResult struct {
	Token        string           `json:"token"`
	RefreshToken string           `json:"refreshToken"`
	User         UpstreamUserInfo `json:"user"`
}

// UpstreamUserInfo describes the authenticated user as reported upstream.
// The role is a free-text label and is normalised via ResolveRole.
type UpstreamUserInfo struct {
	Username string `json:"username"`
	FullName string `json:"fullName"`
	Email    string `json:"email"`
	Role     string `json:"role"`
}

// ChangePasswordRequest payload forwarded to the platform API.
type ChangePasswordRequest struct {
	OldPassword string `json:"old_password" validate:"required"`
	NewPassword string `json:"new_password" validate:"required,min=6"`
}
