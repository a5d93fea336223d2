package api

import "time"

type SignupRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
	Role     int32  `json:"role,omitempty"`
}

type SigninRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type RefreshTokenRequest struct {
	RefreshToken string `json:"refresh_token"`
}

type TokenPair struct {
	AccessToken  string `json:"access_token"`
	RefreshToken string `json:"refresh_token"`
}

type Account struct {
	ID        string    `json:"id"`
	Email     string    `json:"email"`
	Role      int32     `json:"role"`
	CreatedAt time.Time `json:"created_at"`
}

// GetAccountRequest with neither AccountID nor Email means the caller's own
// account. Lookup by email is for admins.
type GetAccountRequest struct {
	AccountID string `json:"account_id,omitempty"`
	Email     string `json:"email,omitempty"`
}

type ListAccountsRequest struct{}

type ListAccountsResponse struct {
	Accounts []Account `json:"accounts"`
}

type UpdateAccountRoleRequest struct {
	AccountID string `json:"account_id"`
	Role      int32  `json:"role"`
}

// UpdateAccountEmailRequest with an empty AccountID targets the caller.
type UpdateAccountEmailRequest struct {
	AccountID string `json:"account_id,omitempty"`
	Email     string `json:"email"`
}

// ChangePasswordRequest applies to the caller's own account.
type ChangePasswordRequest struct {
	OldPassword string `json:"old_password"`
	NewPassword string `json:"new_password"`
}

type Empty struct{}
