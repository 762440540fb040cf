package dto

// LoginRequest payload: the caller's external id and desired role.
type LoginRequest struct {
	Sub  string `json:"sub"`
	Role string `json:"role"`
}

// LoginResponse carries the issued token.
type LoginResponse struct {
	AccessToken string `json:"access_token"`
	TokenType   string `json:"token_type"`
	ExpiresIn   int64  `json:"expires_in"`
}
