package authapi

type loginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`

	// RefreshToken optionally carries the prior session's secret so login can
	// retire it. Web clients send it implicitly via the cookie instead.
	RefreshToken string `json:"refreshToken,omitempty"`
}

type federatedRequest struct {
	Code string `json:"code"`
}

type refreshRequest struct {
	RefreshToken string `json:"refreshToken"`
}

type logoutRequest struct {
	AccessToken  string `json:"accessToken"`
	RefreshToken string `json:"refreshToken"`
}

// tokenResponse is the shared shape of login/federated/refresh responses.
// RefreshToken is present only for native clients; browsers get the secret as
// a cookie instead.
type tokenResponse struct {
	Token        string   `json:"token"`
	RefreshToken string   `json:"refreshToken,omitempty"`
	ExpiresIn    int64    `json:"expiresIn"`
	Language     *string  `json:"language"`
	Providers    []string `json:"providers"`
}

type logoutResponse struct {
	Success bool `json:"success"`
}

type meResponse struct {
	ID        string   `json:"id"`
	Email     string   `json:"email"`
	Language  *string  `json:"language"`
	Providers []string `json:"providers"`
}
