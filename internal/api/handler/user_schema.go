package handler

// errorResponse is the standard error envelope returned on all 4xx/5xx responses.
type errorResponse struct {
	Error string `json:"error"`
}

// --- Request / Response types ---

// createUserRequest accepts the identifier under either "_id" or "id".
type createUserRequest struct {
	UnderscoreID string `json:"_id"        validate:"required_without=ID"`
	ID           string `json:"id"         validate:"required_without=UnderscoreID"`
	FirstName    string `json:"first_name" validate:"required"`
	LastName     string `json:"last_name"  validate:"required"`
	Role         string `json:"role"       validate:"required,role"`
	Password     string `json:"password"   validate:"required,maxbytes=72"`
}

// updateUserRequest has no created_at field: the creation stamp is immutable.
type updateUserRequest struct {
	FirstName *string `json:"first_name,omitempty"`
	LastName  *string `json:"last_name,omitempty"`
	Role      *string `json:"role,omitempty"       validate:"omitempty,role"`
	IsActive  *string `json:"is_active,omitempty"  validate:"omitempty,oneof=true false"`
	LastLogin *string `json:"last_login,omitempty"`
}

// tokenRequest is the OAuth2 password-grant form.
type tokenRequest struct {
	GrantType string `form:"grant_type" json:"grant_type"`
	Username  string `form:"username"   json:"username"`
	Password  string `form:"password"   json:"password"`
	Scope     string `form:"scope"      json:"scope"`
}

type userResponse struct {
	ID        string `json:"_id"`
	FirstName string `json:"first_name"`
	LastName  string `json:"last_name"`
	Role      string `json:"role"`
	IsActive  string `json:"is_active"`
	CreatedAt string `json:"created_at,omitempty"`
	LastLogin string `json:"last_login,omitempty"`
}

type tokenResponse struct {
	AccessToken string `json:"access_token"`
	TokenType   string `json:"token_type"`
}
