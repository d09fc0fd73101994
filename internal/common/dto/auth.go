package dto

// RegisterRequest represents a self-service registration request
type RegisterRequest struct {
	Name     string   `json:"name" binding:"required"`
	Email    string   `json:"email" binding:"required"`
	CPF      string   `json:"cpf" binding:"required"`
	Password string   `json:"password" binding:"required,min=6"`
	Address  string   `json:"address"`
	Phone    string   `json:"phone"`
	CityIDs  []string `json:"cityIds"`
}

// LoginRequest represents a login request. Identifier may be an email
// address or a CPF.
type LoginRequest struct {
	Identifier string `json:"identifier" binding:"required"`
	Password   string `json:"password" binding:"required"`
}

// ChangePasswordRequest represents a request to change the caller's password
type ChangePasswordRequest struct {
	OldPassword string `json:"oldPassword" binding:"required"`
	NewPassword string `json:"newPassword" binding:"required,min=6"`
}

// RecoverPasswordRequest asks for a password reset mail
type RecoverPasswordRequest struct {
	Email string `json:"email" binding:"required"`
}

// ResetPasswordRequest completes a recovery with the mailed token, or an
// administrative reset targeting a user id.
type ResetPasswordRequest struct {
	Token       string `json:"token"`
	UserID      string `json:"userId"`
	NewPassword string `json:"newPassword" binding:"required,min=6"`
}

// RefreshTokenRequest exchanges a recently expired token for a fresh one
type RefreshTokenRequest struct {
	Token string `json:"token" binding:"required"`
}

// CreateUserRequest represents an administrative user creation
type CreateUserRequest struct {
	Name     string   `json:"name" binding:"required"`
	Email    string   `json:"email" binding:"required"`
	CPF      string   `json:"cpf" binding:"required"`
	Password string   `json:"password" binding:"required,min=6"`
	Role     string   `json:"role"`
	Address  string   `json:"address"`
	Phone    string   `json:"phone"`
	Photo    string   `json:"photo"`
	CityIDs  []string `json:"cityIds"`
}

// UpdateUserRequest represents an administrative user update. Nil fields
// are left untouched.
type UpdateUserRequest struct {
	Name    *string   `json:"name"`
	Email   *string   `json:"email"`
	CPF     *string   `json:"cpf"`
	Role    *string   `json:"role"`
	Address *string   `json:"address"`
	Phone   *string   `json:"phone"`
	Photo   *string   `json:"photo"`
	CityIDs *[]string `json:"cityIds"`
}

// UpdateProfileRequest represents a self-service profile update. Role and
// city assignments are not self-serviceable.
type UpdateProfileRequest struct {
	Name    *string `json:"name"`
	Email   *string `json:"email"`
	Address *string `json:"address"`
	Phone   *string `json:"phone"`
	Photo   *string `json:"photo"`
}
