package models

import derrors "coursegate/pkg/domain-errors"

// RegisterRequest is the payload accepted by POST /register.
type RegisterRequest struct {
	Username string `json:"username"`
	Name     string `json:"name"`
	Email    string `json:"email"`
	Password string `json:"password"`
	Unit     string `json:"unit"`
	Sector   string `json:"sector"`
	Role     Role   `json:"role"`
}

// Validate checks that every field is present and the role is recognized.
func (r RegisterRequest) Validate() error {
	switch {
	case r.Username == "":
		return derrors.New(derrors.CodeBadRequest, "username is required")
	case r.Name == "":
		return derrors.New(derrors.CodeBadRequest, "name is required")
	case r.Email == "":
		return derrors.New(derrors.CodeBadRequest, "email is required")
	case r.Password == "":
		return derrors.New(derrors.CodeBadRequest, "password is required")
	case r.Unit == "":
		return derrors.New(derrors.CodeBadRequest, "unit is required")
	case r.Sector == "":
		return derrors.New(derrors.CodeBadRequest, "sector is required")
	case !r.Role.Valid():
		return derrors.New(derrors.CodeBadRequest, "role must be admin or standard")
	}
	return nil
}

// LoginRequest is the payload accepted by POST /login.
type LoginRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

// LoginResult is returned by the auth service on successful authentication.
type LoginResult struct {
	Username string
	Token    string
}
