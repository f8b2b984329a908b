// FILE: internal/dto/auth_dto.go
package dto

import "evalyze-client/internal/model"

type LoginRequest struct {
	Email    string     `json:"email" validate:"required,email"`
	Password string     `json:"password" validate:"required,min=6"`
	Role     model.Role `json:"role" validate:"required,oneof=company candidate"`

	// Remember controls client-side credential persistence only; it is not
	// sent to the backend.
	Remember bool `json:"-"`
}

type LoginResponse struct {
	Access  string     `json:"access"`
	Refresh string     `json:"refresh"`
	User    model.User `json:"user"`
}

type RefreshRequest struct {
	Refresh string `json:"refresh"`
}

// RefreshResponse carries the rotated token pair. The refresh field may be
// absent when the server chooses not to rotate it.
type RefreshResponse struct {
	Access  string `json:"access"`
	Refresh string `json:"refresh,omitempty"`
}

type RegisterCandidateRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required,min=6"`
	Name     string `json:"name" validate:"required,min=2"`
}

type RegisterCompanyRequest struct {
	Email       string `json:"email" validate:"required,email"`
	Password    string `json:"password" validate:"required,min=6"`
	Name        string `json:"name" validate:"required,min=2"`
	CompanyName string `json:"company_name" validate:"required,min=2"`
}
