package model

// Role of an authenticated Evalyze account.
type Role string

const (
	RoleCompany   Role = "company"
	RoleCandidate Role = "candidate"
)

// User is the authenticated identity ("me") returned by the backend.
type User struct {
	ID    int    `json:"id"`
	Email string `json:"email"`
	Role  Role   `json:"role"`
	Name  string `json:"name"`
}

// TokenPair is the credential pair issued on login and refresh. It is owned
// exclusively by the token store and replaced as a whole, never field by field.
type TokenPair struct {
	Access  string `json:"access"`
	Refresh string `json:"refresh"`
}
