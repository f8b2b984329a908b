package model

// Vacancy is a job posting. It is an external collaborator from the client's
// point of view: plain CRUD over REST, interesting here only as the object an
// interview session is created against.
type Vacancy struct {
	ID           int      `json:"id"`
	Title        string   `json:"title"`
	Description  string   `json:"description"`
	Requirements []string `json:"requirements,omitempty"`
	Location     string   `json:"location,omitempty"`
	Level        string   `json:"level,omitempty"`
	CompanyName  string   `json:"company_name,omitempty"`
	Status       string   `json:"status,omitempty"`
	CreatedAt    string   `json:"created_at,omitempty"`
}
