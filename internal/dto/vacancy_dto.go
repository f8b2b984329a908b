// FILE: internal/dto/vacancy_dto.go
package dto

type SaveVacancyRequest struct {
	Title        string   `json:"title" validate:"required,min=3"`
	Description  string   `json:"description" validate:"required"`
	Requirements []string `json:"requirements,omitempty"`
	Location     string   `json:"location,omitempty"`
	Level        string   `json:"level,omitempty"`
}
