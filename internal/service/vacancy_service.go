// FILE: internal/service/vacancy_service.go
package service

import (
	"context"
	"fmt"

	"evalyze-client/internal/dto"
	"evalyze-client/internal/model"
	"evalyze-client/internal/pkg/logger"
	"evalyze-client/pkg/api"

	"github.com/go-playground/validator/v10"
)

// IVacancyService is plain CRUD over job postings plus the apply action that
// gates interview session creation. External collaborator from the core's
// point of view.
type IVacancyService interface {
	List(ctx context.Context) ([]model.Vacancy, error)
	Get(ctx context.Context, vacancyID int) (*model.Vacancy, error)
	Create(ctx context.Context, req *dto.SaveVacancyRequest) (*model.Vacancy, error)
	Update(ctx context.Context, vacancyID int, req *dto.SaveVacancyRequest) (*model.Vacancy, error)
	Delete(ctx context.Context, vacancyID int) error
	Apply(ctx context.Context, vacancyID int) (*dto.ApplyResponse, error)
}

type vacancyService struct {
	api      *api.Client
	log      logger.ILogger
	validate *validator.Validate
}

func NewVacancyService(apiClient *api.Client, log logger.ILogger) IVacancyService {
	return &vacancyService{api: apiClient, log: log, validate: validator.New()}
}

func (s *vacancyService) List(ctx context.Context) ([]model.Vacancy, error) {
	var vacancies []model.Vacancy
	if err := s.api.Get(ctx, "/jobs/", &vacancies); err != nil {
		return nil, err
	}
	return vacancies, nil
}

func (s *vacancyService) Get(ctx context.Context, vacancyID int) (*model.Vacancy, error) {
	var vacancy model.Vacancy
	if err := s.api.Get(ctx, fmt.Sprintf("/jobs/%d/", vacancyID), &vacancy); err != nil {
		return nil, err
	}
	return &vacancy, nil
}

func (s *vacancyService) Create(ctx context.Context, req *dto.SaveVacancyRequest) (*model.Vacancy, error) {
	if err := s.validate.Struct(req); err != nil {
		return nil, err
	}
	var vacancy model.Vacancy
	if err := s.api.Post(ctx, "/jobs/", req, &vacancy); err != nil {
		return nil, err
	}
	return &vacancy, nil
}

func (s *vacancyService) Update(ctx context.Context, vacancyID int, req *dto.SaveVacancyRequest) (*model.Vacancy, error) {
	if err := s.validate.Struct(req); err != nil {
		return nil, err
	}
	var vacancy model.Vacancy
	if err := s.api.Put(ctx, fmt.Sprintf("/jobs/%d/", vacancyID), req, &vacancy); err != nil {
		return nil, err
	}
	return &vacancy, nil
}

func (s *vacancyService) Delete(ctx context.Context, vacancyID int) error {
	return s.api.Delete(ctx, fmt.Sprintf("/jobs/%d/", vacancyID))
}

// Apply submits the candidate's application. An "already applied" rejection is
// not special-cased here; the caller resolves it by resuming the existing
// session via IInterviewService.GetActiveSession.
func (s *vacancyService) Apply(ctx context.Context, vacancyID int) (*dto.ApplyResponse, error) {
	var res dto.ApplyResponse
	if err := s.api.Post(ctx, fmt.Sprintf("/jobs/%d/apply/", vacancyID), struct{}{}, &res); err != nil {
		return nil, err
	}
	return &res, nil
}
