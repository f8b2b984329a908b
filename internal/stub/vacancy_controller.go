package stub

import (
	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"

	"evalyze-client/internal/dto"
	"evalyze-client/internal/model"
)

// vacancyByParam resolves the ":id" route parameter. A nil vacancy means the
// error response has already been written.
func (s *Server) vacancyByParam(ctx *fiber.Ctx) (*model.Vacancy, error) {
	id, err := ctx.ParamsInt("id")
	if err != nil {
		return nil, detail(ctx, fiber.StatusBadRequest, "invalid vacancy id")
	}
	vacancy := s.state.vacancies[id]
	if vacancy == nil {
		return nil, detail(ctx, fiber.StatusNotFound, "vacancy not found")
	}
	return vacancy, nil
}

func (s *Server) listVacancies(ctx *fiber.Ctx) error {
	s.state.mu.Lock()
	defer s.state.mu.Unlock()

	out := make([]model.Vacancy, 0, len(s.state.vacancies))
	for _, vacancy := range s.state.vacancies {
		out = append(out, *vacancy)
	}
	// Stable listing order for the terminal client.
	for i := 0; i < len(out); i++ {
		for j := i + 1; j < len(out); j++ {
			if out[j].ID < out[i].ID {
				out[i], out[j] = out[j], out[i]
			}
		}
	}
	return ctx.JSON(out)
}

func (s *Server) getVacancy(ctx *fiber.Ctx) error {
	s.state.mu.Lock()
	defer s.state.mu.Unlock()

	vacancy, err := s.vacancyByParam(ctx)
	if vacancy == nil {
		return err
	}
	return ctx.JSON(vacancy)
}

func (s *Server) createVacancy(ctx *fiber.Ctx) error {
	if currentRole(ctx) != model.RoleCompany {
		return detail(ctx, fiber.StatusForbidden, "company account required")
	}
	var req dto.SaveVacancyRequest
	if err := ctx.BodyParser(&req); err != nil {
		return detail(ctx, fiber.StatusBadRequest, "invalid request body")
	}
	if req.Title == "" {
		return ctx.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"title": []string{"this field is required"},
		})
	}

	s.state.mu.Lock()
	defer s.state.mu.Unlock()

	company := s.state.users[currentUserID(ctx)]
	vacancy := s.state.addVacancy(&model.Vacancy{
		Title:        req.Title,
		Description:  req.Description,
		Requirements: req.Requirements,
		Location:     req.Location,
		Level:        req.Level,
		Status:       "open",
	})
	if company != nil {
		vacancy.CompanyName = company.Name
	}
	return ctx.Status(fiber.StatusCreated).JSON(vacancy)
}

func (s *Server) updateVacancy(ctx *fiber.Ctx) error {
	if currentRole(ctx) != model.RoleCompany {
		return detail(ctx, fiber.StatusForbidden, "company account required")
	}
	var req dto.SaveVacancyRequest
	if err := ctx.BodyParser(&req); err != nil {
		return detail(ctx, fiber.StatusBadRequest, "invalid request body")
	}

	s.state.mu.Lock()
	defer s.state.mu.Unlock()

	vacancy, err := s.vacancyByParam(ctx)
	if vacancy == nil {
		return err
	}
	vacancy.Title = req.Title
	vacancy.Description = req.Description
	vacancy.Requirements = req.Requirements
	vacancy.Location = req.Location
	vacancy.Level = req.Level
	return ctx.JSON(vacancy)
}

func (s *Server) deleteVacancy(ctx *fiber.Ctx) error {
	if currentRole(ctx) != model.RoleCompany {
		return detail(ctx, fiber.StatusForbidden, "company account required")
	}

	s.state.mu.Lock()
	defer s.state.mu.Unlock()

	vacancy, err := s.vacancyByParam(ctx)
	if vacancy == nil {
		return err
	}
	delete(s.state.vacancies, vacancy.ID)
	delete(s.state.scripts, vacancy.ID)
	return ctx.SendStatus(fiber.StatusNoContent)
}

// apply creates a pending interview session for the candidate. One application
// per candidate per vacancy; a second attempt conflicts.
func (s *Server) apply(ctx *fiber.Ctx) error {
	if currentRole(ctx) != model.RoleCandidate {
		return detail(ctx, fiber.StatusForbidden, "candidate account required")
	}

	s.state.mu.Lock()
	defer s.state.mu.Unlock()

	vacancy, err := s.vacancyByParam(ctx)
	if vacancy == nil {
		return err
	}
	candidate := s.state.users[currentUserID(ctx)]
	if candidate == nil {
		return detail(ctx, fiber.StatusUnauthorized, "user no longer exists")
	}
	if existing := s.state.sessionForVacancy(candidate.ID, vacancy.ID); existing != nil {
		return detail(ctx, fiber.StatusConflict, "you have already applied to this vacancy")
	}

	questions := s.state.scripts[vacancy.ID]
	if len(questions) == 0 {
		questions = defaultQuestions
	}
	session := s.state.addSession(candidate, vacancy, questions)

	s.log.Info("stub", "candidate applied", map[string]interface{}{
		"candidate_id": candidate.ID,
		"vacancy_id":   vacancy.ID,
		"session_id":   session.ID,
	})
	return ctx.Status(fiber.StatusCreated).JSON(dto.ApplyResponse{
		SessionID: session.ID,
		Detail:    "application received, interview session created",
	})
}

func (s *Server) generateInterview(ctx *fiber.Ctx) error {
	if currentRole(ctx) != model.RoleCompany {
		return detail(ctx, fiber.StatusForbidden, "company account required")
	}
	var req dto.GenerateInterviewConfig
	if err := ctx.BodyParser(&req); err != nil {
		return detail(ctx, fiber.StatusBadRequest, "invalid request body")
	}
	if req.NQuestions <= 0 {
		req.NQuestions = len(defaultQuestions)
	}

	s.state.mu.Lock()
	defer s.state.mu.Unlock()

	vacancy, err := s.vacancyByParam(ctx)
	if vacancy == nil {
		return err
	}

	// The real platform generates questions with an LLM from the vacancy
	// description; the stub cycles the scripted set to the requested length.
	questions := make([]string, 0, req.NQuestions)
	for i := 0; i < req.NQuestions; i++ {
		questions = append(questions, defaultQuestions[i%len(defaultQuestions)])
	}
	s.state.scripts[vacancy.ID] = questions

	var resp dto.GenerateInterviewResponse
	resp.Interview.ID = vacancy.ID
	resp.Interview.VacancyID = vacancy.ID
	types := []string{"technical", "behavioral", "situational"}
	for i, q := range questions {
		resp.Interview.Questions = append(resp.Interview.Questions, model.InterviewQuestion{
			ID:       uuid.NewString(),
			Question: q,
			Type:     types[i%len(types)],
			Rubric:   "clarity, depth and relevance of the answer",
			Weight:   1,
		})
	}
	return ctx.JSON(resp)
}
