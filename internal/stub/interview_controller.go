package stub

import (
	"sort"
	"time"

	"github.com/gofiber/fiber/v2"

	"evalyze-client/internal/dto"
	"evalyze-client/internal/model"
)

// sessionByParam resolves the ":id" route parameter to a session the caller
// may touch. Candidates see only their own sessions; companies see all. A nil
// session means the error response has already been written.
func (s *Server) sessionByParam(ctx *fiber.Ctx) (*stubSession, error) {
	id, err := ctx.ParamsInt("id")
	if err != nil {
		return nil, detail(ctx, fiber.StatusBadRequest, "invalid session id")
	}
	session := s.state.sessions[id]
	if session == nil {
		return nil, detail(ctx, fiber.StatusNotFound, "session not found")
	}
	if currentRole(ctx) == model.RoleCandidate && session.CandidateID != currentUserID(ctx) {
		return nil, detail(ctx, fiber.StatusNotFound, "session not found")
	}
	return session, nil
}

func (s *Server) myActiveSession(ctx *fiber.Ctx) error {
	s.state.mu.Lock()
	defer s.state.mu.Unlock()

	session := s.state.activeSessionFor(currentUserID(ctx))
	resp := dto.ActiveSessionResponse{}
	if session != nil {
		copied := session.InterviewSession
		resp.Session = &copied
	}
	return ctx.JSON(resp)
}

func (s *Server) getSession(ctx *fiber.Ctx) error {
	s.state.mu.Lock()
	defer s.state.mu.Unlock()

	session, err := s.sessionByParam(ctx)
	if session == nil {
		return err
	}
	return ctx.JSON(session.InterviewSession)
}

func (s *Server) startSession(ctx *fiber.Ctx) error {
	s.state.mu.Lock()
	defer s.state.mu.Unlock()

	session, err := s.sessionByParam(ctx)
	if session == nil {
		return err
	}
	if session.Status != model.SessionPending {
		return detail(ctx, fiber.StatusBadRequest, "interview has already been started")
	}

	session.Status = model.SessionActive
	session.StartedAt = time.Now().Format(time.RFC3339)
	session.CurrentQuestionIndex = 0

	first := greeting(session)
	idx := 0
	session.appendMessage(model.SenderAI, first, &idx, nil)

	s.log.Info("stub", "interview started", map[string]interface{}{"session_id": session.ID})
	return ctx.JSON(dto.StartInterviewResponse{
		SessionID:    session.ID,
		FirstMessage: first,
		Status:       string(session.Status),
	})
}

func (s *Server) sendMessage(ctx *fiber.Ctx) error {
	var req dto.SendMessageRequest
	if err := ctx.BodyParser(&req); err != nil {
		return detail(ctx, fiber.StatusBadRequest, "invalid request body")
	}
	if req.Message == "" {
		return detail(ctx, fiber.StatusBadRequest, "message must not be empty")
	}

	s.state.mu.Lock()
	defer s.state.mu.Unlock()

	session, err := s.sessionByParam(ctx)
	if session == nil {
		return err
	}
	if session.Status != model.SessionActive {
		return detail(ctx, fiber.StatusBadRequest, "interview is not active")
	}

	answeredIdx := session.CurrentQuestionIndex
	score := scoreAnswer(req.Message)
	session.appendMessage(model.SenderCandidate, req.Message, &answeredIdx, &score)
	session.TotalScore += score
	session.Scores = append(session.Scores, score)
	session.CurrentQuestionIndex++

	var reply string
	complete := session.CurrentQuestionIndex >= len(session.Questions)
	if complete {
		session.Status = model.SessionCompleted
		session.CompletedAt = time.Now().Format(time.RFC3339)
		reply = "Thank you, that concludes the interview. Your answers are being analyzed and the company will be in touch."
		session.appendMessage(model.SenderAI, reply, nil, nil)
	} else {
		nextIdx := session.CurrentQuestionIndex
		reply = session.Questions[nextIdx]
		session.appendMessage(model.SenderAI, reply, &nextIdx, nil)
	}

	return ctx.JSON(dto.SendMessageResponse{
		Message:         reply,
		CurrentQuestion: session.CurrentQuestionIndex,
		TotalQuestions:  len(session.Questions),
		IsComplete:      complete,
	})
}

func (s *Server) chatMessages(ctx *fiber.Ctx) error {
	s.state.mu.Lock()
	defer s.state.mu.Unlock()

	session, err := s.sessionByParam(ctx)
	if session == nil {
		return err
	}
	messages := make([]model.ChatMessage, len(session.Messages))
	copy(messages, session.Messages)
	return ctx.JSON(dto.MessagesResponse{
		SessionID:       session.ID,
		Status:          string(session.Status),
		Messages:        messages,
		CurrentQuestion: session.CurrentQuestionIndex,
		TotalQuestions:  len(session.Questions),
	})
}

func (s *Server) finalize(ctx *fiber.Ctx) error {
	s.state.mu.Lock()
	defer s.state.mu.Unlock()

	session, err := s.sessionByParam(ctx)
	if session == nil {
		return err
	}
	if session.Status == model.SessionActive || session.Status == model.SessionPending {
		session.Status = model.SessionCompleted
		session.CompletedAt = time.Now().Format(time.RFC3339)
	}
	return ctx.JSON(dto.FinalizeResponse{Score: percentScore(session)})
}

func (s *Server) report(ctx *fiber.Ctx) error {
	s.state.mu.Lock()
	defer s.state.mu.Unlock()

	session, err := s.sessionByParam(ctx)
	if session == nil {
		return err
	}
	if !session.Status.Terminal() {
		return detail(ctx, fiber.StatusBadRequest, "interview is not completed yet")
	}
	candidate := s.state.users[session.CandidateID]
	if candidate == nil {
		return detail(ctx, fiber.StatusNotFound, "candidate not found")
	}
	return ctx.JSON(buildReport(session, candidate))
}

func (s *Server) candidates(ctx *fiber.Ctx) error {
	if currentRole(ctx) != model.RoleCompany {
		return detail(ctx, fiber.StatusForbidden, "company account required")
	}

	s.state.mu.Lock()
	defer s.state.mu.Unlock()

	infos := make([]model.CandidateInfo, 0, len(s.state.sessions))
	for _, session := range sortedSessions(s.state.sessions) {
		candidate := s.state.users[session.CandidateID]
		if candidate == nil {
			continue
		}
		interview := &model.CandidateInterview{
			SessionID:   session.ID,
			Status:      string(session.Status),
			HasAnalysis: session.Status == model.SessionCompleted,
		}
		if session.CompletedAt != "" {
			completedAt := session.CompletedAt
			interview.CompletedAt = &completedAt
		}
		if session.Status == model.SessionCompleted {
			score := percentScore(session)
			interview.Score = &score
		}
		infos = append(infos, model.CandidateInfo{
			ID:           candidate.ID,
			Name:         candidate.Name,
			Email:        candidate.Email,
			VacancyTitle: session.VacancyTitle,
			AppliedAt:    session.LastActivity,
			Status:       string(session.Status),
			Interview:    interview,
		})
	}
	return ctx.JSON(infos)
}

func (s *Server) ranking(ctx *fiber.Ctx) error {
	if currentRole(ctx) != model.RoleCompany {
		return detail(ctx, fiber.StatusForbidden, "company account required")
	}

	s.state.mu.Lock()
	defer s.state.mu.Unlock()

	completed := make([]*stubSession, 0)
	for _, session := range s.state.sessions {
		if session.Status == model.SessionCompleted {
			completed = append(completed, session)
		}
	}
	sort.Slice(completed, func(i, j int) bool {
		return percentScore(completed[i]) > percentScore(completed[j])
	})

	resp := dto.RankingResponse{TotalCandidates: len(completed)}
	for i, session := range completed {
		candidate := s.state.users[session.CandidateID]
		if candidate == nil {
			continue
		}
		report := buildReport(session, candidate)
		entry := model.RankedCandidate{
			Rank:          i + 1,
			VacancyTitle:  session.VacancyTitle,
			Score:         report.QuantitativeScore,
			ScoreCategory: report.ScoreCategory,
			CompletedAt:   session.CompletedAt,
			SessionID:     session.ID,
		}
		entry.Candidate.ID = candidate.ID
		entry.Candidate.Name = candidate.Name
		entry.Candidate.Email = candidate.Email
		entry.Summary.StrengthsCount = len(report.SWOTAnalysis.Strengths)
		entry.Summary.WeaknessesCount = len(report.SWOTAnalysis.Weaknesses)
		if len(report.Recommendations) > 0 {
			entry.Summary.TopRecommendation = report.Recommendations[0]
		}
		resp.Ranking = append(resp.Ranking, entry)
	}
	return ctx.JSON(resp)
}

func (s *Server) globalReport(ctx *fiber.Ctx) error {
	if currentRole(ctx) != model.RoleCompany {
		return detail(ctx, fiber.StatusForbidden, "company account required")
	}

	s.state.mu.Lock()
	defer s.state.mu.Unlock()

	company := s.state.users[currentUserID(ctx)]
	report := model.GlobalReport{
		ReportDate: time.Now().Format(time.RFC3339),
	}
	if company != nil {
		report.CompanyName = company.Name
	}

	total, completed, sum := 0, 0, 0.0
	for _, session := range s.state.sessions {
		total++
		if session.Status != model.SessionCompleted {
			continue
		}
		completed++
		percent := percentScore(session)
		sum += percent
		switch {
		case percent >= 85:
			report.Summary.ScoreDistribution.Excellent++
		case percent >= 70:
			report.Summary.ScoreDistribution.Good++
		case percent >= 50:
			report.Summary.ScoreDistribution.Fair++
		default:
			report.Summary.ScoreDistribution.Poor++
		}
	}
	report.Summary.TotalInterviews = completed
	if completed > 0 {
		report.Summary.AverageScore = sum / float64(completed)
	}
	if total > 0 {
		report.Summary.CompletionRate = float64(completed) / float64(total) * 100
	}
	report.Insights.TopStrengths = []string{"communicates clearly"}
	report.Insights.CommonWeaknesses = []string{"answers could use more concrete detail"}
	report.Effectiveness.InterviewQuality = 80
	report.Effectiveness.RequirementFulfillment = 75
	report.Effectiveness.CandidateEngagement = 85
	report.Recommendations = []string{"increase the number of behavioral questions"}
	return ctx.JSON(report)
}

func percentScore(session *stubSession) float64 {
	if session.MaxPossibleScore == 0 {
		return 0
	}
	return session.TotalScore / session.MaxPossibleScore * 100
}

func sortedSessions(sessions map[int]*stubSession) []*stubSession {
	out := make([]*stubSession, 0, len(sessions))
	for _, session := range sessions {
		out = append(out, session)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}
