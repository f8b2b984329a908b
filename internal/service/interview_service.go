// FILE: internal/service/interview_service.go
package service

import (
	"context"
	"fmt"
	"sync"

	"evalyze-client/internal/dto"
	"evalyze-client/internal/model"
	"evalyze-client/internal/pkg/logger"
	"evalyze-client/pkg/api"

	"github.com/go-playground/validator/v10"
)

// IInterviewService is the typed REST façade over the interview session
// lifecycle. Every call is stateless request/response; the only cached value
// is the last known active session, shared so concurrently mounted views do
// not each re-fetch it.
type IInterviewService interface {
	GetActiveSession(ctx context.Context) (*model.InterviewSession, error)
	ActiveSession() *model.InterviewSession
	HasActiveSession() bool
	ClearActiveSession()
	GetSession(ctx context.Context, sessionID int) (*model.InterviewSession, error)
	StartSession(ctx context.Context, sessionID int) (*dto.StartInterviewResponse, error)
	SendMessage(ctx context.Context, sessionID int, message string) (*dto.SendMessageResponse, error)
	GetMessages(ctx context.Context, sessionID int) (*dto.MessagesResponse, error)
	GenerateInterview(ctx context.Context, vacancyID int, cfg *dto.GenerateInterviewConfig) (*dto.GenerateInterviewResponse, error)
}

type interviewService struct {
	api      *api.Client
	log      logger.ILogger
	validate *validator.Validate

	mu     sync.RWMutex
	active *model.InterviewSession
}

func NewInterviewService(apiClient *api.Client, log logger.ILogger) IInterviewService {
	return &interviewService{api: apiClient, log: log, validate: validator.New()}
}

// GetActiveSession fetches the candidate's active session. A nil session
// without error means the candidate has none.
func (s *interviewService) GetActiveSession(ctx context.Context) (*model.InterviewSession, error) {
	var res dto.ActiveSessionResponse
	if err := s.api.Get(ctx, "/interview-sessions/my-active/", &res); err != nil {
		return nil, err
	}

	s.mu.Lock()
	s.active = res.Session
	s.mu.Unlock()

	return res.Session, nil
}

// ActiveSession returns the last broadcast active session without a network
// round-trip.
func (s *interviewService) ActiveSession() *model.InterviewSession {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.active == nil {
		return nil
	}
	session := *s.active
	return &session
}

func (s *interviewService) HasActiveSession() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.active != nil
}

// ClearActiveSession drops the cached value, e.g. when navigating away.
func (s *interviewService) ClearActiveSession() {
	s.mu.Lock()
	s.active = nil
	s.mu.Unlock()
}

func (s *interviewService) GetSession(ctx context.Context, sessionID int) (*model.InterviewSession, error) {
	var session model.InterviewSession
	if err := s.api.Get(ctx, fmt.Sprintf("/interview-sessions/%d/", sessionID), &session); err != nil {
		return nil, err
	}
	return &session, nil
}

func (s *interviewService) StartSession(ctx context.Context, sessionID int) (*dto.StartInterviewResponse, error) {
	var res dto.StartInterviewResponse
	if err := s.api.Post(ctx, fmt.Sprintf("/interview-sessions/%d/start/", sessionID), struct{}{}, &res); err != nil {
		return nil, err
	}
	return &res, nil
}

func (s *interviewService) SendMessage(ctx context.Context, sessionID int, message string) (*dto.SendMessageResponse, error) {
	var res dto.SendMessageResponse
	req := &dto.SendMessageRequest{Message: message}
	if err := s.api.Post(ctx, fmt.Sprintf("/interview-sessions/%d/send-message/", sessionID), req, &res); err != nil {
		return nil, err
	}
	return &res, nil
}

func (s *interviewService) GetMessages(ctx context.Context, sessionID int) (*dto.MessagesResponse, error) {
	var res dto.MessagesResponse
	if err := s.api.Get(ctx, fmt.Sprintf("/interview-sessions/%d/chat-messages/", sessionID), &res); err != nil {
		return nil, err
	}
	return &res, nil
}

func (s *interviewService) GenerateInterview(ctx context.Context, vacancyID int, cfg *dto.GenerateInterviewConfig) (*dto.GenerateInterviewResponse, error) {
	if err := s.validate.Struct(cfg); err != nil {
		return nil, err
	}
	var res dto.GenerateInterviewResponse
	if err := s.api.Post(ctx, fmt.Sprintf("/jobs/%d/generate-interview/", vacancyID), cfg, &res); err != nil {
		return nil, err
	}
	return &res, nil
}
