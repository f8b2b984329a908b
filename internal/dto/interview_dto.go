// FILE: internal/dto/interview_dto.go
package dto

import "evalyze-client/internal/model"

// ActiveSessionResponse wraps the candidate's active session; Session is nil
// when the candidate has no session in flight.
type ActiveSessionResponse struct {
	Session *model.InterviewSession `json:"session"`
}

type StartInterviewResponse struct {
	SessionID    int    `json:"session_id"`
	AISessionID  string `json:"ai_session_id,omitempty"`
	FirstMessage string `json:"first_message"`
	Status       string `json:"status"`
}

type SendMessageRequest struct {
	Message string `json:"message"`
}

type SendMessageResponse struct {
	Message         string `json:"message"`
	CurrentQuestion int    `json:"current_question"`
	TotalQuestions  int    `json:"total_questions"`
	IsComplete      bool   `json:"is_complete"`
}

type MessagesResponse struct {
	SessionID       int                 `json:"session_id"`
	Status          string              `json:"status"`
	Messages        []model.ChatMessage `json:"messages"`
	CurrentQuestion int                 `json:"current_question"`
	TotalQuestions  int                 `json:"total_questions"`
}

type GenerateInterviewConfig struct {
	Level      string `json:"level" validate:"required"`
	NQuestions int    `json:"n_questions" validate:"required,min=1,max=20"`
}

type GenerateInterviewResponse struct {
	Interview struct {
		ID        int                       `json:"id"`
		VacancyID int                       `json:"vacancy_id"`
		Questions []model.InterviewQuestion `json:"questions"`
	} `json:"interview"`
}

// ApplyResponse is returned when a candidate applies to a vacancy. SessionID
// identifies the interview session the application created (or the existing
// one when the candidate had already applied).
type ApplyResponse struct {
	SessionID int    `json:"session_id"`
	Detail    string `json:"detail,omitempty"`
}
