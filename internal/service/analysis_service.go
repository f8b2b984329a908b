// FILE: internal/service/analysis_service.go
package service

import (
	"context"
	"fmt"

	"evalyze-client/internal/dto"
	"evalyze-client/internal/model"
	"evalyze-client/internal/pkg/logger"
	"evalyze-client/pkg/api"
)

// IAnalysisService consumes server-computed interview analytics: reports,
// rankings and company-wide aggregates. All scoring happens server-side.
type IAnalysisService interface {
	FinalizeInterview(ctx context.Context, sessionID int) (*dto.FinalizeResponse, error)
	GetReport(ctx context.Context, sessionID int) (*model.InterviewReport, error)
	AnalyzeInterview(ctx context.Context, sessionID int) (*model.InterviewReport, error)
	GetCandidates(ctx context.Context) ([]model.CandidateInfo, error)
	GetRanking(ctx context.Context) (*dto.RankingResponse, error)
	GetGlobalReport(ctx context.Context) (*model.GlobalReport, error)
}

type analysisService struct {
	api *api.Client
	log logger.ILogger
}

func NewAnalysisService(apiClient *api.Client, log logger.ILogger) IAnalysisService {
	return &analysisService{api: apiClient, log: log}
}

// FinalizeInterview force-completes a session and computes its score. This is
// irreversible; callers gate it behind an explicit confirmation.
func (s *analysisService) FinalizeInterview(ctx context.Context, sessionID int) (*dto.FinalizeResponse, error) {
	var res dto.FinalizeResponse
	if err := s.api.Post(ctx, fmt.Sprintf("/interview-sessions/%d/finalize/", sessionID), struct{}{}, &res); err != nil {
		return nil, err
	}
	return &res, nil
}

func (s *analysisService) GetReport(ctx context.Context, sessionID int) (*model.InterviewReport, error) {
	var report model.InterviewReport
	if err := s.api.Get(ctx, fmt.Sprintf("/interview-sessions/%d/report/", sessionID), &report); err != nil {
		return nil, err
	}
	return &report, nil
}

func (s *analysisService) AnalyzeInterview(ctx context.Context, sessionID int) (*model.InterviewReport, error) {
	var report model.InterviewReport
	if err := s.api.Post(ctx, fmt.Sprintf("/interview-sessions/%d/analyze/", sessionID), struct{}{}, &report); err != nil {
		return nil, err
	}
	return &report, nil
}

func (s *analysisService) GetCandidates(ctx context.Context) ([]model.CandidateInfo, error) {
	var candidates []model.CandidateInfo
	if err := s.api.Get(ctx, "/interview-sessions/candidates/", &candidates); err != nil {
		return nil, err
	}
	return candidates, nil
}

func (s *analysisService) GetRanking(ctx context.Context) (*dto.RankingResponse, error) {
	var res dto.RankingResponse
	if err := s.api.Get(ctx, "/interview-sessions/ranking/", &res); err != nil {
		return nil, err
	}
	return &res, nil
}

func (s *analysisService) GetGlobalReport(ctx context.Context) (*model.GlobalReport, error) {
	var report model.GlobalReport
	if err := s.api.Get(ctx, "/interview-sessions/global-report/", &report); err != nil {
		return nil, err
	}
	return &report, nil
}
