// FILE: internal/dto/analysis_dto.go
package dto

import "evalyze-client/internal/model"

type FinalizeResponse struct {
	Score float64 `json:"score"`
}

type RankingResponse struct {
	TotalCandidates int                     `json:"total_candidates"`
	Ranking         []model.RankedCandidate `json:"ranking"`
}
