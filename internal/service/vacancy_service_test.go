// FILE: internal/service/vacancy_service_test.go
package service

import (
	"context"
	"net/http"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"evalyze-client/internal/dto"
	"evalyze-client/internal/pkg/logger"
)

func TestSaveVacancyValidatesBeforeTheNetwork(t *testing.T) {
	var calls int32
	client := serviceClient(roundTripFunc(func(req *http.Request) (*http.Response, error) {
		atomic.AddInt32(&calls, 1)
		return jsonResponse(http.StatusOK, `{"id": 1, "title": "Backend Engineer"}`), nil
	}))
	svc := NewVacancyService(client, logger.Nop())

	tests := []struct {
		name    string
		req     *dto.SaveVacancyRequest
		wantErr bool
	}{
		{name: "missing title", req: &dto.SaveVacancyRequest{Description: "builds backends"}, wantErr: true},
		{name: "short title", req: &dto.SaveVacancyRequest{Title: "be", Description: "builds backends"}, wantErr: true},
		{name: "missing description", req: &dto.SaveVacancyRequest{Title: "Backend Engineer"}, wantErr: true},
		{name: "valid", req: &dto.SaveVacancyRequest{Title: "Backend Engineer", Description: "builds backends"}, wantErr: false},
	}

	for _, tt := range tests {
		t.Run("create "+tt.name, func(t *testing.T) {
			before := atomic.LoadInt32(&calls)
			_, err := svc.Create(context.Background(), tt.req)
			if tt.wantErr {
				require.Error(t, err)
				assert.Equal(t, before, atomic.LoadInt32(&calls))
			} else {
				require.NoError(t, err)
				assert.Equal(t, before+1, atomic.LoadInt32(&calls))
			}
		})
		t.Run("update "+tt.name, func(t *testing.T) {
			before := atomic.LoadInt32(&calls)
			_, err := svc.Update(context.Background(), 1, tt.req)
			if tt.wantErr {
				require.Error(t, err)
				assert.Equal(t, before, atomic.LoadInt32(&calls))
			} else {
				require.NoError(t, err)
				assert.Equal(t, before+1, atomic.LoadInt32(&calls))
			}
		})
	}
}
