package jobs

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"

	"stayledger/internal/model"
)

// MockReconcileService is a mock implementation of ReconcileService.
type MockReconcileService struct {
	mock.Mock
}

func (m *MockReconcileService) Run(ctx context.Context) (*model.ReconciliationReport, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.ReconciliationReport), args.Error(1)
}

func (m *MockReconcileService) Latest(ctx context.Context) (*model.ReconciliationReport, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.ReconciliationReport), args.Error(1)
}

func TestRunReconcile(t *testing.T) {
	tests := []struct {
		name      string
		report    *model.ReconciliationReport
		err       error
		wantLevel zapcore.Level
		wantLogs  int
	}{
		{"clean run is quiet", &model.ReconciliationReport{AccountsChecked: 7}, nil, zapcore.InfoLevel, 0},
		{"mismatch warns", &model.ReconciliationReport{AccountsChecked: 7, MismatchedAccounts: 1}, nil, zapcore.WarnLevel, 1},
		{"error logs", nil, errors.New("db down"), zapcore.ErrorLevel, 1},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			core, logs := observer.New(zapcore.InfoLevel)
			reconciler := new(MockReconcileService)
			reconciler.On("Run", mock.Anything).Return(tt.report, tt.err)

			RunReconcile(context.Background(), reconciler, zap.New(core))

			reconciler.AssertExpectations(t)
			require.Equal(t, tt.wantLogs, logs.Len())
			if tt.wantLogs > 0 {
				assert.Equal(t, tt.wantLevel, logs.All()[0].Level)
			}
		})
	}
}

func TestScheduler_AddReconcile(t *testing.T) {
	s := NewScheduler(zap.NewNop())
	reconciler := new(MockReconcileService)

	assert.NoError(t, s.AddReconcile("@every 5m", reconciler))
	assert.Error(t, s.AddReconcile("not a schedule", reconciler))

	s.Start()
	s.Stop()
}
