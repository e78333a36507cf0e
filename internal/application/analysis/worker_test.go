package analysis

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/turtacn/lipinski-analyzer/internal/domain/compound"
	"github.com/turtacn/lipinski-analyzer/internal/testutil"
	"github.com/turtacn/lipinski-analyzer/pkg/errors"
)

type MockService struct {
	mock.Mock
}

func (m *MockService) Analyze(ctx context.Context, input *AnalyzeInput) (*AnalyzeResult, error) {
	args := m.Called(ctx, input)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*AnalyzeResult), args.Error(1)
}

func (m *MockService) DetectColumn(ctx context.Context, input *DetectInput) (*DetectResult, error) {
	args := m.Called(ctx, input)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*DetectResult), args.Error(1)
}

func (m *MockService) GetRun(ctx context.Context, id string) (*compound.AnalysisRun, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*compound.AnalysisRun), args.Error(1)
}

func (m *MockService) ListRuns(ctx context.Context, limit, offset int) ([]*compound.AnalysisRun, error) {
	args := m.Called(ctx, limit, offset)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*compound.AnalysisRun), args.Error(1)
}

type MockFetcher struct {
	mock.Mock
}

func (m *MockFetcher) Fetch(ctx context.Context, key string, maxSize int64) ([]byte, error) {
	args := m.Called(ctx, key, maxSize)
	data, _ := args.Get(0).([]byte)
	return data, args.Error(1)
}

type fakeLock struct{ released int }

func (l *fakeLock) Unlock(context.Context) error {
	l.released++
	return nil
}

type fakeLocker struct {
	held  map[string]bool
	locks []*fakeLock
	err   error
}

func (f *fakeLocker) TryLock(_ context.Context, name string, _ time.Duration) (Lock, bool, error) {
	if f.err != nil {
		return nil, false, f.err
	}
	if f.held[name] {
		return nil, false, nil
	}
	l := &fakeLock{}
	f.locks = append(f.locks, l)
	return l, true, nil
}

func TestRequestHandler_Handle(t *testing.T) {
	ctx := context.Background()
	svc := new(MockService)
	uploads := new(MockFetcher)
	locker := &fakeLocker{held: map[string]bool{}}
	logger := testutil.NewMockLogger()
	h := NewRequestHandler(svc, uploads, locker, 1024, time.Minute, logger)

	uploads.On("Fetch", ctx, "uploads/2024/01/01/id/compounds.csv", int64(1024)).Return([]byte("SMILES\nCCO\n"), nil)
	svc.On("Analyze", ctx, &AnalyzeInput{
		FileName:       "compounds.csv",
		Content:        []byte("SMILES\nCCO\n"),
		ColumnOverride: "SMILES",
		Export:         true,
		Source:         SourceWorker,
	}).Return(&AnalyzeResult{Run: &compound.AnalysisRun{ID: "run-1"}}, nil)

	err := h.Handle(ctx, compound.AnalysisRequested{ObjectKey: "uploads/2024/01/01/id/compounds.csv", Column: "SMILES"})
	require.NoError(t, err)
	require.Len(t, locker.locks, 1)
	assert.Equal(t, 1, locker.locks[0].released)
	assert.True(t, logger.HasMessage("info", "Processed analysis request"))
	svc.AssertExpectations(t)
	uploads.AssertExpectations(t)
}

func TestRequestHandler_SkipsWhenLocked(t *testing.T) {
	svc := new(MockService)
	uploads := new(MockFetcher)
	locker := &fakeLocker{held: map[string]bool{"analysis:k": true}}
	h := NewRequestHandler(svc, uploads, locker, 0, 0, nil)

	require.NoError(t, h.Handle(context.Background(), compound.AnalysisRequested{ObjectKey: "k"}))
	uploads.AssertNotCalled(t, "Fetch", mock.Anything, mock.Anything, mock.Anything)
}

func TestRequestHandler_LockError(t *testing.T) {
	h := NewRequestHandler(new(MockService), new(MockFetcher), &fakeLocker{err: assert.AnError}, 0, 0, nil)
	assert.ErrorIs(t, h.Handle(context.Background(), compound.AnalysisRequested{ObjectKey: "k"}), assert.AnError)
}

func TestRequestHandler_ErrorClassification(t *testing.T) {
	ctx := context.Background()

	tests := []struct {
		name      string
		fetchErr  error
		analyzErr error
		retry     bool
	}{
		{"missing object is dropped", errors.New(errors.ErrCodeObjectNotFound, "gone"), nil, false},
		{"oversized object is dropped", errors.New(errors.ErrCodePayloadTooLarge, "big"), nil, false},
		{"storage outage is retried", errors.New(errors.ErrCodeStorageFailed, "down"), nil, true},
		{"bad table is dropped", nil, errors.New(errors.ErrCodeTableMalformed, "bad"), false},
		{"no column is dropped", nil, errors.New(errors.ErrCodeNoSmilesColumn, "none"), false},
		{"timeout is retried", nil, errors.New(errors.ErrCodeTimeout, "slow"), true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc := new(MockService)
			uploads := new(MockFetcher)
			h := NewRequestHandler(svc, uploads, nil, 0, 0, testutil.NewMockLogger())

			if tt.fetchErr != nil {
				uploads.On("Fetch", ctx, "k.csv", int64(0)).Return(nil, tt.fetchErr)
			} else {
				uploads.On("Fetch", ctx, "k.csv", int64(0)).Return([]byte("x"), nil)
				svc.On("Analyze", ctx, mock.Anything).Return(nil, tt.analyzErr)
			}

			err := h.Handle(ctx, compound.AnalysisRequested{ObjectKey: "k.csv"})
			if tt.retry {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

//Personal.AI order the ending
