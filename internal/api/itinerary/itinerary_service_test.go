package itinerary

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"os"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/FACorreiaa/go-travel-planner/internal/types"
)

type MockRepository struct {
	mock.Mock
}

func (m *MockRepository) SaveItinerary(ctx context.Context, saved types.SavedItinerary) (*types.SavedItinerary, error) {
	args := m.Called(ctx, saved)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*types.SavedItinerary), args.Error(1)
}

func (m *MockRepository) GetItinerary(ctx context.Context, workspaceID, id uuid.UUID) (*types.SavedItinerary, error) {
	args := m.Called(ctx, workspaceID, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*types.SavedItinerary), args.Error(1)
}

func (m *MockRepository) ListItineraries(ctx context.Context, workspaceID uuid.UUID, limit, offset int) ([]types.SavedItinerary, error) {
	args := m.Called(ctx, workspaceID, limit, offset)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]types.SavedItinerary), args.Error(1)
}

func (m *MockRepository) DeleteItinerary(ctx context.Context, workspaceID, id uuid.UUID) error {
	args := m.Called(ctx, workspaceID, id)
	return args.Error(0)
}

type MockPublisher struct {
	mock.Mock
}

func (m *MockPublisher) CreateItinerary(ctx context.Context, sessionID string, req types.CreateItineraryRequest) error {
	args := m.Called(ctx, sessionID, req)
	return args.Error(0)
}

func setupServiceTest() (*ServiceImpl, *MockRepository, *MockPublisher) {
	repo := new(MockRepository)
	pub := new(MockPublisher)
	logger := slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelError}))
	return NewServiceImpl(repo, pub, logger), repo, pub
}

func TestServiceImpl_Save(t *testing.T) {
	ctx := context.Background()
	wsID := uuid.NewString()
	it := sampleItinerary()

	t.Run("persists and forwards to the session backend", func(t *testing.T) {
		svc, repo, pub := setupServiceTest()

		repo.On("SaveItinerary", mock.Anything, mock.MatchedBy(func(s types.SavedItinerary) bool {
			return s.WorkspaceID == wsID && s.Duration == "2 days" && s.Destination == "Kyoto"
		})).Return(&types.SavedItinerary{ID: "saved-1", Title: "Kyoto"}, nil).Once()

		pub.On("CreateItinerary", mock.Anything, "session-9", mock.MatchedBy(func(req types.CreateItineraryRequest) bool {
			var decoded types.Itinerary
			if err := json.Unmarshal([]byte(req.Itinerary), &decoded); err != nil {
				return false
			}
			return req.Destination == "Kyoto" && req.Duration == "2 days" && len(decoded.Days) == 2
		})).Return(nil).Once()

		saved, err := svc.Save(ctx, wsID, "session-9", it)
		require.NoError(t, err)
		assert.Equal(t, "saved-1", saved.ID)
		repo.AssertExpectations(t)
		pub.AssertExpectations(t)
	})

	t.Run("backend failure does not fail the save", func(t *testing.T) {
		svc, repo, pub := setupServiceTest()
		repo.On("SaveItinerary", mock.Anything, mock.Anything).
			Return(&types.SavedItinerary{ID: "saved-2"}, nil).Once()
		pub.On("CreateItinerary", mock.Anything, "session-9", mock.Anything).
			Return(types.ErrBackendUnavailable).Once()

		saved, err := svc.Save(ctx, wsID, "session-9", it)
		require.NoError(t, err)
		assert.Equal(t, "saved-2", saved.ID)
		pub.AssertExpectations(t)
	})

	t.Run("no session skips the backend", func(t *testing.T) {
		svc, repo, pub := setupServiceTest()
		repo.On("SaveItinerary", mock.Anything, mock.Anything).
			Return(&types.SavedItinerary{ID: "saved-3"}, nil).Once()

		_, err := svc.Save(ctx, wsID, "", it)
		require.NoError(t, err)
		pub.AssertNotCalled(t, "CreateItinerary", mock.Anything, mock.Anything, mock.Anything)
	})

	t.Run("repository error is returned", func(t *testing.T) {
		svc, repo, pub := setupServiceTest()
		repo.On("SaveItinerary", mock.Anything, mock.Anything).
			Return(nil, errors.New("db down")).Once()

		_, err := svc.Save(ctx, wsID, "session-9", it)
		require.Error(t, err)
		pub.AssertNotCalled(t, "CreateItinerary", mock.Anything, mock.Anything, mock.Anything)
	})
}

func TestServiceImpl_Get(t *testing.T) {
	ctx := context.Background()
	ws, id := uuid.New(), uuid.New()

	t.Run("found", func(t *testing.T) {
		svc, repo, _ := setupServiceTest()
		repo.On("GetItinerary", mock.Anything, ws, id).
			Return(&types.SavedItinerary{ID: id.String()}, nil).Once()

		saved, err := svc.Get(ctx, ws.String(), id.String())
		require.NoError(t, err)
		assert.Equal(t, id.String(), saved.ID)
		repo.AssertExpectations(t)
	})

	t.Run("malformed id is not found", func(t *testing.T) {
		svc, repo, _ := setupServiceTest()
		_, err := svc.Get(ctx, ws.String(), "nope")
		assert.ErrorIs(t, err, types.ErrNotFound)
		repo.AssertNotCalled(t, "GetItinerary", mock.Anything, mock.Anything, mock.Anything)
	})
}

func TestServiceImpl_List(t *testing.T) {
	ctx := context.Background()
	ws := uuid.New()

	tests := []struct {
		name             string
		page, pageSize   int
		wantLimit, wantO int
	}{
		{"first page", 1, 10, 10, 0},
		{"third page", 3, 10, 10, 20},
		{"page below one is clamped", 0, 5, 5, 0},
		{"oversized page size falls back", 2, 500, 20, 20},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc, repo, _ := setupServiceTest()
			repo.On("ListItineraries", mock.Anything, ws, tt.wantLimit, tt.wantO).
				Return([]types.SavedItinerary{}, nil).Once()

			list, err := svc.List(ctx, ws.String(), tt.page, tt.pageSize)
			require.NoError(t, err)
			assert.Empty(t, list)
			repo.AssertExpectations(t)
		})
	}
}

func TestServiceImpl_Delete(t *testing.T) {
	ctx := context.Background()
	ws, id := uuid.New(), uuid.New()

	svc, repo, _ := setupServiceTest()
	repo.On("DeleteItinerary", mock.Anything, ws, id).Return(types.ErrNotFound).Once()

	err := svc.Delete(ctx, ws.String(), id.String())
	assert.ErrorIs(t, err, types.ErrNotFound)
	repo.AssertExpectations(t)
}
