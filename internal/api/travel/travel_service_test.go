package travel

import (
	"context"
	"errors"
	"log/slog"
	"os"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/FACorreiaa/go-travel-planner/internal/types"
)

type MockLLM struct {
	mock.Mock
}

func (m *MockLLM) Generate(ctx context.Context, prompt string) (string, error) {
	args := m.Called(ctx, prompt)
	return args.String(0), args.Error(1)
}

func (m *MockLLM) Model() string {
	return "mock-model"
}

const flightsReply = `Running: duckduckgo_search(query="flights")
1. **IndiGo**: ₹4,500
* **Departure Time**: 06:00 AM
* **Arrival Time**: 08:10 AM
* **Duration**: 2h 10m
* **Rating**: 4.2

2. **Air India**: ₹7,800
* **Departure Time**: 09:30 AM
* **Arrival Time**: 11:45 AM
* **Rating**: 3.6

3. **Vistara**: ₹5,200
* **Departure Time**: 01:00 PM
* **Arrival Time**: 03:05 PM`

func setupTravelTest() (*ServiceImpl, *MockLLM) {
	llm := new(MockLLM)
	logger := slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelError}))
	return NewServiceImpl(llm, time.Minute, logger), llm
}

func baseParams() types.TravelSearchParams {
	return types.TravelSearchParams{Origin: "Delhi", Destination: "Mumbai", Date: "2025-03-01", NumTravelers: 2}
}

func TestSearch(t *testing.T) {
	ctx := context.Background()

	t.Run("parses and caches", func(t *testing.T) {
		svc, llm := setupTravelTest()
		llm.On("Generate", mock.Anything, mock.MatchedBy(func(p string) bool {
			return strings.Contains(p, "Find flight options from Delhi to Mumbai on 2025-03-01 for 2 traveler(s).") &&
				strings.Contains(p, "List at least 5 options.")
		})).Return(flightsReply, nil).Once()

		got, err := svc.Search(ctx, baseParams())
		require.NoError(t, err)
		require.Len(t, got, 3)
		assert.Equal(t, "IndiGo", got[0].Provider)
		assert.Equal(t, 4500, got[0].Price)
		assert.Equal(t, "N/A", got[1].Duration)

		again, err := svc.Search(ctx, baseParams())
		require.NoError(t, err)
		assert.Equal(t, got, again)
		llm.AssertExpectations(t)
	})

	t.Run("filters by price and rating and caps at limit", func(t *testing.T) {
		svc, llm := setupTravelTest()
		llm.On("Generate", mock.Anything, mock.Anything).Return(flightsReply, nil).Once()

		p := baseParams()
		p.MaxPrice = 6000
		p.MinRating = 4
		p.Limit = 1
		got, err := svc.Search(ctx, p)
		require.NoError(t, err)
		require.Len(t, got, 1)
		assert.Equal(t, "IndiGo", got[0].Provider)
	})

	t.Run("empty reply is no results", func(t *testing.T) {
		svc, llm := setupTravelTest()
		llm.On("Generate", mock.Anything, mock.Anything).Return("Sorry, I cannot help with that.", nil).Once()

		_, err := svc.Search(ctx, baseParams())
		assert.ErrorIs(t, err, types.ErrNoResults)
	})

	t.Run("llm failure", func(t *testing.T) {
		svc, llm := setupTravelTest()
		llm.On("Generate", mock.Anything, mock.Anything).Return("", errors.New("quota")).Once()

		_, err := svc.Search(ctx, baseParams())
		require.Error(t, err)
		assert.NotErrorIs(t, err, types.ErrNoResults)
	})

	t.Run("missing origin", func(t *testing.T) {
		svc, llm := setupTravelTest()
		p := baseParams()
		p.Origin = " "
		_, err := svc.Search(ctx, p)
		assert.ErrorIs(t, err, ErrInvalidParams)
		llm.AssertNotCalled(t, "Generate", mock.Anything, mock.Anything)
	})
}

func TestBuildPrompt(t *testing.T) {
	p := baseParams()
	p.TravelType = types.TravelTrain
	p.PreferDirect = true
	p.MaxPrice = 3000
	p.MinRating = 4.5
	p.Limit = 3

	prompt := BuildPrompt(p)
	assert.Contains(t, prompt, "Find train options from Delhi to Mumbai")
	assert.Contains(t, prompt, "Show only direct flights.")
	assert.Contains(t, prompt, "Maximum price: ₹3000.")
	assert.Contains(t, prompt, "Minimum rating: 4.5.")
	assert.Contains(t, prompt, "List at least 3 options.")

	plain := BuildPrompt(baseParams())
	assert.NotContains(t, plain, "direct")
	assert.NotContains(t, plain, "Maximum price")
	assert.NotContains(t, plain, "Minimum rating")
}

func TestFilter_UnratedKept(t *testing.T) {
	r := 2.0
	opts := []types.TravelOption{{Provider: "A", Price: 100}, {Provider: "B", Price: 100, Rating: &r}}
	got := Filter(opts, types.TravelSearchParams{MinRating: 3})
	require.Len(t, got, 1)
	assert.Equal(t, "A", got[0].Provider)
}
