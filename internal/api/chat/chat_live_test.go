package chat

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/FACorreiaa/go-travel-planner/internal/api/backend"
	"github.com/FACorreiaa/go-travel-planner/internal/types"
)

func schedule() []types.Activity {
	return []types.Activity{
		{ID: "a1", Time: "09:00", Activity: "Mountain Hike", Location: "Mt Kurama", Status: types.StatusCurrent},
		{ID: "a2", Time: "13:00", Activity: "Tea Ceremony", Location: "Gion", Status: types.StatusUpcoming},
	}
}

func adjustment() *types.AdjustmentResult {
	return &types.AdjustmentResult{
		ActivitiesToCancel: []string{"hike"},
		AlternativeActivities: []types.AlternativeActivity{
			{Name: "Onsen", Location: "Kurama Onsen", Reason: "Rest your legs", EstimatedTime: "10:00"},
			{Name: "Cafe", Location: "Gion", Reason: "Coffee"},
		},
		Reasoning: "You are tired",
	}
}

func TestAdjust_RequiresMood(t *testing.T) {
	o, _, _ := mounted(t, nil)
	_, err := o.Adjust(context.Background(), AdjustInput{Itinerary: schedule()})
	assert.ErrorIs(t, err, types.ErrMoodRequired)
}

func TestAdjust_RequiresItinerary(t *testing.T) {
	o, _, _ := mounted(t, nil)
	_, err := o.Adjust(context.Background(), AdjustInput{Mood: "tired"})
	assert.ErrorIs(t, err, types.ErrNoActiveItinerary)
}

func TestAdjust_UsesLocalTimeAtLocation(t *testing.T) {
	geo := new(MockGeocoder)
	o, be, _ := mounted(t, geo)
	ctx := context.Background()

	geo.On("Geocode", mock.Anything, "Kyoto Station").Return(types.Coordinates{Longitude: 135.7588, Latitude: 34.9858}, nil)
	be.On("AdjustItinerary", mock.Anything, "s1", types.AdjustRequest{
		Itinerary:       schedule(),
		Mood:            types.MoodTired,
		CurrentTime:     "17:30", // 08:30 UTC in Asia/Tokyo
		CurrentLocation: "Kyoto Station",
	}).Return(adjustment(), nil).Once()

	res, err := o.Adjust(ctx, AdjustInput{Mood: "Tired", CurrentLocation: "Kyoto Station", Itinerary: schedule()})
	require.NoError(t, err)
	assert.Equal(t, "You are tired", res.Reasoning)

	live := o.Live()
	assert.Equal(t, types.MoodTired, live.Mood)
	require.NotNil(t, live.Adjustment)
	assert.Len(t, live.Schedule, 2)
	be.AssertExpectations(t)
}

func TestAdjust_ExplicitTimeWithoutGeocoder(t *testing.T) {
	o, be, _ := mounted(t, nil)
	be.On("AdjustItinerary", mock.Anything, "s1", mock.MatchedBy(func(r types.AdjustRequest) bool {
		return r.CurrentTime == "14:30" && r.Mood == types.MoodHungry
	})).Return(adjustment(), nil).Once()

	_, err := o.Adjust(context.Background(), AdjustInput{Mood: "hungry", CurrentTime: "14:30", Itinerary: schedule()})
	require.NoError(t, err)
}

func TestAdjust_FailureNotifies(t *testing.T) {
	o, be, n := mounted(t, nil)
	be.On("AdjustItinerary", mock.Anything, "s1", mock.Anything).Return(nil, types.ErrBackendUnavailable).Once()
	n.On("Notify", mock.Anything, "ws-1", types.LevelError, "Failed to adjust itinerary", "Failed to adjust itinerary. Please try again.").Once()

	_, err := o.Adjust(context.Background(), AdjustInput{Mood: "tired", Itinerary: schedule()})
	assert.ErrorIs(t, err, types.ErrBackendUnavailable)
	assert.Nil(t, o.Live().Adjustment)
	n.AssertExpectations(t)
}

func TestAcceptAndReject(t *testing.T) {
	ctx := context.Background()

	t.Run("accept merges alternatives before kept activities", func(t *testing.T) {
		o, be, n := mounted(t, nil)
		be.On("AdjustItinerary", mock.Anything, "s1", mock.Anything).Return(adjustment(), nil).Once()
		n.On("Notify", mock.Anything, "ws-1", types.LevelSuccess, "Itinerary updated", mock.Anything).Once()

		_, err := o.Adjust(ctx, AdjustInput{Mood: "tired", Itinerary: schedule()})
		require.NoError(t, err)

		merged, err := o.Accept(ctx, nil)
		require.NoError(t, err)
		require.Len(t, merged, 3)
		assert.Equal(t, "Onsen", merged[0].Activity)
		assert.Equal(t, "10:00", merged[0].Time)
		assert.Equal(t, "08:30", merged[1].Time)
		assert.Equal(t, "Tea Ceremony", merged[2].Activity)
		for _, a := range merged {
			assert.Equal(t, types.StatusUpcoming, a.Status)
		}

		live := o.Live()
		assert.Nil(t, live.Adjustment)
		assert.Equal(t, merged, live.Schedule)

		_, err = o.Accept(ctx, nil)
		assert.ErrorIs(t, err, ErrNoAdjustment)
	})

	t.Run("reject clears", func(t *testing.T) {
		o, be, _ := mounted(t, nil)
		be.On("AdjustItinerary", mock.Anything, "s1", mock.Anything).Return(adjustment(), nil).Once()
		_, err := o.Adjust(ctx, AdjustInput{Mood: "tired", Itinerary: schedule()})
		require.NoError(t, err)

		o.Reject()
		assert.Nil(t, o.Live().Adjustment)
		_, err = o.Accept(ctx, schedule())
		assert.ErrorIs(t, err, ErrNoAdjustment)
	})
}

func TestUpdateMood(t *testing.T) {
	o, be, _ := mounted(t, nil)
	be.On("UpdateMood", mock.Anything, "s1", backend.MoodUpdate{
		MoodState:       types.MoodEnergetic,
		CurrentTime:     "08:30",
		CurrentLocation: "Gion",
	}).Return(nil).Once()

	require.NoError(t, o.UpdateMood(context.Background(), "energetic", "Gion"))
	assert.Equal(t, types.MoodEnergetic, o.Live().Mood)

	assert.ErrorIs(t, o.UpdateMood(context.Background(), "", ""), types.ErrMoodRequired)
	assert.Error(t, o.UpdateMood(context.Background(), "sleepy", ""))
}

func TestActivitiesFromItinerary(t *testing.T) {
	it := types.Itinerary{Days: []types.ItineraryDay{
		{Items: []types.ItineraryItem{{ID: "i1", Title: "Castle", Time: "10:00", Type: types.ItemTypeAttraction}}},
		{Items: []types.ItineraryItem{{ID: "i2", Title: "Ramen", Location: "Nishiki", Type: types.ItemTypeRestaurant}}},
	}}
	acts := ActivitiesFromItinerary(it)
	require.Len(t, acts, 2)
	assert.Equal(t, types.StatusCurrent, acts[0].Status)
	assert.Equal(t, "Castle", acts[0].Activity)
	assert.Equal(t, types.StatusUpcoming, acts[1].Status)
	assert.Equal(t, "restaurant", acts[1].Type)
	assert.Empty(t, ActivitiesFromItinerary(types.Itinerary{}))
}
