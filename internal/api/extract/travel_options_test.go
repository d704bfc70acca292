package extract

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/FACorreiaa/go-travel-planner/internal/types"
)

func TestParseTravelOptions(t *testing.T) {
	t.Run("single block with defaults", func(t *testing.T) {
		got := ParseTravelOptions("1. **Air X**: ₹5,000\n* **Departure Time**: 10:00 AM\n* **Duration**: 2h 0m")
		require.Len(t, got, 1)
		assert.Equal(t, types.TravelOption{
			Provider:      "Air X",
			Price:         5000,
			Currency:      "INR",
			DepartureTime: "10:00 AM",
			ArrivalTime:   "N/A",
			Duration:      "2h 0m",
			Availability:  "Available",
		}, got[0])
		assert.Nil(t, got[0].Rating)
	})

	t.Run("multiple blocks with every label", func(t *testing.T) {
		text := "Here are the options:\n\n" +
			"1. **IndiGo**: ₹4,250\n* **Departure Time**: 06:10 AM\n* **Arrival Time**: 08:20 AM\n" +
			"* **Duration**: 2h 10m\n* **Rating**: 4.2\n* **Flight Number**: 6E-204\n\n" +
			"2. **Vistara**: 7,900\n* **departure time**: 09:00 AM\n* **Rating**: 4.6."
		got := ParseTravelOptions(text)
		require.Len(t, got, 2)

		assert.Equal(t, "IndiGo", got[0].Provider)
		assert.Equal(t, 4250, got[0].Price)
		assert.Equal(t, "08:20 AM", got[0].ArrivalTime)
		assert.Equal(t, "6E-204", got[0].FlightNumber)
		require.NotNil(t, got[0].Rating)
		assert.InDelta(t, 4.2, *got[0].Rating, 1e-9)

		assert.Equal(t, "Vistara", got[1].Provider)
		assert.Equal(t, 7900, got[1].Price)
		assert.Equal(t, "09:00 AM", got[1].DepartureTime)
		require.NotNil(t, got[1].Rating)
		assert.InDelta(t, 4.6, *got[1].Rating, 1e-9)
	})

	t.Run("block with bad header is dropped whole", func(t *testing.T) {
		text := "**Air Y**: ₹3,000\n* **Departure Time**: 10:00 AM\n\n1. **Air Z**: ₹2,000"
		got := ParseTravelOptions(text)
		require.Len(t, got, 1)
		assert.Equal(t, "Air Z", got[0].Provider)
	})

	t.Run("debug lines do not break blocks", func(t *testing.T) {
		text := "1. **Air X**: ₹5,000\nRunning: google_search(flights)\n* **Duration**: 1h"
		got := ParseTravelOptions(text)
		require.Len(t, got, 1)
		assert.Equal(t, "1h", got[0].Duration)
		for _, o := range got {
			assert.NotContains(t, o.Duration, "Running")
		}
	})

	t.Run("garbage yields empty slice", func(t *testing.T) {
		assert.Empty(t, ParseTravelOptions("no flights today"))
		assert.NotNil(t, ParseTravelOptions(""))
	})
}
