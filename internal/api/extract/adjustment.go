package extract

import (
	"fmt"
	"strings"

	"github.com/samber/lo"

	"github.com/FACorreiaa/go-travel-planner/internal/types"
)

// IsCancelled reports whether an activity name matches any cancellation. The
// backend only sends names, so a match is a case-insensitive substring in
// either direction. Short names over-match: "Tea" cancels "Tea Museum Tour",
// and an empty cancellation cancels everything.
func IsCancelled(name string, cancelled []string) bool {
	n := strings.ToLower(name)
	return lo.ContainsBy(cancelled, func(c string) bool {
		c = strings.ToLower(c)
		return strings.Contains(n, c) || strings.Contains(c, n)
	})
}

// MergeAdjustment builds the accepted schedule: alternatives first, then the
// originals that were not cancelled, all marked upcoming. now fills in
// alternatives without an estimated time.
func MergeAdjustment(original []types.Activity, result types.AdjustmentResult, now string) []types.Activity {
	alternatives := lo.Map(result.AlternativeActivities, func(a types.AlternativeActivity, i int) types.Activity {
		t := a.EstimatedTime
		if t == "" {
			t = now
		}
		return types.Activity{
			ID:          fmt.Sprintf("alt-%d", i),
			Time:        t,
			Activity:    a.Name,
			Location:    a.Location,
			Description: a.Reason,
			Status:      types.StatusUpcoming,
			Type:        string(types.ItemTypeAlternative),
		}
	})

	kept := lo.FilterMap(original, func(a types.Activity, _ int) (types.Activity, bool) {
		if IsCancelled(a.Activity, result.ActivitiesToCancel) {
			return types.Activity{}, false
		}
		a.Status = types.StatusUpcoming
		return a, true
	})

	return append(alternatives, kept...)
}
