package extract

import (
	"regexp"
	"strconv"
	"strings"

	"github.com/FACorreiaa/go-travel-planner/internal/types"
)

const (
	defaultCurrency     = "INR"
	defaultAvailability = "Available"
	notAvailable        = "N/A"
)

var (
	blockSeparator = regexp.MustCompile(`\n\s*\n`)
	optionHeader   = regexp.MustCompile(`^\d+\.\s+\*\*(.+?)\*\*:\s+₹?([\d,]+)`)

	departureLabel    = regexp.MustCompile(`(?i)\*\*Departure Time\*\*:\s*(.+)`)
	arrivalLabel      = regexp.MustCompile(`(?i)\*\*Arrival Time\*\*:\s*(.+)`)
	durationLabel     = regexp.MustCompile(`(?i)\*\*Duration\*\*:\s*(.+)`)
	ratingLabel       = regexp.MustCompile(`(?i)\*\*Rating\*\*:\s*([\d.]+)`)
	flightNumberLabel = regexp.MustCompile(`(?i)\*\*Flight Number\*\*:\s*([A-Za-z0-9-]+)`)
)

// ParseTravelOptions reads numbered "1. **Provider**: ₹price" blocks separated
// by blank lines. A block whose first line is not such a header is skipped as a
// whole. It never fails; unparseable text yields an empty slice.
func ParseTravelOptions(text string) []types.TravelOption {
	options := []types.TravelOption{}
	text = StripNoise(text)
	if text == "" {
		return options
	}

	for _, block := range blockSeparator.Split(text, -1) {
		if opt, ok := parseOptionBlock(block); ok {
			options = append(options, opt)
		}
	}
	return options
}

func parseOptionBlock(block string) (types.TravelOption, bool) {
	var lines []string
	for _, l := range strings.Split(block, "\n") {
		if l = strings.TrimSpace(l); l != "" {
			lines = append(lines, l)
		}
	}
	if len(lines) == 0 {
		return types.TravelOption{}, false
	}

	header := optionHeader.FindStringSubmatch(lines[0])
	if header == nil {
		return types.TravelOption{}, false
	}
	provider := strings.TrimSpace(header[1])
	price, err := strconv.Atoi(strings.ReplaceAll(header[2], ",", ""))
	if provider == "" || err != nil {
		return types.TravelOption{}, false
	}

	opt := types.TravelOption{
		Provider:      provider,
		Price:         price,
		Currency:      defaultCurrency,
		Availability:  defaultAvailability,
		DepartureTime: notAvailable,
		ArrivalTime:   notAvailable,
		Duration:      notAvailable,
	}

	for _, line := range lines[1:] {
		if m := departureLabel.FindStringSubmatch(line); m != nil {
			opt.DepartureTime = strings.TrimSpace(m[1])
		}
		if m := arrivalLabel.FindStringSubmatch(line); m != nil {
			opt.ArrivalTime = strings.TrimSpace(m[1])
		}
		if m := durationLabel.FindStringSubmatch(line); m != nil {
			opt.Duration = strings.TrimSpace(m[1])
		}
		if m := ratingLabel.FindStringSubmatch(line); m != nil {
			if r, err := strconv.ParseFloat(strings.TrimRight(m[1], "."), 64); err == nil {
				opt.Rating = &r
			}
		}
		if m := flightNumberLabel.FindStringSubmatch(line); m != nil {
			opt.FlightNumber = m[1]
		}
	}
	return opt, true
}
