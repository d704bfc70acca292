package mapview

import (
	"encoding/json"
	"fmt"
	"sync"

	"github.com/paulmach/orb/geojson"

	"github.com/FACorreiaa/go-travel-planner/internal/types"
)

type DrawState int

const (
	DrawOff DrawState = iota
	AwaitingCenter
	AwaitingRadius
)

func (s DrawState) String() string {
	switch s {
	case AwaitingCenter:
		return "awaiting_center"
	case AwaitingRadius:
		return "awaiting_radius"
	default:
		return "off"
	}
}

func (s DrawState) MarshalJSON() ([]byte, error) {
	return json.Marshal(s.String())
}

func (s *DrawState) UnmarshalJSON(data []byte) error {
	var name string
	if err := json.Unmarshal(data, &name); err != nil {
		return err
	}
	switch name {
	case "off":
		*s = DrawOff
	case "awaiting_center":
		*s = AwaitingCenter
	case "awaiting_radius":
		*s = AwaitingRadius
	default:
		return fmt.Errorf("unknown draw state %q", name)
	}
	return nil
}

// CirclePreview is what the map shows while a circle is being drawn.
type CirclePreview struct {
	State   DrawState          `json:"state"`
	Center  *types.Coordinates `json:"center,omitempty"`
	Radius  float64            `json:"radius"`
	Outline *geojson.Feature   `json:"outline,omitempty"`
}

// CircleDraw is the two-click circle drawing state machine: the first click
// fixes the center, the second fixes the radius and emits the area.
type CircleDraw struct {
	mu         sync.Mutex
	state      DrawState
	center     types.Coordinates
	radius     float64
	onComplete func(types.SearchArea)
}

// NewCircleDraw returns a machine in DrawOff. onComplete may be nil.
func NewCircleDraw(onComplete func(types.SearchArea)) *CircleDraw {
	return &CircleDraw{onComplete: onComplete}
}

func (c *CircleDraw) SetOnComplete(fn func(types.SearchArea)) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.onComplete = fn
}

func (c *CircleDraw) State() DrawState {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.state
}

// Start begins a new drawing, discarding any unfinished one.
func (c *CircleDraw) Start() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.state = AwaitingCenter
	c.center, c.radius = types.Coordinates{}, 0
}

// Click advances the machine. The second click returns the finished area and
// hands it to the completion callback. Clicks while off or outside valid
// coordinates are ignored.
func (c *CircleDraw) Click(p types.Coordinates) (*types.SearchArea, bool) {
	if !p.Valid() {
		return nil, false
	}

	c.mu.Lock()
	switch c.state {
	case AwaitingCenter:
		c.center, c.radius = p, 0
		c.state = AwaitingRadius
		c.mu.Unlock()
		return nil, false
	case AwaitingRadius:
		area := types.SearchArea{
			Center: [2]float64{c.center.Longitude, c.center.Latitude},
			Radius: Distance(c.center, p),
		}
		c.state = DrawOff
		c.center, c.radius = types.Coordinates{}, 0
		fn := c.onComplete
		c.mu.Unlock()

		if fn != nil {
			fn(area)
		}
		return &area, true
	default:
		c.mu.Unlock()
		return nil, false
	}
}

// Move updates the preview radius while the radius is being chosen.
func (c *CircleDraw) Move(p types.Coordinates) (float64, bool) {
	if !p.Valid() {
		return 0, false
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.state != AwaitingRadius {
		return 0, false
	}
	c.radius = Distance(c.center, p)
	return c.radius, true
}

// Cancel drops back to DrawOff without emitting anything.
func (c *CircleDraw) Cancel() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.state = DrawOff
	c.center, c.radius = types.Coordinates{}, 0
}

func (c *CircleDraw) Preview() CirclePreview {
	c.mu.Lock()
	defer c.mu.Unlock()

	out := CirclePreview{State: c.state}
	if c.state != AwaitingRadius {
		return out
	}
	center := c.center
	out.Center = &center
	out.Radius = c.radius
	if c.radius > 0 {
		out.Outline = geojson.NewFeature(CirclePolygon(center, c.radius, DefaultCircleSteps))
		out.Outline.Properties["radius_km"] = c.radius
	}
	return out
}
