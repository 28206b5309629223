// Package environment produces synthetic condition readings for the
// evaluator's safety check. Readings are category-specific (weather for
// aerial tasks, traffic for delivery, facility status otherwise) and
// sampled from a caller-supplied random source so tests stay
// deterministic.
package environment

import (
	"fmt"
	"math/rand"
)

// Category classifies a condition reading.
type Category string

const (
	CategoryWeather  Category = "weather"
	CategoryTraffic  Category = "traffic"
	CategoryFacility Category = "facility"
)

// Outlook is an optional forced condition supplied by the interactive
// surface. An empty outlook means "sample from the category bias".
type Outlook string

const (
	OutlookNone        Outlook = ""
	OutlookFavorable   Outlook = "favorable"
	OutlookModerate    Outlook = "moderate"
	OutlookUnfavorable Outlook = "unfavorable"
)

// Check is the result of one condition reading.
type Check struct {
	Category Category       `json:"category"`
	Safe     bool           `json:"safe"`
	Reason   string         `json:"reason"`
	Details  map[string]any `json:"details"`
}

// Task type tags recognized by CategoryFor. Unknown tags fall back to
// weather, matching the demo's drone-first framing.
const (
	TaskDroneMission  = "drone_mission"
	TaskDeliveryRoute = "delivery_route"
	TaskProductionJob = "production_job"
)

// CategoryFor maps a task type tag to its condition category.
func CategoryFor(taskType string) Category {
	switch taskType {
	case TaskDeliveryRoute:
		return CategoryTraffic
	case TaskProductionJob:
		return CategoryFacility
	default:
		return CategoryWeather
	}
}

// Sampler draws condition readings.
type Sampler struct {
	rng *rand.Rand
}

// NewSampler creates a sampler backed by rng.
func NewSampler(rng *rand.Rand) *Sampler {
	return &Sampler{rng: rng}
}

// Check samples a reading for the given task type. When outlook is set
// it overrides the category's safety bias: favorable is always safe,
// moderate is safe with 70% probability, unfavorable is always unsafe.
func (s *Sampler) Check(location, taskType string, outlook Outlook) Check {
	category := CategoryFor(taskType)

	var check Check
	switch category {
	case CategoryTraffic:
		check = s.trafficCheck()
	case CategoryFacility:
		check = s.facilityCheck()
	default:
		check = s.weatherCheck()
	}

	switch outlook {
	case OutlookFavorable:
		check.Safe = true
	case OutlookModerate:
		check.Safe = s.rng.Float64() > 0.3
	case OutlookUnfavorable:
		check.Safe = false
	}

	if check.Safe {
		check.Reason = "Conditions favorable for task execution"
	} else {
		check.Reason = unsafeReason(check)
	}
	return check
}

func (s *Sampler) weatherCheck() Check {
	return Check{
		Category: CategoryWeather,
		// ~75% safe
		Safe: s.rng.Intn(4) != 0,
		Details: map[string]any{
			"condition":  pick(s.rng, "Clear", "Cloudy", "Windy"),
			"wind_speed": s.between(5, 35),
			"visibility": s.between(5, 15),
		},
	}
}

func (s *Sampler) trafficCheck() Check {
	return Check{
		Category: CategoryTraffic,
		// ~66% safe
		Safe: s.rng.Intn(3) != 0,
		Details: map[string]any{
			"traffic_level":       pick(s.rng, "Low", "Moderate", "Heavy"),
			"estimated_delay_min": s.between(0, 45),
			"road_status":         pick(s.rng, "Clear", "Construction"),
		},
	}
}

func (s *Sampler) facilityCheck() Check {
	return Check{
		Category: CategoryFacility,
		Safe:     true,
		Details: map[string]any{
			"machine_status": "Operational",
			"temperature":    s.between(20, 25),
			"power_status":   "Stable",
		},
	}
}

func unsafeReason(c Check) string {
	switch c.Category {
	case CategoryWeather:
		return fmt.Sprintf("Unsafe weather: Wind %d km/h", c.Details["wind_speed"])
	case CategoryTraffic:
		return fmt.Sprintf("Heavy traffic: %d min delay", c.Details["estimated_delay_min"])
	default:
		return "Conditions not favorable for task execution"
	}
}

// between returns a random int in [lo, hi].
func (s *Sampler) between(lo, hi int) int {
	return lo + s.rng.Intn(hi-lo+1)
}

func pick(rng *rand.Rand, options ...string) string {
	return options[rng.Intn(len(options))]
}
