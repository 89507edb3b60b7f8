package decision

import (
	"encoding/json"
	"fmt"
)

// Kind identifies which capability schema a report carries.
type Kind string

const (
	KindFood       Kind = "food"
	KindRegulatory Kind = "regulatory"
	KindTransport  Kind = "transport"
	KindFestival   Kind = "festival"
)

// Restaurant is one entry in a food agent response.
type Restaurant struct {
	Name         string   `json:"name"`
	Rating       *float64 `json:"rating,omitempty"`
	Label        string   `json:"label,omitempty"`
	HygieneScore *float64 `json:"hygiene_score,omitempty"`
}

// LowHygiene reports whether the restaurant's hygiene indicator falls below
// the given threshold. A missing score counts as healthy.
func (r *Restaurant) LowHygiene(threshold float64) bool {
	return r.HygieneScore != nil && *r.HygieneScore < threshold
}

// FoodReport is the validated shape of a food agent response.
type FoodReport struct {
	TopRecommendations []Restaurant `json:"top_recommendations"`
}

// Zone is one enforcement zone identified by the regulatory agent.
type Zone struct {
	Name     string `json:"name"`
	ZoneType string `json:"zone_type,omitempty"`
}

// RegulatoryReport is the validated shape of a regulatory agent response.
// RiskScore is a pointer so a response that omits risk data entirely can be
// told apart from a zero score.
type RegulatoryReport struct {
	RiskScore       *float64 `json:"risk_score,omitempty"`
	RiskLevel       string   `json:"risk_level,omitempty"`
	ApplicableZones []Zone   `json:"applicable_zones,omitempty"`
	Warnings        []string `json:"warnings,omitempty"`
}

// TransportReport is the validated shape of a transport agent response.
// Reserved: no aggregation rules consume it yet.
type TransportReport struct {
	CongestionScore   float64  `json:"congestion_score,omitempty"`
	TravelTimeMinutes float64  `json:"travel_time_minutes,omitempty"`
	TrafficConditions []string `json:"traffic_conditions,omitempty"`
	Warnings          []string `json:"warnings,omitempty"`
}

// Event is one entry in a festival agent response.
type Event struct {
	Name  string `json:"name"`
	Venue string `json:"venue,omitempty"`
	Date  string `json:"date,omitempty"`
}

// FestivalReport is the validated shape of a festival agent response.
// Reserved: no aggregation rules consume it yet.
type FestivalReport struct {
	Events       []Event  `json:"events,omitempty"`
	RoadClosures []string `json:"road_closures,omitempty"`
}

// Report is the tagged per-capability variant consumed by the decision
// engine. Exactly one of the typed payloads is set on success; Error holds
// the recorded fault otherwise. Name is the capability key in the recipe
// result map (e.g. "food", "origin_regulatory") and may differ from Kind.
type Report struct {
	Name       string            `json:"-"`
	Kind       Kind              `json:"kind"`
	Food       *FoodReport       `json:"food,omitempty"`
	Regulatory *RegulatoryReport `json:"regulatory,omitempty"`
	Transport  *TransportReport  `json:"transport,omitempty"`
	Festival   *FestivalReport   `json:"festival,omitempty"`
	Error      string            `json:"error,omitempty"`
}

// Failed reports whether this capability recorded a fault instead of data.
func (r Report) Failed() bool {
	return r.Error != ""
}

// ErrorReport records a per-capability fault without aborting siblings.
func ErrorReport(name string, kind Kind, err error) Report {
	return Report{Name: name, Kind: kind, Error: err.Error()}
}

// DecodeReport validates raw collaborator JSON against the schema for the
// given kind. A decode failure is itself recorded as an error report.
func DecodeReport(name string, kind Kind, data []byte) Report {
	r := Report{Name: name, Kind: kind}

	var err error
	switch kind {
	case KindFood:
		var f FoodReport
		if err = json.Unmarshal(data, &f); err == nil {
			r.Food = &f
		}
	case KindRegulatory:
		var reg RegulatoryReport
		if err = json.Unmarshal(data, &reg); err == nil {
			r.Regulatory = &reg
		}
	case KindTransport:
		var tr TransportReport
		if err = json.Unmarshal(data, &tr); err == nil {
			r.Transport = &tr
		}
	case KindFestival:
		var f FestivalReport
		if err = json.Unmarshal(data, &f); err == nil {
			r.Festival = &f
		}
	default:
		err = fmt.Errorf("unknown capability kind %q", kind)
	}

	if err != nil {
		return ErrorReport(name, kind, fmt.Errorf("decode %s response: %w", kind, err))
	}
	return r
}
