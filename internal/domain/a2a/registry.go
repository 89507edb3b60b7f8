package a2a

// Capability describes what a specialist agent can do. Entries are
// descriptive only: routing is driven by the endpoint configuration,
// never by this registry.
type Capability struct {
	AgentType    AgentType `json:"agent_type"`
	Capabilities []string  `json:"capabilities"`
	Endpoints    []string  `json:"endpoints"`
	DataProvided []string  `json:"data_provided"`
	DataRequired []string  `json:"data_required"`
}

// Registry returns the static capability registry for all specialist agents.
func Registry() map[AgentType]Capability {
	return map[AgentType]Capability{
		AgentFood: {
			AgentType: AgentFood,
			Capabilities: []string{
				"restaurant_recommendations",
				"hidden_gem_detection",
				"hygiene_analysis",
				"vegetarian_detection",
				"night_dining_spots",
			},
			Endpoints: []string{"/recommendations", "/place/{place_id}", "/health"},
			DataProvided: []string{
				"restaurant_list",
				"ratings_scores",
				"location_data",
				"opening_hours",
				"cuisine_types",
			},
			DataRequired: []string{"user_location", "radius", "preferences"},
		},
		AgentRegulatory: {
			AgentType: AgentRegulatory,
			Capabilities: []string{
				"traffic_enforcement_detection",
				"regulation_zone_analysis",
				"police_density_scoring",
				"risk_assessment",
				"parking_violation_alerts",
			},
			Endpoints: []string{
				"/regulatory-analysis",
				"/nearby-police",
				"/nearby-toll-booths",
				"/nearby-parking",
				"/zones",
			},
			DataProvided: []string{
				"risk_scores",
				"enforcement_zones",
				"police_locations",
				"parking_info",
				"violation_warnings",
			},
			DataRequired: []string{"user_location", "vehicle_type", "route_info"},
		},
		AgentTransport: {
			AgentType: AgentTransport,
			Capabilities: []string{
				"traffic_analysis",
				"congestion_prediction",
				"travel_mode_detection",
				"arrival_time_estimation",
				"parking_difficulty_assessment",
			},
			Endpoints: []string{"/transport-analysis", "/traffic-conditions", "/route-optimization"},
			DataProvided: []string{
				"congestion_scores",
				"travel_times",
				"traffic_conditions",
				"parking_availability",
				"route_suggestions",
			},
			DataRequired: []string{"origin_location", "destination_location", "travel_mode", "time_of_day"},
		},
		AgentFestival: {
			AgentType: AgentFestival,
			Capabilities: []string{
				"event_detection",
				"road_closure_alerts",
				"festival_impact_analysis",
				"crowd_density_prediction",
			},
			Endpoints:    []string{"/scan-events", "/road-closures", "/event-impact"},
			DataProvided: []string{"event_list", "road_closures", "crowd_predictions", "alternate_routes"},
			DataRequired: []string{"location", "date_range", "event_types"},
		},
	}
}
