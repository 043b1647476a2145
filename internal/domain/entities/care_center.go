package entities

// CareCenter is one ranked treatment facility produced by hospital routing.
type CareCenter struct {
	Name       string  `json:"name"`
	URL        string  `json:"url"`
	Capability string  `json:"capability"`
	Travel     string  `json:"travel"`
	Reason     string  `json:"reason"`
	Latitude   float64 `json:"lat"`
	Longitude  float64 `json:"lng"`
}

// HospitalQuery carries the routing request. Location may be a free-text place
// name or "lat, lng" coordinates.
type HospitalQuery struct {
	Diagnosis     string `json:"diagnosis"`
	Location      string `json:"location,omitempty"`
	Equipment     string `json:"equipment,omitempty"`
	MaxTravelTime string `json:"max_travel_time,omitempty"`
	MaxDistance   string `json:"max_distance,omitempty"`
}
