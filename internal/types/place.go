package types

import "github.com/google/uuid"

// GeoPoint is a WGS84 coordinate pair.
type GeoPoint struct {
	Lat float64 `json:"latitude"`
	Lon float64 `json:"longitude"`
}

// Place is a single catalog entry: either a sightseeing spot or a food
// venue, fixed at load time. Tags are already stemmed by the data
// preparation pipeline.
type Place struct {
	ID                    int      `json:"id"`
	Title                 string   `json:"title"`
	Address               string   `json:"address"`
	Description           string   `json:"description"`
	Latitude              float64  `json:"latitude"`
	Longitude             float64  `json:"longitude"`
	CategoryID            int      `json:"category_id"`
	Tags                  []string `json:"tags"`
	EstimatedVisitMinutes int      `json:"estimated_visit_minutes,omitempty"`
}

// Point returns the place coordinates as a GeoPoint.
func (p Place) Point() GeoPoint {
	return GeoPoint{Lat: p.Latitude, Lon: p.Longitude}
}

// TagSet returns the place tags as a set for intersection scoring.
func (p Place) TagSet() map[string]struct{} {
	set := make(map[string]struct{}, len(p.Tags))
	for _, t := range p.Tags {
		set[t] = struct{}{}
	}
	return set
}

// RouteStop is one visited place in a finalized route together with the
// travel leg that leads to it.
type RouteStop struct {
	Place         Place   `json:"place"`
	TravelMinutes float64 `json:"travel_minutes"`
	TravelKm      float64 `json:"travel_km"`
	VisitMinutes  int     `json:"visit_minutes"`
	FoodStop      bool    `json:"food_stop"`
}

// RouteControl describes one navigation control the conversation layer
// should render. Action is an opaque token; URL is set for link controls.
type RouteControl struct {
	Label  string `json:"label"`
	Action string `json:"action,omitempty"`
	URL    string `json:"url,omitempty"`
}

// RouteResult is the outcome of one route generation request.
type RouteResult struct {
	ID                   uuid.UUID      `json:"id"`
	Text                 string         `json:"text"`
	Stops                []RouteStop    `json:"stops"`
	Controls             []RouteControl `json:"controls"`
	PlaceIDs             []int          `json:"place_ids"`
	TotalDurationMinutes float64        `json:"total_duration_minutes"`
	TotalDistanceKm      float64        `json:"total_distance_km"`
	Notification         string         `json:"notification,omitempty"`
}

// GenerateRouteRequest is the HTTP payload for route generation. Location
// resolution from free text happens upstream; the handler receives the
// already geocoded point.
type GenerateRouteRequest struct {
	Interests string   `json:"interests"`
	Time      string   `json:"time"`
	Location  GeoPoint `json:"location"`
	Address   string   `json:"address,omitempty"`
}
