package ride

import "github.com/carpool-platform/service-rides/pkg/apperrors"

// Location is a validated value object naming a pickup or dropoff area.
type Location struct {
	Country string `json:"country"`
	State   string `json:"state"`
	Place   string `json:"place"`
}

// Validate checks that all parts of the location are present.
func (l Location) Validate() error {
	if l.Country == "" {
		return apperrors.NewValidation("location country is required")
	}
	if l.State == "" {
		return apperrors.NewValidation("location state is required")
	}
	if l.Place == "" {
		return apperrors.NewValidation("location place is required")
	}
	return nil
}

// Route is the origin and destination of a ride.
type Route struct {
	From Location `json:"from"`
	To   Location `json:"to"`
}

// Validate checks both endpoints of the route.
func (r Route) Validate() error {
	if err := r.From.Validate(); err != nil {
		return err
	}
	return r.To.Validate()
}
