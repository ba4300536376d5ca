package model

// Location is a named sub-area of a city, e.g. "Gomti Nagar, Lucknow".
type Location struct {
	ID   int64  `json:"id"`
	Name string `json:"name"`
	City string `json:"city"`
}
