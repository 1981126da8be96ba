// server/internal/models/common.go
package models

import "time"

// GeoPoint holds a latitude/longitude pair for map display.
type GeoPoint struct {
	Lat float64 `bson:"lat" json:"lat"`
	Lng float64 `bson:"lng" json:"lng"`
}

// TransitLocation is the volunteer's last reported position during transit.
type TransitLocation struct {
	Lat         float64   `bson:"lat" json:"lat"`
	Lng         float64   `bson:"lng" json:"lng"`
	LastUpdated time.Time `bson:"lastUpdated" json:"lastUpdated"`
}
