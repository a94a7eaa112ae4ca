package models

import "github.com/uptrace/bun"

// Point is a WGS84 longitude/latitude pair.
type Point struct {
	Latitude  float64 `json:"latitude"`
	Longitude float64 `json:"longitude"`
}

// Valid reports whether the point lies inside the geographic coordinate ranges.
func (p Point) Valid() bool {
	return p.Latitude >= -90 && p.Latitude <= 90 && p.Longitude >= -180 && p.Longitude <= 180
}

// Address is one practice location. The geo column is generated by Postgres from
// latitude/longitude and is not mapped.
type Address struct {
	bun.BaseModel          `bun:"table:addresses,alias:a"`
	ID                     int64   `bun:"id,pk,autoincrement" json:"-"`
	UserID                 int64   `bun:"user_id,notnull" json:"-"`
	Address                string  `bun:"address" json:"address"`
	Latitude               float64 `bun:"latitude,notnull" json:"latitude"`
	Longitude              float64 `bun:"longitude,notnull" json:"longitude"`
	Phone                  *string `bun:"phone" json:"phone"`
	Fax                    *string `bun:"fax" json:"fax"`
	IsWheelchairAccessible bool    `bun:"is_wheelchair_accessible,notnull" json:"is_wheelchair_accessible"`
	IsAcceptingNewPatients bool    `bun:"is_accepting_new_patients,notnull" json:"is_accepting_new_patients"`
	StartHour              *string `bun:"start_hour,type:time" json:"start_hour"`
	EndHour                *string `bun:"end_hour,type:time" json:"end_hour"`

	// Distance is the travel distance from the search origin, filled in after the query.
	Distance *string `bun:"-" json:"distance,omitempty"`
}

func (a *Address) Point() Point {
	return Point{Latitude: a.Latitude, Longitude: a.Longitude}
}
