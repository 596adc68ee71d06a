package model

// Point is a WGS84 coordinate. X is the longitude and Y the latitude, as
// returned by the geocoding service.
type Point struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
}

// Lat returns the latitude.
func (p Point) Lat() float64 { return p.Y }

// Lon returns the longitude.
func (p Point) Lon() float64 { return p.X }

// Location is a geocoded roster address.
type Location struct {
	ObjectID     int         `json:"object_id"`
	Employee     string      `json:"employee_number"`
	Type         AddressType `json:"address_type"`
	MatchAddress string      `json:"match_address"`
	Point        Point       `json:"point"`
	Score        float64     `json:"score"`
	Cached       bool        `json:"cached,omitempty"`
}

// Matched reports whether the geocoder found a candidate for the address.
func (l Location) Matched() bool { return l.Score > 0 }
