package geo

import (
	"fmt"
	"net"

	"github.com/oschwald/geoip2-golang"
)

// Info is the coarse location attached to a click event. Zero values mean
// the location could not be determined; that is never an error.
type Info struct {
	Country string `json:"country,omitempty"`
	Region  string `json:"region,omitempty"`
	City    string `json:"city,omitempty"`
}

// Lookup resolves a client IP to an Info. Implementations must be safe for
// concurrent use and must never fail the caller; unknown geo is acceptable.
type Lookup interface {
	Lookup(ip string) Info
}

// MaxMind resolves IPs against a local MaxMind City database.
type MaxMind struct {
	db *geoip2.Reader
}

// OpenMaxMind opens the mmdb file at path.
func OpenMaxMind(path string) (*MaxMind, error) {
	db, err := geoip2.Open(path)
	if err != nil {
		return nil, fmt.Errorf("geo: open database: %w", err)
	}
	return &MaxMind{db: db}, nil
}

func (m *MaxMind) Lookup(ip string) Info {
	parsed := net.ParseIP(ip)
	if parsed == nil {
		return Info{}
	}

	city, err := m.db.City(parsed)
	if err != nil {
		return Info{}
	}

	info := Info{
		Country: city.Country.IsoCode,
		City:    city.City.Names["en"],
	}
	if len(city.Subdivisions) > 0 {
		info.Region = city.Subdivisions[0].IsoCode
	}
	return info
}

// Close releases the underlying database.
func (m *MaxMind) Close() error {
	return m.db.Close()
}

type unavailable struct{}

func (unavailable) Lookup(string) Info { return Info{} }

// Unavailable returns a Lookup that reports unknown geo for every IP. Used
// when no database is configured.
func Unavailable() Lookup { return unavailable{} }
