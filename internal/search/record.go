// internal/search/record.go
package search

import (
	"fmt"
	"strings"
	"time"

	"github.com/Merry-360-x/merry-moments-sub002/internal/models"
)

// Kind identifies which listing table a record came from.
type Kind string

const (
	KindProperty    Kind = "property"
	KindTour        Kind = "tour"
	KindTourPackage Kind = "tour_package"
	KindTransport   Kind = "transport"
)

// AllKinds is the fetch and emission order used for "all" searches.
var AllKinds = []Kind{KindProperty, KindTour, KindTourPackage, KindTransport}

// ParseKind accepts the singular kind names and the table names
// (properties, tours, tour_packages, transport_vehicles).
func ParseKind(s string) (Kind, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "property", "properties":
		return KindProperty, nil
	case "tour", "tours":
		return KindTour, nil
	case "tour_package", "tour_packages", "package", "packages":
		return KindTourPackage, nil
	case "transport", "transports", "transport_vehicles", "vehicle", "vehicles":
		return KindTransport, nil
	default:
		return "", fmt.Errorf("unknown record kind %q", s)
	}
}

// Record is one candidate listing. Exactly one payload pointer is set and it
// matches Kind.
type Record struct {
	Kind        Kind                `json:"kind"`
	Property    *models.Property    `json:"property,omitempty"`
	Tour        *models.Tour        `json:"tour,omitempty"`
	TourPackage *models.TourPackage `json:"tour_package,omitempty"`
	Transport   *models.Transport   `json:"transport,omitempty"`
}

func FromProperty(p *models.Property) Record {
	return Record{Kind: KindProperty, Property: p}
}

func FromTour(t *models.Tour) Record {
	return Record{Kind: KindTour, Tour: t}
}

func FromTourPackage(p *models.TourPackage) Record {
	return Record{Kind: KindTourPackage, TourPackage: p}
}

func FromTransport(t *models.Transport) Record {
	return Record{Kind: KindTransport, Transport: t}
}

// Valid reports whether the payload for Kind is present.
func (r Record) Valid() bool {
	switch r.Kind {
	case KindProperty:
		return r.Property != nil
	case KindTour:
		return r.Tour != nil
	case KindTourPackage:
		return r.TourPackage != nil
	case KindTransport:
		return r.Transport != nil
	}
	return false
}

// Payload returns the listing row behind the record.
func (r Record) Payload() interface{} {
	switch r.Kind {
	case KindProperty:
		return r.Property
	case KindTour:
		return r.Tour
	case KindTourPackage:
		return r.TourPackage
	case KindTransport:
		return r.Transport
	}
	return nil
}

func (r Record) ID() string {
	if !r.Valid() {
		return ""
	}
	switch r.Kind {
	case KindProperty:
		return r.Property.ID
	case KindTour:
		return r.Tour.ID
	case KindTourPackage:
		return r.TourPackage.ID
	default:
		return r.Transport.ID
	}
}

func (r Record) Rating() float64 {
	if !r.Valid() {
		return 0
	}
	switch r.Kind {
	case KindProperty:
		return r.Property.Rating.Float64()
	case KindTour:
		return r.Tour.Rating.Float64()
	case KindTourPackage:
		return r.TourPackage.Rating.Float64()
	default:
		return r.Transport.Rating.Float64()
	}
}

func (r Record) ReviewCount() int {
	if !r.Valid() {
		return 0
	}
	switch r.Kind {
	case KindProperty:
		return r.Property.ReviewCount.Int()
	case KindTour:
		return r.Tour.ReviewCount.Int()
	case KindTourPackage:
		return r.TourPackage.ReviewCount.Int()
	default:
		return r.Transport.ReviewCount.Int()
	}
}

// CreatedAt returns the zero time when the store did not provide one.
func (r Record) CreatedAt() time.Time {
	var ts *models.Timestamp
	if r.Valid() {
		switch r.Kind {
		case KindProperty:
			ts = r.Property.CreatedAt
		case KindTour:
			ts = r.Tour.CreatedAt
		case KindTourPackage:
			ts = r.TourPackage.CreatedAt
		default:
			ts = r.Transport.CreatedAt
		}
	}
	if ts == nil {
		return time.Time{}
	}
	return ts.Time
}

func (r Record) Currency() string {
	if !r.Valid() {
		return ""
	}
	switch r.Kind {
	case KindProperty:
		return r.Property.Currency
	case KindTour:
		return r.Tour.Currency
	case KindTourPackage:
		return r.TourPackage.Currency
	default:
		return r.Transport.Currency
	}
}

// FieldBundle is the normalized text projection of a record used for
// scoring and text filters.
type FieldBundle struct {
	Title       string `json:"title"`
	Location    string `json:"location"`
	Description string `json:"description"`
	Category    string `json:"category"`
	Amenities   string `json:"amenities"`
	All         string `json:"all"`
}

// Bundle projects the record onto the shared scoring fields, applying the
// per-kind fallbacks for location and category.
func (r Record) Bundle() FieldBundle {
	if !r.Valid() {
		return FieldBundle{}
	}

	var title, location, description, category string
	var amenities []string
	switch r.Kind {
	case KindProperty:
		p := r.Property
		title, description = p.Title, p.Description
		location = firstNonEmpty(p.Location, p.Address)
		category = firstNonEmpty(p.Category, p.PropertyType)
		amenities = p.Amenities
	case KindTour:
		t := r.Tour
		title, description, category = t.Title, t.Description, t.Category
		location = firstNonEmpty(t.Location, t.Destination)
		amenities = t.Highlights
	case KindTourPackage:
		p := r.TourPackage
		title, description, category = p.Title, p.Description, p.Category
		location = firstNonEmpty(p.Location, strings.TrimSpace(p.City+" "+p.Country))
		amenities = p.Inclusions
	case KindTransport:
		t := r.Transport
		title, description = t.Title, t.Description
		location = firstNonEmpty(t.FromLocation, t.ToLocation)
		category = t.VehicleType
		amenities = t.Features
	}

	b := FieldBundle{
		Title:       Normalize(title),
		Location:    Normalize(location),
		Description: Normalize(description),
		Category:    Normalize(category),
		Amenities:   Normalize(strings.Join(amenities, " ")),
	}
	b.All = Normalize(strings.Join([]string{
		b.Title, b.Location, b.Description, b.Category, b.Amenities, string(r.Kind),
	}, " "))
	return b
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if strings.TrimSpace(v) != "" {
			return v
		}
	}
	return ""
}
