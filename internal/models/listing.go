// internal/models/listing.go
package models

// Property is a published stay (apartment, villa, guesthouse, ...).
type Property struct {
	ID                        string      `json:"id" yaml:"id"`
	Title                     string      `json:"title" yaml:"title"`
	Description               string      `json:"description,omitempty" yaml:"description"`
	Location                  string      `json:"location,omitempty" yaml:"location"`
	Address                   string      `json:"address,omitempty" yaml:"address"`
	Category                  string      `json:"category,omitempty" yaml:"category"`
	PropertyType              string      `json:"property_type,omitempty" yaml:"property_type"`
	Amenities                 AmenityList `json:"amenities,omitempty" yaml:"amenities"`
	Rating                    Number      `json:"rating" yaml:"rating"`
	ReviewCount               Number      `json:"review_count" yaml:"review_count"`
	PricePerNight             *Number     `json:"price_per_night,omitempty" yaml:"price_per_night"`
	PricePerMonth             *Number     `json:"price_per_month,omitempty" yaml:"price_per_month"`
	Currency                  string      `json:"currency,omitempty" yaml:"currency"`
	Bedrooms                  Number      `json:"bedrooms" yaml:"bedrooms"`
	Bathrooms                 Number      `json:"bathrooms" yaml:"bathrooms"`
	MaxGuests                 Number      `json:"max_guests" yaml:"max_guests"`
	MonthlyOnlyListing        bool        `json:"monthly_only_listing" yaml:"monthly_only_listing"`
	AvailableForMonthlyRental bool        `json:"available_for_monthly_rental" yaml:"available_for_monthly_rental"`
	CreatedAt                 *Timestamp  `json:"created_at,omitempty" yaml:"created_at"`
}

// MonthlyAvailable reports whether the property can be booked by the month.
func (p *Property) MonthlyAvailable() bool {
	return p.MonthlyOnlyListing || p.AvailableForMonthlyRental
}

type Tour struct {
	ID             string      `json:"id" yaml:"id"`
	Title          string      `json:"title" yaml:"title"`
	Description    string      `json:"description,omitempty" yaml:"description"`
	Location       string      `json:"location,omitempty" yaml:"location"`
	Destination    string      `json:"destination,omitempty" yaml:"destination"`
	Category       string      `json:"category,omitempty" yaml:"category"`
	Highlights     AmenityList `json:"highlights,omitempty" yaml:"highlights"`
	Rating         Number      `json:"rating" yaml:"rating"`
	ReviewCount    Number      `json:"review_count" yaml:"review_count"`
	PricePerPerson *Number     `json:"price_per_person,omitempty" yaml:"price_per_person"`
	Currency       string      `json:"currency,omitempty" yaml:"currency"`
	DurationDays   Number      `json:"duration_days,omitempty" yaml:"duration_days"`
	CreatedAt      *Timestamp  `json:"created_at,omitempty" yaml:"created_at"`
}

// TourPackage is a multi-day bundle sold per adult.
type TourPackage struct {
	ID            string      `json:"id" yaml:"id"`
	Title         string      `json:"title" yaml:"title"`
	Description   string      `json:"description,omitempty" yaml:"description"`
	Location      string      `json:"location,omitempty" yaml:"location"`
	City          string      `json:"city,omitempty" yaml:"city"`
	Country       string      `json:"country,omitempty" yaml:"country"`
	Category      string      `json:"category,omitempty" yaml:"category"`
	Inclusions    AmenityList `json:"inclusions,omitempty" yaml:"inclusions"`
	Rating        Number      `json:"rating" yaml:"rating"`
	ReviewCount   Number      `json:"review_count" yaml:"review_count"`
	PricePerAdult *Number     `json:"price_per_adult,omitempty" yaml:"price_per_adult"`
	Currency      string      `json:"currency,omitempty" yaml:"currency"`
	CreatedAt     *Timestamp  `json:"created_at,omitempty" yaml:"created_at"`
}

// Transport is a rentable vehicle or a scheduled transfer.
type Transport struct {
	ID           string      `json:"id" yaml:"id"`
	Title        string      `json:"title" yaml:"title"`
	Description  string      `json:"description,omitempty" yaml:"description"`
	FromLocation string      `json:"from_location,omitempty" yaml:"from_location"`
	ToLocation   string      `json:"to_location,omitempty" yaml:"to_location"`
	VehicleType  string      `json:"vehicle_type,omitempty" yaml:"vehicle_type"`
	Features     AmenityList `json:"features,omitempty" yaml:"features"`
	Rating       Number      `json:"rating" yaml:"rating"`
	ReviewCount  Number      `json:"review_count" yaml:"review_count"`
	PricePerDay  *Number     `json:"price_per_day,omitempty" yaml:"price_per_day"`
	Currency     string      `json:"currency,omitempty" yaml:"currency"`
	Seats        Number      `json:"seats,omitempty" yaml:"seats"`
	CreatedAt    *Timestamp  `json:"created_at,omitempty" yaml:"created_at"`
}
