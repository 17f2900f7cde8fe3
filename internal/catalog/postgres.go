// internal/catalog/postgres.go
package catalog

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/lib/pq"

	"github.com/Merry-360-x/merry-moments-sub002/internal/models"
	"github.com/Merry-360-x/merry-moments-sub002/internal/search"
)

// rowScanner is satisfied by *sql.Rows.
type rowScanner interface {
	Scan(dest ...interface{}) error
}

type kindQuery struct {
	sql  string
	scan func(rowScanner) (search.Record, error)
}

// kindQueries holds one listing query per kind. Every query takes the row
// limit as $1 and returns the newest published rows first.
var kindQueries = map[search.Kind]kindQuery{
	search.KindProperty: {
		sql: `
		SELECT id, COALESCE(title, ''), COALESCE(description, ''), COALESCE(location, ''),
		       COALESCE(address, ''), COALESCE(category, ''), COALESCE(property_type, ''),
		       COALESCE(amenities, '{}'), COALESCE(rating, 0), COALESCE(review_count, 0),
		       price_per_night, price_per_month, COALESCE(currency, ''),
		       COALESCE(bedrooms, 0), COALESCE(bathrooms, 0), COALESCE(max_guests, 0),
		       COALESCE(monthly_only_listing, false), COALESCE(available_for_monthly_rental, false),
		       created_at
		FROM properties
		WHERE is_published = true
		ORDER BY created_at DESC
		LIMIT $1`,
		scan: scanProperty,
	},
	search.KindTour: {
		sql: `
		SELECT id, COALESCE(title, ''), COALESCE(description, ''), COALESCE(location, ''),
		       COALESCE(destination, ''), COALESCE(category, ''), COALESCE(highlights, '{}'),
		       COALESCE(rating, 0), COALESCE(review_count, 0), price_per_person,
		       COALESCE(currency, ''), COALESCE(duration_days, 0), created_at
		FROM tours
		WHERE is_published = true
		ORDER BY created_at DESC
		LIMIT $1`,
		scan: scanTour,
	},
	search.KindTourPackage: {
		sql: `
		SELECT id, COALESCE(title, ''), COALESCE(description, ''), COALESCE(location, ''),
		       COALESCE(city, ''), COALESCE(country, ''), COALESCE(category, ''),
		       COALESCE(inclusions, '{}'), COALESCE(rating, 0), COALESCE(review_count, 0),
		       price_per_adult, COALESCE(currency, ''), created_at
		FROM tour_packages
		WHERE status = 'approved'
		ORDER BY created_at DESC
		LIMIT $1`,
		scan: scanTourPackage,
	},
	search.KindTransport: {
		sql: `
		SELECT id, COALESCE(title, ''), COALESCE(description, ''), COALESCE(from_location, ''),
		       COALESCE(to_location, ''), COALESCE(vehicle_type, ''), COALESCE(features, '{}'),
		       COALESCE(rating, 0), COALESCE(review_count, 0), price_per_day,
		       COALESCE(currency, ''), COALESCE(seats, 0), created_at
		FROM transport_vehicles
		WHERE is_published = true
		ORDER BY created_at DESC
		LIMIT $1`,
		scan: scanTransport,
	},
}

// PostgresSource reads listings straight from the marketplace tables.
type PostgresSource struct {
	db *sql.DB
}

func NewPostgresSource(db *sql.DB) *PostgresSource {
	return &PostgresSource{db: db}
}

func (s *PostgresSource) Fetch(ctx context.Context, kind search.Kind, limit int) ([]search.Record, error) {
	q, ok := kindQueries[kind]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrUnsupportedKind, kind)
	}

	rows, err := s.db.QueryContext(ctx, q.sql, limit)
	if err != nil {
		return nil, fmt.Errorf("postgres: query %s: %w", kind, err)
	}
	defer rows.Close()

	records := make([]search.Record, 0, limit)
	for rows.Next() {
		rec, err := q.scan(rows)
		if err != nil {
			return nil, fmt.Errorf("postgres: scan %s: %w", kind, err)
		}
		records = append(records, rec)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("postgres: iterate %s: %w", kind, err)
	}
	return records, nil
}

func scanProperty(row rowScanner) (search.Record, error) {
	var (
		p                      models.Property
		amenities              []string
		rating, reviews        float64
		bedrooms, baths, guest float64
		night, month           sql.NullFloat64
		created                sql.NullTime
	)
	err := row.Scan(
		&p.ID, &p.Title, &p.Description, &p.Location,
		&p.Address, &p.Category, &p.PropertyType,
		pq.Array(&amenities), &rating, &reviews,
		&night, &month, &p.Currency,
		&bedrooms, &baths, &guest,
		&p.MonthlyOnlyListing, &p.AvailableForMonthlyRental,
		&created,
	)
	if err != nil {
		return search.Record{}, err
	}
	p.Amenities = amenities
	p.Rating, p.ReviewCount = models.Number(rating), models.Number(reviews)
	p.Bedrooms, p.Bathrooms, p.MaxGuests = models.Number(bedrooms), models.Number(baths), models.Number(guest)
	p.PricePerNight, p.PricePerMonth = nullNumber(night), nullNumber(month)
	p.CreatedAt = nullTime(created)
	return search.FromProperty(&p), nil
}

func scanTour(row rowScanner) (search.Record, error) {
	var (
		t                         models.Tour
		highlights                []string
		rating, reviews, duration float64
		price                     sql.NullFloat64
		created                   sql.NullTime
	)
	err := row.Scan(
		&t.ID, &t.Title, &t.Description, &t.Location,
		&t.Destination, &t.Category, pq.Array(&highlights),
		&rating, &reviews, &price,
		&t.Currency, &duration, &created,
	)
	if err != nil {
		return search.Record{}, err
	}
	t.Highlights = highlights
	t.Rating, t.ReviewCount, t.DurationDays = models.Number(rating), models.Number(reviews), models.Number(duration)
	t.PricePerPerson = nullNumber(price)
	t.CreatedAt = nullTime(created)
	return search.FromTour(&t), nil
}

func scanTourPackage(row rowScanner) (search.Record, error) {
	var (
		p               models.TourPackage
		inclusions      []string
		rating, reviews float64
		price           sql.NullFloat64
		created         sql.NullTime
	)
	err := row.Scan(
		&p.ID, &p.Title, &p.Description, &p.Location,
		&p.City, &p.Country, &p.Category,
		pq.Array(&inclusions), &rating, &reviews,
		&price, &p.Currency, &created,
	)
	if err != nil {
		return search.Record{}, err
	}
	p.Inclusions = inclusions
	p.Rating, p.ReviewCount = models.Number(rating), models.Number(reviews)
	p.PricePerAdult = nullNumber(price)
	p.CreatedAt = nullTime(created)
	return search.FromTourPackage(&p), nil
}

func scanTransport(row rowScanner) (search.Record, error) {
	var (
		t                      models.Transport
		features               []string
		rating, reviews, seats float64
		price                  sql.NullFloat64
		created                sql.NullTime
	)
	err := row.Scan(
		&t.ID, &t.Title, &t.Description, &t.FromLocation,
		&t.ToLocation, &t.VehicleType, pq.Array(&features),
		&rating, &reviews, &price,
		&t.Currency, &seats, &created,
	)
	if err != nil {
		return search.Record{}, err
	}
	t.Features = features
	t.Rating, t.ReviewCount, t.Seats = models.Number(rating), models.Number(reviews), models.Number(seats)
	t.PricePerDay = nullNumber(price)
	t.CreatedAt = nullTime(created)
	return search.FromTransport(&t), nil
}

func nullNumber(v sql.NullFloat64) *models.Number {
	if !v.Valid {
		return nil
	}
	return models.NumberPtr(v.Float64)
}

func nullTime(v sql.NullTime) *models.Timestamp {
	if !v.Valid {
		return nil
	}
	return models.NewTimestamp(v.Time)
}
