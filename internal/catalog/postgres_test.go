package catalog

import (
	"context"
	"database/sql/driver"
	"errors"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Merry-360-x/merry-moments-sub002/internal/search"
)

var propertyColumns = []string{
	"id", "title", "description", "location", "address", "category", "property_type",
	"amenities", "rating", "review_count", "price_per_night", "price_per_month", "currency",
	"bedrooms", "bathrooms", "max_guests", "monthly_only_listing", "available_for_monthly_rental",
	"created_at",
}

func TestPostgresSource_FetchProperties(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	created := time.Date(2026, 1, 2, 10, 0, 0, 0, time.UTC)
	mock.ExpectQuery(`FROM properties\s+WHERE is_published = true`).
		WithArgs(500).
		WillReturnRows(sqlmock.NewRows(propertyColumns).
			AddRow("p-1", "Kigali City Apartment", "", "Kigali", "", "Apartment", "",
				"{wifi,pool}", 4.8, int64(40), 80.0, nil, "USD",
				int64(2), int64(1), int64(4), false, true, created).
			AddRow("p-2", "Musanze Cabin", "Near the park", "", "Musanze road", "", "cabin",
				"{}", 3.0, int64(2), nil, 900.0, "RWF",
				int64(1), int64(1), int64(2), true, false, nil))

	records, err := NewPostgresSource(db).Fetch(context.Background(), search.KindProperty, 500)
	require.NoError(t, err)
	require.Len(t, records, 2)

	first := records[0]
	assert.Equal(t, search.KindProperty, first.Kind)
	require.NotNil(t, first.Property)
	assert.Equal(t, "p-1", first.Property.ID)
	assert.Equal(t, []string{"wifi", "pool"}, []string(first.Property.Amenities))
	assert.Equal(t, 4.8, first.Rating())
	assert.Equal(t, 40, first.ReviewCount())
	assert.Equal(t, 80.0, search.Price(first, search.MonthlyAll))
	assert.Nil(t, first.Property.PricePerMonth)
	assert.True(t, first.Property.AvailableForMonthlyRental)
	assert.Equal(t, created, first.CreatedAt())

	second := records[1]
	assert.Nil(t, second.Property.PricePerNight)
	assert.Equal(t, 900.0, search.Price(second, search.MonthlyAll))
	assert.Empty(t, second.Property.Amenities)
	assert.True(t, second.CreatedAt().IsZero())
	assert.Equal(t, "musanze road", second.Bundle().Location)
	assert.Equal(t, "cabin", second.Bundle().Category)

	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgresSource_FetchEachKind(t *testing.T) {
	tests := []struct {
		kind    search.Kind
		pattern string
		columns []string
		row     []driver.Value
	}{
		{
			kind:    search.KindTour,
			pattern: `FROM tours`,
			columns: []string{"id", "title", "description", "location", "destination", "category",
				"highlights", "rating", "review_count", "price_per_person", "currency", "duration_days", "created_at"},
			row: []driver.Value{"t-1", "Gorilla Trek", "", "", "Musanze", "Wildlife",
				"{guide,permit}", 4.9, int64(120), 1500.0, "USD", int64(1), nil},
		},
		{
			kind:    search.KindTourPackage,
			pattern: `FROM tour_packages\s+WHERE status = 'approved'`,
			columns: []string{"id", "title", "description", "location", "city", "country", "category",
				"inclusions", "rating", "review_count", "price_per_adult", "currency", "created_at"},
			row: []driver.Value{"k-1", "Akagera Weekend", "", "", "Kayonza", "Rwanda", "",
				"{meals}", 4.1, int64(8), 420.0, "USD", nil},
		},
		{
			kind:    search.KindTransport,
			pattern: `FROM transport_vehicles`,
			columns: []string{"id", "title", "description", "from_location", "to_location", "vehicle_type",
				"features", "rating", "review_count", "price_per_day", "currency", "seats", "created_at"},
			row: []driver.Value{"v-1", "Airport Shuttle", "", "", "Kigali Airport", "Minibus",
				"{ac}", 0.0, int64(0), 45.0, "USD", int64(12), nil},
		},
	}

	for _, tt := range tests {
		t.Run(string(tt.kind), func(t *testing.T) {
			db, mock, err := sqlmock.New()
			require.NoError(t, err)
			defer db.Close()

			mock.ExpectQuery(tt.pattern).
				WithArgs(10).
				WillReturnRows(sqlmock.NewRows(tt.columns).AddRow(tt.row...))

			records, err := NewPostgresSource(db).Fetch(context.Background(), tt.kind, 10)
			require.NoError(t, err)
			require.Len(t, records, 1)
			assert.Equal(t, tt.kind, records[0].Kind)
			assert.True(t, records[0].Valid())
			assert.Equal(t, tt.row[0], records[0].ID())
			assert.Positive(t, search.Price(records[0], search.MonthlyAll))
			assert.NoError(t, mock.ExpectationsWereMet())
		})
	}
}

func TestPostgresSource_QueryError(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	mock.ExpectQuery(`FROM tours`).WillReturnError(errors.New("connection refused"))

	_, err = NewPostgresSource(db).Fetch(context.Background(), search.KindTour, 500)

	require.Error(t, err)
	assert.Contains(t, err.Error(), "postgres")
	assert.Contains(t, err.Error(), "connection refused")
}

func TestPostgresSource_ScanError(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	mock.ExpectQuery(`FROM transport_vehicles`).
		WillReturnRows(sqlmock.NewRows([]string{"id"}).AddRow("v-1"))

	_, err = NewPostgresSource(db).Fetch(context.Background(), search.KindTransport, 500)

	require.Error(t, err)
	assert.Contains(t, err.Error(), "scan transport")
}

func TestPostgresSource_UnsupportedKind(t *testing.T) {
	db, _, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	_, err = NewPostgresSource(db).Fetch(context.Background(), search.Kind("boat"), 500)

	assert.ErrorIs(t, err, ErrUnsupportedKind)
}
