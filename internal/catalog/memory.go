// internal/catalog/memory.go
package catalog

import (
	"context"
	"fmt"
	"os"
	"sort"
	"sync"

	"gopkg.in/yaml.v3"

	"github.com/Merry-360-x/merry-moments-sub002/internal/models"
	"github.com/Merry-360-x/merry-moments-sub002/internal/search"
)

// Fixtures is the on-disk layout of a listing snapshot, keyed by table name.
type Fixtures struct {
	Properties   []models.Property    `yaml:"properties"`
	Tours        []models.Tour        `yaml:"tours"`
	TourPackages []models.TourPackage `yaml:"tour_packages"`
	Transport    []models.Transport   `yaml:"transport_vehicles"`
}

// Records flattens the fixtures in table order.
func (f *Fixtures) Records() []search.Record {
	out := make([]search.Record, 0, len(f.Properties)+len(f.Tours)+len(f.TourPackages)+len(f.Transport))
	for i := range f.Properties {
		out = append(out, search.FromProperty(&f.Properties[i]))
	}
	for i := range f.Tours {
		out = append(out, search.FromTour(&f.Tours[i]))
	}
	for i := range f.TourPackages {
		out = append(out, search.FromTourPackage(&f.TourPackages[i]))
	}
	for i := range f.Transport {
		out = append(out, search.FromTransport(&f.Transport[i]))
	}
	return out
}

// LoadFixtures reads a YAML listing snapshot.
func LoadFixtures(path string) (*Fixtures, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read fixtures: %w", err)
	}
	var f Fixtures
	if err := yaml.Unmarshal(data, &f); err != nil {
		return nil, fmt.Errorf("parse fixtures %s: %w", path, err)
	}
	return &f, nil
}

// MemorySource serves records held in memory. Used for local runs, the CLI
// and tests.
type MemorySource struct {
	mu     sync.RWMutex
	byKind map[search.Kind][]search.Record
}

func NewMemorySource(records ...search.Record) *MemorySource {
	s := &MemorySource{}
	s.Replace(records)
	return s
}

// Replace swaps the whole snapshot. Records of each kind are kept newest
// first, mirroring what the database sources return.
func (s *MemorySource) Replace(records []search.Record) {
	byKind := make(map[search.Kind][]search.Record, len(search.AllKinds))
	for _, r := range records {
		if !r.Valid() {
			continue
		}
		byKind[r.Kind] = append(byKind[r.Kind], r)
	}
	for _, recs := range byKind {
		sort.SliceStable(recs, func(i, j int) bool {
			return recs[i].CreatedAt().After(recs[j].CreatedAt())
		})
	}

	s.mu.Lock()
	s.byKind = byKind
	s.mu.Unlock()
}

func (s *MemorySource) Fetch(ctx context.Context, kind search.Kind, limit int) ([]search.Record, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	recs := s.byKind[kind]
	if limit > 0 && len(recs) > limit {
		recs = recs[:limit]
	}
	return append([]search.Record(nil), recs...), nil
}
