// internal/catalog/elasticsearch.go
package catalog

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"

	"github.com/elastic/go-elasticsearch/v8"
	"github.com/elastic/go-elasticsearch/v8/esapi"

	"github.com/Merry-360-x/merry-moments-sub002/internal/common/logger"
	"github.com/Merry-360-x/merry-moments-sub002/internal/common/metrics"
	"github.com/Merry-360-x/merry-moments-sub002/internal/models"
	"github.com/Merry-360-x/merry-moments-sub002/internal/search"
)

// DefaultIndices maps each kind to the index it is mirrored into.
var DefaultIndices = map[search.Kind]string{
	search.KindProperty:    "properties",
	search.KindTour:        "tours",
	search.KindTourPackage: "tour_packages",
	search.KindTransport:   "transport_vehicles",
}

// ElasticsearchSource reads listings from the search mirror. It only pulls
// the newest published documents; ranking stays in search.Engine.
type ElasticsearchSource struct {
	client  *elasticsearch.Client
	indices map[search.Kind]string
	logger  logger.Logger
}

func NewElasticsearchSource(client *elasticsearch.Client, indices map[search.Kind]string, log logger.Logger) *ElasticsearchSource {
	if log == nil {
		log = logger.NewNoOpLogger()
	}
	merged := make(map[search.Kind]string, len(DefaultIndices))
	for k, v := range DefaultIndices {
		merged[k] = v
	}
	for k, v := range indices {
		if v != "" {
			merged[k] = v
		}
	}
	return &ElasticsearchSource{
		client:  client,
		indices: merged,
		logger:  log.WithFields(map[string]interface{}{"component": "elasticsearch-source"}),
	}
}

type esSearchResponse struct {
	Hits struct {
		Hits []struct {
			ID     string          `json:"_id"`
			Source json.RawMessage `json:"_source"`
		} `json:"hits"`
	} `json:"hits"`
}

func (s *ElasticsearchSource) Fetch(ctx context.Context, kind search.Kind, limit int) ([]search.Record, error) {
	index, ok := s.indices[kind]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrUnsupportedKind, kind)
	}

	body, err := json.Marshal(fetchQuery(kind, limit))
	if err != nil {
		return nil, fmt.Errorf("elasticsearch: build query: %w", err)
	}

	req := esapi.SearchRequest{
		Index: []string{index},
		Body:  bytes.NewReader(body),
	}
	res, err := req.Do(ctx, s.client)
	if err != nil {
		return nil, fmt.Errorf("elasticsearch: search %s: %w", index, err)
	}
	defer res.Body.Close()

	if res.IsError() {
		return nil, fmt.Errorf("elasticsearch: search %s failed: %s", index, res.String())
	}

	var parsed esSearchResponse
	if err := json.NewDecoder(res.Body).Decode(&parsed); err != nil {
		return nil, fmt.Errorf("elasticsearch: decode %s: %w", index, err)
	}

	// A document that does not decode is dropped on its own; the rest of the
	// kind is still served.
	records := make([]search.Record, 0, len(parsed.Hits.Hits))
	for _, hit := range parsed.Hits.Hits {
		rec, err := decodeDocument(kind, hit.ID, hit.Source)
		if err != nil {
			metrics.SourceRecordsSkipped.WithLabelValues("elasticsearch", string(kind)).Inc()
			s.logger.Warn("skipping undecodable document", map[string]interface{}{
				"index": index,
				"docId": hit.ID,
				"error": err.Error(),
			})
			continue
		}
		records = append(records, rec)
	}
	return records, nil
}

func fetchQuery(kind search.Kind, limit int) map[string]interface{} {
	published := map[string]interface{}{"term": map[string]interface{}{"is_published": true}}
	if kind == search.KindTourPackage {
		published = map[string]interface{}{"term": map[string]interface{}{"status": "approved"}}
	}
	return map[string]interface{}{
		"size": limit,
		"query": map[string]interface{}{
			"bool": map[string]interface{}{
				"filter": []interface{}{published},
			},
		},
		"sort": []interface{}{
			map[string]interface{}{
				"created_at": map[string]interface{}{"order": "desc", "unmapped_type": "date"},
			},
		},
	}
}

// decodeDocument unmarshals a _source document into the model for kind,
// taking the document _id when the body carries no id of its own.
func decodeDocument(kind search.Kind, id string, source json.RawMessage) (search.Record, error) {
	switch kind {
	case search.KindProperty:
		var p models.Property
		if err := json.Unmarshal(source, &p); err != nil {
			return search.Record{}, err
		}
		if p.ID == "" {
			p.ID = id
		}
		return search.FromProperty(&p), nil
	case search.KindTour:
		var t models.Tour
		if err := json.Unmarshal(source, &t); err != nil {
			return search.Record{}, err
		}
		if t.ID == "" {
			t.ID = id
		}
		return search.FromTour(&t), nil
	case search.KindTourPackage:
		var p models.TourPackage
		if err := json.Unmarshal(source, &p); err != nil {
			return search.Record{}, err
		}
		if p.ID == "" {
			p.ID = id
		}
		return search.FromTourPackage(&p), nil
	case search.KindTransport:
		var t models.Transport
		if err := json.Unmarshal(source, &t); err != nil {
			return search.Record{}, err
		}
		if t.ID == "" {
			t.ID = id
		}
		return search.FromTransport(&t), nil
	}
	return search.Record{}, fmt.Errorf("%w: %s", ErrUnsupportedKind, kind)
}
