// internal/workers/marketplace/invalidate-search-cache/models.go
package invalidatesearchcache

// Input names the kinds whose cached candidates should be dropped. An empty
// list drops every kind.
type Input struct {
	Kinds []string `json:"kinds"`
}

type Output struct {
	RemovedKeys int64    `json:"removedKeys"`
	Kinds       []string `json:"kinds"`
}
