package search

import (
	"encoding/json"
	"unicode/utf8"

	"github.com/meilisearch/meilisearch-go"

	"estate-cms/internal/models"
)

// MinSuggestLen is the autocomplete gate: suggestions fire only when the
// input is strictly longer than this many characters. The gate counts runes,
// not bytes, so multibyte scripts are measured the same as ASCII.
const MinSuggestLen = 2

// DefaultSuggestLimit bounds the autocomplete result count.
const DefaultSuggestLimit = 5

// SuggestClient serves the lightweight autocomplete path from a Meilisearch
// index of published properties, independent of the full filter state.
type SuggestClient struct {
	client *meilisearch.Client
	index  string
}

func NewSuggestClient(host, apiKey string) *SuggestClient {
	client := meilisearch.NewClient(meilisearch.ClientConfig{
		Host:   host,
		APIKey: apiKey,
	})

	return &SuggestClient{
		client: client,
		index:  "properties",
	}
}

// InitIndex creates and configures the suggestion index.
func (s *SuggestClient) InitIndex() error {
	_, err := s.client.CreateIndex(&meilisearch.IndexConfig{
		Uid:        s.index,
		PrimaryKey: "id",
	})
	if err != nil && err.Error() != "index already exists" {
		return err
	}

	_, err = s.client.Index(s.index).UpdateSearchableAttributes(&[]string{
		"title",
		"location",
		"description",
	})
	if err != nil {
		return err
	}

	_, err = s.client.Index(s.index).UpdateSortableAttributes(&[]string{
		"created_at",
	})
	return err
}

// IndexProperties adds or replaces property documents in the index.
func (s *SuggestClient) IndexProperties(properties []models.Property) error {
	if len(properties) == 0 {
		return nil
	}
	_, err := s.client.Index(s.index).AddDocuments(properties)
	return err
}

// RemoveProperty drops a property from the index, used when one is
// unpublished or deleted.
func (s *SuggestClient) RemoveProperty(id string) error {
	_, err := s.client.Index(s.index).DeleteDocument(id)
	return err
}

// Suggestion is one autocomplete hit.
type Suggestion struct {
	ID       string `json:"id"`
	Title    string `json:"title"`
	Slug     string `json:"slug"`
	Location string `json:"location,omitempty"`
}

// Suggest returns up to limit suggestions for the query. Queries at or below
// the length gate return nothing without touching the index.
func (s *SuggestClient) Suggest(query string, limit int64) ([]Suggestion, error) {
	if utf8.RuneCountInString(query) <= MinSuggestLen {
		return nil, nil
	}
	if limit <= 0 {
		limit = DefaultSuggestLimit
	}

	res, err := s.client.Index(s.index).Search(query, &meilisearch.SearchRequest{
		Limit:                limit,
		AttributesToRetrieve: []string{"id", "title", "slug", "location"},
	})
	if err != nil {
		return nil, err
	}

	suggestions := make([]Suggestion, 0, len(res.Hits))
	for _, hit := range res.Hits {
		hitJSON, err := json.Marshal(hit)
		if err != nil {
			continue
		}
		var sg Suggestion
		if err := json.Unmarshal(hitJSON, &sg); err != nil {
			continue
		}
		suggestions = append(suggestions, sg)
	}

	return suggestions, nil
}
