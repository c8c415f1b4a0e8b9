package search

import (
	"context"
	"fmt"
	"strings"

	"github.com/typesense/typesense-go/v2/typesense/api"
	"github.com/typesense/typesense-go/v2/typesense/api/pointer"
	"github.com/zatekoja/businesstrust/backend/internal/domain/entities"
	"github.com/zatekoja/businesstrust/backend/internal/domain/repositories"
	tsclient "github.com/zatekoja/businesstrust/backend/internal/infrastructure/clients/typesense"
)

const (
	collectionName = "companies"
	// maxPerPage is the Typesense per_page ceiling
	maxPerPage = 250
)

// TypesenseAdapter implements company search using Typesense
type TypesenseAdapter struct {
	client *tsclient.Client
}

var _ repositories.CompanySearchRepository = (*TypesenseAdapter)(nil)

// NewTypesenseAdapter creates a new Typesense adapter
func NewTypesenseAdapter(client *tsclient.Client) *TypesenseAdapter {
	return &TypesenseAdapter{client: client}
}

// InitSchema ensures the companies collection exists
func (a *TypesenseAdapter) InitSchema(ctx context.Context) error {
	if _, err := a.client.Client().Collection(collectionName).Retrieve(ctx); err == nil {
		return nil
	}

	_, err := a.client.Client().Collections().Create(ctx, companySchema())
	if err != nil {
		return fmt.Errorf("failed to create typesense collection: %w", err)
	}
	return nil
}

// DropSchema deletes the companies collection and every document in it
func (a *TypesenseAdapter) DropSchema(ctx context.Context) error {
	if _, err := a.client.Client().Collection(collectionName).Delete(ctx); err != nil {
		return fmt.Errorf("failed to delete typesense collection: %w", err)
	}
	return nil
}

func companySchema() *api.CollectionSchema {
	return &api.CollectionSchema{
		Name: collectionName,
		Fields: []api.Field{
			{Name: "id", Type: "string"},
			{Name: "name", Type: "string", Sort: pointer.True(), Infix: pointer.True()},
			{Name: "category", Type: "string", Facet: pointer.True()},
			{Name: "city", Type: "string", Facet: pointer.True(), Optional: pointer.True()},
			{Name: "country", Type: "string", Facet: pointer.True(), Optional: pointer.True()},
			{Name: "description", Type: "string", Optional: pointer.True()},
			{Name: "average_rating", Type: "float"},
			{Name: "total_reviews", Type: "int32"},
			{Name: "reputation_score", Type: "float"},
			{Name: "is_active", Type: "bool"},
			{Name: "updated_at", Type: "int64"},
		},
		DefaultSortingField: pointer.String("average_rating"),
	}
}

// Index upserts a company document
func (a *TypesenseAdapter) Index(ctx context.Context, company *entities.Company) error {
	_, err := a.client.Client().Collection(collectionName).Documents().Upsert(ctx, companyDocument(company))
	if err != nil {
		return fmt.Errorf("failed to index company: %w", err)
	}
	return nil
}

func companyDocument(c *entities.Company) map[string]interface{} {
	return map[string]interface{}{
		"id":               c.ID,
		"name":             c.Name,
		"category":         c.Category,
		"city":             c.City,
		"country":          c.Country,
		"description":      c.Description,
		"average_rating":   c.AverageRating,
		"total_reviews":    c.TotalReviews,
		"reputation_score": c.ReputationScore,
		"is_active":        c.IsActive,
		"updated_at":       c.UpdatedAt.Unix(),
	}
}

// Delete removes a company from the index
func (a *TypesenseAdapter) Delete(ctx context.Context, id string) error {
	_, err := a.client.Client().Collection(collectionName).Document(id).Delete(ctx)
	if err != nil {
		return fmt.Errorf("failed to delete company from index: %w", err)
	}
	return nil
}

// Search matches filter.Query against company names and returns ids ordered
// by rating then name. Category, city and country are applied by the caller
// against the hydrated records.
func (a *TypesenseAdapter) Search(ctx context.Context, filter repositories.CompanyFilter) ([]string, error) {
	result, err := a.client.Client().Collection(collectionName).Documents().Search(ctx, searchParams(filter))
	if err != nil {
		return nil, fmt.Errorf("failed to search companies: %w", err)
	}
	if result.Hits == nil {
		return []string{}, nil
	}

	ids := make([]string, 0, len(*result.Hits))
	for _, hit := range *result.Hits {
		if hit.Document == nil {
			continue
		}
		if id, ok := (*hit.Document)["id"].(string); ok {
			ids = append(ids, id)
		}
	}
	return ids, nil
}

func searchParams(filter repositories.CompanyFilter) *api.SearchCollectionParams {
	q := strings.TrimSpace(filter.Query)
	if q == "" {
		q = "*"
	}
	perPage := filter.Limit
	if perPage <= 0 || perPage > maxPerPage {
		perPage = maxPerPage
	}

	return &api.SearchCollectionParams{
		Q:        pointer.String(q),
		QueryBy:  pointer.String("name"),
		Infix:    pointer.String("always"),
		FilterBy: pointer.String("is_active:=true"),
		SortBy:   pointer.String("average_rating:desc,name:asc"),
		Page:     pointer.Int(1),
		PerPage:  pointer.Int(perPage),
	}
}
