package search

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/zatekoja/businesstrust/backend/internal/domain/entities"
	"github.com/zatekoja/businesstrust/backend/internal/domain/repositories"
)

func TestCompanyDocument(t *testing.T) {
	updated := time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC)
	doc := companyDocument(&entities.Company{
		ID:            "c-1",
		Name:          "Acme",
		Category:      "Tools",
		City:          "Lagos",
		AverageRating: 3.0,
		TotalReviews:  2,
		IsActive:      true,
		UpdatedAt:     updated,
	})

	assert.Equal(t, "c-1", doc["id"])
	assert.Equal(t, "Acme", doc["name"])
	assert.Equal(t, 3.0, doc["average_rating"])
	assert.Equal(t, 2, doc["total_reviews"])
	assert.Equal(t, true, doc["is_active"])
	assert.Equal(t, updated.Unix(), doc["updated_at"])
}

func TestSearchParams(t *testing.T) {
	params := searchParams(repositories.CompanyFilter{Query: "  acme ", Limit: 200})

	require.NotNil(t, params.Q)
	assert.Equal(t, "acme", *params.Q)
	assert.Equal(t, "name", *params.QueryBy)
	assert.Equal(t, "is_active:=true", *params.FilterBy)
	assert.Equal(t, "average_rating:desc,name:asc", *params.SortBy)
	assert.Equal(t, 200, *params.PerPage)
}

func TestSearchParams_Defaults(t *testing.T) {
	params := searchParams(repositories.CompanyFilter{})

	assert.Equal(t, "*", *params.Q)
	assert.Equal(t, maxPerPage, *params.PerPage)
}

func TestCompanySchema_SortableName(t *testing.T) {
	schema := companySchema()

	assert.Equal(t, collectionName, schema.Name)
	var found bool
	for _, f := range schema.Fields {
		if f.Name == "name" {
			found = true
			require.NotNil(t, f.Sort)
			assert.True(t, *f.Sort)
		}
	}
	assert.True(t, found)
}
