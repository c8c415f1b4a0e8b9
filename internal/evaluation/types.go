package evaluation

import (
	"time"

	"github.com/zatekoja/businesstrust/backend/internal/domain/repositories"
)

// QueryKind names which search field a golden query exercises.
type QueryKind string

const (
	KindName     QueryKind = "name"     // e.g., "bakery"
	KindCategory QueryKind = "category" // e.g., category=Food
	KindLocation QueryKind = "location" // e.g., city=Lagos
	KindMixed    QueryKind = "mixed"    // name plus one or more filters
)

// IsValid checks if the kind is one of the defined constants.
func (k QueryKind) IsValid() bool {
	switch k {
	case KindName, KindCategory, KindLocation, KindMixed:
		return true
	}
	return false
}

// GoldenQuery is a labeled search with the company names it should return.
type GoldenQuery struct {
	ID            string    `json:"id"`
	Kind          QueryKind `json:"kind"`
	Query         string    `json:"q"`
	Category      string    `json:"category"`
	City          string    `json:"city"`
	Country       string    `json:"country"`
	ExpectedNames []string  `json:"expected_names"`
	Difficulty    string    `json:"difficulty"` // easy, medium, hard
}

// Filter returns the search filter the golden query describes.
func (q GoldenQuery) Filter() repositories.CompanyFilter {
	return repositories.CompanyFilter{
		Query:    q.Query,
		Category: q.Category,
		City:     q.City,
		Country:  q.Country,
	}
}

// EvalResult holds the evaluation outcome for a single query.
type EvalResult struct {
	QueryID        string        `json:"query_id"`
	Kind           QueryKind     `json:"kind"`
	RecallAt10     float64       `json:"recall_at_10"`
	MRRAt10        float64       `json:"mrr_at_10"`
	ResultCount    int           `json:"result_count"`
	RetrievedNames []string      `json:"retrieved_names"`
	Latency        time.Duration `json:"latency"`
	Error          string        `json:"error,omitempty"`
}

// EvalSummary holds aggregate metrics across all golden queries.
type EvalSummary struct {
	TotalQueries    int                      `json:"total_queries"`
	FailedQueries   int                      `json:"failed_queries"`
	AvgRecallAt10   float64                  `json:"avg_recall_at_10"`
	AvgMRRAt10      float64                  `json:"avg_mrr_at_10"`
	AvgLatency      time.Duration            `json:"avg_latency"`
	QueriesWithHits int                      `json:"queries_with_hits"`
	ByKind          map[QueryKind]*KindStats `json:"by_kind"`
	Results         []EvalResult             `json:"results"`
}

// KindStats holds metrics grouped by query kind.
type KindStats struct {
	Count         int     `json:"count"`
	AvgRecallAt10 float64 `json:"avg_recall_at_10"`
	AvgMRRAt10    float64 `json:"avg_mrr_at_10"`
}
