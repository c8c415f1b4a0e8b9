package evaluation

import (
	"context"
	"time"

	"github.com/zatekoja/businesstrust/backend/internal/domain/entities"
	"github.com/zatekoja/businesstrust/backend/internal/domain/repositories"
)

const evalDepth = 10

// CompanySearcher is the search surface under evaluation.
type CompanySearcher interface {
	Search(ctx context.Context, filter repositories.CompanyFilter) ([]*entities.Company, error)
}

// Runner runs evaluation across a set of golden queries.
type Runner struct {
	searcher CompanySearcher
}

func NewRunner(searcher CompanySearcher) *Runner {
	return &Runner{searcher: searcher}
}

// Run executes every query and aggregates the metrics. A failed query counts
// toward the averages with zero scores.
func (r *Runner) Run(ctx context.Context, queries []GoldenQuery) (*EvalSummary, error) {
	summary := &EvalSummary{
		TotalQueries: len(queries),
		ByKind:       make(map[QueryKind]*KindStats),
		Results:      make([]EvalResult, 0, len(queries)),
	}

	for _, gq := range queries {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		start := time.Now()
		companies, err := r.searcher.Search(ctx, gq.Filter())
		result := EvalResult{QueryID: gq.ID, Kind: gq.Kind, Latency: time.Since(start)}

		if err != nil {
			result.Error = err.Error()
			summary.FailedQueries++
		} else {
			names := make([]string, len(companies))
			for i, c := range companies {
				names[i] = c.Name
			}
			result.RetrievedNames = names
			result.ResultCount = len(names)
			result.RecallAt10 = RecallAtK(gq.ExpectedNames, names, evalDepth)
			result.MRRAt10 = MRRAtK(gq.ExpectedNames, names, evalDepth)
		}

		r.updateSummary(summary, result)
	}

	r.finalizeSummary(summary)
	return summary, nil
}

func (r *Runner) updateSummary(s *EvalSummary, res EvalResult) {
	s.Results = append(s.Results, res)
	s.AvgRecallAt10 += res.RecallAt10
	s.AvgMRRAt10 += res.MRRAt10
	s.AvgLatency += res.Latency
	if res.ResultCount > 0 {
		s.QueriesWithHits++
	}

	ks, ok := s.ByKind[res.Kind]
	if !ok {
		ks = &KindStats{}
		s.ByKind[res.Kind] = ks
	}
	ks.Count++
	ks.AvgRecallAt10 += res.RecallAt10
	ks.AvgMRRAt10 += res.MRRAt10
}

func (r *Runner) finalizeSummary(s *EvalSummary) {
	if s.TotalQueries > 0 {
		n := float64(s.TotalQueries)
		s.AvgRecallAt10 /= n
		s.AvgMRRAt10 /= n
		s.AvgLatency /= time.Duration(s.TotalQueries)
	}

	for _, ks := range s.ByKind {
		if ks.Count > 0 {
			n := float64(ks.Count)
			ks.AvgRecallAt10 /= n
			ks.AvgMRRAt10 /= n
		}
	}
}
