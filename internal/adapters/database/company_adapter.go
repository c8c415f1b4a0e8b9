package database

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/doug-martin/goqu/v9"
	_ "github.com/doug-martin/goqu/v9/dialect/postgres"
	"github.com/doug-martin/goqu/v9/exp"
	"github.com/lib/pq"
	"github.com/zatekoja/businesstrust/backend/internal/domain/entities"
	"github.com/zatekoja/businesstrust/backend/internal/domain/repositories"
	"github.com/zatekoja/businesstrust/backend/internal/infrastructure/clients/postgres"
	apperrors "github.com/zatekoja/businesstrust/backend/pkg/errors"
)

var companyColumns = []interface{}{
	"id", "user_id", "name", "email", "category", "description", "phone",
	"address", "city", "country", "average_rating", "total_reviews",
	"reputation_score", "recommendation_score", "is_verified", "is_active",
	"created_at", "updated_at",
}

const companyColumnList = `id, user_id, name, email, category, description, phone,
	address, city, country, average_rating, total_reviews,
	reputation_score, recommendation_score, is_verified, is_active,
	created_at, updated_at`

// CompanyAdapter implements the CompanyRepository interface
type CompanyAdapter struct {
	client *postgres.Client
	db     *goqu.Database
}

// NewCompanyAdapter creates a new company adapter
func NewCompanyAdapter(client *postgres.Client) repositories.CompanyRepository {
	return &CompanyAdapter{
		client: client,
		db:     goqu.New("postgres", client.DB()),
	}
}

// Create creates a new company
func (a *CompanyAdapter) Create(ctx context.Context, company *entities.Company) error {
	record := goqu.Record{
		"id":                   company.ID,
		"user_id":              company.UserID,
		"name":                 company.Name,
		"email":                company.Email,
		"category":             company.Category,
		"description":          company.Description,
		"phone":                company.Phone,
		"address":              company.Address,
		"city":                 company.City,
		"country":              company.Country,
		"average_rating":       company.AverageRating,
		"total_reviews":        company.TotalReviews,
		"reputation_score":     company.ReputationScore,
		"recommendation_score": company.RecommendationScore,
		"is_verified":          company.IsVerified,
		"is_active":            company.IsActive,
		"created_at":           company.CreatedAt,
		"updated_at":           company.UpdatedAt,
	}

	query, args, err := a.db.Insert("companies").Prepared(true).Rows(record).ToSQL()
	if err != nil {
		return apperrors.NewInternalError("failed to build insert query", err)
	}

	_, err = a.client.DB().ExecContext(ctx, query, args...)
	if isUniqueViolation(err, "companies_user_id_key") {
		return apperrors.NewConflictError("This user already owns a company.")
	}
	if err != nil {
		return apperrors.NewInternalError("failed to create company", err)
	}

	return nil
}

// GetByID retrieves a company by ID, active or not
func (a *CompanyAdapter) GetByID(ctx context.Context, id string) (*entities.Company, error) {
	if !isUUID(id) {
		return nil, entities.ErrCompanyNotFound
	}
	query := `SELECT ` + companyColumnList + ` FROM companies WHERE id = $1`
	company, err := scanCompany(a.client.DB().QueryRowContext(ctx, query, id))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, entities.ErrCompanyNotFound
	}
	if err != nil {
		return nil, apperrors.NewInternalError(fmt.Sprintf("failed to get company %s", id), err)
	}
	return company, nil
}

// GetByIDs retrieves companies preserving the order of ids
func (a *CompanyAdapter) GetByIDs(ctx context.Context, ids []string) ([]*entities.Company, error) {
	valid := uuidsOnly(ids)
	if len(valid) == 0 {
		return []*entities.Company{}, nil
	}

	query := `SELECT ` + companyColumnList + ` FROM companies WHERE id = ANY($1)`
	found, err := a.queryCompanies(ctx, query, pq.Array(valid))
	if err != nil {
		return nil, err
	}

	byID := make(map[string]*entities.Company, len(found))
	for _, c := range found {
		byID[c.ID] = c
	}
	ordered := make([]*entities.Company, 0, len(found))
	for _, id := range ids {
		if c, ok := byID[id]; ok {
			ordered = append(ordered, c)
		}
	}
	return ordered, nil
}

// GetByOwner retrieves the company owned by a user
func (a *CompanyAdapter) GetByOwner(ctx context.Context, userID string) (*entities.Company, error) {
	if !isUUID(userID) {
		return nil, entities.ErrCompanyNotFound
	}
	query := `SELECT ` + companyColumnList + ` FROM companies WHERE user_id = $1`
	company, err := scanCompany(a.client.DB().QueryRowContext(ctx, query, userID))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, entities.ErrCompanyNotFound
	}
	if err != nil {
		return nil, apperrors.NewInternalError("failed to get company by owner", err)
	}
	return company, nil
}

// Update persists the editable profile fields. Derived fields are untouched.
func (a *CompanyAdapter) Update(ctx context.Context, company *entities.Company) error {
	company.UpdatedAt = time.Now().UTC()

	query, args, err := a.db.Update("companies").Prepared(true).
		Set(goqu.Record{
			"name":        company.Name,
			"email":       company.Email,
			"category":    company.Category,
			"description": company.Description,
			"phone":       company.Phone,
			"address":     company.Address,
			"city":        company.City,
			"country":     company.Country,
			"updated_at":  company.UpdatedAt,
		}).
		Where(goqu.Ex{"id": company.ID}).
		ToSQL()
	if err != nil {
		return apperrors.NewInternalError("failed to build update query", err)
	}

	result, err := a.client.DB().ExecContext(ctx, query, args...)
	if err != nil {
		return apperrors.NewInternalError("failed to update company", err)
	}
	rows, err := result.RowsAffected()
	if err != nil {
		return apperrors.NewInternalError("failed to get rows affected", err)
	}
	if rows == 0 {
		return entities.ErrCompanyNotFound
	}
	return nil
}

// List returns every active company
func (a *CompanyAdapter) List(ctx context.Context) ([]*entities.Company, error) {
	ds := a.activeCompanies().Order(goqu.I("average_rating").Desc(), goqu.I("name").Asc())
	return a.queryDataset(ctx, ds)
}

// Search filters active companies by case-insensitive substring matches
func (a *CompanyAdapter) Search(ctx context.Context, filter repositories.CompanyFilter) ([]*entities.Company, error) {
	ds := applyCompanyFilter(a.activeCompanies(), filter).
		Order(goqu.I("average_rating").Desc(), goqu.I("name").Asc())
	if filter.Limit > 0 {
		ds = ds.Limit(uint(filter.Limit))
	}
	return a.queryDataset(ctx, ds)
}

// Recommendations orders active companies by reputation then rating
func (a *CompanyAdapter) Recommendations(ctx context.Context, filter repositories.CompanyFilter) ([]*entities.Company, error) {
	ds := applyCompanyFilter(a.activeCompanies(), filter).
		Order(goqu.I("reputation_score").Desc(), goqu.I("average_rating").Desc(), goqu.I("name").Asc())
	if filter.Limit > 0 {
		ds = ds.Limit(uint(filter.Limit))
	}
	return a.queryDataset(ctx, ds)
}

// Categories returns the distinct non-empty categories of active companies
func (a *CompanyAdapter) Categories(ctx context.Context) ([]string, error) {
	query := `
		SELECT DISTINCT category
		FROM companies
		WHERE is_active = true AND category <> ''
		ORDER BY category
	`
	rows, err := a.client.DB().QueryContext(ctx, query)
	if err != nil {
		return nil, apperrors.NewInternalError("failed to list categories", err)
	}
	defer rows.Close()

	categories := []string{}
	for rows.Next() {
		var category string
		if err := rows.Scan(&category); err != nil {
			return nil, apperrors.NewInternalError("failed to scan category", err)
		}
		categories = append(categories, category)
	}
	if err := rows.Err(); err != nil {
		return nil, apperrors.NewInternalError("failed to iterate categories", err)
	}
	return categories, nil
}

// TopByCategory returns the best rated active companies of a category
func (a *CompanyAdapter) TopByCategory(ctx context.Context, category string, limit int) ([]*entities.Company, error) {
	ds := a.activeCompanies().
		Where(goqu.Ex{"category": category}).
		Order(goqu.I("average_rating").Desc(), goqu.I("total_reviews").Desc(), goqu.I("name").Asc())
	if limit > 0 {
		ds = ds.Limit(uint(limit))
	}
	return a.queryDataset(ctx, ds)
}

// RefreshAggregate recomputes the rating aggregate from the full rating set.
// The company row is locked first, so the aggregate is read after every
// refresh that got the lock earlier has committed and concurrent refreshes
// converge on the committed rating set.
func (a *CompanyAdapter) RefreshAggregate(ctx context.Context, companyID string) (*entities.RatingAggregate, error) {
	if !isUUID(companyID) {
		return nil, entities.ErrCompanyNotFound
	}

	tx, err := a.client.DB().BeginTx(ctx, nil)
	if err != nil {
		return nil, apperrors.NewInternalError("failed to begin aggregate refresh", err)
	}
	defer func() { _ = tx.Rollback() }()

	var locked string
	err = tx.QueryRowContext(ctx, `SELECT id FROM companies WHERE id = $1 FOR UPDATE`, companyID).Scan(&locked)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, entities.ErrCompanyNotFound
	}
	if err != nil {
		return nil, apperrors.NewInternalError("failed to lock company", err)
	}

	query := `
		UPDATE companies AS c
		SET average_rating = agg.avg_rating,
			total_reviews = agg.review_count,
			updated_at = $2
		FROM (
			SELECT COALESCE(AVG(rating), 0) AS avg_rating, COUNT(*) AS review_count
			FROM ratings
			WHERE company_id = $1
		) AS agg
		WHERE c.id = $1
		RETURNING c.average_rating, c.total_reviews
	`

	agg := &entities.RatingAggregate{CompanyID: companyID}
	err = tx.QueryRowContext(ctx, query, companyID, time.Now().UTC()).
		Scan(&agg.AverageRating, &agg.TotalReviews)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, entities.ErrCompanyNotFound
	}
	if err != nil {
		return nil, apperrors.NewInternalError("failed to refresh rating aggregate", err)
	}

	if err := tx.Commit(); err != nil {
		return nil, apperrors.NewInternalError("failed to commit aggregate refresh", err)
	}
	return agg, nil
}

// ResetScores zeroes reputation and recommendation scores
func (a *CompanyAdapter) ResetScores(ctx context.Context) (int64, error) {
	query := `
		UPDATE companies
		SET reputation_score = 0, recommendation_score = 0, updated_at = $1
		WHERE reputation_score <> 0 OR recommendation_score <> 0
	`
	result, err := a.client.DB().ExecContext(ctx, query, time.Now().UTC())
	if err != nil {
		return 0, apperrors.NewInternalError("failed to reset scores", err)
	}
	n, err := result.RowsAffected()
	if err != nil {
		return 0, apperrors.NewInternalError("failed to get rows affected", err)
	}
	return n, nil
}

// ListIDs returns every company id
func (a *CompanyAdapter) ListIDs(ctx context.Context) ([]string, error) {
	rows, err := a.client.DB().QueryContext(ctx, `SELECT id FROM companies ORDER BY created_at`)
	if err != nil {
		return nil, apperrors.NewInternalError("failed to list company ids", err)
	}
	defer rows.Close()

	ids := []string{}
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, apperrors.NewInternalError("failed to scan company id", err)
		}
		ids = append(ids, id)
	}
	if err := rows.Err(); err != nil {
		return nil, apperrors.NewInternalError("failed to iterate company ids", err)
	}
	return ids, nil
}

func (a *CompanyAdapter) activeCompanies() *goqu.SelectDataset {
	return a.db.Select(companyColumns...).
		From("companies").
		Prepared(true).
		Where(goqu.Ex{"is_active": true})
}

func applyCompanyFilter(ds *goqu.SelectDataset, filter repositories.CompanyFilter) *goqu.SelectDataset {
	fields := []struct{ column, value string }{
		{"name", filter.Query},
		{"category", filter.Category},
		{"city", filter.City},
		{"country", filter.Country},
	}
	for _, f := range fields {
		if cond := containsFold(f.column, f.value); cond != nil {
			ds = ds.Where(cond)
		}
	}
	return ds
}

// containsFold builds a case-insensitive substring condition. LIKE
// wildcards in value match literally.
func containsFold(column, value string) exp.Expression {
	value = strings.TrimSpace(value)
	if value == "" {
		return nil
	}
	return goqu.C(column).ILike("%" + escapeLike(value) + "%")
}

var likeEscaper = strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)

func escapeLike(s string) string {
	return likeEscaper.Replace(s)
}

func (a *CompanyAdapter) queryDataset(ctx context.Context, ds *goqu.SelectDataset) ([]*entities.Company, error) {
	query, args, err := ds.ToSQL()
	if err != nil {
		return nil, apperrors.NewInternalError("failed to build company query", err)
	}
	return a.queryCompanies(ctx, query, args...)
}

func (a *CompanyAdapter) queryCompanies(ctx context.Context, query string, args ...interface{}) ([]*entities.Company, error) {
	rows, err := a.client.DB().QueryContext(ctx, query, args...)
	if err != nil {
		return nil, apperrors.NewInternalError("failed to query companies", err)
	}
	defer rows.Close()

	companies := []*entities.Company{}
	for rows.Next() {
		company, err := scanCompany(rows)
		if err != nil {
			return nil, apperrors.NewInternalError("failed to scan company", err)
		}
		companies = append(companies, company)
	}
	if err := rows.Err(); err != nil {
		return nil, apperrors.NewInternalError("failed to iterate companies", err)
	}
	return companies, nil
}

func scanCompany(row rowScanner) (*entities.Company, error) {
	c := &entities.Company{}
	err := row.Scan(
		&c.ID,
		&c.UserID,
		&c.Name,
		&c.Email,
		&c.Category,
		&c.Description,
		&c.Phone,
		&c.Address,
		&c.City,
		&c.Country,
		&c.AverageRating,
		&c.TotalReviews,
		&c.ReputationScore,
		&c.RecommendationScore,
		&c.IsVerified,
		&c.IsActive,
		&c.CreatedAt,
		&c.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return c, nil
}
