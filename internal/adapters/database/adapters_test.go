package database

import (
	"context"
	"database/sql"
	"regexp"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/doug-martin/goqu/v9"
	"github.com/lib/pq"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/zatekoja/businesstrust/backend/internal/domain/entities"
	"github.com/zatekoja/businesstrust/backend/internal/domain/repositories"
	"github.com/zatekoja/businesstrust/backend/internal/infrastructure/clients/postgres"
	apperrors "github.com/zatekoja/businesstrust/backend/pkg/errors"
)

const (
	companyID  = "6f1c2a4e-8d3b-4c1a-9e2f-0a1b2c3d4e5f"
	companyID2 = "9a8b7c6d-5e4f-4a3b-8c2d-1e0f9a8b7c6d"
	missingID  = "00000000-0000-4000-8000-000000000000"
	userID     = "3c2b1a09-8f7e-4d6c-9b5a-4f3e2d1c0b9a"
	userID2    = "4d3c2b1a-0f9e-4e7d-8c6b-5a4f3e2d1c0b"
)

func newMock(t *testing.T) (*postgres.Client, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	return postgres.NewClientFromDB(db), mock
}

var companyRowColumns = []string{
	"id", "user_id", "name", "email", "category", "description", "phone",
	"address", "city", "country", "average_rating", "total_reviews",
	"reputation_score", "recommendation_score", "is_verified", "is_active",
	"created_at", "updated_at",
}

func companyRow(rows *sqlmock.Rows, id, name string, avg float64, reviews int) *sqlmock.Rows {
	now := time.Now()
	return rows.AddRow(id, "owner-"+id, name, "", "Tools", "", "", "", "Lagos", "NG", avg, reviews, 0.0, 0.0, false, true, now, now)
}

func TestUserAdapter_CreateDuplicateEmail(t *testing.T) {
	client, mock := newMock(t)
	adapter := NewUserAdapter(client)

	mock.ExpectExec(regexp.QuoteMeta("INSERT INTO users")).
		WillReturnError(&pq.Error{Code: "23505", Constraint: "users_email_key"})

	err := adapter.Create(context.Background(), &entities.User{ID: "u-1", Email: "acme@example.com", UserType: entities.UserTypeCompany})

	assert.ErrorIs(t, err, entities.ErrDuplicateEmail)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestUserAdapter_CreateStorageError(t *testing.T) {
	client, mock := newMock(t)
	adapter := NewUserAdapter(client)

	mock.ExpectExec(regexp.QuoteMeta("INSERT INTO users")).WillReturnError(sql.ErrConnDone)

	err := adapter.Create(context.Background(), &entities.User{ID: "u-1"})

	assert.True(t, apperrors.IsType(err, apperrors.ErrorTypeInternal))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestUserAdapter_GetByEmail(t *testing.T) {
	client, mock := newMock(t)
	adapter := NewUserAdapter(client)
	now := time.Now()

	mock.ExpectQuery(regexp.QuoteMeta("FROM users WHERE email = $1")).
		WithArgs("bob@example.com").
		WillReturnRows(sqlmock.NewRows([]string{"id", "email", "password_hash", "user_type", "first_name", "last_name", "created_at", "updated_at"}).
			AddRow("u-2", "bob@example.com", "hash", "customer", "Bob", "B", now, now))

	user, err := adapter.GetByEmail(context.Background(), "  Bob@Example.com ")

	require.NoError(t, err)
	assert.Equal(t, entities.UserTypeCustomer, user.UserType)
	assert.Equal(t, "Bob", user.FirstName)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestUserAdapter_GetByEmailUnknownTypeFailsClosed(t *testing.T) {
	client, mock := newMock(t)
	adapter := NewUserAdapter(client)
	now := time.Now()

	mock.ExpectQuery(regexp.QuoteMeta("FROM users WHERE email = $1")).
		WillReturnRows(sqlmock.NewRows([]string{"id", "email", "password_hash", "user_type", "first_name", "last_name", "created_at", "updated_at"}).
			AddRow("u-2", "bob@example.com", "hash", "admin", "", "", now, now))

	_, err := adapter.GetByEmail(context.Background(), "bob@example.com")

	assert.True(t, apperrors.IsType(err, apperrors.ErrorTypeInternal))
}

func TestUserAdapter_GetByIDNotFound(t *testing.T) {
	client, mock := newMock(t)
	adapter := NewUserAdapter(client)

	mock.ExpectQuery(regexp.QuoteMeta("FROM users WHERE id = $1")).WithArgs(missingID).WillReturnError(sql.ErrNoRows)

	_, err := adapter.GetByID(context.Background(), missingID)
	assert.ErrorIs(t, err, entities.ErrUserNotFound)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestTokenAdapter_Lifecycle(t *testing.T) {
	client, mock := newMock(t)
	adapter := NewTokenAdapter(client)
	ctx := context.Background()
	now := time.Now()

	mock.ExpectExec(regexp.QuoteMeta("INSERT INTO tokens")).
		WithArgs("digest", "u-1", entities.UserTypeCustomer, now, now.Add(time.Hour)).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectQuery(regexp.QuoteMeta("FROM tokens")).
		WithArgs("digest").
		WillReturnRows(sqlmock.NewRows([]string{"token_hash", "user_id", "user_type", "created_at", "expires_at"}).
			AddRow("digest", "u-1", "customer", now, now.Add(time.Hour)))
	mock.ExpectExec(regexp.QuoteMeta("DELETE FROM tokens WHERE token_hash = $1")).
		WithArgs("digest").
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectQuery(regexp.QuoteMeta("FROM tokens")).
		WithArgs("digest").
		WillReturnError(sql.ErrNoRows)

	require.NoError(t, adapter.Create(ctx, &entities.Token{TokenHash: "digest", UserID: "u-1", UserType: entities.UserTypeCustomer, CreatedAt: now, ExpiresAt: now.Add(time.Hour)}))

	token, err := adapter.GetByHash(ctx, "digest")
	require.NoError(t, err)
	assert.Equal(t, "u-1", token.UserID)

	require.NoError(t, adapter.DeleteByHash(ctx, "digest"))

	_, err = adapter.GetByHash(ctx, "digest")
	assert.ErrorIs(t, err, entities.ErrTokenNotFound)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestCompanyAdapter_RefreshAggregate(t *testing.T) {
	client, mock := newMock(t)
	adapter := NewCompanyAdapter(client)

	mock.ExpectBegin()
	mock.ExpectQuery(regexp.QuoteMeta("SELECT id FROM companies WHERE id = $1 FOR UPDATE")).
		WithArgs(companyID).
		WillReturnRows(sqlmock.NewRows([]string{"id"}).AddRow(companyID))
	mock.ExpectQuery(`UPDATE companies AS c\s+SET average_rating = agg.avg_rating`).
		WithArgs(companyID, sqlmock.AnyArg()).
		WillReturnRows(sqlmock.NewRows([]string{"average_rating", "total_reviews"}).AddRow(3.0, 2))
	mock.ExpectCommit()

	agg, err := adapter.RefreshAggregate(context.Background(), companyID)

	require.NoError(t, err)
	assert.Equal(t, 3.0, agg.AverageRating)
	assert.Equal(t, 2, agg.TotalReviews)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestCompanyAdapter_RefreshAggregateMissingCompany(t *testing.T) {
	client, mock := newMock(t)
	adapter := NewCompanyAdapter(client)

	mock.ExpectBegin()
	mock.ExpectQuery(regexp.QuoteMeta("FOR UPDATE")).WithArgs(missingID).WillReturnError(sql.ErrNoRows)
	mock.ExpectRollback()

	_, err := adapter.RefreshAggregate(context.Background(), missingID)
	assert.ErrorIs(t, err, entities.ErrCompanyNotFound)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestCompanyAdapter_RefreshAggregateRollsBackOnFailure(t *testing.T) {
	client, mock := newMock(t)
	adapter := NewCompanyAdapter(client)

	mock.ExpectBegin()
	mock.ExpectQuery(regexp.QuoteMeta("FOR UPDATE")).
		WillReturnRows(sqlmock.NewRows([]string{"id"}).AddRow(companyID))
	mock.ExpectQuery(`UPDATE companies AS c`).WillReturnError(sql.ErrConnDone)
	mock.ExpectRollback()

	_, err := adapter.RefreshAggregate(context.Background(), companyID)
	assert.True(t, apperrors.IsType(err, apperrors.ErrorTypeInternal))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestAdapters_MalformedIDsAreNotFound(t *testing.T) {
	client, mock := newMock(t)
	ctx := context.Background()
	companies := NewCompanyAdapter(client)
	users := NewUserAdapter(client)
	ratings := NewRatingAdapter(client)
	comments := NewCommentAdapter(client)

	for _, id := range []string{"abc", "1", "' OR 1=1 --", ""} {
		_, err := companies.GetByID(ctx, id)
		assert.ErrorIs(t, err, entities.ErrCompanyNotFound, id)
		assert.True(t, apperrors.IsType(err, apperrors.ErrorTypeNotFound), id)

		_, err = companies.GetByOwner(ctx, id)
		assert.ErrorIs(t, err, entities.ErrCompanyNotFound, id)

		_, err = companies.RefreshAggregate(ctx, id)
		assert.ErrorIs(t, err, entities.ErrCompanyNotFound, id)

		_, err = users.GetByID(ctx, id)
		assert.ErrorIs(t, err, entities.ErrUserNotFound, id)

		_, err = ratings.GetByCompanyAndUser(ctx, id, userID)
		assert.ErrorIs(t, err, entities.ErrRatingNotFound, id)

		list, err := ratings.ListByCompany(ctx, id)
		require.NoError(t, err)
		assert.Empty(t, list)

		notes, err := comments.ListByCompany(ctx, id, 0)
		require.NoError(t, err)
		assert.Empty(t, notes)
	}

	found, err := companies.GetByIDs(ctx, []string{"abc", "xyz"})
	require.NoError(t, err)
	assert.Empty(t, found)

	byID, err := users.GetByIDs(ctx, []string{"abc"})
	require.NoError(t, err)
	assert.Empty(t, byID)

	// none of the above may reach Postgres
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestCompanyAdapter_GetByIDsPreservesOrder(t *testing.T) {
	client, mock := newMock(t)
	adapter := NewCompanyAdapter(client)

	rows := sqlmock.NewRows(companyRowColumns)
	companyRow(rows, companyID, "Acme", 3.0, 2)
	companyRow(rows, companyID2, "Bolt", 4.5, 4)
	mock.ExpectQuery(regexp.QuoteMeta("WHERE id = ANY($1)")).
		WithArgs(pq.Array([]string{companyID2, missingID, companyID})).
		WillReturnRows(rows)

	companies, err := adapter.GetByIDs(context.Background(), []string{companyID2, "not-a-uuid", missingID, companyID})

	require.NoError(t, err)
	require.Len(t, companies, 2)
	assert.Equal(t, companyID2, companies[0].ID)
	assert.Equal(t, companyID, companies[1].ID)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestCompanyAdapter_Search(t *testing.T) {
	client, mock := newMock(t)
	adapter := NewCompanyAdapter(client)

	rows := sqlmock.NewRows(companyRowColumns)
	companyRow(rows, "c-1", "Acme", 3.0, 2)
	mock.ExpectQuery(`SELECT .* FROM "companies" WHERE .*ILIKE.* ORDER BY "average_rating" DESC, "name" ASC`).
		WillReturnRows(rows)

	companies, err := adapter.Search(context.Background(), repositories.CompanyFilter{Query: "ac", Limit: 200})

	require.NoError(t, err)
	require.Len(t, companies, 1)
	assert.Equal(t, "Acme", companies[0].Name)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestApplyCompanyFilter_EscapesWildcards(t *testing.T) {
	ds := goqu.Dialect("postgres").From("companies").Prepared(true)

	_, args, err := applyCompanyFilter(ds, repositories.CompanyFilter{Query: "50%_off", City: " Lagos "}).ToSQL()

	require.NoError(t, err)
	assert.Contains(t, args, `%50\%\_off%`)
	assert.Contains(t, args, "%Lagos%")
}

func TestApplyCompanyFilter_SkipsBlankFields(t *testing.T) {
	ds := goqu.Dialect("postgres").From("companies").Prepared(true)

	query, args, err := applyCompanyFilter(ds, repositories.CompanyFilter{Category: "  "}).ToSQL()

	require.NoError(t, err)
	assert.Empty(t, args)
	assert.NotContains(t, query, "ILIKE")
}

func TestCompanyAdapter_UpdateMissing(t *testing.T) {
	client, mock := newMock(t)
	adapter := NewCompanyAdapter(client)

	mock.ExpectExec(`UPDATE "companies" SET`).WillReturnResult(sqlmock.NewResult(0, 0))

	err := adapter.Update(context.Background(), &entities.Company{ID: "missing", Name: "X"})
	assert.ErrorIs(t, err, entities.ErrCompanyNotFound)
}

func TestCompanyAdapter_ResetScores(t *testing.T) {
	client, mock := newMock(t)
	adapter := NewCompanyAdapter(client)

	mock.ExpectExec(regexp.QuoteMeta("SET reputation_score = 0, recommendation_score = 0")).
		WillReturnResult(sqlmock.NewResult(0, 3))

	n, err := adapter.ResetScores(context.Background())

	require.NoError(t, err)
	assert.EqualValues(t, 3, n)
}

func TestCompanyAdapter_Categories(t *testing.T) {
	client, mock := newMock(t)
	adapter := NewCompanyAdapter(client)

	mock.ExpectQuery(regexp.QuoteMeta("SELECT DISTINCT category")).
		WillReturnRows(sqlmock.NewRows([]string{"category"}).AddRow("Food").AddRow("Tools"))

	categories, err := adapter.Categories(context.Background())

	require.NoError(t, err)
	assert.Equal(t, []string{"Food", "Tools"}, categories)
}

func TestRatingAdapter_CreateDuplicate(t *testing.T) {
	client, mock := newMock(t)
	adapter := NewRatingAdapter(client)

	mock.ExpectExec(regexp.QuoteMeta("INSERT INTO ratings")).
		WillReturnError(&pq.Error{Code: "23505", Constraint: "ratings_company_user_key"})

	err := adapter.Create(context.Background(), &entities.Rating{ID: "r-1", CompanyID: "c-1", UserID: "u-1", Rating: 5})

	assert.ErrorIs(t, err, entities.ErrDuplicateRating)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestRatingAdapter_GetByCompanyAndUser(t *testing.T) {
	client, mock := newMock(t)
	adapter := NewRatingAdapter(client)
	now := time.Now()

	mock.ExpectQuery(regexp.QuoteMeta("WHERE company_id = $1 AND user_id = $2")).
		WithArgs(companyID, userID).
		WillReturnRows(sqlmock.NewRows([]string{"id", "company_id", "user_id", "rating", "created_at", "updated_at"}).
			AddRow("r-1", companyID, userID, 4.0, now, now))
	mock.ExpectQuery(regexp.QuoteMeta("WHERE company_id = $1 AND user_id = $2")).
		WithArgs(companyID, userID2).
		WillReturnError(sql.ErrNoRows)

	rating, err := adapter.GetByCompanyAndUser(context.Background(), companyID, userID)
	require.NoError(t, err)
	assert.Equal(t, 4.0, rating.Rating)

	_, err = adapter.GetByCompanyAndUser(context.Background(), companyID, userID2)
	assert.ErrorIs(t, err, entities.ErrRatingNotFound)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestCommentAdapter_ListByCompany(t *testing.T) {
	client, mock := newMock(t)
	adapter := NewCommentAdapter(client)
	now := time.Now()

	mock.ExpectQuery(`FROM "comments" WHERE .* ORDER BY "created_at" DESC`).
		WillReturnRows(sqlmock.NewRows([]string{"id", "company_id", "user_id", "comment", "customer_name", "customer_email", "created_at", "updated_at"}).
			AddRow("m-2", companyID, userID, "second", "Bob B", "bob@example.com", now, now).
			AddRow("m-1", companyID, userID, "first", "Bob B", "bob@example.com", now.Add(-time.Minute), now.Add(-time.Minute)))

	comments, err := adapter.ListByCompany(context.Background(), companyID, 10)

	require.NoError(t, err)
	require.Len(t, comments, 2)
	assert.Equal(t, "second", comments[0].Comment)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestEventAdapter_Create(t *testing.T) {
	client, mock := newMock(t)
	adapter := NewEventAdapter(client)

	mock.ExpectExec(`INSERT INTO "activity_events"`).WillReturnResult(sqlmock.NewResult(0, 1))

	err := adapter.Create(context.Background(), &entities.ActivityEvent{
		ID:        "e-1",
		EventType: entities.ActivityCustomerLogin,
		UserID:    "u-1",
		CreatedAt: time.Now(),
	})

	require.NoError(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestIsUniqueViolation(t *testing.T) {
	err := &pq.Error{Code: "23505", Constraint: "users_email_key"}

	assert.True(t, isUniqueViolation(err, ""))
	assert.True(t, isUniqueViolation(err, "users_email_key"))
	assert.False(t, isUniqueViolation(err, "ratings_company_user_key"))
	assert.False(t, isUniqueViolation(&pq.Error{Code: "23503"}, ""))
	assert.False(t, isUniqueViolation(nil, ""))
}
