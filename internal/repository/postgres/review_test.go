package postgres

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/jackc/pgx/v5"
	pgxmock "github.com/pashagolub/pgxmock/v3"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tushank99/mern-ecommerce/internal/domain"
	"github.com/tushank99/mern-ecommerce/pkg/database"
	apperrors "github.com/tushank99/mern-ecommerce/pkg/errors"
)

func setupReviewRepo(t *testing.T) (*ReviewRepository, pgxmock.PgxPoolIface) {
	t.Helper()
	mock, err := database.NewMockPool()
	require.NoError(t, err)
	return NewReviewRepository(mock), mock
}

func sampleReview() *domain.Review {
	now := time.Date(2025, 7, 1, 12, 0, 0, 0, time.UTC)
	return &domain.Review{
		ID:                 "rev-001",
		ProductID:          "prod-001",
		UserID:             "user-001",
		Author:             "Jordan",
		Rating:             5,
		Title:              "Great mug",
		Comment:            "Keeps coffee hot.",
		IsVerifiedPurchase: true,
		HelpfulVotes:       0,
		CreatedAt:          now,
		UpdatedAt:          now,
	}
}

func reviewColumns() []string {
	return []string{
		"id", "product_id", "user_id", "author", "rating", "title", "comment",
		"is_verified_purchase", "helpful_votes", "created_at", "updated_at",
	}
}

// ---------------------------------------------------------------------------
// Create
// ---------------------------------------------------------------------------

func expectReviewInsert(mock pgxmock.PgxPoolIface, rv *domain.Review) {
	mock.ExpectExec("INSERT INTO product_reviews").
		WithArgs(
			rv.ID, rv.ProductID, rv.UserID, rv.Author, rv.Rating, rv.Title,
			rv.Comment, rv.IsVerifiedPurchase, rv.HelpfulVotes,
			rv.CreatedAt, rv.UpdatedAt,
		).
		WillReturnResult(pgxmock.NewResult("INSERT", 1))
}

func TestReviewRepository_Create_Success(t *testing.T) {
	repo, mock := setupReviewRepo(t)
	defer mock.Close()

	rv := sampleReview()

	mock.ExpectBegin()
	mock.ExpectQuery("SELECT rating FROM products WHERE id = \\$1 FOR UPDATE").
		WithArgs(rv.ProductID).
		WillReturnRows(pgxmock.NewRows([]string{"rating"}).AddRow(4.0))
	expectReviewInsert(mock, rv)
	mock.ExpectQuery("SELECT rating FROM product_reviews").
		WithArgs(rv.ProductID).
		WillReturnRows(pgxmock.NewRows([]string{"rating"}).AddRow(4).AddRow(3).AddRow(5))
	mock.ExpectExec("UPDATE products").
		WithArgs(rv.ProductID, 4.0, 3, rv.CreatedAt).
		WillReturnResult(pgxmock.NewResult("UPDATE", 1))
	mock.ExpectCommit()

	err := repo.Create(context.Background(), rv)

	assert.NoError(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestReviewRepository_Create_ProductNotFound(t *testing.T) {
	repo, mock := setupReviewRepo(t)
	defer mock.Close()

	rv := sampleReview()

	mock.ExpectBegin()
	mock.ExpectQuery("SELECT rating FROM products WHERE id = \\$1 FOR UPDATE").
		WithArgs(rv.ProductID).
		WillReturnError(pgx.ErrNoRows)
	mock.ExpectRollback()

	err := repo.Create(context.Background(), rv)

	assert.ErrorIs(t, err, apperrors.ErrNotFound)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestReviewRepository_Create_DuplicateUser(t *testing.T) {
	repo, mock := setupReviewRepo(t)
	defer mock.Close()

	rv := sampleReview()

	mock.ExpectBegin()
	mock.ExpectQuery("SELECT rating FROM products WHERE id = \\$1 FOR UPDATE").
		WithArgs(rv.ProductID).
		WillReturnRows(pgxmock.NewRows([]string{"rating"}).AddRow(4.0))
	mock.ExpectExec("INSERT INTO product_reviews").
		WithArgs(
			rv.ID, rv.ProductID, rv.UserID, rv.Author, rv.Rating, rv.Title,
			rv.Comment, rv.IsVerifiedPurchase, rv.HelpfulVotes,
			rv.CreatedAt, rv.UpdatedAt,
		).
		WillReturnError(errors.New("ERROR: duplicate key value violates unique constraint \"uq_product_reviews_product_user\" (SQLSTATE 23505)"))
	mock.ExpectRollback()

	err := repo.Create(context.Background(), rv)

	assert.ErrorIs(t, err, apperrors.ErrAlreadyExists)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestReviewRepository_Create_AggregateUpdateFailsRollsBack(t *testing.T) {
	repo, mock := setupReviewRepo(t)
	defer mock.Close()

	rv := sampleReview()

	mock.ExpectBegin()
	mock.ExpectQuery("SELECT rating FROM products WHERE id = \\$1 FOR UPDATE").
		WithArgs(rv.ProductID).
		WillReturnRows(pgxmock.NewRows([]string{"rating"}).AddRow(0.0))
	expectReviewInsert(mock, rv)
	mock.ExpectQuery("SELECT rating FROM product_reviews").
		WithArgs(rv.ProductID).
		WillReturnRows(pgxmock.NewRows([]string{"rating"}).AddRow(5))
	mock.ExpectExec("UPDATE products").
		WithArgs(rv.ProductID, 5.0, 1, rv.CreatedAt).
		WillReturnError(errors.New("connection reset"))
	mock.ExpectRollback()

	err := repo.Create(context.Background(), rv)

	assert.Error(t, err)
	assert.Contains(t, err.Error(), "update product aggregates")
	assert.NoError(t, mock.ExpectationsWereMet())
}

// ---------------------------------------------------------------------------
// ListByProductID
// ---------------------------------------------------------------------------

func TestReviewRepository_ListByProductID(t *testing.T) {
	repo, mock := setupReviewRepo(t)
	defer mock.Close()

	rv := sampleReview()
	rows := pgxmock.NewRows(append(reviewColumns(), "total_count")).
		AddRow(
			rv.ID, rv.ProductID, rv.UserID, rv.Author, rv.Rating, rv.Title,
			rv.Comment, rv.IsVerifiedPurchase, rv.HelpfulVotes,
			rv.CreatedAt, rv.UpdatedAt, 7,
		)

	mock.ExpectQuery("SELECT (.+) FROM product_reviews").
		WithArgs(rv.ProductID, 20, 0).
		WillReturnRows(rows)

	reviews, total, err := repo.ListByProductID(context.Background(), rv.ProductID, 1, 20)

	require.NoError(t, err)
	assert.Equal(t, 7, total)
	require.Len(t, reviews, 1)
	assert.Equal(t, *rv, reviews[0])
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestReviewRepository_ListByProductID_Empty(t *testing.T) {
	repo, mock := setupReviewRepo(t)
	defer mock.Close()

	mock.ExpectQuery("SELECT (.+) FROM product_reviews").
		WithArgs("prod-001", 20, 0).
		WillReturnRows(pgxmock.NewRows(append(reviewColumns(), "total_count")))

	reviews, total, err := repo.ListByProductID(context.Background(), "prod-001", 1, 20)

	require.NoError(t, err)
	assert.Equal(t, 0, total)
	assert.NotNil(t, reviews)
	assert.Empty(t, reviews)
	assert.NoError(t, mock.ExpectationsWereMet())
}

// ---------------------------------------------------------------------------
// ExistsForUser / GetSummary
// ---------------------------------------------------------------------------

func TestReviewRepository_ExistsForUser(t *testing.T) {
	repo, mock := setupReviewRepo(t)
	defer mock.Close()

	mock.ExpectQuery("SELECT EXISTS").
		WithArgs("prod-001", "user-001").
		WillReturnRows(pgxmock.NewRows([]string{"exists"}).AddRow(true))

	exists, err := repo.ExistsForUser(context.Background(), "prod-001", "user-001")

	require.NoError(t, err)
	assert.True(t, exists)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestReviewRepository_GetSummary(t *testing.T) {
	repo, mock := setupReviewRepo(t)
	defer mock.Close()

	mock.ExpectQuery("SELECT rating, num_reviews FROM products").
		WithArgs("prod-001").
		WillReturnRows(pgxmock.NewRows([]string{"rating", "num_reviews"}).AddRow(4.25, 4))

	summary, err := repo.GetSummary(context.Background(), "prod-001")

	require.NoError(t, err)
	assert.Equal(t, 4.25, summary.Rating)
	assert.Equal(t, 4, summary.NumReviews)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestReviewRepository_GetSummary_NotFound(t *testing.T) {
	repo, mock := setupReviewRepo(t)
	defer mock.Close()

	mock.ExpectQuery("SELECT rating, num_reviews FROM products").
		WithArgs("missing").
		WillReturnError(pgx.ErrNoRows)

	summary, err := repo.GetSummary(context.Background(), "missing")

	assert.Nil(t, summary)
	assert.ErrorIs(t, err, apperrors.ErrNotFound)
	assert.NoError(t, mock.ExpectationsWereMet())
}

// ---------------------------------------------------------------------------
// IncrementHelpfulVotes
// ---------------------------------------------------------------------------

func TestReviewRepository_IncrementHelpfulVotes(t *testing.T) {
	repo, mock := setupReviewRepo(t)
	defer mock.Close()

	mock.ExpectQuery("UPDATE product_reviews").
		WithArgs("rev-001", "prod-001").
		WillReturnRows(pgxmock.NewRows([]string{"helpful_votes"}).AddRow(3))

	votes, err := repo.IncrementHelpfulVotes(context.Background(), "prod-001", "rev-001")

	require.NoError(t, err)
	assert.Equal(t, 3, votes)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestReviewRepository_IncrementHelpfulVotes_NotFound(t *testing.T) {
	repo, mock := setupReviewRepo(t)
	defer mock.Close()

	mock.ExpectQuery("UPDATE product_reviews").
		WithArgs("missing", "prod-001").
		WillReturnError(pgx.ErrNoRows)

	votes, err := repo.IncrementHelpfulVotes(context.Background(), "prod-001", "missing")

	assert.Zero(t, votes)
	assert.ErrorIs(t, err, apperrors.ErrNotFound)
	assert.NoError(t, mock.ExpectationsWereMet())
}
