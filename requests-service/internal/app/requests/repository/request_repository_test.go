package repository

import (
	"context"
	"database/sql"
	"regexp"
	"testing"
	"time"

	"expertaid/requests-service/internal/app/requests/entity"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
	"github.com/stretchr/testify/suite"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
)

// RequestRepositoryTestSuite тестовый suite для PostgreSQL repository
type RequestRepositoryTestSuite struct {
	suite.Suite
	db    *gorm.DB
	mock  sqlmock.Sqlmock
	repo  RequestRepository
	sqlDB *sql.DB
}

func TestRequestRepositorySuite(t *testing.T) {
	suite.Run(t, new(RequestRepositoryTestSuite))
}

func (s *RequestRepositoryTestSuite) SetupTest() {
	var err error
	s.sqlDB, s.mock, err = sqlmock.New()
	require.NoError(s.T(), err)

	dialector := postgres.New(postgres.Config{
		Conn:       s.sqlDB,
		DriverName: "postgres",
	})

	s.db, err = gorm.Open(dialector, &gorm.Config{})
	require.NoError(s.T(), err)

	s.repo = NewRequestRepository(s.db)
}

func (s *RequestRepositoryTestSuite) TearDownTest() {
	s.sqlDB.Close()
}

// ===================== GetByID Tests =====================

func (s *RequestRepositoryTestSuite) TestGetByID_Success() {
	ctx := context.Background()
	requestID := uuid.New()
	userID := uuid.New()
	createdAt := time.Now()

	rows := sqlmock.NewRows([]string{"id", "user_id", "service_name", "service_des", "date", "time", "status", "created_at"}).
		AddRow(requestID, userID, "Plumbing repair", "Leaking sink", "2026-09-05", "14:00", "pending", createdAt)

	s.mock.ExpectQuery(regexp.QuoteMeta(`SELECT * FROM "service_requests" WHERE id = $1`)).
		WithArgs(requestID, 1).
		WillReturnRows(rows)

	request, err := s.repo.GetByID(ctx, requestID)

	s.NoError(err)
	s.NotNil(request)
	s.Equal(requestID, request.ID)
	s.Equal(entity.RequestStatusPending, request.Status)
	s.Nil(request.ExpertID)

	s.NoError(s.mock.ExpectationsWereMet())
}

func (s *RequestRepositoryTestSuite) TestGetByID_NotFound() {
	ctx := context.Background()
	requestID := uuid.New()

	s.mock.ExpectQuery(regexp.QuoteMeta(`SELECT * FROM "service_requests" WHERE id = $1`)).
		WithArgs(requestID, 1).
		WillReturnError(gorm.ErrRecordNotFound)

	request, err := s.repo.GetByID(ctx, requestID)

	s.Error(err)
	s.Nil(request)
	s.ErrorIs(err, ErrRequestNotFound)

	s.NoError(s.mock.ExpectationsWereMet())
}

// ===================== ListPending Tests =====================

func (s *RequestRepositoryTestSuite) TestListPending_OrderedByCreation() {
	ctx := context.Background()

	older := uuid.New()
	newer := uuid.New()
	now := time.Now()

	rows := sqlmock.NewRows([]string{"id", "user_id", "service_name", "status", "created_at"}).
		AddRow(older, uuid.New(), "Cleaning", "pending", now.Add(-time.Hour)).
		AddRow(newer, uuid.New(), "Painting", "pending", now)

	s.mock.ExpectQuery(regexp.QuoteMeta(`SELECT * FROM "service_requests" WHERE status = $1 ORDER BY created_at ASC`)).
		WithArgs("pending").
		WillReturnRows(rows)

	requests, err := s.repo.ListPending(ctx)

	s.NoError(err)
	s.Len(requests, 2)
	s.Equal(older, requests[0].ID)

	s.NoError(s.mock.ExpectationsWereMet())
}

// ===================== Assign Tests =====================

func (s *RequestRepositoryTestSuite) TestAssign_Success() {
	ctx := context.Background()
	requestID := uuid.New()
	expertID := uuid.New()

	s.mock.ExpectBegin()
	s.mock.ExpectExec(regexp.QuoteMeta(`UPDATE "service_requests" SET`)).
		WithArgs(expertID, requestID, "pending").
		WillReturnResult(sqlmock.NewResult(0, 1))
	s.mock.ExpectCommit()

	err := s.repo.Assign(ctx, requestID, expertID)

	s.NoError(err)
	s.NoError(s.mock.ExpectationsWereMet())
}

func (s *RequestRepositoryTestSuite) TestAssign_GuardFailed() {
	// Заявка уже занята другим экспертом - условие WHERE не совпало
	ctx := context.Background()
	requestID := uuid.New()
	expertID := uuid.New()

	s.mock.ExpectBegin()
	s.mock.ExpectExec(regexp.QuoteMeta(`UPDATE "service_requests" SET`)).
		WithArgs(expertID, requestID, "pending").
		WillReturnResult(sqlmock.NewResult(0, 0)) // 0 rows affected
	s.mock.ExpectCommit()

	err := s.repo.Assign(ctx, requestID, expertID)

	s.ErrorIs(err, ErrGuardFailed)
	s.NoError(s.mock.ExpectationsWereMet())
}

func (s *RequestRepositoryTestSuite) TestAssign_DBError() {
	ctx := context.Background()
	requestID := uuid.New()
	expertID := uuid.New()

	s.mock.ExpectBegin()
	s.mock.ExpectExec(regexp.QuoteMeta(`UPDATE "service_requests" SET`)).
		WillReturnError(sql.ErrConnDone)
	s.mock.ExpectRollback()

	err := s.repo.Assign(ctx, requestID, expertID)

	s.Error(err)
	s.NotErrorIs(err, ErrGuardFailed)
	s.NoError(s.mock.ExpectationsWereMet())
}

// ===================== Complete Tests =====================

func (s *RequestRepositoryTestSuite) TestComplete_Success() {
	ctx := context.Background()
	requestID := uuid.New()
	expertID := uuid.New()
	solvedDate := time.Now()

	s.mock.ExpectBegin()
	s.mock.ExpectExec(regexp.QuoteMeta(`UPDATE "service_requests" SET`)).
		WillReturnResult(sqlmock.NewResult(0, 1))
	s.mock.ExpectCommit()

	err := s.repo.Complete(ctx, requestID, expertID, 500.0, "cash", "fixed", solvedDate)

	s.NoError(err)
	s.NoError(s.mock.ExpectationsWereMet())
}

func (s *RequestRepositoryTestSuite) TestComplete_GuardFailed() {
	ctx := context.Background()

	s.mock.ExpectBegin()
	s.mock.ExpectExec(regexp.QuoteMeta(`UPDATE "service_requests" SET`)).
		WillReturnResult(sqlmock.NewResult(0, 0))
	s.mock.ExpectCommit()

	err := s.repo.Complete(ctx, uuid.New(), uuid.New(), 500.0, "cash", "", time.Now())

	s.ErrorIs(err, ErrGuardFailed)
	s.NoError(s.mock.ExpectationsWereMet())
}

// ===================== Reject Tests =====================

func (s *RequestRepositoryTestSuite) TestReject_Success() {
	ctx := context.Background()
	requestID := uuid.New()

	s.mock.ExpectBegin()
	s.mock.ExpectExec(regexp.QuoteMeta(`UPDATE "service_requests" SET`)).
		WithArgs("rejected", requestID, "pending").
		WillReturnResult(sqlmock.NewResult(0, 1))
	s.mock.ExpectCommit()

	err := s.repo.Reject(ctx, requestID)

	s.NoError(err)
	s.NoError(s.mock.ExpectationsWereMet())
}

func (s *RequestRepositoryTestSuite) TestReject_AlreadyTerminal() {
	ctx := context.Background()
	requestID := uuid.New()

	s.mock.ExpectBegin()
	s.mock.ExpectExec(regexp.QuoteMeta(`UPDATE "service_requests" SET`)).
		WithArgs("rejected", requestID, "pending").
		WillReturnResult(sqlmock.NewResult(0, 0))
	s.mock.ExpectCommit()

	err := s.repo.Reject(ctx, requestID)

	s.ErrorIs(err, ErrGuardFailed)
	s.NoError(s.mock.ExpectationsWereMet())
}

// ===================== SetFeedback Tests =====================

func (s *RequestRepositoryTestSuite) TestSetFeedback_Success() {
	ctx := context.Background()
	requestID := uuid.New()
	userID := uuid.New()

	s.mock.ExpectBegin()
	s.mock.ExpectExec(regexp.QuoteMeta(`UPDATE "service_requests" SET`)).
		WillReturnResult(sqlmock.NewResult(0, 1))
	s.mock.ExpectCommit()

	err := s.repo.SetFeedback(ctx, requestID, userID, 5, "excellent")

	s.NoError(err)
	s.NoError(s.mock.ExpectationsWereMet())
}

func (s *RequestRepositoryTestSuite) TestSetFeedback_NotDoneYet() {
	ctx := context.Background()

	s.mock.ExpectBegin()
	s.mock.ExpectExec(regexp.QuoteMeta(`UPDATE "service_requests" SET`)).
		WillReturnResult(sqlmock.NewResult(0, 0))
	s.mock.ExpectCommit()

	err := s.repo.SetFeedback(ctx, uuid.New(), uuid.New(), 4, "")

	s.ErrorIs(err, ErrGuardFailed)
	s.NoError(s.mock.ExpectationsWereMet())
}

// ===================== ExpertRatingStats Tests =====================

func (s *RequestRepositoryTestSuite) TestExpertRatingStats_WithRatings() {
	ctx := context.Background()
	expertID := uuid.New()

	rows := sqlmock.NewRows([]string{"average", "count"}).AddRow(4.5, 2)

	s.mock.ExpectQuery(regexp.QuoteMeta(`SELECT COALESCE(AVG(rating), 0) AS average, COUNT(rating) AS count FROM "service_requests"`)).
		WithArgs(expertID, "done").
		WillReturnRows(rows)

	stats, err := s.repo.ExpertRatingStats(ctx, expertID)

	s.NoError(err)
	s.Equal(4.5, stats.Average)
	s.Equal(int64(2), stats.Count)

	s.NoError(s.mock.ExpectationsWereMet())
}

func (s *RequestRepositoryTestSuite) TestExpertRatingStats_NoRatings() {
	ctx := context.Background()
	expertID := uuid.New()

	rows := sqlmock.NewRows([]string{"average", "count"}).AddRow(0.0, 0)

	s.mock.ExpectQuery(regexp.QuoteMeta(`SELECT COALESCE(AVG(rating), 0) AS average, COUNT(rating) AS count FROM "service_requests"`)).
		WithArgs(expertID, "done").
		WillReturnRows(rows)

	stats, err := s.repo.ExpertRatingStats(ctx, expertID)

	s.NoError(err)
	s.Equal(int64(0), stats.Count)

	s.NoError(s.mock.ExpectationsWereMet())
}
