package infrastructure

import (
	"context"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/draftea/preorder-system/preorder-service/activities"
	"github.com/stretchr/testify/assert"
)

func TestPostgresReservationRepositoryCreate(t *testing.T) {
	db, mock := newMockDB(t)
	repo := NewPostgresReservationRepository(db)

	now := time.Now()
	mock.ExpectExec("INSERT INTO reservations").
		WithArgs("RES-abc123", "ORD-1", "Collector Edition Console", now).
		WillReturnResult(sqlmock.NewResult(1, 1))

	err := repo.Create(context.Background(), activities.Reservation{
		ReservationID: "RES-abc123",
		OrderID:       "ORD-1",
		ProductName:   "Collector Edition Console",
		CreatedAt:     now,
	})

	assert.NoError(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgresReservationRepositoryRelease(t *testing.T) {
	db, mock := newMockDB(t)
	repo := NewPostgresReservationRepository(db)

	mock.ExpectExec("UPDATE reservations").
		WithArgs(sqlmock.AnyArg(), "RES-abc123").
		WillReturnResult(sqlmock.NewResult(0, 1))

	err := repo.Release(context.Background(), "RES-abc123")

	assert.NoError(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgresReservationRepositoryReleaseAlreadyReleased(t *testing.T) {
	db, mock := newMockDB(t)
	repo := NewPostgresReservationRepository(db)

	// No matching row is fine; the release stays idempotent
	mock.ExpectExec("UPDATE reservations").
		WithArgs(sqlmock.AnyArg(), "RES-abc123").
		WillReturnResult(sqlmock.NewResult(0, 0))

	err := repo.Release(context.Background(), "RES-abc123")

	assert.NoError(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgresReservationRepositoryReleaseError(t *testing.T) {
	db, mock := newMockDB(t)
	repo := NewPostgresReservationRepository(db)

	mock.ExpectExec("UPDATE reservations").
		WillReturnError(assert.AnError)

	err := repo.Release(context.Background(), "RES-abc123")

	assert.Error(t, err)
	assert.Contains(t, err.Error(), "failed to release reservation")
}
