package infrastructure

import (
	"context"
	"time"

	"github.com/draftea/preorder-system/preorder-service/activities"
	"github.com/jmoiron/sqlx"
	"github.com/pkg/errors"
)

// PostgresReservationRepository implements activities.ReservationStore
// using PostgreSQL
type PostgresReservationRepository struct {
	db *sqlx.DB
}

// NewPostgresReservationRepository creates a new PostgresReservationRepository
func NewPostgresReservationRepository(db *sqlx.DB) *PostgresReservationRepository {
	return &PostgresReservationRepository{db: db}
}

// postgresReservation represents a reservation row
type postgresReservation struct {
	ReservationID string     `db:"reservation_id"`
	OrderID       string     `db:"order_id"`
	ProductName   string     `db:"product_name"`
	CreatedAt     time.Time  `db:"created_at"`
	ReleasedAt    *time.Time `db:"released_at"`
}

// Create inserts a new reservation
func (r *PostgresReservationRepository) Create(ctx context.Context, reservation activities.Reservation) error {
	query := `
		INSERT INTO reservations (
			reservation_id, order_id, product_name, created_at
		) VALUES (
			:reservation_id, :order_id, :product_name, :created_at
		)`

	_, err := r.db.NamedExecContext(ctx, query, &postgresReservation{
		ReservationID: reservation.ReservationID,
		OrderID:       reservation.OrderID,
		ProductName:   reservation.ProductName,
		CreatedAt:     reservation.CreatedAt,
	})
	if err != nil {
		return errors.Wrap(err, "failed to insert reservation")
	}

	return nil
}

// Release marks a reservation as released. Releasing an already-released
// reservation is a no-op, so retried compensations stay safe.
func (r *PostgresReservationRepository) Release(ctx context.Context, reservationID string) error {
	query := `
		UPDATE reservations
		SET released_at = $1
		WHERE reservation_id = $2 AND released_at IS NULL`

	_, err := r.db.ExecContext(ctx, query, time.Now(), reservationID)
	if err != nil {
		return errors.Wrap(err, "failed to release reservation")
	}

	return nil
}
