package reservation

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/sangjo/reservation-desk/internal/utils"
	log "github.com/sirupsen/logrus"
)

type Repository interface {
	// List returns every reservation ordered by date and time ascending.
	List(ctx context.Context) ([]Reservation, error)
	Store(ctx context.Context, r Reservation) (Reservation, error)
	Update(ctx context.Context, r Reservation) (Reservation, error)
	Delete(ctx context.Context, id uuid.UUID) error
}

type RepositoryImpl struct {
	db *pgxpool.Pool
}

func NewRepository(db *pgxpool.Pool) *RepositoryImpl {
	return &RepositoryImpl{db: db}
}

func (r *RepositoryImpl) List(ctx context.Context) ([]Reservation, error) {
	query := `SELECT id::text, contractor_name, deceased_name, date, time, staff_name, created_at
			  FROM reservation
			  ORDER BY date ASC, time ASC, created_at ASC`

	rows, err := r.db.Query(ctx, query)
	if err != nil {
		err := fmt.Errorf("could not query reservations: %w", err)
		log.Error(err)
		return nil, err
	}
	defer rows.Close()

	reservations := make([]Reservation, 0, 32)
	for rows.Next() {
		var (
			id   string
			date time.Time
			res  Reservation
		)
		err := rows.Scan(&id, &res.ContractorName, &res.DeceasedName, &date, &res.Time, &res.StaffName, &res.CreatedAt)
		if err != nil {
			err := fmt.Errorf("could not scan row: %w", err)
			log.Error(err)
			return nil, err
		}
		res.Id, err = uuid.Parse(id)
		if err != nil {
			return nil, fmt.Errorf("invalid reservation id %q: %w", id, err)
		}
		res.Date = date.Format(utils.DateLayout)
		reservations = append(reservations, res)
	}
	if err := rows.Err(); err != nil {
		err := fmt.Errorf("error iterating over rows: %w", err)
		log.Error(err)
		return nil, err
	}

	return reservations, nil
}

func (r *RepositoryImpl) Store(ctx context.Context, res Reservation) (Reservation, error) {
	query := `INSERT INTO reservation (
                         id,
                         contractor_name,
                         deceased_name,
                         date,
                         time,
                         staff_name
					) VALUES ($1, $2, $3, $4, $5, $6) RETURNING created_at`

	date, err := time.Parse(utils.DateLayout, res.Date)
	if err != nil {
		return Reservation{}, fmt.Errorf("%w: %q", ErrInvalidDate, res.Date)
	}

	res.Id = uuid.New()
	err = r.db.QueryRow(ctx, query,
		res.Id.String(),
		res.ContractorName,
		res.DeceasedName,
		date,
		res.Time,
		res.StaffName,
	).Scan(&res.CreatedAt)
	if err != nil {
		err := fmt.Errorf("could not execute query: %w", err)
		log.Error(err)
		return Reservation{}, err
	}

	return res, nil
}

func (r *RepositoryImpl) Update(ctx context.Context, res Reservation) (Reservation, error) {
	query := `UPDATE reservation
			  SET contractor_name = $1, deceased_name = $2, date = $3, time = $4, staff_name = $5
			  WHERE id = $6
			  RETURNING created_at`

	date, err := time.Parse(utils.DateLayout, res.Date)
	if err != nil {
		return Reservation{}, fmt.Errorf("%w: %q", ErrInvalidDate, res.Date)
	}

	err = r.db.QueryRow(ctx, query,
		res.ContractorName,
		res.DeceasedName,
		date,
		res.Time,
		res.StaffName,
		res.Id.String(),
	).Scan(&res.CreatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return Reservation{}, ErrReservationNotFound
		}
		err := fmt.Errorf("could not execute query: %w", err)
		log.Error(err)
		return Reservation{}, err
	}

	return res, nil
}

func (r *RepositoryImpl) Delete(ctx context.Context, id uuid.UUID) error {
	tag, err := r.db.Exec(ctx, `DELETE FROM reservation WHERE id = $1`, id.String())
	if err != nil {
		err := fmt.Errorf("could not execute query: %w", err)
		log.Error(err)
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrReservationNotFound
	}
	return nil
}
