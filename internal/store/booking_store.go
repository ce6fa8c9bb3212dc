package store

import (
	"context"
	"errors"
	"fmt"
	"time"

	"gorm.io/gorm"

	"github.com/tsagbook/booking-platform/internal/booking"
	"github.com/tsagbook/booking-platform/internal/model"
)

// bookingRow is the persisted shape of a booking.
type bookingRow struct {
	ID              string    `gorm:"primaryKey;size:64"`
	UserID          string    `gorm:"index;size:191;not null"`
	UserName        string    `gorm:"size:191;not null"`
	Phone           string    `gorm:"size:32;not null"`
	Service         string    `gorm:"size:191;not null"`
	Date            string    `gorm:"index;size:10;not null"` // YYYY-MM-DD
	Time            string    `gorm:"size:5;not null"`        // HH:MM
	DurationMinutes int       `gorm:"not null;default:60"`
	Status          string    `gorm:"index;size:16;not null;default:confirmed"`
	CreatedAt       time.Time `gorm:"not null"`
	UpdatedAt       time.Time
}

func (bookingRow) TableName() string {
	return "bookings"
}

func (r bookingRow) toBooking() model.Booking {
	return model.Booking{
		ID:              r.ID,
		UserID:          r.UserID,
		UserName:        r.UserName,
		Phone:           r.Phone,
		Service:         r.Service,
		Date:            r.Date,
		Time:            r.Time,
		DurationMinutes: r.DurationMinutes,
		Status:          model.Status(r.Status),
		CreatedAt:       r.CreatedAt,
	}
}

func rowFromBooking(b *model.Booking) bookingRow {
	return bookingRow{
		ID:              b.ID,
		UserID:          b.UserID,
		UserName:        b.UserName,
		Phone:           b.Phone,
		Service:         b.Service,
		Date:            b.Date,
		Time:            b.Time,
		DurationMinutes: b.DurationMinutes,
		Status:          string(b.Status),
		CreatedAt:       b.CreatedAt,
	}
}

// GormStore implements the scheduling engine's store contract over a
// relational database.
type GormStore struct {
	db *gorm.DB
}

// NewGormStore opens the database and runs migrations.
func NewGormStore(driver, dsn string) (*GormStore, error) {
	gormDB, err := OpenGorm(driver, dsn)
	if err != nil {
		return nil, fmt.Errorf("open booking store: %w", err)
	}

	store := &GormStore{db: gormDB}
	if err := store.migrate(); err != nil {
		return nil, err
	}
	return store, nil
}

func (s *GormStore) migrate() error {
	return s.db.AutoMigrate(&bookingRow{})
}

// ActiveOnDate returns all non-cancelled bookings on a date.
func (s *GormStore) ActiveOnDate(ctx context.Context, date string) ([]model.Booking, error) {
	var rows []bookingRow
	err := s.db.WithContext(ctx).
		Where("date = ? AND status <> ?", date, string(model.StatusCancelled)).
		Find(&rows).Error
	if err != nil {
		return nil, fmt.Errorf("query bookings by date: %w", err)
	}
	return toBookings(rows), nil
}

// Insert persists a new booking inside a transaction.
func (s *GormStore) Insert(ctx context.Context, b *model.Booking) error {
	row := rowFromBooking(b)
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return tx.Create(&row).Error
	})
	if err != nil {
		return fmt.Errorf("insert booking: %w", err)
	}
	return nil
}

// GetByID returns a booking or booking.ErrNotFound.
func (s *GormStore) GetByID(ctx context.Context, id string) (*model.Booking, error) {
	var row bookingRow
	err := s.db.WithContext(ctx).Where("id = ?", id).Take(&row).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, booking.ErrNotFound
		}
		return nil, fmt.Errorf("get booking: %w", err)
	}
	b := row.toBooking()
	return &b, nil
}

// UpdateStatus flips a booking's status and returns the updated record.
func (s *GormStore) UpdateStatus(ctx context.Context, id string, status model.Status) (*model.Booking, error) {
	var row bookingRow
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("id = ?", id).Take(&row).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return booking.ErrNotFound
			}
			return fmt.Errorf("get booking: %w", err)
		}
		row.Status = string(status)
		row.UpdatedAt = time.Now().UTC()
		if err := tx.Save(&row).Error; err != nil {
			return fmt.Errorf("update booking status: %w", err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	b := row.toBooking()
	return &b, nil
}

// List returns bookings matching the optional filters, ordered by
// (date, time) ascending.
func (s *GormStore) List(ctx context.Context, userID, status string) ([]model.Booking, error) {
	query := s.db.WithContext(ctx).Model(&bookingRow{})
	if userID != "" {
		query = query.Where("user_id = ?", userID)
	}
	if status != "" {
		query = query.Where("status = ?", status)
	}

	var rows []bookingRow
	if err := query.Order("date ASC, time ASC").Find(&rows).Error; err != nil {
		return nil, fmt.Errorf("list bookings: %w", err)
	}
	return toBookings(rows), nil
}

// ConfirmedByUser returns a requester's confirmed bookings, most recent
// first.
func (s *GormStore) ConfirmedByUser(ctx context.Context, userID string) ([]model.Booking, error) {
	var rows []bookingRow
	err := s.db.WithContext(ctx).
		Where("user_id = ? AND status = ?", userID, string(model.StatusConfirmed)).
		Order("date DESC, time DESC").
		Find(&rows).Error
	if err != nil {
		return nil, fmt.Errorf("query confirmed bookings: %w", err)
	}
	return toBookings(rows), nil
}

// Ping verifies database connectivity.
func (s *GormStore) Ping(ctx context.Context) error {
	sqlDB, err := s.db.DB()
	if err != nil {
		return fmt.Errorf("get sql db: %w", err)
	}
	return sqlDB.PingContext(ctx)
}

// Close releases the underlying database handle.
func (s *GormStore) Close() error {
	sqlDB, err := s.db.DB()
	if err != nil {
		return fmt.Errorf("get sql db: %w", err)
	}
	return sqlDB.Close()
}

func toBookings(rows []bookingRow) []model.Booking {
	out := make([]model.Booking, 0, len(rows))
	for _, row := range rows {
		out = append(out, row.toBooking())
	}
	return out
}
