package repos

import (
	"context"
	"strings"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/milesync/milesync-backend/internal/logger"
	"github.com/milesync/milesync-backend/internal/types"
)

// TripListFilter narrows and pages List results. Zero-valued fields are
// ignored; Limit defaults to 50.
type TripListFilter struct {
	StartDate *time.Time
	EndDate   *time.Time
	Purpose   string
	SortBy    string
	SortOrder string
	Limit     int
	Offset    int
}

type TripRepo interface {
	Create(ctx context.Context, tx *gorm.DB, trips []*types.Trip) ([]*types.Trip, error)
	GetByIDs(ctx context.Context, tx *gorm.DB, tripIDs []uuid.UUID) ([]*types.Trip, error)
	// GetByUserID returns a user's trips ordered ascending by start date,
	// optionally bounded to trips starting within [startDate, endDate].
	GetByUserID(ctx context.Context, tx *gorm.DB, userID uuid.UUID, startDate, endDate *time.Time) ([]*types.Trip, error)
	List(ctx context.Context, tx *gorm.DB, userID uuid.UUID, filter TripListFilter) ([]*types.Trip, int64, error)
	Update(ctx context.Context, tx *gorm.DB, trip *types.Trip) error
	FullDeleteByIDs(ctx context.Context, tx *gorm.DB, tripIDs []uuid.UUID) error
}

type tripRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewTripRepo(db *gorm.DB, baseLog *logger.Logger) TripRepo {
	repoLog := baseLog.With("repo", "TripRepo")
	return &tripRepo{db: db, log: repoLog}
}

func (tr *tripRepo) Create(ctx context.Context, tx *gorm.DB, trips []*types.Trip) ([]*types.Trip, error) {
	transaction := tx
	if transaction == nil {
		transaction = tr.db
	}

	if len(trips) == 0 {
		return []*types.Trip{}, nil
	}

	if err := transaction.WithContext(ctx).Create(&trips).Error; err != nil {
		return nil, err
	}
	return trips, nil
}

func (tr *tripRepo) GetByIDs(ctx context.Context, tx *gorm.DB, tripIDs []uuid.UUID) ([]*types.Trip, error) {
	transaction := tx
	if transaction == nil {
		transaction = tr.db
	}

	var results []*types.Trip
	if len(tripIDs) == 0 {
		return results, nil
	}

	if err := transaction.WithContext(ctx).
		Where("id IN ?", tripIDs).
		Find(&results).Error; err != nil {
		return nil, err
	}
	return results, nil
}

func (tr *tripRepo) GetByUserID(ctx context.Context, tx *gorm.DB, userID uuid.UUID, startDate, endDate *time.Time) ([]*types.Trip, error) {
	transaction := tx
	if transaction == nil {
		transaction = tr.db
	}

	query := transaction.WithContext(ctx).
		Where("user_id = ?", userID)
	if startDate != nil {
		query = query.Where("start_date >= ?", *startDate)
	}
	if endDate != nil {
		query = query.Where("start_date <= ?", *endDate)
	}

	var results []*types.Trip
	if err := query.Order("start_date ASC").Find(&results).Error; err != nil {
		return nil, err
	}
	return results, nil
}

var tripSortColumns = map[string]string{
	"start_date":    "start_date",
	"end_date":      "end_date",
	"total_miles":   "total_miles",
	"start_mileage": "start_mileage",
	"created_at":    "created_at",
}

func (tr *tripRepo) List(ctx context.Context, tx *gorm.DB, userID uuid.UUID, filter TripListFilter) ([]*types.Trip, int64, error) {
	transaction := tx
	if transaction == nil {
		transaction = tr.db
	}

	query := transaction.WithContext(ctx).
		Model(&types.Trip{}).
		Where("user_id = ?", userID)
	if filter.StartDate != nil {
		query = query.Where("start_date >= ?", *filter.StartDate)
	}
	if filter.EndDate != nil {
		query = query.Where("start_date <= ?", *filter.EndDate)
	}
	if filter.Purpose != "" {
		query = query.Where("purpose = ?", filter.Purpose)
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	sortBy, ok := tripSortColumns[filter.SortBy]
	if !ok {
		sortBy = "start_date"
	}
	order := "DESC"
	if strings.EqualFold(filter.SortOrder, "asc") {
		order = "ASC"
	}
	limit := filter.Limit
	if limit <= 0 {
		limit = 50
	}

	var results []*types.Trip
	if err := query.
		Order(sortBy + " " + order).
		Limit(limit).
		Offset(filter.Offset).
		Find(&results).Error; err != nil {
		return nil, 0, err
	}
	return results, total, nil
}

func (tr *tripRepo) Update(ctx context.Context, tx *gorm.DB, trip *types.Trip) error {
	transaction := tx
	if transaction == nil {
		transaction = tr.db
	}

	if trip == nil {
		return nil
	}
	return transaction.WithContext(ctx).Save(trip).Error
}

func (tr *tripRepo) FullDeleteByIDs(ctx context.Context, tx *gorm.DB, tripIDs []uuid.UUID) error {
	transaction := tx
	if transaction == nil {
		transaction = tr.db
	}

	if len(tripIDs) == 0 {
		return nil
	}

	return transaction.WithContext(ctx).
		Where("id IN ?", tripIDs).
		Delete(&types.Trip{}).Error
}
