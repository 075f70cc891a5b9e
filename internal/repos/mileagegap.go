package repos

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/milesync/milesync-backend/internal/logger"
	"github.com/milesync/milesync-backend/internal/types"
)

type GapListFilter struct {
	Status   string
	Severity string
	GapType  string
	Limit    int
	Offset   int
}

type MileageGapRepo interface {
	Create(ctx context.Context, tx *gorm.DB, gaps []*types.MileageGap) ([]*types.MileageGap, error)
	GetByIDs(ctx context.Context, tx *gorm.DB, gapIDs []uuid.UUID) ([]*types.MileageGap, error)
	// FindMatch looks up an existing finding for the dedup tuple
	// (userID, gapStartDate, gapEndDate, gapType). Returns nil when absent.
	FindMatch(ctx context.Context, tx *gorm.DB, userID uuid.UUID, gapStartDate, gapEndDate time.Time, gapType string) (*types.MileageGap, error)
	List(ctx context.Context, tx *gorm.DB, userID uuid.UUID, filter GapListFilter) ([]*types.MileageGap, int64, error)
	Update(ctx context.Context, tx *gorm.DB, gap *types.MileageGap) error
	CountOpenByUserID(ctx context.Context, tx *gorm.DB, userID uuid.UUID) (int64, error)
}

type mileageGapRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewMileageGapRepo(db *gorm.DB, baseLog *logger.Logger) MileageGapRepo {
	repoLog := baseLog.With("repo", "MileageGapRepo")
	return &mileageGapRepo{db: db, log: repoLog}
}

func (mgr *mileageGapRepo) Create(ctx context.Context, tx *gorm.DB, gaps []*types.MileageGap) ([]*types.MileageGap, error) {
	transaction := tx
	if transaction == nil {
		transaction = mgr.db
	}

	if len(gaps) == 0 {
		return []*types.MileageGap{}, nil
	}

	if err := transaction.WithContext(ctx).Create(&gaps).Error; err != nil {
		return nil, err
	}
	return gaps, nil
}

func (mgr *mileageGapRepo) GetByIDs(ctx context.Context, tx *gorm.DB, gapIDs []uuid.UUID) ([]*types.MileageGap, error) {
	transaction := tx
	if transaction == nil {
		transaction = mgr.db
	}

	var results []*types.MileageGap
	if len(gapIDs) == 0 {
		return results, nil
	}

	if err := transaction.WithContext(ctx).
		Where("id IN ?", gapIDs).
		Find(&results).Error; err != nil {
		return nil, err
	}
	return results, nil
}

func (mgr *mileageGapRepo) FindMatch(ctx context.Context, tx *gorm.DB, userID uuid.UUID, gapStartDate, gapEndDate time.Time, gapType string) (*types.MileageGap, error) {
	transaction := tx
	if transaction == nil {
		transaction = mgr.db
	}

	var result types.MileageGap
	err := transaction.WithContext(ctx).
		Where("user_id = ? AND gap_start_date = ? AND gap_end_date = ? AND gap_type = ?", userID, gapStartDate, gapEndDate, gapType).
		First(&result).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &result, nil
}

func (mgr *mileageGapRepo) List(ctx context.Context, tx *gorm.DB, userID uuid.UUID, filter GapListFilter) ([]*types.MileageGap, int64, error) {
	transaction := tx
	if transaction == nil {
		transaction = mgr.db
	}

	query := transaction.WithContext(ctx).
		Model(&types.MileageGap{}).
		Where("user_id = ?", userID)
	if filter.Status != "" {
		query = query.Where("status = ?", filter.Status)
	}
	if filter.Severity != "" {
		query = query.Where("severity = ?", filter.Severity)
	}
	if filter.GapType != "" {
		query = query.Where("gap_type = ?", filter.GapType)
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	limit := filter.Limit
	if limit <= 0 {
		limit = 50
	}

	var results []*types.MileageGap
	if err := query.
		Order("created_at DESC").
		Limit(limit).
		Offset(filter.Offset).
		Find(&results).Error; err != nil {
		return nil, 0, err
	}
	return results, total, nil
}

func (mgr *mileageGapRepo) Update(ctx context.Context, tx *gorm.DB, gap *types.MileageGap) error {
	transaction := tx
	if transaction == nil {
		transaction = mgr.db
	}

	if gap == nil {
		return nil
	}
	return transaction.WithContext(ctx).Save(gap).Error
}

func (mgr *mileageGapRepo) CountOpenByUserID(ctx context.Context, tx *gorm.DB, userID uuid.UUID) (int64, error) {
	transaction := tx
	if transaction == nil {
		transaction = mgr.db
	}

	var count int64
	if err := transaction.WithContext(ctx).
		Model(&types.MileageGap{}).
		Where("user_id = ? AND status = ?", userID, types.GapStatusOpen).
		Count(&count).Error; err != nil {
		return 0, err
	}
	return count, nil
}
