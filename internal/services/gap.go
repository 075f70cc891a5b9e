package services

import (
	"context"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/bsm/redislock"
	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/milesync/milesync-backend/internal/apierr"
	"github.com/milesync/milesync-backend/internal/gapdetect"
	"github.com/milesync/milesync-backend/internal/logger"
	"github.com/milesync/milesync-backend/internal/repos"
	"github.com/milesync/milesync-backend/internal/types"
)

const detectionLockTTL = 30 * time.Second

type DetectionResult struct {
	Gaps    []*types.MileageGap `json:"gaps"`
	Summary gapdetect.Summary   `json:"summary"`
}

type GapService interface {
	// DetectGaps loads the user's trips (optionally bounded by start date),
	// classifies anomalies and persists findings not already recorded for
	// the same (user, range, type) tuple. Re-running over an unchanged trip
	// set persists nothing new.
	DetectGaps(ctx context.Context, userID uuid.UUID, startDate, endDate *time.Time) (*DetectionResult, error)
	ListGaps(ctx context.Context, userID uuid.UUID, filter repos.GapListFilter) ([]*types.MileageGap, int64, error)
	ResolveGap(ctx context.Context, userID, gapID uuid.UUID, resolutionNotes string, resolvedBy uuid.UUID) (*types.MileageGap, error)
}

type gapService struct {
	db         *gorm.DB
	log        *logger.Logger
	tripRepo   repos.TripRepo
	gapRepo    repos.MileageGapRepo
	locker     *redislock.Client
	thresholds gapdetect.Thresholds
}

// NewGapService wires the detection engine to its persistence boundary. The
// locker is optional: without it, concurrent runs for the same user may race
// the check-then-insert and rely on the dedup unique index instead.
func NewGapService(
	db *gorm.DB,
	log *logger.Logger,
	tripRepo repos.TripRepo,
	gapRepo repos.MileageGapRepo,
	locker *redislock.Client,
	thresholds gapdetect.Thresholds,
) GapService {
	serviceLog := log.With("service", "GapService")
	return &gapService{
		db:         db,
		log:        serviceLog,
		tripRepo:   tripRepo,
		gapRepo:    gapRepo,
		locker:     locker,
		thresholds: thresholds,
	}
}

func (gs *gapService) DetectGaps(ctx context.Context, userID uuid.UUID, startDate, endDate *time.Time) (*DetectionResult, error) {
	if userID == uuid.Nil {
		return nil, apierr.Validation("user id is required")
	}

	if gs.locker != nil {
		lockKey := fmt.Sprintf("gap_detect:%s", userID)
		lock, err := gs.locker.Obtain(ctx, lockKey, detectionLockTTL, nil)
		if err == redislock.ErrNotObtained {
			return nil, apierr.New(http.StatusConflict, apierr.CodeValidation, fmt.Errorf("gap detection already running for this user"))
		} else if err != nil {
			return nil, fmt.Errorf("error obtaining detection lock: %w", err)
		}
		defer func() {
			_ = lock.Release(ctx)
		}()
	}

	trips, err := gs.tripRepo.GetByUserID(ctx, nil, userID, startDate, endDate)
	if err != nil {
		return nil, apierr.Store(fmt.Errorf("error loading trips: %w", err))
	}
	if len(trips) == 0 {
		gs.log.Info("No trips found for user", "user_id", userID)
		return &DetectionResult{Gaps: []*types.MileageGap{}, Summary: gapdetect.Summarize(nil)}, nil
	}

	candidates := gapdetect.Detect(userID, trips, gs.thresholds)
	saved := gs.persistNew(ctx, candidates)

	gs.log.Info("Gap detection completed", "user_id", userID, "candidates", len(candidates), "persisted", len(saved))
	return &DetectionResult{Gaps: saved, Summary: gapdetect.Summarize(saved)}, nil
}

// persistNew writes candidates that have no existing match. A failure on one
// candidate is logged and skipped so the rest of the batch still persists.
func (gs *gapService) persistNew(ctx context.Context, candidates []*types.MileageGap) []*types.MileageGap {
	saved := make([]*types.MileageGap, 0, len(candidates))
	for _, candidate := range candidates {
		existing, err := gs.gapRepo.FindMatch(ctx, nil, candidate.UserID, candidate.GapStartDate, candidate.GapEndDate, candidate.GapType)
		if err != nil {
			gs.log.Warn("Error checking for existing gap, skipping candidate", "gap_type", candidate.GapType, "error", err)
			continue
		}
		if existing != nil {
			continue
		}
		candidate.ID = uuid.New()
		if _, err := gs.gapRepo.Create(ctx, nil, []*types.MileageGap{candidate}); err != nil {
			gs.log.Warn("Error saving gap, skipping candidate", "gap_type", candidate.GapType, "error", err)
			continue
		}
		saved = append(saved, candidate)
	}
	return saved
}

func (gs *gapService) ListGaps(ctx context.Context, userID uuid.UUID, filter repos.GapListFilter) ([]*types.MileageGap, int64, error) {
	if userID == uuid.Nil {
		return nil, 0, apierr.Validation("user id is required")
	}
	gaps, total, err := gs.gapRepo.List(ctx, nil, userID, filter)
	if err != nil {
		return nil, 0, apierr.Store(fmt.Errorf("error listing gaps: %w", err))
	}
	return gaps, total, nil
}

func (gs *gapService) ResolveGap(ctx context.Context, userID, gapID uuid.UUID, resolutionNotes string, resolvedBy uuid.UUID) (*types.MileageGap, error) {
	if strings.TrimSpace(resolutionNotes) == "" {
		return nil, apierr.Validation("resolution notes are required")
	}
	if resolvedBy == uuid.Nil {
		return nil, apierr.Validation("resolver identity is required")
	}

	found, err := gs.gapRepo.GetByIDs(ctx, nil, []uuid.UUID{gapID})
	if err != nil {
		return nil, apierr.Store(fmt.Errorf("error loading gap: %w", err))
	}
	if len(found) == 0 || found[0] == nil {
		return nil, apierr.NotFound("gap not found")
	}
	gap := found[0]
	if userID != uuid.Nil && gap.UserID != userID {
		return nil, apierr.NotFound("gap not found")
	}

	now := time.Now()
	gap.Status = types.GapStatusResolved
	gap.ResolvedAt = &now
	gap.ResolvedBy = &resolvedBy
	gap.ResolutionNotes = resolutionNotes
	if err := gs.gapRepo.Update(ctx, nil, gap); err != nil {
		return nil, apierr.Store(fmt.Errorf("error resolving gap: %w", err))
	}

	gs.log.Info("Gap resolved", "gap_id", gap.ID, "resolved_by", resolvedBy)
	return gap, nil
}
