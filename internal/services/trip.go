package services

import (
	"context"
	"fmt"
	"math"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/milesync/milesync-backend/internal/apierr"
	"github.com/milesync/milesync-backend/internal/logger"
	"github.com/milesync/milesync-backend/internal/repos"
	"github.com/milesync/milesync-backend/internal/requestdata"
	"github.com/milesync/milesync-backend/internal/types"
)

// TripInput carries the user-editable trip fields for create and update.
type TripInput struct {
	StartDate     time.Time `json:"start_date"`
	EndDate       time.Time `json:"end_date"`
	StartMileage  int       `json:"start_mileage"`
	EndMileage    int       `json:"end_mileage"`
	StartLocation string    `json:"start_location"`
	EndLocation   string    `json:"end_location"`
	Purpose       string    `json:"purpose"`
	BusinessMiles int       `json:"business_miles"`
	PersonalMiles int       `json:"personal_miles"`
	Notes         string    `json:"notes"`
}

type MileageSummary struct {
	TotalTrips        int            `json:"total_trips"`
	TotalMiles        int            `json:"total_miles"`
	BusinessMiles     int            `json:"business_miles"`
	PersonalMiles     int            `json:"personal_miles"`
	ByPurpose         map[string]int `json:"by_purpose"`
	AverageDailyMiles int            `json:"average_daily_miles"`
	OpenGaps          int64          `json:"open_gaps"`
}

type TripService interface {
	CreateTrip(ctx context.Context, input TripInput) (*types.Trip, error)
	UpdateTrip(ctx context.Context, tripID uuid.UUID, input TripInput) (*types.Trip, error)
	DeleteTrip(ctx context.Context, tripID uuid.UUID) error
	ListTrips(ctx context.Context, filter repos.TripListFilter) ([]*types.Trip, int64, error)
	GetSummary(ctx context.Context, startDate, endDate *time.Time) (*MileageSummary, error)
}

type tripService struct {
	db         *gorm.DB
	log        *logger.Logger
	tripRepo   repos.TripRepo
	gapRepo    repos.MileageGapRepo
	gapService GapService
}

func NewTripService(db *gorm.DB, log *logger.Logger, tripRepo repos.TripRepo, gapRepo repos.MileageGapRepo, gapService GapService) TripService {
	serviceLog := log.With("service", "TripService")
	return &tripService{
		db:         db,
		log:        serviceLog,
		tripRepo:   tripRepo,
		gapRepo:    gapRepo,
		gapService: gapService,
	}
}

func validateTripInput(input TripInput) error {
	if input.StartDate.IsZero() || input.EndDate.IsZero() {
		return apierr.Validation("start date and end date are required")
	}
	if input.EndDate.Before(input.StartDate) {
		return apierr.Validation("end date cannot be before start date")
	}
	if input.StartMileage < 0 || input.EndMileage < 0 {
		return apierr.Validation("mileage values cannot be negative")
	}
	if input.EndMileage <= input.StartMileage {
		return apierr.Validation("end mileage must be greater than start mileage")
	}
	switch input.Purpose {
	case "", types.TripPurposeBusiness, types.TripPurposePersonal, types.TripPurposeMixed:
	default:
		return apierr.Validation("purpose must be business, personal or mixed")
	}
	return nil
}

func applyTripInput(trip *types.Trip, input TripInput) {
	trip.StartDate = input.StartDate
	trip.EndDate = input.EndDate
	trip.StartMileage = input.StartMileage
	trip.EndMileage = input.EndMileage
	trip.TotalMiles = input.EndMileage - input.StartMileage
	trip.StartLocation = input.StartLocation
	trip.EndLocation = input.EndLocation
	trip.Purpose = input.Purpose
	if trip.Purpose == "" {
		trip.Purpose = types.TripPurposeBusiness
	}
	trip.BusinessMiles = input.BusinessMiles
	trip.PersonalMiles = input.PersonalMiles
	trip.Notes = input.Notes
}

func (ts *tripService) CreateTrip(ctx context.Context, input TripInput) (*types.Trip, error) {
	rd := requestdata.GetRequestData(ctx)
	if rd == nil || rd.UserID == uuid.Nil {
		return nil, apierr.Unauthorized("request data not set in context")
	}
	if err := validateTripInput(input); err != nil {
		return nil, err
	}

	trip := &types.Trip{
		ID:     uuid.New(),
		UserID: rd.UserID,
		Source: types.TripSourceManual,
	}
	applyTripInput(trip, input)

	if _, err := ts.tripRepo.Create(ctx, nil, []*types.Trip{trip}); err != nil {
		return nil, apierr.Store(fmt.Errorf("error creating trip: %w", err))
	}

	ts.rerunDetection(ctx, rd.UserID)
	ts.log.Info("Trip created", "user_id", rd.UserID, "trip_id", trip.ID)
	return trip, nil
}

func (ts *tripService) UpdateTrip(ctx context.Context, tripID uuid.UUID, input TripInput) (*types.Trip, error) {
	rd := requestdata.GetRequestData(ctx)
	if rd == nil || rd.UserID == uuid.Nil {
		return nil, apierr.Unauthorized("request data not set in context")
	}
	if err := validateTripInput(input); err != nil {
		return nil, err
	}

	trip, err := ts.ownedTrip(ctx, rd.UserID, tripID)
	if err != nil {
		return nil, err
	}
	applyTripInput(trip, input)

	if err := ts.tripRepo.Update(ctx, nil, trip); err != nil {
		return nil, apierr.Store(fmt.Errorf("error updating trip: %w", err))
	}

	ts.rerunDetection(ctx, rd.UserID)
	ts.log.Info("Trip updated", "user_id", rd.UserID, "trip_id", trip.ID)
	return trip, nil
}

func (ts *tripService) DeleteTrip(ctx context.Context, tripID uuid.UUID) error {
	rd := requestdata.GetRequestData(ctx)
	if rd == nil || rd.UserID == uuid.Nil {
		return apierr.Unauthorized("request data not set in context")
	}

	trip, err := ts.ownedTrip(ctx, rd.UserID, tripID)
	if err != nil {
		return err
	}
	if err := ts.tripRepo.FullDeleteByIDs(ctx, nil, []uuid.UUID{trip.ID}); err != nil {
		return apierr.Store(fmt.Errorf("error deleting trip: %w", err))
	}

	ts.rerunDetection(ctx, rd.UserID)
	ts.log.Info("Trip deleted", "user_id", rd.UserID, "trip_id", tripID)
	return nil
}

func (ts *tripService) ListTrips(ctx context.Context, filter repos.TripListFilter) ([]*types.Trip, int64, error) {
	rd := requestdata.GetRequestData(ctx)
	if rd == nil || rd.UserID == uuid.Nil {
		return nil, 0, apierr.Unauthorized("request data not set in context")
	}
	trips, total, err := ts.tripRepo.List(ctx, nil, rd.UserID, filter)
	if err != nil {
		return nil, 0, apierr.Store(fmt.Errorf("error listing trips: %w", err))
	}
	return trips, total, nil
}

func (ts *tripService) GetSummary(ctx context.Context, startDate, endDate *time.Time) (*MileageSummary, error) {
	rd := requestdata.GetRequestData(ctx)
	if rd == nil || rd.UserID == uuid.Nil {
		return nil, apierr.Unauthorized("request data not set in context")
	}

	trips, err := ts.tripRepo.GetByUserID(ctx, nil, rd.UserID, startDate, endDate)
	if err != nil {
		return nil, apierr.Store(fmt.Errorf("error loading trips: %w", err))
	}

	summary := &MileageSummary{
		TotalTrips: len(trips),
		ByPurpose: map[string]int{
			types.TripPurposeBusiness: 0,
			types.TripPurposePersonal: 0,
			types.TripPurposeMixed:    0,
		},
	}
	for _, trip := range trips {
		summary.TotalMiles += trip.TotalMiles
		summary.BusinessMiles += trip.BusinessMiles
		summary.PersonalMiles += trip.PersonalMiles
		if _, ok := summary.ByPurpose[trip.Purpose]; ok {
			summary.ByPurpose[trip.Purpose]++
		}
	}
	if len(trips) > 0 {
		summary.AverageDailyMiles = int(math.Round(float64(summary.TotalMiles) / float64(len(trips))))
	}

	openGaps, err := ts.gapRepo.CountOpenByUserID(ctx, nil, rd.UserID)
	if err != nil {
		return nil, apierr.Store(fmt.Errorf("error counting open gaps: %w", err))
	}
	summary.OpenGaps = openGaps
	return summary, nil
}

func (ts *tripService) ownedTrip(ctx context.Context, userID, tripID uuid.UUID) (*types.Trip, error) {
	found, err := ts.tripRepo.GetByIDs(ctx, nil, []uuid.UUID{tripID})
	if err != nil {
		return nil, apierr.Store(fmt.Errorf("error loading trip: %w", err))
	}
	if len(found) == 0 || found[0] == nil || found[0].UserID != userID {
		return nil, apierr.NotFound("trip not found")
	}
	return found[0], nil
}

// rerunDetection refreshes gap findings after a trip mutation. Detection
// failures never fail the mutation that triggered them.
func (ts *tripService) rerunDetection(ctx context.Context, userID uuid.UUID) {
	if ts.gapService == nil {
		return
	}
	if _, err := ts.gapService.DetectGaps(ctx, userID, nil, nil); err != nil {
		ts.log.Warn("Gap detection after trip mutation failed", "user_id", userID, "error", err)
	}
}
