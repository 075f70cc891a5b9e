package services

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"regexp"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
	pdf "github.com/ledongthuc/pdf"
	"gorm.io/datatypes"
	"gorm.io/gorm"

	"github.com/milesync/milesync-backend/internal/apierr"
	"github.com/milesync/milesync-backend/internal/logger"
	"github.com/milesync/milesync-backend/internal/repos"
	"github.com/milesync/milesync-backend/internal/requestdata"
	"github.com/milesync/milesync-backend/internal/types"
)

type PDFService interface {
	// ProcessUpload extracts candidate trips from a mileage log PDF, imports
	// them as pdf_upload trips and records the upload with its extraction
	// metadata. Gap detection re-runs after a successful import.
	ProcessUpload(ctx context.Context, fileName, mimeType string, data []byte) (*types.UploadedFile, error)
}

type pdfService struct {
	db         *gorm.DB
	log        *logger.Logger
	tripRepo   repos.TripRepo
	uploadRepo repos.UploadedFileRepo
	gapService GapService
}

func NewPDFService(db *gorm.DB, log *logger.Logger, tripRepo repos.TripRepo, uploadRepo repos.UploadedFileRepo, gapService GapService) PDFService {
	serviceLog := log.With("service", "PDFService")
	return &pdfService{
		db:         db,
		log:        serviceLog,
		tripRepo:   tripRepo,
		uploadRepo: uploadRepo,
		gapService: gapService,
	}
}

// tripCandidate is one "date startOdometer endOdometer" line scanned out of
// the PDF text.
type tripCandidate struct {
	Date         time.Time
	StartMileage int
	EndMileage   int
}

var (
	tripLinePattern = regexp.MustCompile(`(?i)(?:trip[:\s]*)?(\d{1,2}/\d{1,2}/\d{2,4})[:\s]+(\d{1,3}(?:,\d{3})*)[:\s]+(\d{1,3}(?:,\d{3})*)`)
	datePatterns    = []*regexp.Regexp{
		regexp.MustCompile(`\d{1,2}/\d{1,2}/\d{2,4}`),
		regexp.MustCompile(`\d{4}-\d{2}-\d{2}`),
	}
	odometerPattern = regexp.MustCompile(`(?i)(?:mileage|odometer|total|distance)[:\s]*(\d{1,3}(?:,\d{3})*)`)
)

func (ps *pdfService) ProcessUpload(ctx context.Context, fileName, mimeType string, data []byte) (*types.UploadedFile, error) {
	rd := requestdata.GetRequestData(ctx)
	if rd == nil || rd.UserID == uuid.Nil {
		return nil, apierr.Unauthorized("request data not set in context")
	}
	if len(data) == 0 {
		return nil, apierr.Validation("empty upload")
	}
	if !isPDF(data) {
		return nil, apierr.Validation("file is not a valid PDF")
	}

	upload := &types.UploadedFile{
		ID:       uuid.New(),
		UserID:   rd.UserID,
		FileName: fileName,
		FileSize: int64(len(data)),
		MimeType: mimeType,
		Status:   types.UploadStatusProcessing,
	}
	if _, err := ps.uploadRepo.Create(ctx, nil, []*types.UploadedFile{upload}); err != nil {
		return nil, apierr.Store(fmt.Errorf("error recording upload: %w", err))
	}

	text, err := extractPDFText(data)
	if err != nil || strings.TrimSpace(text) == "" {
		if err == nil {
			err = fmt.Errorf("no text content found in PDF")
		}
		ps.failUpload(ctx, upload, err)
		return nil, apierr.Validation("could not extract text from PDF: %s", err.Error())
	}

	candidates := extractTripCandidates(text)
	dates := extractDates(text)
	readings := extractOdometerReadings(text)

	trips := make([]*types.Trip, 0, len(candidates))
	for _, candidate := range candidates {
		trips = append(trips, &types.Trip{
			ID:           uuid.New(),
			UserID:       rd.UserID,
			StartDate:    candidate.Date,
			EndDate:      candidate.Date,
			StartMileage: candidate.StartMileage,
			EndMileage:   candidate.EndMileage,
			TotalMiles:   candidate.EndMileage - candidate.StartMileage,
			Purpose:      types.TripPurposeBusiness,
			Source:       types.TripSourcePDFUpload,
			SourceFile:   fileName,
		})
	}
	if len(trips) > 0 {
		if _, err := ps.tripRepo.Create(ctx, nil, trips); err != nil {
			ps.failUpload(ctx, upload, err)
			return nil, apierr.Store(fmt.Errorf("error importing extracted trips: %w", err))
		}
	}

	meta, _ := json.Marshal(map[string]interface{}{
		"text_length":       len(text),
		"dates_found":       len(dates),
		"odometer_readings": readings,
		"trips_extracted":   len(trips),
	})
	upload.Status = types.UploadStatusProcessed
	upload.TripsCreated = len(trips)
	upload.Extraction = datatypes.JSON(meta)
	if err := ps.uploadRepo.Update(ctx, nil, upload); err != nil {
		ps.log.Warn("Error updating upload record", "error", err)
	}

	if len(trips) > 0 && ps.gapService != nil {
		if _, err := ps.gapService.DetectGaps(ctx, rd.UserID, nil, nil); err != nil {
			ps.log.Warn("Gap detection after PDF import failed", "user_id", rd.UserID, "error", err)
		}
	}

	ps.log.Info("PDF processed", "user_id", rd.UserID, "file", fileName, "trips_created", len(trips))
	return upload, nil
}

func (ps *pdfService) failUpload(ctx context.Context, upload *types.UploadedFile, cause error) {
	upload.Status = types.UploadStatusFailed
	upload.ErrorMessage = cause.Error()
	if err := ps.uploadRepo.Update(ctx, nil, upload); err != nil {
		ps.log.Warn("Error marking upload failed", "error", err)
	}
}

func isPDF(data []byte) bool {
	return bytes.HasPrefix(data, []byte("%PDF"))
}

func extractPDFText(data []byte) (string, error) {
	r, err := pdf.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return "", fmt.Errorf("pdf reader: %w", err)
	}
	plain, err := r.GetPlainText()
	if err != nil {
		return "", fmt.Errorf("pdf plaintext: %w", err)
	}
	b, err := io.ReadAll(plain)
	if err != nil {
		return "", fmt.Errorf("pdf read: %w", err)
	}
	return string(b), nil
}

func extractTripCandidates(text string) []tripCandidate {
	seen := make(map[string]struct{})
	var candidates []tripCandidate
	for _, match := range tripLinePattern.FindAllStringSubmatch(text, -1) {
		date, ok := parseLooseDate(match[1])
		if !ok {
			continue
		}
		startMileage, sErr := parseMileage(match[2])
		endMileage, eErr := parseMileage(match[3])
		if sErr != nil || eErr != nil || endMileage <= startMileage {
			continue
		}
		key := fmt.Sprintf("%s|%d|%d", date.Format("2006-01-02"), startMileage, endMileage)
		if _, dup := seen[key]; dup {
			continue
		}
		seen[key] = struct{}{}
		candidates = append(candidates, tripCandidate{Date: date, StartMileage: startMileage, EndMileage: endMileage})
	}
	sort.Slice(candidates, func(i, j int) bool {
		return candidates[i].Date.Before(candidates[j].Date)
	})
	return candidates
}

func extractDates(text string) []time.Time {
	seen := make(map[time.Time]struct{})
	var dates []time.Time
	for _, pattern := range datePatterns {
		for _, match := range pattern.FindAllString(text, -1) {
			if date, ok := parseLooseDate(match); ok {
				if _, dup := seen[date]; dup {
					continue
				}
				seen[date] = struct{}{}
				dates = append(dates, date)
			}
		}
	}
	sort.Slice(dates, func(i, j int) bool { return dates[i].Before(dates[j]) })
	return dates
}

func extractOdometerReadings(text string) []int {
	seen := make(map[int]struct{})
	var readings []int
	for _, match := range odometerPattern.FindAllStringSubmatch(text, -1) {
		value, err := parseMileage(match[1])
		if err != nil || value <= 0 || value >= 1000000 {
			continue
		}
		if _, dup := seen[value]; dup {
			continue
		}
		seen[value] = struct{}{}
		readings = append(readings, value)
	}
	sort.Ints(readings)
	return readings
}

func parseMileage(raw string) (int, error) {
	return strconv.Atoi(strings.ReplaceAll(raw, ",", ""))
}

func parseLooseDate(raw string) (time.Time, bool) {
	formats := []string{"1/2/2006", "01/02/2006", "1/2/06", "2006-01-02"}
	for _, format := range formats {
		if date, err := time.Parse(format, raw); err == nil {
			if date.Year() >= 2000 && date.Year() <= time.Now().Year()+1 {
				return date, true
			}
		}
	}
	return time.Time{}, false
}
