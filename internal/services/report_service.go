package services

import (
	"bytes"
	"context"
	"fmt"
	"time"

	"dataclinica/internal/pdf"
	"dataclinica/internal/repositories"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/rs/zerolog/log"
)

// UsageReportResult points at the archived PDF.
type UsageReportResult struct {
	ObjectName  string    `json:"object_name"`
	DownloadURL string    `json:"download_url"`
	GeneratedAt time.Time `json:"generated_at"`
	ExpiresAt   time.Time `json:"expires_at"`
}

type ReportService interface {
	GenerateUsageReport(ctx context.Context, tenantID uuid.UUID, periodStart, periodEnd time.Time) (*UsageReportResult, error)
}

type reportService struct {
	tenantRepo   repositories.TenantRepository
	supplyRepo   repositories.SupplyRepository
	movementRepo repositories.MovementRepository
	minioService MinioService
	generator    *pdf.UsageReportGenerator
	bucket       string
	urlTTL       time.Duration
}

func NewReportService(tenantRepo repositories.TenantRepository, supplyRepo repositories.SupplyRepository, movementRepo repositories.MovementRepository, minioService MinioService, bucket string) ReportService {
	return &reportService{
		tenantRepo:   tenantRepo,
		supplyRepo:   supplyRepo,
		movementRepo: movementRepo,
		minioService: minioService,
		generator:    pdf.NewUsageReportGenerator(),
		bucket:       bucket,
		urlTTL:       24 * time.Hour,
	}
}

// GenerateUsageReport renders the PDF, archives it in object storage, and
// returns a presigned download link.
func (s *reportService) GenerateUsageReport(ctx context.Context, tenantID uuid.UUID, periodStart, periodEnd time.Time) (*UsageReportResult, error) {
	if !periodEnd.After(periodStart) {
		return nil, fmt.Errorf("period end must be after period start: %w", ErrValidation)
	}

	tenant, err := s.tenantRepo.GetByID(ctx, tenantID)
	if err == pgx.ErrNoRows {
		return nil, fmt.Errorf("tenant %s: %w", tenantID, ErrNotFound)
	}
	if err != nil {
		return nil, err
	}

	supplies, err := s.supplyRepo.ListActive(ctx, tenantID)
	if err != nil {
		return nil, err
	}
	stats, err := s.supplyRepo.GetStats(ctx, tenantID)
	if err != nil {
		return nil, err
	}

	windowDays := int(periodEnd.Sub(periodStart).Hours() / 24)
	if windowDays < 1 {
		windowDays = 1
	}

	lines := make([]pdf.UsageReportLine, 0, len(supplies))
	periodTotal := 0
	for _, supply := range supplies {
		// Bounded on both ends: a report for a past month must not count
		// consumption recorded after the period closed.
		total, err := s.movementRepo.TotalConsumedBetween(ctx, tenantID, supply.ID, periodStart, periodEnd)
		if err != nil {
			return nil, err
		}
		periodTotal += total
		lines = append(lines, pdf.UsageReportLine{
			Supply:        supply,
			AvgDailyUsage: float64(total) / float64(windowDays),
			TotalConsumed: total,
			StockStatus:   supply.StockStatus(),
		})
	}
	if periodTotal == 0 {
		return nil, fmt.Errorf("no consumption recorded between %s and %s: %w",
			periodStart.Format("2006-01-02"), periodEnd.Format("2006-01-02"), ErrInsufficientHistory)
	}

	now := time.Now()
	input := &pdf.UsageReportInput{
		Tenant:      tenant,
		Stats:       stats,
		Lines:       lines,
		PeriodStart: periodStart,
		PeriodEnd:   periodEnd,
		GeneratedAt: now,
	}

	doc, err := s.generator.Generate(input)
	if err != nil {
		return nil, err
	}

	objectName := fmt.Sprintf("%s/usage-report-%s.pdf", tenantID.String(), now.Format("20060102-150405"))
	if err := s.minioService.EnsureBucketExists(ctx, s.bucket); err != nil {
		return nil, err
	}
	if err := s.minioService.UploadReport(ctx, s.bucket, objectName, bytes.NewReader(doc), int64(len(doc))); err != nil {
		return nil, err
	}

	url, err := s.minioService.GetPresignedURL(ctx, s.bucket, objectName, s.urlTTL)
	if err != nil {
		// The PDF is archived even when the link fails; report the object name.
		log.Warn().Err(err).Str("object", objectName).Msg("failed to presign report URL")
	}

	return &UsageReportResult{
		ObjectName:  objectName,
		DownloadURL: url,
		GeneratedAt: now,
		ExpiresAt:   now.Add(s.urlTTL),
	}, nil
}
