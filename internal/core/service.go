package core

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"path/filepath"
	"strings"
	"time"

	"github.com/JonMunkholm/reorganizer/internal/events"
	"github.com/JonMunkholm/reorganizer/internal/logging"
	"github.com/JonMunkholm/reorganizer/internal/telemetry"
	"github.com/google/uuid"
)

const (
	// DefaultMaxFileSize is the largest accepted upload (50MB).
	DefaultMaxFileSize int64 = 50 << 20

	// DefaultProcessTimeout bounds one process or preview call.
	DefaultProcessTimeout = 2 * time.Minute

	// DefaultPreviewRows is how many transformed rows a preview returns.
	DefaultPreviewRows = 50

	// DefaultListLimit is the page size for campaign listings.
	DefaultListLimit = 100
)

// CampaignStore persists campaigns.
//
// Create returns ErrCampaignExists for a duplicate name. Get, Update and
// Delete return ErrCampaignNotFound for an unknown id.
type CampaignStore interface {
	Create(ctx context.Context, c Campaign) (Campaign, error)
	List(ctx context.Context, skip, limit int) ([]Campaign, error)
	Get(ctx context.Context, id uuid.UUID) (Campaign, error)
	Update(ctx context.Context, c Campaign) (Campaign, error)
	Delete(ctx context.Context, id uuid.UUID) error
}

// Service provides campaign management and file processing.
type Service struct {
	store     CampaignStore
	limiter   *UploadLimiter
	metrics   *telemetry.Metrics
	publisher events.Publisher
	now       func() time.Time

	maxFileSize int64
	timeout     time.Duration
	previewRows int
}

// Option configures a Service.
type Option func(*Service)

// WithLimiter sets the concurrency limiter shared by process and preview calls.
func WithLimiter(l *UploadLimiter) Option {
	return func(s *Service) { s.limiter = l }
}

// WithMaxFileSize sets the upload size limit in bytes.
func WithMaxFileSize(n int64) Option {
	return func(s *Service) {
		if n > 0 {
			s.maxFileSize = n
		}
	}
}

// WithTimeout bounds each process or preview call.
func WithTimeout(d time.Duration) Option {
	return func(s *Service) {
		if d > 0 {
			s.timeout = d
		}
	}
}

// WithPreviewRows sets the default preview length.
func WithPreviewRows(n int) Option {
	return func(s *Service) {
		if n > 0 {
			s.previewRows = n
		}
	}
}

// WithMetrics records per-file outcomes on m.
func WithMetrics(m *telemetry.Metrics) Option {
	return func(s *Service) { s.metrics = m }
}

// WithPublisher announces processed files on p.
func WithPublisher(p events.Publisher) Option {
	return func(s *Service) {
		if p != nil {
			s.publisher = p
		}
	}
}

// WithClock overrides time.Now.
func WithClock(now func() time.Time) Option {
	return func(s *Service) { s.now = now }
}

// NewService creates a Service backed by store.
func NewService(store CampaignStore, opts ...Option) *Service {
	s := &Service{
		store:       store,
		publisher:   events.Nop{},
		now:         time.Now,
		maxFileSize: DefaultMaxFileSize,
		timeout:     DefaultProcessTimeout,
		previewRows: DefaultPreviewRows,
	}
	for _, opt := range opts {
		opt(s)
	}
	if s.limiter == nil {
		s.limiter = NewUploadLimiter(DefaultMaxConcurrentUploads, DefaultMaxWaitTime)
	}
	return s
}

// ProcessResult is a transformed file ready for download.
type ProcessResult struct {
	Campaign   Campaign
	FileName   string
	OutputName string
	Data       []byte
	Stats      TransformStats
	Duration   time.Duration
}

// PreviewResult holds the head of a transformed file.
type PreviewResult struct {
	CampaignID   uuid.UUID      `json:"campaign_id"`
	CampaignName string         `json:"campaign_name"`
	FileName     string         `json:"file_name"`
	OutputName   string         `json:"output_name"`
	Columns      []string       `json:"columns"`
	Rows         [][]string     `json:"rows"`
	TotalRows    int            `json:"total_rows"`
	Truncated    bool           `json:"truncated"`
	Stats        TransformStats `json:"stats"`
}

type transformJob struct {
	out   *Table
	stats TransformStats
	data  []byte
}

// ProcessFile transforms the uploaded file with the campaign's configuration
// and returns the serialized result.
func (s *Service) ProcessFile(ctx context.Context, campaignID uuid.UUID, fileName string, r io.Reader) (ProcessResult, error) {
	start := s.now()
	logger := logging.WithFields(ctx, "campaign_id", campaignID.String(), "file", fileName)

	campaign, job, err := s.run(ctx, campaignID, fileName, r, true)
	elapsed := s.now().Sub(start)
	s.metrics.ObserveFile(outcomeFor(err), job.stats.Rows, job.stats.RulesApplied, job.stats.RulesSkipped, elapsed)
	if err != nil {
		logger.Warn("file processing failed", "error", err, "duration_ms", elapsed.Milliseconds())
		return ProcessResult{}, err
	}

	res := ProcessResult{
		Campaign:   campaign,
		FileName:   fileName,
		OutputName: campaign.OutputFilename(fileName, start),
		Data:       job.data,
		Stats:      job.stats,
		Duration:   elapsed,
	}

	logger.Info("file processed",
		"campaign", campaign.Name,
		"rows", res.Stats.Rows,
		"columns", res.Stats.Columns,
		"rules_applied", res.Stats.RulesApplied,
		"rules_skipped", res.Stats.RulesSkipped,
		"duration_ms", elapsed.Milliseconds(),
	)

	event := events.FileProcessed{
		CampaignID:   campaign.ID.String(),
		CampaignName: campaign.Name,
		FileName:     fileName,
		OutputName:   res.OutputName,
		Rows:         res.Stats.Rows,
		Columns:      res.Stats.Columns,
		RulesApplied: res.Stats.RulesApplied,
		RulesSkipped: res.Stats.RulesSkipped,
		DurationMS:   elapsed.Milliseconds(),
		ClientIP:     ClientIPFromContext(ctx),
		UserAgent:    UserAgentFromContext(ctx),
		ProcessedAt:  start.UTC(),
	}
	if err := s.publisher.PublishFileProcessed(ctx, event); err != nil {
		logger.Warn("publish file processed event", "error", err)
	}

	return res, nil
}

// Preview transforms the uploaded file and returns at most limit rows.
// A non-positive limit uses the configured default.
func (s *Service) Preview(ctx context.Context, campaignID uuid.UUID, fileName string, r io.Reader, limit int) (PreviewResult, error) {
	if limit <= 0 {
		limit = s.previewRows
	}

	campaign, job, err := s.run(ctx, campaignID, fileName, r, false)
	if err != nil {
		logging.WithFields(ctx, "campaign_id", campaignID.String(), "file", fileName).
			Debug("preview failed", "error", err)
		return PreviewResult{}, err
	}

	n := min(limit, job.out.RowCount())
	rows := make([][]string, n)
	for i := range n {
		rows[i] = job.out.Row(i)
	}

	return PreviewResult{
		CampaignID:   campaign.ID,
		CampaignName: campaign.Name,
		FileName:     fileName,
		OutputName:   campaign.OutputFilename(fileName, s.now()),
		Columns:      job.out.Columns(),
		Rows:         rows,
		TotalRows:    job.out.RowCount(),
		Truncated:    job.out.RowCount() > n,
		Stats:        job.stats,
	}, nil
}

// run checks the upload, looks up the campaign and transforms the file while
// holding a limiter slot. The transform runs in its own goroutine so the call
// returns as soon as ctx or the timeout expires; the slot is released when
// the work actually finishes.
func (s *Service) run(ctx context.Context, campaignID uuid.UUID, fileName string, r io.Reader, serialize bool) (Campaign, transformJob, error) {
	if !strings.EqualFold(filepath.Ext(fileName), ".csv") {
		return Campaign{}, transformJob{}, ErrInvalidFileType
	}

	campaign, err := s.store.Get(ctx, campaignID)
	if err != nil {
		return Campaign{}, transformJob{}, fmt.Errorf("load campaign: %w", err)
	}

	raw, err := s.readUpload(r)
	if err != nil {
		return Campaign{}, transformJob{}, err
	}

	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	release, err := s.limiter.Acquire(ctx)
	if err != nil {
		return Campaign{}, transformJob{}, err
	}

	type result struct {
		job transformJob
		err error
	}
	done := make(chan result, 1)
	cfg := campaign.Config()

	go func() {
		defer release()
		var res result
		res.err = func() error {
			t, err := ParseBytes(raw)
			if err != nil {
				return err
			}
			out, stats, err := TransformWithStats(t, cfg)
			if err != nil {
				return err
			}
			res.job = transformJob{out: out, stats: stats}
			if serialize {
				if res.job.data, err = out.Bytes(); err != nil {
					return fmt.Errorf("serialize output: %w", err)
				}
			}
			return nil
		}()
		done <- res
	}()

	select {
	case res := <-done:
		return campaign, res.job, res.err
	case <-ctx.Done():
		return Campaign{}, transformJob{}, ctx.Err()
	}
}

// readUpload reads at most maxFileSize bytes.
func (s *Service) readUpload(r io.Reader) ([]byte, error) {
	raw, err := io.ReadAll(io.LimitReader(r, s.maxFileSize+1))
	if err != nil {
		return nil, fmt.Errorf("read upload: %w", err)
	}
	if int64(len(raw)) > s.maxFileSize {
		return nil, fmt.Errorf("%w: limit is %d bytes", ErrFileTooLarge, s.maxFileSize)
	}
	if len(bytes.TrimSpace(raw)) == 0 {
		return nil, ErrEmptyFile
	}
	return raw, nil
}

func outcomeFor(err error) string {
	var parseErr *ParseError
	var valErr *ValidationError
	switch {
	case err == nil:
		return telemetry.OutcomeOK
	case errors.As(err, &parseErr):
		return telemetry.OutcomeParseError
	case errors.As(err, &valErr):
		return telemetry.OutcomeValidation
	case errors.Is(err, ErrInvalidFileType),
		errors.Is(err, ErrFileTooLarge),
		errors.Is(err, ErrEmptyFile),
		errors.Is(err, ErrTooManyUploads),
		errors.Is(err, ErrCampaignNotFound):
		return telemetry.OutcomeRejected
	default:
		return telemetry.OutcomeServerError
	}
}

// CreateCampaign validates c, assigns it an id and stores it.
func (s *Service) CreateCampaign(ctx context.Context, c Campaign) (Campaign, error) {
	c.Name = strings.TrimSpace(c.Name)
	if err := c.Validate(); err != nil {
		return Campaign{}, err
	}

	now := s.now().UTC()
	c.ID = uuid.New()
	c.CreatedAt = now
	c.UpdatedAt = now

	created, err := s.store.Create(ctx, c)
	if err != nil {
		return Campaign{}, fmt.Errorf("create campaign %q: %w", c.Name, err)
	}
	logging.FromContext(ctx).Info("campaign created", "campaign_id", created.ID.String(), "campaign", created.Name)
	return created, nil
}

// ListCampaigns returns a page of campaigns. A non-positive or oversized
// limit uses DefaultListLimit.
func (s *Service) ListCampaigns(ctx context.Context, skip, limit int) ([]Campaign, error) {
	if skip < 0 {
		skip = 0
	}
	if limit <= 0 || limit > DefaultListLimit {
		limit = DefaultListLimit
	}
	campaigns, err := s.store.List(ctx, skip, limit)
	if err != nil {
		return nil, fmt.Errorf("list campaigns: %w", err)
	}
	return campaigns, nil
}

// GetCampaign returns one campaign.
func (s *Service) GetCampaign(ctx context.Context, id uuid.UUID) (Campaign, error) {
	c, err := s.store.Get(ctx, id)
	if err != nil {
		return Campaign{}, fmt.Errorf("get campaign %s: %w", id, err)
	}
	return c, nil
}

// UpdateCampaign replaces the stored campaign id with c.
func (s *Service) UpdateCampaign(ctx context.Context, id uuid.UUID, c Campaign) (Campaign, error) {
	c.Name = strings.TrimSpace(c.Name)
	if err := c.Validate(); err != nil {
		return Campaign{}, err
	}

	c.ID = id
	c.UpdatedAt = s.now().UTC()

	updated, err := s.store.Update(ctx, c)
	if err != nil {
		return Campaign{}, fmt.Errorf("update campaign %s: %w", id, err)
	}
	logging.FromContext(ctx).Info("campaign updated", "campaign_id", id.String(), "campaign", updated.Name)
	return updated, nil
}

// DeleteCampaign removes a campaign.
func (s *Service) DeleteCampaign(ctx context.Context, id uuid.UUID) error {
	if err := s.store.Delete(ctx, id); err != nil {
		return fmt.Errorf("delete campaign %s: %w", id, err)
	}
	logging.FromContext(ctx).Info("campaign deleted", "campaign_id", id.String())
	return nil
}

// LimiterStatus reports processing slot usage.
func (s *Service) LimiterStatus() LimiterStatus {
	return s.limiter.Status()
}

// WaitForUploads blocks until in-flight files finish or ctx is done.
func (s *Service) WaitForUploads(ctx context.Context) error {
	return s.limiter.WaitForDrain(ctx)
}
