package reports

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"path"
	"strings"
	"time"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"github.com/bryanwahyu/rxscan/internal/application"
	appai "github.com/bryanwahyu/rxscan/internal/application/ai"
	domai "github.com/bryanwahyu/rxscan/internal/domain/ai"
	"github.com/bryanwahyu/rxscan/internal/domain/failures"
	domain "github.com/bryanwahyu/rxscan/internal/domain/reports"
	"github.com/bryanwahyu/rxscan/internal/domain/substances"
)

// Fallback summaries shown instead of model output.
const (
	SummaryNoSubstances = "No se encontraron sustancias conocidas para generar un resumen."
	SummaryFailed       = "Hubo un error al generar el resumen de riesgos."
)

// Recorder receives one observation per finished analysis.
type Recorder interface {
	ObserveAnalysis(outcome string, d time.Duration)
}

// Service implements the upload analysis use-case:
// OCR -> name extraction -> catalog classification -> risk summary.
// Archive, Failures, Recorder and Logger are optional.
type Service struct {
	Catalog  substances.Repository
	OCR      domain.TextExtractor
	AI       *appai.Service
	Archive  domain.Archive
	Failures failures.Repository
	Recorder Recorder
	Clock    application.Clock
	Logger   *slog.Logger
}

// Analyze runs the full pipeline for one uploaded image.
func (s *Service) Analyze(ctx context.Context, up domain.Upload) (*domain.Report, error) {
	start := s.now()
	id := uuid.NewString()
	log := s.logger().With("analysis_id", id, "filename", up.Filename)

	report, err := s.analyze(ctx, log, id, up, start)
	outcome := "success"
	if err != nil {
		outcome = "error"
		log.Error("analysis failed", "error", err)
	} else {
		log.Info("analysis finished",
			"known", len(report.Known),
			"unknown", len(report.Unknown),
			"duration", s.now().Sub(start))
	}
	if s.Recorder != nil {
		s.Recorder.ObserveAnalysis(outcome, s.now().Sub(start))
	}
	return report, err
}

func (s *Service) analyze(ctx context.Context, log *slog.Logger, id string, up domain.Upload, start time.Time) (*domain.Report, error) {
	items, err := s.Catalog.List(ctx)
	if err == nil && len(items) == 0 {
		err = errors.New("no rows")
	}
	if err != nil {
		s.recordFailure(ctx, id, up.Filename, failures.PhaseCatalog, err)
		return nil, fmt.Errorf("%w: %v", domain.ErrCatalogUnavailable, err)
	}
	idx := NewIndex(items)
	prefix := archivePrefix(start, id)

	var text string
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		// ctx, not gctx: an OCR failure must not abort the archive upload.
		s.archive(ctx, log, id, up.Filename, path.Join(prefix, safeName(up.Filename)), up.Data, up.ContentType)
		return nil
	})
	g.Go(func() error {
		log.Info("extracting text")
		t, err := s.OCR.ExtractText(gctx, up.Data)
		if err != nil {
			return fmt.Errorf("ocr: %w", err)
		}
		text = t
		return nil
	})
	if err := g.Wait(); err != nil {
		s.recordFailure(ctx, id, up.Filename, failures.PhaseOCR, err)
		return nil, err
	}

	names, err := s.AI.ExtractSubstances(ctx, text)
	switch {
	case err == nil:
	case errors.Is(err, domai.ErrNotConfigured):
		log.Warn("ai not configured, skipping substance extraction")
	case errors.Is(err, domai.ErrQuotaExceeded):
		s.recordFailure(ctx, id, up.Filename, failures.PhaseExtract, err)
		return nil, err
	default:
		log.Error("substance extraction failed", "error", err)
		s.recordFailure(ctx, id, up.Filename, failures.PhaseExtract, err)
		names = nil
	}

	known, unknown := Classify(names, idx)
	for _, k := range known {
		log.Debug("known substance", "name", k.Name, "category", k.Category)
	}
	for _, u := range unknown {
		log.Debug("unknown substance", "name", u)
	}

	report := &domain.Report{
		FullText: text,
		Known:    known,
		Unknown:  unknown,
		Summary:  s.summarize(ctx, log, id, up.Filename, known),
	}
	report.Normalize()

	if s.Archive != nil {
		if b, err := json.Marshal(report); err == nil {
			s.archive(ctx, log, id, up.Filename, path.Join(prefix, "report.json"), b, "application/json")
		}
	}
	return report, nil
}

func (s *Service) summarize(ctx context.Context, log *slog.Logger, id, filename string, known []domain.KnownSubstance) string {
	if len(known) == 0 || !s.AI.Enabled() {
		return SummaryNoSubstances
	}
	summary, err := s.AI.Summarize(ctx, known)
	if err != nil {
		log.Error("summary failed", "error", err)
		s.recordFailure(ctx, id, filename, failures.PhaseSummary, err)
		return SummaryFailed
	}
	return summary
}

func (s *Service) archive(ctx context.Context, log *slog.Logger, id, filename, key string, data []byte, contentType string) {
	if s.Archive == nil {
		return
	}
	url, err := s.Archive.Put(ctx, key, bytes.NewReader(data), int64(len(data)), contentType)
	if err != nil {
		log.Warn("archive failed", "key", key, "error", err)
		s.recordFailure(ctx, id, filename, failures.PhaseArchive, err)
		return
	}
	log.Debug("archived", "url", url)
}

func (s *Service) recordFailure(ctx context.Context, id, filename string, phase failures.Phase, cause error) {
	if s.Failures == nil {
		return
	}
	ctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), 5*time.Second)
	defer cancel()
	details, _ := json.Marshal(map[string]string{"error": cause.Error()})
	err := s.Failures.Save(ctx, &failures.Failure{
		AnalysisID:  id,
		Filename:    filename,
		Phase:       phase,
		Message:     cause.Error(),
		DetailsJSON: string(details),
		CreatedAt:   s.now(),
	})
	if err != nil {
		s.logger().Warn("could not record failure", "analysis_id", id, "phase", phase, "error", err)
	}
}

// RecentFailures lists the latest recorded pipeline failures.
func (s *Service) RecentFailures(ctx context.Context, limit int) ([]*failures.Failure, error) {
	if s.Failures == nil {
		return []*failures.Failure{}, nil
	}
	return s.Failures.Recent(ctx, limit)
}

func (s *Service) now() time.Time {
	if s.Clock == nil {
		return time.Now().UTC()
	}
	return s.Clock.Now()
}

func (s *Service) logger() *slog.Logger {
	if s.Logger == nil {
		return slog.Default()
	}
	return s.Logger
}

func archivePrefix(t time.Time, id string) string {
	return path.Join("uploads", t.Format("2006/01/02"), id)
}

// safeName keeps the base name and replaces anything outside [A-Za-z0-9._-].
func safeName(name string) string {
	name = path.Base(strings.ReplaceAll(name, "\\", "/"))
	var b strings.Builder
	for _, r := range name {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9', r == '.', r == '-', r == '_':
			b.WriteRune(r)
		default:
			b.WriteRune('_')
		}
	}
	out := strings.Trim(b.String(), ".")
	if out == "" {
		return "image"
	}
	return out
}
