package job

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/guttosm/dipwatch/internal/archive"
	"github.com/guttosm/dipwatch/internal/calendar"
	"github.com/guttosm/dipwatch/internal/domain/models"
	"github.com/guttosm/dipwatch/internal/logger"
	"github.com/guttosm/dipwatch/internal/notify"
)

// Evaluator is the dip rule applied on each run.
type Evaluator interface {
	Evaluate(ctx context.Context, tickers []string, window models.Window, threshold float64) ([]models.DipRecord, error)
}

// Settings is the deploy-time configuration of a run.
type Settings struct {
	Tickers    []string
	Threshold  float64
	Location   *time.Location
	Sender     string
	Recipients []string
	Container  string // archive container; ignored when no archiver is set
}

// RunResult describes what one invocation did.
type RunResult struct {
	ID          string
	Date        string
	Threshold   float64
	Dips        []models.DipRecord
	Notified    bool
	NotifyError error
	Archived    []string
	StartedAt   time.Time
	Duration    time.Duration
}

// Job evaluates the ticker list and hands qualifying dips to the sinks.
type Job struct {
	settings  Settings
	evaluator Evaluator
	notifier  notify.Notifier
	archiver  archive.Archiver // nil disables archival
	now       func() time.Time
}

// New builds a Job. archiver may be nil.
func New(settings Settings, evaluator Evaluator, notifier notify.Notifier, archiver archive.Archiver) *Job {
	if settings.Location == nil {
		settings.Location = time.UTC
	}
	return &Job{
		settings:  settings,
		evaluator: evaluator,
		notifier:  notifier,
		archiver:  archiver,
		now:       time.Now,
	}
}

// Run performs one invocation.
//
// Behavior:
//   - Evaluates every ticker for today's window in the configured timezone.
//   - No dips: returns without notifying or archiving.
//   - Dips: sends exactly one notification. A delivery failure is logged and
//     kept on the result; it never prevents archival.
//   - With an archiver: writes the dip list and the email body under
//     date-stamped keys.
//
// Returns:
//   - error: evaluation failures (fatal to the run) and archival write failures.
func (j *Job) Run(ctx context.Context) (*RunResult, error) {
	start := j.now()
	res := &RunResult{
		ID:        uuid.NewString(),
		Threshold: j.settings.Threshold,
		StartedAt: start,
	}
	log := logger.With("job").With().Str("run_id", res.ID).Logger()

	window := calendar.Today(start, j.settings.Location)
	res.Date = window.DateKey()
	if !calendar.IsTradingDay(window.From) {
		log.Warn().Str("date", res.Date).Msg("not a trading day; price data is likely unavailable")
	}

	log.Info().Str("date", res.Date).Strs("tickers", j.settings.Tickers).Float64("threshold", j.settings.Threshold).Msg("run start")

	dips, err := j.evaluator.Evaluate(ctx, j.settings.Tickers, window, j.settings.Threshold)
	if err != nil {
		log.Error().Err(err).Msg("run failed")
		return nil, fmt.Errorf("evaluate %s: %w", res.Date, err)
	}
	res.Dips = dips

	if len(dips) == 0 {
		res.Duration = j.now().Sub(start)
		log.Info().Dur("elapsed", res.Duration).Msg("no dips; nothing to send")
		return res, nil
	}

	msg, err := notify.Render(j.settings.Threshold, res.Date, dips)
	if err != nil {
		return nil, err
	}

	err = j.notifier.Notify(ctx, models.Notification{
		Sender:     j.settings.Sender,
		Recipients: j.settings.Recipients,
		Subject:    msg.Subject,
		Body:       msg.Body,
		Date:       res.Date,
		Dips:       dips,
	})
	if err != nil {
		res.NotifyError = err
		log.Error().Err(err).Msg("error while sending notification")
	} else {
		res.Notified = true
		log.Info().Int("dips", len(dips)).Msg("notification sent")
	}

	if j.archiver != nil {
		objects := []struct {
			key         string
			payload     []byte
			contentType string
		}{
			{archive.DipsKey(res.Date), msg.Dips, archive.ContentTypeJSON},
			{archive.EmailKey(res.Date), []byte(msg.Body), archive.ContentTypeText},
		}
		for _, o := range objects {
			if err := j.archiver.Put(ctx, j.settings.Container, o.key, o.payload, o.contentType); err != nil {
				log.Error().Err(err).Str("key", o.key).Msg("archive write failed")
				return res, fmt.Errorf("archive %s: %w", o.key, err)
			}
			res.Archived = append(res.Archived, o.key)
		}
		log.Info().Strs("keys", res.Archived).Str("container", j.settings.Container).Msg("archived")
	}

	res.Duration = j.now().Sub(start)
	log.Info().Dur("elapsed", res.Duration).Bool("notified", res.Notified).Msg("run done")
	return res, nil
}

// PreviewResult is the outcome of an evaluation that touched no sink.
type PreviewResult struct {
	Date      string
	Threshold float64
	Dips      []models.DipRecord
}

// Preview evaluates today's window against threshold without touching any sink.
// A negative threshold means the configured one.
func (j *Job) Preview(ctx context.Context, threshold float64) (*PreviewResult, error) {
	if threshold < 0 {
		threshold = j.settings.Threshold
	}
	window := calendar.Today(j.now(), j.settings.Location)
	dips, err := j.evaluator.Evaluate(ctx, j.settings.Tickers, window, threshold)
	if err != nil {
		return nil, fmt.Errorf("evaluate %s: %w", window.DateKey(), err)
	}
	return &PreviewResult{Date: window.DateKey(), Threshold: threshold, Dips: dips}, nil
}
