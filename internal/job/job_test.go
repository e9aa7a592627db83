package job

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/guttosm/dipwatch/internal/archive"
	"github.com/guttosm/dipwatch/internal/domain/models"
)

type stubEvaluator struct {
	dips      []models.DipRecord
	err       error
	gotWindow models.Window
	gotThresh float64
	calls     int
}

func (s *stubEvaluator) Evaluate(_ context.Context, _ []string, w models.Window, threshold float64) ([]models.DipRecord, error) {
	s.calls++
	s.gotWindow = w
	s.gotThresh = threshold
	return s.dips, s.err
}

type recordingNotifier struct {
	sent []models.Notification
	err  error
}

func (r *recordingNotifier) Notify(_ context.Context, n models.Notification) error {
	r.sent = append(r.sent, n)
	return r.err
}

type put struct {
	container, key, contentType string
	payload                     []byte
}

type recordingArchiver struct {
	puts   []put
	failOn string
}

func (r *recordingArchiver) Put(_ context.Context, container, key string, payload []byte, contentType string) error {
	if r.failOn != "" && strings.HasSuffix(key, r.failOn) {
		return errors.New("bucket gone")
	}
	r.puts = append(r.puts, put{container, key, contentType, payload})
	return nil
}

func settings() Settings {
	loc, err := time.LoadLocation("America/New_York")
	if err != nil {
		loc = time.UTC
	}
	return Settings{
		Tickers:    []string{"X", "Y"},
		Threshold:  10,
		Location:   loc,
		Sender:     "alerts@example.com",
		Recipients: []string{"me@example.com"},
		Container:  "archive",
	}
}

// fixedClock pins the run to Friday 2025-03-14 16:30 New York time.
func fixedClock() time.Time {
	return time.Date(2025, 3, 14, 20, 30, 0, 0, time.UTC)
}

func newJob(ev Evaluator, n *recordingNotifier, a archive.Archiver) *Job {
	j := New(settings(), ev, n, a)
	j.now = fixedClock
	return j
}

var oneDip = []models.DipRecord{{Ticker: "Y", CurrentPrice: 85, AllTimeHigh: 100, PercentDip: 15}}

func TestRun_NoDipsNoSinks(t *testing.T) {
	n := &recordingNotifier{}
	a := &recordingArchiver{}
	res, err := newJob(&stubEvaluator{dips: []models.DipRecord{}}, n, a).Run(context.Background())
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if len(n.sent) != 0 || len(a.puts) != 0 {
		t.Fatalf("empty list must not notify or archive: sent=%d puts=%d", len(n.sent), len(a.puts))
	}
	if res.Notified || res.Date != "2025-03-14" || res.ID == "" {
		t.Fatalf("unexpected result %+v", res)
	}
}

func TestRun_DipsNotifyOnceAndArchiveTwice(t *testing.T) {
	ev := &stubEvaluator{dips: oneDip}
	n := &recordingNotifier{}
	a := &recordingArchiver{}
	res, err := newJob(ev, n, a).Run(context.Background())
	if err != nil {
		t.Fatalf("Run: %v", err)
	}

	if ev.gotThresh != 10 || ev.gotWindow.DateKey() != "2025-03-14" {
		t.Fatalf("evaluator got threshold=%v window=%s", ev.gotThresh, ev.gotWindow.DateKey())
	}
	if len(n.sent) != 1 {
		t.Fatalf("want exactly one notification, got %d", len(n.sent))
	}
	sent := n.sent[0]
	if sent.Subject != "Stocks changed more than 10% detected on 2025-03-14" || sent.Sender != "alerts@example.com" ||
		len(sent.Recipients) != 1 || len(sent.Dips) != 1 {
		t.Fatalf("unexpected notification %+v", sent)
	}

	if len(a.puts) != 2 {
		t.Fatalf("want two archive writes, got %d", len(a.puts))
	}
	if a.puts[0].key != "2025-03-14/dips.json" || a.puts[0].contentType != archive.ContentTypeJSON || a.puts[0].container != "archive" {
		t.Fatalf("unexpected dips object %+v", a.puts[0])
	}
	if string(a.puts[0].payload) != `[{"ticker":"Y","currentPrice":85,"allTimeHigh":100,"percentDip":15}]` {
		t.Fatalf("dips payload %s", a.puts[0].payload)
	}
	if a.puts[1].key != "2025-03-14/email.txt" || string(a.puts[1].payload) != sent.Body {
		t.Fatalf("unexpected email object %+v", a.puts[1])
	}
	if !res.Notified || len(res.Archived) != 2 {
		t.Fatalf("unexpected result %+v", res)
	}
}

func TestRun_NotifyFailureDoesNotBlockArchive(t *testing.T) {
	n := &recordingNotifier{err: errors.New("ses throttled")}
	a := &recordingArchiver{}
	res, err := newJob(&stubEvaluator{dips: oneDip}, n, a).Run(context.Background())
	if err != nil {
		t.Fatalf("dispatch errors are reported, not fatal: %v", err)
	}
	if res.Notified || res.NotifyError == nil {
		t.Fatalf("result should carry the notify error: %+v", res)
	}
	if len(a.puts) != 2 {
		t.Fatalf("archive must still run, puts=%d", len(a.puts))
	}
}

func TestRun_EvaluationErrorIsFatal(t *testing.T) {
	n := &recordingNotifier{}
	a := &recordingArchiver{}
	res, err := newJob(&stubEvaluator{err: models.ErrDataUnavailable}, n, a).Run(context.Background())
	if !errors.Is(err, models.ErrDataUnavailable) || res != nil {
		t.Fatalf("want fatal DataUnavailable, got res=%v err=%v", res, err)
	}
	if len(n.sent) != 0 || len(a.puts) != 0 {
		t.Fatal("no sink may run after an evaluation failure")
	}
}

func TestRun_ArchiveErrorReturned(t *testing.T) {
	a := &recordingArchiver{failOn: "email.txt"}
	res, err := newJob(&stubEvaluator{dips: oneDip}, &recordingNotifier{}, a).Run(context.Background())
	if err == nil || !strings.Contains(err.Error(), "email.txt") {
		t.Fatalf("want archive error, got %v", err)
	}
	if res == nil || len(res.Archived) != 1 || !res.Notified {
		t.Fatalf("partial result should be returned: %+v", res)
	}
}

func TestRun_WithoutArchiver(t *testing.T) {
	n := &recordingNotifier{}
	res, err := newJob(&stubEvaluator{dips: oneDip}, n, nil).Run(context.Background())
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if len(n.sent) != 1 || len(res.Archived) != 0 {
		t.Fatalf("unexpected result %+v", res)
	}
}

func TestPreview(t *testing.T) {
	ev := &stubEvaluator{dips: oneDip}
	n := &recordingNotifier{}
	a := &recordingArchiver{}
	j := newJob(ev, n, a)

	p, err := j.Preview(context.Background(), 5)
	if err != nil {
		t.Fatalf("Preview: %v", err)
	}
	if p.Threshold != 5 || ev.gotThresh != 5 || p.Date != "2025-03-14" || len(p.Dips) != 1 {
		t.Fatalf("unexpected preview %+v", p)
	}
	if len(n.sent) != 0 || len(a.puts) != 0 {
		t.Fatal("preview must not touch sinks")
	}

	p, _ = j.Preview(context.Background(), -1)
	if p.Threshold != 10 {
		t.Fatalf("negative threshold should fall back to configured, got %v", p.Threshold)
	}

	ev.err = models.ErrInvalidHigh
	if _, err := j.Preview(context.Background(), 5); !errors.Is(err, models.ErrInvalidHigh) {
		t.Fatalf("want ErrInvalidHigh, got %v", err)
	}
}
