package jobs

import (
	"context"
	"errors"
	"testing"
)

type fakeRefresher struct {
	version uint64
	err     error
	calls   int
}

func (f *fakeRefresher) Refresh(ctx context.Context) (uint64, error) {
	f.calls++
	return f.version, f.err
}

type otherJob struct{}

func (otherJob) GetID() string        { return "other" }
func (otherJob) GetType() JobType     { return "other" }
func (otherJob) GetStatus() JobStatus { return JobStatusPending }

func TestNewRefreshHandler(t *testing.T) {
	r := &fakeRefresher{version: 7}
	var notified uint64
	handler := NewRefreshHandler(r, func(v uint64) { notified = v })

	job := &RefreshLedgerJob{JobID: "job-1", Trigger: "api"}
	if err := handler(context.Background(), job); err != nil {
		t.Fatalf("handler() error = %v", err)
	}
	if job.Version != 7 {
		t.Errorf("job.Version = %d, want 7", job.Version)
	}
	if notified != 7 {
		t.Errorf("onSuccess got %d, want 7", notified)
	}
}

func TestNewRefreshHandler_Failure(t *testing.T) {
	loadErr := errors.New("source down")
	r := &fakeRefresher{err: loadErr}
	called := false
	handler := NewRefreshHandler(r, func(uint64) { called = true })

	job := &RefreshLedgerJob{JobID: "job-1"}
	if err := handler(context.Background(), job); !errors.Is(err, loadErr) {
		t.Fatalf("handler() error = %v, want %v", err, loadErr)
	}
	if called {
		t.Error("onSuccess called after a failed refresh")
	}
	if job.Version != 0 {
		t.Errorf("job.Version = %d, want 0", job.Version)
	}
}

func TestNewRefreshHandler_RejectsOtherJobs(t *testing.T) {
	r := &fakeRefresher{}
	handler := NewRefreshHandler(r, nil)

	if err := handler(context.Background(), otherJob{}); err == nil {
		t.Error("handler() accepted a foreign job type")
	}
	if r.calls != 0 {
		t.Error("refresher called for a foreign job type")
	}
}
