package processing

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/ternarybob/arbor"
	"github.com/ternarybob/responsum/internal/common"
	"github.com/ternarybob/responsum/internal/models"
)

type fakeIngestService struct {
	mu      sync.Mutex
	calls   int
	block   chan struct{}
	started chan struct{}
}

func (f *fakeIngestService) Ingest(ctx context.Context, filename, format string, payload []byte) (*models.IngestResult, error) {
	return nil, nil
}

func (f *fakeIngestService) Delete(ctx context.Context, documentID string) error { return nil }

func (f *fakeIngestService) Formats() []string { return nil }

func (f *fakeIngestService) ProcessPending(ctx context.Context) error {
	f.mu.Lock()
	f.calls++
	f.mu.Unlock()
	if f.started != nil {
		f.started <- struct{}{}
	}
	if f.block != nil {
		<-f.block
	}
	return nil
}

func (f *fakeIngestService) callCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.calls
}

func TestStartDisabledIsNoOp(t *testing.T) {
	scheduler := NewScheduler(&fakeIngestService{}, &common.ProcessingConfig{Enabled: false}, arbor.NewLogger())

	require.NoError(t, scheduler.Start())
	scheduler.Stop()
}

func TestStartRejectsInvalidSchedule(t *testing.T) {
	config := &common.ProcessingConfig{Enabled: true, Schedule: "not a schedule"}
	scheduler := NewScheduler(&fakeIngestService{}, config, arbor.NewLogger())

	assert.Error(t, scheduler.Start())
}

func TestStartTwiceFails(t *testing.T) {
	config := &common.ProcessingConfig{Enabled: true, Schedule: "0 */6 * * *"}
	scheduler := NewScheduler(&fakeIngestService{}, config, arbor.NewLogger())

	require.NoError(t, scheduler.Start())
	defer scheduler.Stop()
	assert.Error(t, scheduler.Start())
}

func TestRunSkipsWhenInFlight(t *testing.T) {
	ingest := &fakeIngestService{
		block:   make(chan struct{}),
		started: make(chan struct{}, 1),
	}
	scheduler := NewScheduler(ingest, &common.ProcessingConfig{Enabled: true, Schedule: "0 */6 * * *"}, arbor.NewLogger())

	go scheduler.run()
	select {
	case <-ingest.started:
	case <-time.After(time.Second):
		t.Fatal("first run never started")
	}

	// Second tick while the first run is still in flight must be skipped.
	scheduler.run()
	assert.Equal(t, 1, ingest.callCount())

	close(ingest.block)
}
