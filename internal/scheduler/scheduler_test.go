package scheduler

import (
	"bytes"
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"

	"github.com/Guliveer/barline/internal/collector"
	"github.com/Guliveer/barline/internal/models"
	"github.com/Guliveer/barline/internal/mpris"
	"github.com/Guliveer/barline/internal/publisher"
)

type capturePublisher struct {
	mu    sync.Mutex
	lines []string
	err   error
}

func (p *capturePublisher) Publish(_ context.Context, line string) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.lines = append(p.lines, line)
	return p.err
}

func (p *capturePublisher) count() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return len(p.lines)
}

type noPlayer struct{}

func (noPlayer) Track(context.Context) (mpris.Track, error) {
	return mpris.Track{}, mpris.ErrNoPlayer
}

func statSequence(contents ...string) collector.StatReader {
	var mu sync.Mutex
	i := 0
	return func(context.Context) ([]byte, error) {
		mu.Lock()
		defer mu.Unlock()
		c := contents[i]
		if i < len(contents)-1 {
			i++
		}
		return []byte(c), nil
	}
}

func writeBattery(t *testing.T, capacity, status string) string {
	t.Helper()
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "capacity"), []byte(capacity+"\n"), 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "status"), []byte(status+"\n"), 0o644))
	return dir
}

// barRegistry registers the sources in bar order: media, volume, accessory,
// power, cpu, clock. Media has no player and no accessory is configured.
func barRegistry(t *testing.T) *collector.Registry {
	t.Helper()
	volume := func(context.Context, string, ...string) ([]byte, error) {
		return []byte("42\n"), nil
	}
	clock := time.Date(2024, time.March, 5, 21, 7, 0, 0, time.Local)

	r := collector.NewRegistry(zaptest.NewLogger(t))
	r.Register(collector.NewMediaCollector(noPlayer{}, 0))
	r.Register(collector.NewVolumeCollector(volume, "pamixer", "--get-volume"))
	r.Register(collector.NewAccessoryCollector(nil))
	r.Register(collector.NewPowerCollector(writeBattery(t, "73", "Discharging")))
	r.Register(collector.NewCPUCollector(statSequence(
		"cpu 10 0 10 70 10 0 0 0\n",
		"cpu 13 0 10 77 10 0 0 0\n",
	)))
	r.Register(collector.NewClockCollector("", func() time.Time { return clock }))
	return r
}

func TestRunOnce_DryRunEndToEnd(t *testing.T) {
	var out bytes.Buffer
	pub := publisher.NewDryRun(&out, zaptest.NewLogger(t))
	s := New(barRegistry(t), pub, time.Second, 0, zaptest.NewLogger(t))

	require.NoError(t, s.RunOnce(context.Background()))

	fg := "^c" + models.DefaultForeground + "^"
	want := strings.Join([]string{
		fg + "\uf028 " + fg + "42%" + models.Reset,
		fg + "\uf242 " + fg + "73%" + models.Reset,
		fg + "\uf2db " + fg + "30.00 %" + models.Reset,
		fg + "\uf017 " + fg + "March/05 09:07 PM" + models.Reset,
	}, models.Divider)

	assert.Equal(t, want+"\n", out.String())
}

func TestRunOnce_PublishError(t *testing.T) {
	pub := &capturePublisher{err: errors.New("no display")}
	s := New(collector.NewRegistry(nil), pub, time.Second, 0, nil)

	err := s.RunOnce(context.Background())
	require.Error(t, err)
	assert.Equal(t, []string{""}, pub.lines)
}

func TestRunOnce_CancelledDuringWarmup(t *testing.T) {
	pub := &capturePublisher{}
	s := New(collector.NewRegistry(nil), pub, time.Second, time.Hour, nil)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	err := s.RunOnce(ctx)
	require.ErrorIs(t, err, context.Canceled)
	assert.Zero(t, pub.count())
}

func TestStart_PublishesEveryInterval(t *testing.T) {
	pub := &capturePublisher{}
	s := New(barRegistry(t), pub, 10*time.Millisecond, 0, zaptest.NewLogger(t))

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- s.Start(ctx) }()

	assert.Eventually(t, func() bool { return pub.count() >= 3 }, 2*time.Second, 5*time.Millisecond)

	cancel()
	select {
	case err := <-done:
		require.NoError(t, err)
	case <-time.After(2 * time.Second):
		t.Fatal("Start did not return after cancel")
	}
}

func TestStart_KeepsRunningAfterPublishFailure(t *testing.T) {
	pub := &capturePublisher{err: errors.New("xsetroot: exit status 1")}
	s := New(collector.NewRegistry(nil), pub, 10*time.Millisecond, 0, nil)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go func() { _ = s.Start(ctx) }()

	assert.Eventually(t, func() bool { return pub.count() >= 2 }, 2*time.Second, 5*time.Millisecond)
}

func TestStart_FirstCycleIsImmediate(t *testing.T) {
	pub := &capturePublisher{}
	s := New(collector.NewRegistry(nil), pub, time.Hour, 0, nil)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go func() { _ = s.Start(ctx) }()

	assert.Eventually(t, func() bool { return pub.count() == 1 }, time.Second, 5*time.Millisecond)
}

func TestStart_RejectsNonPositiveInterval(t *testing.T) {
	s := New(collector.NewRegistry(nil), &capturePublisher{}, 0, 0, nil)
	require.Error(t, s.Start(context.Background()))
}
