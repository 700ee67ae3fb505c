package services

import (
	"bytes"
	"log/slog"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestScheduler_ScheduleInterval(t *testing.T) {
	s := NewScheduler(discardLogger())

	_, err := s.ScheduleInterval(0, func() {})
	assert.Error(t, err)

	_, err = s.ScheduleInterval(time.Minute, func() {})
	require.NoError(t, err)
	assert.Equal(t, 1, s.Entries())
}

func TestScheduler_TokenPurgeRuns(t *testing.T) {
	auth, _ := newTestAuthService(t)
	s := NewScheduler(discardLogger())

	_, err := s.ScheduleTokenPurge(auth, time.Second)
	require.NoError(t, err)
	assert.Equal(t, 1, s.Entries())

	s.Start()
	s.Stop()
}

type syncBuffer struct {
	mu  sync.Mutex
	buf bytes.Buffer
}

func (b *syncBuffer) Write(p []byte) (int, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.buf.Write(p)
}

func (b *syncBuffer) String() string {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.buf.String()
}

func TestScheduler_RecoversPanicsIntoLogger(t *testing.T) {
	var out syncBuffer
	s := NewScheduler(slog.New(slog.NewTextHandler(&out, nil)))

	_, err := s.ScheduleInterval(time.Second, func() {
		panic("job exploded")
	})
	require.NoError(t, err)

	s.Start()
	defer s.Stop()

	assert.Eventually(t, func() bool {
		return strings.Contains(out.String(), "job exploded")
	}, 5*time.Second, 50*time.Millisecond)
	assert.Contains(t, out.String(), "level=ERROR")
}
