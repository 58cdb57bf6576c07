package utils

import (
	"bytes"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

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

func TestSpinner_StartStop(t *testing.T) {
	var out syncBuffer
	s := NewSpinner(&out, "carving", time.Millisecond, false)
	s.StopMsg = "done\n"

	s.Start()
	s.Start()
	time.Sleep(10 * time.Millisecond)
	s.Stop()
	s.Stop()

	got := out.String()
	assert.Contains(t, got, "carving")
	assert.Contains(t, got, "done\n")
}
