package output

import (
	"bytes"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestFormatDuration(t *testing.T) {
	require.Equal(t, "0.0s", formatDuration(0))
	require.Equal(t, "1.5s", formatDuration(1500*time.Millisecond))
}

func TestSpinner_StartStopWritesAndClearsLine(t *testing.T) {
	var buf bytes.Buffer
	s := NewSpinner(&buf, "scanning", 5*time.Second)
	s.Start()
	time.Sleep(150 * time.Millisecond)
	s.Stop()

	out := buf.String()
	require.Contains(t, out, "scanning")
	require.Contains(t, out, "\r\033[K")
}
