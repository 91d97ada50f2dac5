package noise

import (
	"bytes"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestClassifierFiltersConnectivityNoise(t *testing.T) {
	c := NewClassifier()

	assert.True(t, c.Filtered("write tcp 10.0.0.5:443: connection reset by peer"))
	assert.True(t, c.Filtered("redis: transport errored during receive"))
	assert.True(t, c.FilteredWarning("reconnecting to backend in 2s"))
	assert.True(t, c.FilteredLog("keepalive ping failed, retrying"))

	assert.False(t, c.Filtered("permission denied for user 42"))
	assert.False(t, c.Filtered("invitation not found"))
	assert.False(t, c.Filtered(""))
}

func TestClassifierIsCaseSensitive(t *testing.T) {
	c := NewClassifier()

	assert.True(t, c.Filtered("connection refused"))
	assert.False(t, c.Filtered("Connection Refused"))
}

func TestClassifierNormalize(t *testing.T) {
	c := NewClassifier()

	assert.Equal(t, "broken pipe", c.Normalize("write: broken pipe (fd 7)"))
	assert.Equal(t, "something substantive", c.Normalize("something substantive"))
}

func TestThrottleAllowsFirstThreeThenSuppresses(t *testing.T) {
	now := time.Now()
	tr := NewThrottle(3, 30*time.Second).WithClock(func() time.Time { return now })

	assert.False(t, tr.ShouldThrottle("db timeout"))
	assert.False(t, tr.ShouldThrottle("db timeout"))
	assert.False(t, tr.ShouldThrottle("db timeout"))
	assert.True(t, tr.ShouldThrottle("db timeout"))
	assert.True(t, tr.ShouldThrottle("db timeout"))

	// Independent patterns keep their own windows.
	assert.False(t, tr.ShouldThrottle("other fault"))
}

func TestThrottleWindowReset(t *testing.T) {
	now := time.Now()
	tr := NewThrottle(3, 30*time.Second).WithClock(func() time.Time { return now })

	for i := 0; i < 4; i++ {
		tr.ShouldThrottle("db timeout")
	}
	require.True(t, tr.ShouldThrottle("db timeout"))

	now = now.Add(31 * time.Second)
	assert.False(t, tr.ShouldThrottle("db timeout"), "window elapsed, counter must restart")
	assert.False(t, tr.ShouldThrottle("db timeout"))
}

func TestThrottleStatsOnlyReportsThrottledPatterns(t *testing.T) {
	now := time.Now()
	tr := NewThrottle(3, 30*time.Second).WithClock(func() time.Time { return now })

	tr.ShouldThrottle("quiet fault")
	tr.ShouldThrottle("quiet fault")

	for i := 0; i < 5; i++ {
		tr.ShouldThrottle("loud fault")
	}

	stats := tr.Stats()
	assert.NotContains(t, stats, "quiet fault")
	assert.Equal(t, 5, stats["loud fault"])
}

func TestFilterDropsNoiseAndPassesSubstantiveMessages(t *testing.T) {
	var sink bytes.Buffer
	f := NewFilter(&sink, 3, 30*time.Second)

	n, err := f.Write([]byte("dial tcp: connection refused"))
	require.NoError(t, err)
	assert.Equal(t, len("dial tcp: connection refused"), n)
	assert.Zero(t, sink.Len(), "noise must not reach the sink")

	_, err = f.Write([]byte("permission denied for user 42"))
	require.NoError(t, err)
	assert.Contains(t, sink.String(), "permission denied")
}

func TestFilterThrottlesRepeatedSubstantiveMessages(t *testing.T) {
	var sink bytes.Buffer
	now := time.Now()
	f := NewFilter(&sink, 3, 30*time.Second)
	f.Throttle().WithClock(func() time.Time { return now })

	var suppressed []string
	f.OnSuppress(func(pattern string) { suppressed = append(suppressed, pattern) })

	for i := 0; i < 5; i++ {
		_, err := f.Write([]byte("migration failed\n"))
		require.NoError(t, err)
	}

	assert.Equal(t, 3, bytes.Count(sink.Bytes(), []byte("migration failed")))
	assert.Len(t, suppressed, 2)
}
