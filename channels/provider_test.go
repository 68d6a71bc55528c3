package channels

import (
	"bytes"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"chanio/internal/metrics"
	"chanio/util"
)

func TestProvider_BufferSize(t *testing.T) {
	assert.Equal(t, DefaultBufferSize, NewProvider(ProviderConfig{}).BufferSize())
	assert.Equal(t, 1024, NewProvider(ProviderConfig{BufferSize: 1000}).BufferSize())
	assert.Equal(t, DefaultBufferSize, DefaultProvider().BufferSize())
}

func TestProvider_BudgetExhausted(t *testing.T) {
	m := metrics.New()
	pv := NewProvider(ProviderConfig{BufferSize: 1024, MaxBufferedBytes: 2048}, WithMetrics(m))

	first, err := pv.OpenPipe()
	require.NoError(t, err)
	_, err = pv.OpenPipe()
	require.NoError(t, err)
	assert.Equal(t, int64(2048), pv.Reserved())

	p, err := pv.OpenPipe()
	assert.Nil(t, p)
	require.ErrorIs(t, err, ErrResourceExhausted)

	var ioErr *IOError
	require.ErrorAs(t, err, &ioErr)
	assert.Equal(t, "open", ioErr.Op)
	assert.Equal(t, int64(1), m.OpenFailures())

	// One closed endpoint is not enough to free the buffer.
	require.NoError(t, first.Sink().Close())
	_, err = pv.OpenPipe()
	require.ErrorIs(t, err, ErrResourceExhausted)

	require.NoError(t, first.Source().Close())
	assert.Equal(t, int64(1024), pv.Reserved())

	_, err = pv.OpenPipe()
	require.NoError(t, err)
	assert.Equal(t, int64(3), m.TotalPipes())
}

func TestProvider_BufferLargerThanBudget(t *testing.T) {
	pv := NewProvider(ProviderConfig{BufferSize: 4096, MaxBufferedBytes: 1024})
	_, err := pv.OpenPipe()
	assert.ErrorIs(t, err, ErrResourceExhausted)
}

func TestProvider_ReleaseOnce(t *testing.T) {
	pv := NewProvider(ProviderConfig{BufferSize: 1024, MaxBufferedBytes: 1024})
	p, err := pv.OpenPipe()
	require.NoError(t, err)

	for i := 0; i < 3; i++ {
		p.Sink().Close()
		p.Source().Close()
	}
	assert.Equal(t, int64(0), pv.Reserved())

	// Exactly one pipe fits again; a double release would allow two.
	_, err = pv.OpenPipe()
	require.NoError(t, err)
	_, err = pv.OpenPipe()
	assert.ErrorIs(t, err, ErrResourceExhausted)
}

func TestProvider_Logger(t *testing.T) {
	var buf bytes.Buffer
	logger := util.NewLogger(3)
	logger.SetOutput(&buf)
	logger.SetTimestamps(false)

	pv := NewProvider(ProviderConfig{BufferSize: 512, MaxBufferedBytes: 512}, WithLogger(logger))
	p, err := pv.OpenPipe()
	require.NoError(t, err)
	_, err = pv.OpenPipe()
	require.Error(t, err)
	p.Sink().Close()
	p.Source().Close()

	out := buf.String()
	assert.True(t, strings.Contains(out, "pipe: pipe 1 opened"), out)
	assert.True(t, strings.Contains(out, "[WRN] pipe: open rejected"), out)
	assert.True(t, strings.Contains(out, "pipe 1 released"), out)
}
