package ffprobe

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sabrinth/player/internal/domain"
)

// TestProbeMissingBinary verifies a missing ffprobe degrades to the
// skip-this-source sentinel rather than a hard error.
func TestProbeMissingBinary(t *testing.T) {
	prober := &Prober{Binary: "ffprobe-does-not-exist-anywhere"}

	_, err := prober.Probe(context.Background(), "/music/a.mp3")
	require.Error(t, err)
	assert.ErrorIs(t, err, domain.ErrSourceUnavailable)
}
