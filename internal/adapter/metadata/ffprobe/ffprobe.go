// Package ffprobe implements the probe collaborator by invoking the
// ffprobe binary and consuming its JSON output.
package ffprobe

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"os/exec"
	"time"

	"github.com/sabrinth/player/internal/domain"
	"github.com/sabrinth/player/internal/ports"
)

// probeTimeout bounds a single ffprobe invocation.
const probeTimeout = 7 * time.Second

// probeOutput mirrors ffprobe's -print_format json layout.
type probeOutput struct {
	Format  probeFormat   `json:"format"`
	Streams []probeStream `json:"streams"`
}

type probeFormat struct {
	Duration string            `json:"duration"`
	BitRate  string            `json:"bit_rate"`
	Tags     map[string]string `json:"tags"`
}

type probeStream struct {
	CodecType string            `json:"codec_type"`
	Duration  string            `json:"duration"`
	BitRate   string            `json:"bit_rate"`
	Tags      map[string]string `json:"tags"`
}

// Prober probes files via ffprobe.
type Prober struct {
	// Binary is the ffprobe executable name or path. Defaults to "ffprobe".
	Binary string
}

// NewProber creates a prober using the ffprobe binary found on PATH.
func NewProber() *Prober {
	return &Prober{Binary: "ffprobe"}
}

// Probe runs ffprobe with -show_format -show_streams and parses the JSON.
// Any failure (missing binary, timeout, non-zero exit, malformed JSON)
// wraps domain.ErrSourceUnavailable so the resolver skips this source.
func (p *Prober) Probe(ctx context.Context, path string) (*ports.ProbeResult, error) {
	bin, err := exec.LookPath(p.Binary)
	if err != nil {
		return nil, fmt.Errorf("%w: ffprobe not on PATH", domain.ErrSourceUnavailable)
	}

	ctx, cancel := context.WithTimeout(ctx, probeTimeout)
	defer cancel()

	cmd := exec.CommandContext(ctx, bin,
		"-v", "quiet",
		"-print_format", "json",
		"-show_format",
		"-show_streams",
		path,
	)

	var stdout bytes.Buffer
	cmd.Stdout = &stdout

	if err := cmd.Run(); err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrSourceUnavailable, err)
	}

	var out probeOutput
	if err := json.Unmarshal(stdout.Bytes(), &out); err != nil {
		return nil, fmt.Errorf("%w: malformed probe output: %v", domain.ErrSourceUnavailable, err)
	}

	result := &ports.ProbeResult{
		Format: ports.ProbeFormat{
			Duration: out.Format.Duration,
			BitRate:  out.Format.BitRate,
			Tags:     out.Format.Tags,
		},
	}
	for _, s := range out.Streams {
		result.Streams = append(result.Streams, ports.ProbeStream{
			CodecType: s.CodecType,
			Duration:  s.Duration,
			BitRate:   s.BitRate,
			Tags:      s.Tags,
		})
	}
	return result, nil
}

// Verify interface implementation
var _ ports.Prober = (*Prober)(nil)
