// Package media discovers metadata about uploaded video files.
package media

import (
	"encoding/json"
	"fmt"
	"strconv"

	ffmpeg "github.com/u2takey/ffmpeg-go"
)

// Prober reports the duration of a video file in seconds.
type Prober interface {
	Duration(path string) (float64, error)
}

// FFProbe reads the container duration with ffprobe.
type FFProbe struct{}

func (FFProbe) Duration(path string) (float64, error) {
	out, err := ffmpeg.Probe(path)
	if err != nil {
		return 0, fmt.Errorf("ffprobe failed: %w", err)
	}
	return parseProbeDuration(out)
}

func parseProbeDuration(probeJSON string) (float64, error) {
	var probe struct {
		Format struct {
			Duration string `json:"duration"`
		} `json:"format"`
	}
	if err := json.Unmarshal([]byte(probeJSON), &probe); err != nil {
		return 0, fmt.Errorf("failed to parse probe output: %w", err)
	}
	if probe.Format.Duration == "" {
		return 0, fmt.Errorf("probe output has no duration")
	}

	duration, err := strconv.ParseFloat(probe.Format.Duration, 64)
	if err != nil {
		return 0, fmt.Errorf("invalid duration %q: %w", probe.Format.Duration, err)
	}
	if duration <= 0 {
		return 0, fmt.Errorf("non-positive duration %v", duration)
	}
	return duration, nil
}

// Fixed always reports the same duration. Used as the fallback when
// probing fails and for tests.
type Fixed struct {
	Seconds float64
}

func (f Fixed) Duration(string) (float64, error) {
	return f.Seconds, nil
}
