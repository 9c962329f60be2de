package pipeline

import (
	"context"
	"errors"
	"fmt"
	"math"
	"testing"
)

func staticText(text string) TextSource {
	return func(ctx context.Context, src Source, index int) (string, error) {
		return text, nil
	}
}

func TestTranscriber_Segmentation(t *testing.T) {
	tests := []struct {
		name      string
		duration  float64
		window    float64
		wantCount int
		wantLast  float64 // end of final segment
	}{
		{name: "exact multiple", duration: 600, window: 300, wantCount: 2, wantLast: 600},
		{name: "truncated final window", duration: 700, window: 300, wantCount: 3, wantLast: 700},
		{name: "single short video", duration: 90, window: 300, wantCount: 1, wantLast: 90},
		{name: "one second over", duration: 301, window: 300, wantCount: 2, wantLast: 301},
		{name: "fractional duration", duration: 600.04, window: 300, wantCount: 3, wantLast: 600.04},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tr := &Transcriber{Window: tt.window, Text: staticText("text")}

			drafts, err := tr.Run(context.Background(), Source{Duration: tt.duration}, nil)
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}

			if len(drafts) != tt.wantCount {
				t.Fatalf("got %d segments, want %d", len(drafts), tt.wantCount)
			}
			if want := int(math.Ceil(tt.duration / tt.window)); len(drafts) != want {
				t.Errorf("count %d does not match ceil(%v/%v)", len(drafts), tt.duration, tt.window)
			}

			// Contiguous, non-overlapping partition of [0, duration).
			for i, d := range drafts {
				wantStart := float64(i) * tt.window
				if d.StartTime != wantStart {
					t.Errorf("segment %d starts at %v, want %v", i, d.StartTime, wantStart)
				}
				if d.EndTime <= d.StartTime {
					t.Errorf("segment %d is empty: [%v, %v)", i, d.StartTime, d.EndTime)
				}
				if d.EndTime-d.StartTime > tt.window {
					t.Errorf("segment %d longer than window: %v", i, d.EndTime-d.StartTime)
				}
				if i > 0 && d.StartTime != drafts[i-1].EndTime {
					t.Errorf("gap between segment %d and %d", i-1, i)
				}
			}
			if got := drafts[len(drafts)-1].EndTime; got != tt.wantLast {
				t.Errorf("final segment ends at %v, want %v", got, tt.wantLast)
			}
		})
	}
}

func TestTranscriber_ProgressPerSegment(t *testing.T) {
	tr := &Transcriber{Window: 300, Text: staticText("text")}

	var fractions []float64
	_, err := tr.Run(context.Background(), Source{Duration: 900}, func(p float64) {
		fractions = append(fractions, p)
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	want := []float64{1.0 / 3, 2.0 / 3, 1}
	if len(fractions) != len(want) {
		t.Fatalf("got %d progress reports, want %d", len(fractions), len(want))
	}
	for i := range want {
		if math.Abs(fractions[i]-want[i]) > 1e-9 {
			t.Errorf("report %d: got %v, want %v", i, fractions[i], want[i])
		}
	}
}

func TestTranscriber_TextSourceReceivesIndexes(t *testing.T) {
	var indexes []int
	tr := &Transcriber{Window: 300, Text: func(ctx context.Context, src Source, index int) (string, error) {
		indexes = append(indexes, index)
		return fmt.Sprintf("segment %d", index), nil
	}}

	drafts, err := tr.Run(context.Background(), Source{Duration: 600}, nil)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if len(indexes) != 2 || indexes[0] != 0 || indexes[1] != 1 {
		t.Errorf("text source saw indexes %v, want [0 1]", indexes)
	}
	if drafts[1].Text != "segment 1" {
		t.Errorf("draft text %q not taken from source", drafts[1].Text)
	}
}

func TestTranscriber_TextSourceErrorAborts(t *testing.T) {
	boom := errors.New("whisper backend down")
	calls := 0
	tr := &Transcriber{Window: 300, Text: func(ctx context.Context, src Source, index int) (string, error) {
		calls++
		if index == 1 {
			return "", boom
		}
		return "ok", nil
	}}

	var reports int
	drafts, err := tr.Run(context.Background(), Source{Duration: 900}, func(float64) { reports++ })
	if !errors.Is(err, boom) {
		t.Fatalf("expected wrapped source error, got %v", err)
	}
	if drafts != nil {
		t.Error("expected no drafts on failure")
	}
	if calls != 2 {
		t.Errorf("expected fail-fast after 2 calls, got %d", calls)
	}
	if reports != 1 {
		t.Errorf("expected 1 progress report before failure, got %d", reports)
	}
}

func TestTranscriber_ContextCancellation(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	tr := &Transcriber{Window: 300, Text: staticText("text")}
	if _, err := tr.Run(ctx, Source{Duration: 600}, nil); !errors.Is(err, context.Canceled) {
		t.Errorf("expected context.Canceled, got %v", err)
	}
}

func TestTranscriber_InvalidInputs(t *testing.T) {
	tr := &Transcriber{Window: 300, Text: staticText("text")}
	if _, err := tr.Run(context.Background(), Source{Duration: 0}, nil); err == nil {
		t.Error("expected error for zero duration")
	}

	tr = &Transcriber{Window: 0, Text: staticText("text")}
	if _, err := tr.Run(context.Background(), Source{Duration: 600}, nil); err == nil {
		t.Error("expected error for zero window")
	}
}
