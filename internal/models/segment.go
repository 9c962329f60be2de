package models

// Segment is one transcript window of a video. Segments for a video
// partition [0, duration) in fixed-size windows; only the last one may
// be shorter.
type Segment struct {
	ID        string  `json:"id"`
	VideoID   string  `json:"videoId"`
	StartTime float64 `json:"startTime"`
	EndTime   float64 `json:"endTime"`
	Text      string  `json:"text"`
}

// SegmentDraft is a segment produced by the transcription stage before
// it has been persisted and assigned an ID.
type SegmentDraft struct {
	StartTime float64
	EndTime   float64
	Text      string
}
