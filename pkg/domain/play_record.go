package domain

import "time"

// Strategy names the speaker-cue layout used to parse a play.
type Strategy string

const (
	// StrategyInline means cues share a line with dialogue ("HAMLET: To be").
	StrategyInline Strategy = "inline"
	// StrategyBlock means cues stand alone on their own line ("HAMLET").
	StrategyBlock Strategy = "block"
)

// PlayRecord is one extracted play ready to be persisted.
//
// Only Transcript is written to the JSON output file; the remaining fields are
// metadata kept by database sinks.
type PlayRecord struct {
	// Name is derived from the document title and keys the record in every sink.
	Name string `bson:"name" json:"name"`

	// SourceURL is the locator the document was fetched from.
	SourceURL string `bson:"source_url" json:"source_url"`

	// Strategy is the parser chosen by the classifier.
	Strategy Strategy `bson:"strategy" json:"strategy"`

	// InlineVotes and BlockVotes are the classifier's match counts.
	InlineVotes int `bson:"inline_votes" json:"inline_votes"`
	BlockVotes  int `bson:"block_votes" json:"block_votes"`

	// TrimStart and TrimEnd bound the dramatic content within the document lines.
	TrimStart int `bson:"trim_start" json:"trim_start"`
	TrimEnd   int `bson:"trim_end" json:"trim_end"`

	// Transcript holds the dialogue grouped by speaker.
	Transcript *Transcript `bson:"-" json:"transcript"`

	// RunID identifies the batch run that produced the record.
	RunID string `bson:"run_id,omitempty" json:"run_id,omitempty"`

	// ExtractedAt is when the record was produced.
	ExtractedAt time.Time `bson:"extracted_at" json:"extracted_at"`
}

// SpeakerCount returns the number of speakers in the transcript
func (r *PlayRecord) SpeakerCount() int {
	if r == nil {
		return 0
	}
	return r.Transcript.Len()
}

// LineCount returns the number of dialogue lines in the transcript
func (r *PlayRecord) LineCount() int {
	if r == nil {
		return 0
	}
	return r.Transcript.LineCount()
}
