package tts

import "context"

// Synthesizer renders text to audio. Optional capability: wire Nop when no
// speech backend is configured.
type Synthesizer interface {
	Synthesize(ctx context.Context, text, voiceID string, stability, similarityBoost float64) ([]byte, error)
}

// Nop is the null synthesizer: no audio, no error.
type Nop struct{}

func (Nop) Synthesize(ctx context.Context, text, voiceID string, stability, similarityBoost float64) ([]byte, error) {
	return nil, nil
}
