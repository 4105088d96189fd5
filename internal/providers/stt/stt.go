package stt

import "context"

type Provider interface {
	Transcribe(ctx context.Context, audio []byte, language string) (text, languageCode string, confidence float64, err error)
	Close() error
}
