package encoder

import "fmt"

const (
	SampleRate    = 16000
	Channels      = 1
	BitsPerSample = 16
	BlockSize     = 4096
)

// Encoder packages raw PCM16 capture chunks into an upload container.
type Encoder interface {
	// EncodeChunk consumes one little-endian PCM16 buffer, in arrival order.
	EncodeChunk(pcm []byte) error
	Close() error
	Bytes() []byte
	TotalFrames() uint64
	MimeType() string
}

func New(format string, sampleRate int) (Encoder, error) {
	switch format {
	case "wav":
		return NewWav(sampleRate), nil
	case "flac":
		return NewFlac(sampleRate)
	default:
		return nil, fmt.Errorf("unknown format %q", format)
	}
}
