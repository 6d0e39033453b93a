package encoder

import (
	"bytes"
	"encoding/binary"
)

const wavHeaderSize = 44

// WavEncoder wraps PCM16 in a RIFF/WAVE container. The header is written
// with placeholder sizes and patched on Close.
type WavEncoder struct {
	buf        bytes.Buffer
	sampleRate int
	frames     uint64
	closed     bool
}

func NewWav(sampleRate int) *WavEncoder {
	e := &WavEncoder{sampleRate: sampleRate}
	e.writeHeader(0)
	return e
}

func (e *WavEncoder) writeHeader(dataSize uint32) {
	byteRate := uint32(e.sampleRate * Channels * BitsPerSample / 8)
	blockAlign := uint16(Channels * BitsPerSample / 8)

	var hdr [wavHeaderSize]byte
	copy(hdr[0:4], "RIFF")
	binary.LittleEndian.PutUint32(hdr[4:8], wavHeaderSize-8+dataSize)
	copy(hdr[8:12], "WAVE")
	copy(hdr[12:16], "fmt ")
	binary.LittleEndian.PutUint32(hdr[16:20], 16)
	binary.LittleEndian.PutUint16(hdr[20:22], 1) // PCM
	binary.LittleEndian.PutUint16(hdr[22:24], Channels)
	binary.LittleEndian.PutUint32(hdr[24:28], uint32(e.sampleRate))
	binary.LittleEndian.PutUint32(hdr[28:32], byteRate)
	binary.LittleEndian.PutUint16(hdr[32:34], blockAlign)
	binary.LittleEndian.PutUint16(hdr[34:36], BitsPerSample)
	copy(hdr[36:40], "data")
	binary.LittleEndian.PutUint32(hdr[40:44], dataSize)

	if e.buf.Len() >= wavHeaderSize {
		copy(e.buf.Bytes()[:wavHeaderSize], hdr[:])
		return
	}
	e.buf.Write(hdr[:])
}

func (e *WavEncoder) EncodeChunk(pcm []byte) error {
	// keep frame accounting on sample boundaries
	n := len(pcm) &^ 1
	e.buf.Write(pcm[:n])
	e.frames += uint64(n / 2)
	return nil
}

func (e *WavEncoder) Close() error {
	if e.closed {
		return nil
	}
	e.closed = true
	e.writeHeader(uint32(e.buf.Len() - wavHeaderSize))
	return nil
}

func (e *WavEncoder) Bytes() []byte {
	return e.buf.Bytes()
}

func (e *WavEncoder) TotalFrames() uint64 {
	return e.frames
}

func (e *WavEncoder) MimeType() string { return "audio/wav" }
