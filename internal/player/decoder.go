package player

import (
	"bytes"
	"encoding/binary"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/go-audio/wav"
	"github.com/hajimehoshi/go-mp3"
	"github.com/jfreymuth/oggvorbis"
	"github.com/mewkiz/flac"
)

// audioDecoder presents any supported format as a seekable stream of
// interleaved 16-bit little-endian PCM at the source's native rate.
type audioDecoder interface {
	io.ReadSeeker
	Length() int64 // total decoded bytes
	SampleRate() int
	ChannelCount() int
}

// newDecoder detects format by file extension and returns the appropriate decoder.
func newDecoder(f *os.File) (audioDecoder, error) {
	ext := strings.ToLower(filepath.Ext(f.Name()))
	switch ext {
	case ".mp3":
		return newMP3Decoder(f)
	case ".wav":
		return newWAVDecoder(f)
	case ".flac":
		return newFLACDecoder(f)
	case ".ogg":
		return newOGGDecoder(f)
	default:
		return nil, fmt.Errorf("unsupported format: %s", ext)
	}
}

func clampS16(v int) int16 {
	if v > 32767 {
		return 32767
	}
	if v < -32768 {
		return -32768
	}
	return int16(v)
}

// tailBuffer carries decoded bytes that did not fit the caller's last read.
type tailBuffer struct {
	tail []byte
}

func (t *tailBuffer) drain(p []byte) int {
	if len(t.tail) == 0 {
		return 0
	}
	n := copy(p, t.tail)
	t.tail = t.tail[n:]
	return n
}

func (t *tailBuffer) stash(raw []byte, written int) {
	if written < len(raw) {
		t.tail = raw[written:]
	}
}

func clampOffset(pos, total int64) int64 {
	if pos < 0 {
		return 0
	}
	if pos > total {
		return total
	}
	return pos
}

func resolveSeek(pos, total, offset int64, whence int) int64 {
	switch whence {
	case io.SeekCurrent:
		offset += pos
	case io.SeekEnd:
		offset += total
	}
	return clampOffset(offset, total)
}

// --- MP3 ---

// go-mp3 already yields seekable 16-bit stereo PCM; only the fixed output
// format needs declaring.
type mp3Decoder struct {
	dec *mp3.Decoder
}

func newMP3Decoder(f *os.File) (*mp3Decoder, error) {
	dec, err := mp3.NewDecoder(f)
	if err != nil {
		return nil, fmt.Errorf("decoding MP3: %w", err)
	}
	return &mp3Decoder{dec: dec}, nil
}

func (d *mp3Decoder) Read(p []byte) (int, error) { return d.dec.Read(p) }
func (d *mp3Decoder) Seek(offset int64, whence int) (int64, error) {
	return d.dec.Seek(offset, whence)
}
func (d *mp3Decoder) Length() int64     { return d.dec.Length() }
func (d *mp3Decoder) SampleRate() int   { return d.dec.SampleRate() }
func (d *mp3Decoder) ChannelCount() int { return 2 }

// --- WAV ---

// WAV sources are decoded up front: the PCM is already raw, files are cheap
// to hold, and an in-memory buffer makes seeking exact.
type memDecoder struct {
	r          *bytes.Reader
	sampleRate int
	channels   int
}

func newWAVDecoder(f *os.File) (*memDecoder, error) {
	dec := wav.NewDecoder(f)
	buf, err := dec.FullPCMBuffer()
	if err != nil {
		return nil, fmt.Errorf("reading WAV PCM data: %w", err)
	}
	if buf == nil || buf.Format == nil || len(buf.Data) == 0 {
		return nil, fmt.Errorf("invalid WAV file")
	}

	bitDepth := int(dec.BitDepth)
	raw := make([]byte, len(buf.Data)*2)
	for i, v := range buf.Data {
		binary.LittleEndian.PutUint16(raw[i*2:], uint16(pcm16FromInt(v, bitDepth)))
	}

	return &memDecoder{
		r:          bytes.NewReader(raw),
		sampleRate: buf.Format.SampleRate,
		channels:   buf.Format.NumChannels,
	}, nil
}

// pcm16FromInt converts one sample at the source bit depth to signed 16-bit.
func pcm16FromInt(v, bitDepth int) int16 {
	switch bitDepth {
	case 8:
		// 8-bit WAV is unsigned
		return clampS16((v - 128) << 8)
	case 24:
		return clampS16(v >> 8)
	case 32:
		return clampS16(v >> 16)
	default:
		return clampS16(v)
	}
}

func (d *memDecoder) Read(p []byte) (int, error) { return d.r.Read(p) }
func (d *memDecoder) Seek(offset int64, whence int) (int64, error) {
	return d.r.Seek(offset, whence)
}
func (d *memDecoder) Length() int64     { return d.r.Size() }
func (d *memDecoder) SampleRate() int   { return d.sampleRate }
func (d *memDecoder) ChannelCount() int { return d.channels }

// --- FLAC ---

type flacDecoder struct {
	tailBuffer
	stream     *flac.Stream
	pos        int64
	totalBytes int64
	sampleRate int
	channels   int
	bps        int
}

func newFLACDecoder(f *os.File) (*flacDecoder, error) {
	stream, err := flac.NewSeek(f)
	if err != nil {
		return nil, fmt.Errorf("decoding FLAC: %w", err)
	}

	info := stream.Info
	channels := int(info.NChannels)
	return &flacDecoder{
		stream:     stream,
		sampleRate: int(info.SampleRate),
		channels:   channels,
		bps:        int(info.BitsPerSample),
		totalBytes: int64(info.NSamples) * int64(channels) * 2,
	}, nil
}

func (d *flacDecoder) Read(p []byte) (int, error) {
	if n := d.drain(p); n > 0 {
		d.pos += int64(n)
		return n, nil
	}

	frame, err := d.stream.ParseNext()
	if err != nil {
		return 0, err
	}

	nSamples := int(frame.Subframes[0].NSamples)
	raw := make([]byte, nSamples*d.channels*2)
	for i := 0; i < nSamples; i++ {
		for ch := 0; ch < d.channels; ch++ {
			sample := int(frame.Subframes[ch].Samples[i])
			switch {
			case d.bps > 16:
				sample >>= d.bps - 16
			case d.bps < 16:
				sample <<= 16 - d.bps
			}
			binary.LittleEndian.PutUint16(raw[(i*d.channels+ch)*2:], uint16(clampS16(sample)))
		}
	}

	n := copy(p, raw)
	d.stash(raw, n)
	d.pos += int64(n)
	return n, nil
}

func (d *flacDecoder) Seek(offset int64, whence int) (int64, error) {
	newPos := resolveSeek(d.pos, d.totalBytes, offset, whence)
	sampleNum := uint64(newPos / int64(d.channels*2))
	if _, err := d.stream.Seek(sampleNum); err != nil {
		return d.pos, err
	}
	d.tail = nil
	d.pos = newPos
	return newPos, nil
}

func (d *flacDecoder) Length() int64     { return d.totalBytes }
func (d *flacDecoder) SampleRate() int   { return d.sampleRate }
func (d *flacDecoder) ChannelCount() int { return d.channels }

// --- OGG Vorbis ---

type oggDecoder struct {
	tailBuffer
	reader     *oggvorbis.Reader
	pos        int64
	totalBytes int64
	sampleRate int
	channels   int
}

func newOGGDecoder(f *os.File) (*oggDecoder, error) {
	reader, err := oggvorbis.NewReader(f)
	if err != nil {
		return nil, fmt.Errorf("decoding OGG: %w", err)
	}

	channels := reader.Channels()
	return &oggDecoder{
		reader:     reader,
		sampleRate: reader.SampleRate(),
		channels:   channels,
		totalBytes: reader.Length() * int64(channels) * 2,
	}, nil
}

func (d *oggDecoder) Read(p []byte) (int, error) {
	if n := d.drain(p); n > 0 {
		d.pos += int64(n)
		return n, nil
	}

	samples := make([]float32, len(p)/2+1)
	n, err := d.reader.Read(samples)
	if n == 0 {
		if err != nil {
			return 0, err
		}
		return 0, io.EOF
	}

	raw := make([]byte, n*2)
	for i := 0; i < n; i++ {
		binary.LittleEndian.PutUint16(raw[i*2:], uint16(clampS16(int(samples[i]*32767))))
	}

	written := copy(p, raw)
	d.stash(raw, written)
	d.pos += int64(written)
	return written, nil
}

func (d *oggDecoder) Seek(offset int64, whence int) (int64, error) {
	newPos := resolveSeek(d.pos, d.totalBytes, offset, whence)
	d.reader.SetPosition(newPos / int64(d.channels*2))
	d.tail = nil
	d.pos = newPos
	return newPos, nil
}

func (d *oggDecoder) Length() int64     { return d.totalBytes }
func (d *oggDecoder) SampleRate() int   { return d.sampleRate }
func (d *oggDecoder) ChannelCount() int { return d.channels }
