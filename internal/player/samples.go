package player

import (
	"context"
	"encoding/binary"
	"io"
	"os"
)

// DecodeSamples decodes an audio file into mono float64 samples in [-1, 1]
// at the file's native sample rate. ctx is checked between decode chunks so
// a long decode can be abandoned early.
func DecodeSamples(ctx context.Context, path string) ([]float64, int, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, 0, err
	}
	defer f.Close()

	dec, err := newDecoder(f)
	if err != nil {
		return nil, 0, err
	}

	channels := dec.ChannelCount()
	frameSize := channels * 2

	samples := make([]float64, 0, dec.Length()/int64(frameSize))
	buf := make([]byte, 64*1024)
	carry := 0

	for {
		if err := ctx.Err(); err != nil {
			return nil, 0, err
		}

		n, err := dec.Read(buf[carry:])
		n += carry

		// Only whole frames convert; odd bytes wait for the next read.
		whole := n - n%frameSize
		for off := 0; off < whole; off += frameSize {
			sum := 0
			for ch := 0; ch < channels; ch++ {
				sum += int(int16(binary.LittleEndian.Uint16(buf[off+ch*2:])))
			}
			samples = append(samples, float64(sum)/float64(channels)/32768.0)
		}
		carry = copy(buf, buf[whole:n])

		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, 0, err
		}
	}

	return samples, dec.SampleRate(), nil
}
