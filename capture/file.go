package capture

import (
	"errors"
	"fmt"
	"io"
	"math"
	"os"
	"path/filepath"
	"strings"

	"github.com/go-audio/wav"

	"github.com/RyanBlaney/sonido-aura/logging"
	"github.com/RyanBlaney/sonido-aura/transcode"
)

// Stdin as a file path reads the audio stream from standard input
const Stdin = "-"

// OpenFile decodes an audio file into a BufferSource. WAV files are read
// natively at their own sample rate; anything else goes through ffmpeg using
// decoder, or a default decoder when nil.
func OpenFile(path string, framing FramerConfig, decoder *transcode.Decoder) (*BufferSource, error) {
	if path == Stdin {
		return OpenReader(os.Stdin, framing, decoder)
	}

	logger := logging.WithFields(logging.Fields{
		"component": "capture",
		"function":  "OpenFile",
		"path":      path,
	})

	var (
		samples    []float64
		sampleRate int
		err        error
	)
	if strings.EqualFold(filepath.Ext(path), ".wav") {
		samples, sampleRate, err = readWAV(path)
	} else {
		if decoder == nil {
			decoder = transcode.NewDecoder(nil)
		}
		var data *transcode.AudioData
		if data, err = decoder.DecodeFile(path); err == nil {
			samples, sampleRate = data.PCM, data.SampleRate
		}
	}
	if err != nil {
		logger.Error(err, "Failed to decode audio file")
		return nil, err
	}

	logger.Debug("Audio file decoded", logging.Fields{
		"samples":     len(samples),
		"sample_rate": sampleRate,
	})
	return NewBufferSource(samples, sampleRate, framing)
}

// OpenReader decodes a piped audio stream of any container through ffmpeg.
// The whole stream is read before the first frame is returned.
func OpenReader(r io.Reader, framing FramerConfig, decoder *transcode.Decoder) (*BufferSource, error) {
	if decoder == nil {
		decoder = transcode.NewDecoder(nil)
	}
	data, err := decoder.DecodeReader(r)
	if err != nil {
		logging.Error(err, "Failed to decode audio stream", logging.Fields{
			"component": "capture",
			"function":  "OpenReader",
		})
		return nil, err
	}
	return NewBufferSource(data.PCM, data.SampleRate, framing)
}

// readWAV returns the file as mono samples in [-1, 1]
func readWAV(path string) ([]float64, int, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, 0, fmt.Errorf("could not open file: %w", err)
	}
	defer file.Close()

	decoder := wav.NewDecoder(file)
	if !decoder.IsValidFile() {
		return nil, 0, errors.New("invalid WAV file")
	}

	buf, err := decoder.FullPCMBuffer()
	if err != nil {
		return nil, 0, fmt.Errorf("could not read PCM buffer: %w", err)
	}
	if buf.Format == nil || buf.Format.NumChannels < 1 {
		return nil, 0, errors.New("WAV file has no channel layout")
	}

	bitDepth := int(buf.SourceBitDepth)
	if bitDepth == 0 {
		bitDepth = int(decoder.BitDepth)
	}
	if bitDepth <= 0 {
		return nil, 0, errors.New("WAV file has no bit depth")
	}

	// 8-bit WAV is unsigned, everything wider is signed
	scale := math.Pow(2, float64(bitDepth-1))
	offset := 0.0
	if bitDepth == 8 {
		offset = scale
	}

	channels := buf.Format.NumChannels
	frames := len(buf.Data) / channels
	samples := make([]float64, frames)
	for i := range frames {
		sum := 0.0
		for c := range channels {
			sum += (float64(buf.Data[i*channels+c]) - offset) / scale
		}
		samples[i] = sum / float64(channels)
	}

	return samples, buf.Format.SampleRate, nil
}
