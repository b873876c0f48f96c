package transcode

import (
	"encoding/binary"
	"math"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/go-audio/audio"
	"github.com/go-audio/wav"
)

func TestBytesToFloat64(t *testing.T) {
	want := []float64{0, 0.5, -1, math.Pi}
	raw := make([]byte, 0, len(want)*8+3)
	for _, v := range want {
		raw = binary.LittleEndian.AppendUint64(raw, math.Float64bits(v))
	}
	raw = append(raw, 1, 2, 3) // partial trailing sample

	got := bytesToFloat64(raw)
	if len(got) != len(want) {
		t.Fatalf("len = %d, want %d", len(got), len(want))
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("sample %d = %v, want %v", i, got[i], want[i])
		}
	}

	if got := bytesToFloat64([]byte{1, 2, 3}); got != nil {
		t.Errorf("short input = %v, want nil", got)
	}
}

func TestOutputArgs(t *testing.T) {
	d := NewDecoder(&DecoderConfig{TargetSampleRate: 16000, MaxDuration: 1500 * time.Millisecond, FFmpegPath: "ffmpeg"})
	args := d.outputArgs()

	if args["f"] != "f64le" || args["ac"] != 1 || args["ar"] != 16000 {
		t.Errorf("unexpected args %v", args)
	}
	if args["t"] != "1.500" {
		t.Errorf("t = %v, want 1.500", args["t"])
	}

	if _, ok := NewDecoder(nil).outputArgs()["t"]; ok {
		t.Error("default decoder should not limit duration")
	}
}

func TestValidateConfig(t *testing.T) {
	tests := []struct {
		name    string
		config  DecoderConfig
		wantErr bool
	}{
		{"default", *DefaultDecoderConfig(), false},
		{"zero rate", DecoderConfig{FFmpegPath: "ffmpeg"}, true},
		{"negative duration", DecoderConfig{TargetSampleRate: 16000, MaxDuration: -time.Second, FFmpegPath: "ffmpeg"}, true},
		{"no binary", DecoderConfig{TargetSampleRate: 16000}, true},
	}
	for _, tt := range tests {
		cfg := tt.config
		err := NewDecoder(&cfg).ValidateConfig()
		if (err != nil) != tt.wantErr {
			t.Errorf("%s: err = %v, wantErr %v", tt.name, err, tt.wantErr)
		}
	}
}

func TestDecodeReader_RejectsBadConfig(t *testing.T) {
	r := strings.NewReader("not audio")
	if _, err := NewDecoder(&DecoderConfig{FFmpegPath: "ffmpeg"}).DecodeReader(r); err == nil {
		t.Fatal("zero target rate accepted")
	}
	if r.Len() != len("not audio") {
		t.Error("reader consumed before config was validated")
	}
}

func TestDecodeReader_WAVStream(t *testing.T) {
	d := NewDecoder(&DecoderConfig{TargetSampleRate: 8000, FFmpegPath: "ffmpeg"})
	if err := d.Available(); err != nil {
		t.Skip(err)
	}

	// one second of a 16 kHz sine, resampled to 8 kHz
	ints := make([]int, 16000)
	for i := range ints {
		ints[i] = int(math.Round(16000 * math.Sin(2*math.Pi*440*float64(i)/16000)))
	}
	path := filepath.Join(t.TempDir(), "in.wav")
	out, err := os.Create(path)
	if err != nil {
		t.Fatalf("Create: %v", err)
	}
	enc := wav.NewEncoder(out, 16000, 16, 1, 1)
	if err := enc.Write(&audio.IntBuffer{
		Format:         &audio.Format{NumChannels: 1, SampleRate: 16000},
		Data:           ints,
		SourceBitDepth: 16,
	}); err != nil {
		t.Fatalf("encode: %v", err)
	}
	if err := enc.Close(); err != nil {
		t.Fatalf("encoder close: %v", err)
	}
	out.Close()

	in, err := os.Open(path)
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	defer in.Close()

	data, err := d.DecodeReader(in)
	if err != nil {
		t.Fatalf("DecodeReader: %v", err)
	}
	if data.SampleRate != 8000 || data.Source != "pipe:" {
		t.Errorf("rate %d source %q", data.SampleRate, data.Source)
	}
	if n := len(data.PCM); n < 7900 || n > 8100 {
		t.Errorf("decoded %d samples, want ~8000", n)
	}
	if off := data.Duration - time.Second; off < -20*time.Millisecond || off > 20*time.Millisecond {
		t.Errorf("Duration = %v, want ~1s", data.Duration)
	}
}
