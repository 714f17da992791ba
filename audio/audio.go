package audio

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"time"

	goaudio "github.com/go-audio/audio"
	"github.com/go-audio/wav"

	apperrors "github.com/kbukum/scribe/errors"
)

// TargetSampleRate is the rate speech models expect.
const TargetSampleRate = 16000

const wavFormatPCM = 1

// Info describes a decoded container without reading its samples.
type Info struct {
	SampleRate int
	Channels   int
	BitDepth   int
	Duration   time.Duration
}

// Probe reads the WAV header of path.
func Probe(path string) (Info, error) {
	f, err := open(path)
	if err != nil {
		return Info{}, err
	}
	defer func() { _ = f.Close() }()

	d := wav.NewDecoder(f)
	if !d.IsValidFile() {
		return Info{}, apperrors.AudioDecodeFailed(path, errors.New("not a RIFF/WAVE file"))
	}
	if err := d.FwdToPCM(); err != nil {
		return Info{}, apperrors.AudioDecodeFailed(path, err)
	}
	frameSize := int64(d.NumChans) * int64(d.BitDepth) / 8
	if d.SampleRate == 0 || frameSize == 0 {
		return Info{}, apperrors.AudioDecodeFailed(path, errors.New("invalid format chunk"))
	}
	// Duration covers the data chunk only.
	frames := d.PCMLen() / frameSize
	dur := time.Duration(frames) * time.Second / time.Duration(d.SampleRate)
	return Info{
		SampleRate: int(d.SampleRate),
		Channels:   int(d.NumChans),
		BitDepth:   int(d.BitDepth),
		Duration:   dur,
	}, nil
}

// Decode reads a PCM WAV file and returns mono float32 samples in [-1, 1]
// at TargetSampleRate.
func Decode(path string) ([]float32, error) {
	f, err := open(path)
	if err != nil {
		return nil, err
	}
	defer func() { _ = f.Close() }()

	d := wav.NewDecoder(f)
	if !d.IsValidFile() {
		return nil, apperrors.AudioDecodeFailed(path, errors.New("not a RIFF/WAVE file"))
	}
	if d.WavAudioFormat != wavFormatPCM {
		return nil, apperrors.AudioDecodeFailed(path, fmt.Errorf("unsupported WAVE format %d", d.WavAudioFormat))
	}
	buf, err := d.FullPCMBuffer()
	if err != nil {
		return nil, apperrors.AudioDecodeFailed(path, err)
	}
	if buf.Format == nil || buf.Format.NumChannels <= 0 || buf.Format.SampleRate <= 0 {
		return nil, apperrors.AudioDecodeFailed(path, errors.New("missing format chunk"))
	}

	mono := Downmix(buf.Data, buf.Format.NumChannels, int(d.BitDepth))
	return Resample(mono, buf.Format.SampleRate, TargetSampleRate), nil
}

// EncodeWAV writes mono float32 samples as 16-bit PCM.
func EncodeWAV(path string, samples []float32, sampleRate int) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}

	enc := wav.NewEncoder(f, sampleRate, 16, 1, wavFormatPCM)
	buf := &goaudio.IntBuffer{
		Format:         &goaudio.Format{NumChannels: 1, SampleRate: sampleRate},
		Data:           make([]int, len(samples)),
		SourceBitDepth: 16,
	}
	for i, s := range samples {
		buf.Data[i] = int(clamp(s) * 32767)
	}
	if err := enc.Write(buf); err != nil {
		_ = enc.Close()
		_ = f.Close()
		return err
	}
	if err := enc.Close(); err != nil {
		_ = f.Close()
		return err
	}
	return f.Close()
}

// Downmix averages interleaved integer frames into mono and scales them to
// [-1, 1] for the given bit depth.
func Downmix(data []int, channels, bitDepth int) []float32 {
	if channels <= 0 {
		channels = 1
	}
	if bitDepth <= 0 {
		bitDepth = 16
	}
	scale := float32(int64(1) << (bitDepth - 1))
	if bitDepth == 8 {
		// 8-bit WAV is unsigned.
		out := make([]float32, len(data)/channels)
		for i := range out {
			var sum float32
			for c := 0; c < channels; c++ {
				sum += float32(data[i*channels+c] - 128)
			}
			out[i] = clamp(sum / float32(channels) / 128)
		}
		return out
	}

	out := make([]float32, len(data)/channels)
	for i := range out {
		var sum float32
		for c := 0; c < channels; c++ {
			sum += float32(data[i*channels+c])
		}
		out[i] = clamp(sum / float32(channels) / scale)
	}
	return out
}

// Resample converts samples between rates by linear interpolation.
func Resample(in []float32, from, to int) []float32 {
	if from == to || from <= 0 || to <= 0 || len(in) == 0 {
		return in
	}
	n := int(int64(len(in)) * int64(to) / int64(from))
	out := make([]float32, n)
	ratio := float64(from) / float64(to)
	for i := range out {
		pos := float64(i) * ratio
		j := int(pos)
		if j >= len(in)-1 {
			out[i] = in[len(in)-1]
			continue
		}
		frac := float32(pos - float64(j))
		out[i] = in[j] + (in[j+1]-in[j])*frac
	}
	return out
}

func clamp(s float32) float32 {
	switch {
	case s > 1:
		return 1
	case s < -1:
		return -1
	default:
		return s
	}
}

func open(path string) (*os.File, error) {
	f, err := os.Open(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, apperrors.FileNotFound(path)
		}
		return nil, apperrors.AudioDecodeFailed(path, err)
	}
	return f, nil
}
