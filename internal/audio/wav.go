package audio

import (
	"bytes"
	"errors"
	"fmt"
	"time"

	"github.com/go-audio/wav"
)

// Normalized format produced by the transcoder.
const (
	NormalizedSampleRate = 16000
	NormalizedChannels   = 1
	NormalizedBits       = 16
)

// wavFormatPCM is the WAVE_FORMAT_PCM tag.
const wavFormatPCM = 1

// WAVInfo describes a PCM WAV stream.
type WAVInfo struct {
	AudioFormat   uint16
	Channels      uint16
	SampleRate    uint32
	BitsPerSample uint16
	DataSize      uint32
	Duration      time.Duration
}

// Normalized reports whether the stream is mono 16 kHz 16-bit PCM.
func (i WAVInfo) Normalized() bool {
	return i.AudioFormat == wavFormatPCM &&
		i.Channels == NormalizedChannels &&
		i.SampleRate == NormalizedSampleRate &&
		i.BitsPerSample == NormalizedBits
}

// InspectWAV decodes the RIFF header of data and positions on the data
// chunk. LIST and other chunks before it are skipped by the decoder.
func InspectWAV(data []byte) (WAVInfo, error) {
	r := bytes.NewReader(data)
	d := wav.NewDecoder(r)
	if !d.IsValidFile() {
		if err := d.Err(); err != nil {
			return WAVInfo{}, fmt.Errorf("invalid WAV file: %w", err)
		}
		return WAVInfo{}, errors.New("invalid WAV file")
	}
	if err := d.FwdToPCM(); err != nil {
		return WAVInfo{}, fmt.Errorf("invalid WAV file: %w", err)
	}
	if d.PCMChunk == nil {
		return WAVInfo{}, errors.New("invalid WAV file: missing data chunk")
	}

	format := d.Format()
	info := WAVInfo{
		AudioFormat:   d.WavAudioFormat,
		Channels:      uint16(format.NumChannels),
		SampleRate:    uint32(format.SampleRate),
		BitsPerSample: d.BitDepth,
	}

	// Streamed writers leave the size unset; trust what is present.
	size := d.PCMSize
	if remaining := r.Len(); size < 0 || size > remaining {
		size = remaining
	}
	info.DataSize = uint32(size)

	// Decoder.Duration measures the whole RIFF body, headers included.
	if d.AvgBytesPerSec > 0 {
		info.Duration = time.Duration(float64(size) / float64(d.AvgBytesPerSec) * float64(time.Second))
	}
	return info, nil
}
