// Package export writes captured audio to disk in uncompressed formats.
package export

import (
	"os"
	"path/filepath"
	"sort"

	"github.com/go-audio/audio"
	"github.com/go-audio/wav"

	"github.com/oliviamiller/audiostream/internal/audiocore"
	"github.com/oliviamiller/audiostream/internal/errors"
)

// WriteWAV saves the chunks' PCM as a single WAV file at filePath, creating
// parent directories as needed. Chunks are written in start-timestamp order
// regardless of input order.
func WriteWAV(filePath string, format audiocore.AudioFormat, chunks []audiocore.AudioChunk) error {
	if len(chunks) == 0 {
		return errors.Newf("no chunks to export").
			Component("export").
			Category(errors.CategoryValidation).
			Build()
	}

	ordered := make([]audiocore.AudioChunk, len(chunks))
	copy(ordered, chunks)
	sort.Slice(ordered, func(i, j int) bool {
		return ordered[i].StartNs < ordered[j].StartNs
	})

	totalBytes := 0
	for i := range ordered {
		totalBytes += len(ordered[i].Payload)
	}
	pcm := make([]byte, 0, totalBytes)
	for i := range ordered {
		pcm = append(pcm, ordered[i].Payload...)
	}

	if err := os.MkdirAll(filepath.Dir(filePath), 0o755); err != nil {
		return errors.New(err).
			Component("export").
			Category(errors.CategoryFileIO).
			Context("path", filePath).
			Build()
	}

	outFile, err := os.Create(filePath)
	if err != nil {
		return errors.New(err).
			Component("export").
			Category(errors.CategoryFileIO).
			Context("path", filePath).
			Build()
	}
	defer outFile.Close()

	enc := wav.NewEncoder(outFile, format.SampleRate, format.BitDepth, format.Channels, 1)

	if err := enc.Write(&audio.IntBuffer{
		Data:   byteSliceToInts(pcm),
		Format: &audio.Format{SampleRate: format.SampleRate, NumChannels: format.Channels},
	}); err != nil {
		return errors.New(err).
			Component("export").
			Category(errors.CategoryFileIO).
			Context("path", filePath).
			Context("operation", "wav_encode").
			Build()
	}

	if err := enc.Close(); err != nil {
		return errors.New(err).
			Component("export").
			Category(errors.CategoryFileIO).
			Context("path", filePath).
			Context("operation", "wav_finalize").
			Build()
	}
	return nil
}

// byteSliceToInts widens little-endian 16-bit samples to ints for the WAV
// encoder.
func byteSliceToInts(pcm []byte) []int {
	samples := make([]int, 0, len(pcm)/2)
	for i := 0; i+1 < len(pcm); i += 2 {
		samples = append(samples, int(int16(pcm[i])|int16(pcm[i+1])<<8))
	}
	return samples
}
