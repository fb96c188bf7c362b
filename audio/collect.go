// SPDX-License-Identifier: EPL-2.0

package audio

import (
	"fmt"
	"io"

	"github.com/voicemix/voicemix/utils"
)

// ResampleToMono16 resamples a source to targetRate, folds it to mono,
// and collects the whole stream as 16-bit PCM. It is the convenience
// path for feeding telephony-style consumers and the WAV capture
// writer; for finer control chain NewResampler and NewMonoMixer
// directly.
func ResampleToMono16(src Source, targetRate int, bufferSize int) ([]int16, int, error) {
	resampler, err := NewResampler(src, targetRate)
	if err != nil {
		return nil, targetRate, err
	}
	mono, err := NewMonoMixer(resampler)
	if err != nil {
		return nil, targetRate, err
	}

	var pcm16 []int16
	buf := make([]float32, bufferSize)
	for {
		n, err := mono.ReadSamples(buf)
		for i := range n {
			pcm16 = append(pcm16, utils.Float32ToInt16(buf[i]))
		}
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, targetRate, fmt.Errorf("%w", err)
		}
	}
	return pcm16, targetRate, nil
}
