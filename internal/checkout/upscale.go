package checkout

import (
	"context"
)

const (
	// Generated images come out of the provider at this edge length.
	generatedDimension = 1024
	// targetDimension is the print resolution we aim for.
	targetDimension = 4096
	// maxScalePerStep is the largest factor the upscaler accepts.
	maxScalePerStep = 4
	// maxOrderFileBytes keeps the order file under the print provider's
	// upload ceiling.
	maxOrderFileBytes = 45 * 1024 * 1024
)

// prepareOrderFile enlarges the artwork toward print resolution by
// repeated doubling. Strictly best effort: any failure along the way
// falls back to the best URL so far, ultimately the original. A paid
// order always goes out.
func (s *Service) prepareOrderFile(ctx context.Context, originalURL string) string {
	if s.upscaler == nil {
		return originalURL
	}

	bestURL := originalURL
	dimension := generatedDimension
	for dimension < targetDimension {
		scale := (targetDimension + dimension - 1) / dimension
		if scale > maxScalePerStep {
			scale = maxScalePerStep
		}
		if scale < 2 {
			scale = 2
		}

		candidate, err := s.upscaler.Upscale(ctx, bestURL, scale)
		if err != nil {
			s.logger.Warn().Err(err).Str("image_url", bestURL).Msg("upscale failed, ordering with current resolution")
			s.recordUpscaleFallback(bestURL == originalURL)
			return bestURL
		}
		size, err := s.upscaler.ContentLength(ctx, candidate)
		if err != nil {
			s.logger.Warn().Err(err).Str("image_url", candidate).Msg("could not size upscaled file, ordering with current resolution")
			s.recordUpscaleFallback(bestURL == originalURL)
			return bestURL
		}
		if size > maxOrderFileBytes {
			s.logger.Warn().Int64("bytes", size).Msg("upscaled file over upload ceiling, keeping previous resolution")
			return bestURL
		}

		bestURL = candidate
		dimension *= scale
	}
	return bestURL
}

func (s *Service) recordUpscaleFallback(usedOriginal bool) {
	if usedOriginal && s.metrics != nil {
		s.metrics.UpscaleFallbacks.Inc()
	}
}
