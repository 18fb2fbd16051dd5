package generation

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/adam-tracht/printgenie.ai/internal/infra"
	"github.com/adam-tracht/printgenie.ai/internal/storage"
)

// maxArchiveBytes bounds how much of a provider image we will copy.
const maxArchiveBytes = 32 * 1024 * 1024

// Archiver copies a finished image out of the provider's short-lived
// URL into our own storage and hands back a signed long-lived URL.
// Provider URLs expire within hours; everything downstream (mockups,
// orders, the gallery) needs a durable address.
type Archiver struct {
	store      *storage.FileStore
	signer     *storage.Signer
	httpClient *http.Client
	logger     infra.Logger
}

func NewArchiver(store *storage.FileStore, signer *storage.Signer, logger infra.Logger) *Archiver {
	return &Archiver{
		store:      store,
		signer:     signer,
		httpClient: &http.Client{Timeout: 60 * time.Second},
		logger:     logger,
	}
}

// Archive downloads the image and returns a signed URL for the stored
// copy. Best effort: on any failure the caller keeps the provider URL.
func (a *Archiver) Archive(ctx context.Context, jobID, srcURL string) (string, bool) {
	if a == nil || a.store == nil || a.signer == nil {
		return "", false
	}
	data, err := a.fetch(ctx, srcURL)
	if err != nil {
		a.logger.Warn().Err(err).Str("job_id", jobID).Msg("could not archive generated image")
		return "", false
	}
	key, err := a.store.Write(ctx, fmt.Sprintf("generated/%s.png", jobID), data)
	if err != nil {
		a.logger.Warn().Err(err).Str("job_id", jobID).Msg("could not store generated image")
		return "", false
	}
	signed, err := a.signer.SignedURL(key, storage.DefaultSignedURLTTL)
	if err != nil {
		a.logger.Warn().Err(err).Str("job_id", jobID).Msg("could not sign stored image url")
		return "", false
	}
	return signed, true
}

func (a *Archiver) fetch(ctx context.Context, srcURL string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, srcURL, nil)
	if err != nil {
		return nil, err
	}
	resp, err := a.httpClient.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()
	if resp.StatusCode >= http.StatusBadRequest {
		return nil, fmt.Errorf("fetch image: http %d", resp.StatusCode)
	}
	data, err := io.ReadAll(io.LimitReader(resp.Body, maxArchiveBytes+1))
	if err != nil {
		return nil, err
	}
	if len(data) > maxArchiveBytes {
		return nil, fmt.Errorf("image exceeds %d bytes", maxArchiveBytes)
	}
	return data, nil
}
