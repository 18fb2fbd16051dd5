// Package gallery persists confirmed generated images so buyers can
// browse recent artwork.
package gallery

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/adam-tracht/printgenie.ai/internal/domain"
	"github.com/adam-tracht/printgenie.ai/internal/infra"
	"github.com/adam-tracht/printgenie.ai/internal/sqlinline"
)

// Image is one saved artwork.
type Image struct {
	ID        string    `json:"id"`
	ImageURL  string    `json:"url"`
	Prompt    string    `json:"prompt"`
	CreatedAt time.Time `json:"created_at"`
}

// Service reads and writes gallery rows. A nil executor disables the
// gallery; callers get ErrNotFound-style behavior instead of crashes.
type Service struct {
	db     infra.SQLExecutor
	logger infra.Logger
}

func NewService(db infra.SQLExecutor, logger infra.Logger) *Service {
	return &Service{db: db, logger: logger}
}

// Enabled reports whether a database is wired.
func (s *Service) Enabled() bool {
	return s != nil && s.db != nil
}

// Save records one confirmed image and returns it with its id.
func (s *Service) Save(ctx context.Context, imageURL, prompt string) (*Image, error) {
	if !s.Enabled() {
		return nil, fmt.Errorf("gallery disabled: %w", domain.ErrNotFound)
	}
	imageURL = strings.TrimSpace(imageURL)
	if imageURL == "" {
		return nil, fmt.Errorf("image url required: %w", domain.ErrValidation)
	}

	img := Image{
		ID:       uuid.NewString(),
		ImageURL: imageURL,
		Prompt:   strings.TrimSpace(prompt),
	}
	row := s.db.QueryRow(ctx, sqlinline.QInsertImage, img.ID, img.ImageURL, img.Prompt)
	if err := row.Scan(&img.CreatedAt); err != nil {
		return nil, fmt.Errorf("insert gallery image: %w", err)
	}
	s.logger.Info().Str("image_id", img.ID).Msg("gallery image saved")
	return &img, nil
}

// Get returns one image by id.
func (s *Service) Get(ctx context.Context, id string) (*Image, error) {
	if !s.Enabled() {
		return nil, fmt.Errorf("gallery disabled: %w", domain.ErrNotFound)
	}
	var img Image
	row := s.db.QueryRow(ctx, sqlinline.QSelectImageByID, id)
	if err := row.Scan(&img.ID, &img.ImageURL, &img.Prompt, &img.CreatedAt); err != nil {
		if infra.IsNoRows(err) {
			return nil, fmt.Errorf("gallery image %s: %w", id, domain.ErrNotFound)
		}
		return nil, fmt.Errorf("select gallery image: %w", err)
	}
	return &img, nil
}

// Recent lists the newest images, newest first.
func (s *Service) Recent(ctx context.Context, limit int) ([]Image, error) {
	if !s.Enabled() {
		return []Image{}, nil
	}
	if limit <= 0 || limit > 100 {
		limit = 24
	}
	rows, err := s.db.Query(ctx, sqlinline.QListRecentImages, limit)
	if err != nil {
		return nil, fmt.Errorf("list gallery images: %w", err)
	}
	defer rows.Close()

	images := make([]Image, 0, limit)
	for rows.Next() {
		var img Image
		if err := rows.Scan(&img.ID, &img.ImageURL, &img.Prompt, &img.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan gallery image: %w", err)
		}
		images = append(images, img)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate gallery images: %w", err)
	}
	return images, nil
}
