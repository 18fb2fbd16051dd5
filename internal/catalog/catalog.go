package catalog

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"sync"
	"time"

	"golang.org/x/sync/singleflight"

	"github.com/adam-tracht/printgenie.ai/internal/domain"
	"github.com/adam-tracht/printgenie.ai/internal/infra"
	"github.com/adam-tracht/printgenie.ai/internal/providers/printful"
)

// offeredTypes is the storefront's product range, in display order.
var offeredTypes = []string{
	"Canvas (in)",
	"Framed Canvas (in)",
	"Enhanced Matte Paper Poster (in)",
	"Enhanced Matte Paper Framed Poster (in)",
	"Framed Poster With Mat (cm)",
	"T-Shirt",
}

// Provider is the slice of the print API the catalog needs.
type Provider interface {
	Products(ctx context.Context) ([]printful.ProductSummary, error)
	Product(ctx context.Context, productID int64) (*printful.ProductDetail, error)
}

// Options configures the catalog service.
type Options struct {
	Provider Provider
	Logger   infra.Logger
	CacheTTL time.Duration
}

// Service resolves the storefront catalog from the print provider,
// caching results so browsing does not hammer the upstream.
type Service struct {
	provider Provider
	logger   infra.Logger
	ttl      time.Duration

	group singleflight.Group

	mu       sync.Mutex
	list     []domain.Product
	listAt   time.Time
	products map[int64]cachedProduct

	now func() time.Time
}

type cachedProduct struct {
	product  domain.Product
	cachedAt time.Time
}

func NewService(opts Options) *Service {
	ttl := opts.CacheTTL
	if ttl <= 0 {
		ttl = time.Hour
	}
	return &Service{
		provider: opts.Provider,
		logger:   opts.Logger,
		ttl:      ttl,
		products: make(map[int64]cachedProduct),
		now:      time.Now,
	}
}

// ListCatalog returns the offered products in display order. Variants
// are not populated at this level.
func (s *Service) ListCatalog(ctx context.Context) ([]domain.Product, error) {
	s.mu.Lock()
	if s.list != nil && s.now().Sub(s.listAt) < s.ttl {
		cached := s.list
		s.mu.Unlock()
		return cached, nil
	}
	s.mu.Unlock()

	// The leader's fetch serves every coalesced waiter, so it must not
	// die with the leader's own request context.
	fetchCtx := context.WithoutCancel(ctx)
	result, err, _ := s.group.Do("catalog", func() (any, error) {
		raw, err := s.provider.Products(fetchCtx)
		if err != nil {
			return nil, fmt.Errorf("fetch catalog: %w", domain.ErrCatalogUnavailable)
		}
		offered := filterOffered(raw)
		if len(offered) == 0 {
			return nil, fmt.Errorf("no offered products in catalog: %w", domain.ErrCatalogUnavailable)
		}
		s.mu.Lock()
		s.list = offered
		s.listAt = s.now()
		s.mu.Unlock()
		return offered, nil
	})
	if err != nil {
		return nil, err
	}
	return result.([]domain.Product), nil
}

// Product returns one offered product with its purchasable variants,
// filtered and sorted for display.
func (s *Service) Product(ctx context.Context, productID int64) (*domain.Product, error) {
	s.mu.Lock()
	if entry, ok := s.products[productID]; ok && s.now().Sub(entry.cachedAt) < s.ttl {
		cached := entry.product
		s.mu.Unlock()
		return &cached, nil
	}
	s.mu.Unlock()

	key := fmt.Sprintf("product:%d", productID)
	fetchCtx := context.WithoutCancel(ctx)
	result, err, _ := s.group.Do(key, func() (any, error) {
		detail, err := s.provider.Product(fetchCtx, productID)
		if err != nil {
			return nil, fmt.Errorf("fetch product %d: %w", productID, domain.ErrCatalogUnavailable)
		}
		product := buildProduct(detail)
		if product == nil {
			return nil, fmt.Errorf("product %d: %w", productID, domain.ErrNotFound)
		}
		s.mu.Lock()
		s.products[productID] = cachedProduct{product: *product, cachedAt: s.now()}
		s.mu.Unlock()
		return *product, nil
	})
	if err != nil {
		return nil, err
	}
	product := result.(domain.Product)
	return &product, nil
}

// Variants returns the displayable variants of one product.
func (s *Service) Variants(ctx context.Context, productID int64) ([]domain.Variant, error) {
	product, err := s.Product(ctx, productID)
	if err != nil {
		return nil, err
	}
	return product.Variants, nil
}

func filterOffered(raw []printful.ProductSummary) []domain.Product {
	rank := make(map[string]int, len(offeredTypes))
	for i, t := range offeredTypes {
		rank[t] = i
	}
	var offered []domain.Product
	for _, p := range raw {
		if p.Discontinued {
			continue
		}
		if _, ok := rank[p.TypeName]; !ok {
			continue
		}
		offered = append(offered, domain.Product{
			ID:           p.ID,
			Title:        p.Title,
			TypeName:     p.TypeName,
			Description:  p.Description,
			ThumbnailURL: p.Image,
		})
	}
	sort.SliceStable(offered, func(i, j int) bool {
		return rank[offered[i].TypeName] < rank[offered[j].TypeName]
	})
	return offered
}

func buildProduct(detail *printful.ProductDetail) *domain.Product {
	if detail == nil || detail.Product.ID == 0 {
		return nil
	}
	product := domain.Product{
		ID:           detail.Product.ID,
		Title:        detail.Product.Title,
		TypeName:     detail.Product.TypeName,
		Description:  detail.Product.Description,
		ThumbnailURL: detail.Product.Image,
	}
	dimensioned := product.TypeName != "T-Shirt"
	for _, v := range detail.Variants {
		if !v.InStock {
			continue
		}
		if dimensioned && !isSquareSize(v.Size) {
			continue
		}
		product.Variants = append(product.Variants, domain.Variant{
			ID:        v.ID,
			Color:     normalizeColor(v.Color),
			Size:      v.Size,
			BasePrice: float64(v.Price),
			InStock:   v.InStock,
			ImageURL:  v.Image,
		})
	}
	sortVariants(product.Variants)
	return &product
}

// SelectVariant finds the variant matching a color and size choice.
// A miss is an empty selection for the caller to handle, not an error.
func SelectVariant(variants []domain.Variant, color, size string) (domain.PricedVariant, bool) {
	color = normalizeColor(color)
	for _, v := range variants {
		if strings.EqualFold(v.Color, color) && strings.EqualFold(v.Size, size) {
			return domain.PricedVariant{
				Variant:      v,
				SellingPrice: SellingPrice(v.BasePrice),
			}, true
		}
	}
	return domain.PricedVariant{}, false
}

// Colors lists the distinct colors of a variant set, in first-seen order.
func Colors(variants []domain.Variant) []string {
	seen := make(map[string]bool)
	var colors []string
	for _, v := range variants {
		if !seen[v.Color] {
			seen[v.Color] = true
			colors = append(colors, v.Color)
		}
	}
	return colors
}

// Sizes lists the distinct sizes available in a color, display-sorted.
func Sizes(variants []domain.Variant, color string) []string {
	color = normalizeColor(color)
	seen := make(map[string]bool)
	var sizes []string
	for _, v := range variants {
		if !strings.EqualFold(v.Color, color) {
			continue
		}
		if !seen[v.Size] {
			seen[v.Size] = true
			sizes = append(sizes, v.Size)
		}
	}
	sort.SliceStable(sizes, func(i, j int) bool {
		return sizeLess(sizes[i], sizes[j])
	})
	return sizes
}

func normalizeColor(color string) string {
	color = strings.TrimSpace(color)
	if color == "" {
		return "default"
	}
	return color
}

func sortVariants(variants []domain.Variant) {
	sort.SliceStable(variants, func(i, j int) bool {
		if variants[i].Color != variants[j].Color {
			return variants[i].Color < variants[j].Color
		}
		return sizeLess(variants[i].Size, variants[j].Size)
	})
}
