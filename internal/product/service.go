package product

import (
	"context"
	"errors"
	"regexp"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/rs/zerolog"

	"github.com/noah-isme/hampers-api/internal/common"
	"github.com/noah-isme/hampers-api/internal/obs"
)

func countCacheLookup(result string) {
	if obs.ProductCacheTotal != nil {
		obs.ProductCacheTotal.WithLabelValues(result).Inc()
	}
}

var priceRe = regexp.MustCompile(`^\d+(\.\d{1,2})?$`)

// NewValidator returns a validator with the price format rule registered.
func NewValidator() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())
	_ = v.RegisterValidation("price", func(fl validator.FieldLevel) bool {
		return priceRe.MatchString(fl.Field().String())
	})
	return v
}

// Service orchestrates catalog validation, storage, and list caching.
type Service struct {
	store    Store
	cache    *Cache
	validate *validator.Validate
	log      zerolog.Logger
}

// ServiceConfig groups Service dependencies.
type ServiceConfig struct {
	Store    Store
	Cache    *Cache
	Validate *validator.Validate
	Logger   zerolog.Logger
}

// NewService constructs a Service.
func NewService(cfg ServiceConfig) *Service {
	v := cfg.Validate
	if v == nil {
		v = NewValidator()
	}
	return &Service{store: cfg.Store, cache: cfg.Cache, validate: v, log: cfg.Logger}
}

// ListResult carries one page of products with the unfiltered total.
type ListResult struct {
	Items []Product `json:"items"`
	Total int64     `json:"total"`
}

// Create validates and persists a new product.
func (s *Service) Create(ctx context.Context, in CreateInput) (Product, error) {
	if err := s.validate.Struct(in); err != nil {
		return Product{}, validationMessage(err)
	}
	p, err := s.store.Create(ctx, in)
	if err != nil {
		return Product{}, err
	}
	s.invalidate(ctx)
	return p, nil
}

// List returns products matching params, served from cache when possible.
func (s *Service) List(ctx context.Context, params ListParams) (ListResult, error) {
	version, err := s.cache.Version(ctx)
	if err != nil {
		s.log.Warn().Err(err).Msg("product cache version lookup failed")
		version = -1
	}

	var key string
	if version >= 0 {
		key = s.cache.ListKey(version, params)
		var cached ListResult
		hit, err := s.cache.GetJSON(ctx, key, &cached)
		if err != nil {
			s.log.Warn().Err(err).Msg("product cache read failed")
		} else if hit {
			countCacheLookup("hit")
			return cached, nil
		} else {
			countCacheLookup("miss")
		}
	}

	items, total, err := s.store.List(ctx, params)
	if err != nil {
		return ListResult{}, err
	}
	result := ListResult{Items: items, Total: total}
	if key != "" {
		if err := s.cache.SetJSON(ctx, key, result); err != nil {
			s.log.Warn().Err(err).Msg("product cache write failed")
		}
	}
	return result, nil
}

// Get returns one product by id.
func (s *Service) Get(ctx context.Context, id string) (Product, error) {
	p, err := s.store.Get(ctx, id)
	if err != nil {
		return Product{}, notFoundOr(err)
	}
	return p, nil
}

// Update validates and applies a partial update.
func (s *Service) Update(ctx context.Context, id string, in UpdateInput) (Product, error) {
	if err := s.validate.Struct(in); err != nil {
		return Product{}, validationMessage(err)
	}
	if in.Name == nil && in.SupplyPrice == nil && in.ShopPrice == nil {
		return Product{}, common.ValidationError("no fields to update", nil)
	}
	p, err := s.store.Update(ctx, id, in)
	if err != nil {
		return Product{}, notFoundOr(err)
	}
	s.invalidate(ctx)
	return p, nil
}

// Delete removes a product.
func (s *Service) Delete(ctx context.Context, id string) error {
	if err := s.store.Delete(ctx, id); err != nil {
		return notFoundOr(err)
	}
	s.invalidate(ctx)
	return nil
}

func notFoundOr(err error) error {
	if errors.Is(err, ErrNotFound) {
		return common.NotFoundError("product not found", err)
	}
	return err
}

// ExportPayload is the portable catalog snapshot format.
type ExportPayload struct {
	Version    string    `json:"version"`
	ExportDate time.Time `json:"exportDate"`
	Products   []Product `json:"products"`
}

const exportVersion = "1.0"

// Export snapshots the entire catalog.
func (s *Service) Export(ctx context.Context) (ExportPayload, error) {
	items, _, err := s.store.List(ctx, ListParams{})
	if err != nil {
		return ExportPayload{}, err
	}
	return ExportPayload{
		Version:    exportVersion,
		ExportDate: time.Now().UTC(),
		Products:   items,
	}, nil
}

// ImportRowError describes one rejected row of a bulk import.
type ImportRowError struct {
	Index int    `json:"index"`
	Name  string `json:"name,omitempty"`
	Error string `json:"error"`
}

// ImportResult summarises a bulk import.
type ImportResult struct {
	Imported int              `json:"imported"`
	Failed   int              `json:"failed"`
	Errors   []ImportRowError `json:"errors,omitempty"`
}

// Import inserts each row independently and reports per-row outcomes.
// Rows that fail validation or storage do not abort the rest.
func (s *Service) Import(ctx context.Context, rows []CreateInput) (ImportResult, error) {
	var result ImportResult
	for i, row := range rows {
		if err := s.validate.Struct(row); err != nil {
			result.Failed++
			result.Errors = append(result.Errors, ImportRowError{Index: i, Name: row.Name, Error: validationMessage(err).Error()})
			continue
		}
		if _, err := s.store.Create(ctx, row); err != nil {
			result.Failed++
			result.Errors = append(result.Errors, ImportRowError{Index: i, Name: row.Name, Error: "storage failure"})
			s.log.Error().Err(err).Int("row", i).Msg("product import row failed")
			continue
		}
		result.Imported++
	}
	if result.Imported > 0 {
		s.invalidate(ctx)
	}
	return result, nil
}

func (s *Service) invalidate(ctx context.Context) {
	if err := s.cache.Invalidate(ctx); err != nil {
		s.log.Warn().Err(err).Msg("product cache invalidation failed")
	}
}

func validationMessage(err error) error {
	var verrs validator.ValidationErrors
	if errors.As(err, &verrs) && len(verrs) > 0 {
		fe := verrs[0]
		field := fieldLabel(fe.Field())
		switch fe.Tag() {
		case "required":
			return common.ValidationError(field+" is required", nil)
		case "price":
			return common.ValidationError(field+" must be a number with at most two decimals", nil)
		case "max":
			return common.ValidationError(field+" is too long", nil)
		case "min":
			return common.ValidationError(field+" is too short", nil)
		}
		return common.ValidationError(field+" is invalid", nil)
	}
	return common.ValidationError("invalid input", err)
}

func fieldLabel(name string) string {
	switch name {
	case "Name":
		return "name"
	case "SupplyPrice":
		return "supplyPrice"
	case "ShopPrice":
		return "shopPrice"
	}
	return name
}
