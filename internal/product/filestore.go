package product

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
)

// FileStore persists the catalog as a single JSON document on disk. It mirrors
// the Postgres store closely enough that the service layer cannot tell them
// apart, and exists for deployments without a database.
type FileStore struct {
	path string
	mu   sync.Mutex
}

// NewFileStore prepares the data directory and backing file.
func NewFileStore(dir string) (*FileStore, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("create data dir: %w", err)
	}
	path := filepath.Join(dir, "products.json")
	if _, err := os.Stat(path); os.IsNotExist(err) {
		if err := os.WriteFile(path, []byte("[]"), 0o644); err != nil {
			return nil, fmt.Errorf("initialise products file: %w", err)
		}
	}
	return &FileStore{path: path}, nil
}

// Ping reports whether the backing file is still reachable.
func (s *FileStore) Ping(_ context.Context) error {
	_, err := os.Stat(s.path)
	return err
}

// Create appends a new product and persists the file.
func (s *FileStore) Create(_ context.Context, in CreateInput) (Product, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	products, err := s.load()
	if err != nil {
		return Product{}, err
	}
	now := time.Now().UTC()
	p := Product{
		ID:          uuid.NewString(),
		Name:        in.Name,
		SupplyPrice: in.SupplyPrice,
		ShopPrice:   in.ShopPrice,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	products = append(products, p)
	if err := s.save(products); err != nil {
		return Product{}, err
	}
	return p, nil
}

// List returns newest-first products matching the optional name query.
func (s *FileStore) List(_ context.Context, params ListParams) ([]Product, int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	products, err := s.load()
	if err != nil {
		return nil, 0, err
	}

	filtered := products
	if q := strings.ToLower(strings.TrimSpace(params.Query)); q != "" {
		filtered = filtered[:0:0]
		for _, p := range products {
			if strings.Contains(strings.ToLower(p.Name), q) {
				filtered = append(filtered, p)
			}
		}
	}
	sort.Slice(filtered, func(i, j int) bool {
		return filtered[i].CreatedAt.After(filtered[j].CreatedAt)
	})

	total := int64(len(filtered))
	if params.Limit <= 0 {
		return filtered, total, nil
	}
	start := params.Offset
	if start > len(filtered) {
		start = len(filtered)
	}
	end := start + params.Limit
	if end > len(filtered) {
		end = len(filtered)
	}
	return filtered[start:end], total, nil
}

// Get returns a single product by id.
func (s *FileStore) Get(_ context.Context, id string) (Product, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	products, err := s.load()
	if err != nil {
		return Product{}, err
	}
	for _, p := range products {
		if p.ID == id {
			return p, nil
		}
	}
	return Product{}, ErrNotFound
}

// Update applies non-nil fields and persists the file.
func (s *FileStore) Update(_ context.Context, id string, in UpdateInput) (Product, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	products, err := s.load()
	if err != nil {
		return Product{}, err
	}
	for i := range products {
		if products[i].ID != id {
			continue
		}
		if in.Name != nil {
			products[i].Name = *in.Name
		}
		if in.SupplyPrice != nil {
			products[i].SupplyPrice = *in.SupplyPrice
		}
		if in.ShopPrice != nil {
			products[i].ShopPrice = in.ShopPrice
		}
		products[i].UpdatedAt = time.Now().UTC()
		if err := s.save(products); err != nil {
			return Product{}, err
		}
		return products[i], nil
	}
	return Product{}, ErrNotFound
}

// Delete removes a product by id.
func (s *FileStore) Delete(_ context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	products, err := s.load()
	if err != nil {
		return err
	}
	for i := range products {
		if products[i].ID == id {
			products = append(products[:i], products[i+1:]...)
			return s.save(products)
		}
	}
	return ErrNotFound
}

func (s *FileStore) load() ([]Product, error) {
	data, err := os.ReadFile(s.path)
	if err != nil {
		return nil, fmt.Errorf("read products file: %w", err)
	}
	var products []Product
	if err := json.Unmarshal(data, &products); err != nil {
		return nil, fmt.Errorf("decode products file: %w", err)
	}
	return products, nil
}

func (s *FileStore) save(products []Product) error {
	data, err := json.MarshalIndent(products, "", "  ")
	if err != nil {
		return fmt.Errorf("encode products: %w", err)
	}
	if err := os.WriteFile(s.path, data, 0o644); err != nil {
		return fmt.Errorf("write products file: %w", err)
	}
	return nil
}
