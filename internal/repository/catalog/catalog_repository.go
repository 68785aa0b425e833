package catalog

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"shopPulse/domain"
	"time"
)

// ErrProductNotFound signals a product id the platform catalog cannot
// resolve. Callers drop such products instead of failing the request.
var ErrProductNotFound = errors.New("product not found")

type CatalogConfig struct {
	BaseURL string
	APIKey  string
	Timeout time.Duration
}

// CatalogRepository calls the platform catalog API. Catalog data is owned by
// the surrounding platform; this repository only reads it.
type CatalogRepository struct {
	catalogConfig CatalogConfig
	client        *http.Client
}

func NewCatalogRepository(cfg CatalogConfig) *CatalogRepository {
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 5 * time.Second
	}

	return &CatalogRepository{
		catalogConfig: cfg,
		client: &http.Client{
			Timeout: timeout,
		},
	}
}

// GetProduct resolves one product for a tenant.
func (r *CatalogRepository) GetProduct(ctx context.Context, tenantID, productID string) (*domain.CatalogProduct, error) {
	endpoint := fmt.Sprintf("%s/tenants/%s/products/%s",
		r.catalogConfig.BaseURL, url.PathEscape(tenantID), url.PathEscape(productID))

	var product domain.CatalogProduct
	if err := r.get(ctx, endpoint, &product); err != nil {
		return nil, err
	}

	return &product, nil
}

// GetProductsByCategory resolves every product of a tenant in one category.
func (r *CatalogRepository) GetProductsByCategory(ctx context.Context, tenantID, category string) ([]domain.CatalogProduct, error) {
	endpoint := fmt.Sprintf("%s/tenants/%s/products?category=%s",
		r.catalogConfig.BaseURL, url.PathEscape(tenantID), url.QueryEscape(category))

	var products []domain.CatalogProduct
	if err := r.get(ctx, endpoint, &products); err != nil {
		return nil, err
	}

	return products, nil
}

func (r *CatalogRepository) get(ctx context.Context, endpoint string, out any) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return fmt.Errorf("failed to build catalog request: %w", err)
	}

	req.Header.Set("Accept", "application/json")
	if r.catalogConfig.APIKey != "" {
		req.Header.Set("X-API-Key", r.catalogConfig.APIKey)
	}

	res, err := r.client.Do(req)
	if err != nil {
		return fmt.Errorf("catalog request failed: %w", err)
	}
	defer res.Body.Close()

	switch {
	case res.StatusCode == http.StatusNotFound:
		return ErrProductNotFound
	case res.StatusCode != http.StatusOK:
		return fmt.Errorf("catalog returned status %d", res.StatusCode)
	}

	if err := json.NewDecoder(res.Body).Decode(out); err != nil {
		return fmt.Errorf("failed to decode catalog response: %w", err)
	}

	return nil
}
