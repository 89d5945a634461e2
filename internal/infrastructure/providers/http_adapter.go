package providers

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	domainsync "github.com/shop/backend/internal/domain/sync"
	"github.com/shop/backend/internal/infrastructure/config"
	"github.com/shop/backend/internal/infrastructure/telemetry"
)

// maxResponseSize limits the response body size to prevent memory exhaustion
const maxResponseSize = 10 * 1024 * 1024 // 10MB max response

// defaultTimeout is applied when the provider config carries no timeout
const defaultTimeout = 30 * time.Second

// Errors for adapter construction
var (
	ErrMissingProviderCode = errors.New("providers: provider code is required")
	ErrMissingBaseURL      = errors.New("providers: base URL is required")
)

// HTTPCatalogProvider pulls raw catalog data from one external provider over
// its HTTP JSON API. One instance serves one configured provider.
type HTTPCatalogProvider struct {
	code       domainsync.ProviderCode
	baseURL    string
	apiKey     string
	httpClient *http.Client
}

// NewHTTPCatalogProvider creates an adapter from the given provider configuration
func NewHTTPCatalogProvider(cfg config.ProviderConfig) (*HTTPCatalogProvider, error) {
	if cfg.Code == "" {
		return nil, ErrMissingProviderCode
	}
	if cfg.BaseURL == "" {
		return nil, ErrMissingBaseURL
	}

	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = defaultTimeout
	}

	return &HTTPCatalogProvider{
		code:    domainsync.ProviderCode(cfg.Code),
		baseURL: strings.TrimRight(cfg.BaseURL, "/"),
		apiKey:  cfg.APIKey,
		httpClient: &http.Client{
			Timeout: timeout,
		},
	}, nil
}

// Code returns the provider code this adapter handles
func (p *HTTPCatalogProvider) Code() domainsync.ProviderCode {
	return p.code
}

// FetchCategories returns the provider's category tree as nested raw records
func (p *HTTPCatalogProvider) FetchCategories(ctx context.Context) ([]domainsync.RawCategory, error) {
	body, err := p.doRequest(ctx, "/v1/categories")
	if err != nil {
		return nil, err
	}

	var resp categoryListResponse
	if err := json.Unmarshal(body, &resp); err != nil {
		return nil, fmt.Errorf("%w: %v", domainsync.ErrProviderInvalidResponse, err)
	}
	if !resp.IsSuccess() {
		return nil, fmt.Errorf("%w: %s: %d - %s", domainsync.ErrProviderRequestFailed, p.code, resp.Code, resp.Message)
	}
	if resp.Data == nil {
		return nil, fmt.Errorf("%w: %s: missing data", domainsync.ErrProviderInvalidResponse, p.code)
	}

	categories := make([]domainsync.RawCategory, 0, len(resp.Data.Categories))
	for _, payload := range resp.Data.Categories {
		categories = append(categories, mapCategory(payload))
	}
	return categories, nil
}

// FetchProducts returns the raw products of one provider category
func (p *HTTPCatalogProvider) FetchProducts(ctx context.Context, categoryHandle string) ([]domainsync.RawProduct, error) {
	body, err := p.doRequest(ctx, categoryPath(categoryHandle, "products"))
	if err != nil {
		return nil, err
	}

	var resp productListResponse
	if err := json.Unmarshal(body, &resp); err != nil {
		return nil, fmt.Errorf("%w: %v", domainsync.ErrProviderInvalidResponse, err)
	}
	if !resp.IsSuccess() {
		return nil, fmt.Errorf("%w: %s: %d - %s", domainsync.ErrProviderRequestFailed, p.code, resp.Code, resp.Message)
	}
	if resp.Data == nil {
		return nil, fmt.Errorf("%w: %s: missing data", domainsync.ErrProviderInvalidResponse, p.code)
	}

	products := make([]domainsync.RawProduct, 0, len(resp.Data.Products))
	for _, payload := range resp.Data.Products {
		products = append(products, mapProduct(payload))
	}
	return products, nil
}

// FetchManufacturers returns the distinct manufacturer names of one provider category
func (p *HTTPCatalogProvider) FetchManufacturers(ctx context.Context, categoryHandle string) ([]string, error) {
	body, err := p.doRequest(ctx, categoryPath(categoryHandle, "manufacturers"))
	if err != nil {
		return nil, err
	}

	var resp manufacturerListResponse
	if err := json.Unmarshal(body, &resp); err != nil {
		return nil, fmt.Errorf("%w: %v", domainsync.ErrProviderInvalidResponse, err)
	}
	if !resp.IsSuccess() {
		return nil, fmt.Errorf("%w: %s: %d - %s", domainsync.ErrProviderRequestFailed, p.code, resp.Code, resp.Message)
	}
	if resp.Data == nil {
		return nil, fmt.Errorf("%w: %s: missing data", domainsync.ErrProviderInvalidResponse, p.code)
	}

	return resp.Data.Manufacturers, nil
}

// FetchParameterOptions returns the attribute dictionary entries of one provider category
func (p *HTTPCatalogProvider) FetchParameterOptions(ctx context.Context, categoryHandle string) ([]domainsync.RawParameterOption, error) {
	body, err := p.doRequest(ctx, categoryPath(categoryHandle, "parameters"))
	if err != nil {
		return nil, err
	}

	var resp parameterListResponse
	if err := json.Unmarshal(body, &resp); err != nil {
		return nil, fmt.Errorf("%w: %v", domainsync.ErrProviderInvalidResponse, err)
	}
	if !resp.IsSuccess() {
		return nil, fmt.Errorf("%w: %s: %d - %s", domainsync.ErrProviderRequestFailed, p.code, resp.Code, resp.Message)
	}
	if resp.Data == nil {
		return nil, fmt.Errorf("%w: %s: missing data", domainsync.ErrProviderInvalidResponse, p.code)
	}

	options := make([]domainsync.RawParameterOption, 0, len(resp.Data.Parameters))
	for _, payload := range resp.Data.Parameters {
		options = append(options, domainsync.RawParameterOption{
			Key:    payload.Key,
			Values: payload.Values,
		})
	}
	return options, nil
}

// FetchDocuments returns the document references of one provider category
func (p *HTTPCatalogProvider) FetchDocuments(ctx context.Context, categoryHandle string) ([]domainsync.RawDocument, error) {
	body, err := p.doRequest(ctx, categoryPath(categoryHandle, "documents"))
	if err != nil {
		return nil, err
	}

	var resp documentListResponse
	if err := json.Unmarshal(body, &resp); err != nil {
		return nil, fmt.Errorf("%w: %v", domainsync.ErrProviderInvalidResponse, err)
	}
	if !resp.IsSuccess() {
		return nil, fmt.Errorf("%w: %s: %d - %s", domainsync.ErrProviderRequestFailed, p.code, resp.Code, resp.Message)
	}
	if resp.Data == nil {
		return nil, fmt.Errorf("%w: %s: missing data", domainsync.ErrProviderInvalidResponse, p.code)
	}

	documents := make([]domainsync.RawDocument, 0, len(resp.Data.Documents))
	for _, payload := range resp.Data.Documents {
		documents = append(documents, domainsync.RawDocument{
			ProductExternalID: payload.ProductID,
			SKU:               payload.SKU,
			Title:             payload.Title,
			URL:               payload.URL,
		})
	}
	return documents, nil
}

// ---------------------------------------------------------------------------
// Internal Helpers
// ---------------------------------------------------------------------------

// doRequest performs a GET request against the provider API. Profiling
// samples taken during the request carry the provider code as a label.
func (p *HTTPCatalogProvider) doRequest(ctx context.Context, path string) ([]byte, error) {
	var (
		body []byte
		err  error
	)
	telemetry.WithPprofLabels(ctx, telemetry.SyncRunLabels(string(p.code), "provider_fetch"), func(c context.Context) {
		body, err = p.fetch(c, path)
	})
	return body, err
}

func (p *HTTPCatalogProvider) fetch(ctx context.Context, path string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, p.baseURL+path, nil)
	if err != nil {
		return nil, fmt.Errorf("providers: failed to create request: %w", err)
	}

	req.Header.Set("Accept", "application/json")
	if p.apiKey != "" {
		req.Header.Set("X-API-Key", p.apiKey)
	}

	resp, err := p.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %v", domainsync.ErrProviderUnavailable, p.code, err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseSize))
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %v", domainsync.ErrProviderUnavailable, p.code, err)
	}

	if resp.StatusCode >= 500 {
		return nil, fmt.Errorf("%w: %s: HTTP %d", domainsync.ErrProviderUnavailable, p.code, resp.StatusCode)
	}
	if resp.StatusCode >= 400 {
		return nil, fmt.Errorf("%w: %s: HTTP %d", domainsync.ErrProviderRequestFailed, p.code, resp.StatusCode)
	}

	return body, nil
}

// categoryPath builds the path of a per-category feed endpoint
func categoryPath(categoryHandle, feed string) string {
	return fmt.Sprintf("/v1/categories/%s/%s", url.PathEscape(categoryHandle), feed)
}

// mapCategory converts a category payload, descending into its children
func mapCategory(payload categoryPayload) domainsync.RawCategory {
	category := domainsync.RawCategory{
		ExternalID: payload.ID,
		Slug:       payload.Slug,
		Name:       payload.Name,
	}
	for _, child := range payload.Children {
		category.Children = append(category.Children, mapCategory(child))
	}
	return category
}

// mapProduct converts a product payload to a raw product record
func mapProduct(payload productPayload) domainsync.RawProduct {
	product := domainsync.RawProduct{
		ExternalID:   payload.ID,
		SKU:          payload.SKU,
		Name:         payload.Name,
		Description:  payload.Description,
		Manufacturer: payload.Manufacturer,
		Price:        payload.Price,
		OldPrice:     payload.OldPrice,
		Category1:    payload.Category1,
		Category2:    payload.Category2,
		Category3:    payload.Category3,
		Properties:   make(map[string]string, len(payload.Properties)),
	}
	for key, value := range payload.Properties {
		product.Properties[key] = value
	}
	return product
}

// Ensure HTTPCatalogProvider implements CatalogProvider interface
var _ domainsync.CatalogProvider = (*HTTPCatalogProvider)(nil)
