package sync

import (
	"context"
	"errors"
)

var (
	ErrProviderUnavailable     = errors.New("sync: provider temporarily unavailable")
	ErrProviderRequestFailed   = errors.New("sync: provider request failed")
	ErrProviderInvalidResponse = errors.New("sync: invalid provider response")
)

// ProviderCode identifies one external catalog provider. The set is open:
// adapters register themselves under their own code.
type ProviderCode string

// String returns the string representation of ProviderCode
func (c ProviderCode) String() string {
	return string(c)
}

// RawCategory is a category record as delivered by a provider. Nested
// subcategory lists carry up to two additional levels.
type RawCategory struct {
	// ExternalID is the provider's stable identifier for the node
	ExternalID string
	// Slug is the provider-assigned path token, when the provider has one
	Slug string
	// Name is the free-text display label
	Name string
	// Children are the nested subcategories, one level down
	Children []RawCategory
}

// RawProduct is a product record as delivered by a provider. Category
// membership arrives denormalized as up to three free-text labels; arbitrary
// provider properties arrive as a key/value map with provider prefixes
// already stripped by the adapter.
type RawProduct struct {
	ExternalID   string
	SKU          string
	Name         string
	Description  string
	Manufacturer string
	Price        string
	OldPrice     string
	// Category1..Category3 are the denormalized category labels, outermost
	// first. A literal "null" (any casing) means absent.
	Category1 string
	Category2 string
	Category3 string
	// Properties holds the provider-specific attribute fields keyed by the
	// provider's short token, e.g. "cvjat" -> "Черен".
	Properties map[string]string
}

// RawParameterOption is one dictionary value delivered by a provider's
// parameter feed: an attribute key with its admissible values for a category.
type RawParameterOption struct {
	Key    string
	Values []string
}

// RawDocument is a datasheet or manual reference delivered by a provider
type RawDocument struct {
	ProductExternalID string
	SKU               string
	Title             string
	URL               string
}

// CatalogProvider is the port through which raw catalog data is pulled from
// one external provider. Implementations live in the infrastructure layer;
// fetches are synchronous, blocking calls made once per logical grouping.
type CatalogProvider interface {
	// Code returns the provider code this adapter handles
	Code() ProviderCode

	// FetchCategories returns the provider's category tree as nested raw records
	FetchCategories(ctx context.Context) ([]RawCategory, error)

	// FetchProducts returns the raw products of one provider category
	FetchProducts(ctx context.Context, categoryHandle string) ([]RawProduct, error)

	// FetchManufacturers returns the distinct manufacturer names of one
	// provider category
	FetchManufacturers(ctx context.Context, categoryHandle string) ([]string, error)

	// FetchParameterOptions returns the attribute dictionary entries of one
	// provider category
	FetchParameterOptions(ctx context.Context, categoryHandle string) ([]RawParameterOption, error)

	// FetchDocuments returns the document references of one provider category
	FetchDocuments(ctx context.Context, categoryHandle string) ([]RawDocument, error)
}
