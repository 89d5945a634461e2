package providers

// responseEnvelope is the common wrapper of every provider API response
type responseEnvelope struct {
	Code    int    `json:"code"`
	Message string `json:"message"`
}

// IsSuccess returns true if the response indicates success
func (e responseEnvelope) IsSuccess() bool {
	return e.Code == 0
}

// categoryPayload is one category node in the provider's tree response
type categoryPayload struct {
	ID       string            `json:"id"`
	Slug     string            `json:"slug"`
	Name     string            `json:"name"`
	Children []categoryPayload `json:"children"`
}

// categoryListResponse is the response of the category tree endpoint
type categoryListResponse struct {
	responseEnvelope
	Data *struct {
		Categories []categoryPayload `json:"categories"`
	} `json:"data"`
}

// productPayload is one product record in the provider's product feed
type productPayload struct {
	ID           string            `json:"id"`
	SKU          string            `json:"sku"`
	Name         string            `json:"name"`
	Description  string            `json:"description"`
	Manufacturer string            `json:"manufacturer"`
	Price        string            `json:"price"`
	OldPrice     string            `json:"old_price"`
	Category1    string            `json:"category_1"`
	Category2    string            `json:"category_2"`
	Category3    string            `json:"category_3"`
	Properties   map[string]string `json:"properties"`
}

// productListResponse is the response of the per-category product endpoint
type productListResponse struct {
	responseEnvelope
	Data *struct {
		Products []productPayload `json:"products"`
	} `json:"data"`
}

// manufacturerListResponse is the response of the per-category manufacturer endpoint
type manufacturerListResponse struct {
	responseEnvelope
	Data *struct {
		Manufacturers []string `json:"manufacturers"`
	} `json:"data"`
}

// parameterPayload is one attribute dictionary entry in the parameter feed
type parameterPayload struct {
	Key    string   `json:"key"`
	Values []string `json:"values"`
}

// parameterListResponse is the response of the per-category parameter endpoint
type parameterListResponse struct {
	responseEnvelope
	Data *struct {
		Parameters []parameterPayload `json:"parameters"`
	} `json:"data"`
}

// documentPayload is one datasheet or manual reference in the document feed
type documentPayload struct {
	ProductID string `json:"product_id"`
	SKU       string `json:"sku"`
	Title     string `json:"title"`
	URL       string `json:"url"`
}

// documentListResponse is the response of the per-category document endpoint
type documentListResponse struct {
	responseEnvelope
	Data *struct {
		Documents []documentPayload `json:"documents"`
	} `json:"data"`
}
