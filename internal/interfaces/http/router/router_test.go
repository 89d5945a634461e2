package router

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
)

func init() {
	gin.SetMode(gin.TestMode)
}

func serve(engine *gin.Engine, method, path string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, path, nil)
	w := httptest.NewRecorder()
	engine.ServeHTTP(w, req)
	return w
}

func textHandler(body string) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.String(http.StatusOK, body)
	}
}

func TestNewRouter_DefaultsToV1(t *testing.T) {
	r := NewRouter(gin.New())

	assert.Equal(t, "v1", r.apiVersion)
	assert.Empty(t, r.registrars)
}

func TestWithAPIVersion(t *testing.T) {
	engine := gin.New()
	r := NewRouter(engine, WithAPIVersion("v2"))

	g := NewDomainGroup("catalog", "/catalog")
	g.GET("/products", textHandler("products"))
	r.Register(g).Setup()

	w := serve(engine, http.MethodGet, "/api/v2/catalog/products")
	assert.Equal(t, http.StatusOK, w.Code)
}

func TestRouterSetup_MountsUnderVersionPrefix(t *testing.T) {
	engine := gin.New()
	r := NewRouter(engine)

	g := NewDomainGroup("system", "/system")
	g.GET("/ping", textHandler("pong"))
	r.Register(g).Setup()

	w := serve(engine, http.MethodGet, "/api/v1/system/ping")
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "pong", w.Body.String())

	// unversioned path must not resolve
	assert.Equal(t, http.StatusNotFound, serve(engine, http.MethodGet, "/system/ping").Code)
}

func TestDomainGroup_AllVerbs(t *testing.T) {
	engine := gin.New()
	g := NewDomainGroup("catalog", "/catalog")
	g.GET("/products", textHandler("list")).
		POST("/categories", textHandler("created")).
		PUT("/categories/:id/name", textHandler("renamed")).
		PATCH("/products/:id", textHandler("patched")).
		DELETE("/categories/:id", textHandler("deleted"))

	g.RegisterRoutes(engine.Group("/api/v1"))

	cases := []struct {
		method string
		path   string
		body   string
	}{
		{http.MethodGet, "/api/v1/catalog/products", "list"},
		{http.MethodPost, "/api/v1/catalog/categories", "created"},
		{http.MethodPut, "/api/v1/catalog/categories/7/name", "renamed"},
		{http.MethodPatch, "/api/v1/catalog/products/7", "patched"},
		{http.MethodDelete, "/api/v1/catalog/categories/7", "deleted"},
	}
	for _, tc := range cases {
		w := serve(engine, tc.method, tc.path)
		assert.Equal(t, http.StatusOK, w.Code, "%s %s", tc.method, tc.path)
		assert.Equal(t, tc.body, w.Body.String())
	}
}

func TestDomainGroup_Name(t *testing.T) {
	g := NewDomainGroup("sync", "/sync")
	assert.Equal(t, "sync", g.Name())
}

func TestDomainGroup_MiddlewareAppliesToRoutes(t *testing.T) {
	engine := gin.New()
	g := NewDomainGroup("sync", "/sync")
	g.Use(func(c *gin.Context) {
		c.Header("X-Sync-Provider", "vali")
		c.Next()
	})
	g.GET("/runs", textHandler("runs"))

	g.RegisterRoutes(engine.Group("/api/v1"))

	w := serve(engine, http.MethodGet, "/api/v1/sync/runs")
	assert.Equal(t, "vali", w.Header().Get("X-Sync-Provider"))
}

func TestDomainGroup_Subgroups(t *testing.T) {
	engine := gin.New()
	g := NewDomainGroup("catalog", "/catalog")

	products := g.Group("products", "/products")
	products.GET("", textHandler("products list"))

	categories := g.Group("categories", "/categories")
	categories.GET("/tree", textHandler("category tree"))

	g.RegisterRoutes(engine.Group("/api/v1"))

	w := serve(engine, http.MethodGet, "/api/v1/catalog/products")
	assert.Equal(t, "products list", w.Body.String())

	w = serve(engine, http.MethodGet, "/api/v1/catalog/categories/tree")
	assert.Equal(t, "category tree", w.Body.String())
}

func TestRouter_MultipleDomains(t *testing.T) {
	engine := gin.New()
	r := NewRouter(engine)

	catalog := NewDomainGroup("catalog", "/catalog")
	catalog.GET("/products", textHandler("products"))

	sync := NewDomainGroup("sync", "/sync")
	sync.GET("/runs", textHandler("runs"))

	r.Register(catalog).Register(sync).Setup()

	w := serve(engine, http.MethodGet, "/api/v1/catalog/products")
	assert.Equal(t, "products", w.Body.String())

	w = serve(engine, http.MethodGet, "/api/v1/sync/runs")
	assert.Equal(t, "runs", w.Body.String())
}
