package docs_test

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/swaggo/swag"

	_ "github.com/jhoicas/malexa-pos/docs"
)

func TestSwaggerRegistrado(t *testing.T) {
	doc, err := swag.ReadDoc()
	require.NoError(t, err)

	var spec struct {
		Paths map[string]map[string]any `json:"paths"`
	}
	require.NoError(t, json.Unmarshal([]byte(doc), &spec))
	for _, path := range []string{"/api/auth/login", "/api/cart/checkout", "/api/sales/export.xml", "/api/products/{id}/pricing"} {
		assert.Contains(t, spec.Paths, path)
	}
	assert.Contains(t, spec.Paths["/api/cart/items/{id}"], "patch")
}
