package docs

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/swaggo/swag"
)

func TestSwaggerDocIsValidJSON(t *testing.T) {
	doc, err := swag.ReadDoc()
	require.NoError(t, err)

	var parsed struct {
		Info struct {
			Title string `json:"title"`
		} `json:"info"`
		BasePath string                            `json:"basePath"`
		Paths    map[string]map[string]interface{} `json:"paths"`
	}
	require.NoError(t, json.Unmarshal([]byte(doc), &parsed))

	assert.Equal(t, "TripSplit API", parsed.Info.Title)
	assert.Equal(t, "/v1", parsed.BasePath)
	assert.Contains(t, parsed.Paths["/summary/trip/{id}"], "get")
	assert.Contains(t, parsed.Paths["/summary/trip/{id}/close"], "post")
	assert.Contains(t, parsed.Paths["/currencies/{code}/rate"], "put")
}
