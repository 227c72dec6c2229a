package validator

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type searchQuery struct {
	Query    string `json:"query" validate:"required,max=200"`
	Language string `json:"language" validate:"omitempty,min=2,max=8"`
	Season   int    `json:"season" validate:"gte=0,lte=999"`
	Link     string `json:"url" validate:"omitempty,http_url"`
}

func TestValidate(t *testing.T) {
	v := NewValidator()

	_, ok := v.Validate(searchQuery{Query: "show", Language: "eng"})
	assert.True(t, ok)

	errs, ok := v.Validate(searchQuery{Language: "e", Season: -1, Link: "nope"})
	require.False(t, ok)
	require.Len(t, errs, 4)

	byField := map[string]ValidationError{}
	for _, e := range errs {
		byField[e.Field] = e
	}
	assert.Equal(t, "REQUIRED", byField["query"].Code)
	assert.Equal(t, "query is required", byField["query"].Message)
	assert.Equal(t, "language must be at least 2 characters long", byField["language"].Message)
	assert.Equal(t, "season must be at least 0", byField["season"].Message)
	assert.Equal(t, "url must be a valid URL", byField["url"].Message)
}
