package utils

import (
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/taskr/taskr-api/internal/constants"
)

func TestGenerateTokenKey(t *testing.T) {
	first, err := GenerateTokenKey()
	require.NoError(t, err)
	second, err := GenerateTokenKey()
	require.NoError(t, err)

	assert.Len(t, first, 2*TokenKeyBytes)
	assert.NotEqual(t, first, second)
}

func TestGetPaginationParams(t *testing.T) {
	gin.SetMode(gin.TestMode)

	tests := []struct {
		name   string
		query  string
		page   int
		limit  int
		offset int
	}{
		{"defaults", "", 1, constants.DefaultPageSize, 0},
		{"explicit", "page=3&limit=10", 3, 10, 20},
		{"page below minimum", "page=0&limit=10", 1, 10, 0},
		{"limit above maximum", "limit=1000", 1, constants.DefaultPageSize, 0},
		{"garbage", "page=abc&limit=xyz", 1, constants.DefaultPageSize, 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c, _ := gin.CreateTestContext(httptest.NewRecorder())
			c.Request = httptest.NewRequest("GET", "/api/tasks?"+tt.query, nil)

			params := GetPaginationParams(c)
			assert.Equal(t, tt.page, params.Page)
			assert.Equal(t, tt.limit, params.Limit)
			assert.Equal(t, tt.offset, params.Offset)
		})
	}
}

func TestTotalPages(t *testing.T) {
	params := PaginationParams{Page: 1, Limit: 10}
	assert.Equal(t, 0, params.TotalPages(0))
	assert.Equal(t, 1, params.TotalPages(10))
	assert.Equal(t, 2, params.TotalPages(11))
}
