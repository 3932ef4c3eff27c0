package helpers

import (
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testContext(target string) *gin.Context {
	gin.SetMode(gin.TestMode)
	c, _ := gin.CreateTestContext(httptest.NewRecorder())
	c.Request = httptest.NewRequest("GET", target, nil)
	return c
}

func TestParsePagination(t *testing.T) {
	page, limit, err := ParsePagination(testContext("/events"))
	require.NoError(t, err)
	assert.Equal(t, 1, page)
	assert.Equal(t, DefaultPageLimit, limit)

	page, limit, err = ParsePagination(testContext("/events?page=3&limit=500"))
	require.NoError(t, err)
	assert.Equal(t, 3, page)
	assert.Equal(t, MaxPageLimit, limit)

	for _, q := range []string{"?page=0", "?page=abc", "?limit=0", "?limit=-5"} {
		_, _, err := ParsePagination(testContext("/events" + q))
		assert.Error(t, err, q)
	}
}

func TestLastPage(t *testing.T) {
	assert.EqualValues(t, 0, LastPage(0, 10))
	assert.EqualValues(t, 1, LastPage(10, 10))
	assert.EqualValues(t, 2, LastPage(11, 10))
	assert.Equal(t, 20, Offset(3, 10))
}
