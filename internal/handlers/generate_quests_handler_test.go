package handlers

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"

	"github.com/beaverbuddy/server/internal/config"
)

func newQuestsTestContext(t *testing.T, body string) (*gin.Context, *httptest.ResponseRecorder) {
	t.Helper()
	gin.SetMode(gin.TestMode)
	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	c.Request = httptest.NewRequest(http.MethodPost, "/api/v1/quests/generate", strings.NewReader(body))
	c.Request.Header.Set("Content-Type", "application/json")
	return c, w
}

func TestGenerateRejectsShortFeelingAsUnprocessable(t *testing.T) {
	h := NewQuestsHandler(nil, nil, nil, config.Config{}, nil)

	c, w := newQuestsTestContext(t, `{"feeling":"meh"}`)
	c.Set("uid", "user-1")
	h.Generate(c)

	assert.Equal(t, http.StatusUnprocessableEntity, w.Code)
	assert.Contains(t, w.Body.String(), "at least 20 characters")
}

func TestGenerateRejectsMalformedBody(t *testing.T) {
	h := NewQuestsHandler(nil, nil, nil, config.Config{}, nil)

	c, w := newQuestsTestContext(t, `{not json`)
	c.Set("uid", "user-1")
	h.Generate(c)

	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestGenerateRequiresAuthenticatedUser(t *testing.T) {
	h := NewQuestsHandler(nil, nil, nil, config.Config{}, nil)

	c, w := newQuestsTestContext(t, `{"feeling":"a perfectly long enough feeling text"}`)
	h.Generate(c)

	assert.Equal(t, http.StatusUnauthorized, w.Code)
}
