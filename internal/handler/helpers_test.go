package handler_test

import (
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/stretchr/testify/require"

	"fireenrich/internal/handler"
	"fireenrich/internal/middleware"
)

func init() {
	gin.SetMode(gin.TestMode)
}

func newTestContext(method, target string, body io.Reader, clientID uuid.UUID) (*gin.Context, *httptest.ResponseRecorder) {
	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	c.Request, _ = http.NewRequest(method, target, body)
	if clientID != uuid.Nil {
		c.Set(middleware.ContextKeyClientID, clientID)
	}
	return c, w
}

func withSessionParam(c *gin.Context, sessionID uuid.UUID) {
	c.Params = gin.Params{{Key: "id", Value: sessionID.String()}}
}

func decodeResponse(t *testing.T, w *httptest.ResponseRecorder) handler.APIResponse {
	t.Helper()
	var resp handler.APIResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	return resp
}
