package server_test

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/golang/mock/gomock"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"github.com/azaliaz/bookstore/internal/config"
	"github.com/azaliaz/bookstore/internal/server"
	"github.com/azaliaz/bookstore/internal/server/mocks"
)

func init() {
	gin.SetMode(gin.TestMode)
}

func testConfig() config.Config {
	return config.Config{Addr: ":8080", BcryptCost: bcrypt.MinCost, AuthRPS: 100, AuthBurst: 100}
}

func newMockServer(t *testing.T) (*server.Server, *mocks.MockStorage, *gin.Engine) {
	t.Helper()
	ctrl := gomock.NewController(t)
	mockStorage := mocks.NewMockStorage(ctrl)
	s := server.New(testConfig(), mockStorage)
	t.Cleanup(func() { _ = s.ShutdownServer() })
	return s, mockStorage, s.Router()
}

func doJSON(router http.Handler, method, path, body string) *httptest.ResponseRecorder {
	var req *http.Request
	if body == "" {
		req = httptest.NewRequest(method, path, nil)
	} else {
		req = httptest.NewRequest(method, path, strings.NewReader(body))
		req.Header.Set("Content-Type", "application/json")
	}
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	return w
}

func decode[T any](t *testing.T, w *httptest.ResponseRecorder) T {
	t.Helper()
	var v T
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &v), w.Body.String())
	return v
}
