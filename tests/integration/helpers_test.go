package integration

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http/httptest"
	"sync"

	"github.com/gin-gonic/gin"
	"github.com/madeiras-ouro-preto/sales-api/services"
	"github.com/stretchr/testify/require"
	"github.com/stretchr/testify/suite"
)

// staticUserInfo answers Auth0 userinfo lookups from a fixed table keyed by access token
type staticUserInfo map[string]services.Auth0UserInfo

func (s staticUserInfo) GetUserInfo(_ context.Context, accessToken string) (*services.Auth0UserInfo, error) {
	info, ok := s[accessToken]
	if !ok {
		return nil, services.ErrNotFound
	}
	return &info, nil
}

// recordingRenderer returns a fixed PDF and keeps the last HTML it was given
type recordingRenderer struct {
	mu   sync.Mutex
	html string
}

func (r *recordingRenderer) RenderPDF(_ context.Context, html string) ([]byte, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.html = html
	return []byte("%PDF-1.4 integration"), nil
}

func (r *recordingRenderer) lastHTML() string {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.html
}

// apiSuite is embedded by suites that drive the full route table
type apiSuite struct {
	suite.Suite
	router *gin.Engine
}

func (s *apiSuite) request(method, path, subject string, body any) *httptest.ResponseRecorder {
	var buf bytes.Buffer
	if body != nil {
		s.Require().NoError(json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	if subject != "" {
		req.Header.Set("X-Test-User", subject)
	}
	w := httptest.NewRecorder()
	s.router.ServeHTTP(w, req)
	return w
}

// expect asserts the status and unmarshals the data field of the envelope into dst
func (s *apiSuite) expect(w *httptest.ResponseRecorder, status int, dst any) {
	s.T().Helper()
	require.Equal(s.T(), status, w.Code, w.Body.String())
	if dst == nil {
		return
	}
	var envelope struct {
		Success bool            `json:"success"`
		Data    json.RawMessage `json:"data"`
	}
	s.Require().NoError(json.Unmarshal(w.Body.Bytes(), &envelope))
	s.Require().True(envelope.Success)
	s.Require().NoError(json.Unmarshal(envelope.Data, dst))
}

func (s *apiSuite) do(method, path, subject string, body any, status int, dst any) {
	s.T().Helper()
	s.expect(s.request(method, path, subject, body), status, dst)
}
