package router

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/bingooyong/release-tracker/internal/checklist"
	"github.com/bingooyong/release-tracker/internal/config"
	"github.com/bingooyong/release-tracker/internal/handler"
	"github.com/bingooyong/release-tracker/internal/repository"
	"github.com/bingooyong/release-tracker/internal/service"
	"github.com/bingooyong/release-tracker/pkg/database"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/stretchr/testify/suite"
	"go.uber.org/zap"
)

// RouterTestSuite 基于内存SQLite的端到端测试套件
type RouterTestSuite struct {
	suite.Suite
	cfg    *config.Config
	engine *gin.Engine
}

func (s *RouterTestSuite) SetupTest() {
	cfg := config.Default()
	cfg.Server.Mode = "test"
	cfg.Database.DSN = ":memory:"
	cfg.Database.MaxIdleConns = 1
	cfg.Database.MaxOpenConns = 1
	cfg.Database.LogLevel = "silent"
	s.cfg = cfg

	log := zap.NewNop()
	db, err := database.Init(&cfg.Database, log)
	s.Require().NoError(err)
	s.Require().NoError(database.AutoMigrate(db, log))

	list, err := checklist.New(cfg.Checklist.Steps)
	s.Require().NoError(err)

	releaseService := service.NewReleaseService(repository.NewReleaseRepository(db, list), log)
	s.engine = New(cfg, handler.NewReleaseHandler(releaseService, list, log), log)
}

func (s *RouterTestSuite) TearDownTest() {
	s.NoError(database.Close())
}

func (s *RouterTestSuite) do(method, path, body string) *httptest.ResponseRecorder {
	var req *http.Request
	if body == "" {
		req = httptest.NewRequest(method, path, nil)
	} else {
		req = httptest.NewRequest(method, path, bytes.NewBufferString(body))
		req.Header.Set("Content-Type", "application/json")
	}
	w := httptest.NewRecorder()
	s.engine.ServeHTTP(w, req)
	return w
}

func (s *RouterTestSuite) decode(w *httptest.ResponseRecorder, out interface{}) {
	s.Require().NoError(json.Unmarshal(w.Body.Bytes(), out), w.Body.String())
}

func (s *RouterTestSuite) createRelease(body string) handler.ReleaseResponse {
	w := s.do(http.MethodPost, "/api/releases", body)
	s.Require().Equal(http.StatusCreated, w.Code, w.Body.String())
	var release handler.ReleaseResponse
	s.decode(w, &release)
	return release
}

func (s *RouterTestSuite) TestCreateRelease() {
	release := s.createRelease(`{"name":"Test Release","date":"2024-01-01T00:00:00.000Z","additional_info":"Test info","steps_completed":[true,true,true,true,true,true,true]}`)

	s.NotEmpty(release.ID)
	s.Equal("Test Release", release.Name)
	s.Equal("2024-01-01T00:00:00Z", release.Date.Format("2006-01-02T15:04:05Z07:00"))
	s.Require().NotNil(release.AdditionalInfo)
	s.Equal("Test info", *release.AdditionalInfo)
	s.Equal(checklist.StatusPlanned, release.Status)
	s.Equal([]bool{false, false, false, false, false, false, false}, release.StepsCompleted)
	s.Require().Len(release.Steps, 7)
	for i, step := range release.Steps {
		s.Equal(config.DefaultSteps[i], step.Name)
		s.False(step.Completed)
	}
}

func (s *RouterTestSuite) TestCreateReleaseValidation() {
	w := s.do(http.MethodPost, "/api/releases", `{"name":"Missing date"}`)
	s.Equal(http.StatusBadRequest, w.Code)

	var body map[string]interface{}
	s.decode(w, &body)
	s.Contains(body, "error")

	w = s.do(http.MethodGet, "/api/releases", "")
	var releases []handler.ReleaseResponse
	s.decode(w, &releases)
	s.Empty(releases, "校验失败不应产生记录")
}

func (s *RouterTestSuite) TestListReleasesOrderedByDate() {
	w := s.do(http.MethodGet, "/api/releases", "")
	s.Equal(http.StatusOK, w.Code)
	s.Equal("[]", strings.TrimSpace(w.Body.String()))

	s.createRelease(`{"name":"old","date":"2024-01-01"}`)
	s.createRelease(`{"name":"new","date":"2024-03-01"}`)
	s.createRelease(`{"name":"mid","date":"2024-02-01"}`)

	w = s.do(http.MethodGet, "/api/releases", "")
	s.Equal(http.StatusOK, w.Code)
	var releases []handler.ReleaseResponse
	s.decode(w, &releases)
	s.Require().Len(releases, 3)
	s.Equal("new", releases[0].Name)
	s.Equal("mid", releases[1].Name)
	s.Equal("old", releases[2].Name)
}

func (s *RouterTestSuite) TestToggleStepLifecycle() {
	release := s.createRelease(`{"name":"v1","date":"2024-01-01"}`)
	path := "/api/releases/" + release.ID + "/toggle-step"

	w := s.do(http.MethodPatch, path, `{"stepIndex":0}`)
	s.Require().Equal(http.StatusOK, w.Code)
	var toggled handler.ReleaseResponse
	s.decode(w, &toggled)
	s.True(toggled.StepsCompleted[0])
	s.True(toggled.Steps[0].Completed)
	s.Equal(checklist.StatusOngoing, toggled.Status)

	for i := 1; i < len(config.DefaultSteps); i++ {
		w = s.do(http.MethodPatch, path, `{"stepIndex":`+jsonInt(i)+`}`)
		s.Require().Equal(http.StatusOK, w.Code)
	}
	s.decode(w, &toggled)
	s.Equal(checklist.StatusDone, toggled.Status)

	w = s.do(http.MethodPatch, path, `{"stepIndex":3}`)
	s.Require().Equal(http.StatusOK, w.Code)
	s.decode(w, &toggled)
	s.False(toggled.StepsCompleted[3])
	s.Equal(checklist.StatusOngoing, toggled.Status)

	w = s.do(http.MethodPatch, path, `{"stepIndex":999}`)
	s.Equal(http.StatusBadRequest, w.Code)
}

func (s *RouterTestSuite) TestUpdateRelease() {
	release := s.createRelease(`{"name":"v1","date":"2024-01-01","additional_info":"draft"}`)
	path := "/api/releases/" + release.ID

	w := s.do(http.MethodPatch, path, `{"name":"Updated Release Name","additional_info":"Updated info"}`)
	s.Require().Equal(http.StatusOK, w.Code)
	var updated handler.ReleaseResponse
	s.decode(w, &updated)
	s.Equal("Updated Release Name", updated.Name)
	s.Require().NotNil(updated.AdditionalInfo)
	s.Equal("Updated info", *updated.AdditionalInfo)
	s.True(updated.Date.Equal(release.Date))

	w = s.do(http.MethodPatch, path, `{"additional_info":null}`)
	s.Require().Equal(http.StatusOK, w.Code)
	s.decode(w, &updated)
	s.Nil(updated.AdditionalInfo)

	w = s.do(http.MethodPatch, path, `{}`)
	s.Equal(http.StatusBadRequest, w.Code)
}

func (s *RouterTestSuite) TestUnknownReleaseReturnsNotFound() {
	id := uuid.NewString()

	tests := []struct {
		method string
		path   string
		body   string
	}{
		{http.MethodGet, "/api/releases/" + id, ""},
		{http.MethodPatch, "/api/releases/" + id, `{"name":"x"}`},
		{http.MethodPatch, "/api/releases/" + id + "/toggle-step", `{"stepIndex":0}`},
		{http.MethodDelete, "/api/releases/" + id, ""},
	}

	for _, tt := range tests {
		w := s.do(tt.method, tt.path, tt.body)
		s.Equal(http.StatusNotFound, w.Code, "%s %s", tt.method, tt.path)

		var body map[string]interface{}
		s.decode(w, &body)
		s.Equal("Release not found", body["error"])
	}
}

func (s *RouterTestSuite) TestDeleteRelease() {
	release := s.createRelease(`{"name":"v1","date":"2024-01-01"}`)

	w := s.do(http.MethodDelete, "/api/releases/"+release.ID, "")
	s.Require().Equal(http.StatusOK, w.Code)
	var body map[string]interface{}
	s.decode(w, &body)
	s.Equal(release.ID, body["id"])
	s.NotEmpty(body["message"])

	w = s.do(http.MethodGet, "/api/releases/"+release.ID, "")
	s.Equal(http.StatusNotFound, w.Code)

	w = s.do(http.MethodDelete, "/api/releases/"+release.ID, "")
	s.Equal(http.StatusNotFound, w.Code)
}

func (s *RouterTestSuite) TestSteps() {
	w := s.do(http.MethodGet, "/api/steps", "")
	s.Require().Equal(http.StatusOK, w.Code)

	var steps []checklist.Step
	s.decode(w, &steps)
	s.Require().Len(steps, len(config.DefaultSteps))
	for i, step := range steps {
		s.Equal(i, step.Index)
		s.Equal(config.DefaultSteps[i], step.Name)
	}
}

func (s *RouterTestSuite) TestHealthAndMetrics() {
	w := s.do(http.MethodGet, "/health", "")
	s.Require().Equal(http.StatusOK, w.Code)
	var health map[string]interface{}
	s.decode(w, &health)
	s.Equal("ok", health["status"])

	s.do(http.MethodGet, "/api/releases", "")

	w = s.do(http.MethodGet, "/metrics", "")
	s.Require().Equal(http.StatusOK, w.Code)
	s.Contains(w.Body.String(), "release_tracker_http_requests_total")
	s.Contains(w.Body.String(), `path="/api/releases"`)
	s.Contains(w.Body.String(), "release_tracker_releases_operations_total")
}

func (s *RouterTestSuite) TestNoRoute() {
	w := s.do(http.MethodGet, "/api/unknown", "")
	s.Equal(http.StatusNotFound, w.Code)

	var body map[string]interface{}
	s.decode(w, &body)
	s.Equal("Route not found", body["error"])
}

func (s *RouterTestSuite) TestCORS() {
	req := httptest.NewRequest(http.MethodOptions, "/api/releases", nil)
	req.Header.Set("Origin", "http://localhost:3000")
	req.Header.Set("Access-Control-Request-Method", http.MethodPatch)
	w := httptest.NewRecorder()
	s.engine.ServeHTTP(w, req)

	s.Equal(http.StatusNoContent, w.Code)
	s.Equal("*", w.Header().Get("Access-Control-Allow-Origin"))
}

func TestRouterTestSuite(t *testing.T) {
	suite.Run(t, new(RouterTestSuite))
}

func TestNew_CustomBasePathWithoutMetrics(t *testing.T) {
	cfg := config.Default()
	cfg.Server.Mode = "test"
	cfg.Server.BasePath = "/v2"
	cfg.Metrics.Enabled = false

	list, err := checklist.New([]string{"build", "ship"})
	require.NoError(t, err)
	engine := New(cfg, handler.NewReleaseHandler(nil, list, zap.NewNop()), zap.NewNop())

	w := httptest.NewRecorder()
	engine.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/v2/steps", nil))
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "ship")

	w = httptest.NewRecorder()
	engine.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func jsonInt(i int) string {
	raw, _ := json.Marshal(i)
	return string(raw)
}
