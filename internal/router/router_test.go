package router

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/user/shortdrama/internal/cache"
	"github.com/user/shortdrama/internal/config"
	"github.com/user/shortdrama/internal/handler"
	"github.com/user/shortdrama/internal/model"
	"github.com/user/shortdrama/internal/service"
)

func newTestEngine(h *handler.Handler) *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	RegisterRoutes(r, h)
	return r
}

// 注册路由的表面契约：客户端按文档写出的路径必须存在
func TestRouteSurface(t *testing.T) {
	h := handler.NewHandler(&config.Config{}, nil, nil, nil, nil, nil, nil, nil, nil, nil)
	r := newTestEngine(h)

	registered := map[string]bool{}
	for _, route := range r.Routes() {
		registered[route.Method+" "+route.Path] = true
	}

	wanted := []string{
		"GET /api/v1/dramas",
		"GET /api/v1/dramas/search",
		"GET /api/v1/dramas/hot",
		"GET /api/v1/dramas/new",
		"GET /api/v1/dramas/trending",
		"GET /api/v1/dramas/recommendations",
		"GET /api/v1/dramas/:id",
		"POST /api/v1/dramas/:id/view",
		"GET /api/v1/dramas/:id/recommendations",
		"POST /api/v1/auth/register",
		"POST /api/v1/auth/login",
		"POST /api/v1/auth/refresh-token",
		"GET /api/v1/auth/check-username/:username",
		"GET /api/v1/auth/check-email/:email",
		"GET /api/v1/users/search",
		"GET /api/v1/users/stats",
		"GET /api/v1/categories/stats",
		"GET /api/v1/search",
		"GET /api/v1/search/recommendations/:type",
		"GET /api/v1/search/rankings/:type",
		"GET /api/v1/search/rankings/:type/trends",
	}
	for _, want := range wanted {
		if !registered[want] {
			t.Errorf("缺少路由 %s", want)
		}
	}
}

type capturingDramaStore struct {
	lastFilter model.DramaFilter
}

func (s *capturingDramaStore) List(f model.DramaFilter) (*model.DramaPage, error) {
	s.lastFilter = f
	return &model.DramaPage{
		Items: []model.Drama{{ID: 1, Title: "总裁驾到"}},
		Total: 1, Page: f.Page, Limit: f.Limit, Pages: 1,
	}, nil
}

func (s *capturingDramaStore) FindByID(int) (*model.Drama, error)              { return nil, nil }
func (s *capturingDramaStore) IncrementView(int) error                         { return nil }
func (s *capturingDramaStore) FindByFlag(string, int) ([]model.Drama, error)   { return nil, nil }
func (s *capturingDramaStore) FindTrendingCandidates(int) ([]model.Drama, error) { return nil, nil }

// /dramas/search 是带 q 关键词的列表查询
func TestDramaSearchRoute(t *testing.T) {
	store := &capturingDramaStore{}
	dramaSvc := service.NewDramaService(store, cache.New(cache.NewMemoryStore()))
	h := handler.NewHandler(&config.Config{}, nil, nil, dramaSvc, nil, nil, nil, nil, nil, nil)
	r := newTestEngine(h)

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/api/v1/dramas/search?q=%E6%80%BB%E8%A3%81", nil)
	r.ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("期望 200，实际 %d: %s", w.Code, w.Body.String())
	}
	if store.lastFilter.Search != "总裁" {
		t.Errorf("q 参数应映射为搜索关键词，实际 %q", store.lastFilter.Search)
	}

	var resp struct {
		Success bool `json:"success"`
	}
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatalf("响应应为统一信封: %v", err)
	}
	if !resp.Success {
		t.Errorf("success 应为 true: %s", w.Body.String())
	}
}
