package handlers

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"sync"
	"testing"
	"time"

	"jiahe-site/auth"
	"jiahe-site/models"
	"jiahe-site/response"
	"jiahe-site/sitedata"

	"github.com/brianvoe/gofakeit/v6"
	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
)

type memoryStore struct {
	mu      sync.Mutex
	data    *models.SiteData
	version int64
	err     error
}

func (m *memoryStore) Fetch(ctx context.Context) (*models.SiteData, int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.err != nil {
		return nil, 0, m.err
	}
	if m.data == nil {
		return models.Defaults(), 0, nil
	}
	return m.data.Clone(), m.version, nil
}

func (m *memoryStore) Replace(ctx context.Context, data *models.SiteData, base int64) (*models.StoreResult, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.err != nil {
		return nil, m.err
	}
	m.data = data.Clone()
	m.version++
	return &models.StoreResult{Success: true, Message: "saved", Version: m.version}, nil
}

type testEnv struct {
	router  *gin.Engine
	handler *Handler
	site    *sitedata.Controller
	store   *memoryStore
}

func newTestEnv(t *testing.T, hydrate bool) *testEnv {
	t.Helper()
	gin.SetMode(gin.TestMode)

	log := logrus.New()
	log.SetOutput(io.Discard)

	st := &memoryStore{}
	site := sitedata.NewController(st, sitedata.Options{Log: log})
	if hydrate {
		site.Hydrate(context.Background())
	}
	h := New(site, auth.NewService("test-secret", site.Admin), log)

	return &testEnv{
		router:  SetupRouter(h, RouterOptions{TemplateDir: "../templates"}),
		handler: h,
		site:    site,
		store:   st,
	}
}

func (e *testEnv) do(req *http.Request) *httptest.ResponseRecorder {
	w := httptest.NewRecorder()
	e.router.ServeHTTP(w, req)
	return w
}

func decode(t *testing.T, w *httptest.ResponseRecorder) response.Response {
	t.Helper()
	var resp response.Response
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode %q: %v", w.Body.String(), err)
	}
	return resp
}

func (e *testEnv) login(t *testing.T) string {
	t.Helper()
	body := `{"username":"admin","password":"admin"}`
	w := e.do(httptest.NewRequest(http.MethodPost, "/api/auth/login", strings.NewReader(body)))
	if w.Code != http.StatusOK {
		t.Fatalf("login status = %d: %s", w.Code, w.Body.String())
	}
	data := decode(t, w).Data.(map[string]any)
	return data["token"].(string)
}

func TestLoadingGateBeforeHydration(t *testing.T) {
	env := newTestEnv(t, false)

	for _, path := range []string{"/", "/about", "/admin", "/no-such-page"} {
		w := env.do(httptest.NewRequest(http.MethodGet, path, nil))
		if w.Code != http.StatusServiceUnavailable {
			t.Errorf("GET %s = %d; want 503", path, w.Code)
		}
		if w.Header().Get("Refresh") == "" {
			t.Errorf("GET %s has no Refresh header", path)
		}
	}

	w := env.do(httptest.NewRequest(http.MethodGet, "/api/admin/site-data", nil))
	if w.Code != http.StatusServiceUnavailable {
		t.Errorf("admin api before hydration = %d", w.Code)
	}

	w = env.do(httptest.NewRequest(http.MethodGet, "/api/health", nil))
	if w.Code != http.StatusOK || !strings.Contains(w.Body.String(), `"ready":false`) {
		t.Errorf("health = %d %s", w.Code, w.Body.String())
	}
}

func TestPublicPages(t *testing.T) {
	env := newTestEnv(t, true)

	tests := []struct {
		path   string
		status int
		want   string
	}{
		{"/", http.StatusOK, "嘉禾云网荣获2024智能制造创新大奖"},
		{"/?case=99", http.StatusOK, "行业经典案例"},
		{"/about?tab=news&page=9", http.StatusOK, "企业文化"},
		{"/products?tab=case", http.StatusOK, "航天科工某分部智能车间"},
		{"/news/n1", http.StatusOK, "近日，2024年度智能制造高峰论坛在京举行"},
		{"/news/nope", http.StatusNotFound, "新闻未找到"},
		{"/case/nope", http.StatusNotFound, "案例未找到"},
		{"/product/nope", http.StatusNotFound, "产品未找到"},
		{"/no-such-page", http.StatusNotFound, "您访问的页面不存在"},
	}
	for _, tt := range tests {
		w := env.do(httptest.NewRequest(http.MethodGet, tt.path, nil))
		if w.Code != tt.status {
			t.Errorf("GET %s = %d; want %d", tt.path, w.Code, tt.status)
			continue
		}
		if !strings.Contains(w.Body.String(), tt.want) {
			t.Errorf("GET %s body lacks %q", tt.path, tt.want)
		}
	}
}

func TestAdminAPIRequiresToken(t *testing.T) {
	env := newTestEnv(t, true)

	req := httptest.NewRequest(http.MethodGet, "/api/admin/site-data", nil)
	if w := env.do(req); w.Code != http.StatusUnauthorized {
		t.Errorf("no token = %d", w.Code)
	}

	req = httptest.NewRequest(http.MethodGet, "/api/admin/site-data", nil)
	req.Header.Set("Authorization", "Bearer garbage")
	w := env.do(req)
	if w.Code != http.StatusUnauthorized || decode(t, w).Code != response.ErrTokenInvalid {
		t.Errorf("bad token = %d %s", w.Code, w.Body.String())
	}

	body := `{"username":"admin","password":"wrongpass"}`
	w = env.do(httptest.NewRequest(http.MethodPost, "/api/auth/login", strings.NewReader(body)))
	if decode(t, w).Code != response.ErrInvalidCredentials {
		t.Errorf("wrong password login = %s", w.Body.String())
	}
}

func TestPatchSiteData(t *testing.T) {
	env := newTestEnv(t, true)
	token := env.login(t)
	before := env.site.Snapshot()

	address := gofakeit.Address().Address
	body, _ := json.Marshal(map[string]any{
		"contact": map[string]string{"address": address, "phone": "010-1", "email": "a@b.c"},
	})
	req := httptest.NewRequest(http.MethodPatch, "/api/admin/site-data", bytes.NewReader(body))
	req.Header.Set("Authorization", "Bearer "+token)
	w := env.do(req)
	if w.Code != http.StatusOK {
		t.Fatalf("patch = %d %s", w.Code, w.Body.String())
	}

	after := env.site.Snapshot()
	if after.Contact.Address != address {
		t.Errorf("address = %q", after.Contact.Address)
	}
	if len(after.News) != len(before.News) || after.CompanyIntro != before.CompanyIntro {
		t.Error("patch touched fields it did not name")
	}
	if env.store.data == nil || env.store.data.Contact.Address != address {
		t.Error("store did not receive the merged model")
	}

	req = httptest.NewRequest(http.MethodPatch, "/api/admin/site-data", strings.NewReader(`{}`))
	req.Header.Set("Authorization", "Bearer "+token)
	if w := env.do(req); decode(t, w).Code != response.ErrValidation {
		t.Errorf("empty patch = %s", w.Body.String())
	}
}

func TestPatchKeepsLocalChangeWhenStoreFails(t *testing.T) {
	env := newTestEnv(t, true)
	token := env.login(t)
	env.store.err = errors.New("connection refused")

	req := httptest.NewRequest(http.MethodPatch, "/api/admin/site-data",
		strings.NewReader(`{"industryTags":["一","二"]}`))
	req.Header.Set("Authorization", "Bearer "+token)
	w := env.do(req)
	if decode(t, w).Code != response.ErrSaveFailed {
		t.Fatalf("patch = %s", w.Body.String())
	}
	if tags := env.site.Snapshot().IndustryTags; len(tags) != 2 || tags[0] != "一" {
		t.Errorf("local tags = %v", tags)
	}
	if len(env.site.Alerts()) != 1 {
		t.Errorf("alerts = %d; want 1", len(env.site.Alerts()))
	}
}

func TestAPILogout(t *testing.T) {
	env := newTestEnv(t, true)
	token := env.login(t)

	req := httptest.NewRequest(http.MethodPost, "/api/auth/logout", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	env.do(req)

	req = httptest.NewRequest(http.MethodGet, "/api/admin/site-data", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	w := env.do(req)
	if w.Code != http.StatusUnauthorized || decode(t, w).Code != response.ErrSessionClosed {
		t.Errorf("after logout = %d %s", w.Code, w.Body.String())
	}
}

func TestConsoleLogin(t *testing.T) {
	env := newTestEnv(t, true)

	w := env.do(httptest.NewRequest(http.MethodGet, "/admin/news/new", nil))
	if w.Code != http.StatusSeeOther || w.Header().Get("Location") != "/admin" {
		t.Errorf("console without cookie = %d %s", w.Code, w.Header().Get("Location"))
	}

	form := url.Values{"username": {"admin"}, "password": {"wrongpass"}}
	req := httptest.NewRequest(http.MethodPost, "/admin/login", strings.NewReader(form.Encode()))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	w = env.do(req)
	if w.Code != http.StatusUnauthorized || !strings.Contains(w.Body.String(), "用户名或密码错误") {
		t.Errorf("bad console login = %d", w.Code)
	}

	form.Set("password", "admin")
	req = httptest.NewRequest(http.MethodPost, "/admin/login", strings.NewReader(form.Encode()))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	w = env.do(req)
	if w.Code != http.StatusSeeOther {
		t.Fatalf("console login = %d", w.Code)
	}
	cookies := w.Result().Cookies()
	if len(cookies) == 0 || cookies[0].Name != auth.CookieName {
		t.Fatal("no session cookie")
	}

	req = httptest.NewRequest(http.MethodGet, "/admin", nil)
	req.AddCookie(cookies[0])
	w = env.do(req)
	if w.Code != http.StatusOK || !strings.Contains(w.Body.String(), "admin") {
		t.Errorf("dashboard = %d", w.Code)
	}
}

func TestConsoleCreateNews(t *testing.T) {
	env := newTestEnv(t, true)
	token := env.login(t)
	cookie := &http.Cookie{Name: auth.CookieName, Value: token}
	before := len(env.site.Snapshot().News)

	req := httptest.NewRequest(http.MethodGet, "/admin/news/new", nil)
	req.AddCookie(cookie)
	if w := env.do(req); w.Code != http.StatusOK {
		t.Fatalf("new news = %d", w.Code)
	}

	form := url.Values{"title": {"T"}, "summary": {"s"}, "content": {"c"}}
	req = httptest.NewRequest(http.MethodPost, "/admin/news", strings.NewReader(form.Encode()))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	req.AddCookie(cookie)
	if w := env.do(req); w.Code != http.StatusSeeOther {
		t.Fatalf("save news = %d", w.Code)
	}

	news := env.site.Snapshot().News
	if len(news) != before+1 || news[0].Title != "T" {
		t.Errorf("news after save: %d items, first %q", len(news), news[0].Title)
	}

	// a second save without a fresh draft must not add another item
	req = httptest.NewRequest(http.MethodPost, "/admin/news", strings.NewReader(form.Encode()))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	req.AddCookie(cookie)
	env.do(req)
	if n := len(env.site.Snapshot().News); n != before+1 {
		t.Errorf("replayed save left %d items", n)
	}
}

func TestConsoleDeleteNeedsConfirmation(t *testing.T) {
	env := newTestEnv(t, true)
	cookie := &http.Cookie{Name: auth.CookieName, Value: env.login(t)}
	before := len(env.site.Snapshot().Cases)

	req := httptest.NewRequest(http.MethodPost, "/admin/cases/c1/delete", nil)
	req.AddCookie(cookie)
	env.do(req)
	if len(env.site.Snapshot().Cases) != before {
		t.Fatal("delete without confirmation removed the case")
	}

	form := url.Values{"confirm": {"yes"}}
	req = httptest.NewRequest(http.MethodPost, "/admin/cases/c1/delete", strings.NewReader(form.Encode()))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	req.AddCookie(cookie)
	env.do(req)
	if _, ok := env.site.Snapshot().FindCase("c1"); ok {
		t.Error("confirmed delete kept the case")
	}
}

func TestConcurrentConsoleCreates(t *testing.T) {
	env := newTestEnv(t, true)
	// every draft is opened in the same millisecond and gets the same id
	fixed := time.UnixMilli(1717000000000)
	env.handler.now = func() time.Time { return fixed }
	before := len(env.site.Snapshot().News)

	const editors = 20
	cookies := make([]*http.Cookie, editors)
	for i := range cookies {
		cookies[i] = &http.Cookie{Name: auth.CookieName, Value: env.login(t)}
		req := httptest.NewRequest(http.MethodGet, "/admin/news/new", nil)
		req.AddCookie(cookies[i])
		if w := env.do(req); w.Code != http.StatusOK {
			t.Fatalf("new news = %d", w.Code)
		}
	}

	var wg sync.WaitGroup
	for i, cookie := range cookies {
		wg.Add(1)
		go func(i int, cookie *http.Cookie) {
			defer wg.Done()
			form := url.Values{"title": {fmt.Sprint("news ", i)}}
			req := httptest.NewRequest(http.MethodPost, "/admin/news", strings.NewReader(form.Encode()))
			req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
			req.AddCookie(cookie)
			env.do(req)
		}(i, cookie)
	}
	wg.Wait()

	news := env.site.Snapshot().News
	if len(news) != before+editors {
		t.Fatalf("news = %d; want %d", len(news), before+editors)
	}
	seen := map[string]bool{}
	for _, n := range news {
		if seen[n.ID] {
			t.Errorf("duplicate id %s", n.ID)
		}
		seen[n.ID] = true
	}
}

func TestSaveOfDeletedItemIsDropped(t *testing.T) {
	site := models.Defaults()
	edited := site.News[0]
	edited.Title = "edited"
	site.News = site.News[1:]

	if patch := savePatch(site, edited, false, time.Now()); !patch.IsEmpty() {
		t.Errorf("edit of a deleted item produced %v", patch.Fields())
	}
	if patch := savePatch(site, edited, true, time.Now()); patch.News == nil || (*patch.News)[0].ID != edited.ID {
		t.Error("new item was not prepended")
	}
}
