package router

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"image"
	"image/png"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"net/url"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/hahnmechanical/site/internal/config"
	"github.com/hahnmechanical/site/internal/db"
	"github.com/hahnmechanical/site/internal/handler"
	"github.com/hahnmechanical/site/internal/mail"
	"github.com/hahnmechanical/site/internal/middleware"
	"github.com/hahnmechanical/site/internal/storage"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

type capturedMail struct {
	mu       sync.Mutex
	messages []mail.Message
}

func (m *capturedMail) Send(_ context.Context, msg mail.Message) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.messages = append(m.messages, msg)
	return nil
}

type testEnv struct {
	router    *gin.Engine
	db        *gorm.DB
	mail      *capturedMail
	uploadDir string
}

func setupRouterTest(t *testing.T, overrides ...func(*Options)) *testEnv {
	t.Helper()
	gin.SetMode(gin.TestMode)

	dsn := fmt.Sprintf("file:router-%d?mode=memory&cache=shared", time.Now().UnixNano())
	gdb, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{Logger: logger.Default.LogMode(logger.Silent)})
	if err != nil {
		t.Fatalf("failed to open test db: %v", err)
	}
	if err := gdb.AutoMigrate(db.Models()...); err != nil {
		t.Fatalf("failed to migrate: %v", err)
	}
	t.Cleanup(func() {
		if sqlDB, err := gdb.DB(); err == nil {
			sqlDB.Close()
		}
	})

	uploadDir := t.TempDir()
	captured := &capturedMail{}
	api := handler.NewAPI(gdb, handler.Options{
		Uploader: storage.NewUploader(storage.NewLocalStore(uploadDir, "/static/uploads"), 1<<20, nil),
		Mailer:   captured,
		NotifyTo: "owner@example.com",
		Business: config.BusinessInfo{Name: "Hahn Mechanical", Phone: "(408) 460-5304", Email: "info@example.com", License: "LIC. 1"},
	})

	opts := Options{
		SessionSecret: "test-secret",
		UploadDir:     uploadDir,
		UploadURLPath: "/static/uploads",
		FormLimiter:   middleware.NewRateLimiter(time.Millisecond, 1000),
		LoginLimiter:  middleware.NewRateLimiter(time.Millisecond, 1000),
	}
	for _, override := range overrides {
		override(&opts)
	}

	r, err := SetupRouter(api, opts)
	if err != nil {
		t.Fatalf("setup router: %v", err)
	}

	return &testEnv{router: r, db: gdb, mail: captured, uploadDir: uploadDir}
}

func (e *testEnv) do(req *http.Request) *httptest.ResponseRecorder {
	w := httptest.NewRecorder()
	e.router.ServeHTTP(w, req)
	return w
}

func (e *testEnv) get(path string) *httptest.ResponseRecorder {
	return e.do(httptest.NewRequest(http.MethodGet, path, nil))
}

func (e *testEnv) postForm(path string, values url.Values) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodPost, path, strings.NewReader(values.Encode()))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	return e.do(req)
}

// login 返回带会话 Cookie 的请求装饰函数
func (e *testEnv) login(t *testing.T) func(*http.Request) *http.Request {
	t.Helper()
	db.DB = e.db
	t.Cleanup(func() { db.DB = nil })
	if err := db.EnsureUser("admin", "secret-pass"); err != nil {
		t.Fatalf("seed admin: %v", err)
	}

	w := e.postForm("/admin/login", url.Values{"username": {"admin"}, "password": {"secret-pass"}})
	if w.Code != http.StatusFound || w.Header().Get("Location") != "/admin" {
		t.Fatalf("expected login redirect, got %d %q", w.Code, w.Header().Get("Location"))
	}
	cookies := w.Result().Cookies()
	if len(cookies) == 0 {
		t.Fatalf("expected session cookie")
	}

	return func(req *http.Request) *http.Request {
		for _, c := range cookies {
			req.AddCookie(c)
		}
		return req
	}
}

func TestPublicPagesRender(t *testing.T) {
	env := setupRouterTest(t)

	cases := []struct {
		path string
		want string
	}{
		{"/", "Comfort You Can"},
		{"/services", "Duct Removal &amp; Replacement"},
		{"/gallery", "Photos coming soon."},
		{"/contact", "Request a Quote"},
		{"/service-inquiry?service=Heat+Pumps", "Heat Pumps"},
	}
	for _, tc := range cases {
		w := env.get(tc.path)
		if w.Code != http.StatusOK {
			t.Fatalf("%s: expected 200, got %d", tc.path, w.Code)
		}
		if !strings.Contains(w.Body.String(), tc.want) {
			t.Fatalf("%s: expected body to contain %q", tc.path, tc.want)
		}
	}

	if w := env.get("/does-not-exist"); w.Code != http.StatusNotFound {
		t.Fatalf("expected 404 for unknown route, got %d", w.Code)
	}
}

func TestNavigationFollowsTestimonialsFlag(t *testing.T) {
	env := setupRouterTest(t)

	w := env.get("/")
	if strings.Contains(w.Body.String(), `href="/testimonials"`) {
		t.Fatalf("testimonials link should be hidden by default")
	}
	if w := env.get("/testimonials"); w.Code != http.StatusNotFound {
		t.Fatalf("expected 404 while disabled, got %d", w.Code)
	}

	auth := env.login(t)
	req := auth(httptest.NewRequest(http.MethodPut, "/admin/api/settings", strings.NewReader(`{"testimonials_enabled":true}`)))
	req.Header.Set("Content-Type", "application/json")
	if w := env.do(req); w.Code != http.StatusOK {
		t.Fatalf("update settings failed: %d %s", w.Code, w.Body.String())
	}

	w = env.get("/")
	if !strings.Contains(w.Body.String(), `href="/testimonials"`) {
		t.Fatalf("expected testimonials link after enabling")
	}
	if w := env.get("/testimonials"); w.Code != http.StatusOK {
		t.Fatalf("expected testimonials page, got %d", w.Code)
	}
}

func TestContactSubmission(t *testing.T) {
	env := setupRouterTest(t)

	w := env.postForm("/contact", url.Values{"name": {"Jane"}, "email": {"jane@example.com"}})
	if w.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 for missing message, got %d", w.Code)
	}
	var count int64
	env.db.Model(&db.ContactSubmission{}).Count(&count)
	if count != 0 {
		t.Fatalf("expected no stored submission, got %d", count)
	}

	w = env.postForm("/contact", url.Values{"name": {"Jane"}, "email": {"jane@example.com"}, "message": {"Need a tune-up"}})
	if w.Code != http.StatusOK || !strings.Contains(w.Body.String(), "Message Sent!") {
		t.Fatalf("expected confirmation, got %d", w.Code)
	}
	env.db.Model(&db.ContactSubmission{}).Count(&count)
	if count != 1 {
		t.Fatalf("expected 1 stored submission, got %d", count)
	}
}

func TestServiceInquirySendsMail(t *testing.T) {
	env := setupRouterTest(t)

	w := env.postForm("/service-inquiry", url.Values{
		"service": {"Mini Splits"},
		"name":    {"Sam"},
		"email":   {"sam@example.com"},
		"phone":   {"408-555-0100"},
	})
	if w.Code != http.StatusOK || !strings.Contains(w.Body.String(), "Request Received!") {
		t.Fatalf("expected confirmation, got %d", w.Code)
	}

	var stored db.ContactSubmission
	if err := env.db.First(&stored).Error; err != nil {
		t.Fatalf("expected stored inquiry: %v", err)
	}
	if stored.ServiceType != "Mini Splits" {
		t.Fatalf("unexpected service type %q", stored.ServiceType)
	}
	if len(env.mail.messages) != 1 || env.mail.messages[0].Subject != "New Service Request: Mini Splits" {
		t.Fatalf("unexpected mail %+v", env.mail.messages)
	}
}

func TestAdminRequiresSession(t *testing.T) {
	env := setupRouterTest(t)

	w := env.get("/admin")
	if w.Code != http.StatusFound || w.Header().Get("Location") != "/admin/login" {
		t.Fatalf("expected redirect to login, got %d %q", w.Code, w.Header().Get("Location"))
	}
	if got := w.Header().Get("X-Robots-Tag"); got != "noindex, nofollow" {
		t.Fatalf("expected noindex header, got %q", got)
	}

	w = env.get("/admin/api/gallery")
	if w.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401 for api, got %d", w.Code)
	}

	w = env.postForm("/admin/login", url.Values{"username": {"admin"}, "password": {"wrong"}})
	if w.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401 for bad credentials, got %d", w.Code)
	}
}

func TestLoggedInLoginPageRedirects(t *testing.T) {
	env := setupRouterTest(t)
	auth := env.login(t)

	w := env.do(auth(httptest.NewRequest(http.MethodGet, "/admin/login", nil)))
	if w.Code != http.StatusFound || w.Header().Get("Location") != "/admin" {
		t.Fatalf("expected redirect to dashboard, got %d", w.Code)
	}

	for _, tab := range []string{"gallery", "testimonials", "settings", "inquiries", "bogus"} {
		w := env.do(auth(httptest.NewRequest(http.MethodGet, "/admin?tab="+tab, nil)))
		if w.Code != http.StatusOK {
			t.Fatalf("tab %s: expected 200, got %d", tab, w.Code)
		}
	}
}

func pngPart(t *testing.T, fields map[string]string) (*bytes.Buffer, string) {
	t.Helper()
	var body bytes.Buffer
	writer := multipart.NewWriter(&body)
	for k, v := range fields {
		writer.WriteField(k, v)
	}

	header := make(map[string][]string)
	header["Content-Disposition"] = []string{`form-data; name="image"; filename="unit.png"`}
	header["Content-Type"] = []string{"image/png"}
	part, err := writer.CreatePart(header)
	if err != nil {
		t.Fatalf("create part: %v", err)
	}
	if err := png.Encode(part, image.NewRGBA(image.Rect(0, 0, 8, 6))); err != nil {
		t.Fatalf("encode png: %v", err)
	}
	writer.Close()
	return &body, writer.FormDataContentType()
}

func TestAdminGalleryLifecycle(t *testing.T) {
	env := setupRouterTest(t)
	auth := env.login(t)

	body, contentType := pngPart(t, map[string]string{"title": "Attic furnace", "category": "retrofit"})
	req := auth(httptest.NewRequest(http.MethodPost, "/admin/api/gallery", body))
	req.Header.Set("Content-Type", contentType)
	w := env.do(req)
	if w.Code != http.StatusOK {
		t.Fatalf("create gallery failed: %d %s", w.Code, w.Body.String())
	}

	var created struct {
		Item db.GalleryImage `json:"item"`
	}
	if err := json.Unmarshal(w.Body.Bytes(), &created); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if created.Item.ImageWidth != 8 || created.Item.ImageHeight != 6 {
		t.Fatalf("expected decoded dimensions, got %dx%d", created.Item.ImageWidth, created.Item.ImageHeight)
	}
	if _, err := os.Stat(filepath.Join(env.uploadDir, filepath.Base(created.Item.ImageURL))); err != nil {
		t.Fatalf("expected uploaded file on disk: %v", err)
	}
	if w := env.get(created.Item.ImageURL); w.Code != http.StatusOK {
		t.Fatalf("expected upload to be served, got %d", w.Code)
	}

	if w := env.get(fmt.Sprintf("/gallery/%d", created.Item.ID)); w.Code != http.StatusOK {
		t.Fatalf("expected lightbox page, got %d", w.Code)
	}

	body, contentType = pngPart(t, map[string]string{"title": "Bad", "category": "boilers"})
	req = auth(httptest.NewRequest(http.MethodPost, "/admin/api/gallery", body))
	req.Header.Set("Content-Type", contentType)
	if w := env.do(req); w.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 for unknown category, got %d", w.Code)
	}

	del := auth(httptest.NewRequest(http.MethodDelete, fmt.Sprintf("/admin/api/gallery/%d", created.Item.ID), nil))
	if w := env.do(del); w.Code != http.StatusOK {
		t.Fatalf("delete failed: %d", w.Code)
	}
	del = auth(httptest.NewRequest(http.MethodDelete, fmt.Sprintf("/admin/api/gallery/%d", created.Item.ID), nil))
	if w := env.do(del); w.Code != http.StatusNotFound {
		t.Fatalf("expected 404 on second delete, got %d", w.Code)
	}
	if w := env.get(fmt.Sprintf("/gallery/%d", created.Item.ID)); w.Code != http.StatusNotFound {
		t.Fatalf("expected 404 lightbox after delete, got %d", w.Code)
	}
}

func TestStaticAssetsServed(t *testing.T) {
	env := setupRouterTest(t)
	for _, path := range []string{"/assets/css/site.css", "/assets/js/admin.js"} {
		if w := env.get(path); w.Code != http.StatusOK {
			t.Fatalf("%s: expected 200, got %d", path, w.Code)
		}
	}
	if w := env.get("/ping"); w.Code != http.StatusOK {
		t.Fatalf("expected pong, got %d", w.Code)
	}
	if w := env.get("/healthz"); w.Code != http.StatusOK {
		t.Fatalf("expected healthy, got %d", w.Code)
	}
}

func TestSetupRouterRequiresSessionSecret(t *testing.T) {
	api := handler.NewAPI(nil, handler.Options{})
	if _, err := SetupRouter(api, Options{}); !errors.Is(err, ErrSessionSecretRequired) {
		t.Fatalf("expected ErrSessionSecretRequired, got %v", err)
	}
}

func TestFormLimiterIgnoresSpoofedForwardedFor(t *testing.T) {
	env := setupRouterTest(t, func(o *Options) {
		o.FormLimiter = middleware.NewRateLimiter(time.Hour, 2)
	})

	blocked := 0
	for i := 0; i < 20; i++ {
		req := httptest.NewRequest(http.MethodPost, "/contact", strings.NewReader("name=x"))
		req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
		req.RemoteAddr = "203.0.113.7:5555"
		req.Header.Set("X-Forwarded-For", fmt.Sprintf("198.51.100.%d", i+1))
		if w := env.do(req); w.Code == http.StatusTooManyRequests {
			blocked++
		}
	}
	if blocked != 18 {
		t.Fatalf("expected 18 blocked requests from one peer, got %d", blocked)
	}
}

func TestFormLimiterHonoursTrustedProxy(t *testing.T) {
	env := setupRouterTest(t, func(o *Options) {
		o.FormLimiter = middleware.NewRateLimiter(time.Hour, 2)
		o.TrustedProxies = []string{"203.0.113.7"}
	})

	for i := 0; i < 5; i++ {
		req := httptest.NewRequest(http.MethodPost, "/contact", strings.NewReader("name=x"))
		req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
		req.RemoteAddr = "203.0.113.7:5555"
		req.Header.Set("X-Forwarded-For", fmt.Sprintf("198.51.100.%d", i+1))
		if w := env.do(req); w.Code == http.StatusTooManyRequests {
			t.Fatalf("request %d from distinct client behind trusted proxy was limited", i)
		}
	}
}
