package handlers

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strconv"
	"strings"
	"testing"

	"emberboard/internal/db"
	"emberboard/internal/middleware"
	"emberboard/internal/models"
	"emberboard/internal/utils"

	"github.com/gin-contrib/sessions"
	"github.com/gin-contrib/sessions/cookie"
	"github.com/gin-gonic/gin"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// setupRouter 内存 sqlite + 完整中间件栈的测试引擎
func setupRouter(t *testing.T) *gin.Engine {
	t.Helper()
	gin.SetMode(gin.TestMode)

	name := strings.NewReplacer("/", "_", " ", "_").Replace(t.Name())
	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", name)
	gdb, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		t.Fatalf("Failed to open test database: %v", err)
	}
	if err := db.Migrate(gdb); err != nil {
		t.Fatalf("Failed to migrate test database: %v", err)
	}
	if err := db.SeedSettings(gdb); err != nil {
		t.Fatalf("Failed to seed settings: %v", err)
	}
	db.DB = gdb
	utils.GetCache().Purge()

	r := gin.New()
	store := cookie.NewStore([]byte("test_secret"))
	r.Use(sessions.Sessions("emberboard_session", store))
	r.Use(middleware.LoadUser())
	registerTestRoutes(r)
	return r
}

// registerTestRoutes 和生产路由保持一致的最小集合
func registerTestRoutes(r *gin.Engine) {
	authHandler := NewAuthHandler()
	postHandler := NewPostHandler()
	reactionHandler := NewReactionHandler()

	r.GET("/captcha", authHandler.Captcha)
	r.POST("/signup", authHandler.Register)
	r.POST("/login", authHandler.Login)
	r.POST("/reactions", reactionHandler.Handle)
	r.GET("/p/:pid", postHandler.Detail)

	authorized := r.Group("/")
	authorized.Use(middleware.AuthRequired())
	{
		authorized.POST("/submit", postHandler.Create)
	}
}

type testSession struct {
	Cookies []*http.Cookie
	Sid     string
	UserID  uint
}

func doJSON(t *testing.T, r *gin.Engine, method, path string, body interface{}, cookies []*http.Cookie) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		if err := json.NewEncoder(&buf).Encode(body); err != nil {
			t.Fatalf("Failed to encode body: %v", err)
		}
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	for _, c := range cookies {
		req.AddCookie(c)
	}
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func decodeBody(t *testing.T, w *httptest.ResponseRecorder) map[string]interface{} {
	t.Helper()
	var body map[string]interface{}
	if err := json.Unmarshal(w.Body.Bytes(), &body); err != nil {
		t.Fatalf("Failed to decode response %q: %v", w.Body.String(), err)
	}
	return body
}

// solveCaptcha 解 "3 + 5" 这种算术题
func solveCaptcha(t *testing.T, question string) string {
	t.Helper()
	parts := strings.Fields(question)
	if len(parts) != 3 {
		t.Fatalf("Unexpected captcha question %q", question)
	}
	a, b := utils.StringToInt(parts[0]), utils.StringToInt(parts[2])
	if parts[1] == "-" {
		return strconv.Itoa(a - b)
	}
	return strconv.Itoa(a + b)
}

// signupAndLogin 注册并登录，返回会话 cookie 和 CSRF token
func signupAndLogin(t *testing.T, r *gin.Engine, email string) *testSession {
	t.Helper()

	// 先取验证码，带着同一个会话 cookie 去注册
	w := doJSON(t, r, "GET", "/captcha", nil, nil)
	if w.Code != http.StatusOK {
		t.Fatalf("Captcha failed with %d: %s", w.Code, w.Body.String())
	}
	captchaCookies := w.Result().Cookies()
	question := decodeBody(t, w)["captcha"].(string)

	creds := map[string]string{
		"email":    email,
		"password": "secret123",
		"captcha":  solveCaptcha(t, question),
	}
	if w := doJSON(t, r, "POST", "/signup", creds, captchaCookies); w.Code != http.StatusOK {
		t.Fatalf("Signup failed with %d: %s", w.Code, w.Body.String())
	}

	w = doJSON(t, r, "POST", "/login", creds, nil)
	if w.Code != http.StatusOK {
		t.Fatalf("Login failed with %d: %s", w.Code, w.Body.String())
	}
	body := decodeBody(t, w)

	return &testSession{
		Cookies: w.Result().Cookies(),
		Sid:     body["sid"].(string),
		UserID:  uint(body["user_id"].(float64)),
	}
}

// createPostViaAPI 作者发一个新主题帖，返回 post_id
func createPostViaAPI(t *testing.T, r *gin.Engine, author *testSession) uint {
	t.Helper()

	forum := models.Forum{Name: "general"}
	if err := db.DB.FirstOrCreate(&forum, models.Forum{Name: "general"}).Error; err != nil {
		t.Fatalf("Failed to create forum: %v", err)
	}

	w := doJSON(t, r, "POST", "/submit", map[string]interface{}{
		"forum_id": forum.ID,
		"title":    "hello world",
		"content":  "first post",
	}, author.Cookies)
	if w.Code != http.StatusOK {
		t.Fatalf("Submit failed with %d: %s", w.Code, w.Body.String())
	}
	body := decodeBody(t, w)
	return uint(body["post_id"].(float64))
}
