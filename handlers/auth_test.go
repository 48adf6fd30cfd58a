package handlers

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"eshop-backend/middleware"
	"eshop-backend/models"

	"golang.org/x/crypto/bcrypt"
)

func TestRegisterSuccess(t *testing.T) {
	db := freshDB()
	router := setupAuthRouter(db)

	body := map[string]interface{}{
		"username": "newuser",
		"email":    "newuser@test.com",
		"password": "password123",
	}

	w := httptest.NewRecorder()
	router.ServeHTTP(w, jsonRequest("POST", "/api/auth/register", body))

	if w.Code != http.StatusCreated {
		t.Fatalf("expected status 201, got %d: %s", w.Code, w.Body.String())
	}

	resp := parseResponse(w)
	if resp["success"] != true {
		t.Errorf("expected success true, got %v", resp["success"])
	}
	if resp["token"] == nil || resp["token"] == "" {
		t.Error("expected session token in response")
	}

	// Session cookie should be set on registration
	cookieSet := false
	for _, c := range w.Result().Cookies() {
		if c.Name == middleware.SessionCookieName && c.Value != "" {
			cookieSet = true
			if !c.HttpOnly {
				t.Error("expected session cookie to be HttpOnly")
			}
		}
	}
	if !cookieSet {
		t.Error("expected session cookie to be set")
	}

	// Password must be hashed in the database, never stored raw
	var user models.User
	if err := db.Where("username = ?", "newuser").First(&user).Error; err != nil {
		t.Fatalf("expected user to be created: %v", err)
	}
	if user.Password == "password123" {
		t.Error("expected password to be hashed")
	}
	if err := bcrypt.CompareHashAndPassword([]byte(user.Password), []byte("password123")); err != nil {
		t.Errorf("stored hash does not match password: %v", err)
	}
}

func TestRegisterDuplicateUsername(t *testing.T) {
	db := freshDB()
	router := setupAuthRouter(db)
	seedTestUser(db, "taken", "taken@test.com")

	body := map[string]interface{}{
		"username": "taken",
		"email":    "different@test.com",
		"password": "password123",
	}

	w := httptest.NewRecorder()
	router.ServeHTTP(w, jsonRequest("POST", "/api/auth/register", body))

	if w.Code != http.StatusBadRequest {
		t.Fatalf("expected status 400, got %d: %s", w.Code, w.Body.String())
	}
	resp := parseResponse(w)
	if resp["message"] != "Username already exists" {
		t.Errorf("expected duplicate username message, got %v", resp["message"])
	}
}

func TestRegisterDuplicateEmail(t *testing.T) {
	db := freshDB()
	router := setupAuthRouter(db)
	seedTestUser(db, "original", "shared@test.com")

	body := map[string]interface{}{
		"username": "different",
		"email":    "shared@test.com",
		"password": "password123",
	}

	w := httptest.NewRecorder()
	router.ServeHTTP(w, jsonRequest("POST", "/api/auth/register", body))

	if w.Code != http.StatusBadRequest {
		t.Fatalf("expected status 400, got %d: %s", w.Code, w.Body.String())
	}
	resp := parseResponse(w)
	if resp["message"] != "Email already exists" {
		t.Errorf("expected duplicate email message, got %v", resp["message"])
	}
}

func TestRegisterShortPassword(t *testing.T) {
	db := freshDB()
	router := setupAuthRouter(db)

	body := map[string]interface{}{
		"username": "shortpw",
		"email":    "shortpw@test.com",
		"password": "short",
	}

	w := httptest.NewRecorder()
	router.ServeHTTP(w, jsonRequest("POST", "/api/auth/register", body))

	if w.Code != http.StatusBadRequest {
		t.Fatalf("expected status 400, got %d: %s", w.Code, w.Body.String())
	}
}

func TestRegisterInvalidEmail(t *testing.T) {
	db := freshDB()
	router := setupAuthRouter(db)

	body := map[string]interface{}{
		"username": "bademail",
		"email":    "not-an-email",
		"password": "password123",
	}

	w := httptest.NewRecorder()
	router.ServeHTTP(w, jsonRequest("POST", "/api/auth/register", body))

	if w.Code != http.StatusBadRequest {
		t.Fatalf("expected status 400, got %d: %s", w.Code, w.Body.String())
	}
}

func TestLoginSuccess(t *testing.T) {
	db := freshDB()
	router := setupAuthRouter(db)
	seedTestUser(db, "loginuser", "login@test.com")

	body := map[string]interface{}{
		"username": "loginuser",
		"password": "password123",
	}

	w := httptest.NewRecorder()
	router.ServeHTTP(w, jsonRequest("POST", "/api/auth/login", body))

	if w.Code != http.StatusOK {
		t.Fatalf("expected status 200, got %d: %s", w.Code, w.Body.String())
	}

	resp := parseResponse(w)
	if resp["token"] == nil || resp["token"] == "" {
		t.Error("expected session token in response")
	}
	user, ok := resp["user"].(map[string]interface{})
	if !ok {
		t.Fatal("expected user object in response")
	}
	if user["username"] != "loginuser" {
		t.Errorf("expected username 'loginuser', got %v", user["username"])
	}
	if _, leaked := user["password"]; leaked {
		t.Error("password must not appear in the response")
	}
}

func TestLoginWrongPassword(t *testing.T) {
	db := freshDB()
	router := setupAuthRouter(db)
	seedTestUser(db, "wrongpw", "wrongpw@test.com")

	body := map[string]interface{}{
		"username": "wrongpw",
		"password": "not-the-password",
	}

	w := httptest.NewRecorder()
	router.ServeHTTP(w, jsonRequest("POST", "/api/auth/login", body))

	if w.Code != http.StatusUnauthorized {
		t.Fatalf("expected status 401, got %d: %s", w.Code, w.Body.String())
	}
	resp := parseResponse(w)
	if resp["message"] != "Invalid username or password" {
		t.Errorf("expected generic credentials message, got %v", resp["message"])
	}
}

// Unknown usernames get the same response as wrong passwords so login can't be
// used to probe which accounts exist.
func TestLoginUnknownUserSameMessage(t *testing.T) {
	db := freshDB()
	router := setupAuthRouter(db)

	body := map[string]interface{}{
		"username": "nobody",
		"password": "password123",
	}

	w := httptest.NewRecorder()
	router.ServeHTTP(w, jsonRequest("POST", "/api/auth/login", body))

	if w.Code != http.StatusUnauthorized {
		t.Fatalf("expected status 401, got %d: %s", w.Code, w.Body.String())
	}
	resp := parseResponse(w)
	if resp["message"] != "Invalid username or password" {
		t.Errorf("expected generic credentials message, got %v", resp["message"])
	}
}

func TestLoginRememberExtendsCookie(t *testing.T) {
	db := freshDB()
	router := setupAuthRouter(db)
	seedTestUser(db, "rememberme", "remember@test.com")

	w := httptest.NewRecorder()
	router.ServeHTTP(w, jsonRequest("POST", "/api/auth/login", map[string]interface{}{
		"username": "rememberme",
		"password": "password123",
		"remember": true,
	}))

	if w.Code != http.StatusOK {
		t.Fatalf("expected status 200, got %d: %s", w.Code, w.Body.String())
	}

	for _, c := range w.Result().Cookies() {
		if c.Name == middleware.SessionCookieName {
			// 30 days, well past the 24h default
			if c.MaxAge <= 24*60*60 {
				t.Errorf("expected extended cookie lifetime, got MaxAge %d", c.MaxAge)
			}
			return
		}
	}
	t.Fatal("expected session cookie to be set")
}

func TestLogoutClearsCookie(t *testing.T) {
	db := freshDB()
	router := setupAuthRouter(db)

	w := httptest.NewRecorder()
	router.ServeHTTP(w, jsonRequest("POST", "/api/auth/logout", nil))

	if w.Code != http.StatusOK {
		t.Fatalf("expected status 200, got %d: %s", w.Code, w.Body.String())
	}

	for _, c := range w.Result().Cookies() {
		if c.Name == middleware.SessionCookieName {
			if c.MaxAge >= 0 {
				t.Errorf("expected cookie to be expired, got MaxAge %d", c.MaxAge)
			}
			return
		}
	}
	t.Fatal("expected expired session cookie in response")
}

func TestGetCurrentUser(t *testing.T) {
	db := freshDB()
	router := setupAuthRouter(db)
	_, token := seedTestUser(db, "current", "current@test.com")

	w := httptest.NewRecorder()
	router.ServeHTTP(w, authRequest("GET", "/api/auth/current-user", nil, token))

	if w.Code != http.StatusOK {
		t.Fatalf("expected status 200, got %d: %s", w.Code, w.Body.String())
	}
	resp := parseResponse(w)
	user, ok := resp["user"].(map[string]interface{})
	if !ok {
		t.Fatal("expected user object in response")
	}
	if user["username"] != "current" {
		t.Errorf("expected username 'current', got %v", user["username"])
	}
}

func TestGetCurrentUserViaCookie(t *testing.T) {
	db := freshDB()
	router := setupAuthRouter(db)
	_, token := seedTestUser(db, "cookieuser", "cookie@test.com")

	w := httptest.NewRecorder()
	router.ServeHTTP(w, cookieRequest("GET", "/api/auth/current-user", nil, token))

	if w.Code != http.StatusOK {
		t.Fatalf("expected status 200, got %d: %s", w.Code, w.Body.String())
	}
}

func TestGetCurrentUserUnauthenticated(t *testing.T) {
	db := freshDB()
	router := setupAuthRouter(db)

	w := httptest.NewRecorder()
	router.ServeHTTP(w, jsonRequest("GET", "/api/auth/current-user", nil))

	if w.Code != http.StatusUnauthorized {
		t.Fatalf("expected status 401, got %d: %s", w.Code, w.Body.String())
	}
}

func TestUpdateProfile(t *testing.T) {
	db := freshDB()
	router := setupAuthRouter(db)
	user, token := seedTestUser(db, "profile", "profile@test.com")

	body := map[string]interface{}{
		"full_name": "Updated Name",
		"phone":     "555-0100",
		"address":   "1 New Street",
	}

	w := httptest.NewRecorder()
	router.ServeHTTP(w, authRequest("PUT", "/api/auth/update-profile", body, token))

	if w.Code != http.StatusOK {
		t.Fatalf("expected status 200, got %d: %s", w.Code, w.Body.String())
	}

	var updated models.User
	db.First(&updated, user.ID)
	if updated.FullName != "Updated Name" {
		t.Errorf("expected full name updated, got %q", updated.FullName)
	}
	if updated.Phone != "555-0100" {
		t.Errorf("expected phone updated, got %q", updated.Phone)
	}
	// Untouched fields keep their values
	if updated.Email != "profile@test.com" {
		t.Errorf("expected email unchanged, got %q", updated.Email)
	}
}

func TestUpdateProfileEmailTaken(t *testing.T) {
	db := freshDB()
	router := setupAuthRouter(db)
	seedTestUser(db, "holder", "held@test.com")
	_, token := seedTestUser(db, "wanter", "wanter@test.com")

	body := map[string]interface{}{
		"email": "held@test.com",
	}

	w := httptest.NewRecorder()
	router.ServeHTTP(w, authRequest("PUT", "/api/auth/update-profile", body, token))

	if w.Code != http.StatusBadRequest {
		t.Fatalf("expected status 400, got %d: %s", w.Code, w.Body.String())
	}
	resp := parseResponse(w)
	if resp["message"] != "Email already in use" {
		t.Errorf("expected email-in-use message, got %v", resp["message"])
	}
}

// Resubmitting your own email is not a conflict.
func TestUpdateProfileOwnEmail(t *testing.T) {
	db := freshDB()
	router := setupAuthRouter(db)
	_, token := seedTestUser(db, "selfmail", "selfmail@test.com")

	body := map[string]interface{}{
		"email": "selfmail@test.com",
	}

	w := httptest.NewRecorder()
	router.ServeHTTP(w, authRequest("PUT", "/api/auth/update-profile", body, token))

	if w.Code != http.StatusOK {
		t.Fatalf("expected status 200, got %d: %s", w.Code, w.Body.String())
	}
}

func TestAuthMiddlewareRejectsGarbageToken(t *testing.T) {
	db := freshDB()
	router := setupAuthRouter(db)
	seedTestUser(db, "garbage", "garbage@test.com")

	w := httptest.NewRecorder()
	router.ServeHTTP(w, authRequest("GET", "/api/auth/current-user", nil, strings.Repeat("x", 40)))

	if w.Code != http.StatusUnauthorized {
		t.Fatalf("expected status 401, got %d: %s", w.Code, w.Body.String())
	}
}
