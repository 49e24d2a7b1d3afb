package server

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
	"golang.org/x/crypto/bcrypt"

	"github.com/farellandr/eventhub/internal/helpers"
	"github.com/farellandr/eventhub/internal/middleware"
	"github.com/farellandr/eventhub/internal/services"
	"github.com/farellandr/eventhub/internal/store"
	"github.com/farellandr/eventhub/internal/store/storetest"
)

const testSecret = "test-secret"

type testServer struct {
	router    *gin.Engine
	store     store.Store
	uploadDir string
}

func newTestLogger() *logrus.Logger {
	logger := logrus.New()
	logger.SetOutput(io.Discard)
	return logger
}

func newServices(s store.Store, uploadDir string, logger *logrus.Logger) middleware.Services {
	return middleware.Services{
		Auth:          services.NewAuthService(s, services.AuthConfig{Secret: testSecret, TokenTTL: time.Hour, HashCost: bcrypt.MinCost}),
		Registrations: services.NewRegistrationService(s, logger),
		Tickets:       services.NewTicketService(s, testSecret),
		Uploader:      helpers.NewLocalUploader(uploadDir, "http://localhost:5000"),
		Logger:        logger,
	}
}

func setupTestServer(t *testing.T) *testServer {
	t.Helper()
	gin.SetMode(gin.TestMode)

	s := storetest.NewSQLiteStore(t)
	logger := newTestLogger()
	uploadDir := t.TempDir()

	router := NewRouter(Deps{
		Store:       s,
		Services:    newServices(s, uploadDir, logger),
		UploadDir:   uploadDir,
		CORSOrigins: []string{"*"},
		Logger:      logger,
	})
	return &testServer{router: router, store: s, uploadDir: uploadDir}
}

type apiResponse struct {
	Success bool            `json:"success"`
	Count   int             `json:"count"`
	Token   string          `json:"token"`
	Message string          `json:"message"`
	Error   string          `json:"error"`
	Data    json.RawMessage `json:"data"`
	User    json.RawMessage `json:"user"`
}

func (ts *testServer) do(t *testing.T, method, path, token string, body any) (*httptest.ResponseRecorder, apiResponse) {
	t.Helper()

	var reader io.Reader
	if body != nil {
		payload, err := json.Marshal(body)
		if err != nil {
			t.Fatalf("Failed to marshal body: %v", err)
		}
		reader = bytes.NewReader(payload)
	}

	req := httptest.NewRequest(method, path, reader)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	return ts.serve(t, req)
}

func (ts *testServer) serve(t *testing.T, req *http.Request) (*httptest.ResponseRecorder, apiResponse) {
	t.Helper()
	w := httptest.NewRecorder()
	ts.router.ServeHTTP(w, req)

	var resp apiResponse
	if strings.HasPrefix(w.Header().Get("Content-Type"), "application/json") {
		if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
			t.Fatalf("Failed to decode response %q: %v", w.Body.String(), err)
		}
	}
	return w, resp
}

func (ts *testServer) signUp(t *testing.T, name, email string) string {
	t.Helper()
	w, resp := ts.do(t, http.MethodPost, "/api/auth/register", "", gin.H{
		"name": name, "email": email, "password": "secret123",
	})
	if w.Code != http.StatusCreated || resp.Token == "" {
		t.Fatalf("sign up %s: status %d body %s", email, w.Code, w.Body.String())
	}
	return resp.Token
}

type eventData struct {
	ID             string `json:"_id"`
	Name           string `json:"name"`
	Category       string `json:"category"`
	Capacity       int    `json:"capacity"`
	Image          string `json:"image"`
	AvailableSeats int    `json:"availableSeats"`
	IsFull         bool   `json:"isFull"`
	IsRegistered   *bool  `json:"isRegistered"`
}

func (ts *testServer) createEvent(t *testing.T, token string, body gin.H) eventData {
	t.Helper()
	w, resp := ts.do(t, http.MethodPost, "/api/events", token, body)
	if w.Code != http.StatusCreated {
		t.Fatalf("create event: status %d body %s", w.Code, w.Body.String())
	}
	var event eventData
	if err := json.Unmarshal(resp.Data, &event); err != nil {
		t.Fatalf("Failed to decode event: %v", err)
	}
	return event
}

func (ts *testServer) getEvent(t *testing.T, id, token string) eventData {
	t.Helper()
	w, resp := ts.do(t, http.MethodGet, "/api/events/"+id, token, nil)
	if w.Code != http.StatusOK {
		t.Fatalf("get event: status %d body %s", w.Code, w.Body.String())
	}
	var event eventData
	if err := json.Unmarshal(resp.Data, &event); err != nil {
		t.Fatalf("Failed to decode event: %v", err)
	}
	return event
}

func sampleEvent(name, category string, capacity any) gin.H {
	return gin.H{
		"name":        name,
		"organizer":   "Blue Frog Events",
		"location":    "Bandra Fort, Mumbai",
		"date":        "2026-07-15T19:00",
		"description": "An evening of smooth jazz.",
		"capacity":    capacity,
		"category":    category,
	}
}

func TestAuthFlow(t *testing.T) {
	ts := setupTestServer(t)
	token := ts.signUp(t, "Asha", "asha@example.com")

	t.Run("duplicate email", func(t *testing.T) {
		w, resp := ts.do(t, http.MethodPost, "/api/auth/register", "", gin.H{
			"name": "Asha", "email": "ASHA@example.com", "password": "secret123",
		})
		if w.Code != http.StatusBadRequest || resp.Message != "A user with this email already exists" {
			t.Errorf("got %d %q", w.Code, resp.Message)
		}
	})

	t.Run("short password", func(t *testing.T) {
		w, resp := ts.do(t, http.MethodPost, "/api/auth/register", "", gin.H{
			"name": "B", "email": "b@example.com", "password": "123",
		})
		if w.Code != http.StatusBadRequest || resp.Success {
			t.Errorf("got %d success=%v", w.Code, resp.Success)
		}
	})

	t.Run("password longer than 72 bytes", func(t *testing.T) {
		w, resp := ts.do(t, http.MethodPost, "/api/auth/register", "", gin.H{
			"name": "C", "email": "c@example.com", "password": strings.Repeat("p", 80),
		})
		if w.Code != http.StatusBadRequest || resp.Message != "Password must be at most 72 bytes" {
			t.Errorf("got %d %q", w.Code, resp.Message)
		}
	})

	t.Run("login", func(t *testing.T) {
		w, resp := ts.do(t, http.MethodPost, "/api/auth/login", "", gin.H{"email": "asha@example.com", "password": "secret123"})
		if w.Code != http.StatusOK || resp.Token == "" {
			t.Errorf("got %d token %q", w.Code, resp.Token)
		}
		var user map[string]any
		json.Unmarshal(resp.User, &user)
		for _, key := range []string{"id", "name", "email", "createdAt"} {
			if _, ok := user[key]; !ok {
				t.Errorf("login user missing %q: %v", key, user)
			}
		}
	})

	t.Run("wrong password", func(t *testing.T) {
		w, resp := ts.do(t, http.MethodPost, "/api/auth/login", "", gin.H{"email": "asha@example.com", "password": "nope-nope"})
		if w.Code != http.StatusUnauthorized || resp.Message != "Invalid email or password" {
			t.Errorf("got %d %q", w.Code, resp.Message)
		}
	})

	t.Run("me", func(t *testing.T) {
		w, resp := ts.do(t, http.MethodGet, "/api/auth/me", token, nil)
		if w.Code != http.StatusOK {
			t.Fatalf("status = %d, want %d", w.Code, http.StatusOK)
		}
		var user map[string]any
		json.Unmarshal(resp.User, &user)
		if user["email"] != "asha@example.com" {
			t.Errorf("me email = %v", user["email"])
		}
		if _, leaked := user["password"]; leaked {
			t.Error("me leaked the password")
		}
	})

	t.Run("me without token", func(t *testing.T) {
		w, resp := ts.do(t, http.MethodGet, "/api/auth/me", "", nil)
		if w.Code != http.StatusUnauthorized || resp.Error != "Unauthorized" {
			t.Errorf("got %d %q", w.Code, resp.Error)
		}
	})

	t.Run("users listing needs auth", func(t *testing.T) {
		if w, _ := ts.do(t, http.MethodGet, "/api/auth/users", "", nil); w.Code != http.StatusUnauthorized {
			t.Errorf("status = %d, want %d", w.Code, http.StatusUnauthorized)
		}
		w, resp := ts.do(t, http.MethodGet, "/api/auth/users", token, nil)
		if w.Code != http.StatusOK || resp.Count != 1 || strings.Contains(w.Body.String(), "password") {
			t.Errorf("got %d count %d body %s", w.Code, resp.Count, w.Body.String())
		}
	})
}

func TestCreateEvent(t *testing.T) {
	ts := setupTestServer(t)
	token := ts.signUp(t, "Host", "host@example.com")

	t.Run("requires auth", func(t *testing.T) {
		if w, _ := ts.do(t, http.MethodPost, "/api/events", "", sampleEvent("Jazz", "Music", 10)); w.Code != http.StatusUnauthorized {
			t.Errorf("status = %d, want %d", w.Code, http.StatusUnauthorized)
		}
	})

	t.Run("numeric string capacity and default image", func(t *testing.T) {
		event := ts.createEvent(t, token, sampleEvent("Jazz", "Music", "25"))
		if event.Capacity != 25 || event.Image == "" || event.ID == "" {
			t.Errorf("event = %+v", event)
		}
	})

	tests := []struct {
		name string
		body gin.H
	}{
		{"missing capacity", sampleEvent("Jazz", "Music", nil)},
		{"negative capacity", sampleEvent("Jazz", "Music", -5)},
		{"unknown category", sampleEvent("Jazz", "Comedy", 10)},
		{"missing name", sampleEvent("", "Music", 10)},
		{"bad date", func() gin.H { b := sampleEvent("Jazz", "Music", 10); b["date"] = "tomorrow"; return b }()},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w, resp := ts.do(t, http.MethodPost, "/api/events", token, tt.body)
			if w.Code != http.StatusBadRequest || resp.Success || resp.Message == "" {
				t.Errorf("got %d %s", w.Code, w.Body.String())
			}
		})
	}
}

func TestCreateEventMultipartUpload(t *testing.T) {
	ts := setupTestServer(t)
	token := ts.signUp(t, "Host", "host@example.com")

	body := &bytes.Buffer{}
	writer := multipart.NewWriter(body)
	for key, value := range map[string]string{
		"name": "Coffee & Art Workshop", "organizer": "Third Wave Roasters", "location": "Koramangala",
		"date": "2026-03-12", "description": "Latte art.", "capacity": "20", "category": "Workshop",
	} {
		writer.WriteField(key, value)
	}
	part, _ := writer.CreateFormFile("image", "cover.png")
	part.Write([]byte("\x89PNG\r\n\x1a\n\x00\x00\x00\rIHDR"))
	writer.Close()

	req := httptest.NewRequest(http.MethodPost, "/api/events", body)
	req.Header.Set("Content-Type", writer.FormDataContentType())
	req.Header.Set("Authorization", "Bearer "+token)

	w, resp := ts.serve(t, req)
	if w.Code != http.StatusCreated {
		t.Fatalf("status = %d body %s", w.Code, w.Body.String())
	}
	var event eventData
	json.Unmarshal(resp.Data, &event)
	if !strings.HasPrefix(event.Image, "http://localhost:5000/uploads/events/") {
		t.Fatalf("image = %q, want an uploaded url", event.Image)
	}

	stored := filepath.Join(ts.uploadDir, "events", filepath.Base(event.Image))
	if _, err := os.Stat(stored); err != nil {
		t.Fatalf("uploaded image missing: %v", err)
	}

	staticReq := httptest.NewRequest(http.MethodGet, "/uploads/events/"+filepath.Base(event.Image), nil)
	staticW := httptest.NewRecorder()
	ts.router.ServeHTTP(staticW, staticReq)
	if staticW.Code != http.StatusOK {
		t.Errorf("static image status = %d, want %d", staticW.Code, http.StatusOK)
	}
}

func TestListEvents(t *testing.T) {
	ts := setupTestServer(t)
	token := ts.signUp(t, "Host", "host@example.com")
	ts.createEvent(t, token, sampleEvent("Mumbai Jazz Nights", "Music", 500))
	ts.createEvent(t, token, sampleEvent("Bangalore Tech Summit", "Tech", 2000))

	tests := []struct {
		query string
		want  int
	}{
		{"", 2},
		{"?category=Music", 1},
		{"?category=music", 0},
		{"?name=jazz", 1},
		{"?location=mumbai", 2},
		{"?date=2026-07-15", 2},
		{"?date=2026-07-16", 0},
	}
	for _, tt := range tests {
		t.Run(tt.query, func(t *testing.T) {
			w, resp := ts.do(t, http.MethodGet, "/api/events"+tt.query, "", nil)
			if w.Code != http.StatusOK || resp.Count != tt.want {
				t.Errorf("got %d count %d, want 200 count %d", w.Code, resp.Count, tt.want)
			}
		})
	}

	if w, _ := ts.do(t, http.MethodGet, "/api/events?date=soon", "", nil); w.Code != http.StatusBadRequest {
		t.Errorf("bad date filter status = %d, want %d", w.Code, http.StatusBadRequest)
	}

	w, resp := ts.do(t, http.MethodGet, "/api/events/categories", "", nil)
	if w.Code != http.StatusOK || resp.Count != 7 {
		t.Errorf("categories got %d count %d", w.Code, resp.Count)
	}
}

func TestRegistrationFlow(t *testing.T) {
	ts := setupTestServer(t)
	host := ts.signUp(t, "Host", "host@example.com")
	a := ts.signUp(t, "A", "a@example.com")
	b := ts.signUp(t, "B", "b@example.com")
	event := ts.createEvent(t, host, sampleEvent("Sufi Music Night", "Music", 1))
	registerPath := "/api/events/" + event.ID + "/register"
	cancelPath := "/api/events/registration/" + event.ID

	if w, _ := ts.do(t, http.MethodPost, registerPath, a, nil); w.Code != http.StatusCreated {
		t.Fatalf("A register status = %d body %s", w.Code, w.Body.String())
	}

	got := ts.getEvent(t, event.ID, a)
	if got.AvailableSeats != 0 || !got.IsFull || got.IsRegistered == nil || !*got.IsRegistered {
		t.Errorf("after A registers: %+v", got)
	}
	if anon := ts.getEvent(t, event.ID, ""); anon.IsRegistered == nil || *anon.IsRegistered {
		t.Errorf("anonymous isRegistered = %v, want false", anon.IsRegistered)
	}
	if bad := ts.getEvent(t, event.ID, "not-a-token"); bad.IsRegistered == nil || *bad.IsRegistered {
		t.Errorf("invalid token isRegistered = %v, want false", bad.IsRegistered)
	}

	w, resp := ts.do(t, http.MethodPost, registerPath, a, nil)
	if w.Code != http.StatusBadRequest || resp.Message != "You are already registered for this event" {
		t.Errorf("duplicate got %d %q", w.Code, resp.Message)
	}

	w, resp = ts.do(t, http.MethodPost, registerPath, b, nil)
	if w.Code != http.StatusBadRequest || resp.Message != "Event is at full capacity" {
		t.Errorf("B register got %d %q", w.Code, resp.Message)
	}

	w, resp = ts.do(t, http.MethodDelete, cancelPath, a, nil)
	if w.Code != http.StatusOK || resp.Message != "Registration cancelled" {
		t.Errorf("cancel got %d %q", w.Code, resp.Message)
	}
	if got := ts.getEvent(t, event.ID, ""); got.AvailableSeats != 1 || got.IsFull {
		t.Errorf("after cancel: %+v", got)
	}

	w, resp = ts.do(t, http.MethodDelete, cancelPath, a, nil)
	if w.Code != http.StatusNotFound || resp.Message != "Registration not found" {
		t.Errorf("second cancel got %d %q", w.Code, resp.Message)
	}

	if w, _ := ts.do(t, http.MethodPost, registerPath, b, nil); w.Code != http.StatusCreated {
		t.Errorf("B register after cancel status = %d", w.Code)
	}

	w, resp = ts.do(t, http.MethodGet, "/api/events/user/my-registrations", b, nil)
	if w.Code != http.StatusOK || resp.Count != 1 || !strings.Contains(string(resp.Data), "Sufi Music Night") {
		t.Errorf("my registrations got %d count %d data %s", w.Code, resp.Count, resp.Data)
	}

	w, resp = ts.do(t, http.MethodGet, "/api/events/all-registrations", host, nil)
	if w.Code != http.StatusOK || resp.Count != 1 {
		t.Errorf("all registrations got %d count %d", w.Code, resp.Count)
	}
}

func TestUnknownEvent(t *testing.T) {
	ts := setupTestServer(t)
	token := ts.signUp(t, "A", "a@example.com")

	for _, path := range []string{"/api/events/not-a-uuid", "/api/events/6f1c1c1e-3a1b-4c55-9d2e-1a2b3c4d5e6f"} {
		if w, resp := ts.do(t, http.MethodGet, path, "", nil); w.Code != http.StatusNotFound || resp.Message != "Event not found" {
			t.Errorf("GET %s got %d %q", path, w.Code, resp.Message)
		}
	}
	if w, _ := ts.do(t, http.MethodPost, "/api/events/6f1c1c1e-3a1b-4c55-9d2e-1a2b3c4d5e6f/register", token, nil); w.Code != http.StatusNotFound {
		t.Errorf("register unknown status = %d, want %d", w.Code, http.StatusNotFound)
	}
}

func TestTicketFlow(t *testing.T) {
	ts := setupTestServer(t)
	host := ts.signUp(t, "Host", "host@example.com")
	attendee := ts.signUp(t, "Ravi", "ravi@example.com")
	event := ts.createEvent(t, host, sampleEvent("IPL Final Screening", "Sports", 100))

	if w, _ := ts.do(t, http.MethodPost, "/api/events/"+event.ID+"/register", attendee, nil); w.Code != http.StatusCreated {
		t.Fatalf("register status = %d", w.Code)
	}

	w, _ := ts.do(t, http.MethodGet, "/api/events/registration/"+event.ID+"/qr", attendee, nil)
	if w.Code != http.StatusOK || w.Header().Get("Content-Type") != "image/png" {
		t.Fatalf("qr got %d %s", w.Code, w.Header().Get("Content-Type"))
	}

	if w, _ := ts.do(t, http.MethodGet, "/api/events/registration/"+event.ID+"/qr", host, nil); w.Code != http.StatusNotFound {
		t.Errorf("qr without registration status = %d, want %d", w.Code, http.StatusNotFound)
	}

	registrations, err := ts.store.ListAllRegistrations(context.Background())
	if err != nil || len(registrations) != 1 {
		t.Fatalf("ListAllRegistrations = %d, %v", len(registrations), err)
	}
	payload := services.NewTicketService(ts.store, testSecret).Payload(&registrations[0])

	w, resp := ts.do(t, http.MethodPost, "/api/events/tickets/verify", host, gin.H{"qr_data": payload})
	if w.Code != http.StatusOK || !strings.Contains(string(resp.Data), "Ravi") {
		t.Errorf("verify got %d %s", w.Code, w.Body.String())
	}

	if w, _ := ts.do(t, http.MethodPost, "/api/events/tickets/verify", attendee, gin.H{"qr_data": payload}); w.Code != http.StatusForbidden {
		t.Errorf("verify by attendee status = %d, want %d", w.Code, http.StatusForbidden)
	}
	if w, _ := ts.do(t, http.MethodPost, "/api/events/tickets/verify", host, gin.H{"qr_data": "garbage"}); w.Code != http.StatusBadRequest {
		t.Errorf("verify garbage status = %d, want %d", w.Code, http.StatusBadRequest)
	}
}

func TestDegradedMode(t *testing.T) {
	gin.SetMode(gin.TestMode)
	logger := newTestLogger()
	ts := &testServer{router: NewRouter(Deps{
		Services:    newServices(nil, t.TempDir(), logger),
		CORSOrigins: []string{"*"},
		Logger:      logger,
	})}

	w, _ := ts.do(t, http.MethodGet, "/api/health", "", nil)
	if w.Code != http.StatusOK || !strings.Contains(w.Body.String(), `"database":"disconnected"`) {
		t.Errorf("health got %d %s", w.Code, w.Body.String())
	}

	for _, path := range []string{"/api/events", "/api/auth/me"} {
		if w, _ := ts.do(t, http.MethodGet, path, "", nil); w.Code != http.StatusServiceUnavailable {
			t.Errorf("GET %s status = %d, want %d", path, w.Code, http.StatusServiceUnavailable)
		}
	}

	if w, _ := ts.do(t, http.MethodGet, "/api/events/categories", "", nil); w.Code != http.StatusOK {
		t.Errorf("categories status = %d, want %d", w.Code, http.StatusOK)
	}
}

func TestHealthConnected(t *testing.T) {
	ts := setupTestServer(t)
	w, _ := ts.do(t, http.MethodGet, "/api/health", "", nil)
	if w.Code != http.StatusOK || !strings.Contains(w.Body.String(), `"database":"connected"`) {
		t.Errorf("health got %d %s", w.Code, w.Body.String())
	}
}
