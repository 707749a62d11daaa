package testutil

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/gorilla/mux"

	"todoctl/internal/service"
)

// Route names used by Hits and Requests.
const (
	RouteRegister        = "register"
	RouteLogin           = "login"
	RouteRefresh         = "refresh"
	RouteList            = "list"
	RouteCreate          = "create"
	RouteStats           = "stats"
	RouteDeleteCompleted = "deleteCompleted"
	RouteGet             = "get"
	RouteUpdate          = "update"
	RouteToggle          = "toggle"
	RouteDelete          = "delete"
)

// RecordedRequest is a request seen by FakeBackend.
type RecordedRequest struct {
	Method        string
	Path          string
	Authorization string
	RequestID     string
	Body          []byte
}

// FakeBackend is an in-process todo REST server for client tests.
// Access and refresh tokens are HS256 JWTs that stay valid until revoked.
type FakeBackend struct {
	*httptest.Server

	mu       sync.Mutex
	secret   []byte
	users    map[string]fakeUser // username -> user
	tasks    map[string][]service.Task
	access   map[string]string // token -> user ID
	refresh  map[string]string // token -> user ID
	requests map[string][]RecordedRequest

	rejectRefresh      bool
	alwaysUnauthorized bool
	omitRefreshToken   bool
	emptyToggle        bool
}

type fakeUser struct {
	id       string
	password string
}

// NewFakeBackend starts a FakeBackend. Call Close when done.
func NewFakeBackend() *FakeBackend {
	f := &FakeBackend{
		secret:   []byte("test-secret-" + uuid.NewString()),
		users:    make(map[string]fakeUser),
		tasks:    make(map[string][]service.Task),
		access:   make(map[string]string),
		refresh:  make(map[string]string),
		requests: make(map[string][]RecordedRequest),
	}

	r := mux.NewRouter()
	r.Use(f.record)
	r.HandleFunc("/api/auth/register", f.handleRegister).Methods(http.MethodPost).Name(RouteRegister)
	r.HandleFunc("/api/auth/login", f.handleLogin).Methods(http.MethodPost).Name(RouteLogin)
	r.HandleFunc("/api/auth/refresh", f.handleRefresh).Methods(http.MethodPost).Name(RouteRefresh)

	// Fixed paths before {id}.
	r.HandleFunc("/api/todos", f.authed(f.handleList)).Methods(http.MethodGet).Name(RouteList)
	r.HandleFunc("/api/todos", f.authed(f.handleCreate)).Methods(http.MethodPost).Name(RouteCreate)
	r.HandleFunc("/api/todos/get_stats", f.authed(f.handleStats)).Methods(http.MethodGet).Name(RouteStats)
	r.HandleFunc("/api/todos/delete_completed_tasks", f.authed(f.handleDeleteCompleted)).Methods(http.MethodDelete).Name(RouteDeleteCompleted)
	r.HandleFunc("/api/todos/{id}", f.authed(f.handleGet)).Methods(http.MethodGet).Name(RouteGet)
	r.HandleFunc("/api/todos/{id}", f.authed(f.handleUpdate)).Methods(http.MethodPut).Name(RouteUpdate)
	r.HandleFunc("/api/todos/{id}", f.authed(f.handleToggle)).Methods(http.MethodPatch).Name(RouteToggle)
	r.HandleFunc("/api/todos/{id}", f.authed(f.handleDelete)).Methods(http.MethodDelete).Name(RouteDelete)

	f.Server = httptest.NewServer(r)
	return f
}

// SetRejectRefresh makes the refresh endpoint answer 401.
func (f *FakeBackend) SetRejectRefresh(v bool) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.rejectRefresh = v
}

// SetAlwaysUnauthorized makes every task endpoint answer 401.
func (f *FakeBackend) SetAlwaysUnauthorized(v bool) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.alwaysUnauthorized = v
}

// SetOmitRefreshToken makes login and register return only an access token.
func (f *FakeBackend) SetOmitRefreshToken(v bool) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.omitRefreshToken = v
}

// SetEmptyToggle makes toggle answer 200 with an empty body.
func (f *FakeBackend) SetEmptyToggle(v bool) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.emptyToggle = v
}

// AddUser creates an account.
func (f *FakeBackend) AddUser(username, password string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.addUserLocked(username, password)
}

func (f *FakeBackend) addUserLocked(username, password string) fakeUser {
	u := fakeUser{id: uuid.NewString(), password: password}
	f.users[username] = u
	return u
}

// IssueTokens returns a fresh token pair for username, creating the user.
func (f *FakeBackend) IssueTokens(username string) (access, refresh string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	u, ok := f.users[username]
	if !ok {
		u = f.addUserLocked(username, "")
	}
	return f.issueLocked(u.id, "access"), f.issueLocked(u.id, "refresh")
}

// ExpireAccess revokes an access token so it gets 401.
func (f *FakeBackend) ExpireAccess(token string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	delete(f.access, token)
}

// AddTask adds a task at the bottom of username's list and returns its ID.
func (f *FakeBackend) AddTask(username, title string, completed bool) string {
	f.mu.Lock()
	defer f.mu.Unlock()
	u, ok := f.users[username]
	if !ok {
		u = f.addUserLocked(username, "")
	}
	id := uuid.NewString()
	f.tasks[u.id] = append(f.tasks[u.id], service.Task{ID: id, UserID: u.id, Title: title, Completed: completed})
	return id
}

// Tasks returns username's tasks, newest first.
func (f *FakeBackend) Tasks(username string) []service.Task {
	f.mu.Lock()
	defer f.mu.Unlock()
	src := f.tasks[f.users[username].id]
	out := make([]service.Task, len(src))
	copy(out, src)
	return out
}

// Hits returns how many requests matched route.
func (f *FakeBackend) Hits(route string) int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.requests[route])
}

// Requests returns the requests that matched route, oldest first.
func (f *FakeBackend) Requests(route string) []RecordedRequest {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make([]RecordedRequest, len(f.requests[route]))
	copy(out, f.requests[route])
	return out
}

func (f *FakeBackend) issueLocked(userID, kind string) string {
	claims := jwt.MapClaims{
		"sub":  userID,
		"jti":  uuid.NewString(),
		"type": kind,
		"iat":  time.Now().Unix(),
		"exp":  time.Now().Add(time.Hour).Unix(),
	}
	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(f.secret)
	if err != nil {
		panic(err)
	}
	if kind == "refresh" {
		f.refresh[signed] = userID
	} else {
		f.access[signed] = userID
	}
	return signed
}

func (f *FakeBackend) verify(raw string) error {
	_, err := jwt.Parse(raw, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method")
		}
		return f.secret, nil
	})
	return err
}

func (f *FakeBackend) record(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		body, _ := io.ReadAll(r.Body)
		r.Body = io.NopCloser(bytes.NewReader(body))

		name := ""
		if route := mux.CurrentRoute(r); route != nil {
			name = route.GetName()
		}
		f.mu.Lock()
		f.requests[name] = append(f.requests[name], RecordedRequest{
			Method:        r.Method,
			Path:          r.URL.Path,
			Authorization: r.Header.Get("Authorization"),
			RequestID:     r.Header.Get("X-Request-ID"),
			Body:          body,
		})
		f.mu.Unlock()

		next.ServeHTTP(w, r)
	})
}

type userHandler func(w http.ResponseWriter, r *http.Request, userID string)

func (f *FakeBackend) authed(h userHandler) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		token, ok := bearer(r)
		f.mu.Lock()
		userID, known := f.access[token]
		always := f.alwaysUnauthorized
		f.mu.Unlock()

		if always || !ok || !known || f.verify(token) != nil {
			writeJSON(w, http.StatusUnauthorized, map[string]string{"message": "Token has expired"})
			return
		}
		h(w, r, userID)
	}
}

func bearer(r *http.Request) (string, bool) {
	h := r.Header.Get("Authorization")
	if !strings.HasPrefix(h, "Bearer ") {
		return "", false
	}
	return strings.TrimPrefix(h, "Bearer "), true
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

type fakeCredentials struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

func (f *FakeBackend) tokenBody(userID string) map[string]string {
	body := map[string]string{"access_token": f.issueLocked(userID, "access")}
	if !f.omitRefreshToken {
		body["refresh_token"] = f.issueLocked(userID, "refresh")
	}
	return body
}

func (f *FakeBackend) handleRegister(w http.ResponseWriter, r *http.Request) {
	var c fakeCredentials
	if err := json.NewDecoder(r.Body).Decode(&c); err != nil || c.Username == "" || c.Password == "" {
		writeJSON(w, http.StatusBadRequest, map[string]string{"message": "Username and password are required"})
		return
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	if _, exists := f.users[c.Username]; exists {
		writeJSON(w, http.StatusConflict, map[string]string{"message": "User already exists"})
		return
	}
	u := f.addUserLocked(c.Username, c.Password)
	writeJSON(w, http.StatusCreated, f.tokenBody(u.id))
}

func (f *FakeBackend) handleLogin(w http.ResponseWriter, r *http.Request) {
	var c fakeCredentials
	if err := json.NewDecoder(r.Body).Decode(&c); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"message": "Invalid request"})
		return
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	u, ok := f.users[c.Username]
	if !ok {
		writeJSON(w, http.StatusNotFound, map[string]string{"message": "User does not exist"})
		return
	}
	if u.password != c.Password {
		writeJSON(w, http.StatusUnauthorized, map[string]string{"message": "Incorrect password"})
		return
	}
	writeJSON(w, http.StatusOK, f.tokenBody(u.id))
}

func (f *FakeBackend) handleRefresh(w http.ResponseWriter, r *http.Request) {
	token, ok := bearer(r)
	f.mu.Lock()
	defer f.mu.Unlock()
	userID, known := f.refresh[token]
	if f.rejectRefresh || !ok || !known || f.verify(token) != nil {
		writeJSON(w, http.StatusUnauthorized, map[string]string{"message": "Invalid refresh token"})
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"access_token": f.issueLocked(userID, "access")})
}

func (f *FakeBackend) handleList(w http.ResponseWriter, r *http.Request, userID string) {
	f.mu.Lock()
	tasks := append([]service.Task{}, f.tasks[userID]...)
	f.mu.Unlock()
	writeJSON(w, http.StatusOK, tasks)
}

func (f *FakeBackend) handleCreate(w http.ResponseWriter, r *http.Request, userID string) {
	var in service.TaskInput
	if err := json.NewDecoder(r.Body).Decode(&in); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "Invalid request"})
		return
	}
	t := service.Task{ID: uuid.NewString(), UserID: userID, Title: in.Title, Description: in.Description}
	f.mu.Lock()
	f.tasks[userID] = append([]service.Task{t}, f.tasks[userID]...)
	f.mu.Unlock()
	writeJSON(w, http.StatusCreated, t)
}

func (f *FakeBackend) handleStats(w http.ResponseWriter, r *http.Request, userID string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var st service.Stats
	for _, t := range f.tasks[userID] {
		st.Total++
		if t.Completed {
			st.Completed++
		}
	}
	st.Pending = st.Total - st.Completed
	writeJSON(w, http.StatusOK, st)
}

func (f *FakeBackend) handleDeleteCompleted(w http.ResponseWriter, r *http.Request, userID string) {
	f.mu.Lock()
	var kept []service.Task
	for _, t := range f.tasks[userID] {
		if !t.Completed {
			kept = append(kept, t)
		}
	}
	n := len(f.tasks[userID]) - len(kept)
	f.tasks[userID] = kept
	f.mu.Unlock()
	writeJSON(w, http.StatusOK, map[string]string{"message": fmt.Sprintf("%d completed todos deleted", n)})
}

// withTask runs fn on the caller's task named by the {id} route variable.
func (f *FakeBackend) withTask(w http.ResponseWriter, r *http.Request, userID string, fn func(tasks []service.Task, i int)) {
	id := mux.Vars(r)["id"]
	f.mu.Lock()
	defer f.mu.Unlock()
	for i, t := range f.tasks[userID] {
		if t.ID == id {
			fn(f.tasks[userID], i)
			return
		}
	}
	writeJSON(w, http.StatusNotFound, map[string]string{"error": "Todo not found"})
}

func (f *FakeBackend) handleGet(w http.ResponseWriter, r *http.Request, userID string) {
	f.withTask(w, r, userID, func(tasks []service.Task, i int) {
		writeJSON(w, http.StatusOK, tasks[i])
	})
}

func (f *FakeBackend) handleUpdate(w http.ResponseWriter, r *http.Request, userID string) {
	var in service.TaskInput
	if err := json.NewDecoder(r.Body).Decode(&in); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "Invalid request"})
		return
	}
	f.withTask(w, r, userID, func(tasks []service.Task, i int) {
		tasks[i].Title = in.Title
		tasks[i].Description = in.Description
		writeJSON(w, http.StatusOK, tasks[i])
	})
}

func (f *FakeBackend) handleToggle(w http.ResponseWriter, r *http.Request, userID string) {
	f.withTask(w, r, userID, func(tasks []service.Task, i int) {
		tasks[i].Completed = !tasks[i].Completed
		if f.emptyToggle {
			w.WriteHeader(http.StatusOK)
			return
		}
		writeJSON(w, http.StatusOK, tasks[i])
	})
}

func (f *FakeBackend) handleDelete(w http.ResponseWriter, r *http.Request, userID string) {
	f.withTask(w, r, userID, func(tasks []service.Task, i int) {
		f.tasks[userID] = append(tasks[:i], tasks[i+1:]...)
		writeJSON(w, http.StatusOK, map[string]string{"message": "Task deleted successfully"})
	})
}
