package wire

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"user-activation/internal/data/entity"
	"user-activation/internal/data/repository"
	"user-activation/internal/usecase"
	"user-activation/pkg/utils"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"
)

type memoryUserRepository struct {
	mu    sync.Mutex
	users map[string]entity.User
}

func (r *memoryUserRepository) Create(_ context.Context, user *entity.User) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.users[user.Email]; ok {
		return repository.ErrDuplicateEmail
	}
	r.users[user.Email] = *user
	return nil
}

func (r *memoryUserRepository) FindByEmail(_ context.Context, email string) (*entity.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	user, ok := r.users[email]
	if !ok {
		return nil, nil
	}
	return &user, nil
}

func (r *memoryUserRepository) Activate(_ context.Context, email string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	user := r.users[email]
	user.IsActive = true
	r.users[email] = user
	return nil
}

type inbox struct {
	mu    sync.Mutex
	codes map[string]string
}

func (i *inbox) SendActivationCode(_ context.Context, email, code string) error {
	i.mu.Lock()
	defer i.mu.Unlock()
	i.codes[email] = code
	return nil
}

func (i *inbox) code(email string) string {
	i.mu.Lock()
	defer i.mu.Unlock()
	return i.codes[email]
}

type stubPinger struct {
	err error
}

func (p stubPinger) Ping(context.Context) error {
	return p.err
}

type apiResponse struct {
	Status  bool   `json:"status"`
	Message string `json:"message"`
}

func testConfig() *utils.Config {
	return &utils.Config{
		Activation: utils.ActivationConfig{CodeLength: 4, ExpiryMinutes: 1},
		Email:      utils.EmailConfig{Timeout: time.Second},
		CORS:       utils.CORSConfig{AllowedOrigins: []string{"*"}},
	}
}

func newTestApp(t *testing.T, db Pinger, opts ...usecase.Option) (*App, *inbox) {
	t.Helper()
	repo := &repository.Repository{User: &memoryUserRepository{users: make(map[string]entity.User)}}
	mail := &inbox{codes: make(map[string]string)}
	return Wiring(repo, db, mail, testConfig(), zaptest.NewLogger(t), opts...), mail
}

func call(t *testing.T, app *App, method, target, body string, auth ...string) (int, apiResponse) {
	t.Helper()
	req := httptest.NewRequest(method, target, bytes.NewBufferString(body))
	req.Header.Set("Content-Type", "application/json")
	if len(auth) == 2 {
		req.SetBasicAuth(auth[0], auth[1])
	}
	w := httptest.NewRecorder()
	app.Router.ServeHTTP(w, req)

	var resp apiResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp), w.Body.String())
	return w.Code, resp
}

func TestRegistrationAndActivationFlow(t *testing.T) {
	start := time.Date(2025, 3, 1, 12, 0, 0, 0, time.UTC)
	now := start
	app, mail := newTestApp(t, stubPinger{}, usecase.WithClock(func() time.Time { return now }))

	const register = `{"email":"a@x.com","password":"password1"}`

	status, resp := call(t, app, http.MethodPost, "/users/register", register)
	assert.Equal(t, http.StatusCreated, status)
	assert.Equal(t, "User created", resp.Message)

	status, resp = call(t, app, http.MethodPost, "/users/register", register)
	assert.Equal(t, http.StatusBadRequest, status)
	assert.Equal(t, "Email already exists", resp.Message)

	code := mail.code("a@x.com")
	require.Len(t, code, 4)
	wrong := "0000"
	if code == wrong {
		wrong = "1111"
	}

	status, resp = call(t, app, http.MethodPost, "/users/activate", `{"code":"`+wrong+`"}`, "a@x.com", "password1")
	assert.Equal(t, http.StatusBadRequest, status)
	assert.Equal(t, "Invalid code", resp.Message)

	status, resp = call(t, app, http.MethodPost, "/users/activate", `{"code":"`+code+`"}`, "a@x.com", "password2")
	assert.Equal(t, http.StatusUnauthorized, status)
	assert.Equal(t, "Invalid credentials", resp.Message)

	now = start.Add(time.Minute + time.Second)
	status, resp = call(t, app, http.MethodPost, "/users/activate", `{"code":"`+code+`"}`, "a@x.com", "password1")
	assert.Equal(t, http.StatusBadRequest, status)
	assert.Equal(t, "Code expired", resp.Message)

	now = start.Add(30 * time.Second)
	status, resp = call(t, app, http.MethodPost, "/users/activate", `{"code":"`+code+`"}`, "a@x.com", "password1")
	assert.Equal(t, http.StatusOK, status)
	assert.Equal(t, "Account activated", resp.Message)

	status, resp = call(t, app, http.MethodPost, "/users/activate", `{"code":"`+code+`"}`, "a@x.com", "password1")
	assert.Equal(t, http.StatusBadRequest, status)
	assert.Equal(t, "Already active", resp.Message)
}

func TestRegister_PasswordOverBcryptLimit(t *testing.T) {
	app, mail := newTestApp(t, stubPinger{})

	body := `{"email":"long@x.com","password":"` + strings.Repeat("p", 80) + `"}`
	status, resp := call(t, app, http.MethodPost, "/users/register", body)

	assert.Equal(t, http.StatusBadRequest, status)
	assert.Equal(t, "Validation failed", resp.Message)
	assert.Empty(t, mail.code("long@x.com"))
}

func TestActivate_UnknownUser(t *testing.T) {
	app, _ := newTestApp(t, stubPinger{})

	status, resp := call(t, app, http.MethodPost, "/users/activate", `{"code":"1234"}`, "ghost@x.com", "password1")

	assert.Equal(t, http.StatusNotFound, status)
	assert.Equal(t, "User not found", resp.Message)
}

func TestHealth(t *testing.T) {
	up, _ := newTestApp(t, stubPinger{})
	status, resp := call(t, up, http.MethodGet, "/health", "")
	assert.Equal(t, http.StatusOK, status)
	assert.True(t, resp.Status)

	down, _ := newTestApp(t, stubPinger{err: errors.New("connection refused")})
	status, resp = call(t, down, http.MethodGet, "/health", "")
	assert.Equal(t, http.StatusServiceUnavailable, status)
	assert.False(t, resp.Status)
}

func TestMetricsEndpoint(t *testing.T) {
	app, _ := newTestApp(t, stubPinger{})
	call(t, app, http.MethodGet, "/health", "")

	w := httptest.NewRecorder()
	app.Router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/metrics", nil))

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `http_requests_total{method="GET",route="/health",status="200"} 1`)
	assert.Contains(t, w.Body.String(), "go_goroutines")
}
