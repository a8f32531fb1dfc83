package routes

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"flights_backend/internal/auth"
	"flights_backend/internal/flights"
	"flights_backend/internal/metrics"
	"flights_backend/internal/middleware"
	"flights_backend/internal/models"
	"flights_backend/internal/notify"
	"flights_backend/internal/session"
	"flights_backend/internal/store"
	"flights_backend/internal/store/storetest"
)

func init() {
	gin.SetMode(gin.TestMode)
}

type server struct {
	t          *testing.T
	router     *gin.Engine
	store      *store.Store
	dispatcher *notify.Dispatcher

	mu       sync.Mutex
	notified []uint
}

func newServer(t *testing.T) *server {
	t.Helper()
	db := storetest.Open(t)
	st := store.New(db)
	s := &server{t: t, store: st}

	s.dispatcher = notify.NewDispatcher(notify.NotifierFunc(func(_ context.Context, id uint) error {
		s.mu.Lock()
		defer s.mu.Unlock()
		s.notified = append(s.notified, id)
		return nil
	}), time.Second, nil)

	m := metrics.NewRegistry()
	s.router = SetupRouter(Deps{
		DB:          db,
		Store:       st,
		Flights:     flights.NewService(st, s.dispatcher, m),
		Tokens:      auth.NewTokenManager("test-secret", time.Hour),
		Sessions:    session.NewMemoryStore(),
		ServiceKey:  "svc-key",
		Metrics:     m,
		RateLimiter: middleware.NewRateLimiter(0, 0),
	})
	return s
}

func (s *server) do(method, path, token string, body any) *httptest.ResponseRecorder {
	s.t.Helper()
	var buf bytes.Buffer
	if body != nil {
		require.NoError(s.t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	rec := httptest.NewRecorder()
	s.router.ServeHTTP(rec, req)
	return rec
}

func decode[T any](t *testing.T, rec *httptest.ResponseRecorder) T {
	t.Helper()
	var v T
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &v), rec.Body.String())
	return v
}

// register signs up a user and returns its token.
func (s *server) register(email string, moderator bool) string {
	s.t.Helper()
	rec := s.do(http.MethodPost, "/api/users/register", "", gin.H{"name": email, "email": email, "password": "secret1"})
	require.Equal(s.t, http.StatusCreated, rec.Code, rec.Body.String())
	if !moderator {
		return decode[struct{ Token string }](s.t, rec).Token
	}

	u, err := s.store.Users.GetByEmail(context.Background(), email)
	require.NoError(s.t, err)
	u.IsModerator = true
	require.NoError(s.t, s.store.Users.Update(context.Background(), u))

	rec = s.do(http.MethodPost, "/api/users/login", "", gin.H{"email": email, "password": "secret1"})
	require.Equal(s.t, http.StatusOK, rec.Code, rec.Body.String())
	return decode[struct{ Token string }](s.t, rec).Token
}

func (s *server) createAirline(modToken, name string) uint {
	s.t.Helper()
	rec := s.do(http.MethodPost, "/api/airlines", modToken, gin.H{
		"name":         name,
		"iata_code":    "su",
		"headquarters": gin.H{"type": "Point", "coordinates": []float64{37.4, 55.9}},
	})
	require.Equal(s.t, http.StatusCreated, rec.Code, rec.Body.String())
	return decode[struct{ Airline flights.AirlineView }](s.t, rec).Airline.ID
}

type flightResponse struct {
	Flight flights.FlightView `json:"flight"`
}

func TestHTTP_FlightLifecycle(t *testing.T) {
	s := newServer(t)
	user := s.register("u@example.com", false)
	mod := s.register("m@example.com", true)
	a1 := s.createAirline(mod, "Aeroflot")
	a2 := s.createAirline(mod, "Lufthansa")

	rec := s.do(http.MethodPost, fmt.Sprintf("/api/airlines/%d/add_to_flight", a1), user, nil)
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	flightID := decode[flightResponse](t, rec).Flight.ID

	rec = s.do(http.MethodPost, fmt.Sprintf("/api/airlines/%d/add_to_flight", a2), user, nil)
	require.Equal(t, http.StatusCreated, rec.Code)
	assert.Equal(t, flightID, decode[flightResponse](t, rec).Flight.ID)

	rec = s.do(http.MethodPost, fmt.Sprintf("/api/airlines/%d/add_to_flight", a2), user, nil)
	assert.Equal(t, http.StatusConflict, rec.Code)

	rec = s.do(http.MethodGet, "/api/airlines", user, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	page := decode[flights.AirlinePage](t, rec)
	require.NotNil(t, page.Draft)
	assert.Equal(t, flights.DraftInfo{FlightID: flightID, Count: 2}, *page.Draft)
	assert.Equal(t, "SU", page.Airlines[0].IATACode)

	rec = s.do(http.MethodPut, fmt.Sprintf("/api/flights/%d/decide", flightID), mod, gin.H{"status": 3})
	assert.Equal(t, http.StatusBadRequest, rec.Code, "deciding a draft")

	rec = s.do(http.MethodPut, fmt.Sprintf("/api/flights/%d/form", flightID), user, nil)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	formed := decode[flightResponse](t, rec).Flight
	assert.Equal(t, models.FlightFormed, formed.Status)
	assert.NotNil(t, formed.DateFormation)

	rec = s.do(http.MethodPut, fmt.Sprintf("/api/flights/%d/decide", flightID), user, gin.H{"status": 3})
	assert.Equal(t, http.StatusForbidden, rec.Code)

	rec = s.do(http.MethodPut, fmt.Sprintf("/api/flights/%d/decide", flightID), mod, gin.H{"status": 3})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	decided := decode[flightResponse](t, rec).Flight
	assert.Equal(t, models.FlightAccepted, decided.Status)
	require.NotNil(t, decided.Moderator)
	assert.Equal(t, "m@example.com", decided.Moderator.Name)

	rec = s.do(http.MethodPut, fmt.Sprintf("/api/flights/%d/decide", flightID), mod, gin.H{"status": 4})
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = s.do(http.MethodGet, "/api/flights?status=3&date_start=2000-01-01", user, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	list := decode[struct{ Flights []flights.FlightSummary }](t, rec)
	require.Len(t, list.Flights, 1)
	assert.Equal(t, flightID, list.Flights[0].ID)

	s.dispatcher.Wait()
	s.mu.Lock()
	assert.Equal(t, []uint{flightID}, s.notified)
	s.mu.Unlock()
}

func TestHTTP_RemoveLastAirlineDeletesFlight(t *testing.T) {
	s := newServer(t)
	user := s.register("u@example.com", false)
	other := s.register("o@example.com", false)
	mod := s.register("m@example.com", true)
	a := s.createAirline(mod, "KLM")

	rec := s.do(http.MethodPost, fmt.Sprintf("/api/airlines/%d/add_to_flight", a), user, nil)
	require.Equal(t, http.StatusCreated, rec.Code)
	flightID := decode[flightResponse](t, rec).Flight.ID
	path := fmt.Sprintf("/api/flights/%d/airlines/%d", flightID, a)

	assert.Equal(t, http.StatusForbidden, s.do(http.MethodDelete, path, other, nil).Code)

	rec = s.do(http.MethodDelete, path, user, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	res := decode[flights.RemovalResult](t, rec)
	assert.True(t, res.FlightRemoved)

	assert.Equal(t, http.StatusNotFound, s.do(http.MethodGet, fmt.Sprintf("/api/flights/%d", flightID), user, nil).Code)
	assert.Equal(t, http.StatusNotFound, s.do(http.MethodDelete, path, user, nil).Code)
}

func TestHTTP_CancelAndComment(t *testing.T) {
	s := newServer(t)
	user := s.register("u@example.com", false)
	mod := s.register("m@example.com", true)
	a := s.createAirline(mod, "KLM")

	rec := s.do(http.MethodPost, fmt.Sprintf("/api/airlines/%d/add_to_flight", a), user, nil)
	flightID := decode[flightResponse](t, rec).Flight.ID
	path := fmt.Sprintf("/api/flights/%d", flightID)

	rec = s.do(http.MethodPut, path, user, gin.H{"comment": "aisle"})
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "aisle", decode[flightResponse](t, rec).Flight.Comment)

	assert.Equal(t, http.StatusOK, s.do(http.MethodDelete, path, user, nil).Code)
	assert.Equal(t, http.StatusBadRequest, s.do(http.MethodDelete, path, user, nil).Code)
	assert.Equal(t, http.StatusBadRequest, s.do(http.MethodPut, path+"/form", user, nil).Code)
}

func TestHTTP_AuthFlow(t *testing.T) {
	s := newServer(t)

	rec := s.do(http.MethodPost, "/api/users/register", "", gin.H{"name": "", "email": "bad", "password": "1"})
	require.Equal(t, http.StatusBadRequest, rec.Code)
	body := decode[struct {
		Error  string
		Fields map[string]string
	}](t, rec)
	assert.Equal(t, "validation failed", body.Error)
	assert.Contains(t, body.Fields, "email")
	assert.Contains(t, body.Fields, "password")

	token := s.register("u@example.com", false)

	rec = s.do(http.MethodPost, "/api/users/register", "", gin.H{"name": "x", "email": "U@example.com", "password": "secret1"})
	assert.Equal(t, http.StatusConflict, rec.Code)

	rec = s.do(http.MethodPost, "/api/users/login", "", gin.H{"email": "u@example.com", "password": "wrong!"})
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	rec = s.do(http.MethodGet, "/api/users/me", token, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.NotContains(t, rec.Body.String(), "password")

	rec = s.do(http.MethodPut, "/api/users/me", token, gin.H{"name": "Renamed"})
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "Renamed")

	rec = s.do(http.MethodPut, "/api/users/me", token, gin.H{"name": "   "})
	require.Equal(t, http.StatusBadRequest, rec.Code)
	blank := decode[struct {
		Fields map[string]string
	}](t, rec)
	assert.Equal(t, "must not be blank", blank.Fields["name"])
	rec = s.do(http.MethodGet, "/api/users/me", token, nil)
	assert.Contains(t, rec.Body.String(), "Renamed")

	assert.Equal(t, http.StatusOK, s.do(http.MethodPost, "/api/users/logout", token, nil).Code)
	assert.Equal(t, http.StatusUnauthorized, s.do(http.MethodGet, "/api/users/me", token, nil).Code)
	assert.Equal(t, http.StatusUnauthorized, s.do(http.MethodGet, "/api/flights", "", nil).Code)
}

func TestHTTP_AirlineModeration(t *testing.T) {
	s := newServer(t)
	user := s.register("u@example.com", false)
	mod := s.register("m@example.com", true)

	rec := s.do(http.MethodPost, "/api/airlines", user, gin.H{"name": "Nope"})
	assert.Equal(t, http.StatusForbidden, rec.Code)

	rec = s.do(http.MethodPost, "/api/airlines", mod, gin.H{"name": "Bad HQ", "headquarters": gin.H{"type": "LineString", "coordinates": [][]float64{{0, 0}, {1, 1}}}})
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	id := s.createAirline(mod, "Air Canada")
	path := fmt.Sprintf("/api/airlines/%d", id)

	rec = s.do(http.MethodGet, path, "", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	got := decode[struct{ Airline flights.AirlineView }](t, rec).Airline
	assert.JSONEq(t, `{"type":"Point","coordinates":[37.4,55.9]}`, string(got.Headquarters))

	rec = s.do(http.MethodPut, path, mod, gin.H{"name": "Air Canada Rouge", "founded_year": 2013})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	rec = s.do(http.MethodGet, "/api/airlines?query=rouge", "", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	page := decode[flights.AirlinePage](t, rec)
	assert.Equal(t, int64(1), page.Total)
	assert.Nil(t, page.Draft)

	assert.Equal(t, http.StatusOK, s.do(http.MethodDelete, path, mod, nil).Code)
	assert.Equal(t, http.StatusNotFound, s.do(http.MethodGet, path, "", nil).Code)
	assert.Equal(t, http.StatusNotFound, s.do(http.MethodPost, path+"/add_to_flight", user, nil).Code)
}

func TestHTTP_AirlineImage(t *testing.T) {
	s := newServer(t)
	mod := s.register("m@example.com", true)
	id := s.createAirline(mod, "Pic Air")
	path := fmt.Sprintf("/api/airlines/%d/image", id)

	assert.Equal(t, http.StatusNotFound, s.do(http.MethodGet, path, "", nil).Code)

	png := append([]byte("\x89PNG\r\n\x1a\n"), make([]byte, 32)...)
	var body bytes.Buffer
	w := multipart.NewWriter(&body)
	part, err := w.CreateFormFile("image", "logo.png")
	require.NoError(t, err)
	_, err = part.Write(png)
	require.NoError(t, err)
	require.NoError(t, w.Close())

	req := httptest.NewRequest(http.MethodPut, path, &body)
	req.Header.Set("Content-Type", w.FormDataContentType())
	req.Header.Set("Authorization", "Bearer "+mod)
	rec := httptest.NewRecorder()
	s.router.ServeHTTP(rec, req)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	rec = s.do(http.MethodGet, path, "", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "image/png", rec.Header().Get("Content-Type"))
	assert.Equal(t, png, rec.Body.Bytes())
}

func TestHTTP_ServiceOverwrite(t *testing.T) {
	s := newServer(t)
	user := s.register("u@example.com", false)
	mod := s.register("m@example.com", true)
	a := s.createAirline(mod, "KLM")

	rec := s.do(http.MethodPost, fmt.Sprintf("/api/airlines/%d/add_to_flight", a), user, nil)
	flightID := decode[flightResponse](t, rec).Flight.ID
	path := fmt.Sprintf("/api/service/flights/%d", flightID)
	payload := gin.H{"calculated_state": "ok"}

	assert.Equal(t, http.StatusForbidden, s.do(http.MethodPut, path, mod, payload).Code)

	send := func(key string) *httptest.ResponseRecorder {
		buf, _ := json.Marshal(payload)
		req := httptest.NewRequest(http.MethodPut, path, bytes.NewReader(buf))
		req.Header.Set("Content-Type", "application/json")
		req.Header.Set(notify.ServiceKeyHeader, key)
		rec := httptest.NewRecorder()
		s.router.ServeHTTP(rec, req)
		return rec
	}

	assert.Equal(t, http.StatusUnauthorized, send("wrong").Code)
	rec = send("svc-key")
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	assert.Equal(t, "ok", decode[flightResponse](t, rec).Flight.CalculatedState)
}

func TestHTTP_SearchValidation(t *testing.T) {
	s := newServer(t)
	user := s.register("u@example.com", false)

	assert.Equal(t, http.StatusBadRequest, s.do(http.MethodGet, "/api/flights?status=9", user, nil).Code)
	assert.Equal(t, http.StatusBadRequest, s.do(http.MethodGet, "/api/flights?date_end=yesterday", user, nil).Code)
	assert.Equal(t, http.StatusBadRequest, s.do(http.MethodGet, "/api/flights/abc", user, nil).Code)
}

func TestHTTP_HealthAndMetrics(t *testing.T) {
	s := newServer(t)

	rec := s.do(http.MethodGet, "/healthz", "", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"status":"ok"}`, rec.Body.String())

	rec = s.do(http.MethodGet, "/metrics", "", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "flights_http_requests_total")
	assert.NotEmpty(t, rec.Header().Get(middleware.RequestIDHeader))
}
