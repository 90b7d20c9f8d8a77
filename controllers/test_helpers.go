// file: controllers/test_helpers.go
package controllers

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/gin-contrib/sessions"
	"github.com/gin-contrib/sessions/cookie"
	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/require"

	"go-meet-stake/events"
	"go-meet-stake/middleware"
	"go-meet-stake/services"
	"go-meet-stake/storage/sqlite"
)

// testBaseTime is the pinned wall clock the API fixtures start at.
var testBaseTime = time.Unix(1_700_000_000, 0)

// testApp wires the full API surface over an in-memory store with a pinned
// clock, mirroring the wiring in main.go.
type testApp struct {
	router  *gin.Engine
	store   *sqlite.SQLiteStore
	booking *services.BookingService
	jwt     *middleware.JWTManager
	now     time.Time
}

func setupTestApp(t *testing.T) *testApp {
	t.Helper()
	gin.SetMode(gin.TestMode)

	store, err := sqlite.New(":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { store.Close() })

	recorder := events.NewRecorder(store, nil)
	var ledger sync.Mutex
	registry := services.NewRegistryService(&ledger, store, recorder)
	escrow := services.NewEscrowService(store)
	booking := services.NewBookingService(&ledger, store, registry, escrow, recorder)

	app := &testApp{
		store:   store,
		booking: booking,
		jwt:     middleware.NewJWTManager("test-secret", time.Hour),
		now:     testBaseTime,
	}
	booking.Now = func() time.Time { return app.now }

	router := gin.New()
	sessionStore := cookie.NewStore([]byte("test-secret"))
	router.Use(sessions.Sessions("testsession", sessionStore))

	authController := NewAuthController(store, app.jwt)
	walletController := NewWalletController(store)
	bookingController := NewBookingController(booking, registry)

	router.GET("/health", Health)
	router.POST("/signup", authController.Signup)
	router.POST("/login", authController.Login)
	router.GET("/logout", authController.Logout)

	router.GET("/api/users/:address/registered", bookingController.IsRegistered)
	router.GET("/api/users/:address/meetings", bookingController.GetUserMeetings)
	router.GET("/api/meetings/:id", bookingController.GetMeeting)

	protected := router.Group("/api", middleware.AuthRequired(app.jwt))
	{
		protected.POST("/register", bookingController.Register)
		protected.GET("/wallet", walletController.GetWallet)
		protected.POST("/wallet/deposit", walletController.Deposit)
		protected.POST("/meetings", bookingController.BookMeeting)
		protected.POST("/meetings/:id/checkin", bookingController.CheckIn)
		protected.POST("/meetings/:id/resolve", bookingController.Resolve)
		protected.GET("/meetings/:id/qrcode", bookingController.GetMeetingQRCode)
	}

	app.router = router
	return app
}

// advance moves the pinned clock forward.
func (app *testApp) advance(d time.Duration) {
	app.now = app.now.Add(d)
}

// do performs a JSON request, attaching the bearer token when given.
func (app *testApp) do(t *testing.T, method, path, token string, body any) *httptest.ResponseRecorder {
	t.Helper()

	var reader *bytes.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(raw)
	} else {
		reader = bytes.NewReader(nil)
	}

	req, err := http.NewRequest(method, path, reader)
	require.NoError(t, err)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	w := httptest.NewRecorder()
	app.router.ServeHTTP(w, req)
	return w
}

// signupAndLogin creates an account via the API and returns its bearer token.
func (app *testApp) signupAndLogin(t *testing.T, address string) string {
	t.Helper()

	w := app.do(t, "POST", "/signup", "", gin.H{"address": address, "password": "correct-horse"})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())

	w = app.do(t, "POST", "/login", "", gin.H{"address": address, "password": "correct-horse"})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	var resp struct {
		Token string `json:"token"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	require.NotEmpty(t, resp.Token)
	return resp.Token
}

// fundAndRegister deposits into the wallet and registers with the ledger.
func (app *testApp) fundAndRegister(t *testing.T, token string, amount int64) {
	t.Helper()

	if amount > 0 {
		w := app.do(t, "POST", "/api/wallet/deposit", token, gin.H{"amount": amount})
		require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	}
	w := app.do(t, "POST", "/api/register", token, nil)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
}
