package middleware

import (
	"context"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/gofiber/fiber/v2"
	cn "github.com/keybox-dev/keybox-go/constant"
	"github.com/keybox-dev/keybox-go/model"
	"github.com/keybox-dev/keybox-go/test/helper"
	"github.com/keybox-dev/keybox-go/validation"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
)

func licenseServer(t *testing.T, body string) *httptest.Server {
	t.Helper()

	s := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(body))
	}))
	t.Cleanup(s.Close)

	return s
}

func newGuard(t *testing.T, url string, opts validation.Options) *Guard {
	t.Helper()

	if opts.Logger == nil {
		opts.Logger = helper.NewLogger()
	}

	g, err := NewGuard(model.Config{
		ProductName:     "Foo",
		LicenseKey:      "FOO-0001-0002-0003",
		APIURL:          url,
		IntervalSeconds: 3600,
	}, opts)
	require.NoError(t, err)
	t.Cleanup(g.Shutdown)

	return g
}

func newApp(g *Guard) *fiber.App {
	app := fiber.New(fiber.Config{DisableStartupMessage: true})
	app.Use(g.Middleware())
	app.Get("/ping", func(c *fiber.Ctx) error { return c.SendString("pong") })

	return app
}

func TestMiddlewareAllowsValidLicense(t *testing.T) {
	server := licenseServer(t, `{"valid":true,"status":"active"}`)

	var called atomic.Int32
	g := newGuard(t, server.URL, validation.Options{
		OnValid: func(model.ValidationResult) { called.Add(1) },
	})

	resp, err := newApp(g).Test(httptest.NewRequest(http.MethodGet, "/ping", nil), -1)
	require.NoError(t, err)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, int32(1), called.Load())
	assert.True(t, g.Valid())
	assert.Equal(t, cn.ResponseStatusActive, g.LastResult().Status)
}

func TestMiddlewareRejectsInvalidLicense(t *testing.T) {
	server := licenseServer(t, `{"valid":false,"status":"revoked","message":"License revoked by developer"}`)

	var reasons []string
	g := newGuard(t, server.URL, validation.Options{})
	g.SetTerminationHandler(func(reason string) { reasons = append(reasons, reason) })

	resp, err := newApp(g).Test(httptest.NewRequest(http.MethodGet, "/ping", nil), -1)
	require.NoError(t, err)
	assert.Equal(t, http.StatusForbidden, resp.StatusCode)
	assert.Equal(t, []string{"revoked: License revoked by developer"}, reasons)
}

func TestMiddlewareRejectsUnreachableServer(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(http.ResponseWriter, *http.Request) {}))
	url := server.URL
	server.Close()

	g := newGuard(t, url, validation.Options{})

	resp, err := newApp(g).Test(httptest.NewRequest(http.MethodGet, "/ping", nil), -1)
	require.NoError(t, err)
	assert.Equal(t, http.StatusForbidden, resp.StatusCode)
	assert.Equal(t, cn.ResponseStatusError, g.LastResult().Status)
}

func TestGuardStartsOnce(t *testing.T) {
	var requests atomic.Int32

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		requests.Add(1)
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"valid":true,"status":"active"}`))
	}))
	t.Cleanup(server.Close)

	g := newGuard(t, server.URL, validation.Options{})

	_ = g.Middleware()
	_ = g.UnaryServerInterceptor()
	_ = g.StreamServerInterceptor()
	g.Start(context.Background())

	assert.Equal(t, int32(1), requests.Load())
}

func TestUnaryInterceptor(t *testing.T) {
	info := &grpc.UnaryServerInfo{FullMethod: "/test.Service/Call"}
	handler := func(ctx context.Context, req any) (any, error) { return "ok", nil }

	t.Run("valid", func(t *testing.T) {
		g := newGuard(t, licenseServer(t, `{"valid":true,"status":"active"}`).URL, validation.Options{})

		res, err := g.UnaryServerInterceptor()(context.Background(), nil, info, handler)
		require.NoError(t, err)
		assert.Equal(t, "ok", res)
	})

	t.Run("invalid", func(t *testing.T) {
		g := newGuard(t, licenseServer(t, `{"valid":false,"status":"expired"}`).URL, validation.Options{})

		_, err := g.UnaryServerInterceptor()(context.Background(), nil, info, handler)
		assert.Equal(t, codes.PermissionDenied, status.Code(err))
	})
}

type fakeStream struct {
	grpc.ServerStream
}

func (fakeStream) Context() context.Context { return context.Background() }

func TestStreamInterceptor(t *testing.T) {
	info := &grpc.StreamServerInfo{FullMethod: "/test.Service/Stream"}
	handler := func(any, grpc.ServerStream) error { return nil }

	g := newGuard(t, licenseServer(t, `{"valid":false,"status":"pending"}`).URL, validation.Options{})

	err := g.StreamServerInterceptor()(nil, fakeStream{}, info, handler)
	assert.Equal(t, codes.PermissionDenied, status.Code(err))
}

func TestShutdownRejects(t *testing.T) {
	g := newGuard(t, licenseServer(t, `{"valid":true,"status":"active"}`).URL, validation.Options{})
	app := newApp(g)

	g.Shutdown()

	resp, err := app.Test(httptest.NewRequest(http.MethodGet, "/ping", nil), -1)
	require.NoError(t, err)
	assert.Equal(t, http.StatusForbidden, resp.StatusCode)
}

func TestNewGuardFromEnv(t *testing.T) {
	t.Setenv(cn.EnvProductName, "")
	t.Setenv(cn.EnvLicenseKey, "")

	_, err := NewGuardFromEnv(validation.Options{Logger: helper.NewLogger()})
	assert.Error(t, err)

	t.Setenv(cn.EnvProductName, "Foo")
	t.Setenv(cn.EnvLicenseKey, "FOO-0001-0002-0003")

	g, err := NewGuardFromEnv(validation.Options{Logger: helper.NewLogger()})
	require.NoError(t, err)
	assert.False(t, g.Valid())
}

func TestGuardRestartsAfterShutdown(t *testing.T) {
	var requests atomic.Int32

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		requests.Add(1)
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"valid":true,"status":"active"}`))
	}))
	t.Cleanup(server.Close)

	g := newGuard(t, server.URL, validation.Options{})
	app := newApp(g)

	g.Shutdown()
	assert.False(t, g.Valid())

	g.Start(context.Background())
	assert.True(t, g.Valid())
	assert.Equal(t, int32(2), requests.Load())

	resp, err := app.Test(httptest.NewRequest(http.MethodGet, "/ping", nil), -1)
	require.NoError(t, err)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
}

func TestGuardRestartsAfterContextDone(t *testing.T) {
	var requests atomic.Int32

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		requests.Add(1)
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"valid":true,"status":"active"}`))
	}))
	t.Cleanup(server.Close)

	g := newGuard(t, server.URL, validation.Options{})

	ctx, cancel := context.WithCancel(context.Background())
	g.Start(ctx)
	require.True(t, g.Valid())

	g.Start(context.Background())
	require.Equal(t, int32(1), requests.Load())

	cancel()

	assert.Eventually(t, func() bool {
		g.Start(context.Background())
		return requests.Load() == 2
	}, time.Second, 5*time.Millisecond)
	assert.True(t, g.Valid())
}
