package app

import (
	"context"
	"io"
	"net/http"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"
	"google.golang.org/grpc"
	"google.golang.org/grpc/credentials/insecure"
	healthpb "google.golang.org/grpc/health/grpc_health_v1"
)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m)
}

func okHandler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("/sys/health", func(w http.ResponseWriter, r *http.Request) {
		_, _ = io.WriteString(w, "UP")
	})
	return mux
}

func TestApp_StartServeShutdown(t *testing.T) {
	cleaned := []string{}
	a := NewBuilder("contact-test").
		WithHTTP("127.0.0.1:0", okHandler(), time.Second, time.Second).
		WithGRPC("127.0.0.1:0").
		WithCleanup(func() { cleaned = append(cleaned, "db") }).
		WithCleanup(func() { cleaned = append(cleaned, "redis") }).
		Build()

	require.NoError(t, a.Start())

	client := &http.Client{Transport: &http.Transport{DisableKeepAlives: true}}
	resp, err := client.Get("http://" + a.HTTPAddr() + "/sys/health")
	require.NoError(t, err)
	body, _ := io.ReadAll(resp.Body)
	_ = resp.Body.Close()
	assert.Equal(t, "UP", string(body))

	conn, err := grpc.NewClient(a.GRPCAddr(), grpc.WithTransportCredentials(insecure.NewCredentials()))
	require.NoError(t, err)
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	hr, err := healthpb.NewHealthClient(conn).Check(ctx, &healthpb.HealthCheckRequest{Service: "contact-test"})
	require.NoError(t, err)
	assert.Equal(t, healthpb.HealthCheckResponse_SERVING, hr.GetStatus())
	require.NoError(t, conn.Close())

	require.NoError(t, a.Shutdown(context.Background()))
	assert.Equal(t, []string{"redis", "db"}, cleaned)
}

func TestApp_RunStopsOnContextCancel(t *testing.T) {
	a := NewBuilder("contact-test").
		WithHTTP("127.0.0.1:0", okHandler(), time.Second, time.Second).
		WithShutdownTimeout(time.Second).
		Build()

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- a.Run(ctx) }()

	time.Sleep(50 * time.Millisecond)
	cancel()

	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(5 * time.Second):
		t.Fatal("Run did not return after cancel")
	}
}

func TestApp_StartRequiresHandler(t *testing.T) {
	err := NewBuilder("x").WithHTTP("127.0.0.1:0", nil, 0, 0).Build().Start()
	assert.Error(t, err)
}
