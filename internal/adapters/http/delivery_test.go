package http

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/huddlechat/huddle/internal/app"
	"github.com/huddlechat/huddle/internal/config"
	"github.com/huddlechat/huddle/internal/core"
	"github.com/huddlechat/huddle/internal/domain"
)

type recordConn struct{ frames []core.Frame }

func (c *recordConn) TrySend(f core.Frame) error {
	c.frames = append(c.frames, f)
	return nil
}
func (c *recordConn) Close() {}

func testRouterFixture(t *testing.T) (*httptest.Server, *app.Hub) {
	t.Helper()
	cfg := &config.Config{
		Mode:          "release",
		StaticPath:    t.TempDir(),
		Secret:        "s3cret",
		SendBuffer:    8,
		WriteTimeout:  time.Second,
		PingPeriod:    time.Minute,
		TypingTTL:     5 * time.Second,
		SweepInterval: time.Second,
		DialLimit:     5,
		DialInterval:  10 * time.Second,
	}
	reg := app.NewRegistry()
	rooms := app.NewRoomManager()
	hub := app.NewHub(reg, rooms, app.NewTypingTracker(rooms, cfg.TypingTTL, cfg.SweepInterval), app.NewRelay(reg), app.SimplePolicy{})

	srv := httptest.NewServer(SetupRouter(context.Background(), cfg, hub))
	t.Cleanup(srv.Close)
	return srv, hub
}

func postJSON(t *testing.T, url, secret, body string) *http.Response {
	t.Helper()
	req, err := http.NewRequest(http.MethodPost, url, strings.NewReader(body))
	require.NoError(t, err)
	req.Header.Set("Content-Type", "application/json")
	if secret != "" {
		req.Header.Set("X-Internal-Secret", secret)
	}
	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	t.Cleanup(func() { resp.Body.Close() })
	return resp
}

func TestHealthz(t *testing.T) {
	srv, _ := testRouterFixture(t)
	resp, err := http.Get(srv.URL + "/healthz")
	require.NoError(t, err)
	defer resp.Body.Close()
	assert.Equal(t, http.StatusOK, resp.StatusCode)
}

func TestInternalDeliveryRequiresSecret(t *testing.T) {
	srv, _ := testRouterFixture(t)

	resp := postJSON(t, srv.URL+"/api/internal/channels/general/events", "", `{"event":"channelUpdated"}`)
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)

	resp = postJSON(t, srv.URL+"/api/internal/channels/general/events", "wrong", `{"event":"channelUpdated"}`)
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
}

func TestChannelDeliveryFansOut(t *testing.T) {
	srv, hub := testRouterFixture(t)

	conn := &recordConn{}
	sess := core.NewClientSession(conn)
	sess.SetIdentity(&domain.Identity{UserID: "u1", Name: "Ann"})
	hub.Registry.Bind("c1", sess, nil)
	hub.Rooms.Join("c1", sess, domain.ChannelRoom("general"))

	resp := postJSON(t, srv.URL+"/api/internal/channels/general/events", "s3cret",
		`{"event":"channelUpdated","data":{"name":"General"}}`)
	assert.Equal(t, http.StatusAccepted, resp.StatusCode)

	require.Len(t, conn.frames, 1)
	assert.Contains(t, string(conn.frames[0]), `"channelUpdated"`)
	assert.Contains(t, string(conn.frames[0]), `"channelId":"general"`)
}

func TestUserDeliveryRoutesThroughRegistry(t *testing.T) {
	srv, hub := testRouterFixture(t)

	conn := &recordConn{}
	sess := core.NewClientSession(conn)
	hub.Registry.Bind("c1", sess, nil)
	hub.Registry.Register("u1", "c1")

	resp := postJSON(t, srv.URL+"/api/internal/users/u1/events", "s3cret",
		`{"event":"channelUpdated","data":{"id":"general"}}`)
	assert.Equal(t, http.StatusAccepted, resp.StatusCode)
	require.Len(t, conn.frames, 1)

	// Offline target still accepted; delivery is fire-and-forget.
	resp = postJSON(t, srv.URL+"/api/internal/users/nobody/events", "s3cret",
		`{"event":"channelUpdated"}`)
	assert.Equal(t, http.StatusAccepted, resp.StatusCode)
}

func TestBadDeliveryPayload(t *testing.T) {
	srv, _ := testRouterFixture(t)
	resp := postJSON(t, srv.URL+"/api/internal/channels/general/events", "s3cret", `{}`)
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
}
