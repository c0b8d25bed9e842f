package gateway

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"bridge-lite/apps/server/internal/client"
	"bridge-lite/apps/server/internal/ledger"
	"bridge-lite/apps/server/internal/lobby"
)

func newTestServer(t *testing.T) *httptest.Server {
	t.Helper()
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	g := New(lobby.NewRegistry(1), ledger.NewNoopService(), logger)

	mux := http.NewServeMux()
	mux.HandleFunc("/ws", g.HandleWebSocket)
	srv := httptest.NewServer(mux)
	t.Cleanup(srv.Close)
	return srv
}

func TestCreateJoinAndStart(t *testing.T) {
	srv := newTestServer(t)
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	host, err := client.Create(ctx, srv.URL, "Host", client.Options{
		MaxRounds: 2,
		Seed:      7,
	})
	require.NoError(t, err)
	defer host.Close()

	ack := host.Ack()
	assert.True(t, ack.Host)
	assert.Equal(t, "S", ack.Position)
	assert.Equal(t, "Host", ack.Name)
	assert.True(t, strings.HasPrefix(host.RoomCode(), lobby.CodePrefix))

	guest, err := client.Join(ctx, srv.URL, host.RoomCode(), "Guest")
	require.NoError(t, err)
	defer guest.Close()

	gack := guest.Ack()
	assert.False(t, gack.Host)
	assert.Equal(t, "N", gack.Position)

	// Both clients see the two-player roster before the deal.
	for _, c := range []*client.Client{host, guest} {
		require.Eventually(t, func() bool {
			l, ok := c.Lobby()
			return ok && len(l.Players) == 2
		}, 3*time.Second, 20*time.Millisecond)
	}
	l, _ := guest.Lobby()
	assert.NotEmpty(t, l.You)
	assert.Equal(t, "Host", l.HostName)

	// Only the host may deal.
	guestErrs := make(chan string, 4)
	guest.OnError = func(msg string) { guestErrs <- msg }
	require.NoError(t, guest.Start())
	select {
	case msg := <-guestErrs:
		assert.Contains(t, msg, "host")
	case <-time.After(3 * time.Second):
		t.Fatal("no rejection for guest start")
	}

	require.NoError(t, host.Start())
	for _, c := range []*client.Client{host, guest} {
		require.Eventually(t, func() bool {
			s, ok := c.State()
			return ok && s.State == "bidding"
		}, 3*time.Second, 20*time.Millisecond)
	}

	s, _ := host.State()
	assert.Equal(t, 1, s.RoundNumber)
	assert.Equal(t, "N", s.Dealer)

	// North deals, so the host acting from South is out of turn.
	hostErrs := make(chan string, 4)
	host.OnError = func(msg string) { hostErrs <- msg }
	require.NoError(t, host.SubmitBid("1C"))
	select {
	case msg := <-hostErrs:
		assert.Contains(t, msg, "turn")
	case <-time.After(3 * time.Second):
		t.Fatal("no rejection for out-of-turn bid")
	}

	require.NoError(t, guest.SubmitBid("1C"))
	require.Eventually(t, func() bool {
		s, ok := guest.State()
		return ok && s.Bidding != nil && len(s.Bidding.Bids) >= 1
	}, 3*time.Second, 20*time.Millisecond)
}

func TestJoinUnknownRoom(t *testing.T) {
	srv := newTestServer(t)
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	_, err := client.Join(ctx, srv.URL, "BRYDZ-ZZZZZ", "Ala")
	var je *client.JoinError
	require.True(t, errors.As(err, &je))
	assert.Equal(t, http.StatusNotFound, je.Status)
}

func TestJoinRejectsBadRequests(t *testing.T) {
	srv := newTestServer(t)
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	var je *client.JoinError

	// Missing name.
	_, err := client.Join(ctx, srv.URL, "BRYDZ-ZZZZZ", "")
	require.True(t, errors.As(err, &je))
	assert.Equal(t, http.StatusBadRequest, je.Status)

	// Malformed code.
	_, err = client.Join(ctx, srv.URL, "not a code", "Ala")
	require.True(t, errors.As(err, &je))
	assert.Equal(t, http.StatusBadRequest, je.Status)
}

func TestSpectatorAfterSeatsFill(t *testing.T) {
	srv := newTestServer(t)
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	host, err := client.Create(ctx, srv.URL, "Host", client.Options{Seed: 3})
	require.NoError(t, err)
	defer host.Close()

	for _, want := range []string{"N", "E", "W"} {
		c, err := client.Join(ctx, srv.URL, host.RoomCode(), "Guest"+want)
		require.NoError(t, err)
		defer c.Close()
		assert.Equal(t, want, c.Ack().Position)
	}

	spec, err := client.Join(ctx, srv.URL, host.RoomCode(), "Late")
	require.NoError(t, err)
	defer spec.Close()
	assert.Empty(t, spec.Ack().Position)

	require.Eventually(t, func() bool {
		l, ok := spec.Lobby()
		return ok && len(l.Players) == 5
	}, 3*time.Second, 20*time.Millisecond)
}
