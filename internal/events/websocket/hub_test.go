package websocket

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"roombook/internal/events"
	"roombook/pkg/logger"
	"roombook/pkg/model"
	"roombook/pkg/timeutil"

	"github.com/gorilla/websocket"
	"github.com/julienschmidt/httprouter"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFeed_DeliversEvents(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	hub := NewHub(logger.Discard())
	go hub.Run(ctx)

	router := httprouter.New()
	NewHandler(hub).RegisterRoutes(router)
	srv := httptest.NewServer(router)
	defer srv.Close()

	url := "ws" + strings.TrimPrefix(srv.URL, "http") + "/ws"
	conn, _, err := websocket.DefaultDialer.Dial(url, nil)
	require.NoError(t, err)
	defer conn.Close()

	require.Eventually(t, func() bool { return hub.ClientCount() == 1 }, 2*time.Second, 10*time.Millisecond)

	r := model.Reservation{
		Room:       "C1",
		Date:       timeutil.NewDate(2099, time.January, 10),
		StartTime:  timeutil.NewTimeOfDay(9, 0),
		EndTime:    timeutil.NewTimeOfDay(11, 0),
		ReservedBy: "Alice",
		Type:       model.ReservationLesson,
	}
	e := events.ReservationEvent(events.TypeReservationCreated, r)
	require.NoError(t, NewBroadcaster(hub).Publish(ctx, e))

	require.NoError(t, conn.SetReadDeadline(time.Now().Add(2*time.Second)))
	_, data, err := conn.ReadMessage()
	require.NoError(t, err)

	var msg Message
	require.NoError(t, json.Unmarshal(data, &msg))
	assert.Equal(t, events.TypeReservationCreated, msg.Type)
	assert.Equal(t, e.ID, msg.Payload.ID)
	require.NotNil(t, msg.Payload.Reservation)
	assert.Equal(t, r, *msg.Payload.Reservation)
}

func TestHub_StopClosesClients(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	hub := NewHub(logger.Discard())
	go hub.Run(ctx)

	client := NewClient(hub)
	require.True(t, hub.Register(client))
	require.Eventually(t, func() bool { return hub.ClientCount() == 1 }, time.Second, 10*time.Millisecond)

	cancel()

	select {
	case _, ok := <-client.Send():
		assert.False(t, ok, "send channel should be closed")
	case <-time.After(2 * time.Second):
		t.Fatal("client was not closed")
	}

	assert.False(t, hub.Register(NewClient(hub)), "register after stop")
	hub.Unregister(client)
}

func TestCheckOrigin(t *testing.T) {
	tests := []struct {
		origin string
		want   bool
	}{
		{"", true},
		{"http://127.0.0.1:3000", true},
		{"http://localhost:5173", true},
		{"http://[::1]:8080", true},
		{"http://example.com", false},
	}

	for _, tt := range tests {
		r := httptest.NewRequest(http.MethodGet, "http://127.0.0.1:8080/ws", nil)
		if tt.origin != "" {
			r.Header.Set("Origin", tt.origin)
		}
		assert.Equal(t, tt.want, sameHostOrLoopback(r), tt.origin)
	}
}
