package relay

import (
	"bufio"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gobwas/ws"
	"github.com/gobwas/ws/wsutil"
)

func waitForClients(t *testing.T, b *Broker, n int) {
	t.Helper()
	deadline := time.Now().Add(2 * time.Second)
	for b.ClientCount() != n {
		if time.Now().After(deadline) {
			t.Fatalf("ClientCount() = %d; want %d", b.ClientCount(), n)
		}
		time.Sleep(5 * time.Millisecond)
	}
}

func TestBrokerPublishAndUnsubscribe(t *testing.T) {
	b := NewBroker()
	id, ch := b.Subscribe()
	if b.ClientCount() != 1 {
		t.Fatalf("ClientCount() = %d; want 1", b.ClientCount())
	}

	b.PublishJSON(FeedRefresh, map[string]bool{"refreshing": true})
	evt := <-ch
	if evt.Feed != FeedRefresh || evt.Payload != `{"refreshing":true}` {
		t.Fatalf("event = %+v; want refresh payload", evt)
	}

	b.Unsubscribe(id)
	if _, ok := <-ch; ok {
		t.Fatal("channel still open after Unsubscribe")
	}
	if b.ClientCount() != 0 {
		t.Fatalf("ClientCount() = %d; want 0", b.ClientCount())
	}
	b.Unsubscribe(id)
}

func TestBrokerDropsForSlowSubscriber(t *testing.T) {
	b := NewBroker()
	_, ch := b.Subscribe()
	for i := 0; i < subscriberBufSize+10; i++ {
		b.Publish(Event{Feed: FeedTabs, Payload: "{}"})
	}
	if len(ch) != subscriberBufSize {
		t.Fatalf("buffered = %d; want %d", len(ch), subscriberBufSize)
	}
}

func TestSSEHandlerFiltersFeeds(t *testing.T) {
	b := NewBroker()
	srv := httptest.NewServer(SSEHandler(b))
	defer srv.Close()

	resp, err := http.Get(srv.URL + "?feeds=tabs")
	if err != nil {
		t.Fatalf("GET = %v", err)
	}
	defer resp.Body.Close()
	if got := resp.Header.Get("Content-Type"); got != "text/event-stream" {
		t.Fatalf("content-type = %q; want text/event-stream", got)
	}

	waitForClients(t, b, 1)
	b.Publish(Event{Feed: FeedRefresh, Payload: `{"refreshing":false}`})
	b.Publish(Event{Feed: FeedTabs, Payload: `{"active_index":0}`})

	reader := bufio.NewReader(resp.Body)
	var lines []string
	for len(lines) < 2 {
		line, err := reader.ReadString('\n')
		if err != nil {
			t.Fatalf("read stream: %v", err)
		}
		if line = strings.TrimSpace(line); line != "" {
			lines = append(lines, line)
		}
	}
	if lines[0] != "event: tabs" || lines[1] != `data: {"active_index":0}` {
		t.Fatalf("stream = %q; want tabs event only", lines)
	}
}

func TestWSHandlerStreamsEvents(t *testing.T) {
	b := NewBroker()
	srv := httptest.NewServer(WSHandler(b))
	defer srv.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	conn, _, _, err := ws.Dial(ctx, "ws"+strings.TrimPrefix(srv.URL, "http")+"?feeds=refresh")
	if err != nil {
		t.Fatalf("ws.Dial() = %v", err)
	}
	defer conn.Close()

	waitForClients(t, b, 1)
	b.Publish(Event{Feed: FeedTabs, Payload: "{}"})
	b.Publish(Event{Feed: FeedRefresh, Payload: `{"refreshing":true}`})

	data, err := wsutil.ReadServerText(conn)
	if err != nil {
		t.Fatalf("ReadServerText() = %v", err)
	}
	var evt Event
	if err := json.Unmarshal(data, &evt); err != nil {
		t.Fatalf("decode event: %v", err)
	}
	if evt.Feed != FeedRefresh || evt.Payload != `{"refreshing":true}` {
		t.Fatalf("event = %+v; want refresh event", evt)
	}
}
