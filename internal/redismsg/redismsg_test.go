package redismsg

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/go-redis/redis/v8"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/hamed0406/drownwatch/internal/router"
)

func setup(t *testing.T) (*miniredis.Miniredis, *Transport) {
	t.Helper()
	mr := miniredis.RunT(t)
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = rdb.Close() })
	return mr, New(rdb, zap.NewNop(), "drowning-alerts", true)
}

func alertJSON(t *testing.T) string {
	t.Helper()
	b, err := json.Marshal(payload{Data: map[string]string{
		"video_url": "https://x/a.mp4",
		"video_id":  "42",
		"timestamp": "2025-05-10T10:00:00Z",
	}})
	require.NoError(t, err)
	return string(b)
}

func waitFor(t *testing.T, ch <-chan router.Message) router.Message {
	t.Helper()
	select {
	case m := <-ch:
		return m
	case <-time.After(2 * time.Second):
		t.Fatal("timed out waiting for message delivery")
		return router.Message{}
	}
}

func TestTokenIsStable(t *testing.T) {
	_, tr := setup(t)
	ctx := context.Background()

	tok1, err := tr.Token(ctx)
	require.NoError(t, err)
	tok2, err := tr.Token(ctx)
	require.NoError(t, err)
	assert.NotEmpty(t, tok1)
	assert.Equal(t, tok1, tok2)
}

func TestSubscribeTopic_RegistersMembership(t *testing.T) {
	mr, tr := setup(t)
	ctx := context.Background()

	require.NoError(t, tr.SubscribeTopic(ctx, "drowning-alerts"))

	tok, _ := tr.Token(ctx)
	members, err := mr.SMembers("alerts:subscribers:drowning-alerts")
	require.NoError(t, err)
	assert.Contains(t, members, tok)
}

func TestInitialMessage_PopsPendingOnce(t *testing.T) {
	mr, tr := setup(t)
	ctx := context.Background()

	tok, _ := tr.Token(ctx)
	mr.Lpush("alerts:pending:"+tok, alertJSON(t))

	m, err := tr.InitialMessage(ctx)
	require.NoError(t, err)
	require.NotNil(t, m)
	assert.Equal(t, "https://x/a.mp4", m.Data["video_url"])

	// queried once: the pending slot is consumed
	m, err = tr.InitialMessage(ctx)
	require.NoError(t, err)
	assert.Nil(t, m)
}

func TestOnMessage_DeliversForegroundPayload(t *testing.T) {
	mr, tr := setup(t)

	got := make(chan router.Message, 1)
	sub, err := tr.OnMessage(func(m router.Message) { got <- m })
	require.NoError(t, err)
	defer func() { _ = sub.Teardown() }()

	mr.Publish("alerts:drowning-alerts", alertJSON(t))

	m := waitFor(t, got)
	assert.Equal(t, "42", m.Data["video_id"])
	assert.Equal(t, "2025-05-10T10:00:00Z", m.Data["timestamp"])
}

func TestOnMessageOpened_UsesDeviceChannel(t *testing.T) {
	mr, tr := setup(t)
	tok, _ := tr.Token(context.Background())

	got := make(chan router.Message, 1)
	sub, err := tr.OnMessageOpened(func(m router.Message) { got <- m })
	require.NoError(t, err)
	defer func() { _ = sub.Teardown() }()

	mr.Publish("alerts:tapped:"+tok, alertJSON(t))

	m := waitFor(t, got)
	assert.Equal(t, "https://x/a.mp4", m.Data["video_url"])
}

func TestTeardown_StopsDelivery(t *testing.T) {
	mr, tr := setup(t)

	got := make(chan router.Message, 4)
	sub, err := tr.OnMessage(func(m router.Message) { got <- m })
	require.NoError(t, err)

	require.NoError(t, sub.Teardown())
	// repeat teardown is tolerated on the transport side
	require.NoError(t, sub.Teardown())

	mr.Publish("alerts:drowning-alerts", alertJSON(t))
	select {
	case <-got:
		t.Fatal("message delivered after teardown")
	case <-time.After(200 * time.Millisecond):
	}
}

func TestDecode_BadJSONYieldsEmptyMessage(t *testing.T) {
	m := decode("{not json", zap.NewNop())
	assert.Nil(t, m.Data)
	_, ok := m.Intent()
	assert.False(t, ok)
}
