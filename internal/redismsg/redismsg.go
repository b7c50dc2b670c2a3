// Package redismsg implements the router's Messaging port over Redis.
//
// The alert backend publishes to alerts:<topic> (foreground deliveries),
// pushes cold-start payloads onto alerts:pending:<token>, and publishes
// tap events to alerts:tapped:<token>. Topic membership is tracked in the
// alerts:subscribers:<topic> set so the backend knows who listens.
package redismsg

import (
	"context"
	"encoding/json"
	"sync"

	"github.com/go-redis/redis/v8"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/hamed0406/drownwatch/internal/router"
)

// payload mirrors the push message wire shape: the data section carries
// video_url / video_id / timestamp.
type payload struct {
	Data map[string]string `json:"data"`
}

type Transport struct {
	rdb   *redis.Client
	log   *zap.Logger
	topic string

	// authorized comes from device configuration; field installs are
	// provisioned with notifications pre-approved or not at all.
	authorized bool

	mu    sync.Mutex
	token string
}

func New(rdb *redis.Client, log *zap.Logger, topic string, authorized bool) *Transport {
	return &Transport{rdb: rdb, log: log, topic: topic, authorized: authorized}
}

func (t *Transport) RequestPermission(ctx context.Context) (bool, error) {
	return t.authorized, nil
}

// Token returns the device registration token, minting one on first use.
func (t *Transport) Token(ctx context.Context) (string, error) {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.token == "" {
		t.token = uuid.NewString()
	}
	return t.token, nil
}

func (t *Transport) SubscribeTopic(ctx context.Context, topic string) error {
	token, _ := t.Token(ctx)
	return t.rdb.SAdd(ctx, "alerts:subscribers:"+topic, token).Err()
}

// InitialMessage pops the payload that cold-started this device, if any.
func (t *Transport) InitialMessage(ctx context.Context) (*router.Message, error) {
	token, _ := t.Token(ctx)
	raw, err := t.rdb.LPop(ctx, "alerts:pending:"+token).Result()
	if err == redis.Nil {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	m := decode(raw, t.log)
	return &m, nil
}

func (t *Transport) OnMessageOpened(handler func(router.Message)) (router.Subscription, error) {
	token, _ := t.Token(context.Background())
	return t.subscribe("alerts:tapped:"+token, handler)
}

func (t *Transport) OnMessage(handler func(router.Message)) (router.Subscription, error) {
	return t.subscribe("alerts:"+t.topic, handler)
}

func (t *Transport) subscribe(channel string, handler func(router.Message)) (router.Subscription, error) {
	ps := t.rdb.Subscribe(context.Background(), channel)
	// force the SUBSCRIBE round-trip so a dead broker fails here, not
	// silently in the reader goroutine
	if _, err := ps.Receive(context.Background()); err != nil {
		_ = ps.Close()
		return nil, err
	}

	sub := &subscription{ps: ps}
	sub.done.Add(1)
	go func() {
		defer sub.done.Done()
		for msg := range ps.Channel() {
			handler(decode(msg.Payload, t.log))
		}
	}()
	return sub, nil
}

type subscription struct {
	ps   *redis.PubSub
	once sync.Once
	done sync.WaitGroup
	err  error
}

// Teardown closes the underlying subscription and waits for the reader to
// drain. Idempotent: the transport-side handle tolerates repeats even
// though the router promises exactly one call.
func (s *subscription) Teardown() error {
	s.once.Do(func() {
		s.err = s.ps.Close()
		s.done.Wait()
	})
	return s.err
}

func decode(raw string, log *zap.Logger) router.Message {
	var p payload
	if err := json.Unmarshal([]byte(raw), &p); err != nil {
		log.Warn("message_decode_failed", zap.Error(err))
		return router.Message{}
	}
	return router.Message{Data: p.Data}
}
