// Package router turns push-delivered alert messages into navigation
// intents. Three delivery channels exist: a cold-start query (app launched
// by a notification), a background-tap listener (notification brought the
// app forward) and a foreground listener (message arrived while active).
// All three feed one intent-extraction path; only the foreground channel
// navigates, after a user prompt.
package router

import (
	"context"
	"sync"
	"time"

	"go.uber.org/multierr"
	"go.uber.org/zap"

	"github.com/hamed0406/drownwatch/internal/domain"
	"github.com/hamed0406/drownwatch/internal/notify"
)

// Message is one inbound push payload. Only the data section matters here;
// notification title/body are display-only and handled by the OS shade.
type Message struct {
	Data map[string]string
}

// Intent pulls the navigation payload out of a message, if it carries a
// video locator. Messages without one are not alert deliveries.
func (m *Message) Intent() (domain.NotificationIntent, bool) {
	if m == nil || m.Data == nil || m.Data["video_url"] == "" {
		return domain.NotificationIntent{}, false
	}
	return domain.NotificationIntent{
		VideoURL:  m.Data["video_url"],
		VideoID:   m.Data["video_id"],
		Timestamp: m.Data["timestamp"],
	}, true
}

// PermissionState is the notification-permission machine:
// Uninitialized -> PermissionRequested -> Granted | Denied.
type PermissionState int

const (
	Uninitialized PermissionState = iota
	PermissionRequested
	Granted
	Denied
)

func (s PermissionState) String() string {
	switch s {
	case PermissionRequested:
		return "permission_requested"
	case Granted:
		return "granted"
	case Denied:
		return "denied"
	default:
		return "uninitialized"
	}
}

// Subscription is an active channel subscription. Teardown must be invoked
// exactly once; the router owns that invocation.
type Subscription interface {
	Teardown() error
}

// Messaging is the push transport collaborator.
type Messaging interface {
	// RequestPermission returns whether notification delivery is authorized.
	RequestPermission(ctx context.Context) (bool, error)
	// Token returns the device registration token.
	Token(ctx context.Context) (string, error)
	// SubscribeTopic registers this device for a broadcast topic.
	SubscribeTopic(ctx context.Context, topic string) error
	// InitialMessage returns the message that cold-started the process,
	// or nil. Queried once.
	InitialMessage(ctx context.Context) (*Message, error)
	// OnMessageOpened subscribes the background-tap channel.
	OnMessageOpened(handler func(Message)) (Subscription, error)
	// OnMessage subscribes the foreground channel.
	OnMessage(handler func(Message)) (Subscription, error)
}

// Navigator is the navigation sink: a target screen plus a parameter bag.
type Navigator interface {
	Navigate(screen string, params map[string]string)
}

// Prompter gates foreground navigation behind a user-facing confirmation.
type Prompter interface {
	Prompt(ctx context.Context, title, text string) bool
}

// Screen and prompt wording shown for a foreground alert.
const (
	VideoPlayerScreen = "Video Player"
	promptTitle       = "Drowning Detected!"
	promptText        = "Tap to view"
)

type Options struct {
	Topic string
	// DedupWindow suppresses repeated intents for the same
	// video_id+timestamp within the window. Zero disables it, matching the
	// historical behavior where each channel fires independently.
	DedupWindow time.Duration
	// Notifier additionally fans the prompt out (e.g. Slack). Optional.
	Notifier notify.Notifier
}

type Router struct {
	log    *zap.Logger
	msg    Messaging
	nav    Navigator
	prompt Prompter
	opts   Options

	mu     sync.Mutex
	state  PermissionState
	subs   []Subscription
	closed bool
	seen   map[string]time.Time

	now func() time.Time
}

func New(log *zap.Logger, msg Messaging, nav Navigator, prompt Prompter, opts Options) *Router {
	return &Router{
		log:    log,
		msg:    msg,
		nav:    nav,
		prompt: prompt,
		opts:   opts,
		state:  Uninitialized,
		seen:   make(map[string]time.Time),
		now:    time.Now,
	}
}

// State returns the current permission state.
func (r *Router) State() PermissionState {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.state
}

// Start runs the permission machine, then wires all three channels. The
// channels are wired regardless of the permission outcome: a denied device
// still browses incidents manually, and locally-delivered messages still
// arrive. Topic-subscribe failure is logged, never fatal — push delivery
// is a convenience channel.
func (r *Router) Start(ctx context.Context) error {
	r.setState(PermissionRequested)

	granted, err := r.msg.RequestPermission(ctx)
	if err != nil {
		r.log.Warn("permission_request_failed", zap.Error(err))
		granted = false
	}
	if granted {
		r.setState(Granted)
		if token, err := r.msg.Token(ctx); err != nil {
			r.log.Warn("token_acquisition_failed", zap.Error(err))
		} else {
			r.log.Info("device_token", zap.String("token", token))
		}
		if err := r.msg.SubscribeTopic(ctx, r.opts.Topic); err != nil {
			r.log.Warn("topic_subscription_failed",
				zap.String("topic", r.opts.Topic), zap.Error(err))
		} else {
			r.log.Info("topic_subscribed", zap.String("topic", r.opts.Topic))
		}
	} else {
		r.setState(Denied)
		r.log.Info("permission_denied")
	}

	// Cold-start channel: queried once. The intent is logged, not
	// navigated; the user reaches the incident through normal browsing.
	if m, err := r.msg.InitialMessage(ctx); err != nil {
		r.log.Warn("initial_message_query_failed", zap.Error(err))
	} else if intent, ok := r.extract(m); ok {
		r.log.Info("opened_from_quit_state",
			zap.String("video_url", intent.VideoURL),
			zap.String("video_id", intent.VideoID))
	}

	sub, err := r.msg.OnMessageOpened(func(m Message) { r.handleOpened(m) })
	if err != nil {
		return err
	}
	r.addSub(sub)

	sub, err = r.msg.OnMessage(func(m Message) { r.handleForeground(ctx, m) })
	if err != nil {
		return err
	}
	r.addSub(sub)

	return nil
}

// Close tears down every channel subscription exactly once. Safe to call
// more than once; later calls are no-ops.
func (r *Router) Close() error {
	r.mu.Lock()
	if r.closed {
		r.mu.Unlock()
		return nil
	}
	r.closed = true
	subs := r.subs
	r.subs = nil
	r.mu.Unlock()

	var err error
	for _, s := range subs {
		err = multierr.Append(err, s.Teardown())
	}
	return err
}

// handleOpened processes a background-tap delivery. Same asymmetry as
// cold-start: the intent is logged only.
func (r *Router) handleOpened(m Message) {
	intent, ok := r.extract(&m)
	if !ok {
		return
	}
	r.log.Info("opened_from_background",
		zap.String("video_url", intent.VideoURL),
		zap.String("video_id", intent.VideoID))
}

// handleForeground processes a real-time delivery: prompt the user, then
// navigate to the incident-review screen exactly once.
func (r *Router) handleForeground(ctx context.Context, m Message) {
	intent, ok := r.extract(&m)
	if !ok {
		return
	}

	if n := r.opts.Notifier; n != nil {
		if err := n.Send(ctx, promptTitle, promptText); err != nil {
			r.log.Warn("prompt_fanout_failed", zap.Error(err))
		}
	}
	if !r.prompt.Prompt(ctx, promptTitle, promptText) {
		r.log.Info("alert_dismissed", zap.String("video_id", intent.VideoID))
		return
	}

	r.nav.Navigate(VideoPlayerScreen, map[string]string{
		"videoUrl":  intent.VideoURL,
		"video_id":  intent.VideoID,
		"timestamp": intent.Timestamp,
	})
}

// extract pulls an intent out of a message, applying the closed guard and
// the optional dedup window. Dedup keys on video_id+timestamp.
func (r *Router) extract(m *Message) (domain.NotificationIntent, bool) {
	intent, ok := m.Intent()
	if !ok {
		return intent, false
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	if r.closed {
		return intent, false
	}
	if r.opts.DedupWindow > 0 {
		key := intent.VideoID + "|" + intent.Timestamp
		now := r.now()
		if last, dup := r.seen[key]; dup && now.Sub(last) < r.opts.DedupWindow {
			r.log.Info("duplicate_intent_suppressed", zap.String("key", key))
			return intent, false
		}
		r.seen[key] = now
	}
	return intent, true
}

func (r *Router) setState(s PermissionState) {
	r.mu.Lock()
	r.state = s
	r.mu.Unlock()
	r.log.Info("permission_state", zap.String("state", s.String()))
}

func (r *Router) addSub(s Subscription) {
	r.mu.Lock()
	closed := r.closed
	if !closed {
		r.subs = append(r.subs, s)
	}
	r.mu.Unlock()
	if closed {
		// Close raced Start; consume the handle here so it is still torn
		// down exactly once.
		_ = s.Teardown()
	}
}
