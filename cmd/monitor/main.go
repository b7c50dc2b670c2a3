package main

import (
	"bufio"
	"context"
	"fmt"
	"log"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/go-redis/redis/v8"
	"go.uber.org/zap"

	"github.com/hamed0406/drownwatch/internal/config"
	"github.com/hamed0406/drownwatch/internal/logging"
	"github.com/hamed0406/drownwatch/internal/notify"
	"github.com/hamed0406/drownwatch/internal/redismsg"
	"github.com/hamed0406/drownwatch/internal/router"
)

// consoleNavigator prints the navigation the mobile shell would perform.
type consoleNavigator struct {
	log *zap.Logger
}

func (n *consoleNavigator) Navigate(screen string, params map[string]string) {
	fmt.Printf("-> %s  url=%s id=%s ts=%s\n",
		screen, params["videoUrl"], params["video_id"], params["timestamp"])
	n.log.Info("navigate",
		zap.String("screen", screen),
		zap.String("video_url", params["videoUrl"]),
		zap.String("video_id", params["video_id"]),
		zap.String("timestamp", params["timestamp"]),
	)
}

// terminalPrompter asks on stdin; Enter or y accepts.
type terminalPrompter struct {
	in *bufio.Reader
}

func (p *terminalPrompter) Prompt(ctx context.Context, title, text string) bool {
	fmt.Printf("%s %s — view now? [Y/n] ", title, text)
	line, err := p.in.ReadString('\n')
	if err != nil {
		return false
	}
	line = strings.TrimSpace(strings.ToLower(line))
	return line == "" || line == "y" || line == "yes"
}

func main() {
	cfg := config.FromEnv()
	logger, err := logging.NewLogger(cfg.LogDir)
	if err != nil {
		log.Fatal(err)
	}
	defer logger.Sync()

	rdb := redis.NewClient(&redis.Options{Addr: cfg.RedisAddr})
	defer rdb.Close()

	transport := redismsg.New(rdb, logger, cfg.Topic, cfg.AuthorizedPush)

	var fanout notify.Notifier
	if s := notify.NewSlack(cfg.SlackWebhook); s != nil {
		fanout = notify.Multi{s}
	}

	r := router.New(logger,
		transport,
		&consoleNavigator{log: logger},
		&terminalPrompter{in: bufio.NewReader(os.Stdin)},
		router.Options{
			Topic:       cfg.Topic,
			DedupWindow: cfg.DedupWindow,
			Notifier:    fanout,
		},
	)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	if err := r.Start(ctx); err != nil {
		log.Fatal(err)
	}
	fmt.Println("monitoring", cfg.Topic, "— ctrl-c to stop")

	sig := make(chan os.Signal, 1)
	signal.Notify(sig, os.Interrupt, syscall.SIGTERM)
	<-sig

	if err := r.Close(); err != nil {
		logger.Warn("teardown_error", zap.Error(err))
	}
	logger.Info("monitor_stopped")
}
