// cmd/preflight/main.go
package main

import (
	"context"
	"fmt"
	"net"
	"net/url"
	"os"
	"strings"
	"time"

	"github.com/go-redis/redis/v8"
)

func main() {
	fail := func(msg string) {
		fmt.Fprintln(os.Stderr, "✖", msg)
		os.Exit(1)
	}
	warn := func(msg string) { fmt.Fprintln(os.Stderr, "⚠", msg) }
	ok := func(msg string) { fmt.Println("✔", msg) }

	admin := strings.TrimSpace(os.Getenv("ADMIN_API_KEYS"))
	pub := strings.TrimSpace(os.Getenv("PUBLIC_API_KEYS"))
	feedURL := strings.TrimSpace(os.Getenv("ALERTS_CSV_URL"))
	db := strings.TrimSpace(os.Getenv("DATABASE_URL"))
	redisAddr := strings.TrimSpace(os.Getenv("REDIS_ADDR"))

	if admin == "" {
		fail("ADMIN_API_KEYS is empty (feedback writes will 403).")
	}
	if pub == "" {
		fail("PUBLIC_API_KEYS is empty (read routes will 401).")
	}
	for name, v := range map[string]string{"ADMIN_API_KEYS": admin, "PUBLIC_API_KEYS": pub} {
		if strings.Contains(v, " ") {
			warn(name + " contains spaces; use comma-separated with no spaces, e.g. key1,key2")
		}
	}

	if feedURL == "" {
		fail("ALERTS_CSV_URL is empty — the chart and incident list have no source.")
	}
	if host := hostOf(feedURL); host != "" {
		ctx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
		if _, err := (&net.Resolver{}).LookupIP(ctx, "ip", host); err != nil {
			warn("feed host " + host + " does not resolve: " + err.Error())
		} else {
			ok("feed host " + host + " resolves")
		}
		cancel()
	}

	if db == "" {
		warn("DATABASE_URL empty — API will use the in-memory feedback store.")
	} else {
		ok("DATABASE_URL present")
	}

	if redisAddr == "" {
		warn("REDIS_ADDR empty — monitor will use the default 127.0.0.1:6379.")
	} else {
		rdb := redis.NewClient(&redis.Options{Addr: redisAddr})
		ctx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
		if err := rdb.Ping(ctx).Err(); err != nil {
			warn("redis at " + redisAddr + " not reachable: " + err.Error())
		} else {
			ok("redis reachable at " + redisAddr)
		}
		cancel()
		_ = rdb.Close()
	}

	ok("preflight passed")
}

func hostOf(raw string) string {
	u, err := url.Parse(raw)
	if err != nil {
		return ""
	}
	return u.Hostname()
}
