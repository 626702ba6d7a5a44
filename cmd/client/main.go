package main

import (
	"context"
	"flag"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"main/internal/api"
	"main/internal/bus"
	"main/internal/notify"
	"main/internal/obs"
	"main/internal/ops"
	"main/internal/prompt"
	"main/internal/session"
	"main/internal/ws"

	"github.com/grafana/pyroscope-go"
	"github.com/yanun0323/logs"
)

func main() {
	configPath := flag.String("config", "", "Path to YAML config")
	serverURL := flag.String("server", "", "Platform origin override")
	token := flag.String("token", "", "Session token (overrides stored credential)")
	username := flag.String("username", "", "Login username (used with -password)")
	password := flag.String("password", "", "Login password")
	statsInterval := flag.Duration("stats-interval", time.Minute, "Metrics log interval (0=disable)")
	flag.Parse()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	cfg, err := ops.Load(*configPath)
	if err != nil {
		log.Fatalf("config load failed: %v", err)
	}
	if *serverURL != "" {
		cfg.ServerBaseURL = *serverURL
	}

	if cfg.Profiling {
		profiler, err := pyroscope.Start(pyroscope.Config{
			ApplicationName: "recipe/client",
			ServerAddress:   cfg.ProfilingServer,
			ProfileTypes: []pyroscope.ProfileType{
				pyroscope.ProfileCPU,
				pyroscope.ProfileAllocSpace,
				pyroscope.ProfileInuseSpace,
			},
		})
		if err != nil {
			log.Fatalf("pyroscope start failed: %v", err)
		}
		defer func() {
			_ = profiler.Stop()
		}()
	}

	sess, err := session.Open()
	if err != nil {
		logs.Warnf("session: keyring unavailable, running memory-only, err: %+v", err)
		sess = session.NewMemory()
	}
	if *token != "" {
		sess.SetToken(*token)
	}

	client := api.New(sess, api.Option{BaseURL: cfg.ServerBaseURL})

	if sess.Token() == "" && *username != "" {
		result, err := client.Login(ctx, api.LoginRequest{Username: *username, Password: *password})
		if err != nil {
			log.Fatalf("login failed: %v", err)
		}
		logs.Infof("logged in as %s", result.User.Username)
	}

	metrics := obs.NewMetrics()
	broadcaster := bus.NewBroadcaster(bus.Option{Metrics: metrics})
	prompts := prompt.NewRegistry()

	dispatcher := notify.NewDispatcher(notify.Option{
		LogCap:        cfg.NotificationLogCap,
		ToastDuration: cfg.ToastDuration(),
		Session:       sess,
		Prompter:      prompts,
		Navigator:     loginNavigator{},
		Bus:           broadcaster,
		Metrics:       metrics,
	})

	manager := ws.NewManager(ws.Option{
		BaseURL:              cfg.ServerBaseURL,
		Token:                sess.Token,
		OnFrame:              dispatcher.HandleFrame,
		HeartbeatInterval:    cfg.HeartbeatInterval(),
		ReconnectInterval:    cfg.ReconnectInterval(),
		MaxReconnectAttempts: cfg.MaxReconnectAttempts,
		Metrics:              metrics,
	})

	watchTopics(ctx, broadcaster)
	manager.Connect()

	if *statsInterval > 0 {
		go logStats(ctx, metrics, dispatcher, *statsInterval)
	}

	<-ctx.Done()
	manager.Close()
	logs.Info("client stopped")
}

// loginNavigator is the headless stand-in for the SPA's login redirect.
type loginNavigator struct{}

func (loginNavigator) GotoLogin() {
	logs.Warn("session terminated, run again with -username/-password to log in")
}

func watchTopics(ctx context.Context, broadcaster *bus.Broadcaster) {
	topics := []bus.Topic{
		bus.TopicUserOnline,
		bus.TopicUserOffline,
		bus.TopicNewRecipePending,
		bus.TopicAdminNewComment,
		bus.TopicRecipeWithdrawn,
	}
	for _, topic := range topics {
		events, cancel := broadcaster.Subscribe(topic)
		go func() {
			defer cancel()
			for {
				select {
				case <-ctx.Done():
					return
				case e, ok := <-events:
					if !ok {
						return
					}
					logs.Infof("event %s: %+v", e.Topic, e.Payload)
				}
			}
		}()
	}
}

func logStats(ctx context.Context, metrics *obs.Metrics, dispatcher *notify.Dispatcher, interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			snap := metrics.Snapshot()
			logs.Infof("stats: frames=%d pongs=%d notifications=%d unread=%d toasts=%d reconnects=%d drops=%d",
				snap.FramesReceived, snap.PongsReceived, snap.Notifications,
				dispatcher.UnreadCount(), snap.ToastsShown, snap.Reconnects, snap.BroadcastDrops)
		}
	}
}
