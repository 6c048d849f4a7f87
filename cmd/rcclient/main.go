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
	"time"

	"github.com/park285/rcboard/internal/config"
	"github.com/park285/rcboard/internal/msgcat"
	"github.com/park285/rcboard/internal/obslog"
	"github.com/park285/rcboard/internal/session"
	"github.com/park285/rcboard/internal/socket"
	"go.uber.org/zap"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("config error: %v", err)
	}
	closeLog, err := obslog.InitFromEnv()
	if err != nil {
		log.Fatalf("logger init error: %v", err)
	}
	defer closeLog()
	logger := obslog.L()

	cat, err := msgcat.New(cfg.MessagesDir)
	if err != nil {
		log.Fatalf("message catalog error: %v", err)
	}

	ch := socket.New(cfg.Endpoint, socket.WithLogger(logger))
	ch.OnStateChange(func(state socket.State) {
		logger.Info("socket_state", zap.String("state", string(state)))
	})

	sess := session.New(ch, cat, os.Stdout, session.Options{
		Path:     cfg.SocketPath,
		BoardOut: cfg.BoardOut,
		Flip:     cfg.BoardFlip,
		Logger:   logger,
	})

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	stopListen := sess.Listen(ctx, ch)
	defer stopListen()

	if err := ch.Create(ctx, cfg.SocketPath); err != nil {
		log.Fatalf("socket create error: %v", err)
	}
	fmt.Println(cat.MustText("client.connected", map[string]string{"URL": cfg.Endpoint.URL(cfg.SocketPath)}))

	lines := make(chan string)
	go func() {
		defer close(lines)
		sc := bufio.NewScanner(os.Stdin)
		for sc.Scan() {
			lines <- sc.Text()
		}
	}()

	fmt.Println(cat.MustText("client.help", nil))
loop:
	for {
		select {
		case <-ctx.Done():
			break loop
		case line, ok := <-lines:
			if !ok {
				break loop
			}
			quit, err := sess.HandleInput(ctx, strings.TrimSpace(line))
			if err != nil {
				fmt.Fprintln(os.Stderr, err)
			}
			if quit {
				break loop
			}
		}
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := ch.Destroy(shutdownCtx); err != nil {
		logger.Debug("socket_destroy_on_exit", zap.Error(err))
	}
	fmt.Println(cat.MustText("client.disconnected", nil))
}
