package main

import (
	"context"
	"errors"
	"flag"
	"log"
	"os"
	"time"

	"github.com/park285/rcboard/internal/config"
	"github.com/park285/rcboard/internal/protocol"
	"github.com/park285/rcboard/internal/roomapi"
	"github.com/park285/rcboard/internal/socket"
)

func main() {
	window := flag.Duration("window", 10*time.Second, "how long to observe the socket")
	send := flag.String("send", "", "optional client message type to send after connecting (create|list)")
	flag.Parse()

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("config error: %v", err)
	}
	sessionID := os.Getenv("X_SESSION_ID")
	headers := func() map[string]string {
		if sessionID == "" {
			return nil
		}
		return map[string]string{"X-Session-Id": sessionID}
	}

	if cfg.RoomID != "" {
		api := roomapi.NewClient(cfg.Endpoint.APIBaseURL(),
			roomapi.WithHeaderProvider(headers),
			roomapi.WithTimeout(8*time.Second),
		)
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		room, err := api.GetRoom(ctx, cfg.RoomID)
		cancel()
		switch {
		case errors.Is(err, roomapi.ErrNotStarted):
			log.Printf("room %s: not started", cfg.RoomID)
		case err != nil:
			log.Printf("room %s error: %v", cfg.RoomID, err)
		default:
			log.Printf("room %s ok: %v", cfg.RoomID, room)
		}
	} else {
		log.Println("RC_ROOM_ID not set; skipping room check")
	}

	ch := socket.New(cfg.Endpoint, socket.WithHeaderProvider(headers))
	ch.OnStateChange(func(state socket.State) {
		log.Printf("socket state: %s", state)
	})
	updates, stopUpdates := ch.Updates(cfg.UpdateBuffer)
	defer stopUpdates()
	go func() {
		for msg := range updates {
			if msg == "" {
				continue
			}
			if decoded, err := protocol.DecodeServer(msg); err == nil {
				log.Printf("socket msg type=%s raw=%s", decoded.Type, msg)
				continue
			}
			log.Printf("socket msg raw=%q", msg)
		}
	}()

	cctx, ccancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer ccancel()
	if err := ch.Create(cctx, cfg.SocketPath); err != nil {
		log.Printf("socket create error: %v", err)
		return
	}

	if *send != "" {
		var m protocol.ClientMessage
		switch *send {
		case "create":
			m = protocol.CreateMessage()
		case "list":
			m = protocol.ListMessage(10)
		default:
			log.Printf("unknown -send %q", *send)
		}
		if m.Type != "" {
			if raw, err := protocol.EncodeClient(m); err == nil {
				if err := ch.Send(context.Background(), raw); err != nil {
					log.Printf("socket send error: %v", err)
				}
			}
		}
	}

	// Observe for a short window
	t := time.NewTimer(*window)
	<-t.C
	log.Printf("ready state at end of window: %s", ch.ReadyState())

	if err := ch.Destroy(context.Background()); err != nil {
		log.Printf("socket destroy error: %v", err)
	}
}
