// Package session ties the socket channel, the local board and the message
// catalog together for the interactive client.
package session

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"sort"
	"strconv"
	"strings"
	"sync"

	"github.com/park285/rcboard/internal/board"
	"github.com/park285/rcboard/internal/boardview"
	"github.com/park285/rcboard/internal/msgcat"
	"github.com/park285/rcboard/internal/protocol"
	"github.com/park285/rcboard/internal/socket"
	"github.com/park285/rcboard/pkg/boarddto"
	"go.uber.org/zap"
)

const defaultListSize = 10

// Channel is the part of socket.Client a session drives.
type Channel interface {
	Create(ctx context.Context, path string) error
	Send(ctx context.Context, message string) error
	Destroy(ctx context.Context) error
	ReadyState() socket.ReadyState
}

// Subscriber is the part of socket.Client that delivers server messages.
type Subscriber interface {
	Subscribe(fn socket.Listener) int
	Unsubscribe(id int)
}

type Options struct {
	// Path is the endpoint the channel is (re)created on.
	Path string
	// BoardOut, when set, receives a PNG after every position change.
	BoardOut string
	// Flip forces the black-side view regardless of the assigned color.
	Flip     bool
	Logger   *zap.Logger
	Renderer boardview.Renderer
}

type Session struct {
	ch   Channel
	cat  *msgcat.Catalog
	out  io.Writer
	opts Options

	mu       sync.Mutex
	board    *board.Board
	color    protocol.Color
	lastMove *boarddto.Move
	selected boarddto.Square
}

func New(ch Channel, cat *msgcat.Catalog, out io.Writer, opts Options) *Session {
	if opts.Logger == nil {
		opts.Logger = zap.NewNop()
	}
	if opts.Renderer == nil && opts.BoardOut != "" {
		opts.Renderer = boardview.NewRenderer()
	}
	return &Session{ch: ch, cat: cat, out: out, opts: opts, board: board.New()}
}

// Color is the side the server assigned, empty before a game starts.
func (s *Session) Color() protocol.Color {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.color
}

// Board exposes the local mirror.
func (s *Session) Board() *board.Board {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.board
}

// Listen runs HandleServer for every value sub delivers, synchronously and
// in arrival order, until the returned func is called.
func (s *Session) Listen(ctx context.Context, sub Subscriber) func() {
	id := sub.Subscribe(func(raw string) {
		if err := s.HandleServer(ctx, raw); err != nil {
			s.opts.Logger.Warn("server_message_failed", zap.Error(err))
		}
	})
	return func() { sub.Unsubscribe(id) }
}

// HandleServer applies one raw server message. The empty string is the
// channel's reset value and is ignored.
func (s *Session) HandleServer(ctx context.Context, raw string) error {
	if raw == "" {
		return nil
	}
	msg, err := protocol.DecodeServer(raw)
	if err != nil {
		s.opts.Logger.Warn("session_bad_server_message", zap.String("raw", raw), zap.Error(err))
		return err
	}
	s.opts.Logger.Debug("session_server_message", zap.String("type", string(msg.Type)))

	changed := false
	s.mu.Lock()
	switch msg.Type {
	case protocol.ServerStart:
		s.color = msg.Color
		s.board = board.New()
		s.lastMove = nil
		changed = true
	case protocol.ServerReconnect:
		s.color = msg.Color
		if err := s.board.Sync(msg.FEN); err != nil {
			s.mu.Unlock()
			return err
		}
		s.lastMove = nil
		changed = true
	case protocol.ServerMove:
		if err := s.applyServerMove(msg); err != nil {
			s.mu.Unlock()
			return err
		}
		changed = true
	}
	s.mu.Unlock()

	s.println(s.cat.Describe(msg))
	if changed {
		s.afterPositionChange(ctx)
	}
	return nil
}

// applyServerMove adopts the server's FEN when present, else replays the
// move locally. Caller holds s.mu.
func (s *Session) applyServerMove(msg protocol.ServerMessage) error {
	mv := msg.Move()
	if strings.TrimSpace(msg.FEN) != "" {
		if err := s.board.Sync(msg.FEN); err != nil {
			return err
		}
	} else if _, err := s.board.Play(mv); err != nil {
		return fmt.Errorf("replay server move %s: %w", mv.Origin+mv.Destination, err)
	}
	s.lastMove = &mv
	return nil
}

// HandleInput runs one command line. It reports quit=true when the user
// asked to leave.
func (s *Session) HandleInput(ctx context.Context, line string) (quit bool, err error) {
	fields := strings.Fields(line)
	if len(fields) == 0 {
		return false, nil
	}
	cmd := strings.ToLower(fields[0])
	switch cmd {
	case "quit", "exit":
		return true, nil
	case "help":
		s.println(s.cat.MustText("client.help", nil))
		return false, nil
	case "create":
		_, err = s.send(ctx, protocol.CreateMessage())
		return false, err
	case "list":
		n := defaultListSize
		if len(fields) > 1 {
			if v, err := strconv.Atoi(fields[1]); err == nil && v > 0 {
				n = v
			}
		}
		_, err = s.send(ctx, protocol.ListMessage(n))
		return false, err
	case "dests":
		from := ""
		if len(fields) > 1 {
			from = fields[1]
		}
		return false, s.showDests(ctx, boarddto.Square(strings.ToLower(from)))
	case "reconnect":
		return false, s.reconnect(ctx)
	}
	if n := len(cmd); n == 4 || n == 5 {
		return false, s.playLocal(ctx, cmd)
	}
	s.println(s.cat.MustText("client.unknown_command", map[string]string{"Input": line}))
	return false, nil
}

// playLocal applies code to the mirror and sends it. A move that does not
// reach the transport is taken back so the mirror never runs ahead of the
// server.
func (s *Session) playLocal(ctx context.Context, code string) error {
	s.mu.Lock()
	turn := s.board.Turn()
	if s.color != "" && s.color != protocol.All && string(s.color) != turn {
		s.mu.Unlock()
		s.println(s.cat.MustText("client.not_your_turn", map[string]string{"Turn": turn}))
		return nil
	}
	prevFEN, prevLast := s.board.FEN(), s.lastMove
	if _, err := s.board.PlayUCI(code); err != nil {
		s.mu.Unlock()
		s.println(s.cat.MustText("client.bad_move", map[string]string{"Code": code, "Reason": reason(err)}))
		return nil
	}
	played, _ := s.board.LastMove()
	s.lastMove = &played
	s.selected = ""
	fen := s.board.FEN()
	outcome := s.board.Outcome()
	s.mu.Unlock()

	delivered, err := s.send(ctx, protocol.MoveMessage(played, fen))
	if err != nil || !delivered {
		s.mu.Lock()
		if syncErr := s.board.Sync(prevFEN); syncErr != nil {
			s.opts.Logger.Error("session_rollback_failed", zap.String("fen", prevFEN), zap.Error(syncErr))
		}
		s.lastMove = prevLast
		s.mu.Unlock()
		s.opts.Logger.Debug("session_move_rolled_back", zap.String("code", code))
		return err
	}
	if outcome != "*" {
		s.println(s.cat.MustText("client.game_over", map[string]string{"Outcome": outcome}))
	}
	s.afterPositionChange(ctx)
	return nil
}

func (s *Session) showDests(ctx context.Context, from boarddto.Square) error {
	s.mu.Lock()
	d, err := s.board.Dests()
	s.selected = from
	s.mu.Unlock()
	if err != nil {
		return err
	}

	origins := make([]string, 0, len(d))
	for o := range d {
		if from == "" || o == from {
			origins = append(origins, string(o))
		}
	}
	sort.Strings(origins)
	if len(origins) == 0 {
		s.println(s.cat.MustText("client.no_dests", map[string]string{"From": string(from)}))
		return nil
	}
	for _, o := range origins {
		to := make([]string, 0, len(d[boarddto.Square(o)]))
		for _, sq := range d[boarddto.Square(o)] {
			to = append(to, string(sq))
		}
		s.println(s.cat.MustText("client.dests", map[string]any{"From": o, "To": to}))
	}
	if from != "" {
		s.afterPositionChange(ctx)
	}
	return nil
}

func (s *Session) reconnect(ctx context.Context) error {
	if err := s.ch.Destroy(ctx); err != nil && !errors.Is(err, socket.ErrNotConnected) {
		s.opts.Logger.Warn("session_destroy_failed", zap.Error(err))
	}
	if err := s.ch.Create(ctx, s.opts.Path); err != nil {
		return err
	}
	s.println(s.cat.MustText("client.connected", map[string]string{"URL": s.opts.Path}))
	return nil
}

// send reports delivered=false when the frame could not be handed to an
// open transport. Those cases are printed, not returned.
func (s *Session) send(ctx context.Context, msg protocol.ClientMessage) (delivered bool, err error) {
	raw, err := protocol.EncodeClient(msg)
	if err != nil {
		return false, err
	}
	if rs := s.ch.ReadyState(); rs == socket.ReadyClosed || rs == socket.ReadyClosing {
		s.println(s.cat.MustText("client.transport_closed", nil))
		return false, nil
	}
	if err := s.ch.Send(ctx, raw); err != nil {
		if errors.Is(err, socket.ErrNotConnected) {
			s.println(s.cat.MustText("client.disconnected", nil))
			return false, nil
		}
		return false, err
	}
	return true, nil
}

// afterPositionChange writes the board image when an output path is set.
func (s *Session) afterPositionChange(ctx context.Context) {
	if s.opts.BoardOut == "" || s.opts.Renderer == nil {
		return
	}
	s.mu.Lock()
	opts := boardview.Options{
		Flip:     s.opts.Flip || s.color == protocol.Black,
		LastMove: s.lastMove,
		Selected: s.selected,
	}
	if s.selected != "" {
		opts.Dests, _ = s.board.Dests()
	}
	pos := s.board.Position()
	s.mu.Unlock()

	png, err := s.opts.Renderer.RenderPNG(ctx, pos, opts)
	if err != nil {
		s.opts.Logger.Warn("session_render_failed", zap.Error(err))
		return
	}
	if err := os.WriteFile(s.opts.BoardOut, png, 0o644); err != nil {
		s.opts.Logger.Warn("session_board_write_failed", zap.String("path", s.opts.BoardOut), zap.Error(err))
	}
}

func (s *Session) println(text string) {
	if s.out == nil || text == "" {
		return
	}
	fmt.Fprintln(s.out, text)
}

func reason(err error) string {
	var de boarddto.DomainError
	if errors.As(err, &de) && de.Message != "" {
		return de.Message
	}
	return err.Error()
}
