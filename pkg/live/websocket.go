package live

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net"
	"net/http"
	"sync"
	"time"

	"ai-assistant-be/internal/entity"
	"ai-assistant-be/internal/pkg/logger"
	"ai-assistant-be/pkg/llm"

	"github.com/gorilla/websocket"
)

const (
	module               = "LIVE"
	defaultConnectTimout = 15 * time.Second
	eventBuffer          = 256
)

var ErrNotConnected = errors.New("live: channel is not connected")

// Wire messages

type clientTool struct {
	Name        string         `json:"name"`
	Description string         `json:"description"`
	Parameters  map[string]any `json:"parameters,omitempty"`
}

type clientSetup struct {
	Type              string       `json:"type"`
	Voice             string       `json:"voice,omitempty"`
	SystemInstruction string       `json:"system_instruction,omitempty"`
	Transcription     bool         `json:"transcription"`
	Tools             []clientTool `json:"tools,omitempty"`
}

type clientText struct {
	Type string `json:"type"`
	Text string `json:"text"`
}

type clientToolResult struct {
	Type    string         `json:"type"`
	Id      string         `json:"id"`
	Payload map[string]any `json:"payload"`
}

type serverMessage struct {
	Type      string         `json:"type"`
	State     string         `json:"state,omitempty"`
	User      string         `json:"user,omitempty"`
	Assistant string         `json:"assistant,omitempty"`
	Speaker   string         `json:"speaker,omitempty"`
	Text      string         `json:"text,omitempty"`
	Id        string         `json:"id,omitempty"`
	Name      string         `json:"name,omitempty"`
	Args      map[string]any `json:"args,omitempty"`
	Message   string         `json:"message,omitempty"`
}

// WebSocketChannel talks JSON to a live gateway over gorilla/websocket.
type WebSocketChannel struct {
	url    string
	dialer *websocket.Dialer
	logger logger.ILogger
	events chan Event

	mu   sync.Mutex
	conn *websocket.Conn
	done chan struct{}
	// stop is closed by Close so a reader blocked on a full buffer lets go
	stop    chan struct{}
	writeMu sync.Mutex
}

var _ Channel = &WebSocketChannel{}

func NewWebSocketChannel(url string, logger logger.ILogger) *WebSocketChannel {
	return &WebSocketChannel{
		url:    url,
		dialer: websocket.DefaultDialer,
		logger: logger,
		events: make(chan Event, eventBuffer),
	}
}

func (c *WebSocketChannel) Events() <-chan Event {
	return c.events
}

// Open dials the gateway and sends the setup message. An open connection is
// replaced.
func (c *WebSocketChannel) Open(ctx context.Context, cfg Config) error {
	_ = c.Close()

	c.emit(Event{Kind: EventStateChanged, State: entity.ConnectionConnecting}, ctx.Done())

	dialCtx := ctx
	if _, ok := ctx.Deadline(); !ok {
		var cancel context.CancelFunc
		dialCtx, cancel = context.WithTimeout(ctx, defaultConnectTimout)
		defer cancel()
	}

	headers := make(http.Header)
	if cfg.ApiKey != "" {
		headers.Set("Authorization", "Bearer "+cfg.ApiKey)
	}

	conn, resp, err := c.dialer.DialContext(dialCtx, c.url, headers)
	if err != nil {
		c.emit(Event{Kind: EventStateChanged, State: entity.ConnectionError}, ctx.Done())
		if resp != nil {
			return fmt.Errorf("live dial failed (status %d): %w", resp.StatusCode, err)
		}
		return fmt.Errorf("live dial failed: %w", err)
	}

	setup := clientSetup{
		Type:              "setup",
		Voice:             cfg.Voice,
		SystemInstruction: cfg.SystemInstruction,
		Transcription:     cfg.Transcription,
	}
	for _, fn := range cfg.Tools {
		setup.Tools = append(setup.Tools, clientTool{
			Name:        fn.Name,
			Description: fn.Description,
			Parameters:  fn.Parameters.JSONSchema(),
		})
	}
	if err := conn.WriteJSON(setup); err != nil {
		_ = conn.Close()
		c.emit(Event{Kind: EventStateChanged, State: entity.ConnectionError}, ctx.Done())
		return fmt.Errorf("send live setup: %w", err)
	}

	done := make(chan struct{})
	stop := make(chan struct{})
	c.mu.Lock()
	c.conn = conn
	c.done = done
	c.stop = stop
	c.mu.Unlock()

	go c.readLoop(conn, done, stop)
	return nil
}

// Close ends the current connection, if any, and waits for its reader.
func (c *WebSocketChannel) Close() error {
	c.mu.Lock()
	conn, done, stop := c.conn, c.done, c.stop
	c.conn, c.done, c.stop = nil, nil, nil
	c.mu.Unlock()

	if conn == nil {
		return nil
	}
	close(stop)

	c.writeMu.Lock()
	_ = conn.WriteControl(websocket.CloseMessage, websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""), time.Now().Add(2*time.Second))
	c.writeMu.Unlock()
	err := conn.Close()
	<-done
	return err
}

func (c *WebSocketChannel) SendText(text string) error {
	return c.send(clientText{Type: "text", Text: text})
}

func (c *WebSocketChannel) SendToolResult(id string, payload map[string]any) error {
	return c.send(clientToolResult{Type: "tool_result", Id: id, Payload: payload})
}

func (c *WebSocketChannel) send(v any) error {
	c.mu.Lock()
	conn := c.conn
	c.mu.Unlock()
	if conn == nil {
		return ErrNotConnected
	}

	c.writeMu.Lock()
	defer c.writeMu.Unlock()
	return conn.WriteJSON(v)
}

func (c *WebSocketChannel) readLoop(conn *websocket.Conn, done, stop chan struct{}) {
	defer close(done)

	final := entity.ConnectionDisconnected
	defer func() {
		c.emit(Event{Kind: EventStateChanged, State: final}, stop)
	}()

	for {
		messageType, data, err := conn.ReadMessage()
		if err != nil {
			if !websocket.IsCloseError(err, websocket.CloseNormalClosure, websocket.CloseGoingAway) && !errors.Is(err, net.ErrClosed) {
				c.logger.Warn(module, "Live connection dropped", map[string]interface{}{"error": err.Error()})
				final = entity.ConnectionError
			}
			return
		}
		if messageType != websocket.TextMessage {
			continue
		}

		var msg serverMessage
		if err := json.Unmarshal(data, &msg); err != nil {
			c.logger.Warn(module, "Unreadable live frame", map[string]interface{}{"error": err.Error()})
			continue
		}
		if ev, ok := decode(msg); ok {
			c.emit(ev, stop)
		}
	}
}

func decode(msg serverMessage) (Event, bool) {
	switch msg.Type {
	case "state":
		return Event{Kind: EventStateChanged, State: entity.ConnectionState(msg.State)}, true
	case "transcript":
		return Event{Kind: EventTranscript, UserText: msg.User, AssistantText: msg.Assistant}, true
	case "turn_complete":
		speaker := entity.Speaker(msg.Speaker)
		if speaker == "" {
			speaker = entity.SpeakerAssistant
		}
		return Event{Kind: EventTurnComplete, Speaker: speaker, Text: msg.Text}, true
	case "function_call":
		return Event{Kind: EventFunctionCall, Call: &llm.FunctionCall{Id: msg.Id, Name: msg.Name, Args: msg.Args}}, true
	case "error":
		return Event{Kind: EventError, Message: msg.Message}, true
	}
	return Event{}, false
}

// emit queues ev for the consumer. Transcript fragments are dropped when the
// buffer is full; every other event waits for room until cancel is closed.
func (c *WebSocketChannel) emit(ev Event, cancel <-chan struct{}) {
	select {
	case c.events <- ev:
		return
	default:
	}
	if ev.Kind == EventTranscript {
		c.logger.Warn(module, "Live transcript fragment dropped", map[string]interface{}{"kind": string(ev.Kind)})
		return
	}
	select {
	case c.events <- ev:
	case <-cancel:
		c.logger.Warn(module, "Live event dropped on close", map[string]interface{}{"kind": string(ev.Kind)})
	}
}
