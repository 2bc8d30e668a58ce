package assistant

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"
	"time"

	"ai-assistant-be/internal/entity"
	"ai-assistant-be/internal/pkg/logger"
	"ai-assistant-be/pkg/live"
	"ai-assistant-be/pkg/llm"
	"ai-assistant-be/pkg/search"
	"ai-assistant-be/pkg/state"

	"github.com/stretchr/testify/require"
)

type scriptedClient struct {
	mu        sync.Mutex
	responses []*llm.Response
	errs      []error
	requests  []*llm.Request
	// gate, when set, blocks every call until it is closed
	gate    chan struct{}
	entered chan struct{}
}

func (c *scriptedClient) GenerateContent(ctx context.Context, req *llm.Request) (*llm.Response, error) {
	if c.entered != nil {
		c.entered <- struct{}{}
	}
	if c.gate != nil {
		<-c.gate
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	i := len(c.requests)
	c.requests = append(c.requests, req)
	if i < len(c.errs) && c.errs[i] != nil {
		return nil, c.errs[i]
	}
	if i < len(c.responses) {
		return c.responses[i], nil
	}
	return nil, errors.New("unexpected generation call")
}

func (c *scriptedClient) calls() []*llm.Request {
	c.mu.Lock()
	defer c.mu.Unlock()
	return append([]*llm.Request(nil), c.requests...)
}

type staticClients struct {
	client llm.GenerativeClient
	keys   []string
}

func (s *staticClients) Get(ctx context.Context, apiKey string) (llm.GenerativeClient, error) {
	s.keys = append(s.keys, apiKey)
	return s.client, nil
}

type fakeChannel struct {
	mu          sync.Mutex
	events      chan live.Event
	opened      []live.Config
	closes      int
	texts       []string
	toolResults map[string]map[string]any
	// onOpen, when set, runs at the start of Open as if the dial were in flight
	onOpen func()
	// onClose, when set, runs at the start of Close as if the close handshake
	// were still pending
	onClose func()
}

func newFakeChannel() *fakeChannel {
	return &fakeChannel{events: make(chan live.Event, 16), toolResults: map[string]map[string]any{}}
}

func (c *fakeChannel) Open(ctx context.Context, cfg live.Config) error {
	if c.onOpen != nil {
		c.onOpen()
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	c.opened = append(c.opened, cfg)
	return nil
}

func (c *fakeChannel) Close() error {
	if c.onClose != nil {
		c.onClose()
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	c.closes++
	return nil
}

func (c *fakeChannel) SendText(text string) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.texts = append(c.texts, text)
	return nil
}

func (c *fakeChannel) SendToolResult(id string, payload map[string]any) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.toolResults[id] = payload
	return nil
}

func (c *fakeChannel) Events() <-chan live.Event {
	return c.events
}

func (c *fakeChannel) closeCount() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.closes
}

func (c *fakeChannel) sentTexts() []string {
	c.mu.Lock()
	defer c.mu.Unlock()
	return append([]string(nil), c.texts...)
}

type push struct {
	msgType string
	data    interface{}
}

type recordingNotifier struct {
	mu     sync.Mutex
	pushes []push
}

func (n *recordingNotifier) Send(userId string, msgType string, data interface{}) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.pushes = append(n.pushes, push{msgType: msgType, data: data})
}

func (n *recordingNotifier) states() []entity.ConnectionState {
	n.mu.Lock()
	defer n.mu.Unlock()
	var out []entity.ConnectionState
	for _, p := range n.pushes {
		if p.msgType == PushConnectionState {
			out = append(out, p.data.(entity.ConnectionState))
		}
	}
	return out
}

type fixture struct {
	o        *Orchestrator
	store    state.Store
	client   *scriptedClient
	clients  *staticClients
	channel  *fakeChannel
	notifier *recordingNotifier
}

var testLoc = time.FixedZone("BRT", -3*60*60)

func testClock() time.Time {
	return time.Date(2024, 6, 1, 8, 0, 0, 0, testLoc)
}

func withCredential(s *entity.AppState) {
	s.Settings.Credentials = []entity.Credential{{Id: "cred-1", Label: "main", ApiKey: "key-1"}}
	s.Settings.ActiveCredentialId = "cred-1"
}

func newFixture(t *testing.T, seed func(s *entity.AppState), searchProvider search.Provider) *fixture {
	t.Helper()
	store := state.ForUser(state.NewMemoryBackend(), "user-1")
	if seed != nil {
		_, err := store.Update(context.Background(), func(s *entity.AppState) error {
			seed(s)
			return nil
		})
		require.NoError(t, err)
	}

	f := &fixture{
		store:    store,
		client:   &scriptedClient{},
		channel:  newFakeChannel(),
		notifier: &recordingNotifier{},
	}
	f.clients = &staticClients{client: f.client}

	var svc *search.Service
	if searchProvider != nil {
		svc = search.NewService(searchProvider, logger.NewNopLogger())
	}

	n := 0
	f.o = New("user-1", Dependencies{
		Store:        store,
		Clients:      f.clients,
		Channel:      f.channel,
		Search:       svc,
		Notifier:     f.notifier,
		Logger:       logger.NewNopLogger(),
		Location:     testLoc,
		FastModel:    "fast-model",
		StrongModel:  "strong-model",
		DefaultVoice: "Zephyr",
	},
		WithClock(testClock),
		WithIdGenerator(func() string { n++; return fmt.Sprintf("id-%d", n) }),
	)
	return f
}

func (f *fixture) state(t *testing.T) *entity.AppState {
	t.Helper()
	s, err := f.store.Load(context.Background())
	require.NoError(t, err)
	return s
}
