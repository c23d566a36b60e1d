package handlers

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http/httptest"
	"sync"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/require"

	"github.com/ramonehamilton/deckbuilder/internal/cards"
	"github.com/ramonehamilton/deckbuilder/internal/catalog"
	"github.com/ramonehamilton/deckbuilder/internal/deckstore"
	"github.com/ramonehamilton/deckbuilder/internal/events"
	"github.com/ramonehamilton/deckbuilder/internal/imagegen"
	"github.com/ramonehamilton/deckbuilder/internal/metrics"
	"github.com/ramonehamilton/deckbuilder/internal/session"
)

func intPtr(v int) *int { return &v }

var testRecords = []cards.Record{
	{ID: "OP01-001", Name: "ロロノア・ゾロ", Color: "赤", Type: "LEADER", BP: intPtr(5000), Rarity: "L"},
	{ID: "OP01-004", Name: "ウソップ", Color: "赤", Type: "CHARACTER", Cost: 2, BP: intPtr(3000), Counter: intPtr(1000), Rarity: "C"},
	{ID: "OP01-013", Name: "サンジ", Color: "青", Type: "CHARACTER", Cost: 1, BP: intPtr(2000), Counter: intPtr(1000), Rarity: "C"},
	{ID: "OP01-016", Name: "ナミ", Color: "赤／青", Type: "CHARACTER", Cost: 2, BP: intPtr(2000), Counter: intPtr(1000), Rarity: "R"},
	{ID: "OP02-001", Name: "エドワード・ニューゲート", Color: "青", Type: "LEADER", BP: intPtr(6000), Rarity: "L"},
}

type stubSource struct {
	mu      sync.Mutex
	records []cards.Record
	err     error
}

func (s *stubSource) Fetch(context.Context) ([]cards.Record, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.err != nil {
		return nil, s.err
	}
	return s.records, nil
}

func (s *stubSource) String() string { return "stub" }

func (s *stubSource) fail(err error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.err = err
}

type memoryKV struct {
	mu     sync.Mutex
	values map[string]string
}

func (m *memoryKV) Get(_ context.Context, key string) (string, bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	v, ok := m.values[key]
	return v, ok, nil
}

func (m *memoryKV) Set(_ context.Context, key, value string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.values[key] = value
	return nil
}

func (m *memoryKV) Delete(_ context.Context, key string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.values, key)
	return nil
}

type stubRenderer struct {
	calls   int
	lastReq imagegen.Request
	image   *imagegen.Image
	err     error
}

func (r *stubRenderer) Render(_ context.Context, req imagegen.Request) (*imagegen.Image, error) {
	r.calls++
	r.lastReq = req
	if r.err != nil {
		return nil, r.err
	}
	return r.image, nil
}

type testEnv struct {
	source   *stubSource
	catalog  *catalog.Repository
	sessions *session.Manager
	store    *deckstore.Store
	renderer *stubRenderer
	metrics  *metrics.ServiceMetrics
	recorder *events.RecordingObserver
	router   chi.Router
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()

	source := &stubSource{records: testRecords}
	repo, err := catalog.NewRepository(catalog.Config{
		Source: source,
		Logger: slog.New(slog.NewTextHandler(io.Discard, nil)),
	})
	require.NoError(t, err)

	dispatcher := events.NewEventDispatcher()
	recorder := events.NewRecordingObserver("test")
	dispatcher.Register(recorder)
	m := metrics.New()
	dispatcher.Register(m)

	env := &testEnv{
		source:   source,
		catalog:  repo,
		sessions: session.NewManager(session.Config{Dispatcher: dispatcher}),
		store:    deckstore.New(&memoryKV{values: make(map[string]string)}),
		renderer: &stubRenderer{image: &imagegen.Image{Data: []byte("\x89PNG"), ContentType: "image/png", Filename: imagegen.DefaultFilename}},
		metrics:  m,
		recorder: recorder,
	}

	cardHandler := NewCardHandler(repo, env.sessions.Filters(), m)
	sessionHandler := NewSessionHandler(SessionHandlerConfig{
		Sessions:   env.sessions,
		Catalog:    repo,
		Store:      env.store,
		Renderer:   env.renderer,
		Dispatcher: dispatcher,
		Metrics:    m,
	})
	deckHandler := NewDeckHandler(env.store, repo, dispatcher)
	systemHandler := NewSystemHandler(repo, env.sessions, m, dispatcher)

	r := chi.NewRouter()
	r.Get("/cards", cardHandler.ListCards)
	r.Get("/cards/options", cardHandler.GetOptions)
	r.Get("/cards/{cardID}", cardHandler.GetCard)
	r.Post("/cards/search", cardHandler.SearchCards)

	r.Post("/sessions", sessionHandler.CreateSession)
	r.Get("/sessions/{sessionID}", sessionHandler.GetSession)
	r.Delete("/sessions/{sessionID}", sessionHandler.DeleteSession)
	r.Get("/sessions/{sessionID}/filters", sessionHandler.GetFilters)
	r.Patch("/sessions/{sessionID}/filters", sessionHandler.UpdateFilters)
	r.Get("/sessions/{sessionID}/cards", sessionHandler.GetCards)
	r.Get("/sessions/{sessionID}/deck", sessionHandler.GetDeck)
	r.Post("/sessions/{sessionID}/deck/delta", sessionHandler.ApplyDelta)
	r.Get("/sessions/{sessionID}/deck/curve", sessionHandler.GetCurve)
	r.Post("/sessions/{sessionID}/import", sessionHandler.ImportDeck)
	r.Get("/sessions/{sessionID}/export", sessionHandler.ExportDeck)
	r.Post("/sessions/{sessionID}/image", sessionHandler.GenerateImage)
	r.Post("/sessions/{sessionID}/save", sessionHandler.SaveDeck)
	r.Post("/sessions/{sessionID}/load", sessionHandler.LoadDeck)

	r.Get("/decks", deckHandler.ListDecks)
	r.Get("/decks/{name}", deckHandler.GetDeck)
	r.Delete("/decks/{name}", deckHandler.DeleteDeck)

	r.Get("/system/status", systemHandler.GetStatus)
	r.Get("/system/version", systemHandler.GetVersion)
	r.Get("/system/metrics", systemHandler.GetMetrics)
	r.Post("/system/catalog/reload", systemHandler.ReloadCatalog)

	env.router = r
	return env
}

func (e *testEnv) do(t *testing.T, method, path string, body any) *httptest.ResponseRecorder {
	t.Helper()

	var reader io.Reader
	switch b := body.(type) {
	case nil:
	case string:
		reader = bytes.NewBufferString(b)
	default:
		data, err := json.Marshal(b)
		require.NoError(t, err)
		reader = bytes.NewReader(data)
	}

	req := httptest.NewRequest(method, path, reader)
	rec := httptest.NewRecorder()
	e.router.ServeHTTP(rec, req)
	return rec
}

func (e *testEnv) newSession(t *testing.T) string {
	t.Helper()
	return e.sessions.Create(context.Background()).ID()
}

// decodeData unwraps the {"data": ...} envelope into v.
func decodeData(t *testing.T, rec *httptest.ResponseRecorder, v any) {
	t.Helper()
	var envelope struct {
		Data json.RawMessage `json:"data"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &envelope), rec.Body.String())
	require.NoError(t, json.Unmarshal(envelope.Data, v))
}

type errorBody struct {
	Error   string `json:"error"`
	Message string `json:"message"`
	Code    int    `json:"code"`
}

func decodeError(t *testing.T, rec *httptest.ResponseRecorder) errorBody {
	t.Helper()
	var body errorBody
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body), rec.Body.String())
	return body
}

func cardIDs(list []cards.Card) []string {
	ids := make([]string, 0, len(list))
	for _, c := range list {
		ids = append(ids, c.ID)
	}
	return ids
}

var errBackend = errors.New("backend unavailable")

func requireStatus(t *testing.T, rec *httptest.ResponseRecorder, status int) {
	t.Helper()
	require.Equal(t, status, rec.Code, rec.Body.String())
}
