package devtools

import (
	"bytes"
	"encoding/json"
	"log/slog"
	"net/http"
	"slices"
	"sync"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/gorilla/websocket"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/carbyne-dev/carbyne/pkg/atom"
	"github.com/carbyne-dev/carbyne/pkg/dom/htmldom"
)

const (
	sendBuffer   = 64
	writeTimeout = 10 * time.Second
)

// MessageType names a websocket message.
type MessageType string

const (
	// MessageSnapshot carries the document body when a client connects.
	MessageSnapshot MessageType = "snapshot"
	// MessageMutation carries a single document mutation.
	MessageMutation MessageType = "mutation"
)

// Message is sent to websocket clients.
type Message struct {
	Type     MessageType       `json:"type"`
	HTML     string            `json:"html,omitempty"`
	Mutation *htmldom.Mutation `json:"mutation,omitempty"`
}

// Option configures a Server.
type Option func(*Server)

// WithLogger sets the server logger.
func WithLogger(l *slog.Logger) Option {
	return func(s *Server) {
		if l != nil {
			s.logger = l
		}
	}
}

// WithGatherer sets the gatherer served on /metrics.
// Default: prometheus.DefaultGatherer
func WithGatherer(g prometheus.Gatherer) Option {
	return func(s *Server) {
		if g != nil {
			s.gatherer = g
		}
	}
}

// WithAllowedOrigins restricts websocket origins. An empty list or "*"
// allows every origin.
func WithAllowedOrigins(origins []string) Option {
	return func(s *Server) {
		s.origins = origins
	}
}

// Server inspects a tree mounted in an htmldom document.
type Server struct {
	rt       *atom.Runtime
	doc      *htmldom.Document
	root     *atom.Node
	logger   *slog.Logger
	gatherer prometheus.Gatherer
	origins  []string
	upgrader websocket.Upgrader

	mu          sync.RWMutex
	clients     map[*client]struct{}
	unsubscribe func()
}

type client struct {
	conn *websocket.Conn
	send chan []byte
}

// NewServer creates a server for root, mounted by rt into doc.
func NewServer(rt *atom.Runtime, doc *htmldom.Document, root *atom.Node, opts ...Option) *Server {
	s := &Server{
		rt:       rt,
		doc:      doc,
		root:     root,
		logger:   rt.Logger().With("component", "devtools"),
		gatherer: prometheus.DefaultGatherer,
		clients:  make(map[*client]struct{}),
	}
	for _, opt := range opts {
		opt(s)
	}
	s.upgrader = websocket.Upgrader{
		ReadBufferSize:  1024,
		WriteBufferSize: 1024,
		CheckOrigin:     s.checkOrigin,
	}
	s.unsubscribe = doc.Subscribe(s.publish)
	return s
}

// Handler returns the router serving the inspector.
func (s *Server) Handler() http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.Recoverer)
	r.Use(s.logRequests)

	r.Get("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		w.Write([]byte("ok"))
	})
	r.Get("/", s.handleDocument)
	r.Get("/tree", s.handleTree)
	r.Handle("/metrics", promhttp.HandlerFor(s.gatherer, promhttp.HandlerOpts{}))
	r.Get("/ws", s.handleStream)
	return r
}

func (s *Server) logRequests(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		next.ServeHTTP(ww, r)
		s.logger.Debug("request",
			"method", r.Method,
			"path", r.URL.Path,
			"status", ww.Status(),
			"duration", time.Since(start))
	})
}

func (s *Server) handleDocument(w http.ResponseWriter, r *http.Request) {
	var (
		buf bytes.Buffer
		err error
	)
	if derr := s.rt.Loop().Do(r.Context(), func() {
		err = s.doc.Render(&buf, s.doc.Root())
	}); derr != nil {
		http.Error(w, derr.Error(), http.StatusServiceUnavailable)
		return
	}
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.Write(buf.Bytes())
}

func (s *Server) handleTree(w http.ResponseWriter, r *http.Request) {
	if s.root == nil {
		http.Error(w, "no root node", http.StatusNotFound)
		return
	}
	var tree TreeNode
	if err := s.rt.Loop().Do(r.Context(), func() {
		tree = Tree(s.root)
	}); err != nil {
		http.Error(w, err.Error(), http.StatusServiceUnavailable)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(tree); err != nil {
		s.logger.Warn("encode tree", "error", err)
	}
}

func (s *Server) checkOrigin(r *http.Request) bool {
	origin := r.Header.Get("Origin")
	if origin == "" || len(s.origins) == 0 {
		return true
	}
	return slices.Contains(s.origins, "*") || slices.Contains(s.origins, origin)
}

// handleStream sends a snapshot of the body followed by every mutation.
// The client is registered on the loop, so no mutation falls between the
// snapshot and the stream.
func (s *Server) handleStream(w http.ResponseWriter, r *http.Request) {
	conn, err := s.upgrader.Upgrade(w, r, nil)
	if err != nil {
		s.logger.Debug("websocket upgrade failed", "error", err)
		return
	}
	c := &client{conn: conn, send: make(chan []byte, sendBuffer)}

	if err := s.rt.Loop().Do(r.Context(), func() {
		data, merr := json.Marshal(Message{Type: MessageSnapshot, HTML: s.doc.InnerHTML(s.doc.Body())})
		if merr != nil {
			return
		}
		c.send <- data
		s.mu.Lock()
		s.clients[c] = struct{}{}
		s.mu.Unlock()
	}); err != nil {
		conn.Close()
		return
	}
	s.logger.Info("devtools client connected", "remote", r.RemoteAddr)

	go s.writePump(c)

	// Keep the connection until the client goes away.
	for {
		if _, _, err := conn.ReadMessage(); err != nil {
			break
		}
	}
	s.remove(c)
	s.logger.Info("devtools client disconnected", "remote", r.RemoteAddr)
}

func (s *Server) writePump(c *client) {
	defer c.conn.Close()
	for data := range c.send {
		c.conn.SetWriteDeadline(time.Now().Add(writeTimeout))
		if err := c.conn.WriteMessage(websocket.TextMessage, data); err != nil {
			s.remove(c)
			return
		}
	}
	c.conn.WriteMessage(websocket.CloseMessage, websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""))
}

// publish forwards a mutation to every client. A client that cannot keep
// up is dropped. Sends happen under the read lock so that remove, which
// closes the channel under the write lock, never races them.
func (s *Server) publish(m htmldom.Mutation) {
	data, err := json.Marshal(Message{Type: MessageMutation, Mutation: &m})
	if err != nil {
		return
	}

	var slow []*client
	s.mu.RLock()
	for c := range s.clients {
		select {
		case c.send <- data:
		default:
			slow = append(slow, c)
		}
	}
	s.mu.RUnlock()

	for _, c := range slow {
		s.logger.Warn("devtools client too slow, dropping")
		s.remove(c)
	}
}

func (s *Server) remove(c *client) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.clients[c]; ok {
		delete(s.clients, c)
		close(c.send)
	}
}

// ClientCount returns the number of connected websocket clients.
func (s *Server) ClientCount() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.clients)
}

// Close stops streaming and disconnects every client.
func (s *Server) Close() {
	s.unsubscribe()
	s.mu.Lock()
	defer s.mu.Unlock()
	for c := range s.clients {
		delete(s.clients, c)
		close(c.send)
	}
}
