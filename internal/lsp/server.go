// Package lsp hosts the engine behind a stdio language server: documents are
// validated on open and on save, findings are published as diagnostics and
// mirrored, together with the document score, in a custom/loadFiles
// notification for the client's report view.
package lsp

import (
	"bufio"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"path/filepath"
	"strconv"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"github.com/rs/zerolog"

	"ably/internal/engine"
	"ably/internal/pass"
)

var (
	// ErrExit signals a graceful shutdown after receiving "exit".
	ErrExit = errors.New("lsp exit")
	// ErrExitWithoutShutdown signals an "exit" without a preceding "shutdown".
	ErrExitWithoutShutdown = errors.New("lsp exit without shutdown")
)

// ServerOptions configures LSP server behavior.
type ServerOptions struct {
	Engine *engine.Engine
	// Debounce coalesces open/save bursts for one document.
	Debounce time.Duration
	// MaxProblems is the default for ably.maxNumberOfProblems.
	MaxProblems int
	Logger      *zerolog.Logger
	Version     string
}

type document struct {
	text    string
	version int
	seq     uint64
	cancel  context.CancelFunc
	timer   *time.Timer
}

// Server handles stdio JSON-RPC for the ably language server.
type Server struct {
	in        *bufio.Reader
	out       *bufio.Writer
	sendMu    sync.Mutex
	publishMu sync.Mutex
	mu        sync.Mutex

	engine   *engine.Engine
	log      zerolog.Logger
	version  string
	debounce time.Duration
	baseCtx  context.Context

	docs      map[string]*document
	published map[string]struct{}

	caps              clientCapabilities
	workspaceRoot     string
	shutdownRequested bool

	defaults    documentSettings
	global      documentSettings
	docSettings map[string]documentSettings

	nextID  int64
	pending map[string]chan *rpcMessage
}

// NewServer constructs a new LSP server.
func NewServer(in io.Reader, out io.Writer, opts ServerOptions) *Server {
	debounce := opts.Debounce
	if debounce <= 0 {
		debounce = 100 * time.Millisecond
	}
	maxProblems := opts.MaxProblems
	if maxProblems <= 0 {
		maxProblems = pass.DefaultMaxProblems
	}
	log := zerolog.Nop()
	if opts.Logger != nil {
		log = opts.Logger.With().Str("component", "lsp").Logger()
	}
	defaults := documentSettings{MaxNumberOfProblems: maxProblems}
	return &Server{
		in:          bufio.NewReader(in),
		out:         bufio.NewWriter(out),
		engine:      opts.Engine,
		log:         log,
		version:     opts.Version,
		debounce:    debounce,
		baseCtx:     context.Background(),
		docs:        make(map[string]*document),
		published:   make(map[string]struct{}),
		defaults:    defaults,
		global:      defaults,
		docSettings: make(map[string]documentSettings),
		pending:     make(map[string]chan *rpcMessage),
	}
}

// Run serves LSP requests until the input closes or the client exits.
func (s *Server) Run(ctx context.Context) error {
	s.mu.Lock()
	s.baseCtx = ctx
	s.mu.Unlock()
	defer s.cancelAll()
	for {
		payload, err := readMessage(s.in)
		if err != nil {
			if errors.Is(err, io.EOF) {
				return nil
			}
			return err
		}
		var msg rpcMessage
		if err := json.Unmarshal(payload, &msg); err != nil {
			s.log.Warn().Err(err).Msg("failed to parse message")
			continue
		}
		if msg.Method == "" {
			if len(msg.ID) > 0 {
				s.handleResponse(&msg)
			}
			continue
		}
		if err := s.handleMessage(&msg); err != nil {
			return err
		}
	}
}

func (s *Server) handleMessage(msg *rpcMessage) error {
	switch msg.Method {
	case "initialize":
		return s.handleInitialize(msg)
	case "initialized":
		s.handleInitialized()
		return nil
	case "shutdown":
		return s.handleShutdown(msg)
	case "exit":
		if s.isShutdown() {
			return ErrExit
		}
		return ErrExitWithoutShutdown
	case "workspace/didChangeConfiguration":
		return s.handleDidChangeConfiguration(msg)
	case "textDocument/didOpen":
		return s.handleDidOpen(msg)
	case "textDocument/didChange":
		return s.handleDidChange(msg)
	case "textDocument/didSave":
		return s.handleDidSave(msg)
	case "textDocument/didClose":
		return s.handleDidClose(msg)
	default:
		if len(msg.ID) > 0 {
			return s.sendError(msg.ID, codeMethodNotFound, "method not found")
		}
		return nil
	}
}

func (s *Server) handleInitialize(msg *rpcMessage) error {
	var params initializeParams
	if len(msg.Params) > 0 {
		if err := json.Unmarshal(msg.Params, &params); err != nil {
			return s.sendError(msg.ID, codeInvalidParams, "invalid params")
		}
	}
	root := ""
	if params.RootURI != "" {
		root = uriToPath(params.RootURI)
	}
	if root == "" && params.RootPath != "" {
		root = params.RootPath
	}
	if root == "" && len(params.WorkspaceFolders) > 0 {
		root = uriToPath(params.WorkspaceFolders[0].URI)
	}
	if root != "" {
		if abs, err := filepath.Abs(root); err == nil {
			root = abs
		}
	}
	s.mu.Lock()
	s.workspaceRoot = root
	s.caps = params.Capabilities
	s.mu.Unlock()
	s.log.Debug().
		Str("root", root).
		Bool("configuration", params.Capabilities.configuration()).
		Bool("relatedInformation", params.Capabilities.relatedInformation()).
		Msg("initialize")

	result := initializeResult{
		Capabilities: serverCapabilities{
			TextDocumentSync: textDocumentSyncOptions{
				OpenClose: true,
				Change:    textDocumentSyncIncremental,
				Save: saveOptions{
					IncludeText: true,
				},
			},
		},
		ServerInfo: &serverInfo{Name: "ably", Version: s.version},
	}
	if params.Capabilities.workspaceFolders() {
		ws := &workspaceServerCapabilities{}
		ws.WorkspaceFolders.Supported = true
		result.Capabilities.Workspace = ws
	}
	return s.sendResponse(msg.ID, result)
}

func (s *Server) handleInitialized() {
	s.mu.Lock()
	register := s.caps.configuration()
	ctx := s.baseCtx
	s.mu.Unlock()
	if !register {
		return
	}
	go func() {
		params := registrationParams{Registrations: []registration{{
			ID:     "ably-configuration",
			Method: "workspace/didChangeConfiguration",
		}}}
		if _, err := s.request(ctx, "client/registerCapability", params); err != nil {
			s.log.Debug().Err(err).Msg("configuration registration failed")
		}
	}()
}

func (s *Server) handleShutdown(msg *rpcMessage) error {
	s.mu.Lock()
	s.shutdownRequested = true
	s.mu.Unlock()
	s.cancelAll()
	s.clearPublishedDiagnostics()
	return s.sendResponse(msg.ID, nil)
}

func (s *Server) isShutdown() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.shutdownRequested
}

func (s *Server) handleDidOpen(msg *rpcMessage) error {
	var params didOpenTextDocumentParams
	if err := json.Unmarshal(msg.Params, &params); err != nil {
		s.log.Warn().Err(err).Msg("didOpen: invalid params")
		return nil
	}
	uri := canonicalURI(params.TextDocument.URI)
	if uri == "" {
		return nil
	}
	s.mu.Lock()
	s.docs[uri] = &document{
		text:    params.TextDocument.Text,
		version: params.TextDocument.Version,
	}
	s.mu.Unlock()
	s.scheduleValidation(uri)
	return nil
}

// handleDidChange only tracks the buffer; validation waits for the save.
func (s *Server) handleDidChange(msg *rpcMessage) error {
	var params didChangeTextDocumentParams
	if err := json.Unmarshal(msg.Params, &params); err != nil {
		s.log.Warn().Err(err).Msg("didChange: invalid params")
		return nil
	}
	uri := canonicalURI(params.TextDocument.URI)
	s.mu.Lock()
	defer s.mu.Unlock()
	doc, ok := s.docs[uri]
	if !ok {
		return nil
	}
	doc.text = applyChanges(doc.text, params.ContentChanges)
	doc.version = params.TextDocument.Version
	return nil
}

func (s *Server) handleDidSave(msg *rpcMessage) error {
	var params didSaveTextDocumentParams
	if err := json.Unmarshal(msg.Params, &params); err != nil {
		s.log.Warn().Err(err).Msg("didSave: invalid params")
		return nil
	}
	uri := canonicalURI(params.TextDocument.URI)
	s.mu.Lock()
	doc, ok := s.docs[uri]
	if ok && params.Text != nil {
		doc.text = *params.Text
	}
	s.mu.Unlock()
	if ok {
		s.scheduleValidation(uri)
	}
	return nil
}

func (s *Server) handleDidClose(msg *rpcMessage) error {
	var params didCloseTextDocumentParams
	if err := json.Unmarshal(msg.Params, &params); err != nil {
		s.log.Warn().Err(err).Msg("didClose: invalid params")
		return nil
	}
	uri := canonicalURI(params.TextDocument.URI)
	s.mu.Lock()
	if doc, ok := s.docs[uri]; ok {
		doc.stop()
		delete(s.docs, uri)
	}
	delete(s.docSettings, uri)
	_, hadDiagnostics := s.published[uri]
	delete(s.published, uri)
	s.mu.Unlock()
	if hadDiagnostics {
		if err := s.sendPublish(uri, nil, nil); err != nil {
			s.log.Warn().Err(err).Msg("failed to clear diagnostics")
		}
	}
	return nil
}

// stop cancels the pending and running pass; callers hold s.mu.
func (d *document) stop() {
	d.seq++
	if d.timer != nil {
		d.timer.Stop()
		d.timer = nil
	}
	if d.cancel != nil {
		d.cancel()
		d.cancel = nil
	}
}

func (s *Server) cancelAll() {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, doc := range s.docs {
		doc.stop()
	}
}

func (s *Server) clearPublishedDiagnostics() {
	s.mu.Lock()
	uris := make([]string, 0, len(s.published))
	for uri := range s.published {
		uris = append(uris, uri)
	}
	s.published = make(map[string]struct{})
	s.mu.Unlock()
	for _, uri := range uris {
		if err := s.sendPublish(uri, nil, nil); err != nil {
			s.log.Warn().Err(err).Str("uri", uri).Msg("failed to clear diagnostics")
		}
	}
}

// request sends a server-to-client request and waits for its response.
func (s *Server) request(ctx context.Context, method string, params any) (json.RawMessage, error) {
	id := atomic.AddInt64(&s.nextID, 1)
	key := strconv.FormatInt(id, 10)
	ch := make(chan *rpcMessage, 1)
	s.mu.Lock()
	s.pending[key] = ch
	s.mu.Unlock()
	defer func() {
		s.mu.Lock()
		delete(s.pending, key)
		s.mu.Unlock()
	}()

	msg := map[string]any{
		"jsonrpc": "2.0",
		"id":      id,
		"method":  method,
		"params":  params,
	}
	if err := s.send(msg); err != nil {
		return nil, err
	}
	select {
	case <-ctx.Done():
		return nil, ctx.Err()
	case resp := <-ch:
		if resp.Error != nil {
			return nil, fmt.Errorf("%s: %s (%d)", method, resp.Error.Message, resp.Error.Code)
		}
		return resp.Result, nil
	}
}

func (s *Server) handleResponse(msg *rpcMessage) {
	key := strings.Trim(strings.TrimSpace(string(msg.ID)), `"`)
	s.mu.Lock()
	ch, ok := s.pending[key]
	s.mu.Unlock()
	if !ok {
		s.log.Debug().Str("id", key).Msg("response without pending request")
		return
	}
	select {
	case ch <- msg:
	default:
	}
}

func (s *Server) sendResponse(id json.RawMessage, result any) error {
	msg := map[string]any{
		"jsonrpc": "2.0",
		"id":      id,
		"result":  result,
	}
	return s.send(msg)
}

func (s *Server) sendError(id json.RawMessage, code int, message string) error {
	msg := map[string]any{
		"jsonrpc": "2.0",
		"id":      id,
		"error": rpcError{
			Code:    code,
			Message: message,
		},
	}
	return s.send(msg)
}

func (s *Server) sendNotification(method string, params any) error {
	msg := map[string]any{
		"jsonrpc": "2.0",
		"method":  method,
		"params":  params,
	}
	return s.send(msg)
}

func (s *Server) sendPublish(uri string, version *int, list []lspDiagnostic) error {
	if list == nil {
		list = []lspDiagnostic{}
	}
	return s.sendNotification("textDocument/publishDiagnostics", publishDiagnosticsParams{
		URI:         uri,
		Version:     version,
		Diagnostics: list,
	})
}

func (s *Server) send(msg any) error {
	payload, err := json.Marshal(msg)
	if err != nil {
		return err
	}
	s.sendMu.Lock()
	defer s.sendMu.Unlock()
	if err := writeMessage(s.out, payload); err != nil {
		return err
	}
	return s.out.Flush()
}
