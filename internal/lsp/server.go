// Package lsp serves PLC diagnostics, hover, go-to-definition and
// completion over the Language Server Protocol.
package lsp

import (
	"bufio"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/url"
	"strconv"
	"strings"
	"sync"
	"unicode/utf16"

	"github.com/plc-lang/plc/internal/compile"
	"github.com/plc-lang/plc/internal/diag"
)

// Server is a language server speaking JSON-RPC over a byte stream.
type Server struct {
	// Documents tracks open files by URI
	Documents map[string]*Document
	mu        sync.RWMutex

	in     *bufio.Reader
	out    io.Writer
	outMu  sync.Mutex
	opts   compile.Options
	logger *slog.Logger

	rootPath string
	shutdown bool
}

// Document is an open file and the outcome of its last analysis.
type Document struct {
	URI     string
	Content string
	Version int
	// Result is nil when the content does not compile.
	Result *compile.Result
	// Previous is the last result that compiled, kept while Result is nil.
	Previous *compile.Result
	Errors   []diag.Diagnostic
}

// NewServer returns a server reading requests from in and writing
// responses and notifications to out. Documents are analysed with opts.
func NewServer(in io.Reader, out io.Writer, opts compile.Options) *Server {
	logger := opts.Logger
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	return &Server{
		Documents: make(map[string]*Document),
		in:        bufio.NewReader(in),
		out:       out,
		opts:      opts,
		logger:    logger,
	}
}

// Run serves requests until the input ends, the client sends exit, or ctx
// is done.
func (s *Server) Run(ctx context.Context) error {
	for {
		if err := ctx.Err(); err != nil {
			return err
		}

		body, err := s.readMessage()
		if err != nil {
			if errors.Is(err, io.EOF) {
				return nil
			}
			return err
		}

		var msg jsonrpcMessage
		if err := json.Unmarshal(body, &msg); err != nil {
			s.logger.Warn("failed to parse JSON-RPC message", "err", err)
			continue
		}
		if msg.Method == "exit" {
			return nil
		}

		if response := s.handleMessage(ctx, &msg); response != nil {
			if err := s.send(response); err != nil {
				return err
			}
		}
	}
}

// readMessage reads one Content-Length framed message body.
func (s *Server) readMessage() ([]byte, error) {
	contentLength := -1
	for {
		line, err := s.in.ReadString('\n')
		if err != nil {
			return nil, err
		}
		line = strings.TrimRight(line, "\r\n")
		if line == "" {
			break
		}
		name, value, ok := strings.Cut(line, ":")
		if !ok || !strings.EqualFold(strings.TrimSpace(name), "Content-Length") {
			continue
		}
		n, err := strconv.Atoi(strings.TrimSpace(value))
		if err != nil {
			return nil, fmt.Errorf("invalid Content-Length %q: %w", value, err)
		}
		contentLength = n
	}
	if contentLength < 0 {
		return nil, fmt.Errorf("missing Content-Length header")
	}

	body := make([]byte, contentLength)
	if _, err := io.ReadFull(s.in, body); err != nil {
		return nil, fmt.Errorf("failed to read message body: %w", err)
	}
	return body, nil
}

// jsonrpcMessage represents a JSON-RPC 2.0 message.
type jsonrpcMessage struct {
	JSONRPC string          `json:"jsonrpc"`
	ID      any             `json:"id,omitempty"`
	Method  string          `json:"method,omitempty"`
	Params  json.RawMessage `json:"params,omitempty"`
	Result  any             `json:"result,omitempty"`
	Error   *jsonrpcError   `json:"error,omitempty"`
}

// MarshalJSON always writes a result member on successful responses, even
// a null one, and never on requests, notifications or errors.
func (m jsonrpcMessage) MarshalJSON() ([]byte, error) {
	type wire struct {
		JSONRPC string          `json:"jsonrpc"`
		ID      any             `json:"id,omitempty"`
		Method  string          `json:"method,omitempty"`
		Params  json.RawMessage `json:"params,omitempty"`
		Result  json.RawMessage `json:"result,omitempty"`
		Error   *jsonrpcError   `json:"error,omitempty"`
	}
	w := wire{JSONRPC: m.JSONRPC, ID: m.ID, Method: m.Method, Params: m.Params, Error: m.Error}
	if m.Method == "" && m.Error == nil {
		raw, err := json.Marshal(m.Result)
		if err != nil {
			return nil, err
		}
		w.Result = raw
	}
	return json.Marshal(w)
}

type jsonrpcError struct {
	Code    int    `json:"code"`
	Message string `json:"message"`
}

const (
	codeInvalidRequest = -32600
	codeMethodNotFound = -32601
	codeInvalidParams  = -32602
)

func (s *Server) handleMessage(ctx context.Context, msg *jsonrpcMessage) *jsonrpcMessage {
	if s.shutdown && msg.ID != nil && msg.Method != "shutdown" {
		return errorResponse(msg, codeInvalidRequest, "server is shutting down")
	}

	switch msg.Method {
	case "initialize":
		return s.handleInitialize(msg)
	case "initialized":
		return nil
	case "textDocument/didOpen":
		s.handleDidOpen(ctx, msg)
		return nil
	case "textDocument/didChange":
		s.handleDidChange(ctx, msg)
		return nil
	case "textDocument/didClose":
		s.handleDidClose(msg)
		return nil
	case "textDocument/completion":
		return s.handleCompletion(msg)
	case "textDocument/hover":
		return s.handleHover(msg)
	case "textDocument/definition":
		return s.handleDefinition(msg)
	case "shutdown":
		s.shutdown = true
		return result(msg, nil)
	default:
		if msg.ID != nil {
			return errorResponse(msg, codeMethodNotFound, fmt.Sprintf("Method not found: %s", msg.Method))
		}
		return nil
	}
}

func result(msg *jsonrpcMessage, v any) *jsonrpcMessage {
	return &jsonrpcMessage{JSONRPC: "2.0", ID: msg.ID, Result: v}
}

func errorResponse(msg *jsonrpcMessage, code int, message string) *jsonrpcMessage {
	return &jsonrpcMessage{
		JSONRPC: "2.0",
		ID:      msg.ID,
		Error:   &jsonrpcError{Code: code, Message: message},
	}
}

// decodeParams unmarshals the request parameters, returning an error
// response when they are malformed.
func decodeParams(msg *jsonrpcMessage, v any) *jsonrpcMessage {
	if err := json.Unmarshal(msg.Params, v); err != nil {
		return errorResponse(msg, codeInvalidParams, fmt.Sprintf("Invalid params: %v", err))
	}
	return nil
}

// send writes one framed message.
func (s *Server) send(msg *jsonrpcMessage) error {
	data, err := json.Marshal(msg)
	if err != nil {
		return fmt.Errorf("failed to marshal response: %w", err)
	}

	s.outMu.Lock()
	defer s.outMu.Unlock()

	if _, err := fmt.Fprintf(s.out, "Content-Length: %d\r\n\r\n", len(data)); err != nil {
		return fmt.Errorf("failed to write header: %w", err)
	}
	if _, err := s.out.Write(data); err != nil {
		return fmt.Errorf("failed to write body: %w", err)
	}
	return nil
}

func (s *Server) notify(method string, params any) {
	raw, err := json.Marshal(params)
	if err != nil {
		s.logger.Warn("failed to marshal notification", "method", method, "err", err)
		return
	}
	if err := s.send(&jsonrpcMessage{JSONRPC: "2.0", Method: method, Params: raw}); err != nil {
		s.logger.Warn("failed to send notification", "method", method, "err", err)
	}
}

// InitializeParams represents the initialize request parameters.
type InitializeParams struct {
	ProcessID int    `json:"processId,omitempty"`
	RootPath  string `json:"rootPath,omitempty"`
	RootURI   string `json:"rootUri,omitempty"`
}

// InitializeResult represents the initialize response.
type InitializeResult struct {
	Capabilities ServerCapabilities `json:"capabilities"`
	ServerInfo   ServerInfo         `json:"serverInfo"`
}

type ServerCapabilities struct {
	TextDocumentSync   int            `json:"textDocumentSync"`
	CompletionProvider map[string]any `json:"completionProvider,omitempty"`
	HoverProvider      bool           `json:"hoverProvider"`
	DefinitionProvider bool           `json:"definitionProvider"`
}

type ServerInfo struct {
	Name    string `json:"name"`
	Version string `json:"version"`
}

const syncFull = 1

func (s *Server) handleInitialize(msg *jsonrpcMessage) *jsonrpcMessage {
	var params InitializeParams
	if resp := decodeParams(msg, &params); resp != nil {
		return resp
	}

	if params.RootURI != "" {
		s.rootPath = uriToPath(params.RootURI)
	} else {
		s.rootPath = params.RootPath
	}
	s.logger.Debug("initialize", "root", s.rootPath)

	return result(msg, InitializeResult{
		Capabilities: ServerCapabilities{
			TextDocumentSync: syncFull,
			CompletionProvider: map[string]any{
				"triggerCharacters": []string{"."},
			},
			HoverProvider:      true,
			DefinitionProvider: true,
		},
		ServerInfo: ServerInfo{
			Name:    "plc-lsp",
			Version: compile.LanguageVersion,
		},
	})
}

// DidOpenTextDocumentParams represents didOpen notification parameters.
type DidOpenTextDocumentParams struct {
	TextDocument TextDocumentItem `json:"textDocument"`
}

type TextDocumentItem struct {
	URI        string `json:"uri"`
	LanguageID string `json:"languageId"`
	Version    int    `json:"version"`
	Text       string `json:"text"`
}

func (s *Server) handleDidOpen(ctx context.Context, msg *jsonrpcMessage) {
	var params DidOpenTextDocumentParams
	if err := json.Unmarshal(msg.Params, &params); err != nil {
		s.logger.Warn("failed to parse didOpen params", "err", err)
		return
	}

	doc := &Document{
		URI:     params.TextDocument.URI,
		Content: params.TextDocument.Text,
		Version: params.TextDocument.Version,
	}
	s.updateDocument(ctx, doc)

	s.mu.Lock()
	s.Documents[doc.URI] = doc
	s.mu.Unlock()

	s.publishDiagnostics(doc)
}

// DidChangeTextDocumentParams represents didChange notification parameters.
type DidChangeTextDocumentParams struct {
	TextDocument   VersionedTextDocumentIdentifier  `json:"textDocument"`
	ContentChanges []TextDocumentContentChangeEvent `json:"contentChanges"`
}

type VersionedTextDocumentIdentifier struct {
	URI     string `json:"uri"`
	Version int    `json:"version"`
}

type TextDocumentContentChangeEvent struct {
	Text string `json:"text"`
}

func (s *Server) handleDidChange(ctx context.Context, msg *jsonrpcMessage) {
	var params DidChangeTextDocumentParams
	if err := json.Unmarshal(msg.Params, &params); err != nil {
		s.logger.Warn("failed to parse didChange params", "err", err)
		return
	}
	if len(params.ContentChanges) == 0 {
		return
	}

	s.mu.RLock()
	old, ok := s.Documents[params.TextDocument.URI]
	s.mu.RUnlock()
	if !ok {
		return
	}

	// Full sync: the last change holds the whole text.
	doc := &Document{
		URI:     old.URI,
		Content: params.ContentChanges[len(params.ContentChanges)-1].Text,
		Version: params.TextDocument.Version,
	}
	s.updateDocument(ctx, doc)
	if doc.Result == nil {
		doc.Previous = old.Result
		if doc.Previous == nil {
			doc.Previous = old.Previous
		}
	}

	s.mu.Lock()
	s.Documents[doc.URI] = doc
	s.mu.Unlock()

	s.publishDiagnostics(doc)
}

type TextDocumentIdentifier struct {
	URI string `json:"uri"`
}

func (s *Server) handleDidClose(msg *jsonrpcMessage) {
	var params struct {
		TextDocument TextDocumentIdentifier `json:"textDocument"`
	}
	if err := json.Unmarshal(msg.Params, &params); err != nil {
		s.logger.Warn("failed to parse didClose params", "err", err)
		return
	}

	s.mu.Lock()
	delete(s.Documents, params.TextDocument.URI)
	s.mu.Unlock()

	s.notify("textDocument/publishDiagnostics", publishDiagnosticsParams{
		URI:         params.TextDocument.URI,
		Diagnostics: []Diagnostic{},
	})
}

// lookup returns the open document for uri.
func (s *Server) lookup(uri string) (*Document, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	doc, ok := s.Documents[uri]
	return doc, ok
}

// updateDocument compiles the document content.
func (s *Server) updateDocument(ctx context.Context, doc *Document) {
	res, err := compile.Compile(ctx, uriToPath(doc.URI), doc.Content, s.opts)
	if err != nil {
		if d, ok := compile.Diagnostic(err); ok {
			doc.Errors = []diag.Diagnostic{d}
		} else {
			s.logger.Warn("analysis failed", "uri", doc.URI, "err", err)
		}
		return
	}
	doc.Result = res
}

// Diagnostic represents an LSP diagnostic.
type Diagnostic struct {
	Range    Range  `json:"range"`
	Severity int    `json:"severity"`
	Message  string `json:"message"`
	Code     string `json:"code,omitempty"`
	Source   string `json:"source,omitempty"`
}

type Range struct {
	Start Position `json:"start"`
	End   Position `json:"end"`
}

type Position struct {
	Line      int `json:"line"`
	Character int `json:"character"`
}

type publishDiagnosticsParams struct {
	URI         string       `json:"uri"`
	Version     int          `json:"version,omitempty"`
	Diagnostics []Diagnostic `json:"diagnostics"`
}

func (s *Server) publishDiagnostics(doc *Document) {
	out := make([]Diagnostic, 0, len(doc.Errors))
	for _, d := range doc.Errors {
		end := d.Span.End
		if end <= d.Span.Start {
			end = d.Span.Start + 1
		}
		out = append(out, Diagnostic{
			Range: Range{
				Start: offsetToPosition(doc.Content, d.Span.Start),
				End:   offsetToPosition(doc.Content, end),
			},
			Severity: diagnosticSeverity(d.Severity),
			Message:  d.Message,
			Code:     string(d.Code),
			Source:   "plc",
		})
	}

	s.notify("textDocument/publishDiagnostics", publishDiagnosticsParams{
		URI:         doc.URI,
		Version:     doc.Version,
		Diagnostics: out,
	})
}

func diagnosticSeverity(sev diag.Severity) int {
	switch sev {
	case diag.SeverityWarning:
		return 2
	case diag.SeverityNote:
		return 3
	default:
		return 1
	}
}

// uriToPath converts a file:// URI to a file path.
func uriToPath(uri string) string {
	u, err := url.Parse(uri)
	if err != nil || u.Scheme != "file" {
		return uri
	}
	path := u.Path
	// Windows drive letters arrive as /C:/...
	if len(path) > 2 && path[0] == '/' && path[2] == ':' {
		path = path[1:]
	}
	return path
}

// positionToOffset converts a 0-based line/character position into a byte
// offset. Characters are counted in UTF-16 code units.
func positionToOffset(content string, pos Position) int {
	line, col := 0, 0
	for i, r := range content {
		if line == pos.Line && col >= pos.Character {
			return i
		}
		if r == '\n' {
			if line == pos.Line {
				return i
			}
			line++
			col = 0
		} else {
			col += utf16.RuneLen(r)
		}
	}
	return len(content)
}

// offsetToPosition is the inverse of positionToOffset.
func offsetToPosition(content string, offset int) Position {
	var pos Position
	for i, r := range content {
		if i >= offset {
			break
		}
		if r == '\n' {
			pos.Line++
			pos.Character = 0
		} else {
			pos.Character += utf16.RuneLen(r)
		}
	}
	return pos
}
