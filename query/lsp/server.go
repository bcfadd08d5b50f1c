// Package lsp serves filter queries to editors over the Language Server
// Protocol. Every line of a document is an independent query: the server
// publishes its parse errors as diagnostics and answers completion, hover
// and formatting requests for it.
package lsp

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"sync/atomic"

	"github.com/tliron/commonlog"
	"github.com/tliron/glsp"
	protocol "github.com/tliron/glsp/protocol_3_16"
	"github.com/tliron/glsp/server"

	"github.com/dhamidi/filterq/query/catalog"
	"github.com/dhamidi/filterq/query/complete"
	"github.com/dhamidi/filterq/query/parser"
	"github.com/dhamidi/filterq/telemetry"
)

const lsName = "filterq"

type Server struct {
	engine    atomic.Pointer[complete.Engine]
	handler   protocol.Handler
	server    *server.Server
	version   string
	catalog   string
	telemetry *telemetry.Provider
	log       commonlog.Logger

	mu   sync.RWMutex
	docs map[protocol.DocumentUri]string

	stopWatch context.CancelFunc
}

type Option func(*Server)

// WithEngine sets the engine used until a catalog is loaded.
func WithEngine(e *complete.Engine) Option {
	return func(s *Server) {
		s.engine.Store(e)
	}
}

// WithCatalog loads the catalog at path on initialize and reloads it
// whenever the file changes.
func WithCatalog(path string) Option {
	return func(s *Server) {
		s.catalog = path
	}
}

func WithTelemetry(p *telemetry.Provider) Option {
	return func(s *Server) {
		s.telemetry = p
	}
}

func NewServer(version string, opts ...Option) *Server {
	s := &Server{
		version: version,
		docs:    make(map[protocol.DocumentUri]string),
		log:     commonlog.GetLogger("filterq.lsp"),
	}
	s.engine.Store(complete.NewEngine())
	for _, opt := range opts {
		opt(s)
	}

	s.handler = protocol.Handler{
		Initialize:             s.initialize,
		Initialized:            s.initialized,
		Shutdown:               s.shutdown,
		SetTrace:               s.setTrace,
		TextDocumentDidOpen:    s.textDocumentDidOpen,
		TextDocumentDidChange:  s.textDocumentDidChange,
		TextDocumentDidClose:   s.textDocumentDidClose,
		TextDocumentCompletion: s.textDocumentCompletion,
		TextDocumentHover:      s.textDocumentHover,
		TextDocumentFormatting: s.textDocumentFormatting,
	}

	s.server = server.NewServer(&s.handler, lsName, false)

	return s
}

func (s *Server) RunStdio() error {
	return s.server.RunStdio()
}

// Engine returns the engine currently answering requests.
func (s *Server) Engine() *complete.Engine {
	return s.engine.Load()
}

func (s *Server) setConfig(cfg complete.Config) {
	s.engine.Store(s.Engine().WithConfig(cfg))
}

func (s *Server) initialize(ctx *glsp.Context, params *protocol.InitializeParams) (any, error) {
	if path := catalogOption(params.InitializationOptions); path != "" {
		s.catalog = path
	}
	if s.catalog != "" {
		cfg, err := catalog.Load(s.catalog)
		if err != nil {
			return nil, fmt.Errorf("load catalog: %w", err)
		}
		s.setConfig(cfg)
		s.log.Infof("loaded catalog %s: %d keys", s.catalog, len(cfg.Keys))
	}

	capabilities := s.handler.CreateServerCapabilities()

	change := protocol.TextDocumentSyncKindFull
	capabilities.TextDocumentSync = &protocol.TextDocumentSyncOptions{
		OpenClose: boolPtr(true),
		Change:    &change,
	}
	capabilities.CompletionProvider = &protocol.CompletionOptions{
		TriggerCharacters: []string{":", " ", "(", `"`},
	}

	return protocol.InitializeResult{
		Capabilities: capabilities,
		ServerInfo: &protocol.InitializeResultServerInfo{
			Name:    lsName,
			Version: &s.version,
		},
	}, nil
}

// catalogOption reads {"catalog": "path"} from the client's initialization
// options.
func catalogOption(opts any) string {
	m, ok := opts.(map[string]any)
	if !ok {
		return ""
	}
	path, _ := m["catalog"].(string)
	return path
}

func (s *Server) initialized(ctx *glsp.Context, params *protocol.InitializedParams) error {
	if s.catalog == "" {
		return nil
	}
	w, err := catalog.NewWatcher(s.catalog)
	if err != nil {
		s.log.Errorf("watch catalog: %s", err)
		return nil
	}
	watchCtx, cancel := context.WithCancel(context.Background())
	s.stopWatch = cancel
	go func() {
		defer w.Close()
		if err := w.Run(watchCtx, s.setConfig); err != nil {
			s.log.Errorf("catalog watcher stopped: %s", err)
		}
	}()
	return nil
}

func (s *Server) shutdown(ctx *glsp.Context) error {
	if s.stopWatch != nil {
		s.stopWatch()
	}
	protocol.SetTraceValue(protocol.TraceValueOff)
	return nil
}

func (s *Server) setTrace(ctx *glsp.Context, params *protocol.SetTraceParams) error {
	protocol.SetTraceValue(params.Value)
	return nil
}

func (s *Server) document(uri protocol.DocumentUri) (string, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	text, ok := s.docs[uri]
	return text, ok
}

func (s *Server) textDocumentDidOpen(ctx *glsp.Context, params *protocol.DidOpenTextDocumentParams) error {
	uri := params.TextDocument.URI
	s.mu.Lock()
	s.docs[uri] = params.TextDocument.Text
	s.mu.Unlock()

	s.publishDiagnostics(ctx, uri, params.TextDocument.Text)
	return nil
}

func (s *Server) textDocumentDidChange(ctx *glsp.Context, params *protocol.DidChangeTextDocumentParams) error {
	uri := params.TextDocument.URI
	s.mu.Lock()
	text, ok := s.docs[uri]
	if !ok {
		s.mu.Unlock()
		return fmt.Errorf("change to unknown document %s", uri)
	}
	for _, change := range params.ContentChanges {
		text = applyChange(text, change)
	}
	s.docs[uri] = text
	s.mu.Unlock()

	s.publishDiagnostics(ctx, uri, text)
	return nil
}

func (s *Server) textDocumentDidClose(ctx *glsp.Context, params *protocol.DidCloseTextDocumentParams) error {
	uri := params.TextDocument.URI
	s.mu.Lock()
	delete(s.docs, uri)
	s.mu.Unlock()

	ctx.Notify(protocol.ServerTextDocumentPublishDiagnostics, protocol.PublishDiagnosticsParams{
		URI:         uri,
		Diagnostics: []protocol.Diagnostic{},
	})
	return nil
}

func (s *Server) publishDiagnostics(ctx *glsp.Context, uri protocol.DocumentUri, text string) {
	h, _ := s.telemetry.StartRequest(context.Background(), "textDocument/publishDiagnostics")
	diagnostics := Diagnostics(s.Engine(), text)
	h.End(len(diagnostics), nil)

	ctx.Notify(protocol.ServerTextDocumentPublishDiagnostics, protocol.PublishDiagnosticsParams{
		URI:         uri,
		Diagnostics: diagnostics,
	})
}

// Diagnostics parses every non-blank line of text and reports its errors.
func Diagnostics(e *complete.Engine, text string) []protocol.Diagnostic {
	diagnostics := []protocol.Diagnostic{}
	severity := protocol.DiagnosticSeverityError
	source := lsName
	for i, line := range splitLines(text) {
		if strings.TrimSpace(line) == "" {
			continue
		}
		for _, err := range e.Parse(line).Errors {
			diagnostics = append(diagnostics, protocol.Diagnostic{
				Range:    lineRange(line, protocol.UInteger(i), err.Position),
				Severity: &severity,
				Code:     &protocol.IntegerOrString{Value: err.Code.String()},
				Source:   &source,
				Message:  err.Message,
			})
		}
	}
	return diagnostics
}

func (s *Server) textDocumentCompletion(ctx *glsp.Context, params *protocol.CompletionParams) (any, error) {
	h, _ := s.telemetry.StartRequest(context.Background(), "textDocument/completion")

	text, ok := s.document(params.TextDocument.URI)
	if !ok {
		err := fmt.Errorf("completion in unknown document %s", params.TextDocument.URI)
		h.End(0, err)
		return nil, err
	}

	items := Completions(s.Engine(), text, params.Position)
	h.End(len(items), nil)
	return protocol.CompletionList{Items: items}, nil
}

// Completions answers a completion request at pos in text.
func Completions(e *complete.Engine, text string, pos protocol.Position) []protocol.CompletionItem {
	line := lineAt(text, pos.Line)
	cursor := byteOffset(line, pos.Character)

	cctx := e.GetContext(line, cursor)
	edit := lineRange(line, pos.Line, cctx.IncompleteRange)

	items := []protocol.CompletionItem{}
	for i, item := range e.Complete(cctx, line) {
		kind := toProtocolKind(item.Type)
		sortText := fmt.Sprintf("%04d", i)
		ci := protocol.CompletionItem{
			Label:    item.Text,
			Kind:     &kind,
			SortText: &sortText,
			TextEdit: protocol.TextEdit{Range: edit, NewText: item.InsertText},
		}
		if item.Description != "" {
			detail := item.Description
			ci.Detail = &detail
		}
		// The edit replaces the opening quote too, so the client has to
		// filter on the quoted form.
		if cctx.IsInQuotes {
			filterText := item.InsertText
			ci.FilterText = &filterText
		}
		items = append(items, ci)
	}
	return items
}

func toProtocolKind(t parser.ContextType) protocol.CompletionItemKind {
	switch t {
	case parser.ContextKey:
		return protocol.CompletionItemKindField
	case parser.ContextValue, parser.ContextQuotedString:
		return protocol.CompletionItemKindValue
	case parser.ContextLogicalOperator:
		return protocol.CompletionItemKindKeyword
	case parser.ContextComparator, parser.ContextColon:
		return protocol.CompletionItemKindOperator
	default:
		return protocol.CompletionItemKindText
	}
}

func (s *Server) textDocumentHover(ctx *glsp.Context, params *protocol.HoverParams) (*protocol.Hover, error) {
	text, ok := s.document(params.TextDocument.URI)
	if !ok {
		return nil, nil
	}
	return Hover(s.Engine(), text, params.Position), nil
}

// Hover describes the catalog key of the condition under pos.
func Hover(e *complete.Engine, text string, pos protocol.Position) *protocol.Hover {
	line := lineAt(text, pos.Line)
	cursor := byteOffset(line, pos.Character)

	result := e.Parse(line)
	if result.AST == nil {
		return nil
	}
	for _, cond := range parser.Conditions(result.AST) {
		if cond.Key == nil || !cond.Position.Contains(cursor) {
			continue
		}
		key, ok := e.Config().Key(cond.Key.Value)
		if !ok {
			return nil
		}
		r := lineRange(line, pos.Line, cond.Key.Position)
		return &protocol.Hover{
			Contents: protocol.MarkupContent{
				Kind:  protocol.MarkupKindMarkdown,
				Value: describeKey(key),
			},
			Range: &r,
		}
	}
	return nil
}

func describeKey(k complete.KeyConfig) string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "**%s**", k.Name)
	if k.ValueType != "" {
		fmt.Fprintf(&sb, " _%s_", k.ValueType)
	}
	if k.Description != "" {
		fmt.Fprintf(&sb, "\n\n%s", k.Description)
	}
	if len(k.Values) > 0 {
		sb.WriteString("\n\n")
		for _, v := range k.Values {
			fmt.Fprintf(&sb, "- `%s`", v.Value)
			if v.Description != "" {
				fmt.Fprintf(&sb, " %s", v.Description)
			}
			sb.WriteString("\n")
		}
	}
	return strings.TrimRight(sb.String(), "\n")
}

func (s *Server) textDocumentFormatting(ctx *glsp.Context, params *protocol.DocumentFormattingParams) ([]protocol.TextEdit, error) {
	text, ok := s.document(params.TextDocument.URI)
	if !ok {
		return nil, nil
	}
	return Format(s.Engine(), text), nil
}

// Format rewrites every line that parses cleanly into canonical form. Lines
// with errors are left alone.
func Format(e *complete.Engine, text string) []protocol.TextEdit {
	edits := []protocol.TextEdit{}
	for i, line := range splitLines(text) {
		if strings.TrimSpace(line) == "" {
			continue
		}
		result := e.Parse(line)
		if !result.Success {
			continue
		}
		pretty := parser.Pretty(result.AST)
		if pretty == line {
			continue
		}
		n := protocol.UInteger(i)
		edits = append(edits, protocol.TextEdit{
			Range: protocol.Range{
				Start: protocol.Position{Line: n, Character: 0},
				End:   protocol.Position{Line: n, Character: character(line, len(line))},
			},
			NewText: pretty,
		})
	}
	return edits
}

func boolPtr(b bool) *bool {
	return &b
}
