// Package ui serves a browser playground for filter queries. Typing in the
// page asks the server for the parse result and the completions at the
// cursor; the same endpoints answer JSON for scripts.
package ui

import (
	"embed"
	"encoding/json"
	"fmt"
	"html/template"
	"io/fs"
	"net/http"
	"os"
	"strconv"
	"sync/atomic"

	"github.com/tliron/commonlog"

	"github.com/dhamidi/filterq/query/complete"
	"github.com/dhamidi/filterq/query/parser"
)

//go:embed static templates
var embeddedFS embed.FS

type Server struct {
	engine     atomic.Pointer[complete.Engine]
	staticFS   fs.FS
	templateFS fs.FS
	funcMap    template.FuncMap
	mux        *http.ServeMux
	log        commonlog.Logger
}

// NewServer answers requests with engine until SetEngine replaces it.
// Templates and static files under ui/ in the working directory take
// precedence over the embedded copies.
func NewServer(engine *complete.Engine) (*Server, error) {
	staticFS := overlayFS("ui/static", mustSub(embeddedFS, "static"))
	templateFS := overlayFS("ui/templates", mustSub(embeddedFS, "templates"))

	funcMap := template.FuncMap{
		"typeName": func(t parser.ContextType) string {
			return t.String()
		},
		"errorAt": func(e parser.ParseError) string {
			return fmt.Sprintf("%d:%d", e.Position.Line, e.Position.Column)
		},
	}

	if _, err := template.New("").Funcs(funcMap).ParseFS(templateFS, "*.html"); err != nil {
		return nil, fmt.Errorf("parse templates: %w", err)
	}

	s := &Server{
		staticFS:   staticFS,
		templateFS: templateFS,
		funcMap:    funcMap,
		mux:        http.NewServeMux(),
		log:        commonlog.GetLogger("filterq.ui"),
	}
	s.engine.Store(engine)

	s.mux.Handle("GET /static/", http.StripPrefix("/static/", http.FileServer(http.FS(staticFS))))
	s.mux.HandleFunc("POST /parse", s.handleParse)
	s.mux.HandleFunc("POST /complete", s.handleComplete)
	s.mux.HandleFunc("POST /format", s.handleFormat)
	s.mux.HandleFunc("GET /keys", s.handleKeys)
	s.mux.HandleFunc("GET /{$}", s.handleIndex)

	return s, nil
}

func (s *Server) Engine() *complete.Engine {
	return s.engine.Load()
}

// SetEngine swaps the engine for all later requests.
func (s *Server) SetEngine(e *complete.Engine) {
	s.engine.Store(e)
}

func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.mux.ServeHTTP(w, r)
}

// render parses the templates on every call so edits under ui/templates
// show up without a restart.
func (s *Server) render(w http.ResponseWriter, name string, data any) {
	tmpl, err := template.New("").Funcs(s.funcMap).ParseFS(s.templateFS, "*.html")
	if err != nil {
		http.Error(w, "template error: "+err.Error(), http.StatusInternalServerError)
		return
	}
	if err := tmpl.ExecuteTemplate(w, name, data); err != nil {
		s.log.Errorf("render %s: %s", name, err)
	}
}

func wantsJSON(r *http.Request) bool {
	return r.Header.Get("Accept") == "application/json" || r.Header.Get("Content-Type") == "application/json"
}

func writeJSON(w http.ResponseWriter, v any) {
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(v)
}

// queryRequest is the body of every POST endpoint. Cursor is a byte offset
// and defaults to the end of the query.
type queryRequest struct {
	Query  string `json:"query"`
	Cursor *int   `json:"cursor,omitempty"`
}

func (q queryRequest) cursor() int {
	if q.Cursor == nil || *q.Cursor < 0 || *q.Cursor > len(q.Query) {
		return len(q.Query)
	}
	return *q.Cursor
}

func readQueryRequest(r *http.Request) (queryRequest, error) {
	var req queryRequest
	if r.Header.Get("Content-Type") == "application/json" {
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			return req, fmt.Errorf("invalid JSON: %w", err)
		}
		return req, nil
	}

	if err := r.ParseForm(); err != nil {
		return req, fmt.Errorf("invalid form data: %w", err)
	}
	req.Query = r.FormValue("query")
	if c := r.FormValue("cursor"); c != "" {
		n, err := strconv.Atoi(c)
		if err != nil {
			return req, fmt.Errorf("invalid cursor %q", c)
		}
		req.Cursor = &n
	}
	return req, nil
}

func (s *Server) handleParse(w http.ResponseWriter, r *http.Request) {
	req, err := readQueryRequest(r)
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	result := s.Engine().Parse(req.Query)
	if wantsJSON(r) {
		writeJSON(w, result)
		return
	}
	s.render(w, "result.html", result)
}

type completion struct {
	Context complete.Context `json:"context"`
	Items   []complete.Item  `json:"items"`
}

func (s *Server) handleComplete(w http.ResponseWriter, r *http.Request) {
	req, err := readQueryRequest(r)
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	engine := s.Engine()
	ctx := engine.GetContext(req.Query, req.cursor())
	data := completion{Context: ctx, Items: engine.Complete(ctx, req.Query)}
	if data.Items == nil {
		data.Items = []complete.Item{}
	}
	s.log.Debugf("complete %q at %d: %d items", req.Query, ctx.CursorPosition, len(data.Items))

	if wantsJSON(r) {
		writeJSON(w, data)
		return
	}
	s.render(w, "suggestions.html", data)
}

type formatted struct {
	Query  string              `json:"query"`
	Errors []parser.ParseError `json:"errors"`
}

// handleFormat returns the canonical form of the query, or the query
// unchanged together with its errors when it does not parse.
func (s *Server) handleFormat(w http.ResponseWriter, r *http.Request) {
	req, err := readQueryRequest(r)
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	result := s.Engine().Parse(req.Query)
	data := formatted{Query: req.Query, Errors: result.Errors}
	if result.Success {
		data.Query = parser.Pretty(result.AST)
	}
	if data.Errors == nil {
		data.Errors = []parser.ParseError{}
	}
	writeJSON(w, data)
}

func (s *Server) handleKeys(w http.ResponseWriter, r *http.Request) {
	keys := s.Engine().Config().Keys
	if keys == nil {
		keys = []complete.KeyConfig{}
	}
	writeJSON(w, keys)
}

func (s *Server) handleIndex(w http.ResponseWriter, r *http.Request) {
	data := struct {
		Keys  []complete.KeyConfig
		Query string
	}{
		Keys:  s.Engine().Config().Keys,
		Query: r.URL.Query().Get("q"),
	}
	s.render(w, "index.html", data)
}

func mustSub(fsys fs.FS, dir string) fs.FS {
	sub, err := fs.Sub(fsys, dir)
	if err != nil {
		panic(err)
	}
	return sub
}

// overlayFSType serves files from primary and falls back to secondary.
type overlayFSType struct {
	primary   fs.FS
	secondary fs.FS
}

func overlayFS(primaryPath string, secondary fs.FS) fs.FS {
	return &overlayFSType{
		primary:   os.DirFS(primaryPath),
		secondary: secondary,
	}
}

func (o *overlayFSType) Open(name string) (fs.File, error) {
	f, err := o.primary.Open(name)
	if err == nil {
		return f, nil
	}
	return o.secondary.Open(name)
}

func (o *overlayFSType) ReadDir(name string) ([]fs.DirEntry, error) {
	entries := make(map[string]fs.DirEntry)

	if rd, ok := o.secondary.(fs.ReadDirFS); ok {
		if list, err := rd.ReadDir(name); err == nil {
			for _, e := range list {
				entries[e.Name()] = e
			}
		}
	}

	if rd, ok := o.primary.(fs.ReadDirFS); ok {
		if list, err := rd.ReadDir(name); err == nil {
			for _, e := range list {
				entries[e.Name()] = e
			}
		}
	}

	result := make([]fs.DirEntry, 0, len(entries))
	for _, e := range entries {
		result = append(result, e)
	}
	return result, nil
}
