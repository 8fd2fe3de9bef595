package httpserver

import (
	"errors"
	"fmt"
	"io"
	"log"
	"mime"
	"net/http"
	"path/filepath"
	"strings"

	"fuzzyhttp/internal/config"
	"fuzzyhttp/internal/fsutil"
	"fuzzyhttp/internal/resolve"
	"fuzzyhttp/internal/upload"
)

// Observer receives structured events; presentation is up to the
// implementation.
type Observer interface {
	Resolution(resolve.Outcome)
	Upload(upload.Result)
	UploadFailed(path string, err error)
}

type Options struct {
	Config config.Config
	// Observer defaults to discarding events.
	Observer Observer
	// Transfer defaults to serving files from Config.Root.
	Transfer Transfer
}

type Server struct {
	cfg      config.Config
	resolver *resolve.Resolver
	uploads  *upload.Sink
	transfer Transfer
	observer Observer
}

func New(opts Options) (*Server, error) {
	cfg := opts.Config
	if cfg.Root == "" {
		return nil, errors.New("httpserver: root is required")
	}
	s := &Server{
		cfg: cfg,
		resolver: resolve.New(resolve.Options{
			Root:          cfg.Root,
			Global:        cfg.Global,
			DirPreference: cfg.DirPreference,
			Weights:       cfg.Scoring,
		}),
		uploads:  upload.New(cfg.Root, cfg.UploadPrefix),
		transfer: opts.Transfer,
		observer: opts.Observer,
	}
	if s.transfer == nil {
		s.transfer = NewStaticTransfer(cfg.Root)
	}
	if s.observer == nil {
		s.observer = nopObserver{}
	}
	return s, nil
}

func (s *Server) Handler() http.Handler {
	return withHeaders(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.Method {
		case http.MethodGet, http.MethodHead:
			s.handleGet(w, r)
		case http.MethodPost:
			s.handlePost(w, r)
		default:
			w.Header().Set("Allow", "GET, HEAD, POST")
			http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		}
	}))
}

// --- handlers ---

func (s *Server) handleGet(w http.ResponseWriter, r *http.Request) {
	out := s.resolver.Resolve(r.Context(), resolve.ParseQuery(r.URL.Path))
	s.observer.Resolution(out)

	switch out.Kind {
	case resolve.Resolved:
		s.transfer.Serve(w, r, out.Target.Rel)
	case resolve.Ambiguous:
		w.Header().Set("Server-Reply", fmt.Sprintf("Multiple files found matching '%s'. Choose one:", out.Query.Raw))
		writeText(w, http.StatusMultipleChoices, choices(out))
	default:
		w.Header().Set("Server-Reply", fmt.Sprintf("No files found matching '%s'.", out.Query.Raw))
		writeText(w, http.StatusNotFound, listing(out))
	}
}

// handlePost stores the body under a name derived literally from the path.
func (s *Server) handlePost(w http.ResponseWriter, r *http.Request) {
	segs := fsutil.Segments(r.URL.Path)
	res, err := s.uploads.Save(r.Context(), segs, r.Body, r.ContentLength)
	if err != nil {
		s.observer.UploadFailed(r.URL.Path, err)
		var be *upload.BodyError
		switch {
		case errors.As(err, &be):
			http.Error(w, "[!] Failed to read POST data.", http.StatusBadRequest)
		case errors.Is(err, fsutil.ErrPathEscape):
			http.Error(w, "bad path", http.StatusBadRequest)
		default:
			log.Printf("upload %s: %v", r.URL.Path, err)
			http.Error(w, "[!] Failed to write POST data to file.", http.StatusInternalServerError)
		}
		return
	}
	s.observer.Upload(res)
	writeText(w, http.StatusOK, fmt.Sprintf("saved to: %s, size: %d bytes (%.2f KB), MD5: %s\n",
		res.Path, res.Size, res.KB(), res.MD5))
}

// --- helpers ---

func withHeaders(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("X-Content-Type-Options", "nosniff")
		log.Printf("%s %s %s", r.RemoteAddr, r.Method, r.URL.Path)
		next.ServeHTTP(w, r)
	})
}

func choices(out resolve.Outcome) string {
	var b strings.Builder
	for i, c := range out.Candidates {
		fmt.Fprintf(&b, "%d. %s (score: %.2f)\n", i+1, c.Entry.URLPath(), c.Score)
	}
	return b.String()
}

func listing(out resolve.Outcome) string {
	var b strings.Builder
	fmt.Fprintf(&b, "[!] No exact or fuzzy match for %s. Available entries in /%s:\n\n", out.Query.String(), out.Dir)
	for _, e := range out.Listing {
		flag := "F"
		if e.IsDir() {
			flag = "D"
		}
		fmt.Fprintf(&b, "%s (%s)\n", e.URLPath(), flag)
	}
	return b.String()
}

func writeText(w http.ResponseWriter, code int, body string) {
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	w.WriteHeader(code)
	_, _ = io.WriteString(w, body)
}

func contentTypeForName(name string) string {
	ext := strings.ToLower(filepath.Ext(name))
	if ext == "" {
		return ""
	}
	if ct := mime.TypeByExtension(ext); ct != "" {
		return ct
	}
	// Fallbacks for systems with sparse mime tables.
	switch ext {
	case ".jpg", ".jpeg":
		return "image/jpeg"
	case ".png":
		return "image/png"
	case ".mp4":
		return "video/mp4"
	case ".pdf":
		return "application/pdf"
	case ".txt", ".log", ".md", ".json", ".yaml", ".yml", ".toml", ".ini", ".cfg", ".conf", ".ps1", ".sh", ".py", ".go":
		return "text/plain; charset=utf-8"
	case ".exe", ".dll", ".msi", ".bin":
		return "application/octet-stream"
	case ".zip":
		return "application/zip"
	case ".gz":
		return "application/gzip"
	default:
		return ""
	}
}

type nopObserver struct{}

func (nopObserver) Resolution(resolve.Outcome) {}
func (nopObserver) Upload(upload.Result)       {}
func (nopObserver) UploadFailed(string, error) {}
