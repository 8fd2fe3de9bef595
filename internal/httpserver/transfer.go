package httpserver

import (
	"net/http"
	"net/url"
	"os"

	"fuzzyhttp/internal/fsutil"
)

// Transfer sends the entry at rel, an exact path relative to the root, to
// the client. Resolution has already happened by the time it is called.
type Transfer interface {
	Serve(w http.ResponseWriter, r *http.Request, rel string)
}

type staticTransfer struct {
	root string
	dirs http.Handler
}

// NewStaticTransfer serves regular files with http.ServeContent and
// directory listings with http.FileServer.
func NewStaticTransfer(root string) Transfer {
	return &staticTransfer{
		root: root,
		dirs: http.FileServer(http.Dir(root)),
	}
}

func (t *staticTransfer) Serve(w http.ResponseWriter, r *http.Request, rel string) {
	rel = fsutil.CleanRelPath(rel)
	abs, err := fsutil.JoinWithinRoot(t.root, rel)
	if err != nil {
		http.Error(w, "bad path", http.StatusBadRequest)
		return
	}
	st, err := os.Stat(abs)
	if err != nil {
		http.NotFound(w, r)
		return
	}
	if st.IsDir() {
		t.serveDir(w, r, rel)
		return
	}

	f, err := os.Open(abs)
	if err != nil {
		http.Error(w, "open failed", http.StatusInternalServerError)
		return
	}
	defer f.Close()

	if ct := contentTypeForName(st.Name()); ct != "" {
		w.Header().Set("Content-Type", ct)
	}
	http.ServeContent(w, r, st.Name(), st.ModTime(), f)
}

// serveDir redirects to the canonical slash-terminated directory path, with
// the on-disk casing, then lets http.FileServer render the listing.
func (t *staticTransfer) serveDir(w http.ResponseWriter, r *http.Request, rel string) {
	p := "/"
	if rel != "" {
		p = "/" + rel + "/"
	}
	if r.URL.Path != p {
		http.Redirect(w, r, (&url.URL{Path: p}).EscapedPath(), http.StatusMovedPermanently)
		return
	}
	r2 := r.Clone(r.Context())
	r2.URL.Path = p
	r2.URL.RawPath = ""
	t.dirs.ServeHTTP(w, r2)
}
