// Package console prints resolution and upload events for a human watching
// the server. Colors are dropped automatically when stdout is not a
// terminal.
package console

import (
	"fmt"
	"io"
	"strings"
	"sync"

	"github.com/fatih/color"
	"github.com/mattn/go-runewidth"

	"fuzzyhttp/internal/index"
	"fuzzyhttp/internal/resolve"
	"fuzzyhttp/internal/upload"
)

var (
	exactColor   = color.New(color.FgHiBlue)
	fuzzyColor   = color.New(color.FgHiGreen)
	choiceColor  = color.New(color.FgHiYellow)
	missColor    = color.New(color.FgHiRed)
	headerColor  = color.New(color.FgHiMagenta)
	fileColor    = color.New(color.FgHiYellow)
	dirColor     = color.New(color.FgHiBlue)
	uploadColor  = color.New(color.FgBlack, color.BgHiWhite)
	networkColor = color.New(color.FgMagenta)
)

// Reporter writes one block per event. It is safe for concurrent use.
type Reporter struct {
	mu  sync.Mutex
	out io.Writer
}

func New(w io.Writer) *Reporter {
	return &Reporter{out: w}
}

func (r *Reporter) Resolution(o resolve.Outcome) {
	r.mu.Lock()
	defer r.mu.Unlock()

	q := o.Query.String()
	switch o.Kind {
	case resolve.Resolved:
		c := fuzzyColor
		if o.Stage == resolve.StageExact {
			c = exactColor
		}
		c.Fprintf(r.out, "[+] %s matched %s -> '%s' (%s, score: %.2f)\n",
			title(o.Stage), q, o.Target.URLPath(), o.Target.Kind, o.Score)
	case resolve.Ambiguous:
		choiceColor.Fprintf(r.out, "[?] Multiple files found matching %s:\n", q)
		width := 0
		for _, c := range o.Candidates {
			width = max(width, runewidth.StringWidth(c.Entry.URLPath()))
		}
		for i, c := range o.Candidates {
			exactColor.Fprintf(r.out, "  %d. %s (score: %.2f)\n", i+1, runewidth.FillRight(c.Entry.URLPath(), width), c.Score)
		}
		fmt.Fprintln(r.out)
	default:
		missColor.Fprintf(r.out, "[!] No exact or fuzzy match for %s.\n", q)
		headerColor.Fprintf(r.out, "[>] Available entries in /%s:\n\n", o.Dir)
		r.listing(o.Listing)
		fmt.Fprintln(r.out)
	}
}

func (r *Reporter) listing(entries []index.Entry) {
	width := 0
	for _, e := range entries {
		width = max(width, runewidth.StringWidth(e.URLPath()))
	}
	for _, e := range entries {
		p := runewidth.FillRight(e.URLPath(), width)
		if e.IsDir() {
			dirColor.Fprintf(r.out, "%s (D)\n", p)
		} else {
			fileColor.Fprintf(r.out, "%s (F)\n", p)
		}
	}
}

func (r *Reporter) Upload(res upload.Result) {
	r.mu.Lock()
	defer r.mu.Unlock()
	uploadColor.Fprintf(r.out, "[+] POST data saved to: %s", res.Path)
	fmt.Fprintln(r.out)
	uploadColor.Fprintf(r.out, "[+] Size: %d bytes (%.2f KB)", res.Size, res.KB())
	fmt.Fprintln(r.out)
	uploadColor.Fprintf(r.out, "[+] MD5: %s", res.MD5)
	fmt.Fprintln(r.out)
}

func (r *Reporter) UploadFailed(path string, err error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	missColor.Fprintf(r.out, "[!] Upload to '%s' failed: %v\n", path, err)
}

// Banner announces the served directory and the addresses it is reachable on.
func (r *Reporter) Banner(root string, port int, ifaces []Interface) {
	r.mu.Lock()
	defer r.mu.Unlock()
	fmt.Fprintf(r.out, "[+] Serving '%s' on port %d\n\n", root, port)
	fmt.Fprintln(r.out, "Network Interfaces and IP Addresses:")
	fmt.Fprintln(r.out, strings.Repeat("-", 40))
	if len(ifaces) == 0 {
		fmt.Fprintln(r.out, "No network interfaces found with IP addresses.")
	}
	for _, ifc := range ifaces {
		if ifc.Highlight() {
			networkColor.Fprintf(r.out, "%s: %s\n", ifc.Name, ifc.Addr)
		} else {
			fmt.Fprintf(r.out, "%s: %s\n", ifc.Name, ifc.Addr)
		}
	}
	fmt.Fprintln(r.out, strings.Repeat("-", 40))
	fmt.Fprintln(r.out)
}

func title(s resolve.Stage) string {
	switch s {
	case resolve.StageExact:
		return "Exactly"
	case resolve.StagePrefix:
		return "Prefix"
	case resolve.StagePath, resolve.StageFilter:
		return "Smart"
	default:
		return "Fuzzy"
	}
}
