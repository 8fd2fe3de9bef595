package main

import (
	"flag"
	"log"
	"net"
	"net/http"
	"os"
	"time"

	"golang.org/x/net/netutil"

	"fuzzyhttp/internal/config"
	"fuzzyhttp/internal/console"
	"fuzzyhttp/internal/httpserver"
)

func main() {
	log.SetFlags(log.LstdFlags | log.Lmicroseconds)

	var (
		port     int
		dir      string
		cfgPath  = flag.String("config", "", "path to config file, .json/.toml/.yaml (optional)")
		local    = flag.Bool("local", false, "only match within the requested directory")
		maxConns = flag.Int("max-conns", 0, "max concurrent connections (0 = unlimited)")
		prefer   = flag.String("prefer", "", "favour paths containing this substring")
	)
	flag.IntVar(&port, "p", 8000, "port to listen on")
	flag.IntVar(&port, "port", 8000, "port to listen on")
	flag.StringVar(&dir, "d", "", "directory to serve (default: current directory)")
	flag.StringVar(&dir, "directory", "", "directory to serve (default: current directory)")
	flag.Parse()

	cfg := config.Default()
	if *cfgPath != "" {
		var err error
		if cfg, err = config.Load(*cfgPath); err != nil {
			log.Fatalf("%v", err)
		}
	}

	// Flags given explicitly win over the config file.
	flag.Visit(func(f *flag.Flag) {
		switch f.Name {
		case "p", "port":
			cfg.Port = port
		case "d", "directory":
			cfg.Root = dir
		case "local":
			cfg.Global = !*local
		case "max-conns":
			cfg.MaxConns = *maxConns
		case "prefer":
			cfg.DirPreference = *prefer
		}
	})
	if err := cfg.Normalize(); err != nil {
		log.Fatalf("config: %v", err)
	}

	reporter := console.New(os.Stdout)
	ifaces, err := console.Interfaces()
	if err != nil {
		log.Printf("list interfaces: %v", err)
	}
	reporter.Banner(cfg.Root, cfg.Port, ifaces)

	srv, err := httpserver.New(httpserver.Options{
		Config:   cfg,
		Observer: reporter,
	})
	if err != nil {
		log.Fatalf("server init: %v", err)
	}

	ln, err := net.Listen("tcp", cfg.ListenAddr())
	if err != nil {
		log.Fatalf("listen: %v", err)
	}
	if cfg.MaxConns > 0 {
		ln = netutil.LimitListener(ln, cfg.MaxConns)
	}

	hs := &http.Server{
		Handler:           srv.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
	}
	log.Printf("fuzzyhttp listening on http://%s (root=%s, global=%v)", ln.Addr(), cfg.Root, cfg.Global)
	if err := hs.Serve(ln); err != nil {
		log.Fatalf("serve: %v", err)
	}
}
