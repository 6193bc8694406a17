package config

import (
	"flag"
	"os"
	"time"

	"github.com/dmitrijs2005/schooladmin/internal/flagx"
)

// parseFlags overlays cfg with the flags listed in the package doc. Other
// arguments in os.Args are ignored.
func parseFlags(cfg *Config) {
	args := flagx.FilterArgs(os.Args[1:], []string{"-a", "-d", "-t", "-v"})

	fs := flag.NewFlagSet("client", flag.ContinueOnError)

	fs.StringVar(&cfg.APIURL, "a", cfg.APIURL, "API base URL")
	fs.StringVar(&cfg.StateDB, "d", cfg.StateDB, "local state database path")
	timeout := fs.Int("t", int(cfg.Timeout.Seconds()), "request timeout (in seconds)")
	verbose := fs.Bool("v", false, "verbose logging")

	if err := fs.Parse(args); err != nil {
		panic(err)
	}

	cfg.Timeout = time.Duration(*timeout) * time.Second
	if *verbose {
		cfg.LogLevel = "debug"
	}
}
