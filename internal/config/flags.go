package config

import (
	"flag"
	"os"
	"time"

	"github.com/dmitrijs2005/journalkeeper/internal/flagx"
)

// parseFlags populates selected Config fields from command-line flags.
//
// Supported flags:
//
//	-d string   data directory (default from Config)
//	-u string   account name
//	-z string   canonical time zone (IANA name)
//	-r int      backup retention window in days
//	-t int      lock timeout in seconds, 0 waits indefinitely
//
// The function filters os.Args to only the flags it knows about, using
// flagx.FilterArgs, to avoid interference with other components.
func parseFlags(cfg *Config) {
	args := flagx.FilterArgs(os.Args[1:], []string{"-d", "-u", "-z", "-r", "-t"})

	fs := flag.NewFlagSet("main", flag.ContinueOnError)

	fs.StringVar(&cfg.DataDir, "d", cfg.DataDir, "data directory")
	fs.StringVar(&cfg.Account, "u", cfg.Account, "account name")
	fs.StringVar(&cfg.TimeZone, "z", cfg.TimeZone, "canonical time zone")
	fs.IntVar(&cfg.RetentionDays, "r", cfg.RetentionDays, "backup retention window in days")
	lockTimeout := fs.Int("t", int(cfg.LockTimeout.Seconds()), "lock timeout (in seconds)")

	if err := fs.Parse(args); err != nil {
		panic(err)
	}

	cfg.LockTimeout = time.Duration(*lockTimeout) * time.Second
}
