package config

import (
	"flag"
	"io"
	"time"

	"github.com/dmitrijs2005/tunekeeper/internal/flagx"
)

// parseFlags populates selected server Config fields from command-line flags.
//
// Supported flags (short forms):
//
//	-a string   gRPC bind address (e.g., ":50051")
//	-d string   PostgreSQL DSN
//	-s string   token HMAC secret key
//	-t int      session token lifetime, minutes
//	-r int      refresh token lifetime, days
//	-k int      bcrypt cost
//	-w int      concurrent password hashing workers
//	-l string   log level
//
// Unknown flags (for example -c) are filtered out before parsing.
func parseFlags(config *Config, args []string) error {
	args = flagx.FilterArgs(args, []string{"-a", "-d", "-s", "-t", "-r", "-k", "-w", "-l"})

	fs := flag.NewFlagSet("server", flag.ContinueOnError)
	fs.SetOutput(io.Discard)

	fs.StringVar(&config.EndpointAddrGRPC, "a", config.EndpointAddrGRPC, "address and port to run server")
	fs.StringVar(&config.DatabaseDSN, "d", config.DatabaseDSN, "database DSN")
	fs.StringVar(&config.SecretKey, "s", config.SecretKey, "secret key")

	sessionTTL := fs.Int("t", int(config.SessionTTL/time.Minute), "session token lifetime (in minutes)")
	refreshTTL := fs.Int("r", int(config.RefreshTTL/(24*time.Hour)), "refresh token lifetime (in days)")

	fs.IntVar(&config.PasswordHashCost, "k", config.PasswordHashCost, "bcrypt cost")
	fs.IntVar(&config.PasswordHashWorkers, "w", config.PasswordHashWorkers, "concurrent password hashing workers")
	fs.StringVar(&config.LogLevel, "l", config.LogLevel, "log level")

	if err := fs.Parse(args); err != nil {
		return err
	}

	// Only override lifetimes that were given explicitly, so sub-unit values
	// coming from JSON survive the round trip through whole minutes/days.
	fs.Visit(func(f *flag.Flag) {
		switch f.Name {
		case "t":
			config.SessionTTL = time.Duration(*sessionTTL) * time.Minute
		case "r":
			config.RefreshTTL = time.Duration(*refreshTTL) * 24 * time.Hour
		}
	})
	return nil
}
