package config

import (
	"fmt"

	"github.com/spf13/pflag"
)

// Flag names shared by the CLI and ApplyFlags.
const (
	FlagDB      = "db"
	FlagAddr    = "addr"
	FlagVerbose = "verbose"
	FlagScale   = "severity-scale"
)

// ApplyFlags overlays flags the user actually set. --verbose switches the
// logger to debug level with the console encoder.
func (c *Config) ApplyFlags(fs *pflag.FlagSet) error {
	fs.Visit(func(f *pflag.Flag) {
		switch f.Name {
		case FlagDB:
			c.DB.Path = expandPath(f.Value.String())
			c.Sources["db.path"] = SourceFlag
		case FlagAddr:
			c.Server.Addr = f.Value.String()
			c.Sources["server.addr"] = SourceFlag
		case FlagScale:
			c.Risk.SeverityScale = f.Value.String()
			c.Sources["risk.severity_scale"] = SourceFlag
		case FlagVerbose:
			if f.Value.String() == "true" {
				c.Log.Level = "debug"
				c.Log.Format = "console"
				c.Sources["log.level"] = SourceFlag
				c.Sources["log.format"] = SourceFlag
			}
		}
	})
	if err := c.Validate(); err != nil {
		return fmt.Errorf("invalid flags: %w", err)
	}
	return nil
}
