package main

import (
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/raidstats/zonetracker/internal/config"
)

// module defs - BuildDate can be set at build time via ldflags
var (
	CurrentVersion string = "0.1.0"
	BuildDate      string = "unknown"

	ExtensionName string = "zonetracker"
)

// ConfigDirEnv names the directory holding zonetracker.cfg.json. The working
// directory is used when it is unset.
const ConfigDirEnv = "ZONETRACKER_CONFIG_DIR"

const usageText = `usage: zonetracker <command> [args]

commands:
  run                        read host commands from stdin until EOF or interrupt
  replay <file>              feed a recorded command log through the tracker
  catalog lint <file>        report overlapping zones and GUID problems
  catalog normalize <file>   assign GUIDs to zones that lack one and save
  version                    print the version
`

func main() {
	if err := run(os.Args[1:], os.Stdin, os.Stdout); err != nil {
		fmt.Fprintln(os.Stderr, "zonetracker:", err)
		os.Exit(1)
	}
}

func run(args []string, stdin io.Reader, stdout io.Writer) error {
	if len(args) == 0 {
		fmt.Fprint(stdout, usageText)
		return errors.New("no command given")
	}

	switch strings.ToLower(args[0]) {
	case "run":
		return serve(stdin, stdout)
	case "replay":
		if len(args) < 2 {
			return errors.New("replay: no command log given")
		}
		return replay(args[1], stdout)
	case "catalog":
		if len(args) < 3 {
			return errors.New("catalog: expected lint or normalize and a catalog file")
		}
		switch strings.ToLower(args[1]) {
		case "lint":
			return lintCatalog(args[2], stdout)
		case "normalize":
			return normalizeCatalog(args[2], stdout)
		}
		return fmt.Errorf("catalog: unknown subcommand %q", args[1])
	case "version":
		fmt.Fprintf(stdout, "%s %s (%s)\n", ExtensionName, CurrentVersion, BuildDate)
		return nil
	case "help", "-h", "--help":
		fmt.Fprint(stdout, usageText)
		return nil
	}
	return fmt.Errorf("unknown command %q", args[0])
}

// loadConfig reads the config file. Defaults stay in place when it fails.
func loadConfig() error {
	dir := os.Getenv(ConfigDirEnv)
	if dir == "" {
		dir = "."
	}
	if err := config.Load(dir); err != nil {
		config.LoadDefaults()
		return err
	}
	return nil
}
