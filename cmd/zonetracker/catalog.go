package main

import (
	"fmt"
	"io"

	"github.com/raidstats/zonetracker/internal/catalog"
)

func lintCatalog(path string, out io.Writer) error {
	cat, err := catalog.Load(path)
	if err != nil {
		return err
	}

	issues := catalog.Lint(cat)
	for _, issue := range issues {
		fmt.Fprintln(out, issue)
	}
	fmt.Fprintf(out, "%d issue(s) in %d location(s)\n", len(issues), len(cat))

	if len(issues) > 0 {
		return fmt.Errorf("catalog %s has %d issue(s)", path, len(issues))
	}
	return nil
}

func normalizeCatalog(path string, out io.Writer) error {
	cat, err := catalog.Load(path)
	if err != nil {
		return err
	}

	if !catalog.Normalize(cat) {
		fmt.Fprintln(out, "every zone already has a GUID")
		return nil
	}
	if err := catalog.Save(path, cat); err != nil {
		return err
	}
	fmt.Fprintf(out, "assigned missing GUIDs and saved %s\n", path)
	return nil
}
