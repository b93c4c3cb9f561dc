package main

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/raidstats/zonetracker/internal/dispatcher"
	"github.com/raidstats/zonetracker/internal/session"
	"github.com/raidstats/zonetracker/internal/util"
	"github.com/raidstats/zonetracker/internal/worker"
)

const maxLineSize = 1 << 20

// replay feeds a recorded command log through a fresh pipeline. Sample times
// in :POSITION: lines drive the clock, so a replay is reproducible.
func replay(path string, stdout io.Writer) error {
	f, err := os.Open(path)
	if err != nil {
		return fmt.Errorf("failed to open command log: %w", err)
	}
	defer f.Close()

	clock := session.NewManualClock(time.Now().UTC().Truncate(time.Second))
	a, err := newApp(clock)
	if err != nil {
		return err
	}

	n, feedErr := a.feed(context.Background(), f, stdout)

	ctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	closeErr := a.Close(ctx)

	stats := a.worker.ExportStats()
	fmt.Fprintf(stdout, "replayed %d commands, %d raid(s) exported, %d failed\n", n, stats.Exported, stats.Failed)
	return errors.Join(feedErr, closeErr)
}

// serve reads live host commands from stdin until EOF, SIGINT or SIGTERM.
func serve(stdin io.Reader, stdout io.Writer) error {
	a, err := newApp(session.SystemClock{})
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	_, feedErr := a.feed(ctx, stdin, stdout)

	closeCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	return errors.Join(feedErr, a.Close(closeCtx))
}

// feed dispatches every command line read from r on the calling goroutine,
// which keeps the tracker confined to it. Failing commands are logged and
// skipped. :STATUS: replies are written to out. It returns the number of
// commands handled successfully.
func (a *app) feed(ctx context.Context, r io.Reader, out io.Writer) (int, error) {
	lines := make(chan string)
	readErr := make(chan error, 1)

	go func() {
		defer close(lines)
		scanner := bufio.NewScanner(r)
		scanner.Buffer(make([]byte, 0, 64*1024), maxLineSize)
		for scanner.Scan() {
			select {
			case lines <- scanner.Text():
			case <-ctx.Done():
				return
			}
		}
		readErr <- scanner.Err()
	}()

	handled := 0
	lineNo := 0
	for {
		select {
		case <-ctx.Done():
			a.logger.Info("Interrupted, shutting down", "line", lineNo)
			return handled, nil
		case line, ok := <-lines:
			if !ok {
				if err := <-readErr; err != nil {
					return handled, fmt.Errorf("reading commands: %w", err)
				}
				return handled, nil
			}
			lineNo++
			if a.handleLine(lineNo, line, out) {
				handled++
			}
		}
	}
}

func (a *app) handleLine(lineNo int, line string, out io.Writer) bool {
	command, args := util.SplitCommand(line)
	if command == "" {
		return false
	}
	if command == worker.CmdExport {
		a.logger.Warn("Ignoring internal command from host", "line", lineNo, "command", command)
		return false
	}

	result, err := a.dispatcher.Dispatch(dispatcher.Event{
		Command: command,
		Args:    util.CleanArgs(args),
	})
	if err != nil {
		if errors.Is(err, worker.ErrNoSession) {
			a.logger.Debug("Command outside session", "line", lineNo, "command", command)
		} else {
			a.logger.Warn("Command failed", "line", lineNo, "command", command, "error", err)
		}
		return false
	}

	if command == worker.CmdStatus {
		fmt.Fprintln(out, result)
	}
	return true
}
