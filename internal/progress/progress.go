// Package progress renders progress bars for long-running scan and erase
// batches and wires user interrupts into context cancellation.
package progress

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"sync"
	"syscall"

	"github.com/schollz/progressbar/v3"
)

// Options configures progress bar behavior
type Options struct {
	Quiet   bool
	Verbose bool
}

// Manager handles progress bars and cancellation
type Manager struct {
	options    Options
	bar        *progressbar.ProgressBar
	cancelFunc context.CancelFunc
	cancelled  bool
	cancelMux  sync.Mutex
	signalChan chan os.Signal
}

// NewManager creates a new progress manager
func NewManager(options Options) *Manager {
	return &Manager{
		options:    options,
		signalChan: make(chan os.Signal, 1),
	}
}

// SetupCancellation sets up signal handling so SIGINT/SIGTERM cancel the
// returned context. The eraser treats that cancellation like a staging
// failure and rolls back before the process exits.
func (pm *Manager) SetupCancellation(ctx context.Context) context.Context {
	ctx, cancel := context.WithCancel(ctx)
	pm.cancelFunc = cancel

	signal.Notify(pm.signalChan, syscall.SIGINT, syscall.SIGTERM)

	go func() {
		select {
		case <-pm.signalChan:
			pm.cancelMux.Lock()
			pm.cancelled = true
			pm.cancelMux.Unlock()
			fmt.Println("\nOperation cancelled by user")
			cancel()
		case <-ctx.Done():
			// Context already cancelled
		}
	}()

	return ctx
}

// IsCancelled checks if the operation was cancelled
func (pm *Manager) IsCancelled() bool {
	pm.cancelMux.Lock()
	defer pm.cancelMux.Unlock()
	return pm.cancelled
}

// Cleanup removes signal handlers
func (pm *Manager) Cleanup() {
	signal.Stop(pm.signalChan)
	if pm.cancelFunc != nil {
		pm.cancelFunc()
	}
}

// InitFileBar initializes a count-based bar over a batch of files.
func (pm *Manager) InitFileBar(total int, description string) {
	if pm.options.Quiet {
		return
	}

	pm.bar = progressbar.NewOptions(total,
		progressbar.OptionSetDescription(description),
		progressbar.OptionSetWriter(os.Stderr),
		progressbar.OptionSetWidth(50),
		progressbar.OptionThrottle(65),
		progressbar.OptionShowCount(),
		progressbar.OptionOnCompletion(func() {
			fmt.Fprint(os.Stderr, "\n")
		}),
		progressbar.OptionSpinnerType(14),
		progressbar.OptionFullWidth(),
	)
}

// Advance moves the bar forward by one file.
func (pm *Manager) Advance() {
	if pm.options.Quiet || pm.bar == nil {
		return
	}
	// #nosec G104 - progress bar errors are not critical for functionality
	pm.bar.Add(1)
}

// Finish marks the bar as complete.
func (pm *Manager) Finish() {
	if pm.options.Quiet || pm.bar == nil {
		return
	}
	// #nosec G104 - progress bar errors are not critical for functionality
	pm.bar.Finish()
}

// PrintVerbose prints verbose information if verbose mode is enabled
func (pm *Manager) PrintVerbose(format string, args ...interface{}) {
	if !pm.options.Verbose {
		return
	}
	if pm.bar != nil {
		// #nosec G104 - progress bar clear is not critical for functionality
		pm.bar.Clear()
	}
	fmt.Printf(format, args...)
	if len(format) == 0 || format[len(format)-1] != '\n' {
		fmt.Println()
	}
}

// PrintInfo prints informational messages (unless quiet mode)
func (pm *Manager) PrintInfo(format string, args ...interface{}) {
	if pm.options.Quiet {
		return
	}
	if pm.bar != nil {
		// #nosec G104 - progress bar clear is not critical for functionality
		pm.bar.Clear()
	}
	fmt.Printf(format, args...)
}
