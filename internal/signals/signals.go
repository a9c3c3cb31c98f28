// Package signals maps the two level-adjustment signals onto the
// component table: SIGUSR1 raises and SIGUSR2 lowers every component
// by one level. The handler goroutine does the actual work; the signal
// delivery itself only feeds a channel.
package signals

import (
	"os"
	"os/signal"

	"golang.org/x/sys/unix"

	"github.com/zhanghaozz/nfs-ganesha/internal/log"
)

// Handler owns the signal subscription.
type Handler struct {
	logger *log.Logger
	ch     chan os.Signal
	done   chan struct{}
}

// Arm subscribes to SIGUSR1/SIGUSR2 and starts the handler goroutine.
func Arm(logger *log.Logger) *Handler {
	h := &Handler{
		logger: logger,
		ch:     make(chan os.Signal, 1),
		done:   make(chan struct{}),
	}
	signal.Notify(h.ch, unix.SIGUSR1, unix.SIGUSR2)
	go h.loop()
	return h
}

func (h *Handler) loop() {
	for {
		select {
		case sig := <-h.ch:
			switch sig {
			case unix.SIGUSR1:
				h.logger.RaiseAll()
			case unix.SIGUSR2:
				h.logger.LowerAll()
			}
		case <-h.done:
			return
		}
	}
}

// Stop unsubscribes and terminates the handler goroutine.
func (h *Handler) Stop() {
	signal.Stop(h.ch)
	close(h.done)
}
