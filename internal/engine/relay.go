package engine

import (
	"fmt"
	"log"
	"time"

	"github.com/TanaroSch/powerkey/internal/hook"
)

const (
	defaultRelayRetries    = 5
	defaultRelayRetryDelay = 2 * time.Millisecond
)

// PassThroughRelay re-emits a suppressed keystroke: unhook, send one
// keystroke, hook again.
type PassThroughRelay struct {
	backend    hook.Backend
	retries    int
	retryDelay time.Duration
	onFatal    func(error)
}

// Relay runs on the hook thread from within the key's own handler. The
// injected keystroke is tagged by the backend and bypasses the re-installed
// hook, so the foreground application sees it exactly once.
//
// If the hook cannot be re-installed the key would silently stop being
// intercepted; after the retries are spent onFatal is called instead.
func (r *PassThroughRelay) Relay(k *interceptedKey) error {
	if k.handle == nil {
		return nil
	}
	if err := k.handle.Release(); err != nil {
		log.Printf("Relay: failed to release hook for %s: %v", k.trigger.Label, err)
	}
	k.handle = nil

	sendErr := r.backend.Send(k.trigger.Key)
	if sendErr != nil {
		log.Printf("Relay: failed to synthesize %s: %v", k.trigger.Label, sendErr)
	}

	attempts := r.retries
	if attempts <= 0 {
		attempts = 1
	}
	var lastErr error
	for i := 0; i < attempts; i++ {
		if i > 0 && r.retryDelay > 0 {
			time.Sleep(r.retryDelay)
		}
		h, err := r.backend.HookKey(k.trigger.Key, true, k.handler)
		if err == nil {
			k.handle = h
			if i > 0 {
				log.Printf("Relay: re-hooked %s after %d attempts", k.trigger.Label, i+1)
			}
			return sendErr
		}
		lastErr = err
	}

	fatal := fmt.Errorf("re-hook %s after relay failed %d times: %w", k.trigger.Label, attempts, lastErr)
	log.Printf("Relay: %v", fatal)
	if r.onFatal != nil {
		r.onFatal(fatal)
	}
	return fatal
}
