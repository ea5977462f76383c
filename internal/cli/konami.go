package cli

import (
	"time"

	tea "charm.land/bubbletea/v2"
)

// konamiSequence is the classic cheat code, expressed as bubbletea key names.
var konamiSequence = []string{"up", "up", "down", "down", "left", "right", "left", "right", "b", "a"}

const (
	konamiBanner   = "★ +30 lives ★"
	bannerLifetime = 8 * time.Second
)

// konamiWatcher tracks progress through the key sequence. It observes key
// names without ever consuming them and holds nothing but its own match
// position.
type konamiWatcher struct {
	pos int
}

// Observe advances the watcher with the next key name. The returned value
// replaces the old watcher; matched reports a completed sequence, after
// which matching starts over.
func (w konamiWatcher) Observe(key string) (konamiWatcher, bool) {
	if key == konamiSequence[w.pos] {
		w.pos++
		if w.pos == len(konamiSequence) {
			return konamiWatcher{}, true
		}
		return w, false
	}

	// A mismatched key restarts matching, counting itself when it opens a
	// fresh attempt.
	w.pos = 0
	if key == konamiSequence[0] {
		w.pos = 1
	}
	return w, false
}

// bannerExpiredMsg retires the easter-egg banner. The generation guards
// against an old timer clearing a banner that a later match refreshed.
type bannerExpiredMsg struct {
	gen int
}

// expireBanner schedules the banner to disappear.
func expireBanner(gen int) tea.Cmd {
	return tea.Tick(bannerLifetime, func(time.Time) tea.Msg {
		return bannerExpiredMsg{gen: gen}
	})
}
