package settings

import (
	"fmt"
	"sync"

	"github.com/teslashibe/go-camsettings/pkg/prefs"
)

// Option is one selectable (label, value) pair.
type Option struct {
	Label string `json:"label"`
	Value string `json:"value"`
}

// Snapshot is a point-in-time view of a selector.
type Snapshot struct {
	Key      Key      `json:"key"`
	Title    string   `json:"title"`
	Enabled  bool     `json:"enabled"`
	Value    string   `json:"value"`
	HasValue bool     `json:"has_value"`
	Summary  string   `json:"summary"`
	Options  []Option `json:"options"`
}

// ListPreference is a single-choice selector bound to one preference key.
// Its options and summary live here; its value lives in the store.
type ListPreference struct {
	key   Key
	title string
	store prefs.Store

	// refreshMu orders summary refreshes and snapshots so a summary is
	// always computed from the value read in the same step.
	refreshMu sync.Mutex

	mu          sync.RWMutex
	entries     []string
	entryValues []string
	enabled     bool
	summary     string
}

func newListPreference(key Key, title string, store prefs.Store) *ListPreference {
	return &ListPreference{
		key:     key,
		title:   title,
		store:   store,
		enabled: true,
	}
}

// Key returns the preference key.
func (p *ListPreference) Key() Key { return p.key }

// Title returns the display title.
func (p *ListPreference) Title() string { return p.title }

// SetEntries replaces the options. labels and values must be index-aligned.
func (p *ListPreference) SetEntries(labels, values []string) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.entries = append([]string(nil), labels...)
	p.entryValues = append([]string(nil), values...)
}

// Entries returns a copy of the option labels.
func (p *ListPreference) Entries() []string {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return append([]string(nil), p.entries...)
}

// EntryValues returns a copy of the option values.
func (p *ListPreference) EntryValues() []string {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return append([]string(nil), p.entryValues...)
}

// Options returns the options as pairs.
func (p *ListPreference) Options() []Option {
	p.mu.RLock()
	defer p.mu.RUnlock()
	out := make([]Option, len(p.entryValues))
	for i := range p.entryValues {
		out[i] = Option{Label: p.entries[i], Value: p.entryValues[i]}
	}
	return out
}

// Enabled reports whether the selector accepts input.
func (p *ListPreference) Enabled() bool {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return p.enabled
}

// SetEnabled enables or disables the selector.
func (p *ListPreference) SetEnabled(enabled bool) {
	p.mu.Lock()
	p.enabled = enabled
	p.mu.Unlock()
}

// Summary returns the visible summary text.
func (p *ListPreference) Summary() string {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return p.summary
}

// SetSummary sets the visible summary text.
func (p *ListPreference) SetSummary(summary string) {
	p.mu.Lock()
	p.summary = summary
	p.mu.Unlock()
}

// Value returns the stored value.
func (p *ListPreference) Value() (string, bool) {
	return p.store.Get(string(p.key))
}

// SetValue writes value to the store.
func (p *ListPreference) SetValue(value string) error {
	return p.store.Set(string(p.key), value)
}

// FindIndexOfValue returns the option index holding value, or -1.
func (p *ListPreference) FindIndexOfValue(value string) int {
	p.mu.RLock()
	defer p.mu.RUnlock()
	for i, v := range p.entryValues {
		if v == value {
			return i
		}
	}
	return -1
}

// SetValueIndex stores the value of the option at index.
func (p *ListPreference) SetValueIndex(index int) error {
	p.mu.RLock()
	if index < 0 || index >= len(p.entryValues) {
		n := len(p.entryValues)
		p.mu.RUnlock()
		return fmt.Errorf("%s: option index %d out of range [0,%d)", p.key, index, n)
	}
	value := p.entryValues[index]
	p.mu.RUnlock()

	return p.SetValue(value)
}

// Entry returns the label paired with the stored value.
func (p *ListPreference) Entry() (string, bool) {
	value, ok := p.Value()
	if !ok {
		return "", false
	}
	p.mu.RLock()
	defer p.mu.RUnlock()
	for i, v := range p.entryValues {
		if v == value {
			return p.entries[i], true
		}
	}
	return "", false
}

// Snapshot captures the selector's current state.
func (p *ListPreference) Snapshot() Snapshot {
	p.refreshMu.Lock()
	defer p.refreshMu.Unlock()
	return p.snapshot()
}

// refresh sets the summary to the label of the stored value and passes the
// resulting snapshot to notify, if set. notify runs before the next refresh
// of this selector starts, so callers see refreshes in order.
func (p *ListPreference) refresh(notify func(Snapshot)) {
	p.refreshMu.Lock()
	defer p.refreshMu.Unlock()

	label, _ := p.Entry()
	p.SetSummary(label)

	if notify != nil {
		notify(p.snapshot())
	}
}

// reset clears options and summary and re-enables the selector.
func (p *ListPreference) reset() {
	p.refreshMu.Lock()
	defer p.refreshMu.Unlock()
	p.mu.Lock()
	defer p.mu.Unlock()
	p.entries, p.entryValues = nil, nil
	p.enabled = true
	p.summary = ""
}

// snapshot requires refreshMu.
func (p *ListPreference) snapshot() Snapshot {
	value, hasValue := p.Value()
	p.mu.RLock()
	defer p.mu.RUnlock()

	options := make([]Option, len(p.entryValues))
	for i := range p.entryValues {
		options[i] = Option{Label: p.entries[i], Value: p.entryValues[i]}
	}
	return Snapshot{
		Key:      p.key,
		Title:    p.title,
		Enabled:  p.enabled,
		Value:    value,
		HasValue: hasValue,
		Summary:  p.summary,
		Options:  options,
	}
}
