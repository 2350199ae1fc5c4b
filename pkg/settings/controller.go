// Package settings binds camera capabilities to the user's list selectors.
//
// On Initialize the controller opens the camera once, reads which values
// it supports, and offers each gated setting only the candidates the
// hardware reports, in catalog order. Stored selections that are missing
// or no longer offered are replaced with the first option. Afterwards it
// keeps each selector's summary equal to the label of the stored value by
// listening to the preference store.
package settings

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"

	"github.com/teslashibe/go-camsettings/internal/log"
	"github.com/teslashibe/go-camsettings/pkg/camera"
	"github.com/teslashibe/go-camsettings/pkg/catalog"
	"github.com/teslashibe/go-camsettings/pkg/prefs"
)

var (
	ErrUnknownKey         = errors.New("settings: unknown key")
	ErrMissingCategory    = errors.New("settings: catalog has no category for key")
	ErrInvalidCatalog     = errors.New("settings: invalid catalog")
	ErrNotInitialized     = errors.New("settings: controller not initialized")
	ErrAlreadyInitialized = errors.New("settings: controller already initialized")
	ErrDisabled           = errors.New("settings: setting not supported by this camera")
	ErrUnsupportedValue   = errors.New("settings: value not offered")
	ErrUnknownPreset      = errors.New("settings: unknown preset")
)

// ControllerOption configures a Controller.
type ControllerOption func(*Controller)

// WithLogger sets the logger.
func WithLogger(l *slog.Logger) ControllerOption {
	return func(c *Controller) { c.logger = l }
}

// Controller owns one selector per Key.
type Controller struct {
	opener  camera.Opener
	store   prefs.Store
	catalog *catalog.Catalog
	logger  *slog.Logger

	selectors map[Key]*ListPreference
	handlers  map[Key]func()

	mu          sync.Mutex
	params      camera.Parameters
	initialized bool
	unsubscribe func()

	// OnSummaryChange is called after a selector's summary is refreshed,
	// while that selector's refresh is still in progress. It must not call
	// Snapshot or RefreshSummary for the same key. Set it before the
	// controller is used from more than one goroutine.
	OnSummaryChange func(Snapshot)
}

// New creates a controller. The catalog must be valid and describe every
// Key, with hardware gating and stored defaults where the keys expect them.
func New(opener camera.Opener, store prefs.Store, cat *catalog.Catalog, opts ...ControllerOption) (*Controller, error) {
	if cat == nil {
		return nil, fmt.Errorf("%w: nil catalog", ErrInvalidCatalog)
	}
	if err := cat.Validate(); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidCatalog, err)
	}

	c := &Controller{
		opener:    opener,
		store:     store,
		catalog:   cat,
		selectors: make(map[Key]*ListPreference, len(allKeys)),
		handlers:  make(map[Key]func(), len(allKeys)),
	}
	for _, opt := range opts {
		opt(c)
	}
	if c.logger == nil {
		c.logger = log.Component("settings")
	}

	for _, key := range allKeys {
		category, ok := cat.Category(string(key))
		if !ok {
			return nil, fmt.Errorf("%w: %s", ErrMissingCategory, key)
		}
		if err := checkCategory(key, category); err != nil {
			return nil, err
		}
		c.selectors[key] = newListPreference(key, category.Title, store)
		c.handlers[key] = func() { c.RefreshSummary(key) }
	}

	return c, nil
}

// checkCategory rejects a category whose gating or default does not match key.
func checkCategory(key Key, category catalog.Category) error {
	switch {
	case key.Gated() && !category.Gated():
		return fmt.Errorf("%w: %s must name a supported-values parameter", ErrInvalidCatalog, key)
	case !key.Gated() && category.Gated():
		return fmt.Errorf("%w: %s is not gated by hardware", ErrInvalidCatalog, key)
	case key.Defaulted() && category.Default == "":
		return fmt.Errorf("%w: %s needs a default", ErrInvalidCatalog, key)
	case !key.Defaulted() && category.Default != "":
		return fmt.Errorf("%w: %s takes no default", ErrInvalidCatalog, key)
	}
	return nil
}

// Initialize reads the camera's capabilities and populates every selector.
// The camera handle is released before Initialize returns. On failure the
// controller is left as New returned it and Initialize may be called again;
// values already written to the store are kept.
func (c *Controller) Initialize(ctx context.Context) (err error) {
	c.mu.Lock()
	if c.initialized {
		c.mu.Unlock()
		return ErrAlreadyInitialized
	}
	c.initialized = true
	c.mu.Unlock()

	unsubscribe := c.store.Subscribe(c.OnSettingChanged)
	defer func() {
		if err != nil {
			c.rollback(unsubscribe)
		}
	}()

	params, err := camera.ReadParameters(ctx, c.opener)
	if err != nil {
		return fmt.Errorf("failed to read camera parameters: %w", err)
	}

	c.mu.Lock()
	c.params = params
	c.unsubscribe = unsubscribe
	c.mu.Unlock()

	c.logger.Debug("camera parameters read", "count", params.Len())

	for _, key := range allKeys {
		category, _ := c.catalog.Category(string(key))
		if !category.Gated() {
			continue
		}
		if err := c.deriveOptions(c.selectors[key], params, category.Supported, category.Entries, category.EntryValues); err != nil {
			return err
		}
	}

	for _, key := range allKeys {
		category, _ := c.catalog.Category(string(key))
		if category.Gated() {
			continue
		}
		sel := c.selectors[key]
		sel.SetEntries(category.Entries, category.EntryValues)
		if category.Default == "" {
			continue
		}
		if _, ok := sel.Value(); !ok {
			if err := sel.SetValue(category.Default); err != nil {
				return fmt.Errorf("failed to store default for %s: %w", key, err)
			}
		}
	}

	return nil
}

// rollback undoes a failed Initialize.
func (c *Controller) rollback(unsubscribe func()) {
	unsubscribe()
	for _, sel := range c.selectors {
		sel.reset()
	}

	c.mu.Lock()
	c.params = camera.Parameters{}
	c.unsubscribe = nil
	c.initialized = false
	c.mu.Unlock()
}

// deriveOptions offers sel the candidates whose value the camera reports
// under paramName, keeping candidate order. A missing parameter disables
// the selector. A stored value that is not offered is replaced by the
// first option.
func (c *Controller) deriveOptions(sel *ListPreference, params camera.Parameters, paramName string, labels, values []string) error {
	raw, ok := params.Get(paramName)
	if !ok {
		sel.SetEnabled(false)
		c.logger.Debug("setting not supported", "key", sel.Key(), "param", paramName)
		return nil
	}

	supported := make(map[string]struct{})
	for _, token := range camera.SplitTokens(raw) {
		supported[token] = struct{}{}
	}

	var entries, entryValues []string
	for i, v := range values {
		if _, ok := supported[v]; ok {
			entries = append(entries, labels[i])
			entryValues = append(entryValues, v)
		}
	}
	sel.SetEntries(entries, entryValues)

	if len(entryValues) == 0 {
		sel.SetEnabled(false)
		c.logger.Warn("no candidate supported", "key", sel.Key(), "param", paramName, "reported", raw)
		return nil
	}

	if value, ok := sel.Value(); ok && sel.FindIndexOfValue(value) >= 0 {
		return nil
	}
	if err := sel.SetValueIndex(0); err != nil {
		return fmt.Errorf("failed to select default for %s: %w", sel.Key(), err)
	}
	return nil
}

// RefreshSummary sets key's summary to the label of its stored value.
func (c *Controller) RefreshSummary(key Key) {
	sel, ok := c.selectors[key]
	if !ok {
		return
	}
	sel.refresh(c.OnSummaryChange)
}

// Resume refreshes every summary.
func (c *Controller) Resume() {
	for _, key := range allKeys {
		c.RefreshSummary(key)
	}
}

// OnSettingChanged handles a store change notification. Unknown keys are ignored.
func (c *Controller) OnSettingChanged(key string) {
	if h, ok := c.handlers[Key(key)]; ok {
		h()
	}
}

// Close stops listening to the store.
func (c *Controller) Close() {
	c.mu.Lock()
	unsubscribe := c.unsubscribe
	c.unsubscribe = nil
	c.mu.Unlock()

	if unsubscribe != nil {
		unsubscribe()
	}
}

// Initialized reports whether Initialize has completed or is running.
func (c *Controller) Initialized() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.initialized
}

// Selector returns the selector for key.
func (c *Controller) Selector(key Key) (*ListPreference, bool) {
	sel, ok := c.selectors[key]
	return sel, ok
}

// Snapshots returns every selector's state in screen order.
func (c *Controller) Snapshots() []Snapshot {
	out := make([]Snapshot, 0, len(allKeys))
	for _, key := range allKeys {
		out = append(out, c.selectors[key].Snapshot())
	}
	return out
}

// Capabilities returns the report read during Initialize.
func (c *Controller) Capabilities() camera.Parameters {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.params.Clone()
}

// Select stores value for key after checking the selector offers it.
func (c *Controller) Select(key Key, value string) error {
	sel, ok := c.selectors[key]
	if !ok {
		return fmt.Errorf("%w: %s", ErrUnknownKey, key)
	}
	if !c.Initialized() {
		return ErrNotInitialized
	}
	if !sel.Enabled() {
		return fmt.Errorf("%w: %s", ErrDisabled, key)
	}
	if sel.FindIndexOfValue(value) < 0 {
		return fmt.Errorf("%w: %s=%q", ErrUnsupportedValue, key, value)
	}
	return sel.SetValue(value)
}

// ApplyPreset selects every preset value this camera offers and returns
// the keys that were applied. Values the camera does not offer are skipped.
func (c *Controller) ApplyPreset(name string) ([]Key, error) {
	preset := camera.GetPreset(name)
	if preset == nil {
		return nil, fmt.Errorf("%w: %s", ErrUnknownPreset, name)
	}

	var applied []Key
	for _, key := range allKeys {
		category, _ := c.catalog.Category(string(key))
		value, ok := preset[category.Param]
		if !ok {
			continue
		}
		err := c.Select(key, value)
		switch {
		case err == nil:
			applied = append(applied, key)
		case errors.Is(err, ErrDisabled), errors.Is(err, ErrUnsupportedValue):
			c.logger.Debug("preset value skipped", "preset", name, "key", key, "value", value)
		default:
			return applied, err
		}
	}
	return applied, nil
}

// CameraParams maps each category's camera parameter to its stored value.
// Disabled selectors and values that are not offered are left out.
func (c *Controller) CameraParams() map[string]string {
	out := make(map[string]string)
	for _, key := range allKeys {
		sel := c.selectors[key]
		if !sel.Enabled() {
			continue
		}
		value, ok := sel.Value()
		if !ok || sel.FindIndexOfValue(value) < 0 {
			continue
		}
		category, _ := c.catalog.Category(string(key))
		out[category.Param] = value
	}
	return out
}
