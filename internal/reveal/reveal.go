// Package reveal decides when a page section scrolls into view. A Trigger
// moves from hidden to visible once and then stops observing.
package reveal

import (
	"encoding/json"
	"fmt"
	"sync"
	"time"
)

type Variant string

const (
	VariantFadeUp    Variant = "fade-up"
	VariantFadeLeft  Variant = "fade-left"
	VariantFadeRight Variant = "fade-right"
	VariantScale     Variant = "scale"
	VariantFade      Variant = "fade"
)

var Variants = []Variant{VariantFadeUp, VariantFadeLeft, VariantFadeRight, VariantScale, VariantFade}

func ParseVariant(s string) (Variant, error) {
	for _, v := range Variants {
		if string(v) == s {
			return v, nil
		}
	}
	return "", fmt.Errorf("reveal: unknown variant %q", s)
}

// Hidden is the CSS transform applied before the section is revealed.
func (v Variant) Hidden() string {
	switch v {
	case VariantFadeUp:
		return "translateY(2rem)"
	case VariantFadeLeft:
		return "translateX(-2rem)"
	case VariantFadeRight:
		return "translateX(2rem)"
	case VariantScale:
		return "scale(0.95)"
	case VariantFade:
		return "none"
	}
	panic(fmt.Sprintf("reveal: invalid variant %q", string(v)))
}

const (
	DefaultThreshold        = 0.1
	DefaultRootMarginBottom = -50
)

type Options struct {
	Variant Variant
	Delay   time.Duration
	// Threshold is the visible fraction, in (0, 1], that triggers the reveal.
	Threshold float64
	// RootMarginBottom grows (positive) or shrinks (negative) the bottom of
	// the viewport, in pixels.
	RootMarginBottom int
}

// withDefaults fills unset fields. A zero margin is taken as unset.
func (o Options) withDefaults() Options {
	if o.Variant == "" {
		o.Variant = VariantFadeUp
	}
	if o.Threshold <= 0 || o.Threshold > 1 {
		o.Threshold = DefaultThreshold
	}
	if o.RootMarginBottom == 0 {
		o.RootMarginBottom = DefaultRootMarginBottom
	}
	if o.Delay < 0 {
		o.Delay = 0
	}
	return o
}

func (o Options) MarshalJSON() ([]byte, error) {
	o = o.withDefaults()
	return json.Marshal(struct {
		Variant    Variant `json:"variant"`
		Hidden     string  `json:"hidden_transform"`
		DelayMS    int64   `json:"delay_ms"`
		Threshold  float64 `json:"threshold"`
		RootMargin string  `json:"root_margin"`
	}{
		Variant:    o.Variant,
		Hidden:     o.Variant.Hidden(),
		DelayMS:    o.Delay.Milliseconds(),
		Threshold:  o.Threshold,
		RootMargin: fmt.Sprintf("0px 0px %dpx 0px", o.RootMarginBottom),
	})
}

// Entry is one observation of an element's position relative to the
// viewport. Top is measured from the top of the viewport.
type Entry struct {
	Top            float64
	Height         float64
	ViewportHeight float64
}

// VisibleFraction returns how much of the element lies inside the viewport
// after applying the bottom margin.
func (e Entry) VisibleFraction(marginBottom int) float64 {
	bottom := e.ViewportHeight + float64(marginBottom)
	if bottom <= 0 {
		return 0
	}
	if e.Height <= 0 {
		if e.Top >= 0 && e.Top <= bottom {
			return 1
		}
		return 0
	}

	lo := max(e.Top, 0)
	hi := min(e.Top+e.Height, bottom)
	if hi <= lo {
		return 0
	}
	return (hi - lo) / e.Height
}

type State int

const (
	StateHidden State = iota
	StateVisible
)

func (s State) String() string {
	if s == StateVisible {
		return "visible"
	}
	return "hidden"
}

// Trigger tracks a single element. It is safe for concurrent use.
type Trigger struct {
	opts      Options
	onVisible func(Options)

	mu       sync.Mutex
	state    State
	detached bool
}

// NewTrigger returns a hidden trigger. onVisible may be nil; when set it is
// called at most once, outside the trigger's lock.
func NewTrigger(opts Options, onVisible func(Options)) *Trigger {
	return &Trigger{opts: opts.withDefaults(), onVisible: onVisible}
}

func (t *Trigger) Options() Options { return t.opts }

// Observe feeds a position update and reports whether the element is
// visible afterwards. Entries after the reveal are ignored.
func (t *Trigger) Observe(e Entry) bool {
	t.mu.Lock()
	if t.detached {
		visible := t.state == StateVisible
		t.mu.Unlock()
		return visible
	}
	if e.VisibleFraction(t.opts.RootMarginBottom) < t.opts.Threshold {
		t.mu.Unlock()
		return false
	}
	t.state = StateVisible
	t.detached = true
	t.mu.Unlock()

	if t.onVisible != nil {
		t.onVisible(t.opts)
	}
	return true
}

func (t *Trigger) State() State {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.state
}

// Detached reports whether the trigger stopped observing.
func (t *Trigger) Detached() bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.detached
}
