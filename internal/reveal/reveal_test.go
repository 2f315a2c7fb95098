package reveal_test

import (
	"encoding/json"
	"math"
	"strings"
	"sync"
	"sync/atomic"
	"testing"

	"github.com/ErlanBelekov/portfolio/internal/reveal"
)

func TestNewTrigger_StartsHidden(t *testing.T) {
	tr := reveal.NewTrigger(reveal.Options{}, nil)
	if tr.State() != reveal.StateHidden {
		t.Errorf("state = %v, want hidden", tr.State())
	}
	if tr.Detached() {
		t.Error("new trigger should still be observing")
	}
}

func TestNewTrigger_Defaults(t *testing.T) {
	opts := reveal.NewTrigger(reveal.Options{}, nil).Options()
	if opts.Variant != reveal.VariantFadeUp {
		t.Errorf("variant = %q, want fade-up", opts.Variant)
	}
	if opts.Threshold != reveal.DefaultThreshold {
		t.Errorf("threshold = %v, want %v", opts.Threshold, reveal.DefaultThreshold)
	}
	if opts.RootMarginBottom != reveal.DefaultRootMarginBottom {
		t.Errorf("margin = %d, want %d", opts.RootMarginBottom, reveal.DefaultRootMarginBottom)
	}
}

func TestObserve_BelowThresholdStaysHidden(t *testing.T) {
	tr := reveal.NewTrigger(reveal.Options{}, nil)
	// Element starts 10px above the shrunk bottom edge: 10/200 = 0.05 visible.
	if tr.Observe(reveal.Entry{Top: 740, Height: 200, ViewportHeight: 800}) {
		t.Fatal("expected hidden below threshold")
	}
	if tr.State() != reveal.StateHidden {
		t.Errorf("state = %v, want hidden", tr.State())
	}
}

func TestObserve_RevealsOnceAndDetaches(t *testing.T) {
	var calls int
	tr := reveal.NewTrigger(reveal.Options{}, func(reveal.Options) { calls++ })

	if !tr.Observe(reveal.Entry{Top: 600, Height: 200, ViewportHeight: 800}) {
		t.Fatal("expected visible")
	}
	if !tr.Detached() {
		t.Error("trigger should detach after reveal")
	}

	// Scrolling back out never hides it again.
	if !tr.Observe(reveal.Entry{Top: 2000, Height: 200, ViewportHeight: 800}) {
		t.Error("revealed element must stay visible")
	}
	tr.Observe(reveal.Entry{Top: 100, Height: 200, ViewportHeight: 800})

	if calls != 1 {
		t.Errorf("onVisible called %d times, want 1", calls)
	}
}

func TestObserve_MarginDelaysReveal(t *testing.T) {
	// 40px of the element inside the raw viewport, none inside the shrunk one.
	e := reveal.Entry{Top: 760, Height: 100, ViewportHeight: 800}

	withMargin := reveal.NewTrigger(reveal.Options{}, nil)
	if withMargin.Observe(e) {
		t.Error("default -50px margin should keep the element hidden")
	}

	grown := reveal.NewTrigger(reveal.Options{RootMarginBottom: 50}, nil)
	if !grown.Observe(e) {
		t.Error("positive margin should reveal the element")
	}
}

func TestObserve_ConcurrentFiresOnce(t *testing.T) {
	var calls atomic.Int32
	tr := reveal.NewTrigger(reveal.Options{}, func(reveal.Options) { calls.Add(1) })

	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			tr.Observe(reveal.Entry{Top: 0, Height: 100, ViewportHeight: 800})
		}()
	}
	wg.Wait()

	if got := calls.Load(); got != 1 {
		t.Errorf("onVisible called %d times, want 1", got)
	}
}

func TestVisibleFraction(t *testing.T) {
	tests := []struct {
		name   string
		entry  reveal.Entry
		margin int
		want   float64
	}{
		{"fully inside", reveal.Entry{Top: 100, Height: 100, ViewportHeight: 800}, 0, 1},
		{"half below", reveal.Entry{Top: 750, Height: 100, ViewportHeight: 800}, 0, 0.5},
		{"half above", reveal.Entry{Top: -50, Height: 100, ViewportHeight: 800}, 0, 0.5},
		{"below viewport", reveal.Entry{Top: 900, Height: 100, ViewportHeight: 800}, 0, 0},
		{"taller than viewport", reveal.Entry{Top: 0, Height: 1600, ViewportHeight: 800}, 0, 0.5},
		{"zero height inside", reveal.Entry{Top: 10, Height: 0, ViewportHeight: 800}, -50, 1},
		{"margin shrinks", reveal.Entry{Top: 700, Height: 100, ViewportHeight: 800}, -50, 0.5},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := tt.entry.VisibleFraction(tt.margin)
			if math.Abs(got-tt.want) > 1e-9 {
				t.Errorf("VisibleFraction = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestParseVariant(t *testing.T) {
	for _, v := range reveal.Variants {
		got, err := reveal.ParseVariant(string(v))
		if err != nil || got != v {
			t.Errorf("ParseVariant(%q) = %q, %v", v, got, err)
		}
		if v.Hidden() == "" {
			t.Errorf("variant %q has empty hidden transform", v)
		}
	}
	if _, err := reveal.ParseVariant("spin"); err == nil {
		t.Error("expected error for unknown variant")
	}
}

func TestSections_JSON(t *testing.T) {
	sections := reveal.Sections()
	if sections[0].ID != "hero" || sections[len(sections)-1].ID != "contact" {
		t.Errorf("unexpected section order: first %q, last %q", sections[0].ID, sections[len(sections)-1].ID)
	}

	b, err := json.Marshal(sections)
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	s := string(b)
	for _, want := range []string{`"root_margin":"0px 0px -50px 0px"`, `"threshold":0.2`, `"delay_ms":100`} {
		if !strings.Contains(s, want) {
			t.Errorf("manifest missing %s", want)
		}
	}
}
