package plugin

import (
	"context"
	"errors"
	"testing"

	"git.home.luguber.info/inful/sitebuilder/internal/config"
	"git.home.luguber.info/inful/sitebuilder/internal/site"
)

func testHookContext() *HookContext {
	return NewHookContext(context.Background(), nil, nil, "test-build")
}

// TestRunStateHooksReplacement tests that a returned state replaces the
// working state.
func TestRunStateHooksReplacement(t *testing.T) {
	p := Plugin{
		Name: "replacer",
		BeforeBuild: func(ctx *HookContext, st *site.State) (*site.State, error) {
			next := st.Clone()
			next.GlobalProps["touched"] = true
			return next, nil
		},
	}

	st := site.NewState()
	out := RunStateHooks(testHookContext(), CheckpointBeforeBuild, []Plugin{p}, st)

	if out.GlobalProps["touched"] != true {
		t.Error("returned state should replace the working state")
	}
	if _, ok := st.GlobalProps["touched"]; ok {
		t.Error("original state must stay untouched")
	}
}

// TestRunStateHooksNilReturnLeavesStateUnchanged tests the no-replacement path.
func TestRunStateHooksNilReturnLeavesStateUnchanged(t *testing.T) {
	p := Plugin{
		Name: "observer",
		BeforeBuild: func(ctx *HookContext, st *site.State) (*site.State, error) {
			// In-place mutation without returning must have no effect: the
			// hook only ever receives a copy.
			st.GlobalProps["sneaky"] = true
			return nil, nil
		},
	}

	st := site.NewState()
	out := RunStateHooks(testHookContext(), CheckpointBeforeBuild, []Plugin{p}, st)

	if out != st {
		t.Error("nil return should leave the working state value unchanged")
	}
	if _, ok := out.GlobalProps["sneaky"]; ok {
		t.Error("mutation of the hook's copy must not reach the pipeline")
	}
}

// TestRunStateHooksIsolatesFailure tests that a failing plugin does not
// block the next one.
func TestRunStateHooksIsolatesFailure(t *testing.T) {
	var secondSawState *site.State
	plugins := []Plugin{
		{
			Name: "broken",
			BeforeBuild: func(ctx *HookContext, st *site.State) (*site.State, error) {
				return nil, errors.New("boom")
			},
		},
		{
			Name: "healthy",
			BeforeBuild: func(ctx *HookContext, st *site.State) (*site.State, error) {
				secondSawState = st
				next := st.Clone()
				next.GlobalProps["second"] = true
				return next, nil
			},
		},
	}

	st := site.NewState()
	st.GlobalProps["initial"] = "yes"
	out := RunStateHooks(testHookContext(), CheckpointBeforeBuild, plugins, st)

	if secondSawState == nil {
		t.Fatal("second plugin must still be invoked")
	}
	if secondSawState.GlobalProps["initial"] != "yes" {
		t.Error("second plugin must see the pre-failure state")
	}
	if out.GlobalProps["second"] != true {
		t.Error("second plugin's replacement must be adopted")
	}
}

// TestRunStateHooksIsolatesPanic tests that a panicking hook is contained.
func TestRunStateHooksIsolatesPanic(t *testing.T) {
	invoked := false
	plugins := []Plugin{
		{
			Name: "panicky",
			BeforeBuild: func(ctx *HookContext, st *site.State) (*site.State, error) {
				panic("kaboom")
			},
		},
		{
			Name: "healthy",
			BeforeBuild: func(ctx *HookContext, st *site.State) (*site.State, error) {
				invoked = true
				return nil, nil
			},
		},
	}

	out := RunStateHooks(testHookContext(), CheckpointBeforeBuild, plugins, site.NewState())

	if out == nil {
		t.Fatal("pipeline must survive a panicking hook")
	}
	if !invoked {
		t.Error("second plugin must run after a panic in the first")
	}
}

// TestRunStateHooksNoAliasing tests deep-copy-on-replace: mutating the
// plugin's retained reference after the hook returns must not affect the
// pipeline's copy.
func TestRunStateHooksNoAliasing(t *testing.T) {
	var retained *site.State
	p := Plugin{
		Name: "hoarder",
		BeforeBuild: func(ctx *HookContext, st *site.State) (*site.State, error) {
			next := st.Clone()
			next.GlobalProps["v"] = "original"
			next.PagesList = []*site.Page{{Fname: "a.html", Path: "a.html"}}
			retained = next
			return next, nil
		},
	}

	out := RunStateHooks(testHookContext(), CheckpointBeforeBuild, []Plugin{p}, site.NewState())

	retained.GlobalProps["v"] = "mutated"
	retained.PagesList[0].Path = "mutated.html"

	if out.GlobalProps["v"] != "original" {
		t.Error("pipeline state must not alias the plugin's retained object")
	}
	if out.PagesList[0].Path != "a.html" {
		t.Error("pipeline pages must not alias the plugin's retained pages")
	}
}

// TestRunStateHooksSkipsAbsentHooks tests that nil hook slots are skipped.
func TestRunStateHooksSkipsAbsentHooks(t *testing.T) {
	p := Plugin{Name: "empty"}
	st := site.NewState()

	out := RunStateHooks(testHookContext(), CheckpointAfterBuild, []Plugin{p}, st)
	if out != st {
		t.Error("a plugin without a hook must leave the state untouched")
	}
}

// TestRunConfigurationHooks tests settings replacement and isolation.
func TestRunConfigurationHooks(t *testing.T) {
	plugins := []Plugin{
		{
			Name: "broken",
			Configuration: func(ctx *HookContext, s *config.Settings) (*config.Settings, error) {
				return nil, errors.New("bad config")
			},
		},
		{
			Name: "renamer",
			Configuration: func(ctx *HookContext, s *config.Settings) (*config.Settings, error) {
				next := s.Clone()
				next.Name = "renamed"
				return next, nil
			},
		},
	}

	settings := &config.Settings{Name: "original"}
	out := RunConfigurationHooks(testHookContext(), plugins, settings)

	if out.Name != "renamed" {
		t.Errorf("expected renamed settings, got %s", out.Name)
	}
	if settings.Name != "original" {
		t.Error("original settings must stay untouched")
	}
}
