// Package hooking lets tracers, monitors, and loggers watch a cache without
// the cache knowing about them. The cache announces what happened at a named
// position, and every attached hook sees it in the order it was attached.
package hooking

import (
	"fmt"
	"slices"
)

// HookPos names a point at which hooks are invoked, such as after an access
// or after a reset.
type HookPos struct {
	Name string
}

func (p *HookPos) String() string {
	return p.Name
}

// HookCtx is what a hook receives. Item is the value that Pos describes, for
// example the access event or the new number of lines.
type HookCtx struct {
	Domain Hookable
	Pos    *HookPos
	Item   any
}

// Hookable is implemented by components that hooks can be attached to.
type Hookable interface {
	AcceptHook(hook Hook)
	HasHook(hook Hook) bool
	NumHooks() int
	Hooks() []Hook
}

// A Hook observes a Hookable.
type Hook interface {
	Func(ctx HookCtx)
}

// HookableBase implements Hookable. Embed it and call InvokeHook.
type HookableBase struct {
	hooks []Hook
}

// NumHooks returns the number of attached hooks.
func (h *HookableBase) NumHooks() int {
	return len(h.hooks)
}

// Hooks returns the attached hooks in attachment order.
func (h *HookableBase) Hooks() []Hook {
	return slices.Clone(h.hooks)
}

// HasHook tells whether hook is already attached.
func (h *HookableBase) HasHook(hook Hook) bool {
	return slices.Contains(h.hooks, hook)
}

// AcceptHook attaches a hook. Attaching the same hook twice panics, since
// it would see every event twice.
func (h *HookableBase) AcceptHook(hook Hook) {
	if h.HasHook(hook) {
		panic(fmt.Sprintf("hook %T is already attached", hook))
	}

	h.hooks = append(h.hooks, hook)
}

// InvokeHook calls every attached hook with ctx.
func (h *HookableBase) InvokeHook(ctx HookCtx) {
	for _, hook := range h.hooks {
		hook.Func(ctx)
	}
}
