// Package events implements the scoped listener registry: central
// bookkeeping for every event listener in the application so teardown
// is complete and idempotent. Components are addressed by hierarchical
// dot-path targets; dispatched events bubble from the target to the
// root and can be cancelled along the way.
package events

import (
	"context"
	"log/slog"
	"sort"
	"sync"
)

// Handler processes one event delivery. A returned error is logged and
// swallowed; it never interrupts dispatch. Panics are contained the
// same way.
type Handler func(*Event) error

// Option adjusts a single listener registration.
type Option func(*listenerOptions)

type listenerOptions struct {
	once bool
}

// Once removes the listener after its first invocation.
func Once() Option {
	return func(o *listenerOptions) { o.once = true }
}

// DispatchOption adjusts a synthesized event before delivery.
type DispatchOption func(*Event)

// NoBubble keeps the event on its target instead of walking ancestors.
func NoBubble() DispatchOption {
	return func(e *Event) { e.bubbles = false }
}

// NotCancelable makes PreventDefault a no-op for this event.
func NotCancelable() DispatchOption {
	return func(e *Event) { e.cancelable = false }
}

type listener struct {
	id       int64
	target   Target
	typ      EventType
	handler  Handler
	selector string // non-empty for delegated listeners
	once     bool
	ctx      context.Context
	removed  bool
}

// Registry owns every listener registration. All listeners share one
// cancellation context so a registry-wide teardown is a single cancel;
// groups derive their own context from it for scoped teardown.
type Registry struct {
	mu        sync.Mutex
	logger    *slog.Logger
	targets   map[Target]bool
	listeners map[Target]map[EventType][]*listener
	byID      map[int64]*listener
	groups    map[string]*Group
	nextID    int64
	ctx       context.Context
	cancel    context.CancelFunc
}

// NewRegistry creates an empty registry.
func NewRegistry(logger *slog.Logger) *Registry {
	ctx, cancel := context.WithCancel(context.Background())
	return &Registry{
		logger:    logger,
		targets:   map[Target]bool{},
		listeners: map[Target]map[EventType][]*listener{},
		byID:      map[int64]*listener{},
		groups:    map[string]*Group{},
		ctx:       ctx,
		cancel:    cancel,
	}
}

// RegisterTarget announces a component node. Ancestors are registered
// implicitly; a child cannot exist without its chain.
func (r *Registry) RegisterTarget(t Target) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.registerLocked(t)
}

func (r *Registry) registerLocked(t Target) {
	for cur := t; cur != ""; cur = cur.Parent() {
		r.targets[cur] = true
	}
}

// UnregisterTarget removes a component node and its whole subtree,
// detaching any listeners bound beneath it.
func (r *Registry) UnregisterTarget(t Target) {
	r.mu.Lock()
	defer r.mu.Unlock()

	for known := range r.targets {
		if t.Contains(known) {
			delete(r.targets, known)
			for _, list := range r.listeners[known] {
				for _, l := range list {
					l.removed = true
					delete(r.byID, l.id)
				}
			}
			delete(r.listeners, known)
		}
	}
}

// AddListener binds handler to events of type typ on target. The
// target is either a Target (taken as-is, like holding the element) or
// a selector string resolved against registered targets; an unresolved
// selector logs a warning and yields a no-op remover, never an error.
// The returned remover detaches exactly this listener and is safe to
// call repeatedly.
func (r *Registry) AddListener(target any, typ EventType, handler Handler, opts ...Option) func() {
	return r.add(target, typ, handler, "", r.ctx, nil, opts)
}

// AddDelegatedListener binds one real listener on container. For each
// event bubbling through container, the handler runs only when some
// node between the event's target and the container matches selector,
// and receives that node as CurrentTarget. Non-matching events are
// silently ignored.
func (r *Registry) AddDelegatedListener(container any, selector string, typ EventType, handler Handler, opts ...Option) func() {
	return r.add(container, typ, handler, selector, r.ctx, nil, opts)
}

func (r *Registry) add(target any, typ EventType, handler Handler, selector string, ctx context.Context, g *Group, opts []Option) func() {
	var lo listenerOptions
	for _, opt := range opts {
		opt(&lo)
	}

	r.mu.Lock()
	t, ok := r.resolveLocked(target)
	if !ok {
		r.mu.Unlock()
		r.logger.Warn("listener target not found", "target", target, "type", string(typ))
		return func() {}
	}

	r.nextID++
	l := &listener{
		id:       r.nextID,
		target:   t,
		typ:      typ,
		handler:  handler,
		selector: selector,
		once:     lo.once,
		ctx:      ctx,
	}
	if r.listeners[t] == nil {
		r.listeners[t] = map[EventType][]*listener{}
	}
	r.listeners[t][typ] = append(r.listeners[t][typ], l)
	r.byID[l.id] = l
	r.mu.Unlock()

	// Outside the registry lock: track locks the group, and RemoveAll
	// locks group then registry.
	if g != nil {
		g.track(l.id)
	}

	id := l.id
	return func() { r.removeByID(id) }
}

// resolveLocked maps a target argument to a registered node. A Target
// value registers itself on first use; a string resolves exact-first,
// then as a selector against known targets in stable order.
func (r *Registry) resolveLocked(target any) (Target, bool) {
	switch v := target.(type) {
	case Target:
		r.registerLocked(v)
		return v, true
	case string:
		t := Target(v)
		if r.targets[t] {
			return t, true
		}
		known := make([]Target, 0, len(r.targets))
		for kt := range r.targets {
			known = append(known, kt)
		}
		sort.Slice(known, func(i, j int) bool { return known[i] < known[j] })
		for _, kt := range known {
			if kt.MatchesSelector(v) {
				return kt, true
			}
		}
		return "", false
	default:
		return "", false
	}
}

func (r *Registry) removeByID(id int64) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.removeLocked(id)
}

func (r *Registry) removeLocked(id int64) {
	l, ok := r.byID[id]
	if !ok {
		return
	}
	l.removed = true
	delete(r.byID, id)

	list := r.listeners[l.target][l.typ]
	for i, cand := range list {
		if cand.id == id {
			r.listeners[l.target][l.typ] = append(list[:i:i], list[i+1:]...)
			break
		}
	}
	if len(r.listeners[l.target][l.typ]) == 0 {
		delete(r.listeners[l.target], l.typ)
		if len(r.listeners[l.target]) == 0 {
			delete(r.listeners, l.target)
		}
	}
}

// Group returns the named listener group, creating it on first use.
func (r *Registry) Group(name string) *Group {
	r.mu.Lock()
	defer r.mu.Unlock()

	if g, ok := r.groups[name]; ok {
		return g
	}
	ctx, cancel := context.WithCancel(r.ctx)
	g := &Group{name: name, registry: r, ctx: ctx, cancel: cancel}
	r.groups[name] = g
	return g
}

// RemoveAllListeners detaches every listener in one shared-context
// cancel and resets the registry's bookkeeping. Registered targets
// survive; new listeners may be added afterwards.
func (r *Registry) RemoveAllListeners() {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.cancel()
	r.ctx, r.cancel = context.WithCancel(context.Background())
	r.listeners = map[Target]map[EventType][]*listener{}
	r.byID = map[int64]*listener{}
	r.groups = map[string]*Group{}
}

// ListenerCount returns the number of live listeners.
func (r *Registry) ListenerCount() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.byID)
}

// Dispatch synthesizes an event of type typ carrying detail and
// delivers it starting at target, then upward through each ancestor
// while propagation continues. Events bubble and are cancelable unless
// options say otherwise. The return value is false when some listener
// called PreventDefault. Dispatching at an unresolvable target logs
// and reports true.
func (r *Registry) Dispatch(target any, typ EventType, detail any, opts ...DispatchOption) bool {
	r.mu.Lock()
	t, ok := r.resolveLocked(target)
	r.mu.Unlock()
	if !ok {
		r.logger.Warn("dispatch target not found", "target", target, "type", string(typ))
		return true
	}

	e := &Event{
		Type:       typ,
		Target:     t,
		Detail:     detail,
		bubbles:    true,
		cancelable: true,
	}
	for _, opt := range opts {
		opt(e)
	}

	node := t
	for {
		r.invokeAt(node, e)
		if e.stopped || !e.bubbles || node == "" {
			break
		}
		node = node.Parent()
	}
	return !e.defaultPrevented
}

// invokeAt runs the listeners bound at node for the event's type plus
// wildcard listeners, snapshotting under the lock so handlers may add
// or remove listeners freely.
func (r *Registry) invokeAt(node Target, e *Event) {
	r.mu.Lock()
	var snapshot []*listener
	if byType := r.listeners[node]; byType != nil {
		snapshot = append(snapshot, byType[e.Type]...)
		if e.Type != AnyEvent {
			snapshot = append(snapshot, byType[AnyEvent]...)
		}
	}
	r.mu.Unlock()

	for _, l := range snapshot {
		r.mu.Lock()
		dead := l.removed || l.ctx.Err() != nil
		if !dead && l.once {
			r.removeLocked(l.id)
		}
		r.mu.Unlock()
		if dead {
			continue
		}

		e.CurrentTarget = node
		if l.selector != "" {
			matched, ok := matchDelegated(e.Target, node, l.selector)
			if !ok {
				continue
			}
			e.CurrentTarget = matched
		}

		r.safeInvoke(l, e)
	}
}

// matchDelegated walks from the event target up toward the container,
// returning the nearest node matching selector.
func matchDelegated(target, container Target, selector string) (Target, bool) {
	for cur := target; ; cur = cur.Parent() {
		if !container.Contains(cur) {
			break
		}
		if cur.MatchesSelector(selector) {
			return cur, true
		}
		if cur == "" {
			break
		}
	}
	return "", false
}

func (r *Registry) safeInvoke(l *listener, e *Event) {
	defer func() {
		if rec := recover(); rec != nil {
			r.logger.Error("event handler panicked",
				"target", string(l.target),
				"type", string(l.typ),
				"panic", rec,
			)
		}
	}()
	if err := l.handler(e); err != nil {
		r.logger.Error("event handler failed",
			"target", string(l.target),
			"type", string(l.typ),
			"error", err,
		)
	}
}

// Group is a handle for bulk-removable listener registrations. All of
// a group's listeners hang off one derived context, so RemoveAll is a
// single cancel plus bookkeeping.
type Group struct {
	name     string
	registry *Registry
	ctx      context.Context
	cancel   context.CancelFunc

	mu      sync.Mutex
	ids     []int64
	removed bool
}

// Name returns the group's name.
func (g *Group) Name() string { return g.name }

// Add registers a listener owned by this group.
func (g *Group) Add(target any, typ EventType, handler Handler, opts ...Option) func() {
	if g.done() {
		g.registry.logger.Warn("listener added to removed group", "group", g.name)
		return func() {}
	}
	return g.registry.add(target, typ, handler, "", g.ctx, g, opts)
}

// AddDelegated registers a delegated listener owned by this group.
func (g *Group) AddDelegated(container any, selector string, typ EventType, handler Handler, opts ...Option) func() {
	if g.done() {
		g.registry.logger.Warn("listener added to removed group", "group", g.name)
		return func() {}
	}
	return g.registry.add(container, typ, handler, selector, g.ctx, g, opts)
}

// RemoveAll detaches every listener registered through this group and
// leaves other groups' listeners alone. Calling it again is a no-op.
func (g *Group) RemoveAll() {
	g.mu.Lock()
	if g.removed {
		g.mu.Unlock()
		return
	}
	g.removed = true
	ids := g.ids
	g.ids = nil
	g.mu.Unlock()

	g.cancel()

	g.registry.mu.Lock()
	for _, id := range ids {
		g.registry.removeLocked(id)
	}
	delete(g.registry.groups, g.name)
	g.registry.mu.Unlock()
}

func (g *Group) track(id int64) {
	g.mu.Lock()
	if g.removed {
		g.mu.Unlock()
		g.registry.removeByID(id)
		return
	}
	g.ids = append(g.ids, id)
	g.mu.Unlock()
}

func (g *Group) done() bool {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.removed
}
