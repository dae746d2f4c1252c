// Package state implements the observable store that holds all mutable
// application state as a single path-addressed tree. Writes run through
// a middleware pipeline and notify path-scoped subscribers; mutations
// and their notifications complete before the mutating call returns.
package state

import (
	"log/slog"
	"reflect"
	"sort"
	"sync"
	"time"
)

// Callback receives change notifications for a subscribed path.
type Callback func(newValue, oldValue any, path Path)

type subscription struct {
	id int64
	fn Callback
}

type notification struct {
	fn       Callback
	path     Path
	newValue any
	oldValue any
}

// Store is the single source of truth for application state. It is safe
// for concurrent use; the tree is written copy-on-write along the
// mutated spine, so readers never observe a partially applied write.
// Values placed in the tree are treated as immutable by convention:
// replace, never mutate in place. Callbacks run outside the lock, so a
// callback may call back into the store.
type Store struct {
	mu     sync.Mutex
	tree   map[string]any
	mws    []Middleware
	subs   map[Path][]subscription
	nextID int64
	logger *slog.Logger
}

// New creates a store seeded with DefaultTree.
func New(logger *slog.Logger) *Store {
	return NewWithTree(DefaultTree(), logger)
}

// NewWithTree creates a store seeded with the given tree. The tree is
// deep-copied so the caller's map stays independent.
func NewWithTree(tree map[string]any, logger *slog.Logger) *Store {
	return &Store{
		tree:   deepCopy(tree).(map[string]any),
		subs:   map[Path][]subscription{},
		logger: logger,
	}
}

// Use appends a middleware to the pipeline. Middleware run in
// registration order inside every write.
func (s *Store) Use(mw Middleware) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.mws = append(s.mws, mw)
}

// Get returns the value at path, the whole tree for the empty path, and
// nil for any unresolved segment. It never fails.
func (s *Store) Get(path Path) any {
	s.mu.Lock()
	defer s.mu.Unlock()
	return resolve(s.tree, path)
}

// Set writes value at path after running the middleware pipeline.
// Missing intermediate nodes are created as empty mappings. Exact-path
// subscribers fire first, then every strict ancestor from nearest to
// root (the empty path counts as the outermost ancestor), each with its
// own accurate old and new values. Returns false when a middleware
// vetoed the write.
func (s *Store) Set(path Path, value any, opts ...SetOption) bool {
	if path == "" {
		s.logger.Warn("refusing to replace the state root via Set; use RestoreFromSnapshot")
		return false
	}

	s.mu.Lock()
	oldRoot := s.tree
	action := &Action{
		Type:      ActionSetState,
		Path:      path,
		Value:     value,
		OldValue:  resolve(oldRoot, path),
		Timestamp: time.Now(),
	}
	for _, opt := range opts {
		opt(action)
	}

	action = s.runMiddleware(action)
	if action == nil {
		s.mu.Unlock()
		return false
	}
	if action.Path == "" {
		s.logger.Warn("middleware rewrote action to the empty path; dropping write")
		s.mu.Unlock()
		return false
	}

	// Middleware may have rewritten the path or value.
	s.tree = setAtPath(oldRoot, action.Path.segments(), action.Value)
	pending := s.collectSetNotifications(oldRoot, s.tree, action.Path)
	s.mu.Unlock()

	deliver(pending)
	return true
}

// BatchUpdate applies several path to value writes as one unit. Pairs
// are applied in lexicographic path order so runs are deterministic;
// each pair runs through the middleware pipeline exactly like Set, and
// a veto drops just that pair. Exact-path subscribers fire per pair in
// application order, then each affected ancestor fires once with the
// tree's overall before and after values. Returns the number of writes
// that landed.
func (s *Store) BatchUpdate(updates map[Path]any, opts ...SetOption) int {
	if len(updates) == 0 {
		return 0
	}

	paths := make([]Path, 0, len(updates))
	for p := range updates {
		if p == "" {
			s.logger.Warn("ignoring empty path in batch update")
			continue
		}
		paths = append(paths, p)
	}
	sort.Slice(paths, func(i, j int) bool { return paths[i] < paths[j] })

	s.mu.Lock()
	firstRoot := s.tree
	applied := 0
	var pending []notification
	written := make([]Path, 0, len(paths))

	for _, p := range paths {
		prevRoot := s.tree
		action := &Action{
			Type:      ActionSetState,
			Path:      p,
			Value:     updates[p],
			OldValue:  resolve(prevRoot, p),
			Timestamp: time.Now(),
			Meta:      map[string]any{"batch": true},
		}
		for _, opt := range opts {
			opt(action)
		}
		action = s.runMiddleware(action)
		if action == nil {
			continue
		}
		if action.Path == "" {
			s.logger.Warn("middleware rewrote action to the empty path; dropping write")
			continue
		}
		effective := action.Path
		s.tree = setAtPath(prevRoot, effective.segments(), action.Value)
		applied++
		written = append(written, effective)
		for _, sub := range s.subs[effective] {
			pending = append(pending, notification{sub.fn, effective, action.Value, resolve(prevRoot, effective)})
		}
	}

	pending = append(pending, s.collectBatchAncestors(firstRoot, s.tree, written)...)
	s.mu.Unlock()

	deliver(pending)
	return applied
}

// Subscribe registers fn for changes at path. Multiple callbacks per
// path fire in registration order. The returned function removes the
// subscription and is safe to call more than once.
func (s *Store) Subscribe(path Path, fn Callback) func() {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.nextID++
	id := s.nextID
	s.subs[path] = append(s.subs[path], subscription{id: id, fn: fn})

	return func() {
		s.mu.Lock()
		defer s.mu.Unlock()
		list := s.subs[path]
		for i, sub := range list {
			if sub.id == id {
				s.subs[path] = append(list[:i:i], list[i+1:]...)
				break
			}
		}
		if len(s.subs[path]) == 0 {
			delete(s.subs, path)
		}
	}
}

// Reset replaces the whole tree with DefaultTree and fires every
// registered subscriber with the value at its path before and after.
func (s *Store) Reset() {
	s.mu.Lock()
	oldRoot := s.tree
	s.tree = DefaultTree()

	var pending []notification
	for _, p := range s.sortedSubPaths() {
		for _, sub := range s.subs[p] {
			pending = append(pending, notification{sub.fn, p, resolve(s.tree, p), resolve(oldRoot, p)})
		}
	}
	s.mu.Unlock()

	deliver(pending)
}

// ResetPath clears the value at path and notifies only that exact
// path's subscribers. Ancestors deliberately stay quiet here; a
// targeted reset is a local repair, not a tree-wide change.
func (s *Store) ResetPath(path Path) {
	if path == "" {
		s.Reset()
		return
	}

	s.mu.Lock()
	oldValue := resolve(s.tree, path)
	s.tree = removeAtPath(s.tree, path.segments())

	var pending []notification
	for _, sub := range s.subs[path] {
		pending = append(pending, notification{sub.fn, path, nil, oldValue})
	}
	s.mu.Unlock()

	deliver(pending)
}

// Snapshot returns a deep copy of the whole tree.
func (s *Store) Snapshot() map[string]any {
	s.mu.Lock()
	defer s.mu.Unlock()
	return deepCopy(s.tree).(map[string]any)
}

// RestoreFromSnapshot replaces the tree with a deep copy of snap and
// fires only the subscribers whose resolved value actually changed,
// compared deeply. Restoring the current state is a silent no-op.
func (s *Store) RestoreFromSnapshot(snap map[string]any) {
	s.mu.Lock()
	oldRoot := s.tree
	s.tree = deepCopy(snap).(map[string]any)

	var pending []notification
	for _, p := range s.sortedSubPaths() {
		oldValue := resolve(oldRoot, p)
		newValue := resolve(s.tree, p)
		if reflect.DeepEqual(oldValue, newValue) {
			continue
		}
		for _, sub := range s.subs[p] {
			pending = append(pending, notification{sub.fn, p, newValue, oldValue})
		}
	}
	s.mu.Unlock()

	deliver(pending)
}

// runMiddleware pushes the action through the pipeline. A nil return
// vetoes the write. A panicking middleware is logged and skipped, so
// the action proceeds as it stood before that middleware ran.
func (s *Store) runMiddleware(action *Action) *Action {
	for _, mw := range s.mws {
		next, ok := s.runOne(mw, action)
		if !ok {
			continue
		}
		if next == nil {
			s.logger.Debug("state write vetoed by middleware", "path", action.Path.String())
			return nil
		}
		action = next
	}
	return action
}

func (s *Store) runOne(mw Middleware, action *Action) (result *Action, ok bool) {
	defer func() {
		if r := recover(); r != nil {
			s.logger.Error("state middleware panicked", "path", action.Path.String(), "panic", r)
			ok = false
		}
	}()
	return mw(action), true
}

func (s *Store) collectSetNotifications(oldRoot, newRoot map[string]any, path Path) []notification {
	var pending []notification
	newValue := resolve(newRoot, path)
	oldValue := resolve(oldRoot, path)
	for _, sub := range s.subs[path] {
		pending = append(pending, notification{sub.fn, path, newValue, oldValue})
	}
	for _, anc := range path.ancestors() {
		subs := s.subs[anc]
		if len(subs) == 0 {
			continue
		}
		ancNew := resolve(newRoot, anc)
		ancOld := resolve(oldRoot, anc)
		for _, sub := range subs {
			pending = append(pending, notification{sub.fn, anc, ancNew, ancOld})
		}
	}
	return pending
}

// collectBatchAncestors gathers each distinct ancestor of the written
// paths once, deepest first so notification flows inward to the root.
func (s *Store) collectBatchAncestors(firstRoot, lastRoot map[string]any, written []Path) []notification {
	seen := map[Path]bool{}
	var order []Path
	for _, p := range written {
		for _, anc := range p.ancestors() {
			if !seen[anc] {
				seen[anc] = true
				order = append(order, anc)
			}
		}
	}
	sort.SliceStable(order, func(i, j int) bool {
		di, dj := len(order[i].segments()), len(order[j].segments())
		if di != dj {
			return di > dj
		}
		return order[i] < order[j]
	})

	var pending []notification
	for _, anc := range order {
		subs := s.subs[anc]
		if len(subs) == 0 {
			continue
		}
		ancNew := resolve(lastRoot, anc)
		ancOld := resolve(firstRoot, anc)
		for _, sub := range subs {
			pending = append(pending, notification{sub.fn, anc, ancNew, ancOld})
		}
	}
	return pending
}

func (s *Store) sortedSubPaths() []Path {
	paths := make([]Path, 0, len(s.subs))
	for p := range s.subs {
		paths = append(paths, p)
	}
	sort.Slice(paths, func(i, j int) bool { return paths[i] < paths[j] })
	return paths
}

// deliver fires notifications in order, outside the store lock, so a
// callback may call back into the store.
func deliver(pending []notification) {
	for _, n := range pending {
		n.fn(n.newValue, n.oldValue, n.path)
	}
}

// resolve walks the tree to the value at p, returning nil when any
// segment is missing or a non-mapping stands in the way.
func resolve(root map[string]any, p Path) any {
	if p == "" {
		return root
	}
	var cur any = root
	for _, seg := range p.segments() {
		node, ok := cur.(map[string]any)
		if !ok {
			return nil
		}
		cur, ok = node[seg]
		if !ok {
			return nil
		}
	}
	return cur
}

// setAtPath writes value at the segment chain, copying the spine so the
// previous root stays intact. Scalar intermediates are replaced by
// mappings, matching write-creates-missing-nodes semantics.
func setAtPath(root map[string]any, segs []string, value any) map[string]any {
	out := make(map[string]any, len(root)+1)
	for k, v := range root {
		out[k] = v
	}
	if len(segs) == 1 {
		out[segs[0]] = value
		return out
	}
	child, _ := root[segs[0]].(map[string]any)
	if child == nil {
		child = map[string]any{}
	}
	out[segs[0]] = setAtPath(child, segs[1:], value)
	return out
}

// removeAtPath deletes the leaf at the segment chain, copying the
// spine. A chain that does not fully resolve leaves the tree as is.
func removeAtPath(root map[string]any, segs []string) map[string]any {
	if _, exists := root[segs[0]]; !exists {
		return root
	}
	out := make(map[string]any, len(root))
	for k, v := range root {
		out[k] = v
	}
	if len(segs) == 1 {
		delete(out, segs[0])
		return out
	}
	child, ok := root[segs[0]].(map[string]any)
	if !ok {
		return root
	}
	out[segs[0]] = removeAtPath(child, segs[1:])
	return out
}

// deepCopy copies mapping and list nodes; leaf values are shared, which
// is safe under the replace-don't-mutate convention.
func deepCopy(v any) any {
	switch val := v.(type) {
	case map[string]any:
		out := make(map[string]any, len(val))
		for k, item := range val {
			out[k] = deepCopy(item)
		}
		return out
	case []any:
		out := make([]any, len(val))
		for i, item := range val {
			out[i] = deepCopy(item)
		}
		return out
	default:
		return v
	}
}
