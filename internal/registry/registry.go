// Package registry implements the two near-identical repo/module
// indexes the engine keeps — one for checks, one for contexts — as a
// single generic type instantiated twice, rather than hand-duplicating
// the bookkeeping the way the source's two module-level singletons do.
package registry

import "sync"

// Named is the minimum an instance must offer to live in a Registry.
type Named interface {
	Name() string
}

type bucketKey struct {
	repo   string
	module string
}

// Registry maps repo-path → module-id → ordered sequence of owned
// instances. An instance appears in at most one (repo, module)
// bucket; Extend replaces a bucket wholesale rather than merging it.
type Registry[T Named] struct {
	mu      sync.RWMutex
	buckets map[bucketKey][]T
	order   []bucketKey // insertion order of buckets, for stable iteration
}

// New returns an empty Registry.
func New[T Named]() *Registry[T] {
	return &Registry[T]{buckets: make(map[bucketKey][]T)}
}

// Extend replaces the (repo, module) bucket with instances.
func (r *Registry[T]) Extend(instances []T, module, repo string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	key := bucketKey{repo: repo, module: module}
	if _, exists := r.buckets[key]; !exists {
		r.order = append(r.order, key)
	}
	r.buckets[key] = append([]T(nil), instances...)
}

// GetByRepo flattens every module bucket belonging to repo, in
// insertion order.
func (r *Registry[T]) GetByRepo(repo string) []T {
	r.mu.RLock()
	defer r.mu.RUnlock()
	var out []T
	for _, key := range r.order {
		if key.repo == repo {
			out = append(out, r.buckets[key]...)
		}
	}
	return out
}

// GetAll flattens every bucket, in insertion order.
func (r *Registry[T]) GetAll() []T {
	r.mu.RLock()
	defer r.mu.RUnlock()
	var out []T
	for _, key := range r.order {
		out = append(out, r.buckets[key]...)
	}
	return out
}

// GetByName linear-scans for the first instance named name. If repo
// is non-empty, only that repo's buckets are searched.
func (r *Registry[T]) GetByName(name, repo string) (T, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	for _, key := range r.order {
		if repo != "" && key.repo != repo {
			continue
		}
		for _, inst := range r.buckets[key] {
			if inst.Name() == name {
				return inst, true
			}
		}
	}
	var zero T
	return zero, false
}

// Remove deletes the first instance equal to target found within
// repo's buckets. Equality is by pointer identity for pointer types,
// the natural case since Registry is built to hold *Check/*Context.
func (r *Registry[T]) Remove(target T, repo string) bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, key := range r.order {
		if repo != "" && key.repo != repo {
			continue
		}
		bucket := r.buckets[key]
		for i, inst := range bucket {
			if any(inst) == any(target) {
				r.buckets[key] = append(bucket[:i:i], bucket[i+1:]...)
				return true
			}
		}
	}
	return false
}

// Clear empties the registry.
func (r *Registry[T]) Clear() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.buckets = make(map[bucketKey][]T)
	r.order = nil
}

// Len returns the total number of instances across every bucket.
func (r *Registry[T]) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	n := 0
	for _, bucket := range r.buckets {
		n += len(bucket)
	}
	return n
}
