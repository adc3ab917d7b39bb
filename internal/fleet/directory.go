package fleet

import "sync"

// Source supplies an ordered list of host records. The static list and the
// discovery listener both implement it.
type Source interface {
	List() []*HostRecord
}

// Directory merges the static and discovered host lists into one ordered
// view: static entries first, discovered entries after, each sub-list in
// its source's order. Record identity is preserved across refreshes so the
// per-host pollers keep mutating the same object the renderer reads.
type Directory struct {
	mu        sync.Mutex
	static    Source
	discovery Source // nil when discovery is disabled
	known     map[string]*HostRecord
}

// NewDirectory creates a directory over the given sources. discovery may be
// nil, in which case that source is treated as empty.
func NewDirectory(static, discovery Source) *Directory {
	return &Directory{
		static:    static,
		discovery: discovery,
		known:     make(map[string]*HostRecord),
	}
}

// List returns the merged host list. Safe to call while pollers mutate
// individual records.
func (d *Directory) List() []*HostRecord {
	d.mu.Lock()
	defer d.mu.Unlock()

	var out []*HostRecord
	out = d.merge(out, d.static.List())
	if d.discovery != nil {
		out = d.merge(out, d.discovery.List())
	}
	return out
}

func (d *Directory) merge(out []*HostRecord, recs []*HostRecord) []*HostRecord {
	for _, rec := range recs {
		if existing, ok := d.known[rec.Key]; ok {
			out = append(out, existing)
			continue
		}
		d.known[rec.Key] = rec
		out = append(out, rec)
	}
	return out
}

// StaticCount returns how many entries of List belong to the static list.
// The session router uses it to route manual edits to the right source.
func (d *Directory) StaticCount() int {
	return len(d.static.List())
}
