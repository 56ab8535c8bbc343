package ledger

import (
	"sort"

	"strainchain/block"
)

// Lineage walks parent-digest pointers from the target back to its
// genesis ancestors and returns the ordered root-to-target path:
// ancestors sorted by generation (chain order breaking ties), target
// last. Records outside the ledger terminate the walk.
func (l *Ledger) Lineage(digest string) ([]*block.Record, error) {
	l.mu.RLock()
	defer l.mu.RUnlock()

	target, err := l.lookupLocked(digest)
	if err != nil {
		return nil, err
	}

	seen := map[string]*block.Record{}
	queue := []*block.Record{target}
	for len(queue) > 0 {
		rec := queue[0]
		queue = queue[1:]
		for _, parentDigest := range []string{rec.ParentDigest1, rec.ParentDigest2} {
			if parentDigest == "" {
				continue
			}
			parent, ok := l.byGenomeDigest[parentDigest]
			if !ok {
				// Parent bred outside this ledger; lineage stops here.
				continue
			}
			if _, dup := seen[parent.BlockDigest]; dup {
				continue
			}
			seen[parent.BlockDigest] = parent
			queue = append(queue, parent)
		}
	}

	ancestors := make([]*block.Record, 0, len(seen))
	for _, rec := range seen {
		ancestors = append(ancestors, rec)
	}
	heights := make(map[string]int, len(l.records))
	for i, rec := range l.records {
		heights[rec.BlockDigest] = i
	}
	sort.Slice(ancestors, func(i, j int) bool {
		if ancestors[i].Generation != ancestors[j].Generation {
			return ancestors[i].Generation < ancestors[j].Generation
		}
		return heights[ancestors[i].BlockDigest] < heights[ancestors[j].BlockDigest]
	})

	return append(ancestors, target), nil
}

// Generation returns the stored generation for a digest, falling back
// to parent recursion when a record carries no stored value.
func (l *Ledger) Generation(digest string) (uint32, error) {
	l.mu.RLock()
	defer l.mu.RUnlock()

	rec, err := l.lookupLocked(digest)
	if err != nil {
		return 0, err
	}
	if rec.IsGenesis() || rec.Generation > 0 {
		return rec.Generation, nil
	}
	return l.recomputeGeneration(rec, map[string]bool{}), nil
}

// recomputeGeneration is 1 + the max parent generation, 0 at genesis.
// The visited set guards against a malformed cyclic reference.
func (l *Ledger) recomputeGeneration(rec *block.Record, visited map[string]bool) uint32 {
	if rec.IsGenesis() || visited[rec.BlockDigest] {
		return 0
	}
	visited[rec.BlockDigest] = true

	var maxParent uint32
	for _, parentDigest := range []string{rec.ParentDigest1, rec.ParentDigest2} {
		if parentDigest == "" {
			continue
		}
		parent, ok := l.byGenomeDigest[parentDigest]
		if !ok {
			continue
		}
		gen := parent.Generation
		if gen == 0 && !parent.IsGenesis() {
			gen = l.recomputeGeneration(parent, visited)
		}
		if gen > maxParent {
			maxParent = gen
		}
	}
	return maxParent + 1
}

// LineageDepth counts the records on the root-to-target path.
func (l *Ledger) LineageDepth(digest string) (int, error) {
	path, err := l.Lineage(digest)
	if err != nil {
		return 0, err
	}
	return len(path), nil
}
