package listing

// Resolve walks path's ancestor chain through tree and returns its entry.
//
// The result is Unknown when any directory on the chain has not been seen,
// Absent when an intermediate segment is not advertised as a directory or
// the final name is missing from a known directory, and Present otherwise.
func Resolve(tree Tree, path string) (Entry, Resolution) {
	chain := AncestorChain(path)

	for i := 1; i < len(chain); i++ {
		parent, ok := tree[chain[i-1]]
		if !ok {
			return nil, Unknown
		}
		if !parent.HasSubdirectory(BaseName(chain[i][:len(chain[i])-1])) {
			return nil, Absent
		}
	}

	dir, ok := tree[chain[len(chain)-1]]
	if !ok {
		return nil, Unknown
	}
	entry, ok := dir[BaseName(path)]
	if !ok {
		return nil, Absent
	}
	return entry, Present
}

// Lookup resolves path and folds Unknown and Absent into a nil entry.
func Lookup(tree Tree, path string) Entry {
	entry, _ := Resolve(tree, path)
	return entry
}
