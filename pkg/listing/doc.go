// Package listing models the advertised directory tree and resolves paths
// against it.
//
// The tree is published as one listing property per directory. The root
// listing lives under the directory key "" and every other directory under
// its slash-terminated prefix:
//
//	""          -> {"foo": [{"behaviour": "DIRECTORY"}], "baz": [...]}
//	"foo/"      -> {"bar": [{"behaviour": "EVENT-1:N"}]}
//	"foo/bar/"  -> {...}
//
// Each name maps to an Entry: the ordered descriptors advertised for that
// name. A name is traversable when any of its descriptors carries the
// DIRECTORY behaviour.
//
// Everything in this package is pure. Resolve never mutates the tree and
// returns the same answer for the same inputs.
//
// Example:
//
//	tree := listing.Tree{
//	    "":     {"foo": {{"behaviour": listing.BehaviourDirectory}}},
//	    "foo/": {"bar": {{"behaviour": listing.BehaviourEventOneToMany}}},
//	}
//	entry, res := listing.Resolve(tree, "foo/bar")
//	// res == listing.Present, entry[0].Behaviour() == "EVENT-1:N"
package listing
