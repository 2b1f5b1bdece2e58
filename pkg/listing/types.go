package listing

import "reflect"

// Behaviour tags advertised in descriptors.
const (
	BehaviourDirectory       = "DIRECTORY"
	BehaviourPropertyOneMany = "PROPERTY-1:N"
	BehaviourPropertyManyOne = "PROPERTY-N:1"
	BehaviourEventOneToMany  = "EVENT-1:N"
	BehaviourEventManyToOne  = "EVENT-N:1"
)

// BehaviourKey is the descriptor field holding the behaviour tag.
const BehaviourKey = "behaviour"

// Descriptor is a single advertised capability of a name. Only the
// behaviour tag is interpreted; other fields are carried through untouched.
type Descriptor map[string]any

// Behaviour returns the descriptor's behaviour tag, or "" when the tag is
// missing or is not a string.
func (d Descriptor) Behaviour() string {
	if d == nil {
		return ""
	}
	behaviour, _ := d[BehaviourKey].(string)
	return behaviour
}

// Entry is the listing entry for one name. A nil Entry means the name is
// absent.
type Entry []Descriptor

// Directory maps child names to their entries.
type Directory map[string]Entry

// Tree maps directory keys to the last listing seen for that directory.
type Tree map[string]Directory

// Resolution describes how much is known about a path.
type Resolution int

const (
	// Unknown means a directory needed to resolve the path has not been seen.
	Unknown Resolution = iota
	// Absent means the tree is known and the path definitely does not exist.
	Absent
	// Present means the path exists and its entry was returned.
	Present
)

func (r Resolution) String() string {
	switch r {
	case Unknown:
		return "unknown"
	case Absent:
		return "absent"
	case Present:
		return "present"
	default:
		return "invalid"
	}
}

// Equal reports whether two entries are structurally equal. A nil entry is
// only equal to another nil entry.
func Equal(a, b Entry) bool {
	if a == nil || b == nil {
		return a == nil && b == nil
	}
	return reflect.DeepEqual(a, b)
}
