package listing

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func sampleTree() Tree {
	return Tree{
		"": {
			"foo": {
				{"behaviour": BehaviourPropertyManyOne},
				{"behaviour": BehaviourDirectory},
			},
			"baz": {{"behaviour": BehaviourPropertyOneMany}},
		},
		"foo/": {
			"bar": {{"behaviour": BehaviourEventOneToMany}},
		},
		"qux/": {
			"quo": {{"behaviour": BehaviourEventManyToOne}},
		},
	}
}

func TestResolve(t *testing.T) {
	tree := sampleTree()

	tests := []struct {
		name    string
		tree    Tree
		path    string
		want    Entry
		wantRes Resolution
	}{
		{
			name:    "empty tree",
			tree:    Tree{},
			path:    "qux",
			want:    nil,
			wantRes: Unknown,
		},
		{
			name:    "missing top-level name",
			tree:    tree,
			path:    "qux",
			want:    nil,
			wantRes: Absent,
		},
		{
			name:    "top-level leaf",
			tree:    tree,
			path:    "baz",
			want:    Entry{{"behaviour": BehaviourPropertyOneMany}},
			wantRes: Present,
		},
		{
			name: "top-level directory with extra descriptor",
			tree: tree,
			path: "foo",
			want: Entry{
				{"behaviour": BehaviourPropertyManyOne},
				{"behaviour": BehaviourDirectory},
			},
			wantRes: Present,
		},
		{
			name:    "nested leaf",
			tree:    tree,
			path:    "foo/bar",
			want:    Entry{{"behaviour": BehaviourEventOneToMany}},
			wantRes: Present,
		},
		{
			name:    "cached directory not advertised by parent",
			tree:    tree,
			path:    "qux/quo",
			want:    nil,
			wantRes: Absent,
		},
		{
			name:    "intermediate is a leaf",
			tree:    tree,
			path:    "baz/anything",
			want:    nil,
			wantRes: Absent,
		},
		{
			name:    "nested segment is not a directory",
			tree:    tree,
			path:    "foo/bar/baz",
			want:    nil,
			wantRes: Absent,
		},
		{
			name: "missing root with cached child",
			tree: Tree{
				"foo/": {"bar": {{"behaviour": BehaviourEventOneToMany}}},
			},
			path:    "foo/bar",
			want:    nil,
			wantRes: Unknown,
		},
		{
			name: "directory advertised but listing not yet seen",
			tree: Tree{
				"": {"foo": {{"behaviour": BehaviourDirectory}}},
			},
			path:    "foo/bar",
			want:    nil,
			wantRes: Unknown,
		},
		{
			name: "empty directory listing",
			tree: Tree{
				"":     {"foo": {{"behaviour": BehaviourDirectory}}},
				"foo/": {},
			},
			path:    "foo/bar",
			want:    nil,
			wantRes: Absent,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			entry, res := Resolve(tt.tree, tt.path)
			assert.Equal(t, tt.wantRes, res)
			assert.Equal(t, tt.want, entry)
			assert.Equal(t, tt.want, Lookup(tt.tree, tt.path))
		})
	}
}

func TestResolve_IsPure(t *testing.T) {
	tree := sampleTree()

	first, firstRes := Resolve(tree, "foo/bar")
	second, secondRes := Resolve(tree, "foo/bar")

	assert.Equal(t, firstRes, secondRes)
	assert.True(t, Equal(first, second))
	assert.Equal(t, sampleTree(), tree, "resolve must not mutate the tree")
}

func TestEqual(t *testing.T) {
	a := Entry{{"behaviour": BehaviourEventOneToMany, "description": "x"}}
	b := Entry{{"behaviour": BehaviourEventOneToMany, "description": "x"}}
	c := Entry{{"behaviour": BehaviourEventManyToOne}}

	assert.True(t, Equal(nil, nil))
	assert.True(t, Equal(a, b))
	assert.False(t, Equal(a, c))
	assert.False(t, Equal(a, nil))
	assert.False(t, Equal(nil, Entry{}))
	assert.True(t, Equal(Entry{}, Entry{}))
}

func TestResolutionString(t *testing.T) {
	assert.Equal(t, "unknown", Unknown.String())
	assert.Equal(t, "absent", Absent.String())
	assert.Equal(t, "present", Present.String())
	assert.Equal(t, "invalid", Resolution(99).String())
}
