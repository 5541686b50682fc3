package model

import (
	"testing"

	"github.com/google/uuid"
)

// buildTestTree returns a small hierarchy:
//
//	wines
//	├── reds
//	│   ├── bordeaux
//	│   └── burgundy
//	└── whites
//	regions (root, childless)
func buildTestTree() (*TagTree, map[string]uuid.UUID) {
	ids := map[string]uuid.UUID{
		"wines":    uuid.New(),
		"reds":     uuid.New(),
		"bordeaux": uuid.New(),
		"burgundy": uuid.New(),
		"whites":   uuid.New(),
		"regions":  uuid.New(),
	}
	parent := func(name string) *uuid.UUID {
		id := ids[name]
		return &id
	}
	tags := []Tag{
		{ID: ids["wines"], Name: "Wines", Slug: "wines"},
		{ID: ids["reds"], Name: "Reds", Slug: "reds", ParentID: parent("wines")},
		{ID: ids["bordeaux"], Name: "Bordeaux", Slug: "bordeaux", ParentID: parent("reds")},
		{ID: ids["burgundy"], Name: "Burgundy", Slug: "burgundy", ParentID: parent("reds")},
		{ID: ids["whites"], Name: "Whites", Slug: "whites", ParentID: parent("wines")},
		{ID: ids["regions"], Name: "Regions", Slug: "regions"},
	}
	return NewTagTree(tags), ids
}

func asSet(ids []uuid.UUID) map[uuid.UUID]bool {
	set := make(map[uuid.UUID]bool, len(ids))
	for _, id := range ids {
		set[id] = true
	}
	return set
}

func TestTagTreeDescendants(t *testing.T) {
	tree, ids := buildTestTree()

	got := asSet(tree.Descendants(ids["wines"]))
	for _, name := range []string{"reds", "bordeaux", "burgundy", "whites"} {
		if !got[ids[name]] {
			t.Errorf("descendants of wines missing %s", name)
		}
	}
	if len(got) != 4 {
		t.Errorf("expected 4 descendants of wines, got %d", len(got))
	}
	if got[ids["wines"]] {
		t.Error("a tag must not be its own descendant")
	}

	if ds := tree.Descendants(ids["bordeaux"]); len(ds) != 0 {
		t.Errorf("leaf tag has %d descendants", len(ds))
	}
}

func TestTagTreeExpand(t *testing.T) {
	tree, ids := buildTestTree()

	got := asSet(tree.Expand([]uuid.UUID{ids["reds"], ids["regions"]}))
	for _, name := range []string{"reds", "bordeaux", "burgundy", "regions"} {
		if !got[ids[name]] {
			t.Errorf("expansion missing %s", name)
		}
	}
	if len(got) != 4 {
		t.Errorf("expected 4 expanded tags, got %d", len(got))
	}

	// Unknown IDs pass through so the query simply matches nothing.
	unknown := uuid.New()
	if got := asSet(tree.Expand([]uuid.UUID{unknown})); !got[unknown] {
		t.Error("unknown tag dropped from expansion")
	}
}

func TestTagTreeReduce(t *testing.T) {
	tree, ids := buildTestTree()

	t.Run("fully covered subtree folds into its parent", func(t *testing.T) {
		got := tree.Reduce([]uuid.UUID{ids["reds"], ids["bordeaux"], ids["burgundy"]})
		if len(got) != 1 {
			t.Fatalf("expected 1 reduced entry, got %d", len(got))
		}
		if got[0].Tag.ID != ids["reds"] || got[0].Covered != 3 {
			t.Errorf("expected reds covering 3, got %s covering %d", got[0].Tag.Name, got[0].Covered)
		}
	})

	t.Run("child with present ancestor is dropped as implied", func(t *testing.T) {
		got := tree.Reduce([]uuid.UUID{ids["wines"], ids["bordeaux"]})
		if len(got) != 1 || got[0].Tag.ID != ids["wines"] {
			t.Fatalf("expected only wines to remain, got %+v", got)
		}
	})

	t.Run("unrelated tags stay", func(t *testing.T) {
		got := tree.Reduce([]uuid.UUID{ids["bordeaux"], ids["regions"]})
		if len(got) != 2 {
			t.Fatalf("expected 2 entries, got %d", len(got))
		}
	})
}

func TestTagTreeRootsAndChildren(t *testing.T) {
	tree, ids := buildTestTree()

	roots := asSet(tree.Roots())
	if len(roots) != 2 || !roots[ids["wines"]] || !roots[ids["regions"]] {
		t.Errorf("unexpected roots: %v", tree.Roots())
	}

	children := asSet(tree.Children(ids["wines"]))
	if len(children) != 2 || !children[ids["reds"]] || !children[ids["whites"]] {
		t.Errorf("unexpected children of wines: %v", tree.Children(ids["wines"]))
	}
}
