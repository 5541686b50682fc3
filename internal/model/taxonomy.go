package model

import (
	"github.com/google/uuid"
)

// Locale is a question language, e.g. fr_FR.
type Locale struct {
	ID   uuid.UUID `json:"id"`
	Code string    `json:"code"`
	Name string    `json:"name"`
}

// Contest is an optional question source (a real wine contest the question
// was taken from).
type Contest struct {
	ID   uuid.UUID `json:"id"`
	Name string    `json:"name"`
}

// Tag categorizes questions. Tags are hierarchical: asking for a tag selects
// questions carrying that tag or any descendant tag.
type Tag struct {
	ID       uuid.UUID  `json:"id"`
	Name     string     `json:"name"`
	Slug     string     `json:"slug"`
	ParentID *uuid.UUID `json:"parent_id,omitempty"`
}

// TagTree is an in-memory index over the full tag hierarchy. Filters expand
// their tag sets through it before querying, instead of walking the tree
// per-question at query time.
type TagTree struct {
	byID     map[uuid.UUID]*Tag
	children map[uuid.UUID][]uuid.UUID
	roots    []uuid.UUID
}

// NewTagTree builds a TagTree from a flat tag list. Tags referencing an
// unknown parent are treated as roots.
func NewTagTree(tags []Tag) *TagTree {
	t := &TagTree{
		byID:     make(map[uuid.UUID]*Tag, len(tags)),
		children: make(map[uuid.UUID][]uuid.UUID),
	}
	for i := range tags {
		t.byID[tags[i].ID] = &tags[i]
	}
	for i := range tags {
		tag := &tags[i]
		if tag.ParentID != nil {
			if _, ok := t.byID[*tag.ParentID]; ok {
				t.children[*tag.ParentID] = append(t.children[*tag.ParentID], tag.ID)
				continue
			}
		}
		t.roots = append(t.roots, tag.ID)
	}
	return t
}

// Get returns the tag with the given ID, or nil.
func (t *TagTree) Get(id uuid.UUID) *Tag {
	return t.byID[id]
}

// Roots returns the IDs of the top-level tags.
func (t *TagTree) Roots() []uuid.UUID {
	return t.roots
}

// Children returns the direct children of a tag.
func (t *TagTree) Children(id uuid.UUID) []uuid.UUID {
	return t.children[id]
}

// Descendants returns every tag below the given one, at all levels.
// The tag itself is not included.
func (t *TagTree) Descendants(id uuid.UUID) []uuid.UUID {
	var out []uuid.UUID
	stack := append([]uuid.UUID(nil), t.children[id]...)
	for len(stack) > 0 {
		cur := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		out = append(out, cur)
		stack = append(stack, t.children[cur]...)
	}
	return out
}

// Expand returns the given tag set plus all descendants of each member.
// Unknown IDs pass through unchanged so the caller's query simply matches
// nothing for them.
func (t *TagTree) Expand(ids []uuid.UUID) []uuid.UUID {
	seen := make(map[uuid.UUID]struct{}, len(ids))
	var out []uuid.UUID
	add := func(id uuid.UUID) {
		if _, ok := seen[id]; !ok {
			seen[id] = struct{}{}
			out = append(out, id)
		}
	}
	for _, id := range ids {
		add(id)
		for _, d := range t.Descendants(id) {
			add(d)
		}
	}
	return out
}

// ReducedTag is one entry of a display-reduced tag set: the kept tag and how
// many tags of the original set it stands for.
type ReducedTag struct {
	Tag     Tag `json:"tag"`
	Covered int `json:"covered"`
}

// Reduce collapses a tag set to its minimal display form: when a tag and all
// of its descendants are present, only the tag is kept (covering the whole
// subtree); tags whose ancestor is also present are dropped as implied.
func (t *TagTree) Reduce(ids []uuid.UUID) []ReducedTag {
	inSet := make(map[uuid.UUID]struct{}, len(ids))
	for _, id := range ids {
		if t.byID[id] != nil {
			inSet[id] = struct{}{}
		}
	}

	kept := make(map[uuid.UUID]int, len(inSet))
	for id := range inSet {
		kept[id] = 1
	}

	for id := range inSet {
		descendants := t.Descendants(id)
		if len(descendants) == 0 {
			continue
		}
		allIn := true
		for _, d := range descendants {
			if _, ok := inSet[d]; !ok {
				allIn = false
				break
			}
		}
		if allIn {
			kept[id] = 1 + len(descendants)
			for _, d := range descendants {
				delete(kept, d)
			}
		}
	}

	// Drop any kept tag with an ancestor also in the original set.
	for id := range kept {
		for cur := t.byID[id]; cur != nil && cur.ParentID != nil; {
			parent := t.byID[*cur.ParentID]
			if parent == nil {
				break
			}
			if _, ok := inSet[parent.ID]; ok {
				delete(kept, id)
				break
			}
			cur = parent
		}
	}

	out := make([]ReducedTag, 0, len(kept))
	for id, covered := range kept {
		out = append(out, ReducedTag{Tag: *t.byID[id], Covered: covered})
	}
	return out
}
