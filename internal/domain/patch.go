package domain

import (
	"encoding/json"
	"fmt"
	"sort"
	"strings"
)

// ErrMissingParent is returned when a dotted write targets a field whose parent object no longer exists,
// e.g. a vote landing after the audience request was cleared.
var ErrMissingParent = fmt.Errorf("%w: patch target no longer exists", ErrInvalidState)

// Patch is a set of field writes keyed by dotted document path ("players.p1.score").
// A nil value writes null.
type Patch map[string]any

// Merge copies other into p, overwriting duplicate paths.
func (p Patch) Merge(other Patch) Patch {
	if p == nil {
		p = Patch{}
	}
	for k, v := range other {
		p[k] = v
	}
	return p
}

// Paths returns the write paths, parents before children.
func (p Patch) Paths() []string {
	paths := make([]string, 0, len(p))
	for k := range p {
		paths = append(paths, k)
	}
	sort.Slice(paths, func(i, j int) bool {
		di, dj := strings.Count(paths[i], "."), strings.Count(paths[j], ".")
		if di != dj {
			return di < dj
		}
		return paths[i] < paths[j]
	})
	return paths
}

// Apply returns room with every write in p applied. The input room is not modified.
func (p Patch) Apply(room Room) (Room, error) {
	doc, err := ToDocument(room)
	if err != nil {
		return Room{}, err
	}
	if err := p.ApplyDocument(doc); err != nil {
		return Room{}, err
	}
	return FromDocument(doc)
}

// ApplyDocument applies the writes to a generic JSON document in place.
func (p Patch) ApplyDocument(doc map[string]any) error {
	for _, path := range p.Paths() {
		value, err := normalize(p[path])
		if err != nil {
			return fmt.Errorf("%w: %s: %v", ErrInvalidPatch, path, err)
		}
		if err := setPath(doc, path, value); err != nil {
			return err
		}
	}
	return nil
}

// ToDocument converts a room into its generic JSON document form.
func ToDocument(room Room) (map[string]any, error) {
	raw, err := json.Marshal(room)
	if err != nil {
		return nil, fmt.Errorf("marshal room: %w", err)
	}
	doc := map[string]any{}
	if err := json.Unmarshal(raw, &doc); err != nil {
		return nil, fmt.Errorf("unmarshal room document: %w", err)
	}
	return doc, nil
}

// FromDocument converts a generic JSON document back into a room.
func FromDocument(doc map[string]any) (Room, error) {
	raw, err := json.Marshal(doc)
	if err != nil {
		return Room{}, fmt.Errorf("marshal room document: %w", err)
	}
	var room Room
	if err := json.Unmarshal(raw, &room); err != nil {
		return Room{}, fmt.Errorf("%w: %v", ErrInvalidPatch, err)
	}
	return room, nil
}

func setPath(doc map[string]any, path string, value any) error {
	segments := strings.Split(path, ".")
	for _, seg := range segments {
		if seg == "" {
			return fmt.Errorf("%w: empty segment in %q", ErrInvalidPatch, path)
		}
	}
	if _, ok := doc[segments[0]]; !ok {
		return fmt.Errorf("%w: unknown field %q", ErrInvalidPatch, segments[0])
	}
	cur := doc
	for _, seg := range segments[:len(segments)-1] {
		next, ok := cur[seg].(map[string]any)
		if !ok {
			return fmt.Errorf("%w: %s", ErrMissingParent, path)
		}
		cur = next
	}
	cur[segments[len(segments)-1]] = value
	return nil
}

func normalize(v any) (any, error) {
	if v == nil {
		return nil, nil
	}
	raw, err := json.Marshal(v)
	if err != nil {
		return nil, err
	}
	var out any
	if err := json.Unmarshal(raw, &out); err != nil {
		return nil, err
	}
	return out, nil
}
