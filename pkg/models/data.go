package models

import "reflect"

// Well-known BlockData keys.
const (
	DataChecked   = "checked"
	DataCollapsed = "collapsed"
	DataLevel     = "level"
	DataLanguage  = "language"
	DataViewID    = "view_id"
)

// BlockData is the kind-specific attribute map of a block.
type BlockData map[string]any

func (d BlockData) Bool(key string) bool {
	v, _ := d[key].(bool)
	return v
}

func (d BlockData) String(key string) string {
	v, _ := d[key].(string)
	return v
}

// Clone deep-copies nested maps and slices.
func (d BlockData) Clone() BlockData {
	if d == nil {
		return nil
	}
	out := make(BlockData, len(d))
	for k, v := range d {
		out[k] = cloneValue(v)
	}
	return out
}

// Equal treats nil and empty maps as equal.
func (d BlockData) Equal(o BlockData) bool {
	if len(d) == 0 && len(o) == 0 {
		return true
	}
	return reflect.DeepEqual(map[string]any(d), map[string]any(o))
}

// Patch returns a copy of d with patch applied. A nil value removes the key.
func (d BlockData) Patch(patch BlockData) BlockData {
	out := d.Clone()
	if out == nil {
		out = BlockData{}
	}
	for k, v := range patch {
		if v == nil {
			delete(out, k)
			continue
		}
		out[k] = cloneValue(v)
	}
	return out
}

// DiffData returns the patch that turns old into updated. Removed keys map
// to nil. The result is empty when both are equal.
func DiffData(old, updated BlockData) BlockData {
	patch := BlockData{}
	for k, v := range updated {
		if ov, ok := old[k]; !ok || !reflect.DeepEqual(ov, v) {
			patch[k] = cloneValue(v)
		}
	}
	for k := range old {
		if _, ok := updated[k]; !ok {
			patch[k] = nil
		}
	}
	return patch
}

func cloneValue(v any) any {
	switch t := v.(type) {
	case map[string]any:
		out := make(map[string]any, len(t))
		for k, e := range t {
			out[k] = cloneValue(e)
		}
		return out
	case BlockData:
		return t.Clone()
	case []any:
		out := make([]any, len(t))
		for i, e := range t {
			out[i] = cloneValue(e)
		}
		return out
	default:
		return v
	}
}
