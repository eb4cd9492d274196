package spec

import "strconv"

// ScopeID identifies an independently clocked part of a chart. Names created
// for a scope carry its suffix so that sibling scopes never collide.
type ScopeID string

// Root is the scope of a top-level unit or of a layer that owns its time
// encoding.
const Root ScopeID = ""

// Child returns the id of the i-th child scope of the given kind
// ("layer" or "concat").
func (id ScopeID) Child(kind string, i int) ScopeID {
	name := kind + "_" + strconv.Itoa(i)
	if id == Root {
		return ScopeID(name)
	}
	return id + "_" + ScopeID(name)
}

// Suffix is appended to every signal, scale and dataset name of the scope.
func (id ScopeID) Suffix() string {
	if id == Root {
		return ""
	}
	return "_" + string(id)
}

// Name returns base qualified for the scope.
func (id ScopeID) Name(base string) string { return base + id.Suffix() }

// LayerID is the id used for synthesized selection names: "0" for the root.
func (id ScopeID) LayerID() string {
	if id == Root {
		return "0"
	}
	return string(id)
}

// DefaultSelection is the name of the selection synthesized for a scope that
// declares none.
func (id ScopeID) DefaultSelection() string { return "current_frame_" + id.LayerID() }

// IsPlaying is the name of the play/pause checkbox signal of a scope.
func (id ScopeID) IsPlaying() string { return id.Name("is_playing") }
