// Package elaborate resolves the optional animation fields of a
// specification to concrete values.
//
// After [Elaborate], every time encoding has a scale type and range, a key
// that is either {field, loop} or explicitly false, and an explicit rescale
// flag; every animation selection has an object-form timer trigger with a
// filter list and an easing; and every animated scope has at least one
// animation selection, synthesized as current_frame_<layer id> when the
// document declares none.
//
// Layers either own their time encoding, when no descendant declares its own,
// or distribute it: each marked child then becomes its own scope whose time
// encoding is the layer's overridden field by field with the child's, and the
// layer's time encoding is removed.
//
// Elaborate is idempotent and never modifies its input.
package elaborate
