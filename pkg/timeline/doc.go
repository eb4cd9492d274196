// Package timeline simulates the animation clock that compiled graphs run,
// frame by frame, without a visualization runtime.
//
// A [Timeline] is built from an elaborated time encoding, the scope's
// driving animation selection and the rows of the animated dataset. It maps
// a clock reading to a [Frame]: the eased clock, the current and next
// keyframe values and the tween progress between them, following the same
// rules as the emitted signals:
//
//   - band time scales step through the sorted keyframe values, one band per
//     keyframe;
//   - linear time scales invert the eased clock into the time domain and
//     pick the last keyframe passed;
//   - the next keyframe after the last is the first when the key loops and
//     the last otherwise.
//
// A [Player] advances a clock in wall-clock steps, wrapping past the end of
// the range and holding on keyframes with pauses. [Join] pairs the rows of
// two keyframes by key the way keyed interpolation does, and [Summarize]
// reports hold-time statistics for previews.
package timeline
