// Package ui implements a terminal preview of the strip using bubbletea's Elm architecture.
//
// The (view) [Model] loads a snapshot from a [Source], either the local database or a running device, and animates
// it with the same composition code the render loop uses. It shows one row per segment (id, pixel range, current
// color) above a downsampled view of the whole strip.
//
// When the source also exposes a clock ([Clocked]), the preview aligns its animation with the device so both show
// the same phase.
//
// Key bindings: space pauses, r reloads from the source, q quits, with contextual help via charmbracelet/bubbles/help.
package ui
