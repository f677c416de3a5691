// Package render turns a registry snapshot into frames and pushes them to a pixel sink on a fixed cadence.
//
// [Compose] lays segments end to end in registry order: the first segment covers pixels [0, length), and each
// following one starts where the previous ended. [Loop] repeats clock → snapshot → compose → sink every tick.
package render
