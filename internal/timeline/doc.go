// Package timeline models animation tracks over a layer tree.
//
// A Timeline holds ordered Tracks. A Track is a named sequence of Frames
// backed by a Group in the layer tree; a Frame may bind one Leaf of that
// tree as its cel. The same leaf can be bound by several frames, so the
// number of bindings is what decides whether the leaf still belongs in
// the tree. The timeline itself never touches the tree: commands in
// package command keep the two in step.
//
// A frame without a cel shows the nearest cel bound at or before it
// (CelForFrame). UpdateOpacities derives onion-skin display opacities
// for the current track without modifying layer opacity.
package timeline
