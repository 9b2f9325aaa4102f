// Package tree defines the immutable implicit-function expression tree.
// Trees are structurally shared: subtrees may be referenced from many
// parents, and every transformation returns a new tree.
package tree
