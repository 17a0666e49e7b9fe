// Package vdiff compares scene documents.
//
// The engine snapshots a document into a flat, hashable form, then either
// folds the snapshot into a single content digest or diffs two snapshots
// into an added/removed/changed report. Comparison semantics are governed
// by a policy of excluded collections and property paths; the policy's own
// digest travels with every hash so consumers can detect semantic drift.
//
// Construct an Engine around a document.Host and use the Snapshot, Diff
// and Hash entry points:
//
//	host := document.NewFileHost()
//	engine, err := vdiff.New(host)
//	if err != nil {
//		return err
//	}
//	result, err := engine.DiffFiles(ctx, "a.scene.yaml", "b.scene.yaml")
package vdiff
