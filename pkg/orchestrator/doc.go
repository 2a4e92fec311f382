// Package orchestrator wires the metadata loader, the job template renderer,
// and the publisher registry into a single pipeline: ci.conf in, validated
// scheduler job definitions out.
package orchestrator
