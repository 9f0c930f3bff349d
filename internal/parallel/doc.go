// Package parallel runs chunking over large documents with a pool of
// workers. The document is split into disjoint segments at natural breaks,
// a pilot batch measures per-segment cost, and the measured latency picks
// the pool width for the remainder. Results are merged strictly in segment
// order, so parallel output is byte-identical in ordering to the serial
// walk. Individual segment failures degrade to empty output; only a
// majority of failures fails the operation.
package parallel
