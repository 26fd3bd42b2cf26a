// Package graph defines the model graph IR for beanmachine.
// A model graph is an immutable, topologically ordered DAG of
// constants, arithmetic operators, distributions, samples,
// observations, and queries. Graphs are assembled through a
// one-shot Factory and validated before they become visible.
package graph
