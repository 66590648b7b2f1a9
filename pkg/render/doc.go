// Package render turns layout results into output artifacts.
//
// Three sinks are provided:
//
//   - SVG: a deterministic, standalone vector rendering of the positioned
//     column layout, with relationship-derived edge styling
//   - DOT: Graphviz source for node-link exports, rasterized to SVG or PNG
//     via the graphviz engine
//   - JSON: the raw render payload for external graph-rendering components
//
// All sinks are pure functions of the layout result: identical input yields
// byte-identical output, which the pipeline relies on for artifact caching.
package render
