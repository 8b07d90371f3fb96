// Package memory provides conversation persistence: session stores holding
// the ordered per-conversation message log, compaction strategies that bound
// its growth without reordering survivors, and memory banks for long-lived
// summaries that survive across sessions. The Service type ties the three
// together behind one facade.
package memory
