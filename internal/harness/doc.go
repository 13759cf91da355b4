// Package harness runs declarative chain scenarios for conformance
// testing.
//
// A scenario is a YAML file naming a grammar, a seed, a step count,
// and a set of observations; it runs a full chain and asserts on the
// sample stream and the final tree. Golden snapshots of tree
// renderings guard the printed formats.
//
// Example scenario:
//
//	name: steer-red-zone2
//	description: observations pin red tasks to zone 2
//	seed: 11
//	steps: 200
//	observations:
//	  - colour: red
//	    zone: "2"
//	assertions:
//	  - type: sample_count
//	    count: 200
//	  - type: final_allows
//	    colour: red
//	    zone: "2"
package harness
