// Package rules loads the Rule descriptors that drive a review.
//
// Rules are read from a YAML list (see rules.yaml for the built-in set)
// and validated on load. A Source either reads a file from disk or serves
// the embedded defaults. When an id is defined more than once, the first
// definition wins.
package rules
