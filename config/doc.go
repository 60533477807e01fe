// Package config resolves the configuration family of declarations into a
// total, immutable snapshot.
//
// Resolution has two stages. Collect scans raw sources for Config,
// ConfigEnum, Configs, Configset, and Enum declarations without merging
// them; conditionals cannot be decided yet, so both branches are scanned
// and the first binding of a conditional path wins. Resolve then evaluates
// every default in declaration order and applies the activated configsets
// in activation order, last applied wins.
//
// The snapshot is the static world for everything downstream: merge-time
// conditionals, avail and max quantities, and requirement evaluation all
// read configuration through it.
package config
