// Package async fans operations out across fleet nodes.
//
// [RunPerNode] runs one operation per node concurrently and collects a
// result for every node instead of stopping at the first failure; the
// verify phase and decommission reporting need the complete picture.
// [RunParallel] is the simpler first-error variant for independent
// tasks.
package async
