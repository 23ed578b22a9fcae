// Package world models the host records the workflow controller observes and
// steers: jobs attached to holder buildings, free-standing items, and the
// descriptor catalog (raws) used to resolve item-type and material tokens.
//
// The host owns every record. Controllers hold references only for the
// duration of one critical section and must not retain them across frames
// except as identifiers.
package world
