// Package format defines the enumerations and constants of the FIT protocol.
//
// It covers the base type tags used by field descriptors (width, kind and the
// reserved "invalid" bit pattern of each), the byte order declared by definition
// records, the outer compression wrappers understood by the source package, and
// the fixed protocol constants such as the ".FIT" signature and the reserved
// timestamp field number.
//
// The package carries no decoding logic of its own; see the section, value and
// decoder packages.
package format
