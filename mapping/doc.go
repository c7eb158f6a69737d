// Package mapping projects decoded data records onto user structs.
//
// # Field Tags
//
// Struct fields are bound to field numbers with the fit tag:
//
//	type Record struct {
//	    TimeOffset *uint8     `fit:"time"`      // compressed header time offset
//	    Timestamp  time.Time  `fit:"timestamp"` // resolved absolute timestamp
//	    Lat        *int32     `fit:"0"`
//	    Long       *int32     `fit:"1"`
//	    Altitude   uint16     `fit:"2"`
//	    Speed      float64    `fit:"6"`
//	}
//
// Unmarshal copies every valid value whose field number has a target. Fields
// with no matching valid value keep whatever the caller put there, so pointer
// fields stay nil and value fields keep their defaults. Event fields with no
// target are ignored. uint32 values decode into time.Time targets as FIT
// timestamps; other conversions follow mapstructure's weak typing rules.
//
// # Record Sets
//
// A Set routes data records by global message number into the fields of a
// collection struct tagged with fitmsg:
//
//	type Activity struct {
//	    FileID  *FileID  `fitmsg:"0"`  // last record wins
//	    Records []Record `fitmsg:"20"` // one element per record
//	}
//
// New elements call SetDefaults first when their type implements Defaulter.
package mapping
