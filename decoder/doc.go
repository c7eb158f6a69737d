// Package decoder implements the pull-based FIT stream decoder.
//
// # State Machine
//
// A Decoder walks a fixed grammar, producing one event per call to Next:
//
//	AwaitHeader ──▶ StreamingRecords ──▶ AwaitTrailingChecksum ──▶ Done
//	      │                │                       │
//	      └────────────────┴───────────────────────┴──────────▶ Failed
//
//   - AwaitHeader consumes the 12 or 14 byte file header (*HeaderEvent)
//   - StreamingRecords consumes one definition (*DefinitionEvent) or data
//     (*DataEvent) record per call until the declared payload length is used up
//   - AwaitTrailingChecksum reads the 2-byte file CRC (*ChecksumEvent)
//
// Done and Failed are terminal. In Done, Next returns io.EOF; in Failed it returns
// the error that stopped decoding. A checksum mismatch is not a failure: it is
// reported through ChecksumEvent.Match and ChecksumEvent.Err.
//
// # Usage
//
//	d, err := decoder.New(source.NewBytes(data))
//	if err != nil {
//	    return err
//	}
//
//	for ev, err := range d.All() {
//	    if err != nil {
//	        return err
//	    }
//
//	    switch e := ev.(type) {
//	    case *decoder.DataEvent:
//	        if hr, ok := e.Field(3); ok && hr.Valid() {
//	            fmt.Println(e.Global(), hr)
//	        }
//	    case *decoder.ChecksumEvent:
//	        if err := e.Err(); err != nil {
//	            return err
//	        }
//	    }
//	}
//
// # Memory
//
// New allocates the definition table (16 slots of WithMaxFields descriptors),
// the value slice and one instance of each event type. Events are overwritten by
// the following call to Next, and DataEvent values alias the source buffer, so
// copy anything that must outlive the current step. With a source.Bytes cursor
// steady-state decoding performs no allocation.
//
// # Errors
//
// Every failure wraps one sentinel from the errs package; use errors.Is to
// discriminate. No event is produced for the record that failed, and events
// produced earlier stay valid until the next call.
package decoder
