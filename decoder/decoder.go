package decoder

import (
	"errors"
	"fmt"
	"io"
	"iter"

	"github.com/arloliu/fitstream/endian"
	"github.com/arloliu/fitstream/errs"
	"github.com/arloliu/fitstream/format"
	"github.com/arloliu/fitstream/internal/crc"
	"github.com/arloliu/fitstream/internal/options"
	"github.com/arloliu/fitstream/internal/timestamp"
	"github.com/arloliu/fitstream/section"
	"github.com/arloliu/fitstream/source"
	"github.com/arloliu/fitstream/value"
)

// State is the position of the decoder in the stream grammar.
type State uint8

const (
	StateAwaitHeader           State = iota // StateAwaitHeader expects the file header.
	StateStreamingRecords                   // StateStreamingRecords decodes records until the payload is exhausted.
	StateAwaitTrailingChecksum              // StateAwaitTrailingChecksum expects the 2-byte file CRC.
	StateDone                               // StateDone is terminal; Next returns io.EOF.
	StateFailed                             // StateFailed is terminal; Next returns the failure.
)

func (s State) String() string {
	switch s {
	case StateAwaitHeader:
		return "AwaitHeader"
	case StateStreamingRecords:
		return "StreamingRecords"
	case StateAwaitTrailingChecksum:
		return "AwaitTrailingChecksum"
	case StateDone:
		return "Done"
	case StateFailed:
		return "Failed"
	default:
		return "Unknown"
	}
}

// Stats counts what the decoder has consumed so far.
type Stats struct {
	Bytes       int64 // Bytes consumed, including header and trailing checksum
	Definitions int   // Definition records decoded
	Data        int   // Data records decoded
	Compressed  int   // Data records with a compressed timestamp header
}

// Decoder is a pull-based FIT stream decoder.
//
// Each call to Next consumes exactly one header, record or trailing checksum from
// the source and returns the matching event. All tables and events are allocated
// by New; decoding itself does not allocate.
//
// Note: Decoder is NOT thread-safe. Independent decoders share no state.
type Decoder struct {
	cfg   *Config
	src   source.Source
	state State
	err   error

	table     *section.DefinitionTable
	rolling   timestamp.Rolling
	checksum  crc.CRC16
	header    [format.HeaderSize]byte
	remaining int64
	offset    int64
	values    []value.Value
	stats     Stats

	headerEvent     HeaderEvent
	definitionEvent DefinitionEvent
	dataEvent       DataEvent
	checksumEvent   ChecksumEvent
}

// New creates a Decoder reading from src.
//
// Parameters:
//   - src: Byte source positioned at the first header byte
//   - opts: Optional configuration (WithStrict, WithMaxFields, WithHeaderCRCCheck)
//
// Returns:
//   - *Decoder: Decoder in StateAwaitHeader
//   - error: errs.ErrInvalidOption for out-of-range options
func New(src source.Source, opts ...Option) (*Decoder, error) {
	cfg := NewConfig()
	if err := options.Apply(cfg, opts...); err != nil {
		return nil, err
	}

	return &Decoder{
		cfg:    cfg,
		src:    src,
		table:  section.NewDefinitionTable(cfg.maxFields),
		values: make([]value.Value, cfg.maxFields),
	}, nil
}

// Reset re-arms the decoder for a new stream, keeping its allocated tables.
func (d *Decoder) Reset(src source.Source) {
	d.src = src
	d.state = StateAwaitHeader
	d.err = nil
	d.table.Clear()
	d.rolling.Reset()
	d.checksum.Reset()
	d.remaining = 0
	d.offset = 0
	d.stats = Stats{}
}

// State returns the current state.
func (d *Decoder) State() State {
	return d.state
}

// Err returns the error that moved the decoder to StateFailed, if any.
func (d *Decoder) Err() error {
	return d.err
}

// Offset returns the number of bytes consumed from the source.
func (d *Decoder) Offset() int64 {
	return d.offset
}

// Stats returns counters for the stream decoded so far.
func (d *Decoder) Stats() Stats {
	s := d.stats
	s.Bytes = d.offset

	return s
}

// Definitions returns the decoder's definition table.
func (d *Decoder) Definitions() *section.DefinitionTable {
	return d.table
}

// Next decodes the next step of the stream.
//
// Returns:
//   - Event: The event for the consumed step, valid until the next call
//   - error: io.EOF once the stream is complete, or the failure that stopped
//     decoding; every failure wraps one of the errs kind sentinels and is
//     returned again by later calls
func (d *Decoder) Next() (Event, error) {
	switch d.state {
	case StateAwaitHeader:
		return d.readHeader()
	case StateStreamingRecords:
		return d.readRecord()
	case StateAwaitTrailingChecksum:
		return d.readChecksum()
	case StateDone:
		return nil, io.EOF
	default:
		return nil, d.err
	}
}

// All returns an iterator over the remaining events.
//
// Iteration stops after the checksum event or after yielding the first error.
func (d *Decoder) All() iter.Seq2[Event, error] {
	return func(yield func(Event, error) bool) {
		for {
			ev, err := d.Next()
			if errors.Is(err, io.EOF) && d.state == StateDone {
				return
			}
			if !yield(ev, err) || err != nil {
				return
			}
		}
	}
}

func (d *Decoder) fail(err error) (Event, error) {
	d.state = StateFailed
	d.err = err

	return nil, err
}

// consume pulls n bytes from the source and folds them into the file checksum.
//
// Source errors are never wrapped with %w by callers so that io.EOF keeps
// meaning a cleanly finished stream.
func (d *Decoder) consume(n int) ([]byte, error) {
	b, err := d.src.Next(n)
	if err != nil {
		return nil, err
	}

	_, _ = d.checksum.Write(b)
	d.offset += int64(n)

	return b, nil
}

func (d *Decoder) readHeader() (Event, error) {
	b, err := d.consume(1)
	if err != nil {
		return d.fail(fmt.Errorf("%w: %w: %v", errs.ErrMalformedHeader, errs.ErrTruncatedHeader, err))
	}

	size := b[0]
	if !section.IsValidHeaderSize(size) {
		return d.fail(fmt.Errorf("%w: %w: %d", errs.ErrMalformedHeader, errs.ErrUnknownHeaderSize, size))
	}
	d.header[0] = size

	rest, err := d.consume(int(size) - 1)
	if err != nil {
		return d.fail(fmt.Errorf("%w: %w: %v", errs.ErrMalformedHeader, errs.ErrTruncatedHeader, err))
	}
	copy(d.header[1:size], rest)

	h := &d.headerEvent.Header
	if err := h.Parse(d.header[:size], d.cfg.checkHeaderCRC); err != nil {
		return d.fail(err)
	}

	d.remaining = int64(h.DataSize)
	d.state = StateStreamingRecords
	if d.remaining == 0 {
		d.state = StateAwaitTrailingChecksum
	}

	return &d.headerEvent, nil
}

func (d *Decoder) readRecord() (Event, error) {
	start := d.offset

	b, err := d.take(start, 1)
	if err != nil {
		return d.fail(err)
	}

	rh, err := section.ParseRecordHeader(b[0], d.cfg.strict)
	if err != nil {
		return d.fail(fmt.Errorf("record at offset %d: %w", start, err))
	}

	var ev Event
	if rh.IsDefinition() {
		ev, err = d.readDefinition(start, rh)
	} else {
		ev, err = d.readData(start, rh)
	}
	if err != nil {
		return d.fail(err)
	}

	if d.remaining == 0 {
		d.state = StateAwaitTrailingChecksum
	}

	return ev, nil
}

// take consumes n bytes belonging to the record that starts at start.
func (d *Decoder) take(start int64, n int) ([]byte, error) {
	if int64(n) > d.remaining {
		return nil, fmt.Errorf("%w: record at offset %d needs %d bytes, %d left in payload",
			errs.ErrTruncatedRecord, start, n, d.remaining)
	}

	b, err := d.consume(n)
	if err != nil {
		return nil, fmt.Errorf("%w: record at offset %d: %v", errs.ErrTruncatedRecord, start, err)
	}
	d.remaining -= int64(n)

	return b, nil
}

func (d *Decoder) readDefinition(start int64, rh section.RecordHeader) (Event, error) {
	local := rh.LocalMessage()

	b, err := d.take(start, format.DefinitionFixedSize)
	if err != nil {
		return nil, err
	}

	fixed, err := section.ParseDefinitionFixed(b)
	if err != nil {
		return nil, err
	}

	// Reject oversized definitions before reading their descriptors; Define
	// reports the error and leaves the slot empty.
	if int(fixed.FieldCount) > d.table.Capacity() {
		_, err := d.table.Define(local, fixed, nil)
		return nil, fmt.Errorf("definition at offset %d: %w", start, err)
	}

	fieldData, err := d.take(start, int(fixed.FieldCount)*format.FieldDescriptorSize)
	if err != nil {
		return nil, err
	}

	def, err := d.table.Define(local, fixed, fieldData)
	if err != nil {
		return nil, fmt.Errorf("definition at offset %d: %w", start, err)
	}

	d.stats.Definitions++
	d.definitionEvent = DefinitionEvent{Offset: start, Definition: def}

	return &d.definitionEvent, nil
}

func (d *Decoder) readData(start int64, rh section.RecordHeader) (Event, error) {
	local := rh.LocalMessage()

	def, ok := d.table.Lookup(local)
	if !ok {
		return nil, fmt.Errorf("%w: local message %d at offset %d", errs.ErrUndefinedLocalSlot, local, start)
	}

	ev := &d.dataEvent
	*ev = DataEvent{Offset: start, Definition: def, Compressed: rh.IsCompressed()}

	if ev.Compressed {
		ev.TimeOffset = rh.TimeOffset()
		ts, err := d.rolling.Apply(ev.TimeOffset)
		if err != nil {
			return nil, fmt.Errorf("%w: local message %d at offset %d", err, local, start)
		}
		ev.Timestamp, ev.HasTimestamp = ts, true
	}

	body, err := d.take(start, def.DataSize())
	if err != nil {
		return nil, err
	}

	fields := def.Fields()
	engine := def.Engine()
	values := d.values[:len(fields)]
	pos := 0

	for i, f := range fields {
		end := pos + int(f.Size)
		values[i] = value.New(f, body[pos:end:end], engine)
		pos = end
	}

	if idx := def.TimestampIndex(); idx >= 0 {
		if ts, ok := values[idx].Uint(0); ok {
			d.rolling.Set(uint32(ts))
			ev.Timestamp, ev.HasTimestamp = uint32(ts), true
		}
	}

	ev.Values = values
	d.stats.Data++
	if ev.Compressed {
		d.stats.Compressed++
	}

	return ev, nil
}

func (d *Decoder) readChecksum() (Event, error) {
	computed := d.checksum.Sum16()

	b, err := d.src.Next(format.ChecksumSize)
	if err != nil {
		return d.fail(fmt.Errorf("%w: trailing checksum at offset %d: %v", errs.ErrTruncatedRecord, d.offset, err))
	}
	d.offset += format.ChecksumSize

	found := endian.GetLittleEndianEngine().Uint16(b)
	d.checksumEvent = ChecksumEvent{
		Match:    computed == found,
		Computed: computed,
		Found:    found,
	}
	d.state = StateDone

	return &d.checksumEvent, nil
}
