package cli

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/arloliu/fitstream/decoder"
	"github.com/arloliu/fitstream/internal/pool"
)

// flushThreshold is the buffered output size that triggers a write.
const flushThreshold = pool.StreamBufferDefaultSize / 2

func newDumpCommand(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "dump FILE",
		Short: "Print every header, definition, data record and checksum",
		Long: `Print the decoded event stream of a FIT file.

Output formats:
  text  one line per event (default)
  json  one JSON document per line
  yaml  one YAML document per event

Examples:
  fitdump dump ride.fit
  fitdump dump --format json ride.fit.zst
  cat ride.fit | fitdump dump -`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.runDump(cmd, args[0])
		},
	}
	cmd.Flags().StringP("format", "f", "text", "output format (text, json, yaml)")

	return cmd
}

// eventWriter renders one event into the output buffer.
type eventWriter interface {
	write(ev decoder.Event) error
	close() error
}

func (a *app) runDump(cmd *cobra.Command, path string) error {
	buf := pool.GetStreamBuffer()
	defer pool.PutStreamBuffer(buf)

	w, err := newEventWriter(a.cfg.Output.Format, buf)
	if err != nil {
		return err
	}

	dec, in, err := a.newDecoder(cmd, path)
	if err != nil {
		return err
	}
	defer in.Close()

	out := cmd.OutOrStdout()
	flush := func() error {
		_, err := buf.WriteTo(out)
		buf.Reset()

		return err
	}

	var checksumErr error
	for ev, err := range dec.All() {
		if err != nil {
			_ = flush()
			a.log.WithError(err).WithField("offset", dec.Offset()).Error("decode failed")

			return fmt.Errorf("%s: %w", path, err)
		}

		if err := w.write(ev); err != nil {
			return err
		}
		if cs, ok := ev.(*decoder.ChecksumEvent); ok {
			checksumErr = cs.Err()
		}

		if buf.Len() >= flushThreshold {
			if err := flush(); err != nil {
				return err
			}
		}
	}

	if err := w.close(); err != nil {
		return err
	}
	if err := flush(); err != nil {
		return err
	}

	stats := dec.Stats()
	a.log.WithField("definitions", stats.Definitions).WithField("records", stats.Data).Info("dump finished")

	if checksumErr != nil {
		return fmt.Errorf("%s: %w", path, checksumErr)
	}

	return nil
}

func newEventWriter(name string, w io.Writer) (eventWriter, error) {
	switch strings.ToLower(name) {
	case "", "text":
		return &textWriter{w: w}, nil
	case "json":
		return &docWriter{enc: json.NewEncoder(w)}, nil
	case "yaml", "yml":
		enc := yaml.NewEncoder(w)
		enc.SetIndent(2)

		return &docWriter{enc: enc, closer: enc}, nil
	default:
		return nil, fmt.Errorf("unsupported output format: %s (must be text, json or yaml)", name)
	}
}

type textWriter struct {
	w io.Writer
}

func (t *textWriter) write(ev decoder.Event) error {
	var err error

	switch e := ev.(type) {
	case *decoder.HeaderEvent:
		h := e.Header
		_, err = fmt.Fprintf(t.w, "header size=%d protocol=%d.%d profile=%d data_size=%d",
			h.Size, h.ProtocolVersion>>4, h.ProtocolVersion&0x0F, h.ProfileVersion, h.DataSize)
		if err == nil && h.HasCRC {
			_, err = fmt.Fprintf(t.w, " crc=0x%04X", h.CRC)
		}
		if err == nil {
			_, err = io.WriteString(t.w, "\n")
		}
	case *decoder.DefinitionEvent:
		def := e.Definition
		_, err = fmt.Fprintf(t.w, "definition @%d local=%d global=%d arch=%s fields=",
			e.Offset, def.LocalMessage, def.GlobalMessage, def.Architecture)
		for i, f := range def.Fields() {
			if err != nil {
				break
			}
			sep := ","
			if i == 0 {
				sep = ""
			}
			_, err = fmt.Fprintf(t.w, "%s%d:%s[%d]", sep, f.Number, f.BaseType, f.Size)
		}
		if err == nil {
			_, err = io.WriteString(t.w, "\n")
		}
	case *decoder.DataEvent:
		_, err = fmt.Fprintf(t.w, "data @%d local=%d global=%d", e.Offset, e.Local(), e.Global())
		if ts, ok := e.Time(); ok && err == nil {
			_, err = fmt.Fprintf(t.w, " time=%s", ts.Format(time.RFC3339))
		}
		for _, v := range e.Values {
			if err != nil {
				break
			}
			_, err = fmt.Fprintf(t.w, " %d=%s", v.Number, v)
		}
		if err == nil {
			_, err = io.WriteString(t.w, "\n")
		}
	case *decoder.ChecksumEvent:
		status := "ok"
		if !e.Match {
			status = "MISMATCH"
		}
		_, err = fmt.Fprintf(t.w, "checksum %s computed=0x%04X found=0x%04X\n", status, e.Computed, e.Found)
	}

	return err
}

func (*textWriter) close() error { return nil }

// encoder is satisfied by both json.Encoder and yaml.Encoder.
type encoder interface {
	Encode(v any) error
}

type docWriter struct {
	enc    encoder
	closer io.Closer
}

type headerDoc struct {
	Kind     string  `json:"kind" yaml:"kind"`
	Size     uint8   `json:"size" yaml:"size"`
	Protocol uint8   `json:"protocol" yaml:"protocol"`
	Profile  uint16  `json:"profile" yaml:"profile"`
	DataSize uint32  `json:"data_size" yaml:"data_size"`
	CRC      *uint16 `json:"crc,omitempty" yaml:"crc,omitempty"`
}

type fieldDoc struct {
	Number uint8  `json:"number" yaml:"number"`
	Size   uint8  `json:"size" yaml:"size"`
	Type   string `json:"type" yaml:"type"`
}

type definitionDoc struct {
	Kind         string     `json:"kind" yaml:"kind"`
	Offset       int64      `json:"offset" yaml:"offset"`
	Local        uint8      `json:"local" yaml:"local"`
	Global       uint16     `json:"global" yaml:"global"`
	Architecture string     `json:"architecture" yaml:"architecture"`
	Fields       []fieldDoc `json:"fields" yaml:"fields"`
}

type valueDoc struct {
	Number uint8  `json:"number" yaml:"number"`
	Type   string `json:"type" yaml:"type"`
	Value  any    `json:"value" yaml:"value"`
}

type dataDoc struct {
	Kind       string     `json:"kind" yaml:"kind"`
	Offset     int64      `json:"offset" yaml:"offset"`
	Local      uint8      `json:"local" yaml:"local"`
	Global     uint16     `json:"global" yaml:"global"`
	Time       *time.Time `json:"time,omitempty" yaml:"time,omitempty"`
	Compressed bool       `json:"compressed,omitempty" yaml:"compressed,omitempty"`
	Fields     []valueDoc `json:"fields" yaml:"fields"`
}

type checksumDoc struct {
	Kind     string `json:"kind" yaml:"kind"`
	Match    bool   `json:"match" yaml:"match"`
	Computed uint16 `json:"computed" yaml:"computed"`
	Found    uint16 `json:"found" yaml:"found"`
}

func (d *docWriter) write(ev decoder.Event) error {
	switch e := ev.(type) {
	case *decoder.HeaderEvent:
		doc := headerDoc{
			Kind:     "header",
			Size:     e.Header.Size,
			Protocol: e.Header.ProtocolVersion,
			Profile:  e.Header.ProfileVersion,
			DataSize: e.Header.DataSize,
		}
		if e.Header.HasCRC {
			crc := e.Header.CRC
			doc.CRC = &crc
		}

		return d.enc.Encode(doc)
	case *decoder.DefinitionEvent:
		def := e.Definition
		doc := definitionDoc{
			Kind:         "definition",
			Offset:       e.Offset,
			Local:        def.LocalMessage,
			Global:       def.GlobalMessage,
			Architecture: def.Architecture.String(),
			Fields:       make([]fieldDoc, 0, def.NumFields()),
		}
		for _, f := range def.Fields() {
			doc.Fields = append(doc.Fields, fieldDoc{Number: f.Number, Size: f.Size, Type: f.BaseType.String()})
		}

		return d.enc.Encode(doc)
	case *decoder.DataEvent:
		doc := dataDoc{
			Kind:       "data",
			Offset:     e.Offset,
			Local:      e.Local(),
			Global:     e.Global(),
			Compressed: e.Compressed,
			Fields:     make([]valueDoc, 0, len(e.Values)),
		}
		if ts, ok := e.Time(); ok {
			doc.Time = &ts
		}
		for _, v := range e.Values {
			doc.Fields = append(doc.Fields, valueDoc{Number: v.Number, Type: v.BaseType().String(), Value: v.Any()})
		}

		return d.enc.Encode(doc)
	case *decoder.ChecksumEvent:
		return d.enc.Encode(checksumDoc{Kind: "checksum", Match: e.Match, Computed: e.Computed, Found: e.Found})
	}

	return nil
}

func (d *docWriter) close() error {
	if d.closer == nil {
		return nil
	}

	return d.closer.Close()
}
