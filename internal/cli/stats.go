package cli

import (
	"encoding/json"
	"fmt"
	"maps"
	"slices"
	"strings"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/arloliu/fitstream/decoder"
)

// Summary is the result of the stats command.
type Summary struct {
	File        string         `json:"file" yaml:"file"`
	Compression string         `json:"compression" yaml:"compression"`
	Bytes       int64          `json:"bytes" yaml:"bytes"`
	Definitions int            `json:"definitions" yaml:"definitions"`
	Layouts     int            `json:"layouts" yaml:"layouts"`
	Records     int            `json:"records" yaml:"records"`
	Compressed  int            `json:"compressed_timestamps" yaml:"compressed_timestamps"`
	Messages    map[uint16]int `json:"messages" yaml:"messages"`
	Checksum    bool           `json:"checksum_ok" yaml:"checksum_ok"`
}

func newStatsCommand(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "stats FILE",
		Short: "Summarise record counts and distinct message layouts",
		Long: `Decode a file and print how many definitions and data records it holds,
how many distinct message layouts it declares and the record count per global
message number.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := a.summarize(cmd, args[0])
			if err != nil {
				return err
			}

			return writeSummary(cmd, a.cfg.Output.Format, s)
		},
	}
	cmd.Flags().StringP("format", "f", "text", "output format (text, json, yaml)")

	return cmd
}

func (a *app) summarize(cmd *cobra.Command, path string) (*Summary, error) {
	dec, in, err := a.newDecoder(cmd, path)
	if err != nil {
		return nil, err
	}
	defer in.Close()

	s := &Summary{
		File:        path,
		Compression: in.compression.String(),
		Messages:    make(map[uint16]int),
	}
	// Layouts are identified by their fingerprint, so a definition replayed into
	// another slot is not counted twice.
	layouts := make(map[uint64]struct{})

	for ev, err := range dec.All() {
		if err != nil {
			return nil, fmt.Errorf("%s: %w", path, err)
		}

		switch e := ev.(type) {
		case *decoder.DefinitionEvent:
			layouts[e.Definition.Fingerprint()] = struct{}{}
		case *decoder.DataEvent:
			s.Messages[e.Global()]++
		case *decoder.ChecksumEvent:
			s.Checksum = e.Match
		}
	}

	stats := dec.Stats()
	s.Bytes = stats.Bytes
	s.Definitions = stats.Definitions
	s.Records = stats.Data
	s.Compressed = stats.Compressed
	s.Layouts = len(layouts)

	return s, nil
}

func writeSummary(cmd *cobra.Command, format string, s *Summary) error {
	out := cmd.OutOrStdout()

	switch strings.ToLower(format) {
	case "json":
		enc := json.NewEncoder(out)
		enc.SetIndent("", "  ")

		return enc.Encode(s)
	case "yaml", "yml":
		enc := yaml.NewEncoder(out)
		defer enc.Close()

		return enc.Encode(s)
	case "", "text":
	default:
		return fmt.Errorf("unsupported output format: %s (must be text, json or yaml)", format)
	}

	checksum := "ok"
	if !s.Checksum {
		checksum = "MISMATCH"
	}

	fmt.Fprintf(out, "file:        %s\n", s.File)
	fmt.Fprintf(out, "compression: %s\n", s.Compression)
	fmt.Fprintf(out, "bytes:       %d\n", s.Bytes)
	fmt.Fprintf(out, "definitions: %d (%d layouts)\n", s.Definitions, s.Layouts)
	fmt.Fprintf(out, "records:     %d (%d compressed timestamps)\n", s.Records, s.Compressed)
	fmt.Fprintf(out, "checksum:    %s\n", checksum)
	fmt.Fprintln(out, "messages:")
	for _, global := range slices.Sorted(maps.Keys(s.Messages)) {
		fmt.Fprintf(out, "  %5d: %d\n", global, s.Messages[global])
	}

	return nil
}
