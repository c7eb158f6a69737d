package cli

import (
	"bufio"
	"bytes"
	"encoding/json"
	"errors"
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"

	"github.com/arloliu/fitstream/compress"
	"github.com/arloliu/fitstream/errs"
	"github.com/arloliu/fitstream/format"
	"github.com/arloliu/fitstream/internal/fittest"
)

const startTS = 1_000_000_000

// ride declares the same layout in two slots and writes three records.
func ride() *fittest.Builder {
	return fittest.NewBuilder().
		Definition(0, format.LittleEndian, 20,
			fittest.Field(format.TimestampFieldNumber, 4, format.Uint32),
			fittest.Field(3, 1, format.Uint8),
		).
		Data(0, fittest.U32(startTS), fittest.U8(140)).
		Definition(1, format.LittleEndian, 20,
			fittest.Field(format.TimestampFieldNumber, 4, format.Uint32),
			fittest.Field(3, 1, format.Uint8),
		).
		Data(1, fittest.U32(startTS+1), fittest.U8(141)).
		Definition(2, format.BigEndian, 21,
			fittest.Field(3, 1, format.Uint8),
		).
		CompressedData(2, (startTS+3)&format.TimeOffsetMask, fittest.U8(0xFF))
}

// reservedBit writes a data record header with bit 4 set.
func reservedBit() *fittest.Builder {
	return fittest.NewBuilder().
		Definition(0, format.LittleEndian, 20, fittest.Field(3, 1, format.Uint8)).
		Raw(0x10, 140)
}

func writeFile(t *testing.T, name string, data []byte) string {
	t.Helper()

	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, data, 0o600))

	return path
}

func run(t *testing.T, stdin io.Reader, args ...string) (string, string, error) {
	t.Helper()

	_, out, errOut, err := runApp(t, stdin, args...)

	return out, errOut, err
}

func runApp(t *testing.T, stdin io.Reader, args ...string) (*app, string, string, error) {
	t.Helper()

	root, a := newRootCommand()
	var out, errOut bytes.Buffer
	root.SetOut(&out)
	root.SetErr(&errOut)
	if stdin != nil {
		root.SetIn(stdin)
	}
	root.SetArgs(args)

	err := a.run(root)

	return a, out.String(), errOut.String(), err
}

func TestDump_Text(t *testing.T) {
	path := writeFile(t, "ride.fit", ride().Bytes())

	out, _, err := run(t, nil, "dump", path)
	require.NoError(t, err)

	lines := strings.Split(strings.TrimSpace(out), "\n")
	require.Len(t, lines, 8)
	require.True(t, strings.HasPrefix(lines[0], "header size=14 protocol=2.0 profile=2132"))
	require.True(t, strings.HasPrefix(lines[1], "definition @14 local=0 global=20 arch=LittleEndian fields=253:uint32[4],3:uint8[1]"))
	require.Contains(t, lines[2], "local=0 global=20 time=2021-09-08T01:46:40Z")
	require.Contains(t, lines[2], " 3=140")
	require.Contains(t, lines[6], "local=2 global=21")
	require.Contains(t, lines[6], " 3=-")
	require.True(t, strings.HasPrefix(lines[7], "checksum ok"))
}

func TestDump_JSON(t *testing.T) {
	path := writeFile(t, "ride.fit", ride().Bytes())

	out, _, err := run(t, nil, "dump", "--format", "json", path)
	require.NoError(t, err)

	var kinds []string
	scanner := bufio.NewScanner(strings.NewReader(out))
	for scanner.Scan() {
		var doc map[string]any
		require.NoError(t, json.Unmarshal(scanner.Bytes(), &doc))
		kinds = append(kinds, doc["kind"].(string))

		if doc["kind"] == "checksum" {
			require.Equal(t, true, doc["match"])
		}
		if doc["kind"] == "data" && doc["local"] == float64(2) {
			require.Equal(t, true, doc["compressed"])
			fields := doc["fields"].([]any)
			require.Nil(t, fields[0].(map[string]any)["value"])
		}
	}
	require.Equal(t, []string{"header", "definition", "data", "definition", "data", "definition", "data", "checksum"}, kinds)
}

func TestDump_YAMLFromStdin(t *testing.T) {
	archived, err := compress.NewGzipCompressor().Compress(ride().Bytes())
	require.NoError(t, err)

	out, _, err := run(t, bytes.NewReader(archived), "dump", "-f", "yaml", "-")
	require.NoError(t, err)

	dec := yaml.NewDecoder(strings.NewReader(out))
	docs := 0
	for {
		var doc map[string]any
		err := dec.Decode(&doc)
		if errors.Is(err, io.EOF) {
			break
		}
		require.NoError(t, err)
		require.Contains(t, doc, "kind")
		docs++
	}
	require.Equal(t, 8, docs)
}

func TestDump_Failures(t *testing.T) {
	t.Run("checksum mismatch", func(t *testing.T) {
		path := writeFile(t, "bad.fit", ride().CorruptCRC().Bytes())

		out, _, err := run(t, nil, "dump", path)
		require.ErrorIs(t, err, errs.ErrChecksumMismatch)
		require.Contains(t, out, "checksum MISMATCH")
	})

	t.Run("truncated", func(t *testing.T) {
		data := ride().Bytes()
		path := writeFile(t, "short.fit", data[:len(data)-6])

		out, _, err := run(t, nil, "dump", path)
		require.ErrorIs(t, err, errs.ErrTruncatedRecord)
		require.Contains(t, out, "header size=14")
	})

	t.Run("unknown format", func(t *testing.T) {
		path := writeFile(t, "ride.fit", ride().Bytes())

		_, _, err := run(t, nil, "dump", "--format", "xml", path)
		require.Error(t, err)
	})

	t.Run("missing file", func(t *testing.T) {
		_, _, err := run(t, nil, "dump", filepath.Join(t.TempDir(), "none.fit"))
		require.ErrorIs(t, err, os.ErrNotExist)
	})
}

func TestCheck(t *testing.T) {
	good := writeFile(t, "good.fit", ride().Bytes())

	archived, err := compress.NewS2Compressor().Compress(ride().Bytes())
	require.NoError(t, err)
	packed := writeFile(t, "good.fit.s2", archived)

	out, _, err := run(t, nil, "check", good, packed)
	require.NoError(t, err)
	require.Contains(t, out, "OK   "+good+" (3 records)")
	require.Contains(t, out, "OK   "+packed+" (3 records)")

	bad := writeFile(t, "bad.fit", ride().CorruptCRC().Bytes())
	out, stderr, err := run(t, nil, "check", good, bad)
	require.ErrorIs(t, err, ErrCheckFailed)
	require.ErrorContains(t, err, "1 of 2 files")
	require.Contains(t, out, "FAIL "+bad)
	require.Contains(t, stderr, "check failed")
}

func TestCheck_ClosesLogFileOnFailure(t *testing.T) {
	bad := writeFile(t, "bad.fit", ride().CorruptCRC().Bytes())
	logPath := filepath.Join(t.TempDir(), "fitdump.log")

	a, _, _, err := runApp(t, nil, "check", "--log-file", logPath, bad)
	require.ErrorIs(t, err, ErrCheckFailed)
	require.Nil(t, a.log)
	require.NoError(t, a.close())

	data, err := os.ReadFile(logPath)
	require.NoError(t, err)
	require.Contains(t, string(data), "check failed")
}

func TestCheck_Strict(t *testing.T) {
	path := writeFile(t, "reserved.fit", reservedBit().Bytes())

	_, _, err := run(t, nil, "check", path)
	require.NoError(t, err)

	out, _, err := run(t, nil, "check", "--strict", path)
	require.ErrorIs(t, err, ErrCheckFailed)
	require.Contains(t, out, errs.ErrReservedBitSet.Error())

	t.Setenv("FITDUMP_DECODE_STRICT", "true")
	_, _, err = run(t, nil, "check", path)
	require.ErrorIs(t, err, ErrCheckFailed)
}

func TestStats(t *testing.T) {
	path := writeFile(t, "ride.fit", ride().Bytes())

	out, _, err := run(t, nil, "stats", path)
	require.NoError(t, err)
	require.Contains(t, out, "definitions: 3 (2 layouts)")
	require.Contains(t, out, "records:     3 (1 compressed timestamps)")
	require.Contains(t, out, "checksum:    ok")
	require.Contains(t, out, "     20: 2")
	require.Contains(t, out, "     21: 1")

	out, _, err = run(t, nil, "stats", "-f", "json", path)
	require.NoError(t, err)

	var s Summary
	require.NoError(t, json.Unmarshal([]byte(out), &s))
	require.Equal(t, "None", s.Compression)
	require.Equal(t, 3, s.Definitions)
	require.Equal(t, 2, s.Layouts)
	require.Equal(t, map[uint16]int{20: 2, 21: 1}, s.Messages)
	require.Equal(t, int64(len(ride().Bytes())), s.Bytes)
	require.True(t, s.Checksum)
}

func TestLoadConfig(t *testing.T) {
	t.Run("defaults", func(t *testing.T) {
		cfg, err := LoadConfig("", nil)
		require.NoError(t, err)
		require.Equal(t, "warn", cfg.Log.Level)
		require.Equal(t, 255, cfg.Decode.MaxFields)
		require.True(t, cfg.Decode.HeaderCRC)
		require.False(t, cfg.Decode.Strict)
		require.Equal(t, "text", cfg.Output.Format)
		require.False(t, cfg.Log.File.Enabled)
	})

	t.Run("file and env", func(t *testing.T) {
		path := writeFile(t, "fitdump.yaml", []byte(`
log:
  level: debug
  file:
    path: /tmp/fitdump.log
decode:
  max_fields: 64
output:
  format: yaml
`))
		t.Setenv("FITDUMP_DECODE_HEADER_CRC", "false")

		cfg, err := LoadConfig(path, nil)
		require.NoError(t, err)
		require.Equal(t, "debug", cfg.Log.Level)
		require.True(t, cfg.Log.File.Enabled)
		require.Equal(t, 10, cfg.Log.File.MaxSizeMB)
		require.Equal(t, 64, cfg.Decode.MaxFields)
		require.False(t, cfg.Decode.HeaderCRC)
		require.Equal(t, "yaml", cfg.Output.Format)
	})

	t.Run("flags override", func(t *testing.T) {
		root, _ := newRootCommand()
		require.NoError(t, root.PersistentFlags().Parse([]string{"--max-fields", "8", "--log-level", "error"}))

		cfg, err := LoadConfig("", root.PersistentFlags())
		require.NoError(t, err)
		require.Equal(t, 8, cfg.Decode.MaxFields)
		require.Equal(t, "error", cfg.Log.Level)
	})

	t.Run("missing file", func(t *testing.T) {
		_, err := LoadConfig(filepath.Join(t.TempDir(), "none.yaml"), nil)
		require.Error(t, err)
	})

	t.Run("invalid max fields", func(t *testing.T) {
		path := writeFile(t, "ride.fit", ride().Bytes())

		_, _, err := run(t, nil, "check", "--max-fields", "0", path)
		require.ErrorIs(t, err, ErrCheckFailed)
	})
}
