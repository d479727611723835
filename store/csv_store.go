package store

import (
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"
	"unicode/utf8"

	"github.com/turbot/tailpipe-extractor/data_source"
	"github.com/turbot/tailpipe-extractor/types"
)

const CsvStoreIdentifier = "csv"

type CsvHeaderMode string

const (
	CsvHeaderModeOn  CsvHeaderMode = "on"
	CsvHeaderModeOff CsvHeaderMode = "off"
)

// CsvStore reads delimited files
// options:
//   - delimiter: field delimiter, default ","
//   - comment: lines starting with this character are ignored
//   - header: "on" (default) uses the first row as column names, "off" names columns column_0, column_1...
type CsvStore struct {
	StoreImpl
	delimiter  rune
	comment    rune
	headerMode CsvHeaderMode
}

func NewCsvStore(ds data_source.DataSource, opts map[string]string) (Store, error) {
	s := &CsvStore{
		StoreImpl: NewStoreImpl(ds, opts, ".csv", ".tsv", ".txt"),
	}

	var err error
	if s.delimiter, err = singleRune(s.Option("delimiter", ","), "delimiter"); err != nil {
		return nil, err
	}
	if comment := s.Option("comment", ""); comment != "" {
		if s.comment, err = singleRune(comment, "comment"); err != nil {
			return nil, err
		}
	}

	switch mode := CsvHeaderMode(strings.ToLower(s.Option("header", string(CsvHeaderModeOn)))); mode {
	case CsvHeaderModeOn, CsvHeaderModeOff:
		s.headerMode = mode
	default:
		return nil, fmt.Errorf("invalid header option '%s': expected on or off", mode)
	}
	return s, nil
}

func (s *CsvStore) Type() string {
	return CsvStoreIdentifier
}

func (s *CsvStore) Store(ctx context.Context, artifact *types.StagedArtifact) error {
	return s.storeFiles(ctx, artifact, s.parse)
}

func (s *CsvStore) parse(ctx context.Context, path string, emit func(types.Record) error) error {
	f, err := os.Open(path)
	if err != nil {
		return err
	}
	defer f.Close()

	r := csv.NewReader(f)
	r.Comma = s.delimiter
	r.Comment = s.comment
	// rows may have fewer or more fields than the header
	r.FieldsPerRecord = -1

	var columns []string
	if s.headerMode == CsvHeaderModeOn {
		header, err := r.Read()
		if errors.Is(err, io.EOF) {
			return nil
		}
		if err != nil {
			return fmt.Errorf("error reading header: %w", err)
		}
		columns = header
	}

	for {
		if err := ctx.Err(); err != nil {
			return err
		}
		row, err := r.Read()
		if errors.Is(err, io.EOF) {
			return nil
		}
		if err != nil {
			return err
		}

		record := make(types.Record, len(row))
		for i, v := range row {
			record[columnName(columns, i)] = v
		}
		if err := emit(record); err != nil {
			return err
		}
	}
}

func columnName(columns []string, i int) string {
	if i < len(columns) && strings.TrimSpace(columns[i]) != "" {
		return strings.TrimSpace(columns[i])
	}
	return fmt.Sprintf("column_%d", i)
}

func singleRune(s, option string) (rune, error) {
	if s == `\t` {
		return '\t', nil
	}
	if utf8.RuneCountInString(s) != 1 {
		return 0, fmt.Errorf("invalid %s option '%s': expected a single character", option, s)
	}
	r, _ := utf8.DecodeRuneInString(s)
	return r, nil
}
