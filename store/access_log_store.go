package store

import (
	"bufio"
	"context"
	"log/slog"
	"os"
	"strings"

	"github.com/satyrius/gonx"
	"github.com/turbot/tailpipe-extractor/data_source"
	"github.com/turbot/tailpipe-extractor/types"
)

const AccessLogStoreIdentifier = "log"

const (
	CommonLogFormat   = `$remote_addr - $remote_user [$time_local] "$request" $status $body_bytes_sent`
	CombinedLogFormat = `$remote_addr - $remote_user [$time_local] "$request" $status $body_bytes_sent "$http_referer" "$http_user_agent"`
)

// AccessLogStore reads web server access logs
// options:
//   - format: the gonx log format, "common", "combined" (default) or a custom format string
//
// lines which match no format are skipped
type AccessLogStore struct {
	StoreImpl
	parsers []*gonx.Parser
}

func NewAccessLogStore(ds data_source.DataSource, opts map[string]string) (Store, error) {
	s := &AccessLogStore{
		StoreImpl: NewStoreImpl(ds, opts, ".log", ".txt"),
	}

	var formats []string
	switch format := s.Option("format", "combined"); strings.ToLower(format) {
	case "combined":
		// fall back to common format for lines without referer and user agent
		formats = []string{CombinedLogFormat, CommonLogFormat}
	case "common":
		formats = []string{CommonLogFormat}
	default:
		formats = []string{format}
	}
	for _, format := range formats {
		s.parsers = append(s.parsers, gonx.NewParser(format))
	}
	return s, nil
}

func (s *AccessLogStore) Type() string {
	return AccessLogStoreIdentifier
}

func (s *AccessLogStore) Store(ctx context.Context, artifact *types.StagedArtifact) error {
	return s.storeFiles(ctx, artifact, s.parse)
}

func (s *AccessLogStore) parse(ctx context.Context, path string, emit func(types.Record) error) error {
	f, err := os.Open(path)
	if err != nil {
		return err
	}
	defer f.Close()

	skipped := 0
	scanner := bufio.NewScanner(f)
	for scanner.Scan() {
		if err := ctx.Err(); err != nil {
			return err
		}
		line := scanner.Text()
		if strings.TrimSpace(line) == "" {
			continue
		}

		entry := s.parseLine(line)
		if entry == nil {
			skipped++
			continue
		}

		fields := entry.Fields()
		record := make(types.Record, len(fields))
		for k, v := range fields {
			record[k] = v
		}
		if err := emit(record); err != nil {
			return err
		}
	}
	if skipped > 0 {
		slog.Warn("Skipped unparseable access log lines", "path", path, "lines", skipped)
	}
	return scanner.Err()
}

func (s *AccessLogStore) parseLine(line string) *gonx.Entry {
	for _, parser := range s.parsers {
		if entry, err := parser.ParseString(line); err == nil {
			return entry
		}
	}
	return nil
}
