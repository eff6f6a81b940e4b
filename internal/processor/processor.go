// Package processor drives one geocoding run: it reads the input table,
// geocodes the target column chunk by chunk through a geocode.Service, and
// writes the merged output table.
package processor

import (
	"context"
	"fmt"
	"os"
	"strconv"

	"github.com/rotisserie/eris"
	"github.com/schollz/progressbar/v3"
	"go.uber.org/zap"

	"github.com/geospyder/geospyder/internal/table"
	"github.com/geospyder/geospyder/pkg/geocode"
)

// resultColumns are appended to every output row, in this order.
var resultColumns = []string{"status", "latitude", "longitude", "formatted_address", "error_message"}

// Processor transforms an input table into an output table with geocoding
// columns appended. It owns the read cursor and the output accumulator for
// the duration of a run; nothing else mutates them.
type Processor struct {
	svc       geocode.Service
	column    int
	chunkSize int
	progress  bool
}

// Option configures the Processor.
type Option func(*Processor)

// WithProgress enables a progress bar on stderr during the run.
func WithProgress(enabled bool) Option {
	return func(p *Processor) { p.progress = enabled }
}

// New creates a Processor geocoding the given zero-based column in windows
// of chunkSize rows.
func New(svc geocode.Service, column, chunkSize int, opts ...Option) *Processor {
	p := &Processor{svc: svc, column: column, chunkSize: chunkSize}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// Summary reports the terminal state of a run. Complete is false when the
// run was aborted before every row was attempted; the output written so far
// is still flushed and row-aligned.
type Summary struct {
	Total          int
	OK             int
	NotFound       int
	ProviderErrors int
	NetworkErrors  int
	Complete       bool
}

// Failures returns the number of rows that did not geocode successfully.
func (s Summary) Failures() int {
	return s.NotFound + s.ProviderErrors + s.NetworkErrors
}

func (s *Summary) add(r geocode.Result) {
	s.Total++
	switch r.Status {
	case geocode.StatusOK:
		s.OK++
	case geocode.StatusNotFound:
		s.NotFound++
	case geocode.StatusNetworkError:
		s.NetworkErrors++
	default:
		s.ProviderErrors++
	}
}

// Run reads inputPath, geocodes the target column, and writes outputPath.
// The first input row is treated as the header and passed through with the
// result column names appended. Per-row geocoding failures are recorded in
// the output and never abort the run; table I/O failures do. On context
// cancellation the run stops at the next chunk boundary and flushes the
// rows accumulated so far, with the untried rows' result cells left empty.
func (p *Processor) Run(ctx context.Context, inputPath, outputPath string) (Summary, error) {
	rows, err := table.Read(inputPath)
	if err != nil {
		return Summary{}, err
	}

	var header []string
	var body [][]string
	if len(rows) > 0 {
		header = rows[0]
		body = rows[1:]
	}

	zap.L().Info("starting geocoding run",
		zap.String("provider", p.svc.Name()),
		zap.String("input", inputPath),
		zap.Int("rows", len(body)),
		zap.Int("column", p.column),
		zap.Int("chunk_size", p.chunkSize),
	)

	var bar *progressbar.ProgressBar
	if p.progress && len(body) > 0 {
		bar = progressbar.NewOptions(len(body),
			progressbar.OptionSetDescription("Geocoding"),
			progressbar.OptionSetWriter(os.Stderr),
			progressbar.OptionShowCount(),
			progressbar.OptionClearOnFinish(),
		)
	}

	sum := Summary{}
	results := make([]geocode.Result, 0, len(body))
	chunks := NewChunks(body, p.chunkSize)
	canceled := false

	for {
		if ctx.Err() != nil {
			canceled = true
			break
		}

		chunk, ok := chunks.Next()
		if !ok {
			break
		}

		for _, r := range p.geocodeChunk(ctx, chunk) {
			results = append(results, r)
			sum.add(r)
		}

		if bar != nil {
			_ = bar.Add(len(chunk.Rows))
		}

		zap.L().Info("processed chunk",
			zap.Int("start_row", chunk.Start),
			zap.Int("rows", len(chunk.Rows)),
			zap.Int("processed_total", sum.Total),
		)
	}

	if bar != nil {
		_ = bar.Finish()
	}

	sum.Complete = !canceled

	merged := mergeRows(header, body, results)
	if err := table.Write(outputPath, merged); err != nil {
		return sum, err
	}

	if canceled {
		return sum, eris.Wrapf(ctx.Err(), "processor: run aborted after %d of %d rows", sum.Total, len(body))
	}

	zap.L().Info("geocoding run complete",
		zap.String("output", outputPath),
		zap.Int("total", sum.Total),
		zap.Int("ok", sum.OK),
		zap.Int("failed", sum.Failures()),
	)
	return sum, nil
}

// geocodeChunk extracts the target column from one chunk and geocodes it.
// Rows too short to contain the column never reach the provider; they yield
// a per-row PROVIDER_ERROR result instead. The returned slice has exactly
// one result per chunk row, in row order.
func (p *Processor) geocodeChunk(ctx context.Context, chunk Chunk) []geocode.Result {
	out := make([]geocode.Result, len(chunk.Rows))
	queries := make([]geocode.Query, 0, len(chunk.Rows))

	for i, row := range chunk.Rows {
		if p.column >= len(row) {
			out[i] = geocode.Result{
				Row:          chunk.Start + i,
				Status:       geocode.StatusProviderError,
				ErrorMessage: fmt.Sprintf("column %d out of range for row with %d columns", p.column, len(row)),
			}
			continue
		}
		queries = append(queries, geocode.Query{Row: chunk.Start + i, Location: row[p.column]})
	}

	for _, r := range p.svc.BatchGeocode(ctx, queries) {
		out[r.Row-chunk.Start] = r
	}
	return out
}

// mergeRows appends the result columns to every input row. Rows whose query
// was never attempted keep empty result cells, so output row i always
// corresponds to input row i.
func mergeRows(header []string, body [][]string, results []geocode.Result) [][]string {
	merged := make([][]string, 0, len(body)+1)
	if header != nil {
		merged = append(merged, append(append([]string{}, header...), resultColumns...))
	}

	for i, row := range body {
		cells := make([]string, 0, len(row)+len(resultColumns))
		cells = append(cells, row...)
		if i < len(results) {
			cells = append(cells, resultCells(results[i])...)
		} else {
			cells = append(cells, make([]string, len(resultColumns))...)
		}
		merged = append(merged, cells)
	}
	return merged
}

func resultCells(r geocode.Result) []string {
	if r.Status != geocode.StatusOK {
		return []string{string(r.Status), "", "", "", r.ErrorMessage}
	}
	return []string{
		string(r.Status),
		strconv.FormatFloat(r.Latitude, 'f', 6, 64),
		strconv.FormatFloat(r.Longitude, 'f', 6, 64),
		r.FormattedAddress,
		"",
	}
}
