// Package batch decomposes lists of URLs read from a store and writes the
// segments back as JSON Lines.
package batch

import (
	"bufio"
	"bytes"
	"context"
	"encoding/json"
	"log/slog"
	"runtime"
	"strings"

	"golang.org/x/sync/errgroup"

	"github.com/vango-dev/urlkit/internal/errors"
	"github.com/vango-dev/urlkit/internal/store"
	"github.com/vango-dev/urlkit/pkg/urlcodec"
)

// maxLineSize bounds a single input line.
const maxLineSize = 1 << 20

// Options configures Run.
type Options struct {
	// Concurrency limits the number of URLs decomposed at once.
	// Default: runtime.GOMAXPROCS(0).
	Concurrency int

	// Codec options used for every URL.
	Codec []urlcodec.Option

	// Logger receives progress logs. Default: slog.Default().
	Logger *slog.Logger
}

// Report summarizes a run.
type Report struct {
	Total    int `json:"total"`
	Absolute int `json:"absolute"`
	Relative int `json:"relative"`
}

// Record is one output line.
type Record struct {
	Line     int               `json:"line"`
	Input    string            `json:"input"`
	Segments urlcodec.Segments `json:"segments"`
}

// Run reads newline-separated URLs from src, decomposes each with
// urlcodec.GetURLSegments and writes one Record per URL to dst, in input
// order. Blank lines and lines starting with "#" are skipped.
func Run(ctx context.Context, st store.Store, src, dst string, opts Options) (Report, error) {
	if opts.Concurrency <= 0 {
		opts.Concurrency = runtime.GOMAXPROCS(0)
	}
	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}

	lines, err := readLines(ctx, st, src)
	if err != nil {
		return Report{}, err
	}

	records := make([]Record, len(lines))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(opts.Concurrency)
	for i, l := range lines {
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			records[i] = Record{
				Line:     l.number,
				Input:    l.text,
				Segments: urlcodec.GetURLSegments(l.text, opts.Codec...),
			}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return Report{}, err
	}

	var (
		buf    bytes.Buffer
		report Report
	)
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	for _, rec := range records {
		if err := enc.Encode(rec); err != nil {
			return Report{}, errors.New("U062").Wrap(err)
		}
		report.Total++
		if rec.Segments.IsAbsolute() {
			report.Absolute++
		} else {
			report.Relative++
		}
	}

	if err := st.Put(ctx, dst, &buf); err != nil {
		return Report{}, err
	}

	logger.Info("batch complete",
		"src", src,
		"dst", dst,
		"total", report.Total,
		"absolute", report.Absolute,
		"relative", report.Relative,
	)
	return report, nil
}

type line struct {
	number int
	text   string
}

func readLines(ctx context.Context, st store.Store, src string) ([]line, error) {
	rc, err := st.Get(ctx, src)
	if err != nil {
		return nil, err
	}
	defer rc.Close()

	var lines []line
	sc := bufio.NewScanner(rc)
	sc.Buffer(make([]byte, 0, 64*1024), maxLineSize)
	n := 0
	for sc.Scan() {
		n++
		text := strings.TrimSpace(sc.Text())
		if text == "" || strings.HasPrefix(text, "#") {
			continue
		}
		lines = append(lines, line{number: n, text: text})
	}
	if err := sc.Err(); err != nil {
		return nil, errors.New("U061").Wrap(err)
	}
	return lines, nil
}
