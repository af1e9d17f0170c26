package batch

import (
	"bufio"
	"bytes"
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"strings"
	"testing"

	"github.com/spf13/afero"
	"github.com/stretchr/testify/require"

	"github.com/vango-dev/urlkit/internal/store"
	"github.com/vango-dev/urlkit/pkg/urlcodec"
)

const input = `# sample urls
https://www.example.com:8080/docs/?q=go&tag=a#intro

/relative/path/?x=1
  http://127.0.0.1/
# trailing comment
?only=query
`

func newStore(t *testing.T, content string) store.Store {
	t.Helper()
	st := store.NewFileStore(afero.NewMemMapFs(), "/jobs")
	require.NoError(t, st.Put(context.Background(), "in.txt", strings.NewReader(content)))
	return st
}

func readRecords(t *testing.T, st store.Store, key string) []Record {
	t.Helper()
	rc, err := st.Get(context.Background(), key)
	require.NoError(t, err)
	defer rc.Close()

	var out []Record
	sc := bufio.NewScanner(rc)
	for sc.Scan() {
		var rec Record
		require.NoError(t, json.Unmarshal(sc.Bytes(), &rec), sc.Text())
		out = append(out, rec)
	}
	require.NoError(t, sc.Err())
	return out
}

func TestRun(t *testing.T) {
	st := newStore(t, input)
	var logs bytes.Buffer
	report, err := Run(context.Background(), st, "in.txt", "out/segments.jsonl", Options{
		Concurrency: 2,
		Logger:      slog.New(slog.NewTextHandler(&logs, nil)),
	})
	require.NoError(t, err)
	require.Equal(t, Report{Total: 4, Absolute: 2, Relative: 2}, report)
	require.Contains(t, logs.String(), "batch complete")

	recs := readRecords(t, st, "out/segments.jsonl")
	require.Len(t, recs, 4)

	require.Equal(t, 2, recs[0].Line)
	require.Equal(t, "www.example.com", recs[0].Segments.Domain)
	require.Equal(t, "8080", recs[0].Segments.Port)
	require.Equal(t, "/docs", recs[0].Segments.Pathname)
	require.Equal(t, "intro", recs[0].Segments.Hash)
	q, ok := recs[0].Segments.QueryParamMap.Get("q")
	require.True(t, ok)
	require.Equal(t, "go", q.First())

	require.Equal(t, 4, recs[1].Line)
	require.Equal(t, "/relative/path/?x=1", recs[1].Input)
	require.Empty(t, recs[1].Segments.Protocol)

	require.Equal(t, "http://127.0.0.1/", recs[2].Input, "input is trimmed")
	require.Equal(t, "127.0.0.1", recs[2].Segments.Domain)

	require.Equal(t, 7, recs[3].Line)
}

func TestRunPreservesOrder(t *testing.T) {
	var b strings.Builder
	for i := 0; i < 200; i++ {
		b.WriteString("https://host.test/item?id=")
		b.WriteString(strings.Repeat("x", i%7))
		b.WriteByte('\n')
	}
	st := newStore(t, b.String())

	report, err := Run(context.Background(), st, "in.txt", "out.jsonl", Options{Concurrency: 8})
	require.NoError(t, err)
	require.Equal(t, 200, report.Total)

	recs := readRecords(t, st, "out.jsonl")
	for i, rec := range recs {
		require.Equal(t, i+1, rec.Line)
	}
}

func TestRunCodecOptions(t *testing.T) {
	st := newStore(t, "https://a.test/?tags=x%2Cy\n")
	_, err := Run(context.Background(), st, "in.txt", "out.jsonl", Options{
		Codec: []urlcodec.Option{urlcodec.WithListSeparator(",")},
	})
	require.NoError(t, err)

	recs := readRecords(t, st, "out.jsonl")
	v, _ := recs[0].Segments.QueryParamMap.Get("tags")
	require.True(t, v.IsList())
	require.Equal(t, []string{"x", "y"}, v.Values())
}

func TestRunEmptyInput(t *testing.T) {
	st := newStore(t, "# nothing here\n\n")
	report, err := Run(context.Background(), st, "in.txt", "out.jsonl", Options{})
	require.NoError(t, err)
	require.Zero(t, report.Total)

	rc, err := st.Get(context.Background(), "out.jsonl")
	require.NoError(t, err)
	defer rc.Close()
	data, _ := io.ReadAll(rc)
	require.Empty(t, data)
}

func TestRunMissingSource(t *testing.T) {
	st := store.NewFileStore(afero.NewMemMapFs(), "/jobs")
	_, err := Run(context.Background(), st, "missing.txt", "out.jsonl", Options{})
	require.ErrorIs(t, err, store.ErrNotFound)
}

func TestRunCanceled(t *testing.T) {
	st := newStore(t, input)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err := Run(ctx, st, "in.txt", "out.jsonl", Options{})
	require.ErrorIs(t, err, context.Canceled)
}
