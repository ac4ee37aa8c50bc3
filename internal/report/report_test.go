package report

import (
	"bytes"
	stderrors "errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	jerrors "jsonator/internal/errors"
	"jsonator/internal/logging"
)

func TestStatus_Precedence(t *testing.T) {
	tests := []struct {
		name                  string
		check                 bool
		changed, same, failed int
		want                  ExitCode
	}{
		{"empty", false, 0, 0, 0, NothingWouldChange},
		{"empty check", true, 0, 0, 0, NothingWouldChange},
		{"unchanged check", true, 0, 3, 0, NothingWouldChange},
		{"changed check", true, 1, 2, 0, SomeFilesWouldBeReformatted},
		{"changed written", false, 4, 0, 0, NothingWouldChange},
		{"failure wins", true, 5, 5, 1, InternalError},
		{"failure without check", false, 0, 0, 2, InternalError},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := New(tt.check, false, nil)
			record(r, tt.changed, tt.same, tt.failed)
			assert.Equal(t, tt.want, r.Status())
		})
	}
}

func TestSummary(t *testing.T) {
	tests := []struct {
		name                  string
		check, diff           bool
		changed, same, failed int
		want                  string
	}{
		{"nothing", false, false, 0, 0, 0, "."},
		{"one reformatted", false, false, 1, 0, 0, "1 file reformatted."},
		{"two reformatted", false, false, 2, 0, 0, "2 files reformatted."},
		{"all clauses", false, false, 1, 2, 3, "1 file reformatted, 2 files left unchanged, 3 files failed to reformat."},
		{"check wording", true, false, 2, 1, 1, "2 files would be reformatted, 1 file would be left unchanged, 1 file would fail to reformat."},
		{"diff wording", false, true, 1, 0, 0, "1 file would be reformatted."},
		{"skips zero counters", false, false, 0, 0, 1, "1 file failed to reformat."},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := New(tt.check, tt.diff, nil)
			record(r, tt.changed, tt.same, tt.failed)
			assert.Equal(t, tt.want, r.Summary())
			assert.Equal(t, tt.want, r.String())
		})
	}
}

func TestCounts_Conservation(t *testing.T) {
	r := New(false, false, nil)
	record(r, 3, 4, 5)

	c := r.Counts()
	assert.Equal(t, Counts{Changed: 3, Unchanged: 4, Failed: 5}, c)
	assert.Equal(t, 12, c.Total())
}

func TestMessages(t *testing.T) {
	var buf bytes.Buffer
	log, err := logging.New(logging.Config{Level: "info", Format: "plain", Writer: &buf})
	require.NoError(t, err)

	r := New(false, false, log)
	r.RecordSuccess("a.json", true)
	r.RecordSuccess("b.json", false)
	r.RecordFailure("c.json", "unexpected end of JSON input")

	want := "reformatted a.json\n" +
		"b.json already well formatted, good job.\n" +
		"error: cannot format c.json: unexpected end of JSON input\n"
	assert.Equal(t, want, buf.String())

	buf.Reset()
	New(true, false, log).RecordSuccess("a.json", true)
	assert.Equal(t, "would reformat a.json\n", buf.String())
}

func TestRecordError_DebugDetail(t *testing.T) {
	var buf bytes.Buffer
	log, err := logging.New(logging.Config{Level: "debug", Writer: &buf})
	require.NoError(t, err)

	r := New(false, false, log)
	r.RecordError("a.json", jerrors.ErrParse("unexpected end of JSON input", 2).WithPath("a.json"))
	r.RecordError("b.json", stderrors.New("boom"))

	want := "error: cannot format a.json: unexpected end of JSON input\n" +
		"[ParseError] a.json: unexpected end of JSON input (offset 2) path=a.json code=ParseError\n" +
		"error: cannot format b.json: boom\n"
	assert.Equal(t, want, buf.String())
	assert.Equal(t, 2, r.Counts().Failed)
	assert.Equal(t, InternalError, r.Status())
}

func TestRecordError_DetailHiddenAboveDebug(t *testing.T) {
	var buf bytes.Buffer
	log, err := logging.New(logging.Config{Level: "error", Writer: &buf})
	require.NoError(t, err)

	New(false, false, log).RecordError("a.json", jerrors.ErrNotFound("a.json"))
	assert.Equal(t, "error: cannot format a.json: file not found\n", buf.String())
}

func TestMessages_DefaultLevelHidesUnchanged(t *testing.T) {
	var buf bytes.Buffer
	log, err := logging.New(logging.Config{Writer: &buf})
	require.NoError(t, err)

	r := New(true, false, log)
	r.RecordSuccess("same.json", false)
	assert.Empty(t, buf.String())
}

func TestExitCodeString(t *testing.T) {
	assert.Equal(t, "internal error", InternalError.String())
	assert.Equal(t, "file not found", FileNotFound.String())
	assert.Equal(t, "exit code 7", ExitCode(7).String())
	assert.Equal(t, 123, int(InternalError))
	assert.Equal(t, 122, int(FileNotFound))
}

func record(r *Report, changed, same, failed int) {
	for i := 0; i < changed; i++ {
		r.RecordSuccess("changed.json", true)
	}
	for i := 0; i < same; i++ {
		r.RecordSuccess("same.json", false)
	}
	for i := 0; i < failed; i++ {
		r.RecordFailure("failed.json", "boom")
	}
}
