package ui

import (
	"bytes"
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestPlainOutput(t *testing.T) {
	u := NewPlain(&bytes.Buffer{}, &bytes.Buffer{})

	assert.Equal(t, "=== mysqldb ===", u.Header("mysqldb"))
	assert.Equal(t, "Version:       dev", u.KeyValue("Version", "dev"))
	assert.Equal(t, "[OK] done", u.Success("done"))
	assert.Equal(t, "[FAILED] broke", u.Error("broke"))
	assert.Equal(t, "[WARN] careful", u.Warning("careful"))
	assert.Equal(t, "(0 rows)", u.RowCount(0))
	assert.Equal(t, "(1 row)", u.RowCount(1))
	assert.Equal(t, "=== Build ===\nGo:            go1", u.SummaryBox("Build", []KV{{Key: "Go", Value: "go1"}}))
}

func TestResultTablePlain(t *testing.T) {
	u := NewPlain(&bytes.Buffer{}, &bytes.Buffer{})

	got := u.ResultTable(
		[]string{"id", "name"},
		[][]string{{"1", "O'Brien"}, {"22", NullText}},
	)
	assert.Equal(t, "id  name\n1   O'Brien\n22  NULL", got)

	assert.Empty(t, u.ResultTable(nil, nil))
}

func TestResultTableStyled(t *testing.T) {
	u := NewPlain(&bytes.Buffer{}, &bytes.Buffer{})
	u.OutTTY = true
	u.NoColor = false

	got := u.ResultTable([]string{"id"}, [][]string{{"1"}, {NullText}})
	assert.Contains(t, got, "id")
	assert.Contains(t, got, "NULL")
	// Rounded border corners
	assert.True(t, strings.Contains(got, "╭") && strings.Contains(got, "╯"))
}

func TestSpinnerPlain(t *testing.T) {
	var errOut bytes.Buffer
	u := NewPlain(&bytes.Buffer{}, &errOut)

	s := u.NewSpinner("Connecting")
	s.Success("not started") // no-op before Start
	s.Start()
	s.Success("connected")
	s.Error("ignored after stop")

	assert.Equal(t, "Connecting... connected\n", errOut.String())
}

func TestProgressBarPlain(t *testing.T) {
	var errOut bytes.Buffer
	u := NewPlain(&bytes.Buffer{}, &errOut)

	p := u.NewProgressBar("Dumping users", 3)
	for i := int64(1); i <= 3; i++ {
		p.Update(i)
	}
	assert.Equal(t, int64(3), p.Current())
	p.Complete()
	assert.True(t, strings.HasPrefix(errOut.String(), "Dumping users: 3 rows in "))

	errOut.Reset()
	p.Fail(errors.New("disk full"))
	assert.Equal(t, "Dumping users: FAILED after 3 rows: disk full\n", errOut.String())
}
