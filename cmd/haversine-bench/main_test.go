package main

import (
	"io"
	"testing"
	"time"

	"github.com/spf13/afero"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var sample = []DecoderResult{
	{Name: "jsonparse", Runs: 3, Pairs: 10, Best: time.Millisecond, Mean: 2 * time.Millisecond, PerByte: 1000, Relative: 1},
}

func TestWriteFile(t *testing.T) {
	fs := afero.NewMemMapFs()
	require.NoError(t, writeFile(fs, "/out.csv", func(w io.Writer) { writeCSV(w, sample) }))

	data, err := afero.ReadFile(fs, "/out.csv")
	require.NoError(t, err)
	assert.Equal(t, "decoder,runs,pairs,best_ns,mean_ns,bytes_per_sec,relative\njsonparse,3,10,1000000,2000000,1000,1.0000\n", string(data))
}

func TestWriteFile_CreateError(t *testing.T) {
	fs := afero.NewReadOnlyFs(afero.NewMemMapFs())
	assert.Error(t, writeFile(fs, "/out.md", func(w io.Writer) { writeMarkdown(w, sample, "in.json", 10, 3) }))
}

type failingWriter struct{ writes int }

func (f *failingWriter) Write(p []byte) (int, error) {
	f.writes++
	return 0, io.ErrShortWrite
}

func TestErrWriter_KeepsFirstError(t *testing.T) {
	fw := &failingWriter{}
	ew := &errWriter{w: fw}
	writeCSV(ew, sample)

	assert.ErrorIs(t, ew.err, io.ErrShortWrite)
	assert.Equal(t, 1, fw.writes)
}
