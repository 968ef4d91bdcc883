// Package testutil provides testing utilities for synvm tests.
package testutil

import (
	"os"
	"path/filepath"
	"testing"

	dataframe "github.com/rocketlaunchr/dataframe-go"

	"github.com/akhildatla/synvm/pkg/vm"
)

// TempFile creates a temporary file with the given content and extension.
// The file is automatically cleaned up when the test finishes.
func TempFile(t *testing.T, content, ext string) string {
	t.Helper()
	tmpDir := t.TempDir()
	path := filepath.Join(tmpDir, "test"+ext)
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatalf("failed to write temp file: %v", err)
	}
	return path
}

// TempImage writes words as a binary program image and returns its path.
func TempImage(t *testing.T, words []vm.Word) string {
	t.Helper()
	return TempFile(t, string(vm.EncodeImage(words)), ".bin")
}

// HelloWords returns an image that prints "hi\n" and halts.
func HelloWords() []vm.Word {
	return []vm.Word{19, 'h', 19, 'i', 19, '\n', 0}
}

// EchoAsm returns assembly that copies one line of input to output.
func EchoAsm() string {
	return `; echo one line
loop:   in r0
        out r0
        eq r1, r0, '\n'
        jf r1, loop
        halt
`
}

// HelloCSV returns a sequential CSV listing of HelloWords.
func HelloCSV() string {
	return `word
19
104
19
105
19
10
0`
}

// MakeListingFrame creates an addressed listing frame.
func MakeListingFrame(addrs, words []int64) *dataframe.DataFrame {
	a := make([]interface{}, len(addrs))
	for i, v := range addrs {
		a[i] = v
	}
	w := make([]interface{}, len(words))
	for i, v := range words {
		w[i] = v
	}
	return dataframe.NewDataFrame(
		dataframe.NewSeriesInt64("addr", nil, a...),
		dataframe.NewSeriesInt64("word", nil, w...),
	)
}
