// Package loader reads program images from disk.
//
// The format is chosen by file extension:
//
//	.asm               assembly source
//	.csv .json .parquet tabular listing with a word column and optional addr column
//	anything else      raw little-endian binary image
package loader

import (
	"errors"
	"fmt"
	"math"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	dataframe "github.com/rocketlaunchr/dataframe-go"

	"github.com/akhildatla/synvm/pkg/compiler"
	"github.com/akhildatla/synvm/pkg/vm"
)

// Column names recognised in tabular listings.
const (
	WordColumn = "word"
	AddrColumn = "addr"
)

// Listing errors
var (
	ErrNoWordColumn  = errors.New("listing has no word column")
	ErrInvalidWord   = errors.New("invalid word in listing")
	ErrInvalidAddr   = errors.New("invalid address in listing")
	ErrDuplicateAddr = errors.New("duplicate address in listing")
)

// Format identifies how a program file is decoded.
type Format string

const (
	FormatBinary  Format = "binary"
	FormatAsm     Format = "asm"
	FormatCSV     Format = "csv"
	FormatJSON    Format = "json"
	FormatParquet Format = "parquet"
)

// DetectFormat returns the format implied by the file extension of path.
func DetectFormat(path string) Format {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".asm", ".s":
		return FormatAsm
	case ".csv":
		return FormatCSV
	case ".json":
		return FormatJSON
	case ".parquet":
		return FormatParquet
	default:
		return FormatBinary
	}
}

// Load reads the program at path and returns its image.
func Load(path string) ([]vm.Word, error) {
	switch DetectFormat(path) {
	case FormatAsm:
		return LoadAsm(path)
	case FormatCSV:
		return loadListing(path, LoadCSV)
	case FormatJSON:
		return loadListing(path, LoadJSON)
	case FormatParquet:
		return loadListing(path, LoadParquet)
	default:
		return vm.ReadImageFile(path)
	}
}

// LoadAsm assembles the source file at path.
func LoadAsm(path string) ([]vm.Word, error) {
	src, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	words, err := compiler.Assemble(string(src))
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return words, nil
}

func loadListing(path string, load func(string) (*dataframe.DataFrame, error)) ([]vm.Word, error) {
	df, err := load(path)
	if err != nil {
		return nil, err
	}
	words, err := FromFrame(df)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return words, nil
}

// FromFrame converts a listing to a program image. Rows without an addr
// column are placed sequentially from address 0; with one, each word is
// stored at its address and unlisted cells are zero.
func FromFrame(df *dataframe.DataFrame) ([]vm.Word, error) {
	wordIdx, err := df.NameToColumn(WordColumn)
	if err != nil {
		return nil, ErrNoWordColumn
	}
	words := df.Series[wordIdx]

	var addrs dataframe.Series
	if addrIdx, err := df.NameToColumn(AddrColumn); err == nil {
		addrs = df.Series[addrIdx]
	}

	n := words.NRows()
	if addrs == nil {
		if n > vm.MemorySize {
			return nil, fmt.Errorf("%w: %d words exceeds memory size %d", vm.ErrMalformedImage, n, vm.MemorySize)
		}
		image := make([]vm.Word, n)
		for row := 0; row < n; row++ {
			w, err := cellValue(words.Value(row), math.MaxUint16)
			if err != nil {
				return nil, fmt.Errorf("%w: row %d: %v", ErrInvalidWord, row+1, err)
			}
			image[row] = vm.Word(w)
		}
		return image, nil
	}

	image := make([]vm.Word, 0)
	seen := make(map[int64]bool, n)
	for row := 0; row < n; row++ {
		addr, err := cellValue(addrs.Value(row), vm.MemorySize-1)
		if err != nil {
			return nil, fmt.Errorf("%w: row %d: %v", ErrInvalidAddr, row+1, err)
		}
		if seen[addr] {
			return nil, fmt.Errorf("%w: %d", ErrDuplicateAddr, addr)
		}
		seen[addr] = true

		w, err := cellValue(words.Value(row), math.MaxUint16)
		if err != nil {
			return nil, fmt.Errorf("%w: row %d: %v", ErrInvalidWord, row+1, err)
		}
		for int64(len(image)) <= addr {
			image = append(image, 0)
		}
		image[addr] = vm.Word(w)
	}
	return image, nil
}

// cellValue interprets one listing cell as an integer in 0..max. Type
// inference may hand back int64, float64 or string depending on the source.
func cellValue(v interface{}, max int64) (int64, error) {
	var n int64
	switch x := v.(type) {
	case nil:
		return 0, errors.New("missing value")
	case int64:
		n = x
	case float64:
		if x != math.Trunc(x) {
			return 0, fmt.Errorf("%v is not an integer", x)
		}
		n = int64(x)
	case string:
		parsed, err := strconv.ParseInt(strings.TrimSpace(x), 0, 64)
		if err != nil {
			return 0, fmt.Errorf("%q is not an integer", x)
		}
		n = parsed
	default:
		return 0, fmt.Errorf("unsupported value %v (%T)", v, v)
	}
	if n < 0 || n > max {
		return 0, fmt.Errorf("%d out of range 0..%d", n, max)
	}
	return n, nil
}
