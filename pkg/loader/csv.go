package loader

import (
	"context"
	"errors"
	"os"

	dataframe "github.com/rocketlaunchr/dataframe-go"
	"github.com/rocketlaunchr/dataframe-go/imports"
)

// ErrEmptyCSV is returned for a listing with no columns.
var ErrEmptyCSV = errors.New("empty CSV listing")

// LoadCSV reads a CSV listing.
// - First row is header (column names)
// - Integer columns are inferred as int64
// - Comment lines starting with # are skipped
func LoadCSV(path string) (*dataframe.DataFrame, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer file.Close()

	ctx := context.Background()
	df, err := imports.LoadFromCSV(ctx, file, imports.CSVLoadOptions{
		InferDataTypes:   true,
		Comment:          '#',
		TrimLeadingSpace: true,
	})
	if err != nil {
		return nil, err
	}

	if df == nil || len(df.Series) == 0 {
		return nil, ErrEmptyCSV
	}

	return df, nil
}
