package loader

import (
	"bytes"
	"context"
	"errors"
	"os"

	dataframe "github.com/rocketlaunchr/dataframe-go"
	"github.com/rocketlaunchr/dataframe-go/imports"
)

// ErrEmptyJSON is returned for a listing file with no rows.
var ErrEmptyJSON = errors.New("empty JSON listing")

// LoadJSON reads a JSON listing of objects, one per word:
//
//	[{"addr": 0, "word": 19}, {"addr": 1, "word": 65}]
//
// The word field is forced to int64 so numbers are not inferred as floats.
func LoadJSON(path string) (*dataframe.DataFrame, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	if len(bytes.TrimSpace(data)) == 0 {
		return nil, ErrEmptyJSON
	}

	ctx := context.Background()
	df, err := imports.LoadFromJSON(ctx, bytes.NewReader(data), imports.JSONLoadOptions{
		DictateDataType: map[string]interface{}{
			WordColumn: int64(0),
			AddrColumn: int64(0),
		},
	})
	if err != nil {
		return nil, err
	}

	if df == nil || len(df.Series) == 0 {
		return nil, ErrEmptyJSON
	}

	return df, nil
}
