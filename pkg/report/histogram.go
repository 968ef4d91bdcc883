package report

import (
	"context"

	dataframe "github.com/rocketlaunchr/dataframe-go"

	"github.com/akhildatla/synvm/pkg/vm"
)

// Histogram column names.
const (
	ColOpcode = "opcode"
	ColCount  = "count"
	ColShare  = "share"
)

// HistogramFrame returns one row per executed opcode, sorted by count
// (descending) then mnemonic. Share is the fraction of all executed
// instructions.
func HistogramFrame(stats *vm.ExecutionStats) *dataframe.DataFrame {
	names := []interface{}{}
	counts := []interface{}{}
	shares := []interface{}{}

	var total int64
	if stats != nil {
		for _, n := range stats.OpCounts {
			total += int64(n)
		}
		for op := vm.OpHalt; op.Valid(); op++ {
			n, ok := stats.OpCounts[op.String()]
			if !ok || n == 0 {
				continue
			}
			names = append(names, op.String())
			counts = append(counts, int64(n))
			shares = append(shares, float64(n)/float64(total))
		}
	}

	df := dataframe.NewDataFrame(
		dataframe.NewSeriesString(ColOpcode, nil, names...),
		dataframe.NewSeriesInt64(ColCount, nil, counts...),
		dataframe.NewSeriesFloat64(ColShare, nil, shares...),
	)
	df.Sort(context.Background(), []dataframe.SortKey{
		{Key: ColCount, Desc: true},
		{Key: ColOpcode},
	})
	return df
}

// Histogram renders the opcode histogram as a text table.
func Histogram(stats *vm.ExecutionStats) string {
	return HistogramFrame(stats).Table()
}
