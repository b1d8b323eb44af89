package ingest

import (
	"os"

	"github.com/pkg/errors"

	"github.com/G-Research/kafkametrics/internal/common/appcontext"
	"github.com/G-Research/kafkametrics/internal/common/util"
)

// LoadFile reads metric rows from the CSV file at path and writes them all with writer.
func LoadFile(ctx *appcontext.Context, writer *MetricsWriter, path string) (int, error) {
	f, err := os.Open(path)
	if err != nil {
		return 0, errors.WithStack(err)
	}
	defer util.CloseResource("csv file", f)

	records, err := ReadMetricsCsv(f)
	if err != nil {
		return 0, errors.Wrapf(err, "reading %s", path)
	}
	ctx.Log.Infof("Read %d metric rows from %s", len(records), path)
	return writer.Write(ctx, records)
}
