package report

import (
	"encoding/csv"
	"io"
	"strconv"
	"time"

	"github.com/pkg/errors"
	"github.com/vadiminshakov/txengine/internal/storage/rejects"
)

// RejectHeader is the column row of WriteRejectsCSV.
var RejectHeader = []string{"index", "run_id", "line", "time", "reason", "raw"}

// WriteRejectsCSV writes one row per journaled reject, in journal order.
func WriteRejectsCSV(w io.Writer, records []rejects.Record) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(RejectHeader); err != nil {
		return errors.Wrap(err, "write header")
	}
	for _, r := range records {
		row := []string{
			strconv.FormatUint(r.Index, 10),
			r.Reject.RunID,
			strconv.Itoa(r.Reject.Line),
			r.Reject.Time.UTC().Format(time.RFC3339),
			r.Reject.Reason,
			r.Reject.Raw,
		}
		if err := cw.Write(row); err != nil {
			return errors.Wrapf(err, "write reject %d", r.Index)
		}
	}
	cw.Flush()
	return errors.Wrap(cw.Error(), "flush rejects")
}
