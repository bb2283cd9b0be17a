package chatmood

import "fmt"

// AccuracyReport counts exact label matches.
type AccuracyReport struct {
	Correct int
	Total   int
}

// Accuracy returns the fraction of correct predictions.
func (r AccuracyReport) Accuracy() float64 {
	if r.Total == 0 {
		return 0
	}
	return float64(r.Correct) / float64(r.Total)
}

// Accuracy compares each record's predicted label with the ground truth in
// actualColumn as strings. An unscored record counts as wrong unless the
// truth is empty. An empty batch returns ErrNoData instead of a NaN ratio,
// and a record without actualColumn returns ErrMissingColumn.
func Accuracy(records []*Record, actualColumn string) (AccuracyReport, error) {
	if len(records) == 0 {
		return AccuracyReport{}, ErrNoData
	}

	var report AccuracyReport
	for i, rec := range records {
		if err := requireField(rec, i, actualColumn); err != nil {
			return AccuracyReport{}, err
		}
		if rec.Fields[actualColumn] == string(rec.Label) {
			report.Correct++
		}
		report.Total++
	}
	return report, nil
}

// AccuracyFromColumns compares two columns of already-scored records, for
// datasets read back from a previous run.
func AccuracyFromColumns(records []*Record, actualColumn, predictedColumn string) (AccuracyReport, error) {
	if len(records) == 0 {
		return AccuracyReport{}, ErrNoData
	}

	var report AccuracyReport
	for i, rec := range records {
		if err := requireField(rec, i, actualColumn, predictedColumn); err != nil {
			return AccuracyReport{}, err
		}
		if rec.Fields[actualColumn] == rec.Fields[predictedColumn] {
			report.Correct++
		}
		report.Total++
	}
	return report, nil
}

func requireField(rec *Record, i int, columns ...string) error {
	for _, column := range columns {
		if _, ok := rec.Fields[column]; !ok {
			return fmt.Errorf("record %d: %w %q", i, ErrMissingColumn, column)
		}
	}
	return nil
}
