package ingest

import (
	"encoding/csv"
	"io"
	"strings"

	"github.com/pkg/errors"

	"github.com/G-Research/kafkametrics/internal/kafkametrics/model"
)

// ListSeparator splits the owners and stakeholders cells into their elements.
const ListSeparator = ";"

type fieldSetter func(record *model.MetricRecord, value string) error

func stringField(get func(record *model.MetricRecord) **string) fieldSetter {
	return func(record *model.MetricRecord, value string) error {
		if value != "" {
			*get(record) = &value
		}
		return nil
	}
}

func listField(get func(record *model.MetricRecord) *[]string) fieldSetter {
	return func(record *model.MetricRecord, value string) error {
		if value == "" {
			return nil
		}
		var items []string
		for _, item := range strings.Split(value, ListSeparator) {
			if item = strings.TrimSpace(item); item != "" {
				items = append(items, item)
			}
		}
		*get(record) = items
		return nil
	}
}

var fieldSetters = map[string]fieldSetter{
	"metric_date": func(record *model.MetricRecord, value string) error {
		date, err := model.ParseDate(value)
		if err != nil {
			return err
		}
		record.MetricDate = date
		return nil
	},
	"cluster_name":     stringField(func(r *model.MetricRecord) **string { return &r.ClusterName }),
	"namespace":        stringField(func(r *model.MetricRecord) **string { return &r.Namespace }),
	"data_plane":       stringField(func(r *model.MetricRecord) **string { return &r.DataPlane }),
	"environment":      stringField(func(r *model.MetricRecord) **string { return &r.Environment }),
	"application_name": stringField(func(r *model.MetricRecord) **string { return &r.ApplicationName }),
	"owners":           listField(func(r *model.MetricRecord) *[]string { return &r.Owners }),
	"stakeholders":     listField(func(r *model.MetricRecord) *[]string { return &r.Stakeholders }),
	"mots_id":          stringField(func(r *model.MetricRecord) **string { return &r.MotsId }),
	"consumedbytes":    stringField(func(r *model.MetricRecord) **string { return &r.ConsumedBytes }),
	"producedbytes":    stringField(func(r *model.MetricRecord) **string { return &r.ProducedBytes }),
	"pool_id":          stringField(func(r *model.MetricRecord) **string { return &r.PoolId }),
}

// ReadMetricsCsv parses a CSV document whose header row names table columns. Columns may appear in any order
// but metric_date must be present. Empty cells are NULL.
func ReadMetricsCsv(r io.Reader) ([]*model.MetricRecord, error) {
	reader := csv.NewReader(r)
	reader.TrimLeadingSpace = true

	headers, err := reader.Read()
	if err != nil {
		return nil, errors.Wrap(err, "failed to read CSV headers")
	}
	setters := make([]fieldSetter, len(headers))
	hasDate := false
	for i, h := range headers {
		name := strings.ToLower(strings.TrimSpace(h))
		setter, ok := fieldSetters[name]
		if !ok {
			return nil, errors.Errorf("unknown column %q", h)
		}
		setters[i] = setter
		hasDate = hasDate || name == "metric_date"
	}
	if !hasDate {
		return nil, errors.New("metric_date column is required")
	}
	reader.FieldsPerRecord = len(headers)

	records := []*model.MetricRecord{}
	line := 1
	for {
		row, err := reader.Read()
		if err == io.EOF {
			break
		}
		line++
		if err != nil {
			return nil, errors.Wrapf(err, "line %d", line)
		}
		record := &model.MetricRecord{}
		for i, value := range row {
			if err := setters[i](record, strings.TrimSpace(value)); err != nil {
				return nil, errors.Wrapf(err, "line %d, column %s", line, headers[i])
			}
		}
		records = append(records, record)
	}
	return records, nil
}
