package exporter

import (
	"fmt"
	"log/slog"
	"math"
	"os"
	"path/filepath"
	"strconv"

	"github.com/apache/arrow-go/v18/arrow"
	"github.com/apache/arrow-go/v18/arrow/array"
	"github.com/apache/arrow-go/v18/arrow/ipc"
	"github.com/apache/arrow-go/v18/arrow/memory"

	"github.com/Abiyes-Stack/dataco-supply-chain-analysis/internal/errors"
	"github.com/Abiyes-Stack/dataco-supply-chain-analysis/internal/features"
	"github.com/Abiyes-Stack/dataco-supply-chain-analysis/internal/frame"
)

// Schema metadata keys of a model data file
const (
	MetaTarget = "target"
	MetaScaled = "scaled"
)

// ArrowWriter writes tables and model matrices as Arrow IPC files.
type ArrowWriter struct {
	allocator memory.Allocator
	logger    *slog.Logger
}

// NewArrowWriter creates a new ArrowWriter.
func NewArrowWriter(logger *slog.Logger) *ArrowWriter {
	if logger == nil {
		logger = slog.Default()
	}
	return &ArrowWriter{
		allocator: memory.DefaultAllocator,
		logger:    logger.With(slog.String("component", "exporter")),
	}
}

// TableRecord converts t into one record. String columns map to utf8, Int to int64,
// Float to float64, Time to UTC second timestamps and Period to the date of the month's
// first day. Every field is nullable. The caller releases the record.
func (w *ArrowWriter) TableRecord(t *frame.Table) (arrow.Record, error) {
	cols := t.Columns()
	fields := make([]arrow.Field, len(cols))
	for j, c := range cols {
		dt, err := arrowType(c.Kind())
		if err != nil {
			return nil, fmt.Errorf("column %q: %w", c.Name(), err)
		}
		fields[j] = arrow.Field{Name: c.Name(), Type: dt, Nullable: true}
	}

	builder := array.NewRecordBuilder(w.allocator, arrow.NewSchema(fields, nil))
	defer builder.Release()

	for j, c := range cols {
		if err := appendColumn(builder.Field(j), c); err != nil {
			return nil, fmt.Errorf("column %q: %w", c.Name(), err)
		}
	}
	return builder.NewRecord(), nil
}

// ModelRecord converts model data into one record with a float64 field per feature
// followed by the target. The schema metadata names the target and whether the
// features were scaled.
func (w *ArrowWriter) ModelRecord(md *features.ModelData) arrow.Record {
	fields := make([]arrow.Field, 0, len(md.FeatureNames)+1)
	for _, name := range md.FeatureNames {
		fields = append(fields, arrow.Field{Name: name, Type: arrow.PrimitiveTypes.Float64})
	}
	fields = append(fields, arrow.Field{Name: md.TargetName, Type: arrow.PrimitiveTypes.Float64, Nullable: true})

	meta := arrow.NewMetadata(
		[]string{MetaTarget, MetaScaled},
		[]string{md.TargetName, strconv.FormatBool(md.Scaler != nil)},
	)
	builder := array.NewRecordBuilder(w.allocator, arrow.NewSchema(fields, &meta))
	defer builder.Release()

	rows := md.Rows()
	for j := range md.FeatureNames {
		fb := builder.Field(j).(*array.Float64Builder)
		fb.Reserve(rows)
		for i := 0; i < rows; i++ {
			fb.Append(md.X.At(i, j))
		}
	}

	tb := builder.Field(len(md.FeatureNames)).(*array.Float64Builder)
	valid := make([]bool, len(md.Target))
	for i, v := range md.Target {
		valid[i] = !math.IsNaN(v)
	}
	tb.AppendValues(md.Target, valid)

	return builder.NewRecord()
}

// WriteModelData writes md to an Arrow IPC file at path.
func (w *ArrowWriter) WriteModelData(path string, md *features.ModelData) error {
	record := w.ModelRecord(md)
	defer record.Release()

	if err := w.writeFile(path, record); err != nil {
		return errors.NewStorageError("failed to write model data", err).WithContext("path", path)
	}

	w.logger.Info("Wrote model data",
		slog.String("file_path", path),
		slog.Int("rows", md.Rows()),
		slog.Int("features", len(md.FeatureNames)),
		slog.String("target", md.TargetName))
	return nil
}

// WriteTable writes t to an Arrow IPC file at path.
func (w *ArrowWriter) WriteTable(path string, t *frame.Table) error {
	record, err := w.TableRecord(t)
	if err != nil {
		return errors.NewSchemaError("table", err)
	}
	defer record.Release()

	if err := w.writeFile(path, record); err != nil {
		return errors.NewStorageError("failed to write table", err).WithContext("path", path)
	}
	return nil
}

func (w *ArrowWriter) writeFile(path string, record arrow.Record) (err error) {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return fmt.Errorf("failed to create directory: %w", err)
	}

	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create file: %w", err)
	}
	defer func() {
		if cerr := f.Close(); err == nil {
			err = cerr
		}
	}()

	writer, err := ipc.NewFileWriter(f, ipc.WithSchema(record.Schema()), ipc.WithAllocator(w.allocator))
	if err != nil {
		return fmt.Errorf("failed to create writer: %w", err)
	}
	if err := writer.Write(record); err != nil {
		writer.Close()
		return fmt.Errorf("failed to write record: %w", err)
	}
	if err := writer.Close(); err != nil {
		return fmt.Errorf("failed to close writer: %w", err)
	}
	return nil
}

// ReadFile reads every record of an Arrow IPC file. The caller releases the records.
func (w *ArrowWriter) ReadFile(path string) ([]arrow.Record, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, errors.NewNotFoundError(path, err)
	}
	defer f.Close()

	reader, err := ipc.NewFileReader(f, ipc.WithAllocator(w.allocator))
	if err != nil {
		return nil, errors.NewParsingError("failed to create reader", err)
	}
	defer reader.Close()

	records := make([]arrow.Record, 0, reader.NumRecords())
	for i := 0; i < reader.NumRecords(); i++ {
		record, err := reader.Record(i)
		if err != nil {
			for _, r := range records {
				r.Release()
			}
			return nil, errors.NewParsingError(fmt.Sprintf("failed to read record %d", i), err)
		}
		record.Retain()
		records = append(records, record)
	}
	return records, nil
}

func arrowType(k frame.Kind) (arrow.DataType, error) {
	switch k {
	case frame.String:
		return arrow.BinaryTypes.String, nil
	case frame.Int:
		return arrow.PrimitiveTypes.Int64, nil
	case frame.Float:
		return arrow.PrimitiveTypes.Float64, nil
	case frame.Time:
		return arrow.FixedWidthTypes.Timestamp_s, nil
	case frame.Period:
		return arrow.FixedWidthTypes.Date32, nil
	}
	return nil, fmt.Errorf("unsupported column kind %s", k)
}

func appendColumn(b array.Builder, c *frame.Column) error {
	for i := 0; i < c.Len(); i++ {
		if c.IsNull(i) {
			b.AppendNull()
			continue
		}
		switch bb := b.(type) {
		case *array.StringBuilder:
			bb.Append(c.Format(i))
		case *array.Int64Builder:
			v, _ := c.Int(i)
			bb.Append(v)
		case *array.Float64Builder:
			v, _ := c.Float(i)
			bb.Append(v)
		case *array.TimestampBuilder:
			ts, _ := c.Time(i)
			bb.Append(arrow.Timestamp(ts.Unix()))
		case *array.Date32Builder:
			ts, _ := c.Time(i)
			bb.Append(arrow.Date32FromTime(ts))
		default:
			return fmt.Errorf("unsupported builder %T", b)
		}
	}
	return nil
}
