package exporter

import (
	"encoding/csv"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/Abiyes-Stack/dataco-supply-chain-analysis/internal/errors"
	"github.com/Abiyes-Stack/dataco-supply-chain-analysis/internal/frame"
)

// CSVWriter provides CSV export functionality
type CSVWriter struct {
	logger    *slog.Logger
	bomPrefix bool // Add UTF-8 BOM for Excel compatibility
}

// NewCSVWriter creates a new CSV writer instance
func NewCSVWriter(logger *slog.Logger, bomPrefix bool) *CSVWriter {
	if logger == nil {
		logger = slog.Default()
	}
	return &CSVWriter{
		logger:    logger.With(slog.String("component", "exporter")),
		bomPrefix: bomPrefix,
	}
}

// WriteTable writes the header and every row of t to filePath. Null cells are empty,
// timestamps use frame.TimeLayout and months frame.PeriodLayout.
func (w *CSVWriter) WriteTable(filePath string, t *frame.Table) error {
	stream, err := w.CreateStreamWriter(filePath, t.Names())
	if err != nil {
		return errors.NewStorageError("failed to create CSV file", err).WithContext("path", filePath)
	}

	cols := t.Columns()
	record := make([]string, len(cols))
	for i := 0; i < t.Nrow(); i++ {
		for j, c := range cols {
			record[j] = formatCell(c, i)
		}
		if err := stream.WriteRecord(record); err != nil {
			stream.Close()
			return errors.NewStorageError(fmt.Sprintf("failed to write record %d", i), err).WithContext("path", filePath)
		}
	}

	if err := stream.Close(); err != nil {
		return errors.NewStorageError("failed to flush CSV file", err).WithContext("path", filePath)
	}

	w.logger.Info("Wrote CSV file",
		slog.String("file_path", filePath),
		slog.Int("rows", t.Nrow()),
		slog.Int("columns", t.Ncol()))
	return nil
}

// StreamWriter provides streaming CSV writing for large datasets
type StreamWriter struct {
	file   *os.File
	writer *csv.Writer
}

// CreateStreamWriter creates a new streaming CSV writer
func (w *CSVWriter) CreateStreamWriter(filePath string, headers []string) (*StreamWriter, error) {
	w.logger.Debug("Creating CSV stream writer",
		slog.String("file_path", filePath),
		slog.Int("header_count", len(headers)))

	// Ensure directory exists
	if err := os.MkdirAll(filepath.Dir(filePath), 0755); err != nil {
		return nil, fmt.Errorf("failed to create directory: %w", err)
	}

	file, err := os.Create(filePath)
	if err != nil {
		return nil, fmt.Errorf("failed to create file: %w", err)
	}

	if w.bomPrefix {
		if _, err := file.Write([]byte{0xEF, 0xBB, 0xBF}); err != nil {
			file.Close()
			return nil, fmt.Errorf("failed to write BOM: %w", err)
		}
	}

	writer := csv.NewWriter(file)

	// Write headers
	if len(headers) > 0 {
		if err := writer.Write(headers); err != nil {
			file.Close()
			return nil, fmt.Errorf("failed to write headers: %w", err)
		}
	}

	return &StreamWriter{
		file:   file,
		writer: writer,
	}, nil
}

// WriteRecord writes a single record to the stream
func (s *StreamWriter) WriteRecord(record []string) error {
	return s.writer.Write(record)
}

// Close flushes and closes the stream writer
func (s *StreamWriter) Close() error {
	s.writer.Flush()
	if err := s.writer.Error(); err != nil {
		s.file.Close()
		return err
	}
	return s.file.Close()
}
