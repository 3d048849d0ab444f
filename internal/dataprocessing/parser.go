package dataprocessing

import (
	"bytes"
	"encoding/csv"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"unicode/utf8"

	"github.com/xuri/excelize/v2"
	"golang.org/x/text/encoding"
	"golang.org/x/text/encoding/charmap"

	"github.com/Abiyes-Stack/dataco-supply-chain-analysis/internal/errors"
	"github.com/Abiyes-Stack/dataco-supply-chain-analysis/internal/frame"
)

// ReadOptions controls how a raw dataset file is decoded.
type ReadOptions struct {
	Encoding  string // latin-1 (default), windows-1252 or utf-8
	Delimiter rune   // defaults to ','
}

// ParseFile reads a raw DataCo export into a table. CSV files are decoded from
// opts.Encoding; .xlsx workbooks are read from their first sheet. A missing file or
// content that cannot be decoded is returned as an error.
func ParseFile(filePath string, opts ReadOptions) (*frame.Table, error) {
	if _, err := os.Stat(filePath); err != nil {
		if os.IsNotExist(err) {
			return nil, errors.NewNotFoundError("input file "+filePath, err)
		}
		return nil, errors.NewStorageError("failed to stat input file", err)
	}

	var (
		header []string
		rows   [][]string
		err    error
	)
	switch strings.ToLower(filepath.Ext(filePath)) {
	case ".xlsx", ".xlsm":
		header, rows, err = readWorkbook(filePath)
	default:
		header, rows, err = readCSV(filePath, opts)
	}
	if err != nil {
		return nil, err
	}

	t, err := frame.FromRecords(header, rows)
	if err != nil {
		return nil, errors.NewParsingError("malformed rows in "+filePath, err)
	}
	return t, nil
}

func readCSV(filePath string, opts ReadOptions) ([]string, [][]string, error) {
	data, err := os.ReadFile(filePath)
	if err != nil {
		return nil, nil, errors.NewStorageError("failed to read input file", err)
	}

	dec, err := decoderFor(opts.Encoding)
	if err != nil {
		return nil, nil, err
	}
	if dec != nil {
		data, err = dec.Bytes(data)
		if err != nil {
			return nil, nil, errors.NewParsingError("failed to decode "+opts.Encoding+" input", err)
		}
	} else if !utf8.Valid(data) {
		return nil, nil, errors.NewParsingError("input is not valid UTF-8", nil).
			WithContext("file", filePath)
	}
	data = bytes.TrimPrefix(data, []byte("\ufeff"))

	reader := csv.NewReader(bytes.NewReader(data))
	if opts.Delimiter != 0 {
		reader.Comma = opts.Delimiter
	}
	records, err := reader.ReadAll()
	if err != nil {
		return nil, nil, errors.NewParsingError("failed to parse CSV", err).WithContext("file", filePath)
	}
	if len(records) == 0 {
		return nil, nil, errors.NewParsingError("input file has no header row", nil).WithContext("file", filePath)
	}

	return records[0], records[1:], nil
}

func readWorkbook(filePath string) ([]string, [][]string, error) {
	f, err := excelize.OpenFile(filePath)
	if err != nil {
		return nil, nil, errors.NewParsingError("failed to open workbook", err)
	}
	defer f.Close()

	sheets := f.GetSheetList()
	if len(sheets) == 0 {
		return nil, nil, errors.NewParsingError("workbook has no sheets", nil).WithContext("file", filePath)
	}
	rows, err := f.GetRows(sheets[0])
	if err != nil {
		return nil, nil, errors.NewParsingError("failed to read sheet "+sheets[0], err)
	}
	if len(rows) == 0 {
		return nil, nil, errors.NewParsingError("input file has no header row", nil).WithContext("file", filePath)
	}

	header := rows[0]
	body := make([][]string, 0, len(rows)-1)
	for _, row := range rows[1:] {
		// excelize drops trailing empty cells
		if len(row) < len(header) {
			row = append(row, make([]string, len(header)-len(row))...)
		}
		body = append(body, row[:len(header)])
	}
	return header, body, nil
}

// decoderFor returns the decoder for a configured encoding name; nil means UTF-8.
func decoderFor(name string) (*encoding.Decoder, error) {
	switch strings.ToLower(name) {
	case "", "latin-1", "latin1", "iso-8859-1":
		return charmap.ISO8859_1.NewDecoder(), nil
	case "windows-1252", "cp1252":
		return charmap.Windows1252.NewDecoder(), nil
	case "utf-8", "utf8":
		return nil, nil
	default:
		return nil, errors.NewConfigError(fmt.Sprintf("unsupported encoding %q", name), nil)
	}
}
