package excel

import (
	"context"
	"encoding/csv"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"recoverypilot/domain/core"
	"recoverypilot/domain/patient"
	"recoverypilot/internal"

	"github.com/xuri/excelize/v2"
)

// ColumnPatientID is the optional identifier column of a corpus file
const ColumnPatientID = "patient_id"

// CorpusReader loads a training corpus from an xlsx (Sheet1) or CSV file.
// The header row names the features; columns may appear in any order and
// unknown columns are ignored.
type CorpusReader struct {
	filePath string
	fileType string // "xlsx" or "csv"
	logger   *internal.Logger
}

// NewCorpusReader creates a reader for filePath, choosing the format by extension
func NewCorpusReader(filePath string, logger *internal.Logger) *CorpusReader {
	if logger == nil {
		logger = internal.DefaultLogger
	}
	fileType := "xlsx"
	if strings.ToLower(filepath.Ext(filePath)) == ".csv" {
		fileType = "csv"
	}
	return &CorpusReader{filePath: filePath, fileType: fileType, logger: logger.With("excel")}
}

// LoadCorpus implements ports.CorpusSupplier
func (r *CorpusReader) LoadCorpus(ctx context.Context) ([]patient.FeatureVector, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	data, err := r.ReadData()
	if err != nil {
		return nil, err
	}
	return ToFeatureVectors(data)
}

// ReadData reads the raw rows of the file
func (r *CorpusReader) ReadData() (*SheetData, error) {
	if _, err := os.Stat(r.filePath); os.IsNotExist(err) {
		return nil, fmt.Errorf("%s file not found: %s", strings.ToUpper(r.fileType), r.filePath)
	}

	start := time.Now()
	var rows [][]string
	var err error
	switch r.fileType {
	case "csv":
		rows, err = r.readCSVRows()
	default:
		rows, err = r.readExcelRows()
	}
	if err != nil {
		return nil, err
	}
	if len(rows) < 2 {
		return nil, fmt.Errorf("%s file must have a header row and at least one data row", strings.ToUpper(r.fileType))
	}

	data := processRows(rows)
	r.logger.Info("Read %s corpus %s (%d columns, %d rows) in %s",
		r.fileType, r.filePath, len(data.Headers), len(data.Rows), time.Since(start))
	return data, nil
}

func (r *CorpusReader) readExcelRows() ([][]string, error) {
	f, err := excelize.OpenFile(r.filePath)
	if err != nil {
		return nil, fmt.Errorf("failed to open Excel file: %w", err)
	}
	defer f.Close()

	rows, err := f.GetRows("Sheet1")
	if err != nil {
		return nil, fmt.Errorf("failed to read Sheet1: %w", err)
	}
	return rows, nil
}

func (r *CorpusReader) readCSVRows() ([][]string, error) {
	file, err := os.Open(r.filePath)
	if err != nil {
		return nil, fmt.Errorf("failed to open CSV file: %w", err)
	}
	defer file.Close()

	rows, err := csv.NewReader(file).ReadAll()
	if err != nil {
		return nil, fmt.Errorf("failed to read CSV file: %w", err)
	}
	return rows, nil
}

func processRows(rows [][]string) *SheetData {
	headers := make([]string, len(rows[0]))
	for i, h := range rows[0] {
		headers[i] = strings.ToLower(strings.TrimSpace(h))
	}

	data := &SheetData{Headers: headers}
	for _, row := range rows[1:] {
		rowData := make(RawRowData, len(headers))
		blank := true
		for j, cell := range row {
			if j < len(headers) {
				rowData[headers[j]] = strings.TrimSpace(cell)
				if rowData[headers[j]] != "" {
					blank = false
				}
			}
		}
		// excelize returns trailing empty rows for formatted sheets
		if !blank {
			data.Rows = append(data.Rows, rowData)
		}
	}
	return data
}

// ToFeatureVectors converts raw rows into validated feature vectors. Every
// feature column is required; rows without a patient_id get a generated one.
func ToFeatureVectors(data *SheetData) ([]patient.FeatureVector, error) {
	present := make(map[string]bool, len(data.Headers))
	for _, h := range data.Headers {
		present[h] = true
	}
	var missing []string
	for _, name := range patient.FeatureNames {
		if !present[name] {
			missing = append(missing, name)
		}
	}
	if len(missing) > 0 {
		return nil, core.NewInvalidInputError(fmt.Sprintf("corpus is missing columns: %s", strings.Join(missing, ", ")))
	}

	vectors := make([]patient.FeatureVector, 0, len(data.Rows))
	values := make([]float64, patient.FeatureCount)
	for i, row := range data.Rows {
		line := i + 2
		for d, name := range patient.FeatureNames {
			v, err := strconv.ParseFloat(row[name], 64)
			if err != nil {
				return nil, core.NewInvalidInputError(fmt.Sprintf("row %d column %s: %q is not a number", line, name, row[name]))
			}
			values[d] = v
		}

		id := core.PatientID(row[ColumnPatientID])
		if id.IsEmpty() {
			id = core.NewPatientID()
		}
		fv, err := patient.FromValues(id, values)
		if err != nil {
			return nil, err
		}
		if err := fv.Validate(); err != nil {
			return nil, fmt.Errorf("row %d: %w", line, err)
		}
		vectors = append(vectors, fv)
	}
	return vectors, nil
}
