// Package importer turns an uploaded .xlsx enrollment sheet into student
// records. It only parses and validates rows; every accepted row goes
// through the ledger store's normal AddStudent path.
package importer

import (
	"context"
	"fmt"
	"io"
	"strings"

	"schoolfees-backend/internal/ledger"
	"schoolfees-backend/internal/models"

	"github.com/shopspring/decimal"
	"github.com/xuri/excelize/v2"
)

// Expected sheet layout: a header row, then one student per row with
// columns full_name | class | expected_fee.
const expectedColumns = 3

// ImportStudents reads the first sheet of the workbook and enrolls one
// student per valid row. Invalid rows are skipped and reported with their
// row number; a bad row never aborts the rest of the import.
func ImportStudents(ctx context.Context, r io.Reader, store *ledger.Store) (int, []string, error) {
	f, err := excelize.OpenReader(r)
	if err != nil {
		return 0, nil, models.NewValidationError("could not read workbook: %v", err)
	}
	defer f.Close()

	sheets := f.GetSheetList()
	if len(sheets) == 0 {
		return 0, nil, models.NewValidationError("workbook has no sheets")
	}

	rows, err := f.GetRows(sheets[0])
	if err != nil {
		return 0, nil, models.NewValidationError("could not read sheet %q: %v", sheets[0], err)
	}
	if len(rows) < 2 {
		return 0, nil, models.NewValidationError("sheet has no student rows")
	}

	imported := 0
	var rowErrs []string

	// rows[0] is the header
	for i, row := range rows[1:] {
		rowNum := i + 2

		fullName, class, feeStr, ok := splitRow(row)
		if !ok {
			rowErrs = append(rowErrs, fmt.Sprintf("row %d: expected %d columns (full_name, class, expected_fee)", rowNum, expectedColumns))
			continue
		}

		fee, err := decimal.NewFromString(strings.TrimSpace(feeStr))
		if err != nil {
			rowErrs = append(rowErrs, fmt.Sprintf("row %d: invalid expected_fee %q", rowNum, feeStr))
			continue
		}

		if _, err := store.AddStudent(ctx, fullName, models.ClassLevel(strings.TrimSpace(class)), fee); err != nil {
			rowErrs = append(rowErrs, fmt.Sprintf("row %d: %v", rowNum, err))
			continue
		}
		imported++
	}

	return imported, rowErrs, nil
}

func splitRow(row []string) (fullName, class, fee string, ok bool) {
	// trailing empty cells are dropped by the reader, so pad rather than
	// reject short rows outright
	padded := make([]string, expectedColumns)
	copy(padded, row)
	if len(row) > expectedColumns {
		return "", "", "", false
	}
	for _, cell := range padded {
		if strings.TrimSpace(cell) == "" {
			return "", "", "", false
		}
	}
	return padded[0], padded[1], padded[2], true
}
