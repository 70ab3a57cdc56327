package output

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"

	"github.com/xuri/excelize/v2"

	"github.com/rohankatakam/attrition/internal/table"
)

// Sheet names of the supplementary workbook
const (
	SheetDescribe = "描述统计"
	SheetPower    = "功效分析"
	SheetGrouping = "分组优化"
)

// Workbook is the supplementary analysis spreadsheet
type Workbook struct {
	Describe []GroupStats
	Power    *PowerSummary
	// Grouping is written as-is; nil skips the sheet
	Grouping *table.Table
}

// WriteWorkbook saves wb as an XLSX file with one sheet per section
func WriteWorkbook(path string, wb Workbook) error {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return fmt.Errorf("failed to create output directory: %w", err)
	}

	f := excelize.NewFile()
	defer f.Close()

	// The default sheet becomes the first section
	if err := f.SetSheetName(f.GetSheetName(0), SheetDescribe); err != nil {
		return err
	}
	if err := writeDescribe(f, wb.Describe); err != nil {
		return fmt.Errorf("sheet %s: %w", SheetDescribe, err)
	}

	if wb.Power != nil {
		if err := writePower(f, wb.Power); err != nil {
			return fmt.Errorf("sheet %s: %w", SheetPower, err)
		}
	}

	if wb.Grouping != nil {
		if err := writeTable(f, SheetGrouping, wb.Grouping); err != nil {
			return fmt.Errorf("sheet %s: %w", SheetGrouping, err)
		}
	}

	f.SetActiveSheet(0)
	if err := f.SaveAs(path); err != nil {
		return fmt.Errorf("failed to save workbook: %w", err)
	}
	return nil
}

func writeDescribe(f *excelize.File, rows []GroupStats) error {
	header := []interface{}{"项目规模", "count", "mean", "std", "min", "25%", "50%", "75%", "max"}
	if err := f.SetSheetRow(SheetDescribe, "A1", &header); err != nil {
		return err
	}
	for i, d := range rows {
		cell, err := excelize.CoordinatesToCellName(1, i+2)
		if err != nil {
			return err
		}
		values := []interface{}{d.Group, d.Count, cellValue(d.Mean), cellValue(d.Std), cellValue(d.Min),
			cellValue(d.Q1), cellValue(d.Median), cellValue(d.Q3), cellValue(d.Max)}
		if err := f.SetSheetRow(SheetDescribe, cell, &values); err != nil {
			return err
		}
	}
	return nil
}

func writePower(f *excelize.File, p *PowerSummary) error {
	if _, err := f.NewSheet(SheetPower); err != nil {
		return err
	}
	rows := [][]interface{}{
		{"参数", "值"},
		{"显著性水平", float64(p.Alpha)},
		{"统计功效", float64(p.Power)},
		{"当前效应量", cellValue(p.EffectSize)},
		{"所需样本量", intCell(p.RequiredN)},
		{"每组所需样本量", intCell(p.RequiredPerGroup)},
	}
	for i, row := range rows {
		cell, err := excelize.CoordinatesToCellName(1, i+1)
		if err != nil {
			return err
		}
		if err := f.SetSheetRow(SheetPower, cell, &row); err != nil {
			return err
		}
	}
	return nil
}

func writeTable(f *excelize.File, sheet string, t *table.Table) error {
	if _, err := f.NewSheet(sheet); err != nil {
		return err
	}
	header := make([]interface{}, len(t.Columns))
	for i, c := range t.Columns {
		header[i] = c
	}
	if err := f.SetSheetRow(sheet, "A1", &header); err != nil {
		return err
	}
	for r, row := range t.Rows {
		cell, err := excelize.CoordinatesToCellName(1, r+2)
		if err != nil {
			return err
		}
		values := make([]interface{}, len(row))
		for i, v := range row {
			if n, err := strconv.ParseFloat(v, 64); err == nil {
				values[i] = n
			} else {
				values[i] = v
			}
		}
		if err := f.SetSheetRow(sheet, cell, &values); err != nil {
			return err
		}
	}
	return nil
}

// intCell leaves unsolved counts blank
func intCell(v *int) interface{} {
	if v == nil {
		return nil
	}
	return *v
}

// cellValue leaves NaN cells blank
func cellValue(v Float) interface{} {
	if v.String() == "" {
		return nil
	}
	return float64(v)
}
