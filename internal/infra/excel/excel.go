package excel

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"math"
	"strconv"
	"strings"

	"github.com/xuri/excelize/v2"

	"github.com/Spok95/unitconv/internal/domain/units"
	"github.com/Spok95/unitconv/internal/service"
)

const ContentType = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"

var ErrEmptyBatch = errors.New("batch file has no data rows")

var batchHeader = []interface{}{"category", "value", "from", "to", "result", "error"}

// BatchLine строка пакетного файла; Line - номер строки в Excel (с 1).
// RawValue исходный текст value; если он не разобрался, в ответ пишется он, а не 0.
type BatchLine struct {
	Line     int
	Request  service.Request
	RawValue string
	Result   float64
	Err      error

	badValue bool
}

// outOfRange пишется вместо Inf/NaN: такие числа в ячейке Excel считает битым файлом.
const outOfRange = "out of range"

type Summary struct {
	Rows   int
	Failed int
}

// WriteTable выгружает таблицу пересчёта: строки - from, колонки - to.
func WriteTable(t units.Table, precision int) ([]byte, error) {
	f := excelize.NewFile()
	defer func() { _ = f.Close() }()

	sheet := f.GetSheetName(f.GetActiveSheetIndex())
	if err := f.SetSheetName(sheet, string(t.Category)); err != nil {
		return nil, fmt.Errorf("rename sheet: %w", err)
	}
	sheet = string(t.Category)

	header := []interface{}{"value=" + service.FormatInput(t.Value)}
	for _, u := range t.Units {
		header = append(header, string(u))
	}
	if err := f.SetSheetRow(sheet, "A1", &header); err != nil {
		return nil, fmt.Errorf("header: %w", err)
	}

	for i, from := range t.Units {
		row := []interface{}{string(from)}
		for _, v := range t.Cells[i] {
			row = append(row, cellValue(v))
		}
		cell, err := excelize.CoordinatesToCellName(1, i+2)
		if err != nil {
			return nil, err
		}
		if err := f.SetSheetRow(sheet, cell, &row); err != nil {
			return nil, fmt.Errorf("row %d: %w", i+2, err)
		}
	}

	if len(t.Units) > 0 {
		style, err := f.NewStyle(&excelize.Style{CustomNumFmt: numFmt(precision)})
		if err != nil {
			return nil, err
		}
		last, err := excelize.CoordinatesToCellName(len(t.Units)+1, len(t.Units)+1)
		if err != nil {
			return nil, err
		}
		if err := f.SetCellStyle(sheet, "B2", last, style); err != nil {
			return nil, err
		}
	}

	return write(f)
}

// ReadBatch читает первый лист: category | value | from | to, первая строка - заголовок.
// Строки с нечисловым value не отбрасываются, ошибка остаётся в BatchLine.Err.
func ReadBatch(data []byte) ([]BatchLine, error) {
	f, err := excelize.OpenReader(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("open xlsx: %w", err)
	}
	defer func() { _ = f.Close() }()

	sheet := f.GetSheetName(f.GetActiveSheetIndex())
	rows, err := f.GetRows(sheet, excelize.Options{RawCellValue: true})
	if err != nil {
		return nil, fmt.Errorf("read rows: %w", err)
	}
	if len(rows) < 2 {
		return nil, ErrEmptyBatch
	}

	var out []BatchLine
	for i := 1; i < len(rows); i++ {
		cols := make([]string, 4)
		for j := 0; j < len(cols) && j < len(rows[i]); j++ {
			cols[j] = strings.TrimSpace(rows[i][j])
		}
		if strings.Join(cols, "") == "" {
			continue
		}
		line := BatchLine{
			Line:     i + 1,
			Request:  service.Request{Category: cols[0], From: cols[2], To: cols[3]},
			RawValue: cols[1],
		}
		v, err := strconv.ParseFloat(strings.ReplaceAll(cols[1], ",", "."), 64)
		if err != nil || math.IsNaN(v) || math.IsInf(v, 0) {
			line.Err = fmt.Errorf("invalid value %q", cols[1])
			line.badValue = true
		} else {
			line.Request.Value = v
		}
		out = append(out, line)
	}
	if len(out) == 0 {
		return nil, ErrEmptyBatch
	}
	return out, nil
}

func WriteBatch(lines []BatchLine, precision int) ([]byte, error) {
	f := excelize.NewFile()
	defer func() { _ = f.Close() }()

	sheet := f.GetSheetName(f.GetActiveSheetIndex())
	if err := f.SetSheetRow(sheet, "A1", &batchHeader); err != nil {
		return nil, fmt.Errorf("header: %w", err)
	}
	style, err := f.NewStyle(&excelize.Style{CustomNumFmt: numFmt(precision)})
	if err != nil {
		return nil, err
	}

	next := 2
	for _, l := range lines {
		// строка пишется на своё место из входного файла, пустые строки остаются пустыми
		n := l.Line
		if n < next {
			n = next
		}
		next = n + 1

		var value interface{} = l.Request.Value
		if l.badValue {
			value = l.RawValue
		}
		row := []interface{}{l.Request.Category, value, l.Request.From, l.Request.To}
		if l.Err != nil {
			row = append(row, "", l.Err.Error())
		} else {
			row = append(row, cellValue(l.Result), "")
		}
		cell, err := excelize.CoordinatesToCellName(1, n)
		if err != nil {
			return nil, err
		}
		if err := f.SetSheetRow(sheet, cell, &row); err != nil {
			return nil, fmt.Errorf("row %d: %w", n, err)
		}
		res, _ := excelize.CoordinatesToCellName(5, n)
		if err := f.SetCellStyle(sheet, res, res, style); err != nil {
			return nil, err
		}
	}
	return write(f)
}

// ConvertBatch полный цикл: прочитать файл, пересчитать строки, собрать файл с результатами.
func ConvertBatch(ctx context.Context, conv *service.Converter, data []byte) ([]byte, Summary, error) {
	lines, err := ReadBatch(data)
	if err != nil {
		return nil, Summary{}, err
	}

	var (
		reqs []service.Request
		idx  []int
	)
	for i, l := range lines {
		if l.Err == nil {
			reqs = append(reqs, l.Request)
			idx = append(idx, i)
		}
	}
	for k, o := range conv.ConvertBatch(ctx, reqs) {
		lines[idx[k]].Result = o.Result.Converted
		lines[idx[k]].Err = o.Err
	}

	sum := Summary{Rows: len(lines)}
	for _, l := range lines {
		if l.Err != nil {
			sum.Failed++
		}
	}

	out, err := WriteBatch(lines, conv.Precision())
	if err != nil {
		return nil, sum, err
	}
	return out, sum, nil
}

func cellValue(v float64) interface{} {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return outOfRange
	}
	return v
}

func numFmt(precision int) *string {
	s := "0"
	if precision > 0 {
		s += "." + strings.Repeat("0", precision)
	}
	return &s
}

func write(f *excelize.File) ([]byte, error) {
	buf := &bytes.Buffer{}
	if err := f.Write(buf); err != nil {
		return nil, fmt.Errorf("write xlsx: %w", err)
	}
	return buf.Bytes(), nil
}
