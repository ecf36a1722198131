// Package xlsx конвертирует ресемплированную серию в Excel-файл:
// колонка времени плюс по колонке на каждое поле, среднее каждой
// корзины в своей строке. Пустая корзина оставляет пустые ячейки.
package xlsx

import (
	"fmt"
	"io"
	"sort"
	"time"

	"github.com/xuri/excelize/v2"

	"github.com/sejoroajose/Starknet-Data-Explorer/pkg/core/series"
)

const timeHeader = "time"

// Workbook строит excelize-файл из серии. fields задает порядок
// колонок; nil означает все поля серии в алфавитном порядке.
// Закрыть файл — обязанность вызывающего.
func Workbook(s series.BucketedSeries, fields []string, sheetName string) (*excelize.File, error) {
	if sheetName == "" {
		sheetName = "Series"
	}
	if fields == nil {
		fields = collectFields(s)
	}

	f := excelize.NewFile()

	index, err := f.NewSheet(sheetName)
	if err != nil {
		f.Close()
		return nil, fmt.Errorf("failed to create sheet: %w", err)
	}
	f.SetActiveSheet(index)
	if sheetName != "Sheet1" {
		f.DeleteSheet("Sheet1")
	}

	headerStyle, _ := f.NewStyle(&excelize.Style{
		Font:      &excelize.Font{Bold: true, Size: 11, Color: "#FFFFFF"},
		Fill:      excelize.Fill{Type: "pattern", Color: []string{"#4472C4"}, Pattern: 1},
		Alignment: &excelize.Alignment{Horizontal: "center", Vertical: "center"},
	})

	// Заголовки: time + имена полей
	headers := append([]string{timeHeader}, fields...)
	for col, h := range headers {
		cell := columnName(col+1) + "1"
		if err := f.SetCellValue(sheetName, cell, h); err != nil {
			f.Close()
			return nil, fmt.Errorf("failed to write header %q: %w", h, err)
		}
	}
	lastHeader := columnName(len(headers)) + "1"
	f.SetCellStyle(sheetName, "A1", lastHeader, headerStyle)

	// Данные: одна строка на корзину, отсутствующее поле — пустая ячейка
	for i, bucket := range s.Buckets {
		rowNum := i + 2
		cell := "A" + fmt.Sprint(rowNum)
		if err := f.SetCellValue(sheetName, cell, bucket.Time.Format(time.RFC3339)); err != nil {
			f.Close()
			return nil, fmt.Errorf("failed to write row %d: %w", rowNum, err)
		}
		for j, field := range fields {
			v, ok := bucket.Values[field]
			if !ok {
				continue
			}
			cell := columnName(j+2) + fmt.Sprint(rowNum)
			if err := f.SetCellValue(sheetName, cell, v); err != nil {
				f.Close()
				return nil, fmt.Errorf("failed to write row %d: %w", rowNum, err)
			}
		}
	}

	// Автоширина по заголовку
	for col := range headers {
		name := columnName(col + 1)
		f.SetColWidth(sheetName, name, name, 22)
	}

	return f, nil
}

// Write записывает серию в XLSX-файл по пути
func Write(s series.BucketedSeries, fields []string, filePath, sheetName string) error {
	f, err := Workbook(s, fields, sheetName)
	if err != nil {
		return err
	}
	defer f.Close()

	if err := f.SaveAs(filePath); err != nil {
		return fmt.Errorf("failed to save %q: %w", filePath, err)
	}
	return nil
}

// WriteTo пишет XLSX в произвольный writer (для загрузки в S3)
func WriteTo(s series.BucketedSeries, fields []string, sheetName string, w io.Writer) error {
	f, err := Workbook(s, fields, sheetName)
	if err != nil {
		return err
	}
	defer f.Close()

	if _, err := f.WriteTo(w); err != nil {
		return fmt.Errorf("failed to write workbook: %w", err)
	}
	return nil
}

// collectFields возвращает отсортированное объединение полей всех корзин
func collectFields(s series.BucketedSeries) []string {
	seen := map[string]bool{}
	for _, b := range s.Buckets {
		for name := range b.Values {
			seen[name] = true
		}
	}
	fields := make([]string, 0, len(seen))
	for name := range seen {
		fields = append(fields, name)
	}
	sort.Strings(fields)
	return fields
}

// columnName конвертирует номер колонки (с 1) в имя Excel: A, B, ... AA
func columnName(n int) string {
	name := ""
	for n > 0 {
		n--
		name = string(rune('A'+n%26)) + name
		n /= 26
	}
	return name
}
