package export

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/xuri/excelize/v2"
)

const (
	bandColor   = "1F4E3D"
	headerColor = "C8A165"
	maxSheetLen = 31
)

type Meta struct {
	Key   string
	Value string
}

// Logo is the image placed in the title band of every workbook.
type Logo struct {
	Data []byte
	Ext  string // ".png", ".jpg", ".jpeg" or ".gif"
}

func (l Logo) IsZero() bool { return len(l.Data) == 0 }

// LoadLogo reads an image file for use as a workbook logo.
func LoadLogo(path string) (Logo, error) {
	ext := strings.ToLower(filepath.Ext(path))
	switch ext {
	case ".png", ".jpg", ".jpeg", ".gif":
	default:
		return Logo{}, fmt.Errorf("logo %s: unsupported image type %q", path, ext)
	}
	b, err := os.ReadFile(path)
	if err != nil {
		return Logo{}, fmt.Errorf("read logo: %w", err)
	}
	if len(b) == 0 {
		return Logo{}, fmt.Errorf("logo %s is empty", path)
	}
	return Logo{Data: b, Ext: ext}, nil
}

type Sheet struct {
	Name    string
	Title   string
	Logo    Logo // optional
	Meta    []Meta
	Columns []Column
	Rows    []Row
}

// Workbook renders a single styled sheet: title band, optional logo,
// metadata rows, coloured header and one data row per record.
func Workbook(s Sheet) ([]byte, error) {
	f := excelize.NewFile()
	defer f.Close()

	name := s.Name
	if name == "" {
		name = "Export"
	}
	if len(name) > maxSheetLen {
		name = name[:maxSheetLen]
	}
	if err := f.SetSheetName("Sheet1", name); err != nil {
		return nil, fmt.Errorf("rename sheet: %w", err)
	}

	ncols := len(s.Columns)
	if ncols == 0 {
		ncols = 1
	}
	lastCol, err := excelize.ColumnNumberToName(ncols)
	if err != nil {
		return nil, err
	}

	st, err := newStyles(f)
	if err != nil {
		return nil, err
	}

	// title band
	if err := f.SetCellValue(name, "A1", s.Title); err != nil {
		return nil, err
	}
	if err := f.MergeCell(name, "A1", lastCol+"1"); err != nil {
		return nil, err
	}
	if err := f.SetCellStyle(name, "A1", lastCol+"1", st.title); err != nil {
		return nil, err
	}
	if err := f.SetRowHeight(name, 1, 40); err != nil {
		return nil, err
	}
	if !s.Logo.IsZero() {
		ext := s.Logo.Ext
		if ext == "" {
			ext = ".png"
		}
		pic := &excelize.Picture{
			Extension: ext,
			File:      s.Logo.Data,
			Format:    &excelize.GraphicOptions{AutoFit: true, LockAspectRatio: true, OffsetX: 2, OffsetY: 2},
		}
		if err := f.AddPictureFromBytes(name, lastCol+"1", pic); err != nil {
			return nil, fmt.Errorf("add logo: %w", err)
		}
	}

	row := 2
	for _, m := range s.Meta {
		if err := f.SetCellValue(name, cell(1, row), m.Key); err != nil {
			return nil, err
		}
		if err := f.SetCellValue(name, cell(2, row), m.Value); err != nil {
			return nil, err
		}
		if err := f.SetCellStyle(name, cell(1, row), cell(1, row), st.metaKey); err != nil {
			return nil, err
		}
		row++
	}
	if len(s.Meta) > 0 {
		row++ // spacer
	}

	for i, c := range s.Columns {
		if err := f.SetCellValue(name, cell(i+1, row), c.Header); err != nil {
			return nil, err
		}
	}
	if len(s.Columns) > 0 {
		if err := f.SetCellStyle(name, cell(1, row), cell(len(s.Columns), row), st.header); err != nil {
			return nil, err
		}
	}
	row++

	for _, r := range s.Rows {
		for i, c := range s.Columns {
			if err := f.SetCellValue(name, cell(i+1, row), Stringify(r[c.Key])); err != nil {
				return nil, err
			}
		}
		row++
	}

	for i, c := range s.Columns {
		if c.Width <= 0 {
			continue
		}
		col, _ := excelize.ColumnNumberToName(i + 1)
		if err := f.SetColWidth(name, col, col, c.Width); err != nil {
			return nil, err
		}
	}

	buf, err := f.WriteToBuffer()
	if err != nil {
		return nil, fmt.Errorf("write workbook: %w", err)
	}
	return buf.Bytes(), nil
}

type styles struct{ title, metaKey, header int }

func newStyles(f *excelize.File) (styles, error) {
	var s styles
	var err error
	if s.title, err = f.NewStyle(&excelize.Style{
		Font:      &excelize.Font{Bold: true, Size: 16, Color: "FFFFFF"},
		Fill:      excelize.Fill{Type: "pattern", Pattern: 1, Color: []string{bandColor}},
		Alignment: &excelize.Alignment{Vertical: "center", Indent: 1},
	}); err != nil {
		return s, err
	}
	if s.metaKey, err = f.NewStyle(&excelize.Style{
		Font: &excelize.Font{Bold: true, Color: "555555"},
	}); err != nil {
		return s, err
	}
	if s.header, err = f.NewStyle(&excelize.Style{
		Font:      &excelize.Font{Bold: true, Color: "FFFFFF"},
		Fill:      excelize.Fill{Type: "pattern", Pattern: 1, Color: []string{headerColor}},
		Alignment: &excelize.Alignment{Horizontal: "center", Vertical: "center"},
		Border:    []excelize.Border{{Type: "bottom", Color: bandColor, Style: 2}},
	}); err != nil {
		return s, err
	}
	return s, nil
}

func cell(col, row int) string {
	c, _ := excelize.CoordinatesToCellName(col, row)
	return c
}
