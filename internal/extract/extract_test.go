package extract

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/xuri/excelize/v2"
)

func TestText_Plain(t *testing.T) {
	path := filepath.Join(t.TempDir(), "notes.md")
	if err := os.WriteFile(path, []byte("# thesis\nbuy and hold\n"), 0644); err != nil {
		t.Fatal(err)
	}
	got, err := Text(path)
	if err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(got, "buy and hold") {
		t.Errorf("got %q", got)
	}
}

func TestText_InvalidUTF8(t *testing.T) {
	path := filepath.Join(t.TempDir(), "blob.txt")
	if err := os.WriteFile(path, []byte{0xff, 0xfe, 0x00, 0x01}, 0644); err != nil {
		t.Fatal(err)
	}
	if _, err := Text(path); err == nil {
		t.Error("expected error for invalid UTF-8")
	}
}

func TestText_MissingFile(t *testing.T) {
	if _, err := Text(filepath.Join(t.TempDir(), "nope.txt")); err == nil {
		t.Error("expected error for missing file")
	}
}

func TestText_Excel(t *testing.T) {
	f := excelize.NewFile()
	if err := f.SetCellValue("Sheet1", "A1", "ticker"); err != nil {
		t.Fatal(err)
	}
	if err := f.SetCellValue("Sheet1", "B1", "AAPL"); err != nil {
		t.Fatal(err)
	}
	path := filepath.Join(t.TempDir(), "positions.xlsx")
	if err := f.SaveAs(path); err != nil {
		t.Fatal(err)
	}

	got, err := Text(path)
	if err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(got, "ticker AAPL") {
		t.Errorf("got %q", got)
	}
}
