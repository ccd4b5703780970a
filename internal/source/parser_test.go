package source

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"
)

// writeData creates a temp JSON data file and returns its path.
func writeData(t *testing.T, dir, name, body string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	if err := os.WriteFile(path, []byte(body), 0o600); err != nil {
		t.Fatal(err)
	}
	return path
}

const sampleJSON = `[
  {"fecha": "2024-01-01", "datos": [
    {"categoria": "Salud", "ponderado": 5.5, "mensual": 0.4},
    {"categoria": "Transporte", "ponderado": 12.1, "mensual": null}
  ]},
  {"fecha": "2024-02", "datos": [
    {"categoria": "Salud", "ponderado": 5.6, "mensual": -0.1},
    {"categoria": "", "ponderado": 1, "mensual": 1}
  ]},
  {"fecha": "febrero", "datos": [
    {"categoria": "Salud", "ponderado": 5.6, "mensual": 0.2}
  ]}
]`

func TestParse_Observations(t *testing.T) {
	res := Parse(strings.NewReader(sampleJSON))
	if res.Err != nil {
		t.Fatalf("unexpected error: %v", res.Err)
	}
	if res.Periods != 3 {
		t.Errorf("Periods = %d, want 3", res.Periods)
	}
	if len(res.Observations) != 3 {
		t.Fatalf("Observations = %d, want 3", len(res.Observations))
	}
	if res.ParseErrors != 2 {
		t.Errorf("ParseErrors = %d, want 2 (empty category and bad date)", res.ParseErrors)
	}

	first := res.Observations[0]
	if first.Category != "Salud" || first.Weight != 5.5 || first.MonthlyChange == nil || *first.MonthlyChange != 0.4 {
		t.Errorf("first observation = %+v", first)
	}
	if !first.Date.Equal(time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)) {
		t.Errorf("first date = %v", first.Date)
	}

	transporte := res.Observations[1]
	if transporte.HasChange() {
		t.Error("null mensual should be absent")
	}

	feb := res.Observations[2]
	if !feb.Date.Equal(time.Date(2024, 2, 1, 0, 0, 0, 0, time.UTC)) {
		t.Errorf("YYYY-MM date = %v", feb.Date)
	}
}

func TestParse_Malformed(t *testing.T) {
	for _, body := range []string{`{"fecha": "2024-01-01"}`, `[{"fecha": 2024}]`, `not json`} {
		if res := Parse(strings.NewReader(body)); res.Err == nil {
			t.Errorf("Parse(%q) should fail", body)
		}
	}
}

func TestParseDate(t *testing.T) {
	cases := map[string]time.Time{
		"2019-03-01":           time.Date(2019, 3, 1, 0, 0, 0, 0, time.UTC),
		"2019-03-17":           time.Date(2019, 3, 1, 0, 0, 0, 0, time.UTC),
		" 2020-12 ":            time.Date(2020, 12, 1, 0, 0, 0, 0, time.UTC),
		"2021-07-01T00:00:00Z": time.Date(2021, 7, 1, 0, 0, 0, 0, time.UTC),
		"2021-07-01T00:00:00":  time.Date(2021, 7, 1, 0, 0, 0, 0, time.UTC),
	}
	for in, want := range cases {
		got, err := ParseDate(in)
		if err != nil {
			t.Errorf("ParseDate(%q): %v", in, err)
			continue
		}
		if !got.Equal(want) {
			t.Errorf("ParseDate(%q) = %v, want %v", in, got, want)
		}
	}
	if _, err := ParseDate("ene-19"); err == nil {
		t.Error("converter month labels are not data dates")
	}
}

func TestParseFile_Missing(t *testing.T) {
	res := ParseFile(filepath.Join(t.TempDir(), "nope.json"))
	if res.Err == nil {
		t.Fatal("expected error for missing file")
	}
}

func TestParseFile_WrapsPath(t *testing.T) {
	path := writeData(t, t.TempDir(), "bad.json", `{`)
	res := ParseFile(path)
	if res.Err == nil || !strings.Contains(res.Err.Error(), "bad.json") {
		t.Errorf("error %v should name the file", res.Err)
	}
}

func TestLoad_SingleFile(t *testing.T) {
	path := writeData(t, t.TempDir(), "ipc.json", sampleJSON)
	res, err := Load(path)
	if err != nil {
		t.Fatal(err)
	}
	if res.TotalFiles != 1 || res.ParsedFiles != 1 || len(res.Observations) != 3 {
		t.Errorf("Load = %+v", res)
	}
}

func TestLoad_Directory(t *testing.T) {
	dir := t.TempDir()
	writeData(t, dir, "2024.json", sampleJSON)
	writeData(t, dir, "broken.JSON", `[`)
	writeData(t, dir, "notes.txt", `ignored`)
	sub := filepath.Join(dir, "older")
	if err := os.Mkdir(sub, 0o750); err != nil {
		t.Fatal(err)
	}
	writeData(t, sub, "2023.json", `[{"fecha":"2023-12-01","datos":[{"categoria":"Salud","ponderado":5,"mensual":0.3}]}]`)

	files, err := ScanDir(dir)
	if err != nil {
		t.Fatal(err)
	}
	if len(files) != 3 {
		t.Fatalf("ScanDir found %d files, want 3", len(files))
	}
	if files[0].Name != "2024" {
		t.Errorf("first file = %+v", files[0])
	}

	res, err := Load(dir)
	if err != nil {
		t.Fatal(err)
	}
	if res.TotalFiles != 3 || res.ParsedFiles != 2 {
		t.Errorf("files total=%d parsed=%d", res.TotalFiles, res.ParsedFiles)
	}
	if len(res.Observations) != 4 {
		t.Errorf("Observations = %d, want 4", len(res.Observations))
	}
}

func TestScanDir_Missing(t *testing.T) {
	files, err := ScanDir(filepath.Join(t.TempDir(), "absent"))
	if err != nil || files != nil {
		t.Errorf("ScanDir(absent) = %v, %v", files, err)
	}
}
