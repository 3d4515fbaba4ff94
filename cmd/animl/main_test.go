package main

import (
	"bytes"
	"compress/gzip"
	"os"
	"path/filepath"
	"testing"

	"github.com/instrumatics/animl-go/core/catalog"
)

const testDoc = `<?xml version="1.0" encoding="UTF-8"?>
<AnIML version="0.90">
  <SampleSet>
    <Sample name="Extract A" sampleID="sampleA"/>
  </SampleSet>
  <ExperimentStepSet>
    <ExperimentStep name="UV Scan" experimentStepID="step1">
      <Result name="spectrum">
        <SeriesSet name="spectrum" length="3">
          <Series name="wavelength" seriesID="wl" dependency="independent" seriesType="Float64">
            <AutoIncrementedValueSet>
              <StartValue><D>200</D></StartValue>
              <Increment><D>10</D></Increment>
            </AutoIncrementedValueSet>
          </Series>
          <Series name="absorbance" seriesID="abs" dependency="dependent" seriesType="Int32">
            <IndividualValueSet>
              <I>5</I><I>7</I><I>6</I>
            </IndividualValueSet>
          </Series>
        </SeriesSet>
      </Result>
    </ExperimentStep>
  </ExperimentStepSet>
</AnIML>
`

func writeTestDoc(t *testing.T, name string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	if err := os.WriteFile(path, []byte(testDoc), 0o644); err != nil {
		t.Fatalf("write test doc: %v", err)
	}
	return path
}

func TestLoadDocument(t *testing.T) {
	path := writeTestDoc(t, "run.xml")
	doc, diags, err := loadDocument(path)
	if err != nil {
		t.Fatalf("loadDocument: %v", err)
	}
	if len(diags) != 0 {
		t.Errorf("unexpected diagnostics: %v", diags)
	}
	stats := doc.Stats()
	if stats.Samples != 1 || stats.Steps != 1 || stats.Series != 2 {
		t.Errorf("unexpected stats: %+v", stats)
	}
}

func TestLoadDocumentCompressed(t *testing.T) {
	var buf bytes.Buffer
	gw := gzip.NewWriter(&buf)
	if _, err := gw.Write([]byte(testDoc)); err != nil {
		t.Fatalf("gzip write: %v", err)
	}
	if err := gw.Close(); err != nil {
		t.Fatalf("gzip close: %v", err)
	}
	path := filepath.Join(t.TempDir(), "run.xml.gz")
	if err := os.WriteFile(path, buf.Bytes(), 0o644); err != nil {
		t.Fatalf("write: %v", err)
	}

	doc, _, err := loadDocument(path)
	if err != nil {
		t.Fatalf("loadDocument: %v", err)
	}
	if doc.Version != "0.90" {
		t.Errorf("version = %q", doc.Version)
	}
}

func TestFindSeries(t *testing.T) {
	path := writeTestDoc(t, "run.xml")
	doc, _, err := loadDocument(path)
	if err != nil {
		t.Fatalf("loadDocument: %v", err)
	}
	set, series := findSeries(doc, "abs")
	if series == nil {
		t.Fatal("series abs not found")
	}
	if set.Name != "spectrum" || series.Name != "absorbance" {
		t.Errorf("wrong series: set=%q series=%q", set.Name, series.Name)
	}
	if _, missing := findSeries(doc, "nope"); missing != nil {
		t.Error("expected nil for unknown series")
	}
}

func TestValidateCmd(t *testing.T) {
	cmd := &ValidateCmd{Path: writeTestDoc(t, "run.xml")}
	if err := cmd.Run(); err != nil {
		t.Errorf("validate on clean document: %v", err)
	}
}

func TestIngestCmd(t *testing.T) {
	dir := t.TempDir()
	cmd := &IngestCmd{
		Path:    writeTestDoc(t, "run.xml"),
		Store:   filepath.Join(dir, "store"),
		Catalog: filepath.Join(dir, "catalog.db"),
	}
	if err := cmd.Run(); err != nil {
		t.Fatalf("ingest: %v", err)
	}

	cat, err := catalog.Open(cmd.Catalog)
	if err != nil {
		t.Fatalf("open catalog: %v", err)
	}
	defer cat.Close()
	recs, err := cat.List()
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(recs) != 1 {
		t.Fatalf("expected 1 record, got %d", len(recs))
	}
	if recs[0].Samples != 1 || recs[0].Series != 2 {
		t.Errorf("unexpected record: %+v", recs[0])
	}
}

func TestSeriesCmd(t *testing.T) {
	cmd := &SeriesCmd{Path: writeTestDoc(t, "run.xml"), Series: "wl", Limit: 2}
	if err := cmd.Run(); err != nil {
		t.Errorf("series: %v", err)
	}
	missing := &SeriesCmd{Path: cmd.Path, Series: "nope"}
	if err := missing.Run(); err == nil {
		t.Error("expected error for unknown series")
	}
}

func TestUnitCmd(t *testing.T) {
	cmd := &UnitCmd{Expr: "mg/mL", Value: []float64{5}}
	if err := cmd.Run(); err != nil {
		t.Errorf("unit: %v", err)
	}
	bad := &UnitCmd{Expr: "florb"}
	if err := bad.Run(); err == nil {
		t.Error("expected error for unknown unit")
	}
}
