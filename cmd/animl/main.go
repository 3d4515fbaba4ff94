// Command animl is the CLI tool for working with AnIML documents.
// It provides commands for validating, inspecting, querying, and
// ingesting analytical data files.
package main

import (
	"encoding/json"
	"fmt"
	"os"
	"strings"

	"github.com/alecthomas/kong"

	"github.com/instrumatics/animl-go/core/animl"
	"github.com/instrumatics/animl-go/core/animlxml"
	"github.com/instrumatics/animl-go/core/cas"
	"github.com/instrumatics/animl-go/core/catalog"
	"github.com/instrumatics/animl-go/core/unitexpr"
	"github.com/instrumatics/animl-go/internal/archive"
	"github.com/instrumatics/animl-go/internal/logging"
	"github.com/instrumatics/animl-go/internal/validation"
)

const version = "0.1.0"

// CLI defines the command-line interface for animl.
var CLI struct {
	// Global flags
	LogLevel  string `name:"log-level" default:"info" enum:"debug,info,warn,error" help:"Log level"`
	LogFormat string `name:"log-format" default:"text" enum:"text,json" help:"Log output format"`

	Validate ValidateCmd  `cmd:"" help:"Validate a document and report diagnostics"`
	Inspect  InspectCmd   `cmd:"" help:"Summarize document contents"`
	Series   SeriesCmd    `cmd:"" help:"Decode and print a measurement series"`
	Unit     UnitCmd      `cmd:"" help:"Parse a unit expression and convert values to SI"`
	Query    QueryCmd     `cmd:"" help:"Run an XPath query against a document"`
	Ingest   IngestCmd    `cmd:"" help:"Store a document in the blob store and catalog"`
	Catalog  CatalogGroup `cmd:"" help:"Catalog operations (list, show)"`
	Version  VersionCmd   `cmd:"" help:"Print version information"`
}

// CatalogGroup contains catalog query operations.
type CatalogGroup struct {
	List CatalogListCmd `cmd:"" help:"List ingested documents"`
	Show CatalogShowCmd `cmd:"" help:"Show one catalog record"`
}

// loadDocument reads a possibly compressed source file and builds the
// document, returning the build diagnostics alongside.
func loadDocument(path string) (*animl.Document, []error, error) {
	if err := validation.ValidatePath(path); err != nil {
		return nil, nil, fmt.Errorf("invalid path: %w", err)
	}
	data, err := archive.ReadSource(path)
	if err != nil {
		return nil, nil, err
	}
	return animlxml.LoadBytes(data)
}

// ValidateCmd validates a document.
type ValidateCmd struct {
	Path string `arg:"" help:"Path to document (.xml, .xml.gz, .xml.xz)" type:"existingfile"`
}

func (c *ValidateCmd) Run() error {
	doc, diags, err := loadDocument(c.Path)
	if err != nil {
		return err
	}
	for _, d := range diags {
		fmt.Println(d)
	}
	if len(diags) > 0 {
		return fmt.Errorf("%d problem(s) found", len(diags))
	}
	logging.DocumentLoaded(c.Path, doc.Version,
		doc.Stats().Samples, doc.Stats().Steps, doc.Stats().Series)
	fmt.Println("OK")
	return nil
}

// InspectCmd prints a document summary.
type InspectCmd struct {
	Path string `arg:"" help:"Path to document" type:"existingfile"`
	JSON bool   `help:"Emit summary as JSON"`
}

func (c *InspectCmd) Run() error {
	doc, diags, err := loadDocument(c.Path)
	if err != nil {
		return err
	}
	stats := doc.Stats()
	if c.JSON {
		out := struct {
			Version     string `json:"version"`
			Samples     int    `json:"samples"`
			Steps       int    `json:"steps"`
			Templates   int    `json:"templates"`
			SeriesSets  int    `json:"series_sets"`
			Series      int    `json:"series"`
			AuditTrail  int    `json:"audit_trail"`
			Diagnostics int    `json:"diagnostics"`
		}{doc.Version, stats.Samples, stats.Steps, stats.Templates,
			stats.SeriesSets, stats.Series, stats.AuditTrail, len(diags)}
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		return enc.Encode(out)
	}

	fmt.Printf("Version:     %s\n", doc.Version)
	fmt.Printf("Samples:     %d\n", stats.Samples)
	fmt.Printf("Steps:       %d (%d templates)\n", stats.Steps, stats.Templates)
	fmt.Printf("Series:      %d in %d sets\n", stats.Series, stats.SeriesSets)
	fmt.Printf("Audit trail: %d entries\n", stats.AuditTrail)
	if len(diags) > 0 {
		fmt.Printf("Diagnostics: %d\n", len(diags))
	}
	return nil
}

// SeriesCmd decodes one series and prints its values.
type SeriesCmd struct {
	Path   string `arg:"" help:"Path to document" type:"existingfile"`
	Series string `arg:"" help:"Series identifier"`
	Limit  int    `default:"20" help:"Maximum number of values to print (0 for all)"`
}

func (c *SeriesCmd) Run() error {
	doc, _, err := loadDocument(c.Path)
	if err != nil {
		return err
	}
	set, series := findSeries(doc, c.Series)
	if series == nil {
		return fmt.Errorf("series %q not found", c.Series)
	}
	seq, err := animl.DecodeSeries(set, series)
	if err != nil {
		return err
	}
	n := seq.Len()
	limit := n
	if c.Limit > 0 && c.Limit < n {
		limit = c.Limit
	}
	fmt.Printf("%s (%s, %d values)\n", series.Name, series.SeriesType, n)
	for i := 0; i < limit; i++ {
		fmt.Printf("  [%d] %s\n", i, seq.At(i))
	}
	if limit < n {
		fmt.Printf("  ... %d more\n", n-limit)
	}
	return nil
}

func findSeries(doc *animl.Document, seriesID string) (*animl.SeriesSet, *animl.Series) {
	if doc.ExperimentStepSet == nil {
		return nil, nil
	}
	for _, step := range doc.ExperimentStepSet.Steps {
		for _, result := range step.Results {
			var sets []*animl.SeriesSet
			if result.SeriesSet != nil {
				sets = append(sets, result.SeriesSet)
			}
			if set, s := findInCategoryTree(sets, result.Categories, seriesID); s != nil {
				return set, s
			}
		}
	}
	return nil, nil
}

func findInCategoryTree(sets []*animl.SeriesSet, cats []*animl.Category, seriesID string) (*animl.SeriesSet, *animl.Series) {
	for _, set := range sets {
		for _, s := range set.Series {
			if s.SeriesID == seriesID {
				return set, s
			}
		}
	}
	for _, cat := range cats {
		if set, s := findInCategoryTree(cat.SeriesSets, cat.Categories, seriesID); s != nil {
			return set, s
		}
	}
	return nil, nil
}

// UnitCmd parses a unit expression.
type UnitCmd struct {
	Expr  string    `arg:"" help:"Unit expression, e.g. 'mg/mL' or 'km/h'"`
	Value []float64 `help:"Values to convert to SI units"`
}

func (c *UnitCmd) Run() error {
	unit, err := unitexpr.Parse(c.Expr)
	if err != nil {
		return err
	}
	fmt.Printf("%s:", unit.Label)
	for _, si := range unit.SIUnits {
		fmt.Printf(" [%s factor=%g offset=%g]", si.Unit, si.Factor, si.Offset)
	}
	fmt.Println()
	transform := unit.Transform()
	for _, v := range c.Value {
		fmt.Printf("  %g %s = %g (SI)\n", v, c.Expr, transform(v))
	}
	return nil
}

// QueryCmd runs an XPath expression against the raw document tree.
type QueryCmd struct {
	Path string `arg:"" help:"Path to document" type:"existingfile"`
	Expr string `arg:"" help:"XPath expression"`
}

func (c *QueryCmd) Run() error {
	data, err := archive.ReadSource(c.Path)
	if err != nil {
		return err
	}
	src, err := animlxml.OpenBytes(data)
	if err != nil {
		return err
	}
	matches, err := src.XPath(c.Expr)
	if err != nil {
		return err
	}
	for _, m := range matches {
		fmt.Println(m)
	}
	fmt.Fprintf(os.Stderr, "%d match(es)\n", len(matches))
	return nil
}

// IngestCmd stores a document and records it in the catalog.
type IngestCmd struct {
	Path    string `arg:"" help:"Path to document" type:"existingfile"`
	Store   string `required:"" help:"Blob store root directory" type:"path"`
	Catalog string `required:"" help:"Catalog database path" type:"path"`
}

func (c *IngestCmd) Run() error {
	data, err := archive.ReadSource(c.Path)
	if err != nil {
		logging.IngestError(c.Path, "read", err)
		return err
	}
	doc, diags, err := animlxml.LoadBytes(data)
	if err != nil {
		logging.IngestError(c.Path, "parse", err)
		return err
	}
	if len(diags) > 0 {
		logging.Diagnostics(c.Path, len(diags))
	}

	store, err := cas.NewStore(c.Store)
	if err != nil {
		return err
	}
	ref, err := store.Put(data)
	if err != nil {
		logging.IngestError(c.Path, "store", err)
		return err
	}

	cat, err := catalog.Open(c.Catalog)
	if err != nil {
		return err
	}
	defer cat.Close()

	rec := catalog.Summarize(doc, ref.SHA256, len(diags))
	if err := cat.Insert(rec); err != nil {
		logging.IngestError(c.Path, "catalog", err)
		return err
	}
	logging.DocumentLoaded(c.Path, doc.Version,
		rec.Samples, rec.Steps, rec.Series, "id", rec.ID)
	fmt.Printf("ingested %s\n", rec.ID)
	fmt.Printf("  sha256 %s\n", ref.SHA256)
	fmt.Printf("  blake3 %s\n", ref.BLAKE3)
	return nil
}

// CatalogListCmd lists catalog records.
type CatalogListCmd struct {
	Catalog string `required:"" help:"Catalog database path" type:"path"`
}

func (c *CatalogListCmd) Run() error {
	cat, err := catalog.Open(c.Catalog)
	if err != nil {
		return err
	}
	defer cat.Close()

	recs, err := cat.List()
	if err != nil {
		return err
	}
	for _, rec := range recs {
		fmt.Printf("%s  %s  v%s  samples=%d steps=%d series=%d",
			rec.ID, rec.IngestedAt.Format("2006-01-02 15:04"),
			rec.Version, rec.Samples, rec.Steps, rec.Series)
		if rec.Diagnostics > 0 {
			fmt.Printf("  diagnostics=%d", rec.Diagnostics)
		}
		fmt.Println()
	}
	if len(recs) == 0 {
		fmt.Println("catalog is empty")
	}
	return nil
}

// CatalogShowCmd shows one record as JSON.
type CatalogShowCmd struct {
	ID      string `arg:"" help:"Record ID"`
	Catalog string `required:"" help:"Catalog database path" type:"path"`
}

func (c *CatalogShowCmd) Run() error {
	cat, err := catalog.Open(c.Catalog)
	if err != nil {
		return err
	}
	defer cat.Close()

	rec, err := cat.Get(c.ID)
	if err != nil {
		return err
	}
	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	return enc.Encode(rec)
}

// VersionCmd prints version information.
type VersionCmd struct{}

func (c *VersionCmd) Run() error {
	fmt.Printf("animl %s (supports AnIML %s, sqlite driver %s)\n",
		version, animl.SupportedVersion, catalog.DriverType())
	return nil
}

func initLogging() {
	level := logging.LevelInfo
	switch strings.ToLower(CLI.LogLevel) {
	case "debug":
		level = logging.LevelDebug
	case "warn":
		level = logging.LevelWarn
	case "error":
		level = logging.LevelError
	}
	format := logging.FormatText
	if CLI.LogFormat == "json" {
		format = logging.FormatJSON
	}
	logging.InitLogger(level, format)
}

func main() {
	ctx := kong.Parse(&CLI,
		kong.Name("animl"),
		kong.Description("AnIML analytical data toolkit"),
		kong.UsageOnError(),
		kong.ConfigureHelp(kong.HelpOptions{
			Compact: true,
		}),
	)
	initLogging()
	err := ctx.Run(ctx)
	ctx.FatalIfErrorf(err)
}
