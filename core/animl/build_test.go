package animl

import (
	"errors"
	"strings"
	"testing"

	"github.com/instrumatics/animl-go/core/element"
)

func TestBuildEmptyDocument(t *testing.T) {
	doc, errs := Build(element.New("AnIML").WithAttr("version", "0.90"))
	if len(errs) > 0 {
		t.Fatalf("Build returned errors for empty document: %v", errs)
	}
	if doc.Version != "0.90" {
		t.Errorf("Version = %q, want %q", doc.Version, "0.90")
	}
	if doc.SampleSet != nil || doc.ExperimentStepSet != nil || doc.AuditTrailEntrySet != nil {
		t.Error("empty document should have no sections")
	}
}

func TestBuildSubstitutesDefaultVersion(t *testing.T) {
	doc, errs := Build(element.New("AnIML"))
	if len(errs) > 0 {
		t.Fatalf("Build returned errors: %v", errs)
	}
	if doc.Version != SupportedVersion {
		t.Errorf("Version = %q, want default %q", doc.Version, SupportedVersion)
	}
}

func TestBuildRejectsNearMissVersions(t *testing.T) {
	for _, version := range []string{"0.9", "0.91", "1.0", "0.900"} {
		doc, errs := Build(element.New("AnIML").WithAttr("version", version))
		if doc != nil {
			t.Errorf("version %q: expected nil document", version)
		}
		if len(errs) != 1 {
			t.Fatalf("version %q: expected exactly one error, got %v", version, errs)
		}
		var vErr *UnsupportedVersionError
		if !errors.As(errs[0], &vErr) {
			t.Errorf("version %q: expected UnsupportedVersionError, got %T", version, errs[0])
		}
	}
}

func TestBuildVersionMismatchIsFatal(t *testing.T) {
	// A wrong version must short-circuit: the broken sample below must not
	// be reported.
	root := element.New("AnIML").WithAttr("version", "0.91").Append(
		element.New("SampleSet").Append(element.New("Sample")),
	)
	_, errs := Build(root)
	if len(errs) != 1 {
		t.Fatalf("expected exactly one error, got %v", errs)
	}
}

func TestBuildMissingSampleID(t *testing.T) {
	root := element.New("AnIML").WithAttr("version", "0.90").Append(
		element.New("SampleSet").Append(
			element.New("Sample").WithAttr("name", "Buffer"),
		),
	)
	doc, errs := Build(root)
	if doc == nil {
		t.Fatal("document should still be returned")
	}
	if len(errs) != 1 {
		t.Fatalf("expected one error, got %v", errs)
	}
	var mErr *MissingFieldError
	if !errors.As(errs[0], &mErr) {
		t.Fatalf("expected MissingFieldError, got %T", errs[0])
	}
	if mErr.Field != "sampleID" {
		t.Errorf("Field = %q, want sampleID", mErr.Field)
	}
	if len(doc.SampleSet.Samples) != 0 {
		t.Error("invalid sample should not be constructed")
	}
}

func TestBuildDuplicateSampleID(t *testing.T) {
	root := element.New("AnIML").WithAttr("version", "0.90").Append(
		element.New("SampleSet").Append(
			element.New("Sample").WithAttr("name", "A").WithAttr("sampleID", "s1"),
			element.New("Sample").WithAttr("name", "B").WithAttr("sampleID", "s1"),
		),
	)
	doc, errs := Build(root)
	if len(errs) != 1 {
		t.Fatalf("expected one error, got %v", errs)
	}
	var dErr *DuplicateIdentifierError
	if !errors.As(errs[0], &dErr) {
		t.Fatalf("expected DuplicateIdentifierError, got %T", errs[0])
	}
	if dErr.ID != "s1" {
		t.Errorf("ID = %q, want s1", dErr.ID)
	}
	if len(doc.SampleSet.Samples) != 1 {
		t.Errorf("expected 1 surviving sample, got %d", len(doc.SampleSet.Samples))
	}
}

func TestBuildDuplicateExperimentStepID(t *testing.T) {
	root := element.New("AnIML").WithAttr("version", "0.90").Append(
		element.New("ExperimentStepSet").Append(
			element.New("ExperimentStep").WithAttr("name", "a").WithAttr("experimentStepID", "e1"),
			element.New("ExperimentStep").WithAttr("name", "b").WithAttr("experimentStepID", "e1"),
		),
	)
	_, errs := Build(root)
	if len(errs) != 1 {
		t.Fatalf("expected one error, got %v", errs)
	}
	var dErr *DuplicateIdentifierError
	if !errors.As(errs[0], &dErr) {
		t.Fatalf("expected DuplicateIdentifierError, got %T", errs[0])
	}
	if dErr.Kind != "experimentStepID" {
		t.Errorf("Kind = %q, want experimentStepID", dErr.Kind)
	}
}

// seriesEl builds a minimal valid Series element for tests.
func seriesEl(id, seriesType string, chunks ...*element.Element) *element.Element {
	s := element.New("Series").
		WithAttr("name", id).
		WithAttr("seriesID", id).
		WithAttr("dependency", "dependent").
		WithAttr("seriesType", seriesType)
	return s.Append(chunks...)
}

func individualEl(tag string, literals ...string) *element.Element {
	vs := element.New("IndividualValueSet")
	for _, lit := range literals {
		vs.Append(element.New(tag).WithText(lit))
	}
	return vs
}

func seriesSetEl(name string, length string, series ...*element.Element) *element.Element {
	set := element.New("SeriesSet").WithAttr("name", name).WithAttr("length", length)
	return set.Append(series...)
}

func resultEl(set *element.Element) *element.Element {
	return element.New("AnIML").WithAttr("version", "0.90").Append(
		element.New("ExperimentStepSet").Append(
			element.New("ExperimentStep").
				WithAttr("name", "run").
				WithAttr("experimentStepID", "e1").
				Append(element.New("Result").WithAttr("name", "r").Append(set)),
		),
	)
}

func TestBuildDuplicateSeriesID(t *testing.T) {
	root := resultEl(seriesSetEl("data", "1",
		seriesEl("x", "Int32", individualEl("I", "1")),
		seriesEl("x", "Int32", individualEl("I", "2")),
	))
	_, errs := Build(root)
	if len(errs) != 1 {
		t.Fatalf("expected one error, got %v", errs)
	}
	var dErr *DuplicateIdentifierError
	if !errors.As(errs[0], &dErr) {
		t.Fatalf("expected DuplicateIdentifierError, got %T", errs[0])
	}
	if dErr.Kind != "seriesID" {
		t.Errorf("Kind = %q, want seriesID", dErr.Kind)
	}
}

func TestBuildInvalidDependency(t *testing.T) {
	s := element.New("Series").
		WithAttr("name", "x").
		WithAttr("seriesID", "x").
		WithAttr("dependency", "sideways").
		WithAttr("seriesType", "Int32").
		Append(individualEl("I", "1"))
	root := resultEl(seriesSetEl("data", "1", s))
	_, errs := Build(root)
	if len(errs) != 1 {
		t.Fatalf("expected one error, got %v", errs)
	}
	var iErr *InvalidValueError
	if !errors.As(errs[0], &iErr) {
		t.Fatalf("expected InvalidValueError, got %T", errs[0])
	}
	if iErr.Field != "dependency" || iErr.Got != "sideways" {
		t.Errorf("unexpected error detail: %v", iErr)
	}
}

func TestBuildSeriesWithoutValueSet(t *testing.T) {
	root := resultEl(seriesSetEl("data", "1", seriesEl("x", "Int32")))
	_, errs := Build(root)
	if len(errs) != 1 {
		t.Fatalf("expected one error, got %v", errs)
	}
	var cErr *CardinalityError
	if !errors.As(errs[0], &cErr) {
		t.Fatalf("expected CardinalityError, got %T", errs[0])
	}
}

func TestBuildEmptySeriesSet(t *testing.T) {
	// Required-multiple container with zero children.
	root := resultEl(seriesSetEl("data", "5"))
	_, errs := Build(root)
	if len(errs) != 1 {
		t.Fatalf("expected one error, got %v", errs)
	}
	var cErr *CardinalityError
	if !errors.As(errs[0], &cErr) {
		t.Fatalf("expected CardinalityError, got %T", errs[0])
	}
	if cErr.Field != "Series" {
		t.Errorf("Field = %q, want Series", cErr.Field)
	}
}

func TestBuildSingularFieldGivenMultipleChildren(t *testing.T) {
	root := element.New("AnIML").WithAttr("version", "0.90").Append(
		element.New("SampleSet"),
		element.New("SampleSet"),
	)
	_, errs := Build(root)
	if len(errs) != 1 {
		t.Fatalf("expected one error, got %v", errs)
	}
	var cErr *CardinalityError
	if !errors.As(errs[0], &cErr) {
		t.Fatalf("expected CardinalityError, got %T", errs[0])
	}
}

func TestBuildAccumulatesAllDefects(t *testing.T) {
	// One pass reports every defect: missing sampleID, a bad tag, and a
	// duplicate step id.
	root := element.New("AnIML").WithAttr("version", "0.90").Append(
		element.New("SampleSet").Append(
			element.New("Sample").WithAttr("name", "nameless"),
			element.New("Sample").WithAttr("name", "tagged").WithAttr("sampleID", "s1").Append(
				element.New("TagSet").Append(element.New("Tag")),
			),
		),
		element.New("ExperimentStepSet").Append(
			element.New("ExperimentStep").WithAttr("name", "a").WithAttr("experimentStepID", "e1"),
			element.New("ExperimentStep").WithAttr("name", "b").WithAttr("experimentStepID", "e1"),
		),
	)
	doc, errs := Build(root)
	if len(errs) != 3 {
		t.Fatalf("expected 3 accumulated errors, got %d: %v", len(errs), errs)
	}
	if doc == nil {
		t.Fatal("document should be returned alongside its defects")
	}
	if len(doc.SampleSet.Samples) != 1 {
		t.Errorf("expected the valid sample to survive, got %d", len(doc.SampleSet.Samples))
	}
}

func TestBuildParameterTypeMismatch(t *testing.T) {
	root := element.New("AnIML").WithAttr("version", "0.90").Append(
		element.New("SampleSet").Append(
			element.New("Sample").WithAttr("name", "s").WithAttr("sampleID", "s1").Append(
				element.New("Category").WithAttr("name", "props").Append(
					element.New("Parameter").
						WithAttr("name", "pH").
						WithAttr("parameterType", "Float64").
						Append(element.New("I").WithText("7")),
				),
			),
		),
	)
	_, errs := Build(root)
	if len(errs) != 1 {
		t.Fatalf("expected one error, got %v", errs)
	}
	var iErr *InvalidValueError
	if !errors.As(errs[0], &iErr) {
		t.Fatalf("expected InvalidValueError, got %T", errs[0])
	}
	if iErr.Want != "D" {
		t.Errorf("Want = %q, want D", iErr.Want)
	}
}

func TestBuildParameter(t *testing.T) {
	root := element.New("AnIML").WithAttr("version", "0.90").Append(
		element.New("SampleSet").Append(
			element.New("Sample").WithAttr("name", "s").WithAttr("sampleID", "s1").Append(
				element.New("Category").WithAttr("name", "props").Append(
					element.New("Parameter").
						WithAttr("name", "volume").
						WithAttr("parameterType", "Float64").
						Append(
							element.New("D").WithText("1.5"),
							element.New("Unit").WithAttr("label", "mL"),
						),
				),
			),
		),
	)
	doc, errs := Build(root)
	if len(errs) > 0 {
		t.Fatalf("Build returned errors: %v", errs)
	}
	p := doc.SampleSet.Samples[0].Categories[0].Parameters[0]
	if p.Value.Real != 1.5 {
		t.Errorf("Value = %v, want 1.5", p.Value.Real)
	}
	if p.Unit == nil || p.Unit.Label != "mL" {
		t.Errorf("Unit = %v, want label mL", p.Unit)
	}
}

func TestBuildValueSetBoundsValidation(t *testing.T) {
	chunk := individualEl("I", "1", "2").
		WithAttr("startIndex", "4").
		WithAttr("endIndex", "2")
	root := resultEl(seriesSetEl("data", "5", seriesEl("x", "Int32", chunk)))
	_, errs := Build(root)
	found := false
	for _, err := range errs {
		var iErr *InvalidValueError
		if errors.As(err, &iErr) && iErr.Field == "startIndex" {
			found = true
		}
	}
	if !found {
		t.Errorf("expected InvalidValueError on startIndex, got %v", errs)
	}
}

func TestBuildAuditTrail(t *testing.T) {
	author := element.New("Author").WithAttr("userType", "human").Append(
		element.New("Name").WithText("M. Curie"),
	)
	root := element.New("AnIML").WithAttr("version", "0.90").Append(
		element.New("AuditTrailEntrySet").Append(
			element.New("AuditTrailEntry").Append(
				element.New("Timestamp").WithText("2024-05-14T09:30:00Z"),
				author,
				element.New("Action").WithText("created"),
				element.New("Diff").WithAttr("scope", "attribute").Append(
					element.New("OldValue").WithText("a"),
					element.New("NewValue").WithText("b"),
				),
			),
		),
	)
	doc, errs := Build(root)
	if len(errs) > 0 {
		t.Fatalf("Build returned errors: %v", errs)
	}
	entry := doc.AuditTrailEntrySet.Entries[0]
	if entry.Action != ActionCreated {
		t.Errorf("Action = %q, want created", entry.Action)
	}
	if entry.Author.Name != "M. Curie" {
		t.Errorf("Author.Name = %q", entry.Author.Name)
	}
	if len(entry.Diffs) != 1 || entry.Diffs[0].Scope != ScopeAttribute {
		t.Errorf("unexpected diffs: %+v", entry.Diffs)
	}
}

func TestBuildInvalidAuditAction(t *testing.T) {
	root := element.New("AnIML").WithAttr("version", "0.90").Append(
		element.New("AuditTrailEntrySet").Append(
			element.New("AuditTrailEntry").Append(
				element.New("Timestamp").WithText("2024-05-14T09:30:00Z"),
				element.New("Author").WithAttr("userType", "human").Append(
					element.New("Name").WithText("x"),
				),
				element.New("Action").WithText("deleted"),
			),
		),
	)
	_, errs := Build(root)
	if len(errs) != 1 {
		t.Fatalf("expected one error, got %v", errs)
	}
	if !strings.Contains(errs[0].Error(), "deleted") {
		t.Errorf("error should quote the offending action: %v", errs[0])
	}
}

func TestBuildErrorPathsNameTheEntity(t *testing.T) {
	root := element.New("AnIML").WithAttr("version", "0.90").Append(
		element.New("SampleSet").Append(
			element.New("Sample").WithAttr("name", "ok").WithAttr("sampleID", "s1"),
			element.New("Sample").WithAttr("name", "broken"),
		),
	)
	_, errs := Build(root)
	if len(errs) != 1 {
		t.Fatalf("expected one error, got %v", errs)
	}
	if !strings.Contains(errs[0].Error(), "Sample[1]") {
		t.Errorf("error path should locate the entity: %v", errs[0])
	}
}
