package animl

import (
	"fmt"
	"strings"
)

// Index provides identifier lookup over a built document. It is built once
// after construction and only reads the graph, so it can be shared across
// goroutines.
type Index struct {
	samples   map[string]*Sample
	steps     map[string]*ExperimentStep
	templates map[string]*Template
	series    map[string]*Series
}

// NewIndex walks the document and indexes every sample, experiment step,
// template, and series by its identifier.
func NewIndex(doc *Document) *Index {
	ix := &Index{
		samples:   map[string]*Sample{},
		steps:     map[string]*ExperimentStep{},
		templates: map[string]*Template{},
		series:    map[string]*Series{},
	}
	if doc == nil {
		return ix
	}
	if doc.SampleSet != nil {
		for _, s := range doc.SampleSet.Samples {
			ix.samples[s.SampleID] = s
			walkCategories(s.Categories, ix.indexSeriesSet)
		}
	}
	if doc.ExperimentStepSet != nil {
		for _, step := range doc.ExperimentStepSet.Steps {
			ix.steps[step.ExperimentStepID] = step
			for _, r := range step.Results {
				ix.indexResult(r)
			}
		}
		for _, t := range doc.ExperimentStepSet.Templates {
			ix.templates[t.TemplateID] = t
			for _, r := range t.Results {
				ix.indexResult(r)
			}
		}
	}
	return ix
}

func (ix *Index) indexResult(r *Result) {
	if r.SeriesSet != nil {
		ix.indexSeriesSet(r.SeriesSet)
	}
	walkCategories(r.Categories, ix.indexSeriesSet)
}

func (ix *Index) indexSeriesSet(set *SeriesSet) {
	for _, s := range set.Series {
		ix.series[s.SeriesID] = s
	}
}

// walkCategories visits every series set reachable through a category tree.
func walkCategories(cats []*Category, fn func(*SeriesSet)) {
	for _, c := range cats {
		for _, set := range c.SeriesSets {
			fn(set)
		}
		walkCategories(c.Categories, fn)
	}
}

// Sample returns the sample with the given id.
func (ix *Index) Sample(id string) (*Sample, bool) {
	s, ok := ix.samples[id]
	return s, ok
}

// Step returns the experiment step with the given id.
func (ix *Index) Step(id string) (*ExperimentStep, bool) {
	s, ok := ix.steps[id]
	return s, ok
}

// Template returns the template with the given id.
func (ix *Index) Template(id string) (*Template, bool) {
	t, ok := ix.templates[id]
	return t, ok
}

// Series returns the series with the given id, searching every series set
// in the document.
func (ix *Index) Series(id string) (*Series, bool) {
	s, ok := ix.series[id]
	return s, ok
}

// StepIDsWithPrefix returns all experiment step ids starting with prefix.
func (ix *Index) StepIDsWithPrefix(prefix string) []string {
	var out []string
	for id := range ix.steps {
		if strings.HasPrefix(id, prefix) {
			out = append(out, id)
		}
	}
	return out
}

// Resolve checks every soft identifier reference in the document against an
// index built from it and returns the dangling ones as
// DanglingReferenceError values. Resolution never mutates the graph and
// never aborts: all defects are accumulated so a partially referenced
// document remains usable.
func Resolve(doc *Document) []error {
	return ResolveWith(doc, NewIndex(doc))
}

// ResolveWith is Resolve with a caller-supplied index, for callers that
// already built one.
func ResolveWith(doc *Document, ix *Index) []error {
	var errs []error
	if doc == nil {
		return nil
	}

	if doc.SampleSet != nil {
		for i, s := range doc.SampleSet.Samples {
			if s.ContainerID == "" {
				continue
			}
			if _, ok := ix.Sample(s.ContainerID); !ok {
				errs = append(errs, &DanglingReferenceError{
					Path: fmt.Sprintf("AnIML.SampleSet.Sample[%d]", i),
					Kind: "containerID",
					ID:   s.ContainerID,
				})
			}
		}
	}

	if doc.ExperimentStepSet != nil {
		for i, step := range doc.ExperimentStepSet.Steps {
			path := fmt.Sprintf("AnIML.ExperimentStepSet.ExperimentStep[%d]", i)
			if step.TemplateUsed != "" {
				if _, ok := ix.Template(step.TemplateUsed); !ok {
					errs = append(errs, &DanglingReferenceError{Path: path, Kind: "templateUsed", ID: step.TemplateUsed})
				}
			}
			errs = append(errs, resolveInfrastructure(path+".Infrastructure", step.Infrastructure, ix)...)
		}
	}

	return errs
}

func resolveInfrastructure(path string, infra *Infrastructure, ix *Index) []error {
	if infra == nil {
		return nil
	}
	var errs []error

	if set := infra.SampleReferenceSet; set != nil {
		for i, ref := range set.References {
			if _, ok := ix.Sample(ref.SampleID); !ok {
				errs = append(errs, &DanglingReferenceError{
					Path: fmt.Sprintf("%s.SampleReferenceSet.SampleReference[%d]", path, i),
					Kind: "sampleID",
					ID:   ref.SampleID,
				})
			}
		}
	}

	if set := infra.ParentDataPointReferenceSet; set != nil {
		for i, ref := range set.References {
			if _, ok := ix.Series(ref.SeriesID); !ok {
				errs = append(errs, &DanglingReferenceError{
					Path: fmt.Sprintf("%s.ParentDataPointReferenceSet.ParentDataPointReference[%d]", path, i),
					Kind: "seriesID",
					ID:   ref.SeriesID,
				})
			}
		}
	}

	if set := infra.ExperimentDataReferenceSet; set != nil {
		for i, ref := range set.References {
			if _, ok := ix.Step(ref.ExperimentStepID); !ok {
				errs = append(errs, &DanglingReferenceError{
					Path: fmt.Sprintf("%s.ExperimentDataReferenceSet.ExperimentDataReference[%d]", path, i),
					Kind: "experimentStepID",
					ID:   ref.ExperimentStepID,
				})
			}
		}
		for i, ref := range set.BulkReferences {
			// A prefix reference is satisfied by at least one match.
			if len(ix.StepIDsWithPrefix(ref.ExperimentStepIDPrefix)) == 0 {
				errs = append(errs, &DanglingReferenceError{
					Path: fmt.Sprintf("%s.ExperimentDataReferenceSet.ExperimentDataBulkReference[%d]", path, i),
					Kind: "experimentStepIDPrefix",
					ID:   ref.ExperimentStepIDPrefix,
				})
			}
		}
	}

	return errs
}
