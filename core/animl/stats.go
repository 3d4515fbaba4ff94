package animl

// Stats summarizes a document for catalogs and reports.
type Stats struct {
	Samples    int
	Steps      int
	Templates  int
	SeriesSets int
	Series     int
	AuditTrail int
}

// Stats walks the document and counts its major entities.
func (d *Document) Stats() Stats {
	var st Stats
	if d == nil {
		return st
	}
	countSet := func(set *SeriesSet) {
		st.SeriesSets++
		st.Series += len(set.Series)
	}
	if d.SampleSet != nil {
		st.Samples = len(d.SampleSet.Samples)
		for _, s := range d.SampleSet.Samples {
			walkCategories(s.Categories, countSet)
		}
	}
	if d.ExperimentStepSet != nil {
		st.Steps = len(d.ExperimentStepSet.Steps)
		st.Templates = len(d.ExperimentStepSet.Templates)
		countResult := func(r *Result) {
			if r.SeriesSet != nil {
				countSet(r.SeriesSet)
			}
			walkCategories(r.Categories, countSet)
		}
		for _, step := range d.ExperimentStepSet.Steps {
			for _, r := range step.Results {
				countResult(r)
			}
		}
		for _, t := range d.ExperimentStepSet.Templates {
			for _, r := range t.Results {
				countResult(r)
			}
		}
	}
	if d.AuditTrailEntrySet != nil {
		st.AuditTrail = len(d.AuditTrailEntrySet.Entries)
	}
	return st
}
