package animl

import (
	"fmt"
	"strconv"

	"github.com/instrumatics/animl-go/core/element"
)

// Build validates a structured element tree and constructs the document
// graph. It is pure: the same input always yields the same graph or the
// same errors.
//
// Validation runs depth-first, children before parents, and accumulates:
// a structural defect aborts only the entity it was found in, while the
// rest of the document is still validated and returned, so one pass yields
// a complete diagnostic list. The single fatal case is a version mismatch,
// which stops validation immediately since the rest of the schema may not
// apply.
//
// Soft identifier references are not checked here; run Resolve on the
// returned document for that.
func Build(root *element.Element) (*Document, []error) {
	if root == nil {
		return nil, []error{&MissingFieldError{Path: "AnIML", Field: "root element"}}
	}
	if root.Name != "AnIML" {
		return nil, []error{&InvalidValueError{Path: root.Name, Field: "element", Got: root.Name, Want: "AnIML"}}
	}

	version, ok := root.Attr("version")
	if !ok || version == "" {
		// The schema declares a default; an absent version means the
		// supported one.
		version = SupportedVersion
	}
	if version != SupportedVersion {
		return nil, []error{&UnsupportedVersionError{Got: version, Want: SupportedVersion}}
	}

	b := &builder{}
	doc := &Document{Version: version}
	const path = "AnIML"

	if el := b.singular(root, path, "SampleSet"); el != nil {
		doc.SampleSet = b.buildSampleSet(path+".SampleSet", el)
	}
	if el := b.singular(root, path, "ExperimentStepSet"); el != nil {
		doc.ExperimentStepSet = b.buildExperimentStepSet(path+".ExperimentStepSet", el)
	}
	if el := b.singular(root, path, "AuditTrailEntrySet"); el != nil {
		doc.AuditTrailEntrySet = b.buildAuditTrailEntrySet(path+".AuditTrailEntrySet", el)
	}

	return doc, b.errs
}

// builder accumulates validation errors across the recursive descent.
type builder struct {
	errs []error
}

func (b *builder) add(err error) {
	b.errs = append(b.errs, err)
}

// singular returns the first child with the given name and flags additional
// occurrences as a cardinality defect. Returns nil when absent.
func (b *builder) singular(el *element.Element, path, name string) *element.Element {
	if n := el.CountNamed(name); n > 1 {
		b.add(&CardinalityError{Path: path, Field: name, Message: fmt.Sprintf("singular field given %d children", n)})
	}
	return el.Child(name)
}

// requireAttr fetches a required attribute, recording a MissingFieldError
// when absent or empty.
func (b *builder) requireAttr(el *element.Element, path, name string) (string, bool) {
	v, ok := el.Attr(name)
	if !ok || v == "" {
		b.add(&MissingFieldError{Path: path, Field: name})
		return "", false
	}
	return v, true
}

// intAttr parses an optional integer attribute. The second result reports
// presence, the third validity.
func (b *builder) intAttr(el *element.Element, path, name string) (int, bool, bool) {
	v, ok := el.Attr(name)
	if !ok {
		return 0, false, true
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		b.add(&InvalidValueError{Path: path, Field: name, Got: v, Want: "integer"})
		return 0, true, false
	}
	return n, true, true
}

// floatAttr parses an optional float attribute with a default.
func (b *builder) floatAttr(el *element.Element, path, name string, def float64) float64 {
	v, ok := el.Attr(name)
	if !ok {
		return def
	}
	f, err := strconv.ParseFloat(v, 64)
	if err != nil {
		b.add(&InvalidValueError{Path: path, Field: name, Got: v, Want: "number"})
		return def
	}
	return f
}

// childText returns the trimmed-as-is text of the first child with the
// given name, plus presence.
func childText(el *element.Element, name string) (string, bool) {
	c := el.Child(name)
	if c == nil {
		return "", false
	}
	return c.Text, true
}

func attrOr(el *element.Element, name, def string) string {
	if v, ok := el.Attr(name); ok {
		return v
	}
	return def
}

func (b *builder) buildSampleSet(path string, el *element.Element) *SampleSet {
	set := &SampleSet{ID: attrOr(el, "id", "")}
	seen := map[string]bool{}
	for i, c := range el.ChildrenNamed("Sample") {
		p := fmt.Sprintf("%s.Sample[%d]", path, i)
		s := b.buildSample(p, c)
		if s == nil {
			continue
		}
		if seen[s.SampleID] {
			b.add(&DuplicateIdentifierError{Path: p, Kind: "sampleID", ID: s.SampleID})
			continue
		}
		seen[s.SampleID] = true
		set.Samples = append(set.Samples, s)
	}
	return set
}

func (b *builder) buildSample(path string, el *element.Element) *Sample {
	name, ok1 := b.requireAttr(el, path, "name")
	id, ok2 := b.requireAttr(el, path, "sampleID")
	if !ok1 || !ok2 {
		return nil
	}
	s := &Sample{
		Name:                name,
		SampleID:            id,
		Barcode:             attrOr(el, "barcode", ""),
		Comment:             attrOr(el, "comment", ""),
		ContainerType:       attrOr(el, "containerType", ""),
		ContainerID:         attrOr(el, "containerID", ""),
		LocationInContainer: attrOr(el, "locationInContainer", ""),
		SourceDataLocation:  attrOr(el, "sourceDataLocation", ""),
	}
	if c := b.singular(el, path, "TagSet"); c != nil {
		s.TagSet = b.buildTagSet(path+".TagSet", c)
	}
	for i, c := range el.ChildrenNamed("Category") {
		if cat := b.buildCategory(fmt.Sprintf("%s.Category[%d]", path, i), c); cat != nil {
			s.Categories = append(s.Categories, cat)
		}
	}
	return s
}

func (b *builder) buildTagSet(path string, el *element.Element) *TagSet {
	set := &TagSet{}
	for i, c := range el.ChildrenNamed("Tag") {
		p := fmt.Sprintf("%s.Tag[%d]", path, i)
		name, ok := b.requireAttr(c, p, "name")
		if !ok {
			continue
		}
		set.Tags = append(set.Tags, &Tag{Name: name, Value: attrOr(c, "value", "")})
	}
	return set
}

func (b *builder) buildCategory(path string, el *element.Element) *Category {
	name, ok := b.requireAttr(el, path, "name")
	if !ok {
		return nil
	}
	cat := &Category{Name: name}
	for i, c := range el.ChildrenNamed("Parameter") {
		if p := b.buildParameter(fmt.Sprintf("%s.Parameter[%d]", path, i), c); p != nil {
			cat.Parameters = append(cat.Parameters, p)
		}
	}
	for i, c := range el.ChildrenNamed("SeriesSet") {
		if ss := b.buildSeriesSet(fmt.Sprintf("%s.SeriesSet[%d]", path, i), c); ss != nil {
			cat.SeriesSets = append(cat.SeriesSets, ss)
		}
	}
	for i, c := range el.ChildrenNamed("Category") {
		if sub := b.buildCategory(fmt.Sprintf("%s.Category[%d]", path, i), c); sub != nil {
			cat.Categories = append(cat.Categories, sub)
		}
	}
	return cat
}

func (b *builder) buildParameter(path string, el *element.Element) *Parameter {
	name, ok1 := b.requireAttr(el, path, "name")
	typ, ok2 := b.requireAttr(el, path, "parameterType")
	if !ok1 || !ok2 {
		return nil
	}
	pt := SeriesType(typ)
	if !pt.IsValid() {
		b.add(&InvalidValueError{Path: path, Field: "parameterType", Got: typ, Want: "Int32|Int64|Float32|Float64|String|Boolean"})
		return nil
	}
	p := &Parameter{Name: name, Type: pt}

	// Exactly one typed value child carries the parameter's value.
	var valueEl *element.Element
	count := 0
	for _, c := range el.Children {
		if _, isValue := seriesTypeForTag[c.Name]; isValue {
			count++
			if valueEl == nil {
				valueEl = c
			}
		}
	}
	switch {
	case count == 0:
		b.add(&MissingFieldError{Path: path, Field: "value"})
		return nil
	case count > 1:
		b.add(&CardinalityError{Path: path, Field: "value", Message: fmt.Sprintf("singular field given %d children", count)})
		return nil
	}
	if got := seriesTypeForTag[valueEl.Name]; got != pt {
		b.add(&InvalidValueError{Path: path, Field: "value", Got: valueEl.Name, Want: pt.ValueTag()})
		return nil
	}
	v, err := parseValue(path, pt, valueEl.Text)
	if err != nil {
		b.add(err)
		return nil
	}
	p.Value = v

	if c := b.singular(el, path, "Unit"); c != nil {
		p.Unit = b.buildUnit(path+".Unit", c)
	}
	return p
}

func (b *builder) buildUnit(path string, el *element.Element) *Unit {
	label, ok := b.requireAttr(el, path, "label")
	if !ok {
		return nil
	}
	u := &Unit{Label: label, Quantity: attrOr(el, "quantity", "")}
	for i, c := range el.ChildrenNamed("SIUnit") {
		p := fmt.Sprintf("%s.SIUnit[%d]", path, i)
		si := &SIUnit{
			Unit:     c.Text,
			Factor:   b.floatAttr(c, p, "factor", 1),
			Exponent: b.floatAttr(c, p, "exponent", 1),
			Offset:   b.floatAttr(c, p, "offset", 0),
		}
		if si.Unit == "" {
			b.add(&MissingFieldError{Path: p, Field: "unit"})
			continue
		}
		if !validSIBaseUnits[si.Unit] {
			b.add(&InvalidValueError{Path: p, Field: "unit", Got: si.Unit, Want: "SI base unit (1, m, kg, s, A, K, mol, cd)"})
			continue
		}
		u.SIUnits = append(u.SIUnits, si)
	}
	return u
}

func (b *builder) buildSeriesSet(path string, el *element.Element) *SeriesSet {
	name, ok1 := b.requireAttr(el, path, "name")
	lengthStr, ok2 := b.requireAttr(el, path, "length")
	if !ok1 || !ok2 {
		return nil
	}
	length, err := strconv.Atoi(lengthStr)
	if err != nil || length < 0 {
		b.add(&InvalidValueError{Path: path, Field: "length", Got: lengthStr, Want: "non-negative integer"})
		return nil
	}
	set := &SeriesSet{Name: name, Length: length}

	children := el.ChildrenNamed("Series")
	if len(children) == 0 {
		// Required-multiple container: zero entries do not satisfy it.
		b.add(&CardinalityError{Path: path, Field: "Series", Message: "required field has no children"})
		return set
	}
	seen := map[string]bool{}
	for i, c := range children {
		p := fmt.Sprintf("%s.Series[%d]", path, i)
		s := b.buildSeries(p, c)
		if s == nil {
			continue
		}
		if seen[s.SeriesID] {
			b.add(&DuplicateIdentifierError{Path: p, Kind: "seriesID", ID: s.SeriesID})
			continue
		}
		seen[s.SeriesID] = true
		set.Series = append(set.Series, s)
	}
	return set
}

// valueSetNames are the three alternative encodings a series chunk may use.
var valueSetNames = map[string]bool{
	"IndividualValueSet":      true,
	"EncodedValueSet":         true,
	"AutoIncrementedValueSet": true,
}

func (b *builder) buildSeries(path string, el *element.Element) *Series {
	name, ok1 := b.requireAttr(el, path, "name")
	id, ok2 := b.requireAttr(el, path, "seriesID")
	dep, ok3 := b.requireAttr(el, path, "dependency")
	typ, ok4 := b.requireAttr(el, path, "seriesType")
	if !ok1 || !ok2 || !ok3 || !ok4 {
		return nil
	}
	s := &Series{
		Name:        name,
		SeriesID:    id,
		Dependency:  Dependency(dep),
		SeriesType:  SeriesType(typ),
		VisibleName: attrOr(el, "visibleName", ""),
	}
	valid := true
	if !s.Dependency.IsValid() {
		b.add(&InvalidValueError{Path: path, Field: "dependency", Got: dep, Want: "independent|dependent"})
		valid = false
	}
	if !s.SeriesType.IsValid() {
		b.add(&InvalidValueError{Path: path, Field: "seriesType", Got: typ, Want: "Int32|Int64|Float32|Float64|String|Boolean"})
		valid = false
	}
	if !valid {
		return nil
	}

	if c := b.singular(el, path, "Unit"); c != nil {
		s.Unit = b.buildUnit(path+".Unit", c)
	}

	for i, c := range el.Children {
		if !valueSetNames[c.Name] {
			continue
		}
		p := fmt.Sprintf("%s.%s[%d]", path, c.Name, i)
		if vs := b.buildValueSet(p, c); vs != nil {
			s.ValueSets = append(s.ValueSets, vs)
		}
	}
	if len(s.ValueSets) == 0 {
		b.add(&CardinalityError{Path: path, Field: "value set", Message: "exactly one of IndividualValueSet, EncodedValueSet, AutoIncrementedValueSet is required"})
		return nil
	}
	return s
}

// chunkBounds parses the optional startIndex/endIndex pair of a value-set
// chunk. Either both are present or neither.
func (b *builder) chunkBounds(path string, el *element.Element) (bounds, bool) {
	start, hasStart, okStart := b.intAttr(el, path, "startIndex")
	end, hasEnd, okEnd := b.intAttr(el, path, "endIndex")
	if !okStart || !okEnd {
		return bounds{}, false
	}
	switch {
	case !hasStart && !hasEnd:
		return bounds{}, true
	case hasStart != hasEnd:
		missing := "endIndex"
		if !hasStart {
			missing = "startIndex"
		}
		b.add(&MissingFieldError{Path: path, Field: missing})
		return bounds{}, false
	}
	if start < 0 || start > end {
		b.add(&InvalidValueError{
			Path:  path,
			Field: "startIndex",
			Got:   fmt.Sprintf("%d..%d", start, end),
			Want:  "0 <= startIndex <= endIndex",
		})
		return bounds{}, false
	}
	return bounds{StartIndex: start, EndIndex: end, Bounded: true}, true
}

func (b *builder) buildValueSet(path string, el *element.Element) ValueSet {
	bnd, ok := b.chunkBounds(path, el)
	if !ok {
		return nil
	}
	switch el.Name {
	case "IndividualValueSet":
		vs := &IndividualValueSet{bounds: bnd}
		for _, c := range el.Children {
			if _, isValue := seriesTypeForTag[c.Name]; isValue {
				vs.Values = append(vs.Values, RawValue{Tag: c.Name, Text: c.Text})
			}
		}
		return vs

	case "EncodedValueSet":
		return &EncodedValueSet{bounds: bnd, Data: el.Payload}

	case "AutoIncrementedValueSet":
		vs := &AutoIncrementedValueSet{bounds: bnd}
		start := b.singular(el, path, "StartValue")
		if start == nil {
			b.add(&MissingFieldError{Path: path, Field: "StartValue"})
			return nil
		}
		inc := b.singular(el, path, "Increment")
		if inc == nil {
			b.add(&MissingFieldError{Path: path, Field: "Increment"})
			return nil
		}
		sv, ok1 := b.buildBoundaryValue(path+".StartValue", start)
		iv, ok2 := b.buildBoundaryValue(path+".Increment", inc)
		if !ok1 || !ok2 {
			return nil
		}
		vs.Start = &StartValue{Value: sv}
		vs.Increment = &Increment{Value: iv}
		return vs
	}
	return nil
}

// buildBoundaryValue parses the single numeric child (I, L, F, or D) of a
// StartValue, EndValue, or Increment element.
func (b *builder) buildBoundaryValue(path string, el *element.Element) (Value, bool) {
	var valueEl *element.Element
	count := 0
	for _, c := range el.Children {
		t, isValue := seriesTypeForTag[c.Name]
		if !isValue || t.EncodedWidth() == 0 {
			continue
		}
		count++
		if valueEl == nil {
			valueEl = c
		}
	}
	switch {
	case count == 0:
		b.add(&MissingFieldError{Path: path, Field: "value"})
		return Value{}, false
	case count > 1:
		b.add(&CardinalityError{Path: path, Field: "value", Message: fmt.Sprintf("singular field given %d children", count)})
		return Value{}, false
	}
	v, err := parseValue(path, seriesTypeForTag[valueEl.Name], valueEl.Text)
	if err != nil {
		b.add(err)
		return Value{}, false
	}
	return v, true
}

func (b *builder) buildExperimentStepSet(path string, el *element.Element) *ExperimentStepSet {
	set := &ExperimentStepSet{}
	seenSteps := map[string]bool{}
	for i, c := range el.ChildrenNamed("ExperimentStep") {
		p := fmt.Sprintf("%s.ExperimentStep[%d]", path, i)
		s := b.buildExperimentStep(p, c)
		if s == nil {
			continue
		}
		if seenSteps[s.ExperimentStepID] {
			b.add(&DuplicateIdentifierError{Path: p, Kind: "experimentStepID", ID: s.ExperimentStepID})
			continue
		}
		seenSteps[s.ExperimentStepID] = true
		set.Steps = append(set.Steps, s)
	}
	seenTemplates := map[string]bool{}
	for i, c := range el.ChildrenNamed("Template") {
		p := fmt.Sprintf("%s.Template[%d]", path, i)
		t := b.buildTemplate(p, c)
		if t == nil {
			continue
		}
		if seenTemplates[t.TemplateID] {
			b.add(&DuplicateIdentifierError{Path: p, Kind: "templateID", ID: t.TemplateID})
			continue
		}
		seenTemplates[t.TemplateID] = true
		set.Templates = append(set.Templates, t)
	}
	return set
}

func (b *builder) buildExperimentStep(path string, el *element.Element) *ExperimentStep {
	name, ok1 := b.requireAttr(el, path, "name")
	id, ok2 := b.requireAttr(el, path, "experimentStepID")
	if !ok1 || !ok2 {
		return nil
	}
	s := &ExperimentStep{
		Name:               name,
		ExperimentStepID:   id,
		TemplateUsed:       attrOr(el, "templateUsed", ""),
		Comment:            attrOr(el, "comment", ""),
		SourceDataLocation: attrOr(el, "sourceDataLocation", ""),
	}
	b.buildStepBody(path, el, &s.TagSet, &s.Technique, &s.Infrastructure, &s.Method, &s.Results)
	return s
}

func (b *builder) buildTemplate(path string, el *element.Element) *Template {
	name, ok1 := b.requireAttr(el, path, "name")
	id, ok2 := b.requireAttr(el, path, "templateID")
	if !ok1 || !ok2 {
		return nil
	}
	t := &Template{Name: name, TemplateID: id}
	b.buildStepBody(path, el, &t.TagSet, &t.Technique, &t.Infrastructure, &t.Method, &t.Results)
	return t
}

// buildStepBody fills the shared children of ExperimentStep and Template.
func (b *builder) buildStepBody(path string, el *element.Element, tagSet **TagSet, technique **Technique, infra **Infrastructure, method **Method, results *[]*Result) {
	if c := b.singular(el, path, "TagSet"); c != nil {
		*tagSet = b.buildTagSet(path+".TagSet", c)
	}
	if c := b.singular(el, path, "Technique"); c != nil {
		*technique = b.buildTechnique(path+".Technique", c)
	}
	if c := b.singular(el, path, "Infrastructure"); c != nil {
		*infra = b.buildInfrastructure(path+".Infrastructure", c)
	}
	if c := b.singular(el, path, "Method"); c != nil {
		*method = b.buildMethod(path+".Method", c)
	}
	for i, c := range el.ChildrenNamed("Result") {
		if r := b.buildResult(fmt.Sprintf("%s.Result[%d]", path, i), c); r != nil {
			*results = append(*results, r)
		}
	}
}

func (b *builder) buildTechnique(path string, el *element.Element) *Technique {
	name, ok1 := b.requireAttr(el, path, "name")
	uri, ok2 := b.requireAttr(el, path, "uri")
	if !ok1 || !ok2 {
		return nil
	}
	return &Technique{Name: name, URI: uri, SHA256: attrOr(el, "sha256", "")}
}

func (b *builder) buildInfrastructure(path string, el *element.Element) *Infrastructure {
	infra := &Infrastructure{}
	if c := b.singular(el, path, "SampleReferenceSet"); c != nil {
		infra.SampleReferenceSet = b.buildSampleReferenceSet(path+".SampleReferenceSet", c)
	}
	if c := b.singular(el, path, "ParentDataPointReferenceSet"); c != nil {
		infra.ParentDataPointReferenceSet = b.buildParentDataPointReferenceSet(path+".ParentDataPointReferenceSet", c)
	}
	if c := b.singular(el, path, "ExperimentDataReferenceSet"); c != nil {
		infra.ExperimentDataReferenceSet = b.buildExperimentDataReferenceSet(path+".ExperimentDataReferenceSet", c)
	}
	if text, ok := childText(el, "Timestamp"); ok {
		infra.Timestamp = text
	}
	return infra
}

func (b *builder) buildSampleReferenceSet(path string, el *element.Element) *SampleReferenceSet {
	set := &SampleReferenceSet{}
	for i, c := range el.ChildrenNamed("SampleReference") {
		p := fmt.Sprintf("%s.SampleReference[%d]", path, i)
		id, ok1 := b.requireAttr(c, p, "sampleID")
		purpose, ok2 := b.requireAttr(c, p, "samplePurpose")
		if !ok1 || !ok2 {
			continue
		}
		sp := SamplePurpose(purpose)
		if !sp.IsValid() {
			b.add(&InvalidValueError{Path: p, Field: "samplePurpose", Got: purpose, Want: "produced|consumed"})
			continue
		}
		set.References = append(set.References, &SampleReference{
			SampleID:      id,
			Role:          attrOr(c, "role", ""),
			SamplePurpose: sp,
		})
	}
	return set
}

func (b *builder) buildParentDataPointReferenceSet(path string, el *element.Element) *ParentDataPointReferenceSet {
	set := &ParentDataPointReferenceSet{}
	children := el.ChildrenNamed("ParentDataPointReference")
	if len(children) == 0 {
		b.add(&CardinalityError{Path: path, Field: "ParentDataPointReference", Message: "required field has no children"})
		return set
	}
	for i, c := range children {
		p := fmt.Sprintf("%s.ParentDataPointReference[%d]", path, i)
		id, ok := b.requireAttr(c, p, "seriesID")
		if !ok {
			continue
		}
		ref := &ParentDataPointReference{SeriesID: id}
		if sv := b.singular(c, p, "StartValue"); sv != nil {
			if v, ok := b.buildBoundaryValue(p+".StartValue", sv); ok {
				ref.StartValue = &StartValue{Value: v}
			}
		}
		if ev := b.singular(c, p, "EndValue"); ev != nil {
			if v, ok := b.buildBoundaryValue(p+".EndValue", ev); ok {
				ref.EndValue = &EndValue{Value: v}
			}
		}
		set.References = append(set.References, ref)
	}
	return set
}

func (b *builder) buildExperimentDataReferenceSet(path string, el *element.Element) *ExperimentDataReferenceSet {
	set := &ExperimentDataReferenceSet{}
	for i, c := range el.ChildrenNamed("ExperimentDataReference") {
		p := fmt.Sprintf("%s.ExperimentDataReference[%d]", path, i)
		id, ok := b.requireAttr(c, p, "experimentStepID")
		if !ok {
			continue
		}
		set.References = append(set.References, &ExperimentDataReference{
			ExperimentStepID: id,
			Role:             attrOr(c, "role", ""),
			DataPurpose:      attrOr(c, "dataPurpose", ""),
		})
	}
	for i, c := range el.ChildrenNamed("ExperimentDataBulkReference") {
		p := fmt.Sprintf("%s.ExperimentDataBulkReference[%d]", path, i)
		prefix, ok := b.requireAttr(c, p, "experimentStepIDPrefix")
		if !ok {
			continue
		}
		set.BulkReferences = append(set.BulkReferences, &ExperimentDataBulkReference{
			ExperimentStepIDPrefix: prefix,
			Role:                   attrOr(c, "role", ""),
			DataPurpose:            attrOr(c, "dataPurpose", ""),
		})
	}
	return set
}

func (b *builder) buildMethod(path string, el *element.Element) *Method {
	m := &Method{Name: attrOr(el, "name", "")}
	if c := b.singular(el, path, "Author"); c != nil {
		m.Author = b.buildAuthor(path+".Author", c)
	}
	if c := b.singular(el, path, "Device"); c != nil {
		m.Device = b.buildDevice(path+".Device", c)
	}
	if c := b.singular(el, path, "Software"); c != nil {
		m.Software = b.buildSoftware(path+".Software", c)
	}
	return m
}

func (b *builder) buildAuthor(path string, el *element.Element) *Author {
	userType, ok := b.requireAttr(el, path, "userType")
	if !ok {
		return nil
	}
	ut := UserType(userType)
	if !ut.IsValid() {
		b.add(&InvalidValueError{Path: path, Field: "userType", Got: userType, Want: "human|device|software"})
		return nil
	}
	name, ok := childText(el, "Name")
	if !ok || name == "" {
		b.add(&MissingFieldError{Path: path, Field: "Name"})
		return nil
	}
	a := &Author{UserType: ut, Name: name}
	a.Affiliation, _ = childText(el, "Affiliation")
	a.Role, _ = childText(el, "Role")
	a.Email, _ = childText(el, "Email")
	a.Phone, _ = childText(el, "Phone")
	a.Location, _ = childText(el, "Location")
	return a
}

func (b *builder) buildDevice(path string, el *element.Element) *Device {
	name, ok := childText(el, "Name")
	if !ok || name == "" {
		b.add(&MissingFieldError{Path: path, Field: "Name"})
		return nil
	}
	d := &Device{Name: name}
	d.Identifier, _ = childText(el, "DeviceIdentifier")
	d.Manufacturer, _ = childText(el, "Manufacturer")
	d.FirmwareVersion, _ = childText(el, "FirmwareVersion")
	d.SerialNumber, _ = childText(el, "SerialNumber")
	return d
}

func (b *builder) buildSoftware(path string, el *element.Element) *Software {
	name, ok := childText(el, "Name")
	if !ok || name == "" {
		b.add(&MissingFieldError{Path: path, Field: "Name"})
		return nil
	}
	s := &Software{Name: name}
	s.Manufacturer, _ = childText(el, "Manufacturer")
	s.Version, _ = childText(el, "Version")
	s.OperatingSystem, _ = childText(el, "OperatingSystem")
	return s
}

func (b *builder) buildResult(path string, el *element.Element) *Result {
	name, ok := b.requireAttr(el, path, "name")
	if !ok {
		return nil
	}
	r := &Result{Name: name}
	if c := b.singular(el, path, "SeriesSet"); c != nil {
		r.SeriesSet = b.buildSeriesSet(path+".SeriesSet", c)
	}
	for i, c := range el.ChildrenNamed("Category") {
		if cat := b.buildCategory(fmt.Sprintf("%s.Category[%d]", path, i), c); cat != nil {
			r.Categories = append(r.Categories, cat)
		}
	}
	return r
}

func (b *builder) buildAuditTrailEntrySet(path string, el *element.Element) *AuditTrailEntrySet {
	set := &AuditTrailEntrySet{}
	for i, c := range el.ChildrenNamed("AuditTrailEntry") {
		if e := b.buildAuditTrailEntry(fmt.Sprintf("%s.AuditTrailEntry[%d]", path, i), c); e != nil {
			set.Entries = append(set.Entries, e)
		}
	}
	return set
}

func (b *builder) buildAuditTrailEntry(path string, el *element.Element) *AuditTrailEntry {
	timestamp, hasTS := childText(el, "Timestamp")
	if !hasTS || timestamp == "" {
		b.add(&MissingFieldError{Path: path, Field: "Timestamp"})
		return nil
	}
	action, hasAction := childText(el, "Action")
	if !hasAction || action == "" {
		b.add(&MissingFieldError{Path: path, Field: "Action"})
		return nil
	}
	act := AuditAction(action)
	if !act.IsValid() {
		b.add(&InvalidValueError{Path: path, Field: "Action", Got: action, Want: "created|modified|converted"})
		return nil
	}
	authorEl := b.singular(el, path, "Author")
	if authorEl == nil {
		b.add(&MissingFieldError{Path: path, Field: "Author"})
		return nil
	}
	author := b.buildAuthor(path+".Author", authorEl)
	if author == nil {
		return nil
	}
	e := &AuditTrailEntry{Timestamp: timestamp, Author: author, Action: act}
	if c := b.singular(el, path, "Software"); c != nil {
		e.Software = b.buildSoftware(path+".Software", c)
	}
	e.Reason, _ = childText(el, "Reason")
	e.Comment, _ = childText(el, "Comment")
	for i, c := range el.ChildrenNamed("Diff") {
		if d := b.buildDiff(fmt.Sprintf("%s.Diff[%d]", path, i), c); d != nil {
			e.Diffs = append(e.Diffs, d)
		}
	}
	return e
}

func (b *builder) buildDiff(path string, el *element.Element) *Diff {
	scope, ok := b.requireAttr(el, path, "scope")
	if !ok {
		return nil
	}
	sc := DiffScope(scope)
	if !sc.IsValid() {
		b.add(&InvalidValueError{Path: path, Field: "scope", Got: scope, Want: "element|attribute"})
		return nil
	}
	oldValue, hasOld := childText(el, "OldValue")
	if !hasOld {
		b.add(&MissingFieldError{Path: path, Field: "OldValue"})
		return nil
	}
	newValue, hasNew := childText(el, "NewValue")
	if !hasNew {
		b.add(&MissingFieldError{Path: path, Field: "NewValue"})
		return nil
	}
	return &Diff{Scope: sc, OldValue: oldValue, NewValue: newValue}
}
