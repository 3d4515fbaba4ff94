package animl

// types.go - Consolidated AnIML document model type definitions.
// This file contains all entity kinds of the document graph. Entities are
// plain owned trees: a parent owns its children exclusively, navigation is
// top-down, and identifier lookups go through the Index built after
// construction (see resolve.go). Entities are never mutated after Build
// returns; a modified document is a freshly built graph.

// SupportedVersion is the AnIML Core Schema version this model accepts.
// The version check is exact: "0.9" or "0.91" are rejected.
const SupportedVersion = "0.90"

// Dependency states whether a series is an independent axis or depends on one.
type Dependency string

// Dependency values.
const (
	DependencyIndependent Dependency = "independent"
	DependencyDependent   Dependency = "dependent"
)

// validDependencies is the set of valid dependency values.
var validDependencies = map[Dependency]bool{
	DependencyIndependent: true,
	DependencyDependent:   true,
}

// IsValid returns true if the dependency value is valid.
func (d Dependency) IsValid() bool {
	return validDependencies[d]
}

// SeriesType is the element type of a data series or parameter.
type SeriesType string

// Series type constants. The names follow the schema's attribute values;
// individual values are tagged with the short letters returned by ValueTag.
const (
	SeriesInt32   SeriesType = "Int32"
	SeriesInt64   SeriesType = "Int64"
	SeriesFloat32 SeriesType = "Float32"
	SeriesFloat64 SeriesType = "Float64"
	SeriesString  SeriesType = "String"
	SeriesBoolean SeriesType = "Boolean"
)

// validSeriesTypes is the set of valid series types.
var validSeriesTypes = map[SeriesType]bool{
	SeriesInt32:   true,
	SeriesInt64:   true,
	SeriesFloat32: true,
	SeriesFloat64: true,
	SeriesString:  true,
	SeriesBoolean: true,
}

// IsValid returns true if the series type is valid.
func (t SeriesType) IsValid() bool {
	return validSeriesTypes[t]
}

// ValueTag returns the element tag used for individual values of this type:
// I, L, F, D, S, or Boolean.
func (t SeriesType) ValueTag() string {
	switch t {
	case SeriesInt32:
		return "I"
	case SeriesInt64:
		return "L"
	case SeriesFloat32:
		return "F"
	case SeriesFloat64:
		return "D"
	case SeriesString:
		return "S"
	case SeriesBoolean:
		return "Boolean"
	}
	return ""
}

// seriesTypeForTag maps an individual-value element tag back to its type.
var seriesTypeForTag = map[string]SeriesType{
	"I":       SeriesInt32,
	"L":       SeriesInt64,
	"F":       SeriesFloat32,
	"D":       SeriesFloat64,
	"S":       SeriesString,
	"Boolean": SeriesBoolean,
}

// EncodedWidth returns the fixed element width in bytes used by encoded
// value blocks, or 0 when the type cannot appear in an encoded block.
func (t SeriesType) EncodedWidth() int {
	switch t {
	case SeriesInt32, SeriesFloat32:
		return 4
	case SeriesInt64, SeriesFloat64:
		return 8
	}
	return 0
}

// SamplePurpose states whether a referenced sample was produced or consumed
// by an experiment step.
type SamplePurpose string

// Sample purpose values.
const (
	PurposeProduced SamplePurpose = "produced"
	PurposeConsumed SamplePurpose = "consumed"
)

// IsValid returns true if the sample purpose is valid.
func (p SamplePurpose) IsValid() bool {
	return p == PurposeProduced || p == PurposeConsumed
}

// DiffScope states whether an audit diff applies to an element or an attribute.
type DiffScope string

// Diff scope values.
const (
	ScopeElement   DiffScope = "element"
	ScopeAttribute DiffScope = "attribute"
)

// IsValid returns true if the diff scope is valid.
func (s DiffScope) IsValid() bool {
	return s == ScopeElement || s == ScopeAttribute
}

// AuditAction is the kind of change an audit trail entry records.
type AuditAction string

// Audit action values.
const (
	ActionCreated   AuditAction = "created"
	ActionModified  AuditAction = "modified"
	ActionConverted AuditAction = "converted"
)

// validAuditActions is the set of valid audit actions.
var validAuditActions = map[AuditAction]bool{
	ActionCreated:   true,
	ActionModified:  true,
	ActionConverted: true,
}

// IsValid returns true if the audit action is valid.
func (a AuditAction) IsValid() bool {
	return validAuditActions[a]
}

// UserType identifies the kind of author behind a change or method.
type UserType string

// User type values.
const (
	UserHuman    UserType = "human"
	UserDevice   UserType = "device"
	UserSoftware UserType = "software"
)

// validUserTypes is the set of valid user types.
var validUserTypes = map[UserType]bool{
	UserHuman:    true,
	UserDevice:   true,
	UserSoftware: true,
}

// IsValid returns true if the user type is valid.
func (u UserType) IsValid() bool {
	return validUserTypes[u]
}

// Document is the root of a validated AnIML document graph. Absent sections
// are valid: an empty document carries only its version.
type Document struct {
	Version            string
	SampleSet          *SampleSet
	ExperimentStepSet  *ExperimentStepSet
	AuditTrailEntrySet *AuditTrailEntrySet
}

// SampleSet groups all samples of a document.
type SampleSet struct {
	ID      string
	Samples []*Sample
}

// Sample describes one physical or logical specimen. ContainerID is a soft
// reference to another sample's SampleID.
type Sample struct {
	Name                string
	SampleID            string
	Barcode             string
	Comment             string
	ContainerType       string
	ContainerID         string
	LocationInContainer string
	SourceDataLocation  string
	TagSet              *TagSet
	Categories          []*Category
}

// TagSet groups tags attached to a sample or experiment step.
type TagSet struct {
	Tags []*Tag
}

// Tag is a named marker with an optional value.
type Tag struct {
	Name  string
	Value string
}

// Category is a named group of parameters, series sets, and nested
// categories. The tree is built bottom-up from elements, so it is acyclic
// by construction.
type Category struct {
	Name       string
	Parameters []*Parameter
	SeriesSets []*SeriesSet
	Categories []*Category
}

// Parameter is a single named, typed value with an optional unit.
type Parameter struct {
	Name  string
	Type  SeriesType
	Value Value
	Unit  *Unit
}

// ExperimentStepSet groups all experiment steps and templates of a document.
type ExperimentStepSet struct {
	Steps     []*ExperimentStep
	Templates []*Template
}

// ExperimentStep is one application of an analytical technique.
// TemplateUsed is a soft reference to a Template's TemplateID.
type ExperimentStep struct {
	Name               string
	ExperimentStepID   string
	TemplateUsed       string
	Comment            string
	SourceDataLocation string
	TagSet             *TagSet
	Technique          *Technique
	Infrastructure     *Infrastructure
	Method             *Method
	Results            []*Result
}

// Template is a reusable experiment step shape referenced by TemplateUsed.
type Template struct {
	Name           string
	TemplateID     string
	TagSet         *TagSet
	Technique      *Technique
	Infrastructure *Infrastructure
	Method         *Method
	Results        []*Result
}

// Technique names the analytical technique definition an experiment step
// follows.
type Technique struct {
	Name   string
	URI    string
	SHA256 string
}

// Infrastructure carries the experimental context of a step: references to
// samples, to parent data points, and to other experiment steps.
type Infrastructure struct {
	SampleReferenceSet          *SampleReferenceSet
	ParentDataPointReferenceSet *ParentDataPointReferenceSet
	ExperimentDataReferenceSet  *ExperimentDataReferenceSet
	Timestamp                   string
}

// SampleReferenceSet groups sample references of a step.
type SampleReferenceSet struct {
	References []*SampleReference
}

// SampleReference is a soft reference to a Sample by SampleID.
type SampleReference struct {
	SampleID      string
	Role          string
	SamplePurpose SamplePurpose
}

// ParentDataPointReferenceSet groups parent data point references.
// The schema requires at least one reference.
type ParentDataPointReferenceSet struct {
	References []*ParentDataPointReference
}

// ParentDataPointReference points into a region of a parent series by
// SeriesID plus start/end boundary values.
type ParentDataPointReference struct {
	SeriesID   string
	StartValue *StartValue
	EndValue   *EndValue
}

// ExperimentDataReferenceSet groups references to other experiment steps.
type ExperimentDataReferenceSet struct {
	References     []*ExperimentDataReference
	BulkReferences []*ExperimentDataBulkReference
}

// ExperimentDataReference is a soft reference to an ExperimentStep by its id.
type ExperimentDataReference struct {
	ExperimentStepID string
	Role             string
	DataPurpose      string
}

// ExperimentDataBulkReference references every experiment step whose id
// starts with the given prefix. At least one step must match.
type ExperimentDataBulkReference struct {
	ExperimentStepIDPrefix string
	Role                   string
	DataPurpose            string
}

// Method describes how an experiment step was performed.
type Method struct {
	Name     string
	Author   *Author
	Device   *Device
	Software *Software
}

// Author identifies who or what performed an action.
type Author struct {
	UserType    UserType
	Name        string
	Affiliation string
	Role        string
	Email       string
	Phone       string
	Location    string
}

// Device describes the instrument used by a method.
type Device struct {
	Name            string
	Identifier      string
	Manufacturer    string
	FirmwareVersion string
	SerialNumber    string
}

// Software describes the software used by a method or audit entry.
type Software struct {
	Name            string
	Manufacturer    string
	Version         string
	OperatingSystem string
}

// Result is one named outcome of an experiment step.
type Result struct {
	Name       string
	SeriesSet  *SeriesSet
	Categories []*Category
}

// SeriesSet groups related series forming n-dimensional data. Length is the
// declared logical point count every contained series must cover.
type SeriesSet struct {
	Name   string
	Length int
	Series []*Series
}

// Series is one ordered data column. Its values are carried by one or more
// value-set chunks, each covering a contiguous sub-range of the logical
// index space [0, Length) of the enclosing set.
type Series struct {
	Name        string
	SeriesID    string
	Dependency  Dependency
	SeriesType  SeriesType
	VisibleName string
	Unit        *Unit
	ValueSets   []ValueSet
}

// ValueSet is one chunk of a series' values in exactly one of the three
// encodings. The union is closed: only IndividualValueSet, EncodedValueSet,
// and AutoIncrementedValueSet implement it.
type ValueSet interface {
	// Bounds returns the explicit zero-based inclusive start and end
	// indices of the chunk, or ok=false when the chunk carries no
	// explicit sub-range.
	Bounds() (start, end int, ok bool)

	isValueSet()
}

// bounds is the shared optional sub-range of a value-set chunk.
type bounds struct {
	StartIndex int
	EndIndex   int
	Bounded    bool
}

// Bounds returns the explicit sub-range, if any.
func (b bounds) Bounds() (int, int, bool) {
	return b.StartIndex, b.EndIndex, b.Bounded
}

// RawValue is one individual value literal as parsed from the document:
// the element tag (I, L, F, D, S, Boolean) and its text content.
type RawValue struct {
	Tag  string
	Text string
}

// IndividualValueSet carries explicit value literals in document order.
type IndividualValueSet struct {
	bounds
	Values []RawValue
}

func (*IndividualValueSet) isValueSet() {}

// NewIndividualValueSet creates an unbounded individual chunk.
func NewIndividualValueSet(values ...RawValue) *IndividualValueSet {
	return &IndividualValueSet{Values: values}
}

// WithBounds sets the explicit sub-range and returns the chunk.
func (v *IndividualValueSet) WithBounds(start, end int) *IndividualValueSet {
	v.bounds = bounds{StartIndex: start, EndIndex: end, Bounded: true}
	return v
}

// EncodedValueSet carries a little-endian binary block of fixed-width
// elements. Data is the raw buffer recovered from base64 by the I/O layer.
type EncodedValueSet struct {
	bounds
	Data []byte
}

func (*EncodedValueSet) isValueSet() {}

// NewEncodedValueSet creates an unbounded encoded chunk over data.
func NewEncodedValueSet(data []byte) *EncodedValueSet {
	return &EncodedValueSet{Data: data}
}

// WithBounds sets the explicit sub-range and returns the chunk.
func (v *EncodedValueSet) WithBounds(start, end int) *EncodedValueSet {
	v.bounds = bounds{StartIndex: start, EndIndex: end, Bounded: true}
	return v
}

// AutoIncrementedValueSet describes the arithmetic progression
// v[i] = start + i*increment. No values are materialized; decoding yields a
// lazy sequence.
type AutoIncrementedValueSet struct {
	bounds
	Start     *StartValue
	Increment *Increment
}

func (*AutoIncrementedValueSet) isValueSet() {}

// NewAutoIncrementedValueSet creates an unbounded arithmetic chunk.
func NewAutoIncrementedValueSet(start *StartValue, inc *Increment) *AutoIncrementedValueSet {
	return &AutoIncrementedValueSet{Start: start, Increment: inc}
}

// WithBounds sets the explicit sub-range and returns the chunk.
func (v *AutoIncrementedValueSet) WithBounds(start, end int) *AutoIncrementedValueSet {
	v.bounds = bounds{StartIndex: start, EndIndex: end, Bounded: true}
	return v
}

// StartValue is the lower boundary of an interval or auto-incremented chunk.
type StartValue struct {
	Value Value
}

// EndValue is the upper boundary of an interval.
type EndValue struct {
	Value Value
}

// Increment is the step width of an auto-incremented chunk.
type Increment struct {
	Value Value
}

// AuditTrailEntrySet groups the audit history of a document.
type AuditTrailEntrySet struct {
	Entries []*AuditTrailEntry
}

// AuditTrailEntry records one change to the document.
type AuditTrailEntry struct {
	Timestamp string
	Author    *Author
	Software  *Software
	Action    AuditAction
	Reason    string
	Comment   string
	Diffs     []*Diff
}

// Diff records one changed element or attribute within an audit entry.
type Diff struct {
	Scope    DiffScope
	OldValue string
	NewValue string
}
