package animl

import (
	"encoding/binary"
	"fmt"
	"math"
	"sort"
)

// Sequence is an ordered, restartable view over a series' decoded values.
// At may be called in any order and repeatedly; results are deterministic,
// so re-reading element 1000 after a restart reproduces the same value.
// Auto-incremented chunks are never materialized: their sequence computes
// v[i] = start + i*increment on demand.
type Sequence interface {
	Len() int
	At(i int) Value
}

// DecodeSeries decodes every value-set chunk of s, checks that the chunks
// jointly cover the logical index space [0, set.Length) without gaps or
// overlaps, and returns the assembled sequence.
//
// Decoding is pure and reads only the immutable graph, so distinct series
// may be decoded in parallel.
func DecodeSeries(set *SeriesSet, s *Series) (Sequence, error) {
	path := fmt.Sprintf("SeriesSet(%s).Series(%s)", set.Name, s.SeriesID)
	if len(s.ValueSets) == 0 {
		return nil, &CardinalityError{Path: path, Field: "value set", Message: "series has no value set"}
	}

	type part struct {
		start, end int
		seq        Sequence
	}
	parts := make([]part, 0, len(s.ValueSets))

	for i, vs := range s.ValueSets {
		chunkPath := fmt.Sprintf("%s.ValueSet[%d]", path, i)
		seq, err := decodeChunk(chunkPath, s.SeriesType, vs, set.Length)
		if err != nil {
			return nil, err
		}
		start, end, bounded := vs.Bounds()
		if !bounded {
			start, end = 0, seq.Len()-1
		} else if span := end - start + 1; span != seq.Len() {
			return nil, &RangeCoverageError{
				Path:    chunkPath,
				Message: fmt.Sprintf("declared range %d..%d holds %d values, chunk decodes to %d", start, end, span, seq.Len()),
			}
		}
		if end >= set.Length {
			return nil, &RangeCoverageError{
				Path:    chunkPath,
				Message: fmt.Sprintf("range %d..%d exceeds declared length %d", start, end, set.Length),
			}
		}
		parts = append(parts, part{start: start, end: end, seq: seq})
	}

	// Positions not covered by any chunk are not-yet-supplied, which is a
	// defect for a complete series: the union must cover [0, Length)
	// exactly once.
	sort.Slice(parts, func(i, j int) bool { return parts[i].start < parts[j].start })
	cursor := 0
	for _, p := range parts {
		switch {
		case p.start < cursor:
			return nil, &RangeCoverageError{Path: path, Message: fmt.Sprintf("value sets overlap at index %d", p.start)}
		case p.start > cursor:
			return nil, &RangeCoverageError{Path: path, Message: fmt.Sprintf("value sets leave a gap at index %d", cursor)}
		}
		cursor = p.end + 1
	}
	if cursor != set.Length {
		return nil, &RangeCoverageError{Path: path, Message: fmt.Sprintf("value sets leave a gap at index %d", cursor)}
	}

	if len(parts) == 1 {
		return parts[0].seq, nil
	}
	st := &stitchedSequence{length: set.Length}
	for _, p := range parts {
		st.parts = append(st.parts, stitchPart{start: p.start, seq: p.seq})
	}
	return st, nil
}

// Decode decodes the series with the given id within the set.
func (set *SeriesSet) Decode(seriesID string) (Sequence, error) {
	for _, s := range set.Series {
		if s.SeriesID == seriesID {
			return DecodeSeries(set, s)
		}
	}
	return nil, &DanglingReferenceError{Path: fmt.Sprintf("SeriesSet(%s)", set.Name), Kind: "seriesID", ID: seriesID}
}

// decodeChunk decodes one value-set chunk into a sequence typed per the
// series type. declaredLength is the enclosing set's length, used to size
// unbounded auto-incremented chunks.
func decodeChunk(path string, t SeriesType, vs ValueSet, declaredLength int) (Sequence, error) {
	switch chunk := vs.(type) {
	case *IndividualValueSet:
		return decodeIndividual(path, t, chunk)
	case *EncodedValueSet:
		return decodeEncoded(path, t, chunk)
	case *AutoIncrementedValueSet:
		return decodeAutoIncremented(path, t, chunk, declaredLength)
	}
	return nil, &InvalidValueError{Path: path, Field: "value set", Got: fmt.Sprintf("%T", vs), Want: "known value set variant"}
}

func decodeIndividual(path string, t SeriesType, chunk *IndividualValueSet) (Sequence, error) {
	out := make(sliceSequence, 0, len(chunk.Values))
	want := t.ValueTag()
	for i, raw := range chunk.Values {
		if raw.Tag != want {
			return nil, &InvalidValueError{
				Path:  fmt.Sprintf("%s[%d]", path, i),
				Field: "value",
				Got:   raw.Tag,
				Want:  want,
			}
		}
		v, err := parseValue(fmt.Sprintf("%s[%d]", path, i), t, raw.Text)
		if err != nil {
			return nil, err
		}
		out = append(out, v)
	}
	return out, nil
}

func decodeEncoded(path string, t SeriesType, chunk *EncodedValueSet) (Sequence, error) {
	width := t.EncodedWidth()
	if width == 0 {
		return nil, &MalformedEncodingError{Path: path, Message: fmt.Sprintf("series type %s cannot be binary encoded", t)}
	}
	if len(chunk.Data)%width != 0 {
		return nil, &MalformedEncodingError{
			Path:    path,
			Message: fmt.Sprintf("buffer length %d is not a multiple of element width %d", len(chunk.Data), width),
		}
	}
	return &encodedSequence{typ: t, width: width, data: chunk.Data}, nil
}

func decodeAutoIncremented(path string, t SeriesType, chunk *AutoIncrementedValueSet, declaredLength int) (Sequence, error) {
	count := declaredLength
	if start, end, ok := chunk.Bounds(); ok {
		count = end - start + 1
	}
	switch t {
	case SeriesInt32, SeriesInt64:
		start, err := intBoundary(path+".StartValue", chunk.Start.Value)
		if err != nil {
			return nil, err
		}
		inc, err := intBoundary(path+".Increment", chunk.Increment.Value)
		if err != nil {
			return nil, err
		}
		return &arithmeticSequence{typ: t, startInt: start, incInt: inc, count: count}, nil

	case SeriesFloat32, SeriesFloat64:
		// Integer boundary values are acceptable for a float series.
		return &arithmeticSequence{
			typ:       t,
			startReal: chunk.Start.Value.Float(),
			incReal:   chunk.Increment.Value.Float(),
			count:     count,
		}, nil
	}
	return nil, &InvalidValueError{Path: path, Field: "seriesType", Got: string(t), Want: "numeric series type"}
}

// intBoundary narrows a boundary value to an integer progression term.
func intBoundary(path string, v Value) (int64, error) {
	switch v.Type {
	case SeriesInt32, SeriesInt64:
		return v.Int, nil
	}
	return 0, &InvalidValueError{Path: path, Field: "value", Got: string(v.Type), Want: "integer boundary for integer series"}
}

// sliceSequence is a materialized sequence.
type sliceSequence []Value

func (s sliceSequence) Len() int       { return len(s) }
func (s sliceSequence) At(i int) Value { return s[i] }

// encodedSequence reinterprets a little-endian binary buffer as fixed-width
// elements on demand, so large buffers are never copied element-wise up
// front.
type encodedSequence struct {
	typ   SeriesType
	width int
	data  []byte
}

func (s *encodedSequence) Len() int { return len(s.data) / s.width }

func (s *encodedSequence) At(i int) Value {
	off := i * s.width
	switch s.typ {
	case SeriesInt32:
		return IntValue(s.typ, int64(int32(binary.LittleEndian.Uint32(s.data[off:]))))
	case SeriesInt64:
		return IntValue(s.typ, int64(binary.LittleEndian.Uint64(s.data[off:])))
	case SeriesFloat32:
		return FloatValue(s.typ, float64(math.Float32frombits(binary.LittleEndian.Uint32(s.data[off:]))))
	case SeriesFloat64:
		return FloatValue(s.typ, math.Float64frombits(binary.LittleEndian.Uint64(s.data[off:])))
	}
	return Value{}
}

// arithmeticSequence is the lazy form of an auto-incremented chunk.
type arithmeticSequence struct {
	typ      SeriesType
	startInt int64
	incInt   int64

	startReal float64
	incReal   float64

	count int
}

func (s *arithmeticSequence) Len() int { return s.count }

func (s *arithmeticSequence) At(i int) Value {
	switch s.typ {
	case SeriesInt32, SeriesInt64:
		return IntValue(s.typ, s.startInt+int64(i)*s.incInt)
	}
	return FloatValue(s.typ, s.startReal+float64(i)*s.incReal)
}

// stitchedSequence presents multiple sub-range chunks as one contiguous
// sequence. Parts are sorted by start and validated gap-free before
// construction.
type stitchPart struct {
	start int
	seq   Sequence
}

type stitchedSequence struct {
	parts  []stitchPart
	length int
}

func (s *stitchedSequence) Len() int { return s.length }

func (s *stitchedSequence) At(i int) Value {
	// Binary search for the part containing i.
	lo, hi := 0, len(s.parts)-1
	for lo < hi {
		mid := (lo + hi + 1) / 2
		if s.parts[mid].start <= i {
			lo = mid
		} else {
			hi = mid - 1
		}
	}
	p := s.parts[lo]
	return p.seq.At(i - p.start)
}

// Materialize copies a sequence into a slice. Intended for small series and
// tests; large encoded or auto-incremented series should be consumed
// element-wise through At.
func Materialize(seq Sequence) []Value {
	out := make([]Value, seq.Len())
	for i := range out {
		out[i] = seq.At(i)
	}
	return out
}
