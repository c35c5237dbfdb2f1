package model

// Stride is one gait cycle of one side: the half-open sample window
// [Start, End) with the angle values and activity labels it spans.
type Stride struct {
	Side       Side
	Start      int
	End        int
	Values     []float64
	Activities []Activity
}

// Len returns the stride length in samples.
func (s Stride) Len() int { return s.End - s.Start }

// FinalLabel is the stride-level label: an activity name such as "w2w", or a
// transition such as "w2ra" when the stride crosses activities.
type FinalLabel string

// ResampledStride is a stride normalized to a fixed sample count.
type ResampledStride struct {
	Joint  Joint
	Label  FinalLabel
	Start  int
	End    int
	Values []float64
}

// CorpusLabel is one label row of the flat corpus.
type CorpusLabel struct {
	Subject string
	Joint   Joint
	Label   FinalLabel
}

// Corpus is the flat stride corpus: Data and Labels are parallel arrays.
type Corpus struct {
	Data   [][]float64
	Labels []CorpusLabel
}

// Append adds one stride row.
func (c *Corpus) Append(label CorpusLabel, values []float64) {
	c.Data = append(c.Data, values)
	c.Labels = append(c.Labels, label)
}

// Merge appends all rows of other.
func (c *Corpus) Merge(other Corpus) {
	c.Data = append(c.Data, other.Data...)
	c.Labels = append(c.Labels, other.Labels...)
}

// Len returns the number of rows.
func (c Corpus) Len() int { return len(c.Data) }
