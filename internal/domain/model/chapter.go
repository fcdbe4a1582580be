package model

// Significance classifies how important a chapter is to the video's topic.
type Significance string

const (
	SignificanceVeryHigh Significance = "very_significant"
	SignificanceHigh     Significance = "significant"
	SignificanceLow      Significance = "insignificant"
	SignificanceOffTopic Significance = "out_of_topic"
)

func (s Significance) IsValid() bool {
	switch s {
	case SignificanceVeryHigh, SignificanceHigh, SignificanceLow, SignificanceOffTopic:
		return true
	default:
		return false
	}
}

func (s Significance) String() string {
	return string(s)
}

// Chapter is a single segment of a video's chapter breakdown.
// Start and End are offsets from the beginning of the video in seconds.
type Chapter struct {
	Start        float64      `json:"start"`
	End          float64      `json:"end"`
	Significance Significance `json:"significance"`
	Chapter      string       `json:"chapter"`
	Summary      string       `json:"summary"`
}

// Validate checks structural soundness of a chapter.
func (c Chapter) Validate() error {
	if c.Start < 0 {
		return ErrInvalidChapterRange
	}
	if c.End < c.Start {
		return ErrInvalidChapterRange
	}
	if !c.Significance.IsValid() {
		return ErrInvalidSignificance
	}
	if c.Chapter == "" {
		return ErrEmptyChapterTitle
	}
	return nil
}
