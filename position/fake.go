package position

// FixedFeedback is a deterministic FeedbackReader used in tests: it always
// returns the next value from Values, cycling once exhausted.
type FixedFeedback struct {
	Values []int
	idx    int
}

// Read implements FeedbackReader.
func (f *FixedFeedback) Read() (int, error) {
	if len(f.Values) == 0 {
		return 0, nil
	}
	v := f.Values[f.idx%len(f.Values)]
	f.idx++
	return v, nil
}
