package fetcher

// Image is a fetched remote image, normalized so that assemblers can embed
// it directly: Data is always encoded JPEG or PNG.
type Image struct {
	SourceURL string
	Data      []byte
	Width     int
	Height    int
	MimeType  string
}

// Outcome is the per-URL result of a fetch. Exactly one of Image or Err is
// set; a failed fetch is a value, never a propagated error, so one bad URL
// cannot abort a batch.
type Outcome struct {
	Index     int
	SourceURL string
	Image     *Image
	Err       error
}

func (o Outcome) OK() bool {
	return o.Err == nil && o.Image != nil
}

// Set is the ordered collection of outcomes for one conversion request.
// Index i always holds the outcome for the i-th requested URL, regardless
// of fetch completion order.
type Set []Outcome

func (s Set) SuccessCount() int {
	n := 0
	for _, o := range s {
		if o.OK() {
			n++
		}
	}
	return n
}

func (s Set) FailureCount() int {
	return len(s) - s.SuccessCount()
}

// Successes returns the fetched images in set order.
func (s Set) Successes() []*Image {
	imgs := make([]*Image, 0, len(s))
	for _, o := range s {
		if o.OK() {
			imgs = append(imgs, o.Image)
		}
	}
	return imgs
}
