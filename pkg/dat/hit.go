package dat

import "fmt"

// Hit is a located match. Begin and End are byte offsets into the scanned
// text, End exclusive, so text[Begin:End] is the matched key.
type Hit[V any] struct {
	Begin int
	End   int
	Value V
}

// String formats the hit as "[begin:end]=value".
func (h Hit[V]) String() string {
	return fmt.Sprintf("[%d:%d]=%v", h.Begin, h.End, h.Value)
}
