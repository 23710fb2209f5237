package io

const (
	HISTORY_DEFAULT_CAPACITY = 0x1000 // Default number of entries kept.
)

// History is a circular buffer keeping the most recent words pushed to it.
type History struct {
	Capacity int // Entries kept. Zero uses HISTORY_DEFAULT_CAPACITY.

	WriteIndex int
	Size       int
	Data       []uint16
}

// Push a word, discarding the oldest one if the history is full.
func (hist *History) Push(value uint16) {
	if hist.Data == nil {
		if hist.Capacity <= 0 {
			hist.Capacity = HISTORY_DEFAULT_CAPACITY
		}
		hist.Data = make([]uint16, hist.Capacity)
	}

	hist.Data[hist.WriteIndex] = value
	hist.WriteIndex++
	if hist.WriteIndex == len(hist.Data) {
		hist.WriteIndex = 0
	}
	if hist.Size < len(hist.Data) {
		hist.Size++
	}
}

// Len is the number of entries held.
func (hist *History) Len() int {
	return hist.Size
}

// Peek returns the most recent entry.
func (hist *History) Peek() (value uint16, ok bool) {
	if hist.Size == 0 {
		return
	}

	index := hist.WriteIndex - 1
	if index < 0 {
		index += len(hist.Data)
	}

	return hist.Data[index], true
}

// Last returns up to n of the most recent entries, oldest first.
func (hist *History) Last(n int) (values []uint16) {
	n = max(0, min(n, hist.Size))

	values = make([]uint16, n)
	start := hist.WriteIndex - n
	if start < 0 {
		start += len(hist.Data)
	}
	for i := range values {
		values[i] = hist.Data[(start+i)%len(hist.Data)]
	}

	return
}

// Reset empties the history.
func (hist *History) Reset() {
	hist.WriteIndex = 0
	hist.Size = 0
}
