package reactive

// IntSignal bundles the two halves of an int signal with arithmetic
// conveniences.
type IntSignal struct {
	read  ReadSignal[int]
	write WriteSignal[int]
}

// NewIntSignal creates an IntSignal with the given initial value.
func NewIntSignal(initial int) IntSignal {
	r, w := NewSignal(initial)
	return IntSignal{read: r, write: w}
}

// Get returns the current value, subscribing the current observer.
func (s IntSignal) Get() int { return s.read.Get() }

// Peek returns the current value without subscribing.
func (s IntSignal) Peek() int { return s.read.Peek() }

// Read returns the read half, for handing out as a capability.
func (s IntSignal) Read() ReadSignal[int] { return s.read }

// Set stores v.
func (s IntSignal) Set(v int) { s.write.Set(v) }

// Inc increments the value by 1.
func (s IntSignal) Inc() {
	s.write.Update(func(n int) int { return n + 1 })
}

// Dec decrements the value by 1.
func (s IntSignal) Dec() {
	s.write.Update(func(n int) int { return n - 1 })
}

// Add adds n to the value.
func (s IntSignal) Add(n int) {
	s.write.Update(func(v int) int { return v + n })
}

// TryAdd adds n to the value, returning false instead of panicking
// after disposal.
func (s IntSignal) TryAdd(n int) bool {
	return s.write.TryUpdate(func(v int) int { return v + n })
}

// BoolSignal bundles the two halves of a bool signal.
type BoolSignal struct {
	read  ReadSignal[bool]
	write WriteSignal[bool]
}

// NewBoolSignal creates a BoolSignal with the given initial value.
func NewBoolSignal(initial bool) BoolSignal {
	r, w := NewSignal(initial)
	return BoolSignal{read: r, write: w}
}

// Get returns the current value, subscribing the current observer.
func (s BoolSignal) Get() bool { return s.read.Get() }

// Read returns the read half.
func (s BoolSignal) Read() ReadSignal[bool] { return s.read }

// Set stores v.
func (s BoolSignal) Set(v bool) { s.write.Set(v) }

// Toggle flips the value.
func (s BoolSignal) Toggle() {
	s.write.Update(func(v bool) bool { return !v })
}
