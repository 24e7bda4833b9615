package object

// deadObjectCounter is shared by every dead object synthesized for a single
// document so /DeadObjectCount reflects how many distinct unresolved
// references that document has papered over, not a global process count.
type deadObjectCounter struct{ n int }

// NewDeadObjectFactory returns a function that synthesizes a "dead object"
// placeholder dictionary each time a reference cannot be resolved,
// keeping the graph connected instead of failing the whole parse. The
// factory threads a running count into /DeadObjectCount on every call.
func NewDeadObjectFactory() func() *Dict {
	c := &deadObjectCounter{}
	return func() *Dict {
		c.n++
		d := NewDict()
		d.Set("DeadObjectCount", Integer(c.n))
		return d
	}
}
