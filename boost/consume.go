package boost

// Consume drains it, discarding every value, for callers whose mapping
// function is run purely for its side effects. It stops and returns the
// first error reported by any slot, mirroring how an unhandled exception in
// the original would terminate `async for _ in iterable: pass`.
func Consume[R any](it *ResultIterator[R]) error {
	for it.Next() {
		if err := it.Err(); err != nil {
			return err
		}
	}
	return it.Err()
}
