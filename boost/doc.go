// Package boost implements a boosted concurrent executor: a runtime that
// bounds the number of in-flight asynchronous tasks to a configured
// concurrency C, and redistributes any spare capacity among the currently
// active pipeline stages so upstream stages run ahead of a momentarily slow
// downstream consumer.
//
// A caller constructs an Executor with Run or NewExecutor, registers one or
// more mapping stages with MapOrdered/MapUnordered, and iterates the
// outermost stage's ResultIterator. Stages compose: the upstream of a
// mapping stage can be a plain Iterator, an EagerSource wrapping a lazy
// async source, or another stage's AsSource().
//
//	err := boost.Run(ctx, 4, func(ctx context.Context, e *boost.Executor) error {
//		squares := boost.MapOrdered(e, square, boost.FromSlice([]int{1, 2, 3, 4}))
//		it := squares.Iterate(ctx)
//		for it.Next() {
//			if err := it.Err(); err != nil {
//				return err
//			}
//			fmt.Println(it.Value())
//		}
//		return nil
//	})
package boost
