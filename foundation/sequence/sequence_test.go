package sequence_test

import (
	"context"
	"sync"
	"testing"

	"github.com/dposlabs/blockchain/foundation/sequence"
)

// Success and failure markers.
const (
	success = "✓"
	failed  = "✗"
)

func TestSerialization(t *testing.T) {
	t.Log("Given the need to run jobs one at a time in order.")
	{
		t.Log("\tTest 0:\tWhen submitting jobs concurrently.")
		{
			q := sequence.New(32)
			defer q.Shutdown()

			var counter int
			var wg sync.WaitGroup

			for i := 0; i < 100; i++ {
				wg.Add(1)
				go func() {
					defer wg.Done()
					q.Do(context.Background(), func() error {
						counter++
						return nil
					})
				}()
			}
			wg.Wait()

			if counter != 100 {
				t.Fatalf("\t%s\tTest 0:\tShould run all 100 jobs without interleaving, got %d.", failed, counter)
			}
			t.Logf("\t%s\tTest 0:\tShould run all 100 jobs without interleaving.", success)
		}
	}
}

func TestPanicIsolation(t *testing.T) {
	t.Log("Given the need to survive a panicking job.")
	{
		t.Log("\tTest 0:\tWhen a job panics.")
		{
			q := sequence.New(4)
			defer q.Shutdown()

			err := q.Do(context.Background(), func() error {
				panic("boom")
			})
			if err == nil {
				t.Fatalf("\t%s\tTest 0:\tShould turn the panic into an error.", failed)
			}
			t.Logf("\t%s\tTest 0:\tShould turn the panic into an error.", success)

			if err := q.Do(context.Background(), func() error { return nil }); err != nil {
				t.Fatalf("\t%s\tTest 0:\tShould keep running later jobs: %v", failed, err)
			}
			t.Logf("\t%s\tTest 0:\tShould keep running later jobs.", success)
		}
	}
}
