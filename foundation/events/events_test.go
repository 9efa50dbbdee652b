package events_test

import (
	"testing"

	"github.com/ardanlabs/powledger/foundation/events"
)

// Success and failure markers.
const (
	success = "\u2713"
	failed  = "\u2717"
)

func Test_Events(t *testing.T) {
	t.Log("Given the need to fan out ledger events.")
	{
		evts := events.New()

		ch1 := evts.Acquire("1")
		ch2 := evts.Acquire("2")

		if evts.Acquire("1") != ch1 {
			t.Fatalf("\t%s\tShould get back the same channel for the same id.", failed)
		}
		t.Logf("\t%s\tShould get back the same channel for the same id.", success)

		first := evts.Send("block mined")
		second := evts.Send("tx submitted")

		if first.ID == "" || first.ID == second.ID || second.Seq != first.Seq+1 {
			t.Fatalf("\t%s\tShould stamp every event with a unique id and the next sequence: %+v %+v", failed, first, second)
		}
		t.Logf("\t%s\tShould stamp every event with a unique id and the next sequence.", success)

		for i, ch := range []<-chan events.Event{ch1, ch2} {
			if e := <-ch; e != first {
				t.Fatalf("\t%s\tShould receive the first event on channel %d, got %+v.", failed, i, e)
			}
			if e := <-ch; e.Message != "tx submitted" {
				t.Fatalf("\t%s\tShould receive events in order on channel %d, got %+v.", failed, i, e)
			}
		}
		t.Logf("\t%s\tShould receive every event in order on every channel.", success)

		if err := evts.Release("1"); err != nil {
			t.Fatalf("\t%s\tShould be able to release a channel: %s", failed, err)
		}
		if _, open := <-ch1; open {
			t.Fatalf("\t%s\tShould close a released channel.", failed)
		}
		if err := evts.Release("1"); err == nil {
			t.Fatalf("\t%s\tShould not be able to release a channel twice.", failed)
		}
		t.Logf("\t%s\tShould be able to release a channel once.", success)

		evts.Shutdown()
		if _, open := <-ch2; open {
			t.Fatalf("\t%s\tShould close every channel on shutdown.", failed)
		}
		if evts.Count() != 0 {
			t.Fatalf("\t%s\tShould have no receivers after shutdown.", failed)
		}
		t.Logf("\t%s\tShould close every channel on shutdown.", success)
	}
}

func Test_SendDoesNotBlock(t *testing.T) {
	evts := events.New()
	evts.Acquire("slow")

	const sends = 1000
	for i := 0; i < sends; i++ {
		evts.Send("event")
	}

	// The receiver buffer holds the first events, the rest are dropped.
	if got := evts.Dropped(); got == 0 || got >= sends {
		t.Fatalf("Should drop the events a slow receiver can't hold, got %d.", got)
	}
}
