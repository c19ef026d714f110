package delegates_test

import (
	"testing"

	"github.com/dposlabs/blockchain/foundation/blockchain/delegates"
	"github.com/dposlabs/blockchain/foundation/blockchain/genesis"
)

// Success and failure markers.
const (
	success = "\u2713"
	failed  = "\u2717"
)

func newRegistry(keys ...string) *delegates.Registry {
	gen := genesis.Genesis{}
	for _, pk := range keys {
		gen.Delegates = append(gen.Delegates, genesis.Delegate{Username: "delegate-" + pk, PublicKey: pk})
	}
	return delegates.NewRegistry(gen)
}

func TestCalcRound(t *testing.T) {
	type table struct {
		name   string
		height uint64
		count  int
		round  uint64
	}

	tt := []table{
		{name: "first height", height: 1, count: 101, round: 1},
		{name: "last of round one", height: 101, count: 101, round: 1},
		{name: "first of round two", height: 102, count: 101, round: 2},
		{name: "exact multiple", height: 202, count: 101, round: 2},
		{name: "small set", height: 7, count: 3, round: 3},
	}

	t.Log("Given the need to map block heights to rounds.")
	{
		for testID, tst := range tt {
			t.Logf("\tTest %d:\tWhen handling height %d with %d delegates.", testID, tst.height, tst.count)
			{
				f := func(t *testing.T) {
					round := delegates.CalcRound(tst.height, tst.count)
					if round != tst.round {
						t.Fatalf("\t%s\tTest %d:\tShould get round %d, got %d.", failed, testID, tst.round, round)
					}
					t.Logf("\t%s\tTest %d:\tShould get round %d.", success, testID, tst.round)
				}

				t.Run(tst.name, f)
			}
		}
	}
}

func TestGenerateDelegateList(t *testing.T) {
	t.Log("Given the need to produce a deterministic forging order.")
	{
		t.Log("\tTest 0:\tWhen shuffling the same round twice.")
		{
			reg := newRegistry("aa", "bb", "cc", "dd", "ee")

			list1 := reg.GenerateDelegateList(1)
			list2 := reg.GenerateDelegateList(1)

			if len(list1) != 5 {
				t.Fatalf("\t%s\tTest 0:\tShould keep all 5 delegates in the list, got %d.", failed, len(list1))
			}
			t.Logf("\t%s\tTest 0:\tShould keep all 5 delegates in the list.", success)

			for i := range list1 {
				if list1[i] != list2[i] {
					t.Fatalf("\t%s\tTest 0:\tShould produce the same order for the same round.", failed)
				}
			}
			t.Logf("\t%s\tTest 0:\tShould produce the same order for the same round.", success)

			seen := make(map[string]bool)
			for _, pk := range list1 {
				seen[pk] = true
			}
			if len(seen) != 5 {
				t.Fatalf("\t%s\tTest 0:\tShould keep the list a permutation, got %d unique keys.", failed, len(seen))
			}
			t.Logf("\t%s\tTest 0:\tShould keep the list a permutation.", success)
		}

		t.Log("\tTest 1:\tWhen checking the exact permutation for known rounds.")
		{
			reg := newRegistry("aa", "bb", "cc", "dd", "ee", "ff", "gg", "hh")

			want1 := []string{"dd", "gg", "cc", "aa", "ff", "hh", "bb", "ee"}
			list1 := reg.GenerateDelegateList(1)
			for i := range want1 {
				if list1[i] != want1[i] {
					t.Fatalf("\t%s\tTest 1:\tShould match the round 1 permutation, got %v.", failed, list1)
				}
			}
			t.Logf("\t%s\tTest 1:\tShould match the round 1 permutation.", success)

			want2 := []string{"cc", "dd", "bb", "gg", "ff", "aa", "ee", "hh"}
			list2 := reg.GenerateDelegateList(9)
			for i := range want2 {
				if list2[i] != want2[i] {
					t.Fatalf("\t%s\tTest 1:\tShould match the round 2 permutation, got %v.", failed, list2)
				}
			}
			t.Logf("\t%s\tTest 1:\tShould match the round 2 permutation.", success)
		}

		t.Log("\tTest 2:\tWhen shuffling two different rounds.")
		{
			reg := newRegistry("aa", "bb", "cc", "dd", "ee", "ff", "gg", "hh")

			list1 := reg.GenerateDelegateList(1)
			list2 := reg.GenerateDelegateList(uint64(len(list1)) + 1)

			same := true
			for i := range list1 {
				if list1[i] != list2[i] {
					same = false
					break
				}
			}
			if same {
				t.Fatalf("\t%s\tTest 2:\tShould produce a different order for a different round.", failed)
			}
			t.Logf("\t%s\tTest 2:\tShould produce a different order for a different round.", success)
		}
	}
}

func TestKeysSortedByVote(t *testing.T) {
	t.Log("Given the need to rank delegates by vote weight.")
	{
		t.Log("\tTest 0:\tWhen weights differ.")
		{
			reg := newRegistry("aa", "bb", "cc")
			reg.Cache(delegates.Delegate{PublicKey: "bb", Username: "delegate-bb", Vote: 50})
			reg.Cache(delegates.Delegate{PublicKey: "cc", Username: "delegate-cc", Vote: 100})

			keys := reg.KeysSortedByVote()
			want := []string{"cc", "bb", "aa"}
			for i := range want {
				if keys[i] != want[i] {
					t.Fatalf("\t%s\tTest 0:\tShould rank by vote weight, got %v.", failed, keys)
				}
			}
			t.Logf("\t%s\tTest 0:\tShould rank by vote weight.", success)
		}

		t.Log("\tTest 1:\tWhen weights tie.")
		{
			reg := newRegistry("zz", "aa", "mm")

			keys := reg.KeysSortedByVote()
			want := []string{"zz", "aa", "mm"}
			for i := range want {
				if keys[i] != want[i] {
					t.Fatalf("\t%s\tTest 1:\tShould keep registration order on ties, got %v.", failed, keys)
				}
			}
			t.Logf("\t%s\tTest 1:\tShould keep registration order on ties.", success)
		}
	}
}

func TestDeferredTasks(t *testing.T) {
	t.Log("Given the need to defer vote weight changes to the round boundary.")
	{
		t.Log("\tTest 0:\tWhen queueing balance and vote changes.")
		{
			reg := newRegistry("aa", "bb")

			reg.QueueBalanceChange([]string{"aa"}, 2*genesis.VoteScale)
			reg.QueueVoteChange(nil, []string{"bb"}, 3*genesis.VoteScale)

			if d, _ := reg.Delegate("aa"); d.Vote != 0 {
				t.Fatalf("\t%s\tTest 0:\tShould not change weights before the round ends.", failed)
			}
			t.Logf("\t%s\tTest 0:\tShould not change weights before the round ends.", success)

			if reg.PendingTasks() != 2 {
				t.Fatalf("\t%s\tTest 0:\tShould hold 2 pending tasks, got %d.", failed, reg.PendingTasks())
			}
			t.Logf("\t%s\tTest 0:\tShould hold 2 pending tasks.", success)

			reg.FinishRound()

			if d, _ := reg.Delegate("aa"); d.Vote != 2 {
				t.Fatalf("\t%s\tTest 0:\tShould credit aa with weight 2, got %v.", failed, d.Vote)
			}
			t.Logf("\t%s\tTest 0:\tShould credit aa with weight 2.", success)

			if d, _ := reg.Delegate("bb"); d.Vote != 3 {
				t.Fatalf("\t%s\tTest 0:\tShould credit bb with weight 3, got %v.", failed, d.Vote)
			}
			t.Logf("\t%s\tTest 0:\tShould credit bb with weight 3.", success)

			if reg.PendingTasks() != 0 {
				t.Fatalf("\t%s\tTest 0:\tShould drain the task queue.", failed)
			}
			t.Logf("\t%s\tTest 0:\tShould drain the task queue.", success)
		}

		t.Log("\tTest 1:\tWhen snapshotted values change after queueing.")
		{
			reg := newRegistry("aa")

			votes := []string{"aa"}
			reg.QueueBalanceChange(votes, genesis.VoteScale)
			votes[0] = "bb"

			reg.FinishRound()

			if d, _ := reg.Delegate("aa"); d.Vote != 1 {
				t.Fatalf("\t%s\tTest 1:\tShould use the values snapshotted at enqueue time.", failed)
			}
			t.Logf("\t%s\tTest 1:\tShould use the values snapshotted at enqueue time.", success)
		}
	}
}

func TestValidateBlockSlot(t *testing.T) {
	t.Log("Given the need to check slot ownership for a block.")
	{
		t.Log("\tTest 0:\tWhen checking the assigned delegate against an intruder.")
		{
			reg := newRegistry("aa", "bb", "cc")

			list := reg.GenerateDelegateList(1)
			timestamp := int64(10) // Slot 1.
			owner := list[1%len(list)]

			if !reg.ValidateBlockSlot(1, timestamp, owner) {
				t.Fatalf("\t%s\tTest 0:\tShould accept the delegate assigned to the slot.", failed)
			}
			t.Logf("\t%s\tTest 0:\tShould accept the delegate assigned to the slot.", success)

			var intruder string
			for _, pk := range list {
				if pk != owner {
					intruder = pk
					break
				}
			}
			if reg.ValidateBlockSlot(1, timestamp, intruder) {
				t.Fatalf("\t%s\tTest 0:\tShould reject a delegate outside its slot.", failed)
			}
			t.Logf("\t%s\tTest 0:\tShould reject a delegate outside its slot.", success)
		}

		t.Log("\tTest 1:\tWhen the registry has no delegates.")
		{
			reg := newRegistry()

			if reg.ValidateBlockSlot(5, 50, "aa") {
				t.Fatalf("\t%s\tTest 1:\tShould reject every generator on an empty registry.", failed)
			}
			t.Logf("\t%s\tTest 1:\tShould reject every generator on an empty registry.", success)

			if list := reg.GenerateDelegateList(5); len(list) != 0 {
				t.Fatalf("\t%s\tTest 1:\tShould produce an empty forging list, got %v.", failed, list)
			}
			t.Logf("\t%s\tTest 1:\tShould produce an empty forging list.", success)
		}
	}
}
