package transaction

import (
	"strings"
	"sync"

	"github.com/dposlabs/blockchain/foundation/blockchain/accounts"
	"github.com/dposlabs/blockchain/foundation/blockchain/delegates"
)

// maxVotesPerTransaction caps the vote list carried by a single transaction.
const maxVotesPerTransaction = 33

// voteHandler implements vote set changes. Each asset entry is a delegate
// public key prefixed with "+" to add the vote or "-" to remove it.
type voteHandler struct {
	ledger   *accounts.Ledger
	registry *delegates.Registry
	fee      int64

	mu    sync.Mutex
	prior map[string][]string // Vote set before Apply, keyed by tx id, consumed by Undo.
}

func newVoteHandler(ledger *accounts.Ledger, registry *delegates.Registry, fee int64) *voteHandler {
	return &voteHandler{
		ledger:   ledger,
		registry: registry,
		fee:      fee,
		prior:    make(map[string][]string),
	}
}

func (h *voteHandler) Fee(tx *Transaction) int64 {
	return h.fee
}

func (h *voteHandler) Verify(tx *Transaction, sender accounts.Account) error {
	if tx.Amount != 0 {
		return NewValidationError(tx.ID, "vote cannot carry an amount")
	}
	if tx.RecipientID != tx.SenderID {
		return NewValidationError(tx.ID, "vote recipient must be the sender")
	}
	if len(tx.Asset.Votes) == 0 {
		return NewValidationError(tx.ID, "vote asset is empty")
	}
	if len(tx.Asset.Votes) > maxVotesPerTransaction {
		return NewValidationError(tx.ID, "vote asset exceeds %d entries", maxVotesPerTransaction)
	}

	for _, vote := range tx.Asset.Votes {
		if len(vote) < 2 || (vote[0] != '+' && vote[0] != '-') {
			return NewValidationError(tx.ID, "malformed vote entry %q", vote)
		}

		pk := vote[1:]
		if _, exists := h.registry.Delegate(pk); !exists {
			return NewValidationError(tx.ID, "vote names unknown delegate %q", pk)
		}

		switch vote[0] {
		case '+':
			if sender.VotesFor(pk) {
				return NewValidationError(tx.ID, "account already votes for delegate %q", pk)
			}
		case '-':
			if !sender.VotesFor(pk) {
				return NewValidationError(tx.ID, "account does not vote for delegate %q", pk)
			}
		}
	}

	return nil
}

func (h *voteHandler) Normalize(tx *Transaction) error {
	if len(tx.Asset.Votes) == 0 {
		return NewValidationError(tx.ID, "vote asset is empty")
	}
	for i, vote := range tx.Asset.Votes {
		tx.Asset.Votes[i] = strings.TrimSpace(vote)
	}
	return nil
}

func (h *voteHandler) ApplyUnconfirmed(tx *Transaction, sender accounts.Account) error {
	return nil
}

func (h *voteHandler) UndoUnconfirmed(tx *Transaction, sender accounts.Account) error {
	return nil
}

// Apply rewrites the account's vote set and queues the weight transfer for
// the round boundary. The prior set is retained so a rollback can restore it
// exactly.
func (h *voteHandler) Apply(tx *Transaction, sender accounts.Account) error {
	prior := sender.CopyDelegates()

	next := applyVotes(prior, tx.Asset.Votes)
	sender.Delegates = next
	h.ledger.Save(sender)

	h.registry.QueueVoteChange(prior, next, sender.Balance)

	h.mu.Lock()
	h.prior[tx.ID] = prior
	h.mu.Unlock()

	return nil
}

func (h *voteHandler) Undo(tx *Transaction, sender accounts.Account) error {
	h.mu.Lock()
	prior, exists := h.prior[tx.ID]
	delete(h.prior, tx.ID)
	h.mu.Unlock()

	if !exists {
		// Reconstruct by inverting the asset when the snapshot is gone.
		prior = applyVotes(sender.CopyDelegates(), invertVotes(tx.Asset.Votes))
	}

	current := sender.CopyDelegates()
	sender.Delegates = prior
	h.ledger.Save(sender)

	h.registry.QueueVoteChange(current, prior, sender.Balance)
	return nil
}

// applyVotes returns a new vote set with the "+" and "-" entries folded in.
func applyVotes(current []string, votes []string) []string {
	next := make([]string, 0, len(current))
	removed := make(map[string]bool)
	for _, vote := range votes {
		if vote[0] == '-' {
			removed[vote[1:]] = true
		}
	}

	for _, pk := range current {
		if !removed[pk] {
			next = append(next, pk)
		}
	}
	for _, vote := range votes {
		if vote[0] == '+' {
			next = append(next, vote[1:])
		}
	}

	return next
}

func invertVotes(votes []string) []string {
	inverted := make([]string, len(votes))
	for i, vote := range votes {
		if vote[0] == '+' {
			inverted[i] = "-" + vote[1:]
			continue
		}
		inverted[i] = "+" + vote[1:]
	}
	return inverted
}
