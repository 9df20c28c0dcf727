package store

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/mmeshcher/bankop-client/internal/model"
)

func TestReduce_BalancesReplaced(t *testing.T) {
	s := Initial()
	s = Reduce(s, SetOpCoins(100))
	s = Reduce(s, SetBRLCoins(20))
	s = Reduce(s, SetOpCoins(50))
	s = Reduce(s, SetOpCoinsToConvert(5))

	assert.Equal(t, model.Balance{OpCoins: 50, BRLCoins: 20, OpCoinsToConvert: 5}, s.Balance)
}

func TestReduce_Transactions(t *testing.T) {
	s := Initial()
	s = Reduce(s, SetTransactions{{ID: "1"}, {ID: "2"}})
	s = Reduce(s, PrependTransactions{{ID: "3"}})

	ids := make([]string, 0, len(s.Transactions))
	for _, tx := range s.Transactions {
		ids = append(ids, tx.ID)
	}
	assert.Equal(t, []string{"3", "1", "2"}, ids)

	s = Reduce(s, SetTransactions{{ID: "9"}})
	assert.Len(t, s.Transactions, 1)

	s = Reduce(s, ResetTransactions{})
	assert.Empty(t, s.Transactions)
}

func TestReduce_DoesNotMutateInput(t *testing.T) {
	before := Reduce(Initial(), SetTransactions{{ID: "1"}})
	_ = Reduce(before, PrependTransactions{{ID: "2"}})

	assert.Len(t, before.Transactions, 1)
	assert.Equal(t, "1", before.Transactions[0].ID)
}

func TestReduce_Profile(t *testing.T) {
	s := Initial()
	assert.Equal(t, model.ProfileNone, s.Profile)

	s = Reduce(s, SetProfile(model.ProfileModerate))
	assert.Equal(t, model.ProfileModerate, s.Profile)

	s = Reduce(s, ResetProfile{})
	assert.Equal(t, model.ProfileNone, s.Profile)
}

func TestStore_DispatchNotifiesSubscribers(t *testing.T) {
	st := New()

	var seen []State
	st.Subscribe(func(s State) { seen = append(seen, s) })

	st.Dispatch(SetOpCoins(10), SetBRLCoins(2))

	assert.Len(t, seen, 1)
	assert.Equal(t, 10.0, seen[0].Balance.OpCoins)
	assert.Equal(t, 2.0, st.State().Balance.BRLCoins)
}

func TestStore_StateIsCopy(t *testing.T) {
	st := New()
	st.Dispatch(SetTransactions{{ID: "1"}})

	snap := st.State()
	snap.Transactions[0].ID = "changed"

	assert.Equal(t, "1", st.State().Transactions[0].ID)
}
