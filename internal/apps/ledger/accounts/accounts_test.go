package accounts

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/roach88/redux/internal/canon"
)

func TestEnabling(t *testing.T) {
	s := NewState()
	s.Balances["alice"] = 50

	tests := []struct {
		name   string
		action Action
		want   bool
	}{
		{"open new", Open{Account: "bob"}, true},
		{"open existing", Open{Account: "alice"}, false},
		{"open unnamed", Open{}, false},
		{"deposit", Deposit{Account: "alice", Amount: 1}, true},
		{"deposit zero", Deposit{Account: "alice"}, false},
		{"deposit closed", Deposit{Account: "bob", Amount: 1}, false},
		{"withdraw covered", Withdraw{Account: "alice", Amount: 50}, true},
		{"withdraw overdraft", Withdraw{Account: "alice", Amount: 51}, false},
		{"withdraw closed", Withdraw{Account: "bob", Amount: 1}, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.action.IsEnabled(s, 0))
		})
	}
}

func TestApply(t *testing.T) {
	var s State

	_, changed := Apply(&s, Open{Account: "alice"})
	assert.False(t, changed)
	assert.True(t, s.Has("alice"))

	c, changed := Apply(&s, Deposit{Account: "alice", Amount: 30})
	assert.True(t, changed)
	assert.Equal(t, Change{Account: "alice", Balance: 30}, c)

	c, _ = Apply(&s, Withdraw{Account: "alice", Amount: 12})
	assert.Equal(t, Change{Account: "alice", Balance: 18}, c)

	assert.Equal(t, canon.Object{"alice": canon.Int(18)}, s.Value())
}

func TestClone(t *testing.T) {
	s := NewState()
	s.Balances["alice"] = 1

	c := s.Clone()
	c.Balances["alice"] = 2

	assert.Equal(t, int64(1), s.Balances["alice"])
}

func TestFields(t *testing.T) {
	assert.Equal(t, "Withdraw", Withdraw{}.Kind())
	assert.Equal(t,
		canon.Object{"account": canon.String("a"), "amount": canon.Int(3)},
		Deposit{Account: "a", Amount: 3}.Fields())
}
