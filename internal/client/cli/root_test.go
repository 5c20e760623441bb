package cli

import (
	"testing"

	"github.com/dmitrijs2005/expensekeeper/internal/client/api"
	"github.com/stretchr/testify/assert"
)

func TestParseIDArg(t *testing.T) {
	tests := []struct {
		name string
		args []string
		want int64
		ok   bool
	}{
		{"valid id", []string{"42"}, 42, true},
		{"negative placeholder id", []string{"-1"}, -1, true},
		{"missing argument", nil, 0, false},
		{"not a number", []string{"abc"}, 0, false},
		{"zero", []string{"0"}, 0, false},
	}

	for _, tc := range tests {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			got, ok := parseIDArg(tc.args, "delete")
			assert.Equal(t, tc.ok, ok)
			if ok {
				assert.Equal(t, tc.want, got)
			}
		})
	}
}

func TestFormatExpense(t *testing.T) {
	url := "https://signed/a"

	assert.Equal(t, "#1  Lunch  12", formatExpense(api.Expense{ID: 1, Title: "Lunch", Amount: 12}))
	assert.Equal(t, "#-1  Coffee  5  (saving...)", formatExpense(api.Expense{ID: -1, Title: "Coffee", Amount: 5}))
	assert.Equal(t, "#2  Taxi  20  [receipt]", formatExpense(api.Expense{ID: 2, Title: "Taxi", Amount: 20, FileURL: &url}))
}

func TestRecordKey(t *testing.T) {
	assert.Equal(t, "expense:42", string(RecordKey(42)))
}
