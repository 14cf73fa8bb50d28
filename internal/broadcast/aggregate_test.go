package broadcast

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestFold_SumsSettledOutcomes(t *testing.T) {
	results := []Settled[Outcome]{
		{Value: Outcome{EmailSent: 2, SMSSent: 1}},
		{Value: Outcome{EmailSent: 3, SMSSent: 2}},
	}

	failed := map[string]int{}
	email, sms := Fold(results, failed)

	assert.Equal(t, 5, email)
	assert.Equal(t, 3, sms)
	assert.Empty(t, failed)
}

func TestFold_CountsFailureReasons(t *testing.T) {
	results := []Settled[Outcome]{
		{Value: Outcome{EmailSent: 1, Errors: []string{"RATE_LIMIT_EXCEEDED"}}},
		{Value: Outcome{SMSSent: 1, Errors: []string{"INVALID_EMAIL", "RATE_LIMIT_EXCEEDED"}}},
	}

	failed := map[string]int{}
	email, sms := Fold(results, failed)

	assert.Equal(t, 1, email)
	assert.Equal(t, 1, sms)
	assert.Equal(t, map[string]int{"RATE_LIMIT_EXCEEDED": 2, "INVALID_EMAIL": 1}, failed)
}

func TestFold_DropsUnsettled(t *testing.T) {
	results := []Settled[Outcome]{
		{Value: Outcome{EmailSent: 2, SMSSent: 1}},
		{Value: Outcome{EmailSent: 9, Errors: []string{"IGNORED"}}, Err: errors.New("task panicked")},
		{Value: Outcome{EmailSent: 1, SMSSent: 1}},
	}

	failed := map[string]int{}
	email, sms := Fold(results, failed)

	assert.Equal(t, 3, email)
	assert.Equal(t, 2, sms)
	assert.Empty(t, failed)
}

func TestFold_AccumulatesAcrossBatches(t *testing.T) {
	failed := map[string]int{}

	Fold([]Settled[Outcome]{{Value: Outcome{Errors: []string{"TIMEOUT"}}}}, failed)
	Fold([]Settled[Outcome]{
		{Value: Outcome{Errors: []string{"TIMEOUT"}}},
		{Value: Outcome{Errors: []string{"INVALID_PHONE"}}},
	}, failed)

	assert.Equal(t, 2, failed["TIMEOUT"])
	assert.Equal(t, 1, failed["INVALID_PHONE"])
}

func TestFold_Empty(t *testing.T) {
	email, sms := Fold(nil, map[string]int{})
	assert.Zero(t, email)
	assert.Zero(t, sms)
}

func TestGovernor(t *testing.T) {
	t.Run("limit", func(t *testing.T) {
		assert.False(t, limitReached(45, 50))
		assert.True(t, limitReached(50, 50))
		assert.True(t, limitReached(60, 50))
		assert.False(t, limitReached(1_000_000, 0), "zero ceiling means unbounded")
	})

	t.Run("progress", func(t *testing.T) {
		assert.False(t, progressDue(0, 100))
		assert.False(t, progressDue(285, 100))
		assert.True(t, progressDue(300, 100))
		assert.False(t, progressDue(300, 0))
	})
}

func TestSettle(t *testing.T) {
	o := settle([]attempt{
		{channel: "EMAIL"},
		{},
		{channel: "SMS", reason: "INVALID_PHONE"},
	})
	assert.NoError(t, o.Err)
	assert.Equal(t, Outcome{EmailSent: 1, Errors: []string{"INVALID_PHONE"}}, o.Value)

	o = settle([]attempt{{channel: "EMAIL"}, {channel: "SMS", err: errors.New("boom")}})
	assert.Error(t, o.Err)
}
