package settlement

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"math/rand"
	"sync/atomic"
	"testing"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"github.com/tripsplit/tripsplit-backend/logger"
	"github.com/tripsplit/tripsplit-backend/types"
)

func init() {
	logger.IsTest = true
}

// rateConverter converts with fixed rates to PLN and fails for unknown codes.
func rateConverter(rates map[string]string) Converter {
	return ConverterFunc(func(_ context.Context, amount decimal.Decimal, from string) (decimal.Decimal, error) {
		if from == "PLN" {
			return amount, nil
		}
		r, ok := rates[from]
		if !ok {
			return decimal.Zero, fmt.Errorf("no rate for %s", from)
		}
		return amount.Mul(decimal.RequireFromString(r)), nil
	})
}

type MockConverter struct {
	mock.Mock
}

func (m *MockConverter) Convert(ctx context.Context, amount decimal.Decimal, from string) (decimal.Decimal, error) {
	args := m.Called(ctx, amount, from)
	return args.Get(0).(decimal.Decimal), args.Error(1)
}

func dec(s string) decimal.Decimal {
	return decimal.RequireFromString(s)
}

func amt(s string) *decimal.Decimal {
	d := dec(s)
	return &d
}

func pid(id int64) *int64 {
	return &id
}

func person(id int64, name string) types.Participant {
	return types.Participant{ID: id, Name: name, Surname: "Nowak"}
}

func expense(id int64, owner *int64, amount, currency string) types.Expense {
	return types.Expense{ID: id, ParticipantID: owner, Amount: amt(amount), Currency: currency}
}

func newTestCalculator(conv Converter) *Calculator {
	resetMetricsForTesting()
	return NewCalculator(conv)
}

func assertDecimal(t *testing.T, want string, got decimal.Decimal) {
	t.Helper()
	assert.Truef(t, dec(want).Equal(got), "want %s, got %s", want, got.String())
}

func TestCalculate_TwoParticipantsOneExpense(t *testing.T) {
	calc := newTestCalculator(rateConverter(nil))

	res, err := calc.Calculate(context.Background(), Input{
		Participants: []types.Participant{person(1, "Anna"), person(2, "Bartek")},
		Expenses:     []types.Expense{expense(10, pid(1), "100", "PLN")},
	})
	require.NoError(t, err)

	assertDecimal(t, "100", res.TotalExpenses)
	require.Len(t, res.PaymentSummary, 1)
	assert.Equal(t, "Bartek Nowak", res.PaymentSummary[0].From)
	assert.Equal(t, "Anna Nowak", res.PaymentSummary[0].To)
	assertDecimal(t, "50", res.PaymentSummary[0].Amount)
}

func TestCalculate_ThreeParticipantsOrderedPayments(t *testing.T) {
	calc := newTestCalculator(rateConverter(nil))

	res, err := calc.Calculate(context.Background(), Input{
		Participants: []types.Participant{person(1, "A"), person(2, "B"), person(3, "C")},
		Expenses: []types.Expense{
			expense(1, pid(1), "90", "PLN"),
			expense(2, pid(2), "0", "PLN"),
			expense(3, pid(3), "30", "PLN"),
		},
	})
	require.NoError(t, err)

	assertDecimal(t, "120", res.TotalExpenses)
	require.Len(t, res.PaymentSummary, 2)
	assert.Equal(t, "B Nowak", res.PaymentSummary[0].From)
	assert.Equal(t, "A Nowak", res.PaymentSummary[0].To)
	assertDecimal(t, "40", res.PaymentSummary[0].Amount)
	assert.Equal(t, "C Nowak", res.PaymentSummary[1].From)
	assert.Equal(t, "A Nowak", res.PaymentSummary[1].To)
	assertDecimal(t, "10", res.PaymentSummary[1].Amount)

	assert.Equal(t, 1, res.ParticipantExpenses[1].ExpenseCount)
	assertDecimal(t, "0", res.ParticipantExpenses[1].TotalSpent)
}

func TestCalculate_ConvertsForeignCurrency(t *testing.T) {
	calc := newTestCalculator(rateConverter(map[string]string{"EUR": "4"}))

	res, err := calc.Calculate(context.Background(), Input{
		Participants: []types.Participant{person(1, "Anna")},
		Expenses:     []types.Expense{expense(1, pid(1), "10", "EUR")},
	})
	require.NoError(t, err)

	assertDecimal(t, "40", res.TotalExpenses)
	assertDecimal(t, "10", res.ExpensesByCurrency["EUR"])
	assertDecimal(t, "40", res.ParticipantExpenses[0].TotalSpent)
}

func TestCalculate_ConversionFailureFallsBackToRawAmount(t *testing.T) {
	reg := resetMetricsForTesting()
	calc := NewCalculator(rateConverter(map[string]string{"EUR": "4"}))

	res, err := calc.Calculate(context.Background(), Input{
		Participants: []types.Participant{person(1, "Anna"), person(2, "Bartek")},
		Expenses: []types.Expense{
			expense(1, pid(1), "25", "XYZ"),
			expense(2, pid(2), "5", "EUR"),
		},
	})
	require.NoError(t, err)

	assertDecimal(t, "45", res.TotalExpenses)
	assertDecimal(t, "25", res.ExpensesByCurrency["XYZ"])
	assertDecimal(t, "25", res.ParticipantExpenses[0].TotalSpent)
	assertDecimal(t, "20", res.ParticipantExpenses[1].TotalSpent)

	assert.Equal(t, 1.0, testutil.ToFloat64(calc.metrics.conversionFallbacks.WithLabelValues("XYZ")))
	count, err := testutil.GatherAndCount(reg, "settlement_conversion_fallbacks_total")
	require.NoError(t, err)
	assert.Equal(t, 1, count)
}

func TestCalculate_EachExpenseConvertedOnce(t *testing.T) {
	conv := new(MockConverter)
	conv.On("Convert", mock.Anything, mock.MatchedBy(func(d decimal.Decimal) bool { return d.Equal(dec("10")) }), "EUR").
		Return(dec("43"), nil).Once()
	conv.On("Convert", mock.Anything, mock.MatchedBy(func(d decimal.Decimal) bool { return d.Equal(dec("7")) }), "PLN").
		Return(dec("7"), nil).Once()

	calc := newTestCalculator(conv)
	res, err := calc.Calculate(context.Background(), Input{
		Participants: []types.Participant{person(1, "Anna")},
		Expenses: []types.Expense{
			expense(1, pid(1), "10", "EUR"),
			expense(2, nil, "7", "PLN"),
		},
	})
	require.NoError(t, err)

	assertDecimal(t, "50", res.TotalExpenses)
	assertDecimal(t, "43", res.ParticipantExpenses[0].TotalSpent)
	conv.AssertExpectations(t)
}

func TestCalculate_EdgeCases(t *testing.T) {
	calc := newTestCalculator(rateConverter(nil))
	ctx := context.Background()

	t.Run("no participants and no expenses", func(t *testing.T) {
		res, err := calc.Calculate(ctx, Input{})
		require.NoError(t, err)
		assertDecimal(t, "0", res.TotalExpenses)
		assert.Empty(t, res.ExpensesByCurrency)
		assert.Empty(t, res.ParticipantExpenses)
		assert.NotNil(t, res.PaymentSummary)
		assert.Empty(t, res.PaymentSummary)
	})

	t.Run("no participants with unattributed expenses", func(t *testing.T) {
		res, err := calc.Calculate(ctx, Input{
			Expenses: []types.Expense{expense(1, nil, "12.5", "PLN"), expense(2, nil, "7.5", "PLN")},
		})
		require.NoError(t, err)
		assertDecimal(t, "20", res.TotalExpenses)
		assert.Empty(t, res.ParticipantExpenses)
		assert.Empty(t, res.PaymentSummary)
	})

	t.Run("single participant never pays", func(t *testing.T) {
		res, err := calc.Calculate(ctx, Input{
			Participants: []types.Participant{person(1, "Solo")},
			Expenses: []types.Expense{
				expense(1, pid(1), "10", "PLN"),
				expense(2, pid(1), "32.17", "PLN"),
			},
		})
		require.NoError(t, err)
		assertDecimal(t, "42.17", res.ParticipantExpenses[0].TotalSpent)
		assert.Equal(t, 2, res.ParticipantExpenses[0].ExpenseCount)
		assert.Empty(t, res.PaymentSummary)
	})

	t.Run("all reference currency", func(t *testing.T) {
		res, err := calc.Calculate(ctx, Input{
			Participants: []types.Participant{person(1, "A"), person(2, "B")},
			Expenses:     []types.Expense{expense(1, pid(1), "3", "PLN"), expense(2, pid(2), "4", "PLN")},
		})
		require.NoError(t, err)
		require.Len(t, res.ExpensesByCurrency, 1)
		assert.True(t, res.ExpensesByCurrency["PLN"].Equal(res.TotalExpenses))
	})

	t.Run("missing amount counts as zero", func(t *testing.T) {
		res, err := calc.Calculate(ctx, Input{
			Participants: []types.Participant{person(1, "A")},
			Expenses:     []types.Expense{{ID: 1, ParticipantID: pid(1), Currency: "EUR"}},
		})
		require.NoError(t, err)
		assertDecimal(t, "0", res.TotalExpenses)
		assertDecimal(t, "0", res.ExpensesByCurrency["EUR"])
		assert.Equal(t, 1, res.ParticipantExpenses[0].ExpenseCount)
	})

	t.Run("balances within epsilon produce no payments", func(t *testing.T) {
		res, err := calc.Calculate(ctx, Input{
			Participants: []types.Participant{person(1, "A"), person(2, "B")},
			Expenses:     []types.Expense{expense(1, pid(1), "10.01", "PLN"), expense(2, pid(2), "10", "PLN")},
		})
		require.NoError(t, err)
		assert.Empty(t, res.PaymentSummary)
	})

	t.Run("duplicate participants and unknown owners", func(t *testing.T) {
		res, err := calc.Calculate(ctx, Input{
			Participants: []types.Participant{person(1, "A"), person(1, "A"), person(2, "B")},
			Expenses:     []types.Expense{expense(1, pid(1), "10", "PLN"), expense(2, pid(99), "30", "PLN")},
		})
		require.NoError(t, err)
		require.Len(t, res.ParticipantExpenses, 2)
		assertDecimal(t, "40", res.TotalExpenses)
		assertDecimal(t, "10", res.ParticipantExpenses[0].TotalSpent)
		assertDecimal(t, "0", res.ParticipantExpenses[1].TotalSpent)
	})
}

func TestCalculate_TiesKeepParticipantOrder(t *testing.T) {
	calc := newTestCalculator(rateConverter(nil))

	res, err := calc.Calculate(context.Background(), Input{
		Participants: []types.Participant{person(1, "A"), person(2, "B"), person(3, "C"), person(4, "D")},
		Expenses: []types.Expense{
			expense(1, pid(3), "50", "PLN"),
			expense(2, pid(4), "50", "PLN"),
		},
	})
	require.NoError(t, err)

	require.Len(t, res.PaymentSummary, 2)
	assert.Equal(t, types.Payment{From: "A Nowak", To: "C Nowak", Amount: res.PaymentSummary[0].Amount}, res.PaymentSummary[0])
	assert.Equal(t, types.Payment{From: "B Nowak", To: "D Nowak", Amount: res.PaymentSummary[1].Amount}, res.PaymentSummary[1])
	assertDecimal(t, "25", res.PaymentSummary[0].Amount)
	assertDecimal(t, "25", res.PaymentSummary[1].Amount)
}

func TestCalculate_PaymentsAreWholeCents(t *testing.T) {
	calc := newTestCalculator(rateConverter(nil))

	// average 33.33...: A +66.66..., B and C -33.33... each
	res, err := calc.Calculate(context.Background(), Input{
		Participants: []types.Participant{person(1, "A"), person(2, "B"), person(3, "C")},
		Expenses:     []types.Expense{expense(1, pid(1), "100", "PLN")},
	})
	require.NoError(t, err)

	require.Len(t, res.PaymentSummary, 2)
	for _, p := range res.PaymentSummary {
		assert.Equal(t, "A Nowak", p.To)
		assertDecimal(t, "33.33", p.Amount)
	}

	body, err := json.Marshal(res.PaymentSummary[0])
	require.NoError(t, err)
	assert.JSONEq(t, `{"from":"B Nowak","to":"A Nowak","amount":33.33}`, string(body))
}

func TestCalculate_ExhaustedCreditorIsSkipped(t *testing.T) {
	calc := newTestCalculator(rateConverter(nil))

	// average 30: A +30, B +10, C -20, D -20
	res, err := calc.Calculate(context.Background(), Input{
		Participants: []types.Participant{person(1, "A"), person(2, "B"), person(3, "C"), person(4, "D")},
		Expenses: []types.Expense{
			expense(1, pid(1), "60", "PLN"),
			expense(2, pid(2), "40", "PLN"),
			expense(3, pid(3), "10", "PLN"),
			expense(4, pid(4), "10", "PLN"),
		},
	})
	require.NoError(t, err)

	require.Len(t, res.PaymentSummary, 3)
	assert.Equal(t, "C Nowak", res.PaymentSummary[0].From)
	assert.Equal(t, "A Nowak", res.PaymentSummary[0].To)
	assertDecimal(t, "20", res.PaymentSummary[0].Amount)
	assert.Equal(t, "D Nowak", res.PaymentSummary[1].From)
	assert.Equal(t, "A Nowak", res.PaymentSummary[1].To)
	assertDecimal(t, "10", res.PaymentSummary[1].Amount)
	assert.Equal(t, "D Nowak", res.PaymentSummary[2].From)
	assert.Equal(t, "B Nowak", res.PaymentSummary[2].To)
	assertDecimal(t, "10", res.PaymentSummary[2].Amount)
}

func TestCalculate_CancelledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())

	var calls atomic.Int32
	conv := ConverterFunc(func(ctx context.Context, amount decimal.Decimal, _ string) (decimal.Decimal, error) {
		if calls.Add(1) == 1 {
			cancel()
		}
		<-ctx.Done()
		return decimal.Zero, ctx.Err()
	})

	calc := newTestCalculator(conv)
	res, err := calc.Calculate(ctx, Input{
		Participants: []types.Participant{person(1, "A")},
		Expenses: []types.Expense{
			expense(1, pid(1), "1", "EUR"),
			expense(2, pid(1), "2", "EUR"),
			expense(3, pid(1), "3", "EUR"),
		},
	})
	assert.Nil(t, res)
	assert.True(t, errors.Is(err, context.Canceled))
}

func TestCalculate_Invariants(t *testing.T) {
	rates := map[string]string{"EUR": "4.2817", "USD": "3.9512", "GBP": "5.0344"}
	currencies := []string{"PLN", "EUR", "USD", "GBP"}
	calc := newTestCalculator(rateConverter(rates))
	rng := rand.New(rand.NewSource(42))

	for round := 0; round < 200; round++ {
		nParticipants := 1 + rng.Intn(7)
		participants := make([]types.Participant, nParticipants)
		for i := range participants {
			participants[i] = person(int64(i+1), fmt.Sprintf("P%d", i+1))
		}

		nExpenses := rng.Intn(15)
		expenses := make([]types.Expense, nExpenses)
		attributedConverted := decimal.Zero
		for i := range expenses {
			owner := pid(int64(1 + rng.Intn(nParticipants)))
			cur := currencies[rng.Intn(len(currencies))]
			raw := decimal.New(int64(rng.Intn(100000)), -2)
			expenses[i] = types.Expense{ID: int64(i + 1), ParticipantID: owner, Amount: &raw, Currency: cur}

			rate := decimal.NewFromInt(1)
			if cur != "PLN" {
				rate = dec(rates[cur])
			}
			attributedConverted = attributedConverted.Add(raw.Mul(rate))
		}

		in := Input{Participants: participants, Expenses: expenses}
		res, err := calc.Calculate(context.Background(), in)
		require.NoError(t, err)

		spent := decimal.Zero
		for _, pe := range res.ParticipantExpenses {
			spent = spent.Add(pe.TotalSpent)
		}
		assert.True(t, spent.Equal(attributedConverted), "round %d: participant totals", round)

		average := res.TotalExpenses.Div(decimal.NewFromInt(int64(nParticipants)))
		balanceSum := decimal.Zero
		debts := make(map[string]decimal.Decimal)
		for _, pe := range res.ParticipantExpenses {
			b := pe.TotalSpent.Sub(average)
			balanceSum = balanceSum.Add(b)
			if b.IsNegative() {
				debts[pe.FullName()] = b.Neg()
			}
		}
		assert.True(t, balanceSum.Abs().LessThanOrEqual(Epsilon), "round %d: balances sum to %s", round, balanceSum)

		paid := make(map[string]decimal.Decimal)
		for _, p := range res.PaymentSummary {
			assert.True(t, p.Amount.GreaterThan(Epsilon), "round %d: tiny payment %s", round, p.Amount)
			assert.True(t, p.Amount.Equal(p.Amount.Truncate(2)), "round %d: fractional cents in %s", round, p.Amount)
			paid[p.From] = paid[p.From].Add(p.Amount)
		}
		for name, total := range paid {
			assert.True(t, total.LessThanOrEqual(debts[name]), "round %d: %s overpays", round, name)
		}

		again, err := calc.Calculate(context.Background(), in)
		require.NoError(t, err)
		assert.Equal(t, res, again, "round %d: not deterministic", round)
	}
}
