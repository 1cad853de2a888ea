// Package settlement turns a trip's participants and multi-currency expenses
// into per-participant totals and a greedy payment plan that evens out what
// everybody spent.
package settlement

import (
	"context"
	"sort"

	"github.com/shopspring/decimal"
	"github.com/tripsplit/tripsplit-backend/logger"
	"github.com/tripsplit/tripsplit-backend/types"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

// Epsilon is the smallest balance or transfer treated as non-zero.
var Epsilon = decimal.New(1, -2)

const defaultConcurrency = 4

// Converter converts an amount in fromCurrency into the reference currency.
type Converter interface {
	Convert(ctx context.Context, amount decimal.Decimal, fromCurrency string) (decimal.Decimal, error)
}

// ConverterFunc adapts a function to Converter.
type ConverterFunc func(ctx context.Context, amount decimal.Decimal, fromCurrency string) (decimal.Decimal, error)

func (f ConverterFunc) Convert(ctx context.Context, amount decimal.Decimal, fromCurrency string) (decimal.Decimal, error) {
	return f(ctx, amount, fromCurrency)
}

// Input is a snapshot of the data a summary is computed from.
type Input struct {
	Participants []types.Participant
	Expenses     []types.Expense
}

// Result holds the monetary part of a trip summary.
type Result struct {
	TotalExpenses       decimal.Decimal
	ExpensesByCurrency  map[string]decimal.Decimal
	ParticipantExpenses []types.ParticipantExpense
	PaymentSummary      []types.Payment
}

// Calculator computes settlements. It holds no per-call state and is safe
// for concurrent use.
type Calculator struct {
	converter   Converter
	concurrency int
	log         *zap.SugaredLogger
	metrics     *calculatorMetrics
}

type Option func(*Calculator)

// WithConcurrency caps the number of conversions in flight for one calculation.
func WithConcurrency(n int) Option {
	return func(c *Calculator) {
		if n > 0 {
			c.concurrency = n
		}
	}
}

func NewCalculator(converter Converter, opts ...Option) *Calculator {
	c := &Calculator{
		converter:   converter,
		concurrency: defaultConcurrency,
		log:         logger.GetLogger().Named("settlement"),
		metrics:     newCalculatorMetrics(),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Calculate builds the settlement for in.
//
// Every expense is converted once and that converted amount feeds both the
// trip total and the owner's total, so the participant totals always add up
// to the converted sum of attributed expenses. A failed conversion falls
// back to the raw amount. Only cancellation of ctx makes Calculate fail,
// and then no partial result is returned.
func (c *Calculator) Calculate(ctx context.Context, in Input) (*Result, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	converted, err := c.convertAll(ctx, in.Expenses)
	if err != nil {
		return nil, err
	}

	res := &Result{
		TotalExpenses:      decimal.Zero,
		ExpensesByCurrency: make(map[string]decimal.Decimal),
	}
	for i, e := range in.Expenses {
		res.ExpensesByCurrency[e.Currency] = res.ExpensesByCurrency[e.Currency].Add(e.AmountOrZero())
		res.TotalExpenses = res.TotalExpenses.Add(converted[i])
	}

	res.ParticipantExpenses = participantTotals(in.Participants, in.Expenses, converted)

	n := int64(len(res.ParticipantExpenses))
	if n < 1 {
		n = 1
	}
	average := res.TotalExpenses.Div(decimal.NewFromInt(n))
	res.PaymentSummary = SettleBalances(res.ParticipantExpenses, average)

	c.metrics.calculations.Inc()
	c.metrics.payments.Observe(float64(len(res.PaymentSummary)))
	return res, nil
}

// convertAll converts every expense amount into the reference currency,
// keeping results in expense order.
func (c *Calculator) convertAll(ctx context.Context, expenses []types.Expense) ([]decimal.Decimal, error) {
	converted := make([]decimal.Decimal, len(expenses))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(c.concurrency)
	for i := range expenses {
		e := expenses[i]
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			amount := e.AmountOrZero()
			v, err := c.converter.Convert(gctx, amount, e.Currency)
			if err != nil {
				if ctxErr := ctx.Err(); ctxErr != nil {
					return ctxErr
				}
				c.log.Warnw("Currency conversion failed, using unconverted amount",
					"expenseId", e.ID,
					"currency", e.Currency,
					"amount", amount.String(),
					"error", err)
				c.metrics.conversionFallbacks.WithLabelValues(e.Currency).Inc()
				v = amount
			}
			converted[i] = v
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return converted, nil
}

// participantTotals returns one zeroed entry per distinct participant in
// input order and adds every attributed expense to its owner. Expenses
// owned by unknown participants are left out.
func participantTotals(participants []types.Participant, expenses []types.Expense, converted []decimal.Decimal) []types.ParticipantExpense {
	index := make(map[int64]int, len(participants))
	totals := make([]types.ParticipantExpense, 0, len(participants))
	for _, p := range participants {
		if _, seen := index[p.ID]; seen {
			continue
		}
		index[p.ID] = len(totals)
		totals = append(totals, types.ParticipantExpense{
			ParticipantID: p.ID,
			Name:          p.Name,
			Surname:       p.Surname,
			Email:         p.Email,
			TotalSpent:    decimal.Zero,
		})
	}

	for i, e := range expenses {
		if e.ParticipantID == nil {
			continue
		}
		idx, ok := index[*e.ParticipantID]
		if !ok {
			continue
		}
		totals[idx].TotalSpent = totals[idx].TotalSpent.Add(converted[i])
		totals[idx].ExpenseCount++
	}
	return totals
}

type party struct {
	name   string
	amount decimal.Decimal
}

// SettleBalances produces the greedy payment plan for the given totals and
// per-person average. Creditors are visited largest first, debtors most
// indebted first, and ties keep participant order. Amounts are rounded down
// to whole cents, so nobody pays more than they owe, and every emitted
// amount is greater than Epsilon.
func SettleBalances(totals []types.ParticipantExpense, average decimal.Decimal) []types.Payment {
	var creditors, debtors []party
	for _, t := range totals {
		name := t.FullName()
		balance := t.TotalSpent.Sub(average)
		switch balance.Sign() {
		case 1:
			creditors = append(creditors, party{name: name, amount: balance})
		case -1:
			debtors = append(debtors, party{name: name, amount: balance.Neg()})
		}
	}

	sort.SliceStable(creditors, func(i, j int) bool {
		return creditors[i].amount.GreaterThan(creditors[j].amount)
	})
	sort.SliceStable(debtors, func(i, j int) bool {
		return debtors[i].amount.GreaterThan(debtors[j].amount)
	})

	payments := make([]types.Payment, 0)
	for _, debtor := range debtors {
		remaining := debtor.amount
		for j := range creditors {
			if remaining.LessThanOrEqual(Epsilon) {
				break
			}
			creditor := &creditors[j]
			if creditor.amount.LessThanOrEqual(Epsilon) {
				continue
			}
			amount := decimal.Min(remaining, creditor.amount).Truncate(2)
			if amount.LessThanOrEqual(Epsilon) {
				continue
			}
			payments = append(payments, types.Payment{
				From:   debtor.name,
				To:     creditor.name,
				Amount: amount,
			})
			remaining = remaining.Sub(amount)
			creditor.amount = creditor.amount.Sub(amount)
		}
	}
	return payments
}
