package ledger

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"

	"paper-trading-go/internal/models"
)

func dec(s string) decimal.Decimal {
	return decimal.RequireFromString(s)
}

func assertDecimal(t *testing.T, expected string, actual decimal.Decimal) {
	t.Helper()
	assert.True(t, dec(expected).Equal(actual), "expected %s, got %s", expected, actual)
}

func newTestAccount(cash string) *models.Account {
	acct := &models.Account{Cash: dec(cash)}
	acct.ID = 1
	return acct
}

func TestExecuteBuy_CreatesPosition(t *testing.T) {
	// Arrange
	acct := newTestAccount("100000")

	// Act
	result, err := ExecuteBuy(acct, "X", "X Ltd.", dec("10"), dec("100"))

	// Assert
	assert.NoError(t, err)
	assertDecimal(t, "99000", acct.Cash)
	assertDecimal(t, "99000", result.NewBalance)

	assert.Len(t, acct.Positions, 1)
	pos := acct.FindPosition("X")
	assert.NotNil(t, pos)
	assertDecimal(t, "10", pos.Quantity)
	assertDecimal(t, "100", pos.AvgPrice)
	assertDecimal(t, "1000", pos.TotalValue)
	assertDecimal(t, "0", pos.GainLoss)

	assert.Len(t, acct.Trades, 1)
	trade := acct.Trades[0]
	assert.Equal(t, models.TradeSideBuy, trade.Side)
	assert.Equal(t, "X", trade.Symbol)
	assertDecimal(t, "10", trade.Quantity)
	assertDecimal(t, "100", trade.Price)
	assertDecimal(t, "1000", trade.TotalAmount)
}

func TestExecuteBuy_WeightedAverageCost(t *testing.T) {
	// Arrange
	acct := newTestAccount("100000")

	// Act: buy 10 @ 100, then 10 more @ 200.
	_, err := ExecuteBuy(acct, "X", "X Ltd.", dec("10"), dec("100"))
	assert.NoError(t, err)
	_, err = ExecuteBuy(acct, "X", "X Ltd.", dec("10"), dec("200"))
	assert.NoError(t, err)

	// Assert
	assertDecimal(t, "97000", acct.Cash)
	pos := acct.FindPosition("X")
	assertDecimal(t, "20", pos.Quantity)
	assertDecimal(t, "150", pos.AvgPrice)
	assert.Len(t, acct.Trades, 2)
}

func TestExecuteBuy_AverageCostIsOrderIndependent(t *testing.T) {
	type buy struct {
		quantity string
		price    string
	}

	testCases := []struct {
		name string
		buys []buy
	}{
		{
			name: "Ascending prices",
			buys: []buy{{"10", "100"}, {"5", "400"}, {"5", "160"}},
		},
		{
			name: "Descending prices",
			buys: []buy{{"5", "160"}, {"5", "400"}, {"10", "100"}},
		},
		{
			name: "Interleaved",
			buys: []buy{{"5", "400"}, {"10", "100"}, {"5", "160"}},
		},
	}

	// All permutations spend 3800 on 20 units.
	expectedAvg := dec("190")

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			acct := newTestAccount("100000")
			for _, b := range tc.buys {
				_, err := ExecuteBuy(acct, "X", "X Ltd.", dec(b.quantity), dec(b.price))
				assert.NoError(t, err)
			}

			pos := acct.FindPosition("X")
			assert.True(t, expectedAvg.Equal(pos.AvgPrice),
				"expected avg %s, got %s", expectedAvg, pos.AvgPrice)
			assertDecimal(t, "96200", acct.Cash)
		})
	}
}

func TestExecuteBuy_InsufficientFunds(t *testing.T) {
	// Arrange
	acct := newTestAccount("500")
	_, err := ExecuteBuy(acct, "X", "X Ltd.", dec("1"), dec("100"))
	assert.NoError(t, err)

	// Act: 10 * 100 > 400 remaining.
	result, err := ExecuteBuy(acct, "X", "X Ltd.", dec("10"), dec("100"))

	// Assert: typed error with the shortfall, and no mutation at all.
	assert.Nil(t, result)
	var insufficientFunds *InsufficientFundsError
	assert.ErrorAs(t, err, &insufficientFunds)
	assertDecimal(t, "1000", insufficientFunds.Required)
	assertDecimal(t, "400", insufficientFunds.Available)

	assertDecimal(t, "400", acct.Cash)
	assert.Len(t, acct.Positions, 1)
	assertDecimal(t, "1", acct.FindPosition("X").Quantity)
	assert.Len(t, acct.Trades, 1)
}

func TestExecuteBuy_RejectsInvalidQuantity(t *testing.T) {
	acct := newTestAccount("100000")

	for _, quantity := range []string{"0", "-5"} {
		_, err := ExecuteBuy(acct, "X", "X Ltd.", dec(quantity), dec("100"))
		var invalidQty *InvalidQuantityError
		assert.ErrorAs(t, err, &invalidQty)
	}

	_, err := ExecuteBuy(acct, "X", "X Ltd.", dec("1"), dec("0"))
	assert.ErrorIs(t, err, ErrInvalidPrice)

	assertDecimal(t, "100000", acct.Cash)
	assert.Empty(t, acct.Positions)
	assert.Empty(t, acct.Trades)
}

func TestExecuteSell_ReportsRealizedPnLAndKeepsAvgCost(t *testing.T) {
	// Arrange: position X{qty:20, avgCost:150} as per the buy scenario.
	acct := newTestAccount("100000")
	_, _ = ExecuteBuy(acct, "X", "X Ltd.", dec("10"), dec("100"))
	_, _ = ExecuteBuy(acct, "X", "X Ltd.", dec("10"), dec("200"))

	// Act: sell 5 @ 300.
	result, err := ExecuteSell(acct, "X", dec("5"), dec("300"))

	// Assert
	assert.NoError(t, err)
	assertDecimal(t, "98500", acct.Cash)
	assertDecimal(t, "750", result.RealizedPnL) // (300-150)*5

	pos := acct.FindPosition("X")
	assertDecimal(t, "15", pos.Quantity)
	assertDecimal(t, "150", pos.AvgPrice) // selling never moves the cost basis

	assert.Len(t, acct.Trades, 3)
	assert.Equal(t, models.TradeSideSell, acct.Trades[2].Side)
	assertDecimal(t, "1500", acct.Trades[2].TotalAmount)
}

func TestExecuteSell_FullQuantityRemovesPosition(t *testing.T) {
	// Arrange: continue the scenario, 15 units left at avg 150.
	acct := newTestAccount("100000")
	_, _ = ExecuteBuy(acct, "X", "X Ltd.", dec("10"), dec("100"))
	_, _ = ExecuteBuy(acct, "X", "X Ltd.", dec("10"), dec("200"))
	_, _ = ExecuteSell(acct, "X", dec("5"), dec("300"))

	// Act: sell all remaining 15 @ 150.
	result, err := ExecuteSell(acct, "X", dec("15"), dec("150"))

	// Assert
	assert.NoError(t, err)
	assertDecimal(t, "100750", acct.Cash)
	assertDecimal(t, "0", result.RealizedPnL)
	assert.Nil(t, acct.FindPosition("X"))
	assert.Empty(t, acct.Positions)
}

func TestExecuteSell_PositionNotFound(t *testing.T) {
	acct := newTestAccount("100000")

	result, err := ExecuteSell(acct, "X", dec("5"), dec("100"))

	assert.Nil(t, result)
	var notFound *PositionNotFoundError
	assert.ErrorAs(t, err, &notFound)
	assert.Equal(t, "X", notFound.Symbol)
	assertDecimal(t, "100000", acct.Cash)
	assert.Empty(t, acct.Trades)
}

func TestExecuteSell_InsufficientShares(t *testing.T) {
	// Arrange
	acct := newTestAccount("100000")
	_, _ = ExecuteBuy(acct, "X", "X Ltd.", dec("10"), dec("100"))

	// Act
	result, err := ExecuteSell(acct, "X", dec("11"), dec("100"))

	// Assert: typed error with the shortfall, and no mutation at all.
	assert.Nil(t, result)
	var insufficientShares *InsufficientSharesError
	assert.ErrorAs(t, err, &insufficientShares)
	assertDecimal(t, "11", insufficientShares.Requested)
	assertDecimal(t, "10", insufficientShares.Available)

	assertDecimal(t, "99000", acct.Cash)
	assertDecimal(t, "10", acct.FindPosition("X").Quantity)
	assertDecimal(t, "100", acct.FindPosition("X").AvgPrice)
	assert.Len(t, acct.Trades, 1)
}

func TestExecuteSell_FractionalQuantities(t *testing.T) {
	acct := newTestAccount("1000")

	_, err := ExecuteBuy(acct, "X", "X Ltd.", dec("2.5"), dec("100"))
	assert.NoError(t, err)
	_, err = ExecuteSell(acct, "X", dec("1.25"), dec("120"))
	assert.NoError(t, err)

	// 1000 - 250 + 150, no rounding drift.
	assertDecimal(t, "900", acct.Cash)
	assertDecimal(t, "1.25", acct.FindPosition("X").Quantity)
}

func TestValuate_RefreshesCoveredPositionsOnly(t *testing.T) {
	// Arrange: two positions, only one with a fresh price.
	acct := newTestAccount("100000")
	_, _ = ExecuteBuy(acct, "X", "X Ltd.", dec("10"), dec("100"))
	_, _ = ExecuteBuy(acct, "Y", "Y Ltd.", dec("4"), dec("500"))
	// cash is now 97000; X valued at 1000, Y at 2000 from execution prices.

	// Act: price oracle only covered X.
	valuation := Valuate(acct, map[string]decimal.Decimal{"X": dec("150")}, dec("100000"))

	// Assert
	x := acct.FindPosition("X")
	assertDecimal(t, "150", x.LastPrice)
	assertDecimal(t, "1500", x.TotalValue)
	assertDecimal(t, "500", x.GainLoss)
	assertDecimal(t, "50", x.GainLossPercent)

	// Y keeps its last known values, never zeroed by a fetch failure.
	y := acct.FindPosition("Y")
	assertDecimal(t, "500", y.LastPrice)
	assertDecimal(t, "2000", y.TotalValue)

	assertDecimal(t, "100500", valuation.TotalPortfolioValue) // 97000 + 1500 + 2000
	assertDecimal(t, "500", valuation.TotalGainLoss)
	assertDecimal(t, "0.5", valuation.TotalGainLossPercent)
}

func TestValuate_EmptyAccount(t *testing.T) {
	acct := newTestAccount("100000")

	valuation := Valuate(acct, nil, dec("100000"))

	assertDecimal(t, "100000", valuation.TotalPortfolioValue)
	assertDecimal(t, "0", valuation.TotalGainLoss)
	assert.Empty(t, valuation.Positions)
}

func TestReset_RestoresStartingState(t *testing.T) {
	// Arrange
	acct := newTestAccount("100000")
	_, _ = ExecuteBuy(acct, "X", "X Ltd.", dec("10"), dec("100"))
	_, _ = ExecuteSell(acct, "X", dec("5"), dec("300"))

	// Act
	Reset(acct, dec("100000"))

	// Assert
	assertDecimal(t, "100000", acct.Cash)
	assert.Empty(t, acct.Positions)
	assert.Empty(t, acct.Trades)

	// Idempotent.
	Reset(acct, dec("100000"))
	assertDecimal(t, "100000", acct.Cash)
}

func TestBuyAfterSellOut_StartsFreshCostBasis(t *testing.T) {
	acct := newTestAccount("100000")
	_, _ = ExecuteBuy(acct, "X", "X Ltd.", dec("10"), dec("100"))
	_, _ = ExecuteSell(acct, "X", dec("10"), dec("200"))
	assert.Empty(t, acct.Positions)

	_, err := ExecuteBuy(acct, "X", "X Ltd.", dec("4"), dec("250"))
	assert.NoError(t, err)

	pos := acct.FindPosition("X")
	assert.Len(t, acct.Positions, 1)
	assertDecimal(t, "4", pos.Quantity)
	assertDecimal(t, "250", pos.AvgPrice) // old basis is gone with the old position
}
