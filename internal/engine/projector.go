// internal/engine/projector.go
package engine

// Balance is one step of the rolling projection.
type Balance struct {
	Opening         int
	Closing         int
	SafetyThreshold int
	Status          StockStatus
}

// RollBalances folds effective arrivals and sales over the weeks in order,
// starting from the on-hand quantity. The fold is strictly sequential: each
// week's opening stock is the previous week's closing stock. Output depends
// on nothing but the arguments.
func RollBalances(onHand int, arrivals, sales []int, safetyStockWeeks int) []Balance {
	out := make([]Balance, len(arrivals))
	running := onHand
	for i := range arrivals {
		closing := running + arrivals[i] - sales[i]
		threshold := sales[i] * safetyStockWeeks
		out[i] = Balance{
			Opening:         running,
			Closing:         closing,
			SafetyThreshold: threshold,
			Status:          ClassifyStock(closing, threshold),
		}
		running = closing
	}
	return out
}

// ClassifyStock maps a closing balance to its status. A balance of exactly
// zero is a stockout; a balance exactly at the threshold is OK.
func ClassifyStock(closing, safetyThreshold int) StockStatus {
	switch {
	case closing <= 0:
		return StockStockout
	case closing < safetyThreshold:
		return StockRisk
	default:
		return StockOK
	}
}
