package auction

import "fmt"

// validateBid решает, может ли ставка быть принята при текущем состоянии
// комнаты. Вызывается только из цикла комнаты: все ставки одной комнаты
// проверяются строго последовательно, поэтому побеждает первая
// закоммиченная, а не первая пришедшая по сети. Две одновременные ставки
// с одинаковой суммой разрешаются отказом второй как stale-price.
func validateBid(st *auctionState, bidder *Bidder, playerID, amount int) *Rejection {
	switch st.status {
	case StatusActive:
	case StatusPaused:
		return reject(ReasonAuctionPaused, "auction is paused")
	default:
		return reject(ReasonNoActiveLot, fmt.Sprintf("auction is %s, bidding is closed", st.status))
	}

	lot := st.current
	if lot == nil || lot.Status != LotActive {
		return reject(ReasonNoActiveLot, "no player is up for bid")
	}
	if lot.PlayerID != playerID {
		return reject(ReasonNoActiveLot, fmt.Sprintf("player %d is not on the block", playerID))
	}

	if bidder == nil || bidder.Approval != ApprovalApproved {
		return reject(ReasonNotApproved, "bidder is not approved for this auction")
	}

	if amount <= lot.CurrentPrice {
		return reject(ReasonStalePrice, fmt.Sprintf("bid %d does not beat current price %d", amount, lot.CurrentPrice))
	}
	if amount > bidder.RemainingBudget {
		return reject(ReasonInsufficientBudget, fmt.Sprintf("bid %d exceeds remaining budget %d", amount, bidder.RemainingBudget))
	}

	return nil
}
