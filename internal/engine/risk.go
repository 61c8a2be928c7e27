package engine

// Risk grades a channel for an amount. Lower security, larger amounts and
// walk-in venues all push the score up.
func Risk(ch Channel, amount float64) RiskLevel {
	score := (maxRating - ch.Security) * 20

	switch {
	case amount > largeVolume:
		score += 20
	case amount > mediumVolume:
		score += 10
	}

	switch ch.Type {
	case ExchangeShop:
		score += 15
	case Airport:
		score += 10
	}

	switch {
	case score <= 30:
		return RiskLow
	case score <= 60:
		return RiskMedium
	default:
		return RiskHigh
	}
}
