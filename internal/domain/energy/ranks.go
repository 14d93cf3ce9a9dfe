package energy

// Unranked is reported for energy below the first rank.
const Unranked = "Unranked"

type rank struct {
	energy float64
	name   string
}

// ranks are ordered by energy; each name is reached at its band value.
var ranks = [...]rank{
	{100, "Iron"},
	{200, "Bronze"},
	{300, "Silver"},
	{400, "Gold"},
	{500, "Platinum"},
	{600, "Diamond"},
	{700, "Jade"},
	{800, "Master"},
	{900, "Grandmaster"},
	{1000, "Nova"},
	{1100, "Astra"},
	{1200, "Celestial"},
}

// RankName returns the highest rank whose energy has been reached.
func RankName(energy float64) string {
	for i := len(ranks) - 1; i >= 0; i-- {
		if energy >= ranks[i].energy {
			return ranks[i].name
		}
	}
	return Unranked
}
