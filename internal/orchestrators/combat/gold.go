package combat

import "github.com/HillPhelmuth/AgenticRpg-sub000/internal/entities"

// SplitGold divides total evenly over party members by id. The remainder
// goes one coin each to the first members in party order. Defeated members
// get their share too.
func SplitGold(total int, party []*entities.Combatant) map[string]int {
	if total <= 0 || len(party) == 0 {
		return nil
	}
	share := total / len(party)
	remainder := total % len(party)

	shares := make(map[string]int, len(party))
	for i, c := range party {
		shares[c.ID] = share
		if i < remainder {
			shares[c.ID]++
		}
	}
	return shares
}
