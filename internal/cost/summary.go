package cost

import (
	"sort"

	"github.com/shopspring/decimal"

	"github.com/vbonduro/emulsion/internal/domain"
)

// RollAmount points at one roll and the figure it was picked for.
type RollAmount struct {
	ID            string          `json:"id"`
	FilmStockName string          `json:"film_stock_name"`
	Amount        decimal.Decimal `json:"amount"`
}

// BatchUsage is how many rolls reference one batch.
type BatchUsage struct {
	ID    string `json:"id"`
	Name  string `json:"name"`
	Rolls int    `json:"rolls"`
}

// Summary is the display aggregate over both collections.
type Summary struct {
	Rolls              int                   `json:"rolls"`
	ByStatus           map[domain.Status]int `json:"by_status"`
	FilmSpend          decimal.Decimal       `json:"film_spend"`
	DevSpend           decimal.Decimal       `json:"dev_spend"`
	TotalSpend         decimal.Decimal       `json:"total_spend"`
	TotalShots         int                   `json:"total_shots"`
	AverageCostPerShot *decimal.Decimal      `json:"average_cost_per_shot"`
	MostExpensive      *RollAmount           `json:"most_expensive"`
	CheapestPerShot    *RollAmount           `json:"cheapest_per_shot"`
	BatchUsage         []BatchUsage          `json:"batch_usage"`
}

// UsageByBatch counts the rolls referencing each batch id.
func UsageByBatch(rolls []*domain.Roll) map[string]int {
	usage := make(map[string]int)
	for _, r := range rolls {
		if r.ChemistryID != nil {
			usage[*r.ChemistryID]++
		}
	}
	return usage
}

// Summarize reduces rolls and batches into spend figures. A roll's
// development share is its batch's cost per roll; film cost of not_mine rolls
// is never counted. The average cost per shot is weighted: the spend of rolls
// with a per-shot figure divided by their shots.
func Summarize(rolls []*domain.Roll, batches []*domain.ChemistryBatch) Summary {
	byID := make(map[string]*domain.ChemistryBatch, len(batches))
	for _, b := range batches {
		byID[b.ID] = b
	}

	s := Summary{
		Rolls:      len(rolls),
		ByStatus:   make(map[domain.Status]int, domain.NumStatuses),
		FilmSpend:  decimal.Zero,
		DevSpend:   decimal.Zero,
		TotalSpend: decimal.Zero,
	}
	for _, st := range domain.Statuses() {
		s.ByStatus[st] = 0
	}

	perShotSpend := decimal.Zero
	perShotShots := 0
	for _, r := range rolls {
		s.ByStatus[r.Status]++

		var batch *domain.ChemistryBatch
		if r.ChemistryID != nil {
			batch = byID[*r.ChemistryID]
		}
		dev := DevCost(batch)
		total := RollTotalCost(r.FilmCost, dev, r.NotMine)

		if !r.NotMine {
			s.FilmSpend = s.FilmSpend.Add(r.FilmCost)
		}
		s.DevSpend = s.DevSpend.Add(dev)
		s.TotalSpend = s.TotalSpend.Add(total)
		s.TotalShots += r.Exposures()

		if s.MostExpensive == nil || total.GreaterThan(s.MostExpensive.Amount) {
			s.MostExpensive = &RollAmount{ID: r.ID, FilmStockName: r.FilmStockName, Amount: total}
		}
		if per, ok := CostPerShot(total, r.Exposures()); ok {
			perShotSpend = perShotSpend.Add(total)
			perShotShots += r.Exposures()
			if s.CheapestPerShot == nil || per.LessThan(s.CheapestPerShot.Amount) {
				s.CheapestPerShot = &RollAmount{ID: r.ID, FilmStockName: r.FilmStockName, Amount: per}
			}
		}
	}
	if avg, ok := CostPerShot(perShotSpend, perShotShots); ok {
		s.AverageCostPerShot = &avg
	}

	usage := UsageByBatch(rolls)
	s.BatchUsage = make([]BatchUsage, 0, len(batches))
	for _, b := range batches {
		s.BatchUsage = append(s.BatchUsage, BatchUsage{ID: b.ID, Name: b.Name, Rolls: usage[b.ID]})
	}
	sort.SliceStable(s.BatchUsage, func(i, j int) bool {
		return s.BatchUsage[i].Rolls > s.BatchUsage[j].Rolls
	})
	return s
}
