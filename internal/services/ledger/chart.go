package ledger

import (
	"bytes"
	"context"
	"fmt"
	"sort"

	"github.com/wcharczuk/go-chart/v2"

	"trademind/internal/models"
)

// RenderAllocationChart renders a PNG pie of how the account's equity is
// allocated across cash and open positions, valued at entry price.
func (s *Service) RenderAllocationChart(ctx context.Context, userID string) ([]byte, error) {
	ledger, err := s.storage.PaperStore().GetLedger(ctx, userID)
	if err != nil {
		return nil, err
	}
	return renderAllocation(ledger)
}

func renderAllocation(ledger *models.Ledger) ([]byte, error) {
	values := []chart.Value{}
	if ledger.Balance > 0 {
		values = append(values, chart.Value{
			Label: fmt.Sprintf("Cash $%.0f", ledger.Balance),
			Value: ledger.Balance,
		})
	}

	symbols := make([]string, 0, len(ledger.Positions))
	for symbol := range ledger.Positions {
		symbols = append(symbols, symbol)
	}
	sort.Strings(symbols)
	for _, symbol := range symbols {
		pos := ledger.Positions[symbol]
		value := pos.Quantity * pos.AvgPrice
		if value <= 0 {
			continue
		}
		values = append(values, chart.Value{
			Label: fmt.Sprintf("%s $%.0f", symbol, value),
			Value: value,
		})
	}
	if len(values) == 0 {
		return nil, fmt.Errorf("nothing to chart: empty account")
	}

	pie := chart.PieChart{
		Title:  "Paper Account Allocation",
		Width:  600,
		Height: 600,
		Values: values,
	}

	var buf bytes.Buffer
	if err := pie.Render(chart.PNG, &buf); err != nil {
		return nil, fmt.Errorf("chart render failed: %w", err)
	}
	return buf.Bytes(), nil
}
