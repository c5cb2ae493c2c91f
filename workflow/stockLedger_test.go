package workflow

import (
	"errors"
	"testing"

	"bitbucket.org/oryzasoft/backoffice_backend/models"
	"bitbucket.org/oryzasoft/backoffice_backend/utils"
	"github.com/shopspring/decimal"
)

func batch(id int, baseQty string) *models.Stock {
	return &models.Stock{ID: id, BaseQuantity: decimal.RequireFromString(baseQty)}
}

func TestPlanFifoConsumptionDrawsOldestFirst(t *testing.T) {
	batches := []*models.Stock{batch(1, "5"), batch(2, "5")}

	draws, err := planFifoConsumption(batches, decimal.NewFromInt(7), "kg")
	if err != nil {
		t.Fatalf("planFifoConsumption: %v", err)
	}
	if len(draws) != 2 {
		t.Fatalf("expected 2 draws, got %d", len(draws))
	}
	if draws[0].Batch.ID != 1 || !draws[0].BaseQuantity.Equal(decimal.NewFromInt(5)) {
		t.Fatalf("first draw expected 5 from batch 1, got %s from batch %d", draws[0].BaseQuantity, draws[0].Batch.ID)
	}
	if draws[1].Batch.ID != 2 || !draws[1].BaseQuantity.Equal(decimal.NewFromInt(2)) {
		t.Fatalf("second draw expected 2 from batch 2, got %s from batch %d", draws[1].BaseQuantity, draws[1].Batch.ID)
	}
}

func TestPlanFifoConsumptionExactDepletion(t *testing.T) {
	batches := []*models.Stock{batch(1, "3"), batch(2, "4")}

	draws, err := planFifoConsumption(batches, decimal.NewFromInt(7), "kg")
	if err != nil {
		t.Fatalf("planFifoConsumption: %v", err)
	}
	total := decimal.Zero
	for _, d := range draws {
		total = total.Add(d.BaseQuantity)
	}
	if !total.Equal(decimal.NewFromInt(7)) {
		t.Fatalf("draws should sum to 7, got %s", total)
	}
}

func TestPlanFifoConsumptionShortfallPlansNothing(t *testing.T) {
	batches := []*models.Stock{batch(1, "5"), batch(2, "5")}

	draws, err := planFifoConsumption(batches, decimal.NewFromInt(11), "kg")
	if draws != nil {
		t.Fatalf("shortfall must return no plan, got %d draws", len(draws))
	}
	var insufficient *utils.InsufficientStockError
	if !errors.As(err, &insufficient) {
		t.Fatalf("expected InsufficientStockError, got %v", err)
	}
	if !insufficient.Available.Equal(decimal.NewFromInt(10)) {
		t.Fatalf("available expected 10, got %s", insufficient.Available)
	}
	if !insufficient.Requested.Equal(decimal.NewFromInt(11)) {
		t.Fatalf("requested expected 11, got %s", insufficient.Requested)
	}
}

func TestPlanFifoConsumptionSkipsEmptyBatches(t *testing.T) {
	batches := []*models.Stock{batch(1, "0"), batch(2, "6")}

	draws, err := planFifoConsumption(batches, decimal.NewFromInt(4), "kg")
	if err != nil {
		t.Fatalf("planFifoConsumption: %v", err)
	}
	if len(draws) != 1 || draws[0].Batch.ID != 2 {
		t.Fatalf("empty batch should be skipped, draws: %+v", draws)
	}
}
