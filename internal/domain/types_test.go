package domain

import (
	"errors"
	"testing"
	"time"
)

func TestTradeSideConstants(t *testing.T) {
	if TradeSideBuy != "buy" {
		t.Errorf("TradeSideBuy = %q, want %q", TradeSideBuy, "buy")
	}
	if TradeSideSell != "sell" {
		t.Errorf("TradeSideSell = %q, want %q", TradeSideSell, "sell")
	}
}

func TestErrorKindsAreDistinct(t *testing.T) {
	kinds := []error{ErrInvalidParameter, ErrInsufficientData, ErrDataUnavailable, ErrNotFound}
	for i, a := range kinds {
		for j, b := range kinds {
			if i != j && errors.Is(a, b) {
				t.Errorf("error kind %v unexpectedly matches %v", a, b)
			}
		}
	}
}

func TestZeroValues(t *testing.T) {
	p := PricePoint{}
	if !p.Date.IsZero() || p.Open != 0 || p.Close != 0 || p.Volume != 0 {
		t.Error("expected all-zero fields for zero-value PricePoint")
	}

	s := Strategy{}
	if s.ID != 0 || s.InvestmentAmount != 0 || len(s.GridLevels) != 0 {
		t.Error("expected all-zero fields for zero-value Strategy")
	}

	tr := Trade{Date: time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC), Side: TradeSideBuy, Price: 140, Shares: 7, Amount: 980, GridLevel: 0}
	if tr.Side != TradeSideBuy || tr.Amount != 980 {
		t.Errorf("Trade fields not preserved: %+v", tr)
	}
}
