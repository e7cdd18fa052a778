package handlers_test

import (
	"math"
	"strings"
	"testing"

	"github.com/epeers/pmscockpit/internal/handlers"
	"github.com/epeers/pmscockpit/internal/models"
)

func TestParseCustodianCSV_HappyPath(t *testing.T) {
	csv := "ticker,quantity,price,currency,fx_rate\n" +
		"MSFT US,\"1,100\",400,usd,\n" +
		"SAP GY,1000,150,EUR,1.085\n"
	positions, err := handlers.ParseCustodianCSV(strings.NewReader(csv))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(positions) != 2 {
		t.Fatalf("expected 2 positions, got %d", len(positions))
	}

	msft := positions[0]
	if msft.Ticker != "MSFT US" || msft.Quantity != 1100 || msft.Currency != models.CurrencyUSD {
		t.Errorf("unexpected first position: %+v", msft)
	}
	if msft.FXRate != 1 || msft.MarketValueUSD != 440_000 {
		t.Errorf("expected USD row at parity with MV 440000, got fx=%v usd=%v", msft.FXRate, msft.MarketValueUSD)
	}

	sap := positions[1]
	if sap.MarketValueLocal != 150_000 {
		t.Errorf("expected local MV 150000, got %v", sap.MarketValueLocal)
	}
	if math.Abs(sap.MarketValueUSD-162_750) > 1e-6 {
		t.Errorf("expected USD MV 162750, got %v", sap.MarketValueUSD)
	}
}

func TestParseCustodianCSV_DerivesFXFromUSDValue(t *testing.T) {
	csv := "Ticker, Quantity, Price, Currency, Market_Value_USD\nVOD LN,1000,0.80,GBP,1016\n"
	positions, err := handlers.ParseCustodianCSV(strings.NewReader(csv))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(positions) != 1 {
		t.Fatalf("expected 1 position, got %d", len(positions))
	}
	if math.Abs(positions[0].FXRate-1.27) > 1e-9 {
		t.Errorf("expected derived fx 1.27, got %v", positions[0].FXRate)
	}
	if positions[0].MarketValueUSD != 1016 {
		t.Errorf("expected USD MV to be kept, got %v", positions[0].MarketValueUSD)
	}
}

func TestParseCustodianCSV_Errors(t *testing.T) {
	testCases := []struct {
		name    string
		csv     string
		wantErr string
	}{
		{"missing column", "ticker,quantity,price\nAAPL,1,1\n", "currency"},
		{"empty ticker", "ticker,quantity,price,currency\n,1,1,USD\n", "row 2"},
		{"invalid quantity", "ticker,quantity,price,currency\nAAPL,abc,1,USD\n", "invalid quantity"},
		{"invalid price", "ticker,quantity,price,currency\nAAPL,1,1,USD\nMSFT,1,x,USD\n", "row 3"},
		{"empty currency", "ticker,quantity,price,currency\nAAPL,1,1,\n", "currency is empty"},
		{"foreign row without fx", "ticker,quantity,price,currency\nSAP,1,1,EUR\n", "fx_rate or market_value_usd"},
		{"empty input", "", "header"},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := handlers.ParseCustodianCSV(strings.NewReader(tc.csv))
			if err == nil {
				t.Fatal("expected error")
			}
			if !strings.Contains(err.Error(), tc.wantErr) {
				t.Errorf("expected error to mention %q, got: %s", tc.wantErr, err.Error())
			}
		})
	}
}

func TestParseCustodianCSV_HeaderOnly(t *testing.T) {
	positions, err := handlers.ParseCustodianCSV(strings.NewReader("ticker,quantity,price,currency\n"))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(positions) != 0 {
		t.Errorf("expected no positions, got %d", len(positions))
	}
}
