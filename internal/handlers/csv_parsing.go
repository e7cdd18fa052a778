package handlers

import (
	"encoding/csv"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/epeers/pmscockpit/internal/models"
)

// ParseCustodianCSV parses a custodian position file.
// Required columns: ticker, quantity, price, currency
// Optional columns: fx_rate, market_value_local, market_value_usd
// Missing values are derived: local = quantity * price, usd = local * fx.
// A non-USD row needs either fx_rate or market_value_usd.
func ParseCustodianCSV(r io.Reader) ([]models.CustodianPosition, error) {
	reader := csv.NewReader(r)
	reader.TrimLeadingSpace = true

	header, err := reader.Read()
	if err != nil {
		return nil, fmt.Errorf("failed to read CSV header: %w", err)
	}

	colIdx := make(map[string]int)
	for i, col := range header {
		colIdx[strings.ToLower(strings.TrimSpace(col))] = i
	}

	for _, col := range []string{"ticker", "quantity", "price", "currency"} {
		if _, ok := colIdx[col]; !ok {
			return nil, fmt.Errorf("missing required column: %s", col)
		}
	}

	optionalCol := func(record []string, col string) string {
		idx, ok := colIdx[col]
		if !ok || idx >= len(record) {
			return ""
		}
		return strings.TrimSpace(record[idx])
	}

	var positions []models.CustodianPosition
	rowNum := 1 // header is row 1, data starts at row 2
	for {
		record, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("row %d: failed to read CSV record: %w", rowNum+1, err)
		}
		rowNum++

		ticker := strings.TrimSpace(record[colIdx["ticker"]])
		if ticker == "" {
			return nil, fmt.Errorf("row %d: ticker is empty", rowNum)
		}

		parse := func(col, raw string) (float64, error) {
			v, err := strconv.ParseFloat(strings.ReplaceAll(raw, ",", ""), 64)
			if err != nil {
				return 0, fmt.Errorf("row %d: invalid %s %q", rowNum, col, raw)
			}
			return v, nil
		}

		qty, err := parse("quantity", strings.TrimSpace(record[colIdx["quantity"]]))
		if err != nil {
			return nil, err
		}
		price, err := parse("price", strings.TrimSpace(record[colIdx["price"]]))
		if err != nil {
			return nil, err
		}
		ccy := models.Currency(strings.ToUpper(strings.TrimSpace(record[colIdx["currency"]])))
		if ccy == "" {
			return nil, fmt.Errorf("row %d: currency is empty", rowNum)
		}

		local := qty * price
		if raw := optionalCol(record, "market_value_local"); raw != "" {
			if local, err = parse("market_value_local", raw); err != nil {
				return nil, err
			}
		}

		var fx, usd float64
		fxRaw, usdRaw := optionalCol(record, "fx_rate"), optionalCol(record, "market_value_usd")
		if fxRaw != "" {
			if fx, err = parse("fx_rate", fxRaw); err != nil {
				return nil, err
			}
		}
		if usdRaw != "" {
			if usd, err = parse("market_value_usd", usdRaw); err != nil {
				return nil, err
			}
		}

		switch {
		case fxRaw == "" && ccy == models.BaseCurrency:
			fx = 1
		case fxRaw == "" && usdRaw != "" && local != 0:
			fx = usd / local
		case fxRaw == "":
			return nil, fmt.Errorf("row %d: fx_rate or market_value_usd required for %s", rowNum, ccy)
		}
		if usdRaw == "" {
			usd = local * fx
		}

		positions = append(positions, models.CustodianPosition{
			Ticker:           ticker,
			Quantity:         qty,
			Price:            price,
			Currency:         ccy,
			MarketValueLocal: local,
			FXRate:           fx,
			MarketValueUSD:   usd,
		})
	}

	return positions, nil
}
