package models

// NAVBridgeItem is one attribution line. Descriptions are free text.
type NAVBridgeItem struct {
	Label       string  `json:"label"`
	ValueUSD    float64 `json:"value_usd"`
	ValueBps    float64 `json:"value_bps"`
	Description string  `json:"description"`
}

// NAVBridgeComponents holds every bridge term, including those hidden from
// the displayed items. PriceEffect + FXEffect + CashEffect - DailyAccrual +
// Residual equals the card's DeltaUSD.
type NAVBridgeComponents struct {
	PriceEffect  float64 `json:"price_effect"`
	FXEffect     float64 `json:"fx_effect"`
	CashEffect   float64 `json:"cash_effect"`
	DailyAccrual float64 `json:"daily_accrual"`
	Residual     float64 `json:"residual"`
}

// ShadowNAVCard compares the shadow NAV with the administrator's NAV.
type ShadowNAVCard struct {
	ShadowNAV         float64             `json:"shadow_nav"`
	ShadowNAVPerShare float64             `json:"shadow_nav_per_share"`
	AdminNAV          float64             `json:"admin_nav"`
	AdminNAVPerShare  float64             `json:"admin_nav_per_share"`
	AdminNAVAsOf      string              `json:"admin_nav_as_of,omitempty"`
	DeltaUSD          float64             `json:"delta_usd"`
	DeltaBps          float64             `json:"delta_bps"`
	DailyAccrual      float64             `json:"daily_accrual"`
	ManagementFeeBps  float64             `json:"management_fee_bps"`
	FXMode            string              `json:"fx_mode"`
	PricingSource     string              `json:"pricing_source"`
	Components        NAVBridgeComponents `json:"components"`
	BridgeItems       []NAVBridgeItem     `json:"bridge_items"`
}
