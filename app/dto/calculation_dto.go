package dto

import "github.com/shopspring/decimal"

// AdditionalServiceItem is one requested add-on service on a calculation.
type AdditionalServiceItem struct {
	FeeCode  string `json:"fee_code" validate:"required,max=30"`
	Quantity int64  `json:"quantity" validate:"omitempty,min=1"`
}

// CalculateFeesRequest represents the payload for a fee calculation.
// Decimal fields accept both quoted and bare JSON numbers.
type CalculateFeesRequest struct {
	AircraftTypeID     uint                    `json:"aircraft_type_id" validate:"omitempty,min=1"`
	TailNumber         string                  `json:"tail_number" validate:"omitempty,max=20"`
	CustomerID         uint                    `json:"customer_id" validate:"omitempty,min=1"`
	FuelUpliftGallons  decimal.Decimal         `json:"fuel_uplift_gallons"`
	FuelPricePerGallon decimal.Decimal         `json:"fuel_price_per_gallon"`
	AdditionalServices []AdditionalServiceItem `json:"additional_services" validate:"omitempty,dive"`
	ManualWaiverCodes  []string                `json:"manual_waiver_codes" validate:"omitempty,dive,max=30"`
}

// LineItemResponse is one receipt line of a calculation result.
type LineItemResponse struct {
	Type         string          `json:"type"`
	Description  string          `json:"description"`
	Quantity     decimal.Decimal `json:"quantity"`
	UnitPrice    decimal.Decimal `json:"unit_price"`
	Amount       decimal.Decimal `json:"amount"`
	FeeCode      string          `json:"fee_code,omitempty"`
	IsTaxable    bool            `json:"is_taxable"`
	WaiverSource string          `json:"waiver_source,omitempty"`
}

// CalculateFeesResponse is the itemized calculation output.
type CalculateFeesResponse struct {
	LineItems    []LineItemResponse `json:"line_items"`
	FuelSubtotal decimal.Decimal    `json:"fuel_subtotal"`
	TotalFees    decimal.Decimal    `json:"total_fees"`
	TotalWaivers decimal.Decimal    `json:"total_waivers"`
	TaxAmount    decimal.Decimal    `json:"tax_amount"`
	GrandTotal   decimal.Decimal    `json:"grand_total"`
	Currency     string             `json:"currency"`
	IsCAAApplied bool               `json:"is_caa_applied"`
}
