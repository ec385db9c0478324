package yahoo

import (
	"fmt"
	"sort"
)

// Stock describes one instrument supported by the paper-trading catalog.
type Stock struct {
	Symbol       string `json:"symbol"`
	Name         string `json:"name"`
	VendorSymbol string `json:"-"`
}

// Catalog maps app-level NSE symbols to their Yahoo Finance identifiers.
var Catalog = map[string]Stock{
	"RELIANCE":   {Symbol: "RELIANCE", Name: "Reliance Industries Ltd.", VendorSymbol: "RELIANCE.NS"},
	"TCS":        {Symbol: "TCS", Name: "Tata Consultancy Services Ltd.", VendorSymbol: "TCS.NS"},
	"HDFCBANK":   {Symbol: "HDFCBANK", Name: "HDFC Bank Ltd.", VendorSymbol: "HDFCBANK.NS"},
	"INFY":       {Symbol: "INFY", Name: "Infosys Ltd.", VendorSymbol: "INFY.NS"},
	"HINDUNILVR": {Symbol: "HINDUNILVR", Name: "Hindustan Unilever Ltd.", VendorSymbol: "HINDUNILVR.NS"},
	"ICICIBANK":  {Symbol: "ICICIBANK", Name: "ICICI Bank Ltd.", VendorSymbol: "ICICIBANK.NS"},
	"SBIN":       {Symbol: "SBIN", Name: "State Bank of India", VendorSymbol: "SBIN.NS"},
	"BHARTIARTL": {Symbol: "BHARTIARTL", Name: "Bharti Airtel Ltd.", VendorSymbol: "BHARTIARTL.NS"},
	"ITC":        {Symbol: "ITC", Name: "ITC Ltd.", VendorSymbol: "ITC.NS"},
	"KOTAKBANK":  {Symbol: "KOTAKBANK", Name: "Kotak Mahindra Bank Ltd.", VendorSymbol: "KOTAKBANK.NS"},
	"LT":         {Symbol: "LT", Name: "Larsen & Toubro Ltd.", VendorSymbol: "LT.NS"},
	"HCLTECH":    {Symbol: "HCLTECH", Name: "HCL Technologies Ltd.", VendorSymbol: "HCLTECH.NS"},
	"AXISBANK":   {Symbol: "AXISBANK", Name: "Axis Bank Ltd.", VendorSymbol: "AXISBANK.NS"},
	"ASIANPAINT": {Symbol: "ASIANPAINT", Name: "Asian Paints Ltd.", VendorSymbol: "ASIANPAINT.NS"},
	"MARUTI":     {Symbol: "MARUTI", Name: "Maruti Suzuki India Ltd.", VendorSymbol: "MARUTI.NS"},
	"BAJFINANCE": {Symbol: "BAJFINANCE", Name: "Bajaj Finance Ltd.", VendorSymbol: "BAJFINANCE.NS"},
	"WIPRO":      {Symbol: "WIPRO", Name: "Wipro Ltd.", VendorSymbol: "WIPRO.NS"},
	"NESTLEIND":  {Symbol: "NESTLEIND", Name: "Nestle India Ltd.", VendorSymbol: "NESTLEIND.NS"},
	"ULTRACEMCO": {Symbol: "ULTRACEMCO", Name: "UltraTech Cement Ltd.", VendorSymbol: "ULTRACEMCO.NS"},
	"TITAN":      {Symbol: "TITAN", Name: "Titan Company Ltd.", VendorSymbol: "TITAN.NS"},
}

// Lookup resolves an app-level symbol to its catalog entry. Symbols outside
// the catalog still resolve: any NSE symbol can be traded, the catalog only
// provides curated display names.
func Lookup(symbol string) Stock {
	if stock, ok := Catalog[symbol]; ok {
		return stock
	}
	return Stock{
		Symbol:       symbol,
		Name:         fmt.Sprintf("%s Ltd.", symbol),
		VendorSymbol: fmt.Sprintf("%s.NS", symbol),
	}
}

// ListCatalog returns the curated catalog entries in a stable order.
func ListCatalog() []Stock {
	stocks := make([]Stock, 0, len(Catalog))
	for _, stock := range Catalog {
		stocks = append(stocks, stock)
	}
	sort.Slice(stocks, func(i, j int) bool { return stocks[i].Symbol < stocks[j].Symbol })
	return stocks
}
