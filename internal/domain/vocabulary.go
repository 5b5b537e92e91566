package domain

// AssetType is a canonical asset class label.
type AssetType string

const (
	AssetStocks      AssetType = "Stocks"
	AssetETFs        AssetType = "ETFs"
	AssetBonds       AssetType = "Bonds"
	AssetCrypto      AssetType = "Crypto"
	AssetFunds       AssetType = "Funds"
	AssetOptions     AssetType = "Options"
	AssetFutures     AssetType = "Futures"
	AssetCash        AssetType = "Cash"
	AssetCFDs        AssetType = "CFDs"
	AssetCommodities AssetType = "Commodities"
	AssetRealEstate  AssetType = "Real Estate"
	AssetOther       AssetType = "Other"
)

// Sector is a canonical sector label.
type Sector string

const (
	SectorTechnology          Sector = "Technology"
	SectorFinancials          Sector = "Financials"
	SectorHealthcare          Sector = "Healthcare"
	SectorConsumerCyclicals   Sector = "Consumer Cyclicals"
	SectorConsumerNonCyclical Sector = "Consumer Non-Cyclicals"
	SectorIndustrials         Sector = "Industrials"
	SectorBasicMaterials      Sector = "Basic Materials"
	SectorEnergy              Sector = "Energy"
	SectorUtilities           Sector = "Utilities"
	SectorRealEstate          Sector = "Real Estate"
	SectorCommunications      Sector = "Communications"
	SectorBroad               Sector = "Broad"
	SectorOther               Sector = "Other"
)

var assetTypes = []AssetType{
	AssetStocks, AssetETFs, AssetBonds, AssetCrypto, AssetFunds, AssetOptions,
	AssetFutures, AssetCash, AssetCFDs, AssetCommodities, AssetRealEstate, AssetOther,
}

var sectors = []Sector{
	SectorTechnology, SectorFinancials, SectorHealthcare, SectorConsumerCyclicals,
	SectorConsumerNonCyclical, SectorIndustrials, SectorBasicMaterials, SectorEnergy,
	SectorUtilities, SectorRealEstate, SectorCommunications, SectorBroad, SectorOther,
}

// AssetTypes returns the canonical asset type vocabulary.
func AssetTypes() []AssetType {
	out := make([]AssetType, len(assetTypes))
	copy(out, assetTypes)
	return out
}

// Sectors returns the canonical sector vocabulary.
func Sectors() []Sector {
	out := make([]Sector, len(sectors))
	copy(out, sectors)
	return out
}
