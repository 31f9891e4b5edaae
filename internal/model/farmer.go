package model

// FarmerProfile is a citizen record held by the citizen registry
type FarmerProfile struct {
	Aadhaar         string   `json:"aadhaar" yaml:"aadhaar"` // 12 digits
	Name            string   `json:"name" yaml:"name"`
	Age             int      `json:"age" yaml:"age"`
	Village         string   `json:"village" yaml:"village"`
	District        string   `json:"district" yaml:"district"`
	State           string   `json:"state" yaml:"state"`
	Lat             float64  `json:"lat" yaml:"lat"`
	Lon             float64  `json:"lon" yaml:"lon"`
	Crops           []string `json:"crops" yaml:"crops"`
	LandAcres       float64  `json:"landAcres" yaml:"land_acres"`
	SoilType        string   `json:"soilType" yaml:"soil_type"`
	IrrigationType  string   `json:"irrigationType" yaml:"irrigation_type"`
	AnnualIncomeINR int      `json:"annualIncomeINR" yaml:"annual_income_inr"`
	Phone           string   `json:"phone" yaml:"phone"`
}

// LinkedFarmer is the farmer projection attached to a dataset
type LinkedFarmer struct {
	Aadhaar        string   `json:"aadhaar"`
	Name           string   `json:"name"`
	Village        string   `json:"village"`
	District       string   `json:"district"`
	State          string   `json:"state"`
	Lat            float64  `json:"lat"`
	Lon            float64  `json:"lon"`
	Crops          []string `json:"crops"`
	LandAcres      float64  `json:"landAcres"`
	SoilType       string   `json:"soilType"`
	IrrigationType string   `json:"irrigationType"`
}

// Link returns the dataset-facing projection of the profile
func (f *FarmerProfile) Link() *LinkedFarmer {
	crops := make([]string, len(f.Crops))
	copy(crops, f.Crops)
	return &LinkedFarmer{
		Aadhaar:        f.Aadhaar,
		Name:           f.Name,
		Village:        f.Village,
		District:       f.District,
		State:          f.State,
		Lat:            f.Lat,
		Lon:            f.Lon,
		Crops:          crops,
		LandAcres:      f.LandAcres,
		SoilType:       f.SoilType,
		IrrigationType: f.IrrigationType,
	}
}
