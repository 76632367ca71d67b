package dataset

// Field names one numeric column of the input table.
type Field int

const (
	GroupShare Field = iota
	CostShare
	PeakShare
	CapacityShare
	EnergyShare
	ElectricityPurchased
	SimultaneousPeak
	ContractedCapacity
)

// Fields lists every numeric column in table order.
var Fields = []Field{
	GroupShare, CostShare, PeakShare, CapacityShare, EnergyShare,
	ElectricityPurchased, SimultaneousPeak, ContractedCapacity,
}

var fieldNames = map[Field]string{
	GroupShare:           "Group Share",
	CostShare:            "Cost Share",
	PeakShare:            "Peak Share",
	CapacityShare:        "Capacity Share",
	EnergyShare:          "Energy Share",
	ElectricityPurchased: "Electricity Purchased",
	SimultaneousPeak:     "Simultaneous Peak",
	ContractedCapacity:   "Contracted Capacity",
}

// String returns the canonical column name.
func (f Field) String() string {
	if name, ok := fieldNames[f]; ok {
		return name
	}
	return "unknown"
}

// Value reads the field from a record.
func (f Field) Value(r Record) float64 {
	switch f {
	case GroupShare:
		return r.GroupShare
	case CostShare:
		return r.CostShare
	case PeakShare:
		return r.PeakShare
	case CapacityShare:
		return r.CapacityShare
	case EnergyShare:
		return r.EnergyShare
	case ElectricityPurchased:
		return r.ElectricityPurchased
	case SimultaneousPeak:
		return r.SimultaneousPeak
	case ContractedCapacity:
		return r.ContractedCapacity
	default:
		return 0
	}
}
