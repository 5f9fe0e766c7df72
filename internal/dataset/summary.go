package dataset

import "math"

// Summary describes a dataset for logs and captions.
type Summary struct {
	Rows        int
	TimeStart   float64
	TimeEnd     float64
	EnergyMin   float64
	EnergyMax   float64
	EnergyFirst float64
	EnergyLast  float64
	// RelativeDrift is (last-first)/|first|, or 0 when first is 0.
	RelativeDrift float64
}

// Summarize computes the summary of a non-empty dataset.
func Summarize(ds *Dataset) Summary {
	if ds == nil || ds.Len() == 0 {
		return Summary{}
	}

	s := Summary{
		Rows:        ds.Len(),
		TimeStart:   ds.Time[0],
		TimeEnd:     ds.Time[ds.Len()-1],
		EnergyMin:   ds.Energy[0],
		EnergyMax:   ds.Energy[0],
		EnergyFirst: ds.Energy[0],
		EnergyLast:  ds.Energy[ds.Len()-1],
	}
	for _, e := range ds.Energy[1:] {
		s.EnergyMin = math.Min(s.EnergyMin, e)
		s.EnergyMax = math.Max(s.EnergyMax, e)
	}
	if s.EnergyFirst != 0 {
		s.RelativeDrift = (s.EnergyLast - s.EnergyFirst) / math.Abs(s.EnergyFirst)
	}
	return s
}
