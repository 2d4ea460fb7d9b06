package calendar

import "sessioncal/internal/model"

// Scale places event blocks on a day column that represents the day on a
// linear scale. Times are compared as raw HHMM integers, so a span that
// crosses an hour boundary is overstated: 14:30-15:00 measures 70, not 30.
// Existing layouts depend on that, so it is kept.
type Scale struct {
	// Baseline is the HHMM value at the top of the column.
	Baseline int
	// OffsetFactor converts HHMM units to vertical offset.
	OffsetFactor float64
	// ExtentFactor converts HHMM units to block height.
	ExtentFactor float64
}

// DefaultScale is the stock column: 12:00 at the top.
var DefaultScale = Scale{
	Baseline:     1200,
	OffsetFactor: 0.5,
	ExtentFactor: 0.8,
}

// VerticalOffset returns (HHMM(start) - Baseline) * OffsetFactor.
func (sc Scale) VerticalOffset(s model.Session) (float64, error) {
	start, err := model.ParseClock(s.StartTime)
	if err != nil {
		return 0, err
	}
	return float64(start-sc.Baseline) * sc.OffsetFactor, nil
}

// VerticalExtent returns (HHMM(end) - HHMM(start)) * ExtentFactor. An end
// before the start gives a negative extent.
func (sc Scale) VerticalExtent(s model.Session) (float64, error) {
	start, err := model.ParseClock(s.StartTime)
	if err != nil {
		return 0, err
	}
	end, err := model.ParseClock(s.EndTime)
	if err != nil {
		return 0, err
	}
	return float64(end-start) * sc.ExtentFactor, nil
}

// VerticalOffset uses DefaultScale.
func VerticalOffset(s model.Session) (float64, error) {
	return DefaultScale.VerticalOffset(s)
}

// VerticalExtent uses DefaultScale.
func VerticalExtent(s model.Session) (float64, error) {
	return DefaultScale.VerticalExtent(s)
}
