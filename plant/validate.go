package plant

import (
	"errors"
	"fmt"
	"strings"
)

// AnalysisType identifies one of the supported analysis methods, each of
// which requires a particular set of tables to be present.
type AnalysisType string

const (
	AnalysisMonteCarloAEP    AnalysisType = "MonteCarloAEP"
	AnalysisTurbineIdeal     AnalysisType = "TurbineLongTermGrossEnergy"
	AnalysisElectricalLosses AnalysisType = "ElectricalLosses"
	AnalysisWakeLosses       AnalysisType = "WakeLosses"
	AnalysisYawMisalignment  AnalysisType = "StaticYawMisalignment"
	AnalysisEYAGap           AnalysisType = "EYAGapAnalysis"
)

// table names used in validation error messages.
const (
	tableScada      = "scada"
	tableMeter      = "meter"
	tableCurtail    = "curtail"
	tableAsset      = "asset"
	tableReanalysis = "reanalysis"
)

// requirements maps each analysis type to the tables it cannot run without.
var requirements = map[AnalysisType][]string{
	AnalysisMonteCarloAEP:    {tableMeter, tableCurtail, tableReanalysis},
	AnalysisTurbineIdeal:     {tableScada, tableReanalysis},
	AnalysisElectricalLosses: {tableScada, tableMeter},
	AnalysisWakeLosses:       {tableScada, tableAsset},
	AnalysisYawMisalignment:  {tableScada},
	AnalysisEYAGap:           {},
}

// Validate checks that the tables required by the given analysis types are
// loaded and internally consistent. All problems are reported in a single
// error.
func (p *Plant) Validate(types ...AnalysisType) error {
	var problems []string

	present := map[string]bool{
		tableScada:      len(p.Scada) > 0,
		tableMeter:      len(p.Meter) > 0,
		tableCurtail:    len(p.Curtail) > 0,
		tableAsset:      len(p.Asset) > 0,
		tableReanalysis: len(p.Reanalysis) > 0,
	}

	for _, at := range types {
		required, ok := requirements[at]
		if !ok {
			problems = append(problems, fmt.Sprintf("unknown analysis type %q", at))
			continue
		}
		for _, table := range required {
			if !present[table] {
				problems = append(problems, fmt.Sprintf("analysis %q requires the %s table", at, table))
			}
		}
	}

	for product, rows := range p.Reanalysis {
		if len(rows) == 0 {
			problems = append(problems, fmt.Sprintf("reanalysis product %q is empty", product))
			continue
		}
		for i := 1; i < len(rows); i++ {
			if rows[i].Time.Before(rows[i-1].Time) {
				problems = append(problems, fmt.Sprintf("reanalysis product %q is not sorted by time", product))
				break
			}
		}
	}

	for i := 1; i < len(p.Meter); i++ {
		if p.Meter[i].Time.Before(p.Meter[i-1].Time) {
			problems = append(problems, "meter table is not sorted by time")
			break
		}
	}

	for _, c := range p.Curtail {
		if c.AvailabilityKWh < 0 || c.CurtailmentKWh < 0 {
			problems = append(problems, "curtail table contains negative energy values")
			break
		}
	}

	if len(problems) == 0 {
		return nil
	}
	return errors.New(strings.Join(problems, "; "))
}
