// Package dataset is the fixed registry of the eight series the aggregator
// fetches, and the rules derived from it.
package dataset

import (
	"fmt"

	"macroagg/internal/table"
)

// SourceKind selects the adapter that fetches a descriptor.
type SourceKind int

const (
	File SourceKind = iota + 1
	JSONAPI
	XMLAPI
)

func (k SourceKind) String() string {
	switch k {
	case File:
		return "file"
	case JSONAPI:
		return "json_api"
	case XMLAPI:
		return "xml_api"
	default:
		return fmt.Sprintf("kind(%d)", int(k))
	}
}

// QuarterLayout marks a date column that already holds quarter labels.
const QuarterLayout = "YYYY-Qq"

// QuarterColumn is the join key produced by normalization.
const QuarterColumn = "quarter"

// QuarterlyAverageSpec tells the normalizer how to bucket one raw table.
type QuarterlyAverageSpec struct {
	DateColumn   string
	TargetColumn string
	OutputAlias  string
	// DateLayout is a Go time layout, or QuarterLayout.
	DateLayout string
}

// Descriptor describes one series. Descriptors are values; nothing mutates
// them after Registry builds them.
type Descriptor struct {
	Name                     string
	Kind                     SourceKind
	Identifier               string
	RequiresQuarterlyAverage bool
	Quarterly                *QuarterlyAverageSpec

	// Metric is the canonical column name after unification. Empty keeps
	// the normalized column name.
	Metric string
	// CurrencyDenominated marks metrics reported in EUR.
	CurrencyDenominated bool
	// Output is the column name in the exported wide table.
	Output string
}

// MetricColumn is the value column after unification: Metric when set,
// else the normalized alias, else the raw adapter column.
func (d Descriptor) MetricColumn() string {
	if d.Metric != "" {
		return d.Metric
	}
	if d.Quarterly != nil {
		return d.Quarterly.OutputAlias
	}
	return "value"
}

// ConvertedMetric is the column the currency converter produces.
func (d Descriptor) ConvertedMetric() string {
	return d.MetricColumn() + "_converted"
}

// Dataset pairs a descriptor with the table of one pipeline stage.
type Dataset struct {
	Descriptor Descriptor
	Table      *table.Table
}

func (d Dataset) Name() string { return d.Descriptor.Name }

// Dataset names.
const (
	FXRates           = "fx_rates"
	SP500             = "sp500"
	USGDP             = "us_gdp"
	USTotalPublicDebt = "us_total_public_debt"
	USInflation       = "us_inflation"
	EUGovernmentDebt  = "eu_government_debt"
	EUGDP             = "eu_gdp"
	EUInflation       = "eu_inflation"
)

// Wide-table column names handed to the sinks.
const (
	ColFXRate      = "fx_rate_eur_to_usd"
	ColSP500       = "sp500_usd"
	ColUSGDP       = "us_gdp_usd_billions"
	ColUSTotalDebt = "us_total_debt_usd_millions"
	ColUSInflation = "us_inflation_perc"
	ColEUInflation = "eu_inflation_perc"
	ColEUGovDebt   = "eu_government_debt_usd_millions"
	ColEUGDP       = "eu_gdp_usd_millions"
)

const fredDateLayout = "2006-01-02"

func fred(name, series, alias, metric, output string) Descriptor {
	return Descriptor{
		Name:                     name,
		Kind:                     JSONAPI,
		Identifier:               series,
		RequiresQuarterlyAverage: true,
		Quarterly: &QuarterlyAverageSpec{
			DateColumn:   "date",
			TargetColumn: "value",
			OutputAlias:  alias,
			DateLayout:   fredDateLayout,
		},
		Metric: metric,
		Output: output,
	}
}

// Registry returns the eight descriptors in their fixed order. Each call
// returns a fresh slice.
func Registry() []Descriptor {
	return []Descriptor{
		{
			Name:                     FXRates,
			Kind:                     File,
			Identifier:               "csv_data/DEXUSEU.csv",
			RequiresQuarterlyAverage: true,
			Quarterly: &QuarterlyAverageSpec{
				DateColumn:   "observation_date",
				TargetColumn: "DEXUSEU",
				OutputAlias:  "avg_fx_rate",
				DateLayout:   fredDateLayout,
			},
			Metric: "eur_to_usd",
			Output: ColFXRate,
		},
		fred(SP500, "SP500", "sp500_usd", "sp500_usd", ColSP500),
		fred(USGDP, "GDP", "us_gdp_usd", "us_gdp_usd", ColUSGDP),
		fred(USTotalPublicDebt, "GFDEBTN", "us_total_debt_usd", "us_total_debt_usd", ColUSTotalDebt),
		fred(USInflation, "CORESTICKM159SFRBATL", "us_inflation_usd", "us_inflation", ColUSInflation),
		{
			Name:                EUGovernmentDebt,
			Kind:                XMLAPI,
			Identifier:          "GFS/Q.N.I9.W0.S13.S1.C.L.LE.GD.T._Z.XDC._T.F.V.N._T",
			Metric:              "eu_government_debt",
			CurrencyDenominated: true,
			Output:              ColEUGovDebt,
		},
		{
			Name:                EUGDP,
			Kind:                XMLAPI,
			Identifier:          "MNA/Q.Y.I9.W2.S1.S1.B.B1GQ._Z._Z._Z.EUR.LR.N",
			Metric:              "eu_gdp",
			CurrencyDenominated: true,
			Output:              ColEUGDP,
		},
		{
			Name:                     EUInflation,
			Kind:                     XMLAPI,
			Identifier:               "ICP/M.U2.N.XEF000.4.ANR",
			RequiresQuarterlyAverage: true,
			Quarterly: &QuarterlyAverageSpec{
				DateColumn:   QuarterColumn,
				TargetColumn: "value",
				OutputAlias:  "value",
				DateLayout:   "2006-01",
			},
			Metric: "eu_inflation",
			Output: ColEUInflation,
		},
	}
}

// Lookup finds a registry descriptor by name.
func Lookup(name string) (Descriptor, bool) {
	for _, d := range Registry() {
		if d.Name == name {
			return d, true
		}
	}
	return Descriptor{}, false
}

// RenameRules maps dataset name to canonical metric name for reg.
func RenameRules(reg []Descriptor) map[string]string {
	rules := make(map[string]string, len(reg))
	for _, d := range reg {
		if d.Metric != "" {
			rules[d.Name] = d.Metric
		}
	}
	return rules
}

// OutputColumns is the exact column order of the exported wide table.
func OutputColumns() []string {
	return []string{
		QuarterColumn,
		ColFXRate,
		ColSP500,
		ColUSGDP,
		ColUSTotalDebt,
		ColUSInflation,
		ColEUInflation,
		ColEUGovDebt,
		ColEUGDP,
	}
}

// JoinedColumn is the metric column a descriptor contributes to the joined
// table, before the output rename.
func (d Descriptor) JoinedColumn() string {
	if d.CurrencyDenominated {
		return d.ConvertedMetric()
	}
	return d.MetricColumn()
}
