package dataset

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"math"
	"os"
	"strconv"
	"strings"
)

// Canonical column names.
const (
	ColScenario             = "Scenario"
	ColAlternative          = "Alternative"
	ColCustomerGroup        = "Customer Group"
	ColGroupShare           = "Group Share"
	ColCostShare            = "Cost Share"
	ColPeakShare            = "Peak Share"
	ColCapacityShare        = "Capacity Share"
	ColEnergyShare          = "Energy Share"
	ColElectricityPurchased = "Electricity Purchased"
	ColSimultaneousPeak     = "Simultaneous Peak"
	ColContractedCapacity   = "Contracted Capacity"
	ColLosses               = "Losses"
	ColLossesShare          = "Losses Share"
)

// RequiredColumns lists the columns every input table must carry.
var RequiredColumns = []string{
	ColScenario, ColAlternative, ColCustomerGroup,
	ColGroupShare, ColCostShare, ColPeakShare, ColCapacityShare, ColEnergyShare,
	ColElectricityPurchased, ColSimultaneousPeak, ColContractedCapacity,
}

// columnAliases maps header spellings of the grid simulation export onto
// canonical names.
var columnAliases = map[string]string{
	"customer_group":  ColCustomerGroup,
	"group_share":     ColGroupShare,
	"cost_share":      ColCostShare,
	"peak_share":      ColPeakShare,
	"energy_share":    ColEnergyShare,
	"capacity_share":  ColCapacityShare,
	"energiesumme":    ColElectricityPurchased,
	"aggregiertepglz": ColSimultaneousPeak,
	"aggregiertecap":  ColContractedCapacity,
	"total_losses":    ColLossesShare,
}

// LoadCSV reads an input table from a CSV file.
func LoadCSV(path string) (*Dataset, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open input table: %w", err)
	}
	defer file.Close()
	return ReadCSV(file)
}

// ReadCSV parses an input table. Unknown columns are ignored.
func ReadCSV(r io.Reader) (*Dataset, error) {
	reader := csv.NewReader(r)
	reader.TrimLeadingSpace = true

	header, err := reader.Read()
	if err != nil {
		return nil, fmt.Errorf("read header: %w", err)
	}
	index := mapHeaders(header)
	for _, col := range RequiredColumns {
		if _, ok := index[col]; !ok {
			return nil, &SchemaError{Column: col, Reason: "missing required column"}
		}
	}

	var records []Record
	line := 1
	for {
		line++
		row, err := reader.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("line %d: %w", line, err)
		}
		rec, err := parseRecord(row, index, line)
		if err != nil {
			return nil, err
		}
		records = append(records, rec)
	}
	return New(records)
}

func mapHeaders(header []string) map[string]int {
	canonical := map[string]string{
		strings.ToLower(ColLosses):      ColLosses,
		strings.ToLower(ColLossesShare): ColLossesShare,
	}
	for _, col := range RequiredColumns {
		canonical[strings.ToLower(col)] = col
	}

	index := make(map[string]int, len(header))
	for i, name := range header {
		key := strings.ToLower(strings.TrimSpace(name))
		if col, ok := canonical[key]; ok {
			index[col] = i
		} else if col, ok := columnAliases[key]; ok {
			index[col] = i
		}
	}
	return index
}

func parseRecord(row []string, index map[string]int, line int) (Record, error) {
	num := func(col string) (float64, error) {
		pos := index[col]
		raw := ""
		if pos < len(row) {
			raw = strings.TrimSpace(row[pos])
		}
		v, err := strconv.ParseFloat(raw, 64)
		if err != nil || math.IsNaN(v) || math.IsInf(v, 0) {
			return 0, &SchemaError{Column: col, Line: line, Reason: fmt.Sprintf("not a number: %q", raw)}
		}
		return v, nil
	}
	id := func(col string) (int, error) {
		v, err := num(col)
		if err != nil {
			return 0, err
		}
		if v != math.Trunc(v) {
			return 0, &SchemaError{Column: col, Line: line, Reason: fmt.Sprintf("not an integer: %v", v)}
		}
		return int(v), nil
	}

	var rec Record
	var err error
	if rec.Scenario, err = id(ColScenario); err != nil {
		return rec, err
	}
	if rec.Alternative, err = id(ColAlternative); err != nil {
		return rec, err
	}
	if rec.CustomerGroup, err = id(ColCustomerGroup); err != nil {
		return rec, err
	}

	fields := []struct {
		col string
		dst *float64
	}{
		{ColGroupShare, &rec.GroupShare},
		{ColCostShare, &rec.CostShare},
		{ColPeakShare, &rec.PeakShare},
		{ColCapacityShare, &rec.CapacityShare},
		{ColEnergyShare, &rec.EnergyShare},
		{ColElectricityPurchased, &rec.ElectricityPurchased},
		{ColSimultaneousPeak, &rec.SimultaneousPeak},
		{ColContractedCapacity, &rec.ContractedCapacity},
	}
	for _, f := range fields {
		if *f.dst, err = num(f.col); err != nil {
			return rec, err
		}
	}

	for col, dst := range map[string]**float64{ColLosses: &rec.Losses, ColLossesShare: &rec.LossesShare} {
		pos, ok := index[col]
		if !ok || pos >= len(row) || strings.TrimSpace(row[pos]) == "" {
			continue
		}
		v, err := num(col)
		if err != nil {
			return rec, err
		}
		*dst = &v
	}
	return rec, nil
}
