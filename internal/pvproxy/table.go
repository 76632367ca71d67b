package pvproxy

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"
	"time"
)

// Table holds the relative reduction of the charged quantity per
// configuration and tariff.
type Table map[Configuration]map[Tariff]float64

// Get returns one reduction.
func (t Table) Get(c Configuration, tariff Tariff) (float64, error) {
	v, ok := t[c][tariff]
	if !ok {
		return 0, fmt.Errorf("no PV proxy value for %s under %s", c, tariff)
	}
	return v, nil
}

const (
	colConfiguration = "Configuration"
	colAlternative   = "Alternative"
	colReduction     = "Reduction"
)

// WriteCSV writes the table in long form, one row per configuration and
// tariff.
func (t Table) WriteCSV(w io.Writer) error {
	cw := csv.NewWriter(w)
	if err := cw.Write([]string{colConfiguration, colAlternative, colReduction}); err != nil {
		return err
	}
	for _, c := range Configurations {
		for _, tariff := range Tariffs {
			v, ok := t[c][tariff]
			if !ok {
				continue
			}
			row := []string{string(c), strconv.Itoa(int(tariff)), strconv.FormatFloat(v, 'g', -1, 64)}
			if err := cw.Write(row); err != nil {
				return err
			}
		}
	}
	cw.Flush()
	return cw.Error()
}

// ReadTableCSV parses a table written by WriteCSV.
func ReadTableCSV(r io.Reader) (Table, error) {
	cr := csv.NewReader(r)
	header, err := cr.Read()
	if err != nil {
		return nil, fmt.Errorf("read PV proxy header: %w", err)
	}
	idx := map[string]int{}
	for i, h := range header {
		idx[strings.TrimSpace(h)] = i
	}
	for _, col := range []string{colConfiguration, colAlternative, colReduction} {
		if _, ok := idx[col]; !ok {
			return nil, fmt.Errorf("PV proxy table: missing column %q", col)
		}
	}

	known := map[Configuration]bool{}
	for _, c := range Configurations {
		known[c] = true
	}

	table := Table{}
	for line := 2; ; line++ {
		row, err := cr.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("PV proxy table line %d: %w", line, err)
		}
		c := Configuration(strings.TrimSpace(row[idx[colConfiguration]]))
		if !known[c] {
			return nil, fmt.Errorf("PV proxy table line %d: unknown configuration %q", line, c)
		}
		alt, err := strconv.Atoi(strings.TrimSpace(row[idx[colAlternative]]))
		if err != nil {
			return nil, fmt.Errorf("PV proxy table line %d: alternative: %w", line, err)
		}
		v, err := strconv.ParseFloat(strings.TrimSpace(row[idx[colReduction]]), 64)
		if err != nil {
			return nil, fmt.Errorf("PV proxy table line %d: reduction: %w", line, err)
		}
		if table[c] == nil {
			table[c] = map[Tariff]float64{}
		}
		table[c][Tariff(alt)] = v
	}
	return table, nil
}

// LoadTable reads a PV proxy table from a CSV file.
func LoadTable(path string) (Table, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open PV proxy table: %w", err)
	}
	defer f.Close()
	return ReadTableCSV(f)
}

// ReadProfilesCSV reads household, pv and ev columns (kW). Missing pv or ev
// columns are read as zero.
func ReadProfilesCSV(r io.Reader, start time.Time, step time.Duration) (Profiles, error) {
	cr := csv.NewReader(r)
	header, err := cr.Read()
	if err != nil {
		return Profiles{}, fmt.Errorf("read profile header: %w", err)
	}
	idx := map[string]int{}
	for i, h := range header {
		idx[strings.ToLower(strings.TrimSpace(h))] = i
	}
	if _, ok := idx["household"]; !ok {
		return Profiles{}, fmt.Errorf("profiles: missing column %q", "household")
	}

	p := Profiles{Start: start, Step: step}
	cell := func(row []string, col string, line int) (float64, error) {
		i, ok := idx[col]
		if !ok {
			return 0, nil
		}
		v, err := strconv.ParseFloat(strings.TrimSpace(row[i]), 64)
		if err != nil {
			return 0, fmt.Errorf("profiles line %d column %s: %w", line, col, err)
		}
		return v, nil
	}
	for line := 2; ; line++ {
		row, err := cr.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return Profiles{}, fmt.Errorf("profiles line %d: %w", line, err)
		}
		h, err := cell(row, "household", line)
		if err != nil {
			return Profiles{}, err
		}
		pv, err := cell(row, "pv", line)
		if err != nil {
			return Profiles{}, err
		}
		ev, err := cell(row, "ev", line)
		if err != nil {
			return Profiles{}, err
		}
		p.Household = append(p.Household, h)
		p.PV = append(p.PV, pv)
		p.EV = append(p.EV, ev)
	}
	return p, nil
}

// LoadProfiles reads load profiles from a CSV file.
func LoadProfiles(path string, start time.Time, step time.Duration) (Profiles, error) {
	f, err := os.Open(path)
	if err != nil {
		return Profiles{}, fmt.Errorf("open profiles: %w", err)
	}
	defer f.Close()
	return ReadProfilesCSV(f, start, step)
}
