// Copyright (c) 2024, The OTNS Authors.
// All rights reserved.
//
// Redistribution and use in source and binary forms, with or without
// modification, are permitted provided that the following conditions are met:
// 1. Redistributions of source code must retain the above copyright
//    notice, this list of conditions and the following disclaimer.
// 2. Redistributions in binary form must reproduce the above copyright
//    notice, this list of conditions and the following disclaimer in the
//    documentation and/or other materials provided with the distribution.
// 3. Neither the name of the copyright holder nor the
//    names of its contributors may be used to endorse or promote products
//    derived from this software without specific prior written permission.
//
// THIS SOFTWARE IS PROVIDED BY THE COPYRIGHT HOLDERS AND CONTRIBUTORS "AS IS"
// AND ANY EXPRESS OR IMPLIED WARRANTIES, INCLUDING, BUT NOT LIMITED TO, THE
// IMPLIED WARRANTIES OF MERCHANTABILITY AND FITNESS FOR A PARTICULAR PURPOSE
// ARE DISCLAIMED. IN NO EVENT SHALL THE COPYRIGHT HOLDER OR CONTRIBUTORS BE
// LIABLE FOR ANY DIRECT, INDIRECT, INCIDENTAL, SPECIAL, EXEMPLARY, OR
// CONSEQUENTIAL DAMAGES (INCLUDING, BUT NOT LIMITED TO, PROCUREMENT OF
// SUBSTITUTE GOODS OR SERVICES; LOSS OF USE, DATA, OR PROFITS; OR BUSINESS
// INTERRUPTION) HOWEVER CAUSED AND ON ANY THEORY OF LIABILITY, WHETHER IN
// CONTRACT, STRICT LIABILITY, OR TORT (INCLUDING NEGLIGENCE OR OTHERWISE)
// ARISING IN ANY WAY OUT OF THE USE OF THIS SOFTWARE, EVEN IF ADVISED OF THE
// POSSIBILITY OF SUCH DAMAGE.

package report

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/pkg/errors"
	"gopkg.in/yaml.v3"

	"github.com/openthread/ot-budget/logger"
)

// Format is an output format of a Report.
type Format string

const (
	TableFormat Format = "table"
	CsvFormat   Format = "csv"
	JsonFormat  Format = "json"
	YamlFormat  Format = "yaml"
)

// ParseFormat parses a format name; the empty string selects TableFormat.
func ParseFormat(s string) (Format, error) {
	switch Format(strings.ToLower(s)) {
	case "", TableFormat, "text", "txt":
		return TableFormat, nil
	case CsvFormat:
		return CsvFormat, nil
	case JsonFormat:
		return JsonFormat, nil
	case YamlFormat, "yml":
		return YamlFormat, nil
	default:
		return "", errors.Errorf("unknown report format: %s", s)
	}
}

// Write renders the report to w in the given format.
func (r *Report) Write(w io.Writer, format Format) error {
	switch format {
	case TableFormat:
		return r.WriteTable(w)
	case CsvFormat:
		return r.WriteCsv(w)
	case JsonFormat:
		return r.WriteJson(w)
	case YamlFormat:
		return r.WriteYaml(w)
	default:
		return errors.Errorf("unknown report format: %s", format)
	}
}

// WriteTable writes the tab-separated summary table.
func (r *Report) WriteTable(w io.Writer) error {
	var buf bytes.Buffer
	fmt.Fprintf(&buf, "Duration of the observation window (in seconds): %d, resolution: %d samples/s\n",
		r.Duration, r.Resolution)
	fmt.Fprintf(&buf, "Component\tCharge (mAh)\tMax current (mA)\tAvg current (mA)\tEnergy (mWh)\tMax power (mW)\tAvg power (mW)\n")
	for _, c := range r.Components {
		fmt.Fprintf(&buf, "%s\t%f\t%f\t%f\t%f\t%f\t%f\n",
			c.Name, c.ChargeMAh, c.MaxCurrent, c.AvgCurrent, c.EnergyMWh, c.MaxPower, c.AvgPower)
	}
	fmt.Fprintf(&buf, "\nGroup\tActive (mAs)\tInactive (mAs)\tActive share (%%)\n")
	for _, g := range r.Groups {
		fmt.Fprintf(&buf, "%s\t%f\t%f\t%.2f\n", g.Group, g.ActiveCharge, g.InactiveCharge, g.ActiveShare*100)
	}
	fmt.Fprintf(&buf, "\nTotal energy consumption: %f mAs, %f mWs\n", r.Totals.Charge, r.Totals.Energy)
	_, err := w.Write(buf.Bytes())
	return err
}

// WriteCsv writes the per-slot current of every component and the device total.
func (r *Report) WriteCsv(w io.Writer) error {
	if r.Series == nil {
		return errors.New("report has no time series")
	}
	var buf bytes.Buffer
	// RFC 4180 CSV file: no leading or trailing spaces in header field names
	header := []string{"timeSec"}
	for _, c := range r.Series.Components {
		header = append(header, csvField(c.Name))
	}
	header = append(header, "total")
	buf.WriteString(strings.Join(header, ",") + "\n")

	total := r.Series.Total()
	for i, t := range r.Series.Time {
		fmt.Fprintf(&buf, "%.6f", t)
		for _, c := range r.Series.Components {
			fmt.Fprintf(&buf, ",%g", c.Current[i])
		}
		fmt.Fprintf(&buf, ",%g\n", total[i])
	}
	_, err := w.Write(buf.Bytes())
	return err
}

func csvField(s string) string {
	if strings.ContainsAny(s, ",\"\n") {
		return "\"" + strings.ReplaceAll(s, "\"", "\"\"") + "\""
	}
	return s
}

func (r *Report) WriteJson(w io.Writer) error {
	data, err := json.MarshalIndent(r, "", "    ")
	if err != nil {
		return errors.Wrap(err, "marshal report")
	}
	_, err = w.Write(append(data, '\n'))
	return err
}

func (r *Report) WriteYaml(w io.Writer) error {
	enc := yaml.NewEncoder(w)
	enc.SetIndent(2)
	if err := enc.Encode(r); err != nil {
		return errors.Wrap(err, "marshal report")
	}
	return enc.Close()
}

// SaveToDir writes <title>.txt, <title>_timeseries.csv and <title>.json into dir, creating it if needed.
// It returns the paths written.
func (r *Report) SaveToDir(dir string) ([]string, error) {
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, errors.Wrapf(err, "create %s", dir)
	}

	outputs := []struct {
		suffix string
		format Format
	}{
		{".txt", TableFormat},
		{"_timeseries.csv", CsvFormat},
		{".json", JsonFormat},
	}

	var paths []string
	for _, o := range outputs {
		path := filepath.Join(dir, r.Title+o.suffix)
		if err := r.saveFile(path, o.format); err != nil {
			return paths, err
		}
		logger.Debugf("report written to %s", path)
		paths = append(paths, path)
	}
	return paths, nil
}

func (r *Report) saveFile(path string, format Format) error {
	f, err := os.Create(path)
	if err != nil {
		return errors.Wrapf(err, "create %s", path)
	}
	if err = r.Write(f, format); err != nil {
		_ = f.Close()
		return errors.Wrapf(err, "write %s", path)
	}
	return f.Close()
}
