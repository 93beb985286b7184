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

// Package catalog stores component profiles in append-only text files, one YAML flow mapping per record.
// Records are addressed by their position in the file.
package catalog

import (
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"sync"

	"github.com/pkg/errors"
	"gopkg.in/yaml.v3"

	"github.com/openthread/ot-budget/logger"
	"github.com/openthread/ot-budget/types"
)

const (
	SensorsFile          = "sensors.txt"
	MicrocontrollersFile = "microcontrollers.txt"
	RadiosFile           = "radio_interfaces.txt"
)

// Entry is a listed catalog record.
type Entry struct {
	Index  int    `json:"index"`
	Record string `json:"record"`
	Name   string `json:"name"`
}

type Catalog struct {
	dir  string
	lock sync.RWMutex
}

// Open returns the catalog stored in dir, creating the directory if needed.
func Open(dir string) (*Catalog, error) {
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, errors.Wrapf(err, "open catalog %s", dir)
	}
	return &Catalog{dir: dir}, nil
}

func (c *Catalog) Dir() string {
	return c.dir
}

// FileOf returns the catalog file name of a component kind.
func FileOf(kind types.ComponentKind) (string, error) {
	switch kind {
	case types.SensorKind:
		return SensorsFile, nil
	case types.MicrocontrollerKind:
		return MicrocontrollersFile, nil
	case types.RadioKind:
		return RadiosFile, nil
	default:
		return "", types.Invalidf("", "kind", "unknown component kind %q", kind)
	}
}

// ParseKind accepts the singular, plural and short names of a component kind.
func ParseKind(s string) (types.ComponentKind, error) {
	switch strings.ToLower(s) {
	case "sensor", "sensors":
		return types.SensorKind, nil
	case "microcontroller", "microcontrollers", "mcu", "mcus":
		return types.MicrocontrollerKind, nil
	case "radio", "radios", "radio_interface", "radio_interfaces":
		return types.RadioKind, nil
	default:
		return "", types.Invalidf("", "kind", "unknown component kind %q", s)
	}
}

func (c *Catalog) AddSensor(s types.SensorProfile) (int, error) {
	if err := s.Validate(); err != nil {
		return -1, err
	}
	return appendRecord(c, SensorsFile, s)
}

func (c *Catalog) AddMicrocontroller(m types.MicrocontrollerProfile) (int, error) {
	if err := m.Validate(); err != nil {
		return -1, err
	}
	return appendRecord(c, MicrocontrollersFile, m)
}

func (c *Catalog) AddRadio(r types.RadioProfile) (int, error) {
	if err := r.Validate(); err != nil {
		return -1, err
	}
	return appendRecord(c, RadiosFile, r)
}

func (c *Catalog) Sensors() ([]types.SensorProfile, error) {
	return loadRecords[types.SensorProfile](c, SensorsFile)
}

func (c *Catalog) Microcontrollers() ([]types.MicrocontrollerProfile, error) {
	return loadRecords[types.MicrocontrollerProfile](c, MicrocontrollersFile)
}

func (c *Catalog) Radios() ([]types.RadioProfile, error) {
	return loadRecords[types.RadioProfile](c, RadiosFile)
}

// SelectSensors returns the sensors at the given indices, in the order given.
func (c *Catalog) SelectSensors(indices []int) ([]types.SensorProfile, error) {
	all, err := c.Sensors()
	if err != nil {
		return nil, err
	}
	res := make([]types.SensorProfile, 0, len(indices))
	for _, i := range indices {
		s, err := pick(all, i, SensorsFile)
		if err != nil {
			return nil, err
		}
		res = append(res, s)
	}
	return res, nil
}

func (c *Catalog) Microcontroller(index int) (types.MicrocontrollerProfile, error) {
	all, err := c.Microcontrollers()
	if err != nil {
		return types.MicrocontrollerProfile{}, err
	}
	return pick(all, index, MicrocontrollersFile)
}

func (c *Catalog) Radio(index int) (types.RadioProfile, error) {
	all, err := c.Radios()
	if err != nil {
		return types.RadioProfile{}, err
	}
	return pick(all, index, RadiosFile)
}

// List returns the records of a kind with their selection indices.
func (c *Catalog) List(kind types.ComponentKind) ([]Entry, error) {
	file, err := FileOf(kind)
	if err != nil {
		return nil, err
	}
	switch kind {
	case types.SensorKind:
		return listRecords[types.SensorProfile](c, file)
	case types.MicrocontrollerKind:
		return listRecords[types.MicrocontrollerProfile](c, file)
	default:
		return listRecords[types.RadioProfile](c, file)
	}
}

// ParseIndices parses a comma separated list of indices such as "0, 2".
func ParseIndices(s string) ([]int, error) {
	var res []int
	for _, f := range strings.Split(s, ",") {
		f = strings.TrimSpace(f)
		if f == "" {
			continue
		}
		i, err := strconv.Atoi(f)
		if err != nil || i < 0 {
			return nil, types.Invalidf("", "index", "%q is not a valid index", f)
		}
		res = append(res, i)
	}
	if len(res) == 0 {
		return nil, types.Invalidf("", "index", "no index given")
	}
	return res, nil
}

type named interface {
	types.SensorProfile | types.MicrocontrollerProfile | types.RadioProfile
}

func nameOf(v interface{}) string {
	switch p := v.(type) {
	case types.SensorProfile:
		return p.Name
	case types.MicrocontrollerProfile:
		return p.Name
	case types.RadioProfile:
		return p.Name
	default:
		return ""
	}
}

func pick[T named](all []T, index int, file string) (T, error) {
	var zero T
	if index < 0 || index >= len(all) {
		return zero, types.Invalidf(file, "index", "%d out of range, %d records", index, len(all))
	}
	return all[index], nil
}

func listRecords[T named](c *Catalog, file string) ([]Entry, error) {
	all, err := loadRecords[T](c, file)
	if err != nil {
		return nil, err
	}
	entries := make([]Entry, 0, len(all))
	for i, r := range all {
		line, err := encodeRecord(r)
		if err != nil {
			return nil, err
		}
		entries = append(entries, Entry{Index: i, Record: line, Name: nameOf(r)})
	}
	return entries, nil
}

// encodeRecord renders v as a single YAML flow mapping without trailing newline.
func encodeRecord(v interface{}) (string, error) {
	var node yaml.Node
	if err := node.Encode(v); err != nil {
		return "", errors.Wrap(err, "encode record")
	}
	node.Style = yaml.FlowStyle
	data, err := yaml.Marshal(&node)
	if err != nil {
		return "", errors.Wrap(err, "encode record")
	}
	lines := strings.Split(strings.TrimSpace(string(data)), "\n")
	for i := range lines {
		lines[i] = strings.TrimSpace(lines[i])
	}
	return strings.Join(lines, " "), nil
}

// appendRecord appends v as a YAML sequence item, so the whole file stays a valid YAML list.
func appendRecord[T named](c *Catalog, file string, v T) (int, error) {
	line, err := encodeRecord(v)
	if err != nil {
		return -1, err
	}

	c.lock.Lock()
	defer c.lock.Unlock()

	existing, err := loadRecordsLocked[T](c, file)
	if err != nil {
		return -1, err
	}

	path := filepath.Join(c.dir, file)
	f, err := os.OpenFile(path, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0644)
	if err != nil {
		return -1, errors.Wrapf(err, "open %s", path)
	}
	if _, err = f.WriteString("- " + line + "\n"); err != nil {
		_ = f.Close()
		return -1, errors.Wrapf(err, "append to %s", path)
	}
	if err = f.Close(); err != nil {
		return -1, err
	}
	logger.Debugf("catalog %s: added record %d: %s", file, len(existing), line)
	return len(existing), nil
}

func loadRecords[T named](c *Catalog, file string) ([]T, error) {
	c.lock.RLock()
	defer c.lock.RUnlock()
	return loadRecordsLocked[T](c, file)
}

func loadRecordsLocked[T named](c *Catalog, file string) ([]T, error) {
	path := filepath.Join(c.dir, file)
	data, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		return nil, nil
	} else if err != nil {
		return nil, errors.Wrapf(err, "read %s", path)
	}

	var records []T
	if err = yaml.Unmarshal(data, &records); err != nil {
		return nil, errors.Wrapf(err, "parse %s", path)
	}
	return records, nil
}
