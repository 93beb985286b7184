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

package cli

import (
	"strconv"
	"strings"

	"github.com/alecthomas/participle"
)

// noinspection GoStructTag
type Command struct {
	Catalog    *CatalogCmd    `  @@` //nolint
	Clear      *ClearCmd      `| @@` //nolint
	Duration   *DurationCmd   `| @@` //nolint
	Exit       *ExitCmd       `| @@` //nolint
	Export     *ExportCmd     `| @@` //nolint
	Help       *HelpCmd       `| @@` //nolint
	Load       *LoadCmd       `| @@` //nolint
	LogLevel   *LogLevelCmd   `| @@` //nolint
	Mcu        *McuCmd        `| @@` //nolint
	Publish    *PublishCmd    `| @@` //nolint
	Radio      *RadioCmd      `| @@` //nolint
	Report     *ReportCmd     `| @@` //nolint
	Resolution *ResolutionCmd `| @@` //nolint
	Run        *RunCmd        `| @@` //nolint
	Save       *SaveCmd       `| @@` //nolint
	Select     *SelectCmd     `| @@` //nolint
	Sensor     *SensorCmd     `| @@` //nolint
	Show       *ShowCmd       `| @@` //nolint
	Title      *TitleCmd      `| @@` //nolint
}

// noinspection GoStructTag
type NoSaveFlag struct {
	Dummy struct{} `"nosave"` //nolint
}

// noinspection GoStructTag
type SensorCmd struct {
	Cmd          struct{}    `"sensor"`      //nolint
	Name         string      `@String`       //nolint
	Voltage      float64     `(@Int|@Float)` //nolint
	Active       float64     `(@Int|@Float)` //nolint
	Inactive     float64     `(@Int|@Float)` //nolint
	SamplingRate float64     `(@Int|@Float)` //nolint
	ActiveTime   float64     `(@Int|@Float)` //nolint
	DataVolume   float64     `(@Int|@Float)` //nolint
	NoSave       *NoSaveFlag `[ @@ ]`        //nolint
}

// noinspection GoStructTag
type McuCmd struct {
	Cmd        struct{}    `"mcu"`         //nolint
	Name       string      `@String`       //nolint
	Voltage    float64     `(@Int|@Float)` //nolint
	Active     float64     `(@Int|@Float)` //nolint
	LightSleep float64     `(@Int|@Float)` //nolint
	DeepSleep  float64     `(@Int|@Float)` //nolint
	NoSave     *NoSaveFlag `[ @@ ]`        //nolint
}

// noinspection GoStructTag
type RadioCmd struct {
	Cmd         struct{}    `"radio"`       //nolint
	Name        string      `@String`       //nolint
	Voltage     float64     `(@Int|@Float)` //nolint
	Transmit    float64     `(@Int|@Float)` //nolint
	Receive     float64     `(@Int|@Float)` //nolint
	Inactive    float64     `(@Int|@Float)` //nolint
	Datarate    float64     `(@Int|@Float)` //nolint
	RefreshRate float64     `(@Int|@Float)` //nolint
	NoSave      *NoSaveFlag `[ @@ ]`        //nolint
}

// noinspection GoStructTag
type CatalogCmd struct {
	Cmd  struct{} `"catalog"`                                                 //nolint
	Kind string   `[ @( "sensors"|"sensor"|"mcus"|"mcu"|"radios"|"radio" ) ]` //nolint
}

// noinspection GoStructTag
type IndexList struct {
	Indices []int `@Int ( "," @Int )*` //nolint
}

// noinspection GoStructTag
type SelectCmd struct {
	Cmd     struct{}   `"select"`         //nolint
	Sensors *IndexList `( "sensors" @@`   //nolint
	Mcu     *int       `| "mcu" @Int`     //nolint
	Radio   *int       `| "radio" @Int )` //nolint
}

// noinspection GoStructTag
type DurationCmd struct {
	Cmd   struct{} `"duration"` //nolint
	Value *int     `[ @Int ]`   //nolint
}

// noinspection GoStructTag
type ResolutionCmd struct {
	Cmd   struct{} `"resolution"` //nolint
	Value *int     `[ @Int ]`     //nolint
}

// noinspection GoStructTag
type TitleCmd struct {
	Cmd   struct{} `"title"`     //nolint
	Title *string  `[ @String ]` //nolint
}

// noinspection GoStructTag
type LoadCmd struct {
	Cmd  struct{} `"load"`  //nolint
	Path string   `@String` //nolint
}

// noinspection GoStructTag
type SaveCmd struct {
	Cmd  struct{} `"save"`  //nolint
	Path string   `@String` //nolint
}

// noinspection GoStructTag
type RunCmd struct {
	Cmd struct{} `"run"` //nolint
}

// noinspection GoStructTag
type ReportCmd struct {
	Cmd    struct{} `"report"`                             //nolint
	Format string   `[ @( "table"|"csv"|"json"|"yaml" ) ]` //nolint
}

// noinspection GoStructTag
type ExportCmd struct {
	Cmd  struct{} `"export"`    //nolint
	Name string   `[ @String ]` //nolint
}

// noinspection GoStructTag
type PublishCmd struct {
	Cmd struct{} `"publish"` //nolint
}

// noinspection GoStructTag
type ShowCmd struct {
	Cmd struct{} `"show"` //nolint
}

// noinspection GoStructTag
type ClearCmd struct {
	Cmd struct{} `"clear"` //nolint
}

// noinspection GoStructTag
type LogLevelCmd struct {
	Cmd   struct{} `"log"`                                                                    //nolint
	Level string   `[ @( "trace"|"debug"|"info"|"warn"|"error"|"off"|"T"|"D"|"I"|"W"|"E" ) ]` //nolint
}

// noinspection GoStructTag
type HelpCmd struct {
	Cmd       struct{} `"help"`       //nolint
	HelpTopic string   `[ (@Ident) ]` //nolint
}

// noinspection GoStructTag
type ExitCmd struct {
	Cmd struct{} `"exit"` //nolint
}

var (
	commandParser = participle.MustBuild(&Command{})
)

func parseBytes(b []byte, cmd *Command) error {
	return commandParser.ParseBytes(b, cmd)
}

// unquote strips the quotes of a captured string literal, if still present.
func unquote(s string) string {
	if len(s) >= 2 && strings.HasPrefix(s, "\"") && strings.HasSuffix(s, "\"") {
		if u, err := strconv.Unquote(s); err == nil {
			return u
		}
		return s[1 : len(s)-1]
	}
	return s
}
