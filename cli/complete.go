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
	"github.com/chzyer/readline"
)

func newCompleter() *readline.PrefixCompleter {
	formats := []readline.PrefixCompleterInterface{
		readline.PcItem("table"), readline.PcItem("csv"), readline.PcItem("json"), readline.PcItem("yaml"),
	}
	levels := []readline.PrefixCompleterInterface{
		readline.PcItem("trace"), readline.PcItem("debug"), readline.PcItem("info"), readline.PcItem("warn"),
		readline.PcItem("error"), readline.PcItem("off"),
	}
	return readline.NewPrefixCompleter(
		readline.PcItem("catalog", readline.PcItem("sensors"), readline.PcItem("mcus"), readline.PcItem("radios")),
		readline.PcItem("clear"),
		readline.PcItem("duration"),
		readline.PcItem("exit"),
		readline.PcItem("export"),
		readline.PcItem("help"),
		readline.PcItem("load"),
		readline.PcItem("log", levels...),
		readline.PcItem("mcu"),
		readline.PcItem("publish"),
		readline.PcItem("radio"),
		readline.PcItem("report", formats...),
		readline.PcItem("resolution"),
		readline.PcItem("run"),
		readline.PcItem("save"),
		readline.PcItem("select", readline.PcItem("sensors"), readline.PcItem("mcu"), readline.PcItem("radio")),
		readline.PcItem("sensor"),
		readline.PcItem("show"),
		readline.PcItem("title"),
	)
}
