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
	_ "embed"
	"fmt"
	"os"
	"sort"
	"strings"

	"github.com/mitchellh/go-wordwrap"
	"golang.org/x/term"

	"github.com/openthread/ot-budget/logger"
)

const (
	defaultTermWidth = 80
	helpIndent       = "  "
	topicPrefix      = "### "
)

//go:embed README.md
var cliHelpFile string

// helpTopic is the help text of one command, taken from a "### <command>" section of README.md.
type helpTopic struct {
	summary string
	lines   []string
}

// Help renders the command reference embedded from README.md.
type Help struct {
	topics map[string]*helpTopic
	names  []string
}

func newHelp() Help {
	h := Help{topics: make(map[string]*helpTopic)}
	h.load(cliHelpFile)
	return h
}

// load splits the markdown reference into topics. Code fences become "Definition:" and "Example:" blocks.
func (help *Help) load(markdown string) {
	var topic *helpTopic
	inBlock := false
	for _, raw := range strings.Split(markdown, "\n") {
		line := strings.TrimSpace(raw)
		if strings.HasPrefix(line, topicPrefix) {
			name := strings.TrimSpace(strings.TrimPrefix(line, topicPrefix))
			topic = &helpTopic{}
			help.topics[name] = topic
			help.names = append(help.names, name)
			inBlock = false
			continue
		}
		if topic == nil || line == "" {
			continue
		}

		switch line {
		case "```shell":
			topic.lines = append(topic.lines, "", "Definition:")
			inBlock = true
		case "```bash":
			topic.lines = append(topic.lines, "", "Example:")
			inBlock = true
		case "```":
			inBlock = false
		default:
			if inBlock {
				topic.lines = append(topic.lines, helpIndent+line)
				continue
			}
			line = strings.ReplaceAll(line, "\\", "")
			if topic.summary == "" {
				topic.summary = firstSentence(line)
			}
			topic.lines = append(topic.lines, line)
		}
	}
	sort.Strings(help.names)
}

func firstSentence(s string) string {
	if idx := strings.Index(s, "."); idx > 0 {
		return s[:idx+1]
	}
	return s
}

// width returns the current terminal width, or defaultTermWidth when stdout is not a terminal.
func (help *Help) width() uint {
	fd := int(os.Stdout.Fd())
	if !term.IsTerminal(fd) {
		return defaultTermWidth
	}
	width, _, err := term.GetSize(fd)
	if err != nil || width <= 0 {
		logger.Warnf("could not get terminal size: %v", err)
		return defaultTermWidth
	}
	return uint(width)
}

// outputGeneralHelp lists every command with its one-line summary.
func (help *Help) outputGeneralHelp() string {
	var sb strings.Builder
	for _, name := range help.names {
		fmt.Fprintf(&sb, "%-15s %s\n", name, help.topics[name].summary)
	}
	sb.WriteString(wordwrap.WrapString("\nFor detailed help per command, use: 'help <command>'\n", help.width()))
	return sb.String()
}

// outputCommandHelp returns the full help of one command, wrapped to the terminal width.
func (help *Help) outputCommandHelp(command string) string {
	topic, ok := help.topics[command]
	if !ok {
		return fmt.Sprintf("%s\n%s(Non-existent command.)\n", command, helpIndent)
	}

	width := help.width() - uint(len(helpIndent))
	var sb strings.Builder
	sb.WriteString(command + "\n")
	for _, line := range topic.lines {
		for _, wrapped := range strings.Split(wordwrap.WrapString(line, width), "\n") {
			sb.WriteString(helpIndent + wrapped + "\n")
		}
	}
	return sb.String()
}
