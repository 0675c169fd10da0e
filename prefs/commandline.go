// This file is part of rerecord.
//
// rerecord is free software: you can redistribute it and/or modify
// it under the terms of the GNU General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
//
// rerecord is distributed in the hope that it will be useful,
// but WITHOUT ANY WARRANTY; without even the implied warranty of
// MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE.  See the
// GNU General Public License for more details.
//
// You should have received a copy of the GNU General Public License
// along with rerecord.  If not, see <https://www.gnu.org/licenses/>.

package prefs

import (
	"sort"
	"strings"
	"sync"
)

// commandLineStack holds groups of preference overrides supplied on the
// command line (one group per "-prefs key::value;key::value" argument),
// most recently pushed group on top. This lets a host CLI temporarily
// override settings for the duration of a single command without
// disturbing the on-disk preferences.
var (
	clMu    sync.Mutex
	clStack []string
)

// normaliseCommandLineGroup parses a ';'-separated list of "key::value"
// tokens, discards tokens that aren't valid key/value pairs, and returns
// the survivors trimmed and sorted by key, joined with "; ".
func normaliseCommandLineGroup(s string) string {
	var valid []string

	for _, tok := range strings.Split(s, ";") {
		tok = strings.TrimSpace(tok)
		parts := strings.SplitN(tok, "::", 2)
		if len(parts) != 2 {
			continue
		}
		key := strings.TrimSpace(parts[0])
		val := strings.TrimSpace(parts[1])
		valid = append(valid, key+"::"+val)
	}

	sort.Strings(valid)
	return strings.Join(valid, "; ")
}

// PushCommandLineStack normalises s and pushes it as a new group.
func PushCommandLineStack(s string) {
	clMu.Lock()
	defer clMu.Unlock()
	clStack = append(clStack, normaliseCommandLineGroup(s))
}

// PopCommandLineStack removes and returns the top group, or "" if the
// stack is empty.
func PopCommandLineStack() string {
	clMu.Lock()
	defer clMu.Unlock()

	if len(clStack) == 0 {
		return ""
	}

	top := clStack[len(clStack)-1]
	clStack = clStack[:len(clStack)-1]
	return top
}

// GetCommandLinePref looks up key in the top group without popping it.
func GetCommandLinePref(key string) (bool, string) {
	clMu.Lock()
	defer clMu.Unlock()

	if len(clStack) == 0 {
		return false, ""
	}

	top := clStack[len(clStack)-1]
	if top == "" {
		return false, ""
	}

	for _, tok := range strings.Split(top, "; ") {
		parts := strings.SplitN(tok, "::", 2)
		if len(parts) == 2 && parts[0] == key {
			return true, parts[1]
		}
	}

	return false, ""
}
