package gen

import (
	"regexp"
	"sort"
	"strings"
)

// Marker tokens delimiting a preserved block. They may appear inside any
// comment leader ("//", "--", "#"), so generated SQL and Go artifacts
// share one syntax:
//
//	// @preserve:begin custom-1
//	...developer-owned body...
//	// @preserve:end custom-1
//
// The file on disk owns the body of a block; the generator owns the
// position where a block with a given id appears in the fresh skeleton.
const (
	BeginMarker = "@preserve:begin"
	EndMarker   = "@preserve:end"
)

var (
	beginRe = regexp.MustCompile(regexp.QuoteMeta(BeginMarker) + `[ \t]+([A-Za-z0-9._-]+)`)
	endRe   = regexp.MustCompile(regexp.QuoteMeta(EndMarker) + `[ \t]+([A-Za-z0-9._-]+)`)
)

// Merge rewrites freshly generated text so that preserved blocks found in
// the previously written text are carried over verbatim, wherever the
// block id still exists in the new skeleton. A nil existing slice means
// first generation: the generated text is returned unchanged apart from
// newline normalization. Block ids present only in the old text are
// discarded together with their content; that loss is inherent to
// template-driven regeneration and is logged by the orchestrator.
func Merge(generated string, existing []byte) string {
	out, _ := MergeBlocks(generated, existing)
	return out
}

// MergeBlocks is Merge with bookkeeping: it also returns the ids of
// blocks that existed on disk but have no slot in the fresh skeleton
// and were therefore dropped.
func MergeBlocks(generated string, existing []byte) (string, []string) {
	out := normalize(generated)
	if existing == nil {
		return out, nil
	}
	saved := extractBlocks(normalize(string(existing)))
	if len(saved) == 0 {
		return out, nil
	}
	kept := extractBlockIDs(out)
	var orphaned []string
	for id := range saved {
		if _, ok := kept[id]; !ok {
			orphaned = append(orphaned, id)
		}
	}
	sort.Strings(orphaned)
	return applyBlocks(out, saved), orphaned
}

// extractBlockIDs returns the set of complete block ids in text.
func extractBlockIDs(text string) map[string]struct{} {
	ids := make(map[string]struct{})
	for id := range extractBlocks(text) {
		ids[id] = struct{}{}
	}
	return ids
}

// extractBlocks returns the preserved-block bodies of text keyed by id.
// Bodies are trimmed of a single leading blank line and of trailing
// whitespace beyond one newline, keeping diffs stable across runs.
func extractBlocks(text string) map[string]string {
	blocks := make(map[string]string)
	lines := strings.Split(text, "\n")
	for i := 0; i < len(lines); i++ {
		m := beginRe.FindStringSubmatch(lines[i])
		if m == nil {
			continue
		}
		id := m[1]
		for j := i + 1; j < len(lines); j++ {
			em := endRe.FindStringSubmatch(lines[j])
			if em == nil || em[1] != id {
				continue
			}
			blocks[id] = trimBody(strings.Join(lines[i+1:j], "\n"))
			i = j
			break
		}
	}
	return blocks
}

// applyBlocks replaces the bodies of blocks in text whose id has a saved
// body.
func applyBlocks(text string, saved map[string]string) string {
	lines := strings.Split(text, "\n")
	var out []string
	for i := 0; i < len(lines); i++ {
		line := lines[i]
		out = append(out, line)
		m := beginRe.FindStringSubmatch(line)
		if m == nil {
			continue
		}
		id := m[1]
		end := -1
		for j := i + 1; j < len(lines); j++ {
			if em := endRe.FindStringSubmatch(lines[j]); em != nil && em[1] == id {
				end = j
				break
			}
		}
		if end == -1 {
			// Unterminated marker: leave the rest untouched.
			continue
		}
		body, ok := saved[id]
		if !ok {
			body = trimBody(strings.Join(lines[i+1:end], "\n"))
		}
		if body != "" {
			out = append(out, strings.Split(strings.TrimSuffix(body, "\n"), "\n")...)
		}
		out = append(out, lines[end])
		i = end
	}
	return normalize(strings.Join(out, "\n"))
}

// trimBody drops one leading blank line and trailing whitespace beyond a
// single newline. An effectively empty body becomes "".
func trimBody(body string) string {
	body = strings.TrimPrefix(body, "\n")
	body = strings.TrimRight(body, " \t\n")
	if body == "" {
		return ""
	}
	return body + "\n"
}

// normalize converts all line endings to \n and guarantees exactly one
// trailing newline, so byte comparison against the on-disk file decides
// whether a write is necessary.
func normalize(s string) string {
	s = strings.ReplaceAll(s, "\r\n", "\n")
	s = strings.ReplaceAll(s, "\r", "\n")
	s = strings.TrimRight(s, "\n")
	return s + "\n"
}
