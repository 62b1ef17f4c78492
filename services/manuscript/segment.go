// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

package manuscript

import (
	"regexp"
	"strings"
	"unicode"
	"unicode/utf8"
)

// =============================================================================
// Segmenter
// =============================================================================

// wallOfTextThreshold is the minimum length (in runes) of a single
// blank-line-free paste before the sentence-boundary fallback kicks in.
const wallOfTextThreshold = 150

var (
	lineEndings = strings.NewReplacer(
		"\r\n", "\n",
		"\r", "\n",
		" ", "\n",
		" ", "\n",
	)

	// blankLinePattern matches one or more blank lines, where a blank
	// line may contain whitespace.
	blankLinePattern = regexp.MustCompile(`\n\s*\n`)

	rulePattern    = regexp.MustCompile(`^(?:-{3,}|\*{3,}|_{3,})$`)
	headingPattern = regexp.MustCompile(`^(#{1,6})[ \t]+`)
)

// Segment parses raw pasted or imported text into an ordered list of
// typed blocks, each with a fresh id.
//
// # Description
//
// Line endings (CR-LF, bare CR, and the Unicode line/paragraph
// separators) are normalized to "\n" first. The primary split is on
// blank-line boundaries, which preserves single line breaks inside a
// block. A single wall-of-text paste longer than wallOfTextThreshold
// with no blank lines is re-split on sentence boundaries so it does
// not land as one unreadable mega-block; the fallback is only applied
// when it actually yields more than one segment.
//
// Each trimmed segment is then classified: a bare run of three or more
// '-', '*', or '_' becomes a Rule (text discarded), a leading heading
// marker becomes a Heading (marker stripped), everything else a
// Paragraph.
//
// # Outputs
//
//   - []Block: zero or more blocks, none with empty trimmed text.
//     Whitespace-only input yields an empty slice; callers own that case.
func Segment(raw string) []Block {
	text := lineEndings.Replace(raw)

	segments := splitParagraphs(text)
	if len(segments) == 1 && utf8.RuneCountInString(segments[0]) > wallOfTextThreshold {
		if sentences := splitSentences(segments[0]); len(sentences) > 1 {
			segments = sentences
		}
	}

	blocks := make([]Block, 0, len(segments))
	for _, segment := range segments {
		blocks = append(blocks, classify(segment))
	}
	return blocks
}

// splitParagraphs breaks text on blank-line boundaries, trimming each
// piece and discarding empty ones.
func splitParagraphs(text string) []string {
	var out []string
	for _, piece := range blankLinePattern.Split(text, -1) {
		piece = strings.TrimSpace(piece)
		if piece != "" {
			out = append(out, piece)
		}
	}
	return out
}

// splitSentences breaks a run of prose after terminal punctuation.
//
// A boundary is: '.', '!' or '?', optionally followed by a closing
// quote or bracket, then one or more spaces, looking ahead at an
// optional opening quote followed by an uppercase letter. The
// lookahead keeps abbreviations mid-sentence ("Dr. smith") from
// shredding the text.
func splitSentences(text string) []string {
	runes := []rune(text)
	var out []string
	start := 0

	for i := 0; i < len(runes); {
		r := runes[i]
		if r != '.' && r != '!' && r != '?' {
			i++
			continue
		}
		end := i + 1
		if end < len(runes) && isClosingMark(runes[end]) {
			end++
		}
		next := end
		for next < len(runes) && runes[next] == ' ' {
			next++
		}
		if next == end || next >= len(runes) {
			i = end
			continue
		}
		look := next
		if isOpeningMark(runes[look]) {
			look++
		}
		if look < len(runes) && unicode.IsUpper(runes[look]) {
			if piece := strings.TrimSpace(string(runes[start:end])); piece != "" {
				out = append(out, piece)
			}
			start = next
			i = next
			continue
		}
		i = end
	}

	if piece := strings.TrimSpace(string(runes[start:])); piece != "" {
		out = append(out, piece)
	}
	return out
}

func isClosingMark(r rune) bool {
	switch r {
	case '"', '\'', ')', ']', '”', '’':
		return true
	}
	return false
}

func isOpeningMark(r rune) bool {
	switch r {
	case '"', '\'', '(', '“', '‘':
		return true
	}
	return false
}

// classify maps one trimmed segment to a typed block.
func classify(segment string) Block {
	if rulePattern.MatchString(segment) {
		return newBlock(Rule, "")
	}
	if loc := headingPattern.FindStringIndex(segment); loc != nil {
		return newBlock(Heading, strings.TrimSpace(segment[loc[1]:]))
	}
	return newBlock(Paragraph, segment)
}
