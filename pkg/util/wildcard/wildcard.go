/*
 * Copyright 2021-2022 by Nedim Sabic Sabic
 * https://www.fibratus.io
 * All Rights Reserved.
 *
 * Licensed under the Apache License, Version 2.0 (the "License");
 * you may not use this file except in compliance with the License.
 * You may obtain a copy of the License at
 *
 *  http://www.apache.org/licenses/LICENSE-2.0
 *
 * Unless required by applicable law or agreed to in writing, software
 * distributed under the License is distributed on an "AS IS" BASIS,
 * WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
 * See the License for the specific language governing permissions and
 * limitations under the License.
 */

// Package wildcard matches strings against glob-like patterns.
package wildcard

import (
	"unicode"
	"unicode/utf8"
)

// Match reports whether the string matches the pattern. The pattern
// supports the '*' wildcard for any run of characters, including the
// empty one, and '?' for exactly one character.
func Match(pattern, str string) bool {
	return match(pattern, str, false)
}

// MatchFold is like Match but compares characters under Unicode
// case folding.
func MatchFold(pattern, str string) bool {
	return match(pattern, str, true)
}

func match(pattern, str string, fold bool) bool {
	var p, s int
	// position of the last star in the pattern and the
	// string position it is currently anchored at
	star, anchor := -1, 0

	for s < len(str) {
		if p < len(pattern) {
			pr, psize := decode(pattern, p)
			switch pr {
			case '*':
				star, anchor = p, s
				p += psize
				continue
			case '?':
				_, ssize := decode(str, s)
				p += psize
				s += ssize
				continue
			default:
				sr, ssize := decode(str, s)
				if equal(pr, sr, fold) {
					p += psize
					s += ssize
					continue
				}
			}
		}
		if star < 0 {
			return false
		}
		// let the star swallow one more character
		_, ssize := decode(str, anchor)
		anchor += ssize
		p, s = star+1, anchor
	}

	for p < len(pattern) && pattern[p] == '*' {
		p++
	}
	return p == len(pattern)
}

func decode(s string, i int) (rune, int) {
	if c := s[i]; c < utf8.RuneSelf {
		return rune(c), 1
	}
	return utf8.DecodeRuneInString(s[i:])
}

func equal(a, b rune, fold bool) bool {
	if a == b {
		return true
	}
	if !fold {
		return false
	}
	return unicode.SimpleFold(a) == b || unicode.ToLower(a) == unicode.ToLower(b)
}
