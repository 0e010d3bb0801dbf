/*
NAME
  numbers.go

AUTHOR
  vorbistego contributors

LICENSE
  Copyright (C) 2026 the vorbistego project. All Rights Reserved.
*/

// Package numbers provides small integer-sequence search helpers, a
// linear-search counterpart to an occupancy bitmap. No other package
// imports it; SPEC_FULL.md section C.5 records why it exists.
package numbers

// Seek reports whether number appears anywhere in sequence.
func Seek(sequence []int, number int) bool {
	for _, v := range sequence {
		if v == number {
			return true
		}
	}
	return false
}

// SeekInterval reports whether any element of sequence falls within
// [lower, higher] inclusive.
func SeekInterval(sequence []int, lower, higher int) bool {
	for _, v := range sequence {
		if v >= lower && v <= higher {
			return true
		}
	}
	return false
}
