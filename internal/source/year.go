// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package source

import (
	"encoding/json"
	"math"
	"strconv"
	"strings"
)

// ExtractYear derives a publication year from the encodings providers use:
// "2023", "2023-05", "2023-05-15", "May 2023", integers, JSON numbers and
// CrossRef date-parts ([[2023, 5, 15]]). It returns nil when no 4-digit
// year can be found.
func ExtractYear(v any) *int {
	switch x := v.(type) {
	case nil:
		return nil
	case string:
		return yearFromString(x)
	case int:
		return validYear(x)
	case int64:
		return validYear(int(x))
	case float64:
		if x != math.Trunc(x) {
			return nil
		}
		return validYear(int(x))
	case json.Number:
		n, err := x.Int64()
		if err != nil {
			return nil
		}
		return validYear(int(n))
	case []int:
		if len(x) == 0 {
			return nil
		}
		return validYear(x[0])
	case [][]int:
		if len(x) == 0 || len(x[0]) == 0 {
			return nil
		}
		return validYear(x[0][0])
	case []any:
		if len(x) == 0 {
			return nil
		}
		return ExtractYear(x[0])
	}
	return nil
}

// yearFromString accepts a leading 4-digit year ("2023-05-15") or a
// trailing one ("May 2023").
func yearFromString(s string) *int {
	s = strings.TrimSpace(s)
	if y := leadingYear(s); y != nil {
		return y
	}
	fields := strings.Fields(s)
	if len(fields) == 0 {
		return nil
	}
	return leadingYear(strings.Trim(fields[len(fields)-1], ",.;()[]"))
}

// leadingYear parses s when it starts with exactly four digits.
func leadingYear(s string) *int {
	if len(s) < 4 {
		return nil
	}
	for i := 0; i < 4; i++ {
		if s[i] < '0' || s[i] > '9' {
			return nil
		}
	}
	if len(s) > 4 && s[4] >= '0' && s[4] <= '9' {
		return nil
	}
	n, _ := strconv.Atoi(s[:4])
	return validYear(n)
}

func validYear(n int) *int {
	if n < 1000 || n > 9999 {
		return nil
	}
	return &n
}
