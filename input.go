package main

import (
	"fmt"
	"os"
	"strconv"
	"strings"
)

// readProgram reads a comma-separated list of integers from file.
func readProgram(file string) ([]int64, error) {
	b, err := os.ReadFile(file)
	if err != nil {
		return nil, err
	}
	mem, err := parseProgram(string(b))
	if err != nil {
		return nil, fmt.Errorf("%s: %v", file, err)
	}
	return mem, nil
}

func parseProgram(s string) ([]int64, error) {
	var mem []int64
	for i, tok := range strings.Split(s, ",") {
		tok = strings.TrimSpace(tok)
		v, err := strconv.ParseInt(tok, 10, 64)
		if err != nil {
			return nil, fmt.Errorf("cell %d: invalid integer %q", i, tok)
		}
		mem = append(mem, v)
	}
	return mem, nil
}
