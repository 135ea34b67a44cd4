package main

import (
	"regexp"
	"testing"
)

func TestRandomUsername_Shape(t *testing.T) {
	re := regexp.MustCompile(`^[A-Z][a-z]+[A-Z][a-z]+\d{1,2}$`)
	for i := 0; i < 50; i++ {
		name := randomUsername()
		if !re.MatchString(name) {
			t.Fatalf("username %q does not match adjective+animal+number", name)
		}
	}
}
