package main

import (
	"fmt"
	"math/rand"
)

var (
	nameAdjectives = []string{"Curious", "Gentle", "Swift", "Witty", "Brave", "Sunny"}
	nameAnimals    = []string{"Otter", "Fox", "Koala", "Panda", "Cat", "Turtle"}
)

// randomUsername assigns a readable anonymous handle, e.g. "SwiftOtter42".
// Collisions are tolerable: identity here is the connection, not the name.
func randomUsername() string {
	return fmt.Sprintf("%s%s%d",
		nameAdjectives[rand.Intn(len(nameAdjectives))],
		nameAnimals[rand.Intn(len(nameAnimals))],
		rand.Intn(100),
	)
}
