// Public domain.

package main

import "github.com/soniakeys/sdssphot/internal/photprog"

func main() {
	photprog.Main()
}
