// Command hbnb runs the record console.
package main

import "github.com/mesh-intelligence/hbnb/internal/cli"

func main() {
	cli.Execute()
}
