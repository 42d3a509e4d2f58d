// Command vplat builds a virtual platform from a YAML description and runs
// it.
package main

import "github.com/sarchlab/vplat/vplat/cmd"

func main() {
	cmd.Execute()
}
