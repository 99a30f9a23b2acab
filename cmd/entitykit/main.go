// Command entitykit writes catalog entities through the lifecycle hook and
// prints composed relation descriptors.
package main

import "github.com/mesh-intelligence/entitykit/internal/cli"

func main() {
	cli.Execute()
}
