// Command versync keeps the Gear and Sails versions of a workspace in line
// with their latest GitHub releases.
package main

import "github.com/gear-foundation/versync/internal/cli"

func main() {
	cli.Execute()
}
