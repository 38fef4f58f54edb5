// Command ptstrack tracks Dota 2 PTS progress toward a target.
package main

import "github.com/theirongolddev/ptstrack/cmd"

func main() {
	cmd.Execute()
}
