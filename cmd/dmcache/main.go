// Command dmcache replays memory access patterns against a direct-mapped
// cache and reports hits, misses, and access times.
package main

import "github.com/sarchlab/dmcache/cmd/dmcache/cmd"

func main() {
	cmd.Execute()
}
