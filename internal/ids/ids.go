// Package ids generates snowflake row identifiers.
package ids

import (
	"math/rand"
	"sync"

	"github.com/bwmarrin/snowflake"
)

var (
	node *snowflake.Node
	once sync.Once
)

// Next returns a new process-unique int64 identifier.
func Next() int64 {
	once.Do(func() {
		var err error
		node, err = snowflake.NewNode(rand.Int63n(1024))
		if err != nil {
			panic(err)
		}
	})
	return node.Generate().Int64()
}
