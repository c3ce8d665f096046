// Package id generates unique 64-bit identifiers for entities that are
// exposed as integers on the wire (proposals, messages).
package id

import (
	"fmt"

	"github.com/bwmarrin/snowflake"
)

type Generator struct {
	node *snowflake.Node
}

func NewGenerator(nodeID int64) (*Generator, error) {
	node, err := snowflake.NewNode(nodeID)
	if err != nil {
		return nil, fmt.Errorf("snowflake node: %w", err)
	}
	return &Generator{node: node}, nil
}

// Next returns a new unique id. Ids are monotonically increasing per node.
func (g *Generator) Next() int64 {
	return g.node.Generate().Int64()
}
