package utilities

import (
	"os"
	"strconv"

	"github.com/bwmarrin/snowflake"
	"github.com/segmentio/ksuid"
)

// NewKSUID returns the opaque identity used for academy, license,
// student and record rows. K-sortable, so freshly created rows cluster
// at the index tail.
func NewKSUID() string {
	return ksuid.New().String()
}

// NewSnowflakeID returns a short, roughly time-ordered ID for token
// jti values. The node comes from SNOWFLAKE_NODE; an absent or
// unparseable value means node 1.
func NewSnowflakeID() string {
	node := int64(1)
	if v := os.Getenv("SNOWFLAKE_NODE"); v != "" {
		if parsed, err := strconv.ParseInt(v, 10, 64); err == nil {
			node = parsed
		}
	}
	return NewSnowflakeIDWithNode(node)
}

// NewSnowflakeIDWithNode generates a snowflake ID on the given node,
// falling back to a KSUID if the node is out of range.
func NewSnowflakeIDWithNode(nodeID int64) string {
	node, err := snowflake.NewNode(nodeID)
	if err != nil {
		return NewKSUID()
	}
	return node.Generate().String()
}
