package idutil

import (
	"sync"

	"github.com/bwmarrin/snowflake"
)

// Generator produces time-ordered int64 ids. Ids generated later are strictly greater, so
// ordering by id is ordering by creation.
type Generator interface {
	Generate() int64
}

type snowflakeGenerator struct {
	node *snowflake.Node
}

func NewSnowflakeGenerator(nodeID int64) (*snowflakeGenerator, error) {
	node, err := snowflake.NewNode(nodeID)
	if err != nil {
		return nil, err
	}

	return &snowflakeGenerator{node: node}, nil
}

func (g *snowflakeGenerator) Generate() int64 {
	return g.node.Generate().Int64()
}

// SequenceGenerator returns consecutive ids starting from start. It is meant for fixtures
// where ids must be predictable.
type SequenceGenerator struct {
	mu   sync.Mutex
	next int64
}

func NewSequenceGenerator(start int64) *SequenceGenerator {
	return &SequenceGenerator{next: start}
}

func (g *SequenceGenerator) Generate() int64 {
	g.mu.Lock()
	defer g.mu.Unlock()

	id := g.next
	g.next++
	return id
}

// ParseID parses the string form of a generated id.
func ParseID(s string) (int64, error) {
	id, err := snowflake.ParseString(s)
	if err != nil {
		return 0, err
	}

	return id.Int64(), nil
}

func FormatID(id int64) string {
	return snowflake.ParseInt64(id).String()
}
